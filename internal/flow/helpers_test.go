package flow

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/padup/padup/internal/api"
	"github.com/padup/padup/internal/log"
	"github.com/padup/padup/internal/metrics"
	"github.com/padup/padup/internal/router"
	"github.com/padup/padup/internal/session"
	"github.com/padup/padup/internal/storage"
)

// fakeAPI counts calls and answers with the configured functions.
type fakeAPI struct {
	calls atomic.Int32

	login      func(email, password string) (*api.AuthResponse, error)
	google     func(credential string) (*api.AuthResponse, error)
	signup     func(req api.SignupRequest) (string, error)
	me         func() (*session.User, error)
	change     func(current, next string) (string, error)
	requestOTP func(email string) (string, error)
	verifyOTP  func(email, otp string) (*api.VerifyOTPResponse, error)
	reset      func(email, token, pw string) (string, error)
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (*api.AuthResponse, error) {
	f.calls.Add(1)
	return f.login(email, password)
}

func (f *fakeAPI) GoogleLogin(_ context.Context, credential string) (*api.AuthResponse, error) {
	f.calls.Add(1)
	return f.google(credential)
}

func (f *fakeAPI) Signup(_ context.Context, req api.SignupRequest) (string, error) {
	f.calls.Add(1)
	return f.signup(req)
}

func (f *fakeAPI) Me(context.Context) (*session.User, error) {
	f.calls.Add(1)
	return f.me()
}

func (f *fakeAPI) ChangePassword(_ context.Context, current, next string) (string, error) {
	f.calls.Add(1)
	return f.change(current, next)
}

func (f *fakeAPI) RequestOTP(_ context.Context, email string) (string, error) {
	f.calls.Add(1)
	return f.requestOTP(email)
}

func (f *fakeAPI) VerifyOTP(_ context.Context, email, otp string) (*api.VerifyOTPResponse, error) {
	f.calls.Add(1)
	return f.verifyOTP(email, otp)
}

func (f *fakeAPI) ResetPassword(_ context.Context, email, token, pw string) (string, error) {
	f.calls.Add(1)
	return f.reset(email, token, pw)
}

// fakeClock returns immediately and records requested pauses.
type fakeClock struct {
	mu     sync.Mutex
	sleeps []time.Duration
}

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	c.mu.Lock()
	c.sleeps = append(c.sleeps, d)
	c.mu.Unlock()
	return ctx.Err()
}

func (c *fakeClock) Sleeps() []time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]time.Duration(nil), c.sleeps...)
}

type testEnv struct {
	Env
	kv      *storage.MemoryStore
	history *router.History
	clock   *fakeClock
}

func newTestEnv(t *testing.T, start string) *testEnv {
	t.Helper()
	kv := storage.NewMemoryStore()
	history := router.NewHistory(start)
	clock := &fakeClock{}
	return &testEnv{
		Env: Env{
			Sessions:  session.NewStore(kv),
			Storage:   kv,
			Navigator: history,
			Clock:     clock,
			Metrics:   metrics.New(),
			Logger:    log.Discard(),
		},
		kv:      kv,
		history: history,
		clock:   clock,
	}
}

func authResponse(token string, role session.Role) *api.AuthResponse {
	return &api.AuthResponse{
		Token: token,
		User:  session.User{ID: "7", Name: "Ada", Email: "ada@example.com", Role: role},
	}
}
