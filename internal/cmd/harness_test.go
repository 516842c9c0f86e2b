package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/padup/padup/internal/config"
	"github.com/padup/padup/internal/session"
	"github.com/padup/padup/internal/storage"
)

// noSleep skips the pauses flows take before navigating.
type noSleep struct{}

func (noSleep) Sleep(ctx context.Context, _ time.Duration) error {
	return ctx.Err()
}

// harness runs the command tree against a fake API in a temporary home.
type harness struct {
	t    *testing.T
	home string
	mux  *http.ServeMux
	srv  *httptest.Server
	env  map[string]string
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:    t,
		home: t.TempDir(),
		mux:  http.NewServeMux(),
		env:  map[string]string{},
	}
	h.srv = httptest.NewServer(h.mux)
	t.Cleanup(h.srv.Close)
	return h
}

// handle registers a JSON handler under the API prefix.
func (h *harness) handle(pattern string, status int, body any) {
	h.mux.HandleFunc("/api"+pattern, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, status, body)
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		_ = json.NewEncoder(w).Encode(body)
	}
}

type result struct {
	stdout string
	stderr string
	err    error
}

// run executes padup with args, non-interactively and without color.
func (h *harness) run(args ...string) result {
	h.t.Helper()

	root, rt := newRootCmd(
		func(s *settings) { s.getenv = func(k string) string { return h.env[k] } },
		func(s *settings) { s.clock = noSleep{} },
		func(s *settings) { s.interactive = func() bool { return false } },
	)
	var stdout, stderr bytes.Buffer
	root.SetOut(&stdout)
	root.SetErr(&stderr)
	root.SetArgs(append([]string{
		"--home", h.home,
		"--mode", "production",
		"--api-url", h.srv.URL + "/api",
		"--no-color",
	}, args...))

	err := root.ExecuteContext(context.Background())
	rt.finish(err)
	return result{stdout: stdout.String(), stderr: stderr.String(), err: err}
}

func (h *harness) sessions() session.Store {
	return session.NewStore(storage.NewFileStore(config.StoragePath(h.home), nil))
}

func (h *harness) signIn(role session.Role) {
	h.t.Helper()
	err := h.sessions().Set(context.Background(), &session.Session{
		Token: "tok-" + string(role),
		User:  session.User{ID: "1", Name: "Ada", Email: "ada@example.com", Role: role},
	})
	require.NoError(h.t, err)
}

func (h *harness) session() (*session.Session, bool) {
	return h.sessions().Get(context.Background())
}
