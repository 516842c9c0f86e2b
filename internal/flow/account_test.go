package flow

import (
	"context"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/router"
	"github.com/padup/padup/internal/session"
)

func TestChangePassword(t *testing.T) {
	tests := []struct {
		name    string
		current string
		next    string
		confirm string
		want    string
		sent    bool
	}{
		{"ok", "old", "N3wPassword!", "N3wPassword!", "Password updated", true},
		{"missing current", "", "N3wPassword!", "N3wPassword!", "Current password is required", false},
		{"mismatch", "old", "N3wPassword!", "other", "Passwords do not match", false},
		{"too short", "old", "short", "short", "Password must be at least 8 characters", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, router.PathAccount)
			fake := &fakeAPI{change: func(string, string) (string, error) { return "Password updated", nil }}

			msg, err := NewChangePassword(fake, env.Env).Submit(context.Background(), tt.current, tt.next, tt.confirm)
			if tt.sent {
				require.NoError(t, err)
				assert.Equal(t, tt.want, msg)
			} else {
				assert.Equal(t, tt.want, Message(err))
			}
			assert.Equal(t, tt.sent, fake.calls.Load() == 1)
		})
	}
}

func TestLogout(t *testing.T) {
	env := newTestEnv(t, router.PathAdminHome)
	require.NoError(t, env.Sessions.Set(context.Background(), &session.Session{Token: "t", User: session.User{Role: session.RoleAdmin}}))

	announced := false
	require.NoError(t, Logout(context.Background(), env.Env, func() { announced = true }))

	assert.True(t, announced)
	_, ok := env.Sessions.Get(context.Background())
	assert.False(t, ok)
	assert.Equal(t, []time.Duration{LogoutDelay}, env.clock.Sleeps())
	assert.Equal(t, router.PathLogin, env.history.Current())
}

func TestLogout_CancelledKeepsSession(t *testing.T) {
	env := newTestEnv(t, router.PathAdminHome)
	require.NoError(t, env.Sessions.Set(context.Background(), &session.Session{Token: "t", User: session.User{Role: session.RoleAdmin}}))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, Logout(ctx, env.Env, nil), context.Canceled)

	_, ok := env.Sessions.Get(context.Background())
	assert.True(t, ok)
}

func TestWhoAmI(t *testing.T) {
	env := newTestEnv(t, router.PathAccount)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": "7", "exp": time.Now().Add(time.Hour).Unix()}).
		SignedString([]byte("k"))
	require.NoError(t, err)
	require.NoError(t, env.Sessions.Set(context.Background(), &session.Session{
		Token: token,
		User:  session.User{ID: "7", Name: "Ada", Role: session.RoleUser},
	}))

	fake := &fakeAPI{me: func() (*session.User, error) {
		return &session.User{ID: "7", Name: "Ada", Email: "ada@example.com", Role: session.RoleAdmin}, nil
	}}

	p, err := WhoAmI(context.Background(), fake, env.Env)
	require.NoError(t, err)
	assert.True(t, p.Refreshed)
	require.NotNil(t, p.Token)
	assert.Equal(t, "7", p.Token.Subject)

	sess, ok := env.Sessions.Get(context.Background())
	require.True(t, ok)
	assert.Equal(t, session.RoleAdmin, sess.User.Role)
	assert.Equal(t, token, sess.Token)
}

func TestWhoAmI_RequiresSession(t *testing.T) {
	env := newTestEnv(t, router.PathAccount)
	fake := &fakeAPI{}

	_, err := WhoAmI(context.Background(), fake, env.Env)
	assert.Equal(t, errors.ErrCodeAuthRequired, errors.CodeOf(err))
	assert.Equal(t, int32(0), fake.calls.Load())
}
