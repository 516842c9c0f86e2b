package router

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/log"
	"github.com/padup/padup/internal/metrics"
	"github.com/padup/padup/internal/session"
	"github.com/padup/padup/internal/storage"
)

func newGuard(t *testing.T, role session.Role) (*Guard, *History, *metrics.Metrics) {
	t.Helper()
	store := session.NewStore(storage.NewMemoryStore())
	if role != "" {
		require.NoError(t, store.Set(context.Background(), &session.Session{
			Token: "tok",
			User:  session.User{ID: "1", Name: "Test", Email: "t@example.com", Role: role},
		}))
	}
	m := metrics.New()
	h := NewHistory("/")
	return NewGuard(DefaultTable(), store, h, WithGuardMetrics(m), WithGuardLogger(log.Discard())), h, m
}

func TestGuard_Enter(t *testing.T) {
	tests := []struct {
		name       string
		role       session.Role
		path       string
		wantAllow  bool
		wantReason Reason
		wantCode   errors.ErrorCode
	}{
		{"public without session", "", "/community", true, ReasonPublic, ""},
		{"guarded without session", "", "/admin/dashboard", false, ReasonNoSession, errors.ErrCodeAuthRequired},
		{"admin on admin route", session.RoleAdmin, "/admin/kyc", true, ReasonAuthorized, ""},
		{"user on admin route", session.RoleUser, "/admin/kyc", false, ReasonRoleMismatch, errors.ErrCodeAuthForbidden},
		{"admin on super-admin route", session.RoleAdmin, "/super-admin/dashboard", false, ReasonRoleMismatch, errors.ErrCodeAuthForbidden},
		{"superadmin on admin route", session.RoleSuperAdmin, "/admin/dashboard", false, ReasonRoleMismatch, errors.ErrCodeAuthForbidden},
		{"master on admin route", session.RoleMaster, "/admin/properties", true, ReasonBypass, ""},
		{"master on super-admin route", session.RoleMaster, "/super-admin/settings-page", true, ReasonBypass, ""},
		{"user on users page", session.RoleUser, "/super-admin/userspage", true, ReasonAuthorized, ""},
		{"user on sibling page", session.RoleUser, "/super-admin/bookings", false, ReasonRoleMismatch, errors.ErrCodeAuthForbidden},
		{"any role on account", session.RoleUser, "/account", true, ReasonAuthorized, ""},
		{"unknown role on account", session.Role("owner"), "/account", true, ReasonAuthorized, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, h, _ := newGuard(t, tt.role)

			res, err := g.Enter(context.Background(), tt.path)
			require.NotNil(t, res)
			assert.Equal(t, tt.wantReason, res.Reason)

			if tt.wantAllow {
				require.NoError(t, err)
				assert.Equal(t, Allow, res.Decision)
				assert.Equal(t, tt.path, h.Current())
				return
			}

			require.Error(t, err)
			assert.Equal(t, tt.wantCode, errors.CodeOf(err))
			assert.Equal(t, Redirect, res.Decision)
			assert.Equal(t, PathLogin, h.Current())

			// Redirect replaces history: back skips the denied page.
			navs := h.Log()
			require.Len(t, navs, 1)
			assert.True(t, navs[0].Replace)
		})
	}
}

func TestGuard_ReevaluatesEveryEntry(t *testing.T) {
	g, h, m := newGuard(t, session.RoleAdmin)
	ctx := context.Background()

	_, err := g.Enter(ctx, "/admin/dashboard")
	require.NoError(t, err)

	require.NoError(t, g.sessions.Clear(ctx))

	_, err = g.Enter(ctx, "/admin/dashboard")
	assert.Equal(t, errors.ErrCodeAuthRequired, errors.CodeOf(err))
	assert.Equal(t, PathLogin, h.Current())

	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardDecisions.WithLabelValues("/admin/dashboard", "allow")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.GuardDecisions.WithLabelValues("/admin/dashboard", "redirect")))
}

func TestGuard_UnknownPath(t *testing.T) {
	g, h, _ := newGuard(t, session.RoleAdmin)

	res, err := g.Enter(context.Background(), "/does/not/exist")
	assert.Nil(t, res)
	assert.Equal(t, errors.ErrCodeValidationInvalid, errors.CodeOf(err))
	assert.Empty(t, h.Log())
}

// TestAuthorize_Properties checks the two guard laws over arbitrary role sets:
// a role outside the set is redirected unless it is the bypass role, and the
// bypass role is always allowed.
func TestAuthorize_Properties(t *testing.T) {
	all := session.Roles()

	rapid.Check(t, func(t *rapid.T) {
		roles := rapid.SliceOfNDistinct(rapid.SampledFrom(all), 1, len(all), rapid.ID[session.Role]).Draw(t, "roles")
		role := rapid.SampledFrom(append(all, session.Role("guest"))).Draw(t, "role")
		sess := &session.Session{Token: "t", User: session.User{Role: role}}
		req := RequireRoles(roles...)

		decision, _ := Authorize(sess, req)

		switch {
		case role == session.BypassRole:
			if decision != Allow {
				t.Fatalf("bypass role denied for %v", roles)
			}
		case !req.Accepts(role):
			if decision != Redirect {
				t.Fatalf("role %q allowed by %v", role, roles)
			}
		default:
			if decision != Allow {
				t.Fatalf("role %q denied by %v", role, roles)
			}
		}

		if d, _ := Authorize(nil, req); d != Redirect {
			t.Fatalf("missing session allowed for %v", roles)
		}
	})
}
