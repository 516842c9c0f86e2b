package flow

import (
	"context"
	"time"

	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/router"
	"github.com/padup/padup/internal/session"
)

// LogoutDelay is the pause between announcing sign-out and performing it.
const LogoutDelay = 800 * time.Millisecond

// ChangePassword changes the signed-in user's password.
type ChangePassword struct {
	api AuthAPI
	env Env
	sub Submitter
}

func NewChangePassword(a AuthAPI, env Env) *ChangePassword {
	return &ChangePassword{api: a, env: env}
}

// Submit checks the new password and confirmation, then sends the change.
func (c *ChangePassword) Submit(ctx context.Context, current, next, confirm string) (string, error) {
	if current == "" {
		return "", invalid(errors.ErrCodeValidationRequired, "Current password is required", "currentPassword")
	}
	if next != confirm {
		return "", invalid(errors.ErrCodeValidationMismatch, "Passwords do not match", "confirmPassword")
	}
	if len([]rune(next)) < MinPasswordLength {
		return "", invalid(errors.ErrCodeValidationPassword, "Password must be at least 8 characters", "newPassword")
	}

	var msg string
	err := c.env.run(ctx, &c.sub, "change_password", func(ctx context.Context) error {
		var err error
		msg, err = c.api.ChangePassword(ctx, current, next)
		if err != nil {
			return failure(err, "Failed to change password")
		}
		return nil
	})
	return msg, err
}

// Logout signs out: after a short pause it clears the session and moves to
// the login page. announce, if set, is called before the pause.
func Logout(ctx context.Context, env Env, announce func()) error {
	if announce != nil {
		announce()
	}
	if err := env.clock().Sleep(ctx, LogoutDelay); err != nil {
		return err
	}
	if err := env.Sessions.Clear(ctx); err != nil {
		return err
	}
	env.outcome("logout", "succeeded")
	env.Navigator.Navigate(router.PathLogin, router.NavigateOptions{Reason: "signed out"})
	return nil
}

// Profile is the signed-in account as the server and the stored token see it.
type Profile struct {
	User      session.User `json:"user" yaml:"user"`
	Token     *Identity    `json:"token,omitempty" yaml:"token,omitempty"`
	Refreshed bool         `json:"refreshed" yaml:"refreshed"`
}

// WhoAmI fetches the current profile and refreshes the cached user. The
// token's claims are decoded for display when it is a JWT.
func WhoAmI(ctx context.Context, a AuthAPI, env Env) (*Profile, error) {
	sess, ok := env.Sessions.Get(ctx)
	if !ok {
		return nil, errors.NewAuthRequiredError(router.PathAccount)
	}

	user, err := a.Me(ctx)
	if err != nil {
		return nil, failure(err, "Failed to load profile")
	}

	p := &Profile{User: *user}
	if id, err := DecodeIdentity(sess.Token); err == nil {
		p.Token = id
	}

	if *user != sess.User && user.Role.Known() {
		if err := env.Sessions.Set(ctx, &session.Session{Token: sess.Token, User: *user}); err != nil {
			return nil, err
		}
		p.Refreshed = true
	}
	return p, nil
}
