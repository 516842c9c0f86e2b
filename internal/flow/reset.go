package flow

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/router"
	"github.com/padup/padup/internal/storage"
)

// OTPLength is the number of characters in a reset code.
const OTPLength = 6

// Pauses before the reset flow navigates away.
const (
	InvalidResetDelay = 3 * time.Second
	ResetSuccessDelay = 2 * time.Second
)

// ResetContext is the pending password reset: the account email and the
// short-lived token issued for a verified code.
type ResetContext struct {
	Email      string
	ResetToken string
}

func (rc *ResetContext) complete() bool {
	return rc != nil && rc.Email != "" && rc.ResetToken != ""
}

// LoadResetContext reads the persisted reset context. Both parts must be
// present.
func LoadResetContext(kv storage.Store) (*ResetContext, bool) {
	var rc ResetContext
	_ = kv.View(func(tx storage.Tx) error {
		rc.Email, _ = tx.Get(storage.KeyResetEmail)
		rc.ResetToken, _ = tx.Get(storage.KeyResetToken)
		return nil
	})
	if !rc.complete() {
		return nil, false
	}
	return &rc, true
}

// SaveResetContext persists email and token together.
func SaveResetContext(kv storage.Store, rc *ResetContext) error {
	return kv.Update(func(tx storage.Tx) error {
		tx.Set(storage.KeyResetEmail, rc.Email)
		tx.Set(storage.KeyResetToken, rc.ResetToken)
		return nil
	})
}

// ClearResetContext removes the persisted reset context.
func ClearResetContext(kv storage.Store) error {
	return kv.Delete(storage.KeyResetEmail, storage.KeyResetToken)
}

// TruncateOTP keeps the first six characters of a code.
func TruncateOTP(otp string) string {
	otp = strings.TrimSpace(otp)
	r := []rune(otp)
	if len(r) > OTPLength {
		return string(r[:OTPLength])
	}
	return otp
}

// Stage is the step of the password reset a PasswordReset is at.
type Stage int

const (
	StageEmailEntry Stage = iota
	StageOTPEntry
	StagePasswordEntry
	StageDone
)

func (s Stage) String() string {
	switch s {
	case StageEmailEntry:
		return "email-entry"
	case StageOTPEntry:
		return "otp-entry"
	case StagePasswordEntry:
		return "password-entry"
	case StageDone:
		return "done"
	default:
		return "unknown"
	}
}

// PasswordReset walks the forgot-password steps: request a code, verify it,
// set a new password.
type PasswordReset struct {
	api AuthAPI
	env Env

	request Submitter
	verify  Submitter
	reset   Submitter

	mu    sync.Mutex
	stage Stage
	email string
}

func NewPasswordReset(a AuthAPI, env Env) *PasswordReset {
	return &PasswordReset{api: a, env: env}
}

// Stage returns the current step.
func (p *PasswordReset) Stage() Stage {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stage
}

// Email returns the email the code was sent to.
func (p *PasswordReset) Email() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.email
}

// Resume jumps to code entry for an email whose code was requested earlier.
func (p *PasswordReset) Resume(email string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stage = StageOTPEntry
	p.email = strings.TrimSpace(email)
}

// RequestOTP asks for a reset code and moves to code entry. It returns the
// server's confirmation message.
func (p *PasswordReset) RequestOTP(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", invalid(errors.ErrCodeValidationRequired, "Email is required", "email")
	}

	var msg string
	err := p.env.run(ctx, &p.request, "request_otp", func(ctx context.Context) error {
		var err error
		msg, err = p.api.RequestOTP(ctx, email)
		if err != nil {
			return failure(err, "Failed to send OTP")
		}
		p.Resume(email)
		return nil
	})
	return msg, err
}

// VerifyOTP exchanges the code for a reset token, persists the reset context
// and navigates to the reset page. Codes longer than six characters are
// truncated before sending. The returned context stands in for navigation
// state.
func (p *PasswordReset) VerifyOTP(ctx context.Context, otp string) (*ResetContext, error) {
	p.mu.Lock()
	stage, email := p.stage, p.email
	p.mu.Unlock()
	if stage < StageOTPEntry || email == "" {
		return nil, invalid(errors.ErrCodeValidationRequired, "Request a code first", "email")
	}
	otp = TruncateOTP(otp)
	if otp == "" {
		return nil, invalid(errors.ErrCodeValidationRequired, "Enter the code from your email", "otp")
	}

	var rc *ResetContext
	err := p.env.run(ctx, &p.verify, "verify_otp", func(ctx context.Context) error {
		resp, err := p.api.VerifyOTP(ctx, email, otp)
		if err != nil {
			return failure(err, "OTP verification failed")
		}
		rc = &ResetContext{Email: email, ResetToken: resp.ResetToken}
		if err := SaveResetContext(p.env.Storage, rc); err != nil {
			return err
		}

		p.mu.Lock()
		p.stage = StagePasswordEntry
		p.mu.Unlock()
		p.env.Navigator.Navigate(router.PathResetPassword, router.NavigateOptions{Reason: "code verified"})
		return nil
	})
	return rc, err
}

// Pending returns the reset context to use: state when it is complete,
// otherwise the persisted one. Without either it returns the reset-session
// error and leaves the pause and redirect to StartOver, so a caller can show
// the message first.
func (p *PasswordReset) Pending(state *ResetContext) (*ResetContext, error) {
	if state.complete() {
		return state, nil
	}
	if rc, ok := LoadResetContext(p.env.Storage); ok {
		return rc, nil
	}
	return nil, errors.NewResetSessionError()
}

// StartOver pauses and sends the user back to request a new code.
func (p *PasswordReset) StartOver(ctx context.Context) error {
	if err := p.env.clock().Sleep(ctx, InvalidResetDelay); err != nil {
		return err
	}
	p.env.Navigator.Navigate(router.PathForgotPassword, router.NavigateOptions{Replace: true, Reason: "invalid reset session"})
	return nil
}

// Reset sets the new password. state is the context handed over by
// VerifyOTP; when it is nil the persisted context is used instead. Without
// either, the user is sent back to request a new code after a pause.
func (p *PasswordReset) Reset(ctx context.Context, state *ResetContext, newPassword, confirm string) (string, error) {
	rc, err := p.Pending(state)
	if err != nil {
		if serr := p.StartOver(ctx); serr != nil {
			return "", serr
		}
		return "", err
	}

	if newPassword != confirm {
		return "", invalid(errors.ErrCodeValidationMismatch, "Passwords do not match", "confirmPassword")
	}
	if len([]rune(newPassword)) < MinPasswordLength {
		return "", invalid(errors.ErrCodeValidationPassword, "Password must be at least 8 characters", "newPassword")
	}

	var msg string
	err = p.env.run(ctx, &p.reset, "reset_password", func(ctx context.Context) error {
		var err error
		msg, err = p.api.ResetPassword(ctx, rc.Email, rc.ResetToken, newPassword)
		if err != nil {
			return failure(err, "Failed to reset password")
		}
		if err := ClearResetContext(p.env.Storage); err != nil {
			p.env.logger().WarnContext(ctx, "failed to clear reset context", "error", err)
		}

		p.mu.Lock()
		p.stage = StageDone
		p.mu.Unlock()
		return nil
	})
	if err != nil {
		return "", err
	}

	if err := p.env.clock().Sleep(ctx, ResetSuccessDelay); err != nil {
		return msg, err
	}
	p.env.Navigator.Navigate(router.PathLogin, router.NavigateOptions{Reason: "password reset"})
	return msg, nil
}
