// Package flow implements the session-establishing flows: password and
// Google sign-in, sign-up, the three-step password reset, password change and
// sign-out. Each flow is a small state machine guarded against duplicate
// submission.
package flow

import (
	"context"
	stderrors "errors"
	"strings"
	"sync/atomic"
	"time"

	"github.com/padup/padup/internal/api"
	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/log"
	"github.com/padup/padup/internal/metrics"
	"github.com/padup/padup/internal/router"
	"github.com/padup/padup/internal/session"
	"github.com/padup/padup/internal/storage"
	"github.com/padup/padup/internal/telemetry"
)

// AuthAPI is the part of the API client the flows use.
type AuthAPI interface {
	Login(ctx context.Context, email, password string) (*api.AuthResponse, error)
	GoogleLogin(ctx context.Context, credential string) (*api.AuthResponse, error)
	Signup(ctx context.Context, req api.SignupRequest) (string, error)
	Me(ctx context.Context) (*session.User, error)
	ChangePassword(ctx context.Context, current, next string) (string, error)
	RequestOTP(ctx context.Context, email string) (string, error)
	VerifyOTP(ctx context.Context, email, otp string) (*api.VerifyOTPResponse, error)
	ResetPassword(ctx context.Context, email, resetToken, newPassword string) (string, error)
}

// Env holds what every flow needs besides the API.
type Env struct {
	Sessions  session.Store
	Storage   storage.Store
	Navigator router.Navigator
	Clock     Clock
	Metrics   *metrics.Metrics
	Logger    *log.Logger
}

func (e Env) clock() Clock {
	if e.Clock == nil {
		return RealClock{}
	}
	return e.Clock
}

func (e Env) logger() *log.Logger {
	if e.Logger == nil {
		return log.DefaultLogger()
	}
	return e.Logger
}

func (e Env) outcome(name, result string) {
	if e.Metrics != nil {
		e.Metrics.FlowOutcomes.WithLabelValues(name, result).Inc()
	}
}

// run executes one submission of the named flow under sub. A second call
// while one is outstanding fails fast with ErrSubmitInProgress.
func (e Env) run(ctx context.Context, sub *Submitter, name string, fn func(ctx context.Context) error) error {
	if !sub.TryBegin() {
		e.outcome(name, "duplicate")
		return ErrSubmitInProgress
	}

	ctx, span := telemetry.StartFlowSpan(ctx, name)
	defer span.End()

	err := fn(ctx)
	sub.End(err)
	if err != nil {
		telemetry.RecordError(span, err)
		e.outcome(name, "failed")
		if errors.CodeOf(err) == errors.ErrCodeAPINetwork {
			e.logger().WarnContext(ctx, "flow failed", "flow", name, "error", err)
		}
		return err
	}
	telemetry.RecordSuccess(span)
	e.outcome(name, "succeeded")
	return nil
}

// State is the submission state of a flow.
type State int32

const (
	StateIdle State = iota
	StateSubmitting
	StateSucceeded
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSucceeded:
		return "succeeded"
	default:
		return "unknown"
	}
}

// ErrSubmitInProgress is returned when a flow is submitted again before the
// previous submission finished. No request is sent.
var ErrSubmitInProgress = errors.New(errors.ErrCodeAuthSubmitInFlight, "a submission is already in progress")

// Submitter serializes submissions of one flow instance. A failed submission
// returns the flow to idle so the user can try again.
type Submitter struct {
	state atomic.Int32
}

// TryBegin moves to submitting. It reports false if a submission is
// already outstanding.
func (s *Submitter) TryBegin() bool {
	for {
		cur := s.state.Load()
		if State(cur) == StateSubmitting {
			return false
		}
		if s.state.CompareAndSwap(cur, int32(StateSubmitting)) {
			return true
		}
	}
}

// End finishes the outstanding submission.
func (s *Submitter) End(err error) {
	if err != nil {
		s.state.Store(int32(StateIdle))
		return
	}
	s.state.Store(int32(StateSucceeded))
}

// State returns the current state.
func (s *Submitter) State() State {
	return State(s.state.Load())
}

// Clock provides the fixed pauses flows take before navigating.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// RealClock sleeps on the wall clock.
type RealClock struct{}

func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ValidationError lists the client-side checks a submission failed.
// Submissions that fail validation are never sent.
type ValidationError struct {
	Field    string
	Problems []string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + strings.Join(e.Problems, "; ")
}

func invalid(code errors.ErrorCode, message, field string, problems ...string) error {
	if len(problems) == 0 {
		problems = []string{message}
	}
	return errors.Wrap(code, message, &ValidationError{Field: field, Problems: problems})
}

// IsValidation reports whether err is a client-side validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return stderrors.As(err, &ve)
}

// failure turns an API error into the message shown to the user: the
// server's message when it sent one, fallback otherwise.
func failure(err error, fallback string) error {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}
	code := errors.CodeOf(err)
	if code == "" {
		code = errors.ErrCodeAPIResponse
	}
	return errors.Wrap(code, api.MessageOf(err, fallback), err)
}

// Message returns the user-facing message for err.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var pe *errors.PadupError
	if stderrors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}
