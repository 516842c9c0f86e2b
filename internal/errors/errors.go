// Package errors defines the coded errors padup returns. The code prefix
// decides the exit status.
package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// ErrorCode is CATEGORY-NNN.
type ErrorCode string

const (
	ErrCodeAuthRequired       ErrorCode = "AUTH-001"
	ErrCodeAuthRejected       ErrorCode = "AUTH-002"
	ErrCodeAuthForbidden      ErrorCode = "AUTH-003"
	ErrCodeAuthResetSession   ErrorCode = "AUTH-004"
	ErrCodeAuthCredentialBad  ErrorCode = "AUTH-005"
	ErrCodeAuthSubmitInFlight ErrorCode = "AUTH-006"

	ErrCodeValidationPassword ErrorCode = "VALIDATION-001"
	ErrCodeValidationMismatch ErrorCode = "VALIDATION-002"
	ErrCodeValidationRequired ErrorCode = "VALIDATION-003"
	ErrCodeValidationInvalid  ErrorCode = "VALIDATION-004"

	// API-002 means no response arrived.
	ErrCodeAPIRequest  ErrorCode = "API-001"
	ErrCodeAPINetwork  ErrorCode = "API-002"
	ErrCodeAPIResponse ErrorCode = "API-003"
	ErrCodeAPIDecode   ErrorCode = "API-004"

	ErrCodeStorageRead    ErrorCode = "STORAGE-001"
	ErrCodeStorageWrite   ErrorCode = "STORAGE-002"
	ErrCodeStorageCorrupt ErrorCode = "STORAGE-003"

	ErrCodeConfigInvalid  ErrorCode = "CONFIG-001"
	ErrCodeConfigNotFound ErrorCode = "CONFIG-002"
	ErrCodeConfigBaseURL  ErrorCode = "CONFIG-003"
)

// PadupError is an error with a stable code and the commands that usually
// fix it. Error prints the suggestions below the message, so a command can
// return one unchanged to the user.
type PadupError struct {
	Code        ErrorCode
	Message     string
	Suggestions []string
	Cause       error
}

func (e *PadupError) Error() string {
	msg := "[" + string(e.Code) + "] " + e.Message
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	if len(e.Suggestions) == 0 {
		return msg
	}
	return msg + "\n\nSuggestions:\n  • " + strings.Join(e.Suggestions, "\n  • ")
}

func (e *PadupError) Unwrap() error { return e.Cause }

func New(code ErrorCode, message string) *PadupError {
	return &PadupError{Code: code, Message: message}
}

// Wrap keeps cause in the chain so errors.Is still finds it.
func Wrap(code ErrorCode, message string, cause error) *PadupError {
	return &PadupError{Code: code, Message: message, Cause: cause}
}

// WithSuggestion appends a hint and returns e.
func (e *PadupError) WithSuggestion(suggestion string) *PadupError {
	e.Suggestions = append(e.Suggestions, suggestion)
	return e
}

// CodeOf returns the code of the outermost PadupError in err, or "".
func CodeOf(err error) ErrorCode {
	var pe *PadupError
	if stderrors.As(err, &pe) {
		return pe.Code
	}
	return ""
}

// NewAuthRequiredError is returned when a guarded command runs without a session.
func NewAuthRequiredError(path string) *PadupError {
	return New(ErrCodeAuthRequired, fmt.Sprintf("sign in required to open %s", path)).
		WithSuggestion("Run 'padup login' to sign in").
		WithSuggestion("Run 'padup whoami' to check the current session")
}

// NewAuthForbiddenError is returned when the session role does not satisfy a route.
func NewAuthForbiddenError(path string, role string) *PadupError {
	return New(ErrCodeAuthForbidden, fmt.Sprintf("role %q cannot open %s", role, path)).
		WithSuggestion("Sign in with an account that has the required role: padup login").
		WithSuggestion("Run 'padup routes' to see which roles each path accepts")
}

// NewSessionRejectedError is returned after the server rejected the session token.
func NewSessionRejectedError(cause error) *PadupError {
	return Wrap(ErrCodeAuthRejected, "session rejected by server; you have been signed out", cause).
		WithSuggestion("Run 'padup login' to start a new session")
}

// NewResetSessionError is returned when the reset step runs without a pending reset context.
func NewResetSessionError() *PadupError {
	return New(ErrCodeAuthResetSession, "Invalid reset session. Please start over.").
		WithSuggestion("Request a new code: padup password forgot --email <email>")
}

// NewNetworkError wraps a transport failure.
func NewNetworkError(method, url string, cause error) *PadupError {
	return Wrap(ErrCodeAPINetwork, fmt.Sprintf("network error calling %s %s", method, url), cause).
		WithSuggestion("Check your connection and the configured API address: padup config view").
		WithSuggestion("In development mode the API must be running on http://localhost:5000")
}

// NewBaseURLMissingError reports a non-development environment with no API address.
func NewBaseURLMissingError(mode string) *PadupError {
	return New(ErrCodeConfigBaseURL, fmt.Sprintf("API base address is not set for mode %q", mode)).
		WithSuggestion("Set PADUP_API_BASE_URL or api.base_url in ~/.padup/config.yaml").
		WithSuggestion("Use --mode development to talk to a local API")
}

// NewFileUnmarshalError reports a file padup owns that no longer parses.
func NewFileUnmarshalError(path string, format string, cause error) *PadupError {
	return Wrap(ErrCodeConfigInvalid, fmt.Sprintf("cannot parse %s as %s", path, format), cause).
		WithSuggestion("Remove the file to start again from defaults")
}
