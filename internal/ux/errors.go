package ux

import (
	stderrors "errors"
	"strings"

	"github.com/padup/padup/internal/errors"
)

// codeSuggestions is the recovery hint for each error code that has an
// obvious next step.
var codeSuggestions = map[errors.ErrorCode]string{
	errors.ErrCodeAuthRequired:       "Log in with 'padup login'",
	errors.ErrCodeAuthRejected:       "Your session has ended. Log in again with 'padup login'",
	errors.ErrCodeAuthForbidden:      "Check your role with 'padup whoami'; 'padup routes' lists who may open what",
	errors.ErrCodeAuthResetSession:   "Request a new code with 'padup password forgot'",
	errors.ErrCodeAuthSubmitInFlight: "Wait for the previous request to finish",
	errors.ErrCodeAPINetwork:         "Check your connection and the API address ('padup config get api.base_url'), or run 'padup doctor'",
	errors.ErrCodeConfigBaseURL:      "Set the API address: padup config set api.base_url https://example.com/api",
	errors.ErrCodeStorageWrite:       "Check that the padup home directory is writable ('padup config path')",
}

// systemHints match failures that reach the CLI without a code.
var systemHints = []struct{ match, hint string }{
	{"permission denied", "Check the permissions of the file or of the padup home directory"},
	{"no such file or directory", "Check the file path; uploads need an existing file"},
	{"connection refused", "Check that the API is running and 'padup config get api.base_url' points at it"},
}

// EnhanceError adds the recovery hint for err when err carries no
// suggestion of its own. The code of err stays reachable through Unwrap.
func EnhanceError(err error) error {
	if err == nil {
		return nil
	}

	var pe *errors.PadupError
	if stderrors.As(err, &pe) {
		if len(pe.Suggestions) > 0 {
			return err
		}
		if s, ok := codeSuggestions[pe.Code]; ok {
			return &hinted{err: err, hint: s}
		}
	}

	msg := err.Error()
	for _, h := range systemHints {
		if strings.Contains(msg, h.match) {
			return &hinted{err: err, hint: h.hint}
		}
	}
	return err
}

// hinted prints its hint the way PadupError prints suggestions.
type hinted struct {
	err  error
	hint string
}

func (h *hinted) Error() string {
	return h.err.Error() + "\n\nSuggestions:\n  • " + h.hint
}

func (h *hinted) Unwrap() error {
	return h.err
}

// UserMessage is the short text shown for err: the message of the first
// coded error in the chain, else the error text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var pe *errors.PadupError
	if stderrors.As(err, &pe) {
		return pe.Message
	}
	return err.Error()
}
