// Package exitcode maps command errors to process exit statuses so scripts
// can tell a missing login from a server failure.
package exitcode

import (
	"context"
	stderrors "errors"
	"strings"

	"github.com/padup/padup/internal/errors"
)

const (
	Success      = 0
	GeneralError = 1
	UsageError   = 2 // bad flags, arguments, input or config
	Forbidden    = 3 // signed in with a role the page does not admit
	ServerError  = 4 // the API answered with an error
	AuthError    = 5 // no session, or the API rejected it
	NetworkError = 6 // no response from the API
	Interrupted  = 130
)

// byCode lists exact codes first; prefixes apply to what is left.
var byCode = []struct {
	match  string
	prefix bool
	status int
}{
	{string(errors.ErrCodeAuthForbidden), false, Forbidden},
	{string(errors.ErrCodeAPINetwork), false, NetworkError},
	{"AUTH-", true, AuthError},
	{"VALIDATION-", true, UsageError},
	{"CONFIG-", true, UsageError},
	{"API-", true, ServerError},
}

// Usage errors raised by cobra before a command runs carry no code.
var cobraUsage = []string{"unknown command", "unknown flag", "unknown shorthand flag", "required flag", "accepts ", "requires at least", "invalid argument"}

// For returns the exit status for err.
func For(err error) int {
	if err == nil {
		return Success
	}
	if stderrors.Is(err, context.Canceled) {
		return Interrupted
	}

	if code := string(errors.CodeOf(err)); code != "" {
		for _, c := range byCode {
			if code == c.match || (c.prefix && strings.HasPrefix(code, c.match)) {
				return c.status
			}
		}
		return GeneralError
	}

	msg := err.Error()
	for _, s := range cobraUsage {
		if strings.Contains(msg, s) {
			return UsageError
		}
	}
	return GeneralError
}

// Describe names an exit status for help text.
func Describe(status int) string {
	switch status {
	case Success:
		return "success"
	case GeneralError:
		return "unexpected error"
	case UsageError:
		return "invalid flags, arguments, input or configuration"
	case Forbidden:
		return "signed-in role cannot open this page"
	case ServerError:
		return "the API reported an error"
	case AuthError:
		return "not signed in, or the session was rejected"
	case NetworkError:
		return "the API could not be reached"
	case Interrupted:
		return "interrupted"
	}
	return "unknown"
}
