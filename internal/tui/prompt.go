package tui

import (
	stderrors "errors"
	"os"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/padup/padup/internal/errors"
)

// Prompt describes one question asked when a flag was left out.
type Prompt struct {
	Message     string
	Placeholder string
	Required    bool
	Secret      bool

	// Check rejects a value before the form accepts it, e.g. a malformed
	// date. The message of the returned error is shown under the field.
	Check func(string) error
}

func (p Prompt) validate(s string) error {
	if p.Required && strings.TrimSpace(s) == "" {
		return stderrors.New(p.Message + " is required")
	}
	if p.Check != nil && s != "" {
		return p.Check(s)
	}
	return nil
}

// Ask shows p and returns the trimmed answer. Secrets are returned as typed.
func Ask(p Prompt) (string, error) {
	var value string
	field := huh.NewInput().
		Title(p.Message).
		Placeholder(p.Placeholder).
		Validate(p.validate).
		Value(&value)
	if p.Secret {
		field = field.EchoMode(huh.EchoModePassword)
	}

	if err := huh.NewForm(huh.NewGroup(field)).Run(); err != nil {
		return "", formError(err)
	}
	if p.Secret {
		return value, nil
	}
	return strings.TrimSpace(value), nil
}

// Confirm asks a yes/no question with the cursor on def.
func Confirm(message string, def bool) (bool, error) {
	yes := def
	field := huh.NewConfirm().Title(message).Affirmative("Yes").Negative("No").Value(&yes)
	if err := huh.NewForm(huh.NewGroup(field)).Run(); err != nil {
		return false, formError(err)
	}
	return yes, nil
}

// formError turns Ctrl+C or Esc into a validation error so the command
// exits with a usage status instead of a bare "user aborted".
func formError(err error) error {
	if stderrors.Is(err, huh.ErrUserAborted) {
		return errors.New(errors.ErrCodeValidationRequired, "prompt cancelled").
			WithSuggestion("Pass the value as a flag to skip the prompt")
	}
	return errors.Wrap(errors.ErrCodeValidationInvalid, "prompt failed", err)
}

// Environment variables set by common CI systems.
var ciEnvVars = []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "BUILDKITE", "CIRCLECI"}

func InCI() bool {
	for _, name := range ciEnvVars {
		if os.Getenv(name) != "" {
			return true
		}
	}
	return false
}

// ShouldPrompt reports whether padup may ask questions: stdin is a terminal
// and no CI system is driving the run.
func ShouldPrompt() bool {
	if InCI() {
		return false
	}
	fi, err := os.Stdin.Stat()
	return err == nil && fi.Mode()&os.ModeCharDevice != 0
}
