package ux

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/padup/padup/internal/errors"
)

func TestEnhanceError_CodeHint(t *testing.T) {
	err := errors.NewAuthRequiredError("/admin/kyc")
	err.Suggestions = nil

	enhanced := EnhanceError(fmt.Errorf("open page: %w", err))
	assert.Contains(t, enhanced.Error(), "Suggestions:\n  • Log in with 'padup login'")
	assert.Equal(t, errors.ErrCodeAuthRequired, errors.CodeOf(enhanced), "the code survives the hint")
}

func TestEnhanceError_KeepsExistingSuggestions(t *testing.T) {
	err := errors.New(errors.ErrCodeAPINetwork, "API unreachable").WithSuggestion("Try again later")
	assert.Same(t, err, EnhanceError(err))
}

func TestEnhanceError_SystemHints(t *testing.T) {
	tests := map[string]string{
		"open id.pdf: no such file or directory":      "uploads need an existing file",
		"open storage.json: permission denied":        "Check the permissions",
		"dial tcp 127.0.0.1:5000: connection refused": "padup config get api.base_url",
	}
	for msg, hint := range tests {
		enhanced := EnhanceError(stderrors.New(msg))
		assert.Contains(t, enhanced.Error(), msg)
		assert.Contains(t, enhanced.Error(), hint)
	}
}

func TestEnhanceError_Unknown(t *testing.T) {
	err := stderrors.New("something odd")
	assert.Same(t, err, EnhanceError(err))

	coded := errors.New(errors.ErrCodeValidationMismatch, "Passwords do not match")
	assert.Same(t, coded, EnhanceError(coded), "codes without a hint are unchanged")

	assert.NoError(t, EnhanceError(nil))
}

func TestUserMessage(t *testing.T) {
	assert.Empty(t, UserMessage(nil))
	assert.Equal(t, "boom", UserMessage(stderrors.New("boom")))

	coded := errors.Wrap(errors.ErrCodeAPIResponse, "Invalid credentials", stderrors.New("status 400"))
	assert.Equal(t, "Invalid credentials", UserMessage(fmt.Errorf("login: %w", coded)))
}
