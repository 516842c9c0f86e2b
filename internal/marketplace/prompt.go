package marketplace

import (
	"context"

	"github.com/padup/padup/internal/session"
	"github.com/padup/padup/internal/storage"
)

// AuthPrompt is the one-time invitation to sign up shown to anonymous
// visitors. Once dismissed it stays dismissed.
type AuthPrompt struct {
	kv       storage.Store
	sessions session.Store
}

func NewAuthPrompt(kv storage.Store, sessions session.Store) *AuthPrompt {
	return &AuthPrompt{kv: kv, sessions: sessions}
}

// ShouldShow reports whether the prompt should be displayed.
func (p *AuthPrompt) ShouldShow(ctx context.Context) bool {
	if _, ok := p.sessions.Get(ctx); ok {
		return false
	}
	v, _ := p.kv.Get(storage.KeyAuthPromptDismissed)
	return v != "true"
}

// Dismiss hides the prompt for good.
func (p *AuthPrompt) Dismiss() error {
	return p.kv.Set(storage.KeyAuthPromptDismissed, "true")
}
