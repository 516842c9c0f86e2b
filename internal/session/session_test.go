package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/storage"
)

func TestStore_SetGetClear(t *testing.T) {
	ctx := context.Background()
	store := NewStore(storage.NewMemoryStore())

	_, ok := store.Get(ctx)
	assert.False(t, ok, "fresh store has no session")

	want := &Session{
		Token: "tok-1",
		User:  User{ID: "42", Name: "Ada", Email: "ada@example.com", Role: RoleAdmin},
	}
	require.NoError(t, store.Set(ctx, want))

	got, ok := store.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, want, got)

	require.NoError(t, store.Clear(ctx))
	_, ok = store.Get(ctx)
	assert.False(t, ok)
}

func TestStore_SetRejectsEmptyToken(t *testing.T) {
	store := NewStore(storage.NewMemoryStore())

	err := store.Set(context.Background(), &Session{User: User{ID: "1"}})
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeValidationRequired, errors.CodeOf(err))

	err = store.Set(context.Background(), nil)
	require.Error(t, err)
}

func TestStore_HalfPresentReadsAsAbsent(t *testing.T) {
	tests := []struct {
		name string
		seed map[string]string
	}{
		{"token only", map[string]string{storage.KeyToken: "t"}},
		{"user only", map[string]string{storage.KeyUser: `{"id":"1","role":"user"}`}},
		{"empty token", map[string]string{storage.KeyToken: "", storage.KeyUser: `{"id":"1"}`}},
		{"malformed user", map[string]string{storage.KeyToken: "t", storage.KeyUser: "{oops"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := storage.NewMemoryStore()
			for k, v := range tt.seed {
				require.NoError(t, kv.Set(k, v))
			}

			_, ok := NewStore(kv).Get(context.Background())
			assert.False(t, ok)
		})
	}
}

func TestUser_UnmarshalNumericID(t *testing.T) {
	kv := storage.NewMemoryStore()
	require.NoError(t, kv.Set(storage.KeyToken, "t"))
	require.NoError(t, kv.Set(storage.KeyUser, `{"id":17,"name":"Bo","email":"bo@example.com","role":"superadmin"}`))

	sess, ok := NewStore(kv).Get(context.Background())
	require.True(t, ok)
	assert.Equal(t, "17", sess.User.ID)
	assert.Equal(t, RoleSuperAdmin, sess.User.Role)
}

func TestParseRole(t *testing.T) {
	for _, r := range Roles() {
		got, err := ParseRole(string(r))
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	_, err := ParseRole("owner")
	require.Error(t, err)
	assert.Equal(t, errors.ErrCodeValidationInvalid, errors.CodeOf(err))
}

// TestStore_RoundTripProperty checks that Set followed by Get returns the same
// session and Clear always leaves the store empty.
func TestStore_RoundTripProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		ctx := context.Background()
		store := NewStore(storage.NewMemoryStore())

		sess := &Session{
			Token: rapid.StringMatching(`[A-Za-z0-9._-]{1,64}`).Draw(t, "token"),
			User: User{
				ID:    rapid.StringMatching(`[a-f0-9]{0,24}`).Draw(t, "id"),
				Name:  rapid.StringMatching(`[A-Za-z ]{0,32}`).Draw(t, "name"),
				Email: rapid.StringMatching(`[a-z]{1,8}@[a-z]{1,8}\.com`).Draw(t, "email"),
				Role:  rapid.SampledFrom(Roles()).Draw(t, "role"),
			},
		}

		if err := store.Set(ctx, sess); err != nil {
			t.Fatalf("set: %v", err)
		}
		got, ok := store.Get(ctx)
		if !ok {
			t.Fatalf("session absent after set")
		}
		if *got != *sess {
			t.Fatalf("round trip mismatch: got %+v, want %+v", got, sess)
		}

		if err := store.Clear(ctx); err != nil {
			t.Fatalf("clear: %v", err)
		}
		if _, ok := store.Get(ctx); ok {
			t.Fatalf("session present after clear")
		}
	})
}
