// Package session holds the signed-in identity: the bearer token issued by the
// API and the cached user profile that came with it.
package session

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/storage"
)

// Role is the account role reported by the API.
type Role string

const (
	RoleUser       Role = "user"       // Guests and hosts browsing the marketplace
	RoleAdmin      Role = "admin"      // Property owners managing listings
	RoleSuperAdmin Role = "superadmin" // Platform operators
	RoleMaster     Role = "master"     // Satisfies every role requirement
)

// BypassRole is the role that passes every route requirement unconditionally.
const BypassRole = RoleMaster

// Roles returns the closed set of known roles.
func Roles() []Role {
	return []Role{RoleUser, RoleAdmin, RoleSuperAdmin, RoleMaster}
}

// Known reports whether r is one of the closed set of roles.
func (r Role) Known() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin, RoleMaster:
		return true
	default:
		return false
	}
}

func (r Role) String() string {
	return string(r)
}

// ParseRole converts a role string. Unknown strings are rejected.
func ParseRole(s string) (Role, error) {
	r := Role(strings.TrimSpace(s))
	if !r.Known() {
		return "", errors.New(errors.ErrCodeValidationInvalid, "unknown role: "+s).
			WithSuggestion("Use one of: user, admin, superadmin, master")
	}
	return r, nil
}

// User is the cached profile of the signed-in account.
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

// UnmarshalJSON accepts numeric or string IDs; the API has returned both.
func (u *User) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID    json.RawMessage `json:"id"`
		Name  string          `json:"name"`
		Email string          `json:"email"`
		Role  Role            `json:"role"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	u.Name, u.Email, u.Role = raw.Name, raw.Email, raw.Role
	u.ID = ""
	if len(raw.ID) > 0 && string(raw.ID) != "null" {
		var s string
		if err := json.Unmarshal(raw.ID, &s); err == nil {
			u.ID = s
		} else {
			u.ID = strings.TrimSpace(string(raw.ID))
		}
	}
	return nil
}

// Session pairs a bearer token with the user it was issued to.
type Session struct {
	Token string
	User  User
}

// Store reads and writes the session. Token and user are always written and
// removed together; a half-present session reads as absent.
type Store interface {
	// Get returns the current session. It never fails: missing or malformed
	// data reads as absent.
	Get(ctx context.Context) (*Session, bool)

	// Set persists token and user together.
	Set(ctx context.Context, s *Session) error

	// Clear removes token and user together.
	Clear(ctx context.Context) error
}

// StorageStore keeps the session in a storage.Store under the token and user keys.
type StorageStore struct {
	kv storage.Store
}

// NewStore creates a Store on top of kv.
func NewStore(kv storage.Store) *StorageStore {
	return &StorageStore{kv: kv}
}

func (s *StorageStore) Get(ctx context.Context) (*Session, bool) {
	var (
		token, rawUser string
		okTok, okUser  bool
	)
	_ = s.kv.View(func(tx storage.Tx) error {
		token, okTok = tx.Get(storage.KeyToken)
		rawUser, okUser = tx.Get(storage.KeyUser)
		return nil
	})
	if !okTok || !okUser || token == "" {
		return nil, false
	}

	var u User
	if err := json.Unmarshal([]byte(rawUser), &u); err != nil {
		return nil, false
	}
	return &Session{Token: token, User: u}, true
}

func (s *StorageStore) Set(ctx context.Context, sess *Session) error {
	if sess == nil || sess.Token == "" {
		return errors.New(errors.ErrCodeValidationRequired, "session token cannot be empty")
	}

	rawUser, err := json.Marshal(sess.User)
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageWrite, "failed to encode user", err)
	}

	return s.kv.Update(func(tx storage.Tx) error {
		tx.Set(storage.KeyToken, sess.Token)
		tx.Set(storage.KeyUser, string(rawUser))
		return nil
	})
}

func (s *StorageStore) Clear(ctx context.Context) error {
	return s.kv.Update(func(tx storage.Tx) error {
		tx.Delete(storage.KeyToken, storage.KeyUser)
		return nil
	})
}
