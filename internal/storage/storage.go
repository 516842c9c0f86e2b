// Package storage persists small client-side values (session token, cached
// listings, reset context) in a single key/value document.
//
// Every Store implementation commits multi-key updates atomically: a reader
// observes either all of an Update's writes or none of them.
package storage

// Well-known keys.
const (
	KeyToken               = "token"
	KeyUser                = "user"
	KeyResetToken          = "resetToken"
	KeyResetEmail          = "resetEmail"
	KeyCachedShortlets     = "cachedShortlets"
	KeyCachedShortletsSum  = "cachedShortletsChecksum"
	KeyAuthPromptDismissed = "authPromptDismissed"
)

// Store is a string key/value store.
type Store interface {
	// Get returns the value for key and whether it was present.
	Get(key string) (string, bool)

	// Set stores a single value.
	Set(key, value string) error

	// Delete removes keys. Missing keys are ignored.
	Delete(keys ...string) error

	// View runs fn against a consistent snapshot. Writes made by fn are discarded.
	View(fn func(tx Tx) error) error

	// Update applies fn to a transaction and commits all of its writes at once.
	// If fn returns an error nothing is committed.
	Update(fn func(tx Tx) error) error
}

// Tx is the write view handed to Store.Update.
type Tx interface {
	Get(key string) (string, bool)
	Set(key, value string)
	Delete(keys ...string)
}

// mapTx stages writes over a snapshot.
type mapTx struct {
	data map[string]string
}

func newMapTx(snapshot map[string]string) *mapTx {
	data := make(map[string]string, len(snapshot))
	for k, v := range snapshot {
		data[k] = v
	}
	return &mapTx{data: data}
}

func (t *mapTx) Get(key string) (string, bool) {
	v, ok := t.data[key]
	return v, ok
}

func (t *mapTx) Set(key, value string) {
	t.data[key] = value
}

func (t *mapTx) Delete(keys ...string) {
	for _, k := range keys {
		delete(t.data, k)
	}
}
