package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/padup/padup/internal/errors"
	"github.com/padup/padup/internal/log"
)

// FileStore keeps values in a JSON object on disk.
//
// The file is re-read on every call so that two padup processes sharing a
// home directory see each other's writes. Writes go to a temporary file that
// is renamed over the original.
type FileStore struct {
	path   string
	logger *log.Logger

	mu sync.Mutex
}

// NewFileStore creates a store backed by path. The file and its parent
// directory are created on first write.
func NewFileStore(path string, logger *log.Logger) *FileStore {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &FileStore{
		path:   path,
		logger: logger.With("component", "storage", "path", path),
	}
}

// Path returns the backing file path.
func (f *FileStore) Path() string {
	return f.path
}

func (f *FileStore) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.load()[key]
	return v, ok
}

func (f *FileStore) Set(key, value string) error {
	return f.Update(func(tx Tx) error {
		tx.Set(key, value)
		return nil
	})
}

func (f *FileStore) Delete(keys ...string) error {
	return f.Update(func(tx Tx) error {
		tx.Delete(keys...)
		return nil
	})
}

func (f *FileStore) View(fn func(tx Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(newMapTx(f.load()))
}

func (f *FileStore) Update(fn func(tx Tx) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	tx := newMapTx(f.load())
	if err := fn(tx); err != nil {
		return err
	}
	return f.save(tx.data)
}

// load reads the document. A missing or unreadable file is treated as empty.
func (f *FileStore) load() map[string]string {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warn("storage unreadable, treating as empty", "error", err)
		}
		return map[string]string{}
	}
	if len(data) == 0 {
		return map[string]string{}
	}

	var doc map[string]string
	if err := json.Unmarshal(data, &doc); err != nil {
		f.logger.Warn("storage corrupt, treating as empty", "error", err)
		return map[string]string{}
	}
	if doc == nil {
		doc = map[string]string{}
	}
	return doc
}

func (f *FileStore) save(doc map[string]string) error {
	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(errors.ErrCodeStorageWrite, fmt.Sprintf("failed to create %s", dir), err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageWrite, "failed to encode storage", err)
	}

	tmp, err := os.CreateTemp(dir, ".storage-*.json")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorageWrite, "failed to create temporary file", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) //nolint:errcheck // gone after a successful rename

	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeStorageWrite, "failed to set storage permissions", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeStorageWrite, "failed to write storage", err)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeStorageWrite, "failed to write storage", err)
	}
	if err := os.Rename(tmpName, f.path); err != nil {
		return errors.Wrap(errors.ErrCodeStorageWrite, "failed to replace storage file", err)
	}
	return nil
}
