// Package marketplace holds the client-side behavior of the shortlet
// marketplace: the cached listing catalog, search, booking drafts, the
// community feed, owner verification and the one-time sign-up prompt.
package marketplace

import (
	"encoding/hex"
	"encoding/json"

	"github.com/zeebo/blake3"

	"github.com/padup/padup/internal/api"
	"github.com/padup/padup/internal/log"
	"github.com/padup/padup/internal/metrics"
	"github.com/padup/padup/internal/storage"
)

const shortletCache = "shortlets"

// Cache keeps the last fetched public listings. It is best effort: a
// missing, corrupt or tampered value reads as empty.
type Cache struct {
	kv      storage.Store
	metrics *metrics.Metrics
	logger  *log.Logger
}

func NewCache(kv storage.Store, m *metrics.Metrics, logger *log.Logger) *Cache {
	if logger == nil {
		logger = log.DefaultLogger()
	}
	return &Cache{kv: kv, metrics: m, logger: logger.With("component", "cache")}
}

// Load returns the cached listings.
func (c *Cache) Load() []api.Property {
	var raw, sum string
	var ok bool
	_ = c.kv.View(func(tx storage.Tx) error {
		raw, ok = tx.Get(storage.KeyCachedShortlets)
		sum, _ = tx.Get(storage.KeyCachedShortletsSum)
		return nil
	})
	if !ok || raw == "" {
		c.miss()
		return nil
	}

	// Values written before checksums existed have none; accept them if
	// they parse.
	if sum != "" && sum != checksum(raw) {
		c.logger.Warn("cached listings failed checksum, ignoring")
		c.miss()
		return nil
	}

	var props []api.Property
	if err := json.Unmarshal([]byte(raw), &props); err != nil {
		c.logger.Warn("cached listings unreadable, ignoring", "error", err)
		c.miss()
		return nil
	}
	c.hit()
	return props
}

// Save replaces the cached listings.
func (c *Cache) Save(props []api.Property) error {
	if props == nil {
		props = []api.Property{}
	}
	data, err := json.Marshal(props)
	if err != nil {
		return err
	}
	raw := string(data)
	return c.kv.Update(func(tx storage.Tx) error {
		tx.Set(storage.KeyCachedShortlets, raw)
		tx.Set(storage.KeyCachedShortletsSum, checksum(raw))
		return nil
	})
}

func checksum(raw string) string {
	sum := blake3.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:])
}

func (c *Cache) hit() {
	if c.metrics != nil {
		c.metrics.CacheHits.WithLabelValues(shortletCache).Inc()
	}
}

func (c *Cache) miss() {
	if c.metrics != nil {
		c.metrics.CacheMisses.WithLabelValues(shortletCache).Inc()
	}
}
