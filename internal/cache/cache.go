// Package cache memoizes formatted weather output keyed by rounded
// coordinates, request kind, and variant.
package cache

import (
	"fmt"
	"sync"
	"time"

	"github.com/mcptools/weather-mcp/internal/weather"
)

// entry is owned exclusively by the cache; values are copied in and out.
type entry struct {
	insertedAt time.Time
	text       string
}

// Cache is a concurrency-safe in-memory TTL cache for formatted weather
// text. Entries are evicted lazily on Get and proactively by Cleanup.
// The key space is unbounded; practical cardinality (rounded coordinates
// by kind by variant) stays small, so no entry-count cap is enforced.
// Reusing this for high place-count workloads would need one.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

// Option configures a Cache.
type Option func(*Cache)

// WithNow replaces the clock. Used in tests to simulate expiry.
func WithNow(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a Cache whose entries expire ttl after insertion. The TTL
// is fixed for the lifetime of the instance.
func New(ttl time.Duration, opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key derives the cache key. Coordinates are rounded to 4 decimal places
// (roughly 11 m) so near-identical coordinates collapse onto one entry.
func Key(coord weather.Coordinate, kind, variant string) string {
	if variant == "" {
		return fmt.Sprintf("%s:%.4f:%.4f", kind, coord.Lat, coord.Lon)
	}
	return fmt.Sprintf("%s:%s:%.4f:%.4f", kind, variant, coord.Lat, coord.Lon)
}

// Get returns the stored text for the key if it has not outlived the TTL.
// A stale entry is removed as a side effect and reported as absent.
func (c *Cache) Get(coord weather.Coordinate, kind, variant string) (string, bool) {
	key := Key(coord, kind, variant)

	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().Sub(e.insertedAt) > c.ttl {
		delete(c.entries, key)
		return "", false
	}
	return e.text, true
}

// Set stores text for the key, replacing any existing entry and its
// insertion time.
func (c *Cache) Set(coord weather.Coordinate, kind, variant, text string) {
	key := Key(coord, kind, variant)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry{insertedAt: c.now(), text: text}
}

// Clear drops all entries.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry)
}

// Cleanup sweeps out every entry older than the TTL and reports how many
// were evicted. Callers that want proactive memory reclamation run this
// periodically instead of relying on lazy eviction in Get.
func (c *Cache) Cleanup() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	evicted := 0
	for key, e := range c.entries {
		if now.Sub(e.insertedAt) > c.ttl {
			delete(c.entries, key)
			evicted++
		}
	}
	return evicted
}

// Len reports the number of entries, expired or not.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
