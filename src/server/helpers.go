package server

import (
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// -----------------------------------------------------------------------------
// History response cache. Aggregating a year of samples on every request is
// wasteful when the underlying series only gains one point per minute, so
// responses are reused for a short TTL. Expired entries are swept lazily
// once the cache grows past maxEntries.
// -----------------------------------------------------------------------------

type cacheEntry struct {
	data     gin.H
	storedAt time.Time
}

type responseCache struct {
	mu         sync.Mutex
	entries    map[string]cacheEntry
	ttl        time.Duration
	maxEntries int

	// Injectable clock for tests
	now func() time.Time
}

// -----------------------------------------------------------------------------

func newResponseCache(ttl time.Duration, maxEntries int) *responseCache {
	return &responseCache{
		entries:    make(map[string]cacheEntry),
		ttl:        ttl,
		maxEntries: maxEntries,
		now:        time.Now,
	}
}

// -----------------------------------------------------------------------------

func (c *responseCache) get(key string) (gin.H, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.storedAt) >= c.ttl {
		delete(c.entries, key)
		return nil, false
	}
	return entry.data, true
}

// -----------------------------------------------------------------------------

func (c *responseCache) put(key string, data gin.H) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{data: data, storedAt: c.now()}

	if len(c.entries) > c.maxEntries {
		c.cleanupLocked()
	}
}

// -----------------------------------------------------------------------------

// cleanupLocked drops expired entries. Callers hold c.mu.
func (c *responseCache) cleanupLocked() {
	cutoff := c.now().Add(-c.ttl)
	for key, entry := range c.entries {
		if entry.storedAt.Before(cutoff) {
			delete(c.entries, key)
		}
	}
}
