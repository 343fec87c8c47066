package server

import (
	"fmt"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func TestResponseCacheHitWithinTTL(t *testing.T) {
	cache := newResponseCache(10*time.Minute, 100)

	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.put("AZT-1D-minute", gin.H{"ticker": "AZT"})

	cached, ok := cache.get("AZT-1D-minute")
	require.True(t, ok)
	assert.Equal(t, "AZT", cached["ticker"])

	_, ok = cache.get("missing")
	assert.False(t, ok)
}

// -----------------------------------------------------------------------------

func TestResponseCacheExpires(t *testing.T) {
	cache := newResponseCache(10*time.Minute, 100)

	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	cache.put("key", gin.H{"v": 1})

	now = now.Add(11 * time.Minute)
	_, ok := cache.get("key")
	assert.False(t, ok)
}

// -----------------------------------------------------------------------------

func TestResponseCacheSweepsExpiredPastMaxEntries(t *testing.T) {
	cache := newResponseCache(10*time.Minute, 5)

	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		cache.put(fmt.Sprintf("old-%d", i), gin.H{"v": i})
	}

	// The old entries expire; the next put triggers the sweep
	now = now.Add(11 * time.Minute)
	cache.put("fresh", gin.H{"v": "new"})

	assert.Len(t, cache.entries, 1)
	_, ok := cache.get("fresh")
	assert.True(t, ok)
}
