package valuation

import (
	"errors"
	"testing"
	"time"

	"azt-exchange/src/config"
	"azt-exchange/src/logger"
	"azt-exchange/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

type stubNetwork struct {
	body  []byte
	err   error
	calls int
}

func (n *stubNetwork) Get(url string, params map[string]string) ([]byte, error) {
	n.calls++
	return n.body, n.err
}

// -----------------------------------------------------------------------------

func testFeed(network *stubNetwork) *RankedFeed {
	cfg := &config.Config{MConfig: &models.MConfig{}}
	cfg.Feed.URL = "http://feed.test/authors"
	cfg.Feed.CacheTTLMinutes = 5

	return NewRankedFeed(cfg, logger.NewLogger("ERROR", "test"), network)
}

// -----------------------------------------------------------------------------

func TestConvertDownloadsToPrice(t *testing.T) {
	// (1e6/10000)*0.3 = 30, (5000/10)*0.7 = 350, (30+350)/10 = 38
	assert.Equal(t, 38.0, ConvertDownloadsToPrice(1000000, 5000))

	// Tiny authors hit the price floor
	assert.Equal(t, 1.0, ConvertDownloadsToPrice(100, 1))

	assert.Equal(t, int64(10000), EstimateVolume(1000000))
	assert.Equal(t, int64(0), EstimateVolume(99))
}

// -----------------------------------------------------------------------------

func TestFairValueMatchesCaseInsensitively(t *testing.T) {
	network := &stubNetwork{
		body: []byte(`{"authors":[{"name":"AztechMC","downloadCount":1000000,"downloadRate":5000}]}`),
	}
	feed := testFeed(network)

	quote, ok := feed.FairValue(models.MAuthor{Ticker: "AZT", CurseforgeID: "aztechmc"})
	require.True(t, ok)
	assert.Equal(t, "AZT", quote.Ticker)
	assert.Equal(t, 38.0, quote.Price)
	assert.Equal(t, int64(10000), quote.Volume)

	_, ok = feed.FairValue(models.MAuthor{Ticker: "XXX", CurseforgeID: "someoneelse"})
	assert.False(t, ok)
}

// -----------------------------------------------------------------------------

func TestFairValueCachesWithinTTL(t *testing.T) {
	network := &stubNetwork{
		body: []byte(`{"authors":[{"name":"aztechmc","downloadCount":1000000,"downloadRate":5000}]}`),
	}
	feed := testFeed(network)

	now := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	feed.now = func() time.Time { return now }

	author := models.MAuthor{Ticker: "AZT", CurseforgeID: "aztechmc"}

	for i := 0; i < 5; i++ {
		_, ok := feed.FairValue(author)
		require.True(t, ok)
	}
	assert.Equal(t, 1, network.calls, "one bulk fetch covers every lookup inside the TTL")

	// Past the TTL a single refresh happens
	now = now.Add(6 * time.Minute)
	_, ok := feed.FairValue(author)
	require.True(t, ok)
	assert.Equal(t, 2, network.calls)
}

// -----------------------------------------------------------------------------

func TestFairValueDegradesToUnavailable(t *testing.T) {
	network := &stubNetwork{err: errors.New("connection refused")}
	feed := testFeed(network)

	_, ok := feed.FairValue(models.MAuthor{Ticker: "AZT", CurseforgeID: "aztechmc"})
	assert.False(t, ok)

	// Malformed body is unavailable too, never a panic or error
	network.err = nil
	network.body = []byte("not json")
	_, ok = feed.FairValue(models.MAuthor{Ticker: "AZT", CurseforgeID: "aztechmc"})
	assert.False(t, ok)
}
