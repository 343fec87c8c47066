package seriesstore

import (
	"math"
	"testing"
	"time"

	"azt-exchange/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func sampleAt(t time.Time, price float64) models.MSample {
	return models.MSample{Ticker: "AZT", Timestamp: t, Price: price, Volume: 1}
}

// -----------------------------------------------------------------------------

func TestAppendEvictsOldestAtRetentionLimit(t *testing.T) {
	store := NewSeriesStore(3, 100)
	base := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		store.Append("AZT", sampleAt(base.Add(time.Duration(i)*time.Minute), float64(10+i)))
	}

	all := store.All("AZT")
	require.Len(t, all, 3)
	assert.Equal(t, 12.0, all[0].Price)
	assert.Equal(t, 14.0, all[2].Price)
}

// -----------------------------------------------------------------------------

func TestLatestValidPriceSkipsCorruptTail(t *testing.T) {
	store := NewSeriesStore(10, 100)
	base := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	store.Append("AZT", sampleAt(base, 55.5))
	store.Append("AZT", sampleAt(base.Add(time.Minute), math.NaN()))
	store.Append("AZT", sampleAt(base.Add(2*time.Minute), math.Inf(1)))
	store.Append("AZT", sampleAt(base.Add(3*time.Minute), -3))

	assert.Equal(t, 55.5, store.LatestValidPrice("AZT"))
}

// -----------------------------------------------------------------------------

func TestLatestValidPriceDefaults(t *testing.T) {
	store := NewSeriesStore(10, 100)

	// Unknown ticker
	assert.Equal(t, 100.0, store.LatestValidPrice("AZT"))

	// Fully corrupt series
	base := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	store.Append("AZT", sampleAt(base, math.NaN()))
	assert.Equal(t, 100.0, store.LatestValidPrice("AZT"))
}

// -----------------------------------------------------------------------------

func TestWindowReturnsSamplesSince(t *testing.T) {
	store := NewSeriesStore(10, 100)
	base := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		store.Append("AZT", sampleAt(base.Add(time.Duration(i)*time.Minute), float64(10+i)))
	}

	window := store.Window("AZT", base.Add(2*time.Minute))
	require.Len(t, window, 3)
	assert.Equal(t, 12.0, window[0].Price)
	assert.Equal(t, 14.0, window[2].Price)

	assert.Empty(t, store.Window("AZT", base.Add(time.Hour)))
	assert.Empty(t, store.Window("UNKNOWN", base))
}

// -----------------------------------------------------------------------------

func TestReplaceAllKeepsNewestWithinRetention(t *testing.T) {
	store := NewSeriesStore(2, 100)
	base := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	store.ReplaceAll("AZT", []models.MSample{
		sampleAt(base, 1),
		sampleAt(base.Add(time.Minute), 2),
		sampleAt(base.Add(2*time.Minute), 3),
	})

	all := store.All("AZT")
	require.Len(t, all, 2)
	assert.Equal(t, 2.0, all[0].Price)
	assert.Equal(t, 3.0, all[1].Price)
}

// -----------------------------------------------------------------------------

func TestLatestPricesSnapshotsNewestSamplePerTicker(t *testing.T) {
	store := NewSeriesStore(10, 100)
	base := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	store.Append("AZT", sampleAt(base, 10))
	store.Append("AZT", sampleAt(base.Add(time.Minute), 11))
	store.Append("CTD", models.MSample{Ticker: "CTD", Timestamp: base, Price: 20})

	prices := store.LatestPrices()
	require.Len(t, prices, 2)
	assert.Equal(t, 11.0, prices["AZT"].Price)
	assert.Equal(t, 20.0, prices["CTD"].Price)

	assert.True(t, store.IsEmpty("UNKNOWN"))
	assert.False(t, store.IsEmpty("AZT"))
	assert.ElementsMatch(t, []string{"AZT", "CTD"}, store.Tickers())
}
