package analysis

import (
	"testing"
	"time"

	"azt-exchange/src/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func sampleAt(t time.Time, price float64, volume int64) models.MSample {
	return models.MSample{Ticker: "AZT", Timestamp: t, Price: price, Volume: volume}
}

// -----------------------------------------------------------------------------

func TestParseGranularity(t *testing.T) {
	for _, valid := range []string{"minute", "hour", "day", "month"} {
		g, err := ParseGranularity(valid)
		require.NoError(t, err)
		assert.Equal(t, Granularity(valid), g)
	}

	_, err := ParseGranularity("week")
	assert.Error(t, err)
}

// -----------------------------------------------------------------------------

func TestAggregateCandlesSingleHourBucket(t *testing.T) {
	base := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	samples := []models.MSample{
		sampleAt(base, 10, 5),
		sampleAt(base.Add(5*time.Minute), 12, 5),
		sampleAt(base.Add(20*time.Minute), 9, 5),
		sampleAt(base.Add(40*time.Minute), 15, 5),
	}

	candles := AggregateCandles(samples, GranularityHour)
	require.Len(t, candles, 1)

	c := candles[0]
	assert.Equal(t, base, c.Timestamp)
	assert.Equal(t, 10.0, c.Open)
	assert.Equal(t, 15.0, c.Close)
	assert.Equal(t, 15.0, c.High)
	assert.Equal(t, 9.0, c.Low)
	assert.Equal(t, int64(20), c.Volume)
	assert.Equal(t, 5.0, c.Change) // close - open
	assert.Equal(t, 4, c.Count)
	assert.Equal(t, c.Close, c.Price)
}

// -----------------------------------------------------------------------------

func TestAggregateCandlesFlushesTrailingBucket(t *testing.T) {
	base := time.Date(2025, 3, 10, 14, 50, 0, 0, time.UTC)
	samples := []models.MSample{
		sampleAt(base, 10, 1),
		sampleAt(base.Add(5*time.Minute), 11, 1),
		// Crosses into the 15:00 hour; bucket has a single sample
		sampleAt(base.Add(15*time.Minute), 20, 7),
	}

	candles := AggregateCandles(samples, GranularityHour)
	require.Len(t, candles, 2)

	assert.Equal(t, 2, candles[0].Count)
	assert.Equal(t, 11.0, candles[0].Close)

	assert.Equal(t, 1, candles[1].Count)
	assert.Equal(t, 20.0, candles[1].Open)
	assert.Equal(t, 20.0, candles[1].Close)
	assert.Equal(t, int64(7), candles[1].Volume)
}

// -----------------------------------------------------------------------------

func TestAggregateCandlesDayAndMonthKeys(t *testing.T) {
	d1 := time.Date(2025, 1, 31, 23, 0, 0, 0, time.UTC)
	d2 := time.Date(2025, 2, 1, 0, 30, 0, 0, time.UTC)
	samples := []models.MSample{
		sampleAt(d1, 10, 1),
		sampleAt(d2, 12, 1),
	}

	assert.Len(t, AggregateCandles(samples, GranularityDay), 2)
	assert.Len(t, AggregateCandles(samples, GranularityMonth), 2)

	sameMonth := []models.MSample{
		sampleAt(d2, 12, 1),
		sampleAt(d2.AddDate(0, 0, 20), 14, 1),
	}
	assert.Len(t, AggregateCandles(sameMonth, GranularityMonth), 1)
}

// -----------------------------------------------------------------------------

func TestAggregateCandlesEmptyInput(t *testing.T) {
	assert.Empty(t, AggregateCandles(nil, GranularityHour))
}

// -----------------------------------------------------------------------------

func TestAggregateMinuteIsPassthrough(t *testing.T) {
	base := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	samples := []models.MSample{
		sampleAt(base, 10, 1),
		sampleAt(base.Add(time.Minute), 11, 2),
	}

	result := Aggregate(samples, GranularityMinute)
	passthrough, ok := result.([]models.MSample)
	require.True(t, ok)
	assert.Equal(t, samples, passthrough)
}

// -----------------------------------------------------------------------------

func TestAggregatePortfolioThreadsCashFromLastPoint(t *testing.T) {
	base := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	points := []models.MPortfolioPoint{
		{Timestamp: base, Value: 1000, Cash: 500, HoldingsValue: 500},
		{Timestamp: base.Add(10 * time.Minute), Value: 1100, Cash: 500, HoldingsValue: 600},
		{Timestamp: base.Add(30 * time.Minute), Value: 900, Cash: 450, HoldingsValue: 450},
	}

	candles := AggregatePortfolio(points, GranularityHour)
	require.Len(t, candles, 1)

	c := candles[0]
	assert.Equal(t, base, c.Timestamp)
	assert.Equal(t, 1000.0, c.Open)
	assert.Equal(t, 900.0, c.Close)
	assert.Equal(t, 1100.0, c.High)
	assert.Equal(t, 900.0, c.Low)
	// Cash and holdings value come from the bucket's last point
	assert.Equal(t, 450.0, c.Cash)
	assert.Equal(t, 450.0, c.HoldingsValue)
	assert.Equal(t, 900.0, c.Value)
	assert.Equal(t, 3, c.Count)
}
