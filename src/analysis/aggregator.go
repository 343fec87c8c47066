package analysis

import (
	"fmt"
	"time"

	"azt-exchange/src/analysis/core"
	"azt-exchange/src/models"
)

// -----------------------------------------------------------------------------
// Granularities
// -----------------------------------------------------------------------------

type Granularity string

const (
	GranularityMinute Granularity = "minute"
	GranularityHour   Granularity = "hour"
	GranularityDay    Granularity = "day"
	GranularityMonth  Granularity = "month"
)

// ParseGranularity validates a granularity query value.
func ParseGranularity(s string) (Granularity, error) {
	switch Granularity(s) {
	case GranularityMinute, GranularityHour, GranularityDay, GranularityMonth:
		return Granularity(s), nil
	}
	return "", fmt.Errorf("invalid granularity: %s", s)
}

// -----------------------------------------------------------------------------

// bucketKey truncates a timestamp to the granularity's calendar bucket.
func bucketKey(t time.Time, g Granularity) string {
	switch g {
	case GranularityHour:
		return t.Format("2006-01-02-15")
	case GranularityDay:
		return t.Format("2006-01-02")
	case GranularityMonth:
		return t.Format("2006-01")
	}
	return ""
}

// -----------------------------------------------------------------------------

// Aggregate buckets a chronological sample sequence at the requested
// granularity. Minute granularity is the native resolution and passes the
// input through unchanged; any other granularity yields candles.
func Aggregate(samples []models.MSample, g Granularity) interface{} {
	if g == GranularityMinute {
		return samples
	}
	return AggregateCandles(samples, g)
}

// -----------------------------------------------------------------------------

// AggregateCandles folds a chronological sample sequence into OHLC candles.
// The input is assumed pre-sorted ascending by timestamp, so a single
// left-to-right scan suffices: a bucket closes only when the calendar key
// changes, and the final partial bucket is flushed at end-of-input.
func AggregateCandles(samples []models.MSample, g Granularity) []models.MCandle {
	if len(samples) == 0 {
		return []models.MCandle{}
	}

	var aggregated []models.MCandle
	var group []models.MSample
	currentKey := ""

	flush := func() {
		if len(group) == 0 {
			return
		}

		prices := make([]float64, len(group))
		var volume int64
		for i, s := range group {
			prices[i] = s.Price
			volume += s.Volume
		}

		ohlc := core.ComputeOHLC(prices)
		first := group[0]

		aggregated = append(aggregated, models.MCandle{
			Timestamp: first.Timestamp,
			Price:     ohlc.Close,
			Volume:    volume,
			Change:    ohlc.Close - ohlc.Open,
			High:      ohlc.High,
			Low:       ohlc.Low,
			Open:      ohlc.Open,
			Close:     ohlc.Close,
			Count:     len(group),
		})
	}

	for _, s := range samples {
		key := bucketKey(s.Timestamp, g)
		if key != currentKey {
			flush()
			currentKey = key
			group = group[:0]
		}
		group = append(group, s)
	}

	// Flush the trailing bucket; a stream ending mid-bucket still counts.
	flush()

	return aggregated
}

// -----------------------------------------------------------------------------

// AggregatePortfolio is the portfolio-value variant of AggregateCandles.
// High/low/open/close are computed over Value; cash and holdings value come
// from the last point of each bucket since they need no high/low treatment.
func AggregatePortfolio(points []models.MPortfolioPoint, g Granularity) []models.MPortfolioCandle {
	if len(points) == 0 {
		return []models.MPortfolioCandle{}
	}

	var aggregated []models.MPortfolioCandle
	var group []models.MPortfolioPoint
	currentKey := ""

	flush := func() {
		if len(group) == 0 {
			return
		}

		values := make([]float64, len(group))
		for i, p := range group {
			values[i] = p.Value
		}

		ohlc := core.ComputeOHLC(values)
		first := group[0]
		last := group[len(group)-1]

		aggregated = append(aggregated, models.MPortfolioCandle{
			Timestamp:     first.Timestamp,
			Value:         last.Value,
			Cash:          last.Cash,
			HoldingsValue: last.HoldingsValue,
			High:          ohlc.High,
			Low:           ohlc.Low,
			Open:          ohlc.Open,
			Close:         ohlc.Close,
			Count:         len(group),
		})
	}

	for _, p := range points {
		key := bucketKey(p.Timestamp, g)
		if key != currentKey {
			flush()
			currentKey = key
			group = group[:0]
		}
		group = append(group, p)
	}

	flush()

	return aggregated
}
