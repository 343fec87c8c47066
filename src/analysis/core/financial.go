package core

import "math"

// -----------------------------------------------------------------------------

// OHLC holds open/high/low/close values computed over one bucket.
type OHLC struct {
	Open  float64
	High  float64
	Low   float64
	Close float64
}

// ComputeOHLC calculates OHLC from a chronological price array.
func ComputeOHLC(prices []float64) OHLC {
	if len(prices) == 0 {
		return OHLC{}
	}

	result := OHLC{
		Open:  prices[0],
		Close: prices[len(prices)-1],
		High:  prices[0],
		Low:   prices[0],
	}

	for _, p := range prices {
		if p > result.High {
			result.High = p
		}
		if p < result.Low {
			result.Low = p
		}
	}

	return result
}

// -----------------------------------------------------------------------------

// ChangePercent calculates percentage change relative to previous.
func ChangePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0.0
	}
	return (current - previous) / previous * 100
}

// -----------------------------------------------------------------------------

// IsValidPrice reports whether a computed price may be persisted.
// NaN, infinities and non-positive values are all rejected.
func IsValidPrice(price float64) bool {
	return !math.IsNaN(price) && !math.IsInf(price, 0) && price > 0
}

// -----------------------------------------------------------------------------

// Round2 rounds to two decimal places for presentation.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
