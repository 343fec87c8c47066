package analysis

import (
	"math"
	"time"

	"azt-exchange/src/analysis/core"
	"azt-exchange/src/models"
)

// -----------------------------------------------------------------------------
// Synthetic OHLC
// -----------------------------------------------------------------------------

// MSyntheticCandle decorates a raw sample with a deterministic candle
// envelope for chart clients that insist on candlesticks at minute
// resolution, where only a single price per bar exists.
type MSyntheticCandle struct {
	Timestamp  time.Time `json:"timestamp"`
	Price      float64   `json:"price"`
	Volume     int64     `json:"volume"`
	Change     float64   `json:"change"`
	High       float64   `json:"high"`
	Low        float64   `json:"low"`
	Open       float64   `json:"open"`
	Close      float64   `json:"close"`
	DataSource string    `json:"dataSource,omitempty"`
}

// SynthesizeOHLC widens single-price samples into candles. The envelope is
// derived from the price itself (no RNG), so repeated requests for the same
// series render identically. Presentation only: nothing synthesized here is
// ever written back to storage.
func SynthesizeOHLC(samples []models.MSample) []MSyntheticCandle {
	candles := make([]MSyntheticCandle, 0, len(samples))

	for i, s := range samples {
		seed := (int64(s.Price*1000) + int64(i)) % 1000
		if seed < 0 {
			seed = -seed
		}
		volatility := math.Abs(s.Price * 0.02)

		high := s.Price + (float64(seed)/1000)*volatility
		low := s.Price - (float64(999-seed)/1000)*volatility

		prev := s.Price
		if i > 0 {
			prev = samples[i-1].Price
		}
		open := prev + (float64(seed%100)/100-0.5)*volatility*0.5
		close := s.Price

		// Keep the envelope self-consistent after the open shift.
		open = math.Max(open, low)
		high = math.Max(high, math.Max(open, close))
		low = math.Min(low, math.Min(open, close))

		candles = append(candles, MSyntheticCandle{
			Timestamp:  s.Timestamp,
			Price:      s.Price,
			Volume:     s.Volume,
			Change:     s.Change,
			High:       core.Round2(high),
			Low:        core.Round2(low),
			Open:       core.Round2(open),
			Close:      core.Round2(close),
			DataSource: s.DataSource,
		})
	}

	return candles
}
