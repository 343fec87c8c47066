package models

import "time"

// MCandle is one aggregated OHLC bucket of a price series.
// Price mirrors Close so candle payloads stay drop-in compatible with raw
// sample payloads on the history endpoint.
type MCandle struct {
	Timestamp time.Time `json:"timestamp"` // timestamp of the first sample in the bucket
	Price     float64   `json:"price"`
	Volume    int64     `json:"volume"`
	Change    float64   `json:"change"` // close - open
	High      float64   `json:"high"`
	Low       float64   `json:"low"`
	Open      float64   `json:"open"`
	Close     float64   `json:"close"`
	Count     int       `json:"count"` // number of raw samples folded in
}
