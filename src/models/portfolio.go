package models

import "time"

// MPortfolioPoint is one point of a user's portfolio-value time series.
type MPortfolioPoint struct {
	Timestamp     time.Time `json:"timestamp"`
	Value         float64   `json:"value"`
	Cash          float64   `json:"cash"`
	HoldingsValue float64   `json:"holdingsValue"`
}

// MPortfolioCandle is an aggregated bucket of portfolio-value points.
// High/low/open/close are computed over Value; Cash and HoldingsValue are
// taken from the last point of the bucket.
type MPortfolioCandle struct {
	Timestamp     time.Time `json:"timestamp"`
	Value         float64   `json:"value"`
	Cash          float64   `json:"cash"`
	HoldingsValue float64   `json:"holdingsValue"`
	High          float64   `json:"high"`
	Low           float64   `json:"low"`
	Open          float64   `json:"open"`
	Close         float64   `json:"close"`
	Count         int       `json:"count"`
}
