package models

import "time"

// Data source markers for price samples.
const (
	DataSourceStatistics = "statistics" // price derived from the download-statistics feed
	DataSourceGenerated  = "generated"  // synthetic fallback movement
)

// MSample represents one point in a stock's price time series.
type MSample struct {
	Ticker     string    `json:"ticker,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	Price      float64   `json:"price"`
	Volume     int64     `json:"volume"`
	Change     float64   `json:"change"` // percent delta vs the previous sample
	DataSource string    `json:"dataSource"`
}
