package utils

import "time"

// -----------------------------------------------------------------------------

// Lookback durations for the history endpoints.
var periodDurations = map[string]time.Duration{
	"1H": time.Hour,
	"1D": 24 * time.Hour,
	"1W": 7 * 24 * time.Hour,
	"1M": 30 * 24 * time.Hour,
	"3M": 90 * 24 * time.Hour,
	"6M": 180 * 24 * time.Hour,
	"1Y": 365 * 24 * time.Hour,
}

// PeriodDuration maps a period label (1H/1D/1W/1M/3M/6M/1Y) to its lookback
// duration.
func PeriodDuration(period string) (time.Duration, bool) {
	d, ok := periodDurations[period]
	return d, ok
}
