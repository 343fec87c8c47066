package utils

import (
	"time"

	"github.com/scmhub/calendar"
)

// MarketHours decides whether the simulated market is in its volatile band.
// Two modes: "simple" reproduces the original hour-of-day band (open on every
// day of the week), while a MIC code (ISO 10383, e.g. "xnys") delegates to the
// exchange calendar from scmhub/calendar, holidays included.
type MarketHours struct {
	Calendar  *calendar.Calendar
	Simple    bool
	OpenHour  int
	CloseHour int
}

// -----------------------------------------------------------------------------

// NewMarketHours builds a MarketHours for the given mode. Unknown MIC codes
// fall back to the simple hour band.
func NewMarketHours(mode string, openHour, closeHour int) *MarketHours {
	if mode == "" || mode == "simple" {
		return &MarketHours{Simple: true, OpenHour: openHour, CloseHour: closeHour}
	}

	cal := calendar.GetCalendar(mode)
	if cal == nil {
		return &MarketHours{Simple: true, OpenHour: openHour, CloseHour: closeHour}
	}

	return &MarketHours{Calendar: cal}
}

// -----------------------------------------------------------------------------

// IsOpen reports whether t falls inside market hours.
func (m *MarketHours) IsOpen(t time.Time) bool {
	if m.Simple {
		hour := t.Hour()
		return hour >= m.OpenHour && hour <= m.CloseHour
	}
	return m.Calendar.IsOpen(t)
}
