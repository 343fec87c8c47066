package models

// MHolding is one position in a user's portfolio.
type MHolding struct {
	Ticker string `json:"ticker"`
	Shares int64  `json:"shares"`
}

// MUser is a trading account as stored in the users file.
// Shares is the legacy ticker->count format kept for old documents; Holdings
// takes precedence when both are present.
type MUser struct {
	ID       string           `json:"id"`
	Username string           `json:"username"`
	Cash     float64          `json:"cash"`
	NetWorth float64          `json:"netWorth"`
	Holdings []MHolding       `json:"holdings,omitempty"`
	Shares   map[string]int64 `json:"shares,omitempty"`
}

// MLeaderboardEntry is one row of the net-worth ranking.
type MLeaderboardEntry struct {
	Rank     int     `json:"rank"`
	ID       string  `json:"id"`
	Username string  `json:"username"`
	NetWorth float64 `json:"netWorth"`
}
