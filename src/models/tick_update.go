package models

// MTickMetrics reports how a simulation tick went.
type MTickMetrics struct {
	SimulationTimeSeconds float64 `json:"simulation_time_seconds"`
	SymbolsUpdated        int     `json:"symbols_updated"`
	SymbolsSkipped        int     `json:"symbols_skipped"`
	FeedAvailable         bool    `json:"feed_available"`
}

// MTickUpdate is the snapshot broadcast to websocket clients after a tick.
type MTickUpdate struct {
	Type      string             `json:"type"` // "INITIAL" or "UPDATE"
	Prices    map[string]MSample `json:"prices"`
	Timestamp int64              `json:"timestamp"`
	Metrics   MTickMetrics       `json:"metrics"`
}

// MSubscribeCommand is the only inbound websocket message.
type MSubscribeCommand struct {
	Command string   `json:"command"`
	Tickers []string `json:"tickers"`
}
