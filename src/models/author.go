package models

// MAuthor is one tradable mod author as configured in the authors file.
// Immutable once loaded; the simulation iterates this list every tick.
type MAuthor struct {
	Ticker       string `json:"ticker"`
	Name         string `json:"name"`
	AuthorURL    string `json:"authorUrl"`
	CurseforgeID string `json:"curseforgeId"` // external-feed identifier, matched case-insensitively
}
