package models

import "time"

// MFairValue is a target price derived from the external download feed.
type MFairValue struct {
	Ticker    string    `json:"ticker"`
	Price     float64   `json:"price"`
	Volume    int64     `json:"volume"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// MFeedAuthor is one entry of the external authors feed payload.
type MFeedAuthor struct {
	Name          string  `json:"name"`
	DownloadCount float64 `json:"downloadCount"`
	DownloadRate  float64 `json:"downloadRate"` // downloads per day
	Mods          int     `json:"mods"`
	DaysExisting  int     `json:"daysExisting"`
}

// MFeedResponse is the shape of the bulk authors feed document.
type MFeedResponse struct {
	Authors []MFeedAuthor `json:"authors"`
}
