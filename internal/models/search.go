package models

import "time"

// Thumbnail is a preview image attached to a platform search result.
type Thumbnail struct {
	URL    string `json:"url"`
	Width  int64  `json:"width,omitempty"`
	Height int64  `json:"height,omitempty"`
}

// SearchResultItem is one video returned by the platform search API.
// Ephemeral; produced by discovery, consumed by the likelihood scorer.
type SearchResultItem struct {
	VideoID     string               `json:"videoId"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	Channel     string               `json:"channel"`
	PublishedAt time.Time            `json:"publishedAt"`
	Thumbnails  map[string]Thumbnail `json:"thumbnails,omitempty"`
}

// SearchPage is a page of platform search results plus the total count.
type SearchPage struct {
	Items         []SearchResultItem `json:"items"`
	TotalResults  int64              `json:"totalResults"`
	NextPageToken string             `json:"nextPageToken,omitempty"`
}

// ScoredItem pairs a search result with its recipe likelihood score.
// Score is nil when scoring failed; a scoring failure is never fatal.
type ScoredItem struct {
	Score    *int             `json:"score"`
	Metadata SearchResultItem `json:"metadata"`
}
