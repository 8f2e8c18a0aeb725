package domain

import "time"

// Article is the normalized shape every source adapter produces.
// It is a read-only value constructed fresh per request; the Link field
// serves as the deduplication key across sources.
type Article struct {
	ID          string    `json:"id"`
	Headline    string    `json:"headline"`
	Summary     string    `json:"summary"`
	Link        string    `json:"link"`
	Image       string    `json:"image,omitempty"`
	ReadTime    string    `json:"readTime"`
	Views       string    `json:"views"`
	Author      string    `json:"author,omitempty"`
	Source      string    `json:"source,omitempty"`
	SourceID    string    `json:"sourceId,omitempty"`
	Section     string    `json:"section,omitempty"`
	Tags        []string  `json:"tags,omitempty"`
	PublishedAt time.Time `json:"publishedAt"`
}

// PageRequest describes one aggregation request
type PageRequest struct {
	Search  string   // free-text query, empty for browse mode
	Page    int      // 1-based page number
	Sources []string // source IDs to query, empty means all enabled
}

// NewsResponse is the envelope returned by the aggregation endpoint
type NewsResponse struct {
	Articles     []Article `json:"articles"`
	TotalResults int       `json:"totalResults"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	Message      string    `json:"message,omitempty"`
}

// response status values
const (
	StatusOK    = "ok"
	StatusError = "error"
)
