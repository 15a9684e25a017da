package models

// SearchResult is a single full-text hit.
type SearchResult struct {
	Slug    string   `json:"slug"`
	Title   string   `json:"title"`
	Tags    []string `json:"tags,omitempty"`
	Score   float64  `json:"score"`
	Snippet string   `json:"snippet,omitempty"`
}

// SearchResponse wraps the hits for a query.
type SearchResponse struct {
	Query     string          `json:"query"`
	Results   []*SearchResult `json:"results"`
	Total     int             `json:"total"`
	QueryTime int64           `json:"query_time_ms"`
	// Suggestions are "did you mean" rewrites of Query, best first.
	Suggestions []string `json:"suggestions,omitempty"`
}
