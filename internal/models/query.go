package models

import "fmt"

// SearchQuery is a keyword and/or semantic search over the current transcript's chunks.
type SearchQuery struct {
	Query           string  `json:"query"`
	Limit           int     `json:"limit,omitempty"`
	KeywordEnabled  bool    `json:"keyword_enabled,omitempty"`
	SemanticEnabled bool    `json:"semantic_enabled,omitempty"`
	FuzzyEnabled    bool    `json:"fuzzy_enabled,omitempty"`
	KeywordWeight   float64 `json:"keyword_weight,omitempty"`
	SemanticWeight  float64 `json:"semantic_weight,omitempty"`
	MinScore        float64 `json:"min_score,omitempty"`
}

// Validate ensures the search query has valid fields and sets defaults.
// Returns ErrInvalidArgument if the query is empty; otherwise normalizes limit,
// enables at least one search type and fills in weights for the enabled types.
func (q *SearchQuery) Validate() error {
	if q.Query == "" {
		return fmt.Errorf("query cannot be empty: %w", ErrInvalidArgument)
	}
	if q.Limit <= 0 {
		q.Limit = 10
	}
	if q.Limit > 100 {
		q.Limit = 100
	}
	if !q.KeywordEnabled && !q.SemanticEnabled {
		q.KeywordEnabled = true
		q.SemanticEnabled = true
	}
	if !q.KeywordEnabled {
		q.KeywordWeight = 0
	} else if q.KeywordWeight <= 0 {
		q.KeywordWeight = 0.5
	}
	if !q.SemanticEnabled {
		q.SemanticWeight = 0
	} else if q.SemanticWeight <= 0 {
		q.SemanticWeight = 0.5
	}
	return nil
}

// SearchHit is one chunk matched by a search.
type SearchHit struct {
	Chunk         *Chunk  `json:"chunk"`
	Score         float64 `json:"score"`
	KeywordScore  float64 `json:"keyword_score"`
	SemanticScore float64 `json:"semantic_score"`
	Snippet       string  `json:"snippet,omitempty"`
	Rank          int     `json:"rank"`
}

// SearchResponse is the response for a chunk search.
type SearchResponse struct {
	Hits      []*SearchHit `json:"hits"`
	Total     int          `json:"total"`
	QueryTime int64        `json:"query_time_ms"`
	Query     string       `json:"query"`
	VideoID   string       `json:"video_id"`
}
