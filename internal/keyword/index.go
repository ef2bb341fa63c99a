// Package keyword provides keyword (BM25) search over transcript chunks.
package keyword

import (
	"context"

	"github.com/hyperjump/kiku/internal/models"
)

// SearchOptions optional parameters for keyword search. Nil means use defaults.
type SearchOptions struct {
	// PhraseBoost multiplies the score of chunks containing the query as a phrase.
	// Values > 1 enable it (e.g. 1.5).
	PhraseBoost float64
	// FuzzyEnabled matches terms within Fuzziness edits for typo tolerance.
	FuzzyEnabled bool
	// Fuzziness is the maximum Levenshtein edit distance (1 or 2); default 2.
	Fuzziness int
}

// KeywordIndex defines keyword search over one video's chunks.
type KeywordIndex interface {
	IndexChunks(ctx context.Context, chunks []*models.Chunk) error
	Search(ctx context.Context, query string, limit int, opts *SearchOptions) ([]*KeywordResult, error)
	DocCount() (uint64, error)
	Close() error
}

// KeywordResult is a single keyword search hit; ID is the chunk ID.
type KeywordResult struct {
	ID    string
	Score float64
}
