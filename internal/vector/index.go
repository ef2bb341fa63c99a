// Package vector provides the per-video chunk vector index and similarity search.
package vector

import (
	"context"

	"github.com/hyperjump/kiku/internal/models"
)

// VectorIndex stores one vector per chunk and answers nearest-neighbor queries.
// Build replaces the whole contents; there is no incremental insert or delete.
type VectorIndex interface {
	Build(chunks []*models.Chunk, vectors [][]float32) error
	Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error)
	Size() int
	Dimensions() int
	Close() error
}

// VectorResult is a single search hit. Score is the cosine similarity in [-1, 1].
type VectorResult struct {
	Chunk *models.Chunk
	Score float64
}
