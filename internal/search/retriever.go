// Package search retrieves transcript chunks for a question, by embedding
// similarity alone or by hybrid keyword and semantic scoring.
package search

import (
	"context"
	"errors"
	"fmt"

	"github.com/hyperjump/kiku/internal/embedding"
	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/internal/vector"
)

// Retriever embeds a query and fetches the top-k chunks from a vector index.
type Retriever struct {
	embedder embedding.Embedder
}

// NewRetriever creates a retriever that embeds queries with embedder.
func NewRetriever(embedder embedding.Embedder) *Retriever {
	return &Retriever{embedder: embedder}
}

// Retrieve returns the k chunks most similar to query, most similar first.
func (r *Retriever) Retrieve(ctx context.Context, idx vector.VectorIndex, query string, k int) ([]*models.Chunk, error) {
	results, err := r.RetrieveScored(ctx, idx, query, k)
	if err != nil {
		return nil, err
	}
	chunks := make([]*models.Chunk, len(results))
	for i, res := range results {
		chunks[i] = res.Chunk
	}
	return chunks, nil
}

// RetrieveScored is Retrieve with similarity scores kept.
// Embedding errors surface as models.ErrEmbeddingUnavailable; an unbuilt
// index as models.ErrIndexEmpty.
func (r *Retriever) RetrieveScored(ctx context.Context, idx vector.VectorIndex, query string, k int) ([]*vector.VectorResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d: %w", k, models.ErrInvalidArgument)
	}
	if idx == nil || idx.Size() == 0 {
		return nil, models.ErrIndexEmpty
	}
	q, err := r.embedder.Embed(ctx, query)
	if err != nil {
		if errors.Is(err, models.ErrEmbeddingUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", models.ErrEmbeddingUnavailable, err)
	}
	return idx.Search(ctx, q, k)
}
