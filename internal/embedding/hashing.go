package embedding

import (
	"context"
	"strings"
	"unicode"

	"github.com/hyperjump/kiku/pkg/utils"
)

// MockEmbedder is a deterministic feature-hashing embedder. Each lowercase word
// is hashed into one of dimensions buckets with a hash-derived sign, and the
// result is L2-normalized. Texts that share words get similar vectors, so
// retrieval behaves sensibly offline without a model.
type MockEmbedder struct {
	dimensions int
}

// NewMockEmbedder returns an embedder that produces deterministic embeddings of the given dimensions.
func NewMockEmbedder(dimensions int) *MockEmbedder {
	if dimensions <= 0 {
		dimensions = 384
	}
	return &MockEmbedder{dimensions: dimensions}
}

// Embed returns the hashed bag-of-words vector for text. Text without any
// word characters maps to the zero vector.
func (e *MockEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	emb := make([]float32, e.dimensions)
	for _, w := range wordTokens(text) {
		h := HashString(w)
		sign := float32(1)
		if (h/e.dimensions)%2 == 1 {
			sign = -1
		}
		emb[h%e.dimensions] += sign
	}
	utils.NormalizeL2(emb)
	return emb, nil
}

// EmbedBatch calls Embed for each text.
func (e *MockEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embeddings := make([][]float32, len(texts))
	for i, text := range texts {
		emb, err := e.Embed(ctx, text)
		if err != nil {
			return nil, err
		}
		embeddings[i] = emb
	}
	return embeddings, nil
}

// Dimensions returns the embedding dimension.
func (e *MockEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op for MockEmbedder.
func (e *MockEmbedder) Close() error {
	return nil
}

func wordTokens(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
