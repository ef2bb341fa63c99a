// Package embedding maps text to fixed-dimension vectors. Providers are a local
// ONNX model, an OpenAI-compatible HTTP endpoint, and a deterministic hashing
// embedder used offline and in tests.
package embedding

import "context"

// Embedder produces vector embeddings for text. EmbedBatch returns one vector
// per input text, in input order, each of length Dimensions().
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)
	Dimensions() int
	Close() error
}
