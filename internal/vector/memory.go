package vector

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/hyperjump/kiku/internal/models"
)

// MemoryIndex is an in-memory vector index using brute-force cosine similarity.
// Search is safe for concurrent readers; Build takes the write lock.
type MemoryIndex struct {
	dimensions int
	chunks     []*models.Chunk
	vectors    [][]float32 // unit-normalized copies; zero vectors stay zero
	mu         sync.RWMutex
}

// NewMemoryIndex creates an empty index. The dimension is fixed by the first Build.
func NewMemoryIndex() *MemoryIndex {
	return &MemoryIndex{}
}

// Type returns the index type identifier.
func (m *MemoryIndex) Type() string {
	return "memory"
}

// Build replaces the index contents with chunks and their vectors. The two slices
// must have the same length and every vector the same dimension.
func (m *MemoryIndex) Build(chunks []*models.Chunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("%d chunks but %d vectors: %w", len(chunks), len(vectors), models.ErrDimensionMismatch)
	}
	if len(chunks) == 0 {
		return fmt.Errorf("build on zero chunks: %w", models.ErrIndexEmpty)
	}
	dims := len(vectors[0])
	if dims == 0 {
		return fmt.Errorf("vector 0 is empty: %w", models.ErrDimensionMismatch)
	}
	normalized := make([][]float32, len(vectors))
	for i, v := range vectors {
		if len(v) != dims {
			return fmt.Errorf("vector %d has dimension %d, expected %d: %w", i, len(v), dims, models.ErrDimensionMismatch)
		}
		normalized[i] = normalize(v)
	}
	stored := make([]*models.Chunk, len(chunks))
	copy(stored, chunks)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.dimensions = dims
	m.chunks = stored
	m.vectors = normalized
	return nil
}

// Search returns the min(k, Size()) chunks most similar to query, by decreasing cosine
// similarity. Equal scores keep chunk insertion order.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]*VectorResult, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d: %w", k, models.ErrInvalidArgument)
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	if len(m.chunks) == 0 {
		return nil, models.ErrIndexEmpty
	}
	if len(query) != m.dimensions {
		return nil, fmt.Errorf("query dimension %d, index dimension %d: %w", len(query), m.dimensions, models.ErrDimensionMismatch)
	}
	q := normalize(query)
	type scored struct {
		pos   int
		score float64
	}
	scores := make([]scored, len(m.vectors))
	for i, vec := range m.vectors {
		scores[i] = scored{pos: i, score: InnerProduct(q, vec)}
	}
	sort.SliceStable(scores, func(i, j int) bool { return scores[i].score > scores[j].score })
	if k > len(scores) {
		k = len(scores)
	}
	result := make([]*VectorResult, k)
	for i := 0; i < k; i++ {
		result[i] = &VectorResult{Chunk: m.chunks[scores[i].pos], Score: scores[i].score}
	}
	return result, nil
}

// Size returns the number of vectors in the index.
func (m *MemoryIndex) Size() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.chunks)
}

// Dimensions returns the vector dimension, or 0 before the first Build.
func (m *MemoryIndex) Dimensions() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.dimensions
}

// Close drops the index contents.
func (m *MemoryIndex) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chunks = nil
	m.vectors = nil
	return nil
}

func normalize(v []float32) []float32 {
	out := make([]float32, len(v))
	norm := L2Norm(v)
	if norm == 0 {
		return out
	}
	for i, x := range v {
		out[i] = float32(float64(x) / norm)
	}
	return out
}
