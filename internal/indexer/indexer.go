// Package indexer turns a transcript into searchable chunks: it splits the text,
// embeds every chunk, and builds the vector and keyword indices over them.
package indexer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hyperjump/kiku/internal/embedding"
	"github.com/hyperjump/kiku/internal/keyword"
	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/internal/vector"
	"go.uber.org/zap"
)

// Snapshot is the immutable per-video index: chunks in order, their vectors
// in the same order, and the indices built over them.
type Snapshot struct {
	VideoID      string
	Chunks       []*models.Chunk
	Vectors      [][]float32
	VectorIndex  vector.VectorIndex
	KeywordIndex keyword.KeywordIndex
}

// Close releases both indices.
func (s *Snapshot) Close() error {
	if s == nil {
		return nil
	}
	var errs []error
	if s.VectorIndex != nil {
		errs = append(errs, s.VectorIndex.Close())
	}
	if s.KeywordIndex != nil {
		errs = append(errs, s.KeywordIndex.Close())
	}
	return errors.Join(errs...)
}

// Indexer builds snapshots with a fixed chunker and embedder.
type Indexer struct {
	chunker  *Chunker
	embedder embedding.Embedder
	logger   *zap.Logger // optional; when set, logs debug events
}

// IndexerOption configures an Indexer.
type IndexerOption func(*Indexer)

// WithLogger sets a logger for debug output.
func WithLogger(l *zap.Logger) IndexerOption {
	return func(idx *Indexer) { idx.logger = l }
}

// NewIndexer creates an indexer with the given dependencies.
func NewIndexer(chunker *Chunker, embedder embedding.Embedder, opts ...IndexerOption) *Indexer {
	idx := &Indexer{chunker: chunker, embedder: embedder}
	for _, opt := range opts {
		opt(idx)
	}
	return idx
}

// Chunker returns the chunker used to split transcripts.
func (idx *Indexer) Chunker() *Chunker {
	return idx.chunker
}

// Dimensions returns the embedder's vector dimension.
func (idx *Indexer) Dimensions() int {
	return idx.embedder.Dimensions()
}

// Build chunks transcript, embeds every chunk in one batch, and indexes the result.
// A transcript that yields no chunks returns models.ErrIndexEmpty. Embedding failures
// wrap models.ErrEmbeddingUnavailable.
func (idx *Indexer) Build(ctx context.Context, videoID, transcript string) (*Snapshot, error) {
	start := time.Now()
	chunks := idx.chunker.Split(videoID, transcript)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("transcript for %s produced no chunks: %w", videoID, models.ErrIndexEmpty)
	}

	texts := make([]string, len(chunks))
	for i, ch := range chunks {
		texts[i] = ch.Text
	}
	vectors, err := idx.embedder.EmbedBatch(ctx, texts)
	if err != nil {
		if !errors.Is(err, models.ErrEmbeddingUnavailable) && !errors.Is(err, models.ErrDimensionMismatch) {
			err = fmt.Errorf("%w: %w", models.ErrEmbeddingUnavailable, err)
		}
		return nil, fmt.Errorf("failed to generate embeddings: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("embedder returned %d vectors for %d chunks: %w", len(vectors), len(chunks), models.ErrDimensionMismatch)
	}

	snap, err := idx.Restore(ctx, videoID, chunks, vectors)
	if err != nil {
		return nil, err
	}
	if idx.logger != nil {
		idx.logger.Debug("indexer built snapshot",
			zap.String("video_id", videoID),
			zap.Int("chunks", len(chunks)),
			zap.Int("dimensions", snap.VectorIndex.Dimensions()),
			zap.Duration("took", time.Since(start)))
	}
	return snap, nil
}

// BuildText chunks transcript and builds only the keyword index. The snapshot
// carries no vectors, so semantic retrieval over it reports models.ErrIndexEmpty.
func (idx *Indexer) BuildText(ctx context.Context, videoID, transcript string) (*Snapshot, error) {
	chunks := idx.chunker.Split(videoID, transcript)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("transcript for %s produced no chunks: %w", videoID, models.ErrIndexEmpty)
	}
	return idx.Restore(ctx, videoID, chunks, nil)
}

// Restore builds a snapshot from chunks and vectors computed earlier, such as
// those loaded from storage. The embedder is not called. With nil vectors only
// the keyword index is built.
func (idx *Indexer) Restore(ctx context.Context, videoID string, chunks []*models.Chunk, vectors [][]float32) (*Snapshot, error) {
	snap := &Snapshot{VideoID: videoID, Chunks: chunks, Vectors: vectors}
	if vectors != nil {
		vi := vector.NewMemoryIndex()
		if err := vi.Build(chunks, vectors); err != nil {
			return nil, fmt.Errorf("failed to index vectors: %w", err)
		}
		snap.VectorIndex = vi
	}
	ki, err := keyword.NewBleveIndex()
	if err != nil {
		_ = snap.Close()
		return nil, fmt.Errorf("failed to create keyword index: %w", err)
	}
	snap.KeywordIndex = ki
	if err := ki.IndexChunks(ctx, chunks); err != nil {
		_ = snap.Close()
		return nil, fmt.Errorf("failed to index keywords: %w", err)
	}
	return snap, nil
}

// HasVectors reports whether the snapshot supports semantic retrieval.
func (s *Snapshot) HasVectors() bool {
	return s.VectorIndex != nil
}

// ChunkByID returns the chunk with id, or nil.
func (s *Snapshot) ChunkByID(id string) *models.Chunk {
	for _, ch := range s.Chunks {
		if ch.ID == id {
			return ch
		}
	}
	return nil
}
