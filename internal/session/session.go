// Package session holds the current video and its conversation, and answers
// questions about it. One Assistant serves one logical session: processing a
// new video replaces the index and clears the history.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/kiku/internal/indexer"
	"github.com/hyperjump/kiku/internal/memory"
	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/internal/prompt"
	"github.com/hyperjump/kiku/internal/search"
	"github.com/hyperjump/kiku/internal/storage"
	"github.com/hyperjump/kiku/internal/synth"
	"github.com/hyperjump/kiku/internal/video"
	"go.uber.org/zap"
)

// NoVideoMessage is the answer given when no video has been processed.
const NoVideoMessage = "Please process a video first."

// errorAnswerPrefix starts the answer text that replaces a failed model call.
const errorAnswerPrefix = "Error answering question: "

// Assistant answers questions about the most recently processed video.
type Assistant struct {
	indexer  *indexer.Indexer
	strategy prompt.Strategy
	synth    synth.Synthesizer
	engine   *search.Engine
	store    storage.Storage // optional
	logger   *zap.Logger
	strict   bool
	dbPath   string

	mu       sync.RWMutex
	video    *models.Video
	snapshot *indexer.Snapshot
	memory   *memory.Memory
}

// Option configures an Assistant.
type Option func(*Assistant)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(a *Assistant) { a.logger = l }
}

// WithStore persists videos, chunk vectors and turns to s.
func WithStore(s storage.Storage, dbPath string) Option {
	return func(a *Assistant) {
		a.store = s
		a.dbPath = dbPath
	}
}

// WithStrict makes Ask return typed errors instead of message answers.
func WithStrict(strict bool) Option {
	return func(a *Assistant) { a.strict = strict }
}

// NewAssistant creates an assistant with no video loaded.
func NewAssistant(idx *indexer.Indexer, strategy prompt.Strategy, synthesizer synth.Synthesizer, engine *search.Engine, opts ...Option) *Assistant {
	a := &Assistant{
		indexer:  idx,
		strategy: strategy,
		synth:    synthesizer,
		engine:   engine,
		logger:   zap.NewNop(),
		memory:   memory.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ProcessTranscript indexes a video transcript and makes it the current video.
// Conversation history is cleared. On any failure the previous video stays current.
func (a *Assistant) ProcessTranscript(ctx context.Context, in *models.VideoInput) (*models.Video, error) {
	start := time.Now()
	transcript := in.Transcript
	if transcript == "" && len(in.Segments) > 0 {
		transcript = indexer.JoinSegments(in.Segments)
	}
	if strings.TrimSpace(transcript) == "" {
		return nil, fmt.Errorf("video has an empty transcript: %w", models.ErrNoTranscript)
	}

	id, err := resolveID(in)
	if err != nil {
		return nil, err
	}

	snap, err := a.build(ctx, id, transcript)
	if err != nil {
		return nil, err
	}
	v := &models.Video{
		ID:            id,
		URL:           in.URL,
		Title:         in.Title,
		Description:   in.Description,
		LengthSeconds: in.LengthSeconds,
		Views:         in.Views,
		Transcript:    transcript,
		ProcessedAt:   time.Now(),
	}
	a.mu.Lock()
	if a.store != nil {
		// Saved under the lock so no turn from an answer on the replaced
		// video can land after the stored log is cleared.
		if err := a.store.SaveVideo(ctx, v, snap.Chunks, snap.Vectors); err != nil {
			a.logger.Warn("failed to persist video", zap.String("video_id", id), zap.Error(err))
		}
	}
	old := a.replace(v, snap, memory.New())
	a.mu.Unlock()
	a.release(old)

	a.logger.Info("video processed",
		zap.String("video_id", id),
		zap.Int("chunks", len(snap.Chunks)),
		zap.Duration("took", time.Since(start)))
	return v, nil
}

func resolveID(in *models.VideoInput) (string, error) {
	switch {
	case in.ID != "":
		return in.ID, nil
	case in.URL != "":
		return video.ParseID(in.URL)
	default:
		return uuid.New().String(), nil
	}
}

// build indexes transcript. A strategy that never reads the vector index
// falls back to a text-only snapshot when the embedder is unavailable.
func (a *Assistant) build(ctx context.Context, id, transcript string) (*indexer.Snapshot, error) {
	snap, err := a.indexer.Build(ctx, id, transcript)
	if err == nil || a.strategy.UsesIndex() || !errors.Is(err, models.ErrEmbeddingUnavailable) {
		return snap, err
	}
	a.logger.Warn("embeddings unavailable; indexing text only",
		zap.String("video_id", id),
		zap.String("strategy", a.strategy.Name()),
		zap.Error(err))
	return a.indexer.BuildText(ctx, id, transcript)
}

// replace installs a new video, snapshot and memory and returns the previous
// snapshot. The caller holds the write lock, which waits for in-flight
// retrievals on the old snapshot.
func (a *Assistant) replace(v *models.Video, snap *indexer.Snapshot, mem *memory.Memory) *indexer.Snapshot {
	old := a.snapshot
	a.video = v
	a.snapshot = snap
	a.memory = mem
	return old
}

func (a *Assistant) release(old *indexer.Snapshot) {
	if err := old.Close(); err != nil {
		a.logger.Warn("failed to close previous index", zap.Error(err))
	}
}

// Ask answers question about the current video. Without a video it returns
// NoVideoMessage; a failed model call yields an "Error answering question"
// answer and no history entry. With WithStrict both cases return typed
// errors (models.ErrNoTranscript, models.ErrSynthesisFailure) instead.
func (a *Assistant) Ask(ctx context.Context, question string) (*models.Answer, error) {
	start := time.Now()
	req := models.AskRequest{Question: question}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	a.mu.RLock()
	v, snap, mem := a.video, a.snapshot, a.memory
	if snap == nil {
		a.mu.RUnlock()
		if a.strict {
			return nil, fmt.Errorf("no video processed: %w", models.ErrNoTranscript)
		}
		return &models.Answer{Question: question, Answer: NoVideoMessage, Strategy: a.strategy.Name(), Failed: true}, nil
	}
	pc, err := a.strategy.Assemble(ctx, prompt.Source{
		Transcript: v.Transcript,
		Index:      snap.VectorIndex,
		History:    mem,
	}, question)
	a.mu.RUnlock()
	if err != nil {
		return nil, fmt.Errorf("failed to assemble prompt: %w", err)
	}

	ans := &models.Answer{
		Question: question,
		Strategy: pc.Strategy,
		VideoID:  v.ID,
		Chunks:   pc.Chunks,
	}

	text, err := a.synth.Answer(ctx, pc.Prompt)
	if err != nil {
		if !errors.Is(err, models.ErrSynthesisFailure) {
			err = fmt.Errorf("%w: %w", models.ErrSynthesisFailure, err)
		}
		a.logger.Warn("answer failed", zap.String("video_id", v.ID), zap.Error(err))
		if a.strict {
			return nil, err
		}
		ans.Answer = errorAnswerPrefix + err.Error()
		ans.Failed = true
		ans.Took = time.Since(start).Milliseconds()
		return ans, nil
	}
	ans.Answer = text
	ans.Took = time.Since(start).Milliseconds()

	turn := models.Turn{
		ID:        uuid.New().String(),
		Question:  question,
		Answer:    text,
		Strategy:  pc.Strategy,
		CreatedAt: time.Now(),
	}
	if !a.appendTurn(ctx, v, mem, turn) {
		a.logger.Debug("video replaced while answering; turn not recorded", zap.String("video_id", v.ID))
		return ans, nil
	}
	a.logger.Debug("question answered",
		zap.String("video_id", v.ID),
		zap.String("strategy", pc.Strategy),
		zap.Int("chunks", len(pc.Chunks)),
		zap.Int64("took_ms", ans.Took))
	return ans, nil
}

// appendTurn records turn, in memory and in storage, only if v is still the
// current video.
func (a *Assistant) appendTurn(ctx context.Context, v *models.Video, mem *memory.Memory, turn models.Turn) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.video != v || a.memory != mem {
		return false
	}
	mem.Append(turn)
	if a.store != nil {
		if err := a.store.AppendTurn(ctx, v.ID, &turn); err != nil {
			a.logger.Warn("failed to persist turn", zap.String("video_id", v.ID), zap.Error(err))
		}
	}
	return true
}

// Search runs a hybrid chunk search over the current video.
func (a *Assistant) Search(ctx context.Context, q *models.SearchQuery) (*models.SearchResponse, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.snapshot == nil {
		return nil, fmt.Errorf("no video processed: %w", models.ErrNoTranscript)
	}
	return a.engine.Search(ctx, a.snapshot, q)
}

// Current returns a copy of the current video, or models.ErrNoTranscript.
func (a *Assistant) Current() (*models.Video, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.video == nil {
		return nil, models.ErrNoTranscript
	}
	v := *a.video
	return &v, nil
}

// History returns the full conversation log for the current video, oldest first.
func (a *Assistant) History() []models.Turn {
	a.mu.RLock()
	mem := a.memory
	a.mu.RUnlock()
	return mem.All()
}

// ResetHistory clears the conversation log, in memory and in storage.
func (a *Assistant) ResetHistory(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.memory.Reset()
	if a.store != nil && a.video != nil {
		if err := a.store.ClearTurns(ctx, a.video.ID); err != nil {
			return fmt.Errorf("failed to clear stored turns: %w", err)
		}
	}
	return nil
}

// Status reports the current video and index sizes.
func (a *Assistant) Status(ctx context.Context) *models.Status {
	a.mu.RLock()
	st := &models.Status{Strategy: a.strategy.Name(), Turns: a.memory.Len()}
	if a.video != nil {
		st.VideoID = a.video.ID
		st.Title = a.video.Title
		st.LengthMinutes = a.video.LengthMinutes()
		st.Views = a.video.Views
		st.ProcessedAt = a.video.ProcessedAt
	}
	if a.snapshot != nil {
		st.Chunks = len(a.snapshot.Chunks)
		if a.snapshot.HasVectors() {
			st.Dimensions = a.snapshot.VectorIndex.Dimensions()
		}
	}
	a.mu.RUnlock()

	if a.store != nil {
		if n, err := a.store.CountVideos(ctx); err == nil {
			st.StoredVideos = n
		}
		if n, err := a.store.CountChunks(ctx); err == nil {
			st.StoredChunks = n
		}
		if n, err := storage.DatabaseBytes(a.dbPath); err == nil {
			st.DatabaseBytes = n
		}
	}
	return st
}

// Restore loads the most recently stored video with its vectors and history.
// It returns false when there is nothing to restore.
func (a *Assistant) Restore(ctx context.Context) (bool, error) {
	if a.store == nil {
		return false, nil
	}
	v, err := a.store.LatestVideo(ctx)
	if errors.Is(err, models.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to load latest video: %w", err)
	}
	if err := a.load(ctx, v); err != nil {
		return false, err
	}
	return true, nil
}

// Load makes the stored video id current, with its stored history. Stored
// vectors are reused; vectors of a different dimension than the embedder's,
// as after a model change, are recomputed.
func (a *Assistant) Load(ctx context.Context, id string) (*models.Video, error) {
	if a.store == nil {
		return nil, fmt.Errorf("persistence is disabled: %w", models.ErrNotFound)
	}
	v, err := a.store.GetVideo(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load video %s: %w", id, err)
	}
	if err := a.load(ctx, v); err != nil {
		return nil, err
	}
	out := *v
	return &out, nil
}

func (a *Assistant) load(ctx context.Context, v *models.Video) error {
	chunks, vectors, err := a.store.GetChunks(ctx, v.ID)
	if err != nil {
		return fmt.Errorf("failed to load chunks: %w", err)
	}

	var snap *indexer.Snapshot
	dims := a.indexer.Dimensions()
	if len(chunks) > 0 && len(vectors[0]) > 0 && (dims <= 0 || len(vectors[0]) == dims) {
		snap, err = a.indexer.Restore(ctx, v.ID, chunks, vectors)
	} else {
		a.logger.Info("stored vectors do not match embedder; re-embedding", zap.String("video_id", v.ID))
		snap, err = a.build(ctx, v.ID, v.Transcript)
		if err == nil && snap.HasVectors() {
			if saveErr := a.store.SaveChunks(ctx, v.ID, snap.Chunks, snap.Vectors); saveErr != nil {
				a.logger.Warn("failed to persist re-embedded chunks", zap.Error(saveErr))
			}
		}
	}
	if err != nil {
		return err
	}

	a.mu.Lock()
	turns, err := a.store.ListTurns(ctx, v.ID)
	if err != nil {
		a.mu.Unlock()
		_ = snap.Close()
		return fmt.Errorf("failed to load turns: %w", err)
	}
	old := a.replace(v, snap, memory.New(turns...))
	a.mu.Unlock()
	a.release(old)

	a.logger.Info("video loaded",
		zap.String("video_id", v.ID),
		zap.Int("chunks", len(snap.Chunks)),
		zap.Int("turns", len(turns)))
	return nil
}

// Close releases the current index.
func (a *Assistant) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	err := a.snapshot.Close()
	a.snapshot = nil
	return err
}
