package prompt

import (
	"context"
	"fmt"

	"github.com/hyperjump/kiku/internal/config"
	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/internal/search"
	"github.com/hyperjump/kiku/internal/vector"
)

// History is the read side of the conversation log.
type History interface {
	Recent(n int) []models.Turn
}

// Source is what a strategy may draw from for one question.
type Source struct {
	Transcript string
	Index      vector.VectorIndex
	History    History
}

// Context is the assembled prompt for one question. Text is the context
// portion, Prompt the full user message, Chunks the retrieved chunks (nil in
// windowed mode).
type Context struct {
	Strategy string
	Text     string
	Prompt   string
	Chunks   []*models.Chunk
}

// Strategy turns a source and a question into a prompt.
type Strategy interface {
	Name() string
	// UsesIndex reports whether Assemble reads the vector index.
	UsesIndex() bool
	Assemble(ctx context.Context, src Source, question string) (*Context, error)
}

// RetrievalStrategy uses the k chunks nearest the question.
type RetrievalStrategy struct {
	retriever *search.Retriever
	k         int
}

// NewRetrievalStrategy returns a retrieval strategy. k must be positive.
func NewRetrievalStrategy(retriever *search.Retriever, k int) (*RetrievalStrategy, error) {
	if k <= 0 {
		return nil, fmt.Errorf("top_k must be positive, got %d: %w", k, models.ErrInvalidConfiguration)
	}
	return &RetrievalStrategy{retriever: retriever, k: k}, nil
}

// Name returns "retrieval".
func (s *RetrievalStrategy) Name() string { return config.StrategyRetrieval }

func (s *RetrievalStrategy) UsesIndex() bool { return true }

// Assemble retrieves chunks for question and joins them.
func (s *RetrievalStrategy) Assemble(ctx context.Context, src Source, question string) (*Context, error) {
	chunks, err := s.retriever.Retrieve(ctx, src.Index, question, s.k)
	if err != nil {
		return nil, err
	}
	text := AssembleChunks(chunks)
	return &Context{
		Strategy: s.Name(),
		Text:     text,
		Prompt:   RenderRetrieval(question, text),
		Chunks:   chunks,
	}, nil
}

// WindowedStrategy uses a transcript prefix and the last few turns.
type WindowedStrategy struct {
	maxChars int
	maxTurns int
}

// NewWindowedStrategy returns a windowed strategy. maxChars must be positive;
// maxTurns below zero is treated as zero.
func NewWindowedStrategy(maxChars, maxTurns int) (*WindowedStrategy, error) {
	if maxChars <= 0 {
		return nil, fmt.Errorf("max_chars must be positive, got %d: %w", maxChars, models.ErrInvalidConfiguration)
	}
	if maxTurns < 0 {
		maxTurns = 0
	}
	return &WindowedStrategy{maxChars: maxChars, maxTurns: maxTurns}, nil
}

// Name returns "windowed".
func (s *WindowedStrategy) Name() string { return config.StrategyWindowed }

func (s *WindowedStrategy) UsesIndex() bool { return false }

// Assemble builds the windowed prompt. The index is not consulted.
func (s *WindowedStrategy) Assemble(_ context.Context, src Source, question string) (*Context, error) {
	var turns []models.Turn
	if src.History != nil {
		turns = src.History.Recent(s.maxTurns)
	}
	text, err := AssembleWindow(src.Transcript, turns, question, s.maxChars)
	if err != nil {
		return nil, err
	}
	return &Context{Strategy: s.Name(), Text: text, Prompt: text}, nil
}

// NewStrategy picks the strategy named by cfg.Retrieval.Strategy.
func NewStrategy(cfg *config.Config, retriever *search.Retriever) (Strategy, error) {
	switch cfg.Retrieval.Strategy {
	case config.StrategyRetrieval, "":
		return NewRetrievalStrategy(retriever, cfg.Retrieval.TopK)
	case config.StrategyWindowed:
		return NewWindowedStrategy(cfg.Window.MaxChars, cfg.Window.MaxTurns)
	default:
		return nil, fmt.Errorf("unknown strategy %q: %w", cfg.Retrieval.Strategy, models.ErrInvalidConfiguration)
	}
}
