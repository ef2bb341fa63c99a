package embedding

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/hyperjump/kiku/internal/models"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// OpenAIOptions configures an OpenAI-compatible embeddings endpoint.
type OpenAIOptions struct {
	APIKey            string
	BaseURL           string
	Model             string
	Dimensions        int
	RequestsPerSecond float64
	Timeout           time.Duration
	// BatchSize caps the texts sent per request.
	BatchSize int
}

// OpenAIEmbedder calls the /embeddings endpoint of an OpenAI-compatible API.
type OpenAIEmbedder struct {
	client     *openai.Client
	model      string
	dimensions int
	batchSize  int
	limiter    *rate.Limiter
}

// NewOpenAIEmbedder builds a client for opts. A zero RequestsPerSecond disables rate limiting.
func NewOpenAIEmbedder(opts OpenAIOptions) *OpenAIEmbedder {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = 256
	}
	return &OpenAIEmbedder{
		client:     openai.NewClientWithConfig(cfg),
		model:      opts.Model,
		dimensions: opts.Dimensions,
		batchSize:  batch,
		limiter:    newLimiter(opts.RequestsPerSecond),
	}
}

func newLimiter(rps float64) *rate.Limiter {
	if rps <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(rps), 1)
}

// Embed returns the embedding for one text.
func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	vecs, err := e.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch sends texts in batches and reassembles results in input order.
// Transport and API errors wrap models.ErrEmbeddingUnavailable.
func (e *OpenAIEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += e.batchSize {
		end := start + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := e.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

func (e *OpenAIEmbedder) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if err := e.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %w", models.ErrEmbeddingUnavailable, err)
	}
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Model: openai.EmbeddingModel(e.model),
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: create openai embeddings: %w", models.ErrEmbeddingUnavailable, err)
	}
	if len(resp.Data) != len(texts) {
		return nil, fmt.Errorf("%w: got %d embeddings for %d texts", models.ErrEmbeddingUnavailable, len(resp.Data), len(texts))
	}

	data := resp.Data
	sort.SliceStable(data, func(i, j int) bool { return data[i].Index < data[j].Index })
	results := make([][]float32, len(data))
	for i, datum := range data {
		if e.dimensions > 0 && len(datum.Embedding) != e.dimensions {
			return nil, fmt.Errorf("openai embedding dimension: expected %d, got %d: %w", e.dimensions, len(datum.Embedding), models.ErrDimensionMismatch)
		}
		results[i] = datum.Embedding
	}
	return results, nil
}

// Dimensions returns the configured embedding dimension.
func (e *OpenAIEmbedder) Dimensions() int {
	return e.dimensions
}

// Close is a no-op; the HTTP client holds no resources.
func (e *OpenAIEmbedder) Close() error {
	return nil
}
