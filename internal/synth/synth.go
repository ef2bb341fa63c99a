// Package synth calls the generative model that turns an assembled prompt into an answer.
package synth

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/hyperjump/kiku/internal/config"
	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/internal/prompt"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// Synthesizer answers from an assembled prompt. Failures wrap models.ErrSynthesisFailure.
type Synthesizer interface {
	Answer(ctx context.Context, prompt string) (string, error)
}

// Options configures an OpenAI-compatible chat completions endpoint.
type Options struct {
	APIKey            string
	BaseURL           string
	Model             string
	Temperature       float64
	MaxTokens         int
	RequestsPerSecond float64
	Timeout           time.Duration
	// System overrides prompt.Instruction when set.
	System string
}

// OpenAISynthesizer sends one system and one user message per answer.
type OpenAISynthesizer struct {
	client      *openai.Client
	model       string
	temperature float32
	maxTokens   int
	system      string
	limiter     *rate.Limiter
}

// NewOpenAISynthesizer builds a chat client for opts.
func NewOpenAISynthesizer(opts Options) *OpenAISynthesizer {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	if opts.Timeout > 0 {
		cfg.HTTPClient = &http.Client{Timeout: opts.Timeout}
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	system := opts.System
	if system == "" {
		system = prompt.Instruction
	}
	return &OpenAISynthesizer{
		client:      openai.NewClientWithConfig(cfg),
		model:       opts.Model,
		temperature: float32(opts.Temperature),
		maxTokens:   opts.MaxTokens,
		system:      system,
		limiter:     limiter,
	}
}

// Answer returns the first choice's content.
func (s *OpenAISynthesizer) Answer(ctx context.Context, userPrompt string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrSynthesisFailure, err)
	}
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       s.model,
		MaxTokens:   s.maxTokens,
		Temperature: s.temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: s.system},
			{Role: openai.ChatMessageRoleUser, Content: userPrompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: create chat completion: %w", models.ErrSynthesisFailure, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: chat completion returned no choices", models.ErrSynthesisFailure)
	}
	return resp.Choices[0].Message.Content, nil
}

// MockSynthesizer answers without a model: it echoes a fixed reply, or the
// first line of the prompt when Reply is empty. Err, when set, is returned
// wrapped in models.ErrSynthesisFailure.
type MockSynthesizer struct {
	Reply string
	Err   error

	mu   sync.Mutex
	last string
}

// LastPrompt returns the prompt of the most recent call.
func (m *MockSynthesizer) LastPrompt() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.last
}

// Answer returns the canned reply.
func (m *MockSynthesizer) Answer(ctx context.Context, userPrompt string) (string, error) {
	m.mu.Lock()
	m.last = userPrompt
	m.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrSynthesisFailure, err)
	}
	if m.Err != nil {
		return "", fmt.Errorf("%w: %w", models.ErrSynthesisFailure, m.Err)
	}
	if m.Reply != "" {
		return m.Reply, nil
	}
	line, _, _ := strings.Cut(userPrompt, "\n")
	return line, nil
}

// New builds the synthesizer selected by cfg.Provider.
func New(cfg config.SynthesisConfig) (Synthesizer, error) {
	switch cfg.Provider {
	case config.ProviderMock:
		return &MockSynthesizer{Reply: "I don't know"}, nil
	case config.ProviderOpenAI, "":
		key := os.Getenv(cfg.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("synthesis api key: $%s is not set: %w", cfg.APIKeyEnv, models.ErrInvalidConfiguration)
		}
		return NewOpenAISynthesizer(Options{
			APIKey:            key,
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Temperature:       cfg.TemperatureOrDefault(),
			MaxTokens:         cfg.MaxTokens,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unknown synthesis provider %q: %w", cfg.Provider, models.ErrInvalidConfiguration)
	}
}
