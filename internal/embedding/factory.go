package embedding

import (
	"fmt"
	"os"
	"time"

	"github.com/hyperjump/kiku/internal/config"
	"github.com/hyperjump/kiku/internal/models"
	"go.uber.org/zap"
)

// New builds the embedder selected by cfg.Provider, wrapped in an LRU cache when
// cfg.CacheSize > 0. A local ONNX model that fails to load falls back to the
// hashing embedder with a warning.
func New(cfg config.EmbeddingConfig, logger *zap.Logger) (Embedder, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var e Embedder
	switch cfg.Provider {
	case config.ProviderMock:
		e = NewMockEmbedder(cfg.Dimensions)
	case config.ProviderOpenAI:
		key := os.Getenv(cfg.APIKeyEnv)
		if key == "" {
			return nil, fmt.Errorf("embedding api key: $%s is not set: %w", cfg.APIKeyEnv, models.ErrInvalidConfiguration)
		}
		e = NewOpenAIEmbedder(OpenAIOptions{
			APIKey:            key,
			BaseURL:           cfg.BaseURL,
			Model:             cfg.Model,
			Dimensions:        cfg.Dimensions,
			RequestsPerSecond: cfg.RequestsPerSecond,
			Timeout:           time.Duration(cfg.TimeoutSeconds) * time.Second,
		})
	case config.ProviderONNX, "":
		var tok Tokenizer = &SimpleTokenizer{}
		if cfg.TokenizerPath != "" {
			if pt, err := NewPretrainedTokenizer(cfg.TokenizerPath); err == nil {
				tok = pt
			} else {
				logger.Warn("tokenizer unavailable, using word hashing", zap.String("path", cfg.TokenizerPath), zap.Error(err))
			}
		}
		onnx, err := NewONNXEmbedder(ONNXOptions{
			ModelPath:   cfg.ModelPath,
			RuntimePath: cfg.RuntimePath,
			Dimensions:  cfg.Dimensions,
			MaxTokens:   cfg.MaxTokens,
			Tokenizer:   tok,
		})
		if err != nil {
			logger.Warn("ONNX embedder unavailable, using hashing embedder", zap.String("model", cfg.ModelPath), zap.Error(err))
			e = NewMockEmbedder(cfg.Dimensions)
		} else {
			e = onnx
		}
	default:
		return nil, fmt.Errorf("unknown embedding provider %q: %w", cfg.Provider, models.ErrInvalidConfiguration)
	}

	if cfg.CacheSize > 0 {
		e = NewCachedEmbedder(e, cfg.CacheSize)
	}
	return e, nil
}
