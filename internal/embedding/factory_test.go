package embedding

import (
	"errors"
	"testing"

	"github.com/hyperjump/kiku/internal/config"
	"github.com/hyperjump/kiku/internal/models"
)

func TestNew_Mock(t *testing.T) {
	e, err := New(config.EmbeddingConfig{Provider: config.ProviderMock, Dimensions: 32, CacheSize: 4}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*CachedEmbedder); !ok {
		t.Errorf("expected cache wrapper, got %T", e)
	}
	if e.Dimensions() != 32 {
		t.Errorf("Dimensions = %d", e.Dimensions())
	}
}

func TestNew_ONNXFallsBack(t *testing.T) {
	e, err := New(config.EmbeddingConfig{Provider: config.ProviderONNX, ModelPath: "/nonexistent/model.onnx", Dimensions: 16}, nil)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := e.(*MockEmbedder); !ok {
		t.Errorf("expected hashing fallback, got %T", e)
	}
}

func TestNew_OpenAIRequiresKey(t *testing.T) {
	t.Setenv("KIKU_TEST_EMBED_KEY", "")
	_, err := New(config.EmbeddingConfig{Provider: config.ProviderOpenAI, APIKeyEnv: "KIKU_TEST_EMBED_KEY"}, nil)
	if !errors.Is(err, models.ErrInvalidConfiguration) {
		t.Errorf("err = %v", err)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	if _, err := New(config.EmbeddingConfig{Provider: "word2vec"}, nil); !errors.Is(err, models.ErrInvalidConfiguration) {
		t.Errorf("err = %v", err)
	}
}
