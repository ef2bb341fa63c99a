//go:build cgo
// +build cgo

package embedding

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperjump/kiku/internal/models"
)

func TestONNXEmbedder_AfterClose(t *testing.T) {
	e := &ONNXEmbedder{tokenizer: &SimpleTokenizer{}, dimensions: 8, maxTokens: 16, batchSize: 4}
	if err := e.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := e.EmbedBatch(context.Background(), []string{"hello"}); !errors.Is(err, models.ErrEmbeddingUnavailable) {
		t.Errorf("EmbedBatch after Close: err = %v, want ErrEmbeddingUnavailable", err)
	}
	if _, err := e.Embed(context.Background(), "hello"); !errors.Is(err, models.ErrEmbeddingUnavailable) {
		t.Errorf("Embed after Close: err = %v, want ErrEmbeddingUnavailable", err)
	}
}
