package search

import (
	"context"
	"errors"
	"testing"

	"github.com/hyperjump/kiku/internal/embedding"
	"github.com/hyperjump/kiku/internal/indexer"
	"github.com/hyperjump/kiku/internal/models"
)

const transcript = "Welcome to the channel. Today we explain gradient descent. " +
	"Gradient descent walks downhill on the loss surface. " +
	"Later we bake sourdough bread with a long fermentation."

func buildSnapshot(t *testing.T, emb embedding.Embedder) *indexer.Snapshot {
	t.Helper()
	c, err := indexer.NewChunker(60, 10, indexer.UnitChars)
	if err != nil {
		t.Fatal(err)
	}
	snap, err := indexer.NewIndexer(c, emb).Build(context.Background(), "vid", transcript)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = snap.Close() })
	return snap
}

func TestEngine_Search(t *testing.T) {
	emb := embedding.NewMockEmbedder(256)
	snap := buildSnapshot(t, emb)
	engine := NewEngine(NewRetriever(emb), 20)

	resp, err := engine.Search(context.Background(), snap, &models.SearchQuery{Query: "sourdough bread", Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Hits) == 0 || len(resp.Hits) > 2 {
		t.Fatalf("hits = %d", len(resp.Hits))
	}
	if resp.VideoID != "vid" {
		t.Errorf("VideoID = %q", resp.VideoID)
	}
	top := resp.Hits[0]
	if top.Rank != 1 || top.KeywordScore != 1 {
		t.Errorf("top hit = %+v", top)
	}
	if top.Snippet == "" {
		t.Error("expected snippet")
	}
}

func TestEngine_KeywordOnly(t *testing.T) {
	emb := embedding.NewMockEmbedder(64)
	snap := buildSnapshot(t, emb)
	resp, err := NewEngine(NewRetriever(emb), 0).Search(context.Background(), snap,
		&models.SearchQuery{Query: "fermentation", KeywordEnabled: true})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 {
		t.Fatalf("Total = %d, want 1", resp.Total)
	}
	if resp.Hits[0].SemanticScore != 0 {
		t.Error("semantic score should be zero for keyword-only search")
	}
}

func TestEngine_MinScore(t *testing.T) {
	emb := embedding.NewMockEmbedder(64)
	snap := buildSnapshot(t, emb)
	resp, err := NewEngine(NewRetriever(emb), 0).Search(context.Background(), snap,
		&models.SearchQuery{Query: "gradient", MinScore: 2})
	if err != nil {
		t.Fatal(err)
	}
	if resp.Total != 0 || len(resp.Hits) != 0 {
		t.Errorf("expected everything filtered, got %d", resp.Total)
	}
}

func TestEngine_Errors(t *testing.T) {
	emb := embedding.NewMockEmbedder(8)
	engine := NewEngine(NewRetriever(emb), 0)
	if _, err := engine.Search(context.Background(), nil, &models.SearchQuery{Query: "x"}); !errors.Is(err, models.ErrNoTranscript) {
		t.Errorf("nil snapshot: err = %v", err)
	}
	if _, err := engine.Search(context.Background(), buildSnapshot(t, emb), &models.SearchQuery{}); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("empty query: err = %v", err)
	}
}

type offlineEmbedder struct{ *embedding.MockEmbedder }

func (offlineEmbedder) Embed(context.Context, string) ([]float32, error) {
	return nil, errors.New("model offline")
}

func TestEngine_TextOnlySnapshot(t *testing.T) {
	emb := offlineEmbedder{embedding.NewMockEmbedder(16)}
	c, err := indexer.NewChunker(60, 10, indexer.UnitChars)
	if err != nil {
		t.Fatal(err)
	}
	snap, err := indexer.NewIndexer(c, emb).BuildText(context.Background(), "vid", transcript)
	if err != nil {
		t.Fatal(err)
	}
	defer snap.Close()

	resp, err := NewEngine(NewRetriever(emb), 0).Search(context.Background(), snap,
		&models.SearchQuery{Query: "sourdough"})
	if err != nil {
		t.Fatalf("text-only search should not embed the query: %v", err)
	}
	if resp.Total == 0 {
		t.Fatal("expected keyword hits")
	}
	if resp.Hits[0].SemanticScore != 0 {
		t.Errorf("semantic score = %f, want 0", resp.Hits[0].SemanticScore)
	}
}
