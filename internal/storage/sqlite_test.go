package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/hyperjump/kiku/internal/models"
)

func newTestStore(t *testing.T) *SQLiteStorage {
	t.Helper()
	store, err := NewSQLiteStorage(filepath.Join(t.TempDir(), "db", "test.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleChunks(videoID string) ([]*models.Chunk, [][]float32) {
	chunks := []*models.Chunk{
		{ID: videoID + "_00000", VideoID: videoID, Index: 0, Text: "A B C", Start: 0, End: 5},
		{ID: videoID + "_00001", VideoID: videoID, Index: 1, Text: "C D E", Start: 4, End: 9},
	}
	return chunks, [][]float32{{1, 0, 0.5}, {0, 1, -0.25}}
}

func TestSQLiteStorage_SaveAndLoad(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	v := &models.Video{ID: "vid1", Title: "Talk", LengthSeconds: 600, Views: 42, Transcript: "A B C D E"}
	chunks, vectors := sampleChunks("vid1")
	if err := store.SaveVideo(ctx, v, chunks, vectors); err != nil {
		t.Fatal(err)
	}
	if v.ProcessedAt.IsZero() {
		t.Error("ProcessedAt should be set")
	}

	got, err := store.GetVideo(ctx, "vid1")
	if err != nil {
		t.Fatal(err)
	}
	if got.Title != "Talk" || got.Views != 42 || got.Transcript != "A B C D E" || got.LengthMinutes() != 10 {
		t.Errorf("got %+v", got)
	}

	gotChunks, gotVectors, err := store.GetChunks(ctx, "vid1")
	if err != nil {
		t.Fatal(err)
	}
	if len(gotChunks) != 2 || gotChunks[1].Text != "C D E" || gotChunks[1].Start != 4 {
		t.Fatalf("chunks = %+v", gotChunks)
	}
	if gotVectors[1][2] != -0.25 || gotVectors[0][0] != 1 {
		t.Errorf("vectors = %v", gotVectors)
	}

	n, _ := store.CountChunks(ctx)
	if n != 2 {
		t.Errorf("CountChunks = %d", n)
	}
}

func TestSQLiteStorage_NotFound(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	if _, err := store.GetVideo(ctx, "missing"); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("GetVideo err = %v", err)
	}
	if _, err := store.LatestVideo(ctx); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("LatestVideo err = %v", err)
	}
}

func TestSQLiteStorage_LatestVideo(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	c1, v1 := sampleChunks("old")
	c2, v2 := sampleChunks("new")
	if err := store.SaveVideo(ctx, &models.Video{ID: "old", Transcript: "x", ProcessedAt: base}, c1, v1); err != nil {
		t.Fatal(err)
	}
	if err := store.SaveVideo(ctx, &models.Video{ID: "new", Transcript: "y", ProcessedAt: base.Add(time.Hour)}, c2, v2); err != nil {
		t.Fatal(err)
	}
	got, err := store.LatestVideo(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got.ID != "new" {
		t.Errorf("LatestVideo = %s", got.ID)
	}
	if n, _ := store.CountVideos(ctx); n != 2 {
		t.Errorf("CountVideos = %d", n)
	}
}

func TestSQLiteStorage_Turns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	chunks, vectors := sampleChunks("vid1")
	if err := store.SaveVideo(ctx, &models.Video{ID: "vid1", Transcript: "t"}, chunks, vectors); err != nil {
		t.Fatal(err)
	}

	for _, q := range []string{"first?", "second?", "third?"} {
		turn := &models.Turn{Question: q, Answer: "a", Strategy: "retrieval"}
		if err := store.AppendTurn(ctx, "vid1", turn); err != nil {
			t.Fatal(err)
		}
		if turn.ID == "" {
			t.Error("turn ID should be assigned")
		}
	}
	turns, err := store.ListTurns(ctx, "vid1")
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 3 || turns[0].Question != "first?" || turns[2].Question != "third?" {
		t.Errorf("turns = %+v", turns)
	}

	// Reprocessing the same video resets its log.
	if err := store.SaveVideo(ctx, &models.Video{ID: "vid1", Transcript: "t2"}, chunks, vectors); err != nil {
		t.Fatal(err)
	}
	if turns, _ := store.ListTurns(ctx, "vid1"); len(turns) != 0 {
		t.Errorf("turns after reprocess = %d", len(turns))
	}

	_ = store.AppendTurn(ctx, "vid1", &models.Turn{Question: "q", Answer: "a"})
	if err := store.ClearTurns(ctx, "vid1"); err != nil {
		t.Fatal(err)
	}
	if turns, _ := store.ListTurns(ctx, "vid1"); len(turns) != 0 {
		t.Errorf("turns after clear = %d", len(turns))
	}
}

func TestSQLiteStorage_MismatchedVectors(t *testing.T) {
	store := newTestStore(t)
	chunks, _ := sampleChunks("vid1")
	err := store.SaveVideo(context.Background(), &models.Video{ID: "vid1", Transcript: "t"}, chunks, [][]float32{{1}})
	if !errors.Is(err, models.ErrDimensionMismatch) {
		t.Errorf("err = %v", err)
	}
}

func TestSQLiteStorage_SaveWithoutVectors(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	chunks, _ := sampleChunks("vid1")
	if err := store.SaveVideo(ctx, &models.Video{ID: "vid1", Transcript: "A B C D E"}, chunks, nil); err != nil {
		t.Fatal(err)
	}
	gotChunks, gotVectors, err := store.GetChunks(ctx, "vid1")
	if err != nil {
		t.Fatal(err)
	}
	if len(gotChunks) != 2 || len(gotVectors) != 2 {
		t.Fatalf("got %d chunks, %d vectors", len(gotChunks), len(gotVectors))
	}
	for i, v := range gotVectors {
		if len(v) != 0 {
			t.Errorf("vector %d = %v, want empty", i, v)
		}
	}
}

func TestSQLiteStorage_SaveChunksKeepsTurns(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	chunks, vectors := sampleChunks("vid1")
	if err := store.SaveVideo(ctx, &models.Video{ID: "vid1", Transcript: "t"}, chunks, nil); err != nil {
		t.Fatal(err)
	}
	if err := store.AppendTurn(ctx, "vid1", &models.Turn{Question: "q", Answer: "a"}); err != nil {
		t.Fatal(err)
	}

	if err := store.SaveChunks(ctx, "vid1", chunks, vectors); err != nil {
		t.Fatal(err)
	}
	_, gotVectors, err := store.GetChunks(ctx, "vid1")
	if err != nil {
		t.Fatal(err)
	}
	if len(gotVectors) != 2 || len(gotVectors[0]) != 3 {
		t.Errorf("vectors = %v", gotVectors)
	}
	if turns, _ := store.ListTurns(ctx, "vid1"); len(turns) != 1 {
		t.Errorf("turns = %d, want 1", len(turns))
	}
	if n, _ := store.CountChunks(ctx); n != 2 {
		t.Errorf("CountChunks = %d, want 2", n)
	}

	if err := store.SaveChunks(ctx, "missing", chunks, vectors); !errors.Is(err, models.ErrNotFound) {
		t.Errorf("unknown video: err = %v", err)
	}
	if err := store.SaveChunks(ctx, "vid1", chunks, vectors[:1]); !errors.Is(err, models.ErrDimensionMismatch) {
		t.Errorf("short vectors: err = %v", err)
	}
}

func TestSQLiteStorage_InMemory(t *testing.T) {
	store, err := NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	if n, err := store.CountVideos(context.Background()); err != nil || n != 0 {
		t.Errorf("CountVideos = %d, %v", n, err)
	}
}
