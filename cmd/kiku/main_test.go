package main

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hyperjump/kiku/internal/cli"
	"github.com/hyperjump/kiku/internal/config"
	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/internal/server"
	"github.com/hyperjump/kiku/internal/video"
	"go.uber.org/zap"
)

func mockConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := &config.Config{}
	cfg.Embedding.Provider = config.ProviderMock
	cfg.Synthesis.Provider = config.ProviderMock
	cfg.Storage.DatabasePath = filepath.Join(t.TempDir(), "kiku.db")
	cfg.Retrieval.ChunkSize = 40
	cfg.Retrieval.ChunkOverlap = 5
	config.ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeFile(t, "config.yaml", "retrieval:\n  top_k: 2\n  strategy: windowed\nembedding:\n  provider: mock\n")
	cfg, loaded, err := loadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded != path || cfg.Retrieval.TopK != 2 || cfg.Retrieval.Strategy != config.StrategyWindowed {
		t.Errorf("loaded=%q cfg=%+v", loaded, cfg.Retrieval)
	}

	bad := writeFile(t, "config.yaml", "retrieval:\n  chunk_size: 10\n  chunk_overlap: 10\n")
	if _, _, err := loadConfig(bad); err == nil {
		t.Error("expected validation error for overlap >= size")
	}
}

func TestLoadEnv(t *testing.T) {
	path := writeFile(t, "test.env", "KIKU_TEST_KEY=secret\n")
	t.Setenv("KIKU_TEST_KEY", "")
	os.Unsetenv("KIKU_TEST_KEY")
	if err := loadEnv(path); err != nil {
		t.Fatal(err)
	}
	if got := os.Getenv("KIKU_TEST_KEY"); got != "secret" {
		t.Errorf("KIKU_TEST_KEY = %q", got)
	}
	if err := loadEnv(filepath.Join(t.TempDir(), "missing.env")); err == nil {
		t.Error("expected error for explicit missing env file")
	}
}

func TestInputFromFile(t *testing.T) {
	srt := "1\n00:00:01,000 --> 00:00:03,000\nhello there\n\n2\n00:00:03,500 --> 00:00:05,000\ngeneral kenobi\n"
	path := writeFile(t, "talk.srt", srt)
	in, err := inputFromFile(path, "", "", "")
	if err != nil {
		t.Fatal(err)
	}
	if in.Transcript != "hello there general kenobi" {
		t.Errorf("Transcript = %q", in.Transcript)
	}
	if !video.IsLocal(in.ID) || in.Title != "talk.srt" {
		t.Errorf("ID = %q, Title = %q", in.ID, in.Title)
	}

	in, err = inputFromFile(path, "", "https://youtu.be/dQw4w9WgXcQ", "Talk")
	if err != nil {
		t.Fatal(err)
	}
	if in.ID != "" || in.URL == "" || in.Title != "Talk" {
		t.Errorf("input = %+v", in)
	}

	if _, err := inputFromFile(writeFile(t, "sheet.xlsx", "x"), "", "", ""); !errors.Is(err, models.ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestBuildSearchQuery(t *testing.T) {
	searchLimit, searchKeyword, searchSemantic = 5, true, false
	q := buildSearchQuery([]string{"gradient", "descent "})
	if q.Query != "gradient descent" || q.Limit != 5 || !q.KeywordEnabled || q.SemanticEnabled {
		t.Errorf("query = %+v", q)
	}
}

func TestLocalPipelineAndClient(t *testing.T) {
	cfg := mockConfig(t)
	components, err := initializeComponents(cfg, zap.NewNop(), false, true)
	if err != nil {
		t.Fatal(err)
	}
	defer components.Close()
	if components.Storage == nil {
		t.Fatal("expected storage when persist is on")
	}

	ts := httptest.NewServer(server.NewServer(components.Assistant, &cfg.Server, zap.NewNop()).Handler())
	defer ts.Close()
	c := newAPIClient(ts.URL + "/")
	ctx := context.Background()

	path := writeFile(t, "talk.txt", "the speaker explains gradient descent and then bakes sourdough bread")
	in, err := inputFromFile(path, "talk", "", "")
	if err != nil {
		t.Fatal(err)
	}
	var v models.Video
	if err := c.do(ctx, http.MethodPost, "/api/v1/videos", in, &v, http.StatusCreated); err != nil {
		t.Fatal(err)
	}
	if v.ID != "talk" {
		t.Errorf("video = %+v", v)
	}

	var ans models.Answer
	if err := c.do(ctx, http.MethodPost, "/api/v1/ask", models.AskRequest{Question: "what is baked?"}, &ans, http.StatusOK); err != nil {
		t.Fatal(err)
	}
	if ans.Answer != "I don't know" || len(ans.Chunks) == 0 {
		t.Errorf("answer = %+v", ans)
	}

	err = c.do(ctx, http.MethodPost, "/api/v1/ask", models.AskRequest{Question: " "}, &ans, http.StatusOK)
	if err == nil || !strings.Contains(err.Error(), "400") || !strings.Contains(err.Error(), "question cannot be empty") {
		t.Errorf("err = %v", err)
	}

	var st models.Status
	if err := c.do(ctx, http.MethodGet, "/api/v1/status", nil, &st, http.StatusOK); err != nil {
		t.Fatal(err)
	}
	if st.VideoID != "talk" || st.Turns != 1 || st.StoredVideos != 1 || st.StoredChunks == 0 {
		t.Errorf("status = %+v", st)
	}

	var loaded models.Video
	if err := c.do(ctx, http.MethodPost, "/api/v1/videos/talk/load", nil, &loaded, http.StatusOK); err != nil {
		t.Fatal(err)
	}
	if loaded.ID != "talk" {
		t.Errorf("loaded = %+v", loaded)
	}
	if err := c.do(ctx, http.MethodPost, "/api/v1/videos/missing/load", nil, &loaded, http.StatusOK); err == nil || !strings.Contains(err.Error(), "404") {
		t.Errorf("load missing: err = %v", err)
	}
}

func TestChatLoop(t *testing.T) {
	cfg := mockConfig(t)
	components, err := initializeComponents(cfg, zap.NewNop(), false, false)
	if err != nil {
		t.Fatal(err)
	}
	defer components.Close()
	if components.Storage != nil {
		t.Error("expected no storage when persist is off")
	}
	ctx := context.Background()
	path := writeFile(t, "talk.md", "# Talk\n\nthe speaker explains gradient descent")
	if _, err := processFile(ctx, components.Assistant, path, "", "", ""); err != nil {
		t.Fatal(err)
	}

	in := strings.NewReader("what is explained?\n\n/history\n/reset\n/history\n/quit\nignored\n")
	var out bytes.Buffer
	if err := chatLoop(ctx, components.Assistant, in, &out, cli.OutputText); err != nil {
		t.Fatal(err)
	}
	got := out.String()
	for _, want := range []string{"I don't know\n", "Q: what is explained?\nA: I don't know", "Conversation cleared.", "No conversation yet."} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "ignored") {
		t.Errorf("input after /quit was processed:\n%s", got)
	}
}
