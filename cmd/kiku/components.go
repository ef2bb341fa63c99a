package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/hyperjump/kiku/internal/config"
	"github.com/hyperjump/kiku/internal/embedding"
	"github.com/hyperjump/kiku/internal/extract"
	"github.com/hyperjump/kiku/internal/indexer"
	"github.com/hyperjump/kiku/internal/models"
	"github.com/hyperjump/kiku/internal/prompt"
	"github.com/hyperjump/kiku/internal/search"
	"github.com/hyperjump/kiku/internal/session"
	"github.com/hyperjump/kiku/internal/storage"
	"github.com/hyperjump/kiku/internal/synth"
	"github.com/hyperjump/kiku/internal/video"
	"go.uber.org/zap"
)

// Components holds initialized dependencies for serve, ask and chat.
type Components struct {
	Storage   storage.Storage // nil when persistence is off
	Embedder  embedding.Embedder
	Assistant *session.Assistant
}

func (c *Components) Close() {
	if c.Assistant != nil {
		_ = c.Assistant.Close()
	}
	if c.Embedder != nil {
		_ = c.Embedder.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

// initializeComponents wires the pipeline from cfg. persist opens the SQLite
// store; local one-shot commands run without it.
func initializeComponents(cfg *config.Config, logger *zap.Logger, debug, persist bool) (*Components, error) {
	c := &Components{}

	embedder, err := embedding.New(cfg.Embedding, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedder: %w", err)
	}
	c.Embedder = embedder

	synthesizer, err := synth.New(cfg.Synthesis)
	if err != nil {
		c.Close()
		return nil, fmt.Errorf("failed to initialize synthesizer: %w", err)
	}

	chunker, err := indexer.NewChunker(cfg.Retrieval.ChunkSize, cfg.Retrieval.ChunkOverlap, cfg.Retrieval.ChunkUnit)
	if err != nil {
		c.Close()
		return nil, err
	}
	idxOpts := []indexer.IndexerOption{}
	if debug {
		idxOpts = append(idxOpts, indexer.WithLogger(logger))
	}
	idx := indexer.NewIndexer(chunker, embedder, idxOpts...)

	retriever := search.NewRetriever(embedder)
	strategy, err := prompt.NewStrategy(cfg, retriever)
	if err != nil {
		c.Close()
		return nil, err
	}

	opts := []session.Option{
		session.WithLogger(logger),
		session.WithStrict(cfg.Synthesis.Strict),
	}
	if persist && cfg.Storage.PersistOrDefault() {
		store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
		if err != nil {
			c.Close()
			return nil, fmt.Errorf("failed to initialize storage: %w", err)
		}
		c.Storage = store
		opts = append(opts, session.WithStore(store, cfg.Storage.DatabasePath))
	}

	c.Assistant = session.NewAssistant(idx, strategy, synthesizer, search.NewEngine(retriever, 0), opts...)
	return c, nil
}

// inputFromFile reads a transcript file into a video input. Without an explicit
// id or URL the video is identified by its path.
func inputFromFile(path, id, url, title string) (*models.VideoInput, error) {
	if ext := filepath.Ext(path); !extract.Supported(ext) {
		return nil, fmt.Errorf("unsupported transcript file type %q: %w", ext, models.ErrInvalidArgument)
	}
	text, err := extract.NewExtractor().Extract(path)
	if err != nil {
		return nil, err
	}
	in := &models.VideoInput{ID: id, URL: url, Title: title, Transcript: text}
	if in.ID == "" && in.URL == "" {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		in.ID = video.LocalID(abs)
	}
	if in.Title == "" {
		in.Title = filepath.Base(path)
	}
	return in, nil
}

// processFile extracts path and makes it the assistant's current video.
func processFile(ctx context.Context, a *session.Assistant, path, id, url, title string) (*models.Video, error) {
	in, err := inputFromFile(path, id, url, title)
	if err != nil {
		return nil, err
	}
	return a.ProcessTranscript(ctx, in)
}
