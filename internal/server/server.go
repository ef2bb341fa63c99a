// Package server provides the HTTP API for kiku.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/hyperjump/kiku/internal/config"
	"github.com/hyperjump/kiku/internal/models"
	"go.uber.org/zap"
)

// Assistant is the session the server exposes. *session.Assistant implements it.
type Assistant interface {
	ProcessTranscript(ctx context.Context, in *models.VideoInput) (*models.Video, error)
	Load(ctx context.Context, id string) (*models.Video, error)
	Ask(ctx context.Context, question string) (*models.Answer, error)
	Search(ctx context.Context, q *models.SearchQuery) (*models.SearchResponse, error)
	Current() (*models.Video, error)
	History() []models.Turn
	ResetHistory(ctx context.Context) error
	Status(ctx context.Context) *models.Status
}

// Server is the HTTP server for the kiku API.
type Server struct {
	assistant Assistant
	config    *config.ServerConfig
	logger    *zap.Logger
	server    *http.Server
}

// NewServer creates a server with the given dependencies.
func NewServer(assistant Assistant, cfg *config.ServerConfig, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		assistant: assistant,
		config:    cfg,
		logger:    logger,
	}
}

// Handler returns the router with all routes and middleware installed.
func (s *Server) Handler() http.Handler {
	timeout := time.Duration(s.config.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(timeout))
	r.Use(middleware.Compress(5))

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/videos", s.handleProcessVideo)
		r.Get("/videos/current", s.handleCurrentVideo)
		r.Post("/videos/{id}/load", s.handleLoadVideo)
		r.Post("/ask", s.handleAsk)
		r.Get("/history", s.handleHistory)
		r.Delete("/history", s.handleResetHistory)
		r.Post("/search", s.handleSearch)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	s.server = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("Starting server", zap.String("addr", addr))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
