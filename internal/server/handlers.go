package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/hyperjump/kiku/internal/models"
	"go.uber.org/zap"
)

// maxBodyBytes bounds request bodies; transcripts of multi-hour videos fit well inside.
const maxBodyBytes = 16 << 20

func (s *Server) handleProcessVideo(w http.ResponseWriter, r *http.Request) {
	var input models.VideoInput
	if !s.decode(w, r, &input) {
		return
	}
	s.logger.Debug("process video request", zap.String("id", input.ID), zap.String("url", input.URL))
	v, err := s.assistant.ProcessTranscript(r.Context(), &input)
	if err != nil {
		s.fail(w, "processing failed", err)
		return
	}
	s.respondJSON(w, http.StatusCreated, videoSummary(v))
}

func (s *Server) handleLoadVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	v, err := s.assistant.Load(r.Context(), id)
	if err != nil {
		s.fail(w, "load failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, videoSummary(v))
}

func (s *Server) handleCurrentVideo(w http.ResponseWriter, r *http.Request) {
	v, err := s.assistant.Current()
	if err != nil {
		s.fail(w, "current video", err)
		return
	}
	s.respondJSON(w, http.StatusOK, v)
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	var req models.AskRequest
	if !s.decode(w, r, &req) {
		return
	}
	s.logger.Debug("ask request", zap.String("question", req.Question))
	ans, err := s.assistant.Ask(r.Context(), req.Question)
	if err != nil {
		s.fail(w, "ask failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, ans)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	turns := s.assistant.History()
	s.respondJSON(w, http.StatusOK, map[string]interface{}{"turns": turns, "total": len(turns)})
}

func (s *Server) handleResetHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.assistant.ResetHistory(r.Context()); err != nil {
		s.fail(w, "reset history failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "cleared"})
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var query models.SearchQuery
	if !s.decode(w, r, &query) {
		return
	}
	s.logger.Debug("search request", zap.String("query", query.Query), zap.Int("limit", query.Limit))
	response, err := s.assistant.Search(r.Context(), &query)
	if err != nil {
		s.fail(w, "search failed", err)
		return
	}
	s.respondJSON(w, http.StatusOK, response)
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, s.assistant.Status(r.Context()))
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// videoSummary is the processed video without its transcript.
func videoSummary(v *models.Video) *models.Video {
	out := *v
	out.Transcript = ""
	return &out
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}

// fail logs err and responds with the status its sentinel maps to.
func (s *Server) fail(w http.ResponseWriter, msg string, err error) {
	status := StatusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(msg, zap.Error(err))
	} else {
		s.logger.Debug(msg, zap.Error(err))
	}
	s.respondError(w, status, err.Error())
}

// StatusFor maps an error to an HTTP status code.
func StatusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidArgument), errors.Is(err, models.ErrInvalidConfiguration):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrNoTranscript), errors.Is(err, models.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrIndexEmpty):
		return http.StatusConflict
	case errors.Is(err, models.ErrEmbeddingUnavailable), errors.Is(err, models.ErrSynthesisFailure):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, map[string]string{"error": message})
}
