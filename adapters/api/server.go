package api

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"

	"gollh/adapters/export"
	"gollh/domain/core"
	"gollh/ports"
)

// Server exposes stored sweep results over HTTP. It is read-only: sweeps are
// produced by the sweep service, never through this surface.
type Server struct {
	router *chi.Mux
	repo   ports.SweepResultRepository
}

// NewServer creates a results server backed by the given repository.
func NewServer(repo ports.SweepResultRepository) *Server {
	s := &Server{
		router: chi.NewRouter(),
		repo:   repo,
	}
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)

	s.router.Get("/healthz", s.handleHealth)
	s.router.Route("/sweeps", func(r chi.Router) {
		r.Get("/", s.handleListSweeps)
		r.Get("/{sweepID}", s.handleGetSweep)
		r.Get("/{sweepID}/report", s.handleSweepReport)
	})
	return s
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks serving HTTP on the given address.
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("[ResultsAPI] Listening on %s", addr)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListSweeps(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	summaries, err := s.repo.ListSweeps(r.Context(), limit)
	if err != nil {
		log.Printf("[ResultsAPI] Listing sweeps failed: %v", err)
		writeError(w, http.StatusInternalServerError, "failed to list sweeps")
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleGetSweep(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseSweepID(chi.URLParam(r, "sweepID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sweep id")
		return
	}

	summary, err := s.repo.GetSweep(r.Context(), id)
	if core.IsNotFoundError(err) {
		writeError(w, http.StatusNotFound, "sweep not found")
		return
	}
	if err != nil {
		log.Printf("[ResultsAPI] Loading sweep %s failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load sweep")
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleSweepReport(w http.ResponseWriter, r *http.Request) {
	id, err := core.ParseSweepID(chi.URLParam(r, "sweepID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid sweep id")
		return
	}

	summary, err := s.repo.GetSweep(r.Context(), id)
	if core.IsNotFoundError(err) {
		writeError(w, http.StatusNotFound, "sweep not found")
		return
	}
	if err != nil {
		log.Printf("[ResultsAPI] Loading sweep %s failed: %v", id, err)
		writeError(w, http.StatusInternalServerError, "failed to load sweep")
		return
	}

	html := markdown.ToHTML([]byte(export.MarkdownReport(summary)), nil, nil)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(html)
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Printf("[ResultsAPI] Encoding response failed: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
