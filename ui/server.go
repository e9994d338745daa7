// Package ui serves parsed experiments, summaries and the run report over
// HTTP for quick review while a batch of exports is being analyzed.
package ui

import (
	"encoding/json"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"bspace/adapters/behaviorspace"
	"bspace/domain/tidy"
	"bspace/internal/config"
	apperrors "bspace/internal/errors"
	"bspace/internal/report"
	"bspace/internal/summary"
)

// Server is the review HTTP server. Every request parses from the input
// directory on demand; there is no shared mutable state beyond the config.
type Server struct {
	cfg    *config.Config
	router chi.Router
}

// NewServer builds the server and its routes
func NewServer(cfg *config.Config) *Server {
	s := &Server{cfg: cfg}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.handleHealth)
	r.Get("/experiments", s.handleExperiments)
	r.Get("/experiments/{name}", s.handleExperiment)
	r.Get("/experiments/{name}/summary", s.handleSummary)
	r.Get("/report", s.handleReport)

	s.router = r
	return s
}

// Handler exposes the routes for serving and for tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start blocks serving on the configured port
func (s *Server) Start() error {
	addr := ":" + s.cfg.Server.Port
	log.Printf("[ui] review server listening on %s (input %s)", addr, s.cfg.Paths.InputDir)
	return http.ListenAndServe(addr, s.router)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleExperiments(w http.ResponseWriter, r *http.Request) {
	exps, err := report.Scan(s.cfg.Paths.InputDir)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, exps)
}

func (s *Server) handleExperiment(w http.ResponseWriter, r *http.Request) {
	table, err := s.parseExperiment(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, table.Records)
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	by := r.URL.Query().Get("by")
	metrics := splitParam(r.URL.Query().Get("metrics"))
	if by == "" || len(metrics) == 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "by and metrics query parameters are required"})
		return
	}

	table, err := s.parseExperiment(chi.URLParam(r, "name"))
	if err != nil {
		writeError(w, err)
		return
	}
	out, err := summary.SummarizeBy(table, by, metrics)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, out.Records)
}

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	exps, err := report.Scan(s.cfg.Paths.InputDir)
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(report.HTML(report.Markdown(exps)))
}

// parseExperiment parses one named export, final layouts first and the
// time-series layout as fallback
func (s *Server) parseExperiment(name string) (*tidy.Table, error) {
	path := filepath.Join(s.cfg.Paths.InputDir, filepath.Base(name)+".csv")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, apperrors.NotFound("experiment " + filepath.Base(name))
	}

	table, err := behaviorspace.ParseFinal(path)
	if err == nil {
		return table, nil
	}
	if apperrors.HasCode(err, apperrors.CodeUnsupportedLayout) {
		return behaviorspace.ParseAllRunData(path)
	}
	return nil, err
}

func splitParam(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, p := range strings.Split(raw, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ui] write response: %v", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch apperrors.GetCode(err) {
	case apperrors.CodeUnsupportedLayout, apperrors.CodeMalformedSection:
		status = http.StatusUnprocessableEntity
	case apperrors.CodeNotFound:
		status = http.StatusNotFound
	}
	if status == http.StatusInternalServerError {
		log.Printf("[ui] request failed: %v", err)
	}
	writeJSON(w, status, map[string]string{"error": err.Error(), "code": apperrors.GetCode(err)})
}
