// Package api exposes the signup agent over HTTP. Runs are started in
// the background, each with its own driver session, and tracked through
// the run store.
package api

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/keremvatan/go-mobile-signup-agent/internal/store"
	"github.com/keremvatan/go-mobile-signup-agent/internal/workflow"
)

// Launcher starts one signup run for the account and reports its
// outcome through the run store. Implementations own session setup and
// teardown.
type Launcher func(runID int64, acc workflow.Account)

// Server is the REST surface over the run store.
type Server struct {
	store    *store.RunStore
	launcher Launcher
}

func NewServer(st *store.RunStore, launcher Launcher) *Server {
	return &Server{store: st, launcher: launcher}
}

// Routes registers the handlers on a fresh mux.
func (s *Server) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/runs/", s.handleRunByID)
	mux.HandleFunc("/api/health", s.handleHealth)
	return mux
}

// ListenAndServe blocks serving the API.
func (s *Server) ListenAndServe(addr string) error {
	log.Printf("signup agent API listening on %s", addr)
	return http.ListenAndServe(addr, s.Routes())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
