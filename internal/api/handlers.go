package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/keremvatan/go-mobile-signup-agent/internal/workflow"
)

// startRunRequest is the POST /api/runs body. All fields are optional,
// missing identity falls back to a generated demo account.
type startRunRequest struct {
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DateOfBirth string `json:"date_of_birth"`
}

func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listRuns(w, r)
	case http.MethodPost:
		s.startRun(w, r)
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func (s *Server) listRuns(w http.ResponseWriter, r *http.Request) {
	limit := 20
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			limit = n
		}
	}
	records, err := s.store.RecentRuns(limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"runs": records})
}

func (s *Server) startRun(w http.ResponseWriter, r *http.Request) {
	var req startRunRequest
	if r.Body != nil {
		// An empty body starts a demo run.
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	var acc workflow.Account
	var err error
	if req.FirstName != "" && req.LastName != "" && req.DateOfBirth != "" {
		acc, err = workflow.GenerateAccount(req.FirstName, req.LastName, req.DateOfBirth)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	} else {
		acc = workflow.DemoAccount()
	}

	runID, err := s.store.CreateRun(acc.Email)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	go s.launcher(runID, acc)

	writeJSON(w, http.StatusAccepted, map[string]any{
		"run_id": runID,
		"email":  acc.Email,
		"status": "started",
	})
}

func (s *Server) handleRunByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	idStr := strings.TrimPrefix(r.URL.Path, "/api/runs/")
	runID, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid run id")
		return
	}
	rec, err := s.store.GetRun(runID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if rec == nil {
		writeError(w, http.StatusNotFound, "run not found")
		return
	}
	writeJSON(w, http.StatusOK, rec)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
