package store

import (
	"database/sql"

	_ "github.com/glebarez/go-sqlite"

	"github.com/keremvatan/go-mobile-signup-agent/internal/workflow"
)

// RunStore persists runs and their action log to SQLite.
type RunStore struct {
	DB *sql.DB
}

func NewRunStore(dbPath string) (*RunStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT,
			success INTEGER DEFAULT 0,
			progress INTEGER DEFAULT 0,
			final_step TEXT,
			error_message TEXT,
			total_actions INTEGER DEFAULT 0,
			duration_ms INTEGER DEFAULT 0,
			started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			finished_at DATETIME
		);`,
		`CREATE TABLE IF NOT EXISTS action_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id INTEGER,
			step TEXT,
			verb TEXT,
			success INTEGER,
			description TEXT,
			duration_ms INTEGER,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			db.Close()
			return nil, err
		}
	}

	return &RunStore{DB: db}, nil
}

// CreateRun inserts a new run row and returns its id.
func (s *RunStore) CreateRun(email string) (int64, error) {
	res, err := s.DB.Exec(`INSERT INTO runs (email) VALUES (?)`, email)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FinishRun stores the final summary on the run row.
func (s *RunStore) FinishRun(runID int64, sum workflow.Summary) error {
	_, err := s.DB.Exec(
		`UPDATE runs SET success = ?, progress = ?, final_step = ?, error_message = ?,
			total_actions = ?, duration_ms = ?, finished_at = datetime('now')
		 WHERE id = ?`,
		boolToInt(sum.Success), sum.Progress, sum.Step.String(), sum.ErrorMessage,
		sum.TotalActions, sum.Duration.Milliseconds(), runID)
	return err
}

// RunRecorder binds a store to one run id so it can plug into the
// engine as its action recorder.
type RunRecorder struct {
	store *RunStore
	runID int64
}

func (s *RunStore) Recorder(runID int64) *RunRecorder {
	return &RunRecorder{store: s, runID: runID}
}

// RecordAction appends one evaluated action to the run's log.
func (r *RunRecorder) RecordAction(step workflow.Step, verb workflow.Verb, out workflow.Outcome) error {
	_, err := r.store.DB.Exec(
		`INSERT INTO action_log (run_id, step, verb, success, description, duration_ms)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		r.runID, step.String(), string(verb), boolToInt(out.Success),
		out.Description, out.Duration.Milliseconds())
	return err
}

// RunRecord is one row from the runs table. StartedAt stays in
// SQLite's datetime text form.
type RunRecord struct {
	ID           int64  `json:"id"`
	Email        string `json:"email"`
	Success      bool   `json:"success"`
	Progress     int    `json:"progress"`
	FinalStep    string `json:"final_step"`
	ErrorMessage string `json:"error_message"`
	TotalActions int    `json:"total_actions"`
	DurationMs   int64  `json:"duration_ms"`
	StartedAt    string `json:"started_at"`
}

// RecentRuns returns the latest runs, newest first.
func (s *RunStore) RecentRuns(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.DB.Query(
		`SELECT id, email, success, progress, COALESCE(final_step, ''),
			COALESCE(error_message, ''), total_actions, duration_ms, started_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var rec RunRecord
		var success int
		if err := rows.Scan(&rec.ID, &rec.Email, &success, &rec.Progress,
			&rec.FinalStep, &rec.ErrorMessage, &rec.TotalActions,
			&rec.DurationMs, &rec.StartedAt); err != nil {
			return nil, err
		}
		rec.Success = success != 0
		records = append(records, rec)
	}
	return records, rows.Err()
}

// GetRun returns one run by id, or nil when it does not exist.
func (s *RunStore) GetRun(runID int64) (*RunRecord, error) {
	row := s.DB.QueryRow(
		`SELECT id, email, success, progress, COALESCE(final_step, ''),
			COALESCE(error_message, ''), total_actions, duration_ms, started_at
		 FROM runs WHERE id = ?`, runID)
	var rec RunRecord
	var success int
	err := row.Scan(&rec.ID, &rec.Email, &success, &rec.Progress,
		&rec.FinalStep, &rec.ErrorMessage, &rec.TotalActions,
		&rec.DurationMs, &rec.StartedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	rec.Success = success != 0
	return &rec, nil
}

func (s *RunStore) Close() error {
	return s.DB.Close()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
