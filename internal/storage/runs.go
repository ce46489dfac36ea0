package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rigdev/seqtest/internal/runner"
)

// Run is one recorded execution of a suite.
type Run struct {
	ID          string              `json:"id"`
	Suite       string              `json:"suite"`
	Passed      bool                `json:"passed"`
	Error       string              `json:"error,omitempty"`
	Steps       []runner.StepResult `json:"steps"`
	StartedAt   time.Time           `json:"started_at"`
	CompletedAt time.Time           `json:"completed_at"`
}

// NewRun builds a Run from a suite report. report may be nil when the
// sequence failed before any step ran.
func NewRun(suite string, report *runner.Report, runErr error) *Run {
	now := time.Now().UTC()
	r := &Run{
		ID:          uuid.NewString(),
		Suite:       suite,
		StartedAt:   now,
		CompletedAt: now,
	}
	if report != nil {
		r.Passed = report.Passed
		r.Steps = report.Steps
		r.StartedAt = report.StartedAt.UTC()
		r.CompletedAt = report.CompletedAt.UTC()
	}
	if runErr != nil {
		r.Passed = false
		r.Error = runErr.Error()
	}
	return r
}

// SaveRun inserts a run. The step results are stored as JSON in the data column.
func (d *DB) SaveRun(run *Run) error {
	data, err := json.Marshal(run.Steps)
	if err != nil {
		return fmt.Errorf("marshal run: %w", err)
	}

	_, err = d.db.Exec(
		`INSERT INTO runs (id, suite, passed, error, step_count, data, started_at, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Suite, run.Passed, run.Error, len(run.Steps), string(data),
		run.StartedAt, run.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("save run %s: %w", run.ID, err)
	}
	return nil
}

// GetRun retrieves a run by its ID. It returns nil when no run matches.
func (d *DB) GetRun(id string) (*Run, error) {
	row := d.db.QueryRow(
		`SELECT id, suite, passed, error, data, started_at, completed_at FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

// ListRuns returns the most recent runs first. suite filters by name when
// non-empty; limit <= 0 returns every run.
func (d *DB) ListRuns(suite string, limit int) ([]Run, error) {
	query := `SELECT id, suite, passed, error, data, started_at, completed_at FROM runs`
	var args []any
	if suite != "" {
		query += ` WHERE suite = ?`
		args = append(args, suite)
	}
	query += ` ORDER BY started_at DESC, rowid DESC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, *run)
	}
	return runs, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*Run, error) {
	var run Run
	var data string
	if err := s.Scan(&run.ID, &run.Suite, &run.Passed, &run.Error, &data, &run.StartedAt, &run.CompletedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(data), &run.Steps); err != nil {
		return nil, fmt.Errorf("unmarshal run %s: %w", run.ID, err)
	}
	return &run, nil
}
