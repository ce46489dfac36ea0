package storage

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/rigdev/seqtest/internal/runner"
	"github.com/rigdev/seqtest/internal/sequence"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	dir := t.TempDir()
	db, err := Open(filepath.Join(dir, "nested", "test.db"))
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testRun(id, suite string, passed bool, started time.Time) *Run {
	return &Run{
		ID:     id,
		Suite:  suite,
		Passed: passed,
		Steps: []runner.StepResult{{
			Index:    0,
			Command:  sequence.Command{Args: []string{"-Q"}},
			Argv:     []string{"pacaptr", "-Q"},
			Patterns: []string{"apt"},
			Output:   "apt 2.4\n",
			Matched:  passed,
		}},
		StartedAt:   started,
		CompletedAt: started.Add(time.Second),
	}
}

func TestRuns_SaveAndGet(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC().Truncate(time.Second)

	if err := db.SaveRun(testRun("run-1", "apt", true, now)); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := db.GetRun("run-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got == nil {
		t.Fatal("expected run, got nil")
	}
	if got.Suite != "apt" || !got.Passed {
		t.Errorf("unexpected run: %+v", got)
	}
	if len(got.Steps) != 1 || got.Steps[0].Output != "apt 2.4\n" {
		t.Errorf("unexpected steps: %+v", got.Steps)
	}
	if got.Steps[0].Argv[0] != "pacaptr" {
		t.Errorf("argv = %v", got.Steps[0].Argv)
	}
	if !got.StartedAt.Equal(now) {
		t.Errorf("started_at = %v, want %v", got.StartedAt, now)
	}
}

func TestRuns_GetMissing(t *testing.T) {
	db := testDB(t)

	got, err := db.GetRun("nonexistent")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestRuns_DuplicateID(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC()

	if err := db.SaveRun(testRun("run-1", "apt", true, now)); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := db.SaveRun(testRun("run-1", "apt", true, now)); err == nil {
		t.Fatal("expected error for duplicate id")
	}
}

func TestRuns_List(t *testing.T) {
	db := testDB(t)
	now := time.Now().UTC()

	db.SaveRun(testRun("run-1", "apt", true, now))
	db.SaveRun(testRun("run-2", "dnf", false, now.Add(time.Second)))
	db.SaveRun(testRun("run-3", "apt", false, now.Add(2*time.Second)))

	runs, err := db.ListRuns("", 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("got %d runs, want 3", len(runs))
	}
	if runs[0].ID != "run-3" {
		t.Errorf("expected run-3 first, got %s", runs[0].ID)
	}

	runs, err = db.ListRuns("apt", 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 1 || runs[0].ID != "run-3" {
		t.Errorf("filtered runs = %+v", runs)
	}
}

func TestNewRun(t *testing.T) {
	started := time.Date(2025, 1, 15, 10, 0, 0, 0, time.UTC)
	report := &runner.Report{
		Passed:      true,
		StartedAt:   started,
		CompletedAt: started.Add(2 * time.Second),
		Steps:       []runner.StepResult{{Index: 0, Matched: true}},
	}

	run := NewRun("apt", report, nil)
	if run.ID == "" {
		t.Error("expected generated id")
	}
	if !run.Passed || run.Error != "" || len(run.Steps) != 1 {
		t.Errorf("unexpected run: %+v", run)
	}
	if !run.StartedAt.Equal(started) {
		t.Errorf("started_at = %v", run.StartedAt)
	}

	failed := NewRun("apt", nil, errors.New("protocol error: consecutive input"))
	if failed.Passed {
		t.Error("expected failed run")
	}
	if failed.Error != "protocol error: consecutive input" {
		t.Errorf("error = %q", failed.Error)
	}
	if failed.ID == run.ID {
		t.Error("expected unique ids")
	}
}
