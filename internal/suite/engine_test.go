package suite

import (
	"context"
	"errors"
	"io"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rigdev/seqtest/internal/config"
	"github.com/rigdev/seqtest/internal/notify"
	"github.com/rigdev/seqtest/internal/runner"
	"github.com/rigdev/seqtest/internal/storage"
)

type recordingNotifier struct {
	events  []notify.Event
	msgs    []string
	ctxErrs []error
}

func (n *recordingNotifier) Notify(ctx context.Context, ev notify.Event, msg string) error {
	n.events = append(n.events, ev)
	n.msgs = append(n.msgs, msg)
	n.ctxErrs = append(n.ctxErrs, ctx.Err())
	return nil
}

func testConfig() *config.Config {
	return &config.Config{
		Base: []string{"echo"},
		Suites: []config.SuiteConfig{
			{
				Name:  "greet",
				Vars:  map[string]string{"WHO": "world"},
				Steps: []config.StepConfig{{In: []string{"hello", "${WHO}"}, Out: []string{"^hello world$"}}},
			},
			{
				Name: "broken",
				Steps: []config.StepConfig{
					{In: []string{"nothing"}, Out: []string{"something"}},
					{Exec: []string{"echo", "never"}, Out: []string{"never"}},
				},
			},
		},
	}
}

func testRunner() *runner.Runner {
	return runner.New([]string{"echo"}, runner.WithConsole(io.Discard), runner.WithShell([]string{"sh", "-c"}))
}

func TestEngine_RunAll(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	n := &recordingNotifier{}

	engine := NewEngine(testConfig(), testRunner(), db, []notify.Notifier{n})
	runs, err := engine.Run(context.Background(), nil)

	if err == nil {
		t.Fatal("expected error from broken suite")
	}
	var mismatch *runner.StepMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("error = %v, want it to wrap *runner.StepMismatchError", err)
	}
	if !strings.Contains(err.Error(), "suite broken") {
		t.Errorf("error = %q, want it to name the suite", err.Error())
	}

	if len(runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(runs))
	}
	if !runs[0].Passed || runs[1].Passed {
		t.Errorf("passed = %v/%v, want true/false", runs[0].Passed, runs[1].Passed)
	}
	if len(runs[1].Steps) != 1 {
		t.Errorf("broken suite ran %d steps, want 1", len(runs[1].Steps))
	}

	stored, err := db.ListRuns("", 0)
	if err != nil {
		t.Fatalf("list runs: %v", err)
	}
	if len(stored) != 2 {
		t.Errorf("stored runs = %d, want 2", len(stored))
	}

	if len(n.events) != 2 || n.events[0] != notify.EventPass || n.events[1] != notify.EventFail {
		t.Errorf("events = %v", n.events)
	}
}

func TestEngine_RunSelected(t *testing.T) {
	engine := NewEngine(testConfig(), testRunner(), nil, nil)

	runs, err := engine.Run(context.Background(), []string{"greet"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(runs) != 1 || runs[0].Suite != "greet" {
		t.Fatalf("runs = %+v", runs)
	}
	if got := runs[0].Steps[0].Output; got != "hello world\n" {
		t.Errorf("output = %q", got)
	}
}

func TestEngine_UnknownSuite(t *testing.T) {
	engine := NewEngine(testConfig(), testRunner(), nil, nil)

	_, err := engine.Run(context.Background(), []string{"missing"})
	if err == nil || !strings.Contains(err.Error(), `unknown suite "missing"`) {
		t.Fatalf("error = %v", err)
	}
}

func TestEngine_BuildFailureIsRecorded(t *testing.T) {
	cfg := testConfig()
	cfg.Suites = []config.SuiteConfig{{
		Name:  "unresolved",
		Steps: []config.StepConfig{{In: []string{"${SEQTEST_NOT_SET_ANYWHERE}"}, Out: []string{"x"}}},
	}}
	n := &recordingNotifier{}
	engine := NewEngine(cfg, testRunner(), nil, []notify.Notifier{n})

	runs, err := engine.Run(context.Background(), nil)
	if err == nil {
		t.Fatal("expected error")
	}
	if runs[0].Passed || !strings.Contains(runs[0].Error, "unresolved") {
		t.Errorf("run = %+v", runs[0])
	}
	if len(n.events) != 1 || n.events[0] != notify.EventFail {
		t.Errorf("events = %v", n.events)
	}
}

func TestEngine_CancelledRunIsStillRecorded(t *testing.T) {
	db, err := storage.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()
	n := &recordingNotifier{}
	engine := NewEngine(testConfig(), testRunner(), db, []notify.Notifier{n})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	runs, err := engine.Run(ctx, []string{"greet"})
	if err == nil {
		t.Fatal("expected error from cancelled run")
	}
	if len(runs) != 1 || runs[0].Passed {
		t.Fatalf("runs = %+v, want one failed run", runs)
	}

	stored, err := db.GetRun(runs[0].ID)
	if err != nil || stored == nil {
		t.Fatalf("GetRun = %v, %v; want the cancelled run in history", stored, err)
	}
	if len(n.ctxErrs) != 1 || n.ctxErrs[0] != nil {
		t.Errorf("notify context errors = %v, want a live context", n.ctxErrs)
	}
}
