// Package suite runs the sequences declared in a seqtest configuration.
package suite

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/rigdev/seqtest/internal/config"
	"github.com/rigdev/seqtest/internal/notify"
	"github.com/rigdev/seqtest/internal/runner"
	"github.com/rigdev/seqtest/internal/storage"
)

// RunStore persists finished runs.
type RunStore interface {
	SaveRun(run *storage.Run) error
}

// Engine runs suites through a Runner, records each run, and notifies.
type Engine struct {
	cfg       *config.Config
	runner    *runner.Runner
	store     RunStore
	notifiers []notify.Notifier
}

// NewEngine creates an Engine. store may be nil to skip history.
func NewEngine(cfg *config.Config, r *runner.Runner, store RunStore, notifiers []notify.Notifier) *Engine {
	return &Engine{
		cfg:       cfg,
		runner:    r,
		store:     store,
		notifiers: notifiers,
	}
}

// Run executes the named suites in configuration order, or every suite when
// names is empty. A failing suite does not stop the ones after it; the
// returned error joins every suite failure.
func (e *Engine) Run(ctx context.Context, names []string) ([]*storage.Run, error) {
	suites, err := e.selectSuites(names)
	if err != nil {
		return nil, err
	}

	var runs []*storage.Run
	var errs []error
	for _, s := range suites {
		run, err := e.runSuite(ctx, s)
		runs = append(runs, run)
		if err != nil {
			errs = append(errs, fmt.Errorf("suite %s: %w", s.Name, err))
		}
	}
	return runs, errors.Join(errs...)
}

func (e *Engine) selectSuites(names []string) ([]config.SuiteConfig, error) {
	if len(names) == 0 {
		return e.cfg.Suites, nil
	}
	want := map[string]bool{}
	for _, n := range names {
		if _, ok := e.cfg.Suite(n); !ok {
			return nil, fmt.Errorf("unknown suite %q", n)
		}
		want[n] = true
	}
	var out []config.SuiteConfig
	for _, s := range e.cfg.Suites {
		if want[s.Name] {
			out = append(out, s)
		}
	}
	return out, nil
}

func (e *Engine) runSuite(ctx context.Context, s config.SuiteConfig) (*storage.Run, error) {
	log.Printf("[suite] running %s", s.Name)

	var report *runner.Report
	b, err := Build(s, e.cfg.Dir)
	if err == nil {
		report, err = e.runner.RunBuilder(ctx, b)
	}

	run := storage.NewRun(s.Name, report, err)
	if err != nil {
		log.Printf("[suite] %s failed: %v", s.Name, err)
	} else {
		log.Printf("[suite] %s passed (%d steps)", s.Name, len(run.Steps))
	}

	if e.store != nil {
		if saveErr := e.store.SaveRun(run); saveErr != nil {
			log.Printf("[suite] failed to save run %s: %v", run.ID, saveErr)
		}
	}
	// A cancelled run is still reported.
	e.notify(context.WithoutCancel(ctx), run)

	return run, err
}

func (e *Engine) notify(ctx context.Context, run *storage.Run) {
	ev := notify.EventPass
	if !run.Passed {
		ev = notify.EventFail
	}
	msg := notify.Summary(run.Suite, run.Passed, len(run.Steps), run.Error)
	for _, n := range e.notifiers {
		if err := n.Notify(ctx, ev, msg); err != nil {
			log.Printf("[suite] notification failed: %v", err)
		}
	}
}
