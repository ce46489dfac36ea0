// Package runner executes step sequences as external processes and checks
// their merged output against the expected patterns.
package runner

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/rigdev/seqtest/internal/sequence"
)

// DefaultShell returns the platform shell prefix for shell steps.
func DefaultShell() []string {
	if runtime.GOOS == "windows" {
		return []string{"powershell", "-Command"}
	}
	return []string{"sh", "-c"}
}

// Runner executes steps one after another.
type Runner struct {
	base     []string
	shell    []string
	console  io.Writer
	launcher Launcher
}

// Option configures a Runner.
type Option func(*Runner)

// WithShell overrides the shell prefix used for shell steps.
func WithShell(shell []string) Option {
	return func(r *Runner) {
		if len(shell) > 0 {
			r.shell = append([]string(nil), shell...)
		}
	}
}

// WithConsole sets where step output is streamed. Defaults to os.Stdout.
func WithConsole(w io.Writer) Option {
	return func(r *Runner) { r.console = w }
}

// WithLauncher sets how step processes are started.
func WithLauncher(l Launcher) Option {
	return func(r *Runner) { r.launcher = l }
}

// New creates a Runner whose invocation steps are appended to base.
func New(base []string, opts ...Option) *Runner {
	r := &Runner{
		base:     append([]string(nil), base...),
		shell:    DefaultShell(),
		console:  os.Stdout,
		launcher: &LocalLauncher{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Argv returns the full argument vector for cmd.
func (r *Runner) Argv(cmd sequence.Command) []string {
	if cmd.Shell {
		argv := append([]string(nil), r.shell...)
		return append(argv, strings.Join(cmd.Args, " "))
	}
	argv := append([]string(nil), r.base...)
	return append(argv, cmd.Args...)
}

// RunBuilder runs the sequence recorded by b. Builder misuse is reported
// before any process is launched.
func (r *Runner) RunBuilder(ctx context.Context, b *sequence.Builder) (*Report, error) {
	steps, err := b.Sequence()
	if err != nil {
		return nil, err
	}
	return r.Run(ctx, steps)
}

// Run executes steps in order. It stops at the first step whose output
// does not match and returns the report of the steps executed so far
// together with the error. Exit codes are recorded but never judged.
func (r *Runner) Run(ctx context.Context, steps []sequence.Step) (*Report, error) {
	if len(steps) == 0 {
		return nil, &sequence.ConfigurationError{Reason: "sequence not configured"}
	}

	report := &Report{StartedAt: time.Now()}
	defer report.finish()

	for i, step := range steps {
		res, err := r.runStep(ctx, i, step)
		if res != nil {
			report.Steps = append(report.Steps, *res)
		}
		if err != nil {
			return report, err
		}
	}
	report.Passed = true
	return report, nil
}

func (r *Runner) runStep(ctx context.Context, idx int, step sequence.Step) (*StepResult, error) {
	cmd := step.Command()
	argv := r.Argv(cmd)
	log.Printf("[runner] step %d: %s", idx+1, strings.Join(argv, " "))

	start := time.Now()
	proc, err := r.launcher.Launch(ctx, argv)
	if err != nil {
		return nil, &ProcessLaunchError{Argv: argv, Err: err}
	}

	// One read loop feeds both the console and the match buffer, so they
	// see the same bytes in the same order.
	var buf bytes.Buffer
	_, copyErr := io.Copy(io.MultiWriter(r.console, &buf), proc.Output())
	exitCode, waitErr := proc.Wait()

	res := &StepResult{
		Index:    idx,
		Command:  cmd,
		Argv:     argv,
		Patterns: step.Patterns(),
		Output:   buf.String(),
		ExitCode: exitCode,
		Duration: time.Since(start),
	}
	// The partial result keeps whatever output was already streamed.
	if copyErr != nil {
		return res, &ProcessLaunchError{Argv: argv, Err: fmt.Errorf("capture output: %w", copyErr)}
	}
	if waitErr != nil {
		return res, &ProcessLaunchError{Argv: argv, Err: fmt.Errorf("wait: %w", waitErr)}
	}

	missing, ok, err := firstMissing(res.Output, res.Patterns)
	if err != nil {
		return res, err
	}
	res.Matched = ok
	if !ok {
		log.Printf("[runner] step %d: pattern %q not found", idx+1, missing)
		return res, &StepMismatchError{
			Index:   idx,
			Command: cmd,
			Argv:    argv,
			Pattern: missing,
			Output:  res.Output,
		}
	}
	return res, nil
}
