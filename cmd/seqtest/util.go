package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rigdev/seqtest/internal/config"
	"github.com/rigdev/seqtest/internal/runner"
)

// newRunner builds the step runner described by cfg.
func newRunner(cfg *config.Config) *runner.Runner {
	opts := []runner.Option{runner.WithShell(cfg.Shell)}
	switch cfg.Transport.Type {
	case "ssh":
		opts = append(opts, runner.WithLauncher(runner.NewSSHLauncher(cfg.Transport.SSH)))
	case "pty":
		opts = append(opts, runner.WithLauncher(&runner.PtyLauncher{
			Cols: cfg.Transport.Pty.Cols,
			Rows: cfg.Transport.Pty.Rows,
		}))
	}
	return runner.New(cfg.Base, opts...)
}

// statusLabel renders PASS or FAIL, colored when stdout is a terminal.
func statusLabel(passed bool) string {
	label, color := "PASS", "32"
	if !passed {
		label, color = "FAIL", "31"
	}
	if !isatty.IsTerminal(os.Stdout.Fd()) && !isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		return label
	}
	return "\x1b[" + color + "m" + label + "\x1b[0m"
}

func truncateOutput(s string, max int) string {
	return truncateWithSuffix(s, max, "...")
}

func truncate(s string, max int) string {
	return truncateWithSuffix(s, max, "..")
}

func truncateWithSuffix(s string, max int, suffix string) string {
	if len(s) <= max {
		return s
	}
	if max <= len(suffix) {
		return suffix[:max]
	}
	return s[:max-len(suffix)] + suffix
}
