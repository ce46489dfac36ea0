package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rigdev/seqtest/internal/config"
	"github.com/rigdev/seqtest/internal/notify"
	"github.com/rigdev/seqtest/internal/runner"
	"github.com/rigdev/seqtest/internal/sequence"
	"github.com/rigdev/seqtest/internal/storage"
	"github.com/rigdev/seqtest/internal/suite"
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run [script...]",
	Short: "Run configured suites, or the given script files",
	Long: `Run executes test sequences.

With no arguments every suite in the config file is run (or only those
named with --suite). Each run is recorded in the history database and
reported to the configured notification channels.

With script arguments each file is parsed and run directly against the
--base invocation (or the config file's base when --base is omitted).
Script runs are not recorded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(args) > 0 {
			return runScripts(cmd, args)
		}
		return runSuites(cmd)
	},
}

func runSuites(cmd *cobra.Command) error {
	configPath, _ := cmd.Flags().GetString("config")
	names, _ := cmd.Flags().GetStringSlice("suite")
	base, _ := cmd.Flags().GetStringSlice("base")
	noHistory, _ := cmd.Flags().GetBool("no-history")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if len(base) > 0 {
		cfg.Base = base
	}

	notifiers, err := notify.FromConfig(cfg.Notify)
	if err != nil {
		return err
	}

	var store suite.RunStore
	if !noHistory && !cfg.Storage.Disabled {
		db, err := storage.Open(cfg.StoragePath())
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer db.Close()
		store = db
	}

	engine := suite.NewEngine(cfg, newRunner(cfg), store, notifiers)
	runs, err := engine.Run(cmd.Context(), names)

	fmt.Println()
	failed := 0
	for _, run := range runs {
		if !run.Passed {
			failed++
		}
		fmt.Printf("  %s  %-24s  %d steps  %s\n", statusLabel(run.Passed), truncate(run.Suite, 24), len(run.Steps), run.ID)
	}
	fmt.Printf("\n%d suites, %d failed\n", len(runs), failed)

	return err
}

func runScripts(cmd *cobra.Command, paths []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	base, _ := cmd.Flags().GetStringSlice("base")

	var cfg *config.Config
	if len(base) == 0 {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("no --base given and config unavailable: %w", err)
		}
		cfg = loaded
	} else {
		cfg = &config.Config{Base: base, Transport: config.TransportConfig{Type: "local"}}
	}

	r := newRunner(cfg)
	var errs []error
	for _, path := range paths {
		if err := runScript(cmd, r, path); err != nil {
			fmt.Printf("%s %s: %v\n", statusLabel(false), path, err)
			errs = append(errs, fmt.Errorf("%s: %w", filepath.Base(path), err))
			continue
		}
		fmt.Printf("%s %s\n", statusLabel(true), path)
	}
	return errors.Join(errs...)
}

func runScript(cmd *cobra.Command, r *runner.Runner, path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open script: %w", err)
	}
	defer f.Close()

	b, err := sequence.ParseScript(f)
	if err != nil {
		return err
	}
	_, err = r.RunBuilder(cmd.Context(), b)
	return err
}
