package main

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/rigdev/seqtest/internal/config"
	"github.com/rigdev/seqtest/internal/metrics"
	"github.com/rigdev/seqtest/internal/storage"
	"github.com/spf13/cobra"
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded suite runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		suiteName, _ := cmd.Flags().GetString("suite")
		limit, _ := cmd.Flags().GetInt("limit")
		stats, _ := cmd.Flags().GetBool("stats")

		db, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		if stats {
			return printStats(db, suiteName)
		}

		runs, err := db.ListRuns(suiteName, limit)
		if err != nil {
			return fmt.Errorf("list runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		fmt.Printf("%-36s  %-20s  %-4s  %5s  %s\n", "ID", "SUITE", "", "STEPS", "STARTED")
		for _, run := range runs {
			fmt.Printf("%-36s  %-20s  %s  %5d  %s\n",
				run.ID, truncate(run.Suite, 20), statusLabel(run.Passed), len(run.Steps),
				run.StartedAt.Local().Format(time.DateTime))
		}
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Show the steps and output of a recorded run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asJSON, _ := cmd.Flags().GetBool("json")

		db, err := openHistory(cmd)
		if err != nil {
			return err
		}
		defer db.Close()

		run, err := db.GetRun(args[0])
		if err != nil {
			return fmt.Errorf("get run: %w", err)
		}
		if run == nil {
			return fmt.Errorf("run %s not found", args[0])
		}

		if asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(run)
		}

		status := "passed"
		if !run.Passed {
			status = "failed"
		}
		fmt.Printf("Run %s: suite %s %s\n", run.ID, run.Suite, status)
		fmt.Printf("Started %s, took %s\n",
			run.StartedAt.Local().Format(time.DateTime),
			run.CompletedAt.Sub(run.StartedAt).Round(time.Millisecond))
		if run.Error != "" {
			fmt.Printf("Error: %s\n", run.Error)
		}
		for _, step := range run.Steps {
			mark := "ok"
			if !step.Matched {
				mark = "MISMATCH"
			}
			fmt.Printf("\n[%d] %s  (exit %d, %s)\n", step.Index+1, step.Command.String(), step.ExitCode, mark)
			for _, p := range step.Patterns {
				fmt.Printf("    want %q\n", p)
			}
			fmt.Printf("    output: %s\n", truncateOutput(step.Output, 500))
		}
		return nil
	},
}

func printStats(db *storage.DB, suiteName string) error {
	runs, err := db.ListRuns(suiteName, 0)
	if err != nil {
		return fmt.Errorf("list runs: %w", err)
	}
	stats := metrics.Calculate(runs, time.Now(), metrics.DefaultWindow)
	if len(stats) == 0 {
		fmt.Println("No runs in the last 30 days.")
		return nil
	}

	fmt.Printf("%-20s  %5s  %6s  %9s  %13s  %s\n", "SUITE", "RUNS", "PASS%", "MEAN", "TIME TO GREEN", "LAST")
	for _, s := range stats {
		fmt.Printf("%-20s  %5d  %5.1f%%  %9s  %13s  %s\n",
			truncate(s.Suite, 20), s.Runs, s.PassRate,
			s.MeanDuration.Round(time.Millisecond), s.TimeToGreen.Round(time.Second), statusLabel(s.LastPassed))
	}
	return nil
}

func openHistory(cmd *cobra.Command) (*storage.DB, error) {
	configPath, _ := cmd.Flags().GetString("config")

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	db, err := storage.Open(cfg.StoragePath())
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	return db, nil
}
