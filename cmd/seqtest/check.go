package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/rigdev/seqtest/internal/config"
	"github.com/rigdev/seqtest/internal/runner"
	"github.com/rigdev/seqtest/internal/suite"
	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Build every suite and compile its patterns without running anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")
		verbose, _ := cmd.Flags().GetBool("verbose")

		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}

		r := newRunner(cfg)
		var errs []error
		for _, s := range cfg.Suites {
			argvs, err := checkSuite(r, s, cfg.Dir)
			if err != nil {
				fmt.Fprintf(os.Stderr, "  %-24s  %v\n", truncate(s.Name, 24), err)
				errs = append(errs, fmt.Errorf("suite %s: %w", s.Name, err))
				continue
			}
			fmt.Printf("  %-24s  ok (%d steps)\n", truncate(s.Name, 24), len(argvs))
			if verbose {
				for i, argv := range argvs {
					fmt.Printf("      %d. %s\n", i+1, strings.Join(argv, " "))
				}
			}
		}
		return errors.Join(errs...)
	},
}

// checkSuite builds s and returns the argv each step would launch.
func checkSuite(r *runner.Runner, s config.SuiteConfig, dir string) ([][]string, error) {
	b, err := suite.Build(s, dir)
	if err != nil {
		return nil, err
	}
	steps, err := b.Sequence()
	if err != nil {
		return nil, err
	}
	argvs := make([][]string, 0, len(steps))
	for i, step := range steps {
		// Matching against empty text surfaces compile errors only.
		if _, err := runner.MatchesAll("", step.Patterns()); err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, truncateOutput(step.Command().String(), 60), err)
		}
		argvs = append(argvs, r.Argv(step.Command()))
	}
	return argvs, nil
}
