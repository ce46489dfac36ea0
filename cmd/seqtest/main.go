package main

import (
	"fmt"
	"os"

	"github.com/rigdev/seqtest/internal/config"
	"github.com/spf13/cobra"
)

var version = "dev"

const defaultConfigPath = "seqtest.yaml"

var rootCmd = &cobra.Command{
	Use:          "seqtest",
	Short:        "seqtest: declarative command/output test sequences",
	Long:         "seqtest runs ordered (command, expected output) steps against a program and fails on the first step whose output lacks an expected pattern.",
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("seqtest version %s\n", version)
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration file",
	RunE: func(cmd *cobra.Command, args []string) error {
		configPath, _ := cmd.Flags().GetString("config")

		if _, err := config.LoadConfig(configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Config validation failed: %v\n", err)
			return err
		}

		fmt.Printf("Config validation passed: %s\n", configPath)
		return nil
	},
}

func main() {
	// Register flags.
	validateCmd.Flags().StringP("config", "c", defaultConfigPath, "Path to config file")

	runCmd.Flags().StringP("config", "c", defaultConfigPath, "Path to config file")
	runCmd.Flags().StringSliceP("suite", "s", nil, "Run only the named suites (repeatable)")
	runCmd.Flags().StringSlice("base", nil, "Base invocation for script arguments (overrides config)")
	runCmd.Flags().Bool("no-history", false, "Do not record runs in the history database")

	checkCmd.Flags().StringP("config", "c", defaultConfigPath, "Path to config file")
	checkCmd.Flags().BoolP("verbose", "v", false, "Print the command line of every step")

	historyCmd.Flags().StringP("config", "c", defaultConfigPath, "Path to config file")
	historyCmd.Flags().StringP("suite", "s", "", "Show only runs of this suite")
	historyCmd.Flags().IntP("limit", "n", 20, "Maximum number of runs to show")
	historyCmd.Flags().Bool("stats", false, "Show per-suite statistics for the last 30 days")

	showCmd.Flags().StringP("config", "c", defaultConfigPath, "Path to config file")
	showCmd.Flags().Bool("json", false, "Print the run as JSON")

	serveCmd.Flags().StringP("config", "c", defaultConfigPath, "Path to config file")
	serveCmd.Flags().IntP("port", "p", 0, "Override server port")

	initCmd.Flags().Bool("force", false, "Overwrite existing files")

	// Register all commands.
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(serveCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
