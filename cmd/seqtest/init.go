package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Generate a seqtest.yaml template and an example script",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")

		files := []struct {
			path    string
			content string
		}{
			{defaultConfigPath, configTemplate()},
			{filepath.Join("scripts", "echo.seq"), scriptTemplate()},
		}

		for _, f := range files {
			if _, err := os.Stat(f.path); err == nil && !force {
				return fmt.Errorf("%s already exists; remove it first or pass --force", f.path)
			}
		}
		for _, f := range files {
			if err := os.MkdirAll(filepath.Dir(f.path), 0755); err != nil {
				return fmt.Errorf("create %s: %w", filepath.Dir(f.path), err)
			}
			if err := os.WriteFile(f.path, []byte(f.content), 0644); err != nil {
				return fmt.Errorf("write %s: %w", f.path, err)
			}
			fmt.Printf("Created %s\n", f.path)
		}

		fmt.Println("Edit the base invocation, then run 'seqtest check' and 'seqtest run'.")
		return nil
	},
}

func configTemplate() string {
	return `project:
  name: my-project
  description: "Command-line behaviour tests"

# Invocation prefix for 'in' steps. Shell steps ('exec', 'in !') use the
# platform shell instead.
base: ["echo"]

transport:
  type: local
  # type: ssh
  # ssh:
  #   host: test-box
  #   user: ci
  #   key: ~/.ssh/id_ed25519

suites:
  - name: inline
    vars:
      WORD: hello
    steps:
      - in: ["${WORD}", "world"]
        out: ["^hello world$"]
      - exec: ["echo out; echo err 1>&2"]
        out: ["^out$", "^err$"]

  - name: script
    script: scripts/echo.seq

storage:
  path: .seqtest/history.db

# notify:
#   - type: slack
#     webhook: ${SLACK_WEBHOOK_URL}
#     on: [fail]

server:
  port: 3000
  # Enables POST /webhook on 'seqtest serve' (GitHub push hooks or CI).
  # secret: ${SEQTEST_WEBHOOK_SECRET}
`
}

func scriptTemplate() string {
	return `# Lines: 'in <args>' runs base + args, 'in ! <cmd>' runs a shell command,
# 'ou <regex>' lists a pattern the preceding input's output must contain.

in -n seqtest
ou ^seqtest$

in ! printf 'Package: demo\nStatus: installed\n'
ou ^Package: demo$
ou ^Status: (installed|held)$
`
}
