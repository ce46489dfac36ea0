package suite

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rigdev/seqtest/internal/config"
	"github.com/rigdev/seqtest/internal/sequence"
	"github.com/rigdev/seqtest/internal/variable"
)

// Build turns a suite definition into a Builder with ${VAR} references in
// commands and patterns resolved from the suite's vars and the environment.
// Script paths are relative to dir.
func Build(s config.SuiteConfig, dir string) (*sequence.Builder, error) {
	src, err := source(s, dir)
	if err != nil {
		return nil, err
	}

	var unresolved []string
	seen := map[string]bool{}
	check := func(tokens []string) {
		for _, tok := range tokens {
			for _, name := range variable.UnresolvedVars(tok, s.Vars) {
				if !seen[name] {
					seen[name] = true
					unresolved = append(unresolved, name)
				}
			}
		}
	}

	b := sequence.New()
	add := func(cmd sequence.Command) {
		check(cmd.Args)
		args := variable.ResolveArgs(cmd.Args, s.Vars, cmd.Shell)
		if cmd.Shell {
			b.Exec(args...)
		} else {
			b.Input(args...)
		}
	}

	for _, step := range src.Steps() {
		add(step.Command())
		patterns := step.Patterns()
		check(patterns)
		b.Output(variable.ResolveArgs(patterns, s.Vars, false)...)
	}
	if cmd, ok := src.PendingCommand(); ok {
		add(cmd)
	}

	if len(unresolved) > 0 {
		return nil, fmt.Errorf("suite %s: unresolved variables: %s", s.Name, strings.Join(unresolved, ", "))
	}
	if err := b.Err(); err != nil {
		return nil, fmt.Errorf("suite %s: %w", s.Name, err)
	}
	return b, nil
}

// source builds the unresolved sequence from the script file or inline steps.
func source(s config.SuiteConfig, dir string) (*sequence.Builder, error) {
	if s.Script != "" {
		path := s.Script
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("suite %s: open script: %w", s.Name, err)
		}
		defer f.Close()

		b, err := sequence.ParseScript(f)
		if err != nil {
			return nil, fmt.Errorf("suite %s: %s: %w", s.Name, s.Script, err)
		}
		return b, nil
	}

	b := sequence.New()
	for _, st := range s.Steps {
		if len(st.Exec) > 0 {
			b.Exec(st.Exec...)
		} else {
			b.Input(st.In...)
		}
		b.Output(st.Out...)
	}
	if err := b.Err(); err != nil {
		return nil, fmt.Errorf("suite %s: %w", s.Name, err)
	}
	return b, nil
}
