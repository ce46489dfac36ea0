package runner

import (
	"fmt"
	"strings"

	"github.com/rigdev/seqtest/internal/sequence"
)

// ProcessLaunchError reports a step process that could not be started or
// whose output could not be captured.
type ProcessLaunchError struct {
	Argv []string
	Err  error
}

func (e *ProcessLaunchError) Error() string {
	return fmt.Sprintf("launch %q: %v", strings.Join(e.Argv, " "), e.Err)
}

func (e *ProcessLaunchError) Unwrap() error { return e.Err }

// StepMismatchError reports a step whose output lacked an expected pattern.
type StepMismatchError struct {
	Index   int // zero-based
	Command sequence.Command
	Argv    []string
	Pattern string
	Output  string
}

func (e *StepMismatchError) Error() string {
	return fmt.Sprintf("step %d failed with %q: pattern %q not found in output",
		e.Index+1, strings.Join(e.Argv, " "), e.Pattern)
}

// PatternError reports an expected pattern that is not a valid regexp.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }
