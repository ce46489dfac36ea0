package sequence

import "strings"

// Command is the input half of a step.
type Command struct {
	Args []string `json:"args"`
	// Shell marks a command that runs through the platform shell instead of
	// being appended to the base invocation.
	Shell bool `json:"shell,omitempty"`
}

// String renders the command for diagnostics.
func (c Command) String() string {
	s := strings.Join(c.Args, " ")
	if c.Shell {
		return "! " + s
	}
	return s
}

func (c Command) clone() Command {
	return Command{Args: append([]string(nil), c.Args...), Shell: c.Shell}
}

// Step pairs a command with the patterns its output must contain.
type Step struct {
	cmd      Command
	patterns []string
}

// NewStep creates a Step from copies of cmd and patterns.
func NewStep(cmd Command, patterns []string) Step {
	return Step{cmd: cmd.clone(), patterns: append([]string(nil), patterns...)}
}

// Command returns a copy of the step's command.
func (s Step) Command() Command {
	return s.cmd.clone()
}

// Patterns returns a copy of the expected patterns in declaration order.
func (s Step) Patterns() []string {
	return append([]string(nil), s.patterns...)
}
