package runner

import (
	"time"

	"github.com/rigdev/seqtest/internal/sequence"
)

// Report describes one execution of a sequence.
type Report struct {
	Steps       []StepResult  `json:"steps"`
	Passed      bool          `json:"passed"`
	StartedAt   time.Time     `json:"started_at"`
	CompletedAt time.Time     `json:"completed_at"`
	Duration    time.Duration `json:"duration"`
}

func (r *Report) finish() {
	r.CompletedAt = time.Now()
	r.Duration = r.CompletedAt.Sub(r.StartedAt)
}

// StepResult records what one step printed and whether it matched.
type StepResult struct {
	Index    int              `json:"index"`
	Command  sequence.Command `json:"command"`
	Argv     []string         `json:"argv"`
	Patterns []string         `json:"patterns"`
	Output   string           `json:"output"`
	ExitCode int              `json:"exit_code"`
	Matched  bool             `json:"matched"`
	Duration time.Duration    `json:"duration"`
}
