// Package metrics summarizes recorded suite runs.
package metrics

import (
	"sort"
	"time"

	"github.com/rigdev/seqtest/internal/storage"
)

// DefaultWindow is the period Calculate looks back over.
const DefaultWindow = 30 * 24 * time.Hour

// SuiteStats summarizes the runs of one suite inside the window.
type SuiteStats struct {
	Suite        string        `json:"suite"`
	Runs         int           `json:"runs"`
	Passed       int           `json:"passed"`
	Failed       int           `json:"failed"`
	PassRate     float64       `json:"pass_rate"`
	MeanDuration time.Duration `json:"mean_duration"`
	// TimeToGreen is the mean time from the first failing run to the next
	// passing one.
	TimeToGreen time.Duration `json:"time_to_green"`
	LastPassed  bool          `json:"last_passed"`
	LastRunAt   time.Time     `json:"last_run_at"`
}

// Calculate computes per-suite statistics for runs started after now-window,
// sorted by suite name.
func Calculate(runs []storage.Run, now time.Time, window time.Duration) []SuiteStats {
	since := now.Add(-window)

	bySuite := map[string][]storage.Run{}
	for _, run := range runs {
		if run.StartedAt.After(since) {
			bySuite[run.Suite] = append(bySuite[run.Suite], run)
		}
	}

	stats := make([]SuiteStats, 0, len(bySuite))
	for suite, suiteRuns := range bySuite {
		stats = append(stats, suiteStats(suite, suiteRuns))
	}
	sort.Slice(stats, func(i, j int) bool {
		return stats[i].Suite < stats[j].Suite
	})
	return stats
}

func suiteStats(suite string, runs []storage.Run) SuiteStats {
	sort.Slice(runs, func(i, j int) bool {
		return runs[i].StartedAt.Before(runs[j].StartedAt)
	})

	s := SuiteStats{Suite: suite, Runs: len(runs)}
	var total time.Duration
	for _, run := range runs {
		if run.Passed {
			s.Passed++
		} else {
			s.Failed++
		}
		total += run.CompletedAt.Sub(run.StartedAt)
	}
	s.PassRate = float64(s.Passed) / float64(s.Runs) * 100.0
	s.MeanDuration = total / time.Duration(s.Runs)

	last := runs[len(runs)-1]
	s.LastPassed = last.Passed
	s.LastRunAt = last.StartedAt
	s.TimeToGreen = timeToGreen(runs)
	return s
}

// timeToGreen expects runs sorted by start time.
func timeToGreen(runs []storage.Run) time.Duration {
	var openFailure *time.Time
	var totalRecovery time.Duration
	recoveries := 0

	for _, run := range runs {
		if !run.Passed {
			if openFailure == nil {
				failedAt := run.CompletedAt
				openFailure = &failedAt
			}
			continue
		}
		if openFailure != nil && run.CompletedAt.After(*openFailure) {
			totalRecovery += run.CompletedAt.Sub(*openFailure)
			recoveries++
			openFailure = nil
		}
	}

	if recoveries == 0 {
		return 0
	}
	return totalRecovery / time.Duration(recoveries)
}
