package types

import (
	"fmt"
	"time"
)

// RunStatus represents the overall outcome of a run
type RunStatus string

const (
	RunStatusPass RunStatus = "pass"
	RunStatusFail RunStatus = "fail"
)

// String implements the Stringer interface for RunStatus
func (s RunStatus) String() string {
	return string(s)
}

// RunReport is the single aggregated result of one run of all configured
// suites. Suites are ordered by name so the report is deterministic
// regardless of execution mode or scheduling jitter.
type RunReport struct {
	RunID              string        `json:"runId"`
	StartedAt          time.Time     `json:"startedAt"`
	EndedAt            time.Time     `json:"endedAt"`
	WallClock          time.Duration `json:"wallClock"`
	Suites             []SuiteResult `json:"suites"`
	Totals             Counts        `json:"totals"`
	SuccessRatePercent float64       `json:"successRatePercent"`
	Status             RunStatus     `json:"status"`
}

// String returns a one-line summary of the run.
func (r RunReport) String() string {
	return fmt.Sprintf("run %s: %s (%d suites, %d/%d tests passed, %.1f%% success rate, wall clock %s)",
		r.RunID, r.Status, len(r.Suites), r.Totals.Passed, r.Totals.Total(),
		r.SuccessRatePercent, r.WallClock.Round(time.Millisecond))
}
