// Package types contains shared types used across the testgate engine.
package types

import (
	"fmt"
	"time"
)

// SuiteStatus represents the possible outcomes of a suite execution
type SuiteStatus string

const (
	SuiteStatusPass SuiteStatus = "pass"
	SuiteStatusFail SuiteStatus = "fail"
	// SuiteStatusTimeout means the suite process was terminated because it
	// exceeded its configured timeout.
	SuiteStatusTimeout SuiteStatus = "timeout"
	// SuiteStatusError means the suite never produced a meaningful result,
	// e.g. the process could not be launched or the run was cancelled.
	SuiteStatusError SuiteStatus = "error"
)

// String implements the Stringer interface for SuiteStatus
func (s SuiteStatus) String() string {
	return string(s)
}

// Counts is the normalized pass/fail/skip tuple extracted from a suite's output.
type Counts struct {
	Passed  int `json:"passed" yaml:"passed"`
	Failed  int `json:"failed" yaml:"failed"`
	Skipped int `json:"skipped" yaml:"skipped"`
}

// Total returns the total number of tests the suite reported.
func (c Counts) Total() int {
	return c.Passed + c.Failed + c.Skipped
}

// Add returns the element-wise sum of two count tuples.
func (c Counts) Add(other Counts) Counts {
	return Counts{
		Passed:  c.Passed + other.Passed,
		Failed:  c.Failed + other.Failed,
		Skipped: c.Skipped + other.Skipped,
	}
}

// SuiteDescriptor describes one externally invokable test harness.
// Descriptors are loaded once at startup and never mutated.
type SuiteDescriptor struct {
	Name    string
	Command string
	Args    []string
	WorkDir string
	Env     []string // additional KEY=VALUE pairs appended to the process environment
	Timeout time.Duration
	Parser  string
}

// GetName returns a display name for the descriptor.
func (d SuiteDescriptor) GetName() string {
	if d.Name != "" {
		return d.Name
	}
	return d.Command
}

// SuiteResult captures the outcome of a single suite execution.
// It is created once by the executor and never mutated afterwards.
type SuiteResult struct {
	Name      string        `json:"name"`
	Status    SuiteStatus   `json:"status"`
	StartedAt time.Time     `json:"startedAt"`
	EndedAt   time.Time     `json:"endedAt"`
	Duration  time.Duration `json:"duration"`
	Counts    Counts        `json:"counts"`

	// OutputExcerpt holds the tail of the combined stdout+stderr, bounded in
	// size, kept for diagnosis only.
	OutputExcerpt string `json:"outputExcerpt,omitempty"`

	// ErrorDetail is set only for timeout and error statuses.
	ErrorDetail string `json:"errorDetail,omitempty"`
}

func (r SuiteResult) String() string {
	return fmt.Sprintf("%s: %s (%d passed, %d failed, %d skipped in %s)",
		r.Name, r.Status, r.Counts.Passed, r.Counts.Failed, r.Counts.Skipped, r.Duration.Round(time.Millisecond))
}
