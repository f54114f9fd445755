// Package reporting turns raw suite results into the run report, renders it
// as machine- and human-readable artifacts, and persists one artifact set per
// run.
package reporting

import (
	"sort"
	"time"

	"github.com/noxsuite/testgate/types"
)

// Aggregate folds the per-suite results of one run into a single RunReport.
// It is pure and deterministic: suites are cloned and sorted by name, so the
// same result set always produces an identical report regardless of the
// order the scheduler delivered it in.
func Aggregate(runID string, results []types.SuiteResult) types.RunReport {
	suites := make([]types.SuiteResult, len(results))
	copy(suites, results)
	sort.Slice(suites, func(i, j int) bool {
		return suites[i].Name < suites[j].Name
	})

	report := types.RunReport{
		RunID:  runID,
		Suites: suites,
		Status: types.RunStatusPass,
	}

	var startedAt, endedAt time.Time
	for _, suite := range suites {
		report.Totals = report.Totals.Add(suite.Counts)
		if suite.Status != types.SuiteStatusPass {
			report.Status = types.RunStatusFail
		}
		if startedAt.IsZero() || suite.StartedAt.Before(startedAt) {
			startedAt = suite.StartedAt
		}
		if suite.EndedAt.After(endedAt) {
			endedAt = suite.EndedAt
		}
	}

	report.StartedAt = startedAt
	report.EndedAt = endedAt
	if !startedAt.IsZero() {
		report.WallClock = endedAt.Sub(startedAt)
	}

	// Skipped tests don't count against the rate; a run with no executed
	// tests has no meaningful rate and reports zero.
	decided := report.Totals.Passed + report.Totals.Failed
	if decided > 0 {
		report.SuccessRatePercent = float64(report.Totals.Passed) / float64(decided) * 100
	}

	return report
}

// SuitesFailed counts the suites in the report that did not pass.
func SuitesFailed(report types.RunReport) int {
	failed := 0
	for _, suite := range report.Suites {
		if suite.Status != types.SuiteStatusPass {
			failed++
		}
	}
	return failed
}
