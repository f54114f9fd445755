package testgate

import (
	"fmt"
	"time"

	"github.com/noxsuite/testgate/types"
)

// getSuiteResultString returns a glyph-prefixed string for a suite status
func getSuiteResultString(status types.SuiteStatus) string {
	switch status {
	case types.SuiteStatusPass:
		return "✓ pass"
	case types.SuiteStatusTimeout:
		return "✗ timeout"
	case types.SuiteStatusError:
		return "✗ error"
	default:
		return "✗ fail"
	}
}

// getRunResultString returns a glyph-prefixed string for a run status
func getRunResultString(status types.RunStatus) string {
	if status == types.RunStatusPass {
		return "✓ pass"
	}
	return "✗ fail"
}

// getGateResultString returns a glyph-prefixed string for a gate verdict
func getGateResultString(passed bool) string {
	if passed {
		return "✓ pass"
	}
	return "✗ fail"
}

// Helper function to format duration to seconds with 1 decimal place
func formatDuration(d time.Duration) string {
	return fmt.Sprintf("%.1fs", d.Seconds())
}
