package testgate

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noxsuite/testgate/reporting"
	"github.com/noxsuite/testgate/types"
)

func sampleArtifact() reporting.Artifact {
	base := time.Date(2026, 8, 26, 10, 0, 0, 0, time.UTC)
	report := reporting.Aggregate("20260826-100000-abc123", []types.SuiteResult{
		{
			Name:      "api",
			Status:    types.SuiteStatusPass,
			StartedAt: base,
			EndedAt:   base.Add(12 * time.Second),
			Duration:  12 * time.Second,
			Counts:    types.Counts{Passed: 20, Skipped: 1},
		},
		{
			Name:        "load",
			Status:      types.SuiteStatusTimeout,
			StartedAt:   base,
			EndedAt:     base.Add(time.Minute),
			Duration:    time.Minute,
			ErrorDetail: "suite timed out after 1m0s",
		},
	})
	return reporting.Artifact{
		Report: report,
		Gates: []types.GateVerdict{
			{
				Spec:   types.GateSpec{Metric: "success_rate_percent", Op: types.ComparatorGTE, Threshold: 95},
				Actual: 100,
				Passed: true,
			},
		},
	}
}

func TestConsoleResultFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleResultFormatter(testLogger()).WithOutput(&buf)

	require.NoError(t, f.FormatResults(sampleArtifact()))

	out := buf.String()
	assert.Contains(t, out, "api")
	assert.Contains(t, out, "load")
	assert.Contains(t, out, "✓ pass")
	assert.Contains(t, out, "✗ timeout")
	assert.Contains(t, out, "gate: success_rate_percent")
	assert.Contains(t, out, "suite timed out")
	assert.Contains(t, out, "TOTAL")
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "12.0s", formatDuration(12*time.Second))
	assert.Equal(t, "0.5s", formatDuration(500*time.Millisecond))
}
