package testgate

import (
	"github.com/noxsuite/testgate/metrics"
	"github.com/noxsuite/testgate/reporting"
)

// MetricsReporter is responsible for reporting metrics from run results.
type MetricsReporter interface {
	ReportResults(artifact reporting.Artifact)
}

// DefaultMetricsReporter implements the MetricsReporter interface.
type DefaultMetricsReporter struct{}

// NewDefaultMetricsReporter creates a new DefaultMetricsReporter.
func NewDefaultMetricsReporter() *DefaultMetricsReporter {
	return &DefaultMetricsReporter{}
}

// ReportResults reports the run results to metrics systems.
func (r *DefaultMetricsReporter) ReportResults(artifact reporting.Artifact) {
	runID := artifact.Report.RunID
	metrics.RecordRun(artifact.Report)
	for _, suite := range artifact.Report.Suites {
		metrics.RecordSuite(runID, suite)
	}
	metrics.RecordGates(runID, artifact.Gates)
}
