package metrics

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/noxsuite/testgate/types"
)

const (
	MetricsNamespace = "testgate"
)

var (
	Debug                bool = true
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	suitesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "suites_total",
		Help:      "Count of executed suites",
	}, []string{
		"run_id",
		"suite",
		"status",
	})

	suiteDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "suite_duration_seconds",
		Help:      "Duration of the last execution of each suite",
	}, []string{
		"run_id",
		"suite",
	})

	runResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_results",
		Help:      "Result of suite runs",
	}, []string{
		"run_id",
		"result",
	})

	runTestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "run_tests_total",
		Help:      "Total number of tests in a run",
	}, []string{
		"run_id",
	})

	runTestsPassed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "run_tests_passed",
		Help:      "Number of passed tests in a run",
	}, []string{
		"run_id",
	})

	runTestsFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "run_tests_failed",
		Help:      "Number of failed tests in a run",
	}, []string{
		"run_id",
	})

	runDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_duration_seconds",
		Help:      "Wall clock duration of suite runs",
	}, []string{
		"run_id",
	})

	gateVerdicts = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "gate_verdicts",
		Help:      "Quality gate verdicts (1 pass, 0 fail)",
	}, []string{
		"run_id",
		"metric",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		log.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

func RecordSuite(runID string, result types.SuiteResult) {
	if Debug {
		log.Debug("metric inc",
			"m", "suites_total",
			"run_id", runID,
			"suite", result.Name,
			"status", result.Status)
	}
	suitesTotal.WithLabelValues(runID, result.Name, string(result.Status)).Inc()
	suiteDuration.WithLabelValues(runID, result.Name).Set(result.Duration.Seconds())
}

func RecordRun(report types.RunReport) {
	runResults.WithLabelValues(report.RunID, string(report.Status)).Set(1)
	runTestsTotal.WithLabelValues(report.RunID).Add(float64(report.Totals.Total()))
	runTestsPassed.WithLabelValues(report.RunID).Add(float64(report.Totals.Passed))
	runTestsFailed.WithLabelValues(report.RunID).Add(float64(report.Totals.Failed))
	runDuration.WithLabelValues(report.RunID).Set(report.WallClock.Seconds())
}

func RecordGate(runID string, verdict types.GateVerdict) {
	value := float64(0)
	if verdict.Passed {
		value = 1
	}
	gateVerdicts.WithLabelValues(runID, verdict.Spec.Metric).Set(value)
}

// RecordGates records all gate verdicts for a run.
func RecordGates(runID string, verdicts []types.GateVerdict) {
	for _, v := range verdicts {
		RecordGate(runID, v)
	}
}
