// Package gates evaluates configured quality gates against a run report.
package gates

import (
	"fmt"
	"sort"
	"strings"

	"github.com/ethereum/go-ethereum/log"

	"github.com/noxsuite/testgate/reporting"
	"github.com/noxsuite/testgate/types"
)

// metricReaders maps each built-in gate metric to the report field it reads.
var metricReaders = map[string]func(types.RunReport) float64{
	"success_rate_percent": func(r types.RunReport) float64 { return r.SuccessRatePercent },
	"wall_clock_seconds":   func(r types.RunReport) float64 { return r.WallClock.Seconds() },
	"total_tests":          func(r types.RunReport) float64 { return float64(r.Totals.Total()) },
	"total_passed":         func(r types.RunReport) float64 { return float64(r.Totals.Passed) },
	"total_failed":         func(r types.RunReport) float64 { return float64(r.Totals.Failed) },
	"total_skipped":        func(r types.RunReport) float64 { return float64(r.Totals.Skipped) },
	"suites_failed":        func(r types.RunReport) float64 { return float64(reporting.SuitesFailed(r)) },
}

// BuiltinMetrics returns the names of all built-in gate metrics, sorted.
func BuiltinMetrics() []string {
	names := make([]string, 0, len(metricReaders))
	for name := range metricReaders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Evaluator checks a run report against a fixed set of gate specs. Specs are
// validated once at construction so a misconfigured gate is a startup error,
// not a per-run surprise.
type Evaluator struct {
	log   log.Logger
	specs []types.GateSpec
}

// NewEvaluator validates the gate specs and builds an evaluator.
func NewEvaluator(logger log.Logger, specs []types.GateSpec) (*Evaluator, error) {
	if logger == nil {
		logger = log.New()
	}
	for _, spec := range specs {
		if spec.Metric == "" {
			return nil, fmt.Errorf("gate metric name is required")
		}
		if spec.Op != types.ComparatorGTE && spec.Op != types.ComparatorLTE {
			return nil, fmt.Errorf("gate %q has unknown comparator %q (known: gte, lte)", spec.Metric, spec.Op)
		}
		if !spec.External {
			if _, ok := metricReaders[spec.Metric]; !ok {
				return nil, fmt.Errorf("gate references unknown metric %q (known: %s)",
					spec.Metric, strings.Join(BuiltinMetrics(), ", "))
			}
		}
	}
	return &Evaluator{log: logger, specs: specs}, nil
}

// Evaluate returns one verdict per configured gate, in configuration order.
// Built-in metrics are read from the report; external metrics come from the
// supplied map. An external gate whose value was never supplied fails with a
// detail message rather than assuming a default.
func (e *Evaluator) Evaluate(report types.RunReport, external map[string]float64) []types.GateVerdict {
	verdicts := make([]types.GateVerdict, 0, len(e.specs))
	for _, spec := range e.specs {
		verdicts = append(verdicts, e.evaluateOne(spec, report, external))
	}
	return verdicts
}

func (e *Evaluator) evaluateOne(spec types.GateSpec, report types.RunReport, external map[string]float64) types.GateVerdict {
	verdict := types.GateVerdict{Spec: spec}

	if spec.External {
		actual, ok := external[spec.Metric]
		if !ok {
			verdict.Detail = fmt.Sprintf("external metric %q was not supplied", spec.Metric)
			e.log.Warn("External gate metric missing, gate fails", "metric", spec.Metric)
			return verdict
		}
		verdict.Actual = actual
	} else {
		verdict.Actual = metricReaders[spec.Metric](report)
	}

	switch spec.Op {
	case types.ComparatorGTE:
		verdict.Passed = verdict.Actual >= spec.Threshold
	case types.ComparatorLTE:
		verdict.Passed = verdict.Actual <= spec.Threshold
	}

	if !verdict.Passed && verdict.Detail == "" {
		verdict.Detail = fmt.Sprintf("%g violates %s %g", verdict.Actual, spec.Op.Symbol(), spec.Threshold)
	}

	e.log.Debug("Evaluated gate",
		"metric", spec.Metric, "actual", verdict.Actual,
		"threshold", spec.Threshold, "passed", verdict.Passed)
	return verdict
}

// AllPassed reports whether every verdict in the set passed.
func AllPassed(verdicts []types.GateVerdict) bool {
	for _, v := range verdicts {
		if !v.Passed {
			return false
		}
	}
	return true
}
