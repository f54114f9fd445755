// Package testgate orchestrates test-suite execution and quality-gate
// evaluation: it loads the suite registry, schedules suite runs, aggregates
// results into a run report, evaluates the configured gates and persists one
// artifact set per run.
package testgate

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v2"

	"github.com/noxsuite/testgate/exitcodes"
	"github.com/noxsuite/testgate/gates"
	"github.com/noxsuite/testgate/metrics"
	"github.com/noxsuite/testgate/parser"
	"github.com/noxsuite/testgate/registry"
	"github.com/noxsuite/testgate/reporting"
	"github.com/noxsuite/testgate/runner"
	"github.com/noxsuite/testgate/types"
)

// Orchestrator runs the configured suites and gates, once or periodically.
type Orchestrator struct {
	ctx       context.Context
	config    *Config
	version   string
	registry  *registry.Registry
	scheduler *runner.Scheduler
	evaluator *gates.Evaluator
	formatter ResultFormatter
	reporter  MetricsReporter
	sinks     []reporting.Sink
	result    *reporting.Artifact

	running atomic.Bool
	done    chan struct{}
	wg      sync.WaitGroup

	shutdownCallback func(error) // Callback to signal application shutdown
}

func New(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*Orchestrator, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating orchestrator with config",
		"configFile", config.ConfigFile,
		"resultsDir", config.ResultsDir,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce,
		"serial", config.Serial)

	parsers := parser.NewRegistry()

	reg, err := registry.NewRegistry(registry.Config{
		Log:            config.Log,
		ConfigFile:     config.ConfigFile,
		DefaultTimeout: config.DefaultTimeout,
		Parsers:        parsers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create registry: %w", err)
	}

	executor := runner.NewProcessExecutor(config.Log, parsers)
	scheduler, err := runner.NewScheduler(runner.SchedulerConfig{
		Log:        config.Log,
		Executor:   executor,
		Serial:     config.Serial,
		MaxWorkers: config.MaxWorkers,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	evaluator, err := gates.NewEvaluator(config.Log, reg.Gates())
	if err != nil {
		return nil, fmt.Errorf("failed to create gate evaluator: %w", err)
	}

	htmlSink, err := reporting.NewHTMLSink(config.ResultsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create HTML sink: %w", err)
	}

	config.Log.Info("testgate.New: created registry, scheduler and evaluator",
		"suites", len(reg.Descriptors()), "gates", len(reg.Gates()))

	return &Orchestrator{
		ctx:       ctx,
		config:    config,
		version:   version,
		registry:  reg,
		scheduler: scheduler,
		evaluator: evaluator,
		formatter: NewConsoleResultFormatter(config.Log),
		reporter:  NewDefaultMetricsReporter(),
		sinks: []reporting.Sink{
			reporting.NewFileSink(config.ResultsDir),
			htmlSink,
		},
		done:             make(chan struct{}),
		shutdownCallback: shutdownCallback,
	}, nil
}

// Start runs the suites immediately, then periodically at the configured
// interval unless in run-once mode.
func (o *Orchestrator) Start(ctx context.Context) error {
	// Set up panic recovery to ensure we exit with code 2 for runtime errors
	defer func() {
		if r := recover(); r != nil {
			o.config.Log.Error("Runtime error occurred", "error", r)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	o.ctx = ctx
	o.done = make(chan struct{})
	o.running.Store(true)

	if o.config.RunOnce {
		o.config.Log.Info("Starting testgate in run-once mode")
	} else {
		o.config.Log.Info("Starting testgate in continuous mode", "interval", o.config.RunInterval)
	}

	err := o.runSuites(ctx)
	if err != nil {
		o.config.Log.Error("Runtime error running suites", "error", err)
		return cli.Exit(err.Error(), exitcodes.RuntimeErr)
	}

	// If in run-once mode, trigger shutdown and return
	if o.config.RunOnce {
		o.config.Log.Info("Run completed, exiting (run-once mode)")

		if failed := o.failureSummary(); failed != "" {
			o.config.Log.Warn("Run-once completed with failures, returning exit code 1")
			return NewGateFailureError(failed)
		}

		// Only need to call this when we're in run-once mode and everything passed
		go func() {
			o.shutdownCallback(nil)
		}()
		return nil // Success (exit code 0)
	}

	// Start a goroutine for periodic suite execution
	o.wg.Add(1)
	go func() {
		defer o.wg.Done()
		o.config.Log.Debug("Starting periodic suite runner goroutine", "interval", o.config.RunInterval)

		for {
			select {
			case <-time.After(o.config.RunInterval):
				if !o.running.Load() {
					o.config.Log.Debug("Service stopped, exiting periodic suite runner")
					return
				}

				o.config.Log.Info("Running periodic suites")
				if err := o.runSuites(ctx); err != nil {
					o.config.Log.Error("Error running periodic suites", "error", err)
					metrics.RecordErrorDetails("periodic run failed", err)
				}

			case <-o.done:
				o.config.Log.Debug("Done signal received, stopping periodic suite runner")
				return

			case <-ctx.Done():
				o.config.Log.Debug("Context canceled, stopping periodic suite runner")
				o.running.Store(false)
				return
			}
		}
	}()
	o.config.Log.Debug("testgate started successfully")
	return nil
}

// runSuites executes all configured suites once and processes the results.
func (o *Orchestrator) runSuites(ctx context.Context) error {
	runID := newRunID()
	o.config.Log.Info("Running all suites...", "run_id", runID)

	results := o.scheduler.Run(ctx, o.registry.Descriptors())
	report := reporting.Aggregate(runID, results)
	verdicts := o.evaluator.Evaluate(report, o.config.ExternalMetrics)
	artifact := reporting.Artifact{Report: report, Gates: verdicts}
	o.result = &artifact

	for _, sink := range o.sinks {
		if err := sink.WriteRun(artifact); err != nil {
			// Artifacts must persist; a run whose report can't be written is
			// a runtime failure, not a gate failure.
			return NewRuntimeError(fmt.Errorf("failed to persist run artifacts: %w", err))
		}
	}

	o.reporter.ReportResults(artifact)
	if err := o.formatter.FormatResults(artifact); err != nil {
		o.config.Log.Error("Error formatting results", "error", err)
	}

	o.config.Log.Info("Run completed",
		"run_id", runID,
		"status", report.Status,
		"gates_passed", gates.AllPassed(verdicts),
		"artifacts", reporting.RunDir(o.config.ResultsDir, runID))
	return nil
}

// failureSummary describes why the last run failed, or returns "" on success.
func (o *Orchestrator) failureSummary() string {
	if o.result == nil {
		return ""
	}
	if o.result.Report.Status != types.RunStatusPass {
		return o.result.Report.String()
	}
	for _, v := range o.result.Gates {
		if !v.Passed {
			return v.String()
		}
	}
	return ""
}

// Stop stops the testgate service.
func (o *Orchestrator) Stop(ctx context.Context) error {
	o.config.Log.Info("Stopping testgate")

	// Check if we're already stopped
	if !o.running.Load() {
		o.config.Log.Debug("Service already stopped, nothing to do")
		return nil
	}

	// Update running state first to prevent new runs
	o.running.Store(false)

	o.config.Log.Debug("Sending done signal to goroutines")
	close(o.done)

	o.config.Log.Info("testgate stopped successfully")
	return nil
}

// Stopped returns true if the testgate service is stopped.
func (o *Orchestrator) Stopped() bool {
	return !o.running.Load()
}

// WaitForShutdown blocks until all goroutines have terminated.
// This is useful in tests to ensure complete cleanup before moving to the next test.
func (o *Orchestrator) WaitForShutdown(ctx context.Context) error {
	o.config.Log.Debug("Waiting for all goroutines to terminate")

	done := make(chan struct{})
	go func() {
		o.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		o.config.Log.Debug("All goroutines terminated successfully")
		return nil
	case <-ctx.Done():
		o.config.Log.Warn("Timed out waiting for goroutines to terminate", "error", ctx.Err())
		return ctx.Err()
	}
}

// newRunID builds a sortable, collision-resistant run identifier.
func newRunID() string {
	return fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102-150405"), uuid.NewString()[:8])
}
