package runner

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/noxsuite/testgate/types"
)

const (
	// DefaultMaxWorkers bounds parallel suite execution when no explicit
	// concurrency is configured.
	DefaultMaxWorkers = 4

	// MaxReasonableWorkers caps configured concurrency to avoid resource
	// exhaustion from runaway configs.
	MaxReasonableWorkers = 32

	cancelledDetail = "run cancelled"
)

// Scheduler fans suite executions out either serially or across a bounded
// worker pool. It always returns exactly one result per requested
// descriptor, in suite-name order, regardless of mode or cancellation.
type Scheduler struct {
	log        log.Logger
	executor   SuiteExecutor
	serial     bool
	maxWorkers int
	tracer     trace.Tracer
}

// SchedulerConfig holds configuration for creating a new scheduler
type SchedulerConfig struct {
	Log        log.Logger
	Executor   SuiteExecutor
	Serial     bool
	MaxWorkers int
}

// NewScheduler creates a scheduler from the config.
func NewScheduler(cfg SchedulerConfig) (*Scheduler, error) {
	if cfg.Executor == nil {
		return nil, fmt.Errorf("executor is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
	}
	if cfg.MaxWorkers < 0 {
		return nil, fmt.Errorf("max workers cannot be negative, got %d", cfg.MaxWorkers)
	}
	if cfg.MaxWorkers == 0 {
		cfg.MaxWorkers = DefaultMaxWorkers
	}
	if cfg.MaxWorkers > MaxReasonableWorkers {
		cfg.Log.Warn("Very high concurrency requested, capping",
			"requested", cfg.MaxWorkers, "cap", MaxReasonableWorkers)
		cfg.MaxWorkers = MaxReasonableWorkers
	}

	return &Scheduler{
		log:        cfg.Log,
		executor:   cfg.Executor,
		serial:     cfg.Serial,
		maxWorkers: cfg.MaxWorkers,
		tracer:     otel.Tracer("suite scheduler"),
	}, nil
}

// Run executes all descriptors and returns one result per descriptor sorted
// by suite name. A crashing, failing or timed-out suite never aborts its
// siblings; cancellation skips unstarted suites and records them as errors.
func (s *Scheduler) Run(ctx context.Context, descriptors []types.SuiteDescriptor) []types.SuiteResult {
	ctx, span := s.tracer.Start(ctx, "suite run")
	defer span.End()

	var results []types.SuiteResult
	if s.serial || s.maxWorkers == 1 {
		results = s.runSerial(ctx, descriptors)
	} else {
		results = s.runParallel(ctx, descriptors)
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Name < results[j].Name
	})
	return results
}

// runSerial executes descriptors one at a time in declaration order.
func (s *Scheduler) runSerial(ctx context.Context, descriptors []types.SuiteDescriptor) []types.SuiteResult {
	results := make([]types.SuiteResult, 0, len(descriptors))
	for _, desc := range descriptors {
		if ctx.Err() != nil {
			s.log.Warn("Run cancelled, skipping suite", "suite", desc.Name)
			results = append(results, cancelledResult(desc))
			continue
		}
		results = append(results, s.executeOne(ctx, desc))
	}
	return results
}

// runParallel submits all descriptors to a bounded worker pool. Results are
// delivered as one message per completed suite over the result channel; no
// shared mutable state is touched by the workers.
func (s *Scheduler) runParallel(ctx context.Context, descriptors []types.SuiteDescriptor) []types.SuiteResult {
	if len(descriptors) == 0 {
		return nil
	}

	workers := s.maxWorkers
	if workers > len(descriptors) {
		workers = len(descriptors)
	}
	s.log.Info("Starting parallel suite execution", "suites", len(descriptors), "workers", workers)

	// Both channels are sized to the full descriptor count so neither the
	// feeder nor a worker can ever block, which guarantees one result per
	// descriptor even under cancellation.
	workChan := make(chan types.SuiteDescriptor, len(descriptors))
	resultChan := make(chan types.SuiteResult, len(descriptors))
	for _, desc := range descriptors {
		workChan <- desc
	}
	close(workChan)

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go s.worker(ctx, &wg, workChan, resultChan)
	}

	go func() {
		wg.Wait()
		close(resultChan)
	}()

	results := make([]types.SuiteResult, 0, len(descriptors))
	for result := range resultChan {
		results = append(results, result)
	}
	return results
}

// worker pulls descriptors until the work channel drains. Cancellation stops
// new suites from starting but the worker still drains remaining work so
// every descriptor is accounted for.
func (s *Scheduler) worker(ctx context.Context, wg *sync.WaitGroup, workChan <-chan types.SuiteDescriptor, resultChan chan<- types.SuiteResult) {
	defer wg.Done()

	for desc := range workChan {
		if ctx.Err() != nil {
			s.log.Warn("Run cancelled, skipping suite", "suite", desc.Name)
			resultChan <- cancelledResult(desc)
			continue
		}
		resultChan <- s.executeOne(ctx, desc)
	}
}

func (s *Scheduler) executeOne(ctx context.Context, desc types.SuiteDescriptor) types.SuiteResult {
	ctx, span := s.tracer.Start(ctx, fmt.Sprintf("suite %s", desc.Name))
	defer span.End()
	return s.executor.Execute(ctx, desc)
}

// cancelledResult records a suite that was never started because the run was
// cancelled.
func cancelledResult(desc types.SuiteDescriptor) types.SuiteResult {
	now := time.Now()
	return types.SuiteResult{
		Name:        desc.Name,
		Status:      types.SuiteStatusError,
		StartedAt:   now,
		EndedAt:     now,
		ErrorDetail: cancelledDetail,
	}
}
