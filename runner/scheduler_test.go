package runner

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noxsuite/testgate/types"
)

// stubExecutor is an in-memory SuiteExecutor for scheduler tests.
type stubExecutor struct {
	mu       sync.Mutex
	executed []string

	failing map[string]bool
	jitter  time.Duration
	onFirst func() // invoked once, before the first execution
	once    sync.Once
}

func (s *stubExecutor) Execute(_ context.Context, desc types.SuiteDescriptor) types.SuiteResult {
	if s.onFirst != nil {
		s.once.Do(s.onFirst)
	}
	if s.jitter > 0 {
		time.Sleep(time.Duration(rand.Int63n(int64(s.jitter))))
	}

	s.mu.Lock()
	s.executed = append(s.executed, desc.Name)
	s.mu.Unlock()

	started := time.Now()
	result := types.SuiteResult{
		Name:      desc.Name,
		Status:    types.SuiteStatusPass,
		StartedAt: started,
		EndedAt:   started.Add(time.Millisecond),
		Duration:  time.Millisecond,
		Counts:    types.Counts{Passed: 2},
	}
	if s.failing[desc.Name] {
		result.Status = types.SuiteStatusFail
		result.Counts = types.Counts{Passed: 1, Failed: 1}
	}
	return result
}

func (s *stubExecutor) executions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.executed))
	copy(out, s.executed)
	return out
}

func descriptors(names ...string) []types.SuiteDescriptor {
	descs := make([]types.SuiteDescriptor, 0, len(names))
	for _, name := range names {
		descs = append(descs, types.SuiteDescriptor{
			Name:    name,
			Command: "true",
			Timeout: time.Minute,
			Parser:  "summary",
		})
	}
	return descs
}

func newTestScheduler(t *testing.T, executor SuiteExecutor, serial bool, workers int) *Scheduler {
	t.Helper()
	s, err := NewScheduler(SchedulerConfig{
		Log:        testLogger(),
		Executor:   executor,
		Serial:     serial,
		MaxWorkers: workers,
	})
	require.NoError(t, err)
	return s
}

func TestNewSchedulerValidation(t *testing.T) {
	_, err := NewScheduler(SchedulerConfig{})
	require.Error(t, err)

	_, err = NewScheduler(SchedulerConfig{Executor: &stubExecutor{}, MaxWorkers: -1})
	require.Error(t, err)

	s, err := NewScheduler(SchedulerConfig{Executor: &stubExecutor{}})
	require.NoError(t, err)
	assert.Equal(t, DefaultMaxWorkers, s.maxWorkers)

	s, err = NewScheduler(SchedulerConfig{Executor: &stubExecutor{}, MaxWorkers: 1000})
	require.NoError(t, err)
	assert.Equal(t, MaxReasonableWorkers, s.maxWorkers)
}

func TestRunReturnsOneResultPerDescriptor(t *testing.T) {
	descs := descriptors("ui", "api", "load", "security", "a11y")

	for _, tc := range []struct {
		name    string
		serial  bool
		workers int
	}{
		{name: "serial", serial: true},
		{name: "parallel", workers: 3},
	} {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestScheduler(t, &stubExecutor{jitter: 5 * time.Millisecond}, tc.serial, tc.workers)
			results := s.Run(context.Background(), descs)
			require.Len(t, results, len(descs))

			seen := make(map[string]bool)
			for _, r := range results {
				seen[r.Name] = true
			}
			assert.Len(t, seen, len(descs))
		})
	}
}

func TestRunSortsResultsBySuiteName(t *testing.T) {
	descs := descriptors("ui", "api", "security", "a11y", "load", "e2e")
	s := newTestScheduler(t, &stubExecutor{jitter: 10 * time.Millisecond}, false, 4)

	results := s.Run(context.Background(), descs)

	names := make([]string, 0, len(results))
	for _, r := range results {
		names = append(names, r.Name)
	}
	assert.Equal(t, []string{"a11y", "api", "e2e", "load", "security", "ui"}, names)
}

func TestRunWorkerCountInvariance(t *testing.T) {
	descs := descriptors("ui", "api", "load", "security", "a11y", "e2e", "smoke")
	failing := map[string]bool{"ui": true, "load": true}

	var baseline []types.SuiteResult
	for _, workers := range []int{1, 2, 16} {
		s := newTestScheduler(t, &stubExecutor{failing: failing, jitter: 5 * time.Millisecond}, false, workers)
		results := s.Run(context.Background(), descs)
		require.Len(t, results, len(descs))

		if baseline == nil {
			baseline = results
			continue
		}
		for i := range results {
			assert.Equal(t, baseline[i].Name, results[i].Name, "workers=%d", workers)
			assert.Equal(t, baseline[i].Status, results[i].Status, "workers=%d", workers)
			assert.Equal(t, baseline[i].Counts, results[i].Counts, "workers=%d", workers)
		}
	}
}

func TestRunSerialExecutesInDeclarationOrder(t *testing.T) {
	descs := descriptors("ui", "api", "load")
	stub := &stubExecutor{}
	s := newTestScheduler(t, stub, true, 0)

	results := s.Run(context.Background(), descs)

	assert.Equal(t, []string{"ui", "api", "load"}, stub.executions())
	// Returned slice is still sorted by name.
	assert.Equal(t, "api", results[0].Name)
}

func TestRunSerialFailureDoesNotStopSiblings(t *testing.T) {
	descs := descriptors("api", "load", "ui")
	stub := &stubExecutor{failing: map[string]bool{"api": true}}
	s := newTestScheduler(t, stub, true, 0)

	results := s.Run(context.Background(), descs)

	require.Len(t, results, 3)
	assert.Equal(t, []string{"api", "load", "ui"}, stub.executions())
	assert.Equal(t, types.SuiteStatusFail, results[0].Status)
	assert.Equal(t, types.SuiteStatusPass, results[1].Status)
	assert.Equal(t, types.SuiteStatusPass, results[2].Status)
}

func TestRunCancelledBeforeStart(t *testing.T) {
	descs := descriptors("api", "ui", "load")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for _, tc := range []struct {
		name    string
		serial  bool
		workers int
	}{
		{name: "serial", serial: true},
		{name: "parallel", workers: 2},
	} {
		t.Run(tc.name, func(t *testing.T) {
			stub := &stubExecutor{}
			s := newTestScheduler(t, stub, tc.serial, tc.workers)
			results := s.Run(ctx, descs)

			require.Len(t, results, len(descs))
			for _, r := range results {
				assert.Equal(t, types.SuiteStatusError, r.Status)
				assert.Equal(t, "run cancelled", r.ErrorDetail)
			}
			assert.Empty(t, stub.executions())
		})
	}
}

func TestRunCancellationSkipsUnstartedSuites(t *testing.T) {
	descs := descriptors("api", "ui", "load")
	ctx, cancel := context.WithCancel(context.Background())

	// Cancel the run while the first suite is executing: it finishes, the
	// rest are recorded as cancelled.
	stub := &stubExecutor{onFirst: cancel}
	s := newTestScheduler(t, stub, true, 0)

	results := s.Run(ctx, descs)
	require.Len(t, results, 3)

	byName := make(map[string]types.SuiteResult)
	for _, r := range results {
		byName[r.Name] = r
	}
	assert.Equal(t, types.SuiteStatusPass, byName["api"].Status)
	assert.Equal(t, types.SuiteStatusError, byName["ui"].Status)
	assert.Equal(t, "run cancelled", byName["ui"].ErrorDetail)
	assert.Equal(t, types.SuiteStatusError, byName["load"].Status)
}

func TestRunPartialFailureScenario(t *testing.T) {
	// 5 suites, 2 failing, 2 workers: all five results must be present no
	// matter which two ran concurrently first.
	descs := descriptors("api", "ui", "load", "security", "a11y")
	stub := &stubExecutor{
		failing: map[string]bool{"ui": true, "security": true},
		jitter:  10 * time.Millisecond,
	}
	s := newTestScheduler(t, stub, false, 2)

	results := s.Run(context.Background(), descs)
	require.Len(t, results, 5)

	var failed, passed int
	for _, r := range results {
		switch r.Status {
		case types.SuiteStatusFail:
			failed++
		case types.SuiteStatusPass:
			passed++
		}
	}
	assert.Equal(t, 2, failed)
	assert.Equal(t, 3, passed)
}

func TestRunEmptyDescriptorSet(t *testing.T) {
	s := newTestScheduler(t, &stubExecutor{}, false, 4)
	results := s.Run(context.Background(), nil)
	assert.Empty(t, results)
}
