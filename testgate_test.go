package testgate

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noxsuite/testgate/reporting"
	"github.com/noxsuite/testgate/types"
)

func testLogger() log.Logger {
	return log.NewLogger(log.DiscardHandler())
}

func writeSuiteConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "suites.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func newTestConfig(t *testing.T, configContent string) *Config {
	t.Helper()
	return &Config{
		ConfigFile: writeSuiteConfig(t, configContent),
		ResultsDir: t.TempDir(),
		RunOnce:    true,
		Log:        testLogger(),
	}
}

const passingConfig = `
suites:
  - name: api
    command: sh
    args: ["-c", "echo '===== 4 passed in 0.10s ====='"]
    parser: pytest
  - name: ui
    command: sh
    args: ["-c", "echo 'passed: 3'"]
    parser: summary
gates:
  - metric: success_rate_percent
    op: gte
    threshold: 95
`

const failingConfig = `
suites:
  - name: api
    command: sh
    args: ["-c", "echo '== 1 passed, 3 failed in 0.20s =='; exit 1"]
    parser: pytest
gates:
  - metric: success_rate_percent
    op: gte
    threshold: 95
`

func TestOrchestratorRunOncePass(t *testing.T) {
	cfg := newTestConfig(t, passingConfig)
	o, err := New(context.Background(), cfg, "test", func(error) {})
	require.NoError(t, err)
	o.formatter = NewConsoleResultFormatter(cfg.Log).WithOutput(io.Discard)

	require.NoError(t, o.Start(context.Background()))

	require.NotNil(t, o.result)
	assert.Equal(t, types.RunStatusPass, o.result.Report.Status)
	assert.Equal(t, 7, o.result.Report.Totals.Passed)
	require.Len(t, o.result.Gates, 1)
	assert.True(t, o.result.Gates[0].Passed)

	// One artifact set per run.
	runDir := reporting.RunDir(cfg.ResultsDir, o.result.Report.RunID)
	for _, name := range []string{"report.json", "summary.txt", "report.html"} {
		_, err := os.Stat(filepath.Join(runDir, name))
		assert.NoError(t, err, "expected %s to exist", name)
	}

	data, err := os.ReadFile(filepath.Join(runDir, "report.json"))
	require.NoError(t, err)
	decoded, err := reporting.Decode(data)
	require.NoError(t, err)
	assert.Equal(t, o.result.Report.RunID, decoded.Report.RunID)
}

func TestOrchestratorRunOnceGateFailure(t *testing.T) {
	cfg := newTestConfig(t, failingConfig)
	o, err := New(context.Background(), cfg, "test", func(error) {})
	require.NoError(t, err)
	o.formatter = NewConsoleResultFormatter(cfg.Log).WithOutput(io.Discard)

	err = o.Start(context.Background())
	require.Error(t, err)
	assert.True(t, IsGateFailureError(err))

	// Artifacts are still written for failing runs.
	runDir := reporting.RunDir(cfg.ResultsDir, o.result.Report.RunID)
	_, statErr := os.Stat(filepath.Join(runDir, "report.json"))
	assert.NoError(t, statErr)
}

func TestOrchestratorExternalMetricGate(t *testing.T) {
	config := `
suites:
  - name: api
    command: sh
    args: ["-c", "echo 'passed: 5'"]
    parser: summary
gates:
  - metric: coverage_percent
    op: gte
    threshold: 85
    external: true
`
	cfg := newTestConfig(t, config)
	cfg.ExternalMetrics = map[string]float64{"coverage_percent": 87.5}

	o, err := New(context.Background(), cfg, "test", func(error) {})
	require.NoError(t, err)
	o.formatter = NewConsoleResultFormatter(cfg.Log).WithOutput(io.Discard)

	require.NoError(t, o.Start(context.Background()))
	require.Len(t, o.result.Gates, 1)
	assert.True(t, o.result.Gates[0].Passed)
	assert.Equal(t, 87.5, o.result.Gates[0].Actual)
}

func TestNewRejectsBadGateConfig(t *testing.T) {
	config := `
suites:
  - name: api
    command: sh
    parser: summary
gates:
  - metric: nonsense_metric
    op: gte
    threshold: 1
`
	cfg := newTestConfig(t, config)
	_, err := New(context.Background(), cfg, "test", func(error) {})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown metric")
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(context.Background(), nil, "test", func(error) {})
	require.Error(t, err)
}

func TestOrchestratorStop(t *testing.T) {
	cfg := newTestConfig(t, passingConfig)
	cfg.RunOnce = false
	cfg.RunInterval = time.Hour

	o, err := New(context.Background(), cfg, "test", func(error) {})
	require.NoError(t, err)
	o.formatter = NewConsoleResultFormatter(cfg.Log).WithOutput(io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	require.NoError(t, o.Start(ctx))
	assert.False(t, o.Stopped())

	require.NoError(t, o.Stop(context.Background()))
	assert.True(t, o.Stopped())

	// Stop is idempotent.
	require.NoError(t, o.Stop(context.Background()))

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer waitCancel()
	require.NoError(t, o.WaitForShutdown(waitCtx))
}

func TestParseExternalMetrics(t *testing.T) {
	metrics, err := parseExternalMetrics([]string{"coverage_percent=87.5", "lint_warnings=3"})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"coverage_percent": 87.5, "lint_warnings": 3}, metrics)

	metrics, err = parseExternalMetrics(nil)
	require.NoError(t, err)
	assert.Nil(t, metrics)

	_, err = parseExternalMetrics([]string{"coverage_percent"})
	require.Error(t, err)

	_, err = parseExternalMetrics([]string{"coverage_percent=abc"})
	require.Error(t, err)

	_, err = parseExternalMetrics([]string{"=1"})
	require.Error(t, err)
}
