package runner

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noxsuite/testgate/types"
)

func newTestExecutor(t *testing.T) *ProcessExecutor {
	t.Helper()
	return NewProcessExecutor(testLogger(), nil)
}

func TestExecutePassingSuite(t *testing.T) {
	e := newTestExecutor(t)

	result := e.Execute(context.Background(), types.SuiteDescriptor{
		Name:    "api",
		Command: "sh",
		Args:    []string{"-c", `echo "===== 3 passed, 1 skipped in 0.10s ====="`},
		Timeout: 30 * time.Second,
		Parser:  "pytest",
	})

	assert.Equal(t, "api", result.Name)
	assert.Equal(t, types.SuiteStatusPass, result.Status)
	assert.Equal(t, types.Counts{Passed: 3, Skipped: 1}, result.Counts)
	assert.Empty(t, result.ErrorDetail)
	assert.Contains(t, result.OutputExcerpt, "3 passed")
	assert.False(t, result.StartedAt.IsZero())
	assert.False(t, result.EndedAt.IsZero())
	assert.GreaterOrEqual(t, result.Duration, time.Duration(0))
}

func TestExecuteFailingSuite(t *testing.T) {
	e := newTestExecutor(t)

	result := e.Execute(context.Background(), types.SuiteDescriptor{
		Name:    "api",
		Command: "sh",
		Args:    []string{"-c", `echo "== 1 passed, 2 failed in 0.20s =="; exit 1`},
		Timeout: 30 * time.Second,
		Parser:  "pytest",
	})

	assert.Equal(t, types.SuiteStatusFail, result.Status)
	assert.Equal(t, types.Counts{Passed: 1, Failed: 2}, result.Counts)
	// Failure detail lives in the output excerpt, not ErrorDetail.
	assert.Empty(t, result.ErrorDetail)
}

func TestExecuteMissingBinary(t *testing.T) {
	e := newTestExecutor(t)

	result := e.Execute(context.Background(), types.SuiteDescriptor{
		Name:    "security",
		Command: "definitely-not-a-real-binary-54321",
		Timeout: 30 * time.Second,
		Parser:  "summary",
	})

	assert.Equal(t, types.SuiteStatusError, result.Status)
	assert.Equal(t, types.Counts{}, result.Counts)
	assert.Contains(t, result.ErrorDetail, "failed to launch suite")
}

func TestExecuteTimeout(t *testing.T) {
	e := newTestExecutor(t)

	start := time.Now()
	result := e.Execute(context.Background(), types.SuiteDescriptor{
		Name:    "load",
		Command: "sleep",
		Args:    []string{"5"},
		Timeout: 500 * time.Millisecond,
		Parser:  "summary",
	})
	elapsed := time.Since(start)

	assert.Equal(t, types.SuiteStatusTimeout, result.Status)
	assert.Equal(t, types.Counts{}, result.Counts)
	assert.Contains(t, result.ErrorDetail, "timed out")
	// The suite must be cut off near its timeout, not run to completion.
	assert.Less(t, elapsed, 3*time.Second)
}

func TestExecuteSurvivesRunCancellation(t *testing.T) {
	e := newTestExecutor(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // cancel before the suite even starts

	result := e.Execute(ctx, types.SuiteDescriptor{
		Name:    "api",
		Command: "sh",
		Args:    []string{"-c", `echo "passed=2"`},
		Timeout: 30 * time.Second,
		Parser:  "summary",
	})

	// A suite already handed to the executor runs to completion; only the
	// scheduler skips unstarted suites on cancellation.
	assert.Equal(t, types.SuiteStatusPass, result.Status)
	assert.Equal(t, types.Counts{Passed: 2}, result.Counts)
}

func TestExecuteUnparsableOutput(t *testing.T) {
	e := newTestExecutor(t)

	result := e.Execute(context.Background(), types.SuiteDescriptor{
		Name:    "ui",
		Command: "sh",
		Args:    []string{"-c", `echo "something unexpected happened"`},
		Timeout: 30 * time.Second,
		Parser:  "jest",
	})

	assert.Equal(t, types.SuiteStatusPass, result.Status)
	assert.Equal(t, types.Counts{}, result.Counts)
	assert.Contains(t, result.OutputExcerpt, "something unexpected")
}

func TestExecuteEnvAndWorkDir(t *testing.T) {
	e := newTestExecutor(t)
	dir := t.TempDir()

	result := e.Execute(context.Background(), types.SuiteDescriptor{
		Name:    "e2e",
		Command: "sh",
		Args:    []string{"-c", `echo "passed=$EXPECTED" > marker.txt; cat marker.txt`},
		WorkDir: dir,
		Env:     []string{"EXPECTED=7"},
		Timeout: 30 * time.Second,
		Parser:  "summary",
	})

	assert.Equal(t, types.SuiteStatusPass, result.Status)
	assert.Equal(t, types.Counts{Passed: 7}, result.Counts)

	_, err := os.Stat(filepath.Join(dir, "marker.txt"))
	require.NoError(t, err, "suite should run in its configured working directory")
}

func TestExecuteCapturesStderr(t *testing.T) {
	e := newTestExecutor(t)

	result := e.Execute(context.Background(), types.SuiteDescriptor{
		Name:    "a11y",
		Command: "sh",
		Args:    []string{"-c", `echo "warning: contrast" 1>&2; echo "passed=4"`},
		Timeout: 30 * time.Second,
		Parser:  "summary",
	})

	assert.Equal(t, types.SuiteStatusPass, result.Status)
	assert.Contains(t, result.OutputExcerpt, "warning: contrast")
}

func TestTailBufferKeepsMostRecentBytes(t *testing.T) {
	b := newTailBuffer(8)

	_, err := b.Write([]byte("0123456789abcdef"))
	require.NoError(t, err)

	assert.Equal(t, []byte("89abcdef"), b.Bytes())
	assert.True(t, b.Truncated())
	assert.Equal(t, int64(16), b.TotalBytes())
}

func TestTailBufferSmallWrites(t *testing.T) {
	b := newTailBuffer(1024)

	_, err := b.Write([]byte("hello "))
	require.NoError(t, err)
	_, err = b.Write([]byte("world"))
	require.NoError(t, err)

	assert.Equal(t, []byte("hello world"), b.Bytes())
	assert.False(t, b.Truncated())
}

func TestExcerptMarksTruncation(t *testing.T) {
	b := newTailBuffer(4)
	_, err := b.Write([]byte("abcdefgh"))
	require.NoError(t, err)

	assert.Contains(t, excerpt(b), "[output truncated]")
}
