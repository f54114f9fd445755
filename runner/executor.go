package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/ethereum/go-ethereum/log"

	"github.com/noxsuite/testgate/parser"
	"github.com/noxsuite/testgate/types"
)

// SuiteExecutor runs one suite to completion and always produces a result
// object, never an error.
type SuiteExecutor interface {
	Execute(ctx context.Context, desc types.SuiteDescriptor) types.SuiteResult
}

var _ SuiteExecutor = (*ProcessExecutor)(nil)

// ProcessExecutor runs a suite as an isolated child process with its working
// directory and environment fixed at launch time. The suite's own timeout is
// the only thing that kills a running process; run-level cancellation never
// does.
type ProcessExecutor struct {
	log            log.Logger
	parsers        *parser.Registry
	maxOutputBytes int
}

// NewProcessExecutor creates a process executor backed by the given parser
// registry.
func NewProcessExecutor(logger log.Logger, parsers *parser.Registry) *ProcessExecutor {
	if logger == nil {
		logger = log.New()
	}
	if parsers == nil {
		parsers = parser.NewRegistry()
	}
	return &ProcessExecutor{
		log:            logger,
		parsers:        parsers,
		maxOutputBytes: defaultOutputTailBytes,
	}
}

// Execute runs the suite's external invocation, captures combined
// stdout+stderr through a bounded tail buffer, enforces the descriptor's
// timeout and normalizes the output into counts. It never returns an error
// or panics past its boundary.
func (e *ProcessExecutor) Execute(ctx context.Context, desc types.SuiteDescriptor) (result types.SuiteResult) {
	started := time.Now()
	result = types.SuiteResult{
		Name:      desc.Name,
		StartedAt: started,
	}

	defer func() {
		if rec := recover(); rec != nil {
			e.log.Error("Panic while executing suite", "suite", desc.Name, "error", rec)
			result.Status = types.SuiteStatusError
			result.Counts = types.Counts{}
			result.ErrorDetail = fmt.Sprintf("runtime error: %v", rec)
			result.EndedAt = time.Now()
			result.Duration = result.EndedAt.Sub(started)
		}
	}()

	// The process context is detached from run-level cancellation so that a
	// cancelled run lets in-flight suites finish or time out naturally.
	procCtx := context.WithoutCancel(ctx)
	var cancel context.CancelFunc
	if desc.Timeout > 0 {
		procCtx, cancel = context.WithTimeout(procCtx, desc.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(procCtx, desc.Command, desc.Args...)
	cmd.Dir = desc.WorkDir
	if len(desc.Env) > 0 {
		cmd.Env = append(os.Environ(), desc.Env...)
	}

	tail := newTailBuffer(e.maxOutputBytes)
	cmd.Stdout = tail
	cmd.Stderr = tail

	e.log.Info("Running suite", "suite", desc.Name, "command", cmd.String(), "timeout", desc.Timeout)
	runErr := cmd.Run()

	result.EndedAt = time.Now()
	result.Duration = result.EndedAt.Sub(started)
	result.OutputExcerpt = excerpt(tail)

	counts, parsed := e.parsers.Parse(parser.Kind(desc.Parser), tail.Bytes())
	result.Counts = counts

	switch {
	case errors.Is(procCtx.Err(), context.DeadlineExceeded):
		result.Status = types.SuiteStatusTimeout
		result.Counts = types.Counts{}
		result.ErrorDetail = fmt.Sprintf("suite timed out after %s", desc.Timeout)

	case runErr != nil:
		var exitErr *exec.ExitError
		if errors.As(runErr, &exitErr) {
			// The harness ran and signaled failure; counts stay best-effort.
			result.Status = types.SuiteStatusFail
		} else {
			result.Status = types.SuiteStatusError
			result.Counts = types.Counts{}
			result.ErrorDetail = fmt.Sprintf("failed to launch suite: %v", runErr)
		}

	default:
		result.Status = types.SuiteStatusPass
	}

	if !parsed && result.Status != types.SuiteStatusError {
		e.log.Warn("Suite output could not be parsed, counts zeroed",
			"suite", desc.Name, "parser", desc.Parser, "outputBytes", tail.TotalBytes())
	}

	e.log.Debug("Suite finished",
		"suite", desc.Name,
		"status", result.Status,
		"duration", result.Duration,
		"passed", result.Counts.Passed,
		"failed", result.Counts.Failed,
		"skipped", result.Counts.Skipped)

	return result
}

// excerpt sanitizes the tail buffer contents for inclusion in the result.
func excerpt(tail *tailBuffer) string {
	s := strings.TrimSpace(stripansi.Strip(string(tail.Bytes())))
	if s == "" {
		return ""
	}
	if tail.Truncated() {
		return "[output truncated]\n" + s
	}
	return s
}
