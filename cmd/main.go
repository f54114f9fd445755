package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	testgate "github.com/noxsuite/testgate"
	"github.com/noxsuite/testgate/exitcodes"
	"github.com/noxsuite/testgate/flags"
	"github.com/noxsuite/testgate/service"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "testgate"
	app.Usage = "Test Suite Orchestration and Quality Gate Service"
	app.Description = "testgate runs configured test suites and evaluates quality gates against the results"
	app.Flags = flags.Flags
	app.Action = run
	app.ExitErrHandler = exitErrHandler

	// Start telemetry
	otelShutdown, err := otelconfig.ConfigureOpenTelemetry(
		otelconfig.WithServiceName(app.Name),
		otelconfig.WithServiceVersion(app.Version),
	)
	if err != nil {
		log.Crit("Failed to setup open telemetry", "message", err)
	}
	defer otelShutdown()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start server
	svc := service.New()
	svc.Start(ctx)
	defer svc.Shutdown()

	// Start CLI
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Crit("Application failed", "message", err)
	}
}

// exitErrHandler maps typed application errors to process exit codes.
func exitErrHandler(c *cli.Context, err error) {
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		// Use the exit code from the ExitCoder
		cli.HandleExitCoder(exitErr)
	} else if err != nil {
		if testgate.IsRuntimeError(err) {
			cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
		} else if testgate.IsGateFailureError(err) {
			cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.GateFailure))
		} else {
			// For other unspecified errors, default to exit code 1
			cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.GateFailure))
		}
	}
}

func run(cliCtx *cli.Context) error {
	logger, err := newLogger(cliCtx.String(flags.LogLevel.Name))
	if err != nil {
		return testgate.NewRuntimeError(err)
	}
	log.SetDefault(logger)

	cfg, err := testgate.NewConfig(cliCtx, logger, cliCtx.String(flags.ConfigFile.Name))
	if err != nil {
		// Wrap in RuntimeError to signal this should exit with code 2
		return testgate.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}

	cfg.Log.Debug("Config",
		"configFile", cfg.ConfigFile,
		"resultsDir", cfg.ResultsDir,
		"runOnce", cfg.RunOnce)

	appCtx, cancel := context.WithCancelCause(cliCtx.Context)
	defer cancel(nil)

	orchestrator, err := testgate.New(appCtx, cfg, Version, cancel)
	if err != nil {
		return testgate.NewRuntimeError(fmt.Errorf("failed to create orchestrator: %w", err))
	}

	if err := orchestrator.Start(appCtx); err != nil {
		return err
	}

	// Block until run-once completion or an interrupt cancels the context.
	<-appCtx.Done()
	if cause := context.Cause(appCtx); cause != nil && !errors.Is(cause, context.Canceled) {
		return cause
	}

	if err := orchestrator.Stop(context.Background()); err != nil {
		logger.Error("Error stopping orchestrator", "error", err)
	}

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer waitCancel()
	return orchestrator.WaitForShutdown(waitCtx)
}

// newLogger builds the application logger at the requested level.
func newLogger(level string) (log.Logger, error) {
	lvl, err := log.LvlFromString(level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	return log.NewLogger(log.NewTerminalHandlerWithLevel(os.Stdout, lvl, true)), nil
}
