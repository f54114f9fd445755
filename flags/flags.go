package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "TESTGATE"

// prefixEnvVar builds the env var names for a flag.
func prefixEnvVar(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	ConfigFile = &cli.StringFlag{
		Name:     "config",
		Value:    "",
		Required: true,
		EnvVars:  prefixEnvVar("CONFIG"),
		Usage:    "Path to suite config file (eg. 'suites.yaml')",
	}
	ResultsDir = &cli.StringFlag{
		Name:    "results-dir",
		Value:   "results",
		EnvVars: prefixEnvVar("RESULTS_DIR"),
		Usage:   "Directory where per-run report artifacts are written",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: prefixEnvVar("RUN_INTERVAL"),
		Usage:   "Interval between suite runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
	Serial = &cli.BoolFlag{
		Name:    "serial",
		Value:   false,
		EnvVars: prefixEnvVar("SERIAL"),
		Usage:   "Run suites one at a time in declaration order instead of in parallel",
	}
	MaxWorkers = &cli.IntFlag{
		Name:    "max-workers",
		Value:   0,
		EnvVars: prefixEnvVar("MAX_WORKERS"),
		Usage:   "Maximum number of suites executing concurrently (0 uses the default)",
	}
	DefaultTimeout = &cli.DurationFlag{
		Name:    "default-timeout",
		Value:   0,
		EnvVars: prefixEnvVar("DEFAULT_TIMEOUT"),
		Usage:   "Timeout applied to suites that don't declare their own (0 uses the built-in default)",
	}
	ExternalMetric = &cli.StringSliceFlag{
		Name:    "metric",
		EnvVars: prefixEnvVar("METRIC"),
		Usage:   "External gate metric as key=value (e.g. 'coverage_percent=87.5'); repeatable",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log-level",
		Value:   "info",
		EnvVars: prefixEnvVar("LOG_LEVEL"),
		Usage:   "Log level: trace, debug, info, warn, error",
	}
)

var requiredFlags = []cli.Flag{
	ConfigFile,
}

var optionalFlags = []cli.Flag{
	ResultsDir,
	RunInterval,
	Serial,
	MaxWorkers,
	DefaultTimeout,
	ExternalMetric,
	LogLevel,
}

var Flags []cli.Flag

func init() {
	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return nil
}
