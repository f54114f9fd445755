package testgate

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/urfave/cli/v2"

	"github.com/noxsuite/testgate/flags"
)

// Config holds the application configuration
type Config struct {
	ConfigFile      string             // Path to the suite config file
	ResultsDir      string             // Directory for per-run report artifacts
	RunInterval     time.Duration      // Interval between suite runs
	RunOnce         bool               // Indicates if the service should exit after one run
	Serial          bool               // Run suites serially instead of in parallel
	MaxWorkers      int                // Concurrent suite workers (0 = default)
	DefaultTimeout  time.Duration      // Timeout for suites without their own (0 = built-in default)
	ExternalMetrics map[string]float64 // Gate metrics supplied from outside the run (e.g. coverage)
	Log             log.Logger
}

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log log.Logger, configFile string) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}
	if configFile == "" {
		return nil, errors.New("suite config file is required")
	}

	absConfigFile, err := filepath.Abs(configFile)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for config file '%s': %w", configFile, err)
	}

	resultsDir := ctx.String(flags.ResultsDir.Name)
	if resultsDir == "" {
		resultsDir = "results"
	}
	resultsDir, err = filepath.Abs(resultsDir)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for results directory '%s': %w", resultsDir, err)
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)
	runOnce := runInterval == 0

	external, err := parseExternalMetrics(ctx.StringSlice(flags.ExternalMetric.Name))
	if err != nil {
		return nil, err
	}

	return &Config{
		ConfigFile:      absConfigFile,
		ResultsDir:      resultsDir,
		RunInterval:     runInterval,
		RunOnce:         runOnce,
		Serial:          ctx.Bool(flags.Serial.Name),
		MaxWorkers:      ctx.Int(flags.MaxWorkers.Name),
		DefaultTimeout:  ctx.Duration(flags.DefaultTimeout.Name),
		ExternalMetrics: external,
		Log:             log,
	}, nil
}

// parseExternalMetrics parses repeated key=value metric flags.
func parseExternalMetrics(pairs []string) (map[string]float64, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	metrics := make(map[string]float64, len(pairs))
	for _, pair := range pairs {
		key, rawValue, found := strings.Cut(pair, "=")
		if !found || key == "" {
			return nil, fmt.Errorf("invalid metric %q, expected key=value", pair)
		}
		value, err := strconv.ParseFloat(rawValue, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid metric value in %q: %w", pair, err)
		}
		metrics[key] = value
	}
	return metrics, nil
}
