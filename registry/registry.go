// Package registry loads and validates the static suite and gate
// configuration. Validation is eager: a malformed descriptor aborts startup
// before any suite is scheduled.
package registry

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"gopkg.in/yaml.v3"

	"github.com/noxsuite/testgate/parser"
	"github.com/noxsuite/testgate/types"
)

// DefaultSuiteTimeout applies when a suite config omits its timeout.
const DefaultSuiteTimeout = 10 * time.Minute

// Registry is the suite descriptor store: a static lookup of known suites
// and the configured quality gates. It has no logic beyond load and lookup.
type Registry struct {
	config      Config
	descriptors []types.SuiteDescriptor
	gates       []types.GateSpec
	mu          sync.RWMutex
}

// Config contains registry configuration
type Config struct {
	Log            log.Logger
	ConfigFile     string
	DefaultTimeout time.Duration
	Parsers        *parser.Registry
}

// NewRegistry loads the suite set config and validates every descriptor.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.ConfigFile == "" {
		return nil, fmt.Errorf("suite config file is required")
	}
	if cfg.Log == nil {
		cfg.Log = log.New()
		cfg.Log.Error("No logger provided, using default")
	}
	if cfg.Parsers == nil {
		cfg.Parsers = parser.NewRegistry()
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = DefaultSuiteTimeout
	}

	r := &Registry{config: cfg}
	if err := r.load(cfg.ConfigFile); err != nil {
		return nil, fmt.Errorf("failed to load suite config: %w", err)
	}

	cfg.Log.Debug("Registry loaded", "suites", len(r.descriptors), "gates", len(r.gates))
	return r, nil
}

func (r *Registry) load(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	var cfg types.SuiteSetConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parsing config file: %w", err)
	}

	descriptors, err := r.buildDescriptors(cfg.Suites)
	if err != nil {
		return err
	}

	r.descriptors = descriptors
	r.gates = cfg.Gates
	return nil
}

func (r *Registry) buildDescriptors(suites []types.SuiteConfig) ([]types.SuiteDescriptor, error) {
	if len(suites) == 0 {
		return nil, fmt.Errorf("no suites configured")
	}

	seen := make(map[string]bool, len(suites))
	descriptors := make([]types.SuiteDescriptor, 0, len(suites))
	for i, s := range suites {
		if s.Name == "" {
			return nil, fmt.Errorf("suite at index %d has no name", i)
		}
		if seen[s.Name] {
			return nil, fmt.Errorf("duplicate suite name %q", s.Name)
		}
		seen[s.Name] = true

		if s.Command == "" {
			return nil, fmt.Errorf("suite %q has no command", s.Name)
		}
		if !r.config.Parsers.Known(parser.Kind(s.Parser)) {
			return nil, fmt.Errorf("suite %q uses unknown parser %q (known: %s)",
				s.Name, s.Parser, strings.Join(r.config.Parsers.Kinds(), ", "))
		}

		timeout := s.Timeout
		if timeout == 0 {
			timeout = r.config.DefaultTimeout
		}
		if timeout < 0 {
			return nil, fmt.Errorf("suite %q has negative timeout %s", s.Name, s.Timeout)
		}

		descriptors = append(descriptors, types.SuiteDescriptor{
			Name:    s.Name,
			Command: s.Command,
			Args:    s.Args,
			WorkDir: s.WorkDir,
			Env:     flattenEnv(s.Env),
			Timeout: timeout,
			Parser:  s.Parser,
		})
	}
	return descriptors, nil
}

// flattenEnv converts the config's env map to KEY=VALUE pairs in a
// deterministic order.
func flattenEnv(env map[string]string) []string {
	if len(env) == 0 {
		return nil
	}
	pairs := make([]string, 0, len(env))
	for k, v := range env {
		pairs = append(pairs, k+"="+v)
	}
	sort.Strings(pairs)
	return pairs
}

// Descriptors returns all configured suite descriptors in declaration order.
func (r *Registry) Descriptors() []types.SuiteDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.descriptors
}

// Descriptor returns the descriptor with the given name.
func (r *Registry) Descriptor(name string) (types.SuiteDescriptor, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, d := range r.descriptors {
		if d.Name == name {
			return d, true
		}
	}
	return types.SuiteDescriptor{}, false
}

// Gates returns the configured quality gate specs.
func (r *Registry) Gates() []types.GateSpec {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.gates
}

// GetConfig returns the registry configuration
func (r *Registry) GetConfig() Config {
	return r.config
}
