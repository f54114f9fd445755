package types

import "time"

// SuiteConfig is the YAML form of a suite descriptor.
type SuiteConfig struct {
	Name    string            `yaml:"name"`
	Command string            `yaml:"command"`
	Args    []string          `yaml:"args,omitempty"`
	WorkDir string            `yaml:"workdir,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
	Timeout time.Duration     `yaml:"timeout,omitempty"`
	Parser  string            `yaml:"parser"`
}

// SuiteSetConfig is the complete on-disk configuration: the suites to run
// and the quality gates to evaluate against the finished report.
type SuiteSetConfig struct {
	Suites []SuiteConfig `yaml:"suites"`
	Gates  []GateSpec    `yaml:"gates,omitempty"`
}
