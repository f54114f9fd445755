package types

import "fmt"

// Comparator selects how a gate's actual value is compared to its threshold.
type Comparator string

const (
	ComparatorGTE Comparator = "gte"
	ComparatorLTE Comparator = "lte"
)

// String implements the Stringer interface for Comparator
func (c Comparator) String() string {
	return string(c)
}

// Symbol returns the comparator's mathematical symbol for display.
func (c Comparator) Symbol() string {
	switch c {
	case ComparatorGTE:
		return ">="
	case ComparatorLTE:
		return "<="
	default:
		return string(c)
	}
}

// GateSpec is one configured quality gate: a named metric, a comparator and
// a numeric threshold. External gates read their value from a
// collaborator-supplied metrics map instead of the RunReport.
type GateSpec struct {
	Metric    string     `json:"metric" yaml:"metric"`
	Op        Comparator `json:"op" yaml:"op"`
	Threshold float64    `json:"threshold" yaml:"threshold"`
	External  bool       `json:"external,omitempty" yaml:"external,omitempty"`
}

func (g GateSpec) String() string {
	return fmt.Sprintf("%s %s %g", g.Metric, g.Op.Symbol(), g.Threshold)
}

// GateVerdict is the evaluation result of one gate for one run. It is
// ephemeral and not persisted beyond the rendered report.
type GateVerdict struct {
	Spec   GateSpec `json:"gate"`
	Actual float64  `json:"actual"`
	Passed bool     `json:"passed"`
	Detail string   `json:"detail,omitempty"`
}

func (v GateVerdict) String() string {
	outcome := "fail"
	if v.Passed {
		outcome = "pass"
	}
	return fmt.Sprintf("%s: %s (actual %g)", v.Spec, outcome, v.Actual)
}
