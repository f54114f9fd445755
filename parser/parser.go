// Package parser normalizes raw test harness output into pass/fail/skip
// counts. Parsers form a closed set selected by kind and never return errors:
// unparsable input degrades to zero counts and the caller keeps the raw
// excerpt for diagnosis.
package parser

import (
	"sort"

	"github.com/acarl005/stripansi"

	"github.com/noxsuite/testgate/types"
)

// Kind selects the output grammar a suite produces.
type Kind string

const (
	KindPytest  Kind = "pytest"
	KindGoTest  Kind = "gotest"
	KindJest    Kind = "jest"
	KindTAP     Kind = "tap"
	KindSummary Kind = "summary"
)

// String implements the Stringer interface for Kind
func (k Kind) String() string {
	return string(k)
}

// Func turns raw captured output into a count tuple. The boolean reports
// whether the output matched the expected grammar at all.
type Func func(raw string) (types.Counts, bool)

// Registry maps parser kinds to their implementations. Adding support for a
// new external tool means registering a new parser here, not touching the
// scheduler.
type Registry struct {
	parsers map[Kind]Func
}

// NewRegistry creates a registry with all built-in parsers registered.
func NewRegistry() *Registry {
	return &Registry{
		parsers: map[Kind]Func{
			KindPytest:  parsePytest,
			KindGoTest:  parseGoTestJSON,
			KindJest:    parseJest,
			KindTAP:     parseTAP,
			KindSummary: parseSummary,
		},
	}
}

// Known reports whether the kind has a registered parser.
func (r *Registry) Known(kind Kind) bool {
	_, ok := r.parsers[kind]
	return ok
}

// Kinds returns the registered parser kinds in sorted order.
func (r *Registry) Kinds() []string {
	kinds := make([]string, 0, len(r.parsers))
	for k := range r.parsers {
		kinds = append(kinds, string(k))
	}
	sort.Strings(kinds)
	return kinds
}

// Parse normalizes raw output using the parser registered for kind. A parser
// panic is treated the same as unparsable output; it never propagates to the
// caller.
func (r *Registry) Parse(kind Kind, raw []byte) (counts types.Counts, ok bool) {
	parse, known := r.parsers[kind]
	if !known {
		return types.Counts{}, false
	}

	defer func() {
		if rec := recover(); rec != nil {
			counts = types.Counts{}
			ok = false
		}
	}()

	return parse(stripansi.Strip(string(raw)))
}
