package parser

import (
	"encoding/json"
	"regexp"
	"strconv"
	"strings"

	"github.com/noxsuite/testgate/types"
)

var (
	// pytest summary line, e.g. "===== 5 passed, 2 failed, 1 skipped in 3.21s ====="
	pytestCountRe = regexp.MustCompile(`(\d+) (passed|failed|skipped|errors?|xfailed|xpassed)`)

	// jest summary line, e.g. "Tests:       1 failed, 2 skipped, 5 passed, 8 total"
	jestCountRe = regexp.MustCompile(`(\d+) (passed|failed|skipped|todo)`)

	// tap result line, e.g. "ok 3 - connects # SKIP no network"
	tapResultRe = regexp.MustCompile(`^(not ok|ok)\b(.*)$`)

	// generic key/value summary, e.g. "passed=12 failed=0 skipped=3" or "passed: 12"
	summaryKVRe = regexp.MustCompile(`(passed|failed|skipped)\s*[:=]\s*(\d+)`)
)

// parsePytest reads the trailing pytest summary line. Collection errors are
// counted as failures since the tests they cover never ran.
func parsePytest(raw string) (types.Counts, bool) {
	var counts types.Counts
	matched := false
	for _, line := range strings.Split(raw, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "=") {
			continue
		}
		for _, m := range pytestCountRe.FindAllStringSubmatch(line, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			matched = true
			switch m[2] {
			case "passed", "xpassed":
				counts.Passed += n
			case "failed", "error", "errors":
				counts.Failed += n
			case "skipped", "xfailed":
				counts.Skipped += n
			}
		}
	}
	return counts, matched
}

// goTestEvent mirrors the events emitted by `go test -json`.
// See https://pkg.go.dev/cmd/test2json for the format.
type goTestEvent struct {
	Action string
	Test   string
}

// parseGoTestJSON counts terminal pass/fail/skip events for named tests in a
// test2json stream. Package-level events (empty Test) are not counted.
func parseGoTestJSON(raw string) (types.Counts, bool) {
	var counts types.Counts
	matched := false
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !strings.HasPrefix(line, "{") {
			continue
		}
		var event goTestEvent
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			continue
		}
		matched = true
		if event.Test == "" {
			continue
		}
		switch event.Action {
		case "pass":
			counts.Passed++
		case "fail":
			counts.Failed++
		case "skip":
			counts.Skipped++
		}
	}
	return counts, matched
}

// parseJest reads the "Tests:" summary line. Todo tests count as skipped.
func parseJest(raw string) (types.Counts, bool) {
	var counts types.Counts
	matched := false
	for _, line := range strings.Split(raw, "\n") {
		if !strings.HasPrefix(strings.TrimSpace(line), "Tests:") {
			continue
		}
		for _, m := range jestCountRe.FindAllStringSubmatch(line, -1) {
			n, err := strconv.Atoi(m[1])
			if err != nil {
				continue
			}
			matched = true
			switch m[2] {
			case "passed":
				counts.Passed += n
			case "failed":
				counts.Failed += n
			case "skipped", "todo":
				counts.Skipped += n
			}
		}
	}
	return counts, matched
}

// parseTAP counts "ok"/"not ok" result lines. An ok line carrying a SKIP
// directive counts as skipped, not passed.
func parseTAP(raw string) (types.Counts, bool) {
	var counts types.Counts
	matched := false
	for _, line := range strings.Split(raw, "\n") {
		m := tapResultRe.FindStringSubmatch(strings.TrimSpace(line))
		if m == nil {
			continue
		}
		matched = true
		rest := strings.ToUpper(m[2])
		switch {
		case m[1] == "not ok":
			counts.Failed++
		case strings.Contains(rest, "# SKIP"):
			counts.Skipped++
		default:
			counts.Passed++
		}
	}
	return counts, matched
}

// parseSummary handles generic "passed=N failed=N skipped=N" style summaries
// emitted by in-house harnesses.
func parseSummary(raw string) (types.Counts, bool) {
	var counts types.Counts
	matched := false
	for _, m := range summaryKVRe.FindAllStringSubmatch(strings.ToLower(raw), -1) {
		n, err := strconv.Atoi(m[2])
		if err != nil {
			continue
		}
		matched = true
		switch m[1] {
		case "passed":
			counts.Passed += n
		case "failed":
			counts.Failed += n
		case "skipped":
			counts.Skipped += n
		}
	}
	return counts, matched
}
