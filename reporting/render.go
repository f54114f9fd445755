package reporting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/noxsuite/testgate/types"
)

// Artifact is the persisted form of one run: the aggregated report plus the
// gate verdicts evaluated against it.
type Artifact struct {
	Report types.RunReport     `json:"report"`
	Gates  []types.GateVerdict `json:"gates,omitempty"`
}

// Render produces the machine-readable JSON artifact and a plain-text summary
// for the same run. The JSON round-trips through Decode.
func Render(report types.RunReport, verdicts []types.GateVerdict) ([]byte, string, error) {
	artifact := Artifact{Report: report, Gates: verdicts}

	data, err := json.MarshalIndent(artifact, "", "  ")
	if err != nil {
		return nil, "", fmt.Errorf("failed to encode run artifact: %w", err)
	}

	return data, renderText(artifact), nil
}

// Decode parses a JSON artifact produced by Render.
func Decode(data []byte) (Artifact, error) {
	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return Artifact{}, fmt.Errorf("failed to decode run artifact: %w", err)
	}
	return artifact, nil
}

// renderText formats the artifact as plain-text tables suitable for a summary
// file. Console output uses its own colored formatter; this one stays free of
// ANSI escapes.
func renderText(artifact Artifact) string {
	var buf bytes.Buffer
	report := artifact.Report

	t := table.NewWriter()
	t.SetOutputMirror(&buf)
	t.SetTitle(fmt.Sprintf("Suite Run %s", report.RunID))
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"SUITE", "STATUS", "DURATION", "PASSED", "FAILED", "SKIPPED", "DETAIL"})

	for _, suite := range report.Suites {
		detail := suite.ErrorDetail
		t.AppendRow(table.Row{
			suite.Name,
			statusGlyph(suite.Status),
			suite.Duration.Round(time.Millisecond),
			suite.Counts.Passed,
			suite.Counts.Failed,
			suite.Counts.Skipped,
			detail,
		})
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		string(report.Status),
		report.WallClock.Round(time.Millisecond),
		report.Totals.Passed,
		report.Totals.Failed,
		report.Totals.Skipped,
		fmt.Sprintf("%.1f%% success rate", report.SuccessRatePercent),
	})
	t.Render()

	if len(artifact.Gates) > 0 {
		buf.WriteString("\n")
		g := table.NewWriter()
		g.SetOutputMirror(&buf)
		g.SetTitle("Quality Gates")
		g.SetStyle(table.StyleLight)
		g.AppendHeader(table.Row{"GATE", "THRESHOLD", "ACTUAL", "VERDICT", "DETAIL"})
		for _, v := range artifact.Gates {
			verdict := "✓ pass"
			if !v.Passed {
				verdict = "✗ fail"
			}
			g.AppendRow(table.Row{
				v.Spec.Metric,
				fmt.Sprintf("%s %g", v.Spec.Op.Symbol(), v.Spec.Threshold),
				fmt.Sprintf("%g", v.Actual),
				verdict,
				v.Detail,
			})
		}
		g.Render()
	}

	return buf.String()
}

func statusGlyph(status types.SuiteStatus) string {
	switch status {
	case types.SuiteStatusPass:
		return "✓ pass"
	case types.SuiteStatusFail:
		return "✗ fail"
	case types.SuiteStatusTimeout:
		return "✗ timeout"
	default:
		return "✗ error"
	}
}
