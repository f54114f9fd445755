package testgate

import (
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/noxsuite/testgate/gates"
	"github.com/noxsuite/testgate/reporting"
	"github.com/noxsuite/testgate/types"
)

// ResultFormatter is responsible for formatting and displaying run results.
type ResultFormatter interface {
	FormatResults(artifact reporting.Artifact) error
}

// ConsoleResultFormatter implements the ResultFormatter interface.
type ConsoleResultFormatter struct {
	logger log.Logger
	out    io.Writer
}

// NewConsoleResultFormatter creates a new ConsoleResultFormatter.
func NewConsoleResultFormatter(logger log.Logger) *ConsoleResultFormatter {
	return &ConsoleResultFormatter{
		logger: logger,
		out:    os.Stdout,
	}
}

// WithOutput redirects the formatter's output, used by tests.
func (f *ConsoleResultFormatter) WithOutput(out io.Writer) *ConsoleResultFormatter {
	f.out = out
	return f
}

// FormatResults formats and displays the run results.
func (f *ConsoleResultFormatter) FormatResults(artifact reporting.Artifact) error {
	f.logger.Info("Printing results...")
	report := artifact.Report

	t := table.NewWriter()
	t.SetOutputMirror(f.out)
	t.SetTitle(fmt.Sprintf("Suite Run Results (%s)", formatDuration(report.WallClock)))

	t.AppendHeader(table.Row{
		"Suite", "Duration", "Tests", "Passed", "Failed", "Skipped", "Status", "Detail",
	})

	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Suite", WidthMax: 40, WidthMaxEnforcer: text.WrapSoft},
		{Name: "Duration", Align: text.AlignRight},
		{Name: "Tests", Align: text.AlignRight},
		{Name: "Passed", Align: text.AlignRight},
		{Name: "Failed", Align: text.AlignRight},
		{Name: "Skipped", Align: text.AlignRight},
		{Name: "Detail", WidthMax: 80, WidthMaxEnforcer: text.WrapSoft},
	})

	for _, suite := range report.Suites {
		t.AppendRow(table.Row{
			suite.Name,
			formatDuration(suite.Duration),
			suite.Counts.Total(),
			suite.Counts.Passed,
			suite.Counts.Failed,
			suite.Counts.Skipped,
			getSuiteResultString(suite.Status),
			suite.ErrorDetail,
		})
	}

	if len(artifact.Gates) > 0 {
		t.AppendSeparator()
		for _, v := range artifact.Gates {
			t.AppendRow(table.Row{
				fmt.Sprintf("gate: %s", v.Spec.Metric),
				"",
				"",
				"",
				"",
				"",
				getGateResultString(v.Passed),
				fmt.Sprintf("%g %s %g %s", v.Actual, v.Spec.Op.Symbol(), v.Spec.Threshold, v.Detail),
			})
		}
	}

	// Update the table style setting based on result status
	if report.Status == types.RunStatusPass && gates.AllPassed(artifact.Gates) {
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	} else {
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	}

	t.AppendFooter(table.Row{
		"TOTAL",
		formatDuration(report.WallClock),
		report.Totals.Total(),
		report.Totals.Passed,
		report.Totals.Failed,
		report.Totals.Skipped,
		getRunResultString(report.Status),
		fmt.Sprintf("%.1f%% success rate", report.SuccessRatePercent),
	})

	t.Render()

	fmt.Fprintln(f.out, report.String())
	return nil
}
