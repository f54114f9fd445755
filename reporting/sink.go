package reporting

import (
	"fmt"
	"os"
	"path/filepath"
)

// Sink persists the artifact set for one completed run.
type Sink interface {
	WriteRun(artifact Artifact) error
}

// RunDir returns the per-run artifact directory under baseDir.
func RunDir(baseDir, runID string) string {
	return filepath.Join(baseDir, "run-"+runID)
}

// FileSink writes report.json and summary.txt into the per-run directory.
type FileSink struct {
	baseDir string
}

// NewFileSink creates a file sink rooted at baseDir.
func NewFileSink(baseDir string) *FileSink {
	return &FileSink{baseDir: baseDir}
}

// WriteRun persists the JSON artifact and the plain-text summary.
func (s *FileSink) WriteRun(artifact Artifact) error {
	outputDir := RunDir(s.baseDir, artifact.Report.RunID)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	data, text, err := Render(artifact.Report, artifact.Gates)
	if err != nil {
		return err
	}

	reportFile := filepath.Join(outputDir, "report.json")
	if err := os.WriteFile(reportFile, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %w", err)
	}

	summaryFile := filepath.Join(outputDir, "summary.txt")
	if err := os.WriteFile(summaryFile, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write summary file: %w", err)
	}

	return s.writeSuiteLogs(outputDir, artifact)
}

// writeSuiteLogs persists each suite's captured output under logs/ so a
// failing suite can be inspected without re-running it.
func (s *FileSink) writeSuiteLogs(outputDir string, artifact Artifact) error {
	logsDir := filepath.Join(outputDir, "logs")
	if err := os.MkdirAll(logsDir, 0755); err != nil {
		return fmt.Errorf("failed to create logs directory %s: %w", logsDir, err)
	}
	for _, suite := range artifact.Report.Suites {
		if suite.OutputExcerpt == "" {
			continue
		}
		logFile := filepath.Join(logsDir, suite.Name+".log")
		if err := os.WriteFile(logFile, []byte(suite.OutputExcerpt), 0644); err != nil {
			return fmt.Errorf("failed to write suite log %s: %w", logFile, err)
		}
	}
	return nil
}
