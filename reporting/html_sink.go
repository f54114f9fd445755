package reporting

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/noxsuite/testgate/types"
)

//go:embed templates/*.html.tmpl
var templateFS embed.FS

// HTMLSink renders the run artifact as a standalone HTML page next to the
// JSON and text artifacts.
type HTMLSink struct {
	baseDir  string
	template *template.Template
}

// NewHTMLSink creates an HTML sink rooted at baseDir.
func NewHTMLSink(baseDir string) (*HTMLSink, error) {
	tmpl, err := template.New("report.html.tmpl").Funcs(template.FuncMap{
		"glyph": statusGlyph,
		"duration": func(d time.Duration) string {
			return d.Round(time.Millisecond).String()
		},
		"percent": func(v float64) string {
			return fmt.Sprintf("%.1f%%", v)
		},
		"threshold": func(spec types.GateSpec) string {
			return fmt.Sprintf("%s %g", spec.Op.Symbol(), spec.Threshold)
		},
	}).ParseFS(templateFS, "templates/report.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML report template: %w", err)
	}

	return &HTMLSink{baseDir: baseDir, template: tmpl}, nil
}

// WriteRun renders report.html into the per-run directory.
func (s *HTMLSink) WriteRun(artifact Artifact) error {
	outputDir := RunDir(s.baseDir, artifact.Report.RunID)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %w", outputDir, err)
	}

	htmlFile := filepath.Join(outputDir, "report.html")
	f, err := os.Create(htmlFile)
	if err != nil {
		return fmt.Errorf("failed to create HTML report file: %w", err)
	}
	defer f.Close()

	if err := s.template.Execute(f, artifact); err != nil {
		return fmt.Errorf("failed to render HTML report: %w", err)
	}
	return nil
}
