package service

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/version"
	"gopkg.in/yaml.v3"
)

// OutputFormatterImpl writes results to stdout-style writers
type OutputFormatterImpl struct {
	now func() time.Time
}

// NewOutputFormatter creates a new output formatter
func NewOutputFormatter() *OutputFormatterImpl {
	return &OutputFormatterImpl{now: time.Now}
}

// WriteJSON writes data as indented JSON
func WriteJSON(writer io.Writer, data any) error {
	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// WriteYAML writes data as YAML
func WriteYAML(writer io.Writer, data any) error {
	encoder := yaml.NewEncoder(writer)
	encoder.SetIndent(2)
	if err := encoder.Encode(data); err != nil {
		return err
	}
	return encoder.Close()
}

// AnalysisResponse wraps an analysis result with run metadata
type AnalysisResponse struct {
	Version       string                 `json:"version" yaml:"version"`
	GeneratedAt   string                 `json:"generated_at" yaml:"generated_at"`
	Mode          domain.RunMode         `json:"mode" yaml:"mode"`
	DurationMs    int64                  `json:"duration_ms" yaml:"duration_ms"`
	FilesAnalyzed int                    `json:"files_analyzed" yaml:"files_analyzed"`
	ReportPath    string                 `json:"report_path,omitempty" yaml:"report_path,omitempty"`
	Metrics       domain.AnalysisMetrics `json:"metrics" yaml:"metrics"`
	Findings      []domain.Finding       `json:"findings" yaml:"findings"`
	Errors        []string               `json:"errors,omitempty" yaml:"errors,omitempty"`
}

// HistoryRow is the serialized form of a history entry
type HistoryRow struct {
	ID            int64                  `json:"id" yaml:"id"`
	Timestamp     string                 `json:"timestamp" yaml:"timestamp"`
	Mode          domain.RunMode         `json:"mode" yaml:"mode"`
	FilesAnalyzed int                    `json:"files_analyzed" yaml:"files_analyzed"`
	DurationMs    int64                  `json:"duration_ms" yaml:"duration_ms"`
	Metrics       domain.AnalysisMetrics `json:"metrics" yaml:"metrics"`
}

// WriteAnalysis writes an analysis result in the given format
func (f *OutputFormatterImpl) WriteAnalysis(result *domain.AnalysisResult, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, f.analysisResponse(result))
	case domain.OutputFormatYAML:
		return WriteYAML(writer, f.analysisResponse(result))
	case domain.OutputFormatMarkdown:
		_, err := io.WriteString(writer, NewMarkdownReporter().Render(result, nil))
		return err
	case domain.OutputFormatText, "":
		return f.writeAnalysisText(result, writer)
	default:
		return domain.NewInvalidInputError(fmt.Sprintf("unsupported output format: %s", format), nil)
	}
}

// WriteCheck writes a quality gate result in the given format
func (f *OutputFormatterImpl) WriteCheck(result *domain.CheckResult, format domain.OutputFormat, writer io.Writer) error {
	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, result)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, result)
	case domain.OutputFormatText, domain.OutputFormatMarkdown, "":
		return f.writeCheckText(result, writer)
	default:
		return domain.NewInvalidInputError(fmt.Sprintf("unsupported output format: %s", format), nil)
	}
}

// WriteHistory writes history entries, newest first
func (f *OutputFormatterImpl) WriteHistory(entries []domain.HistoryEntry, format domain.OutputFormat, writer io.Writer) error {
	rows := make([]HistoryRow, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, HistoryRow{
			ID:            e.ID,
			Timestamp:     e.Timestamp.UTC().Format(time.RFC3339),
			Mode:          e.Mode,
			FilesAnalyzed: e.FilesAnalyzed,
			DurationMs:    e.DurationMs,
			Metrics:       e.Metrics,
		})
	}

	switch format {
	case domain.OutputFormatJSON:
		return WriteJSON(writer, rows)
	case domain.OutputFormatYAML:
		return WriteYAML(writer, rows)
	case domain.OutputFormatText, domain.OutputFormatMarkdown, "":
		if len(rows) == 0 {
			_, err := fmt.Fprintln(writer, "No history recorded yet.")
			return err
		}
		fmt.Fprintf(writer, "%-6s %-20s %-12s %6s %9s %9s %9s\n", "ID", "TIMESTAMP", "MODE", "FILES", "FINDINGS", "CRITICAL", "DURATION")
		for _, r := range rows {
			fmt.Fprintf(writer, "%-6d %-20s %-12s %6d %9d %9d %7dms\n",
				r.ID, r.Timestamp, r.Mode, r.FilesAnalyzed, r.Metrics.TotalFindings,
				r.Metrics.FindingsByPriority[domain.PriorityCritical], r.DurationMs)
		}
		return nil
	default:
		return domain.NewInvalidInputError(fmt.Sprintf("unsupported output format: %s", format), nil)
	}
}

func (f *OutputFormatterImpl) analysisResponse(result *domain.AnalysisResult) AnalysisResponse {
	findings := result.Findings
	if findings == nil {
		findings = []domain.Finding{}
	}
	return AnalysisResponse{
		Version:       version.GetVersion(),
		GeneratedAt:   f.now().UTC().Format(time.RFC3339),
		Mode:          result.Mode,
		DurationMs:    result.ExecutionTime.Milliseconds(),
		FilesAnalyzed: result.FilesAnalyzed,
		ReportPath:    result.ReportPath,
		Metrics:       result.Metrics,
		Findings:      findings,
		Errors:        result.Errors,
	}
}

func (f *OutputFormatterImpl) writeAnalysisText(result *domain.AnalysisResult, writer io.Writer) error {
	m := result.Metrics
	fmt.Fprintf(writer, "\n=== ktscan Analysis Report (%s) ===\n", result.Mode)
	fmt.Fprintf(writer, "Files analyzed: %d\n", result.FilesAnalyzed)
	fmt.Fprintf(writer, "Duration: %dms\n", result.ExecutionTime.Milliseconds())
	fmt.Fprintf(writer, "Version: %s\n\n", version.GetVersion())

	fmt.Fprintf(writer, "Findings: %d", m.TotalFindings)
	var parts []string
	for _, p := range domain.AllPriorities() {
		parts = append(parts, fmt.Sprintf("%s %d", strings.ToLower(string(p)), m.FindingsByPriority[p]))
	}
	fmt.Fprintf(writer, " (%s)\n", strings.Join(parts, ", "))
	fmt.Fprintf(writer, "Test coverage (heuristic): %.1f%%\n", m.TestCoveragePercentage)
	fmt.Fprintf(writer, "Documentation coverage (heuristic): %.1f%%\n\n", m.DocumentationCoveragePercentage)

	for _, finding := range result.Findings {
		fmt.Fprintf(writer, "%-8s %s  %s [%s]\n", finding.Priority, finding.Location(), finding.Title, finding.AnalyzerID)
	}
	if len(result.Findings) > 0 {
		fmt.Fprintln(writer)
	}

	if result.ReportPath != "" {
		fmt.Fprintf(writer, "Report: %s\n", result.ReportPath)
	}
	for _, e := range result.Errors {
		fmt.Fprintf(writer, "Error: %s\n", e)
	}
	return nil
}

func (f *OutputFormatterImpl) writeCheckText(result *domain.CheckResult, writer io.Writer) error {
	status := "PASSED"
	if !result.Passed {
		status = "FAILED"
	}
	fmt.Fprintf(writer, "Quality gate %s (fail-on %s)\n", status, result.FailOn)
	fmt.Fprintf(writer, "Files analyzed: %d, findings: %d, new: %d, blocking: %d, resolved: %d\n",
		result.Summary.FilesAnalyzed, result.Summary.TotalFindings, result.Summary.NewFindings,
		result.Summary.BlockingFindings, result.Resolved)
	if !result.Summary.BaselineFound {
		fmt.Fprintln(writer, "No baseline found: every finding counts as new.")
	}
	for _, finding := range result.NewFindings {
		if finding.Priority.Severity() < result.FailOn.Severity() {
			continue
		}
		fmt.Fprintf(writer, "  %-8s %s  %s\n", finding.Priority, finding.Location(), finding.Title)
	}
	return nil
}
