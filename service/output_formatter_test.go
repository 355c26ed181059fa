package service

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/testutil"
	"gopkg.in/yaml.v3"
)

func sampleResult() *domain.AnalysisResult {
	agg := sampleAggregate()
	return &domain.AnalysisResult{
		Mode:          domain.RunModeFull,
		Findings:      agg.Findings,
		Metrics:       agg.Metrics,
		FilesAnalyzed: 7,
		ExecutionTime: 250 * time.Millisecond,
		ReportPath:    ".ktscan/reports/quality-report.md",
	}
}

func fixedFormatter() *OutputFormatterImpl {
	f := NewOutputFormatter()
	f.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return f
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, map[string]any{"name": "test", "value": 42}); err != nil {
		t.Fatalf("WriteJSON failed: %v", err)
	}

	var result map[string]any
	if err := json.Unmarshal(buf.Bytes(), &result); err != nil {
		t.Fatalf("Failed to parse output as JSON: %v", err)
	}
	if result["name"] != "test" {
		t.Errorf("Expected name to be 'test', got %v", result["name"])
	}
}

func TestOutputFormatter_WriteAnalysisJSON(t *testing.T) {
	var buf bytes.Buffer
	testutil.AssertNoError(t, fixedFormatter().WriteAnalysis(sampleResult(), domain.OutputFormatJSON, &buf))

	var resp AnalysisResponse
	if err := json.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid JSON: %v", err)
	}
	testutil.AssertEqual(t, domain.RunModeFull, resp.Mode)
	testutil.AssertEqual(t, int64(250), resp.DurationMs)
	testutil.AssertEqual(t, 7, resp.FilesAnalyzed)
	testutil.AssertEqual(t, "2026-05-01T12:00:00Z", resp.GeneratedAt)
	testutil.AssertEqual(t, 2, len(resp.Findings))
	testutil.AssertEqual(t, 1, resp.Metrics.FindingsByPriority[domain.PriorityCritical])
}

func TestOutputFormatter_WriteAnalysisYAML(t *testing.T) {
	var buf bytes.Buffer
	testutil.AssertNoError(t, fixedFormatter().WriteAnalysis(sampleResult(), domain.OutputFormatYAML, &buf))

	var resp AnalysisResponse
	if err := yaml.Unmarshal(buf.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid YAML: %v", err)
	}
	testutil.AssertEqual(t, 2, len(resp.Findings))
	testutil.AssertEqual(t, "Hardcoded secret", resp.Findings[0].Title)
	testutil.AssertEqual(t, domain.CategorySecurity, resp.Findings[0].Category)
}

func TestOutputFormatter_WriteAnalysisJSON_EmptyFindings(t *testing.T) {
	var buf bytes.Buffer
	result := &domain.AnalysisResult{Mode: domain.RunModeFiltered}
	testutil.AssertNoError(t, fixedFormatter().WriteAnalysis(result, domain.OutputFormatJSON, &buf))

	if !strings.Contains(buf.String(), `"findings": []`) {
		t.Errorf("Expected an empty findings array, got %s", buf.String())
	}
}

func TestOutputFormatter_WriteAnalysisText(t *testing.T) {
	var buf bytes.Buffer
	testutil.AssertNoError(t, fixedFormatter().WriteAnalysis(sampleResult(), domain.OutputFormatText, &buf))

	out := buf.String()
	for _, want := range []string{
		"=== ktscan Analysis Report (full) ===",
		"Files analyzed: 7",
		"Findings: 2 (critical 1, high 0, medium 0, low 1)",
		"src/data/Api.kt:4  Hardcoded secret [security]",
		"Report: .ktscan/reports/quality-report.md",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Text output missing %q:\n%s", want, out)
		}
	}
}

func TestOutputFormatter_WriteAnalysisMarkdown(t *testing.T) {
	var buf bytes.Buffer
	testutil.AssertNoError(t, fixedFormatter().WriteAnalysis(sampleResult(), domain.OutputFormatMarkdown, &buf))
	testutil.AssertTrue(t, strings.HasPrefix(buf.String(), "# Code Quality Report"), "markdown output should be the report")
}

func TestOutputFormatter_UnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	err := fixedFormatter().WriteAnalysis(sampleResult(), "html", &buf)
	if !domain.IsCode(err, domain.ErrCodeInvalidInput) {
		t.Errorf("Expected invalid input error, got %v", err)
	}
}

func TestOutputFormatter_WriteCheck(t *testing.T) {
	agg := sampleAggregate()
	result := &domain.CheckResult{
		Passed:      false,
		ExitCode:    1,
		FailOn:      domain.PriorityHigh,
		NewFindings: agg.Findings,
		Summary:     domain.CheckSummary{FilesAnalyzed: 3, TotalFindings: 2, NewFindings: 2, BlockingFindings: 1},
	}

	var buf bytes.Buffer
	testutil.AssertNoError(t, fixedFormatter().WriteCheck(result, domain.OutputFormatText, &buf))
	out := buf.String()

	testutil.AssertTrue(t, strings.Contains(out, "Quality gate FAILED (fail-on HIGH)"), out)
	testutil.AssertTrue(t, strings.Contains(out, "No baseline found"), out)
	testutil.AssertTrue(t, strings.Contains(out, "Hardcoded secret"), out)
	testutil.AssertFalse(t, strings.Contains(out, "Type name not PascalCase"), "findings below fail-on must not be listed")

	buf.Reset()
	testutil.AssertNoError(t, fixedFormatter().WriteCheck(result, domain.OutputFormatJSON, &buf))
	var decoded domain.CheckResult
	testutil.AssertNoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	testutil.AssertEqual(t, 1, decoded.ExitCode)
}

func TestOutputFormatter_WriteHistory(t *testing.T) {
	entries := []domain.HistoryEntry{{
		ID:            3,
		Timestamp:     time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC),
		Mode:          domain.RunModeFull,
		FilesAnalyzed: 12,
		DurationMs:    480,
		Metrics:       sampleAggregate().Metrics,
	}}

	var buf bytes.Buffer
	testutil.AssertNoError(t, fixedFormatter().WriteHistory(entries, domain.OutputFormatText, &buf))
	testutil.AssertTrue(t, strings.Contains(buf.String(), "2026-02-03T04:05:06Z"), buf.String())

	buf.Reset()
	testutil.AssertNoError(t, fixedFormatter().WriteHistory(nil, domain.OutputFormatText, &buf))
	testutil.AssertEqual(t, "No history recorded yet.\n", buf.String())

	buf.Reset()
	testutil.AssertNoError(t, fixedFormatter().WriteHistory(entries, domain.OutputFormatYAML, &buf))
	var rows []HistoryRow
	testutil.AssertNoError(t, yaml.Unmarshal(buf.Bytes(), &rows))
	testutil.AssertEqual(t, int64(3), rows[0].ID)
}
