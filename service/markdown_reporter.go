package service

import (
	"fmt"
	"strings"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/version"
)

// MarkdownReporter renders an analysis result as a markdown document
type MarkdownReporter struct {
	// MaxPerPriority caps the detailed entries per priority section (0 = all)
	MaxPerPriority int
}

// NewMarkdownReporter creates a reporter that lists every finding
func NewMarkdownReporter() *MarkdownReporter {
	return &MarkdownReporter{}
}

// Render produces the report. It reads only its arguments, so the same
// input always yields the same document.
func (r *MarkdownReporter) Render(result *domain.AnalysisResult, baseline *domain.Baseline) string {
	var sb strings.Builder

	title := "Code Quality Report"
	switch result.Mode {
	case domain.RunModeIncremental:
		title += " (incremental)"
	case domain.RunModeFiltered:
		title += " (filtered)"
	}
	fmt.Fprintf(&sb, "# %s\n\n", title)
	fmt.Fprintf(&sb, "_ktscan %s_\n\n", version.GetVersion())

	r.writeSummary(&sb, result)
	r.writeBreakdown(&sb, result.Metrics)
	if baseline != nil {
		r.writeBaselineDiff(&sb, result, baseline)
	}
	r.writeFindings(&sb, result.Findings)

	if len(result.Errors) > 0 {
		sb.WriteString("## Errors\n\n")
		for _, e := range result.Errors {
			fmt.Fprintf(&sb, "- %s\n", e)
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func (r *MarkdownReporter) writeSummary(sb *strings.Builder, result *domain.AnalysisResult) {
	m := result.Metrics
	sb.WriteString("## Summary\n\n")
	sb.WriteString("| Metric | Value |\n|---|---|\n")
	fmt.Fprintf(sb, "| Files analyzed | %d |\n", result.FilesAnalyzed)
	fmt.Fprintf(sb, "| Files with findings | %d |\n", m.TotalFiles)
	fmt.Fprintf(sb, "| Total findings | %d |\n", m.TotalFindings)
	fmt.Fprintf(sb, "| Execution time | %dms |\n", result.ExecutionTime.Milliseconds())
	fmt.Fprintf(sb, "| Average complexity | %.1f |\n", m.AverageComplexity)
	fmt.Fprintf(sb, "| Average long function length | %.1f |\n", m.AverageFunctionLength)
	fmt.Fprintf(sb, "| Average large class length | %.1f |\n", m.AverageClassLength)
	fmt.Fprintf(sb, "| Test coverage (heuristic) | %.1f%% |\n", m.TestCoveragePercentage)
	fmt.Fprintf(sb, "| Documentation coverage (heuristic) | %.1f%% |\n", m.DocumentationCoveragePercentage)
	sb.WriteString("\n")
}

func (r *MarkdownReporter) writeBreakdown(sb *strings.Builder, m domain.AnalysisMetrics) {
	sb.WriteString("## Findings by priority\n\n")
	sb.WriteString("| Priority | Count |\n|---|---|\n")
	for _, p := range domain.AllPriorities() {
		fmt.Fprintf(sb, "| %s | %d |\n", p, m.FindingsByPriority[p])
	}
	sb.WriteString("\n")

	sb.WriteString("## Findings by category\n\n")
	sb.WriteString("| Category | Count |\n|---|---|\n")
	for _, c := range domain.AllCategories() {
		if n := m.FindingsByCategory[c]; n > 0 {
			fmt.Fprintf(sb, "| %s | %d |\n", c, n)
		}
	}
	sb.WriteString("\n")
}

// writeBaselineDiff lists new and resolved findings. A partial run cannot
// tell a fixed finding from one in a file or analyzer it skipped, so only
// full runs list resolved findings.
func (r *MarkdownReporter) writeBaselineDiff(sb *strings.Builder, result *domain.AnalysisResult, baseline *domain.Baseline) {
	diff := baseline.Diff(result.Findings)

	fmt.Fprintf(sb, "## New findings (%d)\n\n", len(diff.New))
	fmt.Fprintf(sb, "Compared with the baseline from %s.\n\n", baseline.Timestamp.UTC().Format("2006-01-02 15:04:05 UTC"))
	if len(diff.New) == 0 {
		sb.WriteString("None.\n\n")
	}
	for _, f := range diff.New {
		fmt.Fprintf(sb, "- **%s** %s `%s`\n", f.Priority, f.Title, f.Location())
	}
	if len(diff.New) > 0 {
		sb.WriteString("\n")
	}

	if result.Mode != domain.RunModeFull {
		sb.WriteString("Resolved findings are only listed for full runs.\n\n")
		return
	}

	fmt.Fprintf(sb, "## Resolved findings (%d)\n\n", len(diff.Resolved))
	if len(diff.Resolved) == 0 {
		sb.WriteString("None.\n\n")
		return
	}
	for _, id := range diff.Resolved {
		fmt.Fprintf(sb, "- `%s`\n", id)
	}
	sb.WriteString("\n")
}

func (r *MarkdownReporter) writeFindings(sb *strings.Builder, findings []domain.Finding) {
	if len(findings) == 0 {
		sb.WriteString("## Findings\n\nNo issues found.\n\n")
		return
	}

	byPriority := make(map[domain.Priority][]domain.Finding)
	for _, f := range findings {
		byPriority[f.Priority] = append(byPriority[f.Priority], f)
	}

	for _, p := range domain.AllPriorities() {
		group := byPriority[p]
		if len(group) == 0 {
			continue
		}
		fmt.Fprintf(sb, "## %s (%d)\n\n", p, len(group))

		shown := group
		if r.MaxPerPriority > 0 && len(shown) > r.MaxPerPriority {
			shown = shown[:r.MaxPerPriority]
		}
		for _, f := range shown {
			writeFinding(sb, f)
		}
		if len(shown) < len(group) {
			fmt.Fprintf(sb, "_%d more %s findings omitted._\n\n", len(group)-len(shown), p)
		}
	}
}

func writeFinding(sb *strings.Builder, f domain.Finding) {
	fmt.Fprintf(sb, "### %s\n\n", f.Title)
	fmt.Fprintf(sb, "`%s` | %s | effort %s | %s\n\n", f.Location(), f.Category, f.Effort, f.AnalyzerID)
	if f.Description != "" {
		fmt.Fprintf(sb, "%s\n\n", f.Description)
	}
	if f.CodeSnippet != "" {
		fmt.Fprintf(sb, "```kotlin\n%s\n```\n\n", f.CodeSnippet)
	}
	if f.Recommendation != "" {
		fmt.Fprintf(sb, "**Recommendation:** %s\n\n", f.Recommendation)
	}
	if f.BeforeExample != "" {
		fmt.Fprintf(sb, "Before:\n\n```kotlin\n%s\n```\n\n", f.BeforeExample)
	}
	if f.AfterExample != "" {
		fmt.Fprintf(sb, "After:\n\n```kotlin\n%s\n```\n\n", f.AfterExample)
	}
	if f.AutoFixable {
		sb.WriteString("_Auto-fixable._\n\n")
	}
	for _, ref := range f.References {
		fmt.Fprintf(sb, "- %s\n", ref)
	}
	if len(f.References) > 0 {
		sb.WriteString("\n")
	}
}
