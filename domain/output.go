package domain

// OutputFormat represents the supported stdout formats
type OutputFormat string

const (
	OutputFormatText     OutputFormat = "text"
	OutputFormatJSON     OutputFormat = "json"
	OutputFormatYAML     OutputFormat = "yaml"
	OutputFormatMarkdown OutputFormat = "markdown"
)

// CheckResult represents the result of a CI quality gate
type CheckResult struct {
	Passed      bool         `json:"passed" yaml:"passed"`
	ExitCode    int          `json:"exit_code" yaml:"exit_code"`
	FailOn      Priority     `json:"fail_on" yaml:"fail_on"`
	NewFindings []Finding    `json:"new_findings" yaml:"new_findings"`
	Resolved    int          `json:"resolved" yaml:"resolved"`
	Summary     CheckSummary `json:"summary" yaml:"summary"`
	Duration    int64        `json:"duration_ms" yaml:"duration_ms"`
	GeneratedAt string       `json:"generated_at" yaml:"generated_at"`
	Version     string       `json:"version" yaml:"version"`
}

// CheckSummary provides aggregate statistics for a check run
type CheckSummary struct {
	FilesAnalyzed    int  `json:"files_analyzed" yaml:"files_analyzed"`
	TotalFindings    int  `json:"total_findings" yaml:"total_findings"`
	NewFindings      int  `json:"new_findings" yaml:"new_findings"`
	BlockingFindings int  `json:"blocking_findings" yaml:"blocking_findings"`
	BaselineFound    bool `json:"baseline_found" yaml:"baseline_found"`
}
