package domain

import (
	"sort"
	"time"
)

// AnalysisMetrics holds summary counters over a deduplicated finding set.
//
// The averages and coverage percentages are heuristic signals scraped from
// finding text and finding counts. They are not measurements.
type AnalysisMetrics struct {
	TotalFiles                      int              `json:"total_files" yaml:"total_files" toml:"total_files"`
	TotalFindings                   int              `json:"total_findings" yaml:"total_findings" toml:"total_findings"`
	FindingsByPriority              map[Priority]int `json:"findings_by_priority" yaml:"findings_by_priority" toml:"findings_by_priority"`
	FindingsByCategory              map[Category]int `json:"findings_by_category" yaml:"findings_by_category" toml:"findings_by_category"`
	AverageComplexity               float64          `json:"average_complexity" yaml:"average_complexity" toml:"average_complexity"`
	AverageFunctionLength           float64          `json:"average_function_length" yaml:"average_function_length" toml:"average_function_length"`
	AverageClassLength              float64          `json:"average_class_length" yaml:"average_class_length" toml:"average_class_length"`
	TestCoveragePercentage          float64          `json:"test_coverage_percentage" yaml:"test_coverage_percentage" toml:"test_coverage_percentage"`
	DocumentationCoveragePercentage float64          `json:"documentation_coverage_percentage" yaml:"documentation_coverage_percentage" toml:"documentation_coverage_percentage"`
}

// AggregatedResult is the immutable output of aggregation. The indexes are
// derived from Findings and kept for constant-time lookup.
type AggregatedResult struct {
	Findings   []Finding              `json:"findings" yaml:"findings"`
	Metrics    AnalysisMetrics        `json:"metrics" yaml:"metrics"`
	ByCategory map[Category][]Finding `json:"-" yaml:"-"`
	ByPriority map[Priority][]Finding `json:"-" yaml:"-"`
	ByFile     map[string][]Finding   `json:"-" yaml:"-"`
}

// RunMode identifies which orchestrator entry point produced a result
type RunMode string

const (
	RunModeFull        RunMode = "full"
	RunModeIncremental RunMode = "incremental"
	RunModeFiltered    RunMode = "filtered"
)

// AnalysisResult is what an analysis run hands back to its caller
type AnalysisResult struct {
	Mode          RunMode           `json:"mode" yaml:"mode"`
	Findings      []Finding         `json:"findings" yaml:"findings"`
	Metrics       AnalysisMetrics   `json:"metrics" yaml:"metrics"`
	ExecutionTime time.Duration     `json:"execution_time_ns" yaml:"execution_time_ns"`
	FilesAnalyzed int               `json:"files_analyzed" yaml:"files_analyzed"`
	ReportPath    string            `json:"report_path,omitempty" yaml:"report_path,omitempty"`
	Errors        []string          `json:"errors,omitempty" yaml:"errors,omitempty"`
	Aggregated    *AggregatedResult `json:"-" yaml:"-"`
}

// Baseline is a snapshot of finding identities used to classify later
// findings as new or resolved. Content is never diffed.
type Baseline struct {
	Timestamp  time.Time       `json:"timestamp" toml:"timestamp"`
	Metrics    AnalysisMetrics `json:"metrics" toml:"metrics"`
	FindingIDs []string        `json:"finding_ids" toml:"finding_ids"`
}

// NewBaseline snapshots an aggregated result
func NewBaseline(result *AggregatedResult, at time.Time) *Baseline {
	ids := make([]string, 0, len(result.Findings))
	seen := make(map[string]struct{}, len(result.Findings))
	for _, f := range result.Findings {
		if _, ok := seen[f.ID]; ok {
			continue
		}
		seen[f.ID] = struct{}{}
		ids = append(ids, f.ID)
	}
	sort.Strings(ids)
	return &Baseline{
		Timestamp:  at,
		Metrics:    result.Metrics,
		FindingIDs: ids,
	}
}

// Contains reports whether id was present when the baseline was taken
func (b *Baseline) Contains(id string) bool {
	i := sort.SearchStrings(b.FindingIDs, id)
	return i < len(b.FindingIDs) && b.FindingIDs[i] == id
}

// BaselineDiff lists findings that appeared since the baseline and the
// baseline ids that are no longer reported.
type BaselineDiff struct {
	New      []Finding
	Resolved []string
}

// Diff compares current findings against the baseline
func (b *Baseline) Diff(findings []Finding) BaselineDiff {
	var diff BaselineDiff
	current := make(map[string]struct{}, len(findings))
	for _, f := range findings {
		current[f.ID] = struct{}{}
		if !b.Contains(f.ID) {
			diff.New = append(diff.New, f)
		}
	}
	for _, id := range b.FindingIDs {
		if _, ok := current[id]; !ok {
			diff.Resolved = append(diff.Resolved, id)
		}
	}
	return diff
}

// HistoryEntry is one row of the append-only analysis history
type HistoryEntry struct {
	ID            int64            `json:"id"`
	Timestamp     time.Time        `json:"timestamp"`
	Mode          RunMode          `json:"mode"`
	FilesAnalyzed int              `json:"files_analyzed"`
	DurationMs    int64            `json:"duration_ms"`
	Metrics       AnalysisMetrics  `json:"metrics"`
	Snapshot      AggregatedResult `json:"-"`
}
