package domain

import "context"

// Analyzer inspects one file's content and yields findings. Implementations
// must be pure functions of (file, content) so files can be analyzed in
// parallel without locks.
type Analyzer interface {
	// ID returns the stable registry identifier
	ID() string

	// Category returns the category the analyzer reports under
	Category() Category

	// AppliesTo reports whether the analyzer should run on the file
	AppliesTo(file FileDescriptor) bool

	// Analyze returns the findings for one file
	Analyze(file FileDescriptor, content string) ([]Finding, error)
}

// ContentProvider supplies file contents to the analysis phase
type ContentProvider interface {
	ReadContent(path string) (string, error)
}

// FileDiscoverer finds analyzable files under a root
type FileDiscoverer interface {
	Scan(root string) ([]FileDescriptor, error)
	Filter(files []FileDescriptor) []FileDescriptor
	ShouldAnalyze(file FileDescriptor) bool
}

// LinterAdapter wraps an external static analyzer as a finding source
type LinterAdapter interface {
	Run(ctx context.Context, paths []string, configPath string) ([]Finding, error)
}

// Aggregator deduplicates and summarizes the merged finding set
type Aggregator interface {
	Aggregate(findings []Finding) *AggregatedResult
}

// ReportStore persists rendered reports
type ReportStore interface {
	Save(name string, content string) (string, error)
}

// BaselineStore persists the finding-id snapshot used for regression tracking
type BaselineStore interface {
	Load() (*Baseline, error)
	Save(baseline *Baseline) error
}

// HistoryStore is the append-only log of aggregated snapshots
type HistoryStore interface {
	Append(ctx context.Context, entry HistoryEntry) error
	Recent(ctx context.Context, limit int) ([]HistoryEntry, error)
}

// ReportRenderer renders a human-readable report
type ReportRenderer interface {
	Render(result *AnalysisResult, baseline *Baseline) string
}

// ProgressManager manages progress reporting for long-running tasks
type ProgressManager interface {
	// StartTask creates a new progress task with a description and total count
	StartTask(description string, total int) TaskProgress

	// IsInteractive returns true if progress bars should be shown
	IsInteractive() bool

	// Close cleans up all tasks
	Close()
}

// TaskProgress tracks progress of a single task
type TaskProgress interface {
	Increment(n int)
	Describe(description string)
	// FileDone advances by one file and shows it with the running finding count
	FileDone(path string, findings int)
	Complete()
}
