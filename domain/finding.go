package domain

import (
	"fmt"
	"strconv"

	"github.com/google/uuid"
)

// Layer is the coarse architectural bucket a file belongs to
type Layer string

const (
	LayerData    Layer = "data"
	LayerDomain  Layer = "domain"
	LayerUI      Layer = "ui"
	LayerDI      Layer = "di"
	LayerTest    Layer = "test"
	LayerUnknown Layer = ""
)

// FileDescriptor describes a discovered source file. It is created during
// discovery and never mutated afterwards.
type FileDescriptor struct {
	AbsolutePath            string `json:"absolute_path" yaml:"absolute_path"`
	RelativePath            string `json:"relative_path" yaml:"relative_path"`
	SizeBytes               int64  `json:"size_bytes" yaml:"size_bytes"`
	LastModifiedEpochMillis int64  `json:"last_modified" yaml:"last_modified"`
	Layer                   Layer  `json:"layer,omitempty" yaml:"layer,omitempty"`
}

// Category is the closed set of finding categories
type Category string

const (
	CategoryArchitecture        Category = "ARCHITECTURE"
	CategoryComposeUI           Category = "COMPOSE_UI"
	CategoryStateManagement     Category = "STATE_MANAGEMENT"
	CategoryErrorHandling       Category = "ERROR_HANDLING"
	CategoryDependencyInjection Category = "DEPENDENCY_INJECTION"
	CategoryDatabase            Category = "DATABASE"
	CategoryPerformance         Category = "PERFORMANCE"
	CategoryNaming              Category = "NAMING"
	CategoryTestCoverage        Category = "TEST_COVERAGE"
	CategoryDocumentation       Category = "DOCUMENTATION"
	CategorySecurity            Category = "SECURITY"
	CategoryCodeSmell           Category = "CODE_SMELL"
)

// AllCategories returns every category in declaration order
func AllCategories() []Category {
	return []Category{
		CategoryArchitecture,
		CategoryComposeUI,
		CategoryStateManagement,
		CategoryErrorHandling,
		CategoryDependencyInjection,
		CategoryDatabase,
		CategoryPerformance,
		CategoryNaming,
		CategoryTestCoverage,
		CategoryDocumentation,
		CategorySecurity,
		CategoryCodeSmell,
	}
}

// Priority ranks how urgent a finding is
type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
)

// AllPriorities returns every priority, most severe first
func AllPriorities() []Priority {
	return []Priority{PriorityCritical, PriorityHigh, PriorityMedium, PriorityLow}
}

// Severity returns an explicit rank: CRITICAL=4, HIGH=3, MEDIUM=2, LOW=1.
// Unknown priorities rank 0.
func (p Priority) Severity() int {
	switch p {
	case PriorityCritical:
		return 4
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	default:
		return 0
	}
}

// MoreSevereThan reports whether p is strictly more severe than other
func (p Priority) MoreSevereThan(other Priority) bool {
	return p.Severity() > other.Severity()
}

// ParsePriority parses a case-sensitive priority name
func ParsePriority(s string) (Priority, error) {
	p := Priority(s)
	if p.Severity() == 0 {
		return "", fmt.Errorf("unknown priority %q (must be one of CRITICAL, HIGH, MEDIUM, LOW)", s)
	}
	return p, nil
}

// Effort is a coarse estimate of the work needed to fix a finding
type Effort string

const (
	EffortTrivial Effort = "TRIVIAL"
	EffortSmall   Effort = "SMALL"
	EffortMedium  Effort = "MEDIUM"
	EffortLarge   Effort = "LARGE"
)

// Finding is one reported issue at a specific file and line
type Finding struct {
	ID             string   `json:"id" yaml:"id"`
	AnalyzerID     string   `json:"analyzer_id" yaml:"analyzer_id"`
	Category       Category `json:"category" yaml:"category"`
	Priority       Priority `json:"priority" yaml:"priority"`
	Title          string   `json:"title" yaml:"title"`
	Description    string   `json:"description" yaml:"description"`
	File           string   `json:"file" yaml:"file"`
	LineNumber     int      `json:"line" yaml:"line"`
	ColumnNumber   *int     `json:"column,omitempty" yaml:"column,omitempty"`
	CodeSnippet    string   `json:"code_snippet,omitempty" yaml:"code_snippet,omitempty"`
	Recommendation string   `json:"recommendation,omitempty" yaml:"recommendation,omitempty"`
	BeforeExample  string   `json:"before_example,omitempty" yaml:"before_example,omitempty"`
	AfterExample   string   `json:"after_example,omitempty" yaml:"after_example,omitempty"`
	AutoFixable    bool     `json:"auto_fixable" yaml:"auto_fixable"`
	Effort         Effort   `json:"effort" yaml:"effort"`
	References     []string `json:"references,omitempty" yaml:"references,omitempty"`
}

// FindingKey identifies duplicate findings reported by different sources
type FindingKey struct {
	File       string
	LineNumber int
	Category   Category
	Title      string
}

// Key returns the dedup key of the finding
func (f Finding) Key() FindingKey {
	return FindingKey{
		File:       f.File,
		LineNumber: f.LineNumber,
		Category:   f.Category,
		Title:      f.Title,
	}
}

// Location formats the finding position as file:line[:column]
func (f Finding) Location() string {
	loc := f.File + ":" + strconv.Itoa(f.LineNumber)
	if f.ColumnNumber != nil {
		loc += ":" + strconv.Itoa(*f.ColumnNumber)
	}
	return loc
}

var findingNamespace = uuid.MustParse("6f1c2b8e-3d4a-5b6c-8d7e-9f0a1b2c3d4e")

// NewFindingID derives a stable identifier from the source location so
// baselines can be compared across runs.
func NewFindingID(analyzerID, file string, line int, category Category, title string) string {
	name := analyzerID + "|" + file + "|" + strconv.Itoa(line) + "|" + string(category) + "|" + title
	return uuid.NewSHA1(findingNamespace, []byte(name)).String()
}

// IntPtr returns a pointer to v
func IntPtr(v int) *int {
	return &v
}
