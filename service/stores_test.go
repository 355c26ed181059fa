package service

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/testutil"
)

func sampleAggregate() *domain.AggregatedResult {
	findings := []domain.Finding{
		testutil.NewFinding("security", "src/data/Api.kt", 4, domain.CategorySecurity, domain.PriorityCritical, "Hardcoded secret"),
		testutil.NewFinding("naming", "src/ui/plan.kt", 1, domain.CategoryNaming, domain.PriorityLow, "Type name not PascalCase"),
	}
	return &domain.AggregatedResult{
		Findings: findings,
		Metrics: domain.AnalysisMetrics{
			TotalFiles:    2,
			TotalFindings: 2,
			FindingsByPriority: map[domain.Priority]int{
				domain.PriorityCritical: 1, domain.PriorityHigh: 0, domain.PriorityMedium: 0, domain.PriorityLow: 1,
			},
			FindingsByCategory:              map[domain.Category]int{domain.CategorySecurity: 1, domain.CategoryNaming: 1},
			TestCoveragePercentage:          100,
			DocumentationCoveragePercentage: 100,
		},
	}
}

func TestFSContentProvider(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{"A.kt": "class A"})
	p := NewFSContentProvider()

	content, err := p.ReadContent(filepath.Join(dir, "A.kt"))
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "class A", content)

	_, err = p.ReadContent(filepath.Join(dir, "missing.kt"))
	if !domain.IsCode(err, domain.ErrCodeFileNotFound) {
		t.Errorf("Expected file not found, got %v", err)
	}

	_, err = p.ReadContent(dir)
	if !domain.IsCode(err, domain.ErrCodeReadError) {
		t.Errorf("Expected read error for a directory, got %v", err)
	}
}

func TestFileReportStore(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "reports")
	store := NewFileReportStore(dir)

	path, err := store.Save("quality-report", "# first")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, filepath.Join(dir, "quality-report.md"), path)

	_, err = store.Save("quality-report", "# second")
	testutil.AssertNoError(t, err)

	data, err := os.ReadFile(path)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, "# second", string(data))

	entries, _ := os.ReadDir(dir)
	testutil.AssertEqual(t, 1, len(entries))

	_, err = store.Save("../escape", "x")
	if !domain.IsCode(err, domain.ErrCodeInvalidInput) {
		t.Errorf("Expected invalid input for a path-like name, got %v", err)
	}
}

func TestTOMLBaselineStore_MissingFile(t *testing.T) {
	store := NewTOMLBaselineStore(filepath.Join(t.TempDir(), "baseline.toml"))

	b, err := store.Load()
	testutil.AssertNoError(t, err)
	if b != nil {
		t.Errorf("Expected nil baseline, got %+v", b)
	}
}

func TestTOMLBaselineStore_RoundTrip(t *testing.T) {
	store := NewTOMLBaselineStore(filepath.Join(t.TempDir(), ".ktscan", "baseline.toml"))
	at := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	want := domain.NewBaseline(sampleAggregate(), at)

	testutil.AssertNoError(t, store.Save(want))
	got, err := store.Load()
	testutil.AssertNoError(t, err)

	if !got.Timestamp.Equal(at) {
		t.Errorf("Expected timestamp %v, got %v", at, got.Timestamp)
	}
	testutil.AssertEqual(t, len(want.FindingIDs), len(got.FindingIDs))
	for _, id := range want.FindingIDs {
		testutil.AssertTrue(t, got.Contains(id), "baseline lost id "+id)
	}
	testutil.AssertEqual(t, 1, got.Metrics.FindingsByPriority[domain.PriorityCritical])
	testutil.AssertEqual(t, 2, got.Metrics.TotalFindings)
}

func TestTOMLBaselineStore_Corrupt(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{"baseline.toml": "finding_ids = [unterminated"})

	_, err := NewTOMLBaselineStore(filepath.Join(dir, "baseline.toml")).Load()
	if !domain.IsCode(err, domain.ErrCodeReadError) {
		t.Errorf("Expected read error, got %v", err)
	}
}

func TestTOMLBaselineStore_SortsHandEditedIDs(t *testing.T) {
	dir := t.TempDir()
	testutil.WriteTree(t, dir, map[string]string{"baseline.toml": "finding_ids = [\"c\", \"a\", \"b\"]\n"})

	b, err := NewTOMLBaselineStore(filepath.Join(dir, "baseline.toml")).Load()
	testutil.AssertNoError(t, err)
	for _, id := range []string{"a", "b", "c"} {
		testutil.AssertTrue(t, b.Contains(id), "missing "+id)
	}
}

func TestSQLiteHistoryStore(t *testing.T) {
	ctx := context.Background()
	store, err := OpenSQLiteHistoryStore(ctx, filepath.Join(t.TempDir(), "nested", "history.db"))
	testutil.AssertNoError(t, err)
	defer store.Close()

	entries, err := store.Recent(ctx, 10)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 0, len(entries))

	snapshot := sampleAggregate()
	base := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	for i := 0; i < 3; i++ {
		err := store.Append(ctx, domain.HistoryEntry{
			Timestamp:     base.Add(time.Duration(i) * time.Hour),
			Mode:          domain.RunModeFull,
			FilesAnalyzed: 10 + i,
			DurationMs:    int64(100 * i),
			Metrics:       snapshot.Metrics,
			Snapshot:      *snapshot,
		})
		testutil.AssertNoError(t, err)
	}

	n, err := store.Count(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 3, n)

	recent, err := store.Recent(ctx, 2)
	testutil.AssertNoError(t, err)
	if len(recent) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(recent))
	}
	testutil.AssertEqual(t, 12, recent[0].FilesAnalyzed)
	testutil.AssertEqual(t, 11, recent[1].FilesAnalyzed)
	testutil.AssertTrue(t, recent[0].ID > recent[1].ID, "entries must be newest first")
	testutil.AssertTrue(t, recent[0].Timestamp.Equal(base.Add(2*time.Hour)), "timestamp round trip")
	testutil.AssertEqual(t, 1, recent[0].Metrics.FindingsByPriority[domain.PriorityCritical])
	testutil.AssertEqual(t, 2, len(recent[0].Snapshot.Findings))
	testutil.AssertEqual(t, "Hardcoded secret", recent[0].Snapshot.Findings[0].Title)

	all, err := store.Recent(ctx, 0)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 3, len(all))
}

func TestSQLiteHistoryStore_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	store, err := OpenSQLiteHistoryStore(ctx, path)
	testutil.AssertNoError(t, err)
	testutil.AssertNoError(t, store.Append(ctx, domain.HistoryEntry{Timestamp: time.Now(), Mode: domain.RunModeFull}))
	testutil.AssertNoError(t, store.Close())

	store, err = OpenSQLiteHistoryStore(ctx, path)
	testutil.AssertNoError(t, err)
	defer store.Close()

	n, err := store.Count(ctx)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, 1, n)
}

func TestMarkdownReporter_Render(t *testing.T) {
	agg := sampleAggregate()
	result := &domain.AnalysisResult{
		Mode:          domain.RunModeFull,
		Findings:      agg.Findings,
		Metrics:       agg.Metrics,
		FilesAnalyzed: 5,
		ExecutionTime: 1500 * time.Millisecond,
		Errors:        []string{"failed to write history"},
	}

	out := NewMarkdownReporter().Render(result, nil)

	for _, want := range []string{
		"# Code Quality Report",
		"| Files analyzed | 5 |",
		"| Execution time | 1500ms |",
		"| CRITICAL | 1 |",
		"| SECURITY | 1 |",
		"## CRITICAL (1)",
		"### Hardcoded secret",
		"`src/data/Api.kt:4`",
		"## Errors",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Report missing %q", want)
		}
	}
	if strings.Contains(out, "New findings") {
		t.Error("baseline sections must be omitted without a baseline")
	}
	testutil.AssertEqual(t, out, NewMarkdownReporter().Render(result, nil))
}

func TestMarkdownReporter_BaselineSections(t *testing.T) {
	agg := sampleAggregate()
	baseline := &domain.Baseline{
		Timestamp:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		FindingIDs: []string{agg.Findings[1].ID, "zzzz-gone"},
	}
	result := &domain.AnalysisResult{Mode: domain.RunModeFull, Findings: agg.Findings, Metrics: agg.Metrics}

	out := NewMarkdownReporter().Render(result, baseline)

	for _, want := range []string{
		"## New findings (1)",
		"Hardcoded secret `src/data/Api.kt:4`",
		"## Resolved findings (1)",
		"`zzzz-gone`",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("Report missing %q", want)
		}
	}
}

func TestMarkdownReporter_PartialRunOmitsResolved(t *testing.T) {
	agg := sampleAggregate()
	baseline := &domain.Baseline{
		Timestamp:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		FindingIDs: []string{agg.Findings[1].ID, "zzzz-elsewhere"},
	}

	for _, mode := range []domain.RunMode{domain.RunModeIncremental, domain.RunModeFiltered} {
		t.Run(string(mode), func(t *testing.T) {
			result := &domain.AnalysisResult{Mode: mode, Findings: agg.Findings, Metrics: agg.Metrics}

			out := NewMarkdownReporter().Render(result, baseline)

			testutil.AssertTrue(t, strings.Contains(out, "("+string(mode)+")"), "title should name the mode")
			testutil.AssertTrue(t, strings.Contains(out, "## New findings (1)"), "new findings should still be listed")
			testutil.AssertTrue(t, strings.Contains(out, "only listed for full runs"), "report should explain the missing section")
			if strings.Contains(out, "Resolved findings (") || strings.Contains(out, "zzzz-elsewhere") {
				t.Errorf("partial run listed resolved findings:\n%s", out)
			}
		})
	}
}

func TestMarkdownReporter_NoFindings(t *testing.T) {
	out := NewMarkdownReporter().Render(&domain.AnalysisResult{Mode: domain.RunModeFiltered}, nil)
	testutil.AssertTrue(t, strings.Contains(out, "No issues found."), "empty report should say so")
}
