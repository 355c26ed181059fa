package aggregator

import (
	"math"
	"reflect"
	"testing"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/testutil"
)

func TestAggregateDeduplicatesToMostSevere(t *testing.T) {
	low := testutil.NewFinding("detekt", "src/A.kt", 10, domain.CategoryCodeSmell, domain.PriorityLow, "Dup")
	critical := testutil.NewFinding("complexity", "src/A.kt", 10, domain.CategoryCodeSmell, domain.PriorityCritical, "Dup")

	result := New().Aggregate([]domain.Finding{low, critical})

	if len(result.Findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(result.Findings))
	}
	testutil.AssertEqual(t, domain.PriorityCritical, result.Findings[0].Priority)
	testutil.AssertEqual(t, "complexity", result.Findings[0].AnalyzerID)
}

func TestAggregateTieKeepsFirstSeen(t *testing.T) {
	first := testutil.NewFinding("detekt", "src/A.kt", 4, domain.CategoryCodeSmell, domain.PriorityLow, "Same")
	second := testutil.NewFinding("complexity", "src/A.kt", 4, domain.CategoryCodeSmell, domain.PriorityMedium, "Same")

	result := New().Aggregate([]domain.Finding{first, second})

	if len(result.Findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(result.Findings))
	}
	// both normalize to MEDIUM
	testutil.AssertEqual(t, domain.PriorityMedium, result.Findings[0].Priority)
	testutil.AssertEqual(t, "detekt", result.Findings[0].AnalyzerID)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		category domain.Category
		priority domain.Priority
		want     domain.Priority
	}{
		{"security raised to critical", domain.CategorySecurity, domain.PriorityLow, domain.PriorityCritical},
		{"architecture raised to high", domain.CategoryArchitecture, domain.PriorityMedium, domain.PriorityHigh},
		{"error handling raised to high", domain.CategoryErrorHandling, domain.PriorityLow, domain.PriorityHigh},
		{"naming high kept", domain.CategoryNaming, domain.PriorityHigh, domain.PriorityHigh},
		{"naming low kept", domain.CategoryNaming, domain.PriorityLow, domain.PriorityLow},
		{"performance raised to medium", domain.CategoryPerformance, domain.PriorityLow, domain.PriorityMedium},
		{"compose critical kept", domain.CategoryComposeUI, domain.PriorityCritical, domain.PriorityCritical},
		{"documentation medium kept", domain.CategoryDocumentation, domain.PriorityMedium, domain.PriorityMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := testutil.NewFinding("x", "A.kt", 1, tt.category, tt.priority, "t")
			if got := Normalize(f).Priority; got != tt.want {
				t.Errorf("Normalize(%s, %s) = %s, want %s", tt.category, tt.priority, got, tt.want)
			}
		})
	}
}

func TestSuggestedPriorityCoversEveryCategory(t *testing.T) {
	for _, c := range domain.AllCategories() {
		if _, ok := suggestedPriorities[c]; !ok {
			t.Errorf("No suggested priority for %s", c)
		}
	}
	testutil.AssertEqual(t, domain.PriorityMedium, SuggestedPriority("UNKNOWN"))
}

func TestAggregateIsIdempotent(t *testing.T) {
	findings := []domain.Finding{
		testutil.NewFinding("naming", "src/B.kt", 3, domain.CategoryNaming, domain.PriorityLow, "Type name not PascalCase"),
		testutil.NewFinding("security", "src/A.kt", 9, domain.CategorySecurity, domain.PriorityHigh, "Hardcoded secret"),
		testutil.NewFinding("detekt", "src/A.kt", 9, domain.CategorySecurity, domain.PriorityLow, "Hardcoded secret"),
		testutil.NewFinding("performance", "src/A.kt", 2, domain.CategoryPerformance, domain.PriorityHigh, "runBlocking call"),
		testutil.NewFinding("documentation", "src/C.kt", 1, domain.CategoryDocumentation, domain.PriorityLow, "Missing KDoc"),
	}

	agg := New()
	once := agg.Aggregate(findings)
	twice := agg.Aggregate(once.Findings)

	if !reflect.DeepEqual(once.Findings, twice.Findings) {
		t.Errorf("Aggregation is not idempotent:\n%v\n%v", once.Findings, twice.Findings)
	}
	if !reflect.DeepEqual(once.Metrics, twice.Metrics) {
		t.Errorf("Metrics changed on re-aggregation: %+v vs %+v", once.Metrics, twice.Metrics)
	}
}

func TestAggregateOrdering(t *testing.T) {
	findings := []domain.Finding{
		testutil.NewFinding("naming", "src/B.kt", 3, domain.CategoryNaming, domain.PriorityLow, "N"),
		testutil.NewFinding("performance", "src/B.kt", 1, domain.CategoryPerformance, domain.PriorityMedium, "P"),
		testutil.NewFinding("security", "src/Z.kt", 1, domain.CategorySecurity, domain.PriorityLow, "S"),
		testutil.NewFinding("performance", "src/A.kt", 7, domain.CategoryPerformance, domain.PriorityMedium, "P"),
	}

	result := New().Aggregate(findings)

	want := []string{"src/Z.kt:1", "src/A.kt:7", "src/B.kt:1", "src/B.kt:3"}
	for i, f := range result.Findings {
		if f.Location() != want[i] {
			t.Errorf("Position %d: expected %s, got %s", i, want[i], f.Location())
		}
	}
}

func TestAggregateIndexes(t *testing.T) {
	findings := []domain.Finding{
		testutil.NewFinding("naming", "src/B.kt", 3, domain.CategoryNaming, domain.PriorityLow, "N"),
		testutil.NewFinding("naming", "src/B.kt", 5, domain.CategoryNaming, domain.PriorityLow, "N"),
		testutil.NewFinding("security", "src/A.kt", 1, domain.CategorySecurity, domain.PriorityLow, "S"),
	}

	result := New().Aggregate(findings)

	testutil.AssertEqual(t, 2, len(result.ByCategory[domain.CategoryNaming]))
	testutil.AssertEqual(t, 1, len(result.ByCategory[domain.CategorySecurity]))
	testutil.AssertEqual(t, 1, len(result.ByPriority[domain.PriorityCritical]))
	testutil.AssertEqual(t, 2, len(result.ByPriority[domain.PriorityLow]))
	testutil.AssertEqual(t, 2, len(result.ByFile["src/B.kt"]))
	testutil.AssertEqual(t, 0, len(result.ByFile["src/C.kt"]))
}

func TestLinterAndAnalyzerMerge(t *testing.T) {
	fromLinter := testutil.NewFinding("detekt", "src/Plan.kt", 12, domain.CategoryCodeSmell, domain.PriorityLow, "Long function")
	fromAnalyzer := testutil.NewFinding("complexity", "src/Plan.kt", 12, domain.CategoryCodeSmell, domain.PriorityMedium, "Long function")

	result := New().Aggregate([]domain.Finding{fromLinter, fromAnalyzer})

	if len(result.Findings) != 1 {
		t.Fatalf("Expected 1 finding, got %d", len(result.Findings))
	}
	testutil.AssertEqual(t, domain.PriorityMedium, result.Findings[0].Priority)
}

func TestCalculateMetricsEmpty(t *testing.T) {
	m := CalculateMetrics(nil)

	testutil.AssertEqual(t, 0, m.TotalFiles)
	testutil.AssertEqual(t, 0, m.TotalFindings)
	testutil.AssertEqual(t, 100.0, m.TestCoveragePercentage)
	testutil.AssertEqual(t, 100.0, m.DocumentationCoveragePercentage)
	testutil.AssertEqual(t, 0.0, m.AverageComplexity)

	testutil.AssertEqual(t, len(domain.AllPriorities()), len(m.FindingsByPriority))
	testutil.AssertEqual(t, len(domain.AllCategories()), len(m.FindingsByCategory))
	for p, n := range m.FindingsByPriority {
		if n != 0 {
			t.Errorf("Expected zero count for %s, got %d", p, n)
		}
	}
}

func TestCalculateMetricsCountsAndCoverage(t *testing.T) {
	findings := []domain.Finding{
		testutil.NewFinding("a", "src/A.kt", 1, domain.CategoryNaming, domain.PriorityLow, "N"),
		testutil.NewFinding("a", "src/B.kt", 1, domain.CategoryDocumentation, domain.PriorityLow, "Missing KDoc"),
		testutil.NewFinding("a", "src/C.kt", 1, domain.CategoryDocumentation, domain.PriorityLow, "Missing KDoc"),
		testutil.NewFinding("a", "src/C.kt", 4, domain.CategoryTestCoverage, domain.PriorityLow, "Test without assertions"),
	}

	m := CalculateMetrics(findings)

	testutil.AssertEqual(t, 3, m.TotalFiles)
	testutil.AssertEqual(t, 4, m.TotalFindings)
	testutil.AssertEqual(t, 4, m.FindingsByPriority[domain.PriorityLow])
	testutil.AssertEqual(t, 0, m.FindingsByPriority[domain.PriorityHigh])
	testutil.AssertEqual(t, 2, m.FindingsByCategory[domain.CategoryDocumentation])

	if !approx(m.DocumentationCoveragePercentage, 100.0/3) {
		t.Errorf("Expected documentation coverage 33.3, got %f", m.DocumentationCoveragePercentage)
	}
	if !approx(m.TestCoveragePercentage, 200.0/3) {
		t.Errorf("Expected test coverage 66.7, got %f", m.TestCoveragePercentage)
	}
}

func TestCalculateMetricsAverages(t *testing.T) {
	smell := func(file, title, desc string) domain.Finding {
		f := testutil.NewFinding("complexity", file, 1, domain.CategoryCodeSmell, domain.PriorityMedium, title)
		f.Description = desc
		return f
	}
	findings := []domain.Finding{
		smell("A.kt", "High complexity", "Function plan has a cyclomatic complexity of 20 (limit 15)."),
		smell("B.kt", "High complexity", "Complexity: 12"),
		smell("C.kt", "Long function", "Function plan is 80 lines long (limit 60)."),
		smell("D.kt", "Long function", "Function load is 100 lines long (limit 60)."),
		smell("E.kt", "Large class", "Class Planner spans 500 lines (limit 400)."),
		smell("F.kt", "Deeply nested code", "Nesting depth 6 over 10 lines"),
	}

	m := CalculateMetrics(findings)

	testutil.AssertEqual(t, 16.0, m.AverageComplexity)
	testutil.AssertEqual(t, 90.0, m.AverageFunctionLength)
	testutil.AssertEqual(t, 500.0, m.AverageClassLength)
}

func TestCalculateMetricsIgnoresOtherCategories(t *testing.T) {
	f := testutil.NewFinding("detekt", "A.kt", 1, domain.CategoryPerformance, domain.PriorityMedium, "Long function")
	f.Description = "Function is 300 lines long"

	m := CalculateMetrics([]domain.Finding{f})
	testutil.AssertEqual(t, 0.0, m.AverageFunctionLength)
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}
