package analyzer

import (
	"context"
	"regexp"
	"strings"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/constants"
	"github.com/ludo-technologies/ktscan/internal/parser"
)

var (
	testAnnotation   = regexp.MustCompile(`@(?:org\.junit\.)?Test\b`)
	assertionPattern = regexp.MustCompile(`(?i)\b(assert|verify|expect|should|check|confirm|fail)\w*`)
)

// TestQualityAnalyzer checks that test functions assert something. Whether
// production classes have tests at all would need cross-file analysis and is
// left to other tools.
type TestQualityAnalyzer struct {
	base
}

// NewTestQualityAnalyzer creates the test quality analyzer
func NewTestQualityAnalyzer() *TestQualityAnalyzer {
	return &TestQualityAnalyzer{base{
		id:       constants.AnalyzerTestQuality,
		category: domain.CategoryTestCoverage,
		applies: func(file domain.FileDescriptor) bool {
			return isKotlin(file) && file.Layer == domain.LayerTest
		},
	}}
}

// Analyze reports @Test functions whose body contains no assertion
func (a *TestQualityAnalyzer) Analyze(file domain.FileDescriptor, content string) ([]domain.Finding, error) {
	outline, err := parser.ParseKotlin(context.Background(), file.RelativePath, []byte(content))
	if err != nil {
		return nil, domain.NewReadError(file.RelativePath, err)
	}

	lines := splitLines(content)
	var findings []domain.Finding

	for _, fn := range outline.Functions() {
		start, end := fn.Location.StartLine, fn.Location.EndLine
		if start < 1 || end > len(lines) {
			continue
		}
		// the annotation may sit on the line above when the grammar splits it off
		headerFrom := start - 1
		if headerFrom > 0 {
			headerFrom--
		}
		headerTo := min(start+1, end)
		if !anyLineMatches(lines[headerFrom:headerTo], testAnnotation) {
			continue
		}
		if assertionPattern.MatchString(functionBody(lines[start-1:end], fn.Name)) {
			continue
		}

		f := a.finding(file, start, domain.PriorityMedium,
			"Test without assertions",
			"Test "+fn.Name+" runs code but never asserts on the outcome, so it can only fail by throwing.")
		f.Recommendation = "Assert on the observable result or verify the expected interaction."
		f.BeforeExample = "@Test fun loadsMeals() { viewModel.load() }"
		f.AfterExample = "@Test fun loadsMeals() {\n    viewModel.load()\n    assertEquals(3, viewModel.state.value.meals.size)\n}"
		findings = append(findings, f)
	}

	return findings, nil
}

// functionBody returns the code after the parameter list, so test names such
// as shouldLoadMeals do not count as assertions.
func functionBody(lines []sourceLine, name string) string {
	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(l.Code)
		sb.WriteByte('\n')
	}
	text := sb.String()

	idx := strings.Index(text, "fun ")
	if idx < 0 {
		return text
	}
	text = text[idx:]
	if name != "" {
		if n := strings.Index(text, name); n >= 0 {
			text = text[n+len(name):]
		}
	}
	if p := strings.Index(text, ")"); p >= 0 {
		text = text[p+1:]
	}
	return text
}

func anyLineMatches(lines []sourceLine, re *regexp.Regexp) bool {
	for _, l := range lines {
		if re.MatchString(l.Code) {
			return true
		}
	}
	return false
}
