package aggregator

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/ludo-technologies/ktscan/domain"
	"gonum.org/v1/gonum/stat"
)

var (
	complexityPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)complexity[:\s]+(\d+)`),
		regexp.MustCompile(`(?i)complexity of (\d+)`),
	}
	linesPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)(\d+) lines`),
	}
)

// CalculateMetrics summarizes a deduplicated finding set.
//
// The averages are scraped from CODE_SMELL finding text and the coverage
// percentages compare files with TEST_COVERAGE or DOCUMENTATION findings
// against all files with findings. Both are rough signals by construction.
func CalculateMetrics(findings []domain.Finding) domain.AnalysisMetrics {
	m := domain.AnalysisMetrics{
		TotalFindings:      len(findings),
		FindingsByPriority: make(map[domain.Priority]int, 4),
		FindingsByCategory: make(map[domain.Category]int, 12),
	}
	for _, p := range domain.AllPriorities() {
		m.FindingsByPriority[p] = 0
	}
	for _, c := range domain.AllCategories() {
		m.FindingsByCategory[c] = 0
	}

	files := make(map[string]struct{})
	untested := make(map[string]struct{})
	undocumented := make(map[string]struct{})
	var complexity, functionLength, classLength []float64

	for _, f := range findings {
		files[f.File] = struct{}{}
		m.FindingsByPriority[f.Priority]++
		m.FindingsByCategory[f.Category]++

		switch f.Category {
		case domain.CategoryTestCoverage:
			untested[f.File] = struct{}{}
		case domain.CategoryDocumentation:
			undocumented[f.File] = struct{}{}
		case domain.CategoryCodeSmell:
			title := strings.ToLower(f.Title)
			text := f.Title + " " + f.Description
			if strings.Contains(title, "complexity") {
				if v, ok := extract(text, complexityPatterns); ok {
					complexity = append(complexity, v)
				}
			}
			if strings.Contains(title, "function") && strings.Contains(title, "long") {
				if v, ok := extract(text, linesPatterns); ok {
					functionLength = append(functionLength, v)
				}
			}
			if strings.Contains(title, "class") && strings.Contains(title, "large") {
				if v, ok := extract(text, linesPatterns); ok {
					classLength = append(classLength, v)
				}
			}
		}
	}

	m.TotalFiles = len(files)
	m.AverageComplexity = mean(complexity)
	m.AverageFunctionLength = mean(functionLength)
	m.AverageClassLength = mean(classLength)
	m.TestCoveragePercentage = coverage(len(files), len(untested))
	m.DocumentationCoveragePercentage = coverage(len(files), len(undocumented))
	return m
}

// extract returns the first number captured by any of the patterns
func extract(text string, patterns []*regexp.Regexp) (float64, bool) {
	for _, re := range patterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if v, err := strconv.Atoi(m[1]); err == nil {
				return float64(v), true
			}
		}
	}
	return 0, false
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// coverage treats an empty population as fully covered
func coverage(population, uncovered int) float64 {
	if population == 0 {
		return 100
	}
	return float64(population-uncovered) / float64(population) * 100
}
