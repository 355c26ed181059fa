package analyzer

import (
	"regexp"
	"strings"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/constants"
)

var (
	typeNamePattern = regexp.MustCompile(`^\s*(?:(?:public|private|internal|protected|abstract|open|final|sealed|data|enum|annotation|inner|value|inline|expect|actual|companion|fun)\s+)*(?:class|interface|object)\s+([A-Za-z_]\w*)`)
	constValPattern = regexp.MustCompile(`\bconst\s+val\s+(\w+)`)
	upperSnakeCase  = regexp.MustCompile(`^[A-Z][A-Z0-9_]*$`)
	camelBoundary   = regexp.MustCompile(`([a-z0-9])([A-Z])`)
)

// NamingAnalyzer checks Kotlin naming conventions
type NamingAnalyzer struct {
	base
}

// NewNamingAnalyzer creates the naming analyzer
func NewNamingAnalyzer() *NamingAnalyzer {
	return &NamingAnalyzer{base{
		id:       constants.AnalyzerNaming,
		category: domain.CategoryNaming,
		applies:  isKotlin,
	}}
}

// Analyze reports type names that are not PascalCase and constants that are
// not UPPER_SNAKE_CASE.
func (a *NamingAnalyzer) Analyze(file domain.FileDescriptor, content string) ([]domain.Finding, error) {
	var findings []domain.Finding

	for _, line := range splitLines(content) {
		if m := typeNamePattern.FindStringSubmatch(line.Code); m != nil && !pascalCase.MatchString(m[1]) {
			f := a.finding(file, line.Number, domain.PriorityLow,
				"Type name not PascalCase",
				"Type "+m[1]+" does not follow the PascalCase convention for classes, interfaces and objects.")
			f.CodeSnippet = snippet(line)
			f.Recommendation = "Rename the type to PascalCase."
			f.Effort = domain.EffortTrivial
			f.AutoFixable = true
			findings = append(findings, f)
		}

		if m := constValPattern.FindStringSubmatch(line.Code); m != nil && !upperSnakeCase.MatchString(m[1]) {
			suggested := toUpperSnake(m[1])
			f := a.finding(file, line.Number, domain.PriorityLow,
				"Constant not UPPER_SNAKE_CASE",
				"Constant "+m[1]+" should be named in UPPER_SNAKE_CASE.")
			f.CodeSnippet = snippet(line)
			f.Recommendation = "Rename the constant to " + suggested + "."
			f.BeforeExample = "const val " + m[1] + " = ..."
			f.AfterExample = "const val " + suggested + " = ..."
			f.Effort = domain.EffortTrivial
			f.AutoFixable = true
			findings = append(findings, f)
		}
	}

	return findings, nil
}

func toUpperSnake(name string) string {
	return strings.ToUpper(camelBoundary.ReplaceAllString(name, "${1}_${2}"))
}
