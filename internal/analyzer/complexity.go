package analyzer

import (
	"context"
	"fmt"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/config"
	"github.com/ludo-technologies/ktscan/internal/constants"
	"github.com/ludo-technologies/ktscan/internal/parser"
)

// Structural limits that are not configurable
const (
	maxNestingDepth = 4
	maxParameters   = 6
)

// ComplexityAnalyzer reports long functions, large classes and high
// cyclomatic complexity using the Kotlin parser.
type ComplexityAnalyzer struct {
	base
	thresholds config.ComplexityConfig
}

// NewComplexityAnalyzer creates the complexity analyzer. Zero thresholds
// fall back to the defaults.
func NewComplexityAnalyzer(thresholds config.ComplexityConfig) *ComplexityAnalyzer {
	if thresholds.MaxFunctionLines <= 0 {
		thresholds.MaxFunctionLines = config.DefaultMaxFunctionLines
	}
	if thresholds.MaxClassLines <= 0 {
		thresholds.MaxClassLines = config.DefaultMaxClassLines
	}
	if thresholds.MaxComplexity <= 0 {
		thresholds.MaxComplexity = config.DefaultMaxComplexity
	}
	return &ComplexityAnalyzer{
		base: base{
			id:       constants.AnalyzerComplexity,
			category: domain.CategoryCodeSmell,
			applies:  nonTestKotlin,
		},
		thresholds: thresholds,
	}
}

// Analyze parses the file and checks every declaration against the limits
func (a *ComplexityAnalyzer) Analyze(file domain.FileDescriptor, content string) ([]domain.Finding, error) {
	outline, err := parser.ParseKotlin(context.Background(), file.RelativePath, []byte(content))
	if err != nil {
		return nil, domain.NewReadError(file.RelativePath, err)
	}

	var findings []domain.Finding
	outline.Walk(func(d *parser.Declaration) bool {
		switch {
		case d.Kind == parser.DeclFunction:
			findings = append(findings, a.checkFunction(file, d)...)
		case d.Kind == parser.DeclClass || d.Kind == parser.DeclObject:
			if lines := d.Lines(); lines > a.thresholds.MaxClassLines {
				f := a.finding(file, d.Location.StartLine, domain.PriorityMedium,
					"Large class",
					fmt.Sprintf("Class %s spans %d lines (limit %d).", d.Name, lines, a.thresholds.MaxClassLines))
				f.Recommendation = "Split the class along its responsibilities, e.g. extract use cases or mappers."
				f.Effort = domain.EffortLarge
				findings = append(findings, f)
			}
		}
		return true
	})

	return findings, nil
}

func (a *ComplexityAnalyzer) checkFunction(file domain.FileDescriptor, d *parser.Declaration) []domain.Finding {
	var findings []domain.Finding
	line := d.Location.StartLine

	if lines := d.Lines(); lines > a.thresholds.MaxFunctionLines {
		f := a.finding(file, line, domain.PriorityMedium,
			"Long function",
			fmt.Sprintf("Function %s is %d lines long (limit %d).", d.Name, lines, a.thresholds.MaxFunctionLines))
		f.Recommendation = "Extract cohesive blocks into well-named private functions."
		f.Effort = domain.EffortMedium
		findings = append(findings, f)
	}

	if d.Complexity > a.thresholds.MaxComplexity {
		f := a.finding(file, line, domain.PriorityMedium,
			"High complexity",
			fmt.Sprintf("Function %s has a cyclomatic complexity of %d (limit %d).", d.Name, d.Complexity, a.thresholds.MaxComplexity))
		f.Recommendation = "Replace nested conditionals with early returns, when expressions or polymorphism."
		f.Effort = domain.EffortMedium
		findings = append(findings, f)
	}

	if d.MaxNesting > maxNestingDepth {
		f := a.finding(file, line, domain.PriorityLow,
			"Deeply nested code",
			fmt.Sprintf("Function %s nests control flow %d levels deep (limit %d).", d.Name, d.MaxNesting, maxNestingDepth))
		f.Recommendation = "Flatten the control flow with guard clauses."
		findings = append(findings, f)
	}

	if d.Parameters > maxParameters {
		f := a.finding(file, line, domain.PriorityLow,
			"Too many parameters",
			fmt.Sprintf("Function %s takes %d parameters (limit %d).", d.Name, d.Parameters, maxParameters))
		f.Recommendation = "Group related parameters into a data class."
		findings = append(findings, f)
	}

	return findings
}
