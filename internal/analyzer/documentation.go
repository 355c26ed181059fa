package analyzer

import (
	"context"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/constants"
	"github.com/ludo-technologies/ktscan/internal/parser"
)

// DocumentationAnalyzer reports public API without KDoc
type DocumentationAnalyzer struct {
	base
}

// NewDocumentationAnalyzer creates the documentation analyzer
func NewDocumentationAnalyzer() *DocumentationAnalyzer {
	layers := inLayers(domain.LayerDomain, domain.LayerData, domain.LayerUI)
	return &DocumentationAnalyzer{base{
		id:       constants.AnalyzerDocumentation,
		category: domain.CategoryDocumentation,
		applies: func(file domain.FileDescriptor) bool {
			return nonTestKotlin(file) && layers(file)
		},
	}}
}

// Analyze reports public types and functions, reachable through public
// parents, that carry no KDoc. Overrides inherit their documentation.
func (a *DocumentationAnalyzer) Analyze(file domain.FileDescriptor, content string) ([]domain.Finding, error) {
	outline, err := parser.ParseKotlin(context.Background(), file.RelativePath, []byte(content))
	if err != nil {
		return nil, domain.NewReadError(file.RelativePath, err)
	}

	var findings []domain.Finding
	outline.Walk(func(d *parser.Declaration) bool {
		if !d.IsPublic() {
			return false
		}
		// local functions and companion objects are not API surface
		if d.Parent != nil && d.Parent.Kind == parser.DeclFunction {
			return false
		}
		if d.HasDoc || d.HasModifier("override") || d.Name == "Companion" || d.Name == "" {
			return true
		}

		kind := "Function"
		if d.IsType() {
			kind = "Type"
		}
		f := a.finding(file, d.Location.StartLine, domain.PriorityLow,
			"Missing KDoc",
			kind+" "+d.Name+" is public but has no KDoc comment.")
		f.Recommendation = "Add a /** ... */ comment describing the contract."
		f.Effort = domain.EffortTrivial
		findings = append(findings, f)
		return true
	})

	return findings, nil
}
