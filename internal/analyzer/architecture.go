package analyzer

import (
	"regexp"
	"strings"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/constants"
)

var (
	importPattern      = regexp.MustCompile(`^\s*import\s+([\w.]+)`)
	dataLayerSegment   = regexp.MustCompile(`\.(data|repository|datasource|dao)\.`)
	androidFrameworkRe = regexp.MustCompile(`^androidx?\.`)
)

// ArchitectureAnalyzer checks layer boundaries through import statements
type ArchitectureAnalyzer struct {
	base
}

// NewArchitectureAnalyzer creates the layer-boundary analyzer
func NewArchitectureAnalyzer() *ArchitectureAnalyzer {
	return &ArchitectureAnalyzer{base{
		id:       constants.AnalyzerArchitecture,
		category: domain.CategoryArchitecture,
		applies:  inLayers(domain.LayerDomain, domain.LayerUI),
	}}
}

// Analyze reports framework imports in the domain layer and direct data-layer
// imports from domain or ui code.
func (a *ArchitectureAnalyzer) Analyze(file domain.FileDescriptor, content string) ([]domain.Finding, error) {
	var findings []domain.Finding

	for _, line := range splitLines(content) {
		m := importPattern.FindStringSubmatch(line.Code)
		if m == nil {
			continue
		}
		imported := m[1]

		switch {
		case file.Layer == domain.LayerDomain && androidFrameworkRe.MatchString(imported):
			f := a.finding(file, line.Number, domain.PriorityHigh,
				"Android dependency in domain layer",
				"Domain code imports "+imported+". The domain layer must stay free of Android framework types so it can be tested on the JVM.")
			f.CodeSnippet = snippet(line)
			f.Recommendation = "Move the framework-dependent code to the data or ui layer and expose it to the domain through an interface."
			f.BeforeExample = "import android.content.Context\n\nclass GetMeals(private val context: Context)"
			f.AfterExample = "interface MealSource { fun meals(): List<Meal> }\n\nclass GetMeals(private val source: MealSource)"
			f.Effort = domain.EffortMedium
			findings = append(findings, f)

		case dataLayerImport(file.Layer, imported):
			layer := strings.ToLower(string(file.Layer))
			f := a.finding(file, line.Number, domain.PriorityMedium,
				"Data layer dependency in "+layer+" layer",
				"The "+layer+" layer imports "+imported+" directly instead of depending on a domain abstraction.")
			f.CodeSnippet = snippet(line)
			f.Recommendation = "Depend on a repository interface declared in the domain layer and bind the implementation through DI."
			findings = append(findings, f)
		}
	}

	return findings, nil
}

// dataLayerImport reports whether imported reaches into the data layer.
// Packages under the domain or the importing file's own layer are
// abstractions, even when a segment is named repository or dao.
func dataLayerImport(layer domain.Layer, imported string) bool {
	path := "." + imported + "."
	if !dataLayerSegment.MatchString(path) {
		return false
	}
	for _, own := range []domain.Layer{domain.LayerDomain, layer} {
		if strings.Contains(path, "."+strings.ToLower(string(own))+".") {
			return false
		}
	}
	return true
}
