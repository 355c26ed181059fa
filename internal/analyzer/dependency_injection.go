package analyzer

import (
	"regexp"
	"strings"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/constants"
)

var (
	injectAnnotation  = regexp.MustCompile(`@Inject\b`)
	lateinitVar       = regexp.MustCompile(`\blateinit\s+var\b`)
	entryPointMarker  = regexp.MustCompile(`@(AndroidEntryPoint|HiltAndroidApp|HiltWorker)\b|:\s*\w*(Activity|Fragment|Service|Application|BroadcastReceiver|Worker)\s*\(`)
	diContainerMarker = regexp.MustCompile(`@(Module|Component|Subcomponent|EntryPoint|InstallIn)\b|\bmodule\s*\{`)
	typeDeclaration   = regexp.MustCompile(`^\s*(?:\w+\s+)*(?:class|object|interface)\s+\w+`)
)

// DependencyInjectionAnalyzer checks DI wiring conventions
type DependencyInjectionAnalyzer struct {
	base
}

// NewDependencyInjectionAnalyzer creates the dependency injection analyzer
func NewDependencyInjectionAnalyzer() *DependencyInjectionAnalyzer {
	return &DependencyInjectionAnalyzer{base{
		id:       constants.AnalyzerDependencyInjection,
		category: domain.CategoryDependencyInjection,
		applies:  isKotlin,
	}}
}

// Analyze reports field injection outside Android entry points and DI-layer
// files that declare types without a module annotation.
func (a *DependencyInjectionAnalyzer) Analyze(file domain.FileDescriptor, content string) ([]domain.Finding, error) {
	lines := splitLines(content)
	var findings []domain.Finding

	if !entryPointMarker.MatchString(content) {
		for i, line := range lines {
			if !injectAnnotation.MatchString(line.Code) {
				continue
			}
			target := i
			if !lateinitVar.MatchString(line.Code) {
				target = nextCodeLine(lines, i)
				if target < 0 || !lateinitVar.MatchString(lines[target].Code) {
					continue
				}
			}
			f := a.finding(file, lines[target].Number, domain.PriorityMedium,
				"Field injection outside entry point",
				"Field injection hides dependencies and leaves the object half-initialized until the injector runs.")
			f.CodeSnippet = snippet(lines[target])
			f.Recommendation = "Use constructor injection; reserve field injection for Android entry points."
			f.BeforeExample = "@Inject lateinit var repository: MealRepository"
			f.AfterExample = "class PlanMeals @Inject constructor(private val repository: MealRepository)"
			findings = append(findings, f)
		}
	}

	if file.Layer == domain.LayerDI && !diContainerMarker.MatchString(content) {
		for _, line := range lines {
			if !typeDeclaration.MatchString(line.Code) {
				continue
			}
			f := a.finding(file, line.Number, domain.PriorityMedium,
				"DI file without @Module",
				"This file lives in the dependency-injection layer but declares no module or component, so its bindings are never installed.")
			f.CodeSnippet = strings.TrimSpace(line.Text)
			f.Recommendation = "Annotate the declaration with @Module and @InstallIn, or move it out of the di package."
			findings = append(findings, f)
			break
		}
	}

	return findings, nil
}
