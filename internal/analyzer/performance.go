package analyzer

import (
	"regexp"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/constants"
)

var performanceRules = []lineRule{
	{
		pattern:        regexp.MustCompile(`\brunBlocking\b`),
		codeOnly:       true,
		priority:       domain.PriorityHigh,
		title:          "runBlocking in production code",
		description:    "runBlocking blocks the calling thread until the coroutine completes and freezes the UI when called on the main thread.",
		recommendation: "Call the suspend function from a coroutine scope such as viewModelScope or lifecycleScope.",
		before:         "val meals = runBlocking { repository.meals() }",
		after:          "viewModelScope.launch { val meals = repository.meals() }",
		effort:         domain.EffortMedium,
	},
	{
		pattern:        regexp.MustCompile(`\bGlobalScope\b`),
		codeOnly:       true,
		priority:       domain.PriorityMedium,
		title:          "GlobalScope usage",
		description:    "Coroutines launched in GlobalScope are not tied to any lifecycle and leak work after the screen is gone.",
		recommendation: "Launch in a structured scope owned by the component, or inject an application scope.",
		before:         "GlobalScope.launch { sync() }",
		after:          "viewModelScope.launch { sync() }",
	},
	{
		pattern:        regexp.MustCompile(`\bThread\.sleep\s*\(`),
		codeOnly:       true,
		priority:       domain.PriorityMedium,
		title:          "Thread.sleep call",
		description:    "Thread.sleep blocks the current thread; inside coroutines it also blocks the dispatcher.",
		recommendation: "Use delay() inside a coroutine.",
		before:         "Thread.sleep(500)",
		after:          "delay(500)",
		effort:         domain.EffortTrivial,
		autoFixable:    true,
	},
}

// PerformanceAnalyzer checks for thread-blocking calls
type PerformanceAnalyzer struct {
	base
}

// NewPerformanceAnalyzer creates the performance analyzer
func NewPerformanceAnalyzer() *PerformanceAnalyzer {
	return &PerformanceAnalyzer{base{
		id:       constants.AnalyzerPerformance,
		category: domain.CategoryPerformance,
		applies:  nonTestKotlin,
	}}
}

// Analyze reports runBlocking, GlobalScope and Thread.sleep usage
func (a *PerformanceAnalyzer) Analyze(file domain.FileDescriptor, content string) ([]domain.Finding, error) {
	return a.applyRules(file, splitLines(content), performanceRules), nil
}
