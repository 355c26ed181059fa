package analyzer

import (
	"regexp"
	"strings"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/constants"
)

var (
	emptyCatchInline = regexp.MustCompile(`\bcatch\s*\([^)]*\)\s*\{\s*\}`)
	catchOpen        = regexp.MustCompile(`\bcatch\s*\([^)]*\)\s*\{\s*$`)
)

var errorHandlingRules = []lineRule{
	{
		pattern:        regexp.MustCompile(`\bcatch\s*\(\s*\w+\s*:\s*(?:kotlin\.|java\.lang\.)?(?:Exception|Throwable)\s*\)`),
		codeOnly:       true,
		priority:       domain.PriorityMedium,
		title:          "Generic exception caught",
		description:    "Catching Exception or Throwable also swallows CancellationException and programming errors.",
		recommendation: "Catch the specific exception types the call can throw, and rethrow CancellationException in coroutines.",
		before:         "catch (e: Exception) { showError() }",
		after:          "catch (e: IOException) { showError() }",
	},
	{
		pattern:        regexp.MustCompile(`[\w)\]]!!`),
		codeOnly:       true,
		priority:       domain.PriorityLow,
		title:          "Non-null assertion operator",
		description:    "The !! operator throws NullPointerException when the value is null.",
		recommendation: "Use a safe call, requireNotNull with a message, or an elvis fallback.",
		before:         "val name = user!!.name",
		after:          "val name = user?.name ?: return",
		effort:         domain.EffortTrivial,
	},
}

// ErrorHandlingAnalyzer checks exception handling practices
type ErrorHandlingAnalyzer struct {
	base
}

// NewErrorHandlingAnalyzer creates the error handling analyzer
func NewErrorHandlingAnalyzer() *ErrorHandlingAnalyzer {
	return &ErrorHandlingAnalyzer{base{
		id:       constants.AnalyzerErrorHandling,
		category: domain.CategoryErrorHandling,
		applies:  nonTestKotlin,
	}}
}

// Analyze reports empty catch blocks, generic catches and !! assertions
func (a *ErrorHandlingAnalyzer) Analyze(file domain.FileDescriptor, content string) ([]domain.Finding, error) {
	lines := splitLines(content)
	findings := a.applyRules(file, lines, errorHandlingRules)

	for i, line := range lines {
		empty := emptyCatchInline.MatchString(line.Code)
		if !empty && catchOpen.MatchString(line.Code) {
			if next := nextCodeLine(lines, i); next >= 0 && strings.TrimSpace(lines[next].Code) == "}" {
				empty = true
			}
		}
		if !empty {
			continue
		}
		f := a.finding(file, line.Number, domain.PriorityHigh,
			"Empty catch block",
			"The exception is swallowed without logging or recovery, hiding failures.")
		f.CodeSnippet = snippet(line)
		f.Recommendation = "Log the exception, surface an error state, or rethrow it."
		f.BeforeExample = "try { sync() } catch (e: IOException) { }"
		f.AfterExample = "try { sync() } catch (e: IOException) { _state.value = UiState.Error(e) }"
		findings = append(findings, f)
	}

	return findings, nil
}
