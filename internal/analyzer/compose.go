package analyzer

import (
	"regexp"
	"strings"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/constants"
)

var (
	mutableStateOfPattern = regexp.MustCompile(`\bmutableStateOf\s*\(`)
	rememberPattern       = regexp.MustCompile(`\b(remember|rememberSaveable)\b`)
	funDeclPattern        = regexp.MustCompile(`\bfun\s+(?:<[^>]*>\s*)?([A-Za-z_]\w*)\s*\(`)
	composableAnnotation  = regexp.MustCompile(`@Composable\b`)
	pascalCase            = regexp.MustCompile(`^[A-Z][A-Za-z0-9]*$`)
)

// ComposeAnalyzer checks Jetpack Compose conventions
type ComposeAnalyzer struct {
	base
}

// NewComposeAnalyzer creates the Compose UI analyzer
func NewComposeAnalyzer() *ComposeAnalyzer {
	return &ComposeAnalyzer{base{
		id:       constants.AnalyzerCompose,
		category: domain.CategoryComposeUI,
		applies:  nonTestKotlin,
	}}
}

// Analyze reports state created without remember inside composable files and
// Unit-returning composables that are not PascalCase.
func (a *ComposeAnalyzer) Analyze(file domain.FileDescriptor, content string) ([]domain.Finding, error) {
	if !strings.Contains(content, "@Composable") {
		return nil, nil
	}

	lines := splitLines(content)
	var findings []domain.Finding

	for i, line := range lines {
		if mutableStateOfPattern.MatchString(line.Code) && !rememberPattern.MatchString(line.Code) {
			f := a.finding(file, line.Number, domain.PriorityMedium,
				"mutableStateOf without remember",
				"State created with mutableStateOf is recreated on every recomposition unless it is wrapped in remember.")
			f.CodeSnippet = snippet(line)
			f.Recommendation = "Wrap the state in remember { } or hoist it into a ViewModel."
			f.BeforeExample = "var expanded by mutableStateOf(false)"
			f.AfterExample = "var expanded by remember { mutableStateOf(false) }"
			f.AutoFixable = true
			f.Effort = domain.EffortTrivial
			findings = append(findings, f)
		}

		if !composableAnnotation.MatchString(line.Code) {
			continue
		}
		declIdx := i
		if !funDeclPattern.MatchString(line.Code) {
			declIdx = nextCodeLine(lines, i)
		}
		if declIdx < 0 {
			continue
		}
		decl := lines[declIdx]
		m := funDeclPattern.FindStringSubmatch(decl.Code)
		if m == nil || pascalCase.MatchString(m[1]) || returnsValue(decl.Code, m[1]) {
			continue
		}
		f := a.finding(file, decl.Number, domain.PriorityLow,
			"Composable function not PascalCase",
			"Composable "+m[1]+" emits UI and should be named like a type.")
		f.CodeSnippet = snippet(decl)
		f.Recommendation = "Rename the composable to PascalCase, e.g. " + strings.ToUpper(m[1][:1]) + m[1][1:] + "."
		f.AutoFixable = true
		f.Effort = domain.EffortTrivial
		findings = append(findings, f)
	}

	return findings, nil
}

// returnsValue reports whether a single-line function header declares a
// non-Unit return type. Value-returning composables use camelCase.
func returnsValue(header, name string) bool {
	idx := strings.Index(header, name+"(")
	if idx < 0 {
		return false
	}
	depth := 0
	for i := idx + len(name); i < len(header); i++ {
		switch header[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				rest := strings.TrimSpace(header[i+1:])
				if !strings.HasPrefix(rest, ":") {
					return false
				}
				return !strings.HasPrefix(strings.TrimSpace(rest[1:]), "Unit")
			}
		}
	}
	return false
}
