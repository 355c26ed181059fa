package analyzer

import (
	"regexp"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/constants"
)

var (
	mutableStreamProperty = regexp.MustCompile(`^\s*(?:(?:public|override|open|final|lateinit)\s+)*(?:val|var)\s+(\w+)\s*(?::\s*|=\s*)(Mutable(?:StateFlow|LiveData|SharedFlow))\b`)
	restrictedVisibility  = regexp.MustCompile(`^\s*(?:@\w+\s+)*(?:\w+\s+)*(private|protected|internal)\s`)
)

// maxPropertyIndent is the deepest indentation still treated as a class or
// top-level property rather than a local variable
const maxPropertyIndent = 4

// StateManagementAnalyzer checks that mutable streams are not exposed
type StateManagementAnalyzer struct {
	base
}

// NewStateManagementAnalyzer creates the state management analyzer
func NewStateManagementAnalyzer() *StateManagementAnalyzer {
	return &StateManagementAnalyzer{base{
		id:       constants.AnalyzerStateManagement,
		category: domain.CategoryStateManagement,
		applies:  nonTestKotlin,
	}}
}

// Analyze reports public MutableStateFlow, MutableLiveData and
// MutableSharedFlow properties.
func (a *StateManagementAnalyzer) Analyze(file domain.FileDescriptor, content string) ([]domain.Finding, error) {
	var findings []domain.Finding

	for _, line := range splitLines(content) {
		if indentWidth(line.Code) > maxPropertyIndent || restrictedVisibility.MatchString(line.Code) {
			continue
		}
		m := mutableStreamProperty.FindStringSubmatch(line.Code)
		if m == nil {
			continue
		}
		name, kind := m[1], m[2]
		f := a.finding(file, line.Number, domain.PriorityMedium,
			"Public mutable state",
			"Property "+name+" exposes a "+kind+", letting any caller push state into it.")
		f.CodeSnippet = snippet(line)
		f.Recommendation = "Keep the mutable holder private and expose a read-only view."
		f.BeforeExample = "val uiState = MutableStateFlow(UiState())"
		f.AfterExample = "private val _uiState = MutableStateFlow(UiState())\nval uiState: StateFlow<UiState> = _uiState.asStateFlow()"
		findings = append(findings, f)
	}

	return findings, nil
}
