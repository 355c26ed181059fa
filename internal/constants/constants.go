package constants

// Tool name and related constants
const (
	// ToolName is the name of this tool
	ToolName = "ktscan"

	// ConfigFileName is the default config file name written by init
	ConfigFileName = ".ktscan.yaml"

	// EnvVarPrefix is the prefix for environment variables
	EnvVarPrefix = "KTSCAN"
)

// ConfigFileNames are the discovered config file names, in order of preference
var ConfigFileNames = []string{
	".ktscan.yaml",
	".ktscan.yml",
	"ktscan.yaml",
	".ktscan.toml",
	"ktscan.json",
}

// Report file names written by each run mode
const (
	ReportNameFull        = "quality-report"
	ReportNameIncremental = "quality-report-incremental"
	ReportNameFiltered    = "quality-report-filtered"
)

// Analyzer ids of the built-in rule sets
const (
	AnalyzerArchitecture        = "architecture"
	AnalyzerCompose             = "compose"
	AnalyzerStateManagement     = "state-management"
	AnalyzerErrorHandling       = "error-handling"
	AnalyzerDependencyInjection = "dependency-injection"
	AnalyzerDatabase            = "database"
	AnalyzerPerformance         = "performance"
	AnalyzerNaming              = "naming"
	AnalyzerComplexity          = "complexity"
	AnalyzerDocumentation       = "documentation"
	AnalyzerSecurity            = "security"
	AnalyzerTestQuality         = "test-quality"

	// LinterID is the analyzer id stamped on external linter findings
	LinterID = "detekt"
)

// Check command exit codes
const (
	ExitCodeSuccess       = 0
	ExitCodeViolations    = 1
	ExitCodeAnalysisError = 2
)
