package analyzer

import (
	"regexp"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/constants"
)

var securityRules = []lineRule{
	{
		pattern:        regexp.MustCompile(`(?i)\w*(api_?key|secret|passw(?:or)?d|access_?token|auth_?token|private_?key)\w*\s*(?::\s*String\s*)?=\s*"[^"\s]{6,}"`),
		exclude:        regexp.MustCompile(`=\s*"[a-z_.]+"`),
		priority:       domain.PriorityCritical,
		title:          "Hardcoded secret",
		description:    "A credential is embedded in source code and ships inside the APK, where it can be extracted.",
		recommendation: "Load the value from the build environment (BuildConfig via local.properties) or a secrets service.",
		before:         `const val API_KEY = "sk_live_51Hx..."`,
		after:          "val apiKey = BuildConfig.API_KEY",
		effort:         domain.EffortMedium,
	},
	{
		pattern:        regexp.MustCompile(`"http://`),
		exclude:        regexp.MustCompile(`"http://(localhost|127\.0\.0\.1|10\.0\.2\.2|0\.0\.0\.0)\b`),
		priority:       domain.PriorityHigh,
		title:          "Cleartext HTTP URL",
		description:    "Traffic to this URL is unencrypted and blocked by default on Android 9 and later.",
		recommendation: "Use https:// for every remote endpoint.",
		before:         `val baseUrl = "http://api.example.com"`,
		after:          `val baseUrl = "https://api.example.com"`,
		effort:         domain.EffortTrivial,
		autoFixable:    true,
	},
	{
		pattern:        regexp.MustCompile(`(?i)\b(Log\.[vdiwe]|Timber\.[vdiwe]|println|print|logger\.\w+)\s*\(.*\b(password|passwd|token|secret|api_?key|credential)`),
		priority:       domain.PriorityHigh,
		title:          "Sensitive data logged",
		description:    "Credentials written to the log are readable by anyone with access to logcat or crash reports.",
		recommendation: "Remove the value from the log statement or mask it.",
		before:         `Log.d(TAG, "token=$token")`,
		after:          `Log.d(TAG, "token received")`,
		effort:         domain.EffortTrivial,
	},
}

// SecurityAnalyzer checks for secrets, cleartext traffic and credential logging
type SecurityAnalyzer struct {
	base
}

// NewSecurityAnalyzer creates the security analyzer
func NewSecurityAnalyzer() *SecurityAnalyzer {
	return &SecurityAnalyzer{base{
		id:       constants.AnalyzerSecurity,
		category: domain.CategorySecurity,
	}}
}

// Analyze runs the security rules over every line
func (a *SecurityAnalyzer) Analyze(file domain.FileDescriptor, content string) ([]domain.Finding, error) {
	return a.applyRules(file, splitLines(content), securityRules), nil
}
