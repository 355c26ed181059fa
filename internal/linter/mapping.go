package linter

import (
	"strings"

	"github.com/ludo-technologies/ktscan/domain"
)

// detekt severities
const (
	SeveritySecurity        = "security"
	SeverityDefect          = "defect"
	SeverityWarning         = "warning"
	SeverityMaintainability = "maintainability"
	SeverityPerformance     = "performance"
	SeverityCodeSmell       = "codesmell"
	SeverityStyle           = "style"
	SeverityMinor           = "minor"
)

var severityPriorities = map[string]domain.Priority{
	SeveritySecurity:        domain.PriorityCritical,
	SeverityDefect:          domain.PriorityHigh,
	SeverityWarning:         domain.PriorityMedium,
	SeverityMaintainability: domain.PriorityMedium,
	SeverityPerformance:     domain.PriorityMedium,
	SeverityCodeSmell:       domain.PriorityLow,
	SeverityStyle:           domain.PriorityLow,
	SeverityMinor:           domain.PriorityLow,
}

// PriorityForSeverity maps a detekt severity to a priority. Unknown
// severities are treated as style issues.
func PriorityForSeverity(severity string) domain.Priority {
	if p, ok := severityPriorities[strings.ToLower(strings.TrimSpace(severity))]; ok {
		return p
	}
	return domain.PriorityLow
}

// severityForLevel derives a detekt severity from a SARIF result level
func severityForLevel(level string) string {
	switch strings.ToLower(level) {
	case "error":
		return SeverityDefect
	case "warning":
		return SeverityWarning
	default:
		return SeverityStyle
	}
}

// categoryRule maps a rule-set keyword to a category
type categoryRule struct {
	keyword  string
	category domain.Category
}

// categoryRules are matched as substrings of the rule-set id, first match wins
var categoryRules = []categoryRule{
	{"security", domain.CategorySecurity},
	{"performance", domain.CategoryPerformance},
	{"naming", domain.CategoryNaming},
	{"exceptions", domain.CategoryErrorHandling},
	{"coroutines", domain.CategoryErrorHandling},
	{"complexity", domain.CategoryCodeSmell},
	{"comments", domain.CategoryDocumentation},
	{"documentation", domain.CategoryDocumentation},
	{"compose", domain.CategoryComposeUI},
	{"potential-bugs", domain.CategoryErrorHandling},
	{"empty-blocks", domain.CategoryCodeSmell},
	{"style", domain.CategoryCodeSmell},
}

// CategoryForRuleSet maps a detekt rule-set id to a category, falling back
// to CODE_SMELL
func CategoryForRuleSet(ruleSet string) domain.Category {
	rs := strings.ToLower(ruleSet)
	for _, r := range categoryRules {
		if strings.Contains(rs, r.keyword) {
			return r.category
		}
	}
	return domain.CategoryCodeSmell
}

// DefaultDebtMinutes is assumed when a result carries no debt estimate
const DefaultDebtMinutes = 5

// EffortForDebt buckets technical-debt minutes into an effort estimate
func EffortForDebt(minutes int) domain.Effort {
	switch {
	case minutes <= 5:
		return domain.EffortTrivial
	case minutes <= 30:
		return domain.EffortSmall
	case minutes <= 120:
		return domain.EffortMedium
	default:
		return domain.EffortLarge
	}
}

// splitRuleID splits "detekt.<ruleset>.<Rule>" into rule set and rule name.
// Ids without the tool prefix are accepted as "<ruleset>.<Rule>".
func splitRuleID(ruleID string) (ruleSet, rule string) {
	parts := strings.Split(ruleID, ".")
	switch len(parts) {
	case 0, 1:
		return "", ruleID
	case 2:
		return parts[0], parts[1]
	default:
		return parts[1], parts[len(parts)-1]
	}
}
