package analyzer

import (
	"regexp"

	"github.com/ludo-technologies/ktscan/domain"
)

// lineRule reports a finding on every code line its pattern matches
type lineRule struct {
	pattern *regexp.Regexp
	// exclude suppresses the finding when it matches the same line
	exclude *regexp.Regexp
	// codeOnly matches against the line with string literals blanked
	codeOnly bool

	priority       domain.Priority
	title          string
	description    string
	recommendation string
	before         string
	after          string
	effort         domain.Effort
	autoFixable    bool
	references     []string
}

func (r lineRule) matches(line sourceLine) bool {
	code := line.Code
	if r.codeOnly {
		code = withoutStrings(code)
	}
	if !r.pattern.MatchString(code) {
		return false
	}
	return r.exclude == nil || !r.exclude.MatchString(code)
}

// applyRules runs each rule over every line. A line yields at most one
// finding per rule.
func (b base) applyRules(file domain.FileDescriptor, lines []sourceLine, rules []lineRule) []domain.Finding {
	var findings []domain.Finding
	for _, line := range lines {
		if line.Code == "" {
			continue
		}
		for _, r := range rules {
			if !r.matches(line) {
				continue
			}
			findings = append(findings, b.fromRule(file, line, r))
		}
	}
	return findings
}

func (b base) fromRule(file domain.FileDescriptor, line sourceLine, r lineRule) domain.Finding {
	f := b.finding(file, line.Number, r.priority, r.title, r.description)
	f.CodeSnippet = snippet(line)
	f.Recommendation = r.recommendation
	f.BeforeExample = r.before
	f.AfterExample = r.after
	f.AutoFixable = r.autoFixable
	f.References = r.references
	if r.effort != "" {
		f.Effort = r.effort
	}
	return f
}
