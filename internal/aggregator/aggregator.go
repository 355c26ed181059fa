// Package aggregator merges findings from every source into one
// deduplicated, re-prioritized and indexed result.
package aggregator

import (
	"sort"

	"github.com/ludo-technologies/ktscan/domain"
)

// suggestedPriorities is the category default a finding is raised to
var suggestedPriorities = map[domain.Category]domain.Priority{
	domain.CategorySecurity:            domain.PriorityCritical,
	domain.CategoryArchitecture:        domain.PriorityHigh,
	domain.CategoryErrorHandling:       domain.PriorityHigh,
	domain.CategoryPerformance:         domain.PriorityMedium,
	domain.CategoryCodeSmell:           domain.PriorityMedium,
	domain.CategoryStateManagement:     domain.PriorityMedium,
	domain.CategoryComposeUI:           domain.PriorityMedium,
	domain.CategoryDatabase:            domain.PriorityMedium,
	domain.CategoryDependencyInjection: domain.PriorityMedium,
	domain.CategoryNaming:              domain.PriorityLow,
	domain.CategoryDocumentation:       domain.PriorityLow,
	domain.CategoryTestCoverage:        domain.PriorityLow,
}

// SuggestedPriority returns the default priority for a category
func SuggestedPriority(category domain.Category) domain.Priority {
	if p, ok := suggestedPriorities[category]; ok {
		return p
	}
	return domain.PriorityMedium
}

// Normalize raises a finding to its category default. A finding that is
// already more severe keeps its own priority.
func Normalize(f domain.Finding) domain.Finding {
	suggested := SuggestedPriority(f.Category)
	if !f.Priority.MoreSevereThan(suggested) {
		f.Priority = suggested
	}
	return f
}

// Aggregator implements domain.Aggregator. It holds no state.
type Aggregator struct{}

// New creates an aggregator
func New() *Aggregator {
	return &Aggregator{}
}

// Aggregate normalizes priorities, collapses findings sharing a dedup key
// into the most severe one (first seen on ties), computes metrics and builds
// the indexes. The output order is deterministic.
func (a *Aggregator) Aggregate(findings []domain.Finding) *domain.AggregatedResult {
	deduped := Deduplicate(findings)
	return &domain.AggregatedResult{
		Findings:   deduped,
		Metrics:    CalculateMetrics(deduped),
		ByCategory: groupBy(deduped, func(f domain.Finding) domain.Category { return f.Category }),
		ByPriority: groupBy(deduped, func(f domain.Finding) domain.Priority { return f.Priority }),
		ByFile:     groupBy(deduped, func(f domain.Finding) string { return f.File }),
	}
}

// Deduplicate normalizes and deduplicates findings, returning them sorted by
// priority (most severe first), file, line, category and title.
func Deduplicate(findings []domain.Finding) []domain.Finding {
	kept := make([]domain.Finding, 0, len(findings))
	index := make(map[domain.FindingKey]int, len(findings))

	for _, f := range findings {
		f = Normalize(f)
		key := f.Key()
		if i, ok := index[key]; ok {
			if f.Priority.MoreSevereThan(kept[i].Priority) {
				kept[i] = f
			}
			continue
		}
		index[key] = len(kept)
		kept = append(kept, f)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return less(kept[i], kept[j])
	})
	return kept
}

func less(a, b domain.Finding) bool {
	if a.Priority != b.Priority {
		return a.Priority.MoreSevereThan(b.Priority)
	}
	if a.File != b.File {
		return a.File < b.File
	}
	if a.LineNumber != b.LineNumber {
		return a.LineNumber < b.LineNumber
	}
	if a.Category != b.Category {
		return a.Category < b.Category
	}
	return a.Title < b.Title
}

func groupBy[K comparable](findings []domain.Finding, key func(domain.Finding) K) map[K][]domain.Finding {
	groups := make(map[K][]domain.Finding)
	for _, f := range findings {
		k := key(f)
		groups[k] = append(groups[k], f)
	}
	return groups
}
