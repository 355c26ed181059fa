package analyzer

import (
	"fmt"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/config"
)

// Registry is an ordered id -> Analyzer map, assembled once at startup
type Registry struct {
	order []string
	byID  map[string]domain.Analyzer
}

// NewRegistry creates a registry holding analyzers in the given order
func NewRegistry(analyzers ...domain.Analyzer) (*Registry, error) {
	r := &Registry{byID: make(map[string]domain.Analyzer, len(analyzers))}
	for _, a := range analyzers {
		if err := r.Register(a); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends an analyzer. Ids must be unique and non-empty.
func (r *Registry) Register(a domain.Analyzer) error {
	id := a.ID()
	if id == "" {
		return domain.NewConfigError("analyzer id must not be empty", nil)
	}
	if _, exists := r.byID[id]; exists {
		return domain.NewConfigError(fmt.Sprintf("analyzer %q registered twice", id), nil)
	}
	r.order = append(r.order, id)
	r.byID[id] = a
	return nil
}

// Get looks up an analyzer by id
func (r *Registry) Get(id string) (domain.Analyzer, bool) {
	a, ok := r.byID[id]
	return a, ok
}

// IDs returns analyzer ids in registration order
func (r *Registry) IDs() []string {
	return append([]string(nil), r.order...)
}

// All returns the analyzers in registration order
func (r *Registry) All() []domain.Analyzer {
	all := make([]domain.Analyzer, 0, len(r.order))
	for _, id := range r.order {
		all = append(all, r.byID[id])
	}
	return all
}

// Len returns the number of registered analyzers
func (r *Registry) Len() int {
	return len(r.order)
}

// Select resolves ids against the registry. Known analyzers come back in
// request order without duplicates; unrecognized ids are returned separately
// so the caller can warn about them.
func (r *Registry) Select(ids []string) (selected []domain.Analyzer, unknown []string) {
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if a, ok := r.byID[id]; ok {
			selected = append(selected, a)
		} else {
			unknown = append(unknown, id)
		}
	}
	return selected, unknown
}

// DefaultRegistry builds the reference analyzer set
func DefaultRegistry(cfg config.AnalyzersConfig) *Registry {
	r, err := NewRegistry(
		NewArchitectureAnalyzer(),
		NewComposeAnalyzer(),
		NewStateManagementAnalyzer(),
		NewErrorHandlingAnalyzer(),
		NewDependencyInjectionAnalyzer(),
		NewDatabaseAnalyzer(),
		NewPerformanceAnalyzer(),
		NewNamingAnalyzer(),
		NewComplexityAnalyzer(cfg.Complexity),
		NewDocumentationAnalyzer(),
		NewSecurityAnalyzer(),
		NewTestQualityAnalyzer(),
	)
	if err != nil {
		// ids above are constants; a clash is a programming error
		panic(err)
	}
	return r
}
