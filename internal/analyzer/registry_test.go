package analyzer

import (
	"testing"

	"github.com/ludo-technologies/ktscan/domain"
	"github.com/ludo-technologies/ktscan/internal/config"
	"github.com/ludo-technologies/ktscan/internal/constants"
)

func TestDefaultRegistry(t *testing.T) {
	r := DefaultRegistry(config.DefaultConfig().Analyzers)

	if r.Len() != 12 {
		t.Fatalf("Expected 12 analyzers, got %d", r.Len())
	}

	ids := r.IDs()
	if ids[0] != constants.AnalyzerArchitecture {
		t.Errorf("Expected architecture first, got %s", ids[0])
	}

	categories := map[domain.Category]bool{}
	for _, a := range r.All() {
		categories[a.Category()] = true
		got, ok := r.Get(a.ID())
		if !ok || got != a {
			t.Errorf("Get(%q) did not return the registered analyzer", a.ID())
		}
	}
	for _, c := range domain.AllCategories() {
		if !categories[c] {
			t.Errorf("No analyzer covers category %s", c)
		}
	}
}

func TestRegistrySelect(t *testing.T) {
	r := DefaultRegistry(config.AnalyzersConfig{})

	selected, unknown := r.Select([]string{"naming", "nonexistent", "security", "naming"})

	if len(selected) != 2 {
		t.Fatalf("Expected 2 analyzers, got %d", len(selected))
	}
	if selected[0].ID() != "naming" || selected[1].ID() != "security" {
		t.Errorf("Expected request order naming, security; got %s, %s", selected[0].ID(), selected[1].ID())
	}
	if len(unknown) != 1 || unknown[0] != "nonexistent" {
		t.Errorf("Expected unknown [nonexistent], got %v", unknown)
	}
}

func TestRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry(NewNamingAnalyzer(), NewNamingAnalyzer())
	if !domain.IsCode(err, domain.ErrCodeConfiguration) {
		t.Errorf("Expected configuration error for duplicate id, got %v", err)
	}
}

func TestRegistryIDsIsACopy(t *testing.T) {
	r := DefaultRegistry(config.AnalyzersConfig{})
	ids := r.IDs()
	ids[0] = "mutated"

	if _, ok := r.Get("mutated"); ok {
		t.Error("mutating IDs() result must not affect the registry")
	}
	if r.IDs()[0] != constants.AnalyzerArchitecture {
		t.Error("registry order changed")
	}
}
