package parser

import (
	"context"
	"testing"
)

const sampleSource = `package com.example.meals.domain

import com.example.meals.data.MealRepository
import kotlinx.coroutines.flow.*

/**
 * Plans meals for a week.
 */
class PlanMeals(private val repository: MealRepository) {

    fun invoke(days: Int, vegetarian: Boolean): List<String> {
        val result = mutableListOf<String>()
        for (day in 0 until days) {
            if (vegetarian && day % 2 == 0) {
                result.add("salad")
            } else if (day > 5 || day == 0) {
                result.add("pasta")
            }
        }
        return result
    }

    private fun label(kind: Int): String = when (kind) {
        0 -> "breakfast"
        1 -> "lunch"
        else -> "dinner"
    }

    companion object {
        const val MAX_DAYS = 7
    }
}

interface Clock {
    fun now(): Long
}

object Defaults
`

func parseSample(t *testing.T) *File {
	t.Helper()
	file, err := ParseKotlin(context.Background(), "PlanMeals.kt", []byte(sampleSource))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	return file
}

func findDecl(file *File, name string) *Declaration {
	var found *Declaration
	file.Walk(func(d *Declaration) bool {
		if found == nil && d.Name == name {
			found = d
		}
		return found == nil
	})
	return found
}

func TestParsePackageAndImports(t *testing.T) {
	file := parseSample(t)

	if file.Package != "com.example.meals.domain" {
		t.Errorf("Expected package com.example.meals.domain, got %q", file.Package)
	}
	if len(file.Imports) != 2 {
		t.Fatalf("Expected 2 imports, got %v", file.Imports)
	}
	if file.Imports[0] != "com.example.meals.data.MealRepository" {
		t.Errorf("Unexpected first import %q", file.Imports[0])
	}
	if file.HasErrors {
		t.Error("Sample should parse without errors")
	}
}

func TestParseTopLevelDeclarations(t *testing.T) {
	file := parseSample(t)

	if len(file.Declarations) != 3 {
		t.Fatalf("Expected 3 top-level declarations, got %d", len(file.Declarations))
	}

	want := []struct {
		name string
		kind DeclKind
	}{
		{"PlanMeals", DeclClass},
		{"Clock", DeclInterface},
		{"Defaults", DeclObject},
	}
	for i, w := range want {
		d := file.Declarations[i]
		if d.Name != w.name || d.Kind != w.kind {
			t.Errorf("Declaration %d: expected %s %s, got %s %s", i, w.kind, w.name, d.Kind, d.Name)
		}
	}
}

func TestParseClassMembers(t *testing.T) {
	file := parseSample(t)

	class := file.Declarations[0]
	if !class.HasDoc {
		t.Error("PlanMeals has a KDoc block")
	}
	if class.Location.StartLine != 9 {
		t.Errorf("Expected class to start on line 9, got %d", class.Location.StartLine)
	}

	names := map[string]bool{}
	for _, c := range class.Children {
		names[c.Name] = true
		if c.Parent != class {
			t.Errorf("%s has wrong parent", c.Name)
		}
	}
	for _, n := range []string{"invoke", "label", "Companion"} {
		if !names[n] {
			t.Errorf("Expected member %s, got %v", n, names)
		}
	}
}

func TestFunctionMetrics(t *testing.T) {
	file := parseSample(t)

	invoke := findDecl(file, "invoke")
	if invoke == nil {
		t.Fatal("invoke not found")
	}
	if invoke.Parameters != 2 {
		t.Errorf("Expected 2 parameters, got %d", invoke.Parameters)
	}
	// 1 + for + if + && + else-if + ||
	if invoke.Complexity != 6 {
		t.Errorf("Expected complexity 6, got %d", invoke.Complexity)
	}
	if invoke.MaxNesting < 2 {
		t.Errorf("Expected nesting of at least 2, got %d", invoke.MaxNesting)
	}
	if invoke.Lines() != 11 {
		t.Errorf("Expected 11 lines, got %d", invoke.Lines())
	}
	if invoke.HasDoc {
		t.Error("invoke has no KDoc")
	}
	if !invoke.IsPublic() {
		t.Error("invoke should be public")
	}

	label := findDecl(file, "label")
	if label == nil {
		t.Fatal("label not found")
	}
	// 1 + two non-else when entries
	if label.Complexity != 3 {
		t.Errorf("Expected complexity 3, got %d", label.Complexity)
	}
	if label.IsPublic() || !label.HasModifier("private") {
		t.Errorf("label should be private, got visibility %q", label.Visibility)
	}
}

func TestFunctionsAndTypes(t *testing.T) {
	file := parseSample(t)

	if got := len(file.Functions()); got != 3 {
		t.Errorf("Expected 3 functions, got %d", got)
	}
	if got := len(file.Types()); got != 4 {
		t.Errorf("Expected 4 types, got %d", got)
	}
}

func TestKDocDetection(t *testing.T) {
	source := `package x

/* plain block comment */
fun plain() {}

/**
 * Documented.
 */
@Deprecated("use other")
fun documented() {}

// line comment
fun lineCommented() {}
`
	file, err := ParseKotlin(context.Background(), "Doc.kt", []byte(source))
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	tests := map[string]bool{
		"plain":         false,
		"documented":    true,
		"lineCommented": false,
	}
	for name, want := range tests {
		d := findDecl(file, name)
		if d == nil {
			t.Errorf("%s not found", name)
			continue
		}
		if d.HasDoc != want {
			t.Errorf("%s: HasDoc = %v, want %v", name, d.HasDoc, want)
		}
	}
}

func TestParseBrokenSource(t *testing.T) {
	p := NewParser()
	defer p.Close()

	file, err := p.ParseString("class Broken {\n fun x( {\n")
	if err != nil {
		t.Fatalf("tree-sitter recovers from syntax errors: %v", err)
	}
	if !file.HasErrors {
		t.Error("Expected HasErrors for malformed source")
	}
}
