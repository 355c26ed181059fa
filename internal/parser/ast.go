package parser

import "fmt"

// DeclKind is the kind of a Kotlin declaration
type DeclKind string

const (
	DeclFunction  DeclKind = "function"
	DeclClass     DeclKind = "class"
	DeclInterface DeclKind = "interface"
	DeclObject    DeclKind = "object"
)

// Location represents the line span of a declaration (1-based, inclusive)
type Location struct {
	File      string
	StartLine int
	EndLine   int
}

// String returns a string representation of the location
func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.StartLine)
}

// Declaration is a function, class, interface or object found in a file
type Declaration struct {
	Kind       DeclKind
	Name       string
	Location   Location
	Visibility string
	Modifiers  []string
	HasDoc     bool

	// Function-only metrics
	Parameters int
	Complexity int
	MaxNesting int

	Parent   *Declaration
	Children []*Declaration
}

// Lines returns the number of source lines the declaration spans
func (d *Declaration) Lines() int {
	return d.Location.EndLine - d.Location.StartLine + 1
}

// IsPublic reports whether the declaration is visible outside its module.
// Kotlin declarations are public unless a visibility modifier says otherwise.
func (d *Declaration) IsPublic() bool {
	return d.Visibility == "" || d.Visibility == "public"
}

// HasModifier reports whether the declaration carries the modifier keyword
func (d *Declaration) HasModifier(m string) bool {
	for _, mod := range d.Modifiers {
		if mod == m {
			return true
		}
	}
	return false
}

// IsType reports whether the declaration introduces a type
func (d *Declaration) IsType() bool {
	return d.Kind == DeclClass || d.Kind == DeclInterface || d.Kind == DeclObject
}

// Walk traverses the declaration tree depth-first. If the visitor returns
// false, the children of that declaration are skipped.
func (d *Declaration) Walk(visitor func(*Declaration) bool) {
	if d == nil || !visitor(d) {
		return
	}
	for _, child := range d.Children {
		child.Walk(visitor)
	}
}

// String returns a string representation of the declaration
func (d *Declaration) String() string {
	return fmt.Sprintf("%s(%s) at %s", d.Kind, d.Name, d.Location)
}

// File is the parsed outline of one Kotlin source file
type File struct {
	Path         string
	Package      string
	Imports      []string
	Declarations []*Declaration
	HasErrors    bool
}

// Walk visits every declaration in the file depth-first
func (f *File) Walk(visitor func(*Declaration) bool) {
	for _, d := range f.Declarations {
		d.Walk(visitor)
	}
}

// Functions returns every function declaration, including members and
// local functions
func (f *File) Functions() []*Declaration {
	return f.collect(func(d *Declaration) bool { return d.Kind == DeclFunction })
}

// Types returns every class, interface and object declaration
func (f *File) Types() []*Declaration {
	return f.collect((*Declaration).IsType)
}

func (f *File) collect(keep func(*Declaration) bool) []*Declaration {
	var out []*Declaration
	f.Walk(func(d *Declaration) bool {
		if keep(d) {
			out = append(out, d)
		}
		return true
	})
	return out
}
