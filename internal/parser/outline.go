package parser

import (
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// branchNodes add one to the cyclomatic complexity of the enclosing function
var branchNodes = map[string]bool{
	"if_expression":          true,
	"for_statement":          true,
	"while_statement":        true,
	"do_while_statement":     true,
	"catch_block":            true,
	"conjunction_expression": true,
	"disjunction_expression": true,
	"elvis_expression":       true,
}

// nestingNodes open a new nesting level inside a function body
var nestingNodes = map[string]bool{
	"if_expression":      true,
	"when_expression":    true,
	"for_statement":      true,
	"while_statement":    true,
	"do_while_statement": true,
	"try_expression":     true,
}

// outlineBuilder turns a tree-sitter Kotlin CST into a File outline
type outlineBuilder struct {
	filename string
	source   []byte
	lines    []string
}

func newOutlineBuilder(filename string, source []byte) *outlineBuilder {
	return &outlineBuilder{
		filename: filename,
		source:   source,
		lines:    strings.Split(string(source), "\n"),
	}
}

func (b *outlineBuilder) build(root *sitter.Node) *File {
	file := &File{
		Path:      b.filename,
		HasErrors: root.HasError(),
	}

	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		switch child.Type() {
		case "package_header":
			if id := firstChildOfType(child, "identifier"); id != nil {
				file.Package = id.Content(b.source)
			}
		case "import_list":
			for j := 0; j < int(child.NamedChildCount()); j++ {
				if hdr := child.NamedChild(j); hdr.Type() == "import_header" {
					file.Imports = append(file.Imports, b.importPath(hdr))
				}
			}
		case "import_header":
			file.Imports = append(file.Imports, b.importPath(child))
		}
	}

	file.Declarations = b.visit(root, nil, nil, 0)
	return file
}

// visit walks n and returns the declarations found directly under parent.
// fn is the innermost enclosing function, depth its current nesting level.
func (b *outlineBuilder) visit(n *sitter.Node, parent, fn *Declaration, depth int) []*Declaration {
	var decls []*Declaration

	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		typ := child.Type()

		if d := b.declaration(child, parent); d != nil {
			if d.Kind == DeclFunction {
				d.Children = b.visit(child, d, d, 0)
			} else {
				d.Children = b.visit(child, d, nil, 0)
			}
			decls = append(decls, d)
			continue
		}

		childDepth := depth
		if fn != nil {
			if branchNodes[typ] {
				fn.Complexity++
			}
			if typ == "when_entry" && !hasKeyword(child, "else") {
				fn.Complexity++
			}
			if nestingNodes[typ] {
				childDepth++
				if childDepth > fn.MaxNesting {
					fn.MaxNesting = childDepth
				}
			}
		}

		decls = append(decls, b.visit(child, parent, fn, childDepth)...)
	}

	return decls
}

// declaration builds a Declaration for declaration nodes, nil otherwise
func (b *outlineBuilder) declaration(n *sitter.Node, parent *Declaration) *Declaration {
	var d *Declaration

	switch n.Type() {
	case "function_declaration":
		d = &Declaration{Kind: DeclFunction, Complexity: 1}
		d.Name = b.childContent(n, "simple_identifier")
		if params := firstChildOfType(n, "function_value_parameters"); params != nil {
			for i := 0; i < int(params.NamedChildCount()); i++ {
				if params.NamedChild(i).Type() == "parameter" {
					d.Parameters++
				}
			}
		}
	case "class_declaration":
		d = &Declaration{Kind: DeclClass}
		if hasKeyword(n, "interface") {
			d.Kind = DeclInterface
		}
		d.Name = b.childContent(n, "type_identifier")
	case "object_declaration":
		d = &Declaration{Kind: DeclObject}
		d.Name = b.childContent(n, "type_identifier")
	case "companion_object":
		d = &Declaration{Kind: DeclObject, Name: "Companion"}
		if name := b.childContent(n, "type_identifier"); name != "" {
			d.Name = name
		}
	default:
		return nil
	}

	d.Parent = parent
	d.Location = Location{
		File:      b.filename,
		StartLine: int(n.StartPoint().Row) + 1,
		EndLine:   int(n.EndPoint().Row) + 1,
	}
	b.readModifiers(n, d)
	d.HasDoc = b.hasKDoc(d.Location.StartLine)
	return d
}

func (b *outlineBuilder) readModifiers(n *sitter.Node, d *Declaration) {
	mods := firstChildOfType(n, "modifiers")
	if mods == nil {
		return
	}
	for i := 0; i < int(mods.NamedChildCount()); i++ {
		m := mods.NamedChild(i)
		if m.Type() == "annotation" {
			continue
		}
		text := strings.TrimSpace(m.Content(b.source))
		if m.Type() == "visibility_modifier" {
			d.Visibility = text
		}
		d.Modifiers = append(d.Modifiers, text)
	}
}

// hasKDoc reports whether a /** */ block ends on the lines directly above
// startLine, skipping blank lines and annotations.
func (b *outlineBuilder) hasKDoc(startLine int) bool {
	i := startLine - 2
	for i >= 0 {
		line := strings.TrimSpace(b.lines[i])
		if line == "" || strings.HasPrefix(line, "@") {
			i--
			continue
		}
		break
	}
	if i < 0 || !strings.HasSuffix(strings.TrimSpace(b.lines[i]), "*/") {
		return false
	}
	for ; i >= 0; i-- {
		line := strings.TrimSpace(b.lines[i])
		if idx := strings.Index(line, "/*"); idx >= 0 {
			return strings.HasPrefix(line[idx:], "/**")
		}
	}
	return false
}

func (b *outlineBuilder) importPath(hdr *sitter.Node) string {
	id := firstChildOfType(hdr, "identifier")
	if id == nil {
		return strings.TrimSpace(strings.TrimPrefix(hdr.Content(b.source), "import"))
	}
	path := id.Content(b.source)
	if strings.Contains(hdr.Content(b.source), ".*") {
		path += ".*"
	}
	return path
}

func (b *outlineBuilder) childContent(n *sitter.Node, typ string) string {
	if c := firstChildOfType(n, typ); c != nil {
		return c.Content(b.source)
	}
	return ""
}

func firstChildOfType(n *sitter.Node, typ string) *sitter.Node {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == typ {
			return c
		}
	}
	return nil
}

// hasKeyword reports whether n has an anonymous child token equal to kw
func hasKeyword(n *sitter.Node, kw string) bool {
	for i := 0; i < int(n.ChildCount()); i++ {
		if c := n.Child(i); !c.IsNamed() && c.Type() == kw {
			return true
		}
	}
	return false
}
