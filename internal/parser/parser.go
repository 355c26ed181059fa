package parser

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/kotlin"
)

// Parser wraps a tree-sitter parser for Kotlin. A Parser is not safe for
// concurrent use; create one per goroutine or use ParseKotlin.
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a new Kotlin parser
func NewParser() *Parser {
	parser := sitter.NewParser()
	parser.SetLanguage(kotlin.GetLanguage())
	return &Parser{parser: parser}
}

// ParseFile parses a Kotlin file into its declaration outline
func (p *Parser) ParseFile(ctx context.Context, filename string, source []byte) (*File, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse file %s: %v", filename, err)
	}
	defer tree.Close()

	rootNode := tree.RootNode()
	if rootNode == nil {
		return nil, fmt.Errorf("no root node in parse tree for %s", filename)
	}

	builder := newOutlineBuilder(filename, source)
	return builder.build(rootNode), nil
}

// ParseString parses Kotlin source code from a string
func (p *Parser) ParseString(source string) (*File, error) {
	return p.ParseFile(context.Background(), "<input>", []byte(source))
}

// Close closes the parser and frees resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// ParseKotlin parses one file with a short-lived parser
func ParseKotlin(ctx context.Context, filename string, source []byte) (*File, error) {
	p := NewParser()
	defer p.Close()
	return p.ParseFile(ctx, filename, source)
}
