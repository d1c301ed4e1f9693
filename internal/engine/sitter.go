package engine

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"rtscheck/internal/parsetree"
)

// Sitter parses with a compiled tree-sitter grammar. A parser is created per
// call since tree-sitter parsers are not safe for concurrent use.
type Sitter struct {
	name string
	lang *sitter.Language
}

func NewSitter(name string, lang *sitter.Language) *Sitter {
	return &Sitter{name: name, lang: lang}
}

func (s *Sitter) Name() string { return "tree-sitter:" + s.name }

func (s *Sitter) Parse(ctx context.Context, text string) (*parsetree.Node, error) {
	if s.lang == nil {
		return nil, fmt.Errorf("%w: no tree-sitter language for %s", ErrEngineUnavailable, s.name)
	}

	src := []byte(text)
	parser := sitter.NewParser()
	parser.SetLanguage(s.lang)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("failed to parse: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if bad := parsetree.FirstSitterError(root); bad != nil {
		p := bad.StartPoint()
		line, col := int(p.Row)+1, int(p.Column)+1
		if bad.IsMissing() {
			return nil, &ParseError{Kind: Syntax, Code: UnexpectedEOF, Message: "missing " + bad.Type(), Line: line, Column: col}
		}
		return nil, &ParseError{Kind: Syntax, Code: UnexpectedToken, Message: fmt.Sprintf("unexpected %q", firstLine(bad.Content(src))), Line: line, Column: col}
	}
	return parsetree.FromSitter(root, src), nil
}

func firstLine(s string) string {
	for i, r := range s {
		if r == '\n' || r == '\r' {
			return s[:i]
		}
	}
	return s
}
