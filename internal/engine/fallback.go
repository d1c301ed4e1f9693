package engine

import (
	"context"

	"rtscheck/internal/fallback"
	"rtscheck/internal/parsetree"
	"rtscheck/internal/sections"
)

// Fallback parses with the built-in line checker. It accepts the reduced
// grammar only and never inspects body expressions.
type Fallback struct {
	table  *sections.Table
	parser *fallback.Parser
}

// NewFallback returns a fallback engine for table; nil means sections.Default.
func NewFallback(table *sections.Table) *Fallback {
	if table == nil {
		table = sections.Default
	}
	return &Fallback{table: table, parser: fallback.New(table)}
}

func (f *Fallback) Name() string { return "fallback" }

// Parse builds a tree of the shape the section walker expects: one node per
// header under the root, dedicated kinds where the table has them and a
// generic section carrying a name token otherwise.
func (f *Fallback) Parse(ctx context.Context, text string) (*parsetree.Node, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	res := f.parser.Check(text)
	if res.State == fallback.Error {
		return nil, faultError(res)
	}

	root := parsetree.Tree(f.table.RootKind()).At(1, 1)
	for _, h := range res.Headers {
		root.Children = append(root.Children, f.section(h))
	}
	return root, nil
}

func (f *Fallback) section(h fallback.Header) *parsetree.Node {
	kind, dedicated := f.table.KindFor(h.Name)
	n := parsetree.Tree(kind).At(h.Line, 1)
	if dedicated {
		n.Children = append(n.Children, parsetree.Token("HEADER", string(h.Name)).At(h.Line, 1))
	} else {
		n.Children = append(n.Children, parsetree.Token(f.table.NameToken(), string(h.Name)).At(h.Line, 1))
	}
	if h.Value != "" {
		n.Children = append(n.Children, parsetree.Token("VALUE", h.Value).At(h.Line, len(h.Name)+2))
	}
	if len(h.Body) > 0 {
		body := parsetree.Tree("section_body").At(h.Body[0].Line, 1)
		for _, b := range h.Body {
			body.Children = append(body.Children, parsetree.Token("BODY_LINE", b.Text).At(b.Line, 1))
		}
		n.Children = append(n.Children, body)
	}
	return n
}

func faultError(res fallback.Result) *ParseError {
	switch res.Fault {
	case fallback.UnterminatedComment:
		return &ParseError{Kind: Lexical, Code: UnterminatedComment, Message: res.Reason, Line: res.Line, Column: 1}
	case fallback.BodyOutsideSection:
		return &ParseError{Kind: Syntax, Code: BodyOutsideSection, Message: res.Reason, Line: res.Line, Column: 1}
	case fallback.UnexpectedTopLevel:
		return &ParseError{Kind: Syntax, Code: TopLevelLine, Message: res.Reason, Line: res.Line, Column: 1}
	}
	return &ParseError{Kind: Syntax, Code: UnexpectedToken, Message: res.Reason, Line: res.Line}
}
