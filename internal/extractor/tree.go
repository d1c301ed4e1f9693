package extractor

import (
	"rtscheck/internal/parsetree"
	"rtscheck/internal/sections"
)

// WalkTree lists the sections among the root's direct children. A child whose
// kind is a wrapper is looked through once; section bodies are never entered.
func WalkTree(table *sections.Table, root *parsetree.Node) ([]Entry, error) {
	if root == nil {
		return nil, &MalformedTreeError{Reason: "no tree"}
	}
	if root.Leaf {
		return nil, &MalformedTreeError{Kind: root.Kind, Line: root.Line, Reason: "root is a token"}
	}
	if root.Kind != table.RootKind() {
		return nil, &MalformedTreeError{Kind: root.Kind, Line: root.Line, Reason: "unexpected root kind, want " + table.RootKind()}
	}

	res := []Entry{}
	for _, child := range root.Children {
		found, err := sectionsOf(table, child, true)
		if err != nil {
			return nil, err
		}
		res = append(res, found...)
	}
	return res, nil
}

func sectionsOf(table *sections.Table, n *parsetree.Node, unwrap bool) ([]Entry, error) {
	if !n.IsTree() {
		return nil, nil
	}

	class, name := table.Classify(n.Kind)
	switch class {
	case sections.ClassDedicated:
		line, _ := n.Pos()
		return []Entry{{Name: name, Line: line}}, nil
	case sections.ClassGeneric:
		e, err := genericEntry(table, n)
		if err != nil {
			return nil, err
		}
		return []Entry{e}, nil
	case sections.ClassOther:
		if !unwrap || !table.IsWrapper(n.Kind) {
			return nil, nil
		}
		var res []Entry
		for _, c := range n.Children {
			found, err := sectionsOf(table, c, false)
			if err != nil {
				return nil, err
			}
			res = append(res, found...)
		}
		return res, nil
	}
	return nil, &MalformedTreeError{Kind: n.Kind, Line: n.Line, Reason: "unclassified node"}
}

func genericEntry(table *sections.Table, n *parsetree.Node) (Entry, error) {
	tok := n.FirstChildOfKind(table.NameToken())
	line, _ := n.Pos()
	if tok == nil {
		return Entry{}, &MalformedTreeError{Kind: n.Kind, Line: line, Reason: "generic section without " + table.NameToken()}
	}
	name := sections.Name(tok.Text)
	if !table.Known(name) {
		return Entry{}, &MalformedTreeError{Kind: n.Kind, Line: line, Reason: "unknown section name " + string(name)}
	}
	return Entry{Name: name, Line: line}, nil
}
