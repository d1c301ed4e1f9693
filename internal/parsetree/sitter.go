package parsetree

import (
	sitter "github.com/smacker/go-tree-sitter"
)

// FromSitter converts a tree-sitter syntax tree into a generic tree. Only
// named nodes are kept; anonymous punctuation is dropped. Named nodes
// without named children become leaves holding their source text.
func FromSitter(n *sitter.Node, src []byte) *Node {
	if n == nil || n.IsNull() {
		return nil
	}

	p := n.StartPoint()
	count := int(n.NamedChildCount())
	if count == 0 {
		return Token(n.Type(), n.Content(src)).At(int(p.Row)+1, int(p.Column)+1)
	}

	res := Tree(n.Type()).At(int(p.Row)+1, int(p.Column)+1)
	for i := 0; i < count; i++ {
		if c := FromSitter(n.NamedChild(i), src); c != nil {
			res.Children = append(res.Children, c)
		}
	}
	return res
}

// FirstSitterError returns the first ERROR or MISSING node in document
// order, or nil when the tree is clean.
func FirstSitterError(n *sitter.Node) *sitter.Node {
	if n == nil || n.IsNull() || !n.HasError() && !n.IsMissing() {
		return nil
	}
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if e := FirstSitterError(n.Child(i)); e != nil {
			return e
		}
	}
	return n
}
