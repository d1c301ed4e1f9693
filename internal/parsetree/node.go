// Package parsetree defines the engine-neutral syntax tree the section walker
// consumes. Engines convert their own trees into it.
package parsetree

import (
	"fmt"
	"strings"
)

// Node is either an inner node (Leaf false) with ordered children, or a leaf
// token carrying text. Line and Column are 1-based, 0 when unknown.
type Node struct {
	Kind     string  `json:"kind"`
	Text     string  `json:"text,omitempty"`
	Leaf     bool    `json:"leaf,omitempty"`
	Line     int     `json:"line,omitempty"`
	Column   int     `json:"column,omitempty"`
	Children []*Node `json:"children,omitempty"`
}

// Tree creates an inner node. Nil children are dropped.
func Tree(kind string, children ...*Node) *Node {
	n := &Node{Kind: kind}
	for _, c := range children {
		if c != nil {
			n.Children = append(n.Children, c)
		}
	}
	return n
}

// Token creates a leaf node.
func Token(kind, text string) *Node {
	return &Node{Kind: kind, Text: text, Leaf: true}
}

// At sets the node position and returns the node.
func (n *Node) At(line, col int) *Node {
	n.Line = line
	n.Column = col
	return n
}

// IsTree reports whether n is a non-nil inner node.
func (n *Node) IsTree() bool {
	return n != nil && !n.Leaf
}

// ChildrenOf returns the direct children of n, nil for leaves.
func ChildrenOf(n *Node) []*Node {
	if !n.IsTree() {
		return nil
	}
	return n.Children
}

// FirstChildOfKind returns the first direct child with the given kind.
func (n *Node) FirstChildOfKind(kind string) *Node {
	if !n.IsTree() {
		return nil
	}
	for _, c := range n.Children {
		if c != nil && c.Kind == kind {
			return c
		}
	}
	return nil
}

// Pos returns the node position, falling back to its first positioned
// descendant.
func (n *Node) Pos() (line, col int) {
	if n == nil {
		return 0, 0
	}
	if n.Line > 0 {
		return n.Line, n.Column
	}
	for _, c := range n.Children {
		if l, cl := c.Pos(); l > 0 {
			return l, cl
		}
	}
	return 0, 0
}

// Visitor is called for each node in pre-order; returning false skips the
// node's children.
type Visitor func(n *Node, depth int) (walkChildren bool)

// Walk traverses the tree rooted at n left to right.
func Walk(n *Node, v Visitor) {
	walk(n, 0, v)
}

func walk(n *Node, depth int, v Visitor) {
	if n == nil {
		return
	}
	if !v(n, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c, depth+1, v)
	}
}

// Count returns the number of nodes in the tree.
func Count(n *Node) int {
	total := 0
	Walk(n, func(*Node, int) bool {
		total++
		return true
	})
	return total
}

// Pretty renders the tree one node per line, indented by depth, with leaf
// text quoted.
func Pretty(n *Node) string {
	var sb strings.Builder
	Walk(n, func(nn *Node, depth int) bool {
		sb.WriteString(strings.Repeat("  ", depth))
		if nn.Leaf {
			fmt.Fprintf(&sb, "%s\t%q\n", nn.Kind, nn.Text)
		} else {
			sb.WriteString(nn.Kind)
			sb.WriteByte('\n')
		}
		return true
	})
	return sb.String()
}
