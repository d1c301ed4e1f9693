package parsetree

import (
	"context"
	"testing"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func parseGo(t *testing.T, src string) *sitter.Tree {
	t.Helper()
	parser := sitter.NewParser()
	parser.SetLanguage(golang.GetLanguage())
	tree, err := parser.ParseCtx(context.Background(), nil, []byte(src))
	require.NoError(t, err)
	t.Cleanup(tree.Close)
	return tree
}

func TestFromSitter(t *testing.T) {
	src := "package main\n\nfunc main() {}\n"
	tree := parseGo(t, src)

	root := FromSitter(tree.RootNode(), []byte(src))
	require.NotNil(t, root)

	t.Run("Root keeps the grammar kind", func(t *testing.T) {
		assert.Equal(t, "source_file", root.Kind)
		assert.Equal(t, 1, root.Line)
		require.Len(t, root.Children, 2)
	})

	t.Run("Named leaves carry source text", func(t *testing.T) {
		pkg := root.Children[0]
		assert.Equal(t, "package_clause", pkg.Kind)
		id := pkg.FirstChildOfKind("package_identifier")
		require.NotNil(t, id)
		assert.True(t, id.Leaf)
		assert.Equal(t, "main", id.Text)
		assert.Equal(t, 9, id.Column)
	})

	t.Run("Positions are one-based", func(t *testing.T) {
		fn := root.Children[1]
		assert.Equal(t, "function_declaration", fn.Kind)
		assert.Equal(t, 3, fn.Line)
		assert.Equal(t, 1, fn.Column)
	})

	t.Run("Clean trees have no error node", func(t *testing.T) {
		assert.Nil(t, FirstSitterError(tree.RootNode()))
	})
}

func TestFirstSitterError(t *testing.T) {
	tree := parseGo(t, "package main\n\nfunc {\n")
	e := FirstSitterError(tree.RootNode())
	require.NotNil(t, e)
	assert.True(t, e.HasError() || e.IsMissing())
}
