package extractor

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtscheck/internal/parsetree"
	"rtscheck/internal/sections"
)

func generic(name string, line int) *parsetree.Node {
	return parsetree.Tree("generic_section",
		parsetree.Token("SECTION_NAME", name).At(line, 1),
		parsetree.Tree("section_body"),
	)
}

func TestWalkTree(t *testing.T) {
	t.Run("Dedicated and generic sections in order", func(t *testing.T) {
		root := parsetree.Tree("start",
			parsetree.Token("COMMENT", "// hi"),
			parsetree.Tree("notes_section").At(2, 1),
			generic("Data", 5),
			parsetree.Tree("strategy_section").At(8, 1),
		)
		got, err := WalkTree(sections.Default, root)
		require.NoError(t, err)
		assert.Equal(t, []Entry{{Name: "Notes", Line: 2}, {Name: "Data", Line: 5}, {Name: "Strategy", Line: 8}}, got)
	})

	t.Run("One wrapper layer is transparent", func(t *testing.T) {
		root := parsetree.Tree("start",
			parsetree.Tree("section", parsetree.Tree("parameters_section")),
			parsetree.Tree("statement", generic("Scan", 0)),
		)
		got, err := WalkTree(sections.Default, root)
		require.NoError(t, err)
		assert.Equal(t, []sections.Name{"Parameters", "Scan"}, TreeNames(got))
		assert.Zero(t, got[0].Line)
	})

	t.Run("Nested wrappers and bodies are not entered", func(t *testing.T) {
		root := parsetree.Tree("start",
			parsetree.Tree("section", parsetree.Tree("item", parsetree.Tree("charts_section"))),
			parsetree.Tree("notes_section", parsetree.Tree("strategy_section")),
			parsetree.Tree("body", parsetree.Tree("benchmark_section")),
		)
		got, err := WalkTree(sections.Default, root)
		require.NoError(t, err)
		assert.Equal(t, []sections.Name{"Notes"}, TreeNames(got))
	})

	t.Run("Empty root", func(t *testing.T) {
		got, err := WalkTree(sections.Default, parsetree.Tree("start"))
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("Each call returns a fresh slice", func(t *testing.T) {
		root := parsetree.Tree("start", parsetree.Tree("notes_section"))
		a, err := WalkTree(sections.Default, root)
		require.NoError(t, err)
		a[0].Name = "Changed"
		b, err := WalkTree(sections.Default, root)
		require.NoError(t, err)
		assert.Equal(t, sections.Name("Notes"), b[0].Name)
	})
}

func TestWalkTree_Malformed(t *testing.T) {
	tests := []struct {
		name string
		root *parsetree.Node
	}{
		{"Nil root", nil},
		{"Leaf root", parsetree.Token("start", "x")},
		{"Wrong root kind", parsetree.Tree("program")},
		{"Generic section without name", parsetree.Tree("start", parsetree.Tree("generic_section"))},
		{"Generic section with unknown name", parsetree.Tree("start", generic("Bogus", 3))},
		{"Malformed section inside wrapper", parsetree.Tree("start", parsetree.Tree("section", parsetree.Tree("generic_section")))},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := WalkTree(sections.Default, tt.root)
			assert.Nil(t, got)
			var mErr *MalformedTreeError
			require.True(t, errors.As(err, &mErr))
			assert.Contains(t, err.Error(), "malformed tree")
		})
	}
}
