package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtscheck/internal/extractor"
	"rtscheck/internal/parsetree"
	"rtscheck/internal/sections"
)

func TestFallback_Parse(t *testing.T) {
	ctx := context.Background()
	e := NewFallback(nil)

	t.Run("Tree shape", func(t *testing.T) {
		tree, err := e.Parse(ctx, "// banner\nStrategy: Dip\n  EntrySetup: C < O\nScan:\n")
		require.NoError(t, err)
		require.Len(t, tree.Children, 2)

		strat := tree.Children[0]
		assert.Equal(t, "strategy_section", strat.Kind)
		assert.Equal(t, 2, strat.Line)
		value := strat.FirstChildOfKind("VALUE")
		require.NotNil(t, value)
		assert.Equal(t, "Dip", value.Text)
		body := strat.FirstChildOfKind("section_body")
		require.NotNil(t, body)
		assert.Equal(t, "  EntrySetup: C < O", body.Children[0].Text)

		scan := tree.Children[1]
		assert.Equal(t, "generic_section", scan.Kind)
		assert.Equal(t, "Scan", scan.FirstChildOfKind("SECTION_NAME").Text)
		assert.Nil(t, scan.FirstChildOfKind("section_body"))
	})

	t.Run("Walker sees the text headers", func(t *testing.T) {
		text := "Notes:\n  n\nParameters:\n  p: 1\nData:\n  d\nStrategy: s\nBenchmark: b\nCharts:\n  c\nNamespace:\n"
		tree, err := e.Parse(ctx, text)
		require.NoError(t, err)
		entries, err := extractor.WalkTree(sections.Default, tree)
		require.NoError(t, err)
		assert.Equal(t, extractor.TextNames(extractor.ExtractText(sections.Default, text)), extractor.TreeNames(entries))
	})

	t.Run("Errors carry line and code", func(t *testing.T) {
		tests := []struct {
			name string
			text string
			kind ErrorKind
			code int
			line int
		}{
			{"Indented before header", "  x\n", Syntax, BodyOutsideSection, 1},
			{"Unknown top-level line", "Data:\nBogus\n", Syntax, TopLevelLine, 2},
			{"Unterminated comment", "Data:\n/* open\n", Lexical, UnterminatedComment, 2},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				_, err := e.Parse(ctx, tt.text)
				var pe *ParseError
				require.True(t, errors.As(err, &pe))
				assert.Equal(t, tt.kind, pe.Kind)
				assert.Equal(t, tt.code, pe.Code)
				assert.Equal(t, tt.line, pe.Line)
			})
		}
	})

	t.Run("Empty text parses to an empty root", func(t *testing.T) {
		tree, err := e.Parse(ctx, "")
		require.NoError(t, err)
		assert.Equal(t, 1, parsetree.Count(tree))
	})

	t.Run("Cancelled context", func(t *testing.T) {
		cctx, cancel := context.WithCancel(ctx)
		cancel()
		_, err := e.Parse(cctx, "Data:\n")
		assert.ErrorIs(t, err, context.Canceled)
	})
}
