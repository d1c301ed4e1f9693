package engine

import (
	"context"
	"errors"
	"testing"

	"github.com/smacker/go-tree-sitter/golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSitter_Parse(t *testing.T) {
	ctx := context.Background()
	e := NewSitter("go", golang.GetLanguage())
	assert.Equal(t, "tree-sitter:go", e.Name())

	t.Run("Valid source", func(t *testing.T) {
		tree, err := e.Parse(ctx, "package main\n\nvar x = 1\n")
		require.NoError(t, err)
		assert.Equal(t, "source_file", tree.Kind)
		assert.Len(t, tree.Children, 2)
	})

	t.Run("Syntax error becomes a ParseError", func(t *testing.T) {
		_, err := e.Parse(ctx, "package main\n\nfunc {\n")
		var pe *ParseError
		require.True(t, errors.As(err, &pe))
		assert.Equal(t, Syntax, pe.Kind)
		assert.Greater(t, pe.Line, 0)
	})

	t.Run("No language", func(t *testing.T) {
		_, err := NewSitter("none", nil).Parse(ctx, "x")
		assert.ErrorIs(t, err, ErrEngineUnavailable)
	})
}
