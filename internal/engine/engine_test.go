package engine

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/smacker/go-tree-sitter/golang"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseError(t *testing.T) {
	t.Run("Message carries the position", func(t *testing.T) {
		err := NewParseError(Syntax, 3, 7, "unexpected %q", "Bogus")
		assert.Equal(t, `syntax error at line 3, column 7: unexpected "Bogus"`, err.Error())
		assert.Equal(t, UnexpectedToken, err.Code)
	})

	t.Run("Code classes", func(t *testing.T) {
		assert.Equal(t, 101, NewParseError(Lexical, 0, 0, "x").Code)
		assert.Equal(t, "lexical error: x", NewParseError(Lexical, 0, 0, "x").Error())
		assert.Equal(t, "syntax error at line 2: x", NewParseError(Syntax, 2, 0, "x").Error())
		assert.GreaterOrEqual(t, BodyOutsideSection, SyntaxErrors)
		assert.Less(t, UnterminatedComment, SyntaxErrors)
	})

	t.Run("Matched through wrapping", func(t *testing.T) {
		wrapped := errors.Join(errors.New("context"), NewParseError(Syntax, 1, 1, "x"))
		var pe *ParseError
		require.True(t, errors.As(wrapped, &pe))
		assert.Equal(t, 1, pe.Line)
	})
}

func TestNew(t *testing.T) {
	t.Run("Fallback", func(t *testing.T) {
		e, err := New(Options{Kind: "fallback"})
		require.NoError(t, err)
		assert.Equal(t, "fallback", e.Name())
	})

	t.Run("Command", func(t *testing.T) {
		e, err := New(Options{Kind: "Command", Command: []string{"python3", "parse.py"}})
		require.NoError(t, err)
		assert.Equal(t, "command:python3 parse.py", e.Name())
	})

	t.Run("Command without argv", func(t *testing.T) {
		_, err := New(Options{Kind: "command"})
		assert.ErrorIs(t, err, ErrEngineUnavailable)
	})

	t.Run("Auto picks the command when it answers", func(t *testing.T) {
		t.Setenv("RTSCHECK_HELPER_PROCESS", "1")
		e, err := New(Options{Command: []string{os.Args[0], "-test.run=TestHelperProcess", "--", "fallback"}})
		require.NoError(t, err)
		assert.IsType(t, &Command{}, e)
	})

	t.Run("Auto falls back when the command cannot answer", func(t *testing.T) {
		t.Setenv("RTSCHECK_HELPER_PROCESS", "1")
		e, err := New(Options{Command: []string{os.Args[0], "-test.run=TestHelperProcess", "--", "garbage"}})
		require.NoError(t, err)
		assert.IsType(t, &Fallback{}, e)
	})

	t.Run("Auto keeps a command that rejects the empty text", func(t *testing.T) {
		t.Setenv("RTSCHECK_HELPER_PROCESS", "1")
		e, err := New(Options{Command: []string{os.Args[0], "-test.run=TestHelperProcess", "--", "reject"}})
		require.NoError(t, err)
		assert.IsType(t, &Command{}, e)
	})

	t.Run("Tree-sitter", func(t *testing.T) {
		e, err := New(Options{Kind: "tree-sitter", Language: golang.GetLanguage(), LanguageName: "go"})
		require.NoError(t, err)
		assert.Equal(t, "tree-sitter:go", e.Name())

		_, err = New(Options{Kind: "tree-sitter"})
		assert.ErrorIs(t, err, ErrEngineUnavailable)
	})

	t.Run("Auto falls back when the command is missing", func(t *testing.T) {
		e, err := New(Options{Kind: "auto", Command: []string{"rtscheck-no-such-parser"}})
		require.NoError(t, err)
		assert.IsType(t, &Fallback{}, e)
	})

	t.Run("Unknown kind", func(t *testing.T) {
		_, err := New(Options{Kind: "magic"})
		assert.ErrorContains(t, err, "unsupported engine kind")
	})
}

func TestOracle(t *testing.T) {
	oracle := Oracle(context.Background(), NewFallback(nil))

	tree, err := oracle("Data:\n  x\n")
	require.NoError(t, err)
	assert.Equal(t, "start", tree.Kind)

	_, err = oracle("  x\n")
	var pe *ParseError
	assert.True(t, errors.As(err, &pe))
}

func TestAvailable(t *testing.T) {
	ctx := context.Background()
	assert.True(t, Available(ctx, NewFallback(nil)))
	assert.False(t, Available(ctx, NewSitter("none", nil)))

	c, err := NewCommand([]string{"rtscheck-no-such-parser"}, 0, false)
	require.NoError(t, err)
	assert.False(t, Available(ctx, c))
}
