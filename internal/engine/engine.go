// Package engine adapts parsing engines to the parse(text) -> tree | error
// contract the checker is built on.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	sitter "github.com/smacker/go-tree-sitter"

	"rtscheck/internal/parsetree"
	"rtscheck/internal/sections"
)

// Engine turns script text into a generic parse tree. Implementations are
// deterministic and safe for concurrent use.
type Engine interface {
	Name() string
	Parse(ctx context.Context, text string) (*parsetree.Node, error)
}

// ErrEngineUnavailable is returned when a configured engine cannot run.
var ErrEngineUnavailable = errors.New("parsing engine unavailable")

// ErrorKind separates token-level from structural failures.
type ErrorKind string

const (
	Lexical ErrorKind = "lexical"
	Syntax  ErrorKind = "syntax"
)

// Error code classes. Lexical codes start at 101, syntax codes at 201.
const (
	LexicalErrors = 101
	SyntaxErrors  = 201
)

const (
	UnexpectedCharacter = LexicalErrors + iota
	UnterminatedComment
)

const (
	UnexpectedToken = SyntaxErrors + iota
	UnexpectedEOF
	TopLevelLine
	BodyOutsideSection
)

// ParseError is a parse failure with its position. Line and Column are
// 1-based; 0 means unknown.
type ParseError struct {
	Kind    ErrorKind `json:"kind"`
	Code    int       `json:"code"`
	Message string    `json:"message"`
	Line    int       `json:"line,omitempty"`
	Column  int       `json:"column,omitempty"`
}

func (e *ParseError) Error() string {
	switch {
	case e.Line > 0 && e.Column > 0:
		return fmt.Sprintf("%s error at line %d, column %d: %s", e.Kind, e.Line, e.Column, e.Message)
	case e.Line > 0:
		return fmt.Sprintf("%s error at line %d: %s", e.Kind, e.Line, e.Message)
	}
	return fmt.Sprintf("%s error: %s", e.Kind, e.Message)
}

// NewParseError builds a ParseError with the default code of its kind.
func NewParseError(kind ErrorKind, line, col int, format string, args ...any) *ParseError {
	code := UnexpectedToken
	if kind == Lexical {
		code = UnexpectedCharacter
	}
	return &ParseError{Kind: kind, Code: code, Message: fmt.Sprintf(format, args...), Line: line, Column: col}
}

// Oracle binds an engine to a context, giving the plain function shape the
// failure localizer probes.
func Oracle(ctx context.Context, e Engine) func(string) (*parsetree.Node, error) {
	return func(text string) (*parsetree.Node, error) {
		return e.Parse(ctx, text)
	}
}

// Options selects and configures an engine.
type Options struct {
	Kind          string // command, fallback, tree-sitter or auto; empty means auto
	Command       []string
	Timeout       time.Duration
	AppendNewline bool
	Table         *sections.Table
	// Language and LanguageName select the grammar of the tree-sitter kind.
	// Callers linking a compiled grammar set them.
	Language     *sitter.Language
	LanguageName string
}

// New creates the engine described by opts. In auto mode the command engine
// is used when its executable resolves and it answers a probe parse of the
// empty text; the fallback engine is used otherwise.
func New(opts Options) (Engine, error) {
	kind := strings.ToLower(strings.TrimSpace(opts.Kind))
	if kind == "" {
		kind = "auto"
	}

	switch kind {
	case "fallback":
		return NewFallback(opts.Table), nil
	case "command":
		return NewCommand(opts.Command, opts.Timeout, opts.AppendNewline)
	case "tree-sitter":
		if opts.Language == nil {
			return nil, fmt.Errorf("%w: no tree-sitter language linked", ErrEngineUnavailable)
		}
		return NewSitter(opts.LanguageName, opts.Language), nil
	case "auto":
		if len(opts.Command) > 0 {
			if _, err := exec.LookPath(opts.Command[0]); err == nil {
				c, err := NewCommand(opts.Command, opts.Timeout, opts.AppendNewline)
				if err != nil {
					return nil, err
				}
				if Available(context.Background(), c) {
					return c, nil
				}
			}
		}
		return NewFallback(opts.Table), nil
	default:
		return nil, fmt.Errorf("unsupported engine kind: %s", opts.Kind)
	}
}

// Available parses the empty text once and reports whether e answered. A
// ParseError counts as an answer.
func Available(ctx context.Context, e Engine) bool {
	_, err := e.Parse(ctx, "")
	return !errors.Is(err, ErrEngineUnavailable)
}
