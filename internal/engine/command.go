package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os/exec"
	"strings"
	"time"

	"rtscheck/internal/parsetree"
)

// Command runs an external parser process per call. The script text is
// written to its stdin and one JSON response is read from its stdout:
//
//	{"ok": true, "tree": {...}}
//	{"ok": false, "error": {"kind": "syntax", "message": "...", "line": 3, "column": 1}}
//
// Only the parser's own diagnostics become ParseErrors. A process that exits
// without a usable response is reported as ErrEngineUnavailable.
type Command struct {
	argv          []string
	timeout       time.Duration
	appendNewline bool
}

type response struct {
	OK    bool            `json:"ok"`
	Tree  *parsetree.Node `json:"tree"`
	Error *ParseError     `json:"error"`
}

// NewCommand returns an engine running argv. A zero timeout disables the
// per-call deadline.
func NewCommand(argv []string, timeout time.Duration, appendNewline bool) (*Command, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("%w: empty command", ErrEngineUnavailable)
	}
	return &Command{argv: append([]string(nil), argv...), timeout: timeout, appendNewline: appendNewline}, nil
}

func (c *Command) Name() string {
	return "command:" + strings.Join(c.argv, " ")
}

func (c *Command) Parse(ctx context.Context, text string) (*parsetree.Node, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}
	if c.appendNewline && !strings.HasSuffix(text, "\n") {
		text += "\n"
	}

	cmd := exec.CommandContext(ctx, c.argv[0], c.argv[1:]...)
	cmd.Stdin = strings.NewReader(text)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if errors.Is(runErr, exec.ErrNotFound) || errors.Is(runErr, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %v", ErrEngineUnavailable, runErr)
	}
	if ctx.Err() != nil {
		return nil, fmt.Errorf("parser process %s: %w", c.argv[0], ctx.Err())
	}

	var resp response
	if err := json.Unmarshal(stdout.Bytes(), &resp); err != nil {
		if runErr != nil {
			return nil, fmt.Errorf("%w: parser process failed: %v: %s", ErrEngineUnavailable, runErr, strings.TrimSpace(stderr.String()))
		}
		return nil, fmt.Errorf("%w: failed to decode parser response: %v", ErrEngineUnavailable, err)
	}

	if !resp.OK {
		if resp.Error == nil {
			return nil, fmt.Errorf("%w: parser reported failure without an error", ErrEngineUnavailable)
		}
		pe := resp.Error
		if pe.Kind != Lexical {
			pe.Kind = Syntax
		}
		if pe.Code == 0 {
			pe.Code = NewParseError(pe.Kind, 0, 0, "").Code
		}
		return nil, pe
	}
	if resp.Tree == nil {
		return nil, fmt.Errorf("%w: parser reported success without a tree", ErrEngineUnavailable)
	}
	return resp.Tree, nil
}
