package runner

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"go.uber.org/goleak"

	"rtscheck/internal/engine"
	"rtscheck/internal/parsetree"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

// swallowing parses like the fallback engine but lets a Notes section absorb
// every section after it, the way an unbounded free-text body rule does.
type swallowing struct {
	inner *engine.Fallback
}

func newSwallowing() *swallowing {
	return &swallowing{inner: engine.NewFallback(nil)}
}

func (s *swallowing) Name() string { return "swallowing" }

func (s *swallowing) Parse(ctx context.Context, text string) (*parsetree.Node, error) {
	tree, err := s.inner.Parse(ctx, text)
	if err != nil {
		return nil, err
	}
	for i, c := range tree.Children {
		if c.Kind == "notes_section" {
			tree.Children = tree.Children[:i+1]
			break
		}
	}
	return tree, nil
}

// wrongRoot parses everything into a tree the walker rejects.
type wrongRoot struct{}

func (wrongRoot) Name() string { return "wrong-root" }

func (wrongRoot) Parse(context.Context, string) (*parsetree.Node, error) {
	return parsetree.Tree("program"), nil
}

// dead stands in for a parser process that never answers.
type dead struct {
	calls atomic.Int32
}

func (*dead) Name() string { return "dead" }

func (d *dead) Parse(context.Context, string) (*parsetree.Node, error) {
	d.calls.Add(1)
	return nil, fmt.Errorf("%w: parser process failed: exit status 2", engine.ErrEngineUnavailable)
}
