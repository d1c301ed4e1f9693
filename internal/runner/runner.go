// Package runner validates batches of scripts: each file is parsed by the
// engine, both section inventories are extracted and compared, and parse
// failures are optionally localized.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rtscheck/internal/compare"
	"rtscheck/internal/engine"
	"rtscheck/internal/extractor"
	"rtscheck/internal/localize"
	"rtscheck/internal/sections"
)

type Options struct {
	Workers int
	// Early stops a run at the first parse failure and localizes it.
	Early bool
	// Localize attaches a boundary to every parse failure.
	Localize  bool
	Lookahead int
	Table     *sections.Table
	Logger    *zap.Logger
	// OnResult is called once per file, in input order.
	OnResult func(index, total int, res FileResult)
}

// Runner holds no per-run state and may be shared between goroutines.
type Runner struct {
	engine engine.Engine
	table  *sections.Table
	cmp    *compare.Comparator
	opts   Options
	log    *zap.Logger
}

func New(e engine.Engine, opts Options) *Runner {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if opts.Table == nil {
		opts.Table = sections.Default
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Runner{
		engine: e,
		table:  opts.Table,
		cmp:    compare.New(opts.Table),
		opts:   opts,
		log:    opts.Logger,
	}
}

// Engine returns the engine files are parsed with.
func (r *Runner) Engine() engine.Engine {
	return r.engine
}

// ValidateFile reads and validates one file. Read failures are recorded in
// the result, not returned.
func (r *Runner) ValidateFile(ctx context.Context, path string) FileResult {
	raw, err := os.ReadFile(path)
	if err != nil {
		r.log.Warn("unreadable file", zap.String("file", path), zap.Error(err))
		return FileResult{Path: path, Status: StatusUnreadable, Err: fmt.Errorf("failed to read %s: %w", path, err)}
	}
	return r.ValidateText(ctx, path, string(raw))
}

// ValidateText validates text as if read from path.
func (r *Runner) ValidateText(ctx context.Context, path, text string) FileResult {
	res := FileResult{
		Path:        path,
		Text:        text,
		Occurrences: extractor.ExtractText(r.table, text),
	}

	tree, err := r.engine.Parse(ctx, text)
	if err != nil {
		res.Status = StatusUnparsed
		res.Err = err
		if errors.Is(err, engine.ErrEngineUnavailable) {
			r.log.Error("engine unavailable", zap.String("file", path), zap.String("engine", r.engine.Name()), zap.Error(err))
			return res
		}
		r.log.Debug("parse failed", zap.String("file", path), zap.Error(err))
		if r.opts.Localize && ctx.Err() == nil {
			r.attachBoundary(ctx, &res)
		}
		return res
	}
	res.Tree = tree

	entries, err := extractor.WalkTree(r.table, tree)
	if err != nil {
		res.Status = StatusMalformed
		res.Err = err
		r.log.Warn("malformed parse tree", zap.String("file", path), zap.Error(err))
		return res
	}
	res.Entries = entries

	res.Comparison = r.cmp.Compare(res.Occurrences, entries)
	res.Status = StatusClean
	if !res.Comparison.Consistent {
		res.Status = StatusInconsistent
	}
	r.log.Debug("validated",
		zap.String("file", path),
		zap.String("status", string(res.Status)),
		zap.Int("sections", len(entries)),
		zap.Int("issues", len(res.Comparison.Issues)))
	return res
}

func (r *Runner) attachBoundary(ctx context.Context, res *FileResult) {
	b := localize.Localize(res.Text, localize.Oracle(engine.Oracle(ctx, r.engine)), localize.Options{Lookahead: r.opts.Lookahead})
	res.Boundary = &b
	if !b.Reliable {
		r.log.Warn("parse success is not monotonic in prefix length",
			zap.String("file", res.Path),
			zap.Int("last_good", b.LastGoodLineCount),
			zap.Int("resumed_at", b.ResumedAt))
	}
}

// Run validates paths. Files are processed in parallel unless the runner is
// in early mode, which goes one file at a time and stops after the first
// parse failure. A run fails with the context's error or when the engine
// turns out to be unavailable.
func (r *Runner) Run(ctx context.Context, paths []string) (*Batch, error) {
	if r.opts.Early {
		return r.runEarly(ctx, paths)
	}

	results := make([]FileResult, len(paths))
	p := newProgress(len(paths), r.opts.OnResult)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = r.ValidateFile(gctx, path)
			if err := unavailable(results[i]); err != nil {
				return err
			}
			p.done(i, results[i])
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := &Batch{Results: results, Summary: Summarize(results)}
	r.log.Info("run finished",
		zap.String("engine", r.engine.Name()),
		zap.Int("files", b.Summary.Total),
		zap.Int("clean", b.Summary.Clean),
		zap.Int("unparsed", b.Summary.Unparsed))
	return b, nil
}

func (r *Runner) runEarly(ctx context.Context, paths []string) (*Batch, error) {
	var results []FileResult
	stopped := false
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		res := r.ValidateFile(ctx, path)
		if err := unavailable(res); err != nil {
			return nil, err
		}
		if res.Status == StatusUnparsed && res.Boundary == nil && ctx.Err() == nil {
			r.attachBoundary(ctx, &res)
		}
		results = append(results, res)
		if r.opts.OnResult != nil {
			r.opts.OnResult(i, len(paths), res)
		}
		if res.Status == StatusUnparsed {
			stopped = i < len(paths)-1
			r.log.Info("stopping at first parse failure", zap.String("file", filepath.Base(path)))
			break
		}
	}

	s := Summarize(results)
	s.Stopped = stopped
	return &Batch{Results: results, Summary: s}, nil
}

// unavailable returns the error of a result the engine could not produce.
// Later files would fail the same way, so it ends the run.
func unavailable(res FileResult) error {
	if errors.Is(res.Err, engine.ErrEngineUnavailable) {
		return fmt.Errorf("failed to validate %s: %w", res.Path, res.Err)
	}
	return nil
}

// progress reports finished files in input order.
type progress struct {
	mu      sync.Mutex
	total   int
	next    int
	pending map[int]FileResult
	fn      func(index, total int, res FileResult)
}

func newProgress(total int, fn func(int, int, FileResult)) *progress {
	return &progress{total: total, pending: make(map[int]FileResult), fn: fn}
}

func (p *progress) done(i int, res FileResult) {
	if p.fn == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pending[i] = res
	for {
		r, ok := p.pending[p.next]
		if !ok {
			return
		}
		delete(p.pending, p.next)
		p.fn(p.next, p.total, r)
		p.next++
	}
}
