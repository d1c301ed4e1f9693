package runner

import (
	"context"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"rtscheck/internal/compare"
	"rtscheck/internal/extractor"
	"rtscheck/internal/sections"
)

// CountRow is one file's tally for a single section name.
type CountRow struct {
	Path   string
	Text   int
	Tree   int
	Status Status
	Err    error
}

// CountReport tallies one section name across files. Issue is set when the
// totals differ.
type CountReport struct {
	Section       sections.Name
	Rows          []CountRow
	TotalText     int
	TotalTree     int
	ParseFailures int
	Issue         *compare.Issue
}

// CountSection counts name in the text and in the parse tree of every file.
// Files that fail to parse contribute their text count only.
func (r *Runner) CountSection(ctx context.Context, paths []string, name sections.Name) (*CountReport, error) {
	rows := make([]CountRow, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.opts.Workers)
	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res := r.ValidateFile(gctx, path)
			if err := unavailable(res); err != nil {
				return err
			}
			row := CountRow{
				Path:   path,
				Text:   extractor.CountText(r.table, res.Text, name),
				Status: res.Status,
				Err:    res.Err,
			}
			for _, e := range res.Entries {
				if e.Name == name {
					row.Tree++
				}
			}
			rows[i] = row
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	rep := &CountReport{Section: name, Rows: rows}
	for _, row := range rows {
		rep.TotalText += row.Text
		rep.TotalTree += row.Tree
		if row.Status == StatusUnparsed {
			rep.ParseFailures++
		}
	}
	if rep.TotalText != rep.TotalTree {
		is := compare.CountIssue(name, rep.TotalText, rep.TotalTree)
		rep.Issue = &is
	}
	r.log.Debug("section count",
		zap.String("section", string(name)),
		zap.Int("text", rep.TotalText),
		zap.Int("tree", rep.TotalTree),
		zap.Int("parse_failures", rep.ParseFailures))
	return rep, nil
}
