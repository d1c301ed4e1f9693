package report

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rtscheck/internal/compare"
	"rtscheck/internal/engine"
	"rtscheck/internal/extractor"
	"rtscheck/internal/localize"
	"rtscheck/internal/runner"
)

func sampleBatch() *runner.Batch {
	consumed := compare.Compare(
		[]extractor.Occurrence{{Name: "Notes", Line: 1}, {Name: "Parameters", Line: 3}},
		[]extractor.Entry{{Name: "Notes"}},
	)
	results := []runner.FileResult{
		{Path: "samples/a.rts", Status: runner.StatusClean, Comparison: compare.Result{Consistent: true}},
		{Path: "samples/b.rts", Status: runner.StatusInconsistent, Comparison: consumed},
		{
			Path:     "samples/c.rts",
			Status:   runner.StatusUnparsed,
			Err:      engine.NewParseError(engine.Syntax, 7, 1, "unexpected token\nexpected one of ..."),
			Boundary: &localize.Boundary{LastGoodLineCount: 6, TotalLines: 10, Reliable: false, ResumedAt: 8},
		},
		{Path: "samples/d.rts", Status: runner.StatusUnreadable, Err: errors.New("failed to read samples/d.rts")},
	}
	return &runner.Batch{Results: results, Summary: runner.Summarize(results)}
}

func TestReport(t *testing.T) {
	r := New("validate", "fallback")
	r.AddBatch(sampleBatch())
	r.Finalize()

	t.Run("Identity", func(t *testing.T) {
		_, err := uuid.Parse(r.RunID)
		assert.NoError(t, err)
		assert.Equal(t, "fallback", r.Engine)
		assert.NotEqual(t, New("validate", "fallback").RunID, r.RunID)
	})

	t.Run("Entries", func(t *testing.T) {
		require.Len(t, r.Results, 4)
		assert.True(t, r.Results[0].Consistent)
		assert.True(t, r.Results[1].Valid)
		assert.False(t, r.Results[1].Consistent)
		assert.Len(t, r.Results[1].Issues, 2)
		assert.False(t, r.Results[2].Valid)
		assert.Contains(t, r.Results[2].Error, "line 7")
		require.NotNil(t, r.Results[2].Boundary)
	})

	t.Run("Summary", func(t *testing.T) {
		assert.Equal(t, 4, r.Summary.Total)
		assert.Equal(t, 2, r.Summary.Parsed)
		assert.Equal(t, 1, r.Summary.Clean)
		assert.Equal(t, 1, r.Summary.Unparsed)
		assert.Equal(t, 1, r.Summary.Unreadable)
		assert.Equal(t, 2, r.Summary.SignalsBySeverity["critical"])
		assert.Equal(t, 3, r.Summary.SignalsBySeverity["warning"])
	})

	t.Run("Summary matches the run's own", func(t *testing.T) {
		b := sampleBatch()
		b.Summary.Stopped = true
		rr := New("validate", "fallback")
		rr.AddBatch(b)
		rr.Finalize()
		assert.Equal(t, b.Summary, rr.Summary.Summary)
	})

	t.Run("Signals sorted by severity", func(t *testing.T) {
		require.Len(t, r.Signals, 5)
		assert.Equal(t, "critical", r.Signals[0].Severity)
		assert.Equal(t, "parse_failure", r.Signals[0].Code)
		assert.Equal(t, "syntax error at line 7, column 1: unexpected token", r.Signals[0].Message)
		assert.Equal(t, 7, r.Signals[0].Line)
		assert.Equal(t, "unreadable", r.Signals[1].Code)
		for _, s := range r.Signals[2:] {
			assert.Equal(t, "warning", s.Severity)
		}
	})

	t.Run("Incomplete signals are dropped", func(t *testing.T) {
		before := len(r.Signals)
		r.AddSignal("", "x", "info", "m", 0)
		r.AddSignal("c", "x", "info", "  ", 0)
		assert.Len(t, r.Signals, before)
	})

	t.Run("Nil report is a no-op", func(t *testing.T) {
		var nr *Report
		nr.Add(runner.FileResult{})
		nr.Finalize()
		assert.NoError(t, nr.Save(filepath.Join(t.TempDir(), "x.json")))
	})
}

func TestReport_Save(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "report.json")
	r := New("validate", "fallback")
	r.AddBatch(sampleBatch())
	require.NoError(t, r.Save(path))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, r.RunID, decoded["run_id"])

	results := decoded["results"].([]any)
	first := results[0].(map[string]any)
	assert.Equal(t, "samples/a.rts", first["file"])
	assert.Equal(t, true, first["valid"])
	assert.Equal(t, "clean", first["status"])

	summary := decoded["summary"].(map[string]any)
	assert.Equal(t, float64(4), summary["total"])
}
