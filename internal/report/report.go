package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"rtscheck/internal/compare"
	"rtscheck/internal/localize"
	"rtscheck/internal/runner"
)

type Signal struct {
	Code     string `json:"code"`
	File     string `json:"file"`
	Severity string `json:"severity"`
	Message  string `json:"message"`
	Line     int    `json:"line,omitempty"`
}

type FileEntry struct {
	File       string             `json:"file"`
	Valid      bool               `json:"valid"`
	Error      string             `json:"error,omitempty"`
	Status     runner.Status      `json:"status"`
	Consistent bool               `json:"consistent"`
	Issues     []compare.Issue    `json:"issues,omitempty"`
	Boundary   *localize.Boundary `json:"boundary,omitempty"`
}

type Summary struct {
	runner.Summary
	SignalsBySeverity map[string]int `json:"signals_by_severity"`
}

type Report struct {
	Version     string      `json:"version"`
	RunID       string      `json:"run_id"`
	Mode        string      `json:"mode"`
	Engine      string      `json:"engine"`
	GeneratedAt string      `json:"generated_at"`
	DurationMS  int64       `json:"duration_ms"`
	Results     []FileEntry `json:"results"`
	Signals     []Signal    `json:"signals,omitempty"`
	Summary     Summary     `json:"summary"`

	started time.Time
	stopped bool
	counted []runner.FileResult
}

func New(mode, engineName string) *Report {
	now := time.Now().UTC()
	return &Report{
		Version:     "v1",
		RunID:       uuid.NewString(),
		Mode:        mode,
		Engine:      engineName,
		GeneratedAt: now.Format(time.RFC3339),
		Results:     []FileEntry{},
		Signals:     []Signal{},
		started:     now,
	}
}

// AddBatch records every result of a run.
func (r *Report) AddBatch(b *runner.Batch) {
	if r == nil || b == nil {
		return
	}
	for _, res := range b.Results {
		r.Add(res)
	}
	r.stopped = r.stopped || b.Summary.Stopped
}

// Add records one file result and derives its signals.
func (r *Report) Add(res runner.FileResult) {
	if r == nil {
		return
	}
	e := FileEntry{
		File:       res.Path,
		Valid:      res.Parsed(),
		Status:     res.Status,
		Consistent: res.Status == runner.StatusClean,
		Issues:     res.Comparison.Issues,
		Boundary:   res.Boundary,
	}
	if res.Err != nil {
		e.Error = res.Err.Error()
	}
	r.Results = append(r.Results, e)
	r.counted = append(r.counted, runner.FileResult{Path: res.Path, Status: res.Status})

	switch res.Status {
	case runner.StatusUnparsed:
		line := 0
		if pe := res.ParseError(); pe != nil {
			line = pe.Line
		}
		r.AddSignal("parse_failure", res.Path, "critical", firstLine(e.Error), line)
		if res.Boundary != nil && !res.Boundary.Reliable {
			r.AddSignal("non_monotonic_parse", res.Path, "warning",
				fmt.Sprintf("prefix of %d lines parses again after failing at line %d", res.Boundary.ResumedAt, res.Boundary.FailingLine()), res.Boundary.ResumedAt)
		}
	case runner.StatusMalformed, runner.StatusUnreadable:
		r.AddSignal(string(res.Status), res.Path, "critical", firstLine(e.Error), 0)
	case runner.StatusInconsistent:
		for _, is := range res.Comparison.Issues {
			line := 0
			if len(is.Lines) > 0 {
				line = is.Lines[0]
			}
			r.AddSignal(string(is.Kind), res.Path, "warning", is.Message, line)
		}
	}
}

func (r *Report) AddSignal(code, file, severity, message string, line int) {
	if r == nil {
		return
	}
	s := Signal{
		Code:     strings.TrimSpace(code),
		File:     strings.TrimSpace(file),
		Severity: strings.ToLower(strings.TrimSpace(severity)),
		Message:  strings.TrimSpace(message),
		Line:     line,
	}
	if s.Code == "" || s.Severity == "" || s.Message == "" {
		return
	}
	r.Signals = append(r.Signals, s)
}

// Finalize sorts signals by severity and recomputes the summary.
func (r *Report) Finalize() {
	if r == nil {
		return
	}
	now := time.Now().UTC()
	r.GeneratedAt = now.Format(time.RFC3339)
	if !r.started.IsZero() {
		r.DurationMS = now.Sub(r.started).Milliseconds()
	}

	sort.SliceStable(r.Signals, func(i, j int) bool {
		pi := signalPriority(r.Signals[i].Severity)
		pj := signalPriority(r.Signals[j].Severity)
		if pi == pj {
			if r.Signals[i].File == r.Signals[j].File {
				return r.Signals[i].Code < r.Signals[j].Code
			}
			return r.Signals[i].File < r.Signals[j].File
		}
		return pi > pj
	})
	severityCount := map[string]int{
		"critical": 0,
		"warning":  0,
		"info":     0,
	}
	for _, s := range r.Signals {
		severityCount[s.Severity]++
	}

	s := runner.Summarize(r.counted)
	s.Stopped = r.stopped
	r.Summary = Summary{Summary: s, SignalsBySeverity: severityCount}
}

// Save finalizes the report and writes it as indented JSON, creating parent
// directories as needed.
func (r *Report) Save(path string) error {
	if r == nil {
		return nil
	}
	r.Finalize()
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create report directory: %w", err)
	}
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0644)
}

func firstLine(s string) string {
	s, _, _ = strings.Cut(s, "\n")
	return s
}

func signalPriority(severity string) int {
	switch severity {
	case "critical":
		return 3
	case "warning":
		return 2
	default:
		return 1
	}
}
