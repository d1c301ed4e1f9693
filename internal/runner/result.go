package runner

import (
	"errors"

	"rtscheck/internal/compare"
	"rtscheck/internal/engine"
	"rtscheck/internal/extractor"
	"rtscheck/internal/localize"
	"rtscheck/internal/parsetree"
)

// Status is the outcome of validating one file.
type Status string

const (
	StatusClean        Status = "clean"
	StatusInconsistent Status = "inconsistent"
	StatusUnparsed     Status = "unparsed"
	StatusMalformed    Status = "malformed"
	StatusUnreadable   Status = "unreadable"
)

// FileResult holds everything learned about one file. Tree, Entries and
// Comparison are set only when the engine parsed the file; Boundary only
// when localization was requested for a parse failure.
type FileResult struct {
	Path        string
	Status      Status
	Text        string
	Occurrences []extractor.Occurrence
	Entries     []extractor.Entry
	Tree        *parsetree.Node
	Comparison  compare.Result
	Err         error
	Boundary    *localize.Boundary
}

// Parsed reports whether the engine accepted the file.
func (r FileResult) Parsed() bool {
	return r.Status == StatusClean || r.Status == StatusInconsistent || r.Status == StatusMalformed
}

// ParseError returns the engine's positioned error, if any.
func (r FileResult) ParseError() *engine.ParseError {
	var pe *engine.ParseError
	if errors.As(r.Err, &pe) {
		return pe
	}
	return nil
}

// Summary counts results per status. Parsed includes clean, inconsistent and
// malformed files. Stopped is set when an early run ended before the last
// file.
type Summary struct {
	Total        int  `json:"total"`
	Parsed       int  `json:"parsed"`
	Clean        int  `json:"clean"`
	Inconsistent int  `json:"inconsistent"`
	Unparsed     int  `json:"unparsed"`
	Malformed    int  `json:"malformed"`
	Unreadable   int  `json:"unreadable"`
	Stopped      bool `json:"stopped,omitempty"`
}

// Summarize counts results.
func Summarize(results []FileResult) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		if r.Parsed() {
			s.Parsed++
		}
		switch r.Status {
		case StatusClean:
			s.Clean++
		case StatusInconsistent:
			s.Inconsistent++
		case StatusUnparsed:
			s.Unparsed++
		case StatusMalformed:
			s.Malformed++
		case StatusUnreadable:
			s.Unreadable++
		}
	}
	return s
}

// OK reports whether every file is clean.
func (s Summary) OK() bool {
	return s.Clean == s.Total
}

// ExitCode is 1 when any file is inconsistent, malformed or unreadable, or
// unparsed while parse failures count.
func (s Summary) ExitCode(sectionCheckOnly bool) int {
	if s.Inconsistent > 0 || s.Malformed > 0 || s.Unreadable > 0 {
		return 1
	}
	if s.Unparsed > 0 && !sectionCheckOnly {
		return 1
	}
	return 0
}

// Batch is the result of a run, in input order.
type Batch struct {
	Results []FileResult
	Summary Summary
}
