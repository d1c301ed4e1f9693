// Package extractor derives the ordered inventory of top-level sections from
// a script, once from its raw text and once from the parse tree an engine
// returns. Both sides share one sections.Table.
package extractor

import (
	"fmt"

	"rtscheck/internal/sections"
)

// Occurrence is a header found in the raw text.
type Occurrence struct {
	Name  sections.Name `json:"name"`
	Line  int           `json:"line"`
	Value string        `json:"value,omitempty"`
}

// Entry is a section node found in the parse tree. Line is 0 when the engine
// reports no position.
type Entry struct {
	Name sections.Name `json:"name"`
	Line int           `json:"line,omitempty"`
}

// MalformedTreeError reports a tree whose shape the walker cannot interpret.
type MalformedTreeError struct {
	Kind   string
	Line   int
	Reason string
}

func (e *MalformedTreeError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed tree: %s (node %q at line %d)", e.Reason, e.Kind, e.Line)
	}
	if e.Kind != "" {
		return fmt.Sprintf("malformed tree: %s (node %q)", e.Reason, e.Kind)
	}
	return "malformed tree: " + e.Reason
}

// TextNames projects occurrences onto their names.
func TextNames(occ []Occurrence) []sections.Name {
	res := make([]sections.Name, len(occ))
	for i, o := range occ {
		res[i] = o.Name
	}
	return res
}

// TreeNames projects entries onto their names.
func TreeNames(entries []Entry) []sections.Name {
	res := make([]sections.Name, len(entries))
	for i, e := range entries {
		res[i] = e.Name
	}
	return res
}
