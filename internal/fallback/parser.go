// Package fallback is a line-oriented checker for the reduced section grammar:
// headers at column one, indented bodies, comments anywhere. It does not look
// inside bodies, so expression syntax is never validated.
package fallback

import (
	"fmt"

	"rtscheck/internal/sections"
	"rtscheck/internal/source"
)

// State is the checker state after a line.
type State int

const (
	NoSection State = iota
	OnSection
	Error
)

func (s State) String() string {
	switch s {
	case NoSection:
		return "no-section"
	case OnSection:
		return "on-section"
	case Error:
		return "error"
	}
	return "unknown"
}

// Fault names the rule an Error state broke.
type Fault int

const (
	NoFault Fault = iota
	BodyOutsideSection
	UnexpectedTopLevel
	UnterminatedComment
)

// Header is a header line accepted by the checker, with the indented body
// lines that followed it.
type Header struct {
	Name  sections.Name
	Line  int
	Value string
	Body  []BodyLine
}

// BodyLine is one indented line of a section body, without its terminator.
type BodyLine struct {
	Line int
	Text string
}

// Result is the final state. Section is set in OnSection; Line and Reason in
// Error. Headers lists the accepted headers up to the stopping point.
type Result struct {
	State   State
	Section sections.Name
	Line    int
	Reason  string
	Fault   Fault
	Headers []Header
}

// OK reports whether the whole input was accepted.
func (r Result) OK() bool {
	return r.State != Error
}

func (r Result) String() string {
	switch r.State {
	case OnSection:
		return fmt.Sprintf("%s(%s)", r.State, r.Section)
	case Error:
		return fmt.Sprintf("%s(line %d: %s)", r.State, r.Line, r.Reason)
	}
	return r.State.String()
}

// Parser runs the checker against a header table.
type Parser struct {
	table *sections.Table
}

// New returns a parser for table; a nil table means sections.Default.
func New(table *sections.Table) *Parser {
	if table == nil {
		table = sections.Default
	}
	return &Parser{table: table}
}

// Check runs the default parser over text.
func Check(text string) Result {
	return New(nil).Check(text)
}

// Check feeds text line by line through the state machine and stops at the
// first error.
func (p *Parser) Check(text string) Result {
	res := Result{State: NoSection, Headers: []Header{}}
	var cls source.Classifier

	for i, line := range source.Lines(text) {
		lineNo := i + 1
		switch cls.Classify(line, lineNo) {
		case source.Blank, source.Comment:
		case source.Indented:
			if res.State != OnSection {
				return res.fail(lineNo, BodyOutsideSection, "indented line outside of a section")
			}
			h := &res.Headers[len(res.Headers)-1]
			h.Body = append(h.Body, BodyLine{Line: lineNo, Text: line})
		case source.TopLevel:
			name, value, ok := p.table.MatchHeader(line)
			if !ok {
				return res.fail(lineNo, UnexpectedTopLevel, fmt.Sprintf("unexpected top-level line %q", line))
			}
			res.State = OnSection
			res.Section = name
			res.Headers = append(res.Headers, Header{Name: name, Line: lineNo, Value: value})
		}
	}

	if open, at := cls.Unclosed(); open {
		return res.fail(at, UnterminatedComment, "unterminated block comment")
	}
	return res
}

func (r Result) fail(line int, f Fault, reason string) Result {
	r.State = Error
	r.Line = line
	r.Fault = f
	r.Reason = reason
	return r
}
