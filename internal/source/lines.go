// Package source splits script text into physical lines and classifies them
// for the line-oriented section rules.
package source

import "strings"

// SplitLines splits text into physical lines. Each line keeps its terminator
// ("\n", "\r\n" or "\r"); the last line has none when text is not terminated.
// Empty text yields no lines.
func SplitLines(text string) []string {
	res := make([]string, 0, strings.Count(text, "\n")+1)
	start := 0
	for i := 0; i < len(text); i++ {
		switch text[i] {
		case '\n':
			res = append(res, text[start:i+1])
			start = i + 1
		case '\r':
			if i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			res = append(res, text[start:i+1])
			start = i + 1
		}
	}
	if start < len(text) {
		res = append(res, text[start:])
	}
	return res
}

// Lines is SplitLines with the terminators removed.
func Lines(text string) []string {
	res := SplitLines(text)
	for i, l := range res {
		res[i] = TrimTerminator(l)
	}
	return res
}

// TrimTerminator removes one trailing line terminator.
func TrimTerminator(line string) string {
	line = strings.TrimSuffix(line, "\n")
	return strings.TrimSuffix(line, "\r")
}

// Kind is the syntactic class of a physical line.
type Kind int

const (
	Blank    Kind = iota // empty or whitespace only
	Comment              // "//" line, or any line touched by a block comment start/inside
	Indented             // starts with a space or tab
	TopLevel             // starts at column one with a non-blank character
)

func (k Kind) String() string {
	switch k {
	case Blank:
		return "blank"
	case Comment:
		return "comment"
	case Indented:
		return "indented"
	case TopLevel:
		return "top-level"
	}
	return "unknown"
}

// Classifier assigns a Kind to consecutive lines, carrying "/* ... */" block
// comment state from one line to the next. The zero value is ready to use.
type Classifier struct {
	inBlock   bool
	blockLine int
}

// Classify returns the Kind of line, which is the lineNo-th line (1-based) of
// the input. Lines inside or opening a block comment are Comment. A line
// with code followed by an unclosed "/*" keeps its own Kind but opens the
// block for the following lines.
func (c *Classifier) Classify(line string, lineNo int) Kind {
	line = TrimTerminator(line)
	if c.inBlock {
		if strings.Contains(line, "*/") {
			c.inBlock = false
		}
		return Comment
	}

	trimmed := strings.TrimLeft(line, " \t")
	switch {
	case trimmed == "":
		return Blank
	case strings.HasPrefix(trimmed, "//"):
		return Comment
	case strings.HasPrefix(trimmed, "/*"):
		c.openIfUnclosed(trimmed[2:], lineNo)
		return Comment
	}

	if i := strings.Index(line, "/*"); i >= 0 {
		if j := strings.Index(line, "//"); j < 0 || j > i {
			c.openIfUnclosed(line[i+2:], lineNo)
		}
	}
	if trimmed != line {
		return Indented
	}
	return TopLevel
}

func (c *Classifier) openIfUnclosed(rest string, lineNo int) {
	if !strings.Contains(rest, "*/") {
		c.inBlock = true
		c.blockLine = lineNo
	}
}

// Unclosed reports whether a block comment is still open, and the line that
// opened it.
func (c *Classifier) Unclosed() (bool, int) {
	return c.inBlock, c.blockLine
}
