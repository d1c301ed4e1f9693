// Package localize narrows a parse failure down to the longest line prefix of
// a script that still parses.
package localize

import (
	"strings"

	"rtscheck/internal/parsetree"
	"rtscheck/internal/source"
)

// DefaultLookahead is the number of prefixes probed past the first failing
// line to check that the oracle behaved monotonically.
const DefaultLookahead = 2

// Oracle parses text, returning a tree or an error.
type Oracle func(text string) (*parsetree.Node, error)

type Options struct {
	Lookahead int
}

// DefaultOptions returns the options the CLI uses.
func DefaultOptions() Options {
	return Options{Lookahead: DefaultLookahead}
}

// Boundary is where parsing stops working. PartialText is exactly the first
// LastGoodLineCount lines of the input, terminators included, and PartialTree
// its parse; nil when even the empty text fails.
//
// Reliable is false when a longer prefix beyond the first failing line parsed
// again, in which case ResumedAt is its length in lines.
type Boundary struct {
	LastGoodLineCount int             `json:"last_good_line_count"`
	PartialText       string          `json:"partial_text"`
	PartialTree       *parsetree.Node `json:"partial_tree,omitempty"`
	TotalLines        int             `json:"total_lines"`
	Probes            int             `json:"probes"`
	Reliable          bool            `json:"reliable"`
	ResumedAt         int             `json:"resumed_at,omitempty"`
}

// FailingLine is the 1-based line that first breaks the parse, or 0 when the
// whole text parses.
func (b Boundary) FailingLine() int {
	if b.LastGoodLineCount >= b.TotalLines {
		return 0
	}
	return b.LastGoodLineCount + 1
}

// Localize binary searches the prefix length in [0, n] for the longest prefix
// the oracle accepts. The result is exact when success is monotonic in the
// prefix length.
func Localize(text string, oracle Oracle, opts Options) Boundary {
	lines := source.SplitLines(text)
	prefix := func(n int) string { return strings.Join(lines[:n], "") }

	b := Boundary{TotalLines: len(lines), Reliable: true}
	lo, hi := 0, len(lines)
	for lo <= hi {
		mid := (lo + hi) / 2
		b.Probes++
		tree, err := oracle(prefix(mid))
		if err == nil {
			b.LastGoodLineCount = mid
			b.PartialTree = tree
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}
	b.PartialText = prefix(b.LastGoodLineCount)

	for k := b.LastGoodLineCount + 2; k <= len(lines) && k <= b.LastGoodLineCount+1+opts.Lookahead; k++ {
		b.Probes++
		if _, err := oracle(prefix(k)); err == nil {
			b.Reliable = false
			b.ResumedAt = k
			break
		}
	}
	return b
}
