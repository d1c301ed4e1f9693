// Package compare diffs the section inventory of a script's text against the
// one read from its parse tree and classifies each discrepancy.
package compare

import (
	"slices"

	"rtscheck/internal/extractor"
	"rtscheck/internal/sections"
)

// Result of a comparison. Consistent holds iff both inventories list the same
// names in the same order, in which case Issues is empty.
type Result struct {
	Consistent bool    `json:"consistent"`
	Issues     []Issue `json:"issues"`
}

// Comparator phrases remediation hints using a header table.
type Comparator struct {
	table *sections.Table
}

// New returns a comparator for table; nil means sections.Default.
func New(table *sections.Table) *Comparator {
	if table == nil {
		table = sections.Default
	}
	return &Comparator{table: table}
}

// Compare runs the default comparator.
func Compare(text []extractor.Occurrence, tree []extractor.Entry) Result {
	return New(nil).Compare(text, tree)
}

// Compare reports count issues per name, the first order divergence among
// names whose counts agree, and one scoped consumption issue per header whose
// body swallowed headers that are missing from the tree.
func (c *Comparator) Compare(text []extractor.Occurrence, tree []extractor.Entry) Result {
	textNames := extractor.TextNames(text)
	treeNames := extractor.TreeNames(tree)
	if slices.Equal(textNames, treeNames) {
		return Result{Consistent: true, Issues: []Issue{}}
	}

	textCount := counts(textNames)
	treeCount := counts(treeNames)
	lines := make(map[sections.Name][]int)
	for _, o := range text {
		lines[o.Name] = append(lines[o.Name], o.Line)
	}

	issues := []Issue{}
	unbalanced := make(map[sections.Name]bool)
	for _, name := range firstAppearance(textNames, treeNames) {
		tc, rc := textCount[name], treeCount[name]
		switch {
		case tc > rc && tc >= 2:
			issues = append(issues, consumedIssue(name, tc, rc, lines[name]))
		case tc > rc:
			issues = append(issues, missingIssue(name, tc, rc, lines[name]))
		case rc > tc:
			issues = append(issues, extraIssue(name, tc, rc, lines[name]))
		default:
			continue
		}
		unbalanced[name] = true
	}

	wantSeq := without(textNames, unbalanced)
	gotSeq := without(treeNames, unbalanced)
	for i := range wantSeq {
		if wantSeq[i] != gotSeq[i] {
			issues = append(issues, orderIssue(i, wantSeq[i], gotSeq[i]))
			break
		}
	}

	issues = append(issues, c.scoped(text, treeNames, textCount, treeCount)...)
	return Result{Consistent: false, Issues: issues}
}

// scoped matches text occurrences against the tree in order. Every unmatched
// occurrence of a name the tree is short of is charged to the nearest matched
// occurrence before it.
func (c *Comparator) scoped(text []extractor.Occurrence, tree []sections.Name, textCount, treeCount map[sections.Name]int) []Issue {
	var res []Issue
	consumer := -1
	var consumed []extractor.Occurrence
	flush := func() {
		if consumer >= 0 && len(consumed) > 0 {
			res = append(res, scopedIssue(c.table, text[consumer], consumed))
		}
		consumed = nil
	}

	next := 0
	for i, o := range text {
		if k := indexFrom(tree, next, o.Name); k >= 0 {
			flush()
			consumer = i
			next = k + 1
			continue
		}
		if consumer >= 0 && textCount[o.Name] > treeCount[o.Name] {
			consumed = append(consumed, o)
		}
	}
	flush()
	return res
}

func indexFrom(seq []sections.Name, from int, name sections.Name) int {
	for i := from; i < len(seq); i++ {
		if seq[i] == name {
			return i
		}
	}
	return -1
}

func counts(names []sections.Name) map[sections.Name]int {
	res := make(map[sections.Name]int, len(names))
	for _, n := range names {
		res[n]++
	}
	return res
}

func firstAppearance(lists ...[]sections.Name) []sections.Name {
	seen := make(map[sections.Name]bool)
	var res []sections.Name
	for _, l := range lists {
		for _, n := range l {
			if !seen[n] {
				seen[n] = true
				res = append(res, n)
			}
		}
	}
	return res
}

func without(names []sections.Name, drop map[sections.Name]bool) []sections.Name {
	res := make([]sections.Name, 0, len(names))
	for _, n := range names {
		if !drop[n] {
			res = append(res, n)
		}
	}
	return res
}
