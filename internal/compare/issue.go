package compare

import (
	"fmt"
	"strings"

	"rtscheck/internal/extractor"
	"rtscheck/internal/sections"
)

// Kind tags an Issue.
type Kind string

const (
	CountMismatch      Kind = "count_mismatch"
	MissingInTree      Kind = "missing_in_tree"
	ExtraInTree        Kind = "extra_in_tree"
	OrderMismatch      Kind = "order_mismatch"
	SectionConsumption Kind = "section_consumption"
)

// Issue is one discrepancy between the text and tree inventories.
//
// Section is the name concerned; for OrderMismatch it is the text-side name
// and Found the tree-side name at Index. Lines are the text lines of Section.
// Consumer and Consumed are set only on consumption issues scoped to the
// header whose body swallowed the following ones.
type Issue struct {
	Kind      Kind                   `json:"kind"`
	Section   sections.Name          `json:"section,omitempty"`
	Found     sections.Name          `json:"found,omitempty"`
	TextCount int                    `json:"text_count"`
	TreeCount int                    `json:"tree_count"`
	Lines     []int                  `json:"lines,omitempty"`
	Index     int                    `json:"index,omitempty"`
	Consumer  *extractor.Occurrence  `json:"consumer,omitempty"`
	Consumed  []extractor.Occurrence `json:"consumed,omitempty"`
	Message   string                 `json:"message"`
	Hint      string                 `json:"hint,omitempty"`
}

// Scoped reports whether the issue names the consuming header.
func (i Issue) Scoped() bool {
	return i.Consumer != nil
}

func (i Issue) String() string {
	return fmt.Sprintf("[%s] %s", i.Kind, i.Message)
}

// CountIssue reports differing totals of one section across a set of files.
func CountIssue(name sections.Name, textCount, treeCount int) Issue {
	return Issue{
		Kind:      CountMismatch,
		Section:   name,
		TextCount: textCount,
		TreeCount: treeCount,
		Message:   fmt.Sprintf("%s: %d in text, %d in parse trees", name, textCount, treeCount),
		Hint:      hintFor(name, textCount, treeCount),
	}
}

func hintFor(name sections.Name, textCount, treeCount int) string {
	switch {
	case textCount > treeCount && textCount >= 2:
		return fmt.Sprintf("a body rule is likely swallowing later %s headers; end section bodies at a recognized header keyword, not at any unindented line", name)
	case textCount > treeCount:
		return fmt.Sprintf("add a rule for %s, or check whether a preceding section's body absorbs it", name)
	case treeCount > textCount:
		return fmt.Sprintf("the grammar produces %s sections the text does not have; look for a misanchored rule", name)
	}
	return ""
}

func missingIssue(name sections.Name, textCount, treeCount int, lines []int) Issue {
	return Issue{
		Kind:      MissingInTree,
		Section:   name,
		TextCount: textCount,
		TreeCount: treeCount,
		Lines:     lines,
		Message:   fmt.Sprintf("section %s at line %s is missing from the parse tree", name, joinInts(lines)),
		Hint:      hintFor(name, textCount, treeCount),
	}
}

func consumedIssue(name sections.Name, textCount, treeCount int, lines []int) Issue {
	return Issue{
		Kind:      SectionConsumption,
		Section:   name,
		TextCount: textCount,
		TreeCount: treeCount,
		Lines:     lines,
		Message:   fmt.Sprintf("section %s appears %d times in text (lines %s) but %d times in the parse tree", name, textCount, joinInts(lines), treeCount),
		Hint:      hintFor(name, textCount, treeCount),
	}
}

func extraIssue(name sections.Name, textCount, treeCount int, lines []int) Issue {
	return Issue{
		Kind:      ExtraInTree,
		Section:   name,
		TextCount: textCount,
		TreeCount: treeCount,
		Lines:     lines,
		Message:   fmt.Sprintf("parse tree has %d %s sections but text has %d", treeCount, name, textCount),
		Hint:      hintFor(name, textCount, treeCount),
	}
}

func orderIssue(index int, want, got sections.Name) Issue {
	return Issue{
		Kind:    OrderMismatch,
		Section: want,
		Found:   got,
		Index:   index,
		Message: fmt.Sprintf("section order differs at position %d: text has %s, parse tree has %s", index, want, got),
		Hint:    "sections must appear in the parse tree in document order; check rules that reorder or regroup sections",
	}
}

func scopedIssue(table *sections.Table, consumer extractor.Occurrence, consumed []extractor.Occurrence) Issue {
	parts := make([]string, len(consumed))
	for i, o := range consumed {
		parts[i] = fmt.Sprintf("%s (line %d)", o.Name, o.Line)
	}
	hint := fmt.Sprintf("end the %s body at the next recognized header keyword", consumer.Name)
	if table.Permissive(consumer.Name) {
		hint = fmt.Sprintf("%s has a free-text body rule; stop it at the next recognized header keyword instead of the next unindented line", consumer.Name)
	}
	c := consumer
	return Issue{
		Kind:     SectionConsumption,
		Section:  consumer.Name,
		Lines:    []int{consumer.Line},
		Consumer: &c,
		Consumed: consumed,
		Message:  fmt.Sprintf("header %s consumed everything after line %d: %s", consumer.Name, consumer.Line, strings.Join(parts, ", ")),
		Hint:     hint,
	}
}

func joinInts(v []int) string {
	parts := make([]string, len(v))
	for i, n := range v {
		parts[i] = fmt.Sprint(n)
	}
	return strings.Join(parts, ", ")
}
