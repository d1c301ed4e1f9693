package extractor

import (
	"rtscheck/internal/sections"
	"rtscheck/internal/source"
)

// ExtractText returns every header line of text in document order. It never
// fails; text without headers yields an empty, non-nil slice.
func ExtractText(table *sections.Table, text string) []Occurrence {
	res := []Occurrence{}
	var cls source.Classifier
	for i, line := range source.Lines(text) {
		if cls.Classify(line, i+1) != source.TopLevel {
			continue
		}
		if name, value, ok := table.MatchHeader(line); ok {
			res = append(res, Occurrence{Name: name, Line: i + 1, Value: value})
		}
	}
	return res
}

// CountText returns how many times name appears as a header in text.
func CountText(table *sections.Table, text string, name sections.Name) int {
	n := 0
	for _, o := range ExtractText(table, text) {
		if o.Name == name {
			n++
		}
	}
	return n
}
