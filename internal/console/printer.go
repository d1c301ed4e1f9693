// Package console prints validation progress and diagnostics for people.
package console

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/go-cmp/cmp"

	"rtscheck/internal/compare"
	"rtscheck/internal/extractor"
	"rtscheck/internal/fallback"
	"rtscheck/internal/localize"
	"rtscheck/internal/parsetree"
	"rtscheck/internal/runner"
	"rtscheck/internal/source"
)

const (
	contextRadius = 5
	boundaryLines = 10
	rule          = 50
)

type Printer struct {
	w     io.Writer
	style Styles
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, style: NewStyles(w)}
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

// Title prints a heading underlined with "=".
func (p *Printer) Title(title string) {
	p.printf("%s\n%s\n", p.style.Title.Render(title), strings.Repeat("=", rule))
}

// Progress prints one line per validated file; index is 0-based.
func (p *Printer) Progress(index, total int, res runner.FileResult) {
	p.printf("[%3d/%d] %s... %s\n", index+1, total, filepath.Base(res.Path), p.label(res.Status))
}

func (p *Printer) label(s runner.Status) string {
	switch s {
	case runner.StatusClean:
		return p.style.Pass.Render("✓ PASS")
	case runner.StatusInconsistent:
		return p.style.Warn.Render("⚠ PARSE OK, SECTION ISSUES")
	case runner.StatusMalformed:
		return p.style.Fail.Render("✗ MALFORMED TREE")
	case runner.StatusUnreadable:
		return p.style.Fail.Render("✗ UNREADABLE")
	}
	return p.style.Fail.Render("✗ FAIL")
}

// ErrorContext prints the error with the lines around its position, the
// failing line marked and a caret under the column.
func (p *Printer) ErrorContext(res runner.FileResult) {
	p.printf("\nFile: %s\n", res.Path)
	p.printf("Error: %v\n", res.Err)

	pe := res.ParseError()
	if pe == nil || pe.Line < 1 || res.Text == "" {
		return
	}
	lines := source.Lines(res.Text)
	errIdx := pe.Line - 1
	start := max(0, errIdx-contextRadius)
	end := min(len(lines), errIdx+contextRadius+1)

	p.printf("\n---- Code Context ----\n")
	for i := start; i < end; i++ {
		if i != errIdx {
			p.printf("%4d | %s\n", i+1, lines[i])
			continue
		}
		prefix := fmt.Sprintf("%4d > ", i+1)
		p.printf("%s%s\n", p.style.Marker.Render(prefix), lines[i])
		if pe.Column > 0 {
			p.printf("%s%s\n", strings.Repeat(" ", len(prefix)+pe.Column-1), p.style.Marker.Render("^"))
		}
	}
	p.printf("%s\n", strings.Repeat("-", 20))
}

// Boundary prints the localized failure point: the partial tree, the last
// good lines and the lines after them, the first one marked.
func (p *Printer) Boundary(b *localize.Boundary, text string) {
	if b == nil {
		return
	}
	p.printf("Last successfully parsed line: %d\n", b.LastGoodLineCount)
	if !b.Reliable {
		p.printf("%s\n", p.style.Warn.Render(fmt.Sprintf(
			"warning: a %d-line prefix parses again; the boundary is approximate", b.ResumedAt)))
	}

	if b.PartialTree != nil {
		p.printf("\nParse tree for last successful content:\n%s\n", strings.Repeat("=", rule))
		p.printf("%s", parsetree.Pretty(b.PartialTree))
		p.printf("%s\n", strings.Repeat("=", rule))
	}

	p.printf("Last successfully parsed content:\n%s\n", strings.Repeat("-", 30))
	good := source.Lines(b.PartialText)
	from := max(0, len(good)-boundaryLines)
	for i := from; i < len(good); i++ {
		p.printf("%3d: %s\n", i+1, good[i])
	}
	p.printf("%s\n\n", strings.Repeat("-", 30))

	all := source.Lines(text)
	if b.LastGoodLineCount >= len(all) {
		return
	}
	p.printf("Next lines (where parsing fails):\n%s\n", strings.Repeat("-", 30))
	end := min(len(all), b.LastGoodLineCount+boundaryLines)
	for i := b.LastGoodLineCount; i < end; i++ {
		marker := "    "
		if i == b.LastGoodLineCount {
			marker = p.style.Marker.Render(">>> ")
		}
		p.printf("%s%3d: %s\n", marker, i+1, all[i])
	}
	p.printf("%s\n", strings.Repeat("-", 30))
}

// SectionAnalysis prints both inventories and the diff between their name
// sequences.
func (p *Printer) SectionAnalysis(res runner.FileResult) {
	p.printf("\n🔍 Section Analysis for %s\n%s\n", filepath.Base(res.Path), strings.Repeat("=", 60))

	p.printf("Sections found in text (%d):\n", len(res.Occurrences))
	for _, o := range res.Occurrences {
		if o.Value != "" {
			p.printf("  - %s (line %d): %s\n", p.style.Section.Render(string(o.Name)), o.Line, o.Value)
		} else {
			p.printf("  - %s (line %d)\n", p.style.Section.Render(string(o.Name)), o.Line)
		}
	}

	counts := make(map[string]int)
	for _, e := range res.Entries {
		counts[string(e.Name)]++
	}
	names := make([]string, 0, len(counts))
	for n := range counts {
		names = append(names, n)
	}
	sort.Strings(names)
	p.printf("\nSections found in parse tree (%d):\n", len(res.Entries))
	for _, n := range names {
		suffix := ""
		if counts[n] > 1 {
			suffix = fmt.Sprintf(" (×%d)", counts[n])
		}
		p.printf("  - %s%s\n", p.style.Section.Render(n), suffix)
	}

	if d := cmp.Diff(extractor.TextNames(res.Occurrences), extractor.TreeNames(res.Entries)); d != "" {
		p.printf("\nSequence diff (-text +tree):\n%s", d)
	}
	p.printf("%s\n", strings.Repeat("=", 60))
}

// Issues prints comparator issues with their remediation hints.
func (p *Printer) Issues(issues []compare.Issue) {
	for _, is := range issues {
		p.printf("    * %s\n", is.Message)
		if is.Hint != "" {
			p.printf("      %s %s\n", p.style.Dim.Render("fix:"), is.Hint)
		}
	}
}

// Summary prints the end-of-run report. The first failure's context is shown
// unless the run was early or parse failures are ignored.
func (p *Printer) Summary(b *runner.Batch, early, sectionCheckOnly bool) {
	s := b.Summary
	p.printf("\n%s\n", strings.Repeat("=", rule))
	p.Title("VALIDATION SUMMARY")

	pct := func(n int) float64 {
		if s.Total == 0 {
			return 0
		}
		return float64(n) / float64(s.Total) * 100
	}
	p.printf("Total files: %d\n", s.Total)
	p.printf("Parse successful: %d (%.1f%%)\n", s.Parsed, pct(s.Parsed))
	p.printf("  - Clean parse: %d (%.1f%%)\n", s.Clean, pct(s.Clean))
	p.printf("  - Section issues: %d (%.1f%%)\n", s.Inconsistent, pct(s.Inconsistent))
	if s.Malformed > 0 {
		p.printf("  - Malformed trees: %d (%.1f%%)\n", s.Malformed, pct(s.Malformed))
	}
	p.printf("Parse failed: %d (%.1f%%)\n", s.Unparsed, pct(s.Unparsed))
	if s.Unreadable > 0 {
		p.printf("Unreadable: %d (%.1f%%)\n", s.Unreadable, pct(s.Unreadable))
	}

	var clean, issues, failed []runner.FileResult
	for _, r := range b.Results {
		switch r.Status {
		case runner.StatusClean:
			clean = append(clean, r)
		case runner.StatusInconsistent:
			issues = append(issues, r)
		default:
			failed = append(failed, r)
		}
	}

	if len(clean) > 0 {
		p.printf("\n%s\n", p.style.Pass.Render("✓ Clean files (no issues):"))
		for _, r := range clean {
			p.printf("  - %s\n", filepath.Base(r.Path))
		}
	}
	if len(issues) > 0 {
		p.printf("\n%s\n", p.style.Warn.Render("⚠ Files with section parsing issues:"))
		for _, r := range issues {
			p.printf("\n  - %s:\n", filepath.Base(r.Path))
			p.Issues(r.Comparison.Issues)
		}
	}
	if len(failed) > 0 {
		p.printf("\n%s\n", p.style.Fail.Render("✗ Failed files:"))
		for _, r := range failed {
			p.printf("  - %s\n", filepath.Base(r.Path))
			if r.Err != nil {
				msg, _, _ := strings.Cut(r.Err.Error(), "\n")
				p.printf("    Error: %s\n", msg)
			}
		}
		if !early && !sectionCheckOnly {
			p.printf("\nFirst failure to fix:\n")
			p.ErrorContext(failed[0])
		}
	}

	switch {
	case s.Stopped:
		p.printf("\nStopped at the first parse failure.\n")
	case s.Total > 0 && s.OK():
		p.printf("\n%s\n", p.style.Pass.Render("✨ All files parsed successfully with no section issues! ✨"))
	case len(failed) == 0 && len(issues) > 0:
		p.printf("\n%s\n", p.style.Warn.Render(fmt.Sprintf("⚠ All files parse but %d have section issues that need attention.", len(issues))))
	}
}

// CountTable prints the section-count mode result.
func (p *Printer) CountTable(rep *runner.CountReport) {
	p.printf("Section Count Analysis: %s\n%s\n", rep.Section, strings.Repeat("=", rule))
	line := strings.Repeat("-", 70)
	p.printf("%s\n%-30s %-5s %-5s %s\n%s\n", line, "File", "Text", "Tree", "Status", line)
	for _, row := range rep.Rows {
		status := "OK"
		switch row.Status {
		case runner.StatusUnparsed:
			status = "PARSE_FAIL"
		case runner.StatusUnreadable, runner.StatusMalformed:
			status = "ERROR"
		}
		p.printf("%-30s %-5d %-5d %s\n", filepath.Base(row.Path), row.Text, row.Tree, status)
	}
	p.printf("%s\n%-30s %-5d %-5d (%d parse failures)\n", line, "TOTAL", rep.TotalText, rep.TotalTree, rep.ParseFailures)

	if rep.Issue != nil {
		p.printf("\n%s\n", p.style.Warn.Render(fmt.Sprintf("⚠ Mismatch: %d in text, %d in parse tree", rep.TotalText, rep.TotalTree)))
		p.printf("  %s %s\n", p.style.Dim.Render("fix:"), rep.Issue.Hint)
		return
	}
	p.printf("\n%s\n", p.style.Pass.Render(fmt.Sprintf("✓ All %d '%s' sections accounted for!", rep.TotalText, rep.Section)))
}

// CheckResult prints the fallback checker verdict for one file.
func (p *Printer) CheckResult(path string, res fallback.Result) {
	if res.OK() {
		p.printf("%s: %s (%d sections, final state %s)\n", filepath.Base(path), p.style.Pass.Render("✓ OK"), len(res.Headers), res)
		return
	}
	p.printf("%s: %s line %d: %s\n", filepath.Base(path), p.style.Fail.Render("✗ FAIL"), res.Line, res.Reason)
}
