package console

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

var (
	Success = lipgloss.Color("#8BC34A")
	Warning = lipgloss.Color("#FFC107")
	Failure = lipgloss.Color("#e53935")
	Info    = lipgloss.Color("#2196F3")
	Muted   = lipgloss.Color("#8a94a6")
)

// Styles bundles the console styles. They render as plain text when the
// writer is not a terminal.
type Styles struct {
	Pass    lipgloss.Style
	Warn    lipgloss.Style
	Fail    lipgloss.Style
	Title   lipgloss.Style
	Marker  lipgloss.Style
	Dim     lipgloss.Style
	Section lipgloss.Style
}

// NewStyles builds styles whose color profile is detected from w.
func NewStyles(w io.Writer) Styles {
	r := lipgloss.NewRenderer(w)
	return Styles{
		Pass:    r.NewStyle().Foreground(Success).Bold(true),
		Warn:    r.NewStyle().Foreground(Warning).Bold(true),
		Fail:    r.NewStyle().Foreground(Failure).Bold(true),
		Title:   r.NewStyle().Bold(true),
		Marker:  r.NewStyle().Foreground(Failure),
		Dim:     r.NewStyle().Foreground(Muted),
		Section: r.NewStyle().Foreground(Info),
	}
}
