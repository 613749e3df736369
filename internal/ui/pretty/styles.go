// Package pretty renders navigation output for terminals with lipgloss:
// outcome lines, source excerpts with the selection marked, node trees,
// diffs and run summaries. Every renderer also works without color.
package pretty

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// Styles holds the lipgloss styles the renderers use.
type Styles struct {
	// Outcome status.
	Success lipgloss.Style
	Noop    lipgloss.Style
	Error   lipgloss.Style

	// Source excerpts.
	FilePath   lipgloss.Style
	Gutter     lipgloss.Style
	SourceLine lipgloss.Style
	Selection  lipgloss.Style
	Caret      lipgloss.Style

	// Operations and nodes.
	Op       lipgloss.Style
	Kind     lipgloss.Style
	Detail   lipgloss.Style
	Location lipgloss.Style
	Guide    lipgloss.Style

	DiffHeader  lipgloss.Style
	DiffHunk    lipgloss.Style
	DiffAdd     lipgloss.Style
	DiffRemove  lipgloss.Style
	DiffContext lipgloss.Style

	SummaryTitle lipgloss.Style
	SummaryValue lipgloss.Style

	Dim  lipgloss.Style
	Bold lipgloss.Style
}

// ANSI palette indexes.
const (
	red     = "9"
	green   = "10"
	yellow  = "11"
	blue    = "12"
	magenta = "13"
	cyan    = "14"
	grey    = "8"
	silver  = "7"
	white   = "15"
	navy    = "4"
)

// NewStyles returns the styles for a color or a plain terminal. Plain
// styles render text unchanged.
func NewStyles(colorEnabled bool) *Styles {
	fg := func(color string) lipgloss.Style {
		if !colorEnabled {
			return lipgloss.NewStyle()
		}
		return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	}
	bold := func(s lipgloss.Style) lipgloss.Style {
		if !colorEnabled {
			return s
		}
		return s.Bold(true)
	}

	selection := lipgloss.NewStyle()
	if colorEnabled {
		selection = selection.Background(lipgloss.Color(navy)).Foreground(lipgloss.Color(white))
	}
	plain := lipgloss.NewStyle()

	return &Styles{
		Success: bold(fg(green)),
		Noop:    bold(fg(yellow)),
		Error:   bold(fg(red)),

		FilePath:   bold(plain),
		Gutter:     fg(grey),
		SourceLine: fg(silver),
		Selection:  selection,
		Caret:      bold(fg(red)),

		Op:       fg(cyan),
		Kind:     bold(fg(blue)),
		Detail:   fg(magenta),
		Location: fg(grey),
		Guide:    fg(grey),

		DiffHeader:  bold(plain),
		DiffHunk:    fg(cyan),
		DiffAdd:     fg(green),
		DiffRemove:  fg(red),
		DiffContext: fg(grey),

		SummaryTitle: bold(plain),
		SummaryValue: plain,

		Dim:  fg(grey),
		Bold: bold(plain),
	}
}

// IsColorEnabled resolves a color mode of "always", "never" or "auto" for
// writer. Any other mode means auto: color only for a terminal, and only
// when NO_COLOR is unset.
func IsColorEnabled(mode string, writer io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	f, ok := writer.(*os.File)
	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}
