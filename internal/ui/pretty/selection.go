package pretty

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/nav"
)

const (
	tabWidth = 4

	// Selections longer than this show their first and last lines only.
	maxSelectionLines = 12
	elidedKeep        = 5

	opColumnWidth = 12
)

// FormatSelection renders the source lines spanned by r with a line number
// gutter and the selected text highlighted. An empty range is marked with a
// caret under its position. Returns "" if r does not fit snap.
func (s *Styles) FormatSelection(snap *document.Snapshot, r document.Range) string {
	start, end, err := snap.ByteRange(r)
	if err != nil {
		return ""
	}

	first, last := r.Start.Line, r.End.Line
	width := len(strconv.Itoa(last + 1))

	var builder strings.Builder
	for _, line := range visibleLines(first, last) {
		if line < 0 {
			hidden := last - first + 1 - 2*elidedKeep
			builder.WriteString(s.gutter(width, "") +
				s.Dim.Render(fmt.Sprintf("... %d more lines", hidden)) + "\n")
			continue
		}

		info := snap.Lines[line]
		text := snap.Content[info.StartOffset:info.NewlineStart]
		lo := clamp(start-info.StartOffset, 0, len(text))
		hi := clamp(end-info.StartOffset, 0, len(text))

		before, col := expandTabs(text[:lo], 0)
		mid, col := expandTabs(text[lo:hi], col)
		after, _ := expandTabs(text[hi:], col)

		builder.WriteString(s.gutter(width, strconv.Itoa(line+1)))
		builder.WriteString(render(s.SourceLine, before))
		builder.WriteString(render(s.Selection, mid))
		builder.WriteString(render(s.SourceLine, after))
		builder.WriteString("\n")

		if r.IsEmpty() {
			padding := strings.Repeat(" ", lipgloss.Width(before))
			builder.WriteString(s.gutter(width, "") + padding + s.Caret.Render("^") + "\n")
		}
	}

	return builder.String()
}

// FormatOutcome formats a command result as a single line. kind describes
// the focused node and may be empty.
func (s *Styles) FormatOutcome(o nav.Outcome, kind string) string {
	op := s.Op.Render(fmt.Sprintf("%-*s", opColumnWidth, o.Op))

	switch o.Status {
	case nav.StatusSuccess:
		line := op + " " + s.Kind.Render(kind) + "  " + s.Location.Render(o.Selection.String())
		if o.Err != nil {
			line += "  " + s.Noop.Render(o.Reason)
		}
		return line
	case nav.StatusNoop:
		return op + " " + s.Noop.Render("noop") + "  " + o.Reason
	case nav.StatusError:
		msg := o.Reason
		if o.Err != nil {
			msg += ": " + o.Err.Error()
		}
		return op + " " + s.Error.Render("error") + "  " + msg
	default:
		return op + " " + s.Dim.Render(o.Status.String())
	}
}

// FormatEdits lists the splices of an edit command, one per line.
func (s *Styles) FormatEdits(edits []nav.AppliedEdit) string {
	var builder strings.Builder
	for _, edit := range edits {
		builder.WriteString(strings.Repeat(" ", opColumnWidth+1))
		builder.WriteString(s.Dim.Render("edit ") + s.Location.Render(edit.Range.String()))
		builder.WriteString(" -> " + strconv.Quote(edit.NewText) + "\n")
	}
	return builder.String()
}

func (s *Styles) gutter(width int, label string) string {
	return s.Gutter.Render(fmt.Sprintf("%*s | ", width, label))
}

// visibleLines lists the line numbers to print, with -1 marking an elision.
func visibleLines(first, last int) []int {
	count := last - first + 1
	lines := make([]int, 0, min(count, maxSelectionLines))
	if count <= maxSelectionLines {
		for line := first; line <= last; line++ {
			lines = append(lines, line)
		}
		return lines
	}
	for line := first; line < first+elidedKeep; line++ {
		lines = append(lines, line)
	}
	lines = append(lines, -1)
	for line := last - elidedKeep + 1; line <= last; line++ {
		lines = append(lines, line)
	}
	return lines
}

// expandTabs replaces tabs with spaces up to the next tab stop, starting at
// display column col, and returns the text and the column after it.
func expandTabs(text []byte, col int) (string, int) {
	var builder strings.Builder
	for len(text) > 0 {
		r, size := utf8.DecodeRune(text)
		text = text[size:]
		if r == '\t' {
			n := tabWidth - col%tabWidth
			builder.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		builder.WriteRune(r)
		col += lipgloss.Width(string(r))
	}
	return builder.String(), col
}

func render(style lipgloss.Style, text string) string {
	if text == "" {
		return ""
	}
	return style.Render(text)
}

func clamp(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
