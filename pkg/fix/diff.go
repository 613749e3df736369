package fix

import (
	"fmt"
	"strings"
)

// contextLines is how many unchanged lines surround a hunk.
const contextLines = 3

// LineOp marks a hunk line as kept, added or removed, using the unified
// diff prefix character.
type LineOp byte

const (
	LineKeep   LineOp = ' '
	LineAdd    LineOp = '+'
	LineRemove LineOp = '-'
)

// Line is one line of a hunk, without its newline.
type Line struct {
	Op   LineOp
	Text string
}

func (l Line) String() string {
	return string(l.Op) + l.Text
}

// Hunk is a changed region with its context. Starts are 1-based.
type Hunk struct {
	OldStart, OldCount int
	NewStart, NewCount int
	Lines              []Line
}

// Header returns the "@@ -a,b +c,d @@" line.
func (h Hunk) Header() string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
}

// Diff describes how a document changed over a run of edits. Structural
// edits rewrite one contiguous block of lines, so a diff has a single hunk
// spanning everything between the common leading and trailing lines.
type Diff struct {
	Path      string
	Hunk      Hunk
	Additions int
	Deletions int
}

// GenerateDiff compares two versions of a document. It returns nil when
// they have the same lines.
func GenerateDiff(path string, original, modified []byte) *Diff {
	before, after := splitLines(original), splitLines(modified)

	head := 0
	for head < len(before) && head < len(after) && before[head] == after[head] {
		head++
	}
	if head == len(before) && head == len(after) {
		return nil
	}
	tail := 0
	for tail < len(before)-head && tail < len(after)-head &&
		before[len(before)-1-tail] == after[len(after)-1-tail] {
		tail++
	}

	from := max(0, head-contextLines)
	trailing := before[len(before)-tail:][:min(tail, contextLines)]
	removed := before[head : len(before)-tail]
	added := after[head : len(after)-tail]

	d := &Diff{Path: path, Additions: len(added), Deletions: len(removed)}
	d.Hunk = Hunk{OldStart: from + 1, NewStart: from + 1}
	d.Hunk.Lines = appendLines(d.Hunk.Lines, LineKeep, before[from:head])
	d.Hunk.Lines = appendLines(d.Hunk.Lines, LineRemove, removed)
	d.Hunk.Lines = appendLines(d.Hunk.Lines, LineAdd, added)
	d.Hunk.Lines = appendLines(d.Hunk.Lines, LineKeep, trailing)

	kept := head - from + len(trailing)
	d.Hunk.OldCount = kept + len(removed)
	d.Hunk.NewCount = kept + len(added)
	return d
}

// HasChanges reports whether d adds or removes any line.
func (d *Diff) HasChanges() bool {
	return d != nil && d.Additions+d.Deletions > 0
}

// String renders d as a unified diff, or "" without changes.
func (d *Diff) String() string {
	if !d.HasChanges() {
		return ""
	}
	path := strings.TrimPrefix(d.Path, "/")

	var b strings.Builder
	fmt.Fprintf(&b, "--- a/%s\n+++ b/%s\n%s\n", path, path, d.Hunk.Header())
	for _, line := range d.Hunk.Lines {
		b.WriteString(line.String())
		b.WriteByte('\n')
	}
	return b.String()
}

func appendLines(dst []Line, op LineOp, texts []string) []Line {
	for _, text := range texts {
		dst = append(dst, Line{Op: op, Text: text})
	}
	return dst
}

// splitLines splits content at newlines. A final newline does not start
// another line.
func splitLines(content []byte) []string {
	if len(content) == 0 {
		return nil
	}
	return strings.Split(strings.TrimSuffix(string(content), "\n"), "\n")
}
