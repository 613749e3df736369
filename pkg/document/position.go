package document

import "fmt"

// Position is a zero-based line and UTF-16 code unit offset within that line,
// matching the wire format of the syntax service.
type Position struct {
	Line      int `json:"line" yaml:"line"`
	Character int `json:"character" yaml:"character"`
}

// Compare orders positions by line, then character.
// It returns -1, 0 or +1.
func (p Position) Compare(other Position) int {
	switch {
	case p.Line < other.Line:
		return -1
	case p.Line > other.Line:
		return 1
	case p.Character < other.Character:
		return -1
	case p.Character > other.Character:
		return 1
	default:
		return 0
	}
}

// Before reports whether p sorts strictly before other.
func (p Position) Before(other Position) bool {
	return p.Compare(other) < 0
}

// IsValid reports whether both coordinates are non-negative.
func (p Position) IsValid() bool {
	return p.Line >= 0 && p.Character >= 0
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Character)
}

// Range is a span between two positions. End is exclusive.
// An empty range (Start == End) is how the syntax service reports a node with
// no direct textual representation, such as one produced by macro expansion.
type Range struct {
	Start Position `json:"start" yaml:"start"`
	End   Position `json:"end" yaml:"end"`
}

// NewRange builds a range from four coordinates.
func NewRange(startLine, startChar, endLine, endChar int) Range {
	return Range{
		Start: Position{Line: startLine, Character: startChar},
		End:   Position{Line: endLine, Character: endChar},
	}
}

// PointRange returns the empty range at p.
func PointRange(p Position) Range {
	return Range{Start: p, End: p}
}

// IsEmpty reports whether the range covers no text.
func (r Range) IsEmpty() bool {
	return r.Start == r.End
}

// IsValid reports whether both ends are valid and start <= end.
func (r Range) IsValid() bool {
	return r.Start.IsValid() && r.End.IsValid() && !r.End.Before(r.Start)
}

// Contains reports whether p lies within [Start, End].
// The end is included so a cursor sitting right after a token still hits it.
func (r Range) Contains(p Position) bool {
	return !p.Before(r.Start) && !r.End.Before(p)
}

// ContainsRange reports whether other lies entirely within r.
func (r Range) ContainsRange(other Range) bool {
	return !other.Start.Before(r.Start) && !r.End.Before(other.End)
}

// StrictlyContains reports whether r contains other and is larger than it.
func (r Range) StrictlyContains(other Range) bool {
	return r.ContainsRange(other) && r != other
}

// Adjacent reports whether r touches other at either end without overlapping.
func (r Range) Adjacent(other Range) bool {
	return r.End == other.Start || other.End == r.Start
}

func (r Range) String() string {
	return fmt.Sprintf("%s-%s", r.Start, r.End)
}
