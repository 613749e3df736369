package document

import (
	"sort"
	"unicode/utf8"
)

// BuildLines constructs line metadata from content.
// It handles both LF (\n) and CRLF (\r\n) line endings. Empty content still
// has one (empty) line so that position 0:0 is addressable.
func BuildLines(content []byte) []LineInfo {
	var lines []LineInfo
	lineStart := 0

	for idx, char := range content {
		if char != '\n' {
			continue
		}
		newlineStart := idx
		if idx > 0 && content[idx-1] == '\r' {
			newlineStart = idx - 1
		}
		lines = append(lines, LineInfo{
			StartOffset:  lineStart,
			NewlineStart: newlineStart,
			EndOffset:    idx + 1,
		})
		lineStart = idx + 1
	}

	lines = append(lines, LineInfo{
		StartOffset:  lineStart,
		NewlineStart: len(content),
		EndOffset:    len(content),
	})

	return lines
}

// LineCount returns the number of lines in the document.
func (s *Snapshot) LineCount() int {
	return len(s.Lines)
}

// LineContent returns a zero-based line without its terminator, or nil if the
// line does not exist.
func (s *Snapshot) LineContent(line int) []byte {
	if line < 0 || line >= len(s.Lines) {
		return nil
	}
	info := s.Lines[line]
	return s.Content[info.StartOffset:info.NewlineStart]
}

// OffsetAt converts a position to a byte offset.
// Characters are counted in UTF-16 code units. A character past the end of
// the line's text is out of bounds; pointing at the terminator is allowed.
func (s *Snapshot) OffsetAt(pos Position) (int, bool) {
	if !pos.IsValid() || pos.Line >= len(s.Lines) {
		return 0, false
	}

	info := s.Lines[pos.Line]
	offset := info.StartOffset
	units := 0
	for units < pos.Character {
		if offset >= info.NewlineStart {
			return 0, false
		}
		r, size := utf8.DecodeRune(s.Content[offset:info.NewlineStart])
		units += utf16Len(r)
		offset += size
	}
	if units != pos.Character {
		// Position points into the middle of a surrogate pair.
		return 0, false
	}
	return offset, true
}

// PositionAt converts a byte offset to a position, clamping to the document.
func (s *Snapshot) PositionAt(offset int) Position {
	if offset <= 0 {
		return Position{}
	}
	if offset > len(s.Content) {
		offset = len(s.Content)
	}

	lineIdx := sort.Search(len(s.Lines), func(i int) bool {
		return s.Lines[i].EndOffset > offset
	})
	if lineIdx >= len(s.Lines) {
		lineIdx = len(s.Lines) - 1
	}

	info := s.Lines[lineIdx]
	limit := min(offset, info.NewlineStart)
	units := 0
	for cur := info.StartOffset; cur < limit; {
		r, size := utf8.DecodeRune(s.Content[cur:limit])
		units += utf16Len(r)
		cur += size
	}
	return Position{Line: lineIdx, Character: units}
}

func utf16Len(r rune) int {
	if r >= 0x10000 && r <= utf8.MaxRune {
		return 2
	}
	return 1
}
