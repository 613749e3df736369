// Package fix provides text splice types and the logic to validate and apply
// them to a document's bytes.
package fix

// TextEdit represents a single text replacement.
type TextEdit struct {
	// StartOffset is the byte index where the edit begins (inclusive).
	StartOffset int

	// EndOffset is the byte index where the edit ends (exclusive).
	EndOffset int

	// NewText is the replacement text.
	NewText string
}

// IsInsert reports whether the edit removes nothing.
func (e TextEdit) IsInsert() bool {
	return e.StartOffset == e.EndOffset
}

// Delta returns how much the edit grows (positive) or shrinks the content.
func (e TextEdit) Delta() int {
	return len(e.NewText) - (e.EndOffset - e.StartOffset)
}

// EditBuilder accumulates the edits making up one splice.
type EditBuilder struct {
	Edits []TextEdit
}

// NewEditBuilder creates a new EditBuilder.
func NewEditBuilder() *EditBuilder {
	return &EditBuilder{
		Edits: make([]TextEdit, 0, 2),
	}
}

// ReplaceRange adds an edit that replaces bytes [start, end) with newText.
func (b *EditBuilder) ReplaceRange(start, end int, newText string) *EditBuilder {
	b.Edits = append(b.Edits, TextEdit{
		StartOffset: start,
		EndOffset:   end,
		NewText:     newText,
	})
	return b
}

// Insert adds an edit that inserts text at the given offset.
func (b *EditBuilder) Insert(offset int, text string) *EditBuilder {
	return b.ReplaceRange(offset, offset, text)
}

// Delete adds an edit that deletes bytes [start, end).
func (b *EditBuilder) Delete(start, end int) *EditBuilder {
	return b.ReplaceRange(start, end, "")
}

// Move adds the edits that cut bytes [start, end) out of content and insert
// them at dest. dest must lie outside the moved span.
func (b *EditBuilder) Move(content []byte, start, end, dest int) *EditBuilder {
	text := string(content[start:end])
	return b.Insert(dest, text).Delete(start, end)
}

// ShiftOffset maps an offset in the original content to its place after the
// given sorted edits are applied. Offsets inside a replaced span map to the
// start of its replacement.
func ShiftOffset(offset int, edits []TextEdit) int {
	shift := 0
	for _, e := range edits {
		if e.StartOffset > offset {
			break
		}
		if e.IsInsert() && e.StartOffset == offset {
			// Text inserted at the offset lands before it.
			shift += len(e.NewText)
			continue
		}
		if offset < e.EndOffset {
			return e.StartOffset + shift
		}
		shift += e.Delta()
	}
	return offset + shift
}
