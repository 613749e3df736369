package fix

import (
	"errors"
	"fmt"
	"slices"
)

// Splice errors. Both are wrapped in an *EditError.
var (
	ErrOutOfRange = errors.New("edit outside content")
	ErrOverlap    = errors.New("overlapping edits")
)

// EditError reports the edit that made a splice invalid. Conflict is the
// earlier edit it overlaps, for ErrOverlap.
type EditError struct {
	Edit     TextEdit
	Conflict *TextEdit
	Err      error
}

func (e *EditError) Error() string {
	if e.Conflict != nil {
		return fmt.Sprintf("%v: [%d:%d] and [%d:%d]", e.Err,
			e.Conflict.StartOffset, e.Conflict.EndOffset, e.Edit.StartOffset, e.Edit.EndOffset)
	}
	return fmt.Sprintf("%v: [%d:%d]", e.Err, e.Edit.StartOffset, e.Edit.EndOffset)
}

func (e *EditError) Unwrap() error {
	return e.Err
}

// Sorted returns the edits ordered by start, then end offset. Insertions at
// the same offset keep their relative order, and an insertion sorts before
// a replacement starting where it does.
func Sorted(edits []TextEdit) []TextEdit {
	out := slices.Clone(edits)
	slices.SortStableFunc(out, func(a, b TextEdit) int {
		if a.StartOffset != b.StartOffset {
			return a.StartOffset - b.StartOffset
		}
		return a.EndOffset - b.EndOffset
	})
	return out
}

// Splice applies edits to content and returns the new content. Edits may be
// given in any order; they must lie within content and must not overlap,
// though an insertion may touch a replaced span. The result never aliases
// content.
func Splice(content []byte, edits []TextEdit) ([]byte, error) {
	sorted := Sorted(edits)

	size := len(content)
	for i, e := range sorted {
		if e.StartOffset < 0 || e.EndOffset < e.StartOffset || e.EndOffset > len(content) {
			return nil, &EditError{Edit: e, Err: ErrOutOfRange}
		}
		if i > 0 && e.StartOffset < sorted[i-1].EndOffset {
			prev := sorted[i-1]
			return nil, &EditError{Edit: e, Conflict: &prev, Err: ErrOverlap}
		}
		size += e.Delta()
	}

	out := make([]byte, 0, size)
	cursor := 0
	for _, e := range sorted {
		out = append(out, content[cursor:e.StartOffset]...)
		out = append(out, e.NewText...)
		cursor = e.EndOffset
	}
	return append(out, content[cursor:]...), nil
}
