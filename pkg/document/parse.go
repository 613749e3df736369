package document

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrSyntax is returned for malformed position or range text.
var ErrSyntax = errors.New("invalid position syntax")

// ParsePosition parses "LINE:CHAR" in the zero-based form Position.String
// produces.
func ParsePosition(text string) (Position, error) {
	lineText, charText, ok := strings.Cut(strings.TrimSpace(text), ":")
	if !ok {
		return Position{}, fmt.Errorf("%w: %q: want LINE:CHAR", ErrSyntax, text)
	}
	line, err := strconv.Atoi(lineText)
	if err != nil {
		return Position{}, fmt.Errorf("%w: %q: bad line", ErrSyntax, text)
	}
	char, err := strconv.Atoi(charText)
	if err != nil {
		return Position{}, fmt.Errorf("%w: %q: bad character", ErrSyntax, text)
	}
	pos := Position{Line: line, Character: char}
	if !pos.IsValid() {
		return Position{}, fmt.Errorf("%w: %q: negative coordinate", ErrSyntax, text)
	}
	return pos, nil
}

// ParseRange parses "L:C-L:C" as produced by Range.String. A single
// position yields an empty range.
func ParseRange(text string) (Range, error) {
	startText, endText, ok := strings.Cut(strings.TrimSpace(text), "-")
	start, err := ParsePosition(startText)
	if err != nil {
		return Range{}, err
	}
	if !ok {
		return PointRange(start), nil
	}
	end, err := ParsePosition(endText)
	if err != nil {
		return Range{}, err
	}
	r := Range{Start: start, End: end}
	if !r.IsValid() {
		return Range{}, fmt.Errorf("%w: %q", ErrInverted, text)
	}
	return r, nil
}
