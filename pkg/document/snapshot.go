// Package document provides immutable, versioned views of source text along
// with the position and range types shared by every other package.
//
// A Snapshot is created when a file is opened and replaced atomically on every
// edit; versions only ever grow.
package document

import (
	"errors"
	"fmt"

	"github.com/yaklabco/astnav/pkg/fix"
)

// Errors returned when a range does not fit a snapshot.
var (
	ErrOutOfBounds = errors.New("position out of bounds")
	ErrInverted    = errors.New("range end precedes start")
)

// Snapshot is an immutable view of a document at one version.
type Snapshot struct {
	// URI identifies the document to the syntax service.
	URI string

	// Version increases by one on every edit.
	Version int

	// Content is the full document text.
	Content []byte

	// Lines is the line index built from Content.
	Lines []LineInfo
}

// LineInfo holds metadata for a single line.
type LineInfo struct {
	// StartOffset is the byte index of the line start.
	StartOffset int

	// NewlineStart is the byte index where the line terminator begins.
	// For the last line without a terminator it equals EndOffset.
	NewlineStart int

	// EndOffset is the byte index just after the terminator.
	EndOffset int
}

// NewSnapshot creates a snapshot and builds its line index.
func NewSnapshot(uri string, version int, content []byte) *Snapshot {
	return &Snapshot{
		URI:     uri,
		Version: version,
		Content: content,
		Lines:   BuildLines(content),
	}
}

// Text returns the content as a string.
func (s *Snapshot) Text() string {
	return string(s.Content)
}

// Len returns the content length in bytes.
func (s *Snapshot) Len() int {
	return len(s.Content)
}

// End returns the position just past the last character.
func (s *Snapshot) End() Position {
	return s.PositionAt(len(s.Content))
}

// Full returns the range covering the whole document.
func (s *Snapshot) Full() Range {
	return Range{End: s.End()}
}

// CheckRange verifies that r is ordered and that both ends fall inside the
// document.
func (s *Snapshot) CheckRange(r Range) error {
	if r.End.Before(r.Start) {
		return fmt.Errorf("%w: %s", ErrInverted, r)
	}
	if _, ok := s.OffsetAt(r.Start); !ok {
		return fmt.Errorf("%w: start %s", ErrOutOfBounds, r.Start)
	}
	if _, ok := s.OffsetAt(r.End); !ok {
		return fmt.Errorf("%w: end %s", ErrOutOfBounds, r.End)
	}
	return nil
}

// ByteRange converts r to byte offsets [start, end).
func (s *Snapshot) ByteRange(r Range) (int, int, error) {
	if err := s.CheckRange(r); err != nil {
		return 0, 0, err
	}
	start, _ := s.OffsetAt(r.Start)
	end, _ := s.OffsetAt(r.End)
	return start, end, nil
}

// RangeOf converts byte offsets to a Range.
func (s *Snapshot) RangeOf(start, end int) Range {
	return Range{Start: s.PositionAt(start), End: s.PositionAt(end)}
}

// Slice returns the text covered by r.
func (s *Snapshot) Slice(r Range) (string, error) {
	start, end, err := s.ByteRange(r)
	if err != nil {
		return "", err
	}
	return string(s.Content[start:end]), nil
}

// Apply validates and applies edits, returning the snapshot for the next
// version. The receiver is not modified.
func (s *Snapshot) Apply(edits []fix.TextEdit) (*Snapshot, error) {
	content, err := fix.Splice(s.Content, edits)
	if err != nil {
		return nil, fmt.Errorf("apply edits: %w", err)
	}
	return NewSnapshot(s.URI, s.Version+1, content), nil
}

// WithText returns a snapshot of new content at the given version, as reported
// by the host editor's change feed.
func (s *Snapshot) WithText(version int, content []byte) *Snapshot {
	return NewSnapshot(s.URI, version, content)
}
