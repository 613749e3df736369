package reporter

import (
	"fmt"
	"slices"
)

// Format selects how a run is written.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
	FormatDiff Format = "diff"
)

var formats = []Format{FormatText, FormatJSON, FormatDiff}

// ParseFormat reads a --format value. The empty string means text.
func ParseFormat(s string) (Format, error) {
	if s == "" {
		return FormatText, nil
	}
	if f := Format(s); f.IsValid() {
		return f, nil
	}
	return "", fmt.Errorf("unknown format %q; use text, json or diff", s)
}

func (f Format) String() string {
	return string(f)
}

// IsValid reports whether f is a format New accepts.
func (f Format) IsValid() bool {
	return slices.Contains(formats, f)
}
