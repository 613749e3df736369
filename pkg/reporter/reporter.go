// Package reporter writes the result of a navigation run as styled text,
// JSON or a diff.
package reporter

import (
	"context"
	"fmt"
	"os"
)

// Reporter writes a navigation run.
type Reporter interface {
	Report(ctx context.Context, run *Run) error
}

// New returns the Reporter for opts.Format, writing to stdout when
// opts.Writer is nil. An empty format means text.
func New(opts Options) (Reporter, error) {
	if opts.Writer == nil {
		opts.Writer = os.Stdout
	}
	switch opts.Format {
	case FormatText, "":
		return NewTextReporter(opts), nil
	case FormatJSON:
		return NewJSONReporter(opts), nil
	case FormatDiff:
		return NewDiffReporter(opts), nil
	default:
		return nil, fmt.Errorf("unsupported format: %s", opts.Format)
	}
}
