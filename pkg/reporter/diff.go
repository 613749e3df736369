package reporter

import (
	"context"
	"fmt"
	"io"

	"github.com/yaklabco/astnav/internal/ui/pretty"
)

// DiffReporter writes only the diff of a run's edits, in git style.
type DiffReporter struct {
	opts   Options
	styles *pretty.Styles
	out    io.Writer
}

// NewDiffReporter creates a new diff reporter.
func NewDiffReporter(opts Options) *DiffReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &DiffReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		out:    opts.Writer,
	}
}

// Report implements Reporter. A run without edits writes nothing.
func (r *DiffReporter) Report(_ context.Context, run *Run) error {
	if run == nil {
		return nil
	}

	diff := run.Diff()
	if !diff.HasChanges() {
		return nil
	}

	if _, err := io.WriteString(r.out, r.styles.FormatDiff(diff)); err != nil {
		return fmt.Errorf("write diff: %w", err)
	}

	if r.opts.ShowSummary {
		summary := fmt.Sprintf("%s, %s\n",
			r.styles.Success.Render(countNoun(diff.Additions, "insertion")+"(+)"),
			r.styles.Error.Render(countNoun(diff.Deletions, "deletion")+"(-)"),
		)
		if _, err := io.WriteString(r.out, summary); err != nil {
			return fmt.Errorf("write diff: %w", err)
		}
	}

	return nil
}

func countNoun(n int, noun string) string {
	if n == 1 {
		return "1 " + noun
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
