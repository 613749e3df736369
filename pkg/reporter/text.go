package reporter

import (
	"bufio"
	"context"

	"github.com/yaklabco/astnav/internal/ui/pretty"
	"github.com/yaklabco/astnav/pkg/nav"
)

// TextReporter formats runs as styled terminal output.
type TextReporter struct {
	opts   Options
	styles *pretty.Styles
	bw     *bufio.Writer
}

// NewTextReporter creates a new text reporter.
func NewTextReporter(opts Options) *TextReporter {
	colorEnabled := pretty.IsColorEnabled(opts.Color, opts.Writer)
	return &TextReporter{
		opts:   opts,
		styles: pretty.NewStyles(colorEnabled),
		bw:     bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter. Stale steps are not shown.
func (r *TextReporter) Report(_ context.Context, run *Run) (err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	if run == nil {
		return nil
	}

	for _, step := range run.Steps {
		if step.Outcome.Status == nav.StatusStale {
			continue
		}
		r.writeStep(step)
	}

	if r.opts.ShowDiff {
		_, _ = r.bw.WriteString(r.styles.FormatDiff(run.Diff()))
	}

	if r.opts.ShowSummary {
		_, _ = r.bw.WriteString(r.styles.FormatSummary(pretty.Summary{
			Path:     run.Path,
			Commands: len(run.Steps),
			Failed:   run.Failed(),
			Edits:    run.Edits(),
			Version:  run.Version(),
			Stats:    run.Stats,
		}))
	}

	return nil
}

func (r *TextReporter) writeStep(step Step) {
	_, _ = r.bw.WriteString(r.styles.FormatOutcome(step.Outcome, step.Kind))
	_, _ = r.bw.WriteString("\n")
	_, _ = r.bw.WriteString(r.styles.FormatEdits(step.Outcome.Edits))
	if r.opts.ShowSource && step.Outcome.Status == nav.StatusSuccess && step.Snapshot != nil {
		_, _ = r.bw.WriteString(r.styles.FormatSelection(step.Snapshot, step.Outcome.Selection))
	}
}
