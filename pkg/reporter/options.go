package reporter

import "io"

const bufWriterSize = 64 * 1024

// Options configures a Reporter.
type Options struct {
	Writer io.Writer
	Format Format

	// Color is a mode for pretty.IsColorEnabled: auto, always or never.
	Color string

	// ShowSource prints the selected source under each successful step.
	ShowSource bool

	// ShowDiff appends a diff of the run's edits.
	ShowDiff bool

	// ShowSummary appends the run summary and query statistics.
	ShowSummary bool

	// Compact writes JSON on a single line.
	Compact bool
}
