package reporter

import (
	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/fix"
	"github.com/yaklabco/astnav/pkg/nav"
	"github.com/yaklabco/astnav/pkg/query"
)

// Step is one executed command.
type Step struct {
	Outcome nav.Outcome

	// Kind is the cursor node's kind after the command, if any.
	Kind string

	// Snapshot is the document after the command.
	Snapshot *document.Snapshot
}

// Run is the result of running a command sequence on one file.
type Run struct {
	Path     string
	Original []byte
	Steps    []Step
	Stats    query.Stats

	// Final is the document after the last command.
	Final *document.Snapshot

	// Written reports whether the edited text was saved.
	Written bool
}

// Failed counts steps with an error status.
func (r *Run) Failed() int {
	var n int
	for _, step := range r.Steps {
		if step.Outcome.Status == nav.StatusError {
			n++
		}
	}
	return n
}

// Edits counts applied splices across all steps.
func (r *Run) Edits() int {
	var n int
	for _, step := range r.Steps {
		n += len(step.Outcome.Edits)
	}
	return n
}

// Diff compares the original text with the final document. Returns nil when
// nothing changed.
func (r *Run) Diff() *fix.Diff {
	if r.Final == nil {
		return nil
	}
	return fix.GenerateDiff(r.Path, r.Original, []byte(r.Final.Text()))
}

// Version is the final document version, or 0 without a final snapshot.
func (r *Run) Version() int {
	if r.Final == nil {
		return 0
	}
	return r.Final.Version
}
