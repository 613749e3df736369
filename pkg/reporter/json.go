package reporter

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"

	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/nav"
)

// JSONOutput is the top-level JSON structure.
type JSONOutput struct {
	Version string      `json:"version"`
	Path    string      `json:"path"`
	Steps   []JSONStep  `json:"steps"`
	Summary JSONSummary `json:"summary"`
	Diff    string      `json:"diff,omitempty"`
}

// JSONStep is one command's outcome.
type JSONStep struct {
	Op        string          `json:"op"`
	Status    string          `json:"status"`
	Kind      string          `json:"kind,omitempty"`
	Selection *document.Range `json:"selection,omitempty"`
	Text      *string         `json:"text,omitempty"`
	Reason    string          `json:"reason,omitempty"`
	Error     string          `json:"error,omitempty"`
	Edits     []JSONEdit      `json:"edits,omitempty"`
	Version   int             `json:"documentVersion"`
}

// JSONEdit is one applied splice.
type JSONEdit struct {
	Range       document.Range `json:"range"`
	StartOffset int            `json:"startOffset"`
	EndOffset   int            `json:"endOffset"`
	NewText     string         `json:"newText"`
}

// JSONSummary contains aggregate statistics.
type JSONSummary struct {
	Commands  int   `json:"commands"`
	Failed    int   `json:"failed"`
	Edits     int   `json:"edits"`
	Written   bool  `json:"written"`
	Version   int   `json:"documentVersion"`
	Queries   int64 `json:"queries"`
	CacheHits int64 `json:"cacheHits"`
	Retries   int64 `json:"retries"`
	Stale     int64 `json:"stale"`
	Malformed int64 `json:"malformed"`
}

// JSONReporter formats runs as JSON.
type JSONReporter struct {
	opts Options
	bw   *bufio.Writer
}

// NewJSONReporter creates a new JSON reporter.
func NewJSONReporter(opts Options) *JSONReporter {
	return &JSONReporter{
		opts: opts,
		bw:   bufio.NewWriterSize(opts.Writer, bufWriterSize),
	}
}

// Report implements Reporter.
func (r *JSONReporter) Report(_ context.Context, run *Run) (err error) {
	defer func() {
		if flushErr := r.bw.Flush(); err == nil {
			err = flushErr
		}
	}()

	encoder := json.NewEncoder(r.bw)
	if !r.opts.Compact {
		encoder.SetIndent("", "  ")
	}

	if err := encoder.Encode(r.buildOutput(run)); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

func (r *JSONReporter) buildOutput(run *Run) *JSONOutput {
	output := &JSONOutput{
		Version: "1.0.0",
		Steps:   make([]JSONStep, 0),
	}
	if run == nil {
		return output
	}

	output.Path = run.Path
	output.Steps = make([]JSONStep, 0, len(run.Steps))
	for _, step := range run.Steps {
		output.Steps = append(output.Steps, r.buildStep(step))
	}

	output.Summary = JSONSummary{
		Commands:  len(run.Steps),
		Failed:    run.Failed(),
		Edits:     run.Edits(),
		Written:   run.Written,
		Version:   run.Version(),
		Queries:   run.Stats.Queries,
		CacheHits: run.Stats.CacheHits,
		Retries:   run.Stats.Retries,
		Stale:     run.Stats.Stale,
		Malformed: run.Stats.Malformed,
	}

	if r.opts.ShowDiff {
		if diff := run.Diff(); diff.HasChanges() {
			output.Diff = diff.String()
		}
	}

	return output
}

func (r *JSONReporter) buildStep(step Step) JSONStep {
	outcome := step.Outcome
	js := JSONStep{
		Op:      outcome.Op.String(),
		Status:  outcome.Status.String(),
		Kind:    step.Kind,
		Reason:  outcome.Reason,
		Version: outcome.Version,
	}
	if outcome.Err != nil {
		js.Error = outcome.Err.Error()
	}
	if outcome.Status == nav.StatusSuccess {
		sel := outcome.Selection
		js.Selection = &sel
		if r.opts.ShowSource && step.Snapshot != nil {
			if text, err := step.Snapshot.Slice(sel); err == nil {
				js.Text = &text
			}
		}
	}
	for _, edit := range outcome.Edits {
		js.Edits = append(js.Edits, JSONEdit{
			Range:       edit.Range,
			StartOffset: edit.StartOffset,
			EndOffset:   edit.EndOffset,
			NewText:     edit.NewText,
		})
	}
	return js
}
