package nav

import (
	"strconv"
	"unicode"
	"unicode/utf8"

	"github.com/yaklabco/astnav/internal/logging"
	"github.com/yaklabco/astnav/pkg/fix"
	"github.com/yaklabco/astnav/pkg/syntax"
)

// splice is a planned edit and where the cursor should land afterwards.
type splice struct {
	edits []fix.TextEdit

	// target is the byte span to re-anchor on in the new text. For a
	// delete it is the parent's shrunk span.
	targetStart int
	targetEnd   int
	targetKind  string

	// from is where the deleted node started, in new-text offsets.
	from     int
	deleting bool
}

func (r *run) edit() Outcome {
	node, err := r.anchor()
	if err != nil {
		return r.fail(err, "cursor lost")
	}
	if node == nil {
		return r.noop("no cursor")
	}

	parent, err := r.parent(node)
	if err != nil {
		return r.fail(err, r.cmd.Op.String()+" needs a parent: node is at the root")
	}

	ns, ne, err := r.snap.ByteRange(node.Range)
	if err != nil {
		return r.fail(err, "")
	}
	ps, pe, err := r.snap.ByteRange(parent.Range)
	if err != nil {
		return r.fail(err, "")
	}
	text := string(r.snap.Content[ns:ne])

	var sp splice
	switch r.cmd.Op {
	case OpExtract:
		if ns == ps {
			return r.noop("node already starts its parent")
		}
		sp = splice{
			edits:       fix.NewEditBuilder().Move(r.snap.Content, ns, ne, ps).Edits,
			targetStart: ps,
			targetEnd:   ps + len(text),
			targetKind:  node.Kind,
		}
	case OpSubstitute:
		sp = splice{
			edits:       fix.NewEditBuilder().ReplaceRange(ps, pe, text).Edits,
			targetStart: ps,
			targetEnd:   ps + len(text),
			targetKind:  node.Kind,
		}
	case OpDelete:
		edits := fix.NewEditBuilder().Delete(ns, ne).Edits
		sp = splice{
			edits:       edits,
			targetStart: fix.ShiftOffset(ps, edits),
			targetEnd:   fix.ShiftOffset(pe, edits),
			targetKind:  parent.Kind,
			from:        fix.ShiftOffset(ns, edits),
			deleting:    true,
		}
	default:
		return r.noop("unsupported command " + r.cmd.Op.String())
	}

	return r.apply(sp)
}

// apply commits the splice as the next document version and re-anchors the
// cursor.
func (r *run) apply(sp splice) Outcome {
	applied := make([]AppliedEdit, 0, len(sp.edits))
	for _, e := range sp.edits {
		applied = append(applied, AppliedEdit{TextEdit: e, Range: r.snap.RangeOf(e.StartOffset, e.EndOffset)})
	}

	s := r.s
	s.mu.Lock()
	if !s.epochs.IsCurrent(r.ticket) || s.snap != r.snap {
		s.mu.Unlock()
		return r.stale()
	}
	next, err := r.snap.Apply(sp.edits)
	if err != nil {
		s.mu.Unlock()
		return r.fail(err, "edit rejected")
	}
	s.snap = next
	r.ticket = s.epochs.Advance()
	s.adapter.Cache().Reset(next.Version)

	// Until re-anchoring succeeds the cursor points at the expected span with
	// the old version, so the next command re-anchors it.
	provisional := &Cursor{
		Node:    &syntax.Node{Kind: sp.targetKind, Range: next.RangeOf(sp.targetStart, sp.targetEnd), Version: r.snap.Version},
		Version: r.snap.Version,
	}
	s.cursor = provisional
	s.mu.Unlock()

	old := r.snap
	r.snap = next
	out := Outcome{Status: StatusSuccess, Edits: applied, Version: next.Version, Selection: provisional.Node.Range}

	if err := s.notify(r.ctx, next.URI, next.Version, next.Text()); err != nil {
		s.logger.Warn("service not synchronized", logging.FieldVersion, next.Version, logging.FieldError, err)
		out.Err = err
		out.Reason = "edit applied but the syntax service was not updated"
		return out
	}

	node, err := r.reanchor(sp)
	if err != nil || node == nil {
		s.logger.Debug("re-anchor deferred",
			logging.FieldVersion, next.Version,
			logging.FieldRange, provisional.Node.Range.String(),
			logging.FieldError, err)
		return out
	}

	c := &Cursor{Node: r.unwrap(node), Version: next.Version}
	if !r.commit(c) {
		return out
	}
	s.logger.Debug("edit applied",
		logging.FieldOp, r.cmd.Op.String(),
		"from_version", old.Version,
		logging.FieldVersion, next.Version)
	out.Selection = Project(c)
	return out
}

// reanchor finds the node the cursor should land on in the new text.
func (r *run) reanchor(sp splice) (*syntax.Node, error) {
	target := r.snap.RangeOf(sp.targetStart, sp.targetEnd)
	reply, err := r.s.adapter.Query(r.ctx, r.ticket, r.snap, target)
	if err != nil || reply == nil {
		return nil, err
	}
	holder := pick(reply, target, sp.targetKind)
	if !sp.deleting {
		return holder, nil
	}

	// After a delete the cursor goes to whatever now starts where the node
	// did, skipping whitespace, as long as it lies inside the parent.
	at := skipSpace(r.snap.Content, sp.from, sp.targetEnd)
	if at < sp.targetEnd {
		pos := r.snap.PositionAt(at)
		for _, n := range syntax.Descendants(holder) {
			if n.Range.Start == pos && !n.IsEmpty() && n.Range.End.Compare(target.End) <= 0 {
				return n, nil
			}
		}
	}
	return holder, nil
}

func skipSpace(content []byte, from, limit int) int {
	for from < limit {
		c, size := utf8.DecodeRune(content[from:])
		if !unicode.IsSpace(c) {
			break
		}
		from += size
	}
	return from
}

func (e AppliedEdit) String() string {
	return e.Range.String() + " -> " + strconv.Quote(e.NewText)
}
