package nav

import (
	"errors"

	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/syntax"
)

func (r *run) navigate() Outcome {
	if r.cmd.Op == OpFocus {
		return r.focus(r.cmd.At)
	}

	node, err := r.anchor()
	if err != nil {
		return r.fail(err, "cursor lost")
	}
	if node == nil {
		return r.noop("no cursor")
	}

	switch r.cmd.Op {
	case OpParent:
		parent, err := r.parent(node)
		if err != nil {
			return r.fail(err, "already at the root")
		}
		return r.moved(r.cursorOn(parent))
	case OpFirstChild:
		return r.firstChild(node)
	case OpNextSibling:
		return r.sibling(node, 1)
	case OpPrevSibling:
		return r.sibling(node, -1)
	case OpLastSibling:
		return r.lastSibling(node)
	default:
		return r.noop("unsupported command " + r.cmd.Op.String())
	}
}

// focus places the cursor on the innermost meaningful node at pos.
func (r *run) focus(pos document.Position) Outcome {
	node, err := r.s.adapter.Query(r.ctx, r.ticket, r.snap, document.PointRange(pos))
	if err != nil {
		return r.fail(err, "cannot focus "+pos.String())
	}
	if node == nil {
		return r.noop("nothing at " + pos.String())
	}
	return r.moved(r.cursorOn(node))
}

// anchor returns the cursor node valid for the run's snapshot, re-querying
// its range when the cursor predates the last change.
func (r *run) anchor() (*syntax.Node, error) {
	if r.cursor == nil {
		return nil, nil //nolint:nilnil // no cursor yet
	}
	if !r.cursor.Stale(r.snap.Version) {
		return r.cursor.Node, nil
	}

	old := r.cursor.Node
	reply, err := r.s.adapter.Query(r.ctx, r.ticket, r.snap, old.Range)
	if err != nil {
		return nil, err
	}
	if reply == nil {
		return nil, errors.New("nothing left at " + old.Range.String())
	}
	node := r.unwrap(pick(reply, old.Range, old.Kind))
	r.s.logger.Debug("re-anchored cursor", "from", old.String(), "to", node.String())
	return node, nil
}

func (r *run) cursorOn(n *syntax.Node) *Cursor {
	return &Cursor{Node: r.unwrap(n), Version: r.snap.Version}
}

func (r *run) parent(n *syntax.Node) (*syntax.Node, error) {
	return r.s.resolver.Parent(r.ctx, r.ticket, r.snap, n)
}

// children returns the parent's children and the index of n among them,
// located by range equality.
func (r *run) children(n *syntax.Node) ([]*syntax.Node, int, error) {
	parent, err := r.parent(n)
	if err != nil {
		return nil, -1, err
	}
	kids, err := r.childrenOf(parent)
	if err != nil {
		return nil, -1, err
	}
	return kids, indexOf(kids, n), nil
}

// childrenOf returns n's children, re-querying its exact range when the
// node came without any.
func (r *run) childrenOf(n *syntax.Node) ([]*syntax.Node, error) {
	if n.HasChildren() {
		return n.Children, nil
	}
	reply, err := r.s.adapter.Query(r.ctx, r.ticket, r.snap, n.Range)
	if err != nil {
		return nil, err
	}
	if reply == nil {
		return nil, nil
	}
	if fresh := syntax.FindFirst(reply, n.Equal); fresh != nil {
		return fresh.Children, nil
	}
	if reply.Range == n.Range {
		return r.unwrap(reply).Children, nil
	}
	return nil, nil
}

func (r *run) firstChild(n *syntax.Node) Outcome {
	kids, err := r.childrenOf(n)
	if err != nil {
		return r.fail(err, "cannot list children")
	}
	if len(kids) == 0 {
		return r.noop("node has no children")
	}
	return r.moved(r.cursorOn(kids[0]))
}

func (r *run) sibling(n *syntax.Node, step int) Outcome {
	kids, idx, err := r.children(n)
	if err != nil {
		return r.fail(err, "node has no parent")
	}
	if idx < 0 {
		return r.noop("node not found among its parent's children")
	}
	next := ((idx+step)%len(kids) + len(kids)) % len(kids)
	return r.moved(r.cursorOn(kids[next]))
}

func (r *run) lastSibling(n *syntax.Node) Outcome {
	kids, idx, err := r.children(n)
	if err != nil {
		return r.fail(err, "node has no parent")
	}
	if idx < 0 {
		return r.noop("node not found among its parent's children")
	}
	return r.moved(r.cursorOn(kids[len(kids)-1]))
}

// indexOf locates n among kids by range. Empty nodes may share a position,
// so a kind match is preferred.
func indexOf(kids []*syntax.Node, n *syntax.Node) int {
	fallback := -1
	for i, kid := range kids {
		if kid.Range != n.Range {
			continue
		}
		if kid.Kind == n.Kind || !n.IsEmpty() {
			return i
		}
		if fallback < 0 {
			fallback = i
		}
	}
	return fallback
}

// pick returns the highest node in reply with range r, preferring kind,
// falling back to reply itself.
func pick(reply *syntax.Node, r document.Range, kind string) *syntax.Node {
	if n := syntax.FindFirst(reply, func(n *syntax.Node) bool { return n.Range == r && n.Kind == kind }); n != nil {
		return n
	}
	if n := syntax.FindFirst(reply, func(n *syntax.Node) bool { return n.Range == r }); n != nil {
		return n
	}
	return reply
}
