// Package resolve derives parent links the syntax service never exposes.
//
// The service answers only "what is the AST rooted near this range". To
// find a node's parent the resolver widens the query one token at a time,
// backward from the node's start, and searches every reply for the node.
// The nearest meaningful ancestor on the path to it is a parent candidate;
// the smallest candidate wins. Kinds the service only relates to their
// parent when queried past their end fall back to a forward scan.
package resolve

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/astnav/internal/logging"
	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/query"
	"github.com/yaklabco/astnav/pkg/syntax"
)

// AmbiguousParent names the inconsistency recorded when two candidates of
// equal size but different identity are found.
const AmbiguousParent = "AmbiguousParent"

// Inconsistency is a recoverable protocol anomaly met during resolution.
type Inconsistency struct {
	Kind  string
	Kept  *syntax.Node
	Other *syntax.Node
}

// Resolution is the detailed result of a parent lookup.
type Resolution struct {
	Parent          *syntax.Node
	Probes          int
	Direction       Direction
	Inconsistencies []Inconsistency
}

// Resolver finds parents through an Adapter.
type Resolver struct {
	adapter    *query.Adapter
	skipper    *Skipper
	heuristics Heuristics
	tokens     *tokenCache
	logger     *log.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithHeuristics sets the kind tables and scan bounds.
func WithHeuristics(h Heuristics) Option {
	return func(r *Resolver) {
		r.heuristics = h
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// New creates a resolver. Macro runs are memoized in the adapter's cache.
func New(adapter *query.Adapter, opts ...Option) *Resolver {
	r := &Resolver{
		adapter:    adapter,
		heuristics: DefaultHeuristics(),
		logger:     logging.Discard(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.skipper = NewSkipper(adapter.Cache())
	r.tokens = r.skipper.tokens
	return r
}

// Heuristics returns the resolver's table.
func (r *Resolver) Heuristics() Heuristics {
	return r.heuristics
}

// Parent returns the parent of node, or syntax.ErrParentNotFound.
func (r *Resolver) Parent(ctx context.Context, t query.Ticket, snap *document.Snapshot, node *syntax.Node) (*syntax.Node, error) {
	res, err := r.Resolve(ctx, t, snap, node)
	if err != nil {
		return nil, err
	}
	return res.Parent, nil
}

// IsRoot reports whether node is the document root. Roots are answered
// without any query.
func (r *Resolver) IsRoot(snap *document.Snapshot, node *syntax.Node) bool {
	return node.Kind == syntax.KindTranslationUnit || node.Range.ContainsRange(snap.Full())
}

// Resolve finds node's parent and reports how it was found.
func (r *Resolver) Resolve(ctx context.Context, t query.Ticket, snap *document.Snapshot, node *syntax.Node) (Resolution, error) {
	var res Resolution
	if r.IsRoot(snap, node) {
		return res, syntax.ErrParentNotFound
	}

	start, end, err := snap.ByteRange(node.Range)
	if err != nil {
		return res, fmt.Errorf("%w: %w", syntax.ErrInvalidRange, err)
	}

	sc := &scan{resolver: r, ticket: t, snap: snap, target: node, res: &res}

	if err := sc.backward(ctx, start); err != nil {
		return res, err
	}
	if sc.best == nil && r.heuristics.ScansForward(node.Kind) {
		if err := sc.forward(ctx, end); err != nil {
			return res, err
		}
	}

	if sc.best == nil {
		r.logger.Debug("no parent",
			logging.FieldTarget, node.String(),
			logging.FieldProbes, res.Probes)
		return res, syntax.ErrParentNotFound
	}

	res.Parent = sc.best
	r.logger.Debug("resolved parent",
		logging.FieldTarget, node.String(),
		logging.FieldParent, sc.best.String(),
		logging.FieldDirection, res.Direction.String(),
		logging.FieldProbes, res.Probes)
	return res, nil
}

// scan is the state of one resolution.
type scan struct {
	resolver *Resolver
	ticket   query.Ticket
	snap     *document.Snapshot
	target   *syntax.Node
	res      *Resolution

	best      *syntax.Node
	bestStart int
	bestEnd   int
}

func (s *scan) backward(ctx context.Context, start int) error {
	r := s.resolver
	toks := r.tokens.get(s.snap)

	probes := 0
	for i := toks.Before(start); i >= 0 && probes < r.heuristics.Lookback; i-- {
		p := toks[i].Start
		if s.best != nil && p < s.bestStart {
			// Wider probes can only root above the best candidate.
			return nil
		}
		if run, ok := r.skipper.Known(s.snap, p); ok {
			i = toks.Before(run.Start) + 1
			continue
		}

		q := document.Range{Start: s.snap.PositionAt(p), End: s.target.Range.End}
		probes++
		reply, err := s.probe(ctx, q)
		if err != nil {
			return err
		}
		if reply == nil {
			continue
		}
		if reply.IsEmpty() {
			next := r.skipper.Next(s.snap, p, Backward)
			i = toks.Before(next) + 1
			continue
		}
		if s.consider(reply, Backward) {
			return nil
		}
	}
	return nil
}

func (s *scan) forward(ctx context.Context, end int) error {
	r := s.resolver
	toks := r.tokens.get(s.snap)

	probes := 0
	for i := toks.AtOrAfter(end); i < len(toks) && probes < r.heuristics.Lookahead; i++ {
		if s.best != nil && toks[i].End > s.bestEnd {
			return nil
		}
		if run, ok := r.skipper.Known(s.snap, toks[i].Start); ok {
			i = toks.AtOrAfter(run.End) - 1
			continue
		}

		q := document.Range{Start: s.target.Range.Start, End: s.snap.PositionAt(toks[i].End)}
		probes++
		reply, err := s.probe(ctx, q)
		if err != nil {
			return err
		}
		if reply == nil {
			continue
		}
		if reply.IsEmpty() {
			next := r.skipper.Next(s.snap, toks[i].Start, Forward)
			i = toks.AtOrAfter(next) - 1
			continue
		}
		if s.consider(reply, Forward) {
			return nil
		}
	}
	return nil
}

// probe issues one query. Rejected replies are misses; every other failure
// ends the resolution.
func (s *scan) probe(ctx context.Context, q document.Range) (*syntax.Node, error) {
	s.res.Probes++
	reply, err := s.resolver.adapter.Query(ctx, s.ticket, s.snap, q)
	if errors.Is(err, syntax.ErrMalformedTree) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("probe %s: %w", q, err)
	}
	return reply, nil
}

// consider folds the candidate found in reply into the best so far. It
// reports whether the scan can stop: a reply rooted at the best candidate
// already shows its whole subtree, so no closer ancestor can turn up.
func (s *scan) consider(reply *syntax.Node, dir Direction) bool {
	cand := s.candidate(reply)
	if cand != nil {
		s.offer(cand, dir)
	}
	return s.best != nil && reply.Equal(s.best)
}

func (s *scan) offer(cand *syntax.Node, dir Direction) {
	start, end, err := s.snap.ByteRange(cand.Range)
	if err != nil {
		return
	}
	size := end - start

	switch {
	case s.best == nil || size < s.bestEnd-s.bestStart:
		s.best, s.bestStart, s.bestEnd = cand, start, end
		s.res.Direction = dir
	case size == s.bestEnd-s.bestStart && !cand.Equal(s.best):
		s.res.Inconsistencies = append(s.res.Inconsistencies, Inconsistency{
			Kind:  AmbiguousParent,
			Kept:  s.best,
			Other: cand,
		})
		s.resolver.logger.Warn("ambiguous parent",
			logging.FieldTarget, s.target.String(),
			logging.FieldParent, s.best.String(),
			"other", cand.String())
	}
}

// candidate searches every node of reply for the target and returns the
// nearest meaningful ancestor of the first match that is not spurious.
func (s *scan) candidate(reply *syntax.Node) *syntax.Node {
	var found *syntax.Node
	syntax.Paths(reply, s.matches, func(path []*syntax.Node) bool {
		if cand := s.ancestor(path); cand != nil {
			found = cand
			return false
		}
		return true
	})
	return found
}

// matches reports whether n stands for the target in a reply: the same
// range with the same or a transparent kind, or an empty node of the same
// kind touching the target.
func (s *scan) matches(n *syntax.Node) bool {
	h := s.resolver.heuristics
	if n.Range == s.target.Range {
		return n.Kind == s.target.Kind || h.IsTransparent(n.Kind)
	}
	return n.IsEmpty() && n.Kind == s.target.Kind && n.Range.Adjacent(s.target.Range)
}

func (s *scan) ancestor(path []*syntax.Node) *syntax.Node {
	h := s.resolver.heuristics
	for i := len(path) - 2; i >= 0; i-- {
		a := path[i]
		switch {
		case a.Range == s.target.Range && (h.IsTransparent(a.Kind) || a.Kind == s.target.Kind):
			// Coextensive wrapper or duplicate of the target.
			continue
		case a.IsEmpty() && a.Kind == s.target.Kind:
			continue
		}
		if s.spurious(a) {
			return nil
		}
		return a
	}
	return nil
}

// spurious reports whether a is the target itself or lies in the target's
// own subtree, which means the reply rediscovered a descendant.
func (s *scan) spurious(a *syntax.Node) bool {
	if a.Equal(s.target) || syntax.Contains(s.target, a) {
		return true
	}
	return !s.target.IsEmpty() && !a.Range.ContainsRange(s.target.Range)
}
