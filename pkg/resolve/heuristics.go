package resolve

import (
	"github.com/yaklabco/astnav/pkg/config"
	"github.com/yaklabco/astnav/pkg/syntax"
)

// Heuristics is the tunable part of parent resolution. The kind sets are
// empirical: which kinds need a forward scan depends on how the service
// materializes qualified declarations and calls.
type Heuristics struct {
	Lookback    int
	Lookahead   int
	forward     map[string]bool
	transparent map[string]bool
}

// NewHeuristics builds a table. Non-positive bounds fall back to the
// defaults.
func NewHeuristics(lookback, lookahead int, forwardKinds, transparentKinds []string) Heuristics {
	if lookback <= 0 {
		lookback = config.DefaultLookback
	}
	if lookahead <= 0 {
		lookahead = config.DefaultLookahead
	}
	return Heuristics{
		Lookback:    lookback,
		Lookahead:   lookahead,
		forward:     toSet(forwardKinds),
		transparent: toSet(transparentKinds),
	}
}

// DefaultHeuristics returns the built-in table.
func DefaultHeuristics() Heuristics {
	return NewHeuristics(config.DefaultLookback, config.DefaultLookahead,
		config.DefaultForwardKinds(), config.DefaultTransparentKinds())
}

// HeuristicsFromConfig builds the table from resolver configuration.
func HeuristicsFromConfig(cfg config.ResolverConfig) Heuristics {
	forward := cfg.ForwardKinds
	if forward == nil {
		forward = config.DefaultForwardKinds()
	}
	transparent := cfg.TransparentKinds
	if transparent == nil {
		transparent = config.DefaultTransparentKinds()
	}
	return NewHeuristics(cfg.Lookback, cfg.Lookahead, forward, transparent)
}

// ScansForward reports whether kind may fall back to a forward scan.
func (h Heuristics) ScansForward(kind string) bool {
	return h.forward[kind]
}

// IsTransparent reports whether kind is an implicit wrapper.
func (h Heuristics) IsTransparent(kind string) bool {
	return h.transparent[kind]
}

// Unwrap descends through transparent children that share n's range and
// returns the innermost meaningful node.
func (h Heuristics) Unwrap(n *syntax.Node) *syntax.Node {
	for n != nil && h.IsTransparent(n.Kind) && len(n.Children) == 1 && n.Children[0].Range == n.Range {
		n = n.Children[0]
	}
	return n
}

func toSet(kinds []string) map[string]bool {
	set := make(map[string]bool, len(kinds))
	for _, k := range kinds {
		set[k] = true
	}
	return set
}
