package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/yaklabco/astnav/pkg/config"
	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/resolve"
	"github.com/yaklabco/astnav/pkg/syntax"
)

func TestNewHeuristics_Bounds(t *testing.T) {
	t.Parallel()

	h := resolve.NewHeuristics(0, -3, nil, nil)
	assert.Equal(t, config.DefaultLookback, h.Lookback)
	assert.Equal(t, config.DefaultLookahead, h.Lookahead)
	assert.False(t, h.ScansForward("Call"))

	h = resolve.NewHeuristics(5, 7, []string{"Call"}, []string{"Paren"})
	assert.Equal(t, 5, h.Lookback)
	assert.Equal(t, 7, h.Lookahead)
	assert.True(t, h.ScansForward("Call"))
	assert.True(t, h.IsTransparent("Paren"))
	assert.False(t, h.IsTransparent("ImplicitCast"))
}

func TestHeuristicsFromConfig(t *testing.T) {
	t.Parallel()

	h := resolve.HeuristicsFromConfig(config.ResolverConfig{Lookback: 9})
	assert.Equal(t, 9, h.Lookback)
	assert.True(t, h.ScansForward("DeclRef"), "missing tables fall back to the defaults")
	assert.True(t, h.IsTransparent("ImplicitCast"))

	h = resolve.HeuristicsFromConfig(config.ResolverConfig{ForwardKinds: []string{}})
	assert.False(t, h.ScansForward("DeclRef"), "an explicit empty table disables the forward scan")
}

func TestHeuristics_Unwrap(t *testing.T) {
	t.Parallel()

	r := document.NewRange(0, 4, 0, 7)
	ref := &syntax.Node{Kind: "DeclRef", Range: r}
	cast := &syntax.Node{Kind: syntax.KindImplicitCast, Range: r, Children: []*syntax.Node{ref}}
	cleanups := &syntax.Node{Kind: "ExprWithCleanups", Range: r, Children: []*syntax.Node{cast}}

	h := resolve.DefaultHeuristics()
	assert.Same(t, ref, h.Unwrap(cleanups))
	assert.Same(t, ref, h.Unwrap(ref))
	assert.Nil(t, h.Unwrap(nil))

	wider := &syntax.Node{Kind: syntax.KindImplicitCast, Range: document.NewRange(0, 3, 0, 7), Children: []*syntax.Node{ref}}
	assert.Same(t, wider, h.Unwrap(wider), "a wrapper with a different range is meaningful")
}
