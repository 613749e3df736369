package resolve_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/astnav/internal/synthtest"
	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/query"
	"github.com/yaklabco/astnav/pkg/resolve"
	"github.com/yaklabco/astnav/pkg/syntax"
)

type fixture struct {
	svc      *synthtest.Service
	adapter  *query.Adapter
	resolver *resolve.Resolver
	snap     *document.Snapshot
}

func newFixture(t *testing.T, text string, root *synthtest.Node, macros ...synthtest.Macro) *fixture {
	t.Helper()

	svc := synthtest.New()
	svc.Script(text, root, macros...)
	svc.Open(1, text)

	adapter := query.NewAdapter(svc, query.NewEpochs())
	return &fixture{
		svc:      svc,
		adapter:  adapter,
		resolver: resolve.New(adapter),
		snap:     document.NewSnapshot("file:///test.c", 1, []byte(text)),
	}
}

// node fetches the node the service reports for the byte span [start, end).
func (f *fixture) node(t *testing.T, start, end int) *syntax.Node {
	t.Helper()
	n, err := f.adapter.Query(context.Background(), f.adapter.Epochs().Current(), f.snap, f.snap.RangeOf(start, end))
	require.NoError(t, err)
	require.NotNil(t, n)
	return n
}

func (f *fixture) resolve(t *testing.T, n *syntax.Node) (resolve.Resolution, error) {
	t.Helper()
	return f.resolver.Resolve(context.Background(), f.adapter.Epochs().Current(), f.snap, n)
}

const declCallText = "Bar *bar; foo(bar);"

func declCallTree() *synthtest.Node {
	b := synthtest.NewBuilder(declCallText)
	return b.Root(
		b.N("Var", "Bar *bar"),
		b.N("Call", "foo(bar)",
			synthtest.Cast(b.Ref("foo", 0)),
			synthtest.Cast(b.Ref("bar", 1)),
		),
	)
}

func TestResolve_CallFoundByForwardScan(t *testing.T) {
	t.Parallel()

	f := newFixture(t, declCallText, declCallTree())
	foo := f.node(t, 10, 13)
	require.Equal(t, "DeclRef", foo.Kind)
	f.svc.ResetRequests()

	res, err := f.resolve(t, foo)
	require.NoError(t, err)

	assert.Equal(t, resolve.Forward, res.Direction)
	assert.Equal(t, "Call", res.Parent.Kind, "the argument cast must not be taken for the parent")
	assert.Equal(t, f.snap.RangeOf(10, 18), res.Parent.Range)
	assert.Empty(t, res.Inconsistencies)

	for _, req := range f.svc.Requests() {
		if req.Range.End == f.snap.PositionAt(13) {
			continue
		}
		assert.Equal(t, f.snap.PositionAt(10), req.Range.Start, "forward probes start at the node")
	}
}

func TestResolve_IsStable(t *testing.T) {
	t.Parallel()

	f := newFixture(t, declCallText, declCallTree())
	foo := f.node(t, 10, 13)

	first, err := f.resolver.Parent(context.Background(), f.adapter.Epochs().Current(), f.snap, foo)
	require.NoError(t, err)

	queries := f.svc.QueryCount()
	second, err := f.resolver.Parent(context.Background(), f.adapter.Epochs().Current(), f.snap, foo)
	require.NoError(t, err)

	assert.Equal(t, first.Range, second.Range)
	assert.Equal(t, queries, f.svc.QueryCount(), "repeat resolution is served from the cache")
}

const macroText = "void f() { LOCK() x = 1; }\n"

func macroTree() (*synthtest.Node, synthtest.Macro) {
	b := synthtest.NewBuilder(macroText)
	root := b.Root(
		b.N("Function", "void f() { LOCK() x = 1; }",
			b.N("Compound", "{ LOCK() x = 1; }",
				synthtest.Empty("Call", 11),
				b.N("BinaryOperator", "x = 1", b.Ref("x", 0), b.N("IntegerLiteral", "1")),
			),
		),
	)
	return root, b.Macro("Call", "LOCK()", 0)
}

func TestResolve_MacroRunCostsOneQuery(t *testing.T) {
	t.Parallel()

	root, macro := macroTree()
	f := newFixture(t, macroText, root, macro)
	assign := f.node(t, 18, 23)
	ref := f.node(t, 18, 19)
	f.svc.ResetRequests()

	inMacro := func() int {
		count := 0
		for _, req := range f.svc.Requests() {
			start, _, err := f.snap.ByteRange(req.Range)
			require.NoError(t, err)
			if start >= macro.Start && start < macro.End {
				count++
			}
		}
		return count
	}

	res, err := f.resolve(t, assign)
	require.NoError(t, err)
	assert.Equal(t, "Compound", res.Parent.Kind)
	assert.Equal(t, resolve.Backward, res.Direction)
	assert.Equal(t, 1, inMacro())
	assert.Equal(t, 2, f.svc.QueryCount())

	res, err = f.resolve(t, ref)
	require.NoError(t, err)
	assert.Equal(t, "BinaryOperator", res.Parent.Kind)
	assert.Equal(t, 1, inMacro(), "a recorded run is never probed again")
}

const lowerMacroText = "void f() { lock() unlock() x = 1; }\n"

func TestResolve_LowerCaseMacroRunCostsOneQuery(t *testing.T) {
	t.Parallel()

	b := synthtest.NewBuilder(lowerMacroText)
	root := b.Root(
		b.N("Function", "void f() { lock() unlock() x = 1; }",
			b.N("Compound", "{ lock() unlock() x = 1; }",
				synthtest.Empty("Call", 11),
				synthtest.Empty("Call", 18),
				b.N("BinaryOperator", "x = 1", b.Ref("x", 0), b.N("IntegerLiteral", "1")),
			),
		),
	)
	macro := b.Macro("Call", "lock() unlock()", 0)
	f := newFixture(t, lowerMacroText, root, macro)
	assign := f.node(t, 27, 32)
	f.svc.ResetRequests()

	res, err := f.resolve(t, assign)
	require.NoError(t, err)
	assert.Equal(t, "Compound", res.Parent.Kind)

	inMacro := 0
	for _, req := range f.svc.Requests() {
		start, _, err := f.snap.ByteRange(req.Range)
		require.NoError(t, err)
		if start >= macro.Start && start < macro.End {
			inMacro++
		}
	}
	assert.Equal(t, 1, inMacro, "one contiguous run costs one query")
	assert.Equal(t, 2, f.svc.QueryCount())
}

const exprText = "int v = a + b * c;\n"

func exprTree() *synthtest.Node {
	b := synthtest.NewBuilder(exprText)
	return b.Root(
		b.N("Var", "int v = a + b * c",
			b.N("BinaryOperator", "a + b * c",
				synthtest.Cast(b.Ref("a", 0)),
				b.N("BinaryOperator", "b * c",
					synthtest.Cast(b.Ref("b", 0)),
					synthtest.Cast(b.Ref("c", 0)),
				),
			),
		),
	)
}

func TestResolve_BackwardNearestAncestor(t *testing.T) {
	t.Parallel()

	f := newFixture(t, exprText, exprTree())
	c := f.node(t, 16, 17)
	f.svc.ResetRequests()

	res, err := f.resolve(t, c)
	require.NoError(t, err)
	assert.Equal(t, "BinaryOperator", res.Parent.Kind)
	assert.Equal(t, f.snap.RangeOf(12, 17), res.Parent.Range)
	assert.Equal(t, 1, res.Probes)

	grand, err := f.resolve(t, res.Parent)
	require.NoError(t, err)
	assert.Equal(t, f.snap.RangeOf(8, 17), grand.Parent.Range)
}

func TestResolve_RootNeedsNoQuery(t *testing.T) {
	t.Parallel()

	f := newFixture(t, exprText, exprTree())
	f.svc.ResetRequests()

	_, err := f.resolve(t, &syntax.Node{Kind: syntax.KindTranslationUnit, Range: f.snap.Full()})
	assert.True(t, errors.Is(err, syntax.ErrParentNotFound))

	_, err = f.resolve(t, &syntax.Node{Kind: "Anything", Range: f.snap.Full()})
	assert.True(t, errors.Is(err, syntax.ErrParentNotFound))
	assert.Zero(t, f.svc.QueryCount())
}

func TestResolve_TopLevelHasNoParent(t *testing.T) {
	t.Parallel()

	f := newFixture(t, exprText, exprTree())
	decl := f.node(t, 0, 17)

	_, err := f.resolve(t, decl)
	assert.True(t, errors.Is(err, syntax.ErrParentNotFound))
}

const wideText = "aaaa bbbb cccc dddd;\n"

func rangePtr(r document.Range) *document.Range {
	return &r
}

// scripted answers the probe starting at each offset with a fixed tree.
func scripted(snap *document.Snapshot, replies map[int]*syntax.RawNode) synthtest.Responder {
	return func(req syntax.Request, _ string) (*syntax.RawNode, bool, error) {
		start, _, err := snap.ByteRange(req.Range)
		if err != nil {
			return nil, true, err
		}
		return replies[start], true, nil
	}
}

func TestResolve_SmallestCandidateWins(t *testing.T) {
	t.Parallel()

	f := newFixture(t, wideText, nil)
	target := &syntax.Node{Kind: "DeclRef", Range: f.snap.RangeOf(10, 14)}
	leaf := func() *syntax.RawNode { return &syntax.RawNode{Kind: "DeclRef", Range: rangePtr(target.Range)} }

	f.svc.SetResponder(scripted(f.snap, map[int]*syntax.RawNode{
		5: {Kind: "Wrap", Range: rangePtr(f.snap.RangeOf(0, 20)), Children: []*syntax.RawNode{
			{Kind: "Outer", Range: rangePtr(f.snap.RangeOf(0, 19)), Children: []*syntax.RawNode{leaf()}},
		}},
		0: {Kind: "Inner", Range: rangePtr(f.snap.RangeOf(0, 14)), Children: []*syntax.RawNode{leaf()}},
	}))

	res, err := f.resolve(t, target)
	require.NoError(t, err)
	assert.Equal(t, "Inner", res.Parent.Kind)
	assert.Equal(t, 2, res.Probes)
}

func TestResolve_EqualCandidatesRecordAmbiguity(t *testing.T) {
	t.Parallel()

	f := newFixture(t, wideText, nil)
	target := &syntax.Node{Kind: "DeclRef", Range: f.snap.RangeOf(10, 14)}
	leaf := func() *syntax.RawNode { return &syntax.RawNode{Kind: "DeclRef", Range: rangePtr(target.Range)} }

	f.svc.SetResponder(scripted(f.snap, map[int]*syntax.RawNode{
		5: {Kind: "Wrap", Range: rangePtr(f.snap.RangeOf(0, 20)), Children: []*syntax.RawNode{
			{Kind: "Outer", Range: rangePtr(f.snap.RangeOf(0, 19)), Children: []*syntax.RawNode{leaf()}},
		}},
		0: {Kind: "Other", Range: rangePtr(f.snap.RangeOf(0, 19)), Children: []*syntax.RawNode{leaf()}},
	}))

	res, err := f.resolve(t, target)
	require.NoError(t, err)
	assert.Equal(t, "Outer", res.Parent.Kind, "earliest-queried candidate is kept")
	require.Len(t, res.Inconsistencies, 1)
	assert.Equal(t, resolve.AmbiguousParent, res.Inconsistencies[0].Kind)
	assert.Equal(t, "Other", res.Inconsistencies[0].Other.Kind)
}

func TestResolve_DiscardsRediscoveredDescendant(t *testing.T) {
	t.Parallel()

	f := newFixture(t, wideText, nil)
	span := f.snap.RangeOf(10, 14)
	target := &syntax.Node{
		Kind:     "Member",
		Range:    span,
		Children: []*syntax.Node{{Kind: "CXXMemberCall", Range: span}},
	}

	f.svc.SetResponder(scripted(f.snap, map[int]*syntax.RawNode{
		// The service nests the target under its own child.
		5: {Kind: "CXXMemberCall", Range: rangePtr(span), Children: []*syntax.RawNode{
			{Kind: "Member", Range: rangePtr(span)},
		}},
		0: {Kind: "Stmt", Range: rangePtr(f.snap.RangeOf(0, 19)), Children: []*syntax.RawNode{
			{Kind: "Member", Range: rangePtr(span)},
		}},
	}))

	res, err := f.resolve(t, target)
	require.NoError(t, err)
	assert.Equal(t, "Stmt", res.Parent.Kind)
}

func TestResolve_EmptyAdjacentStandIn(t *testing.T) {
	t.Parallel()

	f := newFixture(t, wideText, nil)
	target := &syntax.Node{Kind: "IntegerLiteral", Range: f.snap.RangeOf(10, 14)}

	// The reply only carries an empty literal touching the target's end.
	f.svc.SetResponder(scripted(f.snap, map[int]*syntax.RawNode{
		5: {Kind: "Call", Range: rangePtr(f.snap.RangeOf(5, 14)), Children: []*syntax.RawNode{
			{Kind: "IntegerLiteral", Range: rangePtr(f.snap.RangeOf(14, 14))},
		}},
	}))

	res, err := f.resolve(t, target)
	require.NoError(t, err)
	assert.Equal(t, "Call", res.Parent.Kind)
}

func TestResolve_MalformedProbeIsAMiss(t *testing.T) {
	t.Parallel()

	f := newFixture(t, wideText, nil)
	target := &syntax.Node{Kind: "DeclRef", Range: f.snap.RangeOf(10, 14)}

	f.svc.SetResponder(scripted(f.snap, map[int]*syntax.RawNode{
		5: {Kind: "Broken", Range: rangePtr(f.snap.RangeOf(5, 12)), Children: []*syntax.RawNode{
			{Kind: "DeclRef", Range: rangePtr(target.Range)},
		}},
		0: {Kind: "Stmt", Range: rangePtr(f.snap.RangeOf(0, 19)), Children: []*syntax.RawNode{
			{Kind: "DeclRef", Range: rangePtr(target.Range)},
		}},
	}))

	res, err := f.resolve(t, target)
	require.NoError(t, err)
	assert.Equal(t, "Stmt", res.Parent.Kind)
	assert.Equal(t, int64(1), f.adapter.Stats().Malformed)
}

func TestResolve_LookbackBound(t *testing.T) {
	t.Parallel()

	text := "a b c d e f g h target;\n"
	svc := synthtest.New()
	svc.Open(1, text)
	adapter := query.NewAdapter(svc, query.NewEpochs())
	resolver := resolve.New(adapter, resolve.WithHeuristics(resolve.NewHeuristics(3, 3, nil, nil)))
	snap := document.NewSnapshot("file:///bound.c", 1, []byte(text))

	_, err := resolver.Resolve(context.Background(), adapter.Epochs().Current(), snap,
		&syntax.Node{Kind: "DeclRef", Range: snap.RangeOf(16, 22)})
	assert.True(t, errors.Is(err, syntax.ErrParentNotFound))
	assert.Equal(t, 3, svc.QueryCount())
}

func TestResolve_ServiceErrorAborts(t *testing.T) {
	t.Parallel()

	f := newFixture(t, exprText, exprTree())
	c := f.node(t, 16, 17)
	f.svc.FailNext(&syntax.ServiceError{Kind: syntax.Unreachable, Op: "ast", Err: errors.New("EOF")})

	_, err := f.resolve(t, c)

	var svcErr *syntax.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, syntax.Unreachable, svcErr.Kind)
}

func TestResolve_StaleTicket(t *testing.T) {
	t.Parallel()

	f := newFixture(t, exprText, exprTree())
	c := f.node(t, 16, 17)
	ticket := f.adapter.Epochs().Current()
	f.adapter.Epochs().Advance()

	_, err := f.resolver.Resolve(context.Background(), ticket, f.snap, c)
	assert.True(t, errors.Is(err, syntax.ErrStaleEpoch))
}
