package syntax_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/syntax"
)

// callTree models `foo(bar);` as clangd reports it.
func callTree() *syntax.Node {
	ref := func(name string, sc, ec int) *syntax.Node {
		return &syntax.Node{Kind: "DeclRef", Detail: name, Range: document.NewRange(0, sc, 0, ec)}
	}
	return &syntax.Node{
		Kind:  "Call",
		Range: document.NewRange(0, 0, 0, 8),
		Children: []*syntax.Node{
			{Kind: "ImplicitCast", Range: document.NewRange(0, 0, 0, 3), Children: []*syntax.Node{ref("foo", 0, 3)}},
			{Kind: "ImplicitCast", Range: document.NewRange(0, 4, 0, 7), Children: []*syntax.Node{ref("bar", 4, 7)}},
		},
	}
}

func TestWalk_PreOrder(t *testing.T) {
	t.Parallel()

	var kinds []string
	err := syntax.Walk(callTree(), func(n *syntax.Node) error {
		kinds = append(kinds, n.Kind)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"Call", "ImplicitCast", "DeclRef", "ImplicitCast", "DeclRef"}, kinds)
}

func TestWalk_SkipChildren(t *testing.T) {
	t.Parallel()

	count := 0
	err := syntax.Walk(callTree(), func(n *syntax.Node) error {
		count++
		if n.Kind == "ImplicitCast" {
			return syntax.SkipChildren
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, count)
}

func TestFindHelpers(t *testing.T) {
	t.Parallel()

	root := callTree()
	isRef := func(n *syntax.Node) bool { return n.Kind == "DeclRef" }

	assert.Len(t, syntax.FindAll(root, isRef), 2)
	assert.Equal(t, "foo", syntax.FindFirst(root, isRef).Detail)
	assert.Len(t, syntax.Descendants(root), 4)

	path := syntax.PathTo(root, func(n *syntax.Node) bool { return n.Detail == "bar" })
	require.Len(t, path, 3)
	assert.Equal(t, "Call", path[0].Kind)
	assert.Equal(t, "ImplicitCast", path[1].Kind)

	assert.Nil(t, syntax.PathTo(root, func(n *syntax.Node) bool { return n.Kind == "Return" }))
}

func TestNode_Identity(t *testing.T) {
	t.Parallel()

	root := callTree()
	clone := callTree()

	assert.True(t, root.Equal(clone))
	assert.True(t, syntax.Contains(root, clone.Children[1].Children[0]))
	assert.Equal(t, 1, root.ChildIndex(document.NewRange(0, 4, 0, 7)))
	assert.Equal(t, -1, root.ChildIndex(document.NewRange(0, 4, 0, 8)))
	assert.Equal(t, "DeclRef(bar)@0:4-0:7", root.Children[1].Children[0].String())
}
