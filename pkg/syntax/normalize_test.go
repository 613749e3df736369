package syntax_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/syntax"
)

func rng(sl, sc, el, ec int) *document.Range {
	r := document.NewRange(sl, sc, el, ec)
	return &r
}

func TestNormalize_AnchorsMissingRanges(t *testing.T) {
	t.Parallel()

	raw := &syntax.RawNode{
		Kind:  "Call",
		Range: rng(0, 10, 0, 18),
		Children: []*syntax.RawNode{
			{Kind: "ImplicitCast"},
			{Kind: "DeclRef", Range: rng(0, 10, 0, 13)},
			{Kind: "Macro"},
		},
	}

	node, err := syntax.Normalize(raw, 3, document.NewRange(0, 12, 0, 12))
	require.NoError(t, err)
	require.Len(t, node.Children, 3)

	assert.Equal(t, 3, node.Version)
	assert.Equal(t, document.NewRange(0, 10, 0, 10), node.Children[0].Range, "first child anchors at parent start")
	assert.Equal(t, document.NewRange(0, 13, 0, 13), node.Children[2].Range, "later child anchors at previous sibling end")
	assert.Equal(t, 3, node.Children[1].Version)
}

func TestNormalize_RootWithoutRangeAnchorsAtQuery(t *testing.T) {
	t.Parallel()

	node, err := syntax.Normalize(&syntax.RawNode{Kind: "Macro"}, 1, document.NewRange(2, 4, 2, 9))
	require.NoError(t, err)
	assert.Equal(t, document.NewRange(2, 4, 2, 4), node.Range)
}

func TestNormalize_Malformed(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  *syntax.RawNode
	}{
		{
			name: "missing kind",
			raw:  &syntax.RawNode{Range: rng(0, 0, 0, 4)},
		},
		{
			name: "child escapes parent",
			raw: &syntax.RawNode{
				Kind:     "Call",
				Range:    rng(0, 0, 0, 4),
				Children: []*syntax.RawNode{{Kind: "DeclRef", Range: rng(0, 2, 0, 9)}},
			},
		},
		{
			name: "inverted child",
			raw: &syntax.RawNode{
				Kind:     "Call",
				Range:    rng(0, 0, 0, 9),
				Children: []*syntax.RawNode{{Kind: "DeclRef", Range: rng(0, 5, 0, 2)}},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := syntax.Normalize(tt.raw, 1, document.NewRange(0, 0, 0, 0))
			require.Error(t, err)
			assert.True(t, errors.Is(err, syntax.ErrMalformedTree))

			var malformed *syntax.MalformedTreeError
			assert.True(t, errors.As(err, &malformed))
		})
	}
}

func TestNormalize_EmptyChildMayLieOutside(t *testing.T) {
	t.Parallel()

	raw := &syntax.RawNode{
		Kind:     "Call",
		Range:    rng(1, 0, 1, 6),
		Children: []*syntax.RawNode{{Kind: "IntegerLiteral", Range: rng(0, 8, 0, 8)}},
	}
	_, err := syntax.Normalize(raw, 1, document.NewRange(1, 0, 1, 0))
	require.NoError(t, err)
}

func TestNormalize_Nil(t *testing.T) {
	t.Parallel()

	node, err := syntax.Normalize(nil, 1, document.Range{})
	require.NoError(t, err)
	assert.Nil(t, node)
}

func TestServiceError(t *testing.T) {
	t.Parallel()

	transient := &syntax.ServiceError{Kind: syntax.Protocol, Op: "textDocument/ast", Code: syntax.CodeContentModified}
	assert.True(t, transient.IsTransient())
	assert.True(t, syntax.IsTransient(errors.Join(errors.New("ctx"), transient)))

	timeout := &syntax.ServiceError{Kind: syntax.Timeout, Op: "textDocument/ast", Err: errors.New("deadline")}
	assert.False(t, timeout.IsTransient())
	assert.Contains(t, timeout.Error(), "timeout")
	assert.Contains(t, timeout.Error(), "deadline")
}
