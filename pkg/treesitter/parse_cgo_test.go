//go:build cgo

package treesitter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/syntax"
)

func TestParseSource_CallArguments(t *testing.T) {
	t.Parallel()

	root, err := parseSource(context.Background(), "c", []byte("int f() { foo(bar); /* done */ }"))
	require.NoError(t, err)
	assert.Equal(t, "TranslationUnit", root.Kind)

	call := enclosing(root, 10, 18)
	require.NotNil(t, call)
	assert.Equal(t, "Call", call.Kind)
	require.Len(t, call.Children, 2, "argument lists are flattened into the call")
	assert.Equal(t, "DeclRef", call.Children[0].Kind)
	assert.Equal(t, 14, call.Children[1].Start)

	body := enclosing(root, 8, 32)
	require.NotNil(t, body)
	assert.Equal(t, "Compound", body.Kind)
	assert.Len(t, body.Children, 1, "comments are dropped and statements hoisted")
}

func TestService_ParsesCPlusPlus(t *testing.T) {
	t.Parallel()

	text := "namespace n { int g(int a) { return a; } }"
	s := New()
	require.True(t, Available())
	require.NoError(t, s.DidOpen(context.Background(), uri, "cpp", 1, text))

	reply, err := s.AST(context.Background(), syntax.Request{URI: uri, Version: 1, Range: document.NewRange(0, 29, 0, 38)})
	require.NoError(t, err)
	require.NotNil(t, reply)
	assert.Equal(t, "Return", reply.Kind)
}
