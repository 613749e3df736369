package resolve_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/query"
	"github.com/yaklabco/astnav/pkg/resolve"
)

func TestLex(t *testing.T) {
	t.Parallel()

	content := []byte("a /* c */ \"s\\\"x\" // t\n1.5f+b_2")
	toks := resolve.Lex(content)

	var texts []string
	for _, tok := range toks {
		texts = append(texts, string(content[tok.Start:tok.End]))
	}
	assert.Equal(t, []string{"a", `"s\"x"`, "1.5f", "+", "b_2"}, texts)
	assert.Equal(t, resolve.TokenLiteral, toks[1].Kind)
	assert.Equal(t, resolve.TokenNumber, toks[2].Kind)
	assert.Equal(t, resolve.TokenPunct, toks[3].Kind)
}

func TestTokens_Lookup(t *testing.T) {
	t.Parallel()

	toks := resolve.Lex([]byte("foo(bar);"))
	require.Len(t, toks, 5)

	assert.Equal(t, 1, toks.Before(4), "last token before bar is '('")
	assert.Equal(t, 2, toks.AtOrAfter(4))
	assert.Equal(t, 2, toks.Covering(5))
	assert.Equal(t, -1, resolve.Lex([]byte("a  b")).Covering(2))
}

func TestSkipper_Next(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		text   string
		offset int
		dir    resolve.Direction
		want   int
		run    query.MacroRun
	}{
		{
			name: "backward from closing paren covers invocation",
			text: "LOCK() x;", offset: 5, dir: resolve.Backward,
			want: 0, run: query.MacroRun{Start: 0, End: 6},
		},
		{
			name: "backward chains adjacent macro-case invocations",
			text: "LOCK() UNLOCK() x;", offset: 14, dir: resolve.Backward,
			want: 0, run: query.MacroRun{Start: 0, End: 15},
		},
		{
			name: "backward chains adjacent lower-case invocations",
			text: "lock() unlock() x;", offset: 14, dir: resolve.Backward,
			want: 0, run: query.MacroRun{Start: 0, End: 15},
		},
		{
			name: "chain stops at a keyword operand",
			text: "if (a) LOCK() x;", offset: 12, dir: resolve.Backward,
			want: 7, run: query.MacroRun{Start: 7, End: 13},
		},
		{
			name: "forward chains lower-case invocations",
			text: "lock() unlock() x;", offset: 0, dir: resolve.Forward,
			want: 15, run: query.MacroRun{Start: 0, End: 15},
		},
		{
			name: "forward from macro name",
			text: "LOCK() UNLOCK() x;", offset: 0, dir: resolve.Forward,
			want: 15, run: query.MacroRun{Start: 0, End: 15},
		},
		{
			name: "inside argument list",
			text: "f(MAX(a, b));", offset: 7, dir: resolve.Backward,
			want: 2, run: query.MacroRun{Start: 2, End: 11},
		},
		{
			name: "object-like macro",
			text: "int n = SIZE;", offset: 8, dir: resolve.Forward,
			want: 12, run: query.MacroRun{Start: 8, End: 12},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cache := query.NewCache()
			skipper := resolve.NewSkipper(cache)
			snap := document.NewSnapshot("file:///m.c", 1, []byte(tt.text))

			assert.Equal(t, tt.want, skipper.Next(snap, tt.offset, tt.dir))

			run, ok := skipper.Known(snap, tt.run.Start)
			require.True(t, ok)
			assert.Equal(t, tt.run, run)
		})
	}
}
