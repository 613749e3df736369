package resolve

import (
	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/query"
)

// Direction is the direction of a probe scan.
type Direction int

const (
	Backward Direction = iota
	Forward
)

func (d Direction) String() string {
	if d == Forward {
		return "forward"
	}
	return "backward"
}

// Skipper steps scans over macro invocations. Once a probe at an offset
// comes back with an empty-range root, the invocation around that offset is
// recorded as a macro run so no later probe lands inside it.
type Skipper struct {
	cache  *query.Cache
	tokens *tokenCache
}

// NewSkipper creates a skipper that records runs in cache.
func NewSkipper(cache *query.Cache) *Skipper {
	return &Skipper{cache: cache, tokens: &tokenCache{}}
}

// Known returns the recorded run containing offset, if any.
func (s *Skipper) Known(snap *document.Snapshot, offset int) (query.MacroRun, bool) {
	return s.cache.MacroRunAt(snap.Version, offset)
}

// Next records the macro run around offset and returns the offset to resume
// scanning from: the run start when scanning backward (probes must start
// before it) and the run end when scanning forward.
//
// The run is the invocation text: the macro name plus a balanced argument
// list, extended over invocations chained to it with only whitespace
// between them. Adjacent calls cannot appear in plain C, so the chain does
// not depend on the case of the names.
func (s *Skipper) Next(snap *document.Snapshot, offset int, dir Direction) int {
	toks := s.tokens.get(snap)
	idx := toks.Covering(offset)
	if idx < 0 {
		if dir == Backward {
			return max(offset-1, 0)
		}
		return min(offset+1, snap.Len())
	}

	start, end := invocation(toks, snap.Content, idx)
	if dir == Backward {
		for prev := start - 1; prev >= 0; prev = start - 1 {
			ps, pe := invocation(toks, snap.Content, prev)
			if pe != prev || !isCall(toks, snap.Content, ps, pe) {
				break
			}
			start = ps
		}
	} else {
		for next := end + 1; next < len(toks); next = end + 1 {
			ns, ne := invocation(toks, snap.Content, next)
			if ns != next || !isCall(toks, snap.Content, ns, ne) {
				break
			}
			end = ne
		}
	}

	run := query.MacroRun{Start: toks[start].Start, End: toks[end].End}
	s.cache.AddMacroRun(snap.Version, run)

	if dir == Backward {
		return run.Start
	}
	return run.End
}

// invocation returns the token span of the macro invocation around idx.
func invocation(toks Tokens, content []byte, idx int) (int, int) {
	withName := func(open int) int {
		if open > 0 && toks[open-1].Kind == TokenIdent {
			return open - 1
		}
		return open
	}

	switch {
	case toks[idx].Kind == TokenIdent && toks.is(idx+1, content, '('):
		if closeIdx := toks.matchForward(idx+1, content); closeIdx >= 0 {
			return idx, closeIdx
		}
		return idx, idx
	case toks.is(idx, content, ')'):
		if open := toks.matchBackward(idx, content); open >= 0 {
			return withName(open), idx
		}
		return idx, idx
	case toks.is(idx, content, '('):
		if closeIdx := toks.matchForward(idx, content); closeIdx >= 0 {
			return withName(idx), closeIdx
		}
		return withName(idx), idx
	}

	// Inside an argument list of a macro-named invocation, or a bare
	// object-like macro.
	if open := toks.enclosingOpen(idx, content); open >= 0 {
		name := withName(open)
		if name != open && isMacroName(toks, content, name) {
			if closeIdx := toks.matchForward(open, content); closeIdx >= 0 {
				return name, closeIdx
			}
		}
	}
	return idx, idx
}

// nonCallWords are identifiers the lexer reports that take a parenthesised
// operand without being an invocation.
//
//nolint:gochecknoglobals // read-only keyword set
var nonCallWords = map[string]bool{
	"if": true, "while": true, "for": true, "switch": true, "return": true,
	"sizeof": true, "alignof": true, "_Alignof": true, "decltype": true,
	"catch": true, "do": true, "else": true, "typeof": true,
}

// isCall reports whether tokens [start, end] are a name applied to a balanced
// argument list.
func isCall(toks Tokens, content []byte, start, end int) bool {
	if start < 0 || end <= start || toks[start].Kind != TokenIdent || !toks.is(start+1, content, '(') {
		return false
	}
	return !nonCallWords[string(content[toks[start].Start:toks[start].End])]
}

// isMacroName reports whether token i is an identifier in macro case:
// upper-case letters, digits and underscores with at least one letter.
func isMacroName(toks Tokens, content []byte, i int) bool {
	if i < 0 || i >= len(toks) || toks[i].Kind != TokenIdent {
		return false
	}
	letter := false
	for _, c := range content[toks[i].Start:toks[i].End] {
		switch {
		case c >= 'A' && c <= 'Z':
			letter = true
		case c == '_' || (c >= '0' && c <= '9'):
		default:
			return false
		}
	}
	return letter
}
