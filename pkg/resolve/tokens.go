package resolve

import (
	"sort"
	"sync"

	"github.com/yaklabco/astnav/pkg/document"
)

// TokenKind is the coarse class of a lexed token.
type TokenKind int

const (
	TokenIdent TokenKind = iota
	TokenNumber
	TokenLiteral
	TokenPunct
)

// Token is a byte span [Start, End) of the document.
type Token struct {
	Kind  TokenKind
	Start int
	End   int
}

// Tokens is a document's token stream in source order.
type Tokens []Token

// Lex splits content into identifier runs, numbers, string and character
// literals, and single punctuation characters. Whitespace, comments and
// preprocessor line continuations are dropped.
//
// This is not a C lexer. It only has to produce plausible probe boundaries.
func Lex(content []byte) Tokens {
	var toks Tokens
	n := len(content)
	for i := 0; i < n; {
		c := content[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r' || c == '\f' || c == '\v' || c == '\\':
			i++
		case c == '/' && i+1 < n && content[i+1] == '/':
			for i < n && content[i] != '\n' {
				i++
			}
		case c == '/' && i+1 < n && content[i+1] == '*':
			i += 2
			for i+1 < n && (content[i] != '*' || content[i+1] != '/') {
				i++
			}
			i = min(i+2, n)
		case isIdentStart(c):
			start := i
			for i < n && isIdentPart(content[i]) {
				i++
			}
			toks = append(toks, Token{Kind: TokenIdent, Start: start, End: i})
		case c >= '0' && c <= '9':
			start := i
			for i < n && (isIdentPart(content[i]) || content[i] == '.') {
				i++
			}
			toks = append(toks, Token{Kind: TokenNumber, Start: start, End: i})
		case c == '"' || c == '\'':
			start := i
			i++
			for i < n && content[i] != c && content[i] != '\n' {
				if content[i] == '\\' {
					i++
				}
				i++
			}
			i = min(i+1, n)
			toks = append(toks, Token{Kind: TokenLiteral, Start: start, End: i})
		default:
			toks = append(toks, Token{Kind: TokenPunct, Start: i, End: i + 1})
			i++
		}
	}
	return toks
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c >= 0x80
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}

// Before returns the index of the last token starting before offset, or -1.
func (t Tokens) Before(offset int) int {
	return sort.Search(len(t), func(i int) bool { return t[i].Start >= offset }) - 1
}

// AtOrAfter returns the index of the first token starting at or after
// offset, or len(t).
func (t Tokens) AtOrAfter(offset int) int {
	return sort.Search(len(t), func(i int) bool { return t[i].Start >= offset })
}

// Covering returns the index of the token containing offset, or -1.
func (t Tokens) Covering(offset int) int {
	i := t.Before(offset + 1)
	if i >= 0 && t[i].End > offset {
		return i
	}
	return -1
}

func (t Tokens) is(i int, content []byte, punct byte) bool {
	return i >= 0 && i < len(t) && t[i].Kind == TokenPunct && content[t[i].Start] == punct
}

// matchForward returns the index of the ')' closing the '(' at open, or -1.
func (t Tokens) matchForward(open int, content []byte) int {
	depth := 0
	for i := open; i < len(t); i++ {
		switch {
		case t.is(i, content, '('):
			depth++
		case t.is(i, content, ')'):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// matchBackward returns the index of the '(' opened by the ')' at closeIdx,
// or -1.
func (t Tokens) matchBackward(closeIdx int, content []byte) int {
	depth := 0
	for i := closeIdx; i >= 0; i-- {
		switch {
		case t.is(i, content, ')'):
			depth++
		case t.is(i, content, '('):
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// enclosingOpen returns the index of the nearest unmatched '(' before i, or -1.
func (t Tokens) enclosingOpen(i int, content []byte) int {
	depth := 0
	for j := i - 1; j >= 0; j-- {
		switch {
		case t.is(j, content, ')'):
			depth++
		case t.is(j, content, '('):
			if depth == 0 {
				return j
			}
			depth--
		}
	}
	return -1
}

// tokenCache holds the token stream of the latest snapshot seen.
type tokenCache struct {
	mu      sync.Mutex
	version int
	uri     string
	tokens  Tokens
}

func (c *tokenCache) get(snap *document.Snapshot) Tokens {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.tokens == nil || c.version != snap.Version || c.uri != snap.URI {
		c.version = snap.Version
		c.uri = snap.URI
		c.tokens = Lex(snap.Content)
	}
	return c.tokens
}
