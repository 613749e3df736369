// Package synthtest provides a scripted syntax.Service that imitates the
// quirks of clangd's textDocument/ast for engine tests.
package synthtest

import (
	"fmt"
	"strings"
)

// Node is a scripted AST node addressed by byte offsets into the document
// text it belongs to.
type Node struct {
	Kind     string
	Detail   string
	Start    int
	End      int
	NoRange  bool
	Children []*Node
}

// Builder creates nodes by locating substrings of a source text.
type Builder struct {
	text string
}

// NewBuilder returns a builder over text.
func NewBuilder(text string) *Builder {
	return &Builder{text: text}
}

// Span returns the offsets of the nth (zero-based) occurrence of sub.
// It panics when sub does not occur that often, which is a broken test.
func (b *Builder) Span(sub string, nth int) (int, int) {
	from := 0
	for i := 0; ; i++ {
		idx := strings.Index(b.text[from:], sub)
		if idx < 0 {
			panic(fmt.Sprintf("synthtest: occurrence %d of %q not found", nth, sub))
		}
		start := from + idx
		if i == nth {
			return start, start + len(sub)
		}
		from = start + 1
	}
}

// N builds a node spanning the first occurrence of sub.
func (b *Builder) N(kind, sub string, children ...*Node) *Node {
	return b.NthN(kind, sub, 0, children...)
}

// NthN builds a node spanning the nth occurrence of sub.
func (b *Builder) NthN(kind, sub string, nth int, children ...*Node) *Node {
	start, end := b.Span(sub, nth)
	return &Node{Kind: kind, Start: start, End: end, Children: children}
}

// Root builds a TranslationUnit spanning the whole text.
func (b *Builder) Root(children ...*Node) *Node {
	return &Node{Kind: "TranslationUnit", Start: 0, End: len(b.text), Children: children}
}

// Empty builds a node with an empty range at offset.
func Empty(kind string, offset int) *Node {
	return &Node{Kind: kind, Start: offset, End: offset}
}

// Ref is shorthand for a named DeclRef leaf.
func (b *Builder) Ref(name string, nth int) *Node {
	n := b.NthN("DeclRef", name, nth)
	n.Detail = name
	return n
}

// Cast wraps child in an ImplicitCast sharing its range.
func Cast(child *Node) *Node {
	return &Node{Kind: "ImplicitCast", Start: child.Start, End: child.End, Children: []*Node{child}}
}

// smallestEnclosing returns the deepest node containing [start, end].
func smallestEnclosing(root *Node, start, end int) *Node {
	if root == nil || root.Start > start || root.End < end {
		return nil
	}
	for _, child := range root.Children {
		if child.Start == child.End {
			continue
		}
		if found := smallestEnclosing(child, start, end); found != nil {
			return found
		}
	}
	return root
}
