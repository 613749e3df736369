// Package syntax defines the AST model shared by the query, resolver and
// navigation layers, the contract of the external syntax service, and the
// error kinds that cross those boundaries.
//
// Nodes carry no parent pointer. Parentage is derived on demand by the
// resolver because the service is range-indexed and macro rewriting makes
// stored links unreliable across edits.
package syntax

import (
	"fmt"

	"github.com/yaklabco/astnav/pkg/document"
)

// Well-known kinds. Kind is an open tag; anything the service reports is
// accepted and these are only the ones the engine treats specially.
const (
	KindTranslationUnit = "TranslationUnit"
	KindImplicitCast    = "ImplicitCast"
)

// Node is a normalized, immutable AST node.
type Node struct {
	// Kind identifies the syntactic category, e.g. "Call" or "DeclRef".
	Kind string `json:"kind"`

	// Role is the service's role tag ("expression", "declaration", ...).
	Role string `json:"role,omitempty"`

	// Detail is free-form extra text such as the referenced name.
	Detail string `json:"detail,omitempty"`

	// Range is the node's source span. Empty for macro-produced nodes.
	Range document.Range `json:"range"`

	// Children are the node's children in source order.
	Children []*Node `json:"children,omitempty"`

	// Version is the document version the node was produced for.
	Version int `json:"version"`
}

// Key is the identity of a node across separate query replies.
type Key struct {
	Kind  string
	Range document.Range
}

// Key returns the kind and range identity of n.
func (n *Node) Key() Key {
	return Key{Kind: n.Kind, Range: n.Range}
}

// Equal reports whether two nodes have the same kind and range.
// Nodes from different replies are never pointer-equal, so this is the
// identity used everywhere.
func (n *Node) Equal(other *Node) bool {
	if n == nil || other == nil {
		return n == other
	}
	return n.Kind == other.Kind && n.Range == other.Range
}

// IsEmpty reports whether the node has no direct textual representation.
func (n *Node) IsEmpty() bool {
	return n.Range.IsEmpty()
}

// HasChildren returns true if this node has any children.
func (n *Node) HasChildren() bool {
	return len(n.Children) > 0
}

// ChildCount returns the number of direct children.
func (n *Node) ChildCount() int {
	return len(n.Children)
}

// ChildIndex returns the index of the first child with the given range, or -1.
func (n *Node) ChildIndex(r document.Range) int {
	for i, child := range n.Children {
		if child.Range == r {
			return i
		}
	}
	return -1
}

func (n *Node) String() string {
	if n == nil {
		return "<nil>"
	}
	if n.Detail != "" {
		return fmt.Sprintf("%s(%s)@%s", n.Kind, n.Detail, n.Range)
	}
	return fmt.Sprintf("%s@%s", n.Kind, n.Range)
}
