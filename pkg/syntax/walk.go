package syntax

import "errors"

// SkipChildren may be returned from a WalkFunc to skip the node's subtree
// without stopping the walk.
var SkipChildren = errors.New("skip children") //nolint:errname,revive,staticcheck // control value for Walk

// WalkFunc is the function signature for Walk callbacks.
// Return a non-nil error to stop the walk.
type WalkFunc func(n *Node) error

// Walk performs a pre-order traversal of the tree starting at root.
func Walk(root *Node, walkFunc WalkFunc) error {
	if root == nil {
		return nil
	}

	if err := walkFunc(root); err != nil {
		if errors.Is(err, SkipChildren) {
			return nil
		}
		return err
	}

	for _, child := range root.Children {
		if err := Walk(child, walkFunc); err != nil {
			return err
		}
	}

	return nil
}

// FindAll returns all nodes that satisfy the predicate, in pre-order.
func FindAll(root *Node, pred func(*Node) bool) []*Node {
	var result []*Node
	_ = Walk(root, func(n *Node) error {
		if pred(n) {
			result = append(result, n)
		}
		return nil
	})
	return result
}

// FindFirst returns the first node in pre-order satisfying pred, or nil.
func FindFirst(root *Node, pred func(*Node) bool) *Node {
	var found *Node
	errFound := errors.New("found")
	_ = Walk(root, func(n *Node) error {
		if pred(n) {
			found = n
			return errFound
		}
		return nil
	})
	return found
}

// Descendants returns every node below root, excluding root itself.
func Descendants(root *Node) []*Node {
	if root == nil {
		return nil
	}
	var result []*Node
	for _, child := range root.Children {
		result = append(result, FindAll(child, func(*Node) bool { return true })...)
	}
	return result
}

// Paths calls fn with the root-to-node path of every node that satisfies
// pred, in pre-order. The path slice is reused between calls; copy it to
// retain it. Returning false stops the search.
func Paths(root *Node, pred func(*Node) bool, fn func(path []*Node) bool) {
	var path []*Node
	var visit func(n *Node) bool
	visit = func(n *Node) bool {
		path = append(path, n)
		defer func() { path = path[:len(path)-1] }()

		if pred(n) && !fn(path) {
			return false
		}
		for _, child := range n.Children {
			if !visit(child) {
				return false
			}
		}
		return true
	}
	if root != nil {
		visit(root)
	}
}

// PathTo returns the path from root to the first node satisfying pred, both
// ends included, or nil.
func PathTo(root *Node, pred func(*Node) bool) []*Node {
	var result []*Node
	Paths(root, pred, func(path []*Node) bool {
		result = append([]*Node(nil), path...)
		return false
	})
	return result
}

// Contains reports whether any node in root's subtree, root included, has
// the same identity as target.
func Contains(root, target *Node) bool {
	return FindFirst(root, target.Equal) != nil
}
