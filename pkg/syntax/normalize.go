package syntax

import "github.com/yaklabco/astnav/pkg/document"

// Normalize converts a raw reply into an immutable Node tree tagged with
// version.
//
// A node without a location gets an empty range anchored at the end of its
// previous sibling, else at its parent's start, else at the query start.
// Every node must have a kind, and a non-empty child must lie inside a
// non-empty parent. Empty children are exempt: macro-produced nodes are
// often reported outside their parent.
func Normalize(raw *RawNode, version int, query document.Range) (*Node, error) {
	if raw == nil {
		return nil, nil //nolint:nilnil // nothing at this range
	}
	return normalizeNode(raw, version, query.Start)
}

func normalizeNode(raw *RawNode, version int, anchor document.Position) (*Node, error) {
	rng := document.PointRange(anchor)
	if raw.Range != nil {
		rng = *raw.Range
	}
	if raw.Kind == "" {
		return nil, &MalformedTreeError{Reason: "missing kind", Range: rng}
	}
	if !rng.IsValid() {
		return nil, &MalformedTreeError{Reason: "inverted range", Range: rng}
	}

	node := &Node{
		Kind:    raw.Kind,
		Role:    raw.Role,
		Detail:  raw.Detail,
		Range:   rng,
		Version: version,
	}
	if len(raw.Children) == 0 {
		return node, nil
	}

	node.Children = make([]*Node, 0, len(raw.Children))
	childAnchor := rng.Start
	for _, rawChild := range raw.Children {
		if rawChild == nil {
			continue
		}
		child, err := normalizeNode(rawChild, version, childAnchor)
		if err != nil {
			return nil, err
		}
		if !rng.IsEmpty() && !child.IsEmpty() && !rng.ContainsRange(child.Range) {
			return nil, &MalformedTreeError{
				Reason: "child " + child.String() + " escapes " + node.Kind,
				Range:  rng,
			}
		}
		node.Children = append(node.Children, child)
		childAnchor = child.Range.End
	}

	return node, nil
}
