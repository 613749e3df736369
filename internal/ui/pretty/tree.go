package pretty

import (
	"strings"

	"github.com/yaklabco/astnav/pkg/syntax"
)

// Tree guide segments.
const (
	guideBranch = "├─ "
	guideLast   = "└─ "
	guideStem   = "│  "
	guideBlank  = "   "
)

// FormatTree renders a service reply as an indented tree, one node per line:
// kind, detail and range. Nodes without a location are marked "<no range>".
func (s *Styles) FormatTree(root *syntax.RawNode) string {
	if root == nil {
		return s.Dim.Render("<no node>") + "\n"
	}

	var builder strings.Builder
	s.writeNode(&builder, root, "", "")
	return builder.String()
}

func (s *Styles) writeNode(builder *strings.Builder, n *syntax.RawNode, lead, prefix string) {
	builder.WriteString(s.Guide.Render(lead))
	builder.WriteString(s.Kind.Render(n.Kind))
	if n.Detail != "" {
		builder.WriteString(" " + s.Detail.Render(n.Detail))
	}
	if n.Range != nil {
		builder.WriteString("  " + s.Location.Render(n.Range.String()))
	} else {
		builder.WriteString("  " + s.Dim.Render("<no range>"))
	}
	builder.WriteString("\n")

	for i, child := range n.Children {
		if child == nil {
			continue
		}
		if i == len(n.Children)-1 {
			s.writeNode(builder, child, prefix+guideLast, prefix+guideBlank)
		} else {
			s.writeNode(builder, child, prefix+guideBranch, prefix+guideStem)
		}
	}
}
