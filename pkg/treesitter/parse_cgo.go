//go:build cgo

package treesitter

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
)

const available = true

func grammar(languageID string) *sitter.Language {
	if languageID == "c" {
		return c.GetLanguage()
	}
	return cpp.GetLanguage()
}

func parseSource(ctx context.Context, languageID string, content []byte) (*node, error) {
	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar(languageID))

	tree, err := parser.ParseCtx(ctx, nil, content)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", languageID, err)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parse %s: no root node", languageID)
	}
	return convert(root), nil
}

func convert(n *sitter.Node) *node {
	out := &node{Kind: kindOf(n.Type()), Start: int(n.StartByte()), End: int(n.EndByte())}
	for i := range int(n.NamedChildCount()) {
		child := n.NamedChild(i)
		if child == nil || skipped[child.Type()] {
			continue
		}
		converted := convert(child)
		if flattened[child.Type()] {
			out.Children = append(out.Children, converted.Children...)
			continue
		}
		out.Children = append(out.Children, converted)
	}
	return out
}
