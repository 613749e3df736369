//go:build !cgo

package treesitter

import "context"

const available = false

func parseSource(context.Context, string, []byte) (*node, error) {
	return nil, ErrUnavailable
}
