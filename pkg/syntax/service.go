package syntax

import (
	"context"

	"github.com/yaklabco/astnav/pkg/document"
)

// Request asks the service for the AST spanning a range of one document
// version.
type Request struct {
	URI     string
	Version int
	Range   document.Range
}

// RawNode is a service reply before normalization.
// Range is nil when the service gave the node no source location.
type RawNode struct {
	Kind     string          `json:"kind"`
	Role     string          `json:"role,omitempty"`
	Detail   string          `json:"detail,omitempty"`
	Range    *document.Range `json:"range,omitempty"`
	Children []*RawNode      `json:"children,omitempty"`
}

// Service is the external syntax-analysis service. It answers only "what is
// the AST for this range", rooted at whatever construct it judges to enclose
// the range. A nil node with a nil error means nothing is there.
type Service interface {
	AST(ctx context.Context, req Request) (*RawNode, error)
}

// DocumentSyncer is implemented by services that need to be told about
// document text, such as a language server.
type DocumentSyncer interface {
	DidOpen(ctx context.Context, uri, languageID string, version int, text string) error
	DidChange(ctx context.Context, uri string, version int, text string) error
	DidClose(ctx context.Context, uri string) error
}
