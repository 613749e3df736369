// Package treesitter answers syntax queries in process by parsing C and C++
// with tree-sitter. Node kinds are renamed to clang's where one exists so
// the resolver's kind tables apply to both backends.
package treesitter

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/astnav/internal/logging"
	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/syntax"
)

// ErrUnavailable is returned when the binary was built without cgo.
var ErrUnavailable = errors.New("tree-sitter backend requires cgo")

// node is a parsed syntax node in byte offsets.
type node struct {
	Kind     string
	Start    int
	End      int
	Children []*node
}

type parseFunc func(ctx context.Context, languageID string, content []byte) (*node, error)

type file struct {
	languageID string
	version    int
	text       []byte
	root       *node
}

// Service is a syntax.Service and syntax.DocumentSyncer backed by
// tree-sitter. Each document is parsed once per version, on first query.
type Service struct {
	mu     sync.Mutex
	files  map[string]*file
	parse  parseFunc
	logger *log.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New creates a service with no open documents.
func New(opts ...Option) *Service {
	s := &Service{
		files:  make(map[string]*file),
		parse:  parseSource,
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Available reports whether parsing is compiled in.
func Available() bool {
	return available
}

// DidOpen implements syntax.DocumentSyncer.
func (s *Service) DidOpen(_ context.Context, uri, languageID string, version int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[uri] = &file{languageID: languageID, version: version, text: []byte(text)}
	return nil
}

// DidChange implements syntax.DocumentSyncer.
func (s *Service) DidChange(_ context.Context, uri string, version int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	f, ok := s.files[uri]
	if !ok {
		return fmt.Errorf("%s is not open", uri)
	}
	f.version = version
	f.text = []byte(text)
	f.root = nil
	return nil
}

// DidClose implements syntax.DocumentSyncer.
func (s *Service) DidClose(_ context.Context, uri string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, uri)
	return nil
}

// AST implements syntax.Service. The reply is rooted at the smallest node
// enclosing the range.
func (s *Service) AST(ctx context.Context, req syntax.Request) (*syntax.RawNode, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, ok := s.files[req.URI]
	if !ok {
		return nil, &syntax.ServiceError{Kind: syntax.Protocol, Op: "ast", Err: fmt.Errorf("%s is not open", req.URI)}
	}
	if f.version != req.Version {
		return nil, &syntax.ServiceError{
			Kind: syntax.Protocol,
			Op:   "ast",
			Code: syntax.CodeContentModified,
			Err:  fmt.Errorf("document is at version %d, not %d", f.version, req.Version),
		}
	}

	if f.root == nil {
		root, err := s.parse(ctx, f.languageID, f.text)
		if err != nil {
			return nil, &syntax.ServiceError{Kind: syntax.Unreachable, Op: "parse " + req.URI, Err: err}
		}
		f.root = root
		s.logger.Debug("parsed document", logging.FieldURI, req.URI, logging.FieldVersion, f.version)
	}

	snap := document.NewSnapshot(req.URI, f.version, f.text)
	start, end, err := snap.ByteRange(req.Range)
	if err != nil {
		return nil, &syntax.ServiceError{Kind: syntax.Protocol, Op: "ast", Err: err}
	}
	return enclosing(f.root, start, end).raw(snap), nil
}

// enclosing returns the deepest node containing [start, end].
func enclosing(root *node, start, end int) *node {
	if root == nil || root.Start > start || root.End < end {
		return nil
	}
	for _, child := range root.Children {
		if found := enclosing(child, start, end); found != nil {
			return found
		}
	}
	return root
}

func (n *node) raw(snap *document.Snapshot) *syntax.RawNode {
	if n == nil {
		return nil
	}
	r := snap.RangeOf(n.Start, n.End)
	out := &syntax.RawNode{Kind: n.Kind, Range: &r}
	for _, child := range n.Children {
		out.Children = append(out.Children, child.raw(snap))
	}
	return out
}
