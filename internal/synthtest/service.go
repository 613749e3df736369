package synthtest

import (
	"context"
	"errors"
	"sync"

	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/syntax"
)

// Macro marks a byte span whose text comes from a macro expansion. Queries
// starting or ending inside it get a root with no source range.
type Macro struct {
	Start int
	End   int
	Kind  string
}

// Macro returns the span of the nth occurrence of sub as a macro region.
func (b *Builder) Macro(kind, sub string, nth int) Macro {
	start, end := b.Span(sub, nth)
	return Macro{Start: start, End: end, Kind: kind}
}

// Responder overrides the scripted reply for a request. Returning handled
// false falls through to the script.
type Responder func(req syntax.Request, text string) (reply *syntax.RawNode, handled bool, err error)

type script struct {
	root   *Node
	macros []Macro
}

// Service is a scripted syntax.Service and syntax.DocumentSyncer.
//
// Each text registered with Script gets a tree. A request is answered from
// the tree of the text the document had at the request's version: the
// deepest node enclosing the range, with nil returned when that node is the
// translation unit, as clangd does.
type Service struct {
	mu       sync.Mutex
	scripts  map[string]script
	texts    map[int]string
	opaque   map[string]bool
	requests []syntax.Request
	failures []error
	respond  Responder
	gate     *gate
	changes  int
}

type gate struct {
	release   chan struct{}
	waiting   chan struct{}
	ignoreCtx bool
}

// New creates an empty service.
func New() *Service {
	return &Service{
		scripts: make(map[string]script),
		texts:   make(map[int]string),
		opaque:  map[string]bool{syntax.KindTranslationUnit: true},
	}
}

// Script registers the tree and macro regions for a document text.
func (s *Service) Script(text string, root *Node, macros ...Macro) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scripts[text] = script{root: root, macros: macros}
}

// Open records text as the content of version without a DidOpen call.
func (s *Service) Open(version int, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts[version] = text
}

// SetResponder installs an override consulted before the script.
func (s *Service) SetResponder(r Responder) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.respond = r
}

// FailNext queues err as the result of the next request.
func (s *Service) FailNext(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = append(s.failures, err)
}

// BlockNext makes the next request wait until release is called. The
// returned channel is closed once that request is waiting. With ignoreCtx
// the request keeps waiting after its context is cancelled and then replies
// normally, imitating a reply that arrives late.
func (s *Service) BlockNext(ignoreCtx bool) (release func(), waiting <-chan struct{}) {
	g := &gate{release: make(chan struct{}), waiting: make(chan struct{}), ignoreCtx: ignoreCtx}
	s.mu.Lock()
	s.gate = g
	s.mu.Unlock()

	var once sync.Once
	return func() { once.Do(func() { close(g.release) }) }, g.waiting
}

// Requests returns a copy of every request received.
func (s *Service) Requests() []syntax.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]syntax.Request(nil), s.requests...)
}

// QueryCount returns the number of requests received.
func (s *Service) QueryCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}

// ChangeCount returns the number of DidChange notifications received.
func (s *Service) ChangeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.changes
}

// ResetRequests forgets recorded requests.
func (s *Service) ResetRequests() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.requests = nil
}

// AST implements syntax.Service.
func (s *Service) AST(ctx context.Context, req syntax.Request) (*syntax.RawNode, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	g := s.gate
	s.gate = nil
	var failure error
	if len(s.failures) > 0 {
		failure, s.failures = s.failures[0], s.failures[1:]
	}
	respond := s.respond
	text, known := s.texts[req.Version]
	sc := s.scripts[text]
	opaque := s.opaque
	s.mu.Unlock()

	if g != nil {
		close(g.waiting)
		if g.ignoreCtx {
			<-g.release
		} else {
			select {
			case <-g.release:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
	}

	if failure != nil {
		return nil, failure
	}
	if !known {
		return nil, &syntax.ServiceError{Kind: syntax.Protocol, Op: "ast", Code: syntax.CodeContentModified,
			Err: errors.New("unknown document version")}
	}
	if respond != nil {
		if reply, handled, err := respond(req, text); handled {
			return reply, err
		}
	}
	if sc.root == nil {
		return nil, nil
	}

	snap := document.NewSnapshot(req.URI, req.Version, []byte(text))
	start, end, err := snap.ByteRange(req.Range)
	if err != nil {
		return nil, &syntax.ServiceError{Kind: syntax.Protocol, Op: "ast", Err: err}
	}

	for _, m := range sc.macros {
		inStart := start >= m.Start && start < m.End
		inEnd := end > m.Start && end <= m.End && end > start
		if inStart || inEnd {
			return &syntax.RawNode{Kind: m.Kind}, nil
		}
	}

	found := smallestEnclosing(sc.root, start, end)
	if found == nil || opaque[found.Kind] {
		return nil, nil
	}
	return toRaw(found, snap), nil
}

func toRaw(n *Node, snap *document.Snapshot) *syntax.RawNode {
	raw := &syntax.RawNode{Kind: n.Kind, Detail: n.Detail}
	if !n.NoRange {
		r := snap.RangeOf(n.Start, n.End)
		raw.Range = &r
	}
	for _, child := range n.Children {
		raw.Children = append(raw.Children, toRaw(child, snap))
	}
	return raw
}

// DidOpen implements syntax.DocumentSyncer.
func (s *Service) DidOpen(_ context.Context, _, _ string, version int, text string) error {
	s.Open(version, text)
	return nil
}

// DidChange implements syntax.DocumentSyncer.
func (s *Service) DidChange(_ context.Context, _ string, version int, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.texts[version] = text
	s.changes++
	return nil
}

// DidClose implements syntax.DocumentSyncer.
func (s *Service) DidClose(context.Context, string) error {
	return nil
}
