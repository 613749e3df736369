// Package nav owns the per-document cursor and implements the navigation
// and structural edit commands on top of the parent resolver.
//
// A Session serializes commands: starting one cancels the one in flight,
// and any reply issued under the old ticket is dropped. Session state is
// guarded by a mutex that is never held across a query, so an edit or a
// change notification can always cut in.
package nav

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/astnav/internal/logging"
	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/query"
	"github.com/yaklabco/astnav/pkg/resolve"
	"github.com/yaklabco/astnav/pkg/syntax"
)

// Cursor is the focused node and the document version it was anchored at.
// It is replaced wholesale on every move.
type Cursor struct {
	Node    *syntax.Node
	Version int
}

// Stale reports whether the cursor was anchored at an older version.
func (c *Cursor) Stale(version int) bool {
	return c.Version != version
}

// Session is the navigation state of one open document.
type Session struct {
	mu      sync.Mutex
	snap    *document.Snapshot
	cursor  *Cursor
	cancel  context.CancelFunc
	running uint64

	epochs   *query.Epochs
	adapter  *query.Adapter
	resolver *resolve.Resolver
	syncer   syntax.DocumentSyncer
	logger   *log.Logger
}

type options struct {
	logger     *log.Logger
	heuristics *resolve.Heuristics
	timeout    time.Duration
	languageID string
	version    int
}

// Option configures a Session.
type Option func(*options)

// WithLogger sets the logger used by the session and its resolver.
func WithLogger(logger *log.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithHeuristics sets the resolver's kind tables and bounds.
func WithHeuristics(h resolve.Heuristics) Option {
	return func(o *options) { o.heuristics = &h }
}

// WithTimeout sets the per-query timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *options) { o.timeout = d }
}

// WithLanguage sets the languageId sent when opening the document.
func WithLanguage(id string) Option {
	return func(o *options) { o.languageID = id }
}

// WithVersion sets the initial document version.
func WithVersion(v int) Option {
	return func(o *options) { o.version = v }
}

// Open starts a session for a document. If the service also implements
// syntax.DocumentSyncer it is told about the document first.
func Open(ctx context.Context, service syntax.Service, uri string, text []byte, opts ...Option) (*Session, error) {
	o := options{logger: logging.Discard(), languageID: "cpp", version: 1}
	for _, opt := range opts {
		opt(&o)
	}

	epochs := query.NewEpochs()
	adapter := query.NewAdapter(service, epochs, query.WithTimeout(o.timeout), query.WithLogger(o.logger))
	resolverOpts := []resolve.Option{resolve.WithLogger(o.logger)}
	if o.heuristics != nil {
		resolverOpts = append(resolverOpts, resolve.WithHeuristics(*o.heuristics))
	}

	s := &Session{
		snap:     document.NewSnapshot(uri, o.version, text),
		epochs:   epochs,
		adapter:  adapter,
		resolver: resolve.New(adapter, resolverOpts...),
		logger:   o.logger,
	}
	s.adapter.Cache().Reset(o.version)

	if syncer, ok := service.(syntax.DocumentSyncer); ok {
		s.syncer = syncer
		if err := syncer.DidOpen(ctx, uri, o.languageID, o.version, string(text)); err != nil {
			return nil, fmt.Errorf("open %s: %w", uri, err)
		}
	}

	return s, nil
}

// Close cancels in-flight work and tells the service the document is gone.
func (s *Session) Close(ctx context.Context) error {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.epochs.NextCommand()
	uri := s.snap.URI
	s.mu.Unlock()

	if s.syncer == nil {
		return nil
	}
	if err := s.syncer.DidClose(ctx, uri); err != nil {
		return fmt.Errorf("close %s: %w", uri, err)
	}
	return nil
}

// Snapshot returns the current document snapshot.
func (s *Session) Snapshot() *document.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snap
}

// Cursor returns the current cursor, or nil before the first focus.
func (s *Session) Cursor() *Cursor {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cursor
}

// Selection projects the current cursor.
func (s *Session) Selection() document.Range {
	return Project(s.Cursor())
}

// Stats returns the adapter's counters.
func (s *Session) Stats() query.Stats {
	return s.adapter.Stats()
}

// Resolver returns the session's parent resolver.
func (s *Session) Resolver() *resolve.Resolver {
	return s.resolver
}

// Execute runs cmd to completion.
func (s *Session) Execute(ctx context.Context, cmd Command) Outcome {
	run := s.begin(ctx, cmd)
	return run.finish()
}

// Dispatch starts cmd and returns immediately. Starting the command cancels
// the previous one, so commands take effect in the order they are
// dispatched even though they complete on other goroutines.
func (s *Session) Dispatch(ctx context.Context, cmd Command) <-chan Outcome {
	run := s.begin(ctx, cmd)
	out := make(chan Outcome, 1)
	go func() {
		out <- run.finish()
	}()
	return out
}

// DidChange applies a change made by the host editor. The in-flight command
// is cancelled, the cache dropped and the cursor kept; it gets re-anchored
// on the next command.
func (s *Session) DidChange(ctx context.Context, version int, text []byte) error {
	s.mu.Lock()
	if version <= s.snap.Version {
		current := s.snap.Version
		s.mu.Unlock()
		return fmt.Errorf("document version %d is not newer than %d", version, current)
	}
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.snap = s.snap.WithText(version, text)
	s.epochs.NextCommand()
	s.epochs.Advance()
	s.adapter.Cache().Reset(version)
	uri := s.snap.URI
	s.mu.Unlock()

	s.logger.Debug("document changed", logging.FieldURI, uri, logging.FieldVersion, version)
	return s.notify(ctx, uri, version, string(text))
}

func (s *Session) notify(ctx context.Context, uri string, version int, text string) error {
	if s.syncer == nil {
		return nil
	}
	if err := s.syncer.DidChange(ctx, uri, version, text); err != nil {
		return fmt.Errorf("sync %s@%d: %w", uri, version, err)
	}
	return nil
}

// run is one command in flight.
type run struct {
	s      *Session
	ctx    context.Context
	cancel context.CancelFunc
	cmd    Command
	ticket query.Ticket
	snap   *document.Snapshot
	cursor *Cursor
}

func (s *Session) begin(ctx context.Context, cmd Command) *run {
	cctx, cancel := context.WithCancel(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cancel != nil {
		s.cancel()
	}
	s.cancel = cancel
	ticket := s.epochs.NextCommand()
	s.running = ticket.Command

	return &run{
		s:      s,
		ctx:    cctx,
		cancel: cancel,
		cmd:    cmd,
		ticket: ticket,
		snap:   s.snap,
		cursor: s.cursor,
	}
}

func (r *run) finish() Outcome {
	defer r.release()

	var out Outcome
	if r.cmd.Op.IsEdit() {
		out = r.edit()
	} else {
		out = r.navigate()
	}
	out.Op = r.cmd.Op

	level := log.DebugLevel
	if out.Status == StatusError {
		level = log.WarnLevel
	}
	r.s.logger.Log(level, "command",
		logging.FieldOp, out.Op.String(),
		logging.FieldStatus, out.Status.String(),
		logging.FieldReason, out.Reason,
		logging.FieldCommand, r.ticket.Command)
	return out
}

func (r *run) release() {
	r.cancel()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.running == r.ticket.Command {
		r.s.cancel = nil
	}
}

// commit installs c if the run is still current.
func (r *run) commit(c *Cursor) bool {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if !r.s.epochs.IsCurrent(r.ticket) {
		return false
	}
	r.s.cursor = c
	return true
}

// unwrap strips coextensive implicit wrappers so the cursor rests on a
// meaningful node.
func (r *run) unwrap(n *syntax.Node) *syntax.Node {
	return r.s.resolver.Heuristics().Unwrap(n)
}

// fail maps an error to an outcome at the command boundary.
func (r *run) fail(err error, reason string) Outcome {
	switch {
	case errors.Is(err, syntax.ErrStaleEpoch) || errors.Is(err, context.Canceled):
		return Outcome{Status: StatusStale, Err: err, Version: r.snap.Version}
	case errors.Is(err, syntax.ErrParentNotFound):
		return r.noop(reason)
	default:
		if reason == "" {
			reason = err.Error()
		} else {
			reason += ": " + err.Error()
		}
		return Outcome{Status: StatusError, Err: err, Reason: reason, Selection: Project(r.cursor), Version: r.snap.Version}
	}
}

func (r *run) noop(reason string) Outcome {
	return Outcome{Status: StatusNoop, Reason: reason, Selection: Project(r.cursor), Version: r.snap.Version}
}

func (r *run) stale() Outcome {
	return Outcome{Status: StatusStale, Err: syntax.ErrStaleEpoch, Version: r.snap.Version}
}

// moved commits c and reports success, or a stale outcome if superseded.
func (r *run) moved(c *Cursor) Outcome {
	if !r.commit(c) {
		return r.stale()
	}
	return Outcome{Status: StatusSuccess, Selection: Project(c), Version: c.Version}
}
