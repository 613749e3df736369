// Package query issues range queries against the syntax service, normalizes
// the replies and memoizes them per document version.
package query

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/yaklabco/astnav/internal/logging"
	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/syntax"
)

// DefaultTimeout bounds a single round trip when no timeout is configured.
const DefaultTimeout = 2 * time.Second

// Stats counts adapter activity.
type Stats struct {
	Queries   int64
	CacheHits int64
	Retries   int64
	Stale     int64
	Malformed int64
}

// Adapter is the only path from the engine to the syntax service.
type Adapter struct {
	service syntax.Service
	epochs  *Epochs
	cache   *Cache
	timeout time.Duration
	logger  *log.Logger

	queries   atomic.Int64
	cacheHits atomic.Int64
	retries   atomic.Int64
	stale     atomic.Int64
	malformed atomic.Int64
}

// Option configures an Adapter.
type Option func(*Adapter)

// WithTimeout sets the per-query timeout. Zero or negative keeps the default.
func WithTimeout(d time.Duration) Option {
	return func(a *Adapter) {
		if d > 0 {
			a.timeout = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *log.Logger) Option {
	return func(a *Adapter) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithCache shares an existing cache.
func WithCache(cache *Cache) Option {
	return func(a *Adapter) {
		if cache != nil {
			a.cache = cache
		}
	}
}

// NewAdapter creates an adapter for one document.
func NewAdapter(service syntax.Service, epochs *Epochs, opts ...Option) *Adapter {
	a := &Adapter{
		service: service,
		epochs:  epochs,
		cache:   NewCache(),
		timeout: DefaultTimeout,
		logger:  logging.Discard(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Cache returns the adapter's cache.
func (a *Adapter) Cache() *Cache {
	return a.cache
}

// Epochs returns the adapter's clock.
func (a *Adapter) Epochs() *Epochs {
	return a.epochs
}

// Stats returns a snapshot of the counters.
func (a *Adapter) Stats() Stats {
	return Stats{
		Queries:   a.queries.Load(),
		CacheHits: a.cacheHits.Load(),
		Retries:   a.retries.Load(),
		Stale:     a.stale.Load(),
		Malformed: a.malformed.Load(),
	}
}

// Query returns the normalized tree the service roots at r for snap.
//
// A nil node with a nil error means the service had nothing there. Rejected
// replies are cached as misses and return syntax.ErrMalformedTree. Replies
// that arrive after t went stale return syntax.ErrStaleEpoch and leave the
// cache untouched.
func (a *Adapter) Query(ctx context.Context, t Ticket, snap *document.Snapshot, r document.Range) (*syntax.Node, error) {
	if err := a.checkTicket(t); err != nil {
		return nil, err
	}
	if err := snap.CheckRange(r); err != nil {
		return nil, fmt.Errorf("%w: %w", syntax.ErrInvalidRange, err)
	}

	if node, found, miss := a.cache.Get(snap.Version, r); found {
		a.cacheHits.Add(1)
		if miss {
			return nil, &syntax.MalformedTreeError{Reason: "cached miss", Range: r}
		}
		return node, nil
	}

	req := syntax.Request{URI: snap.URI, Version: snap.Version, Range: r}
	raw, err := a.roundTrip(ctx, t, req)
	if err != nil {
		return nil, err
	}
	if err := a.checkTicket(t); err != nil {
		return nil, err
	}

	node, err := syntax.Normalize(raw, snap.Version, r)
	if err != nil {
		a.malformed.Add(1)
		a.logger.Warn("rejecting syntax reply",
			logging.FieldRange, r.String(),
			logging.FieldVersion, snap.Version,
			logging.FieldError, err)
		a.cache.PutMiss(snap.Version, r)
		return nil, err
	}

	a.cache.Put(snap.Version, r, node)
	return node, nil
}

// roundTrip calls the service, retrying exactly once when the service
// reports a transient failure and t is still current.
func (a *Adapter) roundTrip(ctx context.Context, t Ticket, req syntax.Request) (*syntax.RawNode, error) {
	for attempt := 0; ; attempt++ {
		raw, err := a.call(ctx, t, req, attempt)
		if err == nil {
			return raw, nil
		}
		if attempt == 0 && syntax.IsTransient(err) && a.epochs.IsCurrent(t) {
			a.retries.Add(1)
			a.logger.Debug("retrying transient failure",
				logging.FieldRange, req.Range.String(),
				logging.FieldError, err)
			continue
		}
		return nil, err
	}
}

func (a *Adapter) call(ctx context.Context, t Ticket, req syntax.Request, attempt int) (*syntax.RawNode, error) {
	qctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	a.queries.Add(1)
	a.logger.Debug("query",
		logging.FieldRange, req.Range.String(),
		logging.FieldVersion, req.Version,
		logging.FieldEpoch, t.Epoch,
		logging.FieldCommand, t.Command,
		logging.FieldAttempt, attempt)

	raw, err := a.service.AST(qctx, req)
	if err == nil {
		return raw, nil
	}

	// A cancelled command surfaces as stale, not as a service failure.
	if ctx.Err() != nil || !a.epochs.IsCurrent(t) {
		if staleErr := a.checkTicket(t); staleErr != nil {
			return nil, staleErr
		}
		return nil, fmt.Errorf("query %s: %w", req.Range, ctx.Err())
	}

	var svcErr *syntax.ServiceError
	switch {
	case errors.As(err, &svcErr):
		return nil, err
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(qctx.Err(), context.DeadlineExceeded):
		return nil, &syntax.ServiceError{Kind: syntax.Timeout, Op: "ast " + req.Range.String(), Err: err}
	default:
		return nil, &syntax.ServiceError{Kind: syntax.Unreachable, Op: "ast " + req.Range.String(), Err: err}
	}
}

func (a *Adapter) checkTicket(t Ticket) error {
	if err := a.epochs.Check(t); err != nil {
		a.stale.Add(1)
		return err
	}
	return nil
}
