package query_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yaklabco/astnav/internal/synthtest"
	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/query"
	"github.com/yaklabco/astnav/pkg/syntax"
)

const callText = "foo(bar);"

func newCallFixture(t *testing.T, opts ...query.Option) (*synthtest.Service, *query.Adapter, *document.Snapshot) {
	t.Helper()

	b := synthtest.NewBuilder(callText)
	svc := synthtest.New()
	svc.Script(callText, b.Root(
		b.N("Call", "foo(bar)", synthtest.Cast(b.Ref("foo", 0)), synthtest.Cast(b.Ref("bar", 0))),
	))
	svc.Open(1, callText)

	adapter := query.NewAdapter(svc, query.NewEpochs(), opts...)
	return svc, adapter, document.NewSnapshot("file:///call.c", 1, []byte(callText))
}

func TestAdapter_QueryCaches(t *testing.T) {
	t.Parallel()

	svc, adapter, snap := newCallFixture(t)
	ticket := adapter.Epochs().Current()

	node, err := adapter.Query(context.Background(), ticket, snap, document.NewRange(0, 4, 0, 7))
	require.NoError(t, err)
	require.NotNil(t, node)
	assert.Equal(t, "DeclRef", node.Kind)
	assert.Equal(t, 1, node.Version)

	again, err := adapter.Query(context.Background(), ticket, snap, document.NewRange(0, 4, 0, 7))
	require.NoError(t, err)
	assert.Same(t, node, again)
	assert.Equal(t, 1, svc.QueryCount())
	assert.Equal(t, int64(1), adapter.Stats().CacheHits)
}

func TestAdapter_NothingThere(t *testing.T) {
	t.Parallel()

	_, adapter, snap := newCallFixture(t)

	node, err := adapter.Query(context.Background(), adapter.Epochs().Current(), snap, snap.Full())
	require.NoError(t, err)
	assert.Nil(t, node, "translation unit replies are withheld")
}

func TestAdapter_InvalidRange(t *testing.T) {
	t.Parallel()

	svc, adapter, snap := newCallFixture(t)
	ticket := adapter.Epochs().Current()

	_, err := adapter.Query(context.Background(), ticket, snap, document.NewRange(0, 7, 0, 4))
	assert.True(t, errors.Is(err, syntax.ErrInvalidRange))

	_, err = adapter.Query(context.Background(), ticket, snap, document.NewRange(4, 0, 4, 1))
	assert.True(t, errors.Is(err, syntax.ErrInvalidRange))
	assert.Zero(t, svc.QueryCount())
}

func TestAdapter_StaleTicketBeforeSend(t *testing.T) {
	t.Parallel()

	svc, adapter, snap := newCallFixture(t)
	ticket := adapter.Epochs().Current()
	adapter.Epochs().NextCommand()

	_, err := adapter.Query(context.Background(), ticket, snap, document.NewRange(0, 0, 0, 3))
	assert.True(t, errors.Is(err, syntax.ErrStaleEpoch))
	assert.Zero(t, svc.QueryCount())
}

func TestAdapter_LateReplyIsDropped(t *testing.T) {
	t.Parallel()

	svc, adapter, snap := newCallFixture(t)
	ticket := adapter.Epochs().Current()

	release, waiting := svc.BlockNext(true)
	done := make(chan error, 1)
	go func() {
		_, err := adapter.Query(context.Background(), ticket, snap, document.NewRange(0, 0, 0, 3))
		done <- err
	}()

	<-waiting
	adapter.Epochs().Advance()
	release()

	err := <-done
	assert.True(t, errors.Is(err, syntax.ErrStaleEpoch))
	assert.Zero(t, adapter.Cache().Len(), "stale replies must not reach the cache")
}

func TestAdapter_RetriesTransientOnce(t *testing.T) {
	t.Parallel()

	svc, adapter, snap := newCallFixture(t)
	svc.FailNext(&syntax.ServiceError{Kind: syntax.Protocol, Op: "ast", Code: syntax.CodeContentModified})

	node, err := adapter.Query(context.Background(), adapter.Epochs().Current(), snap, document.NewRange(0, 0, 0, 3))
	require.NoError(t, err)
	assert.Equal(t, "DeclRef", node.Kind)
	assert.Equal(t, 2, svc.QueryCount())
	assert.Equal(t, int64(1), adapter.Stats().Retries)
}

func TestAdapter_SecondTransientSurfaces(t *testing.T) {
	t.Parallel()

	svc, adapter, snap := newCallFixture(t)
	for range 2 {
		svc.FailNext(&syntax.ServiceError{Kind: syntax.Protocol, Op: "ast", Code: syntax.CodeRequestCancelled})
	}

	_, err := adapter.Query(context.Background(), adapter.Epochs().Current(), snap, document.NewRange(0, 0, 0, 3))
	require.Error(t, err)
	assert.True(t, syntax.IsTransient(err))
	assert.Equal(t, 2, svc.QueryCount())
}

func TestAdapter_TimeoutIsNotRetried(t *testing.T) {
	t.Parallel()

	svc, adapter, snap := newCallFixture(t, query.WithTimeout(20*time.Millisecond))
	release, _ := svc.BlockNext(false)
	defer release()

	_, err := adapter.Query(context.Background(), adapter.Epochs().Current(), snap, document.NewRange(0, 0, 0, 3))

	var svcErr *syntax.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, syntax.Timeout, svcErr.Kind)
	assert.Equal(t, 1, svc.QueryCount())
}

func TestAdapter_UnreachableWrapsTransportErrors(t *testing.T) {
	t.Parallel()

	svc, adapter, snap := newCallFixture(t)
	svc.FailNext(errors.New("broken pipe"))

	_, err := adapter.Query(context.Background(), adapter.Epochs().Current(), snap, document.NewRange(0, 0, 0, 3))

	var svcErr *syntax.ServiceError
	require.True(t, errors.As(err, &svcErr))
	assert.Equal(t, syntax.Unreachable, svcErr.Kind)
	assert.Contains(t, err.Error(), "broken pipe")
}

func TestAdapter_MalformedIsCachedMiss(t *testing.T) {
	t.Parallel()

	svc, adapter, snap := newCallFixture(t)
	outer := document.NewRange(0, 0, 0, 3)
	escaping := document.NewRange(0, 2, 0, 8)
	svc.SetResponder(func(syntax.Request, string) (*syntax.RawNode, bool, error) {
		return &syntax.RawNode{
			Kind:     "Call",
			Range:    &outer,
			Children: []*syntax.RawNode{{Kind: "DeclRef", Range: &escaping}},
		}, true, nil
	})

	ticket := adapter.Epochs().Current()
	for range 2 {
		_, err := adapter.Query(context.Background(), ticket, snap, outer)
		assert.True(t, errors.Is(err, syntax.ErrMalformedTree))
	}
	assert.Equal(t, 1, svc.QueryCount())
	assert.Equal(t, int64(1), adapter.Stats().Malformed)
}
