package query_test

import (
	"context"
	"testing"

	"github.com/yaklabco/astnav/internal/synthtest"
	"github.com/yaklabco/astnav/pkg/document"
	"github.com/yaklabco/astnav/pkg/query"
)

func BenchmarkAdapter_Query(b *testing.B) {
	builder := synthtest.NewBuilder(callText)
	svc := synthtest.New()
	svc.Script(callText, builder.Root(
		builder.N("Call", "foo(bar)", synthtest.Cast(builder.Ref("foo", 0)), synthtest.Cast(builder.Ref("bar", 0))),
	))
	svc.Open(1, callText)
	snap := document.NewSnapshot("file:///call.c", 1, []byte(callText))
	arg := document.NewRange(0, 4, 0, 7)

	b.Run("miss", func(b *testing.B) {
		adapter := query.NewAdapter(svc, query.NewEpochs())
		for b.Loop() {
			adapter.Cache().Reset(1)
			if _, err := adapter.Query(context.Background(), adapter.Epochs().Current(), snap, arg); err != nil {
				b.Fatal(err)
			}
			svc.ResetRequests()
		}
	})

	b.Run("hit", func(b *testing.B) {
		adapter := query.NewAdapter(svc, query.NewEpochs())
		for b.Loop() {
			if _, err := adapter.Query(context.Background(), adapter.Epochs().Current(), snap, arg); err != nil {
				b.Fatal(err)
			}
		}
	})
}
