package tracer_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"indy/internal/platform/tracer"
)

func TestNoopTracer_Start(t *testing.T) {
	tr := tracer.NewNoop()
	ctx := context.Background()

	newCtx, span := tr.Start(ctx, tracer.SpanCommand,
		tracer.String(tracer.AttrCommand, "wallet"),
		tracer.Bool("flag", true),
	)

	assert.Equal(t, ctx, newCtx)
	require.NotNil(t, span)

	span.SetAttributes(tracer.Duration(tracer.AttrQueuedMs, time.Second))
	span.AddEvent(tracer.EventRetry, tracer.Int64(tracer.AttrAttempt, 2))
	span.End(errors.New("boom"))
}

func TestOTelTracer_WithGlobalProvider(t *testing.T) {
	tr := tracer.NewOTel()
	ctx, span := tr.Start(context.Background(), tracer.SpanLedgerRequest,
		tracer.String(tracer.AttrReqKind, "read"),
		tracer.Int64(tracer.AttrAttempt, 1),
	)
	require.NotNil(t, ctx)
	span.AddEvent(tracer.EventNodeBlacklisted, tracer.String(tracer.AttrNode, "Node1"))
	span.End(nil)
}
