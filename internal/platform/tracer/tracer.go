// Package tracer provides a lightweight tracing abstraction for the command
// fabric and the pool client.
//
// Implementations:
//   - NoopTracer: for tests (zero overhead)
//   - OTelTracer: OpenTelemetry adapter using the global provider
package tracer

import (
	"context"
	"time"
)

// Span represents an active trace span.
type Span interface {
	// End completes the span, recording err when non-nil.
	// End must be called exactly once.
	End(err error)

	SetAttributes(attrs ...Attribute)

	AddEvent(name string, attrs ...Attribute)
}

// Tracer creates spans. Implementations must be safe for concurrent use.
type Tracer interface {
	Start(ctx context.Context, name string, attrs ...Attribute) (context.Context, Span)
}

// Attribute represents a key-value pair attached to spans.
type Attribute struct {
	Key   string
	Value any
}

// String creates a string attribute.
func String(key, value string) Attribute {
	return Attribute{Key: key, Value: value}
}

// Bool creates a boolean attribute.
func Bool(key string, value bool) Attribute {
	return Attribute{Key: key, Value: value}
}

// Int64 creates an int64 attribute.
func Int64(key string, value int64) Attribute {
	return Attribute{Key: key, Value: value}
}

// Duration creates a duration attribute in milliseconds.
func Duration(key string, value time.Duration) Attribute {
	return Attribute{Key: key, Value: value.Milliseconds()}
}

// Span names.
const (
	SpanCommand       = "indy.command"
	SpanLedgerRequest = "indy.pool.request"
	SpanCatchup       = "indy.pool.catchup"
)

// Attribute keys.
const (
	AttrCommand    = "command"
	AttrSubcommand = "subcommand"
	AttrQueuedMs   = "queued_ms"
	AttrNode       = "node"
	AttrAttempt    = "attempt"
	AttrReqKind    = "request.kind"
)

// Event names.
const (
	EventNodeBlacklisted = "node.blacklisted"
	EventRetry           = "request.retry"
)
