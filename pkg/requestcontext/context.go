// Package requestcontext provides HTTP-independent context accessors for
// request-scoped values.
//
// This package defines context keys and getter/setter functions for values
// that are typically set by middleware (or the embedding ordering layer) but
// consumed by services. Keeping it free of net/http lets the protocol core
// import only what it needs.
//
// Usage in services (read values):
//
//	caller := requestcontext.Caller(ctx)
//	height := requestcontext.Height(ctx)
//	now := requestcontext.Now(ctx)
//
// Usage in middleware or the embedding collaborator (set values):
//
//	ctx = requestcontext.WithCaller(ctx, caller)
//	ctx = requestcontext.WithHeight(ctx, height)
//
// Usage in tests (inject values):
//
//	ctx = requestcontext.WithTime(ctx, fixedTime)
package requestcontext

import (
	"context"
	"time"

	id "github.com/grace-umanah/bit-holdings/pkg/domain"
)

// Context key types (unexported for encapsulation).
type (
	callerKey      struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
	heightKey      struct{}
)

// Exported context keys for tests that need raw context.WithValue.
var (
	ContextKeyCaller      = callerKey{}
	ContextKeyRequestID   = requestIDKey{}
	ContextKeyRequestTime = requestTimeKey{}
	ContextKeyHeight      = heightKey{}
)

// Caller retrieves the authenticated caller principal from the context.
// Returns the zero value when not set; services must treat that as an
// unauthenticated call.
func Caller(ctx context.Context) id.Participant {
	if p, ok := ctx.Value(ContextKeyCaller).(id.Participant); ok {
		return p
	}
	return ""
}

// WithCaller injects the caller principal into the context.
func WithCaller(ctx context.Context, caller id.Participant) context.Context {
	return context.WithValue(ctx, ContextKeyCaller, caller)
}

// RequestID retrieves the request correlation ID from the context.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(ContextKeyRequestID).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID injects a request correlation ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// Now retrieves the request-scoped time from context.
// Falls back to time.Now() for non-HTTP contexts (workers, CLI, tests).
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(ContextKeyRequestTime).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime injects a specific time into a context. Useful for service unit
// tests and for workers that need a consistent time within one batch.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, ContextKeyRequestTime, t)
}

// Height retrieves the execution height (the sequence marker assigned by the
// external ordering layer) from the context. Returns 0 when not set; the
// protocol core then falls back to its own transition sequence.
func Height(ctx context.Context) uint64 {
	if h, ok := ctx.Value(ContextKeyHeight).(uint64); ok {
		return h
	}
	return 0
}

// WithHeight injects an execution height into the context.
func WithHeight(ctx context.Context, height uint64) context.Context {
	return context.WithValue(ctx, ContextKeyHeight, height)
}
