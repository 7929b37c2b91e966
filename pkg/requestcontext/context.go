// Package requestcontext carries request-scoped values (operator, request id,
// request time, client ip) through context without depending on net/http, so
// services stay importable from workers and tests.
package requestcontext

import (
	"context"
	"time"

	id "carebridge/pkg/domain"
)

type (
	operatorIDKey  struct{}
	clientIPKey    struct{}
	requestIDKey   struct{}
	requestTimeKey struct{}
)

// OperatorID returns the authenticated operator, or the nil id when no
// middleware has run.
func OperatorID(ctx context.Context) id.OperatorID {
	if operatorID, ok := ctx.Value(operatorIDKey{}).(id.OperatorID); ok {
		return operatorID
	}
	return id.OperatorID{}
}

// WithOperatorID records the authenticated operator.
func WithOperatorID(ctx context.Context, operatorID id.OperatorID) context.Context {
	return context.WithValue(ctx, operatorIDKey{}, operatorID)
}

// ClientIP returns the remote address recorded by the request middleware.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// WithClientIP records the caller's remote address.
func WithClientIP(ctx context.Context, clientIP string) context.Context {
	return context.WithValue(ctx, clientIPKey{}, clientIP)
}

// RequestID returns the correlation id, empty when unset.
func RequestID(ctx context.Context) string {
	if reqID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return reqID
	}
	return ""
}

// WithRequestID records the correlation id.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// Now returns the pinned request time so every timestamp written during one
// request agrees. Falls back to the wall clock outside a request.
func Now(ctx context.Context) time.Time {
	if t, ok := ctx.Value(requestTimeKey{}).(time.Time); ok {
		return t
	}
	return time.Now()
}

// WithTime pins the request time. Tests and bulk batches use this to get a
// single consistent timestamp.
func WithTime(ctx context.Context, t time.Time) context.Context {
	return context.WithValue(ctx, requestTimeKey{}, t)
}
