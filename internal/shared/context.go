// Package shared carries request-scoped values between the client's
// outbound calls, the dev API and the logger.
package shared

import (
	"context"

	"github.com/google/uuid"
)

type ctxKey struct{}

// WithRequestID returns a context carrying id
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the request ID carried by ctx, or ""
func RequestID(ctx context.Context) string {
	v, _ := ctx.Value(ctxKey{}).(string)
	return v
}

// NewRequestID returns a fresh random request ID
func NewRequestID() string {
	return uuid.NewString()
}

// EnsureRequestID returns ctx and its request ID, attaching a new one when
// ctx carries none.
func EnsureRequestID(ctx context.Context) (context.Context, string) {
	if id := RequestID(ctx); id != "" {
		return ctx, id
	}
	id := NewRequestID()
	return WithRequestID(ctx, id), id
}
