package middleware

import (
	"context"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/upb/quiz-client/claims"
	"github.com/upb/quiz-client/internal/shared"
)

// Context key type to avoid collisions
type contextKey string

// ClaimsKey is the context key for validated token claims
const ClaimsKey contextKey = "claims"

// GetRequestIDFromContext returns the id chi assigned to the request, or
// the one propagated by the client pipeline.
func GetRequestIDFromContext(ctx context.Context) string {
	if id := chimw.GetReqID(ctx); id != "" {
		return id
	}
	return shared.RequestID(ctx)
}

// GetClaimsFromContext retrieves token claims from context
func GetClaimsFromContext(ctx context.Context) *claims.ParsedClaims {
	if val := ctx.Value(ClaimsKey); val != nil {
		if c, ok := val.(*claims.ParsedClaims); ok {
			return c
		}
	}
	return nil
}

// WithClaims adds token claims to the context
func WithClaims(ctx context.Context, c *claims.ParsedClaims) context.Context {
	return context.WithValue(ctx, ClaimsKey, c)
}
