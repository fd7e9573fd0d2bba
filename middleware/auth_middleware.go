package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/upb/quiz-client/claims"
	"github.com/upb/quiz-client/models"
	"github.com/upb/quiz-client/utils"
	"go.uber.org/zap"
)

// TokenValidator defines the interface for validating access tokens
type TokenValidator interface {
	// ValidateToken verifies a token and returns its claims
	ValidateToken(ctx context.Context, token string) (*claims.ParsedClaims, error)
}

// AuthMiddleware provides authentication middleware functionality
type AuthMiddleware struct {
	validator TokenValidator
	logger    *zap.Logger
}

// NewAuthMiddleware creates a new AuthMiddleware
func NewAuthMiddleware(validator TokenValidator, logger *zap.Logger) *AuthMiddleware {
	return &AuthMiddleware{
		validator: validator,
		logger:    logger,
	}
}

// RequireAuth is a middleware that requires a valid bearer token
func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		requestID := GetRequestIDFromContext(ctx)

		token := extractBearerToken(r)
		if token == "" {
			m.logger.Warn("missing token",
				zap.String("request_id", requestID))
			_ = utils.WriteUnauthorized(w, "Missing Authorization Header")
			return
		}

		c, err := m.validator.ValidateToken(ctx, token)
		if err != nil {
			m.logger.Warn("token validation failed",
				zap.String("request_id", requestID),
				zap.Error(err))
			_ = utils.WriteUnauthorized(w, "Invalid or expired token")
			return
		}

		m.logger.Debug("authentication successful",
			zap.String("request_id", requestID),
			zap.String("sub", c.Subject),
			zap.String("username", c.Username))

		next.ServeHTTP(w, r.WithContext(WithClaims(ctx, c)))
	})
}

// RequireRole is a middleware that requires one of the given roles.
// It must run after RequireAuth.
func (m *AuthMiddleware) RequireRole(roles ...models.Role) func(http.Handler) http.Handler {
	required := models.NewRoleSet(roles...)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := GetRequestIDFromContext(ctx)

			c := GetClaimsFromContext(ctx)
			if c == nil {
				m.logger.Error("claims not found in context",
					zap.String("request_id", requestID))
				_ = utils.WriteUnauthorized(w, "Authentication required")
				return
			}

			if !c.Roles.Intersects(required) {
				m.logger.Warn("insufficient permissions",
					zap.String("request_id", requestID),
					zap.Strings("required_roles", required.Strings()),
					zap.Strings("user_roles", c.Roles.Strings()))
				_ = utils.WriteForbidden(w, forbiddenMessage(required))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func forbiddenMessage(required models.RoleSet) string {
	if required.Has(models.RoleAdmin) && len(required) == 1 {
		return "Admin privileges required"
	}
	return "Insufficient permissions"
}

// extractBearerToken extracts the Bearer token from the Authorization header
func extractBearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
