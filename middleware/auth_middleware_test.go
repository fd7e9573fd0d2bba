package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/upb/quiz-client/claims"
	"github.com/upb/quiz-client/internal/shared"
	"github.com/upb/quiz-client/models"
	"go.uber.org/zap"
)

// MockTokenValidator is a mock implementation of TokenValidator
type MockTokenValidator struct {
	mock.Mock
}

func (m *MockTokenValidator) ValidateToken(ctx context.Context, token string) (*claims.ParsedClaims, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*claims.ParsedClaims), args.Error(1)
}

func okHandler(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func TestRequireAuth(t *testing.T) {
	logger := zap.NewNop()

	t.Run("valid bearer token allows request", func(t *testing.T) {
		mockValidator := new(MockTokenValidator)
		middleware := NewAuthMiddleware(mockValidator, logger)

		parsed := &claims.ParsedClaims{
			Subject:  "user-123",
			Username: "alice",
			Roles:    models.NewRoleSet(models.RoleUser),
		}
		mockValidator.On("ValidateToken", mock.Anything, "valid-token").Return(parsed, nil)

		handler := middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			extracted := GetClaimsFromContext(r.Context())
			assert.Same(t, parsed, extracted)
			w.WriteHeader(http.StatusOK)
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer valid-token")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		mockValidator.AssertExpectations(t)
	})

	t.Run("scheme is case-insensitive", func(t *testing.T) {
		mockValidator := new(MockTokenValidator)
		middleware := NewAuthMiddleware(mockValidator, logger)
		mockValidator.On("ValidateToken", mock.Anything, "tok").Return(&claims.ParsedClaims{Username: "a"}, nil)

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "bearer tok")
		w := httptest.NewRecorder()

		middleware.RequireAuth(http.HandlerFunc(okHandler)).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejected requests never reach the handler", func(t *testing.T) {
		tests := []struct {
			name   string
			header string
		}{
			{name: "missing header"},
			{name: "basic scheme", header: "Basic dXNlcjpwYXNz"},
			{name: "no token", header: "Bearer"},
			{name: "blank token", header: "Bearer   "},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				mockValidator := new(MockTokenValidator)
				middleware := NewAuthMiddleware(mockValidator, logger)

				handler := middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					t.Fatal("handler should not be called")
				}))

				req := httptest.NewRequest(http.MethodGet, "/test", nil)
				if tt.header != "" {
					req.Header.Set("Authorization", tt.header)
				}
				w := httptest.NewRecorder()

				handler.ServeHTTP(w, req)

				assert.Equal(t, http.StatusUnauthorized, w.Code)
				mockValidator.AssertNotCalled(t, "ValidateToken")
			})
		}
	})

	t.Run("invalid token returns 401", func(t *testing.T) {
		mockValidator := new(MockTokenValidator)
		middleware := NewAuthMiddleware(mockValidator, logger)
		mockValidator.On("ValidateToken", mock.Anything, "expired").Return(nil, errors.New("token is expired"))

		handler := middleware.RequireAuth(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			t.Fatal("handler should not be called")
		}))

		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set("Authorization", "Bearer expired")
		w := httptest.NewRecorder()

		handler.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.JSONEq(t, `{"message":"Invalid or expired token","error":"unauthorized"}`, w.Body.String())
	})
}

func TestRequireRole(t *testing.T) {
	logger := zap.NewNop()
	middleware := NewAuthMiddleware(new(MockTokenValidator), logger)

	tests := []struct {
		name     string
		claims   *claims.ParsedClaims
		roles    []models.Role
		wantCode int
		wantBody string
	}{
		{
			name:     "admin passes admin check",
			claims:   &claims.ParsedClaims{Username: "root", Roles: models.NewRoleSet(models.RoleAdmin)},
			roles:    []models.Role{models.RoleAdmin},
			wantCode: http.StatusOK,
		},
		{
			name:     "user fails admin check",
			claims:   &claims.ParsedClaims{Username: "alice", Roles: models.NewRoleSet(models.RoleUser)},
			roles:    []models.Role{models.RoleAdmin},
			wantCode: http.StatusForbidden,
			wantBody: `{"message":"Admin privileges required","error":"forbidden"}`,
		},
		{
			name:     "any of several roles",
			claims:   &claims.ParsedClaims{Username: "alice", Roles: models.NewRoleSet(models.RoleUser)},
			roles:    []models.Role{models.RoleAdmin, models.RoleUser},
			wantCode: http.StatusOK,
		},
		{
			name:     "no roles at all",
			claims:   &claims.ParsedClaims{Username: "ghost"},
			roles:    []models.Role{models.RoleUser},
			wantCode: http.StatusForbidden,
			wantBody: `{"message":"Insufficient permissions","error":"forbidden"}`,
		},
		{
			name:     "missing claims",
			roles:    []models.Role{models.RoleAdmin},
			wantCode: http.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.claims != nil {
				req = req.WithContext(WithClaims(req.Context(), tt.claims))
			}
			w := httptest.NewRecorder()

			middleware.RequireRole(tt.roles...)(http.HandlerFunc(okHandler)).ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, w.Body.String())
			}
		})
	}
}

func TestGetRequestIDFromContext(t *testing.T) {
	assert.Empty(t, GetRequestIDFromContext(context.Background()))

	ctx := shared.WithRequestID(context.Background(), "client-id")
	assert.Equal(t, "client-id", GetRequestIDFromContext(ctx))

	ctx = context.WithValue(ctx, chimw.RequestIDKey, "chi-id")
	assert.Equal(t, "chi-id", GetRequestIDFromContext(ctx))
}

func TestGetClaimsFromContext(t *testing.T) {
	assert.Nil(t, GetClaimsFromContext(context.Background()))
	assert.Nil(t, GetClaimsFromContext(context.WithValue(context.Background(), ClaimsKey, "nope")))
}
