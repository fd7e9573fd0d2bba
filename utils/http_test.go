package utils

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeError(t *testing.T, w *httptest.ResponseRecorder) ErrorResponse {
	t.Helper()
	var response ErrorResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	return response
}

func TestWriteJSON(t *testing.T) {
	t.Run("successful write", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusOK, map[string]string{"access_token": "abc"})
		require.NoError(t, err)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
		assert.JSONEq(t, `{"access_token":"abc"}`, w.Body.String())
	})

	t.Run("nil data", func(t *testing.T) {
		w := httptest.NewRecorder()

		err := WriteJSON(w, http.StatusNoContent, nil)
		require.NoError(t, err)

		assert.Equal(t, http.StatusNoContent, w.Code)
		assert.Empty(t, w.Body.String())
	})
}

func TestWriteOK(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteOK(w, map[string]int{"total": 3}))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"total":3}`, w.Body.String())
}

func TestWriteMessage(t *testing.T) {
	w := httptest.NewRecorder()

	require.NoError(t, WriteMessage(w, http.StatusCreated, "User created"))

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"message":"User created"}`, w.Body.String())
}

func TestWriteError_Defaults(t *testing.T) {
	tests := []struct {
		name        string
		write       func(w http.ResponseWriter) error
		wantStatus  int
		wantCode    string
		wantMessage string
	}{
		{
			name:        "unauthorized default",
			write:       func(w http.ResponseWriter) error { return WriteUnauthorized(w, "") },
			wantStatus:  http.StatusUnauthorized,
			wantCode:    "unauthorized",
			wantMessage: "Authentication required",
		},
		{
			name:        "unauthorized custom",
			write:       func(w http.ResponseWriter) error { return WriteUnauthorized(w, "Invalid credentials") },
			wantStatus:  http.StatusUnauthorized,
			wantCode:    "unauthorized",
			wantMessage: "Invalid credentials",
		},
		{
			name:        "forbidden default",
			write:       func(w http.ResponseWriter) error { return WriteForbidden(w, "") },
			wantStatus:  http.StatusForbidden,
			wantCode:    "forbidden",
			wantMessage: "Access forbidden",
		},
		{
			name:        "not found default",
			write:       func(w http.ResponseWriter) error { return WriteNotFound(w, "") },
			wantStatus:  http.StatusNotFound,
			wantCode:    "not_found",
			wantMessage: "Resource not found",
		},
		{
			name:        "bad request",
			write:       func(w http.ResponseWriter) error { return WriteBadRequest(w, "Missing JSON in request") },
			wantStatus:  http.StatusBadRequest,
			wantCode:    "bad_request",
			wantMessage: "Missing JSON in request",
		},
		{
			name:        "internal default",
			write:       func(w http.ResponseWriter) error { return WriteInternalServerError(w, "") },
			wantStatus:  http.StatusInternalServerError,
			wantCode:    "internal_error",
			wantMessage: "Internal server error",
		},
		{
			name:        "conflict",
			write:       func(w http.ResponseWriter) error { return WriteError(w, http.StatusConflict, "Username already exists") },
			wantStatus:  http.StatusConflict,
			wantCode:    "conflict",
			wantMessage: "Username already exists",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			require.NoError(t, tt.write(w))

			assert.Equal(t, tt.wantStatus, w.Code)
			response := decodeError(t, w)
			assert.Equal(t, tt.wantCode, response.Error)
			assert.Equal(t, tt.wantMessage, response.Message)
		})
	}
}

func TestWriteValidationError(t *testing.T) {
	t.Run("validation error lists fields", func(t *testing.T) {
		type payload struct {
			Email string `json:"email" validate:"required,email"`
		}
		err := ValidateStruct(payload{Email: "nope"})
		require.Error(t, err)

		w := httptest.NewRecorder()
		require.NoError(t, WriteValidationError(w, err))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		response := decodeError(t, w)
		assert.Equal(t, "Validation failed", response.Message)
		assert.Contains(t, response.Fields, "email")
	})

	t.Run("plain error uses its text", func(t *testing.T) {
		w := httptest.NewRecorder()
		require.NoError(t, WriteValidationError(w, errors.New("Missing JSON in request")))

		response := decodeError(t, w)
		assert.Equal(t, "Missing JSON in request", response.Message)
		assert.Empty(t, response.Fields)
	})
}

func TestDecodeJSON(t *testing.T) {
	type payload struct {
		Email string `json:"email"`
	}

	t.Run("valid body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.co"}`))
		var p payload
		require.NoError(t, DecodeJSON(r, &p))
		assert.Equal(t, "a@b.co", p.Email)
	})

	t.Run("empty body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
		var p payload
		assert.ErrorIs(t, DecodeJSON(r, &p), ErrEmptyBody)
	})

	t.Run("unknown field", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"mail":"x"}`))
		var p payload
		err := DecodeJSON(r, &p)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid request body")
	})

	t.Run("malformed", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":`))
		var p payload
		assert.Error(t, DecodeJSON(r, &p))
	})
}
