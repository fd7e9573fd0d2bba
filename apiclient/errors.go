package apiclient

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrInvalidHeader aborts a request whose bearer token cannot be sent
	ErrInvalidHeader = errors.New("invalid authorization header")
)

// HTTPError is returned for every non-2xx response
type HTTPError struct {
	StatusCode int
	Method     string
	Path       string
	Message    string
	Body       []byte
}

// Error implements the error interface
func (e *HTTPError) Error() string {
	msg := fmt.Sprintf("%s %s: %d %s", e.Method, e.Path, e.StatusCode, http.StatusText(e.StatusCode))
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// newHTTPError builds an HTTPError, pulling a message out of the usual
// {"message": ...} or {"error": ...} bodies.
func newHTTPError(method, path string, status int, body []byte) *HTTPError {
	return &HTTPError{
		StatusCode: status,
		Method:     method,
		Path:       path,
		Message:    extractMessage(body),
		Body:       body,
	}
}

func extractMessage(body []byte) string {
	var payload struct {
		Message json.RawMessage `json:"message"`
		Error   json.RawMessage `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	for _, raw := range []json.RawMessage{payload.Message, payload.Error} {
		var s string
		if len(raw) > 0 && json.Unmarshal(raw, &s) == nil && strings.TrimSpace(s) != "" {
			return s
		}
	}
	return ""
}

// AsHTTPError unwraps err into an *HTTPError
func AsHTTPError(err error) (*HTTPError, bool) {
	var httpErr *HTTPError
	if errors.As(err, &httpErr) {
		return httpErr, true
	}
	return nil, false
}

// StatusCode returns the HTTP status carried by err, or 0
func StatusCode(err error) int {
	if httpErr, ok := AsHTTPError(err); ok {
		return httpErr.StatusCode
	}
	return 0
}

// IsUnauthorized reports whether err is a 401 response
func IsUnauthorized(err error) bool {
	return StatusCode(err) == http.StatusUnauthorized
}
