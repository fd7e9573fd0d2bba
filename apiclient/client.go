// Package apiclient is the request pipeline every call to the quiz API goes
// through. Outbound, it attaches the current bearer token. Inbound, a 401
// clears the stored credential, invalidates the session and forces a
// navigation to the login route before the error reaches the caller.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/upb/quiz-client/config"
	"github.com/upb/quiz-client/internal/shared"
	"go.uber.org/zap"
)

const (
	// LoginPath is where a rejected session is sent
	LoginPath = "/login"

	// RequestIDHeader carries the per-request correlation ID
	RequestIDHeader = "X-Request-ID"

	maxResponseBytes = 10 << 20
)

// TokenSource exposes the in-memory credential of the current session
type TokenSource interface {
	Token() string
}

// CredentialClearer removes the persisted credential
type CredentialClearer interface {
	Clear(ctx context.Context)
}

// Invalidator empties in-memory session state after a 401
type Invalidator interface {
	Invalidate(ctx context.Context)
}

// Navigator forces a navigation outside the guarded flow
type Navigator interface {
	ForceNavigate(ctx context.Context, path string) error
}

// Client is the configured HTTP client for the quiz API
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	tokens     TokenSource
	creds      CredentialClearer
	logger     *zap.Logger

	mu          sync.RWMutex
	headers     http.Header
	invalidator Invalidator
	navigator   Navigator
}

// New creates a client for the API described by cfg
func New(cfg config.APIConfig, tokens TokenSource, creds CredentialClearer, logger *zap.Logger) (*Client, error) {
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid API base URL %q", cfg.BaseURL)
	}

	headers := make(http.Header)
	headers.Set("Accept", "application/json")
	headers.Set("Content-Type", "application/json")

	return &Client{
		baseURL:    strings.TrimRight(base.String(), "/"),
		httpClient: &http.Client{Timeout: cfg.Timeout},
		userAgent:  cfg.UserAgent,
		tokens:     tokens,
		creds:      creds,
		logger:     logger,
		headers:    headers,
	}, nil
}

// Bind attaches the session invalidator and navigator used on a 401.
// They are bound after construction because both depend on the client.
func (c *Client) Bind(invalidator Invalidator, navigator Navigator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.invalidator = invalidator
	c.navigator = navigator
}

// BaseURL returns the configured API root
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetDefaultHeader sets a header sent with every request
func (c *Client) SetDefaultHeader(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Set(key, value)
}

// DeleteDefaultHeader removes a default header
func (c *Client) DeleteDefaultHeader(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Del(key)
}

// DefaultHeader returns the current value of a default header
func (c *Client) DefaultHeader(key string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers.Get(key)
}

// Get performs a GET request and decodes the response into out
func (c *Client) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

// Post performs a POST request with a JSON body
func (c *Client) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

// Put performs a PUT request with a JSON body
func (c *Client) Put(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

// Delete performs a DELETE request
func (c *Client) Delete(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do sends one request through the pipeline. Non-2xx responses are returned
// as *HTTPError; transport failures are returned wrapped.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	req, err := c.newRequest(ctx, method, path, query, body)
	if err != nil {
		return err
	}

	requestID := req.Header.Get(RequestIDHeader)
	logger := c.logger.With(
		zap.String("method", method),
		zap.String("path", path),
		zap.String("request_id", requestID),
	)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		logger.Debug("api request failed", zap.Duration("duration", time.Since(start)), zap.Error(err))
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return fmt.Errorf("%s %s: failed to read response: %w", method, path, err)
	}

	logger.Debug("api request",
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)))

	if resp.StatusCode == http.StatusUnauthorized {
		httpErr := newHTTPError(method, path, resp.StatusCode, data)
		c.handleUnauthorized(ctx, logger)
		return httpErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return newHTTPError(method, path, resp.StatusCode, data)
	}

	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if raw, ok := out.(*json.RawMessage); ok {
		*raw = append((*raw)[:0], data...)
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%s %s: failed to decode response: %w", method, path, err)
	}
	return nil
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body interface{}) (*http.Request, error) {
	target := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.mu.RLock()
	req.Header = c.headers.Clone()
	c.mu.RUnlock()

	_, requestID := shared.EnsureRequestID(ctx)
	req.Header.Set(RequestIDHeader, requestID)
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	// session state wins over the default header
	if token := c.tokens.Token(); token != "" {
		if strings.ContainsAny(token, "\r\n") {
			return nil, ErrInvalidHeader
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	return req, nil
}

func (c *Client) handleUnauthorized(ctx context.Context, logger *zap.Logger) {
	logger.Warn("received 401 Unauthorized, logging out")

	c.creds.Clear(ctx)

	c.mu.RLock()
	invalidator, navigator := c.invalidator, c.navigator
	c.mu.RUnlock()

	if invalidator != nil {
		invalidator.Invalidate(ctx)
	}
	if navigator != nil {
		if err := navigator.ForceNavigate(ctx, LoginPath); err != nil {
			logger.Warn("forced navigation to login failed", zap.Error(err))
		}
	}
}
