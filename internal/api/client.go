// Package api implements the HTTP client shared by the session store and
// the task/conversation controllers. Every request carries the current
// bearer token (when one is set) and every failure is returned as a typed
// *Error value; nothing in this package panics or leaks transport errors.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/benvon/smart-todo-cli/internal/logger"
)

// defaultTimeout bounds a single request attempt. Retry policy, where one
// applies, lives in the calling controller.
const defaultTimeout = 30 * time.Second

// maxErrorBodySize caps how much of an error response body is read.
const maxErrorBodySize = 64 << 10

// Error is the uniform shape of a failed API call. Status 0 means the
// request never produced an HTTP response (network-level failure).
type Error struct {
	Detail string `json:"detail"`
	Status int    `json:"status"`
	Code   string `json:"code,omitempty"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("api error (status %d): %s", e.Status, e.Detail)
}

// Temporary reports whether the failure may succeed on retry: a network
// failure or a 5xx server error.
func (e *Error) Temporary() bool {
	return e.Status == 0 || e.Status >= 500
}

// Client executes requests against the backend REST API.
type Client struct {
	baseURL string
	httpc   *http.Client
	log     *zap.Logger

	mu             sync.Mutex
	token          string
	onUnauthorized func()
}

// New creates a client for the given base URL (e.g. "http://localhost:8000/api").
func New(baseURL string, log *zap.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   &http.Client{Timeout: defaultTimeout},
		log:     log,
	}
}

// SetToken sets the bearer token attached to subsequent requests. An empty
// token disables the Authorization header. Only the session store mutates
// the token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// Token returns the currently held bearer token.
func (c *Client) Token() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.token
}

// SetUnauthorizedCallback registers the callback invoked whenever a request
// receives a 401. The callback runs synchronously, exactly once per such
// request, before the error result is returned.
func (c *Client) SetUnauthorizedCallback(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// Get issues a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any) *Error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST request with an optional JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) *Error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT request with an optional JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) *Error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Patch issues a PATCH request with an optional JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) *Error {
	return c.do(ctx, http.MethodPatch, path, body, out)
}

// Delete issues a DELETE request and decodes the JSON response into out.
func (c *Client) Delete(ctx context.Context, path string, out any) *Error {
	return c.do(ctx, http.MethodDelete, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) *Error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Status: 0, Detail: "failed to encode request body"}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Status: 0, Detail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	c.mu.Lock()
	token := c.token
	onUnauthorized := c.onUnauthorized
	c.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("path", logger.SanitizePath(path)),
			zap.Error(err))
		return &Error{Status: 0, Detail: err.Error()}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeError(resp)
		if resp.StatusCode == http.StatusUnauthorized && onUnauthorized != nil {
			onUnauthorized()
		}
		c.log.Debug("request returned error",
			zap.String("method", method),
			zap.String("path", logger.SanitizePath(path)),
			zap.Int("status", apiErr.Status),
			zap.String("detail", logger.SanitizeErrorString(apiErr.Detail)))
		return apiErr
	}

	// A 204 or zero-length body is a valid empty result.
	if out == nil || resp.StatusCode == http.StatusNoContent || resp.ContentLength == 0 {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &Error{Status: resp.StatusCode, Detail: "failed to decode response body"}
	}
	return nil
}

// decodeError maps a non-2xx response to an *Error, preferring the backend's
// {detail} payload and falling back to the HTTP status text.
func decodeError(resp *http.Response) *Error {
	apiErr := &Error{
		Status: resp.StatusCode,
		Detail: http.StatusText(resp.StatusCode),
	}
	if apiErr.Detail == "" {
		apiErr.Detail = "An error occurred"
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBodySize))
	if err != nil {
		return apiErr
	}
	var payload struct {
		Detail string `json:"detail"`
		Code   string `json:"code"`
	}
	if json.Unmarshal(body, &payload) == nil && payload.Detail != "" {
		apiErr.Detail = payload.Detail
		apiErr.Code = payload.Code
	}
	return apiErr
}
