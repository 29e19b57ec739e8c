// Package gateway is the single call site for backend I/O. It attaches
// credentials, normalizes errors into the client taxonomy, and detects
// session expiry so 401 handling happens in exactly one place.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/ashureev/agri-advisor/internal/session"
	"github.com/google/uuid"
)

// Client performs authenticated calls against the backend.
type Client struct {
	baseURL string
	httpc   *http.Client
	store   session.Store

	// expired runs once per detected 401, before ErrSessionExpired is
	// returned: it clears the session and closes the realtime channel,
	// in that order.
	expired func(context.Context)
}

// New creates a gateway client for the given backend base URL.
func New(baseURL string, store session.Store) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpc:   http.DefaultClient,
		store:   store,
	}
}

// BaseURL returns the resolved backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetHTTPClient overrides the underlying HTTP client. Used by tests.
func (c *Client) SetHTTPClient(httpc *http.Client) {
	c.httpc = httpc
}

// OnSessionExpired registers the teardown hook invoked when a call comes
// back 401.
func (c *Client) OnSessionExpired(fn func(context.Context)) {
	c.expired = fn
}

// Call performs an authenticated request. A 204 or empty-body response
// yields (nil, nil). contentType may be empty for body-less requests and
// must be the multipart boundary type for multipart payloads; JSON is
// never forced onto a body that carries its own type.
func (c *Client) Call(ctx context.Context, method, path string, body io.Reader, contentType string) (json.RawMessage, error) {
	return c.do(ctx, method, path, body, contentType, true)
}

// CallJSON marshals payload as JSON and performs an authenticated request.
func (c *Client) CallJSON(ctx context.Context, method, path string, payload any) (json.RawMessage, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return c.do(ctx, method, path, bytes.NewReader(data), "application/json", true)
}

// callPublic performs an unauthenticated request (signup, verification,
// token issuance).
func (c *Client) callPublic(ctx context.Context, method, path string, body io.Reader, contentType string) (json.RawMessage, error) {
	return c.do(ctx, method, path, body, contentType, false)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, authed bool) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	if authed {
		token, err := c.store.GetToken(ctx)
		if err != nil {
			return nil, fmt.Errorf("read session token: %w", err)
		}
		if token == "" {
			// Callers are responsible for the pre-flight redirect; this
			// is the backstop for a call that slipped through.
			return nil, ErrSessionExpired
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	// Force revalidation; the dashboard always wants live data.
	req.Header.Set("Cache-Control", "no-cache")
	req.Header.Set("X-Request-ID", uuid.NewString())

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &NetworkError{Err: err}
	}

	if resp.StatusCode == http.StatusUnauthorized && authed {
		slog.Warn("Session rejected by backend", "method", method, "path", path)
		if c.expired != nil {
			c.expired(ctx)
		}
		return nil, ErrSessionExpired
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &ServerError{
			Status: resp.StatusCode,
			Detail: errorDetail(resp.StatusCode, data),
		}
	}

	// 204 or an empty body is a valid success outcome with no payload.
	if resp.StatusCode == http.StatusNoContent || len(data) == 0 {
		return nil, nil
	}

	return json.RawMessage(data), nil
}

// errorDetail extracts the backend's structured error detail, falling back
// to a generic message carrying the HTTP status.
func errorDetail(status int, data []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(data, &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil && s != "" {
			return s
		}
		return string(payload.Detail)
	}
	return fmt.Sprintf("HTTP error! status: %d", status)
}
