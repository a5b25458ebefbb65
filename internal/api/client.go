package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/ThiagoDevLuiz/convicti-dashboard/internal/logger"
)

// TokenSource provides bearer tokens and the refresh/logout transitions.
// It is implemented by the auth manager; the client never mutates session
// state except through it.
type TokenSource interface {
	AccessToken() string
	HasRefreshToken() bool
	Refresh(ctx context.Context) bool
	Logout()
}

// retryPolicy bounds re-execution of a failed request. The retry count is
// structural: there is no loop that could grow beyond maxRetries.
type retryPolicy struct {
	maxRetries  int
	shouldRetry func(status int) bool
}

// defaultRetryPolicy retries exactly once, triggered by HTTP 401.
func defaultRetryPolicy() retryPolicy {
	return retryPolicy{
		maxRetries: 1,
		shouldRetry: func(status int) bool {
			return status == http.StatusUnauthorized
		},
	}
}

// Client executes requests against the admin API with bearer injection
// and a single refresh-and-retry cycle on authorization failure. A client
// with a nil TokenSource sends requests unauthenticated and never retries.
type Client struct {
	baseURL          string
	httpClient       *http.Client
	tokens           TokenSource
	retry            retryPolicy
	onSessionExpired func()
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithSessionExpiredHook installs a callback invoked when a request fails
// terminally because the session could not be refreshed. The TUI uses it
// to navigate back to the login screen.
func WithSessionExpiredHook(fn func()) Option {
	return func(c *Client) {
		c.onSessionExpired = fn
	}
}

// New creates a client for the given base URL. tokens may be nil for
// unauthenticated use.
func New(baseURL string, tokens TokenSource, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     tokens,
		retry:      defaultRetryPolicy(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ReqOption mutates an outgoing request, e.g. to set headers.
type ReqOption func(*http.Request)

// WithHeader sets a header on the outgoing request.
func WithHeader(key, value string) ReqOption {
	return func(req *http.Request) {
		req.Header.Set(key, value)
	}
}

// Get issues a GET request and decodes the JSON response into out.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...ReqOption) error {
	return c.Request(ctx, http.MethodGet, path, nil, out, opts...)
}

// Request executes a JSON request. On a 401 with a refresh token available
// it refreshes and retries exactly once; a second failure propagates. Any
// other failure propagates unmodified.
func (c *Client) Request(ctx context.Context, method, path string, body any, out any, opts ...ReqOption) error {
	url := c.resolveURL(path)

	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
	}

	attempts := 1
	if c.tokens != nil {
		attempts += c.retry.maxRetries
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		status, err := c.execute(ctx, method, url, payload, out, opts)
		if err == nil {
			return nil
		}
		lastErr = err

		if c.tokens == nil || !c.retry.shouldRetry(status) || !c.tokens.HasRefreshToken() {
			return err
		}

		if attempt == c.retry.maxRetries {
			// The retried request was rejected again: terminal
			return SessionExpiredError(err)
		}

		if !c.tokens.Refresh(ctx) {
			// Refresh already forced a logout in the token source
			c.tokens.Logout()
			if c.onSessionExpired != nil {
				c.onSessionExpired()
			}
			return SessionExpiredError(err)
		}
		logger.Debug("retrying request after token refresh", "url", url)
	}

	return lastErr
}

// execute performs a single request attempt. The bearer token is read at
// call time so a retry picks up a refreshed token.
func (c *Client) execute(ctx context.Context, method, url string, payload []byte, out any, opts []ReqOption) (int, error) {
	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	for _, opt := range opts {
		opt(req)
	}

	if c.tokens != nil {
		if token := c.tokens.AccessToken(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
			// Default content type, unless the caller already chose one
			if req.Header.Get("Content-Type") == "" {
				req.Header.Set("Content-Type", "application/json")
			}
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, ConnectivityError(err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			logger.Error("failed to close response body", "error", err)
		}
	}()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, StatusError(resp.StatusCode, string(respBody))
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return resp.StatusCode, fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return resp.StatusCode, nil
}

// resolveURL returns path verbatim when it already has a scheme, otherwise
// joins it onto the base URL with a normalized leading slash.
func (c *Client) resolveURL(path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}
