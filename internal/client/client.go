// Package client is a typed HTTP client for the reorder backend.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const (
	// DefaultBaseURL is used when no base URL is configured.
	DefaultBaseURL = "http://localhost:5000/api"

	requestIDHeader = "X-Request-ID"
	contentTypeJSON = "application/json"
)

// Client wraps the reorder backend. It holds no state between calls and is
// safe for concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	headers    http.Header
	metrics    *Metrics
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout sets the HTTP client timeout. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.httpClient.Timeout = d }
}

// WithHeader sets a header on every request, replacing the JSON defaults
// when the key is Content-Type or Accept.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

// WithMetrics records every request in m.
func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// New creates a client for baseURL (e.g. "http://localhost:5000/api").
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	c := &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
		headers:    http.Header{},
	}
	c.headers.Set("Content-Type", contentTypeJSON)
	c.headers.Set("Accept", contentTypeJSON)

	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the backend root every path is appended to.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// do sends one request and decodes a 2xx body into result. Failures come
// back as *NetworkError, *APIError or *DecodeError.
func (c *Client) do(ctx context.Context, op, method, path string, body any, result any) (err error) {
	started := time.Now()
	requestID := uuid.NewString()
	defer func() {
		c.metrics.observe(op, started, err)
	}()

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: marshal request: %w", op, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", op, err)
	}
	for key, values := range c.headers {
		req.Header[key] = append([]string(nil), values...)
	}
	req.Header.Set(requestIDHeader, requestID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Warn().Err(err).Str("op", op).Str("request_id", requestID).Msg("reorder api request failed")
		return &NetworkError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	log.Debug().
		Str("op", op).
		Str("method", method).
		Str("path", path).
		Str("request_id", requestID).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(started)).
		Msg("reorder api request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseAPIError(op, resp.StatusCode, respBody)
	}

	if result == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return &DecodeError{Op: op, Err: err}
	}
	return nil
}

func (c *Client) get(ctx context.Context, op, path string, result any) error {
	return c.do(ctx, op, http.MethodGet, path, nil, result)
}

func (c *Client) post(ctx context.Context, op, path string, body any, result any) error {
	return c.do(ctx, op, http.MethodPost, path, body, result)
}

func (c *Client) del(ctx context.Context, op, path string, result any) error {
	return c.do(ctx, op, http.MethodDelete, path, nil, result)
}
