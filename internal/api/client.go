// Package api is the authenticated request client for the bezorgen
// backend plus the typed resource operations built on it. Every call is
// exactly one network round trip: no retries, no client-imposed
// timeouts — callers bound latency through the context.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	apperrors "bezorgen/internal/errors"
	"bezorgen/internal/schema"

	"github.com/google/uuid"
)

// TraceIDHeader carries the per-request trace id attached to every
// outbound call.
const TraceIDHeader = "X-Trace-ID"

// TokenStore is the slice of the session store the client needs: read
// the bearer token before a call, clear it when the server reports the
// session invalid.
type TokenStore interface {
	Read() (string, bool)
	Clear() error
}

// Client issues requests against the bezorgen backend.
type Client struct {
	baseURL string
	http    *http.Client
	store   TokenStore
	schema  *schema.Validator
	metrics *Metrics
	log     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.http = httpClient }
}

// WithMetrics enables request metrics recording.
func WithMetrics(metrics *Metrics) Option {
	return func(c *Client) { c.metrics = metrics }
}

// WithLogger replaces the default logger.
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) { c.log = log }
}

// NewClient creates a client for the backend at baseURL. The token store
// is injected rather than ambient so the client stays testable with a
// fake store.
func NewClient(baseURL string, store TokenStore, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		store:   store,
		schema:  schema.Default(),
		log:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// errorBody is the error response shape the backend uses. Anything else
// degrades to a generic message.
type errorBody struct {
	Detail string `json:"detail"`
}

// do issues a single request. When authed is true the bearer token is
// attached if present, and a 401 clears the session store and yields
// ErrUnauthenticated. All other non-2xx statuses become APIErrors with
// the server's {detail} message.
func (c *Client) do(ctx context.Context, operation, method, path string, query url.Values, body any, authed bool) (*http.Response, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode %s request body: %w", operation, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to build %s request: %w", operation, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(TraceIDHeader, uuid.New().String())
	if authed {
		if token, ok := c.store.Read(); ok && token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		// transient network failures propagate unmodified; retry policy
		// belongs to the caller
		c.observe(operation, "network_error", time.Since(start))
		return nil, fmt.Errorf("%s %s: %w", method, path, err)
	}
	c.observe(operation, strconv.Itoa(resp.StatusCode), time.Since(start))

	if authed && resp.StatusCode == http.StatusUnauthorized {
		drain(resp)
		if clearErr := c.store.Clear(); clearErr != nil {
			c.log.Error("failed to clear session after 401", "operation", operation, "error", clearErr)
		}
		c.log.Warn("session rejected by server", "operation", operation)
		return nil, apperrors.ErrUnauthenticated
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		defer resp.Body.Close()

		var detail errorBody
		if decodeErr := json.NewDecoder(resp.Body).Decode(&detail); decodeErr != nil {
			detail.Detail = apperrors.GenericDetail
		}
		return nil, apperrors.NewAPIError(resp.StatusCode, detail.Detail)
	}

	return resp, nil
}

func (c *Client) get(ctx context.Context, operation, path string, query url.Values) (*http.Response, error) {
	return c.do(ctx, operation, http.MethodGet, path, query, nil, true)
}

// public issues a request without a bearer header, for the
// external-credential exchange and health checks. A possibly stale
// token must never ride along on these.
func (c *Client) public(ctx context.Context, operation, method, path string, body any) (*http.Response, error) {
	return c.do(ctx, operation, method, path, nil, body, false)
}

func (c *Client) observe(operation, status string, duration time.Duration) {
	if c.metrics != nil {
		c.metrics.observe(operation, status, duration)
	}
}

func drain(resp *http.Response) {
	_, _ = io.Copy(io.Discard, resp.Body)
	_ = resp.Body.Close()
}
