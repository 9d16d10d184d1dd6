// Package upstream proxies research operations to the backend service.
//
// Every call is bounded by the client timeout and never retried. Failures are
// classified into the typed errors of pkg/errors so transport bindings can
// turn them into error events without inspecting transport details.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/synapseflow/gateway/pkg/constants"
	"github.com/synapseflow/gateway/pkg/errors"
	"github.com/synapseflow/gateway/pkg/research"
)

// Endpoint paths on the backend service.
const (
	ResearchPath = "/api/research"
	StatsPath    = "/api/stats"
	HealthPath   = "/health"
)

// Client is the upstream proxy.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
	auth    Authenticator
	logger  *zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the upper bound on a single upstream call.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithAPIKey sends key as a bearer token on every request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		c.auth = authenticatorFor(key)
	}
}

// WithAuthenticator overrides the request authenticator.
func WithAuthenticator(a Authenticator) Option {
	return func(c *Client) {
		if a != nil {
			c.auth = a
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client. Its Timeout is
// overwritten by the configured upstream timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the client logger.
func WithLogger(logger *zerolog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New creates an upstream client for the backend at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	if strings.TrimSpace(baseURL) == "" {
		return nil, errors.NewConfigError("upstream", "backend URL is required", nil)
	}

	nop := zerolog.Nop()
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: constants.UpstreamTimeout,
		http:    &http.Client{},
		auth:    &NoAuth{},
		logger:  &nop,
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.Timeout = c.timeout

	return c, nil
}

// BaseURL returns the backend base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Timeout returns the per-call bound.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// Submit runs a research query on the backend.
func (c *Client) Submit(ctx context.Context, q research.Query) (*research.Result, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	body, err := json.Marshal(q)
	if err != nil {
		return nil, errors.WrapValidation("query", err)
	}

	c.logger.Info().
		Str("query", q.Query).
		Strs("domains", q.Domains).
		Msg("Executing research via backend")

	start := time.Now()
	var result research.Result
	if err := c.call(ctx, http.MethodPost, ResearchPath, body, &result, true); err != nil {
		c.logger.Error().Err(err).Msg("Research execution failed")
		return nil, err
	}
	if err := result.Validate(); err != nil {
		return nil, &errors.UpstreamError{
			Endpoint:   ResearchPath,
			StatusCode: http.StatusOK,
			Message:    "result has no papers list",
			Err:        err,
		}
	}

	c.logger.Debug().
		Int("papers", len(result.Papers)).
		Dur("elapsed", time.Since(start)).
		Msg("Research completed")

	return &result, nil
}

// Stats fetches aggregate statistics from the backend.
func (c *Client) Stats(ctx context.Context) (research.Stats, error) {
	var stats research.Stats
	if err := c.call(ctx, http.MethodGet, StatsPath, nil, &stats, true); err != nil {
		c.logger.Error().Err(err).Msg("Failed to get stats")
		return nil, err
	}
	return stats, nil
}

// Health fetches the backend health document.
func (c *Client) Health(ctx context.Context) (research.Health, error) {
	var health research.Health
	if err := c.call(ctx, http.MethodGet, HealthPath, nil, &health, false); err != nil {
		c.logger.Warn().Err(err).Msg("Failed to get health")
		return nil, err
	}
	return health, nil
}

// call performs one request and decodes the response into target.
func (c *Client) call(ctx context.Context, method, path string, body []byte, target any, enveloped bool) error {
	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return classify(ctx, path, c.timeout, err)
	}

	return decodeResponse(ctx, resp, path, c.timeout, target, enveloped)
}

func (c *Client) newRequest(ctx context.Context, method, path string, body []byte) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.NewConfigError("upstream", "building request for "+path, err)
	}

	req.Header.Set("Accept", "application/json")
	if method == http.MethodPost || method == http.MethodPut || method == http.MethodPatch {
		req.Header.Set("Content-Type", "application/json")
	}
	c.auth.Apply(req)

	return req, nil
}
