package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	averrors "github.com/five82/ava/internal/errors"
	"github.com/five82/ava/internal/logfields"
	"github.com/five82/ava/internal/metrics"
)

// Client talks to the remote JSON API.
type Client struct {
	baseURL   *url.URL
	http      *http.Client
	userAgent string
	logger    *slog.Logger
	recorder  metrics.Recorder

	mu    sync.RWMutex
	token string
}

const (
	defaultAPIURL    = "http://127.0.0.1:3000/"
	defaultUserAgent = "ava/0.1"
	requestTimeout   = 15 * time.Second
)

// Envelope is the response wrapper every endpoint returns.
type Envelope[T any] struct {
	Code    int    `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Data    T      `json:"data"`
}

// OK reports whether the envelope signals success. A missing code counts as
// success; the HTTP status has already been checked.
func (e Envelope[T]) OK() bool {
	return e.Code == 0 || (e.Code >= 200 && e.Code < 300)
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the request logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithRecorder sets the metrics recorder.
func WithRecorder(r metrics.Recorder) Option {
	return func(c *Client) { c.recorder = metrics.OrNoop(r) }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// NewClient builds a Client for apiURL. Endpoints are resolved relative to it.
func NewClient(apiURL string, opts ...Option) (*Client, error) {
	base, err := parseBaseURL(apiURL)
	if err != nil {
		return nil, err
	}
	c := &Client{
		baseURL:   base,
		http:      &http.Client{Timeout: requestTimeout},
		userAgent: defaultUserAgent,
		logger:    slog.Default(),
		recorder:  metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) authToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// call performs one request and decodes the envelope's data into dest.
// endpoint is the route label used for errors, logs and metrics.
func call[T any](ctx context.Context, c *Client, method, endpoint, path string, query url.Values, body any) (T, error) {
	var zero T
	if c == nil {
		return zero, averrors.New(averrors.CategoryInternal, "remote client is nil")
	}

	start := time.Now()
	env, err := doEnvelope[T](ctx, c, method, endpoint, path, query, body)
	elapsed := time.Since(start)
	c.recorder.ObserveRemoteDuration(endpoint, elapsed, metrics.ResultOf(err))

	if err != nil {
		c.logger.Debug("remote request failed",
			logfields.Endpoint(endpoint),
			logfields.DurationMS(float64(elapsed.Microseconds())/1000),
			logfields.Error(err),
		)
		return zero, err
	}
	c.logger.Debug("remote request",
		logfields.Endpoint(endpoint),
		logfields.DurationMS(float64(elapsed.Microseconds())/1000),
	)
	return env.Data, nil
}

func doEnvelope[T any](ctx context.Context, c *Client, method, endpoint, path string, query url.Values, body any) (Envelope[T], error) {
	var env Envelope[T]

	rel := &url.URL{Path: path, RawQuery: query.Encode()}
	reqURL := c.baseURL.ResolveReference(rel)

	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return env, averrors.Wrap(err, averrors.CategoryInternal, "encode request")
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL.String(), reader)
	if err != nil {
		return env, averrors.Transport(endpoint, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if tok := c.authToken(); tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return env, averrors.Transport(endpoint, fmt.Errorf("execute request: %w", err))
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotFound {
		return env, averrors.New(averrors.CategoryNotFound, fmt.Sprintf("api %s returned status %d", endpoint, resp.StatusCode)).
			WithContext("endpoint", endpoint)
	}
	if resp.StatusCode >= 400 {
		msg := fmt.Sprintf("api %s returned status %d", endpoint, resp.StatusCode)
		var errEnv Envelope[json.RawMessage]
		if json.NewDecoder(resp.Body).Decode(&errEnv) == nil && errEnv.Message != "" {
			msg += ": " + errEnv.Message
		}
		return env, averrors.RemoteStatus(endpoint, resp.StatusCode, msg)
	}

	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil && !errors.Is(err, io.EOF) {
		return env, averrors.Transport(endpoint, fmt.Errorf("decode response: %w", err))
	}
	if !env.OK() {
		return env, averrors.RemoteStatus(endpoint, env.Code, env.Message)
	}
	return env, nil
}

func parseBaseURL(apiURL string) (*url.URL, error) {
	trimmed := strings.TrimSpace(apiURL)
	if trimmed == "" {
		trimmed = defaultAPIURL
	}
	if !strings.Contains(trimmed, "://") {
		trimmed = "http://" + trimmed
	}
	u, err := url.Parse(trimmed)
	if err != nil {
		return nil, fmt.Errorf("parse api_url %q: %w", apiURL, err)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	u.RawQuery = ""
	u.Fragment = ""
	return u, nil
}
