// Package net provides the HTTP transport used to talk to Horizon and to fetch
// stellar.toml files: per-request timeout, bounded retries with exponential
// backoff on transport errors and 5xx responses, and a circuit breaker that
// stops hammering a server that keeps failing.
//
// 4xx responses are returned to the caller untouched; they carry Horizon's
// problem documents (including rejected-transaction results) and are never
// retried.
//
// Example usage:
//
//	client := net.NewClient(
//	    net.WithTimeout(20*time.Second),
//	    net.WithMaxRetries(5),
//	    net.WithRetryBackoff(2*time.Second),
//	)
//	resp, err := client.PostForm(ctx, horizonURL+"/transactions", url.Values{"tx": {envelope}})
package net

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/marwen-abid/stellarkit-go/errors"
)

// Default configuration values
const (
	defaultTimeout      = 30 * time.Second
	defaultMaxRetries   = 3
	defaultBackoff      = 1 * time.Second
	defaultFailureLimit = 5
	defaultResetTimeout = 60 * time.Second
)

// Client is an HTTP client with retry, timeout, and circuit breaker capabilities.
type Client struct {
	httpClient     *http.Client
	maxRetries     int
	retryBackoff   time.Duration
	circuitBreaker *circuitBreaker
	logger         logrus.FieldLogger
}

// ClientOption is a function that configures a Client.
type ClientOption func(*Client)

// WithTimeout sets the HTTP client timeout (default: 30s).
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithMaxRetries sets the maximum number of retry attempts (default: 3).
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		c.maxRetries = n
	}
}

// WithRetryBackoff sets the base duration for exponential backoff (default: 1s).
func WithRetryBackoff(d time.Duration) ClientOption {
	return func(c *Client) {
		c.retryBackoff = d
	}
}

// WithHTTPClient uses a copy of hc for requests; hc itself is never
// modified. The configured timeout is kept unless hc sets its own.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		cp := *hc
		if cp.Timeout == 0 {
			cp.Timeout = c.httpClient.Timeout
		}
		c.httpClient = &cp
	}
}

// WithCircuitBreaker sets how many consecutive failures open the circuit and
// how long it stays open (default: 5 failures, 60s).
func WithCircuitBreaker(failureLimit int, resetTimeout time.Duration) ClientOption {
	return func(c *Client) {
		c.circuitBreaker.failureLimit = failureLimit
		c.circuitBreaker.resetTimeout = resetTimeout
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(l logrus.FieldLogger) ClientOption {
	return func(c *Client) {
		c.logger = l
	}
}

// NewClient creates a new HTTP client with the given options.
func NewClient(opts ...ClientOption) *Client {
	client := &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		maxRetries:   defaultMaxRetries,
		retryBackoff: defaultBackoff,
		circuitBreaker: &circuitBreaker{
			failureLimit: defaultFailureLimit,
			resetTimeout: defaultResetTimeout,
		},
		logger: logrus.StandardLogger(),
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// HTTPClient returns the underlying http.Client so other Horizon clients can
// share its transport and timeout.
func (c *Client) HTTPClient() *http.Client {
	return c.httpClient
}

// Response wraps an HTTP response with convenience methods.
type Response struct {
	*http.Response
}

// ReadBody reads and closes the response body, reading at most limit bytes.
func (r *Response) ReadBody(limit int64) ([]byte, error) {
	defer r.Body.Close()
	b, err := io.ReadAll(io.LimitReader(r.Body, limit))
	if err != nil {
		return nil, errors.NewNetworkError(errors.NETWORK_ERROR, "failed to read response body", err)
	}
	return b, nil
}

// Get performs an HTTP GET request with retry and circuit breaker logic.
func (c *Client) Get(ctx context.Context, url string) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, errors.NewNetworkError(errors.NETWORK_ERROR, "failed to create GET request", err)
	}
	return c.do(req)
}

// PostForm performs an HTTP POST request with a form-encoded body.
func (c *Client) PostForm(ctx context.Context, urlStr string, data url.Values) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, urlStr, strings.NewReader(data.Encode()))
	if err != nil {
		return nil, errors.NewNetworkError(errors.NETWORK_ERROR, "failed to create POST form request", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return c.do(req)
}

// do executes the HTTP request with retry logic and circuit breaker.
func (c *Client) do(req *http.Request) (*Response, error) {
	if !c.circuitBreaker.allowRequest() {
		return nil, errors.NewNetworkError(
			errors.NETWORK_ERROR,
			"circuit breaker is open",
			nil,
		).With("url", req.URL.String())
	}

	// Buffer the request body so it can be replayed on retries
	var bodyBytes []byte
	if req.Body != nil {
		var err error
		bodyBytes, err = io.ReadAll(req.Body)
		if err != nil {
			return nil, errors.NewNetworkError(errors.NETWORK_ERROR, "failed to read request body", err)
		}
		req.Body.Close()
	}

	log := c.logger.WithFields(logrus.Fields{"method": req.Method, "url": req.URL.String()})

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if err := req.Context().Err(); err != nil {
			return nil, errors.NewNetworkError(errors.NETWORK_ERROR, "request cancelled", err)
		}

		if bodyBytes != nil {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes))
			req.ContentLength = int64(len(bodyBytes))
		}

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = err
		} else if resp.StatusCode >= 500 {
			resp.Body.Close()
			lastErr = errors.NewNetworkError(errors.NETWORK_ERROR, "server error: "+resp.Status, nil).
				With("status", resp.StatusCode)
		} else {
			// 2xx-4xx: the server answered; the caller interprets the status
			c.circuitBreaker.recordSuccess()
			return &Response{resp}, nil
		}

		if attempt < c.maxRetries {
			log.WithError(lastErr).WithField("attempt", attempt+1).Debug("request failed, retrying")
			if err := c.backoff(req.Context(), attempt); err != nil {
				return nil, errors.NewNetworkError(errors.NETWORK_ERROR, "request cancelled", err)
			}
		}
	}

	c.circuitBreaker.recordFailure()
	log.WithError(lastErr).Warn("request failed")
	return nil, errors.NewNetworkError(
		errors.NETWORK_ERROR,
		fmt.Sprintf("request failed after %d attempts", c.maxRetries+1),
		lastErr,
	).With("url", req.URL.String())
}

// backoff waits retryBackoff * 2^attempt or until ctx is done.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	t := time.NewTimer(c.retryBackoff * (1 << uint(attempt)))
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// circuitBreaker implements a simple circuit breaker pattern.
type circuitBreaker struct {
	mu           sync.RWMutex
	failures     int
	lastFailTime time.Time
	failureLimit int
	resetTimeout time.Duration
	state        circuitState
}

type circuitState int

const (
	stateClosed circuitState = iota
	stateOpen
)

// allowRequest checks if the circuit breaker allows the request to proceed.
// An open circuit lets one trial request through once resetTimeout has elapsed.
func (cb *circuitBreaker) allowRequest() bool {
	cb.mu.RLock()
	defer cb.mu.RUnlock()

	if cb.state == stateClosed {
		return true
	}
	return time.Since(cb.lastFailTime) > cb.resetTimeout
}

func (cb *circuitBreaker) recordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures = 0
	cb.state = stateClosed
}

func (cb *circuitBreaker) recordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.failures++
	cb.lastFailTime = time.Now()

	if cb.failures >= cb.failureLimit {
		cb.state = stateOpen
	}
}
