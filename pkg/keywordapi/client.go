// Package keywordapi is the HTTP client for the keyword admin API.
//
// Read operations never fail from the caller's point of view: on a network
// error, a timeout or a non-2xx status they log the *FetchError and return a
// fixed fallback value. Create, update and delete surface their errors.
package keywordapi

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	json "github.com/goccy/go-json"

	"github.com/vanderheijden86/keymatrix/pkg/debug"
	"github.com/vanderheijden86/keymatrix/pkg/metrics"
)

// DefaultTimeout bounds every request.
const DefaultTimeout = 10 * time.Second

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://localhost:8001"

// PathPrefix is prepended to every endpoint path.
const PathPrefix = "/admin-api"

// FetchError describes a failed request.
type FetchError struct {
	Op         string
	URL        string
	StatusCode int // zero when no response was received
	Err        error
}

func (e *FetchError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("keywordapi: %s %s: HTTP %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("keywordapi: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Timeout reports whether the request hit the client deadline.
func (e *FetchError) Timeout() bool {
	return errors.Is(e.Err, context.DeadlineExceeded)
}

// ErrStatus is wrapped by FetchError for non-2xx responses.
var ErrStatus = errors.New("unexpected status")

// Client talks to one API base URL.
type Client struct {
	baseURL string
	timeout time.Duration
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// NewClient returns a client for baseURL (DefaultBaseURL when empty).
func NewClient(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		timeout: DefaultTimeout,
		http:    &http.Client{},
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) url(path string) string {
	return c.baseURL + PathPrefix + path
}

// do performs one JSON request. body and out may be nil.
func (c *Client) do(ctx context.Context, op, method, path string, body, out any) error {
	defer metrics.Timer(metrics.DataFetch)()

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.url(path)
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &FetchError{Op: op, URL: u, Err: fmt.Errorf("encoding request: %w", err)}
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, rdr)
	if err != nil {
		return &FetchError{Op: op, URL: u, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return &FetchError{Op: op, URL: u, Err: err}
	}
	defer resp.Body.Close()
	debug.Log("keywordapi: %s %s -> %d (%v)", method, u, resp.StatusCode, time.Since(start))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return &FetchError{Op: op, URL: u, StatusCode: resp.StatusCode, Err: ErrStatus}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return &FetchError{Op: op, URL: u, StatusCode: resp.StatusCode, Err: fmt.Errorf("decoding response: %w", err)}
	}
	return nil
}

// fellBack records a recovered failure.
func fellBack(err error) {
	metrics.FetchFallbacks.Inc()
	debug.Log("%v; using fallback data", err)
}
