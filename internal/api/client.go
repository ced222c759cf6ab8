// Package api is a small JSON client for the remote demo API. It makes one
// request per call: no retries, no caching, no authentication.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/tgienger/favtasks/internal/models"
)

// DefaultTimeout bounds each request.
const DefaultTimeout = 10 * time.Second

// NetworkError reports a request that never produced an HTTP response:
// connection failures, timeouts and cancellations.
type NetworkError struct {
	Method string
	Path   string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Method, e.Path, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Timeout reports whether the request ran out of time.
func (e *NetworkError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var te interface{ Timeout() bool }
	return errors.As(e.Err, &te) && te.Timeout()
}

// StatusError reports a response with a non-2xx status.
type StatusError struct {
	Method string
	Path   string
	Code   int
	Body   string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: unexpected status %d %s", e.Method, e.Path, e.Code, http.StatusText(e.Code))
}

// Client talks to a single base URL.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the per-request timeout. It applies to a copy of the
// http.Client, so a shared client passed to WithHTTPClient is not modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// New creates a client for baseURL.
func New(baseURL string, logger *log.Logger, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL %q: %w", baseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid base URL %q: scheme must be http or https", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
		logger:  logger.WithPrefix("api"),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	return c, nil
}

// Get issues a GET and decodes the response into out, if non-nil.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post issues a POST with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

// Put issues a PUT with body encoded as JSON.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPut, path, body, out)
}

// Delete issues a DELETE.
func (c *Client) Delete(ctx context.Context, path string) error {
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

// ListPosts fetches every post.
func (c *Client) ListPosts(ctx context.Context) ([]models.Post, error) {
	var posts []models.Post
	if err := c.Get(ctx, "/posts", &posts); err != nil {
		return nil, err
	}
	return posts, nil
}

// UpdatePost sends payload to PUT /posts/{id}. The demo API echoes the body
// back without persisting it.
func (c *Client) UpdatePost(ctx context.Context, id int, payload, out any) error {
	return c.Put(ctx, fmt.Sprintf("/posts/%d", id), payload, out)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s body: %w", method, path, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("request", "method", method, "path", path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Error("request failed", "method", method, "path", path, "err", err)
		return &NetworkError{Method: method, Path: path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		c.logger.Error("request rejected", "method", method, "path", path, "status", resp.StatusCode)
		return &StatusError{Method: method, Path: path, Code: resp.StatusCode, Body: string(snippet)}
	}

	c.logger.Info("response", "method", method, "path", path, "status", resp.StatusCode, "elapsed", time.Since(start).Round(time.Millisecond))

	if out == nil {
		io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return &NetworkError{Method: method, Path: path, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
