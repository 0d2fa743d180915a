// Package fetch retrieves page sources from local files or remote URLs.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// DefaultRateLimit caps remote requests per second. Filter clicks refetch
	// the bibliography, so a burst of clicks must not hammer the host.
	DefaultRateLimit = 2.0

	// MaxBodySize bounds how much of a response is read.
	MaxBodySize = 16 << 20
)

// Fetcher retrieves the raw bytes of a source.
type Fetcher interface {
	Fetch(ctx context.Context, source string) ([]byte, error)
}

// Client fetches http(s) URLs through a rate limiter and everything else as
// a path relative to the site root.
type Client struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	root       string
	userAgent  string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit sets the remote request rate; zero or less disables limiting.
func WithRateLimit(perSecond float64) ClientOption {
	return func(c *Client) {
		if perSecond <= 0 {
			c.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithRoot sets the directory that relative sources resolve against.
func WithRoot(dir string) ClientOption {
	return func(c *Client) {
		c.root = dir
	}
}

// WithUserAgent sets the User-Agent header for remote requests.
func WithUserAgent(ua string) ClientOption {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// NewClient creates a fetch client.
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRateLimit), 1),
		root:       ".",
		userAgent:  "labpage",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// IsRemote reports whether source is an http(s) URL.
func IsRemote(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}

// Fetch returns the contents of source.
func (c *Client) Fetch(ctx context.Context, source string) ([]byte, error) {
	if IsRemote(source) {
		return c.fetchRemote(ctx, source)
	}
	return c.fetchLocal(ctx, source)
}

func (c *Client) fetchLocal(ctx context.Context, source string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	path := source
	if !filepath.IsAbs(path) {
		path = filepath.Join(c.root, filepath.FromSlash(source))
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return data, nil
}

func (c *Client) fetchRemote(ctx context.Context, url string) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()

	if err := checkHTTPErrors(resp, url); err != nil {
		return nil, err
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrNetwork, err)
	}
	return data, nil
}

// checkHTTPErrors returns an error if the HTTP response indicates a problem.
func checkHTTPErrors(resp *http.Response, url string) error {
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrNotFound, url)
	case resp.StatusCode == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", ErrRateLimited, url)
	case resp.StatusCode >= 400:
		return &HTTPError{StatusCode: resp.StatusCode, URL: url}
	}
	return nil
}
