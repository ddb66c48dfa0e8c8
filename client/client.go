package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"issue-blog-cms/cache"
	"issue-blog-cms/config"
	"issue-blog-cms/logger"
)

// DefaultTimeout caps every request.
const DefaultTimeout = 15 * time.Second

// responseCachePrefix namespaces cached upstream GET bodies.
const responseCachePrefix = "upstream:"

// CacheHint asks for a revalidation window on a server-side GET.
type CacheHint int

const (
	NoCache CacheHint = iota
	CacheArticles
	CacheComments
)

// RevalidateFunc maps a hint to a freshness horizon.
type RevalidateFunc func(ctx context.Context, hint CacheHint) time.Duration

// Client is the unified API client. The transport decides whether requests go
// to the upstream directly or through the local proxy routes.
type Client struct {
	transport  Transport
	timeout    time.Duration
	cache      cache.Store
	revalidate RevalidateFunc
	log        logger.Logger
}

type Option func(*Client)

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithResponseCache enables the revalidation cache for hinted GETs. It only
// has an effect on a server-side transport.
func WithResponseCache(store cache.Store, revalidate RevalidateFunc) Option {
	return func(c *Client) {
		c.cache = store
		c.revalidate = revalidate
	}
}

func WithLogger(l logger.Logger) Option {
	return func(c *Client) { c.log = l }
}

func New(t Transport, opts ...Option) *Client {
	c := &Client{
		transport: t,
		timeout:   DefaultTimeout,
		log:       logger.Nop(),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

func (c *Client) Context() config.ExecutionContext { return c.transport.Context() }

func (c *Client) IsServerSide() bool { return c.transport.Context() == config.ServerContext }

// GetJSON decodes a GET response into out. A 404 yields an error matching
// models.ErrNotFound.
func (c *Client) GetJSON(ctx context.Context, endpoint string, hint CacheHint, out interface{}) error {
	url := c.transport.URL(endpoint)

	ttl := c.cacheTTL(ctx, hint)
	if ttl > 0 {
		if data, err := c.cache.Get(ctx, responseCachePrefix+url); err == nil {
			c.log.Debug("upstream cache hit", logger.String("url", url))
			return decode(data, out)
		}
	}

	data, err := c.do(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}

	if ttl > 0 {
		if err := c.cache.Set(ctx, responseCachePrefix+url, data, ttl); err != nil {
			c.log.Warn("failed to cache upstream response", logger.String("url", url), logger.Error(err))
		}
	}
	return decode(data, out)
}

func (c *Client) PostJSON(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.send(ctx, http.MethodPost, endpoint, body, out)
}

func (c *Client) PatchJSON(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.send(ctx, http.MethodPatch, endpoint, body, out)
}

func (c *Client) PutJSON(ctx context.Context, endpoint string, body, out interface{}) error {
	return c.send(ctx, http.MethodPut, endpoint, body, out)
}

func (c *Client) send(ctx context.Context, method, endpoint string, body, out interface{}) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request body: %w", err)
	}

	data, err := c.do(ctx, method, c.transport.URL(endpoint), payload)
	if err != nil {
		return err
	}
	c.invalidate(ctx)
	return decode(data, out)
}

func (c *Client) do(ctx context.Context, method, url string, payload []byte) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var body io.Reader
	if payload != nil {
		body = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.transport.HTTPClient().Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s %s: %w after %s", method, url, ErrTimeout, c.timeout)
		}
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%s %s: %w after %s", method, url, ErrTimeout, c.timeout)
		}
		return nil, fmt.Errorf("read response body: %w", err)
	}

	c.log.Debug("api request",
		logger.String("method", method),
		logger.String("url", url),
		logger.Int("status", resp.StatusCode),
		logger.Duration("duration", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{Method: method, URL: url, Status: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

func (c *Client) cacheTTL(ctx context.Context, hint CacheHint) time.Duration {
	if hint == NoCache || c.cache == nil || c.revalidate == nil || !c.IsServerSide() {
		return 0
	}
	return c.revalidate(ctx, hint)
}

// invalidate drops every cached GET after a successful write.
func (c *Client) invalidate(ctx context.Context) {
	if c.cache == nil {
		return
	}
	if err := c.cache.FlushPrefix(ctx, responseCachePrefix); err != nil {
		c.log.Warn("failed to invalidate upstream cache", logger.Error(err))
	}
}

func decode(data []byte, out interface{}) error {
	if out == nil || len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return nil
}

// Get is the typed form of GetJSON.
func Get[T any](ctx context.Context, c *Client, endpoint string, hint CacheHint) (T, error) {
	var out T
	err := c.GetJSON(ctx, endpoint, hint, &out)
	return out, err
}

func Post[T any](ctx context.Context, c *Client, endpoint string, body interface{}) (T, error) {
	var out T
	err := c.PostJSON(ctx, endpoint, body, &out)
	return out, err
}

func Patch[T any](ctx context.Context, c *Client, endpoint string, body interface{}) (T, error) {
	var out T
	err := c.PatchJSON(ctx, endpoint, body, &out)
	return out, err
}

func Put[T any](ctx context.Context, c *Client, endpoint string, body interface{}) (T, error) {
	var out T
	err := c.PutJSON(ctx, endpoint, body, &out)
	return out, err
}

// GetList fetches a JSON array. A payload that is not an array decodes to an
// empty slice rather than an error.
func GetList[T any](ctx context.Context, c *Client, endpoint string, hint CacheHint) ([]T, error) {
	var raw json.RawMessage
	if err := c.GetJSON(ctx, endpoint, hint, &raw); err != nil {
		return []T{}, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return []T{}, nil
	}
	out := make([]T, 0)
	if err := json.Unmarshal(trimmed, &out); err != nil {
		return []T{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return out, nil
}
