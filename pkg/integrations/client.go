package integrations

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/matzehuels/topoviz/pkg/cache"
	"github.com/matzehuels/topoviz/pkg/observability"
)

// Client provides shared HTTP functionality for the graph service clients.
// It handles response caching, status mapping, and common request headers.
// Requests are never retried.
type Client struct {
	http    *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	prefix  string
	ttl     time.Duration
	headers map[string]string
}

// NewClient creates a Client with the given cache and default headers.
// prefix namespaces the cache entries of this client and ttl bounds their
// lifetime. Headers are applied to all requests made through this client.
// Pass nil for headers if no default headers are needed, and nil for c to
// disable caching.
func NewClient(c cache.Cache, prefix string, ttl time.Duration, headers map[string]string) *Client {
	if c == nil {
		c = cache.NewNullCache()
	}
	return &Client{
		http:    NewHTTPClient(),
		cache:   c,
		keyer:   cache.NewDefaultKeyer(),
		prefix:  prefix,
		ttl:     ttl,
		headers: headers,
	}
}

// WithKeyer replaces the keyer used to derive cache keys and returns c.
func (c *Client) WithKeyer(k cache.Keyer) *Client {
	if k != nil {
		c.keyer = k
	}
	return c
}

// Cached retrieves a value from cache or executes fetch and caches the result.
// If refresh is true, the cache is bypassed and fetch is always called.
// The fetch function should populate v; on success, v is stored in the cache.
func (c *Client) Cached(ctx context.Context, key string, refresh bool, v any, fetch func() error) error {
	fullKey := c.keyer.HTTPKey(c.prefix, key)
	hooks := observability.Cache()
	if !refresh {
		if ok, _ := cache.GetJSON(ctx, c.cache, fullKey, v); ok {
			hooks.OnCacheHit(ctx, "http")
			return nil
		}
		hooks.OnCacheMiss(ctx, "http")
	}
	if err := fetch(); err != nil {
		return err
	}
	if data, err := json.Marshal(v); err == nil {
		if c.cache.Set(ctx, fullKey, data, c.ttl) == nil {
			hooks.OnCacheSet(ctx, "http", len(data))
		}
	}
	return nil
}

// Get performs an HTTP GET request and JSON-decodes the response into v.
// It uses the client's default headers.
func (c *Client) Get(ctx context.Context, url string, v any) error {
	return c.GetWithHeaders(ctx, url, nil, v)
}

// GetWithHeaders performs an HTTP GET with additional headers merged with defaults.
// Request-specific headers override client defaults for the same key.
func (c *Client) GetWithHeaders(ctx context.Context, url string, headers map[string]string, v any) error {
	body, err := c.doRequest(ctx, url, headers)
	if err != nil {
		return err
	}
	defer body.Close()
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// GetText performs an HTTP GET request and returns the response body as a string.
func (c *Client) GetText(ctx context.Context, url string) (string, error) {
	body, err := c.doRequest(ctx, url, nil)
	if err != nil {
		return "", err
	}
	defer body.Close()
	data, err := io.ReadAll(body)
	return string(data), err
}

func (c *Client) doRequest(ctx context.Context, rawURL string, headers map[string]string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	host, path := hostPath(req.URL)
	hooks := observability.HTTP()
	hooks.OnRequest(ctx, req.Method, host, path)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		hooks.OnError(ctx, req.Method, host, path, err)
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	hooks.OnResponse(ctx, req.Method, host, path, resp.StatusCode, time.Since(start))

	if err := checkStatus(resp.StatusCode); err != nil {
		resp.Body.Close()
		return nil, err
	}
	return resp.Body, nil
}

func hostPath(u *url.URL) (string, string) {
	if u == nil {
		return "", ""
	}
	return u.Host, u.Path
}

func checkStatus(code int) error {
	switch {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrNotFound
	case code >= 500:
		return fmt.Errorf("%w: status %d", ErrNetwork, code)
	default:
		return fmt.Errorf("%w: status %d", ErrRequest, code)
	}
}
