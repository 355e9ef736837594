// Package catalog talks to a TMDB-compatible movie catalog API.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/marco/movieFinder/internal/catalog/cache"
	"github.com/marco/movieFinder/internal/retry"
)

const (
	maxBodyBytes     = 10 << 20
	maxErrorBodySize = 256
)

// RetryLogFunc is a callback for logging retry attempts
type RetryLogFunc func(attempt int, maxAttempts int, backoff time.Duration, err error)

// CacheLogFunc reports a cache lookup ("get") or store ("set"). err is set
// when the cache backend failed; the request itself still succeeds.
type CacheLogFunc func(operation string, key string, hit bool, err error)

// Client is a catalog API client authenticated with a static bearer token.
// It is safe for concurrent use.
type Client struct {
	mu      sync.RWMutex
	baseURL string
	apiKey  string

	httpClient     *http.Client
	limiter        *rate.Limiter
	maxAttempts    int
	initialBackoff time.Duration
	retryLogFunc   RetryLogFunc
	cache          cache.Cache
	cacheTTL       time.Duration
	cacheLogFunc   CacheLogFunc
	forceRefresh   bool
}

// ClientConfig holds configuration for the catalog client
type ClientConfig struct {
	BaseURL        string
	APIKey         string
	Timeout        time.Duration
	MaxAttempts    int
	InitialBackoff time.Duration
	// RateLimit caps outgoing requests per second; zero disables limiting.
	RateLimit    float64
	RetryLogFunc RetryLogFunc
	Cache        cache.Cache
	CacheTTL     time.Duration
	CacheLogFunc CacheLogFunc
	ForceRefresh bool
	HTTPClient   *http.Client
}

// NewClient creates a client with a single attempt per request and no cache.
func NewClient(baseURL, apiKey string) *Client {
	return NewClientWithConfig(ClientConfig{BaseURL: baseURL, APIKey: apiKey})
}

// NewClientWithConfig creates a catalog client with full configuration
func NewClientWithConfig(cfg ClientConfig) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 1
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = time.Second
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 10 * time.Minute
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}

	var limiter *rate.Limiter
	if cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateLimit), 1)
	}

	return &Client{
		baseURL:        cfg.BaseURL,
		apiKey:         cfg.APIKey,
		httpClient:     httpClient,
		limiter:        limiter,
		maxAttempts:    cfg.MaxAttempts,
		initialBackoff: cfg.InitialBackoff,
		retryLogFunc:   cfg.RetryLogFunc,
		cache:          cfg.Cache,
		cacheTTL:       cfg.CacheTTL,
		cacheLogFunc:   cfg.CacheLogFunc,
		forceRefresh:   cfg.ForceRefresh,
	}
}

// Reconfigure swaps the base URL and API key used by subsequent requests.
func (c *Client) Reconfigure(baseURL, apiKey string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = baseURL
	c.apiKey = apiKey
}

func (c *Client) credentials() (string, string) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.baseURL, c.apiKey
}

// FetchMovies returns the movies matching query, or the most popular movies
// when query is empty.
func (c *Client) FetchMovies(ctx context.Context, query string) ([]Movie, error) {
	resp, err := c.Fetch(ctx, EndpointFor(query))
	if err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Fetch requests ep and decodes the movie page. A body flagged as a logical
// failure yields *LogicalFailureError and is never cached.
func (c *Client) Fetch(ctx context.Context, ep Endpoint) (*DiscoverResponse, error) {
	baseURL, apiKey := c.credentials()
	requestURL := ep.URL(baseURL)

	if cached, ok := c.cachedResponse(requestURL); ok {
		return cached, nil
	}

	body, err := c.doRequestWithRetry(ctx, requestURL, apiKey)
	if err != nil {
		return nil, err
	}

	var result DiscoverResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("%w: failed to decode response: %w", ErrRequestFailed, err)
	}

	if result.Failed() {
		return nil, &LogicalFailureError{Message: result.Error}
	}
	if result.Results == nil {
		result.Results = []Movie{}
	}

	c.storeResponse(requestURL, body)

	return &result, nil
}

// doRequestWithRetry executes an authenticated GET and returns the body of a
// 2xx response.
func (c *Client) doRequestWithRetry(ctx context.Context, requestURL string, apiKey string) ([]byte, error) {
	var body []byte

	err := retry.Do(ctx, func() error {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
		if err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+apiKey)
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		data, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
		if err != nil {
			return fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			if len(data) > maxErrorBodySize {
				data = data[:maxErrorBodySize]
			}
			return &StatusError{Code: resp.StatusCode, Body: string(data)}
		}

		body = data
		return nil
	}, c.maxAttempts, c.initialBackoff, func(attempt int, backoff time.Duration, err error) {
		if c.retryLogFunc != nil {
			c.retryLogFunc(attempt, c.maxAttempts, backoff, err)
		}
	})
	if err != nil {
		var statusErr *StatusError
		if errors.As(err, &statusErr) {
			return nil, statusErr
		}
		return nil, fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}

	return body, nil
}

// cachedResponse looks up a previously stored page for requestURL. Entries
// that no longer decode count as misses.
func (c *Client) cachedResponse(requestURL string) (*DiscoverResponse, bool) {
	if c.cache == nil || c.forceRefresh {
		return nil, false
	}

	data, hit := c.cache.Get(requestURL)
	var resp DiscoverResponse
	var err error
	if hit {
		if err = json.Unmarshal(data, &resp); err != nil {
			hit = false
			err = fmt.Errorf("corrupt cache entry: %w", err)
		}
	}
	c.logCache("get", requestURL, hit, err)
	if !hit {
		return nil, false
	}
	return &resp, true
}

// storeResponse saves a successful body under requestURL.
func (c *Client) storeResponse(requestURL string, body []byte) {
	if c.cache == nil {
		return
	}
	err := c.cache.Set(requestURL, body, c.cacheTTL)
	c.logCache("set", requestURL, err == nil, err)
}

func (c *Client) logCache(operation, key string, hit bool, err error) {
	if c.cacheLogFunc != nil {
		c.cacheLogFunc(operation, key, hit, err)
	}
}
