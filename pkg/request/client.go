// Package request provides the shared HTTP client for all upstream
// providers. Requests are queued per provider so each upstream sees at
// most one in-flight request from us, with retries, backoff, and
// transparent response caching.
package request

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"periplo/pkg/config"
	"periplo/pkg/logging"
	"periplo/pkg/tracker"
	"periplo/pkg/version"
)

var defaultUserAgent = fmt.Sprintf("Periplo POI Aggregator (periplo/%s; +https://github.com/periplo-dev/periplo)", version.Version)

// Cacher stores raw provider responses keyed by request.
type Cacher interface {
	GetCache(ctx context.Context, key string) ([]byte, bool)
	SetCache(ctx context.Context, key string, val []byte) error
}

// Client handles HTTP requests with queuing, caching, and tracking.
type Client struct {
	httpClient *http.Client
	cache      Cacher
	tracker    *tracker.Tracker
	backoff    *providerBackoff
	throttle   *logging.Throttler
	retries    int

	// Queues per provider (domain)
	queues map[string]chan job
	mu     sync.Mutex // Protects queues map
}

// job represents a queued request.
type job struct {
	req      *http.Request
	headers  map[string]string
	cacheKey string
	respChan chan jobResult
}

type jobResult struct {
	body []byte
	err  error
}

// New creates a new Client.
func New(cfg *config.RequestConfig, c Cacher, t *tracker.Tracker) *Client {
	retries := cfg.Retries
	if retries <= 0 {
		retries = 3
	}
	timeout := time.Duration(cfg.Timeout)
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	base := time.Duration(cfg.Backoff.BaseDelay)
	if base <= 0 {
		base = 2 * time.Second
	}
	maxDelay := time.Duration(cfg.Backoff.MaxDelay)
	if maxDelay <= 0 {
		maxDelay = 30 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		cache:      c,
		tracker:    t,
		backoff:    newProviderBackoff(base, maxDelay),
		throttle:   logging.NewThrottler(),
		retries:    retries,
		queues:     make(map[string]chan job),
	}
}

// Get performs a GET request with queuing and caching if key is provided.
func (c *Client) Get(ctx context.Context, u, cacheKey string) ([]byte, error) {
	return c.GetWithHeaders(ctx, u, nil, cacheKey)
}

// GetWithHeaders performs a GET request with custom headers and optional caching.
func (c *Client) GetWithHeaders(ctx context.Context, u string, headers map[string]string, cacheKey string) ([]byte, error) {
	parsedURL, err := url.Parse(u)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	provider := normalizeProvider(parsedURL.Host)

	if cacheKey != "" {
		if val, hit := c.cache.GetCache(ctx, cacheKey); hit {
			c.tracker.TrackCacheHit(provider)
			slog.Debug("Cache Hit", "provider", provider, "key", cacheKey)
			return val, nil
		}
		c.tracker.TrackCacheMiss(provider)
		slog.Debug("Cache Miss", "provider", provider, "key", cacheKey)
	}

	req, err := http.NewRequestWithContext(ctx, "GET", u, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	respChan := make(chan jobResult, 1)
	j := job{req: req, headers: headers, cacheKey: cacheKey, respChan: respChan}

	c.dispatch(provider, j)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-respChan:
		return res.body, res.err
	}
}

// Post performs a POST request with queuing.
func (c *Client) Post(ctx context.Context, u string, body []byte, contentType string) ([]byte, error) {
	return c.PostWithCache(ctx, u, body, map[string]string{"Content-Type": contentType}, "")
}

// PostWithCache performs a POST request with queuing and optional caching.
func (c *Client) PostWithCache(ctx context.Context, u string, body []byte, headers map[string]string, cacheKey string) ([]byte, error) {
	parsedURL, err := url.Parse(u)
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	provider := normalizeProvider(parsedURL.Host)

	if cacheKey != "" {
		if val, hit := c.cache.GetCache(ctx, cacheKey); hit {
			c.tracker.TrackCacheHit(provider)
			slog.Debug("Cache Hit", "provider", provider, "key", cacheKey)
			return val, nil
		}
		c.tracker.TrackCacheMiss(provider)
		slog.Debug("Cache Miss", "provider", provider, "key", cacheKey)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", u, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	respChan := make(chan jobResult, 1)
	j := job{req: req, headers: headers, cacheKey: cacheKey, respChan: respChan}

	c.dispatch(provider, j)

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-respChan:
		return res.body, res.err
	}
}

// normalizeProvider groups related hosts (mirrors, language subdomains)
// into one provider so their requests share a queue and backoff state.
func normalizeProvider(host string) string {
	switch {
	case host == "wikidata.org" || strings.HasSuffix(host, ".wikidata.org"):
		return "wikidata"
	case host == "wikipedia.org" || strings.HasSuffix(host, ".wikipedia.org"):
		return "wikipedia"
	case host == "dbpedia.org" || strings.HasSuffix(host, ".dbpedia.org"):
		return "dbpedia"
	case strings.Contains(host, "overpass"):
		return "overpass"
	case strings.Contains(host, "nominatim"):
		return "nominatim"
	case host == "duckduckgo.com" || strings.HasSuffix(host, ".duckduckgo.com"):
		return "websearch"
	case host == "generativelanguage.googleapis.com":
		return "gemini"
	case strings.HasSuffix(host, "googleapis.com"):
		return "google"
	}
	return host
}

// dispatch sends the job to the provider's queue, creating the queue/worker if needed.
func (c *Client) dispatch(provider string, j job) {
	c.mu.Lock()
	defer c.mu.Unlock()

	q, ok := c.queues[provider]
	if !ok {
		q = make(chan job, 100)
		c.queues[provider] = q
		go c.worker(provider, q)
	}

	// We block here if the queue is full, effectively throttling the caller
	select {
	case q <- j:
	case <-j.req.Context().Done():
		// Caller gave up before we could even enqueue
		j.respChan <- jobResult{err: j.req.Context().Err()}
	}
}

// worker processes requests for a specific provider sequentially.
func (c *Client) worker(provider string, q <-chan job) {
	for j := range q {
		if j.req.Context().Err() != nil {
			slog.Warn("Job dropped from queue (context expired)", "provider", provider, "error", j.req.Context().Err())
			j.respChan <- jobResult{err: j.req.Context().Err()}
			continue
		}

		// Respect any standing backoff for this provider before dialing.
		c.backoff.wait(provider)

		// Apply User-Agent (Default if not provided)
		uaMatch := false
		for k, v := range j.headers {
			j.req.Header.Set(k, v)
			if http.CanonicalHeaderKey(k) == "User-Agent" {
				uaMatch = true
			}
		}
		if !uaMatch {
			j.req.Header.Set("User-Agent", defaultUserAgent)
		}

		body, err := c.executeWithRetry(provider, j.req)

		if err == nil {
			c.tracker.TrackAPISuccess(provider)
			c.backoff.recordSuccess(provider)
			if j.cacheKey != "" {
				if err := c.cache.SetCache(context.Background(), j.cacheKey, body); err != nil {
					slog.Error("Failed to cache response", "url", j.req.URL, "error", err)
				}
			}
		} else {
			c.tracker.TrackAPIFailure(provider)
			c.backoff.recordFailure(provider)
		}

		j.respChan <- jobResult{body: body, err: err}

		// Hardcoded safety gap to prevent hitting rate limits
		time.Sleep(100 * time.Millisecond)
	}
}

// executeWithRetry attempts the request with exponential backoff on
// 429s, 5xx responses, and transport errors.
func (c *Client) executeWithRetry(provider string, req *http.Request) ([]byte, error) {
	baseDelay := c.backoff.baseDelay

	for attempt := 0; attempt < c.retries; attempt++ {
		// Verify context is still alive before dialing
		if req.Context().Err() != nil {
			return nil, req.Context().Err()
		}

		// The first attempt consumed the body; rewind it or the retry
		// sends an empty POST.
		if attempt > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("failed to rewind request body: %w", err)
			}
			req.Body = body
		}

		slog.Debug("Network Request", "provider", provider, "host", req.URL.Host, "path", req.URL.Path, "attempt", attempt+1)
		resp, err := c.httpClient.Do(req)

		if err != nil {
			// Check if the error is a context cancellation from OUR side
			if req.Context().Err() != nil {
				return nil, req.Context().Err()
			}

			c.throttle.Warn("Request failed, retrying", "url", req.URL, "attempt", attempt+1, "error", err)
			if !sleepBackoff(req.Context(), attempt, baseDelay) {
				return nil, req.Context().Err()
			}
			continue
		}

		if resp.StatusCode == http.StatusTooManyRequests || (resp.StatusCode >= 500 && resp.StatusCode < 600) {
			resp.Body.Close()
			c.throttle.Warn("API Backoff", "status", resp.StatusCode, "url", req.URL, "attempt", attempt+1)
			if !sleepBackoff(req.Context(), attempt, baseDelay) {
				return nil, req.Context().Err()
			}
			continue
		}

		if resp.StatusCode >= 400 {
			resp.Body.Close()
			return nil, fmt.Errorf("api error: status %d", resp.StatusCode)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("read error: %w", err)
		}
		return body, nil
	}

	return nil, fmt.Errorf("max retries exceeded")
}

// sleepBackoff sleeps for baseDelay*2^attempt, returning false if the
// context expired first.
func sleepBackoff(ctx context.Context, attempt int, baseDelay time.Duration) bool {
	sleepDur := baseDelay << uint(attempt)
	select {
	case <-time.After(sleepDur):
		return true
	case <-ctx.Done():
		return false
	}
}
