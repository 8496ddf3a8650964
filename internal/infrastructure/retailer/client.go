package retailer

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/klauspost/compress/flate"
	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"golang.org/x/net/html/charset"
	"golang.org/x/time/rate"

	"github.com/pricescout/backend/internal/domain"
)

const maxPageBytes = 8 << 20

// PageFetcher downloads a retailer page and returns it as UTF-8 HTML
type PageFetcher interface {
	Fetch(ctx context.Context, site, pageURL string) ([]byte, error)
}

// ClientConfig holds configuration for the page client
type ClientConfig struct {
	RequestTimeout    time.Duration
	MaxAttempts       int
	RequestsPerSecond float64
	Burst             int
	UserAgents        []string
}

// Client fetches retailer pages with per-site rate limiting and retries
type Client struct {
	httpClient  *http.Client
	userAgents  []string
	maxAttempts int
	limit       rate.Limit
	burst       int
	debug       bool

	mu       sync.Mutex
	limiters map[string]*rate.Limiter

	// sleep waits between attempts, injectable for testing
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new retailer page client
func NewClient(config ClientConfig) *Client {
	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	attempts := config.MaxAttempts
	if attempts <= 0 {
		attempts = 3
	}
	limit := rate.Limit(config.RequestsPerSecond)
	if config.RequestsPerSecond <= 0 {
		limit = rate.Inf
	}
	burst := config.Burst
	if burst <= 0 {
		burst = 1
	}
	agents := config.UserAgents
	if len(agents) == 0 {
		agents = []string{"Mozilla/5.0 (compatible; PriceScout/1.0)"}
	}

	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		userAgents:  agents,
		maxAttempts: attempts,
		limit:       limit,
		burst:       burst,
		limiters:    make(map[string]*rate.Limiter),
		sleep:       sleepContext,
	}
}

// SetDebug enables or disables verbose request logging
func (c *Client) SetDebug(debug bool) {
	c.debug = debug
}

// exponentialBackoff returns the wait before the given retry attempt
func exponentialBackoff(attempt int) time.Duration {
	return time.Duration(500*(1<<(attempt-1))) * time.Millisecond
}

// Fetch downloads pageURL, retrying transient failures up to maxAttempts times
func (c *Client) Fetch(ctx context.Context, site, pageURL string) ([]byte, error) {
	limiter := c.limiterFor(site)

	var lastErr error
	for attempt := 1; attempt <= c.maxAttempts; attempt++ {
		if attempt > 1 {
			if err := c.sleep(ctx, exponentialBackoff(attempt-1)); err != nil {
				return nil, err
			}
		}

		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter error: %w", err)
		}

		body, retry, err := c.fetchOnce(ctx, pageURL)
		if err == nil {
			return body, nil
		}
		lastErr = err
		if c.debug {
			log.Printf("[SCRAPE] %s attempt %d/%d failed: %v", site, attempt, c.maxAttempts, err)
		}
		if !retry || ctx.Err() != nil {
			break
		}
	}

	return nil, lastErr
}

// fetchOnce performs a single request. The boolean reports whether a failure is worth retrying.
func (c *Client) fetchOnce(ctx context.Context, pageURL string) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgents[rand.Intn(len(c.userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,image/webp,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.5")
	req.Header.Set("Accept-Encoding", "gzip, deflate, zstd")
	req.Header.Set("DNT", "1")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", domain.ErrRetailerRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, maxPageBytes))
		retry := resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500
		return nil, retry, fmt.Errorf("%w: status %d", domain.ErrRetailerRequest, resp.StatusCode)
	}

	body, err := decodeBody(resp)
	if err != nil {
		return nil, true, fmt.Errorf("%w: %v", domain.ErrRetailerRequest, err)
	}
	return body, false, nil
}

// decodeBody undoes Content-Encoding and converts the page to UTF-8
func decodeBody(resp *http.Response) ([]byte, error) {
	var reader io.Reader = resp.Body

	switch strings.ToLower(strings.TrimSpace(resp.Header.Get("Content-Encoding"))) {
	case "", "identity":
	case "gzip":
		gz, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip body: %w", err)
		}
		defer gz.Close()
		reader = gz
	case "deflate":
		fr := flate.NewReader(resp.Body)
		defer fr.Close()
		reader = fr
	case "zstd":
		zr, err := zstd.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("zstd body: %w", err)
		}
		defer zr.Close()
		reader = zr
	default:
		return nil, fmt.Errorf("unsupported content encoding %q", resp.Header.Get("Content-Encoding"))
	}

	raw, err := io.ReadAll(io.LimitReader(reader, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	utf8Reader, err := charset.NewReader(bytes.NewReader(raw), resp.Header.Get("Content-Type"))
	if err != nil {
		return raw, nil
	}
	return io.ReadAll(utf8Reader)
}

// limiterFor returns the token bucket for a site, creating it on first use
func (c *Client) limiterFor(site string) *rate.Limiter {
	c.mu.Lock()
	defer c.mu.Unlock()

	l, ok := c.limiters[site]
	if !ok {
		l = rate.NewLimiter(c.limit, c.burst)
		c.limiters[site] = l
	}
	return l
}

func sleepContext(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
