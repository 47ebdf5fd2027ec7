// Package fetch is the shared outbound HTTP layer for scraper connectors
// and cross-reference providers: browser-like headers, per-host rate
// limiting, and retry with backoff on the status codes scrape targets
// throw when they are grumpy.
package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"net/url"
	"strings"
	"time"

	"encoding/json/v2"

	"github.com/PuerkitoBio/goquery"

	"github.com/partlogicapp/partlogic-server/internal/ratelimit"
)

// Desktop User-Agents rotated per request.
//
//nolint:gochecknoglobals // Static rotation pool
var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/130.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.2 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:134.0) Gecko/20100101 Firefox/134.0",
}

// HTMLFetcher is what connectors depend on; both the HTTP fetcher and the
// headless-browser fetcher implement it.
type HTMLFetcher interface {
	FetchHTML(ctx context.Context, rawURL string) (*goquery.Document, error)
}

// Options configures a Fetcher.
type Options struct {
	// RequestTimeout bounds a single HTTP request.
	RequestTimeout time.Duration
	// PerHostDelay is the minimum spacing between requests to one host.
	PerHostDelay time.Duration
	// Retries is the number of additional attempts on retryable failures.
	Retries int
}

// Fetcher performs polite outbound requests: one rate limiter per host,
// rotating User-Agents, retries with exponential backoff plus jitter on
// 403/429/5xx and transport errors.
type Fetcher struct {
	client   *http.Client
	limiters *ratelimit.KeyedRateLimiter
	retries  int
	logger   *slog.Logger
}

// New creates a Fetcher.
func New(opts Options, logger *slog.Logger) *Fetcher {
	if opts.RequestTimeout <= 0 {
		opts.RequestTimeout = 30 * time.Second
	}
	if opts.PerHostDelay <= 0 {
		opts.PerHostDelay = time.Second
	}
	retries := opts.Retries
	if retries < 0 {
		retries = 0
	}
	return &Fetcher{
		client:   &http.Client{Timeout: opts.RequestTimeout},
		limiters: ratelimit.New(1.0/opts.PerHostDelay.Seconds(), 1),
		retries:  retries,
		logger:   logger,
	}
}

// Get fetches a URL and returns the body and status code. Retryable
// failures are retried with exponential backoff; the final status is
// returned even when non-2xx so callers can branch on it.
func (f *Fetcher) Get(ctx context.Context, rawURL string, headers map[string]string) ([]byte, int, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return nil, 0, fmt.Errorf("invalid url %q: %w", rawURL, err)
	}

	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			if err := sleepBackoff(ctx, attempt); err != nil {
				return nil, 0, err
			}
		}

		if err := f.limiters.Wait(ctx, parsed.Host); err != nil {
			return nil, 0, err
		}

		body, status, err := f.doRequest(ctx, rawURL, headers)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil {
				return nil, 0, err
			}
			continue
		}
		if retryableStatus(status) && attempt < f.retries {
			lastErr = fmt.Errorf("status %d from %s", status, parsed.Host)
			if f.logger != nil {
				f.logger.Debug("retrying fetch", "url", rawURL, "status", status, "attempt", attempt+1)
			}
			continue
		}
		return body, status, nil
	}

	return nil, 0, lastErr
}

func (f *Fetcher) doRequest(ctx context.Context, rawURL string, headers map[string]string) ([]byte, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, err
	}

	for k, v := range browserHeaders() {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, 0, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, resp.StatusCode, err
	}
	return body, resp.StatusCode, nil
}

// FetchHTML fetches a page and parses it into a goquery document.
// Non-2xx statuses are errors here: scraper callers have nothing to parse.
func (f *Fetcher) FetchHTML(ctx context.Context, rawURL string) (*goquery.Document, error) {
	body, status, err := f.Get(ctx, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, status)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", rawURL, err)
	}
	return doc, nil
}

// FetchJSON fetches a URL and decodes the JSON body into dest.
func (f *Fetcher) FetchJSON(ctx context.Context, rawURL string, headers map[string]string, dest any) error {
	merged := map[string]string{"Accept": "application/json"}
	for k, v := range headers {
		merged[k] = v
	}
	body, status, err := f.Get(ctx, rawURL, merged)
	if err != nil {
		return err
	}
	if status < 200 || status >= 300 {
		return fmt.Errorf("fetch %s: status %d", rawURL, status)
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s: %w", rawURL, err)
	}
	return nil
}

func browserHeaders() map[string]string {
	return map[string]string{
		"User-Agent":                userAgents[rand.IntN(len(userAgents))],
		"Accept":                    "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"Accept-Language":           "en-US,en;q=0.9",
		"DNT":                       "1",
		"Upgrade-Insecure-Requests": "1",
		"Sec-Fetch-Dest":            "document",
		"Sec-Fetch-Mode":            "navigate",
		"Sec-Fetch-Site":            "none",
		"Sec-Fetch-User":            "?1",
		"Sec-Ch-Ua":                 `"Chromium";v="131", "Google Chrome";v="131", "Not-A.Brand";v="99"`,
		"Sec-Ch-Ua-Mobile":          "?0",
		"Sec-Ch-Ua-Platform":        `"Windows"`,
	}
}

// retryableStatus covers throttling and transient upstream failures.
func retryableStatus(status int) bool {
	return status == http.StatusForbidden ||
		status == http.StatusTooManyRequests ||
		status >= 500
}

// sleepBackoff waits 1s, 2s, 4s... plus up to 500ms of jitter.
func sleepBackoff(ctx context.Context, attempt int) error {
	wait := time.Duration(1<<(attempt-1))*time.Second + time.Duration(rand.IntN(500))*time.Millisecond
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(wait):
		return nil
	}
}
