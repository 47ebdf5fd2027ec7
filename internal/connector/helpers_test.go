package connector

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/partlogicapp/partlogic-server/internal/config"
	"github.com/partlogicapp/partlogic-server/internal/fetch"
)

func testConfig() *config.Config {
	return &config.Config{
		Search: config.SearchConfig{
			ConnectorTimeout:    15 * time.Second,
			RequestTimeout:      5 * time.Second,
			MaxResultsPerSource: 20,
			RateLimitDelay:      time.Millisecond,
			ScrapeEnabled:       true,
		},
		EBay: config.EBayConfig{Sandbox: true},
	}
}

// newTestFetcher builds a fetcher with no retries and no meaningful
// per-host delay, suitable for httptest servers.
func newTestFetcher(t *testing.T) *fetch.Fetcher {
	t.Helper()
	return fetch.New(fetch.Options{
		RequestTimeout: 5 * time.Second,
		PerHostDelay:   time.Millisecond,
		Retries:        0,
	}, nil)
}

// fixtureServer serves the same HTML body for every request and cleans
// itself up with the test.
func fixtureServer(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}
