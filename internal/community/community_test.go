package community

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partlogicapp/partlogic-server/internal/config"
)

type mapCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMapCache() *mapCache { return &mapCache{entries: make(map[string][]byte)} }

func (c *mapCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key], nil
}

func (c *mapCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *mapCache) Close() error { return nil }

func listingJSON(posts ...string) string {
	return fmt.Sprintf(`{"data": {"children": [%s]}}`, strings.Join(posts, ","))
}

func post(title, permalink string, score int) string {
	return fmt.Sprintf(`{"data": {"title": %q, "permalink": %q, "score": %d}}`, title, permalink, score)
}

// newRedditServer serves per-subreddit fixtures and records which
// subreddits were queried.
func newRedditServer(t *testing.T, fixtures map[string]string) (*httptest.Server, *sync.Map) {
	t.Helper()
	var queried sync.Map
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		parts := strings.Split(r.URL.Path, "/")
		require.GreaterOrEqual(t, len(parts), 3, "path %s", r.URL.Path)
		subreddit := parts[2]
		queried.Store(subreddit, true)

		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		assert.Equal(t, "on", r.URL.Query().Get("restrict_sr"))

		body, ok := fixtures[subreddit]
		if !ok {
			body = listingJSON()
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &queried
}

func enabledConfig() config.CommunityConfig {
	return config.CommunityConfig{Enabled: true, Timeout: 5 * time.Second, TTL: time.Hour, UserAgent: "test-agent"}
}

func TestFetchDisabled(t *testing.T) {
	client := New(config.CommunityConfig{Enabled: false}, newMapCache(), nil)
	assert.Nil(t, client.Fetch(context.Background(), "alternator", "", ""))
}

func TestFetchSortsAndDedupes(t *testing.T) {
	srv, _ := newRedditServer(t, map[string]string{
		"MechanicAdvice": listingJSON(
			post("Alternator whine fix", "/r/MechanicAdvice/1", 40),
			post("Low score post", "/r/MechanicAdvice/2", 2),
		),
		"AutoDIY": listingJSON(
			post("Alternator whine fix crosspost", "/r/MechanicAdvice/1", 15),
			post("DIY alternator swap", "/r/AutoDIY/3", 80),
		),
	})
	client := NewWithBaseURL(enabledConfig(), srv.URL, newMapCache(), nil)

	threads := client.Fetch(context.Background(), "alternator whine", "", "")
	require.Len(t, threads, 2, "duplicate URL and low-score post dropped")
	assert.Equal(t, "DIY alternator swap", threads[0].Title)
	assert.Equal(t, 80, threads[0].Score)
	assert.Equal(t, "AutoDIY", threads[0].Source)
	assert.Equal(t, "https://www.reddit.com/r/MechanicAdvice/1", threads[1].URL)
}

func TestFetchAddsMakeSubreddits(t *testing.T) {
	srv, queried := newRedditServer(t, nil)
	client := NewWithBaseURL(enabledConfig(), srv.URL, newMapCache(), nil)

	client.Fetch(context.Background(), "engine mount", "1987 Porsche 944", "engine mount")

	_, hit := queried.Load("Porsche")
	assert.True(t, hit, "vehicle hint routes to the make subreddit")
	_, hit = queried.Load("MechanicAdvice")
	assert.True(t, hit, "general subreddits always searched")
}

func TestFetchServesFromCache(t *testing.T) {
	fixtures := map[string]string{
		"cars": listingJSON(post("Cached thread", "/r/cars/9", 50)),
	}
	srv, _ := newRedditServer(t, fixtures)
	c := newMapCache()
	client := NewWithBaseURL(enabledConfig(), srv.URL, c, nil)

	first := client.Fetch(context.Background(), "brake pads", "", "")
	require.Len(t, first, 1)

	srv.Close() // second fetch cannot hit the network
	second := client.Fetch(context.Background(), "Brake Pads ", "", "")
	require.Len(t, second, 1, "cache key is the lowercased trimmed query")
	assert.Equal(t, "Cached thread", second[0].Title)
}

func TestFetchToleratesServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	t.Cleanup(srv.Close)

	client := NewWithBaseURL(enabledConfig(), srv.URL, newMapCache(), nil)
	threads := client.Fetch(context.Background(), "alternator", "", "")
	assert.Empty(t, threads, "failures degrade to no community context")
}
