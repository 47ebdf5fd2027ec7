package orchestrator

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"encoding/json/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partlogicapp/partlogic-server/internal/connector"
	"github.com/partlogicapp/partlogic-server/internal/domain"
	"github.com/partlogicapp/partlogic-server/internal/router"
)

// fakeConnector scripts one connector's behavior.
type fakeConnector struct {
	name    string
	result  *connector.Result
	err     error
	delay   time.Duration
	panicky bool

	mu    sync.Mutex
	calls int
}

func (f *fakeConnector) SourceName() string { return f.name }

func (f *fakeConnector) CacheKey(query string) string {
	return connector.CacheKey(f.name, query)
}

func (f *fakeConnector) Search(ctx context.Context, _ string, _ connector.Options) (*connector.Result, error) {
	f.mu.Lock()
	f.calls++
	f.mu.Unlock()

	if f.panicky {
		panic("selector exploded")
	}
	if f.delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(f.delay):
		}
	}
	return f.result, f.err
}

func (f *fakeConnector) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

// mapCache is an in-memory Cache for tests.
type mapCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMapCache() *mapCache {
	return &mapCache{entries: make(map[string][]byte)}
}

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

func listingResult(source, title string) *connector.Result {
	return &connector.Result{
		MarketListings: []domain.MarketListing{{
			Source: source, Title: title, Price: 10, Currency: "USD", URL: "https://x/" + title,
		}},
	}
}

func planFor(connectors ...string) *router.Plan {
	plan := &router.Plan{}
	for _, name := range connectors {
		plan.Tasks = append(plan.Tasks, router.Task{Connector: name, Query: "alternator"})
	}
	return plan
}

func newTestOrchestrator(c *mapCache, timeout time.Duration, fakes ...*fakeConnector) *Orchestrator {
	byName := make(map[string]connector.Connector, len(fakes))
	for _, f := range fakes {
		byName[f.name] = f
	}
	return New(byName, c, Options{ConnectorTimeout: timeout}, nil, nil)
}

func TestRunPartialFailure(t *testing.T) {
	fakes := []*fakeConnector{
		{name: "a", result: listingResult("a", "one")},
		{name: "b", result: listingResult("b", "two")},
		{name: "c", err: errors.New("connection refused")},
		{name: "d", result: listingResult("d", "four")},
		{name: "slow", delay: 5 * time.Second, result: listingResult("slow", "never")},
	}
	o := newTestOrchestrator(newMapCache(), 150*time.Millisecond, fakes...)

	start := time.Now()
	results := o.Run(context.Background(), planFor("a", "b", "c", "d", "slow"), connector.Options{})
	elapsed := time.Since(start)

	require.Len(t, results, 5, "exactly one result per task")
	assert.Less(t, elapsed, 2*time.Second, "wall clock bounded by the connector timeout")

	byName := make(map[string]domain.ConnectorResult)
	for _, r := range results {
		byName[r.SourceName] = r
	}

	assert.Equal(t, domain.StatusOK, byName["a"].Status)
	assert.Equal(t, domain.StatusOK, byName["b"].Status)
	assert.Equal(t, domain.StatusError, byName["c"].Status)
	assert.Equal(t, "connection refused", byName["c"].Error)
	assert.Equal(t, domain.StatusOK, byName["d"].Status)
	assert.Equal(t, domain.StatusError, byName["slow"].Status)
	assert.Contains(t, byName["slow"].Error, "timed out after")
}

func TestRunResultsInPlanOrder(t *testing.T) {
	o := newTestOrchestrator(newMapCache(), time.Second,
		&fakeConnector{name: "a", result: listingResult("a", "one")},
		&fakeConnector{name: "b", result: listingResult("b", "two")},
	)
	results := o.Run(context.Background(), planFor("b", "a"), connector.Options{})
	require.Len(t, results, 2)
	assert.Equal(t, "b", results[0].SourceName)
	assert.Equal(t, "a", results[1].SourceName)
}

func TestRunServesFromCache(t *testing.T) {
	c := newMapCache()
	cached, err := json.Marshal(listingResult("a", "cached-listing"))
	require.NoError(t, err)
	require.NoError(t, c.Set(context.Background(), "a:ALTERNATOR", cached, 0))

	fake := &fakeConnector{name: "a", result: listingResult("a", "fresh")}
	o := newTestOrchestrator(c, time.Second, fake)

	results := o.Run(context.Background(), planFor("a"), connector.Options{})
	require.Len(t, results, 1)
	assert.Equal(t, domain.StatusCached, results[0].Status)
	require.Len(t, results[0].MarketListings, 1)
	assert.Equal(t, "cached-listing", results[0].MarketListings[0].Title)
	assert.Equal(t, 0, fake.callCount(), "cache hit must not touch the network")
}

func TestRunWritesSuccessToCache(t *testing.T) {
	c := newMapCache()
	fake := &fakeConnector{name: "a", result: listingResult("a", "one")}
	o := newTestOrchestrator(c, time.Second, fake)

	o.Run(context.Background(), planFor("a"), connector.Options{})
	data, err := c.Get(context.Background(), "a:ALTERNATOR")
	require.NoError(t, err)
	require.NotNil(t, data, "successful results are cached")

	// Second run is served from cache.
	results := o.Run(context.Background(), planFor("a"), connector.Options{})
	assert.Equal(t, domain.StatusCached, results[0].Status)
	assert.Equal(t, 1, fake.callCount())
}

func TestRunDoesNotCacheSoftErrors(t *testing.T) {
	c := newMapCache()
	fake := &fakeConnector{name: "ebay", result: &connector.Result{Err: "eBay App ID not configured"}}
	o := newTestOrchestrator(c, time.Second, fake)

	results := o.Run(context.Background(), planFor("ebay"), connector.Options{})
	assert.Equal(t, domain.StatusOK, results[0].Status)
	assert.Equal(t, "eBay App ID not configured", results[0].Error)

	data, err := c.Get(context.Background(), "ebay:ALTERNATOR")
	require.NoError(t, err)
	assert.Nil(t, data, "soft errors are not cached for the full TTL")
}

func TestRunIsolatesPanics(t *testing.T) {
	o := newTestOrchestrator(newMapCache(), time.Second,
		&fakeConnector{name: "bad", panicky: true},
		&fakeConnector{name: "good", result: listingResult("good", "one")},
	)
	results := o.Run(context.Background(), planFor("bad", "good"), connector.Options{})

	assert.Equal(t, domain.StatusError, results[0].Status)
	assert.Contains(t, results[0].Error, "panicked")
	assert.Equal(t, domain.StatusOK, results[1].Status)
}

func TestRunUnknownConnector(t *testing.T) {
	o := newTestOrchestrator(newMapCache(), time.Second)
	results := o.Run(context.Background(), planFor("ghost"), connector.Options{})
	require.Len(t, results, 1)
	assert.Equal(t, domain.StatusError, results[0].Status)
}

func TestRunParentCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	o := newTestOrchestrator(newMapCache(), 10*time.Second,
		&fakeConnector{name: "slow", delay: 5 * time.Second, result: listingResult("slow", "x")},
	)

	go func() {
		time.Sleep(50 * time.Millisecond)
		cancel()
	}()

	start := time.Now()
	results := o.Run(ctx, planFor("slow"), connector.Options{})
	assert.Less(t, time.Since(start), 2*time.Second)
	assert.Equal(t, domain.StatusError, results[0].Status)
}
