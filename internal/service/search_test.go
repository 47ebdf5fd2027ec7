package service

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partlogicapp/partlogic-server/internal/connector"
	"github.com/partlogicapp/partlogic-server/internal/domain"
	"github.com/partlogicapp/partlogic-server/internal/history"
	"github.com/partlogicapp/partlogic-server/internal/orchestrator"
	"github.com/partlogicapp/partlogic-server/internal/router"
)

type stubRegistry struct {
	sources []domain.Source
}

func (s *stubRegistry) ActiveSources() ([]domain.Source, error) {
	return s.sources, nil
}

type fakeConnector struct {
	name    string
	result  *connector.Result
	err     error
	mu      sync.Mutex
	queries []string
}

func (f *fakeConnector) SourceName() string { return f.name }

func (f *fakeConnector) CacheKey(q string) string { return connector.CacheKey(f.name, q) }

func (f *fakeConnector) Search(_ context.Context, q string, _ connector.Options) (*connector.Result, error) {
	f.mu.Lock()
	f.queries = append(f.queries, q)
	f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

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

func shipping(v float64) *float64 { return &v }

func marketSources() []domain.Source {
	return []domain.Source{
		{Domain: "ebay.com", Status: domain.SourceActive, SupportsPartNumber: true, Priority: 90},
		{Domain: "row52.com", Status: domain.SourceActive, Category: "salvage_yard", Priority: 50},
	}
}

// newTestService wires a service over fake connectors and an in-memory
// cache, with no enrichments unless the test adds them.
func newTestService(t *testing.T, connectors map[string]connector.Connector, sources []domain.Source) (*SearchService, *mapCache) {
	t.Helper()
	c := newMapCache()
	orch := orchestrator.New(connectors, c, orchestrator.Options{ConnectorTimeout: 2 * time.Second}, nil, nil)
	svc := NewSearchService(SearchDeps{
		Router:       router.New(&stubRegistry{sources: sources}, nil),
		Orchestrator: orch,
		Cache:        c,
	}, SearchOptions{})
	return svc, c
}

func TestSearchRequiresQuery(t *testing.T) {
	svc, _ := newTestService(t, nil, nil)
	_, err := svc.Search(context.Background(), SearchRequest{Query: "   "})
	assert.Error(t, err)
}

func TestSearchMergesRanksAndGroups(t *testing.T) {
	ebay := &fakeConnector{name: "ebay", result: &connector.Result{
		MarketListings: []domain.MarketListing{
			{Source: "ebay", Title: "Bosch alternator AL0188X", Price: 150, URL: "https://ebay/1", Brand: "Bosch", PartNumbers: []string{"AL0188X"}},
			{Source: "ebay", Title: "Bosch alternator AL0188X", Price: 150, URL: "https://ebay/1", Brand: "Bosch", PartNumbers: []string{"AL0188X"}},
		},
	}}
	resources := &fakeConnector{name: "resources", result: &connector.Result{
		ExternalLinks: []domain.ExternalLink{
			{Label: "YouTube", URL: "https://youtube/x", Source: "youtube", Category: "repair_resources"},
		},
	}}
	svc, _ := newTestService(t, map[string]connector.Connector{
		"ebay": ebay, "resources": resources,
	}, marketSources()[:1])

	resp, err := svc.Search(context.Background(), SearchRequest{Query: "alternator AL0188X"})
	require.NoError(t, err)

	assert.Len(t, resp.Results.MarketListings, 1, "duplicate URL deduplicated")
	assert.Len(t, resp.Results.ExternalLinks, 1)
	require.Len(t, resp.GroupedListings, 1)
	assert.Equal(t, "Bosch", resp.GroupedListings[0].Brand)
	assert.False(t, resp.Cached)
	require.NotNil(t, resp.Intelligence)
	assert.NotEmpty(t, resp.Intelligence.BrandComparison)
}

func TestSearchConnectorFailureBecomesWarning(t *testing.T) {
	ebay := &fakeConnector{name: "ebay", err: assert.AnError}
	resources := &fakeConnector{name: "resources", result: &connector.Result{}}
	svc, _ := newTestService(t, map[string]connector.Connector{
		"ebay": ebay, "resources": resources,
	}, marketSources()[:1])

	resp, err := svc.Search(context.Background(), SearchRequest{Query: "brake pads"})
	require.NoError(t, err, "connector failure never fails the search")
	require.NotEmpty(t, resp.Warnings)
	assert.Contains(t, resp.Warnings[0], "ebay")

	var sawError bool
	for _, src := range resp.SourcesQueried {
		if src.Source == "ebay" && src.Status == domain.StatusError {
			sawError = true
		}
	}
	assert.True(t, sawError)
}

func TestSearchSkipsVehicleSourcesOnBarePartNumber(t *testing.T) {
	ebay := &fakeConnector{name: "ebay", result: &connector.Result{}}
	row52 := &fakeConnector{name: "row52", result: &connector.Result{}}
	resources := &fakeConnector{name: "resources", result: &connector.Result{}}
	svc, _ := newTestService(t, map[string]connector.Connector{
		"ebay": ebay, "row52": row52, "resources": resources,
	}, marketSources())

	resp, err := svc.Search(context.Background(), SearchRequest{Query: "951-375-042-04"})
	require.NoError(t, err)

	assert.Empty(t, row52.queries, "vehicle source not queried without vehicle context")
	var skipped bool
	for _, src := range resp.SourcesQueried {
		if src.Source == "row52" && src.Status == domain.StatusSkipped {
			skipped = true
		}
	}
	assert.True(t, skipped, "skip is reported in sources_queried")
}

func TestSearchOverallCacheShortCircuits(t *testing.T) {
	ebay := &fakeConnector{name: "ebay", result: &connector.Result{
		MarketListings: []domain.MarketListing{
			{Source: "ebay", Title: "alternator", Price: 100, URL: "https://ebay/1"},
		},
	}}
	resources := &fakeConnector{name: "resources", result: &connector.Result{}}
	svc, _ := newTestService(t, map[string]connector.Connector{
		"ebay": ebay, "resources": resources,
	}, marketSources()[:1])
	ctx := context.Background()

	first, err := svc.Search(ctx, SearchRequest{Query: "alternator"})
	require.NoError(t, err)
	assert.False(t, first.Cached)

	second, err := svc.Search(ctx, SearchRequest{Query: "  ALTERNATOR "})
	require.NoError(t, err)
	assert.True(t, second.Cached, "normalized query hits the overall cache")
	assert.Len(t, ebay.queries, 1, "no second fan-out")
	assert.Len(t, second.Results.MarketListings, 1)
}

func TestSearchRecordsHistoryAndSnapshots(t *testing.T) {
	hist, err := history.Open(filepath.Join(t.TempDir(), "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = hist.Close() })

	ebay := &fakeConnector{name: "ebay", result: &connector.Result{
		MarketListings: []domain.MarketListing{
			{Source: "ebay", Title: "Bosch alternator", Price: 150, URL: "https://ebay/1", Brand: "Bosch", PartNumbers: []string{"AL0188X"}, ShippingCost: shipping(10)},
		},
	}}
	resources := &fakeConnector{name: "resources", result: &connector.Result{}}

	c := newMapCache()
	orch := orchestrator.New(map[string]connector.Connector{
		"ebay": ebay, "resources": resources,
	}, c, orchestrator.Options{ConnectorTimeout: 2 * time.Second}, nil, nil)
	svc := NewSearchService(SearchDeps{
		Router:       router.New(&stubRegistry{sources: marketSources()[:1]}, nil),
		Orchestrator: orch,
		Cache:        c,
		History:      hist,
	}, SearchOptions{})
	ctx := context.Background()

	_, err = svc.Search(ctx, SearchRequest{Query: "bosch alternator", Sort: "value"})
	require.NoError(t, err)

	recent, err := hist.RecentSearches(ctx, 5)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, "value", recent[0].Sort)
	assert.Equal(t, 1, recent[0].MarketListingCount)

	prices, err := hist.PriceHistory(ctx, history.PriceFilter{PartNumber: "AL0188X"})
	require.NoError(t, err)
	require.Len(t, prices, 1)
	assert.Equal(t, 150.0, prices[0].Price)
	assert.Equal(t, 10.0, prices[0].ShippingCost)
}

func TestSearchQueriesVehicleSourcesWithSynthesizedQuery(t *testing.T) {
	ebay := &fakeConnector{name: "ebay", result: &connector.Result{}}
	row52 := &fakeConnector{name: "row52", result: &connector.Result{}}
	resources := &fakeConnector{name: "resources", result: &connector.Result{}}
	svc, _ := newTestService(t, map[string]connector.Connector{
		"ebay": ebay, "row52": row52, "resources": resources,
	}, marketSources())

	_, err := svc.Search(context.Background(), SearchRequest{Query: "1987 Porsche 944 alternator"})
	require.NoError(t, err)

	require.Len(t, row52.queries, 1, "vehicle query runs vehicle sources directly")
	assert.Equal(t, "1987 Porsche 944 alternator", row52.queries[0])
}
