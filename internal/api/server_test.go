package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/require"

	"github.com/partlogicapp/partlogic-server/internal/catalog"
	"github.com/partlogicapp/partlogic-server/internal/connector"
	"github.com/partlogicapp/partlogic-server/internal/domain"
	"github.com/partlogicapp/partlogic-server/internal/history"
	"github.com/partlogicapp/partlogic-server/internal/orchestrator"
	"github.com/partlogicapp/partlogic-server/internal/registry"
	"github.com/partlogicapp/partlogic-server/internal/router"
	"github.com/partlogicapp/partlogic-server/internal/service"
	"github.com/partlogicapp/partlogic-server/internal/vin"
)

type stubLister struct {
	sources []domain.Source
}

func (s *stubLister) ActiveSources() ([]domain.Source, error) {
	return s.sources, nil
}

type fakeConnector struct {
	name   string
	result *connector.Result
	err    error
}

func (f *fakeConnector) SourceName() string { return f.name }

func (f *fakeConnector) CacheKey(q string) string { return connector.CacheKey(f.name, q) }

func (f *fakeConnector) Search(context.Context, string, connector.Options) (*connector.Result, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

type memCache struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemCache() *memCache { return &memCache{entries: make(map[string][]byte)} }

func (c *memCache) Get(_ context.Context, key string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key], nil
}

func (c *memCache) Set(_ context.Context, key string, value []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = value
	return nil
}

func (c *memCache) Close() error { return nil }

// vpicFixture is a vPIC stand-in returning one fixed decode.
const vpicFixture = `{"Results":[{
	"ModelYear": "1987",
	"Make": "PORSCHE",
	"Model": "944",
	"Trim": "Not Applicable",
	"DisplacementL": "2.5",
	"EngineModel": "M44",
	"DriveType": "RWD",
	"BodyClass": "Coupe",
	"ErrorCode": "0"
}]}`

type testServer struct {
	server   *Server
	api      humatest.TestAPI
	history  *history.Store
	registry *registry.Registry
	catalog  *catalog.Store
}

// newTestServer wires a full server over fake connectors, temp stores,
// and a local vPIC stand-in.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	dir := t.TempDir()

	hist, err := history.Open(filepath.Join(dir, "history.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = hist.Close() })

	reg, err := registry.Open(filepath.Join(dir, "sources.json"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = reg.Close() })

	cat, err := catalog.Open(catalog.Options{DBPath: filepath.Join(dir, "catalog.db")})
	require.NoError(t, err)
	t.Cleanup(func() { _ = cat.Close() })

	vpic := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(vpicFixture))
	}))
	t.Cleanup(vpic.Close)

	ebay := &fakeConnector{name: "ebay", result: &connector.Result{
		MarketListings: []domain.MarketListing{
			{Source: "ebay", Title: "Bosch alternator AL0188X", Price: 150, URL: "https://ebay/1", Brand: "Bosch", PartNumbers: []string{"AL0188X"}},
		},
	}}
	resources := &fakeConnector{name: "resources", result: &connector.Result{}}
	connectors := map[string]connector.Connector{"ebay": ebay, "resources": resources}

	c := newMemCache()
	orch := orchestrator.New(connectors, c, orchestrator.Options{ConnectorTimeout: 2 * time.Second}, nil, nil)
	svc := service.NewSearchService(service.SearchDeps{
		Router: router.New(&stubLister{sources: []domain.Source{
			{Domain: "ebay.com", Status: domain.SourceActive, SupportsPartNumber: true, Priority: 90},
		}}, nil),
		Orchestrator: orch,
		Cache:        c,
		History:      hist,
	}, service.SearchOptions{})

	srv := NewServer(svc, service.NewWatchService(hist), hist, cat, reg, vin.NewWithBaseURL(vpic.URL, nil, nil), nil, Options{Version: "test"})

	return &testServer{
		server:   srv,
		api:      humatest.Wrap(t, srv.api),
		history:  hist,
		registry: reg,
		catalog:  cat,
	}
}
