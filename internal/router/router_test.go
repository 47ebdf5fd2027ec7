package router

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partlogicapp/partlogic-server/internal/domain"
)

type fakeRegistry struct {
	sources []domain.Source
	err     error
}

func (f *fakeRegistry) ActiveSources() ([]domain.Source, error) {
	return f.sources, f.err
}

func testSources() []domain.Source {
	return []domain.Source{
		{Domain: "ebay.com", Category: "marketplace", Status: domain.SourceActive, Priority: 90, SupportsPartNumber: true},
		{Domain: "rockauto.com", Category: "new_parts", Status: domain.SourceActive, Priority: 80, SupportsPartNumber: true},
		{Domain: "fcpeuro.com", Category: "new_parts", Status: domain.SourceActive, Priority: 70, SupportsPartNumber: true},
		{Domain: "row52.com", Category: "salvage_yard", Status: domain.SourceActive, Priority: 50},
		{Domain: "car-part.com", Category: "used_aggregator", Status: domain.SourceActive, Priority: 55},
		{Domain: "autozone.com", Category: "new_parts", Status: domain.SourceDisabled, Priority: 60, SupportsPartNumber: true},
	}
}

func TestRoutePartNumberWithoutVehicleContext(t *testing.T) {
	r := New(&fakeRegistry{sources: testSources()}, nil)
	plan := r.Route(&domain.QueryAnalysis{
		QueryType:     domain.QueryTypePartNumber,
		OriginalQuery: "951-375-042-04",
		PartNumbers:   []string{"951-375-042-04"},
	})

	assert.Equal(t, []string{"ebay", "rockauto", "fcpeuro", "resources"}, plan.Connectors())
	for _, task := range plan.Tasks {
		assert.Equal(t, "951-375-042-04", task.Query)
	}

	require.Len(t, plan.Skipped, 2)
	skipped := []string{plan.Skipped[0].Connector, plan.Skipped[1].Connector}
	assert.ElementsMatch(t, []string{"row52", "carpart"}, skipped)
	assert.Contains(t, plan.Skipped[0].Reason, "vehicle context")
}

func TestRoutePartNumberWithVehicleContext(t *testing.T) {
	r := New(&fakeRegistry{sources: testSources()}, nil)
	plan := r.Route(&domain.QueryAnalysis{
		QueryType:       domain.QueryTypePartNumber,
		OriginalQuery:   "951-375-042-04",
		PartNumbers:     []string{"951-375-042-04"},
		VehicleHint:     "Porsche 944",
		PartDescription: "Engine Mount",
	})

	assert.Empty(t, plan.Skipped)
	byConnector := make(map[string]string)
	for _, task := range plan.Tasks {
		byConnector[task.Connector] = task.Query
	}
	assert.Equal(t, "Porsche 944 Engine Mount", byConnector["row52"], "vehicle sources search the synthesized query")
	assert.Equal(t, "Porsche 944 Engine Mount", byConnector["carpart"])
	assert.Equal(t, "951-375-042-04", byConnector["ebay"], "part-number sources still search the number")
}

func TestRouteVehicleContextNeedsBothHints(t *testing.T) {
	r := New(&fakeRegistry{sources: testSources()}, nil)
	plan := r.Route(&domain.QueryAnalysis{
		QueryType:     domain.QueryTypePartNumber,
		OriginalQuery: "951-375-042-04",
		VehicleHint:   "Porsche 944", // description missing
	})
	assert.NotContains(t, plan.Connectors(), "row52")
	assert.Len(t, plan.Skipped, 2)
}

func TestRouteKeywordsRunsEverything(t *testing.T) {
	r := New(&fakeRegistry{sources: testSources()}, nil)
	plan := r.Route(&domain.QueryAnalysis{
		QueryType:     domain.QueryTypeKeywords,
		OriginalQuery: "brake pads",
	})

	assert.ElementsMatch(t,
		[]string{"ebay", "rockauto", "fcpeuro", "carpart", "row52", "resources"},
		plan.Connectors())
	assert.Empty(t, plan.Skipped)
	for _, task := range plan.Tasks {
		assert.Equal(t, "brake pads", task.Query)
	}
}

func TestRouteRegistryUnavailableFallsBack(t *testing.T) {
	r := New(&fakeRegistry{err: errors.New("registry file unreadable")}, nil)
	plan := r.Route(&domain.QueryAnalysis{
		QueryType:     domain.QueryTypeVehiclePart,
		OriginalQuery: "2015 Honda Civic alternator",
	})

	require.NotEmpty(t, plan.Tasks, "fallback routing must never be empty")
	assert.ElementsMatch(t,
		[]string{"ebay", "rockauto", "fcpeuro", "partsouq", "row52", "carpart", "resources"},
		plan.Connectors())
}

func TestRouteSkipsDisabledAndUnknownSources(t *testing.T) {
	sources := append(testSources(), domain.Source{
		Domain: "some-forum.example", Category: "community", Status: domain.SourceActive,
	})
	r := New(&fakeRegistry{sources: sources}, nil)
	plan := r.Route(&domain.QueryAnalysis{
		QueryType:     domain.QueryTypeKeywords,
		OriginalQuery: "oil filter",
	})
	assert.NotContains(t, plan.Connectors(), "autozone", "disabled source must not run")
}

func TestRouteReportsSourcesWithNoCapability(t *testing.T) {
	sources := append(testSources(), domain.Source{
		Domain: "amazon.com", Category: "marketplace", Status: domain.SourceActive, Priority: 60,
	})
	r := New(&fakeRegistry{sources: sources}, nil)
	plan := r.Route(&domain.QueryAnalysis{
		QueryType:     domain.QueryTypeKeywords,
		OriginalQuery: "oil filter",
	})

	assert.NotContains(t, plan.Connectors(), "amazon")
	require.Len(t, plan.Skipped, 1)
	assert.Equal(t, "amazon", plan.Skipped[0].Connector)
	assert.Contains(t, plan.Skipped[0].Reason, "neither part-number nor vehicle")
}

func TestRoutePriorityOrdering(t *testing.T) {
	r := New(&fakeRegistry{sources: testSources()}, nil)
	plan := r.Route(&domain.QueryAnalysis{
		QueryType:     domain.QueryTypeKeywords,
		OriginalQuery: "strut mount",
	})
	// carpart (55) outranks row52 (50) in the vehicle bucket.
	names := plan.Connectors()
	carpartIdx, rowIdx := -1, -1
	for i, n := range names {
		switch n {
		case "carpart":
			carpartIdx = i
		case "row52":
			rowIdx = i
		}
	}
	require.GreaterOrEqual(t, carpartIdx, 0)
	require.GreaterOrEqual(t, rowIdx, 0)
	assert.Less(t, carpartIdx, rowIdx)
}

func TestNormalizeDomain(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"rockauto.com", "rockauto.com"},
		{"www.RockAuto.com", "rockauto.com"},
		{"https://www.rockauto.com/en/partsearch", "rockauto.com"},
		{"http://ebay.com?q=1", "ebay.com"},
		{"  car-part.com.  ", "car-part.com"},
	}
	for _, tt := range tests {
		if got := NormalizeDomain(tt.in); got != tt.want {
			t.Errorf("NormalizeDomain(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestConnectorFor(t *testing.T) {
	name, err := ConnectorFor("https://www.fcpeuro.com")
	require.NoError(t, err)
	assert.Equal(t, "fcpeuro", name)

	_, err = ConnectorFor("unknown.example")
	assert.Error(t, err)
}
