package api

import (
	"net/http"
	"testing"

	"encoding/json/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partlogicapp/partlogic-server/internal/domain"
	"github.com/partlogicapp/partlogic-server/internal/registry"
)

func TestSourceLifecycle(t *testing.T) {
	ts := newTestServer(t)

	upserted := ts.api.Put("/api/v1/sources", map[string]any{
		"domain":                      "rockauto.com",
		"name":                        "RockAuto",
		"category":                    "marketplace",
		"priority":                    80,
		"supports_part_number_search": true,
	})
	require.Equal(t, http.StatusOK, upserted.Code, upserted.Body.String())

	var src domain.Source
	require.NoError(t, json.Unmarshal(upserted.Body.Bytes(), &src))
	assert.Equal(t, "rockauto.com", src.Domain)
	assert.Equal(t, domain.SourceActive, src.Status, "upsert defaults to active")
	assert.Equal(t, domain.SourceTypeBuyable, src.Type)
	assert.NotEmpty(t, src.ID)

	got := ts.api.Get("/api/v1/sources/rockauto.com")
	require.Equal(t, http.StatusOK, got.Code)

	toggled := ts.api.Post("/api/v1/sources/rockauto.com/toggle")
	require.Equal(t, http.StatusOK, toggled.Code)
	var toggledSrc domain.Source
	require.NoError(t, json.Unmarshal(toggled.Body.Bytes(), &toggledSrc))
	assert.Equal(t, domain.SourceDisabled, toggledSrc.Status)

	prioritized := ts.api.Put("/api/v1/sources/rockauto.com/priority", map[string]any{
		"priority": 95,
	})
	require.Equal(t, http.StatusOK, prioritized.Code)
	var prioritizedSrc domain.Source
	require.NoError(t, json.Unmarshal(prioritized.Body.Bytes(), &prioritizedSrc))
	assert.Equal(t, 95, prioritizedSrc.Priority)
}

func TestListSourcesFilters(t *testing.T) {
	ts := newTestServer(t)

	for _, body := range []map[string]any{
		{"domain": "ebay.com", "category": "marketplace"},
		{"domain": "row52.com", "category": "salvage_yard"},
	} {
		resp := ts.api.Put("/api/v1/sources", body)
		require.Equal(t, http.StatusOK, resp.Code)
	}

	resp := ts.api.Get("/api/v1/sources?category=salvage_yard")
	require.Equal(t, http.StatusOK, resp.Code)

	var body struct {
		Sources []domain.Source `json:"sources"`
		Total   int             `json:"total"`
	}
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	require.Equal(t, 1, body.Total)
	assert.Equal(t, "row52.com", body.Sources[0].Domain)
}

func TestSourceStats(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Put("/api/v1/sources", map[string]any{"domain": "ebay.com"})
	require.Equal(t, http.StatusOK, resp.Code)

	stats := ts.api.Get("/api/v1/sources/stats")
	require.Equal(t, http.StatusOK, stats.Code)

	var body registry.Stats
	require.NoError(t, json.Unmarshal(stats.Body.Bytes(), &body))
	assert.Equal(t, 1, body.Total)
	assert.Equal(t, 1, body.Active)
}

func TestGetSourceNotFound(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Get("/api/v1/sources/nowhere.example")
	assert.Equal(t, http.StatusNotFound, resp.Code)
}
