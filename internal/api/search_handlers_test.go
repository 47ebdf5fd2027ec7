package api

import (
	"net/http"
	"testing"

	"encoding/json/v2"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partlogicapp/partlogic-server/internal/domain"
)

func TestSearchEndpoint(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Get("/api/v1/search?q=alternator+AL0188X")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var body domain.SearchResponse
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &body))
	assert.Equal(t, "alternator AL0188X", body.Query)
	require.Len(t, body.Results.MarketListings, 1)
	require.Len(t, body.GroupedListings, 1)
	assert.Equal(t, "Bosch", body.GroupedListings[0].Brand)
	assert.False(t, body.Cached)
}

func TestSearchEndpointRequiresQuery(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Get("/api/v1/search")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestSearchEndpointRejectsUnknownSort(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.api.Get("/api/v1/search?q=alternator&sort=cheapest")
	assert.Equal(t, http.StatusUnprocessableEntity, resp.Code)
}

func TestSearchEndpointServesCachedResponse(t *testing.T) {
	ts := newTestServer(t)

	first := ts.api.Get("/api/v1/search?q=brake+pads")
	require.Equal(t, http.StatusOK, first.Code)

	second := ts.api.Get("/api/v1/search?q=Brake+Pads")
	require.Equal(t, http.StatusOK, second.Code)

	var body domain.SearchResponse
	require.NoError(t, json.Unmarshal(second.Body.Bytes(), &body))
	assert.True(t, body.Cached)
}
