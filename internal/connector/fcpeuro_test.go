package connector

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fcpGTMPage = `<html><body>
<turbo-frame id="product-results" data-gtm-event-event-value='{"ecommerce":{"items":[
{"item_name":"Lemforder Engine Mount - Porsche 944","item_brand":"Lemforder","item_id":"95137504204","price":"89.99"},
{"item_name":"Corteco Engine Mount","item_brand":"Corteco","item_id":"80000123","price":"45.50"}
]}}'>
<div class="hit">
  <a class="hit__name" href="/products/engine-mount-lemforder-95137504204">Lemforder Engine Mount</a>
  <img src="https://cdn.example.com/mount.jpg">
</div>
</turbo-frame>
</body></html>`

const fcpHitCardPage = `<html><body>
<div class="hit">
  <a class="hit__name" href="/products/mount-1">Sachs Engine Mount - BMW E30</a>
  <span class="hit__flag">Sachs</span>
  <span class="hit__price">$59.99</span>
</div>
</body></html>`

func TestFCPEuroParsesGTMItems(t *testing.T) {
	srv := fixtureServer(t, fcpGTMPage)
	c := NewFCPEuro(newTestFetcher(t), nil, srv.URL)

	result, err := c.Search(context.Background(), "951-375-042-04", Options{MaxResults: 20})
	require.NoError(t, err)
	require.Len(t, result.MarketListings, 2)

	first := result.MarketListings[0]
	assert.Equal(t, "fcpeuro", first.Source)
	assert.Equal(t, "Lemforder Engine Mount - Porsche 944", first.Title)
	assert.Equal(t, 89.99, first.Price)
	assert.Equal(t, "Lemforder", first.Brand)
	assert.Equal(t, "New", first.Condition)
	assert.Contains(t, first.PartNumbers, "95137504204")
	assert.Contains(t, first.URL, "/products/engine-mount-lemforder-95137504204",
		"hit card enrichment replaces the search URL")
	assert.Equal(t, "https://cdn.example.com/mount.jpg", first.ImageURL)

	require.Len(t, result.ExternalLinks, 1)
	assert.Equal(t, "See all results on FCP Euro", result.ExternalLinks[0].Label)
}

func TestFCPEuroFallsBackToHitCards(t *testing.T) {
	srv := fixtureServer(t, fcpHitCardPage)
	c := NewFCPEuro(newTestFetcher(t), nil, srv.URL)

	result, err := c.Search(context.Background(), "engine mount", Options{MaxResults: 20})
	require.NoError(t, err)
	require.Len(t, result.MarketListings, 1)
	assert.Equal(t, "Sachs Engine Mount - BMW E30", result.MarketListings[0].Title)
	assert.Equal(t, 59.99, result.MarketListings[0].Price)
	assert.Equal(t, "Sachs", result.MarketListings[0].Brand)
}

func TestFCPEuroEmptyPageGeneratesLinks(t *testing.T) {
	srv := fixtureServer(t, "<html><body></body></html>")
	c := NewFCPEuro(newTestFetcher(t), nil, srv.URL)

	result, err := c.Search(context.Background(), "unobtainium", Options{})
	require.NoError(t, err)
	assert.Empty(t, result.MarketListings)
	require.Len(t, result.ExternalLinks, 1)
	assert.Contains(t, result.ExternalLinks[0].Label, "Search FCP Euro")
}
