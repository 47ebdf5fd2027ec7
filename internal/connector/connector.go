// Package connector implements the per-site search capability: each
// connector turns one query into unified listings, salvage hits, or
// external links for a single source.
package connector

import (
	"context"
	"strings"

	"github.com/partlogicapp/partlogic-server/internal/domain"
)

// Options tunes a single connector invocation.
type Options struct {
	// MaxResults caps results per source.
	MaxResults int
	// ZipCode localizes used-part aggregator searches.
	ZipCode string
	// PartNumbers are the extracted numbers, for connectors that can
	// search by number directly.
	PartNumbers []string
}

// Result is what one connector invocation produced. Err is a soft
// failure reported alongside (possibly empty) results; a hard failure is
// returned as the error from Search instead.
type Result struct {
	MarketListings []domain.MarketListing
	SalvageHits    []domain.SalvageHit
	ExternalLinks  []domain.ExternalLink
	Err            string
}

// Count returns the total number of results.
func (r *Result) Count() int {
	return len(r.MarketListings) + len(r.SalvageHits) + len(r.ExternalLinks)
}

// Connector is one searchable source.
type Connector interface {
	// SourceName is the connector identifier used in routing, caching and
	// source status reporting.
	SourceName() string
	// CacheKey derives the per-source cache key for a query.
	CacheKey(query string) string
	// Search runs the query against the source.
	Search(ctx context.Context, query string, opts Options) (*Result, error)
}

// CacheKey is the shared "<source>:<QUERY>" key scheme: query uppercased,
// trimmed, spaces replaced with underscores.
func CacheKey(source, query string) string {
	normalized := strings.ReplaceAll(strings.ToUpper(strings.TrimSpace(query)), " ", "_")
	return source + ":" + normalized
}

// base carries the identifier shared by every connector.
type base struct {
	name string
}

func (b base) SourceName() string { return b.name }

func (b base) CacheKey(query string) string { return CacheKey(b.name, query) }

// capResults applies the per-source listing cap.
func capResults(listings []domain.MarketListing, maxResults int) []domain.MarketListing {
	if maxResults > 0 && len(listings) > maxResults {
		return listings[:maxResults]
	}
	return listings
}
