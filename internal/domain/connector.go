package domain

// ConnectorStatus describes how a single connector invocation ended.
type ConnectorStatus string

const (
	// StatusOK means the connector ran and returned results.
	StatusOK ConnectorStatus = "ok"
	// StatusError means the connector failed or timed out; Error holds why.
	StatusError ConnectorStatus = "error"
	// StatusCached means the result was served from cache without a fetch.
	StatusCached ConnectorStatus = "cached"
	// StatusSkipped means routing deliberately left the source out.
	StatusSkipped ConnectorStatus = "skipped"
)

// ConnectorResult is the outcome of one connector invocation. Exactly one
// is produced per selected connector, whether it succeeded, failed, or was
// served from cache.
type ConnectorResult struct {
	SourceName     string          `json:"source_name"`
	Status         ConnectorStatus `json:"status"`
	MarketListings []MarketListing `json:"market_listings"`
	SalvageHits    []SalvageHit    `json:"salvage_hits"`
	ExternalLinks  []ExternalLink  `json:"external_links"`
	// Error is the human-readable failure message when Status is error, or
	// a connector-internal soft error reported alongside results.
	Error string `json:"error,omitempty"`
}

// Count returns the number of results the connector produced.
func (r *ConnectorResult) Count() int {
	return len(r.MarketListings) + len(r.SalvageHits) + len(r.ExternalLinks)
}

// SourceStatus is the per-source entry of the aggregate response.
type SourceStatus struct {
	Source      string          `json:"source"`
	Status      ConnectorStatus `json:"status"`
	Details     string          `json:"details,omitempty"`
	ResultCount int             `json:"result_count"`
}
