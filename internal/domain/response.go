package domain

// SearchResponse is the aggregate response for one search. Partial results
// with warnings are the normal failure mode; as long as one subsystem could
// run, callers get a response rather than an error.
type SearchResponse struct {
	Query                string            `json:"query"`
	ExtractedPartNumbers []string          `json:"extracted_part_numbers"`
	Results              SearchResults     `json:"results"`
	GroupedListings      []ListingGroup    `json:"grouped_listings"`
	SourcesQueried       []SourceStatus    `json:"sources_queried"`
	Warnings             []string          `json:"warnings"`
	Cached               bool              `json:"cached"`
	Intelligence         *PartIntelligence `json:"intelligence,omitempty"`
}
