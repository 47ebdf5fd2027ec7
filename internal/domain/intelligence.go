package domain

// BrandSummary compares one brand's offers for a part application.
type BrandSummary struct {
	Brand string `json:"brand"`
	// Tier is "oem", "premium_aftermarket", "economy", "budget", or "unknown".
	Tier         string  `json:"tier"`
	QualityScore float64 `json:"quality_score"`
	// AvgPrice is nil when no priced listings carried this brand.
	AvgPrice           *float64 `json:"avg_price,omitempty"`
	ListingCount       int      `json:"listing_count"`
	RecommendationNote string   `json:"recommendation_note,omitempty"`
}

// CommunitySource attributes a community discussion used for context.
type CommunitySource struct {
	Title  string `json:"title"`
	URL    string `json:"url"`
	Source string `json:"source"`
	Score  int    `json:"score"`
}

// PartIntelligence carries everything the pipeline learned about the query
// beyond the raw listings: classification, cross references, brand
// comparison, and optional community/advisor enrichment.
type PartIntelligence struct {
	QueryType        QueryType         `json:"query_type"`
	VehicleHint      string            `json:"vehicle_hint,omitempty"`
	PartDescription  string            `json:"part_description,omitempty"`
	CrossReferences  []string          `json:"cross_references"`
	BrandsFound      []string          `json:"brands_found"`
	Interchange      *InterchangeGroup `json:"interchange,omitempty"`
	BrandComparison  []BrandSummary    `json:"brand_comparison,omitempty"`
	Recommendation   string            `json:"recommendation,omitempty"`
	CommunitySources []CommunitySource `json:"community_sources,omitempty"`
}
