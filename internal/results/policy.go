// Package results post-processes aggregated search output: deduplication,
// relevance and value ranking, price-comparison grouping, and the salvage
// and link filters.
package results

// Relevance scoring weights. These are behavior-parity constants, not tuned
// values; tests pin them, so change them deliberately.
const (
	// scoreFullQueryInTitle applies when the whole query is a substring of
	// the listing title.
	scoreFullQueryInTitle = 10.0
	// scoreWordOverlapMax is the ceiling for fractional query-word overlap.
	scoreWordOverlapMax = 5.0
	// scoreHasPartNumbers applies when a listing carries any part number.
	scoreHasPartNumbers = 3.0
	// scoreHasImage applies when a listing has an image URL.
	scoreHasImage = 1.0
	// scoreValidPrice applies when the price is positive.
	scoreValidPrice = 1.0

	// Condition preference: New > Refurbished > Used > unknown.
	scoreConditionNew         = 2.0
	scoreConditionRefurbished = 1.5
	scoreConditionUsed        = 1.0

	// Analysis-aware boosts. These dominate the base score so that a
	// confirmed part-number match outranks any keyword coincidence.
	scorePartNumberMatch   = 15.0
	scorePartNumberInTitle = 12.0
	scoreVehicleMatchMax   = 10.0
	scoreVehiclePartialMax = 5.0
	scoreDescriptionFull   = 8.0
	scoreDescriptionMax    = 4.0
	scoreBrandMatch        = 5.0
)

// valueScoreScale converts a 0-10 quality score into quality points per
// dollar: value = quality * valueScoreScale / totalCost.
const valueScoreScale = 10.0

// Sort names accepted by RankListings and SortGroups.
const (
	SortRelevance = "relevance"
	SortPriceAsc  = "price_asc"
	SortPriceDesc = "price_desc"
	SortValue     = "value"
	SortQuality   = "quality"
)
