package domain

// Offer is a single retailer's offer within a listing group.
type Offer struct {
	Source       string   `json:"source"`
	Price        float64  `json:"price"`
	ShippingCost *float64 `json:"shipping_cost,omitempty"`
	TotalCost    float64  `json:"total_cost"`
	Condition    string   `json:"condition,omitempty"`
	URL          string   `json:"url"`
	Title        string   `json:"title"`
	ImageURL     string   `json:"image_url,omitempty"`
	ValueScore   float64  `json:"value_score"`
}

// PriceRange is the spread of total costs within a group.
type PriceRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// ListingGroup clusters offers for the same product (same brand and part
// number) across sources for price comparison. Groups are recomputed per
// search and never persisted.
type ListingGroup struct {
	Brand        string  `json:"brand"`
	PartNumber   string  `json:"part_number"`
	Tier         string  `json:"tier"`
	QualityScore float64 `json:"quality_score"`
	// Offers are sorted ascending by total cost.
	Offers         []Offer    `json:"offers"`
	BestPrice      float64    `json:"best_price"`
	PriceRange     PriceRange `json:"price_range"`
	OfferCount     int        `json:"offer_count"`
	BestValueScore float64    `json:"best_value_score"`
}
