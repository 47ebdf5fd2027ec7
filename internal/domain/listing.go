package domain

// MarketListing is a unified buyable listing from any market source.
//
// Listings are immutable once produced by a connector: the pipeline may
// annotate MatchedInterchange and FitmentStatus but never rewrites price,
// title, or URL.
type MarketListing struct {
	Source      string   `json:"source"`
	Title       string   `json:"title"`
	Price       float64  `json:"price"`
	Currency    string   `json:"currency"`
	Condition   string   `json:"condition,omitempty"`
	URL         string   `json:"url"`
	PartNumbers []string `json:"part_numbers"`
	Vendor      string   `json:"vendor,omitempty"`
	ImageURL    string   `json:"image_url,omitempty"`
	Brand       string   `json:"brand,omitempty"`
	// ShippingCost is nil when the source does not state shipping.
	ShippingCost *float64 `json:"shipping_cost,omitempty"`
	// ListingType is e.g. "auction", "buy_it_now", "classified".
	ListingType string `json:"listing_type,omitempty"`
	// MatchedInterchange records which interchange part number this listing
	// matched, when the search was expanded.
	MatchedInterchange string `json:"matched_interchange,omitempty"`
	// FitmentStatus is "confirmed_fit", "likely_fit", or empty when unknown.
	FitmentStatus string `json:"fitment_status,omitempty"`
}

// Shipping returns the stated shipping cost, treating unknown or negative
// values as zero.
func (l *MarketListing) Shipping() float64 {
	if l.ShippingCost == nil || *l.ShippingCost < 0 {
		return 0
	}
	return *l.ShippingCost
}

// TotalCost is price plus shipping, the figure offers are compared on.
func (l *MarketListing) TotalCost() float64 {
	return l.Price + l.Shipping()
}

// SalvageHit is an inventory record from a used or recycled parts yard.
type SalvageHit struct {
	Source          string `json:"source"`
	YardName        string `json:"yard_name"`
	YardLocation    string `json:"yard_location"`
	Vehicle         string `json:"vehicle"`
	URL             string `json:"url"`
	LastSeen        string `json:"last_seen,omitempty"`
	PartDescription string `json:"part_description,omitempty"`
}

// ExternalLink points at search results on another site rather than a
// specific listing.
type ExternalLink struct {
	Label  string `json:"label"`
	URL    string `json:"url"`
	Source string `json:"source"`
	// Category is "new_parts", "used_salvage", or "repair_resources".
	Category string `json:"category,omitempty"`
}

// SearchResults groups the three result shapes a search produces.
type SearchResults struct {
	MarketListings []MarketListing `json:"market_listings"`
	SalvageHits    []SalvageHit    `json:"salvage_hits"`
	ExternalLinks  []ExternalLink  `json:"external_links"`
}

// Count returns the total number of results across all three shapes.
func (r *SearchResults) Count() int {
	return len(r.MarketListings) + len(r.SalvageHits) + len(r.ExternalLinks)
}
