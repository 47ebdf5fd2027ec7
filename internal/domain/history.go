package domain

import "time"

// SearchRecord is one row of search history.
type SearchRecord struct {
	ID                 int64     `json:"id"`
	SearchID           string    `json:"search_id"`
	Query              string    `json:"query"`
	NormalizedQuery    string    `json:"normalized_query"`
	QueryType          QueryType `json:"query_type,omitempty"`
	VehicleHint        string    `json:"vehicle_hint,omitempty"`
	PartDescription    string    `json:"part_description,omitempty"`
	Sort               string    `json:"sort"`
	MarketListingCount int       `json:"market_listing_count"`
	SalvageHitCount    int       `json:"salvage_hit_count"`
	ExternalLinkCount  int       `json:"external_link_count"`
	SourceCount        int       `json:"source_count"`
	HasInterchange     bool      `json:"has_interchange"`
	Cached             bool      `json:"cached"`
	ResponseTimeMS     int64     `json:"response_time_ms"`
	VehicleID          *int64    `json:"vehicle_id,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// PriceSnapshot is one observed price for a part at a source.
type PriceSnapshot struct {
	ID           int64     `json:"id"`
	Query        string    `json:"query"`
	Source       string    `json:"source"`
	PartNumber   string    `json:"part_number,omitempty"`
	Brand        string    `json:"brand,omitempty"`
	Title        string    `json:"title"`
	Price        float64   `json:"price"`
	ShippingCost float64   `json:"shipping_cost"`
	Condition    string    `json:"condition,omitempty"`
	URL          string    `json:"url,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
}

// PopularSearch aggregates repeat searches of the same normalized query.
type PopularSearch struct {
	NormalizedQuery string    `json:"normalized_query"`
	Count           int       `json:"count"`
	AvgListings     float64   `json:"avg_listings"`
	LastSearched    time.Time `json:"last_searched"`
}

// SearchStats summarizes the whole search history.
type SearchStats struct {
	TotalSearches   int64            `json:"total_searches"`
	UniqueQueries   int64            `json:"unique_queries"`
	AvgListingCount float64          `json:"avg_listings_per_search"`
	AvgResponseMS   float64          `json:"avg_response_ms"`
	ByQueryType     map[string]int64 `json:"by_query_type"`
}

// PriceTrend is a daily price aggregate for one part number at one source.
type PriceTrend struct {
	Date         string  `json:"date"`
	Source       string  `json:"source"`
	AvgPrice     float64 `json:"avg_price"`
	MinPrice     float64 `json:"min_price"`
	MaxPrice     float64 `json:"max_price"`
	Observations int     `json:"observations"`
}

// SavedSearch is a search the user wants to rerun or watch.
type SavedSearch struct {
	ID              int64     `json:"id"`
	Query           string    `json:"query"`
	NormalizedQuery string    `json:"normalized_query"`
	VehicleMake     string    `json:"vehicle_make,omitempty"`
	VehicleModel    string    `json:"vehicle_model,omitempty"`
	VehicleYear     string    `json:"vehicle_year,omitempty"`
	VIN             string    `json:"vin,omitempty"`
	Sort            string    `json:"sort"`
	PriceThreshold  *float64  `json:"price_threshold,omitempty"`
	Active          bool      `json:"is_active"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PriceAlert fires when a watched part drops below a target price.
type PriceAlert struct {
	ID            int64      `json:"id"`
	SavedSearchID int64      `json:"saved_search_id"`
	PartNumber    string     `json:"part_number,omitempty"`
	Brand         string     `json:"brand,omitempty"`
	TargetPrice   float64    `json:"target_price"`
	CurrentLowest *float64   `json:"current_lowest,omitempty"`
	Triggered     bool       `json:"triggered"`
	TriggeredAt   *time.Time `json:"triggered_at,omitempty"`
	Source        string     `json:"source,omitempty"`
	URL           string     `json:"url,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}

// TriggeredAlert reports one alert that fired during a check.
type TriggeredAlert struct {
	AlertID       int64   `json:"alert_id"`
	Query         string  `json:"query"`
	PartNumber    string  `json:"part_number,omitempty"`
	TargetPrice   float64 `json:"target_price"`
	CurrentLowest float64 `json:"current_lowest"`
	Source        string  `json:"source"`
	URL           string  `json:"url,omitempty"`
}
