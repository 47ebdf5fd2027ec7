package domain

import "time"

// Vehicle is a canonical year/make/model row.
type Vehicle struct {
	ID        int64     `json:"vehicle_id"`
	Year      int       `json:"year"`
	Make      string    `json:"make"`
	Model     string    `json:"model"`
	Trim      string    `json:"trim,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// VehicleAlias links a loose vehicle string (as seen in a query or on a
// source page) to a canonical vehicle, with a confidence score. Raw strings
// are kept verbatim for provenance.
type VehicleAlias struct {
	ID           int64     `json:"alias_id"`
	AliasText    string    `json:"alias_text"`
	AliasNorm    string    `json:"alias_norm"`
	Year         int       `json:"year,omitempty"`
	MakeRaw      string    `json:"make_raw,omitempty"`
	ModelRaw     string    `json:"model_raw,omitempty"`
	VehicleID    *int64    `json:"vehicle_id,omitempty"`
	SourceDomain string    `json:"source_domain,omitempty"`
	Confidence   int       `json:"confidence"`
	CreatedAt    time.Time `json:"created_at"`
}

// ResolveResult is the outcome of resolving a loose vehicle string.
type ResolveResult struct {
	VehicleID    *int64 `json:"vehicle_id,omitempty"`
	Confidence   int    `json:"confidence"`
	ParsedYear   int    `json:"parsed_year,omitempty"`
	ParsedMake   string `json:"parsed_make,omitempty"`
	ParsedModel  string `json:"parsed_model,omitempty"`
	AliasID      int64  `json:"alias_id,omitempty"`
	CreatedAlias bool   `json:"created_alias"`
}

// CatalogPart is a canonical part with its identifying numbers.
type CatalogPart struct {
	ID          int64    `json:"part_id"`
	PartType    string   `json:"part_type"`
	Brand       string   `json:"brand,omitempty"`
	Name        string   `json:"name,omitempty"`
	Description string   `json:"description,omitempty"`
	Numbers     []string `json:"numbers,omitempty"`
}

// FitmentStatus says how confidently a part fits a vehicle. The catalog
// never asserts "does not fit"; absent data stays unknown.
type FitmentStatus string

const (
	FitmentConfirmed FitmentStatus = "confirmed_fit"
	FitmentLikely    FitmentStatus = "likely_fit"
	FitmentUnknown   FitmentStatus = "unknown"
)
