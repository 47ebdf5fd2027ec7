package domain

// InterchangeGroup is the merged cross-reference result for a primary part
// number: equivalent numbers from other manufacturers, grouped by brand,
// with a confidence that grows with the number of agreeing providers.
//
// Built at most once per search, and only for part-number queries.
type InterchangeGroup struct {
	PrimaryPartNumber string `json:"primary_part_number"`
	// InterchangeNumbers excludes the primary.
	InterchangeNumbers []string `json:"interchange_numbers"`
	// Brands maps a brand name to the equivalent part numbers it makes.
	Brands map[string][]string `json:"brands"`
	// VehicleFitment and PartDescription are hints parsed from provider
	// pages; they feed back into the query analysis but are not part of the
	// response contract.
	VehicleFitment  string `json:"-"`
	PartDescription string `json:"-"`
	// Confidence is 0.0, 0.5, 0.7, or 0.9 depending on how many providers
	// returned usable data.
	Confidence       float64  `json:"confidence"`
	SourcesConsulted []string `json:"sources_consulted"`
}

// AllNumbers returns the primary plus every interchange number.
func (g *InterchangeGroup) AllNumbers() []string {
	out := make([]string, 0, len(g.InterchangeNumbers)+1)
	out = append(out, g.PrimaryPartNumber)
	out = append(out, g.InterchangeNumbers...)
	return out
}
