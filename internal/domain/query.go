// Package domain contains the core business entities for the PartLogic parts search.
package domain

// QueryType classifies what kind of search a raw query represents.
type QueryType string

const (
	// QueryTypePartNumber means the query is one or more part numbers,
	// e.g. "951-375-042-04" or "BP1234-5".
	QueryTypePartNumber QueryType = "part_number"
	// QueryTypeVehiclePart means the query names a vehicle plus a part,
	// e.g. "2015 Honda Civic brake pads".
	QueryTypeVehiclePart QueryType = "vehicle_part"
	// QueryTypeKeywords is the fallback for free-text queries,
	// e.g. "brake pads ceramic".
	QueryTypeKeywords QueryType = "keywords"
)

// QueryAnalysis is the structured interpretation of a raw search query.
//
// It is created once per request by the analyzer. The interchange expander
// may add cross references, brands, and hints before the rest of the
// pipeline treats it as read-only.
type QueryAnalysis struct {
	QueryType       QueryType `json:"query_type"`
	OriginalQuery   string    `json:"original_query"`
	PartNumbers     []string  `json:"part_numbers"`
	VehicleHint     string    `json:"vehicle_hint,omitempty"`
	PartDescription string    `json:"part_description,omitempty"`
	CrossReferences []string  `json:"cross_references,omitempty"`
	BrandsFound     []string  `json:"brands_found,omitempty"`
}

// AllPartNumbers returns the extracted part numbers plus any cross
// references added by interchange expansion, without duplicates.
func (a *QueryAnalysis) AllPartNumbers() []string {
	seen := make(map[string]bool, len(a.PartNumbers)+len(a.CrossReferences))
	out := make([]string, 0, len(a.PartNumbers)+len(a.CrossReferences))
	for _, pn := range a.PartNumbers {
		if !seen[pn] {
			seen[pn] = true
			out = append(out, pn)
		}
	}
	for _, pn := range a.CrossReferences {
		if !seen[pn] {
			seen[pn] = true
			out = append(out, pn)
		}
	}
	return out
}

// HasVehicleInfo reports whether both a vehicle hint and a part description
// were found, which is what vehicle-oriented sources need to run on a
// part-number query.
func (a *QueryAnalysis) HasVehicleInfo() bool {
	return a.VehicleHint != "" && a.PartDescription != ""
}
