package results

import (
	"sort"
	"strings"

	"github.com/partlogicapp/partlogic-server/internal/domain"
)

// FilterSalvageHits drops salvage hits whose vehicle field names a
// different make than the one the query was about. Hits with an empty
// vehicle field are kept, since the yard may simply not have listed it.
func FilterSalvageHits(hits []domain.SalvageHit, analysis *domain.QueryAnalysis) []domain.SalvageHit {
	if analysis == nil || analysis.VehicleHint == "" {
		return hits
	}

	// The make is the first non-numeric word of the vehicle hint
	// ("2015 Honda Civic" -> "HONDA").
	make_ := ""
	for _, word := range strings.Fields(strings.ToUpper(analysis.VehicleHint)) {
		if !isAllDigits(word) {
			make_ = word
			break
		}
	}
	if make_ == "" {
		return hits
	}

	filtered := make([]domain.SalvageHit, 0, len(hits))
	for _, hit := range hits {
		vehicle := strings.ToUpper(hit.Vehicle)
		if vehicle == "" || strings.Contains(vehicle, make_) {
			filtered = append(filtered, hit)
		}
	}
	return filtered
}

func isAllDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return len(s) > 0
}

// linkCategoryOrder puts buying links first and reference material last.
//
//nolint:gochecknoglobals // Static ordering table
var linkCategoryOrder = map[string]int{
	"new_parts":        0,
	"used_salvage":     1,
	"repair_resources": 2,
}

// GroupLinksByCategory sorts external links into display order:
// new parts, used/salvage, repair resources, then anything else.
// The sort is stable within a category.
func GroupLinksByCategory(links []domain.ExternalLink) []domain.ExternalLink {
	out := make([]domain.ExternalLink, len(links))
	copy(out, links)
	sort.SliceStable(out, func(i, j int) bool {
		return categoryRank(out[i].Category) < categoryRank(out[j].Category)
	})
	return out
}

func categoryRank(category string) int {
	if category == "" {
		category = "new_parts"
	}
	if rank, ok := linkCategoryOrder[category]; ok {
		return rank
	}
	return 99
}
