package results

import (
	"math"
	"sort"
	"strings"

	"github.com/partlogicapp/partlogic-server/internal/brand"
	"github.com/partlogicapp/partlogic-server/internal/domain"
)

// RankListings orders listings by the requested sort. All sorts are stable:
// ties keep their input order. The analysis is optional; when present it
// unlocks the context-aware relevance boosts.
func RankListings(listings []domain.MarketListing, query, sortMode string, analysis *domain.QueryAnalysis) []domain.MarketListing {
	out := make([]domain.MarketListing, len(listings))
	copy(out, listings)

	switch sortMode {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool {
			return sortablePrice(out[i].Price) < sortablePrice(out[j].Price)
		})
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Price > out[j].Price
		})
	case SortValue:
		sort.SliceStable(out, func(i, j int) bool {
			return listingValueScore(&out[i]) > listingValueScore(&out[j])
		})
	default: // SortRelevance
		scores := make([]float64, len(out))
		for i := range out {
			scores[i] = relevanceScore(&out[i], query, analysis)
		}
		idx := make([]int, len(out))
		for i := range idx {
			idx[i] = i
		}
		sort.SliceStable(idx, func(i, j int) bool {
			return scores[idx[i]] > scores[idx[j]]
		})
		ranked := make([]domain.MarketListing, len(out))
		for i, j := range idx {
			ranked[i] = out[j]
		}
		out = ranked
	}

	return out
}

// sortablePrice treats non-positive prices as +Inf so invalid listings sort
// last in ascending order.
func sortablePrice(p float64) float64 {
	if p <= 0 {
		return math.Inf(1)
	}
	return p
}

// listingValueScore is quality points per dollar for a single listing.
func listingValueScore(l *domain.MarketListing) float64 {
	total := l.TotalCost()
	if total <= 0 {
		return 0
	}
	return brand.QualityScore(l.Brand) * valueScoreScale / total
}

// relevanceScore computes the multi-factor relevance score. Higher is
// better. The weights live in policy.go.
func relevanceScore(l *domain.MarketListing, query string, analysis *domain.QueryAnalysis) float64 {
	score := 0.0
	queryUpper := strings.ToUpper(query)
	titleUpper := strings.ToUpper(l.Title)

	if queryUpper != "" && strings.Contains(titleUpper, queryUpper) {
		score += scoreFullQueryInTitle
	}

	if words := strings.Fields(queryUpper); len(words) > 0 {
		matched := 0
		for _, w := range words {
			if strings.Contains(titleUpper, w) {
				matched++
			}
		}
		score += float64(matched) / float64(len(words)) * scoreWordOverlapMax
	}

	if len(l.PartNumbers) > 0 {
		score += scoreHasPartNumbers
	}
	if l.ImageURL != "" {
		score += scoreHasImage
	}

	switch l.Condition {
	case "New":
		score += scoreConditionNew
	case "Refurbished":
		score += scoreConditionRefurbished
	case "Used":
		score += scoreConditionUsed
	}

	if l.Price > 0 {
		score += scoreValidPrice
	}

	if analysis != nil {
		score += analysisBoosts(l, titleUpper, analysis)
	}

	return score
}

// analysisBoosts applies the context-aware boosts from a query analysis:
// part-number intersection, vehicle and description overlap, brand match,
// and brand tier.
func analysisBoosts(l *domain.MarketListing, titleUpper string, analysis *domain.QueryAnalysis) float64 {
	score := 0.0

	relevant := make(map[string]struct{}, len(analysis.PartNumbers)+len(analysis.CrossReferences))
	for _, pn := range analysis.PartNumbers {
		relevant[strings.ToUpper(pn)] = struct{}{}
	}
	for _, pn := range analysis.CrossReferences {
		relevant[strings.ToUpper(pn)] = struct{}{}
	}

	matched := false
	for _, pn := range l.PartNumbers {
		if _, ok := relevant[strings.ToUpper(pn)]; ok {
			matched = true
			break
		}
	}
	switch {
	case matched:
		score += scorePartNumberMatch
	default:
		for pn := range relevant {
			if strings.Contains(titleUpper, pn) {
				score += scorePartNumberInTitle
				break
			}
		}
	}

	if analysis.VehicleHint != "" {
		words := strings.Fields(strings.ToUpper(analysis.VehicleHint))
		if len(words) > 0 {
			hit := 0
			for _, w := range words {
				if strings.Contains(titleUpper, w) {
					hit++
				}
			}
			if hit == len(words) {
				score += scoreVehicleMatchMax
			} else if hit > 0 {
				score += scoreVehiclePartialMax * float64(hit) / float64(len(words))
			}
		}
	}

	if analysis.PartDescription != "" {
		descUpper := strings.ToUpper(analysis.PartDescription)
		if strings.Contains(titleUpper, descUpper) {
			score += scoreDescriptionFull
		} else if words := strings.Fields(descUpper); len(words) > 0 {
			hit := 0
			for _, w := range words {
				if strings.Contains(titleUpper, w) {
					hit++
				}
			}
			if hit > 0 {
				score += scoreDescriptionMax * float64(hit) / float64(len(words))
			}
		}
	}

	if l.Brand != "" && len(analysis.BrandsFound) > 0 {
		brandUpper := strings.ToUpper(l.Brand)
		for _, b := range analysis.BrandsFound {
			if strings.ToUpper(b) == brandUpper {
				score += scoreBrandMatch
				break
			}
		}
	}

	if l.Brand != "" {
		score += brand.TierBoost(l.Brand, analysis.QueryType)
	}

	return score
}
