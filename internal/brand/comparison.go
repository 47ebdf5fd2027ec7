package brand

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/partlogicapp/partlogic-server/internal/domain"
)

// Tier boosts applied by the relevance ranker. Part-number searches lean
// harder on tier because the user already knows exactly which part they
// want and cares about who makes it.
//
//nolint:gochecknoglobals // Named policy constants, overridable in tests
var (
	partNumberTierBoosts = map[Tier]float64{
		TierOEM:                3.0,
		TierPremiumAftermarket: 2.0,
		TierEconomy:            0.5,
		TierBudget:             0.0,
	}
	keywordTierBoosts = map[Tier]float64{
		TierOEM:                1.5,
		TierPremiumAftermarket: 1.0,
		TierEconomy:            0.5,
		TierBudget:             0.0,
	}
)

// TierBoost returns the ranking boost for a listing brand given the query
// classification. Unknown brands get no boost.
func TierBoost(brandName string, queryType domain.QueryType) float64 {
	p := Lookup(brandName)
	if p == nil {
		return 0
	}
	boosts := keywordTierBoosts
	if queryType == domain.QueryTypePartNumber {
		boosts = partNumberTierBoosts
	}
	return boosts[p.Tier]
}

// BuildComparison groups listings by brand, folds in brands known only from
// interchange data, and produces per-brand summaries ordered by
// recommendation strength (tier rank, then quality score, descending).
func BuildComparison(listings []domain.MarketListing, interchange *domain.InterchangeGroup) []domain.BrandSummary {
	byBrand := make(map[string][]domain.MarketListing)
	for _, l := range listings {
		if l.Brand == "" {
			continue
		}
		key := displayBrand(l.Brand)
		byBrand[key] = append(byBrand[key], l)
	}

	// Interchange brands without listings still show up, with no pricing.
	if interchange != nil {
		for b := range interchange.Brands {
			key := displayBrand(b)
			if _, ok := byBrand[key]; !ok {
				byBrand[key] = nil
			}
		}
	}

	if len(byBrand) == 0 {
		return nil
	}

	summaries := make([]domain.BrandSummary, 0, len(byBrand))
	for name, brandListings := range byBrand {
		profile := Lookup(name)

		var sum float64
		var priced int
		for _, l := range brandListings {
			if l.Price > 0 {
				sum += l.Price
				priced++
			}
		}
		var avg *float64
		if priced > 0 {
			v := math.Round(sum/float64(priced)*100) / 100
			avg = &v
		}

		tier := TierUnknown
		quality := 0.0
		if profile != nil {
			tier = profile.Tier
			quality = profile.QualityScore
		}

		summaries = append(summaries, domain.BrandSummary{
			Brand:              name,
			Tier:               string(tier),
			QualityScore:       quality,
			AvgPrice:           avg,
			ListingCount:       len(brandListings),
			RecommendationNote: recommendationNote(profile),
		})
	}

	sort.SliceStable(summaries, func(i, j int) bool {
		ri, rj := Tier(summaries[i].Tier).Rank(), Tier(summaries[j].Tier).Rank()
		if ri != rj {
			return ri > rj
		}
		if summaries[i].QualityScore != summaries[j].QualityScore {
			return summaries[i].QualityScore > summaries[j].QualityScore
		}
		return summaries[i].Brand < summaries[j].Brand
	})

	return summaries
}

// TopPick returns a one-line recommendation for the strongest brand in a
// comparison, or "" when the comparison is empty or all-unknown.
func TopPick(summaries []domain.BrandSummary) string {
	for _, s := range summaries {
		if Tier(s.Tier) == TierUnknown {
			continue
		}
		if s.AvgPrice != nil {
			return fmt.Sprintf("%s (%s) looks strongest here, averaging $%.2f.", s.Brand, s.Tier, *s.AvgPrice)
		}
		return fmt.Sprintf("%s (%s) looks strongest here.", s.Brand, s.Tier)
	}
	return ""
}

func recommendationNote(p *Profile) string {
	if p == nil {
		return ""
	}
	switch p.Tier {
	case TierOEM:
		return strings.TrimSpace("Factory-original part. " + p.Description)
	case TierPremiumAftermarket:
		note := "OE-quality aftermarket."
		if len(p.KnownFor) > 0 {
			n := len(p.KnownFor)
			if n > 3 {
				n = 3
			}
			note += " Known for " + strings.Join(p.KnownFor[:n], ", ") + "."
		}
		return note
	case TierEconomy:
		return strings.TrimSpace("Good value option. " + p.Description)
	case TierBudget:
		return "Lowest cost option. Quality may vary."
	default:
		return ""
	}
}

// displayBrand normalizes a brand for display grouping: trimmed and
// title-cased word by word, with known all-caps brands kept as listed.
func displayBrand(name string) string {
	trimmed := strings.TrimSpace(name)
	upper := strings.ToUpper(trimmed)
	if _, ok := profiles[upper]; ok {
		// Use canonical casing for known brands.
		return canonicalCasing(upper)
	}
	return titleWords(trimmed)
}

// canonicalCasing renders a profile key for display. Short initialisms stay
// uppercase; everything else is title-cased.
func canonicalCasing(key string) string {
	if len(key) <= 4 && !strings.ContainsAny(key, " -/") {
		return key
	}
	return titleWords(key)
}

func titleWords(s string) string {
	words := strings.Fields(strings.ToLower(s))
	for i, w := range words {
		if w == "" {
			continue
		}
		words[i] = strings.ToUpper(w[:1]) + w[1:]
	}
	return strings.Join(words, " ")
}
