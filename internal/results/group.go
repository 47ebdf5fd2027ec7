package results

import (
	"math"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/partlogicapp/partlogic-server/internal/brand"
	"github.com/partlogicapp/partlogic-server/internal/domain"
)

// keyFolder strips diacritics so "Lemförder" and "Lemforder" share a
// grouping key.
//
//nolint:gochecknoglobals // Built once, safe for concurrent use via transform.String
var keyFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// normalizeKey collapses a grouping-key component: fold diacritics, drop
// whitespace, dashes, and dots, uppercase.
func normalizeKey(s string) string {
	folded, _, err := transform.String(keyFolder, s)
	if err != nil {
		folded = s
	}
	var b strings.Builder
	b.Grow(len(folded))
	for _, r := range folded {
		if unicode.IsSpace(r) || r == '-' || r == '.' {
			continue
		}
		b.WriteRune(unicode.ToUpper(r))
	}
	return b.String()
}

// groupingKey identifies a single product across sources, or "" when the
// listing lacks the brand or part number needed to group it.
func groupingKey(l *domain.MarketListing) string {
	if l.Brand == "" || len(l.PartNumbers) == 0 {
		return ""
	}
	return normalizeKey(l.Brand) + ":" + normalizeKey(l.PartNumbers[0])
}

// GroupListings clusters priced listings by (brand, first part number) for
// price comparison. Listings without a price are excluded; listings that
// cannot be grouped become singleton groups. Groups come back sorted by
// best value score, highest first; re-sort with SortGroups if the caller
// asked for a different order.
func GroupListings(listings []domain.MarketListing) []domain.ListingGroup {
	grouped := make(map[string][]domain.MarketListing)
	var keys []string // insertion order, for deterministic output
	var singles []domain.MarketListing

	for _, l := range listings {
		if l.Price <= 0 {
			continue
		}
		key := groupingKey(&l)
		if key == "" {
			singles = append(singles, l)
			continue
		}
		if _, ok := grouped[key]; !ok {
			keys = append(keys, key)
		}
		grouped[key] = append(grouped[key], l)
	}

	groups := make([]domain.ListingGroup, 0, len(keys)+len(singles))
	for _, key := range keys {
		groups = append(groups, buildGroup(grouped[key]))
	}
	for _, l := range singles {
		groups = append(groups, buildGroup([]domain.MarketListing{l}))
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].BestValueScore > groups[j].BestValueScore
	})
	return groups
}

// buildGroup computes the comparison aggregates for one cluster. The first
// listing is the representative for brand and part number.
func buildGroup(listings []domain.MarketListing) domain.ListingGroup {
	rep := listings[0]

	offers := make([]domain.Offer, 0, len(listings))
	for _, l := range listings {
		offers = append(offers, domain.Offer{
			Source:       l.Source,
			Price:        l.Price,
			ShippingCost: l.ShippingCost,
			TotalCost:    round2(l.TotalCost()),
			Condition:    l.Condition,
			URL:          l.URL,
			Title:        l.Title,
			ImageURL:     l.ImageURL,
			ValueScore:   round3(listingValueScore(&l)),
		})
	}
	sort.SliceStable(offers, func(i, j int) bool {
		return offers[i].TotalCost < offers[j].TotalCost
	})

	low, high := offers[0].TotalCost, offers[0].TotalCost
	bestValue := offers[0].ValueScore
	for _, o := range offers[1:] {
		if o.TotalCost < low {
			low = o.TotalCost
		}
		if o.TotalCost > high {
			high = o.TotalCost
		}
		if o.ValueScore > bestValue {
			bestValue = o.ValueScore
		}
	}

	groupBrand := rep.Brand
	if groupBrand == "" {
		groupBrand = "Unknown"
	}
	partNumber := ""
	if len(rep.PartNumbers) > 0 {
		partNumber = rep.PartNumbers[0]
	}

	tier := brand.TierUnknown
	quality := 0.0
	if p := brand.Lookup(rep.Brand); p != nil {
		tier = p.Tier
		quality = p.QualityScore
	}

	return domain.ListingGroup{
		Brand:          groupBrand,
		PartNumber:     partNumber,
		Tier:           string(tier),
		QualityScore:   quality,
		Offers:         offers,
		BestPrice:      low,
		PriceRange:     domain.PriceRange{Low: low, High: high},
		OfferCount:     len(offers),
		BestValueScore: bestValue,
	}
}

// SortGroups orders groups by the requested mode. "value" is the default;
// price modes use the group's best total cost, "quality" uses the brand
// quality score. Stable throughout.
func SortGroups(groups []domain.ListingGroup, sortMode string) []domain.ListingGroup {
	out := make([]domain.ListingGroup, len(groups))
	copy(out, groups)

	switch sortMode {
	case SortPriceAsc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].BestPrice < out[j].BestPrice })
	case SortPriceDesc:
		sort.SliceStable(out, func(i, j int) bool { return out[i].BestPrice > out[j].BestPrice })
	case SortQuality:
		sort.SliceStable(out, func(i, j int) bool { return out[i].QualityScore > out[j].QualityScore })
	default: // SortValue
		sort.SliceStable(out, func(i, j int) bool { return out[i].BestValueScore > out[j].BestValueScore })
	}
	return out
}

func round2(v float64) float64 { return math.Round(v*100) / 100 }

func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
