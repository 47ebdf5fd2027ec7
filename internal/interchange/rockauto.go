package interchange

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/partlogicapp/partlogic-server/internal/fetch"
)

// rockAutoResultCap bounds how many listings one lookup parses.
const rockAutoResultCap = 20

// RockAutoProvider reads cross references from RockAuto part search
// results, which list every manufacturer's equivalent for a number.
type RockAutoProvider struct {
	fetcher fetch.HTMLFetcher
	baseURL string
}

// NewRockAutoProvider creates the provider. baseURL overrides the live
// site in tests; empty means production.
func NewRockAutoProvider(fetcher fetch.HTMLFetcher, baseURL string) *RockAutoProvider {
	if baseURL == "" {
		baseURL = "https://www.rockauto.com"
	}
	return &RockAutoProvider{fetcher: fetcher, baseURL: baseURL}
}

// Name implements Provider.
func (p *RockAutoProvider) Name() string { return "rockauto" }

// Lookup implements Provider.
func (p *RockAutoProvider) Lookup(ctx context.Context, partNumber string) (*Result, error) {
	searchURL := fmt.Sprintf("%s/en/partsearch/?partnum=%s", p.baseURL, url.QueryEscape(partNumber))
	doc, err := p.fetcher.FetchHTML(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	result := &Result{Source: p.Name(), Brands: map[string][]string{}}
	primaryUpper := strings.ToUpper(partNumber)
	seen := make(map[string]struct{})

	doc.Find("[id^='listingcontainer']").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= rockAutoResultCap {
			return false
		}

		brand := firstText(s, "span.listing-final-manufacturer", ".ra-listing-brand")
		pn := firstText(s, "span.listing-final-partnumber", ".ra-listing-partnumber")

		if brand != "" && pn != "" {
			key := titleBrand(strings.ToUpper(brand))
			if !contains(result.Brands[key], pn) {
				result.Brands[key] = append(result.Brands[key], pn)
			}
			upper := strings.ToUpper(pn)
			if upper != primaryUpper {
				if _, ok := seen[upper]; !ok {
					seen[upper] = struct{}{}
					result.PartNumbers = append(result.PartNumbers, pn)
				}
			}
		}

		if result.PartDescription == "" {
			if desc := firstText(s, "span.listing-final-desc"); desc != "" {
				result.PartDescription = descriptionFromTitle(desc)
			}
		}
		return true
	})

	sort.Strings(result.PartNumbers)
	for _, pns := range result.Brands {
		sort.Strings(pns)
	}
	return result, nil
}

// firstText returns the trimmed text of the first selector that matches.
func firstText(s *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(s.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}
