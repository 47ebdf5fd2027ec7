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

// crossRefRowCap bounds how many table rows one lookup parses.
const crossRefRowCap = 30

// CrossRefProvider reads the brand/number table from
// parts-crossreference.com search results.
type CrossRefProvider struct {
	fetcher fetch.HTMLFetcher
	baseURL string
}

// NewCrossRefProvider creates the provider. baseURL overrides the live
// site in tests; empty means production.
func NewCrossRefProvider(fetcher fetch.HTMLFetcher, baseURL string) *CrossRefProvider {
	if baseURL == "" {
		baseURL = "https://parts-crossreference.com"
	}
	return &CrossRefProvider{fetcher: fetcher, baseURL: baseURL}
}

// Name implements Provider.
func (p *CrossRefProvider) Name() string { return "parts-crossreference" }

// Lookup implements Provider.
func (p *CrossRefProvider) Lookup(ctx context.Context, partNumber string) (*Result, error) {
	searchURL := fmt.Sprintf("%s/search?q=%s", p.baseURL, url.QueryEscape(partNumber))
	doc, err := p.fetcher.FetchHTML(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	result := &Result{Source: p.Name(), Brands: map[string][]string{}}
	primaryUpper := strings.ToUpper(partNumber)
	seen := make(map[string]struct{})

	doc.Find("table tr, .crossref-row, .result-row").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= crossRefRowCap {
			return false
		}
		cells := s.Find("td")
		if cells.Length() < 2 {
			return true
		}
		brand := strings.TrimSpace(cells.Eq(0).Text())
		pn := strings.TrimSpace(cells.Eq(1).Text())
		if brand == "" || len(pn) < 3 {
			return true
		}

		key := titleBrand(strings.ToUpper(brand))
		if !contains(result.Brands[key], pn) {
			result.Brands[key] = append(result.Brands[key], pn)
		}
		if upper := strings.ToUpper(pn); upper != primaryUpper {
			if _, ok := seen[upper]; !ok {
				seen[upper] = struct{}{}
				result.PartNumbers = append(result.PartNumbers, pn)
			}
		}
		return true
	})

	// The page headline usually names the part type.
	if headline := strings.TrimSpace(doc.Find(".part-description, .part-name, h1, h2").First().Text()); len(headline) > 3 {
		result.PartDescription = descriptionFromTitle(headline)
	}

	sort.Strings(result.PartNumbers)
	for _, pns := range result.Brands {
		sort.Strings(pns)
	}
	return result, nil
}
