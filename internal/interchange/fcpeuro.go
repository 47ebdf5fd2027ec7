package interchange

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strings"

	"encoding/json/v2"

	"github.com/PuerkitoBio/goquery"

	"github.com/partlogicapp/partlogic-server/internal/fetch"
	"github.com/partlogicapp/partlogic-server/internal/query"
)

// FCPEuroProvider reads cross references out of FCP Euro search results.
// The search page embeds a GTM ecommerce event with structured item data;
// when that is missing the hit cards are parsed directly.
type FCPEuroProvider struct {
	fetcher fetch.HTMLFetcher
	baseURL string
}

// NewFCPEuroProvider creates the provider. baseURL overrides the live site
// in tests; empty means production.
func NewFCPEuroProvider(fetcher fetch.HTMLFetcher, baseURL string) *FCPEuroProvider {
	if baseURL == "" {
		baseURL = "https://www.fcpeuro.com"
	}
	return &FCPEuroProvider{fetcher: fetcher, baseURL: baseURL}
}

// Name implements Provider.
func (p *FCPEuroProvider) Name() string { return "fcpeuro" }

// gtmEvent is the shape of the data-gtm-event-event-value attribute.
type gtmEvent struct {
	Ecommerce struct {
		Items []struct {
			ItemName  string `json:"item_name"`
			ItemBrand string `json:"item_brand"`
			ItemID    string `json:"item_id"`
		} `json:"items"`
	} `json:"ecommerce"`
}

// Lookup implements Provider.
func (p *FCPEuroProvider) Lookup(ctx context.Context, partNumber string) (*Result, error) {
	searchURL := fmt.Sprintf("%s/products?keywords=%s", p.baseURL, url.QueryEscape(partNumber))
	doc, err := p.fetcher.FetchHTML(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	result := &Result{Source: p.Name(), Brands: map[string][]string{}}
	items := parseGTMItems(doc)
	if len(items) == 0 {
		items = parseHitCards(doc)
	}

	primaryUpper := strings.ToUpper(partNumber)
	seen := make(map[string]struct{})
	for _, item := range items {
		partNums := query.ExtractPartNumbers(item.title)
		if item.id != "" && !contains(partNums, item.id) {
			partNums = append(partNums, item.id)
		}

		if item.brand != "" {
			key := titleBrand(strings.ToUpper(item.brand))
			for _, pn := range partNums {
				if !contains(result.Brands[key], pn) {
					result.Brands[key] = append(result.Brands[key], pn)
				}
				upper := strings.ToUpper(pn)
				if upper == primaryUpper {
					continue
				}
				if _, ok := seen[upper]; !ok {
					seen[upper] = struct{}{}
					result.PartNumbers = append(result.PartNumbers, pn)
				}
			}
		}

		if result.VehicleHint == "" && item.title != "" {
			result.VehicleHint = vehicleFromTitle(item.title)
		}
		if result.PartDescription == "" && item.title != "" {
			result.PartDescription = descriptionFromTitle(item.title)
		}
	}

	sort.Strings(result.PartNumbers)
	for _, pns := range result.Brands {
		sort.Strings(pns)
	}
	return result, nil
}

type fcpItem struct {
	title string
	brand string
	id    string
}

// parseGTMItems reads the structured JSON the search page embeds for its
// analytics events.
func parseGTMItems(doc *goquery.Document) []fcpItem {
	raw, ok := doc.Find("turbo-frame#product-results").Attr("data-gtm-event-event-value")
	if !ok || raw == "" {
		return nil
	}
	var event gtmEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return nil
	}
	items := make([]fcpItem, 0, len(event.Ecommerce.Items))
	for _, it := range event.Ecommerce.Items {
		items = append(items, fcpItem{title: it.ItemName, brand: it.ItemBrand, id: it.ItemID})
	}
	return items
}

// parseHitCards is the fallback for pages without the GTM payload.
func parseHitCards(doc *goquery.Document) []fcpItem {
	var items []fcpItem
	doc.Find("div.hit, .grid-x.hit").Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find(".hit__name").First().Text())
		if title == "" {
			return
		}
		brand := strings.TrimSpace(s.Find(".hit__flag").First().Text())
		items = append(items, fcpItem{title: title, brand: brand})
	})
	return items
}

func contains(slice []string, v string) bool {
	for _, s := range slice {
		if s == v {
			return true
		}
	}
	return false
}
