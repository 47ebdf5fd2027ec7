package connector

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"encoding/json/v2"

	"github.com/PuerkitoBio/goquery"

	"github.com/partlogicapp/partlogic-server/internal/domain"
	"github.com/partlogicapp/partlogic-server/internal/fetch"
	"github.com/partlogicapp/partlogic-server/internal/query"
)

// FCPEuroConnector scrapes FCP Euro search results. The page embeds a GTM
// ecommerce event with structured item data; hit cards are the fallback
// when that attribute is missing.
type FCPEuroConnector struct {
	base
	fetcher fetch.HTMLFetcher
	logger  *slog.Logger
	baseURL string
}

func NewFCPEuro(fetcher fetch.HTMLFetcher, logger *slog.Logger, baseURL string) *FCPEuroConnector {
	if baseURL == "" {
		baseURL = "https://www.fcpeuro.com"
	}
	return &FCPEuroConnector{
		base:    base{name: "fcpeuro"},
		fetcher: fetcher,
		logger:  logger,
		baseURL: baseURL,
	}
}

// fcpGTMEvent is the shape of the data-gtm-event-event-value attribute.
type fcpGTMEvent struct {
	Ecommerce struct {
		Items []struct {
			ItemName  string `json:"item_name"`
			ItemBrand string `json:"item_brand"`
			ItemID    string `json:"item_id"`
			Price     string `json:"price"`
		} `json:"items"`
	} `json:"ecommerce"`
}

// Search implements Connector.
func (c *FCPEuroConnector) Search(ctx context.Context, q string, opts Options) (*Result, error) {
	searchURL := fmt.Sprintf("%s/products?keywords=%s", c.baseURL, url.QueryEscape(q))
	if c.fetcher == nil {
		return c.linkResult(q, searchURL), nil
	}

	doc, err := c.fetcher.FetchHTML(ctx, searchURL)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("scrape failed, generating links", "source", "fcpeuro", "error", err)
		}
		return c.linkResult(q, searchURL), nil
	}

	listings := c.parseGTM(doc, searchURL)
	if len(listings) > 0 {
		c.enrichFromCards(doc, listings)
	} else {
		listings = c.parseHitCards(doc, searchURL)
	}
	if len(listings) == 0 {
		return c.linkResult(q, searchURL), nil
	}

	return &Result{
		MarketListings: capResults(listings, opts.MaxResults),
		ExternalLinks: []domain.ExternalLink{{
			Label:    "See all results on FCP Euro",
			URL:      searchURL,
			Source:   "fcpeuro",
			Category: "new_parts",
		}},
	}, nil
}

// parseGTM reads the structured JSON the page embeds for its analytics.
func (c *FCPEuroConnector) parseGTM(doc *goquery.Document, fallbackURL string) []domain.MarketListing {
	raw, ok := doc.Find("turbo-frame#product-results").Attr("data-gtm-event-event-value")
	if !ok || raw == "" {
		return nil
	}
	var event fcpGTMEvent
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		return nil
	}

	var listings []domain.MarketListing
	for _, item := range event.Ecommerce.Items {
		if item.ItemName == "" {
			continue
		}
		partNumbers := query.ExtractPartNumbers(item.ItemName)
		if item.ItemID != "" && !containsString(partNumbers, item.ItemID) {
			partNumbers = append(partNumbers, item.ItemID)
		}
		listings = append(listings, domain.MarketListing{
			Source:      "fcpeuro",
			Title:       item.ItemName,
			Price:       fetch.ParsePrice(item.Price),
			Currency:    "USD",
			Condition:   "New",
			URL:         fallbackURL,
			PartNumbers: partNumbers,
			Brand:       item.ItemBrand,
		})
	}
	return listings
}

// enrichFromCards adds image URLs and per-product links out of the hit
// cards, which run parallel to the GTM item order.
func (c *FCPEuroConnector) enrichFromCards(doc *goquery.Document, listings []domain.MarketListing) {
	doc.Find("div.hit, .grid-x.hit").Each(func(i int, s *goquery.Selection) {
		if i >= len(listings) {
			return
		}
		if src, ok := s.Find("img[src]").First().Attr("src"); ok && strings.HasPrefix(src, "http") {
			listings[i].ImageURL = src
		}
		if href, ok := s.Find("a.hit__name[href]").First().Attr("href"); ok && href != "" {
			listings[i].URL = fetch.CleanURL(href, c.baseURL)
		}
	})
}

// parseHitCards is the fallback for pages without the GTM payload.
func (c *FCPEuroConnector) parseHitCards(doc *goquery.Document, fallbackURL string) []domain.MarketListing {
	var listings []domain.MarketListing
	doc.Find("div.hit, .grid-x.hit").Each(func(_ int, s *goquery.Selection) {
		title := strings.TrimSpace(s.Find(".hit__name").First().Text())
		if title == "" {
			return
		}

		productURL := fallbackURL
		if href, ok := s.Find("a.hit__name[href]").First().Attr("href"); ok && href != "" {
			productURL = fetch.CleanURL(href, c.baseURL)
		}

		listing := domain.MarketListing{
			Source:      "fcpeuro",
			Title:       title,
			Price:       fetch.ParsePrice(s.Find(".hit__price, [class*='price']").First().Text()),
			Currency:    "USD",
			Condition:   "New",
			URL:         productURL,
			PartNumbers: query.ExtractPartNumbers(title),
			Brand:       strings.TrimSpace(s.Find(".hit__flag").First().Text()),
		}
		if src, ok := s.Find("img[src]").First().Attr("src"); ok && strings.HasPrefix(src, "http") {
			listing.ImageURL = src
		}
		listings = append(listings, listing)
	})
	return listings
}

func (c *FCPEuroConnector) linkResult(q, searchURL string) *Result {
	return &Result{ExternalLinks: []domain.ExternalLink{{
		Label:    fmt.Sprintf("Search FCP Euro for '%s'", q),
		URL:      searchURL,
		Source:   "fcpeuro",
		Category: "new_parts",
	}}}
}
