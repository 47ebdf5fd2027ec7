package connector

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/partlogicapp/partlogic-server/internal/domain"
	"github.com/partlogicapp/partlogic-server/internal/fetch"
	"github.com/partlogicapp/partlogic-server/internal/query"
)

// RockAutoConnector scrapes RockAuto part search results. RockAuto lists
// every manufacturer's equivalent for a number, so hits carry brand and
// part number reliably.
type RockAutoConnector struct {
	base
	fetcher fetch.HTMLFetcher
	logger  *slog.Logger
	baseURL string
}

func NewRockAuto(fetcher fetch.HTMLFetcher, logger *slog.Logger, baseURL string) *RockAutoConnector {
	if baseURL == "" {
		baseURL = "https://www.rockauto.com"
	}
	return &RockAutoConnector{
		base:    base{name: "rockauto"},
		fetcher: fetcher,
		logger:  logger,
		baseURL: baseURL,
	}
}

// Search implements Connector.
func (c *RockAutoConnector) Search(ctx context.Context, q string, opts Options) (*Result, error) {
	searchURL := fmt.Sprintf("%s/en/partsearch/?partnum=%s", c.baseURL, url.QueryEscape(q))
	if c.fetcher == nil {
		return c.linkResult(q, searchURL), nil
	}

	doc, err := c.fetcher.FetchHTML(ctx, searchURL)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("scrape failed, generating links", "source", "rockauto", "error", err)
		}
		return c.linkResult(q, searchURL), nil
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	var listings []domain.MarketListing
	doc.Find("[id^='listingcontainer']").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		brand := firstSelText(s, "span.listing-final-manufacturer", ".ra-listing-brand")
		partNum := firstSelText(s, "span.listing-final-partnumber", ".ra-listing-partnumber")
		desc := firstSelText(s, "span.listing-final-desc", ".listing-text-row")
		if partNum == "" && desc == "" {
			return true
		}

		title := desc
		if brand != "" {
			title = brand + " " + title
		}
		if partNum != "" {
			title += " " + partNum
		}

		partNumbers := query.ExtractPartNumbers(title)
		if partNum != "" && !containsString(partNumbers, partNum) {
			partNumbers = append(partNumbers, partNum)
		}

		productURL := searchURL
		if href, ok := s.Find("a[href]").First().Attr("href"); ok && href != "" {
			productURL = fetch.CleanURL(href, c.baseURL)
		}

		listings = append(listings, domain.MarketListing{
			Source:      "rockauto",
			Title:       title,
			Price:       fetch.ParsePrice(firstSelText(s, "span.listing-price", ".ra-price")),
			Currency:    "USD",
			Condition:   "New",
			URL:         productURL,
			PartNumbers: partNumbers,
			Vendor:      "RockAuto",
			Brand:       brand,
		})
		return len(listings) < maxResults
	})

	if len(listings) == 0 {
		return c.linkResult(q, searchURL), nil
	}
	return &Result{MarketListings: listings}, nil
}

func (c *RockAutoConnector) linkResult(q, searchURL string) *Result {
	return &Result{ExternalLinks: []domain.ExternalLink{{
		Label:    fmt.Sprintf("Search RockAuto for '%s'", q),
		URL:      searchURL,
		Source:   "rockauto",
		Category: "new_parts",
	}}}
}

func firstSelText(s *goquery.Selection, selectors ...string) string {
	for _, sel := range selectors {
		if text := strings.TrimSpace(s.Find(sel).First().Text()); text != "" {
			return text
		}
	}
	return ""
}

func containsString(slice []string, v string) bool {
	for _, s := range slice {
		if s == v {
			return true
		}
	}
	return false
}
