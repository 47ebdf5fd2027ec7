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

// siteProfile describes how to scrape one retailer's search results page.
// The selector lists are comma-separated goquery selectors, most specific
// first, matching the layouts each site has shipped.
type siteProfile struct {
	name        string
	displayName string
	baseURL     string
	// searchPath is the search URL path with %s for the encoded query.
	searchPath string
	productSel string
	titleSel   string
	priceSel   string
	linkSel    string
	imageSel   string
	brandSel   string
	partNumSel string
	condition  string
	// linkCategory classifies the generated external links.
	linkCategory string
	// needsBrowser marks Cloudflare-guarded sites that only render under a
	// real browser.
	needsBrowser bool
}

func (p *siteProfile) searchURL(q string) string {
	return p.baseURL + fmt.Sprintf(p.searchPath, url.QueryEscape(q))
}

// ScraperConnector is the selector-driven scraper shared by the retail
// sites. When scraping is disabled or fails it degrades to generating
// search links, so the source always contributes something.
type ScraperConnector struct {
	base
	profile siteProfile
	fetcher fetch.HTMLFetcher
	logger  *slog.Logger
}

func newScraper(profile siteProfile, fetcher fetch.HTMLFetcher, logger *slog.Logger) *ScraperConnector {
	return &ScraperConnector{
		base:    base{name: profile.name},
		profile: profile,
		fetcher: fetcher,
		logger:  logger,
	}
}

// Search implements Connector.
func (c *ScraperConnector) Search(ctx context.Context, q string, opts Options) (*Result, error) {
	if c.fetcher == nil {
		return c.generateLinks(q, opts), nil
	}

	listings, err := c.scrape(ctx, q, opts)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("scrape failed, generating links",
				"source", c.profile.name, "error", err)
		}
		return c.generateLinks(q, opts), nil
	}
	if len(listings) == 0 {
		return c.generateLinks(q, opts), nil
	}

	return &Result{
		MarketListings: capResults(listings, opts.MaxResults),
		ExternalLinks:  []domain.ExternalLink{c.seeMoreLink(q)},
	}, nil
}

func (c *ScraperConnector) scrape(ctx context.Context, q string, opts Options) ([]domain.MarketListing, error) {
	doc, err := c.fetcher.FetchHTML(ctx, c.profile.searchURL(q))
	if err != nil {
		return nil, err
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}

	var listings []domain.MarketListing
	doc.Find(c.profile.productSel).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		title := strings.TrimSpace(s.Find(c.profile.titleSel).First().Text())
		if title == "" {
			return true
		}

		price := fetch.ParsePrice(s.Find(c.profile.priceSel).First().Text())

		productURL := c.profile.searchURL(q)
		if href, ok := s.Find(c.profile.linkSel).First().Attr("href"); ok && href != "" {
			productURL = fetch.CleanURL(href, c.profile.baseURL)
		}

		listing := domain.MarketListing{
			Source:    c.profile.name,
			Title:     title,
			Price:     price,
			Currency:  "USD",
			Condition: c.profile.condition,
			URL:       productURL,
		}

		if c.profile.imageSel != "" {
			if img := firstAttr(s.Find(c.profile.imageSel).First(), "data-src", "src"); img != "" && !strings.HasPrefix(img, "data:") {
				listing.ImageURL = fetch.CleanURL(img, c.profile.baseURL)
			}
		}
		if c.profile.brandSel != "" {
			listing.Brand = strings.TrimSpace(s.Find(c.profile.brandSel).First().Text())
		}

		if c.profile.partNumSel != "" {
			if pn := strings.TrimSpace(s.Find(c.profile.partNumSel).First().Text()); pn != "" {
				listing.PartNumbers = []string{pn}
			}
		}
		if len(listing.PartNumbers) == 0 {
			listing.PartNumbers = query.ExtractPartNumbers(title)
		}

		listings = append(listings, listing)
		return len(listings) < maxResults
	})
	return listings, nil
}

// generateLinks is the no-scrape fallback: a search link plus a direct
// link per extracted part number.
func (c *ScraperConnector) generateLinks(q string, opts Options) *Result {
	links := []domain.ExternalLink{{
		Label:    fmt.Sprintf("Search %s for '%s'", c.profile.displayName, q),
		URL:      c.profile.searchURL(q),
		Source:   c.profile.name,
		Category: c.profile.linkCategory,
	}}
	for _, pn := range opts.PartNumbers {
		links = append(links, domain.ExternalLink{
			Label:    fmt.Sprintf("%s: %s", c.profile.displayName, pn),
			URL:      c.profile.searchURL(pn),
			Source:   c.profile.name,
			Category: c.profile.linkCategory,
		})
	}
	return &Result{ExternalLinks: links}
}

func (c *ScraperConnector) seeMoreLink(q string) domain.ExternalLink {
	return domain.ExternalLink{
		Label:    "See all results on " + c.profile.displayName,
		URL:      c.profile.searchURL(q),
		Source:   c.profile.name,
		Category: c.profile.linkCategory,
	}
}

func firstAttr(s *goquery.Selection, attrs ...string) string {
	for _, attr := range attrs {
		if v, ok := s.Attr(attr); ok && v != "" {
			return v
		}
	}
	return ""
}
