package connector

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/partlogicapp/partlogic-server/internal/domain"
	"github.com/partlogicapp/partlogic-server/internal/fetch"
)

// Row52Connector searches Row52's self-service yard inventory. The
// results page is rendered client-side, so the browser fetcher is
// preferred when available.
type Row52Connector struct {
	base
	fetcher fetch.HTMLFetcher
	logger  *slog.Logger
	baseURL string
}

func NewRow52(fetcher fetch.HTMLFetcher, logger *slog.Logger, baseURL string) *Row52Connector {
	if baseURL == "" {
		baseURL = "https://row52.com"
	}
	return &Row52Connector{
		base:    base{name: "row52"},
		fetcher: fetcher,
		logger:  logger,
		baseURL: baseURL,
	}
}

// Search implements Connector.
func (c *Row52Connector) Search(ctx context.Context, q string, opts Options) (*Result, error) {
	searchURL := fmt.Sprintf("%s/Search?Query=%s", c.baseURL, url.QueryEscape(q))
	if c.fetcher == nil {
		return c.linkResult(q, searchURL), nil
	}

	doc, err := c.fetcher.FetchHTML(ctx, searchURL)
	if err != nil {
		if c.logger != nil {
			c.logger.Warn("scrape failed, generating links", "source", "row52", "error", err)
		}
		return c.linkResult(q, searchURL), nil
	}

	maxResults := opts.MaxResults
	if maxResults <= 0 {
		maxResults = 20
	}
	today := time.Now().Format("2006-01-02")

	var hits []domain.SalvageHit
	doc.Find("tr[class*='vehicle'], tr[class*='listing'], div[class*='vehicle'], div[class*='result']").
		EachWithBreak(func(_ int, s *goquery.Selection) bool {
			vehicle := firstSelText(s, "a[class*='vehicle']", "span[class*='vehicle']", ".vehicle-title")
			if vehicle == "" {
				vehicle = q
			}

			hitURL := searchURL
			if href, ok := s.Find("a[href]").First().Attr("href"); ok && href != "" {
				hitURL = fetch.CleanURL(href, c.baseURL)
			}

			hits = append(hits, domain.SalvageHit{
				Source:          "row52",
				YardName:        orDefault(firstSelText(s, "a[class*='yard']", "span[class*='yard']"), "Unknown Yard"),
				YardLocation:    orDefault(firstSelText(s, "span[class*='location']", "span[class*='city']"), "Unknown"),
				Vehicle:         strings.TrimSpace(vehicle),
				URL:             hitURL,
				LastSeen:        today,
				PartDescription: firstSelText(s, "span[class*='part']"),
			})
			return len(hits) < maxResults
		})

	if len(hits) == 0 {
		return c.linkResult(q, searchURL), nil
	}
	return &Result{SalvageHits: hits}, nil
}

func (c *Row52Connector) linkResult(q, searchURL string) *Result {
	return &Result{ExternalLinks: []domain.ExternalLink{{
		Label:    fmt.Sprintf("Search Row52 yards for '%s'", q),
		URL:      searchURL,
		Source:   "row52",
		Category: "used_salvage",
	}}}
}
