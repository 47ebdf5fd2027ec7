package connector

import (
	"log/slog"

	"github.com/partlogicapp/partlogic-server/internal/config"
	"github.com/partlogicapp/partlogic-server/internal/fetch"
)

// Deps is what connector construction needs: the shared fetchers plus the
// relevant config sections.
type Deps struct {
	// Fetcher is the shared HTTP fetcher; nil disables scraping and
	// degrades scraper connectors to link generation.
	Fetcher *fetch.Fetcher
	// Browser is the headless-browser fetcher for JS-rendered sources;
	// nil falls back to the plain fetcher.
	Browser fetch.HTMLFetcher
	Config  *config.Config
	Logger  *slog.Logger
}

// htmlFetcher picks the right fetcher for a source, preferring the
// browser for sources that need rendering.
func (d Deps) htmlFetcher(needsBrowser bool) fetch.HTMLFetcher {
	if needsBrowser && d.Browser != nil {
		return d.Browser
	}
	if d.Fetcher == nil {
		return nil
	}
	return d.Fetcher
}

// BuildAll constructs every connector, keyed by source name. The set is
// fixed at startup; routing decides which of them run per search.
func BuildAll(deps Deps) map[string]Connector {
	scrapeFetcher := deps.htmlFetcher(false)
	browserFetcher := deps.htmlFetcher(true)

	connectors := []Connector{
		NewEBay(deps.Config.EBay, deps.Config.Search.RequestTimeout),
		NewRockAuto(scrapeFetcher, deps.Logger, ""),
		NewFCPEuro(scrapeFetcher, deps.Logger, ""),
		NewRow52(browserFetcher, deps.Logger, ""),
		NewCarPart(deps.Config.Search.DefaultZip),
		NewResources(),
		newScraper(partsouqProfile, scrapeFetcher, deps.Logger),
		newScraper(amazonProfile, scrapeFetcher, deps.Logger),
		newScraper(partsgeekProfile, scrapeFetcher, deps.Logger),
		newScraper(autozoneProfile, scrapeFetcher, deps.Logger),
		newScraper(oreillyProfile, scrapeFetcher, deps.Logger),
		newScraper(napaProfile, scrapeFetcher, deps.Logger),
		newScraper(lkqProfile, scrapeFetcher, deps.Logger),
		newScraper(advanceautoProfile, scrapeFetcher, deps.Logger),
		newScraper(ecstuningProfile, deps.htmlFetcher(ecstuningProfile.needsBrowser), deps.Logger),
	}

	byName := make(map[string]Connector, len(connectors))
	for _, c := range connectors {
		byName[c.SourceName()] = c
	}
	return byName
}
