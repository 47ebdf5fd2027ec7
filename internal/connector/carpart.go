package connector

import (
	"context"
	"fmt"
	"net/url"

	"github.com/partlogicapp/partlogic-server/internal/domain"
)

// CarPartConnector generates Car-Part.com search links. Car-Part fronts
// hundreds of independent recyclers behind a stateful search form, so we
// link users in rather than scrape.
type CarPartConnector struct {
	base
	baseURL string
	// defaultZip localizes the link when the request carries no zip code.
	defaultZip string
}

func NewCarPart(defaultZip string) *CarPartConnector {
	return &CarPartConnector{
		base:       base{name: "carpart"},
		baseURL:    "https://www.car-part.com",
		defaultZip: defaultZip,
	}
}

// Search implements Connector.
func (c *CarPartConnector) Search(_ context.Context, q string, opts Options) (*Result, error) {
	return &Result{
		ExternalLinks: []domain.ExternalLink{{
			Label:    fmt.Sprintf("Search Car-Part.com for '%s'", q),
			URL:      c.searchURL(q, opts.ZipCode),
			Source:   "carpart",
			Category: "used_salvage",
		}},
	}, nil
}

func (c *CarPartConnector) searchURL(q, zip string) string {
	if zip == "" {
		zip = c.defaultZip
	}
	u := fmt.Sprintf("%s/search.htm?partDescription=%s", c.baseURL, url.QueryEscape(q))
	if zip != "" {
		u += "&zip=" + url.QueryEscape(zip)
	}
	return u
}
