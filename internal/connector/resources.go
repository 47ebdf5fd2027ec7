package connector

import (
	"context"
	"fmt"
	"net/url"

	"github.com/partlogicapp/partlogic-server/internal/domain"
)

// ResourcesConnector never touches the network: it generates repair
// resource links (YouTube how-to search, Charm.li manuals) for any query.
type ResourcesConnector struct {
	base
}

func NewResources() *ResourcesConnector {
	return &ResourcesConnector{base: base{name: "resources"}}
}

// Search implements Connector.
func (c *ResourcesConnector) Search(_ context.Context, query string, _ Options) (*Result, error) {
	encoded := url.QueryEscape(query)
	encodedReplacement := url.QueryEscape(query + " replacement")

	return &Result{
		ExternalLinks: []domain.ExternalLink{
			{
				Label:    fmt.Sprintf("YouTube: '%s replacement'", query),
				URL:      "https://www.youtube.com/results?search_query=" + encodedReplacement,
				Source:   "youtube",
				Category: "repair_resources",
			},
			{
				Label:    fmt.Sprintf("Charm.li: '%s'", query),
				URL:      "https://charm.li/?q=" + encoded,
				Source:   "charmli",
				Category: "repair_resources",
			},
		},
	}, nil
}
