package domain

import "time"

// SourceType distinguishes sources you can buy from versus reference sites.
type SourceType string

const (
	SourceTypeBuyable   SourceType = "buyable"
	SourceTypeReference SourceType = "reference"
)

// SourceStatusValue is the registry lifecycle state of a source.
type SourceStatusValue string

const (
	SourceActive   SourceStatusValue = "active"
	SourceDisabled SourceStatusValue = "disabled"
)

// Source is one entry of the source registry: a site the search can route
// to, with routing metadata.
type Source struct {
	ID       string            `json:"id"`
	Domain   string            `json:"domain"`
	Name     string            `json:"name"`
	Category string            `json:"category"`
	Tags     []string          `json:"tags,omitempty"`
	Notes    string            `json:"notes,omitempty"`
	Type     SourceType        `json:"source_type"`
	Status   SourceStatusValue `json:"status"`
	// Priority orders sources within a category, higher first (0-100).
	Priority           int       `json:"priority"`
	SupportsVIN        bool      `json:"supports_vin"`
	SupportsPartNumber bool      `json:"supports_part_number_search"`
	RobotsPolicy       string    `json:"robots_policy,omitempty"`
	SitemapURL         string    `json:"sitemap_url,omitempty"`
	AddedAt            time.Time `json:"added_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// IsActive reports whether the source should be routed to.
func (s *Source) IsActive() bool {
	return s.Status == SourceActive
}

// HasTag reports whether the source carries the given tag.
func (s *Source) HasTag(tag string) bool {
	for _, t := range s.Tags {
		if t == tag {
			return true
		}
	}
	return false
}
