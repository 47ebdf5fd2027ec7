package results

import "github.com/partlogicapp/partlogic-server/internal/domain"

// DeduplicateListings removes listings with a URL already seen, keeping the
// first occurrence. Order is preserved.
func DeduplicateListings(listings []domain.MarketListing) []domain.MarketListing {
	seen := make(map[string]struct{}, len(listings))
	unique := make([]domain.MarketListing, 0, len(listings))
	for _, l := range listings {
		if _, ok := seen[l.URL]; ok {
			continue
		}
		seen[l.URL] = struct{}{}
		unique = append(unique, l)
	}
	return unique
}

// DeduplicateLinks removes external links with a (source, url) pair already
// seen, keeping the first occurrence. Order is preserved.
func DeduplicateLinks(links []domain.ExternalLink) []domain.ExternalLink {
	type key struct{ source, url string }
	seen := make(map[key]struct{}, len(links))
	unique := make([]domain.ExternalLink, 0, len(links))
	for _, l := range links {
		k := key{l.Source, l.URL}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		unique = append(unique, l)
	}
	return unique
}
