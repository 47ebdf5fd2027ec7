package results

import (
	"testing"

	"github.com/partlogicapp/partlogic-server/internal/domain"
)

func TestDeduplicateListings(t *testing.T) {
	listings := []domain.MarketListing{
		{Title: "first", URL: "https://a.example/1"},
		{Title: "second", URL: "https://a.example/2"},
		{Title: "duplicate of first", URL: "https://a.example/1"},
		{Title: "third", URL: "https://a.example/3"},
		{Title: "duplicate of second", URL: "https://a.example/2"},
	}

	got := DeduplicateListings(listings)
	if len(got) != 3 {
		t.Fatalf("got %d listings, want 3", len(got))
	}

	// First occurrence wins and order is preserved.
	wantTitles := []string{"first", "second", "third"}
	for i, want := range wantTitles {
		if got[i].Title != want {
			t.Errorf("got[%d].Title = %q, want %q", i, got[i].Title, want)
		}
	}

	// No two listings share a URL.
	seen := make(map[string]bool)
	for _, l := range got {
		if seen[l.URL] {
			t.Errorf("duplicate URL survived dedup: %s", l.URL)
		}
		seen[l.URL] = true
	}
}

func TestDeduplicateLinks(t *testing.T) {
	links := []domain.ExternalLink{
		{Source: "youtube", URL: "https://y.example/q"},
		{Source: "charm", URL: "https://y.example/q"}, // same URL, different source: kept
		{Source: "youtube", URL: "https://y.example/q"},
		{Source: "charm", URL: "https://c.example/m"},
	}

	got := DeduplicateLinks(links)
	if len(got) != 3 {
		t.Fatalf("got %d links, want 3", len(got))
	}
	if got[0].Source != "youtube" || got[1].Source != "charm" || got[2].URL != "https://c.example/m" {
		t.Errorf("unexpected order or contents: %+v", got)
	}
}

func TestDeduplicateEmpty(t *testing.T) {
	if got := DeduplicateListings(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
	if got := DeduplicateLinks(nil); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}
