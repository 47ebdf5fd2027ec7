package results

import (
	"testing"

	"github.com/partlogicapp/partlogic-server/internal/domain"
)

func TestFilterSalvageHits(t *testing.T) {
	hits := []domain.SalvageHit{
		{YardName: "A", Vehicle: "2015 Honda Civic"},
		{YardName: "B", Vehicle: "2014 Kia Sedona"},
		{YardName: "C", Vehicle: ""}, // unknown vehicle: kept
		{YardName: "D", Vehicle: "HONDA ACCORD"},
	}
	analysis := &domain.QueryAnalysis{VehicleHint: "2015 Honda Civic"}

	got := FilterSalvageHits(hits, analysis)
	if len(got) != 3 {
		t.Fatalf("got %d hits, want 3", len(got))
	}
	for _, h := range got {
		if h.YardName == "B" {
			t.Error("wrong-make hit survived the filter")
		}
	}
}

func TestFilterSalvageHitsNoHint(t *testing.T) {
	hits := []domain.SalvageHit{{YardName: "A", Vehicle: "anything"}}
	if got := FilterSalvageHits(hits, nil); len(got) != 1 {
		t.Error("nil analysis should pass hits through")
	}
	if got := FilterSalvageHits(hits, &domain.QueryAnalysis{}); len(got) != 1 {
		t.Error("empty hint should pass hits through")
	}
}

func TestGroupLinksByCategory(t *testing.T) {
	links := []domain.ExternalLink{
		{Label: "manual", Category: "repair_resources"},
		{Label: "store", Category: "new_parts"},
		{Label: "mystery", Category: "something_else"},
		{Label: "yard", Category: "used_salvage"},
		{Label: "uncategorized"}, // defaults to new_parts
	}

	got := GroupLinksByCategory(links)
	wantOrder := []string{"store", "uncategorized", "yard", "manual", "mystery"}
	for i, want := range wantOrder {
		if got[i].Label != want {
			t.Errorf("got[%d] = %q, want %q", i, got[i].Label, want)
		}
	}
}
