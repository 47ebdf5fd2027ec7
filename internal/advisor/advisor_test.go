package advisor

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partlogicapp/partlogic-server/internal/config"
	"github.com/partlogicapp/partlogic-server/internal/domain"
)

const adviceJSON = `{
	"summary": "Bosch AL0188X is the strongest pick for this car.",
	"top_pick": {"brand": "Bosch", "part_number": "AL0188X", "why": "OEM supplier"},
	"alternates": [{"brand": "Valeo", "part_number": "849067", "why": "cheaper reman"}],
	"avoid": [{"brand": "NoName", "reason": "no warranty"}],
	"notes": "Check the belt while you are in there."
}`

// newChatServer serves a canned chat completion whose message content is
// the given string.
func newChatServer(t *testing.T, content string, status int) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": %q}, "finish_reason": "stop"}]
		}`, content)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func testConfig(baseURL string) config.AdvisorConfig {
	return config.AdvisorConfig{
		Enabled: true,
		APIKey:  "test-key",
		BaseURL: baseURL,
		Model:   "gpt-4o-mini",
		Timeout: 5 * time.Second,
	}
}

func TestNewDisabled(t *testing.T) {
	assert.Nil(t, New(config.AdvisorConfig{Enabled: false, APIKey: "k"}, nil))
	assert.Nil(t, New(config.AdvisorConfig{Enabled: true}, nil), "no API key means no advisor")
}

func TestNilAdvisorIsSafe(t *testing.T) {
	var a *Advisor
	assert.Nil(t, a.Recommend(context.Background(), Evidence{Query: "alternator"}))
}

func TestRecommendParsesAdvice(t *testing.T) {
	srv := newChatServer(t, adviceJSON, http.StatusOK)
	a := New(testConfig(srv.URL), nil)
	require.NotNil(t, a)

	advice := a.Recommend(context.Background(), Evidence{
		Query:       "porsche 944 alternator",
		VehicleHint: "1987 Porsche 944",
		TopGroups: []domain.ListingGroup{{
			Brand:      "Bosch",
			PartNumber: "AL0188X",
			PriceRange: domain.PriceRange{Low: 120, High: 180},
			OfferCount: 4,
		}},
		BrandComparison: []domain.BrandSummary{{Brand: "Bosch", Tier: "oem", QualityScore: 95}},
		Community:       []domain.CommunitySource{{Title: "Alternator swap", Source: "Porsche", Score: 40}},
	})

	require.NotNil(t, advice)
	assert.Contains(t, advice.Summary, "Bosch")
	require.NotNil(t, advice.TopPick)
	assert.Equal(t, "AL0188X", advice.TopPick.PartNumber)
	require.Len(t, advice.Avoid, 1)
	assert.Equal(t, "no warranty", advice.Avoid[0].Reason)
}

func TestRecommendFailsSilently(t *testing.T) {
	srv := newChatServer(t, "", http.StatusInternalServerError)
	a := New(testConfig(srv.URL), nil)
	require.NotNil(t, a)
	assert.Nil(t, a.Recommend(context.Background(), Evidence{Query: "alternator"}))
}

func TestRecommendRejectsGarbage(t *testing.T) {
	srv := newChatServer(t, "I think you should buy Bosch.", http.StatusOK)
	a := New(testConfig(srv.URL), nil)
	require.NotNil(t, a)
	assert.Nil(t, a.Recommend(context.Background(), Evidence{Query: "alternator"}))
}

func TestParseAdvice(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		summary string
		wantErr bool
	}{
		{name: "bare json", input: adviceJSON, summary: "Bosch AL0188X is the strongest pick for this car."},
		{name: "fenced", input: "```json\n" + adviceJSON + "\n```", summary: "Bosch AL0188X is the strongest pick for this car."},
		{name: "fenced without language", input: "```\n" + adviceJSON + "\n```", summary: "Bosch AL0188X is the strongest pick for this car."},
		{name: "whitespace padded", input: "\n  " + adviceJSON + "  \n", summary: "Bosch AL0188X is the strongest pick for this car."},
		{name: "not json", input: "buy Bosch", wantErr: true},
		{name: "missing summary", input: `{"notes": "x"}`, wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			advice, err := ParseAdvice(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.summary, advice.Summary)
		})
	}
}

func TestBuildPromptIncludesEvidence(t *testing.T) {
	prompt := buildPrompt(Evidence{
		Query:           "944 water pump",
		VehicleHint:     "1987 Porsche 944",
		PartDescription: "water pump",
		TopGroups: []domain.ListingGroup{{
			Brand: "Graf", PartNumber: "PA431A",
			PriceRange: domain.PriceRange{Low: 90, High: 140}, OfferCount: 3,
		}},
		Community: []domain.CommunitySource{{Title: "Water pump DIY", Source: "Porsche", Score: 25}},
	})

	assert.Contains(t, prompt, `"944 water pump"`)
	assert.Contains(t, prompt, "1987 Porsche 944")
	assert.Contains(t, prompt, "Graf PA431A")
	assert.Contains(t, prompt, "$90.00-$140.00")
	assert.Contains(t, prompt, "Water pump DIY")
}
