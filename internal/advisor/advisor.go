// Package advisor synthesizes a structured part recommendation from the
// search results through an OpenAI-compatible chat API. It is optional
// and fail-silent: any problem yields nil advice, never a search error.
package advisor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"encoding/json/v2"

	openai "github.com/sashabaranov/go-openai"

	"github.com/partlogicapp/partlogic-server/internal/config"
	"github.com/partlogicapp/partlogic-server/internal/domain"
)

const systemPrompt = `You are an expert automotive parts advisor. You know OEM
part numbers and their cross-references, which suppliers manufacture for which
automakers, aftermarket quality tiers, and enthusiast community consensus.

Given a parts query and the search evidence, reply with ONLY a JSON object:

{
  "summary": "one-paragraph recommendation",
  "top_pick": {"brand": "...", "part_number": "...", "why": "..."},
  "alternates": [{"brand": "...", "part_number": "...", "why": "..."}],
  "avoid": [{"brand": "...", "reason": "..."}],
  "notes": "practical maintenance tips"
}

Rules: ground claims in the evidence where possible; include part numbers that
can be searched on retailer sites; no markdown, no text outside the JSON.`

// Pick is one recommended (or discouraged) brand/part pairing.
type Pick struct {
	Brand      string `json:"brand"`
	PartNumber string `json:"part_number,omitempty"`
	Why        string `json:"why,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// Advice is the advisor's structured output.
type Advice struct {
	Summary    string `json:"summary"`
	TopPick    *Pick  `json:"top_pick,omitempty"`
	Alternates []Pick `json:"alternates,omitempty"`
	Avoid      []Pick `json:"avoid,omitempty"`
	Notes      string `json:"notes,omitempty"`
}

// Evidence is what the pipeline hands the advisor to ground its answer.
type Evidence struct {
	Query           string
	VehicleHint     string
	PartDescription string
	TopGroups       []domain.ListingGroup
	BrandComparison []domain.BrandSummary
	Community       []domain.CommunitySource
}

// Advisor wraps the chat client.
type Advisor struct {
	cfg    config.AdvisorConfig
	client *openai.Client
	logger *slog.Logger
}

// New builds an Advisor. Returns nil when disabled or unconfigured, and
// a nil Advisor is safe to call.
func New(cfg config.AdvisorConfig, logger *slog.Logger) *Advisor {
	if !cfg.Enabled || cfg.APIKey == "" {
		return nil
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 25 * time.Second
	}
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/") + "/v1"
	}
	return &Advisor{
		cfg:    cfg,
		client: openai.NewClientWithConfig(clientConfig),
		logger: logger,
	}
}

// Recommend asks the model for advice. Nil comes back on any failure.
func (a *Advisor) Recommend(ctx context.Context, evidence Evidence) *Advice {
	if a == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, a.cfg.Timeout)
	defer cancel()

	model := a.cfg.Model
	if model == "" {
		model = openai.GPT4oMini
	}

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     model,
		MaxTokens: 2000,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: buildPrompt(evidence)},
		},
	})
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("advisor call failed", "error", err)
		}
		return nil
	}
	if len(resp.Choices) == 0 {
		return nil
	}

	advice, err := ParseAdvice(resp.Choices[0].Message.Content)
	if err != nil {
		if a.logger != nil {
			a.logger.Warn("advisor returned unparseable advice", "error", err)
		}
		return nil
	}
	return advice
}

// buildPrompt flattens the evidence into the user message.
func buildPrompt(evidence Evidence) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Query: %q\n", evidence.Query)
	if evidence.VehicleHint != "" {
		fmt.Fprintf(&b, "Vehicle: %s\n", evidence.VehicleHint)
	}
	if evidence.PartDescription != "" {
		fmt.Fprintf(&b, "Part: %s\n", evidence.PartDescription)
	}

	if len(evidence.TopGroups) > 0 {
		b.WriteString("\nTop result groups (brand, part number, price range, offers):\n")
		for i, group := range evidence.TopGroups {
			if i == 5 {
				break
			}
			fmt.Fprintf(&b, "- %s %s: $%.2f-$%.2f, %d offers\n",
				group.Brand, group.PartNumber, group.PriceRange.Low, group.PriceRange.High, group.OfferCount)
		}
	}
	if len(evidence.BrandComparison) > 0 {
		b.WriteString("\nBrand tiers seen:\n")
		for _, brand := range evidence.BrandComparison {
			fmt.Fprintf(&b, "- %s (%s, quality %.0f)\n", brand.Brand, brand.Tier, brand.QualityScore)
		}
	}
	if len(evidence.Community) > 0 {
		b.WriteString("\nCommunity discussions:\n")
		for _, thread := range evidence.Community {
			fmt.Fprintf(&b, "- %s (r/%s, score %d)\n", thread.Title, thread.Source, thread.Score)
		}
	}
	b.WriteString("\nAnalyze and recommend.")
	return b.String()
}

// ParseAdvice decodes the model's JSON, stripping markdown code fences
// some models wrap around JSON-mode output.
func ParseAdvice(text string) (*Advice, error) {
	text = strings.TrimSpace(text)
	if after, ok := strings.CutPrefix(text, "```"); ok {
		text = after
		// Drop a language tag like "json" on the fence line.
		if i := strings.Index(text, "\n"); i >= 0 {
			text = text[i+1:]
		}
	}
	if i := strings.LastIndex(text, "```"); i >= 0 {
		text = text[:i]
	}
	text = strings.TrimSpace(text)

	var advice Advice
	if err := json.Unmarshal([]byte(text), &advice); err != nil {
		return nil, err
	}
	if advice.Summary == "" {
		return nil, fmt.Errorf("advice missing summary")
	}
	return &advice, nil
}
