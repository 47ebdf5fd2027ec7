package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/partlogicapp/partlogic-server/internal/domain"
	"github.com/partlogicapp/partlogic-server/internal/registry"
)

func (s *Server) registerSourceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "listSources",
		Method:      http.MethodGet,
		Path:        "/api/v1/sources",
		Summary:     "List registry sources",
		Tags:        []string{"Sources"},
	}, s.handleListSources)

	huma.Register(s.api, huma.Operation{
		OperationID: "sourceStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/sources/stats",
		Summary:     "Registry summary",
		Tags:        []string{"Sources"},
	}, s.handleSourceStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSource",
		Method:      http.MethodGet,
		Path:        "/api/v1/sources/{domain}",
		Summary:     "Get one source",
		Tags:        []string{"Sources"},
	}, s.handleGetSource)

	huma.Register(s.api, huma.Operation{
		OperationID: "upsertSource",
		Method:      http.MethodPut,
		Path:        "/api/v1/sources",
		Summary:     "Add or update a source",
		Description: "Creates the source when the domain is new, otherwise updates it in place.",
		Tags:        []string{"Sources"},
	}, s.handleUpsertSource)

	huma.Register(s.api, huma.Operation{
		OperationID: "toggleSource",
		Method:      http.MethodPost,
		Path:        "/api/v1/sources/{domain}/toggle",
		Summary:     "Toggle a source between active and disabled",
		Tags:        []string{"Sources"},
	}, s.handleToggleSource)

	huma.Register(s.api, huma.Operation{
		OperationID: "setSourcePriority",
		Method:      http.MethodPut,
		Path:        "/api/v1/sources/{domain}/priority",
		Summary:     "Set routing priority",
		Tags:        []string{"Sources"},
	}, s.handleSetSourcePriority)
}

type listSourcesInput struct {
	Status     string `query:"status" doc:"Filter by lifecycle state: active or disabled"`
	SourceType string `query:"source_type" doc:"Filter by source type: buyable or reference"`
	Category   string `query:"category" doc:"Filter by category"`
	Tag        string `query:"tag" doc:"Filter by tag"`
}

type sourceListOutput struct {
	Body struct {
		Sources []domain.Source `json:"sources"`
		Total   int             `json:"total"`
	}
}

func (s *Server) handleListSources(_ context.Context, input *listSourcesInput) (*sourceListOutput, error) {
	sources := s.registry.List(registry.Filter{
		Status:     domain.SourceStatusValue(input.Status),
		SourceType: domain.SourceType(input.SourceType),
		Category:   input.Category,
		Tag:        input.Tag,
	})
	out := &sourceListOutput{}
	out.Body.Sources = sources
	out.Body.Total = len(sources)
	return out, nil
}

type sourceStatsOutput struct {
	Body registry.Stats
}

func (s *Server) handleSourceStats(_ context.Context, _ *struct{}) (*sourceStatsOutput, error) {
	return &sourceStatsOutput{Body: s.registry.Stats()}, nil
}

type sourceDomainInput struct {
	Domain string `path:"domain" doc:"Source domain, e.g. rockauto.com"`
}

type sourceOutput struct {
	Body domain.Source
}

func (s *Server) handleGetSource(_ context.Context, input *sourceDomainInput) (*sourceOutput, error) {
	src, err := s.registry.Get(input.Domain)
	if err != nil {
		return nil, err
	}
	return &sourceOutput{Body: *src}, nil
}

type upsertSourceInput struct {
	Body struct {
		Domain             string   `json:"domain" minLength:"3" doc:"Source domain, e.g. rockauto.com"`
		Name               string   `json:"name,omitempty" doc:"Display name"`
		Category           string   `json:"category,omitempty" doc:"Routing category, e.g. salvage_yard"`
		Tags               []string `json:"tags,omitempty" doc:"Freeform tags"`
		Notes              string   `json:"notes,omitempty" doc:"Operator notes"`
		Type               string   `json:"source_type,omitempty" doc:"buyable or reference"`
		Priority           int      `json:"priority,omitempty" minimum:"0" maximum:"100" doc:"Routing priority, higher first"`
		SupportsVIN        bool     `json:"supports_vin,omitempty" doc:"Source accepts VIN lookups"`
		SupportsPartNumber bool     `json:"supports_part_number_search,omitempty" doc:"Source accepts part number search"`
		RobotsPolicy       string   `json:"robots_policy,omitempty" doc:"Observed robots.txt stance"`
		SitemapURL         string   `json:"sitemap_url,omitempty" doc:"Sitemap location"`
	}
}

func (s *Server) handleUpsertSource(_ context.Context, input *upsertSourceInput) (*sourceOutput, error) {
	src, err := s.registry.Upsert(domain.Source{
		Domain:             input.Body.Domain,
		Name:               input.Body.Name,
		Category:           input.Body.Category,
		Tags:               input.Body.Tags,
		Notes:              input.Body.Notes,
		Type:               domain.SourceType(input.Body.Type),
		Priority:           input.Body.Priority,
		SupportsVIN:        input.Body.SupportsVIN,
		SupportsPartNumber: input.Body.SupportsPartNumber,
		RobotsPolicy:       input.Body.RobotsPolicy,
		SitemapURL:         input.Body.SitemapURL,
	})
	if err != nil {
		return nil, err
	}
	return &sourceOutput{Body: *src}, nil
}

func (s *Server) handleToggleSource(_ context.Context, input *sourceDomainInput) (*sourceOutput, error) {
	src, err := s.registry.ToggleStatus(input.Domain)
	if err != nil {
		return nil, err
	}
	return &sourceOutput{Body: *src}, nil
}

type setSourcePriorityInput struct {
	Domain string `path:"domain" doc:"Source domain"`
	Body   struct {
		Priority int `json:"priority" minimum:"0" maximum:"100" doc:"Routing priority, higher first"`
	}
}

func (s *Server) handleSetSourcePriority(_ context.Context, input *setSourcePriorityInput) (*sourceOutput, error) {
	src, err := s.registry.SetPriority(input.Domain, input.Body.Priority)
	if err != nil {
		return nil, err
	}
	return &sourceOutput{Body: *src}, nil
}
