package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/partlogicapp/partlogic-server/internal/domain"
	"github.com/partlogicapp/partlogic-server/internal/service"
)

func (s *Server) registerSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "search",
		Method:      http.MethodGet,
		Path:        "/api/v1/search",
		Summary:     "Search for parts",
		Description: "Runs one query across every applicable source and returns merged, ranked, grouped results. Individual source failures surface as warnings, never as request failures.",
		Tags:        []string{"Search"},
	}, s.handleSearch)
}

// SearchInput is the query surface of the search endpoint.
type SearchInput struct {
	Query      string `query:"q" minLength:"1" maxLength:"300" required:"true" doc:"Part number, vehicle+part phrase, or free-text keywords"`
	Sort       string `query:"sort" enum:"relevance,price_asc,price_desc,value" doc:"Result ordering (default relevance)"`
	Zip        string `query:"zip" maxLength:"10" doc:"ZIP code for used-part aggregators"`
	MaxResults int    `query:"max_results" minimum:"0" maximum:"50" doc:"Per-source result cap (0 uses the server default)"`
}

// SearchOutput wraps the search response for Huma.
type SearchOutput struct {
	Body domain.SearchResponse
}

func (s *Server) handleSearch(ctx context.Context, input *SearchInput) (*SearchOutput, error) {
	resp, err := s.searchService.Search(ctx, service.SearchRequest{
		Query:      input.Query,
		Sort:       input.Sort,
		ZipCode:    input.Zip,
		MaxResults: input.MaxResults,
	})
	if err != nil {
		return nil, err
	}
	return &SearchOutput{Body: *resp}, nil
}
