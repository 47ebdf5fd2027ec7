package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/partlogicapp/partlogic-server/internal/domain"
	"github.com/partlogicapp/partlogic-server/internal/history"
)

func (s *Server) registerHistoryRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "recentSearches",
		Method:      http.MethodGet,
		Path:        "/api/v1/history/recent",
		Summary:     "Recent searches",
		Tags:        []string{"History"},
	}, s.handleRecentSearches)

	huma.Register(s.api, huma.Operation{
		OperationID: "popularSearches",
		Method:      http.MethodGet,
		Path:        "/api/v1/history/popular",
		Summary:     "Popular searches",
		Description: "Most frequent normalized queries over the requested window.",
		Tags:        []string{"History"},
	}, s.handlePopularSearches)

	huma.Register(s.api, huma.Operation{
		OperationID: "searchStats",
		Method:      http.MethodGet,
		Path:        "/api/v1/history/stats",
		Summary:     "Aggregate search statistics",
		Tags:        []string{"History"},
	}, s.handleSearchStats)

	huma.Register(s.api, huma.Operation{
		OperationID: "priceHistory",
		Method:      http.MethodGet,
		Path:        "/api/v1/history/prices",
		Summary:     "Observed price snapshots",
		Tags:        []string{"History"},
	}, s.handlePriceHistory)

	huma.Register(s.api, huma.Operation{
		OperationID: "priceTrends",
		Method:      http.MethodGet,
		Path:        "/api/v1/history/trends",
		Summary:     "Daily price trend per source",
		Tags:        []string{"History"},
	}, s.handlePriceTrends)
}

type recentSearchesInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"200" doc:"Maximum records (default 20)"`
}

type recentSearchesOutput struct {
	Body struct {
		Searches []domain.SearchRecord `json:"searches"`
	}
}

func (s *Server) handleRecentSearches(ctx context.Context, input *recentSearchesInput) (*recentSearchesOutput, error) {
	records, err := s.history.RecentSearches(ctx, input.Limit)
	if err != nil {
		return nil, err
	}
	out := &recentSearchesOutput{}
	out.Body.Searches = records
	return out, nil
}

type popularSearchesInput struct {
	Limit int `query:"limit" minimum:"0" maximum:"200" doc:"Maximum entries (default 10)"`
	Days  int `query:"days" minimum:"0" maximum:"365" doc:"Window in days (default 30)"`
}

type popularSearchesOutput struct {
	Body struct {
		Searches []domain.PopularSearch `json:"searches"`
	}
}

func (s *Server) handlePopularSearches(ctx context.Context, input *popularSearchesInput) (*popularSearchesOutput, error) {
	popular, err := s.history.PopularSearches(ctx, input.Limit, input.Days)
	if err != nil {
		return nil, err
	}
	out := &popularSearchesOutput{}
	out.Body.Searches = popular
	return out, nil
}

type searchStatsOutput struct {
	Body domain.SearchStats
}

func (s *Server) handleSearchStats(ctx context.Context, _ *struct{}) (*searchStatsOutput, error) {
	stats, err := s.history.Stats(ctx)
	if err != nil {
		return nil, err
	}
	return &searchStatsOutput{Body: *stats}, nil
}

type priceHistoryInput struct {
	PartNumber string `query:"part_number" doc:"Filter by part number"`
	Brand      string `query:"brand" doc:"Filter by brand"`
	Source     string `query:"source" doc:"Filter by source"`
	Query      string `query:"query" doc:"Filter by normalized query"`
	Days       int    `query:"days" minimum:"0" maximum:"365" doc:"Window in days (default 90)"`
	Limit      int    `query:"limit" minimum:"0" maximum:"1000" doc:"Maximum snapshots (default 100)"`
}

type priceHistoryOutput struct {
	Body struct {
		Snapshots []domain.PriceSnapshot `json:"snapshots"`
	}
}

func (s *Server) handlePriceHistory(ctx context.Context, input *priceHistoryInput) (*priceHistoryOutput, error) {
	snapshots, err := s.history.PriceHistory(ctx, history.PriceFilter{
		PartNumber: input.PartNumber,
		Brand:      input.Brand,
		Source:     input.Source,
		Query:      input.Query,
		Days:       input.Days,
		Limit:      input.Limit,
	})
	if err != nil {
		return nil, err
	}
	out := &priceHistoryOutput{}
	out.Body.Snapshots = snapshots
	return out, nil
}

type priceTrendsInput struct {
	PartNumber string `query:"part_number" required:"true" doc:"Part number to trend"`
	Days       int    `query:"days" minimum:"0" maximum:"365" doc:"Window in days (default 90)"`
}

type priceTrendsOutput struct {
	Body struct {
		PartNumber string              `json:"part_number"`
		Trends     []domain.PriceTrend `json:"trends"`
	}
}

func (s *Server) handlePriceTrends(ctx context.Context, input *priceTrendsInput) (*priceTrendsOutput, error) {
	trends, err := s.history.PriceTrends(ctx, input.PartNumber, input.Days)
	if err != nil {
		return nil, err
	}
	out := &priceTrendsOutput{}
	out.Body.PartNumber = input.PartNumber
	out.Body.Trends = trends
	return out, nil
}
