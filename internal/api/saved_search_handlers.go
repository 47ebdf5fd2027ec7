package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/partlogicapp/partlogic-server/internal/domain"
	"github.com/partlogicapp/partlogic-server/internal/service"
)

func (s *Server) registerSavedSearchRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID:   "createSavedSearch",
		Method:        http.MethodPost,
		Path:          "/api/v1/saved-searches",
		Summary:       "Save a search",
		DefaultStatus: http.StatusCreated,
		Tags:          []string{"Saved Searches"},
	}, s.handleCreateSavedSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "listSavedSearches",
		Method:      http.MethodGet,
		Path:        "/api/v1/saved-searches",
		Summary:     "List saved searches",
		Tags:        []string{"Saved Searches"},
	}, s.handleListSavedSearches)

	huma.Register(s.api, huma.Operation{
		OperationID: "getSavedSearch",
		Method:      http.MethodGet,
		Path:        "/api/v1/saved-searches/{id}",
		Summary:     "Get a saved search",
		Tags:        []string{"Saved Searches"},
	}, s.handleGetSavedSearch)

	huma.Register(s.api, huma.Operation{
		OperationID:   "deleteSavedSearch",
		Method:        http.MethodDelete,
		Path:          "/api/v1/saved-searches/{id}",
		Summary:       "Delete a saved search",
		Description:   "Removes the saved search and any alerts attached to it.",
		DefaultStatus: http.StatusNoContent,
		Tags:          []string{"Saved Searches"},
	}, s.handleDeleteSavedSearch)

	huma.Register(s.api, huma.Operation{
		OperationID: "setSavedSearchActive",
		Method:      http.MethodPatch,
		Path:        "/api/v1/saved-searches/{id}/active",
		Summary:     "Activate or pause a saved search",
		Tags:        []string{"Saved Searches"},
	}, s.handleSetSavedSearchActive)

	huma.Register(s.api, huma.Operation{
		OperationID:   "createPriceAlert",
		Method:        http.MethodPost,
		Path:          "/api/v1/saved-searches/{id}/alerts",
		Summary:       "Add a price alert",
		DefaultStatus: http.StatusCreated,
		Tags:          []string{"Saved Searches"},
	}, s.handleCreatePriceAlert)

	huma.Register(s.api, huma.Operation{
		OperationID: "listPriceAlerts",
		Method:      http.MethodGet,
		Path:        "/api/v1/saved-searches/{id}/alerts",
		Summary:     "List alerts for a saved search",
		Tags:        []string{"Saved Searches"},
	}, s.handleListPriceAlerts)

	huma.Register(s.api, huma.Operation{
		OperationID: "checkPriceAlerts",
		Method:      http.MethodPost,
		Path:        "/api/v1/alerts/check",
		Summary:     "Evaluate pending alerts",
		Description: "Compares every pending alert against recent price snapshots and reports those that fired.",
		Tags:        []string{"Saved Searches"},
	}, s.handleCheckPriceAlerts)
}

type createSavedSearchInput struct {
	Body struct {
		Query          string   `json:"query" minLength:"2" maxLength:"200" doc:"Search query to save"`
		VehicleMake    string   `json:"vehicle_make,omitempty" doc:"Vehicle make context"`
		VehicleModel   string   `json:"vehicle_model,omitempty" doc:"Vehicle model context"`
		VehicleYear    string   `json:"vehicle_year,omitempty" doc:"Vehicle year context"`
		VIN            string   `json:"vin,omitempty" maxLength:"17" doc:"VIN context"`
		Sort           string   `json:"sort,omitempty" enum:"relevance,price_asc,price_desc,value" doc:"Preferred ordering (default value)"`
		PriceThreshold *float64 `json:"price_threshold,omitempty" doc:"Overall price ceiling for the watch"`
	}
}

type savedSearchOutput struct {
	Body domain.SavedSearch
}

func (s *Server) handleCreateSavedSearch(ctx context.Context, input *createSavedSearchInput) (*savedSearchOutput, error) {
	saved, err := s.watch.SaveSearch(ctx, service.SaveSearchRequest{
		Query:          input.Body.Query,
		VehicleMake:    input.Body.VehicleMake,
		VehicleModel:   input.Body.VehicleModel,
		VehicleYear:    input.Body.VehicleYear,
		VIN:            input.Body.VIN,
		Sort:           input.Body.Sort,
		PriceThreshold: input.Body.PriceThreshold,
	})
	if err != nil {
		return nil, err
	}
	return &savedSearchOutput{Body: *saved}, nil
}

type listSavedSearchesInput struct {
	Active bool `query:"active" doc:"Only active saved searches"`
}

type listSavedSearchesOutput struct {
	Body struct {
		Searches []domain.SavedSearch `json:"searches"`
	}
}

func (s *Server) handleListSavedSearches(ctx context.Context, input *listSavedSearchesInput) (*listSavedSearchesOutput, error) {
	searches, err := s.watch.SavedSearches(ctx, input.Active)
	if err != nil {
		return nil, err
	}
	out := &listSavedSearchesOutput{}
	out.Body.Searches = searches
	return out, nil
}

type savedSearchIDInput struct {
	ID int64 `path:"id" doc:"Saved search ID"`
}

func (s *Server) handleGetSavedSearch(ctx context.Context, input *savedSearchIDInput) (*savedSearchOutput, error) {
	saved, err := s.watch.GetSavedSearch(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	return &savedSearchOutput{Body: *saved}, nil
}

func (s *Server) handleDeleteSavedSearch(ctx context.Context, input *savedSearchIDInput) (*struct{}, error) {
	if err := s.watch.DeleteSavedSearch(ctx, input.ID); err != nil {
		return nil, err
	}
	return &struct{}{}, nil
}

type setSavedSearchActiveInput struct {
	ID   int64 `path:"id" doc:"Saved search ID"`
	Body struct {
		Active bool `json:"is_active" doc:"Whether the saved search is watched"`
	}
}

func (s *Server) handleSetSavedSearchActive(ctx context.Context, input *setSavedSearchActiveInput) (*savedSearchOutput, error) {
	saved, err := s.watch.SetActive(ctx, input.ID, input.Body.Active)
	if err != nil {
		return nil, err
	}
	return &savedSearchOutput{Body: *saved}, nil
}

type createPriceAlertInput struct {
	ID   int64 `path:"id" doc:"Saved search ID"`
	Body struct {
		PartNumber  string  `json:"part_number,omitempty" doc:"Part number to watch; empty watches the saved query"`
		Brand       string  `json:"brand,omitempty" doc:"Restrict to one brand"`
		TargetPrice float64 `json:"target_price" exclusiveMinimum:"0" doc:"Fire when the lowest recent price reaches this"`
	}
}

type priceAlertOutput struct {
	Body domain.PriceAlert
}

func (s *Server) handleCreatePriceAlert(ctx context.Context, input *createPriceAlertInput) (*priceAlertOutput, error) {
	alert, err := s.watch.CreateAlert(ctx, service.CreateAlertRequest{
		SavedSearchID: input.ID,
		PartNumber:    input.Body.PartNumber,
		Brand:         input.Body.Brand,
		TargetPrice:   input.Body.TargetPrice,
	})
	if err != nil {
		return nil, err
	}
	return &priceAlertOutput{Body: *alert}, nil
}

type listPriceAlertsOutput struct {
	Body struct {
		Alerts []domain.PriceAlert `json:"alerts"`
	}
}

func (s *Server) handleListPriceAlerts(ctx context.Context, input *savedSearchIDInput) (*listPriceAlertsOutput, error) {
	alerts, err := s.watch.Alerts(ctx, input.ID)
	if err != nil {
		return nil, err
	}
	out := &listPriceAlertsOutput{}
	out.Body.Alerts = alerts
	return out, nil
}

type checkPriceAlertsOutput struct {
	Body struct {
		Triggered []domain.TriggeredAlert `json:"triggered"`
	}
}

func (s *Server) handleCheckPriceAlerts(ctx context.Context, _ *struct{}) (*checkPriceAlertsOutput, error) {
	triggered, err := s.watch.CheckAlerts(ctx)
	if err != nil {
		return nil, err
	}
	out := &checkPriceAlertsOutput{}
	out.Body.Triggered = triggered
	return out, nil
}
