package service

import (
	"context"

	"github.com/partlogicapp/partlogic-server/internal/domain"
	"github.com/partlogicapp/partlogic-server/internal/history"
	"github.com/partlogicapp/partlogic-server/internal/validation"
)

// WatchService manages saved searches and their price alerts.
type WatchService struct {
	history   *history.Store
	validator *validation.Validator
}

func NewWatchService(historyStore *history.Store) *WatchService {
	return &WatchService{
		history:   historyStore,
		validator: validation.New(),
	}
}

// SaveSearchRequest creates a saved search.
type SaveSearchRequest struct {
	Query          string   `json:"query" validate:"required,min=2,max=200"`
	VehicleMake    string   `json:"vehicle_make" validate:"omitempty,max=50"`
	VehicleModel   string   `json:"vehicle_model" validate:"omitempty,max=50"`
	VehicleYear    string   `json:"vehicle_year" validate:"omitempty,len=4"`
	VIN            string   `json:"vin" validate:"omitempty,len=17"`
	Sort           string   `json:"sort" validate:"omitempty,oneof=relevance price_asc price_desc value"`
	PriceThreshold *float64 `json:"price_threshold" validate:"omitempty,gt=0"`
}

// SaveSearch validates and persists a saved search.
func (s *WatchService) SaveSearch(ctx context.Context, req SaveSearchRequest) (*domain.SavedSearch, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.history.SaveSearch(ctx, domain.SavedSearch{
		Query:          req.Query,
		VehicleMake:    req.VehicleMake,
		VehicleModel:   req.VehicleModel,
		VehicleYear:    req.VehicleYear,
		VIN:            req.VIN,
		Sort:           req.Sort,
		PriceThreshold: req.PriceThreshold,
	})
}

// SavedSearches lists saved searches, optionally only active ones.
func (s *WatchService) SavedSearches(ctx context.Context, activeOnly bool) ([]domain.SavedSearch, error) {
	return s.history.SavedSearches(ctx, activeOnly)
}

// GetSavedSearch returns one saved search.
func (s *WatchService) GetSavedSearch(ctx context.Context, id int64) (*domain.SavedSearch, error) {
	return s.history.GetSavedSearch(ctx, id)
}

// DeleteSavedSearch removes a saved search and its alerts.
func (s *WatchService) DeleteSavedSearch(ctx context.Context, id int64) error {
	return s.history.DeleteSavedSearch(ctx, id)
}

// SetActive pauses or resumes a saved search.
func (s *WatchService) SetActive(ctx context.Context, id int64, active bool) (*domain.SavedSearch, error) {
	if err := s.history.SetSavedSearchActive(ctx, id, active); err != nil {
		return nil, err
	}
	return s.history.GetSavedSearch(ctx, id)
}

// CreateAlertRequest adds a price alert to a saved search.
type CreateAlertRequest struct {
	SavedSearchID int64   `json:"saved_search_id" validate:"required,gt=0"`
	PartNumber    string  `json:"part_number" validate:"omitempty,max=50"`
	Brand         string  `json:"brand" validate:"omitempty,max=50"`
	TargetPrice   float64 `json:"target_price" validate:"required,gt=0"`
}

// CreateAlert validates and persists a price alert.
func (s *WatchService) CreateAlert(ctx context.Context, req CreateAlertRequest) (*domain.PriceAlert, error) {
	if err := s.validator.Validate(req); err != nil {
		return nil, err
	}
	return s.history.CreateAlert(ctx, domain.PriceAlert{
		SavedSearchID: req.SavedSearchID,
		PartNumber:    req.PartNumber,
		Brand:         req.Brand,
		TargetPrice:   req.TargetPrice,
	})
}

// Alerts lists the alerts of one saved search.
func (s *WatchService) Alerts(ctx context.Context, savedSearchID int64) ([]domain.PriceAlert, error) {
	return s.history.AlertsForSearch(ctx, savedSearchID)
}

// CheckAlerts evaluates pending alerts against recent snapshots.
func (s *WatchService) CheckAlerts(ctx context.Context) ([]domain.TriggeredAlert, error) {
	return s.history.CheckAlerts(ctx)
}
