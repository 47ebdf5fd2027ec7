package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	domainerrors "github.com/partlogicapp/partlogic-server/internal/errors"
)

func (s *Server) registerHealthRoutes(version string) {
	huma.Register(s.api, huma.Operation{
		OperationID: "healthCheck",
		Method:      http.MethodGet,
		Path:        "/health",
		Summary:     "Health check",
		Description: "Returns server health status with component checks",
		Tags:        []string{"Health"},
	}, func(ctx context.Context, _ *struct{}) (*HealthOutput, error) {
		return s.handleHealthCheck(ctx, version)
	})
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status" doc:"Component status: healthy, degraded, or unhealthy"`
	Latency string `json:"latency,omitempty" doc:"Response time for this component"`
	Message string `json:"message,omitempty" doc:"Additional status information"`
}

// HealthResponse contains health check data in API responses.
type HealthResponse struct {
	Status     string                     `json:"status" doc:"Overall status: healthy, degraded, or unhealthy"`
	Version    string                     `json:"version" doc:"Server version"`
	Components map[string]ComponentHealth `json:"components" doc:"Individual component statuses"`
}

// HealthOutput wraps the health response for Huma.
type HealthOutput struct {
	Body HealthResponse
}

func (s *Server) handleHealthCheck(ctx context.Context, version string) (*HealthOutput, error) {
	components := make(map[string]ComponentHealth)
	overall := "healthy"

	historyHealth := s.checkHistory(ctx)
	components["history"] = historyHealth
	if historyHealth.Status == "unhealthy" {
		overall = "unhealthy"
	} else if historyHealth.Status == "degraded" && overall == "healthy" {
		overall = "degraded"
	}

	catalogHealth := s.checkCatalog(ctx)
	components["catalog"] = catalogHealth
	if catalogHealth.Status == "unhealthy" {
		overall = "unhealthy"
	} else if catalogHealth.Status == "degraded" && overall == "healthy" {
		overall = "degraded"
	}

	registryHealth := s.checkRegistry()
	components["registry"] = registryHealth
	if registryHealth.Status == "degraded" && overall == "healthy" {
		overall = "degraded"
	}

	return &HealthOutput{
		Body: HealthResponse{
			Status:     overall,
			Version:    version,
			Components: components,
		},
	}, nil
}

// checkHistory verifies the history database answers a read.
func (s *Server) checkHistory(ctx context.Context) ComponentHealth {
	if s.history == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "history store not configured",
		}
	}

	start := time.Now()
	_, err := s.history.Stats(ctx)
	latency := time.Since(start)

	if err != nil {
		return ComponentHealth{
			Status:  "unhealthy",
			Latency: latency.String(),
			Message: "history read failed",
		}
	}
	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

// checkCatalog verifies the canonical catalog is accessible. An empty
// catalog is fine; only a failing read is unhealthy.
func (s *Server) checkCatalog(ctx context.Context) ComponentHealth {
	if s.catalog == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "catalog not configured",
		}
	}

	start := time.Now()
	_, err := s.catalog.GetVehicle(ctx, 1)
	latency := time.Since(start)

	if err != nil {
		var domainErr *domainerrors.Error
		if !errors.As(err, &domainErr) || domainErr.Code != domainerrors.CodeNotFound {
			return ComponentHealth{
				Status:  "unhealthy",
				Latency: latency.String(),
				Message: "catalog read failed",
			}
		}
	}
	return ComponentHealth{
		Status:  "healthy",
		Latency: latency.String(),
	}
}

// checkRegistry reports how many sources routing can draw from.
func (s *Server) checkRegistry() ComponentHealth {
	if s.registry == nil {
		return ComponentHealth{
			Status:  "degraded",
			Message: "source registry not configured",
		}
	}

	stats := s.registry.Stats()
	if stats.Active == 0 {
		return ComponentHealth{
			Status:  "degraded",
			Message: "no active sources",
		}
	}
	return ComponentHealth{
		Status: "healthy",
	}
}
