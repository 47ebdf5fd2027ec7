package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/partlogicapp/partlogic-server/internal/catalog"
)

func (s *Server) registerCatalogRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "searchCanonicalParts",
		Method:      http.MethodGet,
		Path:        "/api/v1/catalog/parts/search",
		Summary:     "Search the canonical part catalog",
		Description: "Keyword match over brand, name, and description of canonical parts.",
		Tags:        []string{"Catalog"},
	}, s.handleSearchCanonicalParts)

	huma.Register(s.api, huma.Operation{
		OperationID: "resolveVehicle",
		Method:      http.MethodPost,
		Path:        "/api/v1/catalog/vehicles/resolve",
		Summary:     "Resolve a vehicle string",
		Description: "Maps a loose vehicle description to a canonical vehicle, recording the alias either way.",
		Tags:        []string{"Catalog"},
	}, s.handleResolveVehicle)

	huma.Register(s.api, huma.Operation{
		OperationID: "rebuildPartIndex",
		Method:      http.MethodPost,
		Path:        "/api/v1/catalog/index/rebuild",
		Summary:     "Rebuild the part search index",
		Tags:        []string{"Catalog"},
	}, s.handleRebuildPartIndex)
}

type searchCanonicalPartsInput struct {
	Query string `query:"q" minLength:"1" required:"true" doc:"Keywords to match"`
	Limit int    `query:"limit" minimum:"0" maximum:"100" doc:"Maximum hits (default 20)"`
}

type searchCanonicalPartsOutput struct {
	Body struct {
		Hits []catalog.PartHit `json:"hits"`
	}
}

func (s *Server) handleSearchCanonicalParts(ctx context.Context, input *searchCanonicalPartsInput) (*searchCanonicalPartsOutput, error) {
	hits, err := s.catalog.SearchParts(ctx, input.Query, input.Limit)
	if err != nil {
		return nil, err
	}
	out := &searchCanonicalPartsOutput{}
	out.Body.Hits = hits
	return out, nil
}

type resolveVehicleInput struct {
	Body struct {
		Text   string `json:"text" minLength:"2" doc:"Vehicle description, e.g. 1987 Porsche 944"`
		Source string `json:"source,omitempty" doc:"Domain the string was observed at"`
	}
}

type resolveVehicleOutput struct {
	Body catalog.ResolveResult
}

func (s *Server) handleResolveVehicle(ctx context.Context, input *resolveVehicleInput) (*resolveVehicleOutput, error) {
	result, err := s.catalog.ResolveVehicle(ctx, input.Body.Text, input.Body.Source)
	if err != nil {
		return nil, err
	}
	return &resolveVehicleOutput{Body: *result}, nil
}

type rebuildPartIndexOutput struct {
	Body struct {
		Indexed int `json:"indexed"`
	}
}

func (s *Server) handleRebuildPartIndex(ctx context.Context, _ *struct{}) (*rebuildPartIndexOutput, error) {
	indexed, err := s.catalog.RebuildIndex(ctx)
	if err != nil {
		return nil, err
	}
	out := &rebuildPartIndexOutput{}
	out.Body.Indexed = indexed
	return out, nil
}
