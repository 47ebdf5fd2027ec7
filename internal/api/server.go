// Package api provides the HTTP API server and handlers for the PartLogic application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/partlogicapp/partlogic-server/internal/catalog"
	"github.com/partlogicapp/partlogic-server/internal/history"
	"github.com/partlogicapp/partlogic-server/internal/registry"
	"github.com/partlogicapp/partlogic-server/internal/service"
	"github.com/partlogicapp/partlogic-server/internal/vin"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	searchService *service.SearchService
	watch         *service.WatchService
	history       *history.Store
	catalog       *catalog.Store
	registry      *registry.Registry
	vinDecoder    *vin.Decoder
	router        *chi.Mux
	api           huma.API
	logger        *slog.Logger
}

// Options configures the server beyond its service dependencies.
type Options struct {
	// Version is reported by the OpenAPI document and the health endpoint.
	Version string
	// MetricsHandler, when set, is mounted at /metrics.
	MetricsHandler http.Handler
	// AllowedOrigins configures CORS; empty allows any origin.
	AllowedOrigins []string
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(searchService *service.SearchService, watchService *service.WatchService, historyStore *history.Store, catalogStore *catalog.Store, sourceRegistry *registry.Registry, vinDecoder *vin.Decoder, logger *slog.Logger, opts Options) *Server {
	if opts.Version == "" {
		opts.Version = "dev"
	}

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(middleware.Compress(5))
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	humaConfig := huma.DefaultConfig("PartLogic API", opts.Version)
	humaConfig.Info.Description = "Meta-search across auto parts marketplaces, salvage yards, and reference sites."
	humaAPI := humachi.New(router, humaConfig)

	RegisterErrorHandler()

	s := &Server{
		searchService: searchService,
		watch:         watchService,
		history:       historyStore,
		catalog:       catalogStore,
		registry:      sourceRegistry,
		vinDecoder:    vinDecoder,
		router:        router,
		api:           humaAPI,
		logger:        logger,
	}

	s.registerHealthRoutes(opts.Version)
	s.registerSearchRoutes()
	s.registerHistoryRoutes()
	s.registerSavedSearchRoutes()
	s.registerSourceRoutes()
	s.registerCatalogRoutes()
	s.registerVINRoutes()

	if opts.MetricsHandler != nil {
		router.Method(http.MethodGet, "/metrics", opts.MetricsHandler)
	}

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
