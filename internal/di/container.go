// Package di provides dependency injection configuration for the PartLogic server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/partlogicapp/partlogic-server/internal/config"
	"github.com/partlogicapp/partlogic-server/internal/di/providers"
	"github.com/partlogicapp/partlogic-server/internal/logger"
	"github.com/partlogicapp/partlogic-server/internal/service"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideMetrics)

	// Storage layer
	do.Provide(injector, providers.ProvideCache)
	do.Provide(injector, providers.ProvideHistory)
	do.Provide(injector, providers.ProvideCatalog)
	do.Provide(injector, providers.ProvideRegistry)

	// Pipeline layer
	do.Provide(injector, providers.ProvideFetchers)
	do.Provide(injector, providers.ProvideConnectors)
	do.Provide(injector, providers.ProvideExpander)
	do.Provide(injector, providers.ProvideRouter)
	do.Provide(injector, providers.ProvideOrchestrator)
	do.Provide(injector, providers.ProvideCommunity)
	do.Provide(injector, providers.ProvideAdvisor)
	do.Provide(injector, providers.ProvideVINDecoder)
	do.Provide(injector, providers.ProvideSearchService)
	do.Provide(injector, providers.ProvideWatchService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle
// management. This triggers lazy initialization of the whole graph.
func Bootstrap(injector *do.RootScope) error {
	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*logger.Logger](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*service.SearchService](injector); err != nil {
		return err
	}
	if _, err := do.Invoke[*providers.HTTPServerHandle](injector); err != nil {
		return err
	}
	return nil
}
