package providers

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/samber/do/v2"

	"github.com/partlogicapp/partlogic-server/internal/advisor"
	"github.com/partlogicapp/partlogic-server/internal/community"
	"github.com/partlogicapp/partlogic-server/internal/config"
	"github.com/partlogicapp/partlogic-server/internal/connector"
	"github.com/partlogicapp/partlogic-server/internal/fetch"
	"github.com/partlogicapp/partlogic-server/internal/interchange"
	"github.com/partlogicapp/partlogic-server/internal/logger"
	"github.com/partlogicapp/partlogic-server/internal/metrics"
	"github.com/partlogicapp/partlogic-server/internal/orchestrator"
	"github.com/partlogicapp/partlogic-server/internal/router"
	"github.com/partlogicapp/partlogic-server/internal/service"
	"github.com/partlogicapp/partlogic-server/internal/vin"
)

// MetricsHandle bundles the collectors with their registry so the server
// can expose them on /metrics.
type MetricsHandle struct {
	Metrics  *metrics.Metrics
	Registry *prometheus.Registry
}

// ProvideMetrics provides the Prometheus instrumentation.
func ProvideMetrics(i do.Injector) (*MetricsHandle, error) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	return &MetricsHandle{
		Metrics:  metrics.New(reg),
		Registry: reg,
	}, nil
}

// FetcherHandle holds the shared outbound fetchers. Fetcher is nil when
// scraping is disabled; Browser is nil unless enabled.
type FetcherHandle struct {
	Fetcher *fetch.Fetcher
	Browser *fetch.Browser
}

// Shutdown implements do.Shutdownable.
func (h *FetcherHandle) Shutdown() error {
	if h.Browser != nil {
		h.Browser.Close()
	}
	return nil
}

// ProvideFetchers provides the shared HTTP and headless-browser fetchers.
func ProvideFetchers(i do.Injector) (*FetcherHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	handle := &FetcherHandle{}
	if cfg.Search.ScrapeEnabled {
		handle.Fetcher = fetch.New(fetch.Options{
			RequestTimeout: cfg.Search.RequestTimeout,
			PerHostDelay:   cfg.Search.RateLimitDelay,
			Retries:        2,
		}, log.Logger)
	} else {
		log.Info("Scraping disabled; scraper connectors degrade to link generation")
	}
	if cfg.Search.BrowserEnabled {
		handle.Browser = fetch.NewBrowser(cfg.Search.RequestTimeout, log.Logger)
	}
	return handle, nil
}

// ProvideConnectors provides every connector, keyed by source name.
func ProvideConnectors(i do.Injector) (map[string]connector.Connector, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	fetchers := do.MustInvoke[*FetcherHandle](i)

	deps := connector.Deps{
		Fetcher: fetchers.Fetcher,
		Config:  cfg,
		Logger:  log.Logger,
	}
	if fetchers.Browser != nil {
		deps.Browser = fetchers.Browser
	}
	connectors := connector.BuildAll(deps)
	log.Info("Connectors built", "count", len(connectors))
	return connectors, nil
}

// ProvideExpander provides the interchange expander, or nil when
// cross-reference expansion is disabled.
func ProvideExpander(i do.Injector) (*interchange.Expander, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	fetchers := do.MustInvoke[*FetcherHandle](i)

	if !cfg.Interchange.Enabled || fetchers.Fetcher == nil {
		return nil, nil
	}
	providers := []interchange.Provider{
		interchange.NewCrossRefProvider(fetchers.Fetcher, ""),
		interchange.NewFCPEuroProvider(fetchers.Fetcher, ""),
		interchange.NewRockAutoProvider(fetchers.Fetcher, ""),
	}
	return interchange.NewExpander(providers, cfg.Interchange.MaxProviders, cfg.Search.RequestTimeout, log.Logger), nil
}

// ProvideRouter provides the source router backed by the registry.
func ProvideRouter(i do.Injector) (*router.Router, error) {
	log := do.MustInvoke[*logger.Logger](i)
	reg := do.MustInvoke[*RegistryHandle](i)
	return router.New(reg.Registry, log.Logger), nil
}

// ProvideOrchestrator provides the connector fan-out.
func ProvideOrchestrator(i do.Injector) (*orchestrator.Orchestrator, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	connectors := do.MustInvoke[map[string]connector.Connector](i)
	metricsHandle := do.MustInvoke[*MetricsHandle](i)

	return orchestrator.New(connectors, cacheHandle.Cache, orchestrator.Options{
		ConnectorTimeout: cfg.Search.ConnectorTimeout,
		CacheTTL:         cfg.Cache.TTL,
	}, log.Logger, metricsHandle.Metrics), nil
}

// ProvideCommunity provides the community discussion client, or nil when
// disabled.
func ProvideCommunity(i do.Injector) (*community.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)

	if !cfg.Community.Enabled {
		return nil, nil
	}
	return community.New(cfg.Community, cacheHandle.Cache, log.Logger), nil
}

// ProvideAdvisor provides the AI advisor; nil when disabled or unkeyed.
func ProvideAdvisor(i do.Injector) (*advisor.Advisor, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	return advisor.New(cfg.Advisor, log.Logger), nil
}

// ProvideVINDecoder provides the vPIC VIN decoder.
func ProvideVINDecoder(i do.Injector) (*vin.Decoder, error) {
	log := do.MustInvoke[*logger.Logger](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	return vin.New(cacheHandle.Cache, log.Logger), nil
}

// ProvideSearchService provides the assembled search pipeline.
func ProvideSearchService(i do.Injector) (*service.SearchService, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	cacheHandle := do.MustInvoke[*CacheHandle](i)
	historyHandle := do.MustInvoke[*HistoryHandle](i)
	catalogHandle := do.MustInvoke[*CatalogHandle](i)
	metricsHandle := do.MustInvoke[*MetricsHandle](i)

	return service.NewSearchService(service.SearchDeps{
		Router:       do.MustInvoke[*router.Router](i),
		Orchestrator: do.MustInvoke[*orchestrator.Orchestrator](i),
		Expander:     do.MustInvoke[*interchange.Expander](i),
		Cache:        cacheHandle.Cache,
		History:      historyHandle.Store,
		Catalog:      catalogHandle.Store,
		Community:    do.MustInvoke[*community.Client](i),
		Advisor:      do.MustInvoke[*advisor.Advisor](i),
		Metrics:      metricsHandle.Metrics,
		Logger:       log.Logger,
	}, service.SearchOptions{
		OverallTTL:          cfg.Cache.TTL,
		MaxResultsPerSource: cfg.Search.MaxResultsPerSource,
		DefaultZip:          cfg.Search.DefaultZip,
	}), nil
}

// ProvideWatchService provides the saved-search and alert service.
func ProvideWatchService(i do.Injector) (*service.WatchService, error) {
	historyHandle := do.MustInvoke[*HistoryHandle](i)
	return service.NewWatchService(historyHandle.Store), nil
}
