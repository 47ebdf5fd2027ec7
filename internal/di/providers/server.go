package providers

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/samber/do/v2"

	"github.com/partlogicapp/partlogic-server/internal/api"
	"github.com/partlogicapp/partlogic-server/internal/config"
	"github.com/partlogicapp/partlogic-server/internal/logger"
	"github.com/partlogicapp/partlogic-server/internal/service"
	"github.com/partlogicapp/partlogic-server/internal/vin"
)

// serverVersion is reported by the OpenAPI document and /health.
const serverVersion = "1.0.0"

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return h.Server.Shutdown(ctx)
}

// ProvideHTTPServer provides the HTTP server and starts it listening.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)
	searchService := do.MustInvoke[*service.SearchService](i)
	watchService := do.MustInvoke[*service.WatchService](i)
	historyHandle := do.MustInvoke[*HistoryHandle](i)
	catalogHandle := do.MustInvoke[*CatalogHandle](i)
	registryHandle := do.MustInvoke[*RegistryHandle](i)
	vinDecoder := do.MustInvoke[*vin.Decoder](i)
	metricsHandle := do.MustInvoke[*MetricsHandle](i)

	handler := api.NewServer(
		searchService,
		watchService,
		historyHandle.Store,
		catalogHandle.Store,
		registryHandle.Registry,
		vinDecoder,
		log.Logger,
		api.Options{
			Version: serverVersion,
			MetricsHandler: promhttp.HandlerFor(metricsHandle.Registry, promhttp.HandlerOpts{
				Registry: metricsHandle.Registry,
			}),
		},
	)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	return &HTTPServerHandle{Server: srv}, nil
}
