package providers

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/partlogicapp/partlogic-server/internal/catalog"
	"github.com/partlogicapp/partlogic-server/internal/config"
	"github.com/partlogicapp/partlogic-server/internal/history"
	"github.com/partlogicapp/partlogic-server/internal/logger"
	"github.com/partlogicapp/partlogic-server/internal/registry"
)

// HistoryHandle wraps the history store with Shutdownable.
type HistoryHandle struct {
	Store *history.Store
}

// Shutdown implements do.Shutdownable.
func (h *HistoryHandle) Shutdown() error {
	return h.Store.Close()
}

// ProvideHistory provides the search history store.
func ProvideHistory(i do.Injector) (*HistoryHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.BasePath, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	store, err := history.Open(cfg.DatabasePath(), log.Logger)
	if err != nil {
		return nil, fmt.Errorf("open history store: %w", err)
	}
	log.Info("History store ready", "path", cfg.DatabasePath())
	return &HistoryHandle{Store: store}, nil
}

// CatalogHandle wraps the canonical catalog with Shutdownable.
type CatalogHandle struct {
	Store *catalog.Store
}

// Shutdown implements do.Shutdownable.
func (h *CatalogHandle) Shutdown() error {
	return h.Store.Close()
}

// ProvideCatalog provides the canonical part catalog. It shares the
// SQLite file with the history store; the schemas are disjoint.
func ProvideCatalog(i do.Injector) (*CatalogHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	if err := os.MkdirAll(cfg.Data.BasePath, 0o750); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	store, err := catalog.Open(catalog.Options{
		DBPath:    cfg.DatabasePath(),
		IndexPath: cfg.CatalogIndexPath(),
		Logger:    log.Logger,
	})
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	log.Info("Catalog ready", "db", cfg.DatabasePath(), "index", cfg.CatalogIndexPath())
	return &CatalogHandle{Store: store}, nil
}

// RegistryHandle wraps the source registry and its file watcher.
type RegistryHandle struct {
	Registry *registry.Registry
	cancel   context.CancelFunc
}

// Shutdown implements do.Shutdownable.
func (h *RegistryHandle) Shutdown() error {
	h.cancel()
	return h.Registry.Close()
}

// ProvideRegistry provides the source registry, watching its file for
// edits made outside the process.
func ProvideRegistry(i do.Injector) (*RegistryHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	reg, err := registry.Open(cfg.RegistryPath(), log.Logger)
	if err != nil {
		return nil, fmt.Errorf("open source registry: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	if err := reg.Watch(ctx); err != nil {
		log.Warn("Registry file watch unavailable", "error", err)
	}
	log.Info("Source registry ready", "path", cfg.RegistryPath(), "sources", len(reg.All()))
	return &RegistryHandle{Registry: reg, cancel: cancel}, nil
}
