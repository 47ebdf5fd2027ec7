package providers

import (
	"context"
	"fmt"
	"os"

	"github.com/samber/do/v2"

	"github.com/partlogicapp/partlogic-server/internal/cache"
	"github.com/partlogicapp/partlogic-server/internal/cache/badgercache"
	"github.com/partlogicapp/partlogic-server/internal/cache/rediscache"
	"github.com/partlogicapp/partlogic-server/internal/config"
	"github.com/partlogicapp/partlogic-server/internal/logger"
)

// CacheHandle wraps the result cache with Shutdownable.
type CacheHandle struct {
	Cache cache.Cache
}

// Shutdown implements do.Shutdownable.
func (h *CacheHandle) Shutdown() error {
	return h.Cache.Close()
}

// ProvideCache provides the result cache backend selected by config.
func ProvideCache(i do.Injector) (*CacheHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	switch cfg.Cache.Backend {
	case "redis":
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		c, err := rediscache.New(ctx, rediscache.Options{
			Addr:     cfg.Cache.RedisAddr,
			Password: cfg.Cache.RedisPassword,
			DB:       cfg.Cache.RedisDB,
		}, log.Logger)
		if err != nil {
			return nil, fmt.Errorf("redis cache: %w", err)
		}
		return &CacheHandle{Cache: c}, nil
	default:
		if err := os.MkdirAll(cfg.CachePath(), 0o750); err != nil {
			return nil, fmt.Errorf("create cache dir: %w", err)
		}
		c, err := badgercache.New(cfg.CachePath(), log.Logger)
		if err != nil {
			return nil, fmt.Errorf("badger cache: %w", err)
		}
		return &CacheHandle{Cache: c}, nil
	}
}
