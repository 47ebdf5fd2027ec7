// Package badgercache is the embedded default cache backend, a thin
// TTL-aware wrapper over a Badger database.
package badgercache

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
)

// Cache stores entries in an embedded Badger database. Expiry uses
// Badger's native per-entry TTL, so expired entries read as misses and are
// reclaimed by compaction.
type Cache struct {
	db     *badger.DB
	logger *slog.Logger
}

// New opens (or creates) the cache database at path.
func New(path string, logger *slog.Logger) (*Cache, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil // Disable Badger's internal logging
	// Cache entries are rebuildable; trade write syncing for latency.
	opts.SyncWrites = false
	opts.CompactL0OnClose = true

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger cache: %w", err)
	}

	if logger != nil {
		logger.Info("cache store opened", "backend", "badger", "path", path)
	}

	return &Cache{db: db, logger: logger}, nil
}

// Get returns the cached value, or (nil, nil) when absent or expired.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var value []byte
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})

	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("cache get %q: %w", key, err)
	}
	return value, nil
}

// Set stores the value with the given TTL. A non-positive TTL stores the
// entry without expiry.
func (c *Cache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	err := c.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry([]byte(key), value)
		if ttl > 0 {
			entry = entry.WithTTL(ttl)
		}
		return txn.SetEntry(entry)
	})
	if err != nil {
		return fmt.Errorf("cache set %q: %w", key, err)
	}
	return nil
}

// Close closes the underlying database.
func (c *Cache) Close() error {
	if c.logger != nil {
		c.logger.Info("closing cache store")
	}
	return c.db.Close()
}
