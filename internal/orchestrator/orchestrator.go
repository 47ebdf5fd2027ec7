// Package orchestrator runs the routed connectors concurrently and
// collects exactly one result per connector, whatever happens inside it.
package orchestrator

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"encoding/json/v2"

	"github.com/partlogicapp/partlogic-server/internal/cache"
	"github.com/partlogicapp/partlogic-server/internal/connector"
	"github.com/partlogicapp/partlogic-server/internal/domain"
	"github.com/partlogicapp/partlogic-server/internal/metrics"
	"github.com/partlogicapp/partlogic-server/internal/router"
)

const (
	defaultConnectorTimeout = 15 * time.Second
	defaultCacheTTL         = 6 * time.Hour
)

// Orchestrator fans a routing plan out over the connector set. It never
// returns an error: a failing, panicking, or timed-out connector becomes
// an error-status result while the others proceed.
type Orchestrator struct {
	connectors map[string]connector.Connector
	cache      cache.Cache
	timeout    time.Duration
	cacheTTL   time.Duration
	logger     *slog.Logger
	metrics    *metrics.Metrics
}

// Options configures an Orchestrator. Zero values mean defaults.
type Options struct {
	// ConnectorTimeout is the per-connector deadline (default 15s).
	ConnectorTimeout time.Duration
	// CacheTTL is how long successful results stay cached (default 6h).
	CacheTTL time.Duration
}

func New(connectors map[string]connector.Connector, c cache.Cache, opts Options, logger *slog.Logger, m *metrics.Metrics) *Orchestrator {
	if opts.ConnectorTimeout <= 0 {
		opts.ConnectorTimeout = defaultConnectorTimeout
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = defaultCacheTTL
	}
	if c == nil {
		c = cache.Noop{}
	}
	return &Orchestrator{
		connectors: connectors,
		cache:      c,
		timeout:    opts.ConnectorTimeout,
		cacheTTL:   opts.CacheTTL,
		logger:     logger,
		metrics:    m,
	}
}

// Run executes every task of the plan in parallel and returns one result
// per task, in plan order. Wall clock is bounded by the slowest connector
// timeout; parent context cancellation propagates to every in-flight task.
func (o *Orchestrator) Run(ctx context.Context, plan *router.Plan, opts connector.Options) []domain.ConnectorResult {
	slots := make([]domain.ConnectorResult, len(plan.Tasks))
	var wg sync.WaitGroup

	for i, task := range plan.Tasks {
		wg.Go(func() {
			slots[i] = o.runOne(ctx, task, opts)
		})
	}
	wg.Wait()

	return slots
}

// runOne executes a single task: cache check, timed search, cache write.
// Panics are contained here so one misbehaving connector cannot take the
// search down.
func (o *Orchestrator) runOne(ctx context.Context, task router.Task, opts connector.Options) (result domain.ConnectorResult) {
	result = domain.ConnectorResult{SourceName: task.Connector}

	defer func() {
		if r := recover(); r != nil {
			if o.logger != nil {
				o.logger.Error("connector panicked", "source", task.Connector, "panic", r)
			}
			result = domain.ConnectorResult{
				SourceName: task.Connector,
				Status:     domain.StatusError,
				Error:      fmt.Sprintf("connector panicked: %v", r),
			}
		}
	}()

	conn, ok := o.connectors[task.Connector]
	if !ok {
		result.Status = domain.StatusError
		result.Error = "no such connector"
		return result
	}

	cacheKey := conn.CacheKey(task.Query)
	if cached := o.readCache(ctx, cacheKey); cached != nil {
		o.metrics.CacheHit("connector")
		result.Status = domain.StatusCached
		result.MarketListings = cached.MarketListings
		result.SalvageHits = cached.SalvageHits
		result.ExternalLinks = cached.ExternalLinks
		return result
	}
	o.metrics.CacheMiss("connector")

	done := o.metrics.ConnectorStarted()
	defer done()

	searchCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	start := time.Now()
	searched, err := conn.Search(searchCtx, task.Query, opts)
	elapsed := time.Since(start)

	switch {
	case err != nil && searchCtx.Err() == context.DeadlineExceeded:
		result.Status = domain.StatusError
		result.Error = fmt.Sprintf("timed out after %s", o.timeout)
	case err != nil:
		result.Status = domain.StatusError
		result.Error = err.Error()
	default:
		result.Status = domain.StatusOK
		result.MarketListings = searched.MarketListings
		result.SalvageHits = searched.SalvageHits
		result.ExternalLinks = searched.ExternalLinks
		result.Error = searched.Err
		if searched.Err == "" {
			o.writeCache(ctx, cacheKey, searched)
		}
	}
	o.metrics.ObserveConnector(task.Connector, string(result.Status), elapsed)

	if result.Status == domain.StatusError && o.logger != nil {
		o.logger.Warn("connector failed", "source", task.Connector, "error", result.Error)
	}
	return result
}

// readCache returns the decoded cached result, or nil on miss or any
// cache problem. Cache trouble degrades to a direct fetch, nothing more.
func (o *Orchestrator) readCache(ctx context.Context, key string) *connector.Result {
	data, err := o.cache.Get(ctx, key)
	if err != nil {
		if o.logger != nil {
			o.logger.Warn("cache read failed", "key", key, "error", err)
		}
		return nil
	}
	if data == nil {
		return nil
	}
	var result connector.Result
	if err := json.Unmarshal(data, &result); err != nil {
		if o.logger != nil {
			o.logger.Warn("cache entry corrupt", "key", key, "error", err)
		}
		return nil
	}
	return &result
}

func (o *Orchestrator) writeCache(ctx context.Context, key string, result *connector.Result) {
	data, err := json.Marshal(result)
	if err != nil {
		return
	}
	if err := o.cache.Set(ctx, key, data, o.cacheTTL); err != nil && o.logger != nil {
		o.logger.Warn("cache write failed", "key", key, "error", err)
	}
}
