// Package registry is the JSON-file-backed catalog of every parts source
// the search knows about: retailers, marketplaces, salvage yards, and
// reference sites, with the routing metadata each carries.
package registry

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"encoding/json/v2"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"

	"github.com/partlogicapp/partlogic-server/internal/domain"
	"github.com/partlogicapp/partlogic-server/internal/errors"
	"github.com/partlogicapp/partlogic-server/internal/router"
)

// Registry holds the source catalog in memory and persists it to one JSON
// file. Edits go through the Registry; external edits to the file are
// picked up by the watcher.
type Registry struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	sources map[string]domain.Source // keyed by normalized domain

	done chan struct{}
}

// Filter narrows listing calls.
type Filter struct {
	Status     domain.SourceStatusValue
	SourceType domain.SourceType
	Category   string
	Tag        string
}

// Stats summarizes the registry.
type Stats struct {
	Total        int            `json:"total"`
	Active       int            `json:"active"`
	Disabled     int            `json:"disabled"`
	BySourceType map[string]int `json:"by_source_type"`
	ByCategory   map[string]int `json:"by_category"`
}

// Open loads the registry file, creating an empty registry when the file
// does not exist yet.
func Open(path string, logger *slog.Logger) (*Registry, error) {
	r := &Registry{
		path:    path,
		logger:  logger,
		sources: make(map[string]domain.Source),
		done:    make(chan struct{}),
	}
	if err := r.reload(); err != nil {
		return nil, err
	}
	return r, nil
}

// Watch starts the file watcher so edits made outside this process are
// reflected without a restart. Stops when ctx is cancelled or Close runs.
func (r *Registry) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "create registry watcher")
	}
	// Watch the directory: editors and atomic saves replace the file,
	// which drops a watch placed on the file itself.
	if err := watcher.Add(filepath.Dir(r.path)); err != nil {
		watcher.Close()
		return errors.Wrapf(err, errors.CodeInternal, "watch %s", filepath.Dir(r.path))
	}

	go func() {
		defer watcher.Close()
		var debounce *time.Timer
		for {
			select {
			case <-ctx.Done():
				return
			case <-r.done:
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != filepath.Clean(r.path) {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
					continue
				}
				// Editors fire bursts of events per save.
				if debounce != nil {
					debounce.Stop()
				}
				debounce = time.AfterFunc(200*time.Millisecond, func() {
					if err := r.reload(); err != nil {
						if r.logger != nil {
							r.logger.Warn("registry reload failed", "error", err)
						}
						return
					}
					if r.logger != nil {
						r.logger.Info("source registry reloaded", "path", r.path)
					}
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				if r.logger != nil {
					r.logger.Warn("registry watcher error", "error", err)
				}
			}
		}
	}()
	return nil
}

// Close stops the watcher.
func (r *Registry) Close() error {
	select {
	case <-r.done:
	default:
		close(r.done)
	}
	return nil
}

// reload reads the file into memory. A missing file is an empty registry.
func (r *Registry) reload() error {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			r.mu.Lock()
			r.sources = make(map[string]domain.Source)
			r.mu.Unlock()
			return nil
		}
		return errors.Wrapf(err, errors.CodeInternal, "read registry %s", r.path)
	}

	var sources []domain.Source
	if err := json.Unmarshal(data, &sources); err != nil {
		return errors.Wrapf(err, errors.CodeValidation, "parse registry %s", r.path)
	}

	byDomain := make(map[string]domain.Source, len(sources))
	for _, src := range sources {
		src.Domain = router.NormalizeDomain(src.Domain)
		byDomain[src.Domain] = src
	}

	r.mu.Lock()
	r.sources = byDomain
	r.mu.Unlock()
	return nil
}

// persist writes the registry atomically: temp file in the same
// directory, then rename over the target.
func (r *Registry) persist() error {
	r.mu.RLock()
	sources := make([]domain.Source, 0, len(r.sources))
	for _, src := range r.sources {
		sources = append(sources, src)
	}
	r.mu.RUnlock()

	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Type != sources[j].Type {
			return sources[i].Type < sources[j].Type
		}
		if sources[i].Category != sources[j].Category {
			return sources[i].Category < sources[j].Category
		}
		return sources[i].Domain < sources[j].Domain
	})

	data, err := json.Marshal(sources, json.Deterministic(true))
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "encode registry")
	}

	tmp, err := os.CreateTemp(filepath.Dir(r.path), ".sources-*.json")
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "create registry temp file")
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return errors.Wrap(err, errors.CodeInternal, "write registry")
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, errors.CodeInternal, "close registry temp file")
	}
	if err := os.Rename(tmp.Name(), r.path); err != nil {
		os.Remove(tmp.Name())
		return errors.Wrap(err, errors.CodeInternal, "replace registry file")
	}
	return nil
}

// All returns every source, priority descending then domain ascending.
func (r *Registry) All() []domain.Source {
	r.mu.RLock()
	sources := make([]domain.Source, 0, len(r.sources))
	for _, src := range r.sources {
		sources = append(sources, src)
	}
	r.mu.RUnlock()

	sort.Slice(sources, func(i, j int) bool {
		if sources[i].Priority != sources[j].Priority {
			return sources[i].Priority > sources[j].Priority
		}
		return sources[i].Domain < sources[j].Domain
	})
	return sources
}

// List returns sources matching the filter, in All's order.
func (r *Registry) List(filter Filter) []domain.Source {
	all := r.All()
	out := make([]domain.Source, 0, len(all))
	for _, src := range all {
		if filter.Status != "" && src.Status != filter.Status {
			continue
		}
		if filter.SourceType != "" && src.Type != filter.SourceType {
			continue
		}
		if filter.Category != "" && src.Category != filter.Category {
			continue
		}
		if filter.Tag != "" && !src.HasTag(filter.Tag) {
			continue
		}
		out = append(out, src)
	}
	return out
}

// ActiveSources implements router.SourceLister.
func (r *Registry) ActiveSources() ([]domain.Source, error) {
	return r.List(Filter{Status: domain.SourceActive}), nil
}

// Get returns one source by domain.
func (r *Registry) Get(domainName string) (*domain.Source, error) {
	key := router.NormalizeDomain(domainName)
	r.mu.RLock()
	src, ok := r.sources[key]
	r.mu.RUnlock()
	if !ok {
		return nil, errors.NotFoundf("source %q not in registry", domainName)
	}
	return &src, nil
}

// Upsert inserts or updates a source keyed by its normalized domain.
func (r *Registry) Upsert(src domain.Source) (*domain.Source, error) {
	src.Domain = router.NormalizeDomain(src.Domain)
	if src.Domain == "" {
		return nil, errors.Validation("source domain is required")
	}
	if src.Status == "" {
		src.Status = domain.SourceActive
	}
	if src.Type == "" {
		src.Type = domain.SourceTypeBuyable
	}
	src.Tags = normalizeTags(src.Tags)
	now := time.Now().UTC()

	r.mu.Lock()
	if existing, ok := r.sources[src.Domain]; ok {
		src.ID = existing.ID
		src.AddedAt = existing.AddedAt
	} else {
		src.ID = uuid.NewString()
		src.AddedAt = now
	}
	src.UpdatedAt = now
	r.sources[src.Domain] = src
	r.mu.Unlock()

	if err := r.persist(); err != nil {
		return nil, err
	}
	return &src, nil
}

// ToggleStatus flips a source between active and disabled.
func (r *Registry) ToggleStatus(domainName string) (*domain.Source, error) {
	key := router.NormalizeDomain(domainName)

	r.mu.Lock()
	src, ok := r.sources[key]
	if !ok {
		r.mu.Unlock()
		return nil, errors.NotFoundf("source %q not in registry", domainName)
	}
	if src.Status == domain.SourceActive {
		src.Status = domain.SourceDisabled
	} else {
		src.Status = domain.SourceActive
	}
	src.UpdatedAt = time.Now().UTC()
	r.sources[key] = src
	r.mu.Unlock()

	if err := r.persist(); err != nil {
		return nil, err
	}
	return &src, nil
}

// SetPriority updates a source's routing priority (0-100).
func (r *Registry) SetPriority(domainName string, priority int) (*domain.Source, error) {
	if priority < 0 || priority > 100 {
		return nil, errors.Validationf("priority %d out of range 0-100", priority)
	}
	key := router.NormalizeDomain(domainName)

	r.mu.Lock()
	src, ok := r.sources[key]
	if !ok {
		r.mu.Unlock()
		return nil, errors.NotFoundf("source %q not in registry", domainName)
	}
	src.Priority = priority
	src.UpdatedAt = time.Now().UTC()
	r.sources[key] = src
	r.mu.Unlock()

	if err := r.persist(); err != nil {
		return nil, err
	}
	return &src, nil
}

// Stats summarizes the registry by status, type and category.
func (r *Registry) Stats() Stats {
	all := r.All()
	stats := Stats{
		Total:        len(all),
		BySourceType: make(map[string]int),
		ByCategory:   make(map[string]int),
	}
	for _, src := range all {
		switch src.Status {
		case domain.SourceActive:
			stats.Active++
		case domain.SourceDisabled:
			stats.Disabled++
		}
		stats.BySourceType[string(src.Type)]++
		stats.ByCategory[src.Category]++
	}
	return stats
}

func normalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
