package catalog

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"

	"github.com/partlogicapp/partlogic-server/internal/errors"
)

// indexMappingVersion is bumped whenever the part mapping changes, which
// forces a rebuild of the on-disk index at startup.
const indexMappingVersion = "1"

// PartIndex is the bleve keyword index over canonical parts.
//
// All public methods are safe for concurrent use; the mutex guards the
// underlying index during rebuilds.
type PartIndex struct {
	index  bleve.Index
	path   string
	logger *slog.Logger
	mu     sync.RWMutex
}

// NewPartIndex opens the index at dir, rebuilding it when the mapping
// version changed or the existing index cannot be opened.
func NewPartIndex(dir string, logger *slog.Logger) (*PartIndex, error) {
	indexPath := filepath.Join(dir, "parts.bleve")
	versionPath := filepath.Join(dir, "parts.version")

	rebuild := false
	if _, err := os.Stat(indexPath); err == nil {
		version, readErr := os.ReadFile(versionPath)
		if readErr != nil || string(version) != indexMappingVersion {
			rebuild = true
		}
	}

	var index bleve.Index
	var err error
	if !rebuild {
		index, err = bleve.Open(indexPath)
		if err != nil {
			if logger != nil {
				logger.Warn("part index unreadable, recreating", "path", indexPath, "error", err)
			}
			rebuild = true
		}
	}
	if rebuild {
		if err := os.RemoveAll(indexPath); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "remove stale part index")
		}
		index = nil
	}
	if index == nil {
		index, err = bleve.New(indexPath, buildPartMapping())
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "create part index")
		}
		if writeErr := os.WriteFile(versionPath, []byte(indexMappingVersion), 0o644); writeErr != nil && logger != nil {
			logger.Warn("write part index version", "error", writeErr)
		}
	}
	return &PartIndex{index: index, path: indexPath, logger: logger}, nil
}

func buildPartMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	nameField := bleve.NewTextFieldMapping()
	nameField.Analyzer = en.AnalyzerName
	nameField.Store = true
	nameField.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("name", nameField)

	descField := bleve.NewTextFieldMapping()
	descField.Analyzer = en.AnalyzerName
	descField.Store = false
	docMapping.AddFieldMappingsAt("description", descField)

	brandField := bleve.NewTextFieldMapping()
	brandField.Analyzer = en.AnalyzerName
	brandField.Store = true
	docMapping.AddFieldMappingsAt("brand", brandField)

	// Exact-match fields.
	typeField := bleve.NewTextFieldMapping()
	typeField.Analyzer = keyword.Name
	typeField.Store = true
	docMapping.AddFieldMappingsAt("part_type", typeField)

	pnField := bleve.NewTextFieldMapping()
	pnField.Analyzer = keyword.Name
	pnField.Store = true
	docMapping.AddFieldMappingsAt("part_numbers", pnField)

	indexMapping.DefaultMapping = docMapping
	return indexMapping
}

// Close closes the index.
func (p *PartIndex) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.index.Close()
}

// IndexPart indexes one part, replacing any previous document.
func (p *PartIndex) IndexPart(part Part) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	numbers := make([]string, 0, len(part.Numbers))
	for _, pn := range part.Numbers {
		numbers = append(numbers, ValueNorm(pn.Value))
	}
	// Lowercase field names to match the mapping.
	doc := map[string]any{
		"name":         part.Name,
		"description":  part.Description,
		"brand":        part.Brand,
		"part_type":    part.Type,
		"part_numbers": numbers,
	}
	return p.index.Index(strconv.FormatInt(part.ID, 10), doc)
}

// PartHit is one keyword-search result.
type PartHit struct {
	PartID int64   `json:"part_id"`
	Score  float64 `json:"score"`
	Name   string  `json:"name,omitempty"`
	Brand  string  `json:"brand,omitempty"`
	Type   string  `json:"part_type,omitempty"`
}

// SearchParts runs a keyword match over brand, name and description.
func (p *PartIndex) SearchParts(ctx context.Context, queryText string, limit int) ([]PartHit, error) {
	if limit <= 0 {
		limit = 20
	}
	p.mu.RLock()
	defer p.mu.RUnlock()

	match := bleve.NewMatchQuery(queryText)
	request := bleve.NewSearchRequestOptions(match, limit, 0, false)
	request.Fields = []string{"name", "brand", "part_type"}

	result, err := p.index.SearchInContext(ctx, request)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "search parts")
	}

	hits := make([]PartHit, 0, len(result.Hits))
	for _, hit := range result.Hits {
		partID, err := strconv.ParseInt(hit.ID, 10, 64)
		if err != nil {
			continue
		}
		h := PartHit{PartID: partID, Score: hit.Score}
		if name, ok := hit.Fields["name"].(string); ok {
			h.Name = name
		}
		if brand, ok := hit.Fields["brand"].(string); ok {
			h.Brand = brand
		}
		if partType, ok := hit.Fields["part_type"].(string); ok {
			h.Type = partType
		}
		hits = append(hits, h)
	}
	return hits, nil
}

// SearchParts is the store-level entry; it returns nothing when the
// index is disabled.
func (s *Store) SearchParts(ctx context.Context, queryText string, limit int) ([]PartHit, error) {
	if s.index == nil {
		return nil, nil
	}
	return s.index.SearchParts(ctx, queryText, limit)
}

// RebuildIndex re-indexes every part from sqlite.
func (s *Store) RebuildIndex(ctx context.Context) (int, error) {
	if s.index == nil {
		return 0, nil
	}
	rows, err := s.db.QueryContext(ctx, `SELECT part_id FROM parts ORDER BY part_id`)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "list parts for reindex")
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, errors.Wrap(err, errors.CodeInternal, "scan part id")
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "iterate parts")
	}

	indexed := 0
	for _, id := range ids {
		part, err := s.GetPart(ctx, id)
		if err != nil {
			return indexed, err
		}
		if err := s.index.IndexPart(*part); err != nil {
			return indexed, errors.Wrapf(err, errors.CodeInternal, "index part %d", id)
		}
		indexed++
	}
	return indexed, nil
}
