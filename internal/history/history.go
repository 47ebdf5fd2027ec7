// Package history persists search history, price snapshots, saved
// searches and price alerts in a local sqlite database.
package history

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	_ "modernc.org/sqlite"

	"github.com/partlogicapp/partlogic-server/internal/domain"
	"github.com/partlogicapp/partlogic-server/internal/errors"
	"github.com/partlogicapp/partlogic-server/internal/id"
)

const schema = `
CREATE TABLE IF NOT EXISTS search_history (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	search_id TEXT NOT NULL,
	query TEXT NOT NULL,
	normalized_query TEXT NOT NULL,
	query_type TEXT,
	vehicle_hint TEXT,
	part_description TEXT,
	sort TEXT DEFAULT 'relevance',
	market_listing_count INTEGER DEFAULT 0,
	salvage_hit_count INTEGER DEFAULT 0,
	external_link_count INTEGER DEFAULT 0,
	source_count INTEGER DEFAULT 0,
	has_interchange INTEGER DEFAULT 0,
	cached INTEGER DEFAULT 0,
	response_time_ms INTEGER,
	vehicle_id INTEGER,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_search_history_query ON search_history(normalized_query);
CREATE INDEX IF NOT EXISTS idx_search_history_created ON search_history(created_at);

CREATE TABLE IF NOT EXISTS price_snapshots (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	query TEXT NOT NULL,
	source TEXT NOT NULL,
	part_number TEXT,
	brand TEXT,
	title TEXT NOT NULL,
	price REAL NOT NULL,
	shipping_cost REAL DEFAULT 0,
	condition TEXT,
	url TEXT,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_price_part_number ON price_snapshots(part_number);
CREATE INDEX IF NOT EXISTS idx_price_source ON price_snapshots(source);
CREATE INDEX IF NOT EXISTS idx_price_created ON price_snapshots(created_at);
CREATE INDEX IF NOT EXISTS idx_price_brand_part ON price_snapshots(brand, part_number);

CREATE TABLE IF NOT EXISTS saved_searches (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	query TEXT NOT NULL,
	normalized_query TEXT NOT NULL,
	vehicle_make TEXT,
	vehicle_model TEXT,
	vehicle_year TEXT,
	vin TEXT,
	sort TEXT DEFAULT 'value',
	price_threshold REAL,
	is_active INTEGER DEFAULT 1,
	created_at TEXT NOT NULL,
	updated_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_saved_searches_query ON saved_searches(normalized_query);
CREATE INDEX IF NOT EXISTS idx_saved_searches_active ON saved_searches(is_active);

CREATE TABLE IF NOT EXISTS price_alerts (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	saved_search_id INTEGER REFERENCES saved_searches(id) ON DELETE CASCADE,
	part_number TEXT,
	brand TEXT,
	target_price REAL NOT NULL,
	current_lowest REAL,
	triggered INTEGER DEFAULT 0,
	triggered_at TEXT,
	source TEXT,
	url TEXT,
	created_at TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_price_alerts_search ON price_alerts(saved_search_id);
CREATE INDEX IF NOT EXISTS idx_price_alerts_active ON price_alerts(triggered) WHERE triggered = 0;
`

// Store is the sqlite-backed history store. Safe for concurrent use; the
// driver serializes writes.
type Store struct {
	db     *sql.DB
	logger *slog.Logger
}

// Open opens (and if needed creates) the history database.
func Open(path string, logger *slog.Logger) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeInternal, "open history db %s", path)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA foreign_keys=ON",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, errors.Wrapf(err, errors.CodeInternal, "apply %s", pragma)
		}
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrap(err, errors.CodeInternal, "initialize history schema")
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// RecordSearch inserts one history row and returns it with its IDs set.
func (s *Store) RecordSearch(ctx context.Context, rec domain.SearchRecord) (*domain.SearchRecord, error) {
	if rec.Sort == "" {
		rec.Sort = "relevance"
	}
	if rec.SearchID == "" {
		searchID, err := id.Generate("search")
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "generate search id")
		}
		rec.SearchID = searchID
	}
	rec.CreatedAt = time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO search_history
		 (search_id, query, normalized_query, query_type, vehicle_hint, part_description,
		  sort, market_listing_count, salvage_hit_count, external_link_count,
		  source_count, has_interchange, cached, response_time_ms, vehicle_id, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.SearchID, rec.Query, rec.NormalizedQuery, string(rec.QueryType), rec.VehicleHint,
		rec.PartDescription, rec.Sort, rec.MarketListingCount, rec.SalvageHitCount,
		rec.ExternalLinkCount, rec.SourceCount, boolInt(rec.HasInterchange), boolInt(rec.Cached),
		rec.ResponseTimeMS, rec.VehicleID, formatTime(rec.CreatedAt))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "record search")
	}
	rec.ID, _ = res.LastInsertId()
	return &rec, nil
}

// RecentSearches returns the newest history rows.
func (s *Store) RecentSearches(ctx context.Context, limit int) ([]domain.SearchRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, search_id, query, normalized_query, COALESCE(query_type,''),
		        COALESCE(vehicle_hint,''), COALESCE(part_description,''), sort,
		        market_listing_count, salvage_hit_count, external_link_count,
		        source_count, has_interchange, cached,
		        COALESCE(response_time_ms,0), vehicle_id, created_at
		 FROM search_history ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "recent searches")
	}
	defer rows.Close()

	var out []domain.SearchRecord
	for rows.Next() {
		var rec domain.SearchRecord
		var queryType, createdAt string
		var hasInterchange, cached int
		if err := rows.Scan(&rec.ID, &rec.SearchID, &rec.Query, &rec.NormalizedQuery, &queryType,
			&rec.VehicleHint, &rec.PartDescription, &rec.Sort,
			&rec.MarketListingCount, &rec.SalvageHitCount, &rec.ExternalLinkCount,
			&rec.SourceCount, &hasInterchange, &cached,
			&rec.ResponseTimeMS, &rec.VehicleID, &createdAt); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "scan search history")
		}
		rec.QueryType = domain.QueryType(queryType)
		rec.HasInterchange = hasInterchange != 0
		rec.Cached = cached != 0
		rec.CreatedAt = parseTime(createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// PopularSearches aggregates the most repeated queries over a window.
func (s *Store) PopularSearches(ctx context.Context, limit, days int) ([]domain.PopularSearch, error) {
	if limit <= 0 {
		limit = 20
	}
	if days <= 0 {
		days = 7
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT normalized_query, COUNT(*) AS count,
		        COALESCE(AVG(market_listing_count), 0),
		        MAX(created_at) AS last_searched
		 FROM search_history
		 WHERE created_at > datetime('now', ?)
		 GROUP BY normalized_query
		 ORDER BY count DESC, last_searched DESC
		 LIMIT ?`, daysAgo(days), limit)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "popular searches")
	}
	defer rows.Close()

	var out []domain.PopularSearch
	for rows.Next() {
		var p domain.PopularSearch
		var lastSearched string
		if err := rows.Scan(&p.NormalizedQuery, &p.Count, &p.AvgListings, &lastSearched); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "scan popular search")
		}
		p.LastSearched = parseTime(lastSearched)
		out = append(out, p)
	}
	return out, rows.Err()
}

// Stats computes aggregate history statistics.
func (s *Store) Stats(ctx context.Context) (*domain.SearchStats, error) {
	stats := &domain.SearchStats{ByQueryType: make(map[string]int64)}

	err := s.db.QueryRowContext(ctx,
		`SELECT COUNT(*), COUNT(DISTINCT normalized_query),
		        COALESCE(AVG(market_listing_count), 0),
		        COALESCE(AVG(response_time_ms), 0)
		 FROM search_history`).
		Scan(&stats.TotalSearches, &stats.UniqueQueries, &stats.AvgListingCount, &stats.AvgResponseMS)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "search stats")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT COALESCE(NULLIF(query_type, ''), 'unknown'), COUNT(*)
		 FROM search_history GROUP BY query_type`)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "search stats by type")
	}
	defer rows.Close()
	for rows.Next() {
		var queryType string
		var count int64
		if err := rows.Scan(&queryType, &count); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "scan stats row")
		}
		stats.ByQueryType[queryType] = count
	}
	return stats, rows.Err()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}

// parseTime reads both our RFC3339 writes and sqlite's datetime() form.
func parseTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}

// daysAgo renders the sqlite datetime modifier for an N-day lookback.
func daysAgo(days int) string {
	if days < 0 {
		days = 0
	}
	digits := ""
	if days == 0 {
		digits = "0"
	}
	for n := days; n > 0; n /= 10 {
		digits = string(rune('0'+n%10)) + digits
	}
	return "-" + digits + " days"
}
