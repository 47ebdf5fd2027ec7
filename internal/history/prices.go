package history

import (
	"context"
	"strings"
	"time"

	"github.com/partlogicapp/partlogic-server/internal/domain"
	"github.com/partlogicapp/partlogic-server/internal/errors"
)

// RecordSnapshots bulk-inserts snapshots in one transaction. Rows without
// a positive price are skipped. Returns the number inserted.
func (s *Store) RecordSnapshots(ctx context.Context, snapshots []domain.PriceSnapshot) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "begin snapshot transaction")
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO price_snapshots
		 (query, source, part_number, brand, title, price, shipping_cost, condition, url, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "prepare snapshot insert")
	}
	defer stmt.Close()

	now := formatTime(time.Now())
	inserted := 0
	for _, snap := range snapshots {
		if snap.Price <= 0 {
			continue
		}
		if _, err := stmt.ExecContext(ctx,
			snap.Query, snap.Source, strings.ToUpper(snap.PartNumber), snap.Brand,
			snap.Title, snap.Price, snap.ShippingCost, snap.Condition, snap.URL, now); err != nil {
			return 0, errors.Wrap(err, errors.CodeInternal, "insert price snapshot")
		}
		inserted++
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "commit snapshots")
	}
	return inserted, nil
}

// PriceFilter narrows PriceHistory queries. Zero fields are ignored.
type PriceFilter struct {
	PartNumber string
	Brand      string
	Source     string
	Query      string
	Days       int
	Limit      int
}

// PriceHistory returns snapshots newest first, filtered.
func (s *Store) PriceHistory(ctx context.Context, filter PriceFilter) ([]domain.PriceSnapshot, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}
	if filter.Days <= 0 {
		filter.Days = 90
	}

	where := []string{"created_at > datetime('now', ?)"}
	args := []any{daysAgo(filter.Days)}
	if filter.PartNumber != "" {
		where = append(where, "UPPER(part_number) = ?")
		args = append(args, strings.ToUpper(filter.PartNumber))
	}
	if filter.Brand != "" {
		where = append(where, "brand = ? COLLATE NOCASE")
		args = append(args, filter.Brand)
	}
	if filter.Source != "" {
		where = append(where, "source = ?")
		args = append(args, filter.Source)
	}
	if filter.Query != "" {
		where = append(where, "query = ?")
		args = append(args, filter.Query)
	}
	args = append(args, filter.Limit)

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, query, source, COALESCE(part_number,''), COALESCE(brand,''),
		        title, price, COALESCE(shipping_cost,0), COALESCE(condition,''),
		        COALESCE(url,''), created_at
		 FROM price_snapshots
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY created_at DESC, id DESC LIMIT ?`, args...)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "price history")
	}
	defer rows.Close()

	var out []domain.PriceSnapshot
	for rows.Next() {
		var snap domain.PriceSnapshot
		var createdAt string
		if err := rows.Scan(&snap.ID, &snap.Query, &snap.Source, &snap.PartNumber, &snap.Brand,
			&snap.Title, &snap.Price, &snap.ShippingCost, &snap.Condition,
			&snap.URL, &createdAt); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "scan price snapshot")
		}
		snap.CreatedAt = parseTime(createdAt)
		out = append(out, snap)
	}
	return out, rows.Err()
}

// PriceTrends aggregates daily min/avg/max per source for one part number.
func (s *Store) PriceTrends(ctx context.Context, partNumber string, days int) ([]domain.PriceTrend, error) {
	if partNumber == "" {
		return nil, errors.Validation("part number is required for price trends")
	}
	if days <= 0 {
		days = 30
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT date(created_at) AS day, source,
		        AVG(price), MIN(price), MAX(price), COUNT(*)
		 FROM price_snapshots
		 WHERE UPPER(part_number) = ? AND created_at > datetime('now', ?)
		 GROUP BY day, source ORDER BY day ASC, source ASC`,
		strings.ToUpper(partNumber), daysAgo(days))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "price trends")
	}
	defer rows.Close()

	var out []domain.PriceTrend
	for rows.Next() {
		var trend domain.PriceTrend
		if err := rows.Scan(&trend.Date, &trend.Source, &trend.AvgPrice,
			&trend.MinPrice, &trend.MaxPrice, &trend.Observations); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "scan price trend")
		}
		out = append(out, trend)
	}
	return out, rows.Err()
}
