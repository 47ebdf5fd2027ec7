package history

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/partlogicapp/partlogic-server/internal/domain"
	"github.com/partlogicapp/partlogic-server/internal/errors"
	"github.com/partlogicapp/partlogic-server/internal/query"
)

// SaveSearch inserts a saved search.
func (s *Store) SaveSearch(ctx context.Context, saved domain.SavedSearch) (*domain.SavedSearch, error) {
	saved.Query = strings.TrimSpace(saved.Query)
	if saved.Query == "" {
		return nil, errors.Validation("saved search query is required")
	}
	if saved.Sort == "" {
		saved.Sort = "value"
	}
	saved.NormalizedQuery = query.NormalizeQuery(saved.Query)
	now := time.Now().UTC()

	res, err := s.db.ExecContext(ctx,
		`INSERT INTO saved_searches
		 (query, normalized_query, vehicle_make, vehicle_model, vehicle_year, vin,
		  sort, price_threshold, is_active, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1, ?, ?)`,
		saved.Query, saved.NormalizedQuery, saved.VehicleMake, saved.VehicleModel,
		saved.VehicleYear, saved.VIN, saved.Sort, saved.PriceThreshold,
		formatTime(now), formatTime(now))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "save search")
	}
	saved.ID, _ = res.LastInsertId()
	saved.Active = true
	saved.CreatedAt = now
	saved.UpdatedAt = now
	return &saved, nil
}

// SavedSearches lists saved searches, active ones first, newest first.
func (s *Store) SavedSearches(ctx context.Context, activeOnly bool) ([]domain.SavedSearch, error) {
	q := `SELECT id, query, normalized_query, COALESCE(vehicle_make,''),
	             COALESCE(vehicle_model,''), COALESCE(vehicle_year,''), COALESCE(vin,''),
	             sort, price_threshold, is_active, created_at, updated_at
	      FROM saved_searches`
	if activeOnly {
		q += ` WHERE is_active = 1`
	}
	q += ` ORDER BY is_active DESC, created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "list saved searches")
	}
	defer rows.Close()

	var out []domain.SavedSearch
	for rows.Next() {
		saved, err := scanSavedSearch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *saved)
	}
	return out, rows.Err()
}

// GetSavedSearch returns one saved search by ID.
func (s *Store) GetSavedSearch(ctx context.Context, id int64) (*domain.SavedSearch, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, query, normalized_query, COALESCE(vehicle_make,''),
		        COALESCE(vehicle_model,''), COALESCE(vehicle_year,''), COALESCE(vin,''),
		        sort, price_threshold, is_active, created_at, updated_at
		 FROM saved_searches WHERE id = ?`, id)
	saved, err := scanSavedSearch(row)
	if err != nil {
		if isNoRows(err) {
			return nil, errors.NotFoundf("saved search %d not found", id)
		}
		return nil, err
	}
	return saved, nil
}

// DeleteSavedSearch removes a saved search; its alerts cascade.
func (s *Store) DeleteSavedSearch(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM saved_searches WHERE id = ?`, id)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "delete saved search")
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return errors.NotFoundf("saved search %d not found", id)
	}
	return nil
}

// SetSavedSearchActive flips a saved search on or off.
func (s *Store) SetSavedSearchActive(ctx context.Context, id int64, active bool) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE saved_searches SET is_active = ?, updated_at = ? WHERE id = ?`,
		boolInt(active), formatTime(time.Now()), id)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "update saved search")
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return errors.NotFoundf("saved search %d not found", id)
	}
	return nil
}

// CreateAlert binds a price alert to an existing saved search.
func (s *Store) CreateAlert(ctx context.Context, alert domain.PriceAlert) (*domain.PriceAlert, error) {
	if alert.TargetPrice <= 0 {
		return nil, errors.Validation("alert target price must be positive")
	}
	if _, err := s.GetSavedSearch(ctx, alert.SavedSearchID); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO price_alerts (saved_search_id, part_number, brand, target_price, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		alert.SavedSearchID, strings.ToUpper(alert.PartNumber), alert.Brand,
		alert.TargetPrice, formatTime(now))
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "create price alert")
	}
	alert.ID, _ = res.LastInsertId()
	alert.PartNumber = strings.ToUpper(alert.PartNumber)
	alert.CreatedAt = now
	return &alert, nil
}

// PendingAlerts returns untriggered alerts on active saved searches.
func (s *Store) PendingAlerts(ctx context.Context) ([]domain.PriceAlert, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT a.id, a.saved_search_id, COALESCE(a.part_number,''), COALESCE(a.brand,''),
		        a.target_price, a.current_lowest, a.triggered, a.triggered_at,
		        COALESCE(a.source,''), COALESCE(a.url,''), a.created_at
		 FROM price_alerts a
		 JOIN saved_searches s ON s.id = a.saved_search_id
		 WHERE a.triggered = 0 AND s.is_active = 1
		 ORDER BY a.id`)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "pending alerts")
	}
	defer rows.Close()

	var out []domain.PriceAlert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *alert)
	}
	return out, rows.Err()
}

// AlertsForSearch lists every alert on one saved search.
func (s *Store) AlertsForSearch(ctx context.Context, savedSearchID int64) ([]domain.PriceAlert, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, saved_search_id, COALESCE(part_number,''), COALESCE(brand,''),
		        target_price, current_lowest, triggered, triggered_at,
		        COALESCE(source,''), COALESCE(url,''), created_at
		 FROM price_alerts WHERE saved_search_id = ? ORDER BY id`, savedSearchID)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "alerts for search")
	}
	defer rows.Close()

	var out []domain.PriceAlert
	for rows.Next() {
		alert, err := scanAlert(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *alert)
	}
	return out, rows.Err()
}

// CheckAlerts compares every pending alert against the lowest snapshot
// seen in the last seven days and fires those at or below target. Each
// fired alert is marked triggered so it fires once.
func (s *Store) CheckAlerts(ctx context.Context) ([]domain.TriggeredAlert, error) {
	pending, err := s.PendingAlerts(ctx)
	if err != nil {
		return nil, err
	}

	var fired []domain.TriggeredAlert
	for _, alert := range pending {
		saved, err := s.GetSavedSearch(ctx, alert.SavedSearchID)
		if err != nil {
			continue
		}

		lowest, source, url, err := s.lowestRecentPrice(ctx, alert, saved.Query)
		if err != nil {
			if s.logger != nil {
				s.logger.Warn("alert check failed", "alert_id", alert.ID, "error", err)
			}
			continue
		}
		if lowest <= 0 {
			continue
		}

		// Track the best price seen even when it hasn't hit target yet.
		if _, err := s.db.ExecContext(ctx,
			`UPDATE price_alerts SET current_lowest = ? WHERE id = ? AND triggered = 0`,
			lowest, alert.ID); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "update alert lowest price")
		}
		if lowest > alert.TargetPrice {
			continue
		}

		res, err := s.db.ExecContext(ctx,
			`UPDATE price_alerts
			 SET triggered = 1, triggered_at = ?, current_lowest = ?, source = ?, url = ?
			 WHERE id = ? AND triggered = 0`,
			formatTime(time.Now()), lowest, source, url, alert.ID)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "trigger price alert")
		}
		if affected, _ := res.RowsAffected(); affected == 0 {
			continue
		}
		fired = append(fired, domain.TriggeredAlert{
			AlertID:       alert.ID,
			Query:         saved.Query,
			PartNumber:    alert.PartNumber,
			TargetPrice:   alert.TargetPrice,
			CurrentLowest: lowest,
			Source:        source,
			URL:           url,
		})
	}
	return fired, nil
}

// lowestRecentPrice finds the cheapest 7-day snapshot matching the alert:
// by part number when the alert names one, otherwise by the saved query,
// narrowed by brand when set.
func (s *Store) lowestRecentPrice(ctx context.Context, alert domain.PriceAlert, savedQuery string) (float64, string, string, error) {
	where := []string{"created_at > datetime('now', '-7 days')", "price > 0"}
	var args []any
	if alert.PartNumber != "" {
		where = append(where, "UPPER(part_number) = ?")
		args = append(args, strings.ToUpper(alert.PartNumber))
	} else {
		where = append(where, "query = ?")
		args = append(args, savedQuery)
	}
	if alert.Brand != "" {
		where = append(where, "brand = ? COLLATE NOCASE")
		args = append(args, alert.Brand)
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT price, source, COALESCE(url,'')
		 FROM price_snapshots
		 WHERE `+strings.Join(where, " AND ")+`
		 ORDER BY price ASC LIMIT 1`, args...)

	var price float64
	var source, url string
	if err := row.Scan(&price, &source, &url); err != nil {
		if isNoRows(err) {
			return 0, "", "", nil
		}
		return 0, "", "", errors.Wrap(err, errors.CodeInternal, "query recent snapshot minimum")
	}
	return price, source, url, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSavedSearch(row rowScanner) (*domain.SavedSearch, error) {
	var saved domain.SavedSearch
	var active int
	var createdAt, updatedAt string
	if err := row.Scan(&saved.ID, &saved.Query, &saved.NormalizedQuery, &saved.VehicleMake,
		&saved.VehicleModel, &saved.VehicleYear, &saved.VIN,
		&saved.Sort, &saved.PriceThreshold, &active, &createdAt, &updatedAt); err != nil {
		if isNoRows(err) {
			return nil, err
		}
		return nil, errors.Wrap(err, errors.CodeInternal, "scan saved search")
	}
	saved.Active = active != 0
	saved.CreatedAt = parseTime(createdAt)
	saved.UpdatedAt = parseTime(updatedAt)
	return &saved, nil
}

func scanAlert(row rowScanner) (*domain.PriceAlert, error) {
	var alert domain.PriceAlert
	var triggered int
	var triggeredAt sql.NullString
	var createdAt string
	if err := row.Scan(&alert.ID, &alert.SavedSearchID, &alert.PartNumber, &alert.Brand,
		&alert.TargetPrice, &alert.CurrentLowest, &triggered, &triggeredAt,
		&alert.Source, &alert.URL, &createdAt); err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "scan price alert")
	}
	alert.Triggered = triggered != 0
	if triggeredAt.Valid && triggeredAt.String != "" {
		t := parseTime(triggeredAt.String)
		alert.TriggeredAt = &t
	}
	alert.CreatedAt = parseTime(createdAt)
	return &alert, nil
}

func isNoRows(err error) bool {
	return err == sql.ErrNoRows
}
