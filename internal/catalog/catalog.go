// Package catalog is the canonical parts-and-vehicles store: known
// vehicles with free-text aliases, parts with namespaced part numbers,
// and fitments linking the two. Listings stay raw; the catalog is the
// structured layer search results get annotated against.
package catalog

import (
	"context"
	"database/sql"
	"log/slog"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/partlogicapp/partlogic-server/internal/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS vehicles (
	vehicle_id INTEGER PRIMARY KEY AUTOINCREMENT,
	year INTEGER NOT NULL,
	make TEXT NOT NULL,
	model TEXT NOT NULL,
	generation TEXT,
	submodel TEXT,
	trim TEXT,
	body_style TEXT,
	market TEXT,
	created_at TEXT NOT NULL DEFAULT (datetime('now')),
	updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_vehicles_make_model ON vehicles(make, model);
CREATE INDEX IF NOT EXISTS idx_vehicles_year ON vehicles(year);

CREATE TABLE IF NOT EXISTS vehicle_aliases (
	alias_id INTEGER PRIMARY KEY AUTOINCREMENT,
	alias_text TEXT NOT NULL,
	alias_norm TEXT NOT NULL,
	year INTEGER,
	make_raw TEXT,
	model_raw TEXT,
	trim_raw TEXT,
	vehicle_id INTEGER REFERENCES vehicles(vehicle_id),
	source_domain TEXT,
	confidence INTEGER DEFAULT 0,
	created_at TEXT NOT NULL DEFAULT (datetime('now')),
	updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_vehicle_aliases_norm_source ON vehicle_aliases(alias_norm, source_domain);
CREATE INDEX IF NOT EXISTS idx_vehicle_aliases_vehicle ON vehicle_aliases(vehicle_id);
CREATE INDEX IF NOT EXISTS idx_vehicle_aliases_unlinked ON vehicle_aliases(vehicle_id) WHERE vehicle_id IS NULL;

CREATE TABLE IF NOT EXISTS parts (
	part_id INTEGER PRIMARY KEY AUTOINCREMENT,
	part_type TEXT NOT NULL CHECK(part_type IN ('oem','aftermarket','used','universal')),
	brand TEXT,
	name TEXT,
	description TEXT,
	created_at TEXT NOT NULL DEFAULT (datetime('now')),
	updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_parts_type_brand ON parts(part_type, brand);

CREATE TABLE IF NOT EXISTS part_numbers (
	pn_id INTEGER PRIMARY KEY AUTOINCREMENT,
	part_id INTEGER NOT NULL REFERENCES parts(part_id),
	namespace TEXT NOT NULL,
	value TEXT NOT NULL,
	value_norm TEXT NOT NULL,
	source_domain TEXT,
	created_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_part_numbers_ns_value ON part_numbers(namespace, value_norm);
CREATE INDEX IF NOT EXISTS idx_part_numbers_part ON part_numbers(part_id);
CREATE INDEX IF NOT EXISTS idx_part_numbers_value_norm ON part_numbers(value_norm);

CREATE TABLE IF NOT EXISTS fitments (
	fitment_id INTEGER PRIMARY KEY AUTOINCREMENT,
	part_id INTEGER NOT NULL REFERENCES parts(part_id),
	vehicle_id INTEGER REFERENCES vehicles(vehicle_id),
	position TEXT,
	qualifiers_json TEXT,
	confidence INTEGER DEFAULT 100,
	source_domain TEXT,
	created_at TEXT NOT NULL DEFAULT (datetime('now')),
	updated_at TEXT NOT NULL DEFAULT (datetime('now'))
);
CREATE INDEX IF NOT EXISTS idx_fitments_part ON fitments(part_id);
CREATE INDEX IF NOT EXISTS idx_fitments_vehicle ON fitments(vehicle_id);
`

// Store holds the canonical catalog in sqlite plus the bleve keyword
// index over parts.
type Store struct {
	db     *sql.DB
	index  *PartIndex
	logger *slog.Logger
}

// Options configures a catalog store.
type Options struct {
	// DBPath is the sqlite file. Required.
	DBPath string
	// IndexPath is the directory holding the bleve index. Empty disables
	// keyword search.
	IndexPath string
	Logger    *slog.Logger
}

// Open opens the catalog database and its keyword index.
func Open(opts Options) (*Store, error) {
	db, err := sql.Open("sqlite", opts.DBPath)
	if err != nil {
		return nil, errors.Wrapf(err, errors.CodeInternal, "open catalog db %s", opts.DBPath)
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
		return nil, errors.Wrap(err, errors.CodeInternal, "initialize catalog schema")
	}

	s := &Store{db: db, logger: opts.Logger}
	if opts.IndexPath != "" {
		index, err := NewPartIndex(opts.IndexPath, opts.Logger)
		if err != nil {
			db.Close()
			return nil, err
		}
		s.index = index
	}
	return s, nil
}

// Close closes the database and the index.
func (s *Store) Close() error {
	if s.index != nil {
		if err := s.index.Close(); err != nil && s.logger != nil {
			s.logger.Warn("close part index", "error", err)
		}
	}
	return s.db.Close()
}

// Vehicle is one canonical vehicle row.
type Vehicle struct {
	ID         int64  `json:"vehicle_id"`
	Year       int    `json:"year"`
	Make       string `json:"make"`
	Model      string `json:"model"`
	Generation string `json:"generation,omitempty"`
	Submodel   string `json:"submodel,omitempty"`
	Trim       string `json:"trim,omitempty"`
	BodyStyle  string `json:"body_style,omitempty"`
	Market     string `json:"market,omitempty"`
}

// Part is one canonical part, with its part numbers attached on reads.
type Part struct {
	ID          int64        `json:"part_id"`
	Type        string       `json:"part_type"`
	Brand       string       `json:"brand,omitempty"`
	Name        string       `json:"name,omitempty"`
	Description string       `json:"description,omitempty"`
	Numbers     []PartNumber `json:"part_numbers,omitempty"`
}

// PartNumber is one namespaced identifier for a part.
type PartNumber struct {
	ID           int64  `json:"pn_id"`
	PartID       int64  `json:"part_id"`
	Namespace    string `json:"namespace"`
	Value        string `json:"value"`
	ValueNorm    string `json:"value_norm"`
	SourceDomain string `json:"source_domain,omitempty"`
}

// Fitment links a part to a vehicle.
type Fitment struct {
	ID           int64  `json:"fitment_id"`
	PartID       int64  `json:"part_id"`
	VehicleID    int64  `json:"vehicle_id"`
	Position     string `json:"position,omitempty"`
	Confidence   int    `json:"confidence"`
	SourceDomain string `json:"source_domain,omitempty"`
}

// ValueNorm is the matching form of a part number: uppercased with
// spaces, dashes and dots stripped.
func ValueNorm(value string) string {
	return strings.NewReplacer(" ", "", "-", "", ".", "").Replace(strings.ToUpper(strings.TrimSpace(value)))
}

var partTypes = map[string]bool{"oem": true, "aftermarket": true, "used": true, "universal": true}

// AddVehicle inserts a canonical vehicle.
func (s *Store) AddVehicle(ctx context.Context, v Vehicle) (int64, error) {
	if v.Year == 0 || v.Make == "" || v.Model == "" {
		return 0, errors.Validation("vehicle needs year, make and model")
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO vehicles (year, make, model, generation, submodel, trim, body_style, market)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		v.Year, v.Make, v.Model, v.Generation, v.Submodel, v.Trim, v.BodyStyle, v.Market)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "insert vehicle")
	}
	return res.LastInsertId()
}

// GetVehicle returns one vehicle by ID.
func (s *Store) GetVehicle(ctx context.Context, id int64) (*Vehicle, error) {
	var v Vehicle
	err := s.db.QueryRowContext(ctx,
		`SELECT vehicle_id, year, make, model, COALESCE(generation,''), COALESCE(submodel,''),
		        COALESCE(trim,''), COALESCE(body_style,''), COALESCE(market,'')
		 FROM vehicles WHERE vehicle_id = ?`, id).
		Scan(&v.ID, &v.Year, &v.Make, &v.Model, &v.Generation, &v.Submodel, &v.Trim, &v.BodyStyle, &v.Market)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("vehicle %d not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "get vehicle")
	}
	return &v, nil
}

// findVehicle matches year + make + model case-insensitively.
func (s *Store) findVehicle(ctx context.Context, year int, make, model string) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx,
		`SELECT vehicle_id FROM vehicles
		 WHERE year = ? AND LOWER(TRIM(make)) = LOWER(?) AND LOWER(TRIM(model)) = LOWER(?)
		 LIMIT 1`, year, strings.TrimSpace(make), strings.TrimSpace(model)).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, errors.Wrap(err, errors.CodeInternal, "find vehicle")
	}
	return id, true, nil
}

// AddPart inserts a part and its part numbers, and indexes it for
// keyword search.
func (s *Store) AddPart(ctx context.Context, part Part) (int64, error) {
	if !partTypes[part.Type] {
		return 0, errors.Validationf("unknown part type %q", part.Type)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "begin part insert")
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO parts (part_type, brand, name, description) VALUES (?, ?, ?, ?)`,
		part.Type, part.Brand, part.Name, part.Description)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "insert part")
	}
	partID, _ := res.LastInsertId()

	for _, pn := range part.Numbers {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO part_numbers (part_id, namespace, value, value_norm, source_domain)
			 VALUES (?, ?, ?, ?, ?)`,
			partID, pn.Namespace, pn.Value, ValueNorm(pn.Value), pn.SourceDomain); err != nil {
			return 0, errors.Wrapf(err, errors.CodeInternal, "insert part number %s", pn.Value)
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "commit part insert")
	}

	if s.index != nil {
		part.ID = partID
		if err := s.index.IndexPart(part); err != nil && s.logger != nil {
			s.logger.Warn("index part", "part_id", partID, "error", err)
		}
	}
	return partID, nil
}

// GetPart returns one part with its numbers.
func (s *Store) GetPart(ctx context.Context, id int64) (*Part, error) {
	var part Part
	err := s.db.QueryRowContext(ctx,
		`SELECT part_id, part_type, COALESCE(brand,''), COALESCE(name,''), COALESCE(description,'')
		 FROM parts WHERE part_id = ?`, id).
		Scan(&part.ID, &part.Type, &part.Brand, &part.Name, &part.Description)
	if err == sql.ErrNoRows {
		return nil, errors.NotFoundf("part %d not found", id)
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "get part")
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT pn_id, part_id, namespace, value, value_norm, COALESCE(source_domain,'')
		 FROM part_numbers WHERE part_id = ? ORDER BY pn_id`, id)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeInternal, "get part numbers")
	}
	defer rows.Close()
	for rows.Next() {
		var pn PartNumber
		if err := rows.Scan(&pn.ID, &pn.PartID, &pn.Namespace, &pn.Value, &pn.ValueNorm, &pn.SourceDomain); err != nil {
			return nil, errors.Wrap(err, errors.CodeInternal, "scan part number")
		}
		part.Numbers = append(part.Numbers, pn)
	}
	return &part, rows.Err()
}

// AddFitment links a part to a vehicle.
func (s *Store) AddFitment(ctx context.Context, f Fitment) (int64, error) {
	if f.Confidence == 0 {
		f.Confidence = 100
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO fitments (part_id, vehicle_id, position, confidence, source_domain)
		 VALUES (?, ?, ?, ?, ?)`,
		f.PartID, f.VehicleID, f.Position, f.Confidence, f.SourceDomain)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "insert fitment")
	}
	return res.LastInsertId()
}
