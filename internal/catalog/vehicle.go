package catalog

import (
	"context"
	"database/sql"
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/partlogicapp/partlogic-server/internal/errors"
)

// linkThreshold is the minimum confidence (0-100) at which an alias is
// auto-linked to a canonical vehicle.
const linkThreshold = 85

// Drivetrain tokens folded to one spelling in alias_norm.
var drivetrainAliases = map[string]string{
	"quattro": "quattro",
	"4motion": "4motion",
	"4matic":  "4matic",
	"xdrive":  "xdrive",
	"awd":     "awd",
	"4wd":     "4wd",
	"4x4":     "4wd",
	"fwd":     "fwd",
	"rwd":     "rwd",
	"2wd":     "2wd",
}

var (
	vehicleYearPattern = regexp.MustCompile(`\b(19[6-9]\d|20[0-3]\d)\b`)
	separatorPattern   = regexp.MustCompile(`[\s/\-]+`)

	titleCaser = cases.Title(language.English)
)

// NormalizeVehicleString produces the matching form of a free-text
// vehicle string: lowercased, separators collapsed to single spaces,
// drivetrain tokens folded.
func NormalizeVehicleString(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}
	s = separatorPattern.ReplaceAllString(s, " ")
	tokens := strings.Fields(s)
	for i, token := range tokens {
		if canonical, ok := drivetrainAliases[token]; ok {
			tokens[i] = canonical
		}
	}
	return strings.Join(tokens, " ")
}

// ParsedVehicle is the loose year/make/model split of a vehicle string.
// Raw fields keep the user's spelling; nothing here is canonical yet.
type ParsedVehicle struct {
	Year      int
	MakeRaw   string
	ModelRaw  string
	TrimRaw   string
	AliasNorm string
	AliasText string
}

// ParseVehicle splits a loose vehicle string into year, make, model and
// trim. The first non-year token is taken as the make, a trailing
// drivetrain token as the trim, everything between as the model.
func ParseVehicle(text string) ParsedVehicle {
	parsed := ParsedVehicle{
		AliasNorm: NormalizeVehicleString(text),
		AliasText: strings.TrimSpace(text),
	}
	norm := parsed.AliasNorm

	if m := vehicleYearPattern.FindStringIndex(norm); m != nil {
		parsed.Year = atoiYear(norm[m[0]:m[1]])
		norm = strings.Join(strings.Fields(norm[:m[0]]+" "+norm[m[1]:]), " ")
	}

	tokens := strings.Fields(norm)
	if len(tokens) == 0 {
		return parsed
	}
	parsed.MakeRaw = tokens[0]
	if len(tokens) > 1 {
		parsed.ModelRaw = strings.Join(tokens[1:], " ")
	}
	if len(tokens) > 2 {
		if _, ok := drivetrainAliases[tokens[len(tokens)-1]]; ok {
			parsed.TrimRaw = tokens[len(tokens)-1]
			parsed.ModelRaw = strings.Join(tokens[1:len(tokens)-1], " ")
		}
	}
	return parsed
}

func atoiYear(s string) int {
	year := 0
	for _, r := range s {
		year = year*10 + int(r-'0')
	}
	return year
}

// ResolveResult is the outcome of resolving a loose vehicle string.
type ResolveResult struct {
	// VehicleID is set only when confidence reached the link threshold.
	VehicleID    *int64 `json:"vehicle_id,omitempty"`
	Confidence   int    `json:"confidence"`
	ParsedYear   int    `json:"parsed_year,omitempty"`
	ParsedMake   string `json:"parsed_make,omitempty"`
	ParsedModel  string `json:"parsed_model,omitempty"`
	AliasID      int64  `json:"alias_id,omitempty"`
	CreatedAlias bool   `json:"created_alias"`
}

// ResolveVehicle maps a loose vehicle string to a canonical vehicle.
// Already-linked aliases resolve immediately; otherwise the string is
// parsed, matched (or created) against the vehicles table, and the alias
// is upserted with its confidence. Raw strings are never altered.
func (s *Store) ResolveVehicle(ctx context.Context, aliasText, sourceDomain string) (*ResolveResult, error) {
	if strings.TrimSpace(aliasText) == "" {
		return &ResolveResult{}, nil
	}
	parsed := ParseVehicle(aliasText)
	result := &ResolveResult{
		ParsedYear:  parsed.Year,
		ParsedMake:  parsed.MakeRaw,
		ParsedModel: parsed.ModelRaw,
	}

	// 1) An alias already linked for this norm + source wins outright.
	var aliasID int64
	var linkedVehicle sql.NullInt64
	var confidence sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT alias_id, vehicle_id, confidence FROM vehicle_aliases
		 WHERE alias_norm = ? AND COALESCE(source_domain,'') = ? LIMIT 1`,
		parsed.AliasNorm, sourceDomain).Scan(&aliasID, &linkedVehicle, &confidence)
	if err != nil && err != sql.ErrNoRows {
		return nil, errors.Wrap(err, errors.CodeInternal, "look up vehicle alias")
	}
	if err == nil && linkedVehicle.Valid {
		result.VehicleID = &linkedVehicle.Int64
		result.Confidence = int(confidence.Int64)
		result.AliasID = aliasID
		return result, nil
	}

	// 2) Parse and match (or create) a canonical vehicle.
	var vehicleID int64
	var haveVehicle bool
	if parsed.Year != 0 && parsed.MakeRaw != "" {
		id, found, err := s.findVehicle(ctx, parsed.Year, parsed.MakeRaw, parsed.ModelRaw)
		if err != nil {
			return nil, err
		}
		if found {
			vehicleID, haveVehicle = id, true
			result.Confidence = 90
		} else {
			result.Confidence = parseConfidence(parsed)
			if result.Confidence >= linkThreshold {
				id, err := s.AddVehicle(ctx, Vehicle{
					Year:  parsed.Year,
					Make:  titleCaser.String(parsed.MakeRaw),
					Model: titleCaser.String(parsed.ModelRaw),
					Trim:  parsed.TrimRaw,
				})
				if err != nil {
					return nil, err
				}
				vehicleID, haveVehicle = id, true
				if s.logger != nil {
					s.logger.Info("created canonical vehicle", "vehicle_id", id, "alias", parsed.AliasNorm)
				}
			}
		}
	} else {
		result.Confidence = parseConfidence(parsed)
	}

	// 3) Upsert the alias; link only at or above the threshold.
	var linkID *int64
	if haveVehicle && result.Confidence >= linkThreshold {
		linkID = &vehicleID
		result.VehicleID = &vehicleID
	}
	aliasID, created, err := s.upsertAlias(ctx, parsed, sourceDomain, linkID, result.Confidence, aliasID)
	if err != nil {
		return nil, err
	}
	result.AliasID = aliasID
	result.CreatedAlias = created
	return result, nil
}

// parseConfidence scores how much of a vehicle the parse recovered.
func parseConfidence(parsed ParsedVehicle) int {
	switch {
	case parsed.Year == 0 || parsed.MakeRaw == "":
		return 30
	case parsed.ModelRaw == "":
		return 60
	default:
		return 85
	}
}

func (s *Store) upsertAlias(ctx context.Context, parsed ParsedVehicle, sourceDomain string, vehicleID *int64, confidence int, existingID int64) (int64, bool, error) {
	if existingID != 0 {
		_, err := s.db.ExecContext(ctx,
			`UPDATE vehicle_aliases
			 SET year=?, make_raw=?, model_raw=?, trim_raw=?, vehicle_id=?, confidence=?, updated_at=datetime('now')
			 WHERE alias_id=?`,
			parsed.Year, parsed.MakeRaw, parsed.ModelRaw, parsed.TrimRaw, vehicleID, confidence, existingID)
		if err != nil {
			return 0, false, errors.Wrap(err, errors.CodeInternal, "update vehicle alias")
		}
		return existingID, false, nil
	}
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO vehicle_aliases
		 (alias_text, alias_norm, year, make_raw, model_raw, trim_raw, vehicle_id, source_domain, confidence)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		parsed.AliasText, parsed.AliasNorm, parsed.Year, parsed.MakeRaw, parsed.ModelRaw,
		parsed.TrimRaw, vehicleID, sourceDomain, confidence)
	if err != nil {
		return 0, false, errors.Wrap(err, errors.CodeInternal, "insert vehicle alias")
	}
	id, _ := res.LastInsertId()
	return id, true, nil
}

// ReconcileUnlinkedAliases re-runs resolution over aliases that never
// linked, picking up vehicles added since. Returns how many linked.
func (s *Store) ReconcileUnlinkedAliases(ctx context.Context, limit int) (int, error) {
	if limit <= 0 {
		limit = 500
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT alias_text, COALESCE(source_domain,'') FROM vehicle_aliases
		 WHERE vehicle_id IS NULL AND alias_norm != ''
		 ORDER BY alias_id LIMIT ?`, limit)
	if err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "list unlinked aliases")
	}
	defer rows.Close()

	type pending struct{ text, source string }
	var candidates []pending
	for rows.Next() {
		var p pending
		if err := rows.Scan(&p.text, &p.source); err != nil {
			return 0, errors.Wrap(err, errors.CodeInternal, "scan unlinked alias")
		}
		candidates = append(candidates, p)
	}
	if err := rows.Err(); err != nil {
		return 0, errors.Wrap(err, errors.CodeInternal, "iterate unlinked aliases")
	}

	linked := 0
	for _, c := range candidates {
		result, err := s.ResolveVehicle(ctx, c.text, c.source)
		if err != nil {
			return linked, err
		}
		if result.VehicleID != nil {
			linked++
		}
	}
	return linked, nil
}
