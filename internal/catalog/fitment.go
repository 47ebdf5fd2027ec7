package catalog

import (
	"context"

	"github.com/partlogicapp/partlogic-server/internal/errors"
)

// Fitment statuses attached to market listings. There is deliberately no
// "does not fit": absent data means unknown, never a negative claim.
const (
	FitConfirmed = "confirmed_fit"
	FitLikely    = "likely_fit"
)

// confirmedConfidence is the fitment confidence at which a match is
// reported confirmed rather than likely.
const confirmedConfidence = 90

// CheckFitments maps each part number to a fitment status against one
// vehicle. Part numbers without known fitment are left out.
func (s *Store) CheckFitments(ctx context.Context, partNumbers []string, vehicleID int64) (map[string]string, error) {
	if vehicleID == 0 || len(partNumbers) == 0 {
		return map[string]string{}, nil
	}

	out := make(map[string]string)
	for _, raw := range partNumbers {
		norm := ValueNorm(raw)
		if norm == "" {
			continue
		}
		var confidence int
		err := s.db.QueryRowContext(ctx,
			`SELECT COALESCE(MAX(f.confidence), 0)
			 FROM fitments f
			 JOIN part_numbers pn ON pn.part_id = f.part_id
			 WHERE pn.value_norm = ? AND f.vehicle_id = ?`,
			norm, vehicleID).Scan(&confidence)
		if err != nil {
			return nil, errors.Wrapf(err, errors.CodeInternal, "check fitment for %s", raw)
		}
		if confidence == 0 {
			continue
		}
		if confidence >= confirmedConfidence {
			out[raw] = FitConfirmed
		} else {
			out[raw] = FitLikely
		}
	}
	return out, nil
}
