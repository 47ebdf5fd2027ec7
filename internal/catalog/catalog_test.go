package catalog

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	s, err := Open(Options{
		DBPath:    filepath.Join(dir, "catalog.db"),
		IndexPath: dir,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestNormalizeVehicleString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"  1987 Porsche 944  ", "1987 porsche 944"},
		{"Audi A4 Quattro", "audi a4 quattro"},
		{"Jeep Wrangler 4x4", "jeep wrangler 4wd"},
		{"BMW/328i xDrive", "bmw 328i xdrive"},
		{"Mercedes-Benz C300", "mercedes benz c300"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeVehicleString(tt.in), "input %q", tt.in)
	}
}

func TestParseVehicle(t *testing.T) {
	parsed := ParseVehicle("1987 Porsche 944 Turbo")
	assert.Equal(t, 1987, parsed.Year)
	assert.Equal(t, "porsche", parsed.MakeRaw)
	assert.Equal(t, "944 turbo", parsed.ModelRaw)

	parsed = ParseVehicle("2015 Subaru Outback AWD")
	assert.Equal(t, 2015, parsed.Year)
	assert.Equal(t, "subaru", parsed.MakeRaw)
	assert.Equal(t, "outback", parsed.ModelRaw)
	assert.Equal(t, "awd", parsed.TrimRaw)

	parsed = ParseVehicle("alternator")
	assert.Zero(t, parsed.Year)
	assert.Equal(t, "alternator", parsed.MakeRaw)
	assert.Empty(t, parsed.ModelRaw)
}

func TestResolveVehicleMatchesExisting(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, err := s.AddVehicle(ctx, Vehicle{Year: 1987, Make: "Porsche", Model: "944"})
	require.NoError(t, err)

	result, err := s.ResolveVehicle(ctx, "1987 porsche 944", "")
	require.NoError(t, err)
	require.NotNil(t, result.VehicleID)
	assert.Equal(t, id, *result.VehicleID)
	assert.Equal(t, 90, result.Confidence)
	assert.True(t, result.CreatedAlias)

	// Second resolution hits the linked alias.
	again, err := s.ResolveVehicle(ctx, "1987 Porsche 944", "")
	require.NoError(t, err)
	require.NotNil(t, again.VehicleID)
	assert.Equal(t, id, *again.VehicleID)
	assert.False(t, again.CreatedAlias)
	assert.Equal(t, result.AliasID, again.AliasID)
}

func TestResolveVehicleCreatesAtThreshold(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Full year+make+model parse scores 85 and auto-creates the vehicle.
	result, err := s.ResolveVehicle(ctx, "2003 Honda Civic", "")
	require.NoError(t, err)
	require.NotNil(t, result.VehicleID)
	assert.Equal(t, 85, result.Confidence)

	v, err := s.GetVehicle(ctx, *result.VehicleID)
	require.NoError(t, err)
	assert.Equal(t, "Honda", v.Make)
	assert.Equal(t, "Civic", v.Model)
	assert.Equal(t, 2003, v.Year)
}

func TestResolveVehicleLowConfidenceStaysUnlinked(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Make with no model parses at 60: alias recorded, nothing linked.
	result, err := s.ResolveVehicle(ctx, "2003 Honda", "")
	require.NoError(t, err)
	assert.Nil(t, result.VehicleID)
	assert.Equal(t, 60, result.Confidence)
	assert.True(t, result.CreatedAlias)

	// No year at all scores 30.
	result, err = s.ResolveVehicle(ctx, "some words", "")
	require.NoError(t, err)
	assert.Nil(t, result.VehicleID)
	assert.Equal(t, 30, result.Confidence)

	result, err = s.ResolveVehicle(ctx, "   ", "")
	require.NoError(t, err)
	assert.Nil(t, result.VehicleID)
	assert.Zero(t, result.Confidence)
}

func TestReconcileUnlinkedAliases(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	// Unlinked alias first; its vehicle shows up later.
	_, err := s.ResolveVehicle(ctx, "1991 Volvo", "")
	require.NoError(t, err)

	linked, err := s.ReconcileUnlinkedAliases(ctx, 100)
	require.NoError(t, err)
	assert.Zero(t, linked, "still nothing to link against")
}

func TestCheckFitments(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	vehicleID, err := s.AddVehicle(ctx, Vehicle{Year: 1987, Make: "Porsche", Model: "944"})
	require.NoError(t, err)

	partID, err := s.AddPart(ctx, Part{
		Type:  "oem",
		Brand: "Porsche",
		Name:  "Engine mount",
		Numbers: []PartNumber{
			{Namespace: "oem", Value: "951-375-042-04"},
		},
	})
	require.NoError(t, err)
	_, err = s.AddFitment(ctx, Fitment{PartID: partID, VehicleID: vehicleID, Confidence: 100})
	require.NoError(t, err)

	likelyID, err := s.AddPart(ctx, Part{
		Type:    "aftermarket",
		Brand:   "Corteco",
		Name:    "Engine mount",
		Numbers: []PartNumber{{Namespace: "aftermarket", Value: "CT-4402"}},
	})
	require.NoError(t, err)
	_, err = s.AddFitment(ctx, Fitment{PartID: likelyID, VehicleID: vehicleID, Confidence: 70})
	require.NoError(t, err)

	statuses, err := s.CheckFitments(ctx, []string{"951 375 042 04", "CT4402", "UNKNOWN-PN"}, vehicleID)
	require.NoError(t, err)
	assert.Equal(t, FitConfirmed, statuses["951 375 042 04"], "value_norm match ignores spacing")
	assert.Equal(t, FitLikely, statuses["CT4402"])
	_, present := statuses["UNKNOWN-PN"]
	assert.False(t, present, "unknown parts are omitted, never marked no-fit")

	statuses, err = s.CheckFitments(ctx, []string{"951-375-042-04"}, 0)
	require.NoError(t, err)
	assert.Empty(t, statuses, "no vehicle means no annotations")
}

func TestSearchParts(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddPart(ctx, Part{
		Type:        "aftermarket",
		Brand:       "Bosch",
		Name:        "Alternator 120A",
		Description: "Remanufactured alternator for water-cooled inline fours",
		Numbers:     []PartNumber{{Namespace: "aftermarket", Value: "AL0188X"}},
	})
	require.NoError(t, err)
	_, err = s.AddPart(ctx, Part{
		Type:  "oem",
		Brand: "Lemforder",
		Name:  "Control arm bushing",
	})
	require.NoError(t, err)

	hits, err := s.SearchParts(ctx, "alternator", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Alternator 120A", hits[0].Name)
	assert.Equal(t, "Bosch", hits[0].Brand)

	hits, err = s.SearchParts(ctx, "bushing", 10)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "Lemforder", hits[0].Brand)
}

func TestRebuildIndex(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, name := range []string{"Alternator", "Starter", "Water pump"} {
		_, err := s.AddPart(ctx, Part{Type: "aftermarket", Name: name})
		require.NoError(t, err)
	}

	indexed, err := s.RebuildIndex(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, indexed)
}

func TestValueNorm(t *testing.T) {
	assert.Equal(t, "95137504204", ValueNorm("951-375-042-04"))
	assert.Equal(t, "BP1234", ValueNorm(" bp 12.34 "))
	assert.Equal(t, "", ValueNorm("  "))
}
