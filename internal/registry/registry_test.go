package registry

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/partlogicapp/partlogic-server/internal/domain"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.json")
	r, err := Open(path, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = r.Close() })
	return r
}

func seedSource(t *testing.T, r *Registry, domainName, category string, priority int) {
	t.Helper()
	_, err := r.Upsert(domain.Source{
		Domain:             domainName,
		Name:               domainName,
		Category:           category,
		Priority:           priority,
		SupportsPartNumber: true,
	})
	require.NoError(t, err)
}

func TestOpenMissingFileIsEmpty(t *testing.T) {
	r := newTestRegistry(t)
	assert.Empty(t, r.All())
	assert.Equal(t, 0, r.Stats().Total)
}

func TestUpsertNormalizesDomain(t *testing.T) {
	r := newTestRegistry(t)

	src, err := r.Upsert(domain.Source{
		Domain:   "https://www.RockAuto.com/en/",
		Name:     "RockAuto",
		Category: "new_parts",
		Tags:     []string{" Retail ", "oem", "retail"},
	})
	require.NoError(t, err)

	assert.Equal(t, "rockauto.com", src.Domain)
	assert.NotEmpty(t, src.ID)
	assert.Equal(t, domain.SourceActive, src.Status)
	assert.Equal(t, domain.SourceTypeBuyable, src.Type)
	assert.Equal(t, []string{"oem", "retail"}, src.Tags)
	assert.False(t, src.AddedAt.IsZero())

	// Upsert by any spelling of the domain updates, not duplicates.
	updated, err := r.Upsert(domain.Source{Domain: "rockauto.com", Name: "RockAuto Inc", Category: "new_parts"})
	require.NoError(t, err)
	assert.Equal(t, src.ID, updated.ID)
	assert.Len(t, r.All(), 1)
}

func TestPersistSurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.json")
	r, err := Open(path, nil)
	require.NoError(t, err)
	seedSource(t, r, "ebay.com", "marketplace", 90)
	require.NoError(t, r.Close())

	reopened, err := Open(path, nil)
	require.NoError(t, err)
	defer reopened.Close()

	src, err := reopened.Get("ebay.com")
	require.NoError(t, err)
	assert.Equal(t, "marketplace", src.Category)
	assert.Equal(t, 90, src.Priority)
}

func TestToggleStatus(t *testing.T) {
	r := newTestRegistry(t)
	seedSource(t, r, "ebay.com", "marketplace", 90)

	src, err := r.ToggleStatus("EBAY.com")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceDisabled, src.Status)

	active, err := r.ActiveSources()
	require.NoError(t, err)
	assert.Empty(t, active)

	src, err = r.ToggleStatus("ebay.com")
	require.NoError(t, err)
	assert.Equal(t, domain.SourceActive, src.Status)

	_, err = r.ToggleStatus("nope.example")
	assert.Error(t, err)
}

func TestSetPriority(t *testing.T) {
	r := newTestRegistry(t)
	seedSource(t, r, "ebay.com", "marketplace", 90)

	src, err := r.SetPriority("ebay.com", 10)
	require.NoError(t, err)
	assert.Equal(t, 10, src.Priority)

	_, err = r.SetPriority("ebay.com", 101)
	assert.Error(t, err, "priority is bounded 0-100")
}

func TestAllOrdersByPriority(t *testing.T) {
	r := newTestRegistry(t)
	seedSource(t, r, "row52.com", "salvage_yard", 45)
	seedSource(t, r, "ebay.com", "marketplace", 90)
	seedSource(t, r, "rockauto.com", "new_parts", 80)

	all := r.All()
	require.Len(t, all, 3)
	assert.Equal(t, "ebay.com", all[0].Domain)
	assert.Equal(t, "rockauto.com", all[1].Domain)
	assert.Equal(t, "row52.com", all[2].Domain)
}

func TestListFilters(t *testing.T) {
	r := newTestRegistry(t)
	seedSource(t, r, "row52.com", "salvage_yard", 45)
	seedSource(t, r, "ebay.com", "marketplace", 90)

	salvage := r.List(Filter{Category: "salvage_yard"})
	require.Len(t, salvage, 1)
	assert.Equal(t, "row52.com", salvage[0].Domain)
}

func TestReloadPicksUpExternalEdit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.json")
	r, err := Open(path, nil)
	require.NoError(t, err)
	defer r.Close()

	// Simulate an external edit and a manual reload (the watcher calls the
	// same path on fsnotify events).
	external := `[{"id":"x","domain":"WWW.FCPEURO.COM","name":"FCP Euro","category":"new_parts",
		"source_type":"buyable","status":"active","priority":70,
		"supports_vin":false,"supports_part_number_search":true,
		"added_at":"2026-01-01T00:00:00Z","updated_at":"2026-01-01T00:00:00Z"}]`
	require.NoError(t, os.WriteFile(path, []byte(external), 0o644))
	require.NoError(t, r.reload())

	src, err := r.Get("fcpeuro.com")
	require.NoError(t, err)
	assert.Equal(t, "fcpeuro.com", src.Domain, "domains are normalized on load")
}

func TestStats(t *testing.T) {
	r := newTestRegistry(t)
	seedSource(t, r, "ebay.com", "marketplace", 90)
	seedSource(t, r, "row52.com", "salvage_yard", 45)
	_, err := r.ToggleStatus("row52.com")
	require.NoError(t, err)

	stats := r.Stats()
	assert.Equal(t, 2, stats.Total)
	assert.Equal(t, 1, stats.Active)
	assert.Equal(t, 1, stats.Disabled)
	assert.Equal(t, 1, stats.ByCategory["marketplace"])
}
