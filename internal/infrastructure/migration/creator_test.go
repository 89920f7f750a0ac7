package migration

import (
	"os"
	"path/filepath"
	"testing"
	"testing/fstest"
	"time"

	"github.com/shopman/backend/migrations"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"add due payments", "add_due_payments"},
		{"Add-Sale-Returns", "add_sale_returns"},
		{"ADD_BATCH_INDEX", "add_batch_index"},
		{"add__bill__status", "add_bill_status"},
		{"Backfill 2026", "backfill_2026"},
		{"   spaces   ", "spaces"},
		{"special!@#$chars", "specialchars"},
		{"trailing_", "trailing"},
		{"_leading", "leading"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeName(tt.input))
		})
	}
}

func TestCreateMigration(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "migrations")
	at := time.Date(2026, 4, 2, 8, 30, 0, 0, time.UTC)

	nm, err := createAt(dir, "add customer notes", "Free-text notes on customers", at)
	require.NoError(t, err)
	assert.Equal(t, "20260402083000", nm.Version)
	assert.Equal(t, filepath.Join(dir, "20260402083000_add_customer_notes.up.sql"), nm.UpPath)
	assert.Equal(t, filepath.Join(dir, "20260402083000_add_customer_notes.down.sql"), nm.DownPath)

	up, err := os.ReadFile(nm.UpPath)
	require.NoError(t, err)
	assert.Contains(t, string(up), "-- Migration: add_customer_notes")
	assert.Contains(t, string(up), "Free-text notes on customers")

	down, err := os.ReadFile(nm.DownPath)
	require.NoError(t, err)
	assert.Contains(t, string(down), "(Rollback)")

	_, err = createAt(dir, "add customer notes", "", at)
	assert.Error(t, err, "an existing pair is never overwritten")
}

func TestCreateMigration_EmptyName(t *testing.T) {
	_, err := CreateMigration(t.TempDir(), "!!!", "")
	assert.ErrorIs(t, err, ErrEmptyName)
}

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"20260302000000_add_returns.up.sql":   {},
		"20260302000000_add_returns.down.sql": {},
		"20260301000000_init.up.sql":          {},
		"20260301000000_init.down.sql":        {},
		"20260303000000_orphan.up.sql":        {},
		"README.md":                           {},
		"subdir.up.sql/x":                     {},
	}

	entries, err := ListMigrations(fsys)
	require.NoError(t, err)
	assert.Equal(t, []Entry{
		{Version: "20260301000000", Name: "init", HasDown: true},
		{Version: "20260302000000", Name: "add_returns", HasDown: true},
		{Version: "20260303000000", Name: "orphan"},
	}, entries)
}

func TestListMigrations_MissingDirectory(t *testing.T) {
	entries, err := ListMigrations(os.DirFS(filepath.Join(t.TempDir(), "absent")))
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	entries, err := ListMigrations(migrations.FS)
	require.NoError(t, err)
	require.NotEmpty(t, entries)
	for _, e := range entries {
		assert.True(t, e.HasDown, "migration %s_%s has no rollback", e.Version, e.Name)
	}
}

func TestEmbeddedSource(t *testing.T) {
	_, err := embeddedSource(nil)
	assert.Error(t, err)

	src, err := embeddedSource(migrations.FS)
	require.NoError(t, err)
	first, err := src.First()
	require.NoError(t, err)
	assert.Equal(t, uint(20260301090000), first)
	require.NoError(t, src.Close())
}

func TestSourceString(t *testing.T) {
	assert.Equal(t, "embedded", Source{FS: migrations.FS}.String())
	assert.Equal(t, "file:///srv/migrations", Source{Dir: "/srv/migrations"}.String())
}
