// Package testutil provides common test utilities for the shop backend.
package testutil

import (
	"io/fs"
	"sort"
	"strings"
	"testing"

	"github.com/shopman/backend/migrations"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// OpenSQLite opens an empty in-memory sqlite database with foreign keys on.
func OpenSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

// OpenMigratedSQLite opens an in-memory sqlite database whose schema comes
// from the embedded up migrations rather than from the gorm models.
func OpenMigratedSQLite(t *testing.T) *gorm.DB {
	t.Helper()

	db := OpenSQLite(t)
	ApplyUpMigrations(t, db)
	return db
}

// ApplyUpMigrations executes every *.up.sql file in version order.
// TIMESTAMPTZ becomes DATETIME so the sqlite driver scans it into time.Time.
func ApplyUpMigrations(t *testing.T, db *gorm.DB) {
	t.Helper()

	names, err := fs.Glob(migrations.FS, "*.up.sql")
	require.NoError(t, err)
	require.NotEmpty(t, names)
	sort.Strings(names)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	for _, name := range names {
		raw, err := fs.ReadFile(migrations.FS, name)
		require.NoError(t, err)
		stmt := strings.ReplaceAll(string(raw), "TIMESTAMPTZ", "DATETIME")
		_, err = sqlDB.Exec(stmt)
		require.NoError(t, err, name)
	}
}

// TableColumns lists the column names of table as sqlite reports them.
func TableColumns(t *testing.T, db *gorm.DB, table string) []string {
	t.Helper()

	var cols []struct {
		Name string
	}
	require.NoError(t, db.Raw("SELECT name FROM pragma_table_info(?)", table).Scan(&cols).Error)
	names := make([]string, 0, len(cols))
	for _, c := range cols {
		names = append(names, c.Name)
	}
	sort.Strings(names)
	return names
}
