package persistence

import (
	"testing"

	"github.com/shopman/backend/internal/infrastructure/persistence/models"
	"github.com/shopman/backend/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestMigrations_MatchModelColumns(t *testing.T) {
	fromModels := newTestDB(t)
	fromSQL := testutil.OpenMigratedSQLite(t)

	for _, model := range models.AllModels() {
		stmt := &gorm.Statement{DB: fromModels}
		require.NoError(t, stmt.Parse(model))
		table := stmt.Schema.Table

		t.Run(table, func(t *testing.T) {
			want := testutil.TableColumns(t, fromModels, table)
			got := testutil.TableColumns(t, fromSQL, table)
			require.NotEmpty(t, got, "migration does not create %s", table)
			assert.Equal(t, want, got)
		})
	}
}

func TestMigrations_BatchIDHasNoForeignKey(t *testing.T) {
	db := testutil.OpenMigratedSQLite(t)

	// Lots emptied by a supplier return are deleted while history rows keep
	// pointing at them.
	for _, table := range []string{
		"stock_movements",
		"stock_adjustments",
		"purchase_return_items",
		"sale_items",
		"sale_return_items",
	} {
		var refs []struct {
			Table string
			From  string
		}
		require.NoError(t, db.Raw(`SELECT "table", "from" FROM pragma_foreign_key_list(?)`, table).Scan(&refs).Error)
		for _, ref := range refs {
			assert.False(t, ref.Table == "batches" && ref.From == "batch_id", "%s.batch_id references batches", table)
		}
	}
}
