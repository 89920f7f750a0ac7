package inventory

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestNewBatch(t *testing.T) {
	productID := uuid.New()

	t.Run("starts with current equal to quantity", func(t *testing.T) {
		b, err := NewBatch(productID, "B-1", 10, date(2026, 1, 1), date(2027, 1, 1))
		require.NoError(t, err)
		assert.Equal(t, 10, b.Quantity)
		assert.Equal(t, 10, b.CurrentQuantity)
	})

	t.Run("expiry must follow manufacture", func(t *testing.T) {
		_, err := NewBatch(productID, "B-1", 10, date(2026, 1, 1), date(2026, 1, 1))
		require.Error(t, err)
		assert.True(t, shared.IsDomainError(err, shared.CodeInvalidDateRange))
	})

	t.Run("requires batch number", func(t *testing.T) {
		_, err := NewBatch(productID, " ", 10, nil, nil)
		require.Error(t, err)
	})

	t.Run("rejects negative quantity", func(t *testing.T) {
		_, err := NewBatch(productID, "B-1", -1, nil, nil)
		require.Error(t, err)
	})
}

func TestBatch_StockOperations(t *testing.T) {
	b, err := NewBatch(uuid.New(), "B-7", 10, nil, nil)
	require.NoError(t, err)

	require.NoError(t, b.RemoveStock(4))
	assert.Equal(t, 6, b.CurrentQuantity)

	err = b.RemoveStock(7)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Not enough stock in batch B-7. Available: 6")

	require.NoError(t, b.Restore(4))
	assert.Equal(t, 10, b.CurrentQuantity)
	assert.Error(t, b.Restore(1), "restore may not exceed received quantity")

	require.NoError(t, b.AddStock(5))
	assert.Equal(t, 15, b.Quantity)
	assert.Equal(t, 15, b.CurrentQuantity)

	require.NoError(t, b.RemoveStock(15))
	assert.True(t, b.IsDepleted())
	assert.LessOrEqual(t, b.CurrentQuantity, b.Quantity)
}

func TestBatch_Expiry(t *testing.T) {
	today := time.Date(2026, 5, 10, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		expiry     *time.Time
		expired    bool
		nearExpiry bool
		days       int
		hasDays    bool
	}{
		{"no expiry", nil, false, false, 0, false},
		{"expired yesterday", date(2026, 5, 9), true, false, -1, true},
		{"expires today", date(2026, 5, 10), false, true, 0, true},
		{"inside window", date(2026, 6, 9), false, true, 30, true},
		{"outside window", date(2026, 6, 10), false, false, 31, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := NewBatch(uuid.New(), "B", 1, nil, tt.expiry)
			require.NoError(t, err)
			assert.Equal(t, tt.expired, b.IsExpired(today))
			assert.Equal(t, tt.nearExpiry, b.IsNearExpiry(today, 30))
			days, ok := b.DaysUntilExpiry(today)
			assert.Equal(t, tt.hasDays, ok)
			assert.Equal(t, tt.days, days)
		})
	}
}

func TestBatchNumbers(t *testing.T) {
	itemID := uuid.MustParse("0a1b2c3d-0000-0000-0000-000000000000")
	day := time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "BATCH-20260203-0A1B2C3D", ReceiptBatchNumber(day, itemID))
	assert.Regexp(t, `^RESTORED-0A1B2C3D-[0-9A-F]{6}$`, RestoredBatchNumber(itemID))
}

func TestNewStockMovement(t *testing.T) {
	productID := uuid.New()
	b, err := NewBatch(productID, "B-1", 5, nil, nil)
	require.NoError(t, err)

	out, err := NewStockMovement(MovementReturnOut, productID, b, 3, "RET-1", "")
	require.NoError(t, err)
	assert.Equal(t, -3, out.Quantity)
	assert.Equal(t, "B-1", out.BatchNumber)
	require.NotNil(t, out.BatchID)

	in, err := NewStockMovement(MovementReturnIn, productID, nil, 3, "RET-1", "")
	require.NoError(t, err)
	assert.Equal(t, 3, in.Quantity)
	assert.Nil(t, in.BatchID)

	_, err = NewStockMovement(MovementSaleOut, productID, nil, 0, "", "")
	assert.Error(t, err)
	_, err = NewStockMovement("bogus", productID, nil, 1, "", "")
	assert.Error(t, err)
}

func TestNewStockAdjustment(t *testing.T) {
	productID := uuid.New()
	batchID := uuid.New()

	_, err := NewStockAdjustment(productID, nil, AdjustmentRemove, 2, "", "")
	assert.Error(t, err, "removal needs a batch")

	_, err = NewStockAdjustment(productID, &batchID, AdjustmentDamageWriteOff, 0, "", "")
	assert.Error(t, err)

	adj, err := NewStockAdjustment(productID, nil, AdjustmentCorrection, 0, "count", "")
	require.NoError(t, err)
	assert.Equal(t, AdjustmentCorrection, adj.Type)

	_, err = NewStockAdjustment(productID, nil, "swap", 1, "", "")
	assert.Error(t, err)
}
