package batch

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBatches(productID uuid.UUID, now time.Time) []strategy.Batch {
	day := 24 * time.Hour
	return []strategy.Batch{
		{
			ID:           uuid.New(),
			ProductID:    productID,
			BatchNumber:  "B003",
			AvailableQty: 30,
			ExpiryDate:   now.Add(60 * day),
			ReceivedDate: now.Add(-25 * day),
		},
		{
			ID:           uuid.New(),
			ProductID:    productID,
			BatchNumber:  "B001",
			AvailableQty: 5,
			ExpiryDate:   now.Add(10 * day),
			ReceivedDate: now.Add(-18 * day),
		},
		{
			ID:           uuid.New(),
			ProductID:    productID,
			BatchNumber:  "B002",
			AvailableQty: 40,
			ExpiryDate:   now.Add(30 * day),
			ReceivedDate: now.Add(-8 * day),
		},
		{
			ID:           uuid.New(),
			ProductID:    productID,
			BatchNumber:  "EXPIRED",
			AvailableQty: 100,
			ExpiryDate:   now.Add(-2 * day),
			ReceivedDate: now.Add(-90 * day),
		},
		{
			ID:           uuid.New(),
			ProductID:    productID,
			BatchNumber:  "EMPTY",
			AvailableQty: 0,
			ExpiryDate:   now.Add(1 * day),
			ReceivedDate: now.Add(-3 * day),
		},
	}
}

func TestFEFOFirstBatchStrategy_SelectBatches(t *testing.T) {
	s := NewFEFOFirstBatchStrategy()
	ctx := context.Background()
	productID := uuid.New()
	now := time.Now()
	batches := testBatches(productID, now)

	t.Run("takes the earliest expiring batch only", func(t *testing.T) {
		result, err := s.SelectBatches(ctx, strategy.BatchSelectionContext{
			ProductID: productID,
			Quantity:  4,
			Date:      now,
		}, batches)
		require.NoError(t, err)

		require.Len(t, result.Selections, 1)
		assert.Equal(t, "B001", result.Selections[0].BatchNumber)
		assert.Equal(t, 4, result.Selections[0].Quantity)
		assert.Equal(t, 0, result.ShortfallQty)
	})

	t.Run("truncates when the first batch is short", func(t *testing.T) {
		result, err := s.SelectBatches(ctx, strategy.BatchSelectionContext{
			ProductID: productID,
			Quantity:  12,
			Date:      now,
		}, batches)
		require.NoError(t, err)

		require.Len(t, result.Selections, 1)
		assert.Equal(t, "B001", result.Selections[0].BatchNumber)
		assert.Equal(t, 5, result.Selections[0].Quantity)
		assert.Equal(t, 5, result.TotalQty)
		assert.Equal(t, 7, result.ShortfallQty)
	})

	t.Run("ignores other products", func(t *testing.T) {
		result, err := s.SelectBatches(ctx, strategy.BatchSelectionContext{
			ProductID: uuid.New(),
			Quantity:  1,
			Date:      now,
		}, batches)
		require.NoError(t, err)

		assert.Empty(t, result.Selections)
		assert.Equal(t, 1, result.ShortfallQty)
	})

	assert.False(t, s.SplitsAcrossBatches())
	assert.Equal(t, NameFEFOFirst, s.Name())
}

func TestFEFOSplitBatchStrategy_SelectBatches(t *testing.T) {
	s := NewFEFOSplitBatchStrategy()
	ctx := context.Background()
	productID := uuid.New()
	now := time.Now()
	batches := testBatches(productID, now)

	t.Run("walks batches in expiry order", func(t *testing.T) {
		result, err := s.SelectBatches(ctx, strategy.BatchSelectionContext{
			ProductID: productID,
			Quantity:  60,
			Date:      now,
		}, batches)
		require.NoError(t, err)

		require.Len(t, result.Selections, 3)
		assert.Equal(t, "B001", result.Selections[0].BatchNumber)
		assert.Equal(t, 5, result.Selections[0].Quantity)
		assert.Equal(t, "B002", result.Selections[1].BatchNumber)
		assert.Equal(t, 40, result.Selections[1].Quantity)
		assert.Equal(t, "B003", result.Selections[2].BatchNumber)
		assert.Equal(t, 15, result.Selections[2].Quantity)
		assert.Equal(t, 60, result.TotalQty)
		assert.Equal(t, 0, result.ShortfallQty)
	})

	t.Run("never draws from expired batches", func(t *testing.T) {
		result, err := s.SelectBatches(ctx, strategy.BatchSelectionContext{
			ProductID: productID,
			Quantity:  200,
			Date:      now,
		}, batches)
		require.NoError(t, err)

		for _, sel := range result.Selections {
			assert.NotEqual(t, "EXPIRED", sel.BatchNumber)
			assert.NotEqual(t, "EMPTY", sel.BatchNumber)
		}
		assert.Equal(t, 75, result.TotalQty)
		assert.Equal(t, 125, result.ShortfallQty)
	})

	t.Run("non-expiring batches come last", func(t *testing.T) {
		noExpiry := strategy.Batch{
			ID:           uuid.New(),
			ProductID:    productID,
			BatchNumber:  "NOEXP",
			AvailableQty: 10,
			ReceivedDate: now.Add(-100 * 24 * time.Hour),
		}
		result, err := s.SelectBatches(ctx, strategy.BatchSelectionContext{
			ProductID: productID,
			Quantity:  80,
			Date:      now,
		}, append([]strategy.Batch{noExpiry}, batches...))
		require.NoError(t, err)

		last := result.Selections[len(result.Selections)-1]
		assert.Equal(t, "NOEXP", last.BatchNumber)
		assert.Equal(t, 5, last.Quantity)
	})

	assert.True(t, s.SplitsAcrossBatches())
}
