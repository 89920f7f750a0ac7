package trade

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saleWithItem(t *testing.T) (*Sale, *SaleItem) {
	t.Helper()
	s := newTestSale(t, 60, 60)
	item, err := s.AddItem(uuid.New(), "Juice", 6, d(10), d(6))
	require.NoError(t, err)
	batchID := uuid.New()
	item.AssignBatches([]SaleItemAllocation{{BatchID: batchID, Quantity: 6}})
	return s, item
}

func TestSaleReturn_AddItem(t *testing.T) {
	sale, item := saleWithItem(t)

	ret, err := NewSaleReturn("SR202605010001", sale, SaleReturnTypeMoney, SaleReturnReasonDefective, "")
	require.NoError(t, err)

	ri, err := ret.AddItem(item, 2, 3)
	require.NoError(t, err)
	assert.Equal(t, item.BatchID, ri.BatchID)
	assert.True(t, ret.RefundAmount.Equal(d(20)))
	assert.True(t, ret.BalanceAmount.Equal(d(20)))

	_, err = ret.AddItem(item, 2, 3)
	require.Error(t, err)
	assert.True(t, shared.IsDomainError(err, shared.CodeReturnExceedsSold))

	_, err = ret.AddItem(item, 0, 0)
	assert.Error(t, err)
}

func TestSaleReturn_Exchange(t *testing.T) {
	sale, item := saleWithItem(t)
	ret, err := NewSaleReturn("SR1", sale, SaleReturnTypeProduct, SaleReturnReasonWrongItem, "")
	require.NoError(t, err)
	_, err = ret.AddItem(item, 3, 0)
	require.NoError(t, err)

	assert.Error(t, ret.Validate(), "exchange product required")
	assert.Error(t, ret.SetExchange(uuid.New(), 0, d(12)))

	require.NoError(t, ret.SetExchange(uuid.New(), 2, d(12)))
	require.NoError(t, ret.Validate())
	assert.True(t, ret.ExchangeValue.Equal(d(24)))
	assert.True(t, ret.BalanceAmount.Equal(d(6)))

	money, err := NewSaleReturn("SR2", sale, SaleReturnTypeMoney, SaleReturnReasonOther, "")
	require.NoError(t, err)
	assert.Error(t, money.SetExchange(uuid.New(), 1, d(1)))
}

func TestSaleReturn_Process(t *testing.T) {
	now := time.Date(2026, 5, 2, 11, 0, 0, 0, time.UTC)

	t.Run("approve then complete", func(t *testing.T) {
		sale, item := saleWithItem(t)
		ret, err := NewSaleReturn("SR1", sale, SaleReturnTypeMoney, SaleReturnReasonDamaged, "box torn")
		require.NoError(t, err)
		_, err = ret.AddItem(item, 1, 0)
		require.NoError(t, err)

		err = ret.Process(SaleReturnActionComplete, "", now)
		require.Error(t, err, "pending cannot complete directly")
		assert.True(t, shared.IsDomainError(err, shared.CodeInvalidTransition))

		require.NoError(t, ret.Process(SaleReturnActionApprove, "looks fine", now))
		assert.Equal(t, SaleReturnStatusApproved, ret.Status)
		assert.Nil(t, ret.ProcessedAt)

		require.NoError(t, ret.Process(SaleReturnActionComplete, "refunded cash", now))
		assert.Equal(t, SaleReturnStatusCompleted, ret.Status)
		require.NotNil(t, ret.ProcessedAt)
		assert.Equal(t, "box torn\n\nApproval Notes (2026-05-02 11:00): looks fine\n\nCompletion Notes (2026-05-02 11:00): refunded cash", ret.Description)

		require.Len(t, ret.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeSaleReturnCompleted, ret.GetDomainEvents()[0].EventType())

		assert.Error(t, ret.Process(SaleReturnActionReject, "", now), "completed is terminal")
	})

	t.Run("reject from pending or approved", func(t *testing.T) {
		sale, _ := saleWithItem(t)
		ret, err := NewSaleReturn("SR2", sale, SaleReturnTypeMoney, SaleReturnReasonOther, "")
		require.NoError(t, err)
		require.NoError(t, ret.Process(SaleReturnActionReject, "no receipt", now))
		assert.Equal(t, SaleReturnStatusRejected, ret.Status)
		assert.Error(t, ret.Process(SaleReturnActionApprove, "", now))
	})

	t.Run("unknown action", func(t *testing.T) {
		sale, _ := saleWithItem(t)
		ret, err := NewSaleReturn("SR3", sale, SaleReturnTypeMoney, SaleReturnReasonOther, "")
		require.NoError(t, err)
		assert.Error(t, ret.Process("refund", "", now))
	})
}
