package trade

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var orderDay = time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)

func newTestPurchaseOrder(t *testing.T) *PurchaseOrder {
	t.Helper()
	po, err := NewPurchaseOrder("260401001", uuid.New(), "Acme", orderDay, orderDay.AddDate(0, 0, 7))
	require.NoError(t, err)
	return po
}

func TestNewPurchaseOrder(t *testing.T) {
	t.Run("expected date must follow order date", func(t *testing.T) {
		_, err := NewPurchaseOrder("260401001", uuid.New(), "Acme", orderDay, orderDay)
		require.Error(t, err)
		assert.True(t, shared.IsDomainError(err, shared.CodeInvalidDateRange))
	})

	t.Run("requires supplier", func(t *testing.T) {
		_, err := NewPurchaseOrder("260401001", uuid.Nil, "", orderDay, orderDay.AddDate(0, 0, 1))
		require.Error(t, err)
	})

	t.Run("starts pending", func(t *testing.T) {
		po := newTestPurchaseOrder(t)
		assert.Equal(t, PurchaseOrderStatusPending, po.Status)
		assert.True(t, po.TotalAmount.IsZero())
	})
}

func TestPurchaseOrder_AddItem(t *testing.T) {
	po := newTestPurchaseOrder(t)

	item, err := po.AddItem(uuid.New(), "Milk", 10, decimal.NewFromFloat(2.5), "", nil)
	require.NoError(t, err)
	assert.True(t, item.TotalCost.Equal(decimal.NewFromInt(25)))

	_, err = po.AddItem(uuid.New(), "Bread", 4, decimal.NewFromInt(3), "LOT-9", nil)
	require.NoError(t, err)
	assert.True(t, po.TotalAmount.Equal(decimal.NewFromInt(37)))
	assert.Equal(t, 14, po.TotalQuantity())

	_, err = po.AddItem(uuid.New(), "Bad", 0, decimal.NewFromInt(3), "", nil)
	assert.Error(t, err)
	_, err = po.AddItem(uuid.New(), "Bad", 1, decimal.NewFromInt(-3), "", nil)
	assert.Error(t, err)
}

func TestPurchaseOrder_Lifecycle(t *testing.T) {
	t.Run("complete requires items", func(t *testing.T) {
		po := newTestPurchaseOrder(t)
		assert.Error(t, po.Complete(orderDay))
	})

	t.Run("complete then return then revert", func(t *testing.T) {
		po := newTestPurchaseOrder(t)
		_, err := po.AddItem(uuid.New(), "Milk", 10, decimal.NewFromInt(2), "", nil)
		require.NoError(t, err)

		require.NoError(t, po.Complete(orderDay))
		assert.Equal(t, PurchaseOrderStatusCompleted, po.Status)
		require.NotNil(t, po.CompletedAt)
		require.Len(t, po.GetDomainEvents(), 1)
		assert.Equal(t, EventTypePurchaseOrderCompleted, po.GetDomainEvents()[0].EventType())

		assert.Error(t, po.Complete(orderDay), "cannot complete twice")

		require.NoError(t, po.MarkReturned())
		assert.Equal(t, PurchaseOrderStatusReturned, po.Status)
		require.NoError(t, po.MarkReturned())

		require.NoError(t, po.RevertToCompleted())
		assert.Equal(t, PurchaseOrderStatusCompleted, po.Status)
	})

	t.Run("cancel only from pending", func(t *testing.T) {
		po := newTestPurchaseOrder(t)
		_, err := po.Cancel("", orderDay)
		assert.Error(t, err, "reason required")

		c, err := po.Cancel("supplier out of stock", orderDay)
		require.NoError(t, err)
		assert.Equal(t, po.ID, c.PurchaseOrderID)
		assert.Equal(t, PurchaseOrderStatusCancelled, po.Status)

		_, err = po.Cancel("again", orderDay)
		assert.Error(t, err)
		assert.Error(t, po.MarkReturned())
	})
}

func TestPurchaseOrder_Dates(t *testing.T) {
	po := newTestPurchaseOrder(t)
	assert.False(t, po.IsOverdue(orderDay.AddDate(0, 0, 3)))
	assert.True(t, po.IsOverdue(orderDay.AddDate(0, 0, 8)))
	assert.Equal(t, time.Date(2026, 5, 8, 0, 0, 0, 0, time.UTC), po.BillDueDate(30))
}

func TestSummarizeReturns(t *testing.T) {
	assert.Equal(t, ReturnSummaryNone, SummarizeReturns(nil))
	assert.Equal(t, ReturnSummaryCompleted, SummarizeReturns([]PurchaseReturnStatus{PurchaseReturnStatusRejected, PurchaseReturnStatusCompleted}))
	assert.Equal(t, ReturnSummaryPending, SummarizeReturns([]PurchaseReturnStatus{PurchaseReturnStatusApproved}))
	assert.Equal(t, ReturnSummaryInactive, SummarizeReturns([]PurchaseReturnStatus{PurchaseReturnStatusRejected}))
}
