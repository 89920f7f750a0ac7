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

func completedOrder(t *testing.T) *PurchaseOrder {
	t.Helper()
	po := newTestPurchaseOrder(t)
	_, err := po.AddItem(uuid.New(), "Milk", 10, decimal.NewFromInt(4), "", nil)
	require.NoError(t, err)
	require.NoError(t, po.Complete(orderDay))
	return po
}

func TestPurchaseReturnStatus_Transition(t *testing.T) {
	tests := []struct {
		from   PurchaseReturnStatus
		to     PurchaseReturnStatus
		effect ReturnEffect
		ok     bool
	}{
		{PurchaseReturnStatusPending, PurchaseReturnStatusApproved, ReturnEffectNone, true},
		{PurchaseReturnStatusPending, PurchaseReturnStatusRejected, ReturnEffectNone, true},
		{PurchaseReturnStatusPending, PurchaseReturnStatusCompleted, ReturnEffectApply, true},
		{PurchaseReturnStatusApproved, PurchaseReturnStatusCompleted, ReturnEffectApply, true},
		{PurchaseReturnStatusApproved, PurchaseReturnStatusRejected, ReturnEffectNone, true},
		{PurchaseReturnStatusCompleted, PurchaseReturnStatusPending, ReturnEffectReverse, true},
		{PurchaseReturnStatusCompleted, PurchaseReturnStatusApproved, ReturnEffectReverse, true},
		{PurchaseReturnStatusCompleted, PurchaseReturnStatusRejected, ReturnEffectReverse, true},
		{PurchaseReturnStatusApproved, PurchaseReturnStatusPending, ReturnEffectNone, false},
		{PurchaseReturnStatusRejected, PurchaseReturnStatusCompleted, ReturnEffectNone, false},
		{PurchaseReturnStatusCompleted, PurchaseReturnStatusCompleted, ReturnEffectNone, false},
		{PurchaseReturnStatusPending, "shipped", ReturnEffectNone, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			effect, err := tt.from.Transition(tt.to)
			if !tt.ok {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.effect, effect)
		})
	}
}

func TestPurchaseReturn_AddItem(t *testing.T) {
	po := completedOrder(t)
	item := &po.Items[0]

	t.Run("only against received orders", func(t *testing.T) {
		pending := newTestPurchaseOrder(t)
		_, err := NewPurchaseReturn("RET-1", pending, PurchaseReturnReasonDamaged, "", orderDay)
		assert.True(t, shared.IsDomainError(err, shared.CodeInvalidState))
	})

	t.Run("unit cost defaults to line cost", func(t *testing.T) {
		ret, err := NewPurchaseReturn("RET-1", po, PurchaseReturnReasonDamaged, "", orderDay)
		require.NoError(t, err)

		ri, err := ret.AddItem(item, nil, 3, decimal.Zero, item.Quantity)
		require.NoError(t, err)
		assert.True(t, ri.UnitCost.Equal(decimal.NewFromInt(4)))
		assert.True(t, ret.ReturnAmount.Equal(decimal.NewFromInt(12)))
	})

	t.Run("cannot exceed remaining quantity", func(t *testing.T) {
		ret, err := NewPurchaseReturn("RET-2", po, PurchaseReturnReasonExpired, "", orderDay)
		require.NoError(t, err)

		_, err = ret.AddItem(item, nil, 6, decimal.Zero, 8)
		require.NoError(t, err)
		_, err = ret.AddItem(item, nil, 3, decimal.Zero, 8)
		require.Error(t, err)
		assert.True(t, shared.IsDomainError(err, shared.CodeReturnExceedsSold))
	})

	t.Run("rejects foreign items", func(t *testing.T) {
		ret, err := NewPurchaseReturn("RET-3", po, PurchaseReturnReasonOther, "", orderDay)
		require.NoError(t, err)
		other := completedOrder(t)
		_, err = ret.AddItem(&other.Items[0], nil, 1, decimal.Zero, 10)
		assert.Error(t, err)
	})
}

func TestPurchaseReturn_ChangeStatus(t *testing.T) {
	po := completedOrder(t)
	ret, err := NewPurchaseReturn("RET-1", po, PurchaseReturnReasonDamaged, "crushed boxes", orderDay)
	require.NoError(t, err)

	now := time.Date(2026, 4, 3, 10, 30, 0, 0, time.UTC)
	_, err = ret.ChangeStatus(PurchaseReturnStatusCompleted, "", now)
	require.Error(t, err, "empty return cannot complete")

	_, err = ret.AddItem(&po.Items[0], nil, 2, decimal.Zero, 10)
	require.NoError(t, err)

	effect, err := ret.ChangeStatus(PurchaseReturnStatusCompleted, "picked up", now)
	require.NoError(t, err)
	assert.Equal(t, ReturnEffectApply, effect)
	require.NotNil(t, ret.CompletedAt)
	assert.Contains(t, ret.Notes, "Status Update (2026-04-03 10:30): pending -> completed: picked up")

	effect, err = ret.ChangeStatus(PurchaseReturnStatusPending, "", now)
	require.NoError(t, err)
	assert.Equal(t, ReturnEffectReverse, effect)
	assert.Nil(t, ret.CompletedAt)

	events := ret.GetDomainEvents()
	require.Len(t, events, 2)
	assert.Equal(t, EventTypePurchaseReturnCompleted, events[0].EventType())
	assert.Equal(t, EventTypePurchaseReturnReversed, events[1].EventType())
}

func TestAppendNote(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 0, 0, time.UTC)
	assert.Equal(t, "base", AppendNote("base", "Approval", "  ", now))
	assert.Equal(t, "Approval Notes (2026-01-02 03:04): ok", AppendNote("", "Approval", "ok", now))
	assert.Equal(t, "base\n\nRejection Notes (2026-01-02 03:04): no", AppendNote("base", "Rejection", "no", now))
}
