package finance

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var billDay = time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func newTestBill(t *testing.T, total int64) *SupplierBill {
	t.Helper()
	b, err := NewSupplierBill("BILL260301001", uuid.New(), uuid.New(), dec(total), billDay, billDay.AddDate(0, 0, 30))
	require.NoError(t, err)
	return b
}

func TestNewSupplierBill(t *testing.T) {
	b := newTestBill(t, 1000)
	assert.Equal(t, BillStatusPending, b.Status)
	assert.True(t, b.DueAmount.Equal(dec(1000)))

	_, err := NewSupplierBill("B", uuid.New(), uuid.New(), dec(10), billDay, billDay)
	assert.True(t, shared.IsDomainError(err, shared.CodeInvalidDateRange))
}

func TestNewOrderBill_LateReceiptIsOverdue(t *testing.T) {
	received := billDay.AddDate(0, 0, 45)
	b, err := NewOrderBill("BILL260415001", uuid.New(), uuid.New(), dec(500), received, billDay.AddDate(0, 0, 30))
	require.NoError(t, err)
	assert.Equal(t, BillStatusOverdue, b.Status)
	assert.Equal(t, 15, b.DaysOverdue(received))

	_, err = NewOrderBill("", uuid.New(), uuid.New(), dec(500), received, received)
	assert.True(t, shared.IsDomainError(err, shared.CodeInvalidInput))
}

func TestSupplierBill_Recompute(t *testing.T) {
	beforeDue := billDay.AddDate(0, 0, 10)
	afterDue := billDay.AddDate(0, 0, 31)

	tests := []struct {
		name     string
		paid     int64
		returned int64
		today    time.Time
		status   BillStatus
		due      int64
	}{
		{"unpaid", 0, 0, beforeDue, BillStatusPending, 1000},
		{"part paid", 300, 0, beforeDue, BillStatusPartial, 700},
		{"fully paid", 1000, 0, afterDue, BillStatusPaid, 0},
		{"unpaid past due date", 0, 0, afterDue, BillStatusOverdue, 1000},
		{"part paid past due date", 300, 0, afterDue, BillStatusOverdue, 700},
		{"due date itself is not overdue", 0, 0, billDay.AddDate(0, 0, 30), BillStatusPending, 1000},
		{"partial return", 0, 400, beforeDue, BillStatusPartiallyReturned, 600},
		{"partial return with payment", 500, 400, afterDue, BillStatusPartiallyReturned, 100},
		{"partial return overpaid", 700, 400, beforeDue, BillStatusPartiallyReturned, 0},
		{"full return", 0, 1000, afterDue, BillStatusReturned, 0},
		{"over return", 200, 1200, beforeDue, BillStatusReturned, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newTestBill(t, 1000)
			b.SetPaid(dec(tt.paid))
			b.Recompute(dec(tt.returned), tt.today)
			assert.Equal(t, tt.status, b.Status)
			assert.True(t, b.DueAmount.Equal(dec(tt.due)), "due %s", b.DueAmount)
		})
	}
}

func TestSupplierBill_RecomputeIsIdempotent(t *testing.T) {
	b := newTestBill(t, 1000)
	b.SetPaid(dec(250))
	b.Recompute(dec(100), billDay)
	status, due := b.Status, b.DueAmount
	b.Recompute(dec(100), billDay)
	assert.Equal(t, status, b.Status)
	assert.True(t, due.Equal(b.DueAmount))
}

func TestSupplierBill_Derived(t *testing.T) {
	b := newTestBill(t, 1000)
	b.SetPaid(dec(300))
	b.Recompute(dec(400), billDay)

	assert.True(t, b.NetAmount().Equal(dec(600)))
	assert.True(t, b.EffectiveDue().Equal(dec(300)))
	assert.True(t, b.PaidPercentage().Equal(dec(50)))

	assert.False(t, b.IsOverdue(billDay.AddDate(0, 0, 30)))
	assert.True(t, b.IsOverdue(billDay.AddDate(0, 0, 33)))
	assert.Equal(t, 3, b.DaysOverdue(billDay.AddDate(0, 0, 33)))
	assert.Equal(t, 0, b.DaysOverdue(billDay))
}

func TestSupplierBill_ValidatePayment(t *testing.T) {
	b := newTestBill(t, 1000)
	b.Recompute(dec(400), billDay)

	assert.NoError(t, b.ValidatePayment(dec(600)))
	err := b.ValidatePayment(dec(601))
	require.Error(t, err)
	assert.True(t, shared.IsDomainError(err, shared.CodePaymentExceedsDue))
	assert.Error(t, b.ValidatePayment(dec(0)))

	b.Recompute(dec(1000), billDay)
	assert.False(t, b.CanAcceptPayment())
	assert.True(t, shared.IsDomainError(b.ValidatePayment(dec(1)), shared.CodeInvalidState))
}

func TestNewBillPayment(t *testing.T) {
	b := newTestBill(t, 500)

	p, err := NewBillPayment(b, dec(200), "", " TRX-1 ", "", billDay)
	require.NoError(t, err)
	assert.Equal(t, PaymentMethodBank, p.Method)
	assert.Equal(t, "TRX-1", p.ReferenceNumber)
	assert.Equal(t, b.ID, p.BillID)

	_, err = NewBillPayment(b, dec(200), "crypto", "", "", billDay)
	assert.Error(t, err)
	_, err = NewBillPayment(b, dec(501), PaymentMethodCash, "", "", billDay)
	assert.Error(t, err)
}
