package finance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	appshared "github.com/shopman/backend/internal/application/shared"
	"github.com/shopman/backend/internal/domain/finance"
	"github.com/shopman/backend/internal/domain/partner"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// DefaultBillDueDays is added to a purchase order's expected date to get the bill due date
const DefaultBillDueDays = 30

// BillLedger owns supplier bill derivation. Its methods run inside the
// caller's transaction and never commit on their own.
type BillLedger struct {
	dueDays int
	logger  *zap.Logger
	now     func() time.Time
}

// NewBillLedger creates a bill ledger; dueDays <= 0 falls back to the default
func NewBillLedger(dueDays int, logger *zap.Logger) *BillLedger {
	if dueDays <= 0 {
		dueDays = DefaultBillDueDays
	}
	return &BillLedger{dueDays: dueDays, logger: logger, now: time.Now}
}

// SetClock overrides the time source
func (l *BillLedger) SetClock(now func() time.Time) {
	l.now = now
}

// Now returns the ledger's current time
func (l *BillLedger) Now() time.Time {
	return l.now()
}

// Open creates the one bill of a completed purchase order. It returns nil
// when the order already has a bill.
func (l *BillLedger) Open(ctx context.Context, repos appshared.Repositories, po *trade.PurchaseOrder) (*finance.SupplierBill, error) {
	exists, err := repos.SupplierBills().ExistsForPurchaseOrder(ctx, po.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}
	now := l.now()
	number, err := appshared.NextDocumentNumber(ctx, repos, shared.SeqSupplierBill, now)
	if err != nil {
		return nil, err
	}
	bill, err := finance.NewOrderBill(number, po.ID, po.SupplierID, po.TotalAmount, now, po.BillDueDate(l.dueDays))
	if err != nil {
		return nil, err
	}
	if err := repos.SupplierBills().Save(ctx, bill); err != nil {
		return nil, fmt.Errorf("save supplier bill: %w", err)
	}
	return bill, nil
}

// Recompute re-derives paid amount, returned amount, due amount and status
func (l *BillLedger) Recompute(ctx context.Context, repos appshared.Repositories, bill *finance.SupplierBill) error {
	paid, err := repos.BillPayments().SumByBill(ctx, bill.ID)
	if err != nil {
		return err
	}
	returned, err := repos.PurchaseReturns().SumCompletedAmount(ctx, bill.PurchaseOrderID)
	if err != nil {
		return err
	}
	bill.SetPaid(paid)
	bill.Recompute(returned, l.now())
	if err := repos.SupplierBills().Save(ctx, bill); err != nil {
		return fmt.Errorf("save supplier bill: %w", err)
	}
	return nil
}

// RecomputeForOrder recomputes the bill of an order. Orders without a bill are skipped.
func (l *BillLedger) RecomputeForOrder(ctx context.Context, repos appshared.Repositories, orderID uuid.UUID) (*finance.SupplierBill, error) {
	bill, err := repos.SupplierBills().FindByPurchaseOrderForUpdate(ctx, orderID)
	if errors.Is(err, shared.ErrNotFound) {
		l.logger.Warn("purchase order has no supplier bill", zap.String("purchase_order_id", orderID.String()))
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := l.Recompute(ctx, repos, bill); err != nil {
		return nil, err
	}
	return bill, nil
}

// RefreshCustomerDue rewrites a customer's total due from their open sales
func RefreshCustomerDue(ctx context.Context, repos appshared.Repositories, customerID uuid.UUID) (*partner.Customer, error) {
	customer, err := repos.Customers().FindByIDForUpdate(ctx, customerID)
	if err != nil {
		return nil, err
	}
	total, err := repos.Sales().SumOutstanding(ctx, customerID)
	if err != nil {
		return nil, err
	}
	customer.ApplyDueRecompute(total)
	if err := repos.Customers().Save(ctx, customer); err != nil {
		return nil, fmt.Errorf("save customer: %w", err)
	}
	return customer, nil
}
