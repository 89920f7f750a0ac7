package finance

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SupplierBillFilter narrows bill listings
type SupplierBillFilter struct {
	shared.Filter
	SupplierID *uuid.UUID
	Status     *BillStatus
}

// SupplierBillRepository defines the interface for supplier bill persistence
type SupplierBillRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SupplierBill, error)
	// FindByIDForUpdate loads the bill under a row lock
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*SupplierBill, error)
	// FindByPurchaseOrderForUpdate returns the bill of an order, or ErrNotFound
	FindByPurchaseOrderForUpdate(ctx context.Context, purchaseOrderID uuid.UUID) (*SupplierBill, error)
	ExistsForPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) (bool, error)
	FindAll(ctx context.Context, filter SupplierBillFilter) ([]SupplierBill, int64, error)
	// FindOverdueCandidates returns bills with money owed whose due date is before the given day
	FindOverdueCandidates(ctx context.Context, day time.Time) ([]SupplierBill, error)
	Save(ctx context.Context, bill *SupplierBill) error
}

// BillPaymentRepository defines the interface for supplier payment persistence
type BillPaymentRepository interface {
	Save(ctx context.Context, payment *BillPayment) error
	FindByBill(ctx context.Context, billID uuid.UUID) ([]BillPayment, error)
	SumByBill(ctx context.Context, billID uuid.UUID) (decimal.Decimal, error)
}

// DuePaymentRepository defines the interface for customer payment persistence
type DuePaymentRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*DuePayment, error)
	FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]DuePayment, error)
	Save(ctx context.Context, payment *DuePayment) error
	Delete(ctx context.Context, id uuid.UUID) error
}
