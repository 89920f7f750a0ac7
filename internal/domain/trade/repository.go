package trade

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PurchaseOrderRepository defines the interface for purchase order persistence
type PurchaseOrderRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	// FindByIDForUpdate loads the order with its items under a row lock
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseOrder, error)

	FindByNumber(ctx context.Context, poNumber string) (*PurchaseOrder, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseOrder, error)
	FindItemByID(ctx context.Context, itemID uuid.UUID) (*PurchaseOrderItem, error)
	Save(ctx context.Context, order *PurchaseOrder) error
	SaveCancellation(ctx context.Context, cancellation *PurchaseOrderCancellation) error
	FindCancellation(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderCancellation, error)
}

// PurchaseReturnRepository defines the interface for supplier return persistence
type PurchaseReturnRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*PurchaseReturn, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*PurchaseReturn, error)
	FindByPurchaseOrder(ctx context.Context, orderID uuid.UUID) ([]PurchaseReturn, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]PurchaseReturn, error)
	Save(ctx context.Context, ret *PurchaseReturn) error

	// SumCompletedAmount totals return_amount over completed returns of an order
	SumCompletedAmount(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error)

	// ClaimedQuantities sums item quantities per purchase order line across
	// returns that are not rejected
	ClaimedQuantities(ctx context.Context, orderID uuid.UUID) (map[uuid.UUID]int, error)
}

// SaleRepository defines the interface for sale persistence
type SaleRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Sale, error)
	FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*Sale, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Sale, error)

	// FindOpenByCustomerForUpdate locks the customer's due and partial sales, oldest first
	FindOpenByCustomerForUpdate(ctx context.Context, customerID uuid.UUID) ([]Sale, error)

	// FindOpenByCustomer lists due and partial sales without locking
	FindOpenByCustomer(ctx context.Context, customerID uuid.UUID) ([]Sale, error)

	// SumOutstanding totals (total - paid) over the customer's due and partial sales
	SumOutstanding(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)

	FindBetween(ctx context.Context, from, to time.Time) ([]Sale, error)
	Save(ctx context.Context, sale *Sale) error
}

// SaleReturnRepository defines the interface for customer return persistence
type SaleReturnRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*SaleReturn, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*SaleReturn, error)
	FindBySale(ctx context.Context, saleID uuid.UUID) ([]SaleReturn, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]SaleReturn, error)
	Save(ctx context.Context, ret *SaleReturn) error

	// ClaimedQuantities sums item quantities per sale line across returns that are not rejected
	ClaimedQuantities(ctx context.Context, saleID uuid.UUID) (map[uuid.UUID]int, error)
}
