package shared

import (
	"context"

	"github.com/shopman/backend/internal/domain/catalog"
	"github.com/shopman/backend/internal/domain/finance"
	"github.com/shopman/backend/internal/domain/inventory"
	"github.com/shopman/backend/internal/domain/partner"
	"github.com/shopman/backend/internal/domain/trade"
)

// TransactionScope runs transaction scripts atomically across every ledger.
// When a function is executed within the scope, all repository operations
// are part of the same database transaction and are committed or rolled back together.
type TransactionScope interface {
	// Execute runs fn within a database transaction.
	// If fn returns an error, the transaction is rolled back.
	Execute(ctx context.Context, fn func(repos Repositories) error) error

	// Repos returns repositories bound to no transaction, for reads
	Repos() Repositories
}

// Repositories provides access to all ledgers. Inside Execute every
// repository shares the same underlying transaction.
type Repositories interface {
	Products() catalog.ProductRepository
	Categories() catalog.CategoryRepository
	Suppliers() partner.SupplierRepository
	Customers() partner.CustomerRepository
	Batches() inventory.BatchRepository
	Movements() inventory.StockMovementRepository
	Adjustments() inventory.StockAdjustmentRepository
	PurchaseOrders() trade.PurchaseOrderRepository
	PurchaseReturns() trade.PurchaseReturnRepository
	Sales() trade.SaleRepository
	SaleReturns() trade.SaleReturnRepository
	SupplierBills() finance.SupplierBillRepository
	BillPayments() finance.BillPaymentRepository
	DuePayments() finance.DuePaymentRepository
	Sequences() SequenceRepository
}
