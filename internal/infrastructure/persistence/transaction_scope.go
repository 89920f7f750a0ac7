package persistence

import (
	"context"

	appshared "github.com/shopman/backend/internal/application/shared"
	"github.com/shopman/backend/internal/domain/catalog"
	"github.com/shopman/backend/internal/domain/finance"
	"github.com/shopman/backend/internal/domain/inventory"
	"github.com/shopman/backend/internal/domain/partner"
	"github.com/shopman/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormTransactionScope implements TransactionScope using GORM transactions.
// Every repository handed to the callback shares one transaction.
type GormTransactionScope struct {
	db *gorm.DB
}

// NewGormTransactionScope creates a new GormTransactionScope.
func NewGormTransactionScope(db *gorm.DB) *GormTransactionScope {
	return &GormTransactionScope{db: db}
}

// Execute runs fn within a database transaction.
// If fn returns an error, the transaction is rolled back.
func (s *GormTransactionScope) Execute(ctx context.Context, fn func(repos appshared.Repositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&gormRepositories{db: tx})
	})
}

// Repos returns repositories bound to the plain connection pool
func (s *GormTransactionScope) Repos() appshared.Repositories {
	return &gormRepositories{db: s.db}
}

// gormRepositories builds repositories over one *gorm.DB, either a pool or a transaction.
type gormRepositories struct {
	db *gorm.DB
}

func (r *gormRepositories) Products() catalog.ProductRepository {
	return NewGormProductRepository(r.db)
}

func (r *gormRepositories) Categories() catalog.CategoryRepository {
	return NewGormCategoryRepository(r.db)
}

func (r *gormRepositories) Suppliers() partner.SupplierRepository {
	return NewGormSupplierRepository(r.db)
}

func (r *gormRepositories) Customers() partner.CustomerRepository {
	return NewGormCustomerRepository(r.db)
}

func (r *gormRepositories) Batches() inventory.BatchRepository {
	return NewGormBatchRepository(r.db)
}

func (r *gormRepositories) Movements() inventory.StockMovementRepository {
	return NewGormStockMovementRepository(r.db)
}

func (r *gormRepositories) Adjustments() inventory.StockAdjustmentRepository {
	return NewGormStockAdjustmentRepository(r.db)
}

func (r *gormRepositories) PurchaseOrders() trade.PurchaseOrderRepository {
	return NewGormPurchaseOrderRepository(r.db)
}

func (r *gormRepositories) PurchaseReturns() trade.PurchaseReturnRepository {
	return NewGormPurchaseReturnRepository(r.db)
}

func (r *gormRepositories) Sales() trade.SaleRepository {
	return NewGormSaleRepository(r.db)
}

func (r *gormRepositories) SaleReturns() trade.SaleReturnRepository {
	return NewGormSaleReturnRepository(r.db)
}

func (r *gormRepositories) SupplierBills() finance.SupplierBillRepository {
	return NewGormSupplierBillRepository(r.db)
}

func (r *gormRepositories) BillPayments() finance.BillPaymentRepository {
	return NewGormBillPaymentRepository(r.db)
}

func (r *gormRepositories) DuePayments() finance.DuePaymentRepository {
	return NewGormDuePaymentRepository(r.db)
}

func (r *gormRepositories) Sequences() appshared.SequenceRepository {
	return NewGormSequenceRepository(r.db)
}

// Ensure GormTransactionScope implements TransactionScope
var _ appshared.TransactionScope = (*GormTransactionScope)(nil)

// Ensure gormRepositories implements Repositories
var _ appshared.Repositories = (*gormRepositories)(nil)
