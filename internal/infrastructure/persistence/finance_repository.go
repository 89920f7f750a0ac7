package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/finance"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSupplierBillRepository implements SupplierBillRepository using GORM
type GormSupplierBillRepository struct {
	db *gorm.DB
}

// NewGormSupplierBillRepository creates a new GormSupplierBillRepository
func NewGormSupplierBillRepository(db *gorm.DB) *GormSupplierBillRepository {
	return &GormSupplierBillRepository{db: db}
}

// FindByID finds a bill by its ID
func (r *GormSupplierBillRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.SupplierBill, error) {
	return r.findOne(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByIDForUpdate finds a bill by its ID and locks the row
func (r *GormSupplierBillRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*finance.SupplierBill, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id))
}

// FindByPurchaseOrderForUpdate locks the bill of an order
func (r *GormSupplierBillRepository) FindByPurchaseOrderForUpdate(ctx context.Context, purchaseOrderID uuid.UUID) (*finance.SupplierBill, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(forUpdate).Where("purchase_order_id = ?", purchaseOrderID))
}

// ExistsForPurchaseOrder reports whether the order already has a bill
func (r *GormSupplierBillRepository) ExistsForPurchaseOrder(ctx context.Context, purchaseOrderID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.SupplierBillModel{}).
		Where("purchase_order_id = ?", purchaseOrderID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// FindAll returns a page of bills and the total matching the filter
func (r *GormSupplierBillRepository) FindAll(ctx context.Context, filter finance.SupplierBillFilter) ([]finance.SupplierBill, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.SupplierBillModel{})
	if filter.Search != "" {
		query = query.Where("LOWER(bill_number) LIKE ?", likePattern(filter.Search))
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", *filter.Status)
	}

	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []models.SupplierBillModel
	if err := applyOrderAndPage(query, filter.Filter, SupplierBillSortFields, "bill_date").Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return billsToDomain(rows), total, nil
}

// FindOverdueCandidates returns pending and partial bills with money owed whose due date is before day
func (r *GormSupplierBillRepository) FindOverdueCandidates(ctx context.Context, day time.Time) ([]finance.SupplierBill, error) {
	var rows []models.SupplierBillModel
	if err := r.db.WithContext(ctx).
		Where("due_date < ? AND due_amount > 0 AND status IN ?", day,
			[]finance.BillStatus{finance.BillStatusPending, finance.BillStatusPartial}).
		Order("due_date ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return billsToDomain(rows), nil
}

// Save creates or updates a bill
func (r *GormSupplierBillRepository) Save(ctx context.Context, bill *finance.SupplierBill) error {
	return translateError(r.db.WithContext(ctx).Save(models.SupplierBillModelFromDomain(bill)).Error)
}

func (r *GormSupplierBillRepository) findOne(query *gorm.DB) (*finance.SupplierBill, error) {
	var row models.SupplierBillModel
	if err := query.First(&row).Error; err != nil {
		return nil, translateError(err)
	}
	return row.ToDomain(), nil
}

func billsToDomain(rows []models.SupplierBillModel) []finance.SupplierBill {
	bills := make([]finance.SupplierBill, len(rows))
	for i := range rows {
		bills[i] = *rows[i].ToDomain()
	}
	return bills
}

// GormBillPaymentRepository implements BillPaymentRepository using GORM
type GormBillPaymentRepository struct {
	db *gorm.DB
}

// NewGormBillPaymentRepository creates a new GormBillPaymentRepository
func NewGormBillPaymentRepository(db *gorm.DB) *GormBillPaymentRepository {
	return &GormBillPaymentRepository{db: db}
}

// Save records a supplier payment
func (r *GormBillPaymentRepository) Save(ctx context.Context, payment *finance.BillPayment) error {
	model := &models.BillPaymentModel{}
	model.FromDomain(payment)
	return translateError(r.db.WithContext(ctx).Save(model).Error)
}

// FindByBill lists a bill's payments, newest first
func (r *GormBillPaymentRepository) FindByBill(ctx context.Context, billID uuid.UUID) ([]finance.BillPayment, error) {
	var rows []models.BillPaymentModel
	if err := r.db.WithContext(ctx).
		Where("bill_id = ?", billID).
		Order("payment_date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	payments := make([]finance.BillPayment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, nil
}

// SumByBill totals the payments made against a bill
func (r *GormBillPaymentRepository) SumByBill(ctx context.Context, billID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.BillPaymentModel{}).
		Select("COALESCE(SUM(amount), 0) as total").
		Where("bill_id = ?", billID).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// GormDuePaymentRepository implements DuePaymentRepository using GORM
type GormDuePaymentRepository struct {
	db *gorm.DB
}

// NewGormDuePaymentRepository creates a new GormDuePaymentRepository
func NewGormDuePaymentRepository(db *gorm.DB) *GormDuePaymentRepository {
	return &GormDuePaymentRepository{db: db}
}

// FindByID finds a customer payment by its ID
func (r *GormDuePaymentRepository) FindByID(ctx context.Context, id uuid.UUID) (*finance.DuePayment, error) {
	var row models.DuePaymentModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		return nil, translateError(err)
	}
	return row.ToDomain(), nil
}

// FindByCustomer lists a customer's payments, newest first
func (r *GormDuePaymentRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID) ([]finance.DuePayment, error) {
	var rows []models.DuePaymentModel
	if err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("payment_date DESC, created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	payments := make([]finance.DuePayment, len(rows))
	for i := range rows {
		payments[i] = *rows[i].ToDomain()
	}
	return payments, nil
}

// Save records a customer payment
func (r *GormDuePaymentRepository) Save(ctx context.Context, payment *finance.DuePayment) error {
	return translateError(r.db.WithContext(ctx).Save(models.DuePaymentModelFromDomain(payment)).Error)
}

// Delete removes a customer payment
func (r *GormDuePaymentRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.DuePaymentModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

var (
	_ finance.SupplierBillRepository = (*GormSupplierBillRepository)(nil)
	_ finance.BillPaymentRepository  = (*GormBillPaymentRepository)(nil)
	_ finance.DuePaymentRepository   = (*GormDuePaymentRepository)(nil)
)
