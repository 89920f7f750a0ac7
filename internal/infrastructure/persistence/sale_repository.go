package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/domain/trade"
	"github.com/shopman/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var openPaymentStatuses = []trade.PaymentStatus{trade.PaymentStatusDue, trade.PaymentStatusPartial}

// GormSaleRepository implements SaleRepository using GORM
type GormSaleRepository struct {
	db *gorm.DB
}

// NewGormSaleRepository creates a new GormSaleRepository
func NewGormSaleRepository(db *gorm.DB) *GormSaleRepository {
	return &GormSaleRepository{db: db}
}

// FindByID finds a sale by ID with its items
func (r *GormSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	return r.findOne(ctx, r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByIDForUpdate finds a sale by ID and locks the row
func (r *GormSaleRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.Sale, error) {
	return r.findOne(ctx, r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id))
}

// FindByInvoiceNumber finds a sale by its invoice number
func (r *GormSaleRepository) FindByInvoiceNumber(ctx context.Context, invoiceNumber string) (*trade.Sale, error) {
	return r.findOne(ctx, r.db.WithContext(ctx).Where("invoice_number = ?", invoiceNumber))
}

// FindAll finds all sales matching the filter
func (r *GormSaleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.Sale, error) {
	query := r.db.WithContext(ctx).Model(&models.SaleModel{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(invoice_number) LIKE ? OR LOWER(customer_name) LIKE ? OR customer_phone LIKE ?", pattern, pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status", "payment_status":
			query = query.Where("payment_status = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		}
	}
	return r.findMany(ctx, applyOrderAndPage(query, filter, SaleSortFields, "sale_date"))
}

// FindOpenByCustomerForUpdate locks the customer's due and partial sales, oldest first
func (r *GormSaleRepository) FindOpenByCustomerForUpdate(ctx context.Context, customerID uuid.UUID) ([]trade.Sale, error) {
	return r.findMany(ctx, r.openByCustomer(ctx, customerID).Clauses(forUpdate))
}

// FindOpenByCustomer lists the customer's due and partial sales, oldest first
func (r *GormSaleRepository) FindOpenByCustomer(ctx context.Context, customerID uuid.UUID) ([]trade.Sale, error) {
	return r.findMany(ctx, r.openByCustomer(ctx, customerID))
}

// SumOutstanding totals (total - paid) over the customer's due and partial sales
func (r *GormSaleRepository) SumOutstanding(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.SaleModel{}).
		Select("COALESCE(SUM(total_amount - paid_amount), 0) as total").
		Where("customer_id = ? AND payment_status IN ?", customerID, openPaymentStatuses).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// FindBetween lists the sales made in [from, to)
func (r *GormSaleRepository) FindBetween(ctx context.Context, from, to time.Time) ([]trade.Sale, error) {
	return r.findMany(ctx, r.db.WithContext(ctx).
		Where("sale_date >= ? AND sale_date < ?", from, to).
		Order("sale_date ASC"))
}

// Save creates or updates a sale and its items
func (r *GormSaleRepository) Save(ctx context.Context, sale *trade.Sale) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.SaleModelFromDomain(sale)
		if err := tx.Omit("Items").Save(model).Error; err != nil {
			return translateError(err)
		}
		ids := make([]uuid.UUID, len(model.Items))
		for i := range model.Items {
			model.Items[i].SaleID = sale.ID
			ids[i] = model.Items[i].ID
		}
		return syncItems(tx, "sale_id", sale.ID, ids, model.Items)
	})
}

func (r *GormSaleRepository) openByCustomer(ctx context.Context, customerID uuid.UUID) *gorm.DB {
	return r.db.WithContext(ctx).
		Where("customer_id = ? AND payment_status IN ?", customerID, openPaymentStatuses).
		Order("sale_date ASC, created_at ASC")
}

func (r *GormSaleRepository) findOne(ctx context.Context, query *gorm.DB) (*trade.Sale, error) {
	var row models.SaleModel
	if err := query.Preload("Items", orderedItems).First(&row).Error; err != nil {
		return nil, translateError(err)
	}
	rows := []models.SaleModel{row}
	if err := r.fillReturnedQuantities(ctx, rows); err != nil {
		return nil, err
	}
	return rows[0].ToDomain(), nil
}

func (r *GormSaleRepository) findMany(ctx context.Context, query *gorm.DB) ([]trade.Sale, error) {
	var rows []models.SaleModel
	if err := query.Preload("Items", orderedItems).Find(&rows).Error; err != nil {
		return nil, err
	}
	if err := r.fillReturnedQuantities(ctx, rows); err != nil {
		return nil, err
	}
	sales := make([]trade.Sale, len(rows))
	for i := range rows {
		sales[i] = *rows[i].ToDomain()
	}
	return sales, nil
}

// fillReturnedQuantities sets each line's quantity taken back by completed returns
func (r *GormSaleRepository) fillReturnedQuantities(ctx context.Context, rows []models.SaleModel) error {
	if len(rows) == 0 {
		return nil
	}
	saleIDs := make([]uuid.UUID, len(rows))
	for i := range rows {
		saleIDs[i] = rows[i].ID
	}
	var returned []claimedRow
	if err := r.db.WithContext(ctx).
		Table("sale_return_items AS i").
		Select("i.sale_item_id AS item_id, COALESCE(SUM(i.quantity), 0) AS quantity").
		Joins("JOIN sale_returns AS r ON r.id = i.sale_return_id").
		Where("r.sale_id IN ? AND r.status = ?", saleIDs, trade.SaleReturnStatusCompleted).
		Group("i.sale_item_id").
		Scan(&returned).Error; err != nil {
		return err
	}
	if len(returned) == 0 {
		return nil
	}
	byItem := claimedMap(returned)
	for i := range rows {
		for k := range rows[i].Items {
			rows[i].Items[k].ReturnedQuantity = byItem[rows[i].Items[k].ID]
		}
	}
	return nil
}

// Ensure GormSaleRepository implements SaleRepository
var _ trade.SaleRepository = (*GormSaleRepository)(nil)
