package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/domain/trade"
	"github.com/shopman/backend/internal/infrastructure/persistence/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormPurchaseReturnRepository implements PurchaseReturnRepository using GORM
type GormPurchaseReturnRepository struct {
	db *gorm.DB
}

// NewGormPurchaseReturnRepository creates a new GormPurchaseReturnRepository
func NewGormPurchaseReturnRepository(db *gorm.DB) *GormPurchaseReturnRepository {
	return &GormPurchaseReturnRepository{db: db}
}

// FindByID finds a supplier return by ID with its items
func (r *GormPurchaseReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseReturn, error) {
	return r.findOne(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByIDForUpdate finds a supplier return by ID and locks the row
func (r *GormPurchaseReturnRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.PurchaseReturn, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id))
}

// FindByPurchaseOrder lists the returns raised against an order, oldest first
func (r *GormPurchaseReturnRepository) FindByPurchaseOrder(ctx context.Context, orderID uuid.UUID) ([]trade.PurchaseReturn, error) {
	return r.findMany(r.db.WithContext(ctx).Where("purchase_order_id = ?", orderID).Order("created_at ASC"))
}

// FindAll finds all supplier returns matching the filter
func (r *GormPurchaseReturnRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.PurchaseReturn, error) {
	query := r.db.WithContext(ctx).Model(&models.PurchaseReturnModel{})
	if filter.Search != "" {
		query = query.Where("LOWER(return_number) LIKE ?", likePattern(filter.Search))
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		case "purchase_order_id":
			query = query.Where("purchase_order_id = ?", value)
		}
	}
	return r.findMany(applyOrderAndPage(query, filter, PurchaseReturnSortFields, "return_date"))
}

// Save creates or updates a supplier return and its items
func (r *GormPurchaseReturnRepository) Save(ctx context.Context, ret *trade.PurchaseReturn) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.PurchaseReturnModelFromDomain(ret)
		if err := tx.Omit("Items").Save(model).Error; err != nil {
			return translateError(err)
		}
		ids := make([]uuid.UUID, len(model.Items))
		for i := range model.Items {
			model.Items[i].PurchaseReturnID = ret.ID
			ids[i] = model.Items[i].ID
		}
		return syncItems(tx, "purchase_return_id", ret.ID, ids, model.Items)
	})
}

// SumCompletedAmount totals return_amount over completed returns of an order
func (r *GormPurchaseReturnRepository) SumCompletedAmount(ctx context.Context, orderID uuid.UUID) (decimal.Decimal, error) {
	var result struct {
		Total decimal.Decimal
	}
	if err := r.db.WithContext(ctx).Model(&models.PurchaseReturnModel{}).
		Select("COALESCE(SUM(return_amount), 0) as total").
		Where("purchase_order_id = ? AND status = ?", orderID, trade.PurchaseReturnStatusCompleted).
		Scan(&result).Error; err != nil {
		return decimal.Zero, err
	}
	return result.Total, nil
}

// ClaimedQuantities sums item quantities per purchase order line across returns that are not rejected
func (r *GormPurchaseReturnRepository) ClaimedQuantities(ctx context.Context, orderID uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []claimedRow
	if err := r.db.WithContext(ctx).
		Table("purchase_return_items AS i").
		Select("i.purchase_order_item_id AS item_id, COALESCE(SUM(i.quantity), 0) AS quantity").
		Joins("JOIN purchase_returns AS r ON r.id = i.purchase_return_id").
		Where("r.purchase_order_id = ? AND r.status <> ?", orderID, trade.PurchaseReturnStatusRejected).
		Group("i.purchase_order_item_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return claimedMap(rows), nil
}

func (r *GormPurchaseReturnRepository) findOne(query *gorm.DB) (*trade.PurchaseReturn, error) {
	var row models.PurchaseReturnModel
	if err := query.Preload("Items", orderedItems).First(&row).Error; err != nil {
		return nil, translateError(err)
	}
	return row.ToDomain(), nil
}

func (r *GormPurchaseReturnRepository) findMany(query *gorm.DB) ([]trade.PurchaseReturn, error) {
	var rows []models.PurchaseReturnModel
	if err := query.Preload("Items", orderedItems).Find(&rows).Error; err != nil {
		return nil, err
	}
	returns := make([]trade.PurchaseReturn, len(rows))
	for i := range rows {
		returns[i] = *rows[i].ToDomain()
	}
	return returns, nil
}

// Ensure GormPurchaseReturnRepository implements PurchaseReturnRepository
var _ trade.PurchaseReturnRepository = (*GormPurchaseReturnRepository)(nil)
