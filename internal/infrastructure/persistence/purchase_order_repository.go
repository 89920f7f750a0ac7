package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/domain/trade"
	"github.com/shopman/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order by ID with its items
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	return r.findOne(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByIDForUpdate finds a purchase order by ID and locks the row
func (r *GormPurchaseOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.PurchaseOrder, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id))
}

// FindByNumber finds a purchase order by its PO number
func (r *GormPurchaseOrderRepository) FindByNumber(ctx context.Context, poNumber string) (*trade.PurchaseOrder, error) {
	return r.findOne(r.db.WithContext(ctx).Where("po_number = ?", poNumber))
}

// FindAll finds all purchase orders matching the filter
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.PurchaseOrder, error) {
	query := r.db.WithContext(ctx).Model(&models.PurchaseOrderModel{}).Preload("Items", orderedItems)
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(po_number) LIKE ? OR LOWER(supplier_name) LIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		}
	}
	query = applyOrderAndPage(query, filter, PurchaseOrderSortFields, "order_date")

	var rows []models.PurchaseOrderModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	orders := make([]trade.PurchaseOrder, len(rows))
	for i := range rows {
		orders[i] = *rows[i].ToDomain()
	}
	return orders, nil
}

// FindItemByID finds a single purchase order line
func (r *GormPurchaseOrderRepository) FindItemByID(ctx context.Context, itemID uuid.UUID) (*trade.PurchaseOrderItem, error) {
	var row models.PurchaseOrderItemModel
	if err := r.db.WithContext(ctx).First(&row, "id = ?", itemID).Error; err != nil {
		return nil, translateError(err)
	}
	return row.ToDomain(), nil
}

// Save creates or updates a purchase order and its items
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *trade.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.PurchaseOrderModelFromDomain(order)
		if err := tx.Omit("Items").Save(model).Error; err != nil {
			return translateError(err)
		}
		ids := make([]uuid.UUID, len(model.Items))
		for i := range model.Items {
			model.Items[i].PurchaseOrderID = order.ID
			ids[i] = model.Items[i].ID
		}
		return syncItems(tx, "purchase_order_id", order.ID, ids, model.Items)
	})
}

// SaveCancellation records why an order was cancelled
func (r *GormPurchaseOrderRepository) SaveCancellation(ctx context.Context, cancellation *trade.PurchaseOrderCancellation) error {
	model := &models.PurchaseOrderCancellationModel{}
	model.FromDomain(cancellation)
	return translateError(r.db.WithContext(ctx).Create(model).Error)
}

// FindCancellation returns the cancellation record of an order
func (r *GormPurchaseOrderRepository) FindCancellation(ctx context.Context, orderID uuid.UUID) (*trade.PurchaseOrderCancellation, error) {
	var row models.PurchaseOrderCancellationModel
	if err := r.db.WithContext(ctx).First(&row, "purchase_order_id = ?", orderID).Error; err != nil {
		return nil, translateError(err)
	}
	return row.ToDomain(), nil
}

func (r *GormPurchaseOrderRepository) findOne(query *gorm.DB) (*trade.PurchaseOrder, error) {
	var row models.PurchaseOrderModel
	if err := query.Preload("Items", orderedItems).First(&row).Error; err != nil {
		return nil, translateError(err)
	}
	return row.ToDomain(), nil
}

// Ensure GormPurchaseOrderRepository implements PurchaseOrderRepository
var _ trade.PurchaseOrderRepository = (*GormPurchaseOrderRepository)(nil)
