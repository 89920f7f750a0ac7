package persistence

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/inventory"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// expiryOrder sorts lots by expiry date with undated lots last, then oldest first
const expiryOrder = "CASE WHEN expiry_date IS NULL THEN 1 ELSE 0 END, expiry_date ASC, created_at ASC"

// GormBatchRepository implements BatchRepository using GORM
type GormBatchRepository struct {
	db *gorm.DB
}

// NewGormBatchRepository creates a new GormBatchRepository
func NewGormBatchRepository(db *gorm.DB) *GormBatchRepository {
	return &GormBatchRepository{db: db}
}

// FindByID finds a lot by its ID
func (r *GormBatchRepository) FindByID(ctx context.Context, id uuid.UUID) (*inventory.Batch, error) {
	return r.findOne(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByIDForUpdate finds a lot by its ID and locks the row
func (r *GormBatchRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*inventory.Batch, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id))
}

// FindAvailableForUpdate locks every lot of the product that still holds stock, soonest expiry first
func (r *GormBatchRepository) FindAvailableForUpdate(ctx context.Context, productID uuid.UUID) ([]inventory.Batch, error) {
	return r.findMany(r.db.WithContext(ctx).
		Clauses(forUpdate).
		Where("product_id = ? AND current_quantity > 0", productID).
		Order(expiryOrder))
}

// FindByProduct lists every lot of a product, soonest expiry first
func (r *GormBatchRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.Batch, error) {
	return r.findMany(r.db.WithContext(ctx).Where("product_id = ?", productID).Order(expiryOrder))
}

// FindByNumber finds a product's lot by batch number
func (r *GormBatchRepository) FindByNumber(ctx context.Context, productID uuid.UUID, batchNumber string) (*inventory.Batch, error) {
	return r.findOne(r.db.WithContext(ctx).Where("product_id = ? AND batch_number = ?", productID, batchNumber))
}

// FindByPurchaseOrderItem lists the lots received for a purchase order line
func (r *GormBatchRepository) FindByPurchaseOrderItem(ctx context.Context, itemID uuid.UUID) ([]inventory.Batch, error) {
	return r.findMany(r.db.WithContext(ctx).Where("purchase_order_item_id = ?", itemID).Order("created_at ASC"))
}

// FindWithStockExpiringBy lists lots with stock whose expiry date is on or before the cutoff
func (r *GormBatchRepository) FindWithStockExpiringBy(ctx context.Context, cutoff time.Time) ([]inventory.Batch, error) {
	return r.findMany(r.db.WithContext(ctx).
		Where("current_quantity > 0 AND expiry_date IS NOT NULL AND expiry_date <= ?", cutoff).
		Order("expiry_date ASC"))
}

// FindAll finds all lots matching the filter
func (r *GormBatchRepository) FindAll(ctx context.Context, filter shared.Filter) ([]inventory.Batch, error) {
	query := r.db.WithContext(ctx).Model(&models.BatchModel{})
	if filter.Search != "" {
		query = query.Where("LOWER(batch_number) LIKE ?", likePattern(filter.Search))
	}
	for key, value := range filter.Filters {
		switch key {
		case "product_id":
			query = query.Where("product_id = ?", value)
		case "in_stock":
			if value == true {
				query = query.Where("current_quantity > 0")
			}
		case "has_expiry":
			if value == true {
				query = query.Where("expiry_date IS NOT NULL")
			}
		}
	}
	return r.findMany(applyOrderAndPage(query, filter, BatchSortFields, "created_at"))
}

// SumCurrentQuantity totals the remaining stock across a product's lots
func (r *GormBatchRepository) SumCurrentQuantity(ctx context.Context, productID uuid.UUID) (int, error) {
	var result struct {
		Total int64
	}
	if err := r.db.WithContext(ctx).Model(&models.BatchModel{}).
		Select("COALESCE(SUM(current_quantity), 0) as total").
		Where("product_id = ?", productID).
		Scan(&result).Error; err != nil {
		return 0, err
	}
	return int(result.Total), nil
}

// Save creates or updates a lot
func (r *GormBatchRepository) Save(ctx context.Context, batch *inventory.Batch) error {
	return translateError(r.db.WithContext(ctx).Save(models.BatchModelFromDomain(batch)).Error)
}

// Delete removes a lot
func (r *GormBatchRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.BatchModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

func (r *GormBatchRepository) findOne(query *gorm.DB) (*inventory.Batch, error) {
	var row models.BatchModel
	if err := query.First(&row).Error; err != nil {
		return nil, translateError(err)
	}
	return row.ToDomain(), nil
}

func (r *GormBatchRepository) findMany(query *gorm.DB) ([]inventory.Batch, error) {
	var rows []models.BatchModel
	if err := query.Find(&rows).Error; err != nil {
		return nil, err
	}
	batches := make([]inventory.Batch, len(rows))
	for i := range rows {
		batches[i] = *rows[i].ToDomain()
	}
	return batches, nil
}

// Ensure GormBatchRepository implements BatchRepository
var _ inventory.BatchRepository = (*GormBatchRepository)(nil)
