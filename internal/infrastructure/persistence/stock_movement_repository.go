package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/inventory"
	"github.com/shopman/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// defaultMovementLimit caps audit-trail reads that do not set a limit
const defaultMovementLimit = 500

// GormStockMovementRepository implements StockMovementRepository using GORM
type GormStockMovementRepository struct {
	db *gorm.DB
}

// NewGormStockMovementRepository creates a new GormStockMovementRepository
func NewGormStockMovementRepository(db *gorm.DB) *GormStockMovementRepository {
	return &GormStockMovementRepository{db: db}
}

// Save appends a movement to the audit trail
func (r *GormStockMovementRepository) Save(ctx context.Context, movement *inventory.StockMovement) error {
	model := &models.StockMovementModel{}
	model.FromDomain(movement)
	return r.db.WithContext(ctx).Create(model).Error
}

// Find lists movements matching the filter, newest first
func (r *GormStockMovementRepository) Find(ctx context.Context, filter inventory.MovementFilter) ([]inventory.StockMovement, error) {
	query := r.db.WithContext(ctx).Model(&models.StockMovementModel{})
	if filter.ProductID != nil {
		query = query.Where("product_id = ?", *filter.ProductID)
	}
	if filter.ReferenceNumber != "" {
		query = query.Where("reference_number = ?", filter.ReferenceNumber)
	}
	if filter.Type != "" {
		query = query.Where("movement_type = ?", filter.Type)
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at < ?", *filter.To)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = defaultMovementLimit
	}

	var rows []models.StockMovementModel
	if err := query.Order("created_at DESC").Limit(limit).Find(&rows).Error; err != nil {
		return nil, err
	}
	movements := make([]inventory.StockMovement, len(rows))
	for i := range rows {
		movements[i] = *rows[i].ToDomain()
	}
	return movements, nil
}

// GormStockAdjustmentRepository implements StockAdjustmentRepository using GORM
type GormStockAdjustmentRepository struct {
	db *gorm.DB
}

// NewGormStockAdjustmentRepository creates a new GormStockAdjustmentRepository
func NewGormStockAdjustmentRepository(db *gorm.DB) *GormStockAdjustmentRepository {
	return &GormStockAdjustmentRepository{db: db}
}

// Save records an adjustment
func (r *GormStockAdjustmentRepository) Save(ctx context.Context, adjustment *inventory.StockAdjustment) error {
	model := &models.StockAdjustmentModel{}
	model.FromDomain(adjustment)
	return r.db.WithContext(ctx).Save(model).Error
}

// FindByProduct lists a product's adjustments, newest first
func (r *GormStockAdjustmentRepository) FindByProduct(ctx context.Context, productID uuid.UUID) ([]inventory.StockAdjustment, error) {
	var rows []models.StockAdjustmentModel
	if err := r.db.WithContext(ctx).
		Where("product_id = ?", productID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	adjustments := make([]inventory.StockAdjustment, len(rows))
	for i := range rows {
		adjustments[i] = *rows[i].ToDomain()
	}
	return adjustments, nil
}

var (
	_ inventory.StockMovementRepository   = (*GormStockMovementRepository)(nil)
	_ inventory.StockAdjustmentRepository = (*GormStockAdjustmentRepository)(nil)
)
