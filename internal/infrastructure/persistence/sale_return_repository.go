package persistence

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/domain/trade"
	"github.com/shopman/backend/internal/infrastructure/persistence/models"
	"gorm.io/gorm"
)

// GormSaleReturnRepository implements SaleReturnRepository using GORM
type GormSaleReturnRepository struct {
	db *gorm.DB
}

// NewGormSaleReturnRepository creates a new GormSaleReturnRepository
func NewGormSaleReturnRepository(db *gorm.DB) *GormSaleReturnRepository {
	return &GormSaleReturnRepository{db: db}
}

// FindByID finds a customer return by ID with its items
func (r *GormSaleReturnRepository) FindByID(ctx context.Context, id uuid.UUID) (*trade.SaleReturn, error) {
	return r.findOne(r.db.WithContext(ctx).Where("id = ?", id))
}

// FindByIDForUpdate finds a customer return by ID and locks the row
func (r *GormSaleReturnRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*trade.SaleReturn, error) {
	return r.findOne(r.db.WithContext(ctx).Clauses(forUpdate).Where("id = ?", id))
}

// FindBySale lists the returns raised against a sale, oldest first
func (r *GormSaleReturnRepository) FindBySale(ctx context.Context, saleID uuid.UUID) ([]trade.SaleReturn, error) {
	return r.findMany(r.db.WithContext(ctx).Where("sale_id = ?", saleID).Order("created_at ASC"))
}

// FindAll finds all customer returns matching the filter
func (r *GormSaleReturnRepository) FindAll(ctx context.Context, filter shared.Filter) ([]trade.SaleReturn, error) {
	query := r.db.WithContext(ctx).Model(&models.SaleReturnModel{})
	if filter.Search != "" {
		pattern := likePattern(filter.Search)
		query = query.Where("LOWER(return_number) LIKE ? OR LOWER(invoice_number) LIKE ?", pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "status":
			query = query.Where("status = ?", value)
		case "return_type":
			query = query.Where("return_type = ?", value)
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		}
	}
	return r.findMany(applyOrderAndPage(query, filter, SaleReturnSortFields, "created_at"))
}

// Save creates or updates a customer return and its items
func (r *GormSaleReturnRepository) Save(ctx context.Context, ret *trade.SaleReturn) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		model := models.SaleReturnModelFromDomain(ret)
		if err := tx.Omit("Items").Save(model).Error; err != nil {
			return translateError(err)
		}
		ids := make([]uuid.UUID, len(model.Items))
		for i := range model.Items {
			model.Items[i].SaleReturnID = ret.ID
			ids[i] = model.Items[i].ID
		}
		return syncItems(tx, "sale_return_id", ret.ID, ids, model.Items)
	})
}

// ClaimedQuantities sums item quantities per sale line across returns that are not rejected
func (r *GormSaleReturnRepository) ClaimedQuantities(ctx context.Context, saleID uuid.UUID) (map[uuid.UUID]int, error) {
	var rows []claimedRow
	if err := r.db.WithContext(ctx).
		Table("sale_return_items AS i").
		Select("i.sale_item_id AS item_id, COALESCE(SUM(i.quantity), 0) AS quantity").
		Joins("JOIN sale_returns AS r ON r.id = i.sale_return_id").
		Where("r.sale_id = ? AND r.status <> ?", saleID, trade.SaleReturnStatusRejected).
		Group("i.sale_item_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return claimedMap(rows), nil
}

func (r *GormSaleReturnRepository) findOne(query *gorm.DB) (*trade.SaleReturn, error) {
	var row models.SaleReturnModel
	if err := query.Preload("Items", orderedItems).First(&row).Error; err != nil {
		return nil, translateError(err)
	}
	return row.ToDomain(), nil
}

func (r *GormSaleReturnRepository) findMany(query *gorm.DB) ([]trade.SaleReturn, error) {
	var rows []models.SaleReturnModel
	if err := query.Preload("Items", orderedItems).Find(&rows).Error; err != nil {
		return nil, err
	}
	returns := make([]trade.SaleReturn, len(rows))
	for i := range rows {
		returns[i] = *rows[i].ToDomain()
	}
	return returns, nil
}

// Ensure GormSaleReturnRepository implements SaleReturnRepository
var _ trade.SaleReturnRepository = (*GormSaleReturnRepository)(nil)
