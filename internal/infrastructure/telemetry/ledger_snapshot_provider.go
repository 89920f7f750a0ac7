package telemetry

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormSnapshotProvider aggregates stock and due totals straight from the ledger tables
type GormSnapshotProvider struct {
	db *gorm.DB
}

func NewGormSnapshotProvider(db *gorm.DB) *GormSnapshotProvider {
	return &GormSnapshotProvider{db: db}
}

func (p *GormSnapshotProvider) Snapshot(ctx context.Context) (LedgerSnapshot, error) {
	var s LedgerSnapshot
	db := p.db.WithContext(ctx)

	if err := db.Table("products").
		Where("is_active = ? AND current_stock > 0 AND current_stock <= min_stock_level", true).
		Count(&s.LowStockProducts).Error; err != nil {
		return s, fmt.Errorf("count low stock products: %w", err)
	}
	if err := db.Table("products").
		Where("is_active = ? AND current_stock <= 0", true).
		Count(&s.OutOfStockProducts).Error; err != nil {
		return s, fmt.Errorf("count out of stock products: %w", err)
	}

	var totals struct {
		Total decimal.NullDecimal
	}
	if err := db.Table("customers").Select("SUM(total_due) AS total").Scan(&totals).Error; err != nil {
		return s, fmt.Errorf("sum customer dues: %w", err)
	}
	s.CustomerDue = totals.Total.Decimal

	totals.Total = decimal.NullDecimal{}
	if err := db.Table("supplier_bills").
		Where("status <> ?", "paid").
		Select("SUM(due_amount) AS total").Scan(&totals).Error; err != nil {
		return s, fmt.Errorf("sum supplier dues: %w", err)
	}
	s.SupplierDue = totals.Total.Decimal
	return s, nil
}
