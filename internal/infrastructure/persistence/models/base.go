package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
)

// BaseModel is the id and timestamp columns shared by every table
type BaseModel struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

func (m *BaseModel) Entity() shared.BaseEntity {
	return shared.BaseEntity{ID: m.ID, CreatedAt: m.CreatedAt, UpdatedAt: m.UpdatedAt}
}

func (m *BaseModel) SetEntity(e shared.BaseEntity) {
	m.ID, m.CreatedAt, m.UpdatedAt = e.ID, e.CreatedAt, e.UpdatedAt
}

// AggregateModel adds the version column of aggregate roots
type AggregateModel struct {
	BaseModel
	Version int `gorm:"not null;default:1"`
}

func (m *AggregateModel) Root() shared.BaseAggregateRoot {
	return shared.BaseAggregateRoot{BaseEntity: m.Entity(), Version: m.Version}
}

func (m *AggregateModel) SetRoot(a shared.BaseAggregateRoot) {
	m.SetEntity(a.BaseEntity)
	m.Version = a.Version
}

// AllModels lists every table model, in dependency order, for AutoMigrate
func AllModels() []any {
	return []any{
		&CategoryModel{},
		&SupplierModel{},
		&CustomerModel{},
		&ProductModel{},
		&PurchaseOrderModel{},
		&PurchaseOrderItemModel{},
		&PurchaseOrderCancellationModel{},
		&BatchModel{},
		&StockMovementModel{},
		&StockAdjustmentModel{},
		&PurchaseReturnModel{},
		&PurchaseReturnItemModel{},
		&SaleModel{},
		&SaleItemModel{},
		&SaleReturnModel{},
		&SaleReturnItemModel{},
		&SupplierBillModel{},
		&BillPaymentModel{},
		&DuePaymentModel{},
		&DocumentSequenceModel{},
	}
}
