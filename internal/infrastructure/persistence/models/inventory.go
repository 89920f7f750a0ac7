package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/inventory"
)

// BatchModel is the persistence model for a stock lot.
// The batch number is unique per product.
type BatchModel struct {
	AggregateModel
	ProductID           uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_batch_product_number,priority:1;index:idx_batch_product_expiry,priority:1"`
	PurchaseOrderItemID *uuid.UUID `gorm:"type:uuid;index"`
	BatchNumber         string     `gorm:"type:varchar(100);not null;uniqueIndex:idx_batch_product_number,priority:2"`
	ManufactureDate     *time.Time `gorm:"type:date"`
	ExpiryDate          *time.Time `gorm:"type:date;index:idx_batch_product_expiry,priority:2"`
	Quantity            int        `gorm:"not null"`
	CurrentQuantity     int        `gorm:"not null"`
}

// TableName returns the table name for GORM
func (BatchModel) TableName() string {
	return "batches"
}

// ToDomain converts the persistence model to a domain Batch entity.
func (m *BatchModel) ToDomain() *inventory.Batch {
	return &inventory.Batch{
		BaseAggregateRoot:   m.Root(),
		ProductID:           m.ProductID,
		PurchaseOrderItemID: m.PurchaseOrderItemID,
		BatchNumber:         m.BatchNumber,
		ManufactureDate:     m.ManufactureDate,
		ExpiryDate:          m.ExpiryDate,
		Quantity:            m.Quantity,
		CurrentQuantity:     m.CurrentQuantity,
	}
}

// FromDomain populates the persistence model from a domain Batch entity.
func (m *BatchModel) FromDomain(b *inventory.Batch) {
	m.SetRoot(b.BaseAggregateRoot)
	m.ProductID = b.ProductID
	m.PurchaseOrderItemID = b.PurchaseOrderItemID
	m.BatchNumber = b.BatchNumber
	m.ManufactureDate = b.ManufactureDate
	m.ExpiryDate = b.ExpiryDate
	m.Quantity = b.Quantity
	m.CurrentQuantity = b.CurrentQuantity
}

// BatchModelFromDomain creates a new persistence model from a domain Batch entity.
func BatchModelFromDomain(b *inventory.Batch) *BatchModel {
	m := &BatchModel{}
	m.FromDomain(b)
	return m
}

// StockMovementModel is one row of the append-only stock audit trail.
// BatchID is kept without a foreign key: lots emptied by supplier returns are deleted.
type StockMovementModel struct {
	BaseModel
	ProductID       uuid.UUID              `gorm:"type:uuid;not null;index:idx_movement_product_created,priority:1"`
	BatchID         *uuid.UUID             `gorm:"type:uuid;index"`
	BatchNumber     string                 `gorm:"type:varchar(100)"`
	Type            inventory.MovementType `gorm:"column:movement_type;type:varchar(20);not null;index"`
	Quantity        int                    `gorm:"not null"`
	ReferenceNumber string                 `gorm:"type:varchar(100);index"`
	Notes           string                 `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (StockMovementModel) TableName() string {
	return "stock_movements"
}

// ToDomain converts the persistence model to a domain StockMovement.
func (m *StockMovementModel) ToDomain() *inventory.StockMovement {
	return &inventory.StockMovement{
		BaseEntity:      m.Entity(),
		ProductID:       m.ProductID,
		BatchID:         m.BatchID,
		BatchNumber:     m.BatchNumber,
		Type:            m.Type,
		Quantity:        m.Quantity,
		ReferenceNumber: m.ReferenceNumber,
		Notes:           m.Notes,
	}
}

// FromDomain populates the persistence model from a domain StockMovement.
func (m *StockMovementModel) FromDomain(mv *inventory.StockMovement) {
	m.SetEntity(mv.BaseEntity)
	m.ProductID = mv.ProductID
	m.BatchID = mv.BatchID
	m.BatchNumber = mv.BatchNumber
	m.Type = mv.Type
	m.Quantity = mv.Quantity
	m.ReferenceNumber = mv.ReferenceNumber
	m.Notes = mv.Notes
}

// StockAdjustmentModel records a manual stock correction.
type StockAdjustmentModel struct {
	BaseModel
	ProductID   uuid.UUID                `gorm:"type:uuid;not null;index"`
	BatchID     *uuid.UUID               `gorm:"type:uuid"`
	Type        inventory.AdjustmentType `gorm:"column:adjustment_type;type:varchar(20);not null"`
	Quantity    int                      `gorm:"not null"`
	Reason      string                   `gorm:"type:varchar(200);not null"`
	Notes       string                   `gorm:"type:text"`
	StockBefore int                      `gorm:"not null"`
	StockAfter  int                      `gorm:"not null"`
}

// TableName returns the table name for GORM
func (StockAdjustmentModel) TableName() string {
	return "stock_adjustments"
}

// ToDomain converts the persistence model to a domain StockAdjustment.
func (m *StockAdjustmentModel) ToDomain() *inventory.StockAdjustment {
	return &inventory.StockAdjustment{
		BaseEntity:  m.Entity(),
		ProductID:   m.ProductID,
		BatchID:     m.BatchID,
		Type:        m.Type,
		Quantity:    m.Quantity,
		Reason:      m.Reason,
		Notes:       m.Notes,
		StockBefore: m.StockBefore,
		StockAfter:  m.StockAfter,
	}
}

// FromDomain populates the persistence model from a domain StockAdjustment.
func (m *StockAdjustmentModel) FromDomain(a *inventory.StockAdjustment) {
	m.SetEntity(a.BaseEntity)
	m.ProductID = a.ProductID
	m.BatchID = a.BatchID
	m.Type = a.Type
	m.Quantity = a.Quantity
	m.Reason = a.Reason
	m.Notes = a.Notes
	m.StockBefore = a.StockBefore
	m.StockAfter = a.StockAfter
}
