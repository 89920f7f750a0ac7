package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/catalog"
	"github.com/shopman/backend/internal/domain/inventory"
	"github.com/shopspring/decimal"
)

// BatchResponse represents a lot in API responses
type BatchResponse struct {
	ID                  uuid.UUID  `json:"id"`
	ProductID           uuid.UUID  `json:"product_id"`
	PurchaseOrderItemID *uuid.UUID `json:"purchase_order_item_id,omitempty"`
	BatchNumber         string     `json:"batch_number"`
	ManufactureDate     *time.Time `json:"manufacture_date,omitempty"`
	ExpiryDate          *time.Time `json:"expiry_date,omitempty"`
	Quantity            int        `json:"quantity"`
	CurrentQuantity     int        `json:"current_quantity"`
	IsExpired           bool       `json:"is_expired"`
	DaysUntilExpiry     *int       `json:"days_until_expiry,omitempty"`
	CreatedAt           time.Time  `json:"created_at"`
}

// ToBatchResponse converts a domain lot to a response
func ToBatchResponse(b *inventory.Batch, today time.Time) BatchResponse {
	resp := BatchResponse{
		ID:                  b.ID,
		ProductID:           b.ProductID,
		PurchaseOrderItemID: b.PurchaseOrderItemID,
		BatchNumber:         b.BatchNumber,
		ManufactureDate:     b.ManufactureDate,
		ExpiryDate:          b.ExpiryDate,
		Quantity:            b.Quantity,
		CurrentQuantity:     b.CurrentQuantity,
		IsExpired:           b.IsExpired(today),
		CreatedAt:           b.CreatedAt,
	}
	if days, ok := b.DaysUntilExpiry(today); ok {
		resp.DaysUntilExpiry = &days
	}
	return resp
}

// MovementResponse represents a stock movement
type MovementResponse struct {
	ID              uuid.UUID              `json:"id"`
	ProductID       uuid.UUID              `json:"product_id"`
	BatchID         *uuid.UUID             `json:"batch_id,omitempty"`
	BatchNumber     string                 `json:"batch_number,omitempty"`
	Type            inventory.MovementType `json:"movement_type"`
	Quantity        int                    `json:"quantity"`
	ReferenceNumber string                 `json:"reference_number"`
	Notes           string                 `json:"notes,omitempty"`
	MovementDate    time.Time              `json:"movement_date"`
}

// ToMovementResponse converts a movement to a response
func ToMovementResponse(m *inventory.StockMovement) MovementResponse {
	return MovementResponse{
		ID:              m.ID,
		ProductID:       m.ProductID,
		BatchID:         m.BatchID,
		BatchNumber:     m.BatchNumber,
		Type:            m.Type,
		Quantity:        m.Quantity,
		ReferenceNumber: m.ReferenceNumber,
		Notes:           m.Notes,
		MovementDate:    m.CreatedAt,
	}
}

// AdjustStockRequest represents a manual stock adjustment
type AdjustStockRequest struct {
	ProductID   uuid.UUID  `json:"product_id" binding:"required"`
	BatchID     *uuid.UUID `json:"batch_id"`
	Type        string     `json:"adjustment_type" binding:"required,oneof=add remove correction expiry_writeoff damage_writeoff"`
	Quantity    int        `json:"quantity" binding:"min=0"`
	Reason      string     `json:"reason" binding:"required,max=200"`
	Notes       string     `json:"notes"`
	BatchNumber string     `json:"batch_number" binding:"max=100"`
	ExpiryDate  *time.Time `json:"expiry_date"`
}

// WriteOffRequest writes off units of an expired lot
type WriteOffRequest struct {
	Quantity int    `json:"quantity" binding:"required,min=1"`
	Reason   string `json:"reason" binding:"max=200"`
}

// AdjustmentResponse represents a recorded adjustment
type AdjustmentResponse struct {
	ID          uuid.UUID                `json:"id"`
	ProductID   uuid.UUID                `json:"product_id"`
	BatchID     *uuid.UUID               `json:"batch_id,omitempty"`
	Type        inventory.AdjustmentType `json:"adjustment_type"`
	Quantity    int                      `json:"quantity"`
	Reason      string                   `json:"reason"`
	StockBefore int                      `json:"stock_before"`
	StockAfter  int                      `json:"stock_after"`
	CreatedAt   time.Time                `json:"created_at"`
}

// ExpiryLine is one lot in the expiry report
type ExpiryLine struct {
	BatchID         uuid.UUID       `json:"batch_id"`
	BatchNumber     string          `json:"batch_number"`
	ProductID       uuid.UUID       `json:"product_id"`
	ProductName     string          `json:"product_name"`
	ExpiryDate      time.Time       `json:"expiry_date"`
	DaysUntilExpiry int             `json:"days_until_expiry"`
	CurrentQuantity int             `json:"current_quantity"`
	Value           decimal.Decimal `json:"value"`
}

// ProductExpiry aggregates expiring stock of one product
type ProductExpiry struct {
	ProductID       uuid.UUID `json:"product_id"`
	ProductName     string    `json:"product_name"`
	NearExpiryStock int       `json:"near_expiry_stock"`
	ExpiredStock    int       `json:"expired_stock"`
}

// ExpiryReport lists expired and near-expiry lots
type ExpiryReport struct {
	Date            time.Time       `json:"date"`
	Expired         []ExpiryLine    `json:"expired"`
	NearExpiry      []ExpiryLine    `json:"near_expiry"`
	Products        []ProductExpiry `json:"products"`
	ExpiredValue    decimal.Decimal `json:"expired_value"`
	NearExpiryValue decimal.Decimal `json:"near_expiry_value"`
}

// StockLine is one product in the stock report
type StockLine struct {
	ProductID     uuid.UUID           `json:"product_id"`
	Name          string              `json:"name"`
	SKU           string              `json:"sku"`
	CurrentStock  int                 `json:"current_stock"`
	MinStockLevel int                 `json:"min_stock_level"`
	Status        catalog.StockStatus `json:"stock_status"`
	StockValue    decimal.Decimal     `json:"stock_value"`
}

// StockReport summarises stock levels and value
type StockReport struct {
	Items           []StockLine     `json:"items"`
	LowStock        []StockLine     `json:"low_stock"`
	TotalProducts   int             `json:"total_products"`
	OutOfStockCount int             `json:"out_of_stock_count"`
	LowStockCount   int             `json:"low_stock_count"`
	TotalValue      decimal.Decimal `json:"total_value"`
}

func toStockLine(p *catalog.Product) StockLine {
	return StockLine{
		ProductID:     p.ID,
		Name:          p.Name,
		SKU:           p.SKU,
		CurrentStock:  p.CurrentStock,
		MinStockLevel: p.MinStockLevel,
		Status:        p.StockStatus(),
		StockValue:    p.StockValue(),
	}
}
