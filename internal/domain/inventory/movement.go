package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
)

// MovementType classifies a stock movement
type MovementType string

const (
	MovementPurchaseIn    MovementType = "purchase_in"
	MovementSaleOut       MovementType = "sale_out"
	MovementReturnIn      MovementType = "return_in"
	MovementReturnOut     MovementType = "return_out"
	MovementAdjustmentIn  MovementType = "adjustment_in"
	MovementAdjustmentOut MovementType = "adjustment_out"
)

// IsValid returns true if the movement type is known
func (t MovementType) IsValid() bool {
	switch t {
	case MovementPurchaseIn, MovementSaleOut, MovementReturnIn,
		MovementReturnOut, MovementAdjustmentIn, MovementAdjustmentOut:
		return true
	}
	return false
}

// IsOutbound returns true for movements that take stock away
func (t MovementType) IsOutbound() bool {
	return t == MovementSaleOut || t == MovementReturnOut || t == MovementAdjustmentOut
}

// StockMovement is one append-only audit line. Quantity is signed:
// negative for outbound movements.
type StockMovement struct {
	shared.BaseEntity
	ProductID       uuid.UUID
	BatchID         *uuid.UUID
	BatchNumber     string
	Type            MovementType
	Quantity        int
	ReferenceNumber string
	Notes           string
}

// NewStockMovement records qty units moving in the direction implied by the type
func NewStockMovement(movementType MovementType, productID uuid.UUID, batch *Batch, qty int, reference, notes string) (*StockMovement, error) {
	if !movementType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid movement type")
	}
	if qty <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Movement quantity must be positive")
	}
	signed := qty
	if movementType.IsOutbound() {
		signed = -qty
	}
	m := &StockMovement{
		BaseEntity:      shared.NewBaseEntity(),
		ProductID:       productID,
		Type:            movementType,
		Quantity:        signed,
		ReferenceNumber: reference,
		Notes:           notes,
	}
	if batch != nil {
		id := batch.ID
		m.BatchID = &id
		m.BatchNumber = batch.BatchNumber
	}
	return m, nil
}

// MovementFilter narrows movement history queries
type MovementFilter struct {
	ProductID       *uuid.UUID
	ReferenceNumber string
	Type            MovementType
	From            *time.Time
	To              *time.Time
	Limit           int
}
