package inventory

import (
	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
)

// AdjustmentType enumerates manual stock corrections
type AdjustmentType string

const (
	AdjustmentAdd            AdjustmentType = "add"
	AdjustmentRemove         AdjustmentType = "remove"
	AdjustmentCorrection     AdjustmentType = "correction"
	AdjustmentExpiryWriteOff AdjustmentType = "expiry_writeoff"
	AdjustmentDamageWriteOff AdjustmentType = "damage_writeoff"
)

// IsValid returns true if the adjustment type is known
func (t AdjustmentType) IsValid() bool {
	switch t {
	case AdjustmentAdd, AdjustmentRemove, AdjustmentCorrection,
		AdjustmentExpiryWriteOff, AdjustmentDamageWriteOff:
		return true
	}
	return false
}

// RequiresBatch reports whether the adjustment must name the lot it draws from
func (t AdjustmentType) RequiresBatch() bool {
	return t == AdjustmentRemove || t == AdjustmentExpiryWriteOff || t == AdjustmentDamageWriteOff
}

// StockAdjustment is the persisted record of a manual correction
type StockAdjustment struct {
	shared.BaseEntity
	ProductID uuid.UUID
	BatchID   *uuid.UUID
	Type      AdjustmentType
	Quantity  int
	Reason    string
	Notes     string
	// StockBefore/StockAfter capture product stock around the adjustment
	StockBefore int
	StockAfter  int
}

// NewStockAdjustment validates the request shape; stock checks happen in the ledger
func NewStockAdjustment(productID uuid.UUID, batchID *uuid.UUID, adjType AdjustmentType, qty int, reason, notes string) (*StockAdjustment, error) {
	if !adjType.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid adjustment type")
	}
	if adjType == AdjustmentCorrection {
		if qty < 0 {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Corrected stock cannot be negative")
		}
	} else if qty <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be greater than 0")
	}
	if adjType.RequiresBatch() && batchID == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Please select a batch for this adjustment")
	}
	return &StockAdjustment{
		BaseEntity: shared.NewBaseEntity(),
		ProductID:  productID,
		BatchID:    batchID,
		Type:       adjType,
		Quantity:   qty,
		Reason:     reason,
		Notes:      notes,
	}, nil
}
