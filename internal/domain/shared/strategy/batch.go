package strategy

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Batch is the view of a stock lot a selection strategy works on
type Batch struct {
	ID              uuid.UUID
	ProductID       uuid.UUID
	BatchNumber     string
	AvailableQty    int
	ManufactureDate time.Time
	ExpiryDate      time.Time // zero when the lot does not expire
	ReceivedDate    time.Time
}

// BatchSelection is the quantity drawn from one batch
type BatchSelection struct {
	BatchID     uuid.UUID
	BatchNumber string
	Quantity    int
	ExpiryDate  time.Time
}

// BatchSelectionContext provides context for batch selection
type BatchSelectionContext struct {
	ProductID uuid.UUID
	Quantity  int
	Date      time.Time
}

// BatchSelectionResult contains the result of batch selection.
// ShortfallQty is the part of the request no selected batch covers.
type BatchSelectionResult struct {
	Selections   []BatchSelection
	TotalQty     int
	ShortfallQty int
}

// BatchManagementStrategy picks the lots a sale consumes
type BatchManagementStrategy interface {
	Strategy
	SelectBatches(ctx context.Context, selCtx BatchSelectionContext, batches []Batch) (BatchSelectionResult, error)
	// SplitsAcrossBatches reports whether one request may draw from several lots
	SplitsAcrossBatches() bool
}
