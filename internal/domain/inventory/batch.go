package inventory

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/domain/shared/strategy"
)

// Batch is a dated lot of one product. CurrentQuantity is what remains
// of the received Quantity and never exceeds it.
type Batch struct {
	shared.BaseAggregateRoot
	ProductID           uuid.UUID
	PurchaseOrderItemID *uuid.UUID // provenance, nil for manual stock additions
	BatchNumber         string
	ManufactureDate     *time.Time
	ExpiryDate          *time.Time
	Quantity            int
	CurrentQuantity     int
}

// NewBatch creates a lot holding qty units
func NewBatch(productID uuid.UUID, batchNumber string, qty int, manufactureDate, expiryDate *time.Time) (*Batch, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Batch requires a product")
	}
	batchNumber = strings.TrimSpace(batchNumber)
	if batchNumber == "" {
		return nil, shared.NewDomainError("INVALID_BATCH_NUMBER", "Batch number cannot be empty")
	}
	if qty < 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Batch quantity cannot be negative")
	}
	if manufactureDate != nil && expiryDate != nil && !expiryDate.After(*manufactureDate) {
		return nil, shared.NewDomainError(shared.CodeInvalidDateRange, "Expiry date must be after manufacture date")
	}
	return &Batch{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ProductID:         productID,
		BatchNumber:       batchNumber,
		ManufactureDate:   manufactureDate,
		ExpiryDate:        expiryDate,
		Quantity:          qty,
		CurrentQuantity:   qty,
	}, nil
}

// LinkPurchaseOrderItem records which purchase line received the lot
func (b *Batch) LinkPurchaseOrderItem(itemID uuid.UUID) {
	b.PurchaseOrderItemID = &itemID
}

// AddStock receives more units into the lot, growing both counters
func (b *Batch) AddStock(qty int) error {
	if qty < 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Quantity cannot be negative")
	}
	b.Quantity += qty
	b.CurrentQuantity += qty
	b.IncrementVersion()
	return nil
}

// RemoveStock takes units out of the lot
func (b *Batch) RemoveStock(qty int) error {
	if qty < 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Quantity cannot be negative")
	}
	if qty > b.CurrentQuantity {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Not enough stock in batch %s. Available: %d", b.BatchNumber, b.CurrentQuantity))
	}
	b.CurrentQuantity -= qty
	b.IncrementVersion()
	return nil
}

// Restore puts previously removed units back into the lot
func (b *Batch) Restore(qty int) error {
	if qty < 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Quantity cannot be negative")
	}
	if b.CurrentQuantity+qty > b.Quantity {
		return shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Cannot restore %d units to batch %s: would exceed received quantity %d", qty, b.BatchNumber, b.Quantity))
	}
	b.CurrentQuantity += qty
	b.IncrementVersion()
	return nil
}

// IsDepleted reports whether nothing remains in the lot
func (b *Batch) IsDepleted() bool {
	return b.CurrentQuantity <= 0
}

// IsExpired is expiry_date < today
func (b *Batch) IsExpired(today time.Time) bool {
	if b.ExpiryDate == nil {
		return false
	}
	return shared.DateOf(*b.ExpiryDate).Before(shared.DateOf(today))
}

// IsNearExpiry is not expired and expiry_date <= today + warningDays
func (b *Batch) IsNearExpiry(today time.Time, warningDays int) bool {
	if b.ExpiryDate == nil || b.IsExpired(today) {
		return false
	}
	cutoff := shared.DateOf(today).AddDate(0, 0, warningDays)
	return !shared.DateOf(*b.ExpiryDate).After(cutoff)
}

// DaysUntilExpiry returns whole days from today to expiry, negative once expired.
// ok is false for lots without an expiry date.
func (b *Batch) DaysUntilExpiry(today time.Time) (days int, ok bool) {
	if b.ExpiryDate == nil {
		return 0, false
	}
	diff := shared.DateOf(*b.ExpiryDate).Sub(shared.DateOf(today))
	return int(diff.Hours() / 24), true
}

// ToStrategyBatch exposes the lot to batch selection strategies
func (b *Batch) ToStrategyBatch() strategy.Batch {
	sb := strategy.Batch{
		ID:           b.ID,
		ProductID:    b.ProductID,
		BatchNumber:  b.BatchNumber,
		AvailableQty: b.CurrentQuantity,
		ReceivedDate: b.CreatedAt,
	}
	if b.ManufactureDate != nil {
		sb.ManufactureDate = *b.ManufactureDate
	}
	if b.ExpiryDate != nil {
		sb.ExpiryDate = *b.ExpiryDate
	}
	return sb
}

// ReceiptBatchNumber is the default number for a lot created from a purchase line
func ReceiptBatchNumber(day time.Time, itemID uuid.UUID) string {
	return fmt.Sprintf("BATCH-%s-%s", day.Format("20060102"), shortID(itemID))
}

// RestoredBatchNumber names a lot recreated when a completed supplier return is undone
func RestoredBatchNumber(itemID uuid.UUID) string {
	return fmt.Sprintf("RESTORED-%s-%s", shortID(itemID), strings.ToUpper(uuid.NewString()[:6]))
}

func shortID(id uuid.UUID) string {
	return strings.ToUpper(id.String()[:8])
}
