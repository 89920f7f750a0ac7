package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
)

// BatchRepository defines the interface for batch persistence
type BatchRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Batch, error)

	// FindByIDForUpdate loads the lot under a row lock
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Batch, error)

	// FindAvailableForUpdate locks every lot of the product that still holds stock
	FindAvailableForUpdate(ctx context.Context, productID uuid.UUID) ([]Batch, error)

	FindByProduct(ctx context.Context, productID uuid.UUID) ([]Batch, error)
	FindByNumber(ctx context.Context, productID uuid.UUID, batchNumber string) (*Batch, error)
	FindByPurchaseOrderItem(ctx context.Context, itemID uuid.UUID) ([]Batch, error)

	// FindWithStockExpiringBy lists lots with stock whose expiry date is on or before the cutoff
	FindWithStockExpiringBy(ctx context.Context, cutoff time.Time) ([]Batch, error)

	FindAll(ctx context.Context, filter shared.Filter) ([]Batch, error)
	SumCurrentQuantity(ctx context.Context, productID uuid.UUID) (int, error)
	Save(ctx context.Context, batch *Batch) error
	Delete(ctx context.Context, id uuid.UUID) error
}

// StockMovementRepository persists the movement audit trail
type StockMovementRepository interface {
	Save(ctx context.Context, movement *StockMovement) error
	Find(ctx context.Context, filter MovementFilter) ([]StockMovement, error)
}

// StockAdjustmentRepository persists manual corrections
type StockAdjustmentRepository interface {
	Save(ctx context.Context, adjustment *StockAdjustment) error
	FindByProduct(ctx context.Context, productID uuid.UUID) ([]StockAdjustment, error)
}
