package catalog

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence
type ProductRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindByIDForUpdate loads the product and holds a row lock until the transaction ends
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Product, error)

	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Product, error)
	FindBySKU(ctx context.Context, sku string) (*Product, error)
	FindByBarcode(ctx context.Context, barcode string) (*Product, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// FindLowStock returns products whose stock is at or below their min level
	FindLowStock(ctx context.Context) ([]Product, error)

	Save(ctx context.Context, product *Product) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsBySKU(ctx context.Context, sku string) (bool, error)
	ExistsByBarcode(ctx context.Context, barcode string) (bool, error)
}
