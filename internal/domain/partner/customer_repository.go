package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
)

// CustomerRepository defines the interface for customer persistence
type CustomerRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*Customer, error)

	// FindByIDForUpdate loads the customer under a row lock
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*Customer, error)

	FindByPhone(ctx context.Context, phone string) (*Customer, error)
	FindAll(ctx context.Context, filter shared.Filter) ([]Customer, error)

	// FindIDsWithDue lists customers currently carrying a positive due balance
	FindIDsWithDue(ctx context.Context) ([]uuid.UUID, error)
	FindAllIDs(ctx context.Context) ([]uuid.UUID, error)

	Save(ctx context.Context, customer *Customer) error
	Count(ctx context.Context, filter shared.Filter) (int64, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
}
