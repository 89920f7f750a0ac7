package partner

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/partner"
	"github.com/shopman/backend/internal/domain/shared"
)

// SupplierService handles supplier-related business operations
type SupplierService struct {
	supplierRepo partner.SupplierRepository
}

// NewSupplierService creates a new SupplierService
func NewSupplierService(supplierRepo partner.SupplierRepository) *SupplierService {
	return &SupplierService{supplierRepo: supplierRepo}
}

// Create creates a new supplier
func (s *SupplierService) Create(ctx context.Context, req CreateSupplierRequest) (*SupplierResponse, error) {
	supplier, err := partner.NewSupplier(req.Name, req.ContactPerson, req.Phone)
	if err != nil {
		return nil, err
	}
	if req.Email != "" || req.Address != "" {
		supplier.SetContact(req.Email, req.Address)
	}
	if err := s.supplierRepo.Save(ctx, supplier); err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// GetByID retrieves a supplier by ID
func (s *SupplierService) GetByID(ctx context.Context, id uuid.UUID) (*SupplierResponse, error) {
	supplier, err := s.supplierRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToSupplierResponse(supplier)
	return &resp, nil
}

// List returns suppliers by name
func (s *SupplierService) List(ctx context.Context, search string) ([]SupplierResponse, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 0
	filter.OrderBy = "name"
	filter.OrderDir = "asc"
	filter.Search = search
	suppliers, err := s.supplierRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]SupplierResponse, 0, len(suppliers))
	for i := range suppliers {
		out = append(out, ToSupplierResponse(&suppliers[i]))
	}
	return out, nil
}
