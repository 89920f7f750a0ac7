package partner

import (
	"strings"

	"github.com/shopman/backend/internal/domain/shared"
)

// Supplier provides purchase orders their counterparty
type Supplier struct {
	shared.BaseAggregateRoot
	Name          string
	ContactPerson string
	Phone         string
	Email         string
	Address       string
}

// NewSupplier creates a new supplier
func NewSupplier(name, contactPerson, phone string) (*Supplier, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}
	if len(name) > 200 {
		return nil, shared.NewDomainError("INVALID_NAME", "Supplier name cannot exceed 200 characters")
	}
	if phone != "" {
		if err := validatePhone(phone); err != nil {
			return nil, err
		}
	}
	return &Supplier{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		ContactPerson:     contactPerson,
		Phone:             phone,
	}, nil
}

// SetContact updates email and address
func (s *Supplier) SetContact(email, address string) {
	s.Email = email
	s.Address = address
	s.IncrementVersion()
}
