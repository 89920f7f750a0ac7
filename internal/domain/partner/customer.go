package partner

import (
	"regexp"
	"strings"

	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// WalkInCustomerName is the placeholder name used at the till for anonymous buyers
const WalkInCustomerName = "Walk-in Customer"

// DefaultCreditLimit applies to newly registered customers
var DefaultCreditLimit = decimal.NewFromInt(10000)

var validPhone = regexp.MustCompile(`^[\d\s\-\(\)\+]+$`)

// Customer is a registered buyer who may carry a due balance.
// TotalDue is derived from open sales and is rewritten by the credit ledger only.
type Customer struct {
	shared.BaseAggregateRoot
	Name        string
	Phone       string
	Email       string
	Address     string
	TotalDue    decimal.Decimal
	CreditLimit decimal.Decimal
	IsActive    bool
}

// NewCustomer registers a customer identified by phone number
func NewCustomer(name, phone string) (*Customer, error) {
	if err := validateCustomerName(name); err != nil {
		return nil, err
	}
	if err := validatePhone(phone); err != nil {
		return nil, err
	}
	return &Customer{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		Phone:             strings.TrimSpace(phone),
		TotalDue:          decimal.Zero,
		CreditLimit:       DefaultCreditLimit,
		IsActive:          true,
	}, nil
}

// Update changes the customer's name and contact details
func (c *Customer) Update(name, phone, email, address string) error {
	if err := validateCustomerName(name); err != nil {
		return err
	}
	if err := validatePhone(phone); err != nil {
		return err
	}
	c.Name = strings.TrimSpace(name)
	c.Phone = strings.TrimSpace(phone)
	c.Email = email
	c.Address = address
	c.IncrementVersion()
	return nil
}

func (c *Customer) SetCreditLimit(limit decimal.Decimal) error {
	if limit.IsNegative() {
		return shared.NewDomainError("INVALID_CREDIT_LIMIT", "Credit limit cannot be negative")
	}
	c.CreditLimit = limit
	c.IncrementVersion()
	return nil
}

// ApplyDueRecompute stores a freshly derived due balance
func (c *Customer) ApplyDueRecompute(totalDue decimal.Decimal) {
	if totalDue.IsNegative() {
		totalDue = decimal.Zero
	}
	if c.TotalDue.Equal(totalDue) {
		return
	}
	c.TotalDue = totalDue
	c.IncrementVersion()
}

// CanMakeCreditSale is advisory; a registered customer past the limit is not blocked
func (c *Customer) CanMakeCreditSale() bool {
	return c.TotalDue.LessThan(c.CreditLimit)
}

// AvailableCredit is the headroom under the credit limit, never negative
func (c *Customer) AvailableCredit() decimal.Decimal {
	return decimal.Max(decimal.Zero, c.CreditLimit.Sub(c.TotalDue))
}

func (c *Customer) Activate() {
	c.IsActive = true
	c.IncrementVersion()
}

func (c *Customer) Deactivate() {
	c.IsActive = false
	c.IncrementVersion()
}

// IsRegistrableName reports whether a till-entered name is worth auto-registering
func IsRegistrableName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && !strings.EqualFold(name, WalkInCustomerName)
}

func validateCustomerName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Customer name cannot exceed 200 characters")
	}
	return nil
}

func validatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return shared.NewDomainError("INVALID_PHONE", "Phone number is required")
	}
	if len(phone) > 20 {
		return shared.NewDomainError("INVALID_PHONE", "Phone number cannot exceed 20 characters")
	}
	if !validPhone.MatchString(phone) {
		return shared.NewDomainError("INVALID_PHONE", "Invalid phone number format")
	}
	return nil
}
