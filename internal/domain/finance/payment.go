package finance

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentMethod is how money changed hands
type PaymentMethod string

const (
	PaymentMethodCash    PaymentMethod = "cash"
	PaymentMethodBank    PaymentMethod = "bank"
	PaymentMethodCheck   PaymentMethod = "check"
	PaymentMethodDigital PaymentMethod = "digital"
)

// IsValid checks if the method is known
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentMethodCash, PaymentMethodBank, PaymentMethodCheck, PaymentMethodDigital:
		return true
	}
	return false
}

// BillPayment is money paid to a supplier against a bill
type BillPayment struct {
	shared.BaseEntity
	BillID          uuid.UUID
	PaymentDate     time.Time
	Amount          decimal.Decimal
	Method          PaymentMethod
	ReferenceNumber string
	Notes           string
}

// NewBillPayment validates the payment against the bill's effective due
func NewBillPayment(bill *SupplierBill, amount decimal.Decimal, method PaymentMethod, reference, notes string, paymentDate time.Time) (*BillPayment, error) {
	if bill == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Bill is required")
	}
	if method == "" {
		method = PaymentMethodBank
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid payment method")
	}
	if err := bill.ValidatePayment(amount); err != nil {
		return nil, err
	}
	return &BillPayment{
		BaseEntity:      shared.NewBaseEntity(),
		BillID:          bill.ID,
		PaymentDate:     paymentDate,
		Amount:          amount,
		Method:          method,
		ReferenceNumber: strings.TrimSpace(reference),
		Notes:           notes,
	}, nil
}
