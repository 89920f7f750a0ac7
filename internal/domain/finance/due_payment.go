package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// AdvanceInvoiceNumber marks the allocation line holding money left after every open sale is settled
const AdvanceInvoiceNumber = "ADVANCE"

const advanceNote = "Advance payment for future purchases"

// AllocationLine is one step of a FIFO allocation of a customer payment
type AllocationLine struct {
	InvoiceNumber     string          `json:"invoice_number"`
	SaleID            *uuid.UUID      `json:"sale_id,omitempty"`
	SaleDate          time.Time       `json:"sale_date"`
	DueAmount         decimal.Decimal `json:"due_amount"`
	AllocatedAmount   decimal.Decimal `json:"allocated_amount"`
	RemainingDueAfter decimal.Decimal `json:"remaining_due_after"`
	Notes             string          `json:"notes,omitempty"`
}

// IsAdvance reports whether the line targets no sale
func (l AllocationLine) IsAdvance() bool {
	return l.SaleID == nil && l.InvoiceNumber == AdvanceInvoiceNumber
}

// NewAdvanceLine records an unapplied remainder. It is informational only.
func NewAdvanceLine(amount decimal.Decimal, at time.Time) AllocationLine {
	return AllocationLine{
		InvoiceNumber:     AdvanceInvoiceNumber,
		SaleDate:          at,
		DueAmount:         decimal.Zero,
		AllocatedAmount:   amount,
		RemainingDueAfter: decimal.Zero,
		Notes:             advanceNote,
	}
}

// DuePayment is a customer payment and how it was spread over open sales
type DuePayment struct {
	shared.BaseAggregateRoot
	ReceiptNumber    string
	CustomerID       uuid.UUID
	PaymentDate      time.Time
	Amount           decimal.Decimal
	Method           PaymentMethod
	ReferenceNumber  string
	Notes            string
	AllocatedDetails []AllocationLine
}

// NewDuePayment records a customer payment with its allocation breakdown
func NewDuePayment(receiptNumber string, customerID uuid.UUID, amount decimal.Decimal, method PaymentMethod, reference, notes string, lines []AllocationLine, paymentDate time.Time) (*DuePayment, error) {
	if customerID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Customer is required")
	}
	if !amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Payment amount must be greater than zero")
	}
	if method == "" {
		method = PaymentMethodCash
	}
	if !method.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid payment method")
	}
	allocated := decimal.Zero
	for _, l := range lines {
		allocated = allocated.Add(l.AllocatedAmount)
	}
	if allocated.GreaterThan(amount) {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Allocated amount exceeds the payment")
	}

	p := &DuePayment{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReceiptNumber:     receiptNumber,
		CustomerID:        customerID,
		PaymentDate:       paymentDate,
		Amount:            amount,
		Method:            method,
		ReferenceNumber:   reference,
		Notes:             notes,
		AllocatedDetails:  lines,
	}
	p.AddDomainEvent(NewDuePaymentAllocatedEvent(p))
	return p, nil
}

// AppliedAmount is the part of the payment credited to sales
func (p *DuePayment) AppliedAmount() decimal.Decimal {
	total := decimal.Zero
	for _, l := range p.AllocatedDetails {
		if !l.IsAdvance() {
			total = total.Add(l.AllocatedAmount)
		}
	}
	return total
}

// AdvanceAmount is the informational remainder
func (p *DuePayment) AdvanceAmount() decimal.Decimal {
	return p.Amount.Sub(p.AppliedAmount())
}
