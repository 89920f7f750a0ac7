package finance

import (
	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypeSupplierBill = "SupplierBill"
	AggregateTypeDuePayment   = "DuePayment"
)

// Event type constants
const (
	EventTypeDuePaymentAllocated    = "DuePaymentAllocated"
	EventTypeSupplierPaymentApplied = "SupplierPaymentApplied"
)

// DuePaymentAllocatedEvent is raised when a customer payment is spread over open sales
type DuePaymentAllocatedEvent struct {
	shared.BaseDomainEvent
	PaymentID    uuid.UUID       `json:"payment_id"`
	CustomerID   uuid.UUID       `json:"customer_id"`
	Amount       decimal.Decimal `json:"amount"`
	Applied      decimal.Decimal `json:"applied"`
	Advance      decimal.Decimal `json:"advance"`
	InvoicesPaid int             `json:"invoices_paid"`
}

// NewDuePaymentAllocatedEvent creates a new DuePaymentAllocatedEvent
func NewDuePaymentAllocatedEvent(p *DuePayment) *DuePaymentAllocatedEvent {
	invoices := 0
	for _, l := range p.AllocatedDetails {
		if !l.IsAdvance() {
			invoices++
		}
	}
	return &DuePaymentAllocatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeDuePaymentAllocated, AggregateTypeDuePayment, p.ID),
		PaymentID:       p.ID,
		CustomerID:      p.CustomerID,
		Amount:          p.Amount,
		Applied:         p.AppliedAmount(),
		Advance:         p.AdvanceAmount(),
		InvoicesPaid:    invoices,
	}
}

// SupplierPaymentAppliedEvent is raised after a bill payment is recorded
type SupplierPaymentAppliedEvent struct {
	shared.BaseDomainEvent
	BillID     uuid.UUID       `json:"bill_id"`
	BillNumber string          `json:"bill_number"`
	PaymentID  uuid.UUID       `json:"payment_id"`
	Amount     decimal.Decimal `json:"amount"`
	DueAmount  decimal.Decimal `json:"due_amount"`
	Status     BillStatus      `json:"status"`
}

// NewSupplierPaymentAppliedEvent creates a new SupplierPaymentAppliedEvent
func NewSupplierPaymentAppliedEvent(b *SupplierBill, p *BillPayment) *SupplierPaymentAppliedEvent {
	return &SupplierPaymentAppliedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSupplierPaymentApplied, AggregateTypeSupplierBill, b.ID),
		BillID:          b.ID,
		BillNumber:      b.BillNumber,
		PaymentID:       p.ID,
		Amount:          p.Amount,
		DueAmount:       b.DueAmount,
		Status:          b.Status,
	}
}
