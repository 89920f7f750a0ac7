package finance

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// BillStatus represents the status of a supplier bill
type BillStatus string

const (
	BillStatusPending           BillStatus = "pending"
	BillStatusPartial           BillStatus = "partial"
	BillStatusPaid              BillStatus = "paid"
	BillStatusOverdue           BillStatus = "overdue"
	BillStatusReturned          BillStatus = "returned"
	BillStatusPartiallyReturned BillStatus = "partially_returned"
)

// IsValid checks if the status is a valid BillStatus
func (s BillStatus) IsValid() bool {
	switch s {
	case BillStatusPending, BillStatusPartial, BillStatusPaid, BillStatusOverdue,
		BillStatusReturned, BillStatusPartiallyReturned:
		return true
	}
	return false
}

// String returns the string representation of BillStatus
func (s BillStatus) String() string {
	return string(s)
}

// SupplierBill is what the shop owes a supplier for one received purchase order.
// PaidAmount, ReturnedAmount, DueAmount and Status are derived; Recompute owns them.
type SupplierBill struct {
	shared.BaseAggregateRoot
	BillNumber      string
	PurchaseOrderID uuid.UUID
	SupplierID      uuid.UUID
	BillDate        time.Time
	DueDate         time.Time
	TotalAmount     decimal.Decimal
	PaidAmount      decimal.Decimal
	ReturnedAmount  decimal.Decimal
	DueAmount       decimal.Decimal
	Status          BillStatus
	Notes           string
}

// NewSupplierBill creates the bill for a completed purchase order
func NewSupplierBill(billNumber string, purchaseOrderID, supplierID uuid.UUID, total decimal.Decimal, billDate, dueDate time.Time) (*SupplierBill, error) {
	if err := validateBillHeader(billNumber, purchaseOrderID, supplierID, total); err != nil {
		return nil, err
	}
	if !dueDate.After(billDate) {
		return nil, shared.NewDomainError(shared.CodeInvalidDateRange, "Due date must be after bill date")
	}
	return newSupplierBill(billNumber, purchaseOrderID, supplierID, total, billDate, dueDate), nil
}

// NewOrderBill opens the bill of a just-completed purchase order. The due date
// derives from the order's expected date, so a late receipt may open a bill
// that is already overdue.
func NewOrderBill(billNumber string, purchaseOrderID, supplierID uuid.UUID, total decimal.Decimal, billDate, dueDate time.Time) (*SupplierBill, error) {
	if err := validateBillHeader(billNumber, purchaseOrderID, supplierID, total); err != nil {
		return nil, err
	}
	return newSupplierBill(billNumber, purchaseOrderID, supplierID, total, billDate, dueDate), nil
}

func validateBillHeader(billNumber string, purchaseOrderID, supplierID uuid.UUID, total decimal.Decimal) error {
	if strings.TrimSpace(billNumber) == "" {
		return shared.NewDomainError(shared.CodeInvalidInput, "Bill number cannot be empty")
	}
	if purchaseOrderID == uuid.Nil || supplierID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Purchase order and supplier are required")
	}
	if total.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Bill total cannot be negative")
	}
	return nil
}

func newSupplierBill(billNumber string, purchaseOrderID, supplierID uuid.UUID, total decimal.Decimal, billDate, dueDate time.Time) *SupplierBill {
	b := &SupplierBill{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		BillNumber:        billNumber,
		PurchaseOrderID:   purchaseOrderID,
		SupplierID:        supplierID,
		BillDate:          billDate,
		DueDate:           dueDate,
		TotalAmount:       total,
		PaidAmount:        decimal.Zero,
		ReturnedAmount:    decimal.Zero,
		DueAmount:         total,
		Status:            BillStatusPending,
	}
	b.Recompute(decimal.Zero, billDate)
	return b
}

// Recompute re-derives due amount and status from the completed returns
// against the order and the payments already recorded. It is idempotent.
func (b *SupplierBill) Recompute(returned decimal.Decimal, today time.Time) {
	b.ReturnedAmount = returned
	net := b.TotalAmount.Sub(returned)
	b.DueAmount = decimal.Max(decimal.Zero, net.Sub(b.PaidAmount))

	switch {
	case returned.IsPositive() && returned.GreaterThanOrEqual(b.TotalAmount):
		b.Status = BillStatusReturned
		b.DueAmount = decimal.Zero
	case returned.IsPositive():
		b.Status = BillStatusPartiallyReturned
	default:
		switch {
		case b.PaidAmount.GreaterThanOrEqual(net):
			b.Status = BillStatusPaid
			b.DueAmount = decimal.Zero
		case b.PaidAmount.IsPositive():
			b.Status = BillStatusPartial
		default:
			b.Status = BillStatusPending
		}
		if b.DueAmount.IsPositive() && b.dueDay().Before(shared.DateOf(today)) {
			b.Status = BillStatusOverdue
		}
	}
	b.IncrementVersion()
}

// SetPaid replaces the paid amount with the sum of recorded payments
func (b *SupplierBill) SetPaid(total decimal.Decimal) {
	b.PaidAmount = total
}

// NetAmount is total minus returns, never below zero
func (b *SupplierBill) NetAmount() decimal.Decimal {
	return decimal.Max(decimal.Zero, b.TotalAmount.Sub(b.ReturnedAmount))
}

// EffectiveDue is what is still owed after returns and payments
func (b *SupplierBill) EffectiveDue() decimal.Decimal {
	return decimal.Max(decimal.Zero, b.NetAmount().Sub(b.PaidAmount))
}

// PaidPercentage is paid over net amount, 0 when nothing is owed
func (b *SupplierBill) PaidPercentage() decimal.Decimal {
	net := b.NetAmount()
	if !net.IsPositive() {
		return decimal.Zero
	}
	return b.PaidAmount.Div(net).Mul(decimal.NewFromInt(100)).Round(2)
}

// IsOverdue reports an unpaid balance past the due date
func (b *SupplierBill) IsOverdue(today time.Time) bool {
	return b.EffectiveDue().IsPositive() && b.dueDay().Before(shared.DateOf(today))
}

// DaysOverdue counts whole days past the due date
func (b *SupplierBill) DaysOverdue(today time.Time) int {
	if !b.IsOverdue(today) {
		return 0
	}
	return int(shared.DateOf(today).Sub(b.dueDay()).Hours() / 24)
}

// CanAcceptPayment reports whether a payment may be recorded against the bill
func (b *SupplierBill) CanAcceptPayment() bool {
	return b.EffectiveDue().IsPositive() && b.Status != BillStatusReturned && b.Status != BillStatusPaid
}

// ValidatePayment checks amount against the effective due
func (b *SupplierBill) ValidatePayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Payment amount must be greater than 0")
	}
	if !b.CanAcceptPayment() {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Bill %s cannot accept payments in %s status", b.BillNumber, b.Status))
	}
	if due := b.EffectiveDue(); amount.GreaterThan(due) {
		return shared.NewDomainError(shared.CodePaymentExceedsDue, fmt.Sprintf("Payment amount cannot exceed due amount (%s)", due.StringFixed(2)))
	}
	return nil
}

func (b *SupplierBill) dueDay() time.Time {
	return shared.DateOf(b.DueDate)
}
