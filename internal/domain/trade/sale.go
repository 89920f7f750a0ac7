package trade

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/partner"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PaymentStatus is derived from paid versus total amount
type PaymentStatus string

const (
	PaymentStatusPaid    PaymentStatus = "paid"
	PaymentStatusDue     PaymentStatus = "due"
	PaymentStatusPartial PaymentStatus = "partial"
)

// IsOpen reports whether money is still owed on the sale
func (s PaymentStatus) IsOpen() bool {
	return s == PaymentStatusDue || s == PaymentStatusPartial
}

// SaleItemAllocation is the quantity a sale line drew from one lot
type SaleItemAllocation struct {
	BatchID     uuid.UUID
	BatchNumber string
	Quantity    int
}

// SaleItem is a line of a sale. BatchID links the first lot drawn from.
type SaleItem struct {
	ID               uuid.UUID
	SaleID           uuid.UUID
	ProductID        uuid.UUID
	ProductName      string
	Quantity         int
	UnitPrice        decimal.Decimal
	TotalPrice       decimal.Decimal
	CostPrice        decimal.Decimal // unit cost snapshot for profit reporting
	BatchID          *uuid.UUID
	Allocations      []SaleItemAllocation
	ReturnedQuantity int // units taken back by completed sale returns
	CreatedAt        time.Time
}

// NetQuantity is quantity minus completed returns
func (i *SaleItem) NetQuantity() int {
	return i.Quantity - i.ReturnedQuantity
}

// AssignBatches records the lots the line consumed
func (i *SaleItem) AssignBatches(allocations []SaleItemAllocation) {
	i.Allocations = allocations
	i.BatchID = nil
	if len(allocations) > 0 {
		id := allocations[0].BatchID
		i.BatchID = &id
	}
}

// BatchQuantity sums units drawn from lots; it can be below Quantity under the truncate policy
func (i *SaleItem) BatchQuantity() int {
	total := 0
	for _, a := range i.Allocations {
		total += a.Quantity
	}
	return total
}

// SaleTotals are the till-computed amounts of a sale
type SaleTotals struct {
	Subtotal           decimal.Decimal
	TaxAmount          decimal.Decimal
	DiscountAmount     decimal.Decimal
	TotalAmount        decimal.Decimal
	TaxPercentage      decimal.Decimal
	DiscountPercentage decimal.Decimal
}

// Sale is the aggregate root for a POS checkout
type Sale struct {
	shared.BaseAggregateRoot
	InvoiceNumber      string
	CustomerID         *uuid.UUID
	CustomerName       string
	CustomerPhone      string
	Subtotal           decimal.Decimal
	TaxAmount          decimal.Decimal
	DiscountAmount     decimal.Decimal
	TotalAmount        decimal.Decimal
	TaxPercentage      decimal.Decimal
	DiscountPercentage decimal.Decimal
	PaidAmount         decimal.Decimal
	ChangeAmount       decimal.Decimal
	ReturnedAmount     decimal.Decimal
	PaymentStatus      PaymentStatus
	SaleDate           time.Time
	Notes              string
	Items              []SaleItem
}

// NewSale creates a sale with totals as computed at the till
func NewSale(invoiceNumber string, saleDate time.Time, totals SaleTotals, paidAmount decimal.Decimal) (*Sale, error) {
	if strings.TrimSpace(invoiceNumber) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invoice number cannot be empty")
	}
	for _, amount := range []decimal.Decimal{totals.Subtotal, totals.TaxAmount, totals.DiscountAmount, totals.TotalAmount, paidAmount} {
		if amount.IsNegative() {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Sale amounts cannot be negative")
		}
	}
	s := &Sale{
		BaseAggregateRoot:  shared.NewBaseAggregateRoot(),
		InvoiceNumber:      invoiceNumber,
		CustomerName:       partner.WalkInCustomerName,
		Subtotal:           totals.Subtotal,
		TaxAmount:          totals.TaxAmount,
		DiscountAmount:     totals.DiscountAmount,
		TotalAmount:        totals.TotalAmount,
		TaxPercentage:      totals.TaxPercentage,
		DiscountPercentage: totals.DiscountPercentage,
		PaidAmount:         paidAmount,
		ReturnedAmount:     decimal.Zero,
		SaleDate:           saleDate,
		Items:              make([]SaleItem, 0),
	}
	s.derivePaymentStatus()
	return s, nil
}

// SetBuyer records the name and phone typed at the till
func (s *Sale) SetBuyer(name, phone string) {
	if name = strings.TrimSpace(name); name != "" {
		s.CustomerName = name
	}
	s.CustomerPhone = strings.TrimSpace(phone)
}

// AttachCustomer links a registered customer
func (s *Sale) AttachCustomer(customerID uuid.UUID, name, phone string) {
	s.CustomerID = &customerID
	s.SetBuyer(name, phone)
	s.IncrementVersion()
}

// AddItem appends a line; TotalPrice is always quantity x unit price
func (s *Sale) AddItem(productID uuid.UUID, productName string, qty int, unitPrice, costPrice decimal.Decimal) (*SaleItem, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product is required")
	}
	if qty <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be greater than 0")
	}
	if unitPrice.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidPrice, "Unit price cannot be negative")
	}
	item := SaleItem{
		ID:          uuid.New(),
		SaleID:      s.ID,
		ProductID:   productID,
		ProductName: productName,
		Quantity:    qty,
		UnitPrice:   unitPrice,
		TotalPrice:  unitPrice.Mul(decimal.NewFromInt(int64(qty))),
		CostPrice:   costPrice,
		CreatedAt:   time.Now(),
	}
	s.Items = append(s.Items, item)
	s.IncrementVersion()
	return &s.Items[len(s.Items)-1], nil
}

// RequiresCustomer reports whether the sale leaves money owed
func (s *Sale) RequiresCustomer() bool {
	return s.PaidAmount.LessThan(s.TotalAmount)
}

// ApplyPayment credits a later payment against the remaining due
func (s *Sale) ApplyPayment(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Payment amount must be positive")
	}
	if amount.GreaterThan(s.RemainingDue()) {
		return shared.NewDomainError(shared.CodePaymentExceedsDue, "Payment exceeds the remaining due of invoice "+s.InvoiceNumber)
	}
	s.PaidAmount = s.PaidAmount.Add(amount)
	s.derivePaymentStatus()
	s.IncrementVersion()
	return nil
}

// RecordReturn adds a completed money refund to the returned amount
func (s *Sale) RecordReturn(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidInput, "Returned amount cannot be negative")
	}
	s.ReturnedAmount = s.ReturnedAmount.Add(amount)
	s.IncrementVersion()
	return nil
}

// RemainingDue is max(0, total - paid)
func (s *Sale) RemainingDue() decimal.Decimal {
	return decimal.Max(decimal.Zero, s.TotalAmount.Sub(s.PaidAmount))
}

// OutstandingForCustomer is total - paid, the quantity summed into a customer's due
func (s *Sale) OutstandingForCustomer() decimal.Decimal {
	return s.TotalAmount.Sub(s.PaidAmount)
}

// NetAmount is total minus returned
func (s *Sale) NetAmount() decimal.Decimal {
	return s.TotalAmount.Sub(s.ReturnedAmount)
}

// TotalItems sums sold units
func (s *Sale) TotalItems() int {
	total := 0
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

// TotalCost values sold units at their cost snapshot
func (s *Sale) TotalCost() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.CostPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// Profit is total minus cost of goods sold
func (s *Sale) Profit() decimal.Decimal {
	return s.TotalAmount.Sub(s.TotalCost())
}

// NetProfit accounts for units that came back
func (s *Sale) NetProfit() decimal.Decimal {
	cost := decimal.Zero
	for _, item := range s.Items {
		cost = cost.Add(item.CostPrice.Mul(decimal.NewFromInt(int64(item.NetQuantity()))))
	}
	return s.NetAmount().Sub(cost)
}

// GetItem returns the line with the given ID
func (s *Sale) GetItem(itemID uuid.UUID) *SaleItem {
	for i := range s.Items {
		if s.Items[i].ID == itemID {
			return &s.Items[i]
		}
	}
	return nil
}

// derivePaymentStatus: paid >= total is paid with change; paid == 0 is due; otherwise partial
func (s *Sale) derivePaymentStatus() {
	switch {
	case s.PaidAmount.GreaterThanOrEqual(s.TotalAmount):
		s.PaymentStatus = PaymentStatusPaid
		s.ChangeAmount = s.PaidAmount.Sub(s.TotalAmount)
	case s.PaidAmount.IsZero():
		s.PaymentStatus = PaymentStatusDue
		s.ChangeAmount = decimal.Zero
	default:
		s.PaymentStatus = PaymentStatusPartial
		s.ChangeAmount = decimal.Zero
	}
}
