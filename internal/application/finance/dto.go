package finance

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/finance"
	"github.com/shopspring/decimal"
)

// AllocatePaymentRequest is a customer paying down their due balance
type AllocatePaymentRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Method          string          `json:"payment_method" binding:"omitempty,oneof=cash bank check digital"`
	ReferenceNumber string          `json:"reference_number" binding:"max=100"`
	Notes           string          `json:"notes"`
}

// AllocationResponse is the outcome of a FIFO allocation
type AllocationResponse struct {
	PaymentID     uuid.UUID                `json:"payment_id"`
	ReceiptNumber string                   `json:"receipt_number"`
	CustomerID    uuid.UUID                `json:"customer_id"`
	Amount        decimal.Decimal          `json:"amount"`
	Applied       decimal.Decimal          `json:"applied"`
	Advance       decimal.Decimal          `json:"advance"`
	Allocations   []finance.AllocationLine `json:"allocations"`
	TotalDue      decimal.Decimal          `json:"total_due"`
}

// DueRecomputeResult reports one customer's due before and after a recompute
type DueRecomputeResult struct {
	CustomerID uuid.UUID       `json:"customer_id"`
	Before     decimal.Decimal `json:"before"`
	After      decimal.Decimal `json:"after"`
}

// Changed reports whether the stored due was stale
func (r DueRecomputeResult) Changed() bool {
	return !r.Before.Equal(r.After)
}

// RecordBillPaymentRequest pays part of a supplier bill
type RecordBillPaymentRequest struct {
	Amount          decimal.Decimal `json:"amount" binding:"required"`
	Method          string          `json:"payment_method" binding:"omitempty,oneof=cash bank check digital"`
	ReferenceNumber string          `json:"reference_number" binding:"max=100"`
	Notes           string          `json:"notes"`
	PaymentDate     *time.Time      `json:"payment_date"`
}

// BillListFilter filters the supplier bill list
type BillListFilter struct {
	SupplierID *uuid.UUID `form:"-"`
	Status     string     `form:"status" binding:"omitempty,oneof=pending partial paid overdue returned partially_returned"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
}

// BillResponse is the API view of a supplier bill
type BillResponse struct {
	ID              uuid.UUID          `json:"id"`
	BillNumber      string             `json:"bill_number"`
	PurchaseOrderID uuid.UUID          `json:"purchase_order_id"`
	SupplierID      uuid.UUID          `json:"supplier_id"`
	BillDate        time.Time          `json:"bill_date"`
	DueDate         time.Time          `json:"due_date"`
	TotalAmount     decimal.Decimal    `json:"total_amount"`
	PaidAmount      decimal.Decimal    `json:"paid_amount"`
	ReturnedAmount  decimal.Decimal    `json:"returned_amount"`
	NetAmount       decimal.Decimal    `json:"net_amount"`
	DueAmount       decimal.Decimal    `json:"due_amount"`
	EffectiveDue    decimal.Decimal    `json:"effective_due_amount"`
	PaidPercentage  decimal.Decimal    `json:"paid_percentage"`
	DaysOverdue     int                `json:"days_overdue"`
	Status          finance.BillStatus `json:"status"`
	Notes           string             `json:"notes,omitempty"`
}

// ToBillResponse converts a domain bill as of today
func ToBillResponse(b *finance.SupplierBill, today time.Time) BillResponse {
	return BillResponse{
		ID:              b.ID,
		BillNumber:      b.BillNumber,
		PurchaseOrderID: b.PurchaseOrderID,
		SupplierID:      b.SupplierID,
		BillDate:        b.BillDate,
		DueDate:         b.DueDate,
		TotalAmount:     b.TotalAmount,
		PaidAmount:      b.PaidAmount,
		ReturnedAmount:  b.ReturnedAmount,
		NetAmount:       b.NetAmount(),
		DueAmount:       b.DueAmount,
		EffectiveDue:    b.EffectiveDue(),
		PaidPercentage:  b.PaidPercentage(),
		DaysOverdue:     b.DaysOverdue(today),
		Status:          b.Status,
		Notes:           b.Notes,
	}
}

// BillPaymentResponse is a recorded supplier payment with the bill after it
type BillPaymentResponse struct {
	PaymentID       uuid.UUID             `json:"payment_id"`
	Amount          decimal.Decimal       `json:"amount"`
	Method          finance.PaymentMethod `json:"payment_method"`
	ReferenceNumber string                `json:"reference_number,omitempty"`
	PaymentDate     time.Time             `json:"payment_date"`
	Bill            BillResponse          `json:"bill"`
}

// SweepResult summarises an overdue sweep
type SweepResult struct {
	Day       time.Time `json:"day"`
	DryRun    bool      `json:"dry_run"`
	Examined  int       `json:"examined"`
	Changed   int       `json:"changed"`
	BillIDs   []string  `json:"bill_ids"`
	Completed time.Time `json:"completed_at"`
}
