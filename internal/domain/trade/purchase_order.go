package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus represents the status of a purchase order
type PurchaseOrderStatus string

const (
	PurchaseOrderStatusPending   PurchaseOrderStatus = "pending"
	PurchaseOrderStatusCompleted PurchaseOrderStatus = "completed"
	PurchaseOrderStatusCancelled PurchaseOrderStatus = "cancelled"
	PurchaseOrderStatusReturned  PurchaseOrderStatus = "returned"
)

// IsValid checks if the status is a valid PurchaseOrderStatus
func (s PurchaseOrderStatus) IsValid() bool {
	switch s {
	case PurchaseOrderStatusPending, PurchaseOrderStatusCompleted,
		PurchaseOrderStatusCancelled, PurchaseOrderStatusReturned:
		return true
	}
	return false
}

// CanTransitionTo checks if the status can transition to the target status
func (s PurchaseOrderStatus) CanTransitionTo(target PurchaseOrderStatus) bool {
	switch s {
	case PurchaseOrderStatusPending:
		return target == PurchaseOrderStatusCompleted || target == PurchaseOrderStatusCancelled
	case PurchaseOrderStatusCompleted:
		return target == PurchaseOrderStatusReturned
	case PurchaseOrderStatusReturned:
		return target == PurchaseOrderStatusCompleted
	}
	return false
}

// ReceivedStatus reports whether goods from the order sit in stock
func (s PurchaseOrderStatus) ReceivedStatus() bool {
	return s == PurchaseOrderStatusCompleted || s == PurchaseOrderStatusReturned
}

// PurchaseOrderItem is a line on a purchase order.
// BatchNumber and ExpiryDate pre-specify the lot created on completion.
type PurchaseOrderItem struct {
	ID              uuid.UUID
	PurchaseOrderID uuid.UUID
	ProductID       uuid.UUID
	ProductName     string
	Quantity        int
	UnitCost        decimal.Decimal
	TotalCost       decimal.Decimal
	BatchNumber     string
	ExpiryDate      *time.Time
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Recalculate refreshes TotalCost from quantity and unit cost
func (i *PurchaseOrderItem) Recalculate() {
	i.TotalCost = i.UnitCost.Mul(decimal.NewFromInt(int64(i.Quantity)))
	i.UpdatedAt = time.Now()
}

// PurchaseOrder is the aggregate root for supplier purchasing
type PurchaseOrder struct {
	shared.BaseAggregateRoot
	PONumber     string
	SupplierID   uuid.UUID
	SupplierName string
	Status       PurchaseOrderStatus
	OrderDate    time.Time
	ExpectedDate time.Time
	TotalAmount  decimal.Decimal
	Notes        string
	CompletedAt  *time.Time
	Items        []PurchaseOrderItem
}

// NewPurchaseOrder creates a pending purchase order
func NewPurchaseOrder(poNumber string, supplierID uuid.UUID, supplierName string, orderDate, expectedDate time.Time) (*PurchaseOrder, error) {
	if strings.TrimSpace(poNumber) == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Purchase order number cannot be empty")
	}
	if supplierID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Supplier is required")
	}
	if !expectedDate.After(orderDate) {
		return nil, shared.NewDomainError(shared.CodeInvalidDateRange, "Expected delivery date must be after order date")
	}
	return &PurchaseOrder{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		PONumber:          poNumber,
		SupplierID:        supplierID,
		SupplierName:      supplierName,
		Status:            PurchaseOrderStatusPending,
		OrderDate:         orderDate,
		ExpectedDate:      expectedDate,
		TotalAmount:       decimal.Zero,
		Items:             make([]PurchaseOrderItem, 0),
	}, nil
}

// AddItem appends a line while the order is pending
func (o *PurchaseOrder) AddItem(productID uuid.UUID, productName string, qty int, unitCost decimal.Decimal, batchNumber string, expiryDate *time.Time) (*PurchaseOrderItem, error) {
	if o.Status != PurchaseOrderStatusPending {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Can only add items to a pending purchase order")
	}
	if productID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Product is required")
	}
	if qty <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be greater than 0")
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidPrice, "Unit cost cannot be negative")
	}

	now := time.Now()
	item := PurchaseOrderItem{
		ID:              uuid.New(),
		PurchaseOrderID: o.ID,
		ProductID:       productID,
		ProductName:     productName,
		Quantity:        qty,
		UnitCost:        unitCost,
		BatchNumber:     strings.TrimSpace(batchNumber),
		ExpiryDate:      expiryDate,
		CreatedAt:       now,
	}
	item.Recalculate()
	o.Items = append(o.Items, item)
	o.recalculateTotals()
	o.IncrementVersion()
	return &o.Items[len(o.Items)-1], nil
}

// Complete marks the goods as received. Batch and bill creation are
// orchestrated by the purchasing service in the same transaction.
func (o *PurchaseOrder) Complete(now time.Time) error {
	if o.Status != PurchaseOrderStatusPending {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot complete purchase order in %s status", o.Status))
	}
	if len(o.Items) == 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Cannot complete a purchase order without items")
	}
	o.Status = PurchaseOrderStatusCompleted
	o.CompletedAt = &now
	o.IncrementVersion()
	o.AddDomainEvent(NewPurchaseOrderCompletedEvent(o))
	return nil
}

// Cancel cancels a pending order and returns the cancellation record
func (o *PurchaseOrder) Cancel(reason string, now time.Time) (*PurchaseOrderCancellation, error) {
	if o.Status != PurchaseOrderStatusPending {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Only pending purchase orders can be cancelled")
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Cancellation reason is required")
	}
	o.Status = PurchaseOrderStatusCancelled
	o.IncrementVersion()
	return &PurchaseOrderCancellation{
		ID:              uuid.New(),
		PurchaseOrderID: o.ID,
		Reason:          reason,
		CancelledAt:     now,
	}, nil
}

// MarkReturned flips a completed order once a supplier return completes
func (o *PurchaseOrder) MarkReturned() error {
	if o.Status == PurchaseOrderStatusReturned {
		return nil
	}
	if !o.Status.CanTransitionTo(PurchaseOrderStatusReturned) {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot mark purchase order in %s status as returned", o.Status))
	}
	o.Status = PurchaseOrderStatusReturned
	o.IncrementVersion()
	return nil
}

// RevertToCompleted undoes MarkReturned when a completed return is re-opened
func (o *PurchaseOrder) RevertToCompleted() error {
	if o.Status == PurchaseOrderStatusCompleted {
		return nil
	}
	if o.Status != PurchaseOrderStatusReturned {
		return shared.NewDomainError(shared.CodeInvalidState, fmt.Sprintf("Cannot revert purchase order in %s status", o.Status))
	}
	o.Status = PurchaseOrderStatusCompleted
	o.IncrementVersion()
	return nil
}

// IsOverdue is pending and past the expected delivery date
func (o *PurchaseOrder) IsOverdue(now time.Time) bool {
	return o.Status == PurchaseOrderStatusPending && now.After(o.ExpectedDate)
}

// BillDueDate is the supplier bill due date for this order
func (o *PurchaseOrder) BillDueDate(days int) time.Time {
	return shared.DateOf(o.ExpectedDate).AddDate(0, 0, days)
}

// GetItem returns the line with the given ID
func (o *PurchaseOrder) GetItem(itemID uuid.UUID) *PurchaseOrderItem {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i]
		}
	}
	return nil
}

// TotalQuantity sums ordered units
func (o *PurchaseOrder) TotalQuantity() int {
	total := 0
	for _, item := range o.Items {
		total += item.Quantity
	}
	return total
}

func (o *PurchaseOrder) recalculateTotals() {
	total := decimal.Zero
	for _, item := range o.Items {
		total = total.Add(item.TotalCost)
	}
	o.TotalAmount = total
}

// PurchaseOrderCancellation records why a pending order was cancelled
type PurchaseOrderCancellation struct {
	ID              uuid.UUID
	PurchaseOrderID uuid.UUID
	Reason          string
	CancelledAt     time.Time
}

// ReturnSummary classifies an order by the returns raised against it
type ReturnSummary string

const (
	ReturnSummaryNone      ReturnSummary = "no_returns"
	ReturnSummaryCompleted ReturnSummary = "has_completed_returns"
	ReturnSummaryPending   ReturnSummary = "has_pending_returns"
	ReturnSummaryInactive  ReturnSummary = "no_active_returns"
)

// SummarizeReturns derives the return summary from the statuses of an order's returns
func SummarizeReturns(statuses []PurchaseReturnStatus) ReturnSummary {
	if len(statuses) == 0 {
		return ReturnSummaryNone
	}
	pending := false
	for _, s := range statuses {
		if s == PurchaseReturnStatusCompleted {
			return ReturnSummaryCompleted
		}
		if s == PurchaseReturnStatusPending || s == PurchaseReturnStatusApproved {
			pending = true
		}
	}
	if pending {
		return ReturnSummaryPending
	}
	return ReturnSummaryInactive
}
