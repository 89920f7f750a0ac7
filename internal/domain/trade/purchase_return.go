package trade

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// PurchaseReturnStatus represents the status of a return to supplier
type PurchaseReturnStatus string

const (
	PurchaseReturnStatusPending   PurchaseReturnStatus = "pending"
	PurchaseReturnStatusApproved  PurchaseReturnStatus = "approved"
	PurchaseReturnStatusRejected  PurchaseReturnStatus = "rejected"
	PurchaseReturnStatusCompleted PurchaseReturnStatus = "completed"
)

// IsValid checks if the status is a valid PurchaseReturnStatus
func (s PurchaseReturnStatus) IsValid() bool {
	switch s {
	case PurchaseReturnStatusPending, PurchaseReturnStatusApproved,
		PurchaseReturnStatusRejected, PurchaseReturnStatusCompleted:
		return true
	}
	return false
}

// PurchaseReturnReason explains why goods go back to the supplier
type PurchaseReturnReason string

const (
	PurchaseReturnReasonExpired        PurchaseReturnReason = "expired"
	PurchaseReturnReasonDamaged        PurchaseReturnReason = "damaged"
	PurchaseReturnReasonDefective      PurchaseReturnReason = "defective"
	PurchaseReturnReasonWrongItem      PurchaseReturnReason = "wrong_item"
	PurchaseReturnReasonExcessQuantity PurchaseReturnReason = "excess_quantity"
	PurchaseReturnReasonQualityIssue   PurchaseReturnReason = "quality_issue"
	PurchaseReturnReasonOther          PurchaseReturnReason = "other"
)

// IsValid checks if the reason is known
func (r PurchaseReturnReason) IsValid() bool {
	switch r {
	case PurchaseReturnReasonExpired, PurchaseReturnReasonDamaged, PurchaseReturnReasonDefective,
		PurchaseReturnReasonWrongItem, PurchaseReturnReasonExcessQuantity,
		PurchaseReturnReasonQualityIssue, PurchaseReturnReasonOther:
		return true
	}
	return false
}

// ReturnEffect is the ledger work a status transition implies
type ReturnEffect int

const (
	// ReturnEffectNone is a pure status flip
	ReturnEffectNone ReturnEffect = iota
	// ReturnEffectApply moves the returned goods out of stock
	ReturnEffectApply
	// ReturnEffectReverse puts previously returned goods back
	ReturnEffectReverse
)

// Transition validates from -> to and reports the stock effect.
// Entering completed applies the return; leaving completed reverses it.
// Same-state updates are rejected.
func (s PurchaseReturnStatus) Transition(target PurchaseReturnStatus) (ReturnEffect, error) {
	if !target.IsValid() {
		return ReturnEffectNone, shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Invalid return status %q", target))
	}
	if s == target {
		return ReturnEffectNone, shared.NewDomainError(shared.CodeInvalidTransition, fmt.Sprintf("Return is already %s", s))
	}

	switch s {
	case PurchaseReturnStatusPending:
		switch target {
		case PurchaseReturnStatusApproved, PurchaseReturnStatusRejected:
			return ReturnEffectNone, nil
		case PurchaseReturnStatusCompleted:
			return ReturnEffectApply, nil
		}
	case PurchaseReturnStatusApproved:
		switch target {
		case PurchaseReturnStatusRejected:
			return ReturnEffectNone, nil
		case PurchaseReturnStatusCompleted:
			return ReturnEffectApply, nil
		}
	case PurchaseReturnStatusCompleted:
		return ReturnEffectReverse, nil
	}
	return ReturnEffectNone, shared.NewDomainError(shared.CodeInvalidTransition,
		fmt.Sprintf("Cannot change return status from %s to %s", s, target))
}

// PurchaseReturnItem is one returned quantity of a purchase order line
type PurchaseReturnItem struct {
	ID                  uuid.UUID
	PurchaseReturnID    uuid.UUID
	PurchaseOrderItemID uuid.UUID
	ProductID           uuid.UUID
	BatchID             *uuid.UUID // lot the units come out of; nil means no stock movement
	Quantity            int
	UnitCost            decimal.Decimal
	TotalCost           decimal.Decimal
	CreatedAt           time.Time
}

// PurchaseReturn is the aggregate root for goods sent back to a supplier
type PurchaseReturn struct {
	shared.BaseAggregateRoot
	ReturnNumber    string
	PurchaseOrderID uuid.UUID
	SupplierID      uuid.UUID
	Reason          PurchaseReturnReason
	Status          PurchaseReturnStatus
	ReturnDate      time.Time
	ReturnAmount    decimal.Decimal
	Notes           string
	CompletedAt     *time.Time
	Items           []PurchaseReturnItem
}

// NewPurchaseReturn starts a pending return against a received purchase order
func NewPurchaseReturn(returnNumber string, po *PurchaseOrder, reason PurchaseReturnReason, notes string, returnDate time.Time) (*PurchaseReturn, error) {
	if po == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Purchase order is required")
	}
	if !po.Status.ReceivedStatus() {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Returns can only be raised against received purchase orders")
	}
	if !reason.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid return reason")
	}
	return &PurchaseReturn{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReturnNumber:      returnNumber,
		PurchaseOrderID:   po.ID,
		SupplierID:        po.SupplierID,
		Reason:            reason,
		Status:            PurchaseReturnStatusPending,
		ReturnDate:        returnDate,
		ReturnAmount:      decimal.Zero,
		Notes:             notes,
		Items:             make([]PurchaseReturnItem, 0),
	}, nil
}

// AddItem returns qty units of a purchase line. remaining is the line quantity
// not yet claimed by other returns. A zero unitCost falls back to the line cost.
func (r *PurchaseReturn) AddItem(poItem *PurchaseOrderItem, batchID *uuid.UUID, qty int, unitCost decimal.Decimal, remaining int) (*PurchaseReturnItem, error) {
	if r.Status != PurchaseReturnStatusPending {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Items can only be added to a pending return")
	}
	if poItem == nil || poItem.PurchaseOrderID != r.PurchaseOrderID {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Item does not belong to the returned purchase order")
	}
	if qty <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Return quantity must be greater than 0")
	}
	for _, existing := range r.Items {
		if existing.PurchaseOrderItemID == poItem.ID {
			remaining -= existing.Quantity
		}
	}
	if qty > remaining {
		return nil, shared.NewDomainError(shared.CodeReturnExceedsSold,
			fmt.Sprintf("Cannot return %d units of %s. Remaining returnable quantity: %d", qty, poItem.ProductName, max(remaining, 0)))
	}
	if unitCost.IsZero() {
		unitCost = poItem.UnitCost
	}
	if unitCost.IsNegative() {
		return nil, shared.NewDomainError(shared.CodeInvalidPrice, "Unit cost cannot be negative")
	}

	item := PurchaseReturnItem{
		ID:                  uuid.New(),
		PurchaseReturnID:    r.ID,
		PurchaseOrderItemID: poItem.ID,
		ProductID:           poItem.ProductID,
		BatchID:             batchID,
		Quantity:            qty,
		UnitCost:            unitCost,
		TotalCost:           unitCost.Mul(decimal.NewFromInt(int64(qty))),
		CreatedAt:           time.Now(),
	}
	r.Items = append(r.Items, item)
	r.recalculateAmount()
	r.IncrementVersion()
	return &r.Items[len(r.Items)-1], nil
}

// ChangeStatus moves the return to target, appending a status note, and
// reports what the caller must do to stock, orders and bills.
func (r *PurchaseReturn) ChangeStatus(target PurchaseReturnStatus, notes string, now time.Time) (ReturnEffect, error) {
	effect, err := r.Status.Transition(target)
	if err != nil {
		return ReturnEffectNone, err
	}
	if effect == ReturnEffectApply && len(r.Items) == 0 {
		return ReturnEffectNone, shared.NewDomainError(shared.CodeInvalidInput, "Cannot complete a return without items")
	}

	from := r.Status
	r.Status = target
	switch effect {
	case ReturnEffectApply:
		r.CompletedAt = &now
		r.AddDomainEvent(NewPurchaseReturnCompletedEvent(r))
	case ReturnEffectReverse:
		r.CompletedAt = nil
		r.AddDomainEvent(NewPurchaseReturnReversedEvent(r, from))
	}
	text := fmt.Sprintf("%s -> %s", from, target)
	if notes = strings.TrimSpace(notes); notes != "" {
		text += ": " + notes
	}
	r.Notes = AppendNote(r.Notes, "Status Update", text, now)
	r.IncrementVersion()
	return effect, nil
}

// TotalQuantity sums returned units
func (r *PurchaseReturn) TotalQuantity() int {
	total := 0
	for _, item := range r.Items {
		total += item.Quantity
	}
	return total
}

func (r *PurchaseReturn) recalculateAmount() {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.TotalCost)
	}
	r.ReturnAmount = total
}

// AppendNote adds a timestamped paragraph to a free-text notes field
func AppendNote(existing, kind, text string, now time.Time) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return existing
	}
	entry := fmt.Sprintf("%s Notes (%s): %s", kind, now.Format("2006-01-02 15:04"), text)
	if kind == "Status Update" {
		entry = fmt.Sprintf("%s (%s): %s", kind, now.Format("2006-01-02 15:04"), text)
	}
	if existing == "" {
		return entry
	}
	return existing + "\n\n" + entry
}
