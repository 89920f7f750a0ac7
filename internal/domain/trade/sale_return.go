package trade

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// SaleReturnStatus represents the status of a customer return
type SaleReturnStatus string

const (
	SaleReturnStatusPending   SaleReturnStatus = "pending"
	SaleReturnStatusApproved  SaleReturnStatus = "approved"
	SaleReturnStatusCompleted SaleReturnStatus = "completed"
	SaleReturnStatusRejected  SaleReturnStatus = "rejected"
)

// CanTransitionTo checks if the status can transition to the target status
func (s SaleReturnStatus) CanTransitionTo(target SaleReturnStatus) bool {
	switch s {
	case SaleReturnStatusPending:
		return target == SaleReturnStatusApproved || target == SaleReturnStatusRejected
	case SaleReturnStatusApproved:
		return target == SaleReturnStatusCompleted || target == SaleReturnStatusRejected
	}
	return false
}

// SaleReturnType selects refund or exchange
type SaleReturnType string

const (
	SaleReturnTypeMoney   SaleReturnType = "money"
	SaleReturnTypeProduct SaleReturnType = "product"
)

// SaleReturnReason explains why the customer brought goods back
type SaleReturnReason string

const (
	SaleReturnReasonDefective    SaleReturnReason = "defective"
	SaleReturnReasonWrongItem    SaleReturnReason = "wrong_item"
	SaleReturnReasonChangedMind  SaleReturnReason = "changed_mind"
	SaleReturnReasonQualityIssue SaleReturnReason = "quality_issue"
	SaleReturnReasonExpired      SaleReturnReason = "expired"
	SaleReturnReasonDamaged      SaleReturnReason = "damaged"
	SaleReturnReasonOther        SaleReturnReason = "other"
)

// IsValid checks if the reason is known
func (r SaleReturnReason) IsValid() bool {
	switch r {
	case SaleReturnReasonDefective, SaleReturnReasonWrongItem, SaleReturnReasonChangedMind,
		SaleReturnReasonQualityIssue, SaleReturnReasonExpired, SaleReturnReasonDamaged, SaleReturnReasonOther:
		return true
	}
	return false
}

// SaleReturnAction is the operator command processed against a return
type SaleReturnAction string

const (
	SaleReturnActionApprove  SaleReturnAction = "approve"
	SaleReturnActionComplete SaleReturnAction = "complete"
	SaleReturnActionReject   SaleReturnAction = "reject"
)

// SaleReturnItem is a returned quantity of one sale line
type SaleReturnItem struct {
	ID           uuid.UUID
	SaleReturnID uuid.UUID
	SaleItemID   uuid.UUID
	ProductID    uuid.UUID
	BatchID      *uuid.UUID
	Quantity     int
	UnitPrice    decimal.Decimal
	TotalPrice   decimal.Decimal
	CreatedAt    time.Time
}

// SaleReturn is the aggregate root for goods a customer brings back.
// BalanceAmount is refund value minus exchange value: positive means the
// shop owes the customer, negative means the customer owes the shop.
type SaleReturn struct {
	shared.BaseAggregateRoot
	ReturnNumber      string
	SaleID            uuid.UUID
	InvoiceNumber     string
	CustomerID        *uuid.UUID
	ReturnType        SaleReturnType
	Reason            SaleReturnReason
	Status            SaleReturnStatus
	RefundAmount      decimal.Decimal
	BalanceAmount     decimal.Decimal
	ExchangeProductID *uuid.UUID
	ExchangeQuantity  int
	ExchangeValue     decimal.Decimal
	Description       string
	ProcessedAt       *time.Time
	Items             []SaleReturnItem
}

// NewSaleReturn starts a pending return against a sale
func NewSaleReturn(returnNumber string, sale *Sale, returnType SaleReturnType, reason SaleReturnReason, description string) (*SaleReturn, error) {
	if sale == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Sale is required")
	}
	if returnType != SaleReturnTypeMoney && returnType != SaleReturnTypeProduct {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Return type must be money or product")
	}
	if !reason.IsValid() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Invalid return reason")
	}
	r := &SaleReturn{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ReturnNumber:      returnNumber,
		SaleID:            sale.ID,
		InvoiceNumber:     sale.InvoiceNumber,
		CustomerID:        sale.CustomerID,
		ReturnType:        returnType,
		Reason:            reason,
		Status:            SaleReturnStatusPending,
		RefundAmount:      decimal.Zero,
		BalanceAmount:     decimal.Zero,
		ExchangeValue:     decimal.Zero,
		Description:       description,
		Items:             make([]SaleReturnItem, 0),
	}
	return r, nil
}

// AddItem returns qty units of a sale line. reserved is what other open or
// completed returns already claim on the line.
func (r *SaleReturn) AddItem(saleItem *SaleItem, qty, reserved int) (*SaleReturnItem, error) {
	if r.Status != SaleReturnStatusPending {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Items can only be added to a pending return")
	}
	if saleItem == nil || saleItem.SaleID != r.SaleID {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Item does not belong to the returned sale")
	}
	if qty <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Return quantity must be greater than 0")
	}
	remaining := saleItem.Quantity - reserved
	for _, existing := range r.Items {
		if existing.SaleItemID == saleItem.ID {
			remaining -= existing.Quantity
		}
	}
	if qty > remaining {
		return nil, shared.NewDomainError(shared.CodeReturnExceedsSold,
			fmt.Sprintf("Cannot return %d units of %s. Maximum returnable: %d", qty, saleItem.ProductName, max(remaining, 0)))
	}

	item := SaleReturnItem{
		ID:           uuid.New(),
		SaleReturnID: r.ID,
		SaleItemID:   saleItem.ID,
		ProductID:    saleItem.ProductID,
		BatchID:      saleItem.BatchID,
		Quantity:     qty,
		UnitPrice:    saleItem.UnitPrice,
		TotalPrice:   saleItem.UnitPrice.Mul(decimal.NewFromInt(int64(qty))),
		CreatedAt:    time.Now(),
	}
	r.Items = append(r.Items, item)
	r.recalculate()
	r.IncrementVersion()
	return &r.Items[len(r.Items)-1], nil
}

// SetExchange names the replacement product for a product return
func (r *SaleReturn) SetExchange(productID uuid.UUID, qty int, unitPrice decimal.Decimal) error {
	if r.ReturnType != SaleReturnTypeProduct {
		return shared.NewDomainError(shared.CodeInvalidInput, "Only product returns carry an exchange")
	}
	if productID == uuid.Nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Exchange product is required for product exchange")
	}
	if qty <= 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Exchange quantity must be greater than 0")
	}
	r.ExchangeProductID = &productID
	r.ExchangeQuantity = qty
	r.ExchangeValue = unitPrice.Mul(decimal.NewFromInt(int64(qty)))
	r.recalculate()
	r.IncrementVersion()
	return nil
}

// Validate checks the return is complete enough to persist
func (r *SaleReturn) Validate() error {
	if len(r.Items) == 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Return must contain at least one item")
	}
	if r.ReturnType == SaleReturnTypeProduct && (r.ExchangeProductID == nil || r.ExchangeQuantity <= 0) {
		return shared.NewDomainError(shared.CodeInvalidInput, "Exchange product and quantity are required for product exchange")
	}
	return nil
}

// Process applies an operator action and appends its notes to the description
func (r *SaleReturn) Process(action SaleReturnAction, notes string, now time.Time) error {
	var target SaleReturnStatus
	var kind string
	switch action {
	case SaleReturnActionApprove:
		target, kind = SaleReturnStatusApproved, "Approval"
	case SaleReturnActionComplete:
		target, kind = SaleReturnStatusCompleted, "Completion"
	case SaleReturnActionReject:
		target, kind = SaleReturnStatusRejected, "Rejection"
	default:
		return shared.NewDomainError(shared.CodeInvalidInput, fmt.Sprintf("Unknown action %q", action))
	}
	if !r.Status.CanTransitionTo(target) {
		return shared.NewDomainError(shared.CodeInvalidTransition,
			fmt.Sprintf("Cannot %s a return in %s status", action, r.Status))
	}

	r.Status = target
	r.Description = AppendNote(r.Description, kind, notes, now)
	if target == SaleReturnStatusCompleted || target == SaleReturnStatusRejected {
		r.ProcessedAt = &now
	}
	if target == SaleReturnStatusCompleted {
		r.AddDomainEvent(NewSaleReturnCompletedEvent(r))
	}
	r.IncrementVersion()
	return nil
}

// TotalQuantity sums returned units
func (r *SaleReturn) TotalQuantity() int {
	total := 0
	for _, item := range r.Items {
		total += item.Quantity
	}
	return total
}

// IsRefund reports whether completion posts money back against the sale
func (r *SaleReturn) IsRefund() bool {
	return r.ReturnType == SaleReturnTypeMoney
}

func (r *SaleReturn) recalculate() {
	total := decimal.Zero
	for _, item := range r.Items {
		total = total.Add(item.TotalPrice)
	}
	r.RefundAmount = total
	if r.ReturnType == SaleReturnTypeProduct {
		r.BalanceAmount = total.Sub(r.ExchangeValue)
	} else {
		r.BalanceAmount = total
	}
}
