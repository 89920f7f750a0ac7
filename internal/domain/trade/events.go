package trade

import (
	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Aggregate type constants
const (
	AggregateTypePurchaseOrder  = "PurchaseOrder"
	AggregateTypePurchaseReturn = "PurchaseReturn"
	AggregateTypeSale           = "Sale"
	AggregateTypeSaleReturn     = "SaleReturn"
)

// Event type constants
const (
	EventTypePurchaseOrderCompleted  = "PurchaseOrderCompleted"
	EventTypePurchaseReturnCompleted = "PurchaseReturnCompleted"
	EventTypePurchaseReturnReversed  = "PurchaseReturnReversed"
	EventTypeSaleCreated             = "SaleCreated"
	EventTypeSaleReturnCompleted     = "SaleReturnCompleted"
)

// PurchaseOrderCompletedEvent is raised when goods on an order are received
type PurchaseOrderCompletedEvent struct {
	shared.BaseDomainEvent
	OrderID     uuid.UUID       `json:"order_id"`
	PONumber    string          `json:"po_number"`
	SupplierID  uuid.UUID       `json:"supplier_id"`
	TotalAmount decimal.Decimal `json:"total_amount"`
	ItemCount   int             `json:"item_count"`
}

// NewPurchaseOrderCompletedEvent creates a new PurchaseOrderCompletedEvent
func NewPurchaseOrderCompletedEvent(o *PurchaseOrder) *PurchaseOrderCompletedEvent {
	return &PurchaseOrderCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseOrderCompleted, AggregateTypePurchaseOrder, o.ID),
		OrderID:         o.ID,
		PONumber:        o.PONumber,
		SupplierID:      o.SupplierID,
		TotalAmount:     o.TotalAmount,
		ItemCount:       len(o.Items),
	}
}

// PurchaseReturnCompletedEvent is raised when returned goods leave stock
type PurchaseReturnCompletedEvent struct {
	shared.BaseDomainEvent
	ReturnID        uuid.UUID       `json:"return_id"`
	ReturnNumber    string          `json:"return_number"`
	PurchaseOrderID uuid.UUID       `json:"purchase_order_id"`
	ReturnAmount    decimal.Decimal `json:"return_amount"`
}

// NewPurchaseReturnCompletedEvent creates a new PurchaseReturnCompletedEvent
func NewPurchaseReturnCompletedEvent(r *PurchaseReturn) *PurchaseReturnCompletedEvent {
	return &PurchaseReturnCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseReturnCompleted, AggregateTypePurchaseReturn, r.ID),
		ReturnID:        r.ID,
		ReturnNumber:    r.ReturnNumber,
		PurchaseOrderID: r.PurchaseOrderID,
		ReturnAmount:    r.ReturnAmount,
	}
}

// PurchaseReturnReversedEvent is raised when a completed return is re-opened
type PurchaseReturnReversedEvent struct {
	shared.BaseDomainEvent
	ReturnID        uuid.UUID            `json:"return_id"`
	ReturnNumber    string               `json:"return_number"`
	PurchaseOrderID uuid.UUID            `json:"purchase_order_id"`
	From            PurchaseReturnStatus `json:"from"`
	To              PurchaseReturnStatus `json:"to"`
}

// NewPurchaseReturnReversedEvent creates a new PurchaseReturnReversedEvent
func NewPurchaseReturnReversedEvent(r *PurchaseReturn, from PurchaseReturnStatus) *PurchaseReturnReversedEvent {
	return &PurchaseReturnReversedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypePurchaseReturnReversed, AggregateTypePurchaseReturn, r.ID),
		ReturnID:        r.ID,
		ReturnNumber:    r.ReturnNumber,
		PurchaseOrderID: r.PurchaseOrderID,
		From:            from,
		To:              r.Status,
	}
}

// SaleCreatedEvent is raised after a POS checkout
type SaleCreatedEvent struct {
	shared.BaseDomainEvent
	SaleID        uuid.UUID       `json:"sale_id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerID    *uuid.UUID      `json:"customer_id,omitempty"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	PaidAmount    decimal.Decimal `json:"paid_amount"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	TotalItems    int             `json:"total_items"`
}

// NewSaleCreatedEvent creates a new SaleCreatedEvent
func NewSaleCreatedEvent(s *Sale) *SaleCreatedEvent {
	return &SaleCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleCreated, AggregateTypeSale, s.ID),
		SaleID:          s.ID,
		InvoiceNumber:   s.InvoiceNumber,
		CustomerID:      s.CustomerID,
		TotalAmount:     s.TotalAmount,
		PaidAmount:      s.PaidAmount,
		PaymentStatus:   s.PaymentStatus,
		TotalItems:      s.TotalItems(),
	}
}

// SaleReturnCompletedEvent is raised when a customer return is completed
type SaleReturnCompletedEvent struct {
	shared.BaseDomainEvent
	ReturnID      uuid.UUID       `json:"return_id"`
	ReturnNumber  string          `json:"return_number"`
	SaleID        uuid.UUID       `json:"sale_id"`
	ReturnType    SaleReturnType  `json:"return_type"`
	RefundAmount  decimal.Decimal `json:"refund_amount"`
	BalanceAmount decimal.Decimal `json:"balance_amount"`
}

// NewSaleReturnCompletedEvent creates a new SaleReturnCompletedEvent
func NewSaleReturnCompletedEvent(r *SaleReturn) *SaleReturnCompletedEvent {
	return &SaleReturnCompletedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeSaleReturnCompleted, AggregateTypeSaleReturn, r.ID),
		ReturnID:        r.ID,
		ReturnNumber:    r.ReturnNumber,
		SaleID:          r.SaleID,
		ReturnType:      r.ReturnType,
		RefundAmount:    r.RefundAmount,
		BalanceAmount:   r.BalanceAmount,
	}
}
