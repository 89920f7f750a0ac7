package trade

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
)

// ============================================================================
// Purchase orders
// ============================================================================

// PurchaseOrderItemInput is one line of a new purchase order
type PurchaseOrderItemInput struct {
	ProductID   uuid.UUID       `json:"product_id" binding:"required"`
	Quantity    int             `json:"quantity" binding:"required,min=1"`
	UnitCost    decimal.Decimal `json:"unit_cost" binding:"required"`
	BatchNumber string          `json:"batch_number" binding:"max=50"`
	ExpiryDate  *time.Time      `json:"expiry_date"`
}

// CreatePurchaseOrderRequest opens a pending purchase order
type CreatePurchaseOrderRequest struct {
	SupplierID   uuid.UUID                `json:"supplier_id" binding:"required"`
	OrderDate    *time.Time               `json:"order_date"`
	ExpectedDate time.Time                `json:"expected_date" binding:"required"`
	Notes        string                   `json:"notes"`
	Items        []PurchaseOrderItemInput `json:"items" binding:"required,min=1,dive"`
}

// CancelPurchaseOrderRequest carries the mandatory cancellation reason
type CancelPurchaseOrderRequest struct {
	Reason string `json:"reason" binding:"required,min=1"`
}

// PurchaseOrderItemResponse is the API view of a purchase order line
type PurchaseOrderItemResponse struct {
	ID          uuid.UUID       `json:"id"`
	ProductID   uuid.UUID       `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int             `json:"quantity"`
	UnitCost    decimal.Decimal `json:"unit_cost"`
	TotalCost   decimal.Decimal `json:"total_cost"`
	BatchNumber string          `json:"batch_number,omitempty"`
	ExpiryDate  *time.Time      `json:"expiry_date,omitempty"`
}

// PurchaseOrderResponse is the API view of a purchase order
type PurchaseOrderResponse struct {
	ID             uuid.UUID                   `json:"id"`
	PONumber       string                      `json:"po_number"`
	SupplierID     uuid.UUID                   `json:"supplier_id"`
	SupplierName   string                      `json:"supplier_name"`
	Status         trade.PurchaseOrderStatus   `json:"status"`
	OrderDate      time.Time                   `json:"order_date"`
	ExpectedDate   time.Time                   `json:"expected_date"`
	TotalAmount    decimal.Decimal             `json:"total_amount"`
	ReturnedAmount decimal.Decimal             `json:"returned_amount"`
	NetAmount      decimal.Decimal             `json:"net_amount"`
	ReturnStatus   trade.ReturnSummary         `json:"return_status"`
	IsOverdue      bool                        `json:"is_overdue"`
	Notes          string                      `json:"notes,omitempty"`
	CompletedAt    *time.Time                  `json:"completed_at,omitempty"`
	Items          []PurchaseOrderItemResponse `json:"items"`
}

// ToPurchaseOrderResponse converts an order; the return figures come from its returns
func ToPurchaseOrderResponse(o *trade.PurchaseOrder, returns []trade.PurchaseReturn, now time.Time) PurchaseOrderResponse {
	returned := decimal.Zero
	statuses := make([]trade.PurchaseReturnStatus, 0, len(returns))
	for _, r := range returns {
		statuses = append(statuses, r.Status)
		if r.Status == trade.PurchaseReturnStatusCompleted {
			returned = returned.Add(r.ReturnAmount)
		}
	}
	items := make([]PurchaseOrderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, PurchaseOrderItemResponse{
			ID:          item.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitCost:    item.UnitCost,
			TotalCost:   item.TotalCost,
			BatchNumber: item.BatchNumber,
			ExpiryDate:  item.ExpiryDate,
		})
	}
	return PurchaseOrderResponse{
		ID:             o.ID,
		PONumber:       o.PONumber,
		SupplierID:     o.SupplierID,
		SupplierName:   o.SupplierName,
		Status:         o.Status,
		OrderDate:      o.OrderDate,
		ExpectedDate:   o.ExpectedDate,
		TotalAmount:    o.TotalAmount,
		ReturnedAmount: returned,
		NetAmount:      o.TotalAmount.Sub(returned),
		ReturnStatus:   trade.SummarizeReturns(statuses),
		IsOverdue:      o.IsOverdue(now),
		Notes:          o.Notes,
		CompletedAt:    o.CompletedAt,
		Items:          items,
	}
}

// CompletePurchaseOrderResult reports what receiving an order created
type CompletePurchaseOrderResult struct {
	OrderID        uuid.UUID  `json:"order_id"`
	PONumber       string     `json:"po_number"`
	BatchesCreated int        `json:"batches_created"`
	BillID         *uuid.UUID `json:"bill_id,omitempty"`
	BillNumber     string     `json:"bill_number,omitempty"`
}

// ============================================================================
// Purchase returns
// ============================================================================

// PurchaseReturnItemInput returns units of one purchase order line
type PurchaseReturnItemInput struct {
	PurchaseOrderItemID uuid.UUID       `json:"purchase_order_item_id" binding:"required"`
	BatchID             *uuid.UUID      `json:"batch_id"`
	Quantity            int             `json:"quantity" binding:"required,min=1"`
	UnitCost            decimal.Decimal `json:"unit_cost"`
}

// CreatePurchaseReturnRequest opens a pending return to a supplier
type CreatePurchaseReturnRequest struct {
	PurchaseOrderID uuid.UUID                 `json:"purchase_order_id" binding:"required"`
	Reason          string                    `json:"reason" binding:"required,oneof=expired damaged defective wrong_item excess_quantity quality_issue other"`
	Notes           string                    `json:"notes"`
	Items           []PurchaseReturnItemInput `json:"items" binding:"dive"`
}

// UpdateReturnStatusRequest moves a purchase return through its state machine
type UpdateReturnStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=pending approved rejected completed"`
	Notes  string `json:"notes"`
}

// PurchaseReturnItemResponse is the API view of a returned line
type PurchaseReturnItemResponse struct {
	ID                  uuid.UUID       `json:"id"`
	PurchaseOrderItemID uuid.UUID       `json:"purchase_order_item_id"`
	ProductID           uuid.UUID       `json:"product_id"`
	BatchID             *uuid.UUID      `json:"batch_id,omitempty"`
	Quantity            int             `json:"quantity"`
	UnitCost            decimal.Decimal `json:"unit_cost"`
	TotalCost           decimal.Decimal `json:"total_cost"`
}

// PurchaseReturnResponse is the API view of a supplier return
type PurchaseReturnResponse struct {
	ID              uuid.UUID                    `json:"id"`
	ReturnNumber    string                       `json:"return_number"`
	PurchaseOrderID uuid.UUID                    `json:"purchase_order_id"`
	SupplierID      uuid.UUID                    `json:"supplier_id"`
	Reason          trade.PurchaseReturnReason   `json:"reason"`
	Status          trade.PurchaseReturnStatus   `json:"status"`
	ReturnDate      time.Time                    `json:"return_date"`
	ReturnAmount    decimal.Decimal              `json:"return_amount"`
	TotalQuantity   int                          `json:"total_quantity"`
	Notes           string                       `json:"notes,omitempty"`
	CompletedAt     *time.Time                   `json:"completed_at,omitempty"`
	Items           []PurchaseReturnItemResponse `json:"items"`
}

// ToPurchaseReturnResponse converts a supplier return
func ToPurchaseReturnResponse(r *trade.PurchaseReturn) PurchaseReturnResponse {
	items := make([]PurchaseReturnItemResponse, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, PurchaseReturnItemResponse{
			ID:                  item.ID,
			PurchaseOrderItemID: item.PurchaseOrderItemID,
			ProductID:           item.ProductID,
			BatchID:             item.BatchID,
			Quantity:            item.Quantity,
			UnitCost:            item.UnitCost,
			TotalCost:           item.TotalCost,
		})
	}
	return PurchaseReturnResponse{
		ID:              r.ID,
		ReturnNumber:    r.ReturnNumber,
		PurchaseOrderID: r.PurchaseOrderID,
		SupplierID:      r.SupplierID,
		Reason:          r.Reason,
		Status:          r.Status,
		ReturnDate:      r.ReturnDate,
		ReturnAmount:    r.ReturnAmount,
		TotalQuantity:   r.TotalQuantity(),
		Notes:           r.Notes,
		CompletedAt:     r.CompletedAt,
		Items:           items,
	}
}

// ============================================================================
// Sales
// ============================================================================

// SaleItemInput is one cart line at the till
type SaleItemInput struct {
	ProductID uuid.UUID        `json:"product_id" binding:"required"`
	Quantity  int              `json:"quantity" binding:"required,min=1"`
	UnitPrice *decimal.Decimal `json:"unit_price"`
}

// CreateSaleRequest is a POS checkout. Header totals are computed by the till.
type CreateSaleRequest struct {
	CustomerID         *uuid.UUID      `json:"customer_id"`
	CustomerName       string          `json:"customer_name" binding:"max=200"`
	CustomerPhone      string          `json:"customer_phone" binding:"max=20"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	TaxAmount          decimal.Decimal `json:"tax_amount"`
	DiscountAmount     decimal.Decimal `json:"discount_amount"`
	TaxPercentage      decimal.Decimal `json:"tax_percentage"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	PaidAmount         decimal.Decimal `json:"paid_amount"`
	Notes              string          `json:"notes"`
	Items              []SaleItemInput `json:"items" binding:"required,min=1,dive"`
}

// CreateSaleResult is returned to the till after checkout
type CreateSaleResult struct {
	SaleID        uuid.UUID           `json:"sale_id"`
	InvoiceNumber string              `json:"invoice_number"`
	PaymentStatus trade.PaymentStatus `json:"payment_status"`
	ChangeAmount  decimal.Decimal     `json:"change_amount"`
	CustomerID    *uuid.UUID          `json:"customer_id,omitempty"`
	CreditAlert   bool                `json:"credit_alert"`
}

// SaleItemResponse is the API view of a sale line
type SaleItemResponse struct {
	ID               uuid.UUID                  `json:"id"`
	ProductID        uuid.UUID                  `json:"product_id"`
	ProductName      string                     `json:"product_name"`
	Quantity         int                        `json:"quantity"`
	ReturnedQuantity int                        `json:"returned_quantity"`
	NetQuantity      int                        `json:"net_quantity"`
	UnitPrice        decimal.Decimal            `json:"unit_price"`
	TotalPrice       decimal.Decimal            `json:"total_price"`
	BatchID          *uuid.UUID                 `json:"batch_id,omitempty"`
	Allocations      []trade.SaleItemAllocation `json:"allocations,omitempty"`
}

// SaleResponse is the API view of a sale
type SaleResponse struct {
	ID             uuid.UUID           `json:"id"`
	InvoiceNumber  string              `json:"invoice_number"`
	CustomerID     *uuid.UUID          `json:"customer_id,omitempty"`
	CustomerName   string              `json:"customer_name"`
	CustomerPhone  string              `json:"customer_phone,omitempty"`
	SaleDate       time.Time           `json:"sale_date"`
	Subtotal       decimal.Decimal     `json:"subtotal"`
	TaxAmount      decimal.Decimal     `json:"tax_amount"`
	DiscountAmount decimal.Decimal     `json:"discount_amount"`
	TotalAmount    decimal.Decimal     `json:"total_amount"`
	PaidAmount     decimal.Decimal     `json:"paid_amount"`
	ChangeAmount   decimal.Decimal     `json:"change_amount"`
	ReturnedAmount decimal.Decimal     `json:"returned_amount"`
	NetAmount      decimal.Decimal     `json:"net_amount"`
	RemainingDue   decimal.Decimal     `json:"remaining_due"`
	PaymentStatus  trade.PaymentStatus `json:"payment_status"`
	TotalItems     int                 `json:"total_items"`
	Profit         decimal.Decimal     `json:"profit"`
	NetProfit      decimal.Decimal     `json:"net_profit"`
	Notes          string              `json:"notes,omitempty"`
	Items          []SaleItemResponse  `json:"items"`
}

// ToSaleResponse converts a sale
func ToSaleResponse(s *trade.Sale) SaleResponse {
	items := make([]SaleItemResponse, 0, len(s.Items))
	for i := range s.Items {
		item := &s.Items[i]
		items = append(items, SaleItemResponse{
			ID:               item.ID,
			ProductID:        item.ProductID,
			ProductName:      item.ProductName,
			Quantity:         item.Quantity,
			ReturnedQuantity: item.ReturnedQuantity,
			NetQuantity:      item.NetQuantity(),
			UnitPrice:        item.UnitPrice,
			TotalPrice:       item.TotalPrice,
			BatchID:          item.BatchID,
			Allocations:      item.Allocations,
		})
	}
	return SaleResponse{
		ID:             s.ID,
		InvoiceNumber:  s.InvoiceNumber,
		CustomerID:     s.CustomerID,
		CustomerName:   s.CustomerName,
		CustomerPhone:  s.CustomerPhone,
		SaleDate:       s.SaleDate,
		Subtotal:       s.Subtotal,
		TaxAmount:      s.TaxAmount,
		DiscountAmount: s.DiscountAmount,
		TotalAmount:    s.TotalAmount,
		PaidAmount:     s.PaidAmount,
		ChangeAmount:   s.ChangeAmount,
		ReturnedAmount: s.ReturnedAmount,
		NetAmount:      s.NetAmount(),
		RemainingDue:   s.RemainingDue(),
		PaymentStatus:  s.PaymentStatus,
		TotalItems:     s.TotalItems(),
		Profit:         s.Profit(),
		NetProfit:      s.NetProfit(),
		Notes:          s.Notes,
		Items:          items,
	}
}

// ============================================================================
// Sale returns
// ============================================================================

// SaleReturnItemInput takes back units of one sale line
type SaleReturnItemInput struct {
	SaleItemID uuid.UUID `json:"sale_item_id" binding:"required"`
	Quantity   int       `json:"quantity" binding:"required,min=1"`
}

// CreateSaleReturnRequest opens a pending customer return
type CreateSaleReturnRequest struct {
	SaleID            uuid.UUID             `json:"sale_id" binding:"required"`
	ReturnType        string                `json:"return_type" binding:"required,oneof=money product"`
	Reason            string                `json:"reason" binding:"required,oneof=defective wrong_item changed_mind quality_issue expired damaged other"`
	Description       string                `json:"description"`
	ExchangeProductID *uuid.UUID            `json:"exchange_product_id"`
	ExchangeQuantity  int                   `json:"exchange_quantity" binding:"omitempty,min=1"`
	Items             []SaleReturnItemInput `json:"items" binding:"required,min=1,dive"`
}

// ProcessSaleReturnRequest is an operator action on a return
type ProcessSaleReturnRequest struct {
	Action string `json:"action" binding:"required,oneof=approve complete reject"`
	Notes  string `json:"notes"`
}

// SaleReturnItemResponse is the API view of a returned sale line
type SaleReturnItemResponse struct {
	ID         uuid.UUID       `json:"id"`
	SaleItemID uuid.UUID       `json:"sale_item_id"`
	ProductID  uuid.UUID       `json:"product_id"`
	BatchID    *uuid.UUID      `json:"batch_id,omitempty"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// SaleReturnResponse is the API view of a customer return
type SaleReturnResponse struct {
	ID                uuid.UUID                `json:"id"`
	ReturnNumber      string                   `json:"return_number"`
	SaleID            uuid.UUID                `json:"sale_id"`
	InvoiceNumber     string                   `json:"invoice_number"`
	CustomerID        *uuid.UUID               `json:"customer_id,omitempty"`
	ReturnType        trade.SaleReturnType     `json:"return_type"`
	Reason            trade.SaleReturnReason   `json:"reason"`
	Status            trade.SaleReturnStatus   `json:"status"`
	RefundAmount      decimal.Decimal          `json:"refund_amount"`
	BalanceAmount     decimal.Decimal          `json:"balance_amount"`
	ExchangeProductID *uuid.UUID               `json:"exchange_product_id,omitempty"`
	ExchangeQuantity  int                      `json:"exchange_quantity,omitempty"`
	ExchangeValue     decimal.Decimal          `json:"exchange_value"`
	TotalQuantity     int                      `json:"total_quantity"`
	Description       string                   `json:"description,omitempty"`
	ProcessedAt       *time.Time               `json:"processed_at,omitempty"`
	CreatedAt         time.Time                `json:"created_at"`
	Items             []SaleReturnItemResponse `json:"items"`
}

// ToSaleReturnResponse converts a customer return
func ToSaleReturnResponse(r *trade.SaleReturn) SaleReturnResponse {
	items := make([]SaleReturnItemResponse, 0, len(r.Items))
	for _, item := range r.Items {
		items = append(items, SaleReturnItemResponse{
			ID:         item.ID,
			SaleItemID: item.SaleItemID,
			ProductID:  item.ProductID,
			BatchID:    item.BatchID,
			Quantity:   item.Quantity,
			UnitPrice:  item.UnitPrice,
			TotalPrice: item.TotalPrice,
		})
	}
	return SaleReturnResponse{
		ID:                r.ID,
		ReturnNumber:      r.ReturnNumber,
		SaleID:            r.SaleID,
		InvoiceNumber:     r.InvoiceNumber,
		CustomerID:        r.CustomerID,
		ReturnType:        r.ReturnType,
		Reason:            r.Reason,
		Status:            r.Status,
		RefundAmount:      r.RefundAmount,
		BalanceAmount:     r.BalanceAmount,
		ExchangeProductID: r.ExchangeProductID,
		ExchangeQuantity:  r.ExchangeQuantity,
		ExchangeValue:     r.ExchangeValue,
		TotalQuantity:     r.TotalQuantity(),
		Description:       r.Description,
		ProcessedAt:       r.ProcessedAt,
		CreatedAt:         r.CreatedAt,
		Items:             items,
	}
}

// ListFilter filters the trade document lists
type ListFilter struct {
	Status   string `form:"status"`
	Search   string `form:"search"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
}

func (f ListFilter) toDomain(orderBy string) shared.Filter {
	filter := shared.DefaultFilter()
	filter.OrderBy = orderBy
	filter.Search = f.Search
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.Status != "" {
		filter.Filters["status"] = f.Status
	}
	return filter
}
