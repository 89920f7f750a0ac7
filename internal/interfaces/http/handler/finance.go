package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	financeapp "github.com/shopman/backend/internal/application/finance"
	"github.com/shopman/backend/internal/domain/finance"
	"github.com/shopman/backend/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
)

// BillHandler handles /supplier-bills
type BillHandler struct {
	BaseHandler
	bills *financeapp.BillService
}

// NewBillHandler creates a BillHandler
func NewBillHandler(bills *financeapp.BillService) *BillHandler {
	return &BillHandler{bills: bills}
}

// RegisterRoutes mounts /supplier-bills on rg
func (h *BillHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewResource("/supplier-bills").
		GET("", h.List).
		POST("/sweep-overdue", h.SweepOverdue).
		GET("/:id", h.Get).
		GET("/:id/payments", h.ListPayments).
		POST("/:id/payments", h.RecordPayment).
		POST("/:id/recompute", h.Recompute).
		Mount(rg)
}

// BillPaymentEntry is one past payment against a bill
type BillPaymentEntry struct {
	ID              uuid.UUID             `json:"id"`
	BillID          uuid.UUID             `json:"bill_id"`
	PaymentDate     time.Time             `json:"payment_date"`
	Amount          decimal.Decimal       `json:"amount"`
	Method          finance.PaymentMethod `json:"payment_method"`
	ReferenceNumber string                `json:"reference_number,omitempty"`
	Notes           string                `json:"notes,omitempty"`
}

// List handles GET /supplier-bills?supplier_id=&status=
func (h *BillHandler) List(c *gin.Context) {
	var filter financeapp.BillListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	supplierID, ok := h.optionalUUIDQuery(c, "supplier_id")
	if !ok {
		return
	}
	filter.SupplierID = supplierID
	filter.Page, filter.PageSize = pageOrDefault(filter.Page, filter.PageSize)

	bills, total, err := h.bills.ListBills(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, bills, total, filter.Page, filter.PageSize)
}

func (h *BillHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	bill, err := h.bills.GetBill(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// RecordPayment pays part or all of a bill's effective due
func (h *BillHandler) RecordPayment(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req financeapp.RecordBillPaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	payment, err := h.bills.RecordSupplierPayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, payment)
}

func (h *BillHandler) ListPayments(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	payments, err := h.bills.ListPayments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]BillPaymentEntry, 0, len(payments))
	for _, p := range payments {
		out = append(out, BillPaymentEntry{
			ID:              p.ID,
			BillID:          p.BillID,
			PaymentDate:     p.PaymentDate,
			Amount:          p.Amount,
			Method:          p.Method,
			ReferenceNumber: p.ReferenceNumber,
			Notes:           p.Notes,
		})
	}
	h.Success(c, out)
}

// Recompute re-derives paid, returned and due amounts from the bill's records
func (h *BillHandler) Recompute(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	bill, err := h.bills.RecomputeBill(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, bill)
}

// SweepOverdue marks past-due bills overdue; ?dry_run=true only reports them
func (h *BillHandler) SweepOverdue(c *gin.Context) {
	result, err := h.bills.SweepOverdueBills(c.Request.Context(), boolQuery(c, "dry_run"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}
