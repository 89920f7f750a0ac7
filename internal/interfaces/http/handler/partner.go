package handler

import (
	"github.com/gin-gonic/gin"
	financeapp "github.com/shopman/backend/internal/application/finance"
	partnerapp "github.com/shopman/backend/internal/application/partner"
	"github.com/shopman/backend/internal/interfaces/http/router"
)

// SupplierHandler handles /suppliers
type SupplierHandler struct {
	BaseHandler
	suppliers *partnerapp.SupplierService
}

// NewSupplierHandler creates a SupplierHandler
func NewSupplierHandler(suppliers *partnerapp.SupplierService) *SupplierHandler {
	return &SupplierHandler{suppliers: suppliers}
}

// RegisterRoutes mounts /suppliers on rg
func (h *SupplierHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewResource("/suppliers").
		POST("", h.Create).
		GET("", h.List).
		GET("/:id", h.Get).
		Mount(rg)
}

func (h *SupplierHandler) Create(c *gin.Context) {
	var req partnerapp.CreateSupplierRequest
	if !h.bindJSON(c, &req) {
		return
	}
	supplier, err := h.suppliers.Create(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, supplier)
}

// List handles GET /suppliers?search=
func (h *SupplierHandler) List(c *gin.Context) {
	suppliers, err := h.suppliers.List(c.Request.Context(), c.Query("search"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, suppliers)
}

func (h *SupplierHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	supplier, err := h.suppliers.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, supplier)
}

// CustomerHandler handles /customers and the customer credit ledger
type CustomerHandler struct {
	BaseHandler
	customers *partnerapp.CustomerService
	credit    *financeapp.CreditService
}

// NewCustomerHandler creates a CustomerHandler backed by the customer and credit services
func NewCustomerHandler(customers *partnerapp.CustomerService, credit *financeapp.CreditService) *CustomerHandler {
	return &CustomerHandler{customers: customers, credit: credit}
}

// RegisterRoutes mounts /customers and /due-payments on rg
func (h *CustomerHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewResource("/customers").
		POST("", h.Register).
		GET("", h.List).
		POST("/recompute-dues", h.RecomputeAllDues).
		GET("/phone/:phone", h.GetByPhone).
		GET("/:id", h.Get).
		PUT("/:id", h.Update).
		GET("/:id/dues", h.DueDetails).
		POST("/:id/payments", h.AllocatePayment).
		GET("/:id/payments", h.ListPayments).
		POST("/:id/recompute-due", h.RecomputeDue).
		Mount(rg)

	router.NewResource("/due-payments").
		DELETE("/:id", h.DeletePayment).
		Mount(rg)
}

// Register handles POST /customers
func (h *CustomerHandler) Register(c *gin.Context) {
	var req partnerapp.CreateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customers.Register(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, customer)
}

func (h *CustomerHandler) List(c *gin.Context) {
	var filter partnerapp.CustomerListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	filter.Page, filter.PageSize = pageOrDefault(filter.Page, filter.PageSize)

	customers, total, err := h.customers.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, customers, total, filter.Page, filter.PageSize)
}

func (h *CustomerHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	customer, err := h.customers.GetByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// GetByPhone finds the customer a till links a sale to
func (h *CustomerHandler) GetByPhone(c *gin.Context) {
	customer, err := h.customers.GetByPhone(c.Request.Context(), c.Param("phone"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

func (h *CustomerHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req partnerapp.UpdateCustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customers.Update(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, customer)
}

// DueDetails returns open invoices and payment history
func (h *CustomerHandler) DueDetails(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	details, err := h.customers.GetDueDetails(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, details)
}

// AllocatePayment applies a payment to the customer's open invoices, oldest first
func (h *CustomerHandler) AllocatePayment(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req financeapp.AllocatePaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	allocation, err := h.credit.AllocateCustomerPayment(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, allocation)
}

func (h *CustomerHandler) ListPayments(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	payments, err := h.credit.ListDuePayments(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	out := make([]partnerapp.DuePaymentSummary, 0, len(payments))
	for i := range payments {
		out = append(out, partnerapp.ToDuePaymentSummary(&payments[i]))
	}
	h.Success(c, out)
}

// RecomputeDue re-derives one customer's total due from their sales
func (h *CustomerHandler) RecomputeDue(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.credit.RecomputeCustomerDue(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *CustomerHandler) RecomputeAllDues(c *gin.Context) {
	results, err := h.credit.RecomputeAllCustomerDues(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, results)
}

// DeletePayment removes a due payment and recomputes the customer's due
func (h *CustomerHandler) DeletePayment(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	if err := h.credit.DeleteDuePayment(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}
