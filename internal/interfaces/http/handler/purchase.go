package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/shopman/backend/internal/application/trade"
	"github.com/shopman/backend/internal/interfaces/http/router"
)

// PurchaseHandler handles purchase orders and returns to suppliers
type PurchaseHandler struct {
	BaseHandler
	orders  *tradeapp.PurchaseService
	returns *tradeapp.PurchaseReturnService
}

// NewPurchaseHandler creates a PurchaseHandler serving orders and supplier returns
func NewPurchaseHandler(orders *tradeapp.PurchaseService, returns *tradeapp.PurchaseReturnService) *PurchaseHandler {
	return &PurchaseHandler{orders: orders, returns: returns}
}

// RegisterRoutes mounts /purchase-orders and /purchase-returns on rg
func (h *PurchaseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewResource("/purchase-orders").
		POST("", h.CreateOrder).
		GET("", h.ListOrders).
		GET("/:id", h.GetOrder).
		POST("/:id/complete", h.CompleteOrder).
		POST("/:id/cancel", h.CancelOrder).
		Mount(rg)

	router.NewResource("/purchase-returns").
		POST("", h.CreateReturn).
		GET("", h.ListReturns).
		GET("/:id", h.GetReturn).
		POST("/:id/items", h.AddReturnItem).
		PUT("/:id/status", h.UpdateReturnStatus).
		Mount(rg)
}

// CreateOrder opens a pending purchase order
func (h *PurchaseHandler) CreateOrder(c *gin.Context) {
	var req tradeapp.CreatePurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.CreatePurchaseOrder(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

func (h *PurchaseHandler) ListOrders(c *gin.Context) {
	var filter tradeapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	orders, err := h.orders.ListPurchaseOrders(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, orders)
}

func (h *PurchaseHandler) GetOrder(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// CompleteOrder receives the goods: lots, stock and the supplier bill
func (h *PurchaseHandler) CompleteOrder(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	result, err := h.orders.CompletePurchaseOrder(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

func (h *PurchaseHandler) CancelOrder(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.CancelPurchaseOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.CancelPurchaseOrder(c.Request.Context(), id, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

func (h *PurchaseHandler) CreateReturn(c *gin.Context) {
	var req tradeapp.CreatePurchaseReturnRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ret, err := h.returns.CreatePurchaseReturn(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ret)
}

func (h *PurchaseHandler) ListReturns(c *gin.Context) {
	var filter tradeapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	returns, err := h.returns.ListPurchaseReturns(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, returns)
}

func (h *PurchaseHandler) GetReturn(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	ret, err := h.returns.GetPurchaseReturn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}

// AddReturnItem adds a line to a pending return
func (h *PurchaseHandler) AddReturnItem(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.PurchaseReturnItemInput
	if !h.bindJSON(c, &req) {
		return
	}
	ret, err := h.returns.AddPurchaseReturnItem(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ret)
}

// UpdateReturnStatus moves a return through approve/reject/complete.
// Leaving completed reverses the stock and bill effects.
func (h *PurchaseHandler) UpdateReturnStatus(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.UpdateReturnStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ret, err := h.returns.UpdateReturnStatus(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}
