package handler

import (
	"github.com/gin-gonic/gin"
	tradeapp "github.com/shopman/backend/internal/application/trade"
	"github.com/shopman/backend/internal/interfaces/http/router"
)

// SaleHandler handles POS checkout and customer returns
type SaleHandler struct {
	BaseHandler
	sales   *tradeapp.SaleService
	returns *tradeapp.SaleReturnService
}

// NewSaleHandler creates a SaleHandler serving checkout and customer returns
func NewSaleHandler(sales *tradeapp.SaleService, returns *tradeapp.SaleReturnService) *SaleHandler {
	return &SaleHandler{sales: sales, returns: returns}
}

// RegisterRoutes mounts /sales and /sale-returns on rg
func (h *SaleHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewResource("/sales").
		POST("", h.Checkout).
		GET("", h.List).
		GET("/summary/today", h.TodaySummary).
		GET("/invoice/:invoice", h.GetByInvoice).
		GET("/:id", h.Get).
		Mount(rg)

	router.NewResource("/sale-returns").
		POST("", h.CreateReturn).
		GET("", h.ListReturns).
		GET("/:id", h.GetReturn).
		POST("/:id/process", h.ProcessReturn).
		Mount(rg)
}

// Checkout handles POST /sales. Send an Idempotency-Key to make retries safe.
func (h *SaleHandler) Checkout(c *gin.Context) {
	var req tradeapp.CreateSaleRequest
	if !h.bindJSON(c, &req) {
		return
	}
	result, err := h.sales.CreateSale(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, result)
}

func (h *SaleHandler) List(c *gin.Context) {
	var filter tradeapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	sales, err := h.sales.ListSales(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sales)
}

func (h *SaleHandler) Get(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	sale, err := h.sales.GetSale(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

func (h *SaleHandler) GetByInvoice(c *gin.Context) {
	sale, err := h.sales.GetSaleByInvoice(c.Request.Context(), c.Param("invoice"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, sale)
}

// TodaySummary totals today's takings
func (h *SaleHandler) TodaySummary(c *gin.Context) {
	summary, err := h.sales.SummarizeDay(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

func (h *SaleHandler) CreateReturn(c *gin.Context) {
	var req tradeapp.CreateSaleReturnRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ret, err := h.returns.CreateSaleReturn(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ret)
}

func (h *SaleHandler) ListReturns(c *gin.Context) {
	var filter tradeapp.ListFilter
	if !h.bindQuery(c, &filter) {
		return
	}
	returns, err := h.returns.ListSaleReturns(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, returns)
}

func (h *SaleHandler) GetReturn(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	ret, err := h.returns.GetSaleReturn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}

// ProcessReturn applies approve, complete or reject
func (h *SaleHandler) ProcessReturn(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req tradeapp.ProcessSaleReturnRequest
	if !h.bindJSON(c, &req) {
		return
	}
	ret, err := h.returns.ProcessSaleReturn(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ret)
}
