package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/shopman/backend/internal/application/inventory"
	"github.com/shopman/backend/internal/domain/inventory"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/interfaces/http/dto"
	"github.com/shopman/backend/internal/interfaces/http/router"
)

// InventoryHandler handles /inventory: adjustments, lots, movements and reports
type InventoryHandler struct {
	BaseHandler
	inventory *inventoryapp.InventoryService
}

// NewInventoryHandler creates an InventoryHandler
func NewInventoryHandler(inventory *inventoryapp.InventoryService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory}
}

// RegisterRoutes mounts /inventory on rg
func (h *InventoryHandler) RegisterRoutes(rg *gin.RouterGroup) {
	router.NewResource("/inventory").
		POST("/adjustments", h.Adjust).
		GET("/batches", h.ListBatches).
		POST("/batches/:id/write-off", h.WriteOff).
		GET("/movements", h.ListMovements).
		GET("/reports/expiry", h.ExpiryReport).
		GET("/reports/stock", h.StockReport).
		Mount(rg)
}

// Adjust records a manual stock adjustment
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req inventoryapp.AdjustStockRequest
	if !h.bindJSON(c, &req) {
		return
	}
	adj, err := h.inventory.AdjustStock(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, adj)
}

// WriteOff removes expired units from a lot
func (h *InventoryHandler) WriteOff(c *gin.Context) {
	id, ok := h.parseID(c, "id")
	if !ok {
		return
	}
	var req inventoryapp.WriteOffRequest
	if !h.bindJSON(c, &req) {
		return
	}
	adj, err := h.inventory.WriteOffExpired(c.Request.Context(), id, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, adj)
}

type batchQuery struct {
	Search   string `form:"search"`
	InStock  bool   `form:"in_stock"`
	Page     int    `form:"page" binding:"omitempty,min=1"`
	PageSize int    `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderDir string `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ListBatches handles GET /inventory/batches[?product_id=]
func (h *InventoryHandler) ListBatches(c *gin.Context) {
	var q batchQuery
	if !h.bindQuery(c, &q) {
		return
	}
	productID, ok := h.optionalUUIDQuery(c, "product_id")
	if !ok {
		return
	}
	page, pageSize := pageOrDefault(q.Page, q.PageSize)

	batches, err := h.inventory.ListBatches(c.Request.Context(), productID, shared.Filter{
		Page:     page,
		PageSize: pageSize,
		OrderBy:  "expiry_date",
		OrderDir: q.OrderDir,
		Search:   q.Search,
		Filters:  map[string]interface{}{"in_stock": q.InStock},
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, batches)
}

type movementQuery struct {
	Reference string `form:"reference_number"`
	Type      string `form:"movement_type"`
	Limit     int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

// ListMovements returns the stock audit trail, newest first
func (h *InventoryHandler) ListMovements(c *gin.Context) {
	var q movementQuery
	if !h.bindQuery(c, &q) {
		return
	}
	filter := inventory.MovementFilter{
		ReferenceNumber: q.Reference,
		Type:            inventory.MovementType(q.Type),
		Limit:           q.Limit,
	}
	if filter.Type != "" && !filter.Type.IsValid() {
		h.ErrorWithCode(c, dto.ErrCodeInvalidInput, "Unknown movement_type "+q.Type)
		return
	}
	var ok bool
	if filter.ProductID, ok = h.optionalUUIDQuery(c, "product_id"); !ok {
		return
	}
	if filter.From, ok = h.optionalDateQuery(c, "from"); !ok {
		return
	}
	if filter.To, ok = h.optionalDateQuery(c, "to"); !ok {
		return
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		h.ErrorWithCode(c, dto.ErrCodeInvalidDateRange, "to must not be before from")
		return
	}

	movements, err := h.inventory.ListMovements(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, movements)
}

func (h *InventoryHandler) ExpiryReport(c *gin.Context) {
	report, err := h.inventory.ExpiryReport(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}

func (h *InventoryHandler) StockReport(c *gin.Context) {
	report, err := h.inventory.StockReport(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, report)
}
