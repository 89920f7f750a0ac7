package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CreateProductRequest represents a request to create a new product
type CreateProductRequest struct {
	Name              string          `json:"name" binding:"required,min=2,max=200"`
	SKU               string          `json:"sku" binding:"required,min=2,max=50"`
	Barcode           string          `json:"barcode" binding:"omitempty,min=3,max=50"`
	Description       string          `json:"description" binding:"max=2000"`
	CategoryID        *uuid.UUID      `json:"category_id"`
	SupplierID        *uuid.UUID      `json:"supplier_id"`
	CostPrice         decimal.Decimal `json:"cost_price"`
	SellingPrice      decimal.Decimal `json:"selling_price"`
	MinStockLevel     *int            `json:"min_stock_level" binding:"omitempty,min=0"`
	HasExpiry         bool            `json:"has_expiry"`
	ExpiryWarningDays *int            `json:"expiry_warning_days" binding:"omitempty,min=1,max=365"`
}

// UpdateProductRequest represents a partial product update
type UpdateProductRequest struct {
	Name              *string          `json:"name" binding:"omitempty,min=2,max=200"`
	Description       *string          `json:"description" binding:"omitempty,max=2000"`
	Barcode           *string          `json:"barcode" binding:"omitempty,min=3,max=50"`
	CategoryID        *uuid.UUID       `json:"category_id"`
	SupplierID        *uuid.UUID       `json:"supplier_id"`
	CostPrice         *decimal.Decimal `json:"cost_price"`
	SellingPrice      *decimal.Decimal `json:"selling_price"`
	MinStockLevel     *int             `json:"min_stock_level" binding:"omitempty,min=0"`
	HasExpiry         *bool            `json:"has_expiry"`
	ExpiryWarningDays *int             `json:"expiry_warning_days" binding:"omitempty,min=1,max=365"`
	IsActive          *bool            `json:"is_active"`
}

// ProductListFilter represents filter options for product listings
type ProductListFilter struct {
	Search     string     `form:"search"`
	CategoryID *uuid.UUID `form:"-"`
	LowStock   bool       `form:"low_stock"`
	Page       int        `form:"page" binding:"omitempty,min=1"`
	PageSize   int        `form:"page_size" binding:"omitempty,min=1,max=100"`
	OrderBy    string     `form:"order_by" binding:"omitempty,oneof=name sku created_at current_stock selling_price"`
	OrderDir   string     `form:"order_dir" binding:"omitempty,oneof=asc desc"`
}

// ProductResponse represents a product in API responses
type ProductResponse struct {
	ID                uuid.UUID           `json:"id"`
	Name              string              `json:"name"`
	SKU               string              `json:"sku"`
	Barcode           string              `json:"barcode"`
	Description       string              `json:"description"`
	CategoryID        *uuid.UUID          `json:"category_id,omitempty"`
	SupplierID        *uuid.UUID          `json:"supplier_id,omitempty"`
	CostPrice         decimal.Decimal     `json:"cost_price"`
	SellingPrice      decimal.Decimal     `json:"selling_price"`
	ProfitMargin      decimal.Decimal     `json:"profit_margin"`
	CurrentStock      int                 `json:"current_stock"`
	MinStockLevel     int                 `json:"min_stock_level"`
	StockStatus       catalog.StockStatus `json:"stock_status"`
	StockValue        decimal.Decimal     `json:"stock_value"`
	HasExpiry         bool                `json:"has_expiry"`
	ExpiryWarningDays int                 `json:"expiry_warning_days"`
	IsActive          bool                `json:"is_active"`
	CreatedAt         time.Time           `json:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at"`
	Version           int                 `json:"version"`
}

// ToProductResponse converts a domain Product to ProductResponse
func ToProductResponse(p *catalog.Product) ProductResponse {
	return ProductResponse{
		ID:                p.ID,
		Name:              p.Name,
		SKU:               p.SKU,
		Barcode:           p.Barcode,
		Description:       p.Description,
		CategoryID:        p.CategoryID,
		SupplierID:        p.SupplierID,
		CostPrice:         p.CostPrice,
		SellingPrice:      p.SellingPrice,
		ProfitMargin:      p.ProfitMargin(),
		CurrentStock:      p.CurrentStock,
		MinStockLevel:     p.MinStockLevel,
		StockStatus:       p.StockStatus(),
		StockValue:        p.StockValue(),
		HasExpiry:         p.HasExpiry,
		ExpiryWarningDays: p.ExpiryWarningDays,
		IsActive:          p.IsActive,
		CreatedAt:         p.CreatedAt,
		UpdatedAt:         p.UpdatedAt,
		Version:           p.Version,
	}
}

// CreateCategoryRequest represents a request to create a category
type CreateCategoryRequest struct {
	Name        string `json:"name" binding:"required,min=1,max=100"`
	Description string `json:"description" binding:"max=500"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
}

// ToCategoryResponse converts a domain Category to CategoryResponse
func ToCategoryResponse(c *catalog.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Description: c.Description,
		CreatedAt:   c.CreatedAt,
	}
}
