package models

import (
	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/catalog"
	"github.com/shopspring/decimal"
)

// CategoryModel is the persistence model for the Category domain entity.
type CategoryModel struct {
	AggregateModel
	Name        string `gorm:"type:varchar(100);not null;uniqueIndex"`
	Description string `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (CategoryModel) TableName() string {
	return "categories"
}

// ToDomain converts the persistence model to a domain Category entity.
func (m *CategoryModel) ToDomain() *catalog.Category {
	return &catalog.Category{
		BaseAggregateRoot: m.Root(),
		Name:              m.Name,
		Description:       m.Description,
	}
}

// FromDomain populates the persistence model from a domain Category entity.
func (m *CategoryModel) FromDomain(c *catalog.Category) {
	m.SetRoot(c.BaseAggregateRoot)
	m.Name = c.Name
	m.Description = c.Description
}

// CategoryModelFromDomain creates a new persistence model from a domain Category entity.
func CategoryModelFromDomain(c *catalog.Category) *CategoryModel {
	m := &CategoryModel{}
	m.FromDomain(c)
	return m
}

// ProductModel is the persistence model for the Product domain entity.
type ProductModel struct {
	AggregateModel
	Name              string          `gorm:"type:varchar(200);not null;index"`
	SKU               string          `gorm:"column:sku;type:varchar(50);not null;uniqueIndex"`
	Barcode           string          `gorm:"type:varchar(50);not null;uniqueIndex"`
	Description       string          `gorm:"type:text"`
	CategoryID        *uuid.UUID      `gorm:"type:uuid;index"`
	SupplierID        *uuid.UUID      `gorm:"type:uuid;index"`
	CostPrice         decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	SellingPrice      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	CurrentStock      int             `gorm:"not null;default:0"`
	MinStockLevel     int             `gorm:"not null;default:10"`
	HasExpiry         bool            `gorm:"not null;default:false"`
	ExpiryWarningDays int             `gorm:"not null;default:30"`
	IsActive          bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (ProductModel) TableName() string {
	return "products"
}

// ToDomain converts the persistence model to a domain Product entity.
func (m *ProductModel) ToDomain() *catalog.Product {
	return &catalog.Product{
		BaseAggregateRoot: m.Root(),
		Name:              m.Name,
		SKU:               m.SKU,
		Barcode:           m.Barcode,
		Description:       m.Description,
		CategoryID:        m.CategoryID,
		SupplierID:        m.SupplierID,
		CostPrice:         m.CostPrice,
		SellingPrice:      m.SellingPrice,
		CurrentStock:      m.CurrentStock,
		MinStockLevel:     m.MinStockLevel,
		HasExpiry:         m.HasExpiry,
		ExpiryWarningDays: m.ExpiryWarningDays,
		IsActive:          m.IsActive,
	}
}

// FromDomain populates the persistence model from a domain Product entity.
func (m *ProductModel) FromDomain(p *catalog.Product) {
	m.SetRoot(p.BaseAggregateRoot)
	m.Name = p.Name
	m.SKU = p.SKU
	m.Barcode = p.Barcode
	m.Description = p.Description
	m.CategoryID = p.CategoryID
	m.SupplierID = p.SupplierID
	m.CostPrice = p.CostPrice
	m.SellingPrice = p.SellingPrice
	m.CurrentStock = p.CurrentStock
	m.MinStockLevel = p.MinStockLevel
	m.HasExpiry = p.HasExpiry
	m.ExpiryWarningDays = p.ExpiryWarningDays
	m.IsActive = p.IsActive
}

// ProductModelFromDomain creates a new persistence model from a domain Product entity.
func ProductModelFromDomain(p *catalog.Product) *ProductModel {
	m := &ProductModel{}
	m.FromDomain(p)
	return m
}

