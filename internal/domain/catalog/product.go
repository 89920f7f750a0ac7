package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
)

// Defaults applied to new products
const (
	DefaultMinStockLevel     = 10
	DefaultExpiryWarningDays = 30
)

// StockStatus classifies current stock against the reorder threshold
type StockStatus string

const (
	StockStatusOutOfStock StockStatus = "out_of_stock"
	StockStatusLowStock   StockStatus = "low_stock"
	StockStatusInStock    StockStatus = "in_stock"
)

// Product is a sellable item. CurrentStock is the denormalised sum of its
// batches' remaining quantity and is only changed through the stock ledger.
type Product struct {
	shared.BaseAggregateRoot
	Name              string
	SKU               string
	Barcode           string
	Description       string
	CategoryID        *uuid.UUID
	SupplierID        *uuid.UUID
	CostPrice         decimal.Decimal
	SellingPrice      decimal.Decimal
	CurrentStock      int
	MinStockLevel     int
	HasExpiry         bool
	ExpiryWarningDays int
	IsActive          bool
}

// NewProduct creates a new product with validated prices
func NewProduct(name, sku string, costPrice, sellingPrice decimal.Decimal) (*Product, error) {
	if err := validateProductName(name); err != nil {
		return nil, err
	}
	if err := validateSKU(sku); err != nil {
		return nil, err
	}
	if err := validatePrices(costPrice, sellingPrice); err != nil {
		return nil, err
	}

	product := &Product{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              strings.TrimSpace(name),
		SKU:               strings.ToUpper(strings.TrimSpace(sku)),
		CostPrice:         costPrice,
		SellingPrice:      sellingPrice,
		MinStockLevel:     DefaultMinStockLevel,
		ExpiryWarningDays: DefaultExpiryWarningDays,
		IsActive:          true,
	}
	product.AddDomainEvent(NewProductCreatedEvent(product))
	return product, nil
}

// Update updates the product's descriptive information
func (p *Product) Update(name, description string) error {
	if err := validateProductName(name); err != nil {
		return err
	}
	p.Name = strings.TrimSpace(name)
	p.Description = description
	p.IncrementVersion()
	return nil
}

// SetPrices sets cost and selling price; selling must not be below cost
func (p *Product) SetPrices(costPrice, sellingPrice decimal.Decimal) error {
	if err := validatePrices(costPrice, sellingPrice); err != nil {
		return err
	}
	p.CostPrice = costPrice
	p.SellingPrice = sellingPrice
	p.IncrementVersion()
	return nil
}

// SetBarcode assigns a barcode of at least 3 characters
func (p *Product) SetBarcode(barcode string) error {
	barcode = strings.TrimSpace(barcode)
	if len(barcode) < 3 {
		return shared.NewDomainError("INVALID_BARCODE", "Barcode must be at least 3 characters long")
	}
	if len(barcode) > 50 {
		return shared.NewDomainError("INVALID_BARCODE", "Barcode cannot exceed 50 characters")
	}
	p.Barcode = barcode
	p.IncrementVersion()
	return nil
}

func (p *Product) SetCategory(categoryID *uuid.UUID) {
	p.CategoryID = categoryID
	p.IncrementVersion()
}

func (p *Product) SetSupplier(supplierID *uuid.UUID) {
	p.SupplierID = supplierID
	p.IncrementVersion()
}

// SetMinStockLevel sets the low-stock threshold
func (p *Product) SetMinStockLevel(level int) error {
	if level < 0 {
		return shared.NewDomainError("INVALID_MIN_STOCK", "Minimum stock level cannot be negative")
	}
	p.MinStockLevel = level
	p.IncrementVersion()
	return nil
}

// TrackExpiry enables or disables batch expiry tracking
func (p *Product) TrackExpiry(enabled bool, warningDays int) error {
	if warningDays < 0 {
		return shared.NewDomainError("INVALID_WARNING_DAYS", "Expiry warning days cannot be negative")
	}
	p.HasExpiry = enabled
	if warningDays > 0 {
		p.ExpiryWarningDays = warningDays
	}
	p.IncrementVersion()
	return nil
}

func (p *Product) Activate() {
	p.IsActive = true
	p.IncrementVersion()
}

func (p *Product) Deactivate() {
	p.IsActive = false
	p.IncrementVersion()
}

// IncreaseStock adds received or restored units
func (p *Product) IncreaseStock(qty int) error {
	if qty < 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Quantity cannot be negative")
	}
	p.CurrentStock += qty
	p.IncrementVersion()
	return nil
}

// DecreaseStock removes units; the product can never go below zero
func (p *Product) DecreaseStock(qty int) error {
	if qty < 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Quantity cannot be negative")
	}
	if qty > p.CurrentStock {
		return shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Insufficient stock for %s. Available: %d, requested: %d", p.Name, p.CurrentStock, qty))
	}
	before := p.CurrentStock
	p.CurrentStock -= qty
	p.IncrementVersion()
	if before > p.MinStockLevel && p.CurrentStock <= p.MinStockLevel {
		p.AddDomainEvent(NewLowStockDetectedEvent(p))
	}
	return nil
}

// CorrectStock overwrites the stock counter after a physical count
func (p *Product) CorrectStock(qty int) error {
	if qty < 0 {
		return shared.NewDomainError(shared.CodeInvalidInput, "Stock cannot be negative")
	}
	p.CurrentStock = qty
	p.IncrementVersion()
	return nil
}

// StockStatus derives the reorder classification
func (p *Product) StockStatus() StockStatus {
	switch {
	case p.CurrentStock <= 0:
		return StockStatusOutOfStock
	case p.CurrentStock <= p.MinStockLevel:
		return StockStatusLowStock
	default:
		return StockStatusInStock
	}
}

// IsLowStock reports whether stock is at or below the threshold
func (p *Product) IsLowStock() bool {
	return p.CurrentStock <= p.MinStockLevel
}

// ProfitMargin returns (selling - cost) / cost * 100, zero when cost is zero
func (p *Product) ProfitMargin() decimal.Decimal {
	if p.CostPrice.IsZero() {
		return decimal.Zero
	}
	return p.SellingPrice.Sub(p.CostPrice).Div(p.CostPrice).Mul(decimal.NewFromInt(100)).Round(2)
}

// StockValue is current stock valued at cost
func (p *Product) StockValue() decimal.Decimal {
	return p.CostPrice.Mul(decimal.NewFromInt(int64(p.CurrentStock)))
}

// ExpiryWarningCutoff is the last date considered near expiry relative to today
func (p *Product) ExpiryWarningCutoff(today time.Time) time.Time {
	return shared.DateOf(today).AddDate(0, 0, p.ExpiryWarningDays)
}

// BarcodeCandidate derives a barcode from the SKU. attempt 0 is the bare
// candidate; later attempts append -N for collision resolution.
func BarcodeCandidate(sku string, attempt int) string {
	base := sku
	if strings.HasPrefix(base, "SKU-") {
		base = "BC-" + strings.TrimPrefix(base, "SKU-")
	} else {
		base = "BC-" + base
	}
	if attempt == 0 {
		return base
	}
	return fmt.Sprintf("%s-%d", base, attempt)
}

func validateSKU(sku string) error {
	sku = strings.TrimSpace(sku)
	if sku == "" {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot be empty")
	}
	if len(sku) > 50 {
		return shared.NewDomainError("INVALID_SKU", "SKU cannot exceed 50 characters")
	}
	for _, r := range sku {
		if !((r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '_' || r == '-') {
			return shared.NewDomainError("INVALID_SKU", "SKU can only contain letters, numbers, underscores, and hyphens")
		}
	}
	return nil
}

func validateProductName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Product name cannot exceed 200 characters")
	}
	return nil
}

func validatePrices(costPrice, sellingPrice decimal.Decimal) error {
	if costPrice.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidPrice, "Cost price cannot be negative")
	}
	if sellingPrice.IsNegative() {
		return shared.NewDomainError(shared.CodeInvalidPrice, "Selling price cannot be negative")
	}
	if sellingPrice.LessThan(costPrice) {
		return shared.NewDomainError(shared.CodeInvalidPrice, "Selling price cannot be less than cost price")
	}
	return nil
}
