package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/domain/catalog"
	"github.com/shopman/backend/internal/domain/partner"
	"github.com/shopman/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// maxBarcodeAttempts bounds the -N suffix search for a free generated barcode
const maxBarcodeAttempts = 100

// ProductService handles product-related business operations
type ProductService struct {
	productRepo    catalog.ProductRepository
	categoryRepo   catalog.CategoryRepository
	supplierRepo   partner.SupplierRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	minStockLevel  int
	warningDays    int
}

// NewProductService creates a new ProductService
func NewProductService(
	productRepo catalog.ProductRepository,
	categoryRepo catalog.CategoryRepository,
	supplierRepo partner.SupplierRepository,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		productRepo:   productRepo,
		categoryRepo:  categoryRepo,
		supplierRepo:  supplierRepo,
		logger:        logger,
		minStockLevel: catalog.DefaultMinStockLevel,
		warningDays:   catalog.DefaultExpiryWarningDays,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *ProductService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetDefaults overrides the min stock level and expiry warning window given to new products
func (s *ProductService) SetDefaults(minStockLevel, expiryWarningDays int) {
	if minStockLevel >= 0 {
		s.minStockLevel = minStockLevel
	}
	if expiryWarningDays > 0 {
		s.warningDays = expiryWarningDays
	}
}

// Create creates a new product. A blank barcode is generated from the SKU.
func (s *ProductService) Create(ctx context.Context, req CreateProductRequest) (*ProductResponse, error) {
	product, err := catalog.NewProduct(req.Name, req.SKU, req.CostPrice, req.SellingPrice)
	if err != nil {
		return nil, err
	}

	exists, err := s.productRepo.ExistsBySKU(ctx, product.SKU)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Product with this SKU already exists")
	}

	barcode := strings.TrimSpace(req.Barcode)
	if barcode != "" {
		exists, err = s.productRepo.ExistsByBarcode(ctx, barcode)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Product with this barcode already exists")
		}
	} else {
		barcode, err = s.generateBarcode(ctx, product.SKU)
		if err != nil {
			return nil, err
		}
	}
	if err := product.SetBarcode(barcode); err != nil {
		return nil, err
	}

	if err := s.checkReferences(ctx, req.CategoryID, req.SupplierID); err != nil {
		return nil, err
	}
	product.SetCategory(req.CategoryID)
	product.SetSupplier(req.SupplierID)

	if req.Description != "" {
		if err := product.Update(product.Name, req.Description); err != nil {
			return nil, err
		}
	}
	minLevel := s.minStockLevel
	if req.MinStockLevel != nil {
		minLevel = *req.MinStockLevel
	}
	if err := product.SetMinStockLevel(minLevel); err != nil {
		return nil, err
	}
	warning := s.warningDays
	if req.ExpiryWarningDays != nil {
		warning = *req.ExpiryWarningDays
	}
	if err := product.TrackExpiry(req.HasExpiry, warning); err != nil {
		return nil, err
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	s.publish(ctx, product)

	s.logger.Info("product created",
		zap.String("product_id", product.ID.String()),
		zap.String("sku", product.SKU),
		zap.String("barcode", product.Barcode))

	resp := ToProductResponse(product)
	return &resp, nil
}

// generateBarcode derives BC-<sku> and appends -N until it is unused
func (s *ProductService) generateBarcode(ctx context.Context, sku string) (string, error) {
	for attempt := 0; attempt < maxBarcodeAttempts; attempt++ {
		candidate := catalog.BarcodeCandidate(sku, attempt)
		exists, err := s.productRepo.ExistsByBarcode(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !exists {
			return candidate, nil
		}
	}
	return "", shared.NewDomainError(shared.CodeAlreadyExists, fmt.Sprintf("Could not generate a unique barcode for SKU %s", sku))
}

func (s *ProductService) checkReferences(ctx context.Context, categoryID, supplierID *uuid.UUID) error {
	if categoryID != nil {
		if _, err := s.categoryRepo.FindByID(ctx, *categoryID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError(shared.CodeInvalidInput, "Category not found")
			}
			return err
		}
	}
	if supplierID != nil {
		if _, err := s.supplierRepo.FindByID(ctx, *supplierID); err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return shared.NewDomainError(shared.CodeInvalidInput, "Supplier not found")
			}
			return err
		}
	}
	return nil
}

// GetByID retrieves a product by ID
func (s *ProductService) GetByID(ctx context.Context, id uuid.UUID) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// GetByBarcode looks up the product scanned at the till
func (s *ProductService) GetByBarcode(ctx context.Context, barcode string) (*ProductResponse, error) {
	product, err := s.productRepo.FindByBarcode(ctx, strings.TrimSpace(barcode))
	if err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// List retrieves a page of products
func (s *ProductService) List(ctx context.Context, filter ProductListFilter) ([]ProductResponse, int64, error) {
	domainFilter := shared.DefaultFilter()
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.OrderBy != "" {
		domainFilter.OrderBy = filter.OrderBy
	}
	if filter.OrderDir != "" {
		domainFilter.OrderDir = filter.OrderDir
	}
	domainFilter.Search = filter.Search
	if filter.CategoryID != nil {
		domainFilter.Filters["category_id"] = *filter.CategoryID
	}
	if filter.LowStock {
		domainFilter.Filters["low_stock"] = true
	}

	products, err := s.productRepo.FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.productRepo.Count(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, ToProductResponse(&products[i]))
	}
	return out, total, nil
}

// Update applies a partial update
func (s *ProductService) Update(ctx context.Context, id uuid.UUID, req UpdateProductRequest) (*ProductResponse, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil || req.Description != nil {
		name, description := product.Name, product.Description
		if req.Name != nil {
			name = *req.Name
		}
		if req.Description != nil {
			description = *req.Description
		}
		if err := product.Update(name, description); err != nil {
			return nil, err
		}
	}
	if req.Barcode != nil && *req.Barcode != product.Barcode {
		exists, err := s.productRepo.ExistsByBarcode(ctx, *req.Barcode)
		if err != nil {
			return nil, err
		}
		if exists {
			return nil, shared.NewDomainError(shared.CodeAlreadyExists, "Product with this barcode already exists")
		}
		if err := product.SetBarcode(*req.Barcode); err != nil {
			return nil, err
		}
	}
	if req.CostPrice != nil || req.SellingPrice != nil {
		cost, selling := product.CostPrice, product.SellingPrice
		if req.CostPrice != nil {
			cost = *req.CostPrice
		}
		if req.SellingPrice != nil {
			selling = *req.SellingPrice
		}
		if err := product.SetPrices(cost, selling); err != nil {
			return nil, err
		}
	}
	if err := s.checkReferences(ctx, req.CategoryID, req.SupplierID); err != nil {
		return nil, err
	}
	if req.CategoryID != nil {
		product.SetCategory(req.CategoryID)
	}
	if req.SupplierID != nil {
		product.SetSupplier(req.SupplierID)
	}
	if req.MinStockLevel != nil {
		if err := product.SetMinStockLevel(*req.MinStockLevel); err != nil {
			return nil, err
		}
	}
	if req.HasExpiry != nil || req.ExpiryWarningDays != nil {
		enabled, days := product.HasExpiry, 0
		if req.HasExpiry != nil {
			enabled = *req.HasExpiry
		}
		if req.ExpiryWarningDays != nil {
			days = *req.ExpiryWarningDays
		}
		if err := product.TrackExpiry(enabled, days); err != nil {
			return nil, err
		}
	}
	if req.IsActive != nil {
		if *req.IsActive {
			product.Activate()
		} else {
			product.Deactivate()
		}
	}

	if err := s.productRepo.Save(ctx, product); err != nil {
		return nil, err
	}
	resp := ToProductResponse(product)
	return &resp, nil
}

// LowStock lists products at or below their reorder threshold
func (s *ProductService) LowStock(ctx context.Context) ([]ProductResponse, error) {
	products, err := s.productRepo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]ProductResponse, 0, len(products))
	for i := range products {
		out = append(out, ToProductResponse(&products[i]))
	}
	return out, nil
}

func (s *ProductService) publish(ctx context.Context, product *catalog.Product) {
	events := product.GetDomainEvents()
	if s.eventPublisher == nil || len(events) == 0 {
		return
	}
	if err := s.eventPublisher.Publish(ctx, events...); err != nil {
		s.logger.Warn("failed to publish product events", zap.Error(err))
	}
	product.ClearDomainEvents()
}
