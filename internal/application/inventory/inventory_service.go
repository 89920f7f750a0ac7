package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	appshared "github.com/shopman/backend/internal/application/shared"
	"github.com/shopman/backend/internal/domain/catalog"
	"github.com/shopman/backend/internal/domain/inventory"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultExpiryHorizonDays bounds how far ahead the expiry report looks for lots
const DefaultExpiryHorizonDays = 365

// InventoryService handles adjustments and stock reporting
type InventoryService struct {
	scope          appshared.TransactionScope
	ledger         *StockLedger
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	expiryHorizon  int
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(scope appshared.TransactionScope, ledger *StockLedger, logger *zap.Logger) *InventoryService {
	return &InventoryService{
		scope:         scope,
		ledger:        ledger,
		logger:        logger,
		expiryHorizon: DefaultExpiryHorizonDays,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *InventoryService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetExpiryHorizon changes how many days ahead the expiry report scans
func (s *InventoryService) SetExpiryHorizon(days int) {
	if days > 0 {
		s.expiryHorizon = days
	}
}

// AdjustStock applies a manual adjustment and records it
func (s *InventoryService) AdjustStock(ctx context.Context, req AdjustStockRequest) (*AdjustmentResponse, error) {
	adjType := inventory.AdjustmentType(req.Type)
	adj, err := inventory.NewStockAdjustment(req.ProductID, req.BatchID, adjType, req.Quantity, req.Reason, req.Notes)
	if err != nil {
		return nil, err
	}

	var events appshared.EventCollector
	err = s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		current, err := repos.Products().FindByIDForUpdate(ctx, req.ProductID)
		if err != nil {
			return err
		}
		adj.StockBefore = current.CurrentStock
		ref := "ADJ-" + adj.ID.String()[:8]

		var product *catalog.Product
		switch adjType {
		case inventory.AdjustmentAdd:
			_, product, err = s.ledger.Receive(ctx, repos, ReceiveInput{
				ProductID:    req.ProductID,
				Quantity:     req.Quantity,
				BatchID:      req.BatchID,
				BatchNumber:  req.BatchNumber,
				ExpiryDate:   req.ExpiryDate,
				MovementType: inventory.MovementAdjustmentIn,
				Reference:    ref,
				Notes:        req.Reason,
			})
		case inventory.AdjustmentCorrection:
			product, err = s.ledger.Correct(ctx, repos, req.ProductID, req.Quantity, ref, req.Reason)
		default:
			product, err = s.ledger.RemoveFromLot(ctx, repos, req.ProductID, *req.BatchID, req.Quantity, ref, req.Reason)
		}
		if err != nil {
			return err
		}
		adj.StockAfter = product.CurrentStock
		if err := repos.Adjustments().Save(ctx, adj); err != nil {
			return fmt.Errorf("save adjustment: %w", err)
		}
		events.Collect(product)
		return nil
	})
	if err != nil {
		s.logger.Warn("stock adjustment rejected",
			zap.String("product_id", req.ProductID.String()),
			zap.String("type", req.Type),
			zap.Error(err))
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)

	s.logger.Info("stock adjusted",
		zap.String("product_id", adj.ProductID.String()),
		zap.String("type", string(adj.Type)),
		zap.Int("quantity", adj.Quantity),
		zap.Int("stock_before", adj.StockBefore),
		zap.Int("stock_after", adj.StockAfter))

	return &AdjustmentResponse{
		ID:          adj.ID,
		ProductID:   adj.ProductID,
		BatchID:     adj.BatchID,
		Type:        adj.Type,
		Quantity:    adj.Quantity,
		Reason:      adj.Reason,
		StockBefore: adj.StockBefore,
		StockAfter:  adj.StockAfter,
		CreatedAt:   adj.CreatedAt,
	}, nil
}

// WriteOffExpired removes 0 < qty <= current units of a lot as an expiry write-off
func (s *InventoryService) WriteOffExpired(ctx context.Context, batchID uuid.UUID, req WriteOffRequest) (*AdjustmentResponse, error) {
	lot, err := s.scope.Repos().Batches().FindByID(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if req.Quantity <= 0 || req.Quantity > lot.CurrentQuantity {
		return nil, shared.NewDomainError(shared.CodeInvalidInput,
			fmt.Sprintf("Write-off quantity must be between 1 and %d", lot.CurrentQuantity))
	}
	reason := req.Reason
	if reason == "" {
		reason = "Expired stock write-off"
	}
	return s.AdjustStock(ctx, AdjustStockRequest{
		ProductID: lot.ProductID,
		BatchID:   &lot.ID,
		Type:      string(inventory.AdjustmentExpiryWriteOff),
		Quantity:  req.Quantity,
		Reason:    reason,
	})
}

// ListBatches lists lots, optionally for one product
func (s *InventoryService) ListBatches(ctx context.Context, productID *uuid.UUID, filter shared.Filter) ([]BatchResponse, error) {
	repo := s.scope.Repos().Batches()
	var (
		lots []inventory.Batch
		err  error
	)
	if productID != nil {
		lots, err = repo.FindByProduct(ctx, *productID)
	} else {
		lots, err = repo.FindAll(ctx, filter)
	}
	if err != nil {
		return nil, err
	}
	today := s.ledger.Now()
	out := make([]BatchResponse, 0, len(lots))
	for i := range lots {
		out = append(out, ToBatchResponse(&lots[i], today))
	}
	return out, nil
}

// ListMovements returns the movement audit trail
func (s *InventoryService) ListMovements(ctx context.Context, filter inventory.MovementFilter) ([]MovementResponse, error) {
	movements, err := s.scope.Repos().Movements().Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	out := make([]MovementResponse, 0, len(movements))
	for i := range movements {
		out = append(out, ToMovementResponse(&movements[i]))
	}
	return out, nil
}

// ExpiryReport classifies lots with stock as expired or near expiry,
// using each product's own warning window.
func (s *InventoryService) ExpiryReport(ctx context.Context) (*ExpiryReport, error) {
	repos := s.scope.Repos()
	today := shared.DateOf(s.ledger.Now())

	lots, err := repos.Batches().FindWithStockExpiringBy(ctx, today.AddDate(0, 0, s.expiryHorizon))
	if err != nil {
		return nil, err
	}
	ids := make([]uuid.UUID, 0, len(lots))
	seen := make(map[uuid.UUID]bool)
	for _, b := range lots {
		if !seen[b.ProductID] {
			seen[b.ProductID] = true
			ids = append(ids, b.ProductID)
		}
	}
	products, err := repos.Products().FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*catalog.Product, len(products))
	for i := range products {
		byID[products[i].ID] = &products[i]
	}

	report := &ExpiryReport{
		Date:            today,
		Expired:         make([]ExpiryLine, 0),
		NearExpiry:      make([]ExpiryLine, 0),
		ExpiredValue:    decimal.Zero,
		NearExpiryValue: decimal.Zero,
	}
	totals := make(map[uuid.UUID]*ProductExpiry)
	for i := range lots {
		b := &lots[i]
		p, ok := byID[b.ProductID]
		if !ok || b.ExpiryDate == nil {
			continue
		}
		days, _ := b.DaysUntilExpiry(today)
		line := ExpiryLine{
			BatchID:         b.ID,
			BatchNumber:     b.BatchNumber,
			ProductID:       p.ID,
			ProductName:     p.Name,
			ExpiryDate:      *b.ExpiryDate,
			DaysUntilExpiry: days,
			CurrentQuantity: b.CurrentQuantity,
			Value:           p.CostPrice.Mul(decimal.NewFromInt(int64(b.CurrentQuantity))),
		}
		agg := totals[p.ID]
		if agg == nil {
			agg = &ProductExpiry{ProductID: p.ID, ProductName: p.Name}
			totals[p.ID] = agg
		}
		switch {
		case b.IsExpired(today):
			report.Expired = append(report.Expired, line)
			report.ExpiredValue = report.ExpiredValue.Add(line.Value)
			agg.ExpiredStock += b.CurrentQuantity
		case b.IsNearExpiry(today, p.ExpiryWarningDays):
			report.NearExpiry = append(report.NearExpiry, line)
			report.NearExpiryValue = report.NearExpiryValue.Add(line.Value)
			agg.NearExpiryStock += b.CurrentQuantity
		}
	}
	for _, agg := range totals {
		if agg.ExpiredStock > 0 || agg.NearExpiryStock > 0 {
			report.Products = append(report.Products, *agg)
		}
	}
	sort.Slice(report.Products, func(i, j int) bool {
		return report.Products[i].ProductName < report.Products[j].ProductName
	})
	return report, nil
}

// StockReport lists every product with its stock status and value
func (s *InventoryService) StockReport(ctx context.Context) (*StockReport, error) {
	filter := shared.DefaultFilter()
	filter.PageSize = 0
	filter.OrderBy = "name"
	filter.OrderDir = "asc"
	products, err := s.scope.Repos().Products().FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	report := &StockReport{
		Items:      make([]StockLine, 0, len(products)),
		LowStock:   make([]StockLine, 0),
		TotalValue: decimal.Zero,
	}
	for i := range products {
		line := toStockLine(&products[i])
		report.Items = append(report.Items, line)
		report.TotalValue = report.TotalValue.Add(line.StockValue)
		switch line.Status {
		case catalog.StockStatusOutOfStock:
			report.OutOfStockCount++
		case catalog.StockStatusLowStock:
			report.LowStockCount++
		}
		if products[i].IsLowStock() {
			report.LowStock = append(report.LowStock, line)
		}
	}
	report.TotalProducts = len(products)
	return report, nil
}
