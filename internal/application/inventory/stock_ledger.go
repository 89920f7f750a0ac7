package inventory

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	appshared "github.com/shopman/backend/internal/application/shared"
	"github.com/shopman/backend/internal/domain/catalog"
	"github.com/shopman/backend/internal/domain/inventory"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/domain/shared/strategy"
	"github.com/shopman/backend/internal/domain/trade"
	"go.uber.org/zap"
)

// StockLedger is the only writer of product stock and lot quantities.
// Every method runs inside the caller's transaction, locks the rows it
// mutates and appends a signed StockMovement for each change.
type StockLedger struct {
	batchStrategy strategy.BatchManagementStrategy
	logger        *zap.Logger
	now           func() time.Time
}

// NewStockLedger creates a ledger drawing lots with the given selection strategy
func NewStockLedger(batchStrategy strategy.BatchManagementStrategy, logger *zap.Logger) *StockLedger {
	return &StockLedger{
		batchStrategy: batchStrategy,
		logger:        logger,
		now:           time.Now,
	}
}

// SetClock overrides the time source
func (l *StockLedger) SetClock(now func() time.Time) {
	l.now = now
}

// Now returns the ledger's current time
func (l *StockLedger) Now() time.Time {
	return l.now()
}

// ReceiveInput describes units entering stock
type ReceiveInput struct {
	ProductID uuid.UUID
	Quantity  int
	// BatchID adds to an existing lot of the product
	BatchID *uuid.UUID
	// BatchNumber reuses the product's lot with that number, or names the new one
	BatchNumber         string
	ManufactureDate     *time.Time
	ExpiryDate          *time.Time
	PurchaseOrderItemID *uuid.UUID
	MovementType        inventory.MovementType
	Reference           string
	Notes               string
}

// Receive puts units into a lot and onto the product counter
func (l *StockLedger) Receive(ctx context.Context, repos appshared.Repositories, in ReceiveInput) (*inventory.Batch, *catalog.Product, error) {
	if in.Quantity <= 0 {
		return nil, nil, shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be greater than 0")
	}
	product, err := repos.Products().FindByIDForUpdate(ctx, in.ProductID)
	if err != nil {
		return nil, nil, err
	}

	lot, err := l.receivingLot(ctx, repos, in)
	if err != nil {
		return nil, nil, err
	}
	if lot == nil {
		number := in.BatchNumber
		if number == "" {
			ref := uuid.New()
			if in.PurchaseOrderItemID != nil {
				ref = *in.PurchaseOrderItemID
			}
			number = inventory.ReceiptBatchNumber(l.now(), ref)
		}
		lot, err = inventory.NewBatch(product.ID, number, in.Quantity, in.ManufactureDate, in.ExpiryDate)
		if err != nil {
			return nil, nil, err
		}
		if in.PurchaseOrderItemID != nil {
			lot.LinkPurchaseOrderItem(*in.PurchaseOrderItemID)
		}
	} else if err := lot.AddStock(in.Quantity); err != nil {
		return nil, nil, err
	}

	if err := repos.Batches().Save(ctx, lot); err != nil {
		return nil, nil, fmt.Errorf("save batch: %w", err)
	}
	if err := product.IncreaseStock(in.Quantity); err != nil {
		return nil, nil, err
	}
	if err := repos.Products().Save(ctx, product); err != nil {
		return nil, nil, fmt.Errorf("save product: %w", err)
	}
	if err := l.record(ctx, repos, in.MovementType, product.ID, lot, in.Quantity, in.Reference, in.Notes); err != nil {
		return nil, nil, err
	}
	return lot, product, nil
}

func (l *StockLedger) receivingLot(ctx context.Context, repos appshared.Repositories, in ReceiveInput) (*inventory.Batch, error) {
	if in.BatchID != nil {
		lot, err := repos.Batches().FindByIDForUpdate(ctx, *in.BatchID)
		if err != nil {
			return nil, err
		}
		if lot.ProductID != in.ProductID {
			return nil, shared.NewDomainError(shared.CodeInvalidInput, "Batch does not belong to the product")
		}
		return lot, nil
	}
	if in.BatchNumber == "" {
		return nil, nil
	}
	existing, err := repos.Batches().FindByNumber(ctx, in.ProductID, in.BatchNumber)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return repos.Batches().FindByIDForUpdate(ctx, existing.ID)
}

// IssueResult is what a sale line drew from stock
type IssueResult struct {
	Product     *catalog.Product
	Allocations []trade.SaleItemAllocation
	// Shortfall counts units taken off the product counter without a lot to draw from
	Shortfall int
}

// Issue takes qty units of a product out of stock. Lots are chosen by the
// configured strategy; the product counter always drops by the full quantity.
func (l *StockLedger) Issue(ctx context.Context, repos appshared.Repositories, productID uuid.UUID, qty int, reference string) (*IssueResult, error) {
	if qty <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be greater than 0")
	}
	product, err := repos.Products().FindByIDForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product.CurrentStock < qty {
		return nil, shared.NewDomainError(shared.CodeInsufficientStock,
			fmt.Sprintf("Insufficient stock for %s. Available: %d, requested: %d", product.Name, product.CurrentStock, qty))
	}

	lots, err := repos.Batches().FindAvailableForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*inventory.Batch, len(lots))
	candidates := make([]strategy.Batch, 0, len(lots))
	for i := range lots {
		byID[lots[i].ID] = &lots[i]
		candidates = append(candidates, lots[i].ToStrategyBatch())
	}

	selection, err := l.batchStrategy.SelectBatches(ctx, strategy.BatchSelectionContext{
		ProductID: productID,
		Quantity:  qty,
		Date:      l.now(),
	}, candidates)
	if err != nil {
		return nil, fmt.Errorf("select batches: %w", err)
	}

	result := &IssueResult{Product: product}
	for _, sel := range selection.Selections {
		lot, ok := byID[sel.BatchID]
		if !ok {
			return nil, fmt.Errorf("strategy selected unknown batch %s", sel.BatchID)
		}
		if err := lot.RemoveStock(sel.Quantity); err != nil {
			return nil, err
		}
		if err := repos.Batches().Save(ctx, lot); err != nil {
			return nil, fmt.Errorf("save batch: %w", err)
		}
		if err := l.record(ctx, repos, inventory.MovementSaleOut, productID, lot, sel.Quantity, reference, ""); err != nil {
			return nil, err
		}
		result.Allocations = append(result.Allocations, trade.SaleItemAllocation{
			BatchID:     lot.ID,
			BatchNumber: lot.BatchNumber,
			Quantity:    sel.Quantity,
		})
	}
	if selection.ShortfallQty > 0 {
		result.Shortfall = selection.ShortfallQty
		if err := l.record(ctx, repos, inventory.MovementSaleOut, productID, nil, selection.ShortfallQty, reference, "no lot available"); err != nil {
			return nil, err
		}
		l.logger.Warn("sale drew less than requested from lots",
			zap.String("product_id", productID.String()),
			zap.Int("requested", qty),
			zap.Int("from_lots", selection.TotalQty),
			zap.String("strategy", l.batchStrategy.Name()))
	}

	if err := product.DecreaseStock(qty); err != nil {
		return nil, err
	}
	if err := repos.Products().Save(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	return result, nil
}

// Restore puts customer-returned units back. Units go to the lots they were
// drawn from, bounded by what each lot gave and can hold; the rest only
// raises the product counter.
func (l *StockLedger) Restore(ctx context.Context, repos appshared.Repositories, productID uuid.UUID, allocations []trade.SaleItemAllocation, qty int, reference, notes string) (*catalog.Product, error) {
	if qty <= 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Quantity must be greater than 0")
	}
	product, err := repos.Products().FindByIDForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}

	remaining := qty
	for _, a := range allocations {
		if remaining == 0 {
			break
		}
		lot, err := repos.Batches().FindByIDForUpdate(ctx, a.BatchID)
		if errors.Is(err, shared.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		n := min(remaining, a.Quantity, lot.Quantity-lot.CurrentQuantity)
		if n <= 0 {
			continue
		}
		if err := lot.Restore(n); err != nil {
			return nil, err
		}
		if err := repos.Batches().Save(ctx, lot); err != nil {
			return nil, fmt.Errorf("save batch: %w", err)
		}
		if err := l.record(ctx, repos, inventory.MovementReturnIn, productID, lot, n, reference, notes); err != nil {
			return nil, err
		}
		remaining -= n
	}
	if remaining > 0 {
		if err := l.record(ctx, repos, inventory.MovementReturnIn, productID, nil, remaining, reference, notes); err != nil {
			return nil, err
		}
	}

	if err := product.IncreaseStock(qty); err != nil {
		return nil, err
	}
	if err := repos.Products().Save(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	return product, nil
}

// ReturnToSupplier moves the units of a completing supplier return out of
// their lots. Items without a lot are skipped; emptied lots are deleted.
func (l *StockLedger) ReturnToSupplier(ctx context.Context, repos appshared.Repositories, ret *trade.PurchaseReturn) error {
	products := make(map[uuid.UUID]*catalog.Product)
	for _, item := range ret.Items {
		if item.BatchID == nil {
			continue
		}
		lot, err := repos.Batches().FindByIDForUpdate(ctx, *item.BatchID)
		if err != nil {
			return err
		}
		if lot.CurrentQuantity < item.Quantity {
			return shared.NewDomainError(shared.CodeInsufficientStock,
				fmt.Sprintf("Cannot return more than available. Batch %s has %d units, return requests %d", lot.BatchNumber, lot.CurrentQuantity, item.Quantity))
		}
		product, err := l.lockedProduct(ctx, repos, products, item.ProductID)
		if err != nil {
			return err
		}
		if err := lot.RemoveStock(item.Quantity); err != nil {
			return err
		}
		if err := product.DecreaseStock(item.Quantity); err != nil {
			return err
		}
		if err := l.record(ctx, repos, inventory.MovementReturnOut, product.ID, lot, item.Quantity, ret.ReturnNumber, "Returned to supplier"); err != nil {
			return err
		}
		if lot.IsDepleted() {
			if err := repos.Batches().Delete(ctx, lot.ID); err != nil {
				return fmt.Errorf("delete batch: %w", err)
			}
			continue
		}
		if err := repos.Batches().Save(ctx, lot); err != nil {
			return fmt.Errorf("save batch: %w", err)
		}
	}
	return l.saveProducts(ctx, repos, products)
}

// ReverseSupplierReturn undoes ReturnToSupplier. A lot deleted on completion
// is recreated under a RESTORED- number keeping the purchase line link, and
// the return item is repointed at it.
func (l *StockLedger) ReverseSupplierReturn(ctx context.Context, repos appshared.Repositories, ret *trade.PurchaseReturn) error {
	products := make(map[uuid.UUID]*catalog.Product)
	for i := range ret.Items {
		item := &ret.Items[i]
		if item.BatchID == nil {
			continue
		}
		product, err := l.lockedProduct(ctx, repos, products, item.ProductID)
		if err != nil {
			return err
		}

		lot, err := repos.Batches().FindByIDForUpdate(ctx, *item.BatchID)
		switch {
		case errors.Is(err, shared.ErrNotFound):
			lot, err = l.recreateLot(ctx, repos, item)
			if err != nil {
				return err
			}
			id := lot.ID
			item.BatchID = &id
		case err != nil:
			return err
		default:
			if err := lot.Restore(item.Quantity); err != nil {
				return err
			}
		}
		if err := repos.Batches().Save(ctx, lot); err != nil {
			return fmt.Errorf("save batch: %w", err)
		}
		if err := product.IncreaseStock(item.Quantity); err != nil {
			return err
		}
		if err := l.record(ctx, repos, inventory.MovementReturnIn, product.ID, lot, item.Quantity, ret.ReturnNumber, "Supplier return reversed"); err != nil {
			return err
		}
	}
	return l.saveProducts(ctx, repos, products)
}

func (l *StockLedger) recreateLot(ctx context.Context, repos appshared.Repositories, item *trade.PurchaseReturnItem) (*inventory.Batch, error) {
	var expiry *time.Time
	poItem, err := repos.PurchaseOrders().FindItemByID(ctx, item.PurchaseOrderItemID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if poItem != nil {
		expiry = poItem.ExpiryDate
	}
	lot, err := inventory.NewBatch(item.ProductID, inventory.RestoredBatchNumber(item.PurchaseOrderItemID), item.Quantity, nil, expiry)
	if err != nil {
		return nil, err
	}
	lot.LinkPurchaseOrderItem(item.PurchaseOrderItemID)
	l.logger.Info("recreated batch for reversed supplier return",
		zap.String("batch_number", lot.BatchNumber),
		zap.String("purchase_order_item_id", item.PurchaseOrderItemID.String()))
	return lot, nil
}

// RemoveFromLot takes units out of a named lot for write-offs and manual removals
func (l *StockLedger) RemoveFromLot(ctx context.Context, repos appshared.Repositories, productID, batchID uuid.UUID, qty int, reference, notes string) (*catalog.Product, error) {
	product, err := repos.Products().FindByIDForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	lot, err := repos.Batches().FindByIDForUpdate(ctx, batchID)
	if err != nil {
		return nil, err
	}
	if lot.ProductID != productID {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Batch does not belong to the product")
	}
	if err := lot.RemoveStock(qty); err != nil {
		return nil, err
	}
	if err := product.DecreaseStock(qty); err != nil {
		return nil, err
	}
	if err := repos.Batches().Save(ctx, lot); err != nil {
		return nil, fmt.Errorf("save batch: %w", err)
	}
	if err := repos.Products().Save(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	if err := l.record(ctx, repos, inventory.MovementAdjustmentOut, productID, lot, qty, reference, notes); err != nil {
		return nil, err
	}
	return product, nil
}

// Correct overwrites the product counter after a physical count
func (l *StockLedger) Correct(ctx context.Context, repos appshared.Repositories, productID uuid.UUID, counted int, reference, notes string) (*catalog.Product, error) {
	product, err := repos.Products().FindByIDForUpdate(ctx, productID)
	if err != nil {
		return nil, err
	}
	delta := counted - product.CurrentStock
	if err := product.CorrectStock(counted); err != nil {
		return nil, err
	}
	if err := repos.Products().Save(ctx, product); err != nil {
		return nil, fmt.Errorf("save product: %w", err)
	}
	switch {
	case delta > 0:
		err = l.record(ctx, repos, inventory.MovementAdjustmentIn, productID, nil, delta, reference, notes)
	case delta < 0:
		err = l.record(ctx, repos, inventory.MovementAdjustmentOut, productID, nil, -delta, reference, notes)
	}
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (l *StockLedger) lockedProduct(ctx context.Context, repos appshared.Repositories, cache map[uuid.UUID]*catalog.Product, id uuid.UUID) (*catalog.Product, error) {
	if p, ok := cache[id]; ok {
		return p, nil
	}
	p, err := repos.Products().FindByIDForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	cache[id] = p
	return p, nil
}

func (l *StockLedger) saveProducts(ctx context.Context, repos appshared.Repositories, products map[uuid.UUID]*catalog.Product) error {
	for _, p := range products {
		if err := repos.Products().Save(ctx, p); err != nil {
			return fmt.Errorf("save product: %w", err)
		}
	}
	return nil
}

func (l *StockLedger) record(ctx context.Context, repos appshared.Repositories, movementType inventory.MovementType, productID uuid.UUID, lot *inventory.Batch, qty int, reference, notes string) error {
	if movementType == "" {
		movementType = inventory.MovementAdjustmentIn
	}
	m, err := inventory.NewStockMovement(movementType, productID, lot, qty, reference, notes)
	if err != nil {
		return err
	}
	if err := repos.Movements().Save(ctx, m); err != nil {
		return fmt.Errorf("save stock movement: %w", err)
	}
	return nil
}
