package trade

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appfinance "github.com/shopman/backend/internal/application/finance"
	appinventory "github.com/shopman/backend/internal/application/inventory"
	appshared "github.com/shopman/backend/internal/application/shared"
	"github.com/shopman/backend/internal/domain/inventory"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/domain/trade"
	"github.com/shopman/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PurchaseService handles purchase orders: creation, receiving and cancellation
type PurchaseService struct {
	scope          appshared.TransactionScope
	ledger         *appinventory.StockLedger
	bills          *appfinance.BillLedger
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPurchaseService creates a new PurchaseService
func NewPurchaseService(scope appshared.TransactionScope, ledger *appinventory.StockLedger, bills *appfinance.BillLedger, logger *zap.Logger) *PurchaseService {
	return &PurchaseService{scope: scope, ledger: ledger, bills: bills, logger: logger}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreatePurchaseOrder opens a pending order with its lines
func (s *PurchaseService) CreatePurchaseOrder(ctx context.Context, req CreatePurchaseOrderRequest) (*PurchaseOrderResponse, error) {
	if len(req.Items) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Purchase order must have at least one item")
	}

	var order *trade.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		supplier, err := repos.Suppliers().FindByID(ctx, req.SupplierID)
		if err != nil {
			return err
		}
		now := s.ledger.Now()
		orderDate := now
		if req.OrderDate != nil {
			orderDate = *req.OrderDate
		}
		number, err := appshared.NextDocumentNumber(ctx, repos, shared.SeqPurchaseOrder, now)
		if err != nil {
			return err
		}
		order, err = trade.NewPurchaseOrder(number, supplier.ID, supplier.Name, orderDate, req.ExpectedDate)
		if err != nil {
			return err
		}
		order.Notes = req.Notes
		for _, line := range req.Items {
			product, err := repos.Products().FindByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			if _, err := order.AddItem(product.ID, product.Name, line.Quantity, line.UnitCost, line.BatchNumber, line.ExpiryDate); err != nil {
				return err
			}
		}
		return repos.PurchaseOrders().Save(ctx, order)
	})
	if err != nil {
		s.logger.Warn("purchase order rejected",
			zap.String("supplier_id", req.SupplierID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("purchase order created",
		zap.String("po_number", order.PONumber),
		zap.String("supplier", order.SupplierName),
		zap.Int("items", len(order.Items)),
		zap.String("total_amount", order.TotalAmount.String()))

	resp := ToPurchaseOrderResponse(order, nil, s.ledger.Now())
	return &resp, nil
}

// CompletePurchaseOrder receives the goods of a pending order: one lot per
// line, stock raised, movements logged, and the supplier bill opened.
func (s *PurchaseService) CompletePurchaseOrder(ctx context.Context, orderID uuid.UUID) (*CompletePurchaseOrderResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_order", "complete")
	defer span.End()
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderID, orderID.String())

	var (
		order  *trade.PurchaseOrder
		result CompletePurchaseOrderResult
		events appshared.EventCollector
	)
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		order, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		now := s.ledger.Now()
		if err := order.Complete(now); err != nil {
			return err
		}

		for i := range order.Items {
			item := &order.Items[i]
			product, err := repos.Products().FindByID(ctx, item.ProductID)
			if err != nil {
				return err
			}
			var expiry *time.Time
			if product.HasExpiry {
				expiry = item.ExpiryDate
			}
			itemID := item.ID
			if _, _, err := s.ledger.Receive(ctx, repos, appinventory.ReceiveInput{
				ProductID:           item.ProductID,
				Quantity:            item.Quantity,
				BatchNumber:         item.BatchNumber,
				ExpiryDate:          expiry,
				PurchaseOrderItemID: &itemID,
				MovementType:        inventory.MovementPurchaseIn,
				Reference:           order.PONumber,
				Notes:               "Purchase order received",
			}); err != nil {
				return fmt.Errorf("receive %s: %w", item.ProductName, err)
			}
			result.BatchesCreated++
		}

		if err := repos.PurchaseOrders().Save(ctx, order); err != nil {
			return fmt.Errorf("save purchase order: %w", err)
		}
		bill, err := s.bills.Open(ctx, repos, order)
		if err != nil {
			return err
		}
		if bill != nil {
			id := bill.ID
			result.BillID = &id
			result.BillNumber = bill.BillNumber
		}
		events.Collect(order)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("purchase order completion rejected",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)

	result.OrderID = order.ID
	result.PONumber = order.PONumber
	telemetry.SetAttributes(span, telemetry.SpanAttrOrderNumber, order.PONumber)
	s.logger.Info("purchase order completed",
		zap.String("po_number", order.PONumber),
		zap.Int("batches_created", result.BatchesCreated),
		zap.String("bill_number", result.BillNumber))
	return &result, nil
}

// CancelPurchaseOrder cancels a pending order and records the reason
func (s *PurchaseService) CancelPurchaseOrder(ctx context.Context, orderID uuid.UUID, reason string) (*PurchaseOrderResponse, error) {
	var order *trade.PurchaseOrder
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		order, err = repos.PurchaseOrders().FindByIDForUpdate(ctx, orderID)
		if err != nil {
			return err
		}
		cancellation, err := order.Cancel(reason, s.ledger.Now())
		if err != nil {
			return err
		}
		if err := repos.PurchaseOrders().Save(ctx, order); err != nil {
			return fmt.Errorf("save purchase order: %w", err)
		}
		return repos.PurchaseOrders().SaveCancellation(ctx, cancellation)
	})
	if err != nil {
		s.logger.Warn("purchase order cancellation rejected",
			zap.String("order_id", orderID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("purchase order cancelled",
		zap.String("po_number", order.PONumber),
		zap.String("reason", reason))
	resp := ToPurchaseOrderResponse(order, nil, s.ledger.Now())
	return &resp, nil
}

// GetPurchaseOrder returns an order with its return figures
func (s *PurchaseService) GetPurchaseOrder(ctx context.Context, orderID uuid.UUID) (*PurchaseOrderResponse, error) {
	repos := s.scope.Repos()
	order, err := repos.PurchaseOrders().FindByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	returns, err := repos.PurchaseReturns().FindByPurchaseOrder(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseOrderResponse(order, returns, s.ledger.Now())
	return &resp, nil
}

// ListPurchaseOrders returns a page of orders, newest first
func (s *PurchaseService) ListPurchaseOrders(ctx context.Context, filter ListFilter) ([]PurchaseOrderResponse, error) {
	repos := s.scope.Repos()
	orders, err := repos.PurchaseOrders().FindAll(ctx, filter.toDomain("order_date"))
	if err != nil {
		return nil, err
	}
	now := s.ledger.Now()
	out := make([]PurchaseOrderResponse, 0, len(orders))
	for i := range orders {
		returns, err := repos.PurchaseReturns().FindByPurchaseOrder(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		out = append(out, ToPurchaseOrderResponse(&orders[i], returns, now))
	}
	return out, nil
}
