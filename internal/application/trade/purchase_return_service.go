package trade

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	appfinance "github.com/shopman/backend/internal/application/finance"
	appinventory "github.com/shopman/backend/internal/application/inventory"
	appshared "github.com/shopman/backend/internal/application/shared"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/domain/trade"
	"github.com/shopman/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// PurchaseReturnService handles goods sent back to suppliers
type PurchaseReturnService struct {
	scope          appshared.TransactionScope
	ledger         *appinventory.StockLedger
	bills          *appfinance.BillLedger
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewPurchaseReturnService creates a new PurchaseReturnService
func NewPurchaseReturnService(scope appshared.TransactionScope, ledger *appinventory.StockLedger, bills *appfinance.BillLedger, logger *zap.Logger) *PurchaseReturnService {
	return &PurchaseReturnService{scope: scope, ledger: ledger, bills: bills, logger: logger}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *PurchaseReturnService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreatePurchaseReturn opens a pending return against a received order,
// optionally with its first items.
func (s *PurchaseReturnService) CreatePurchaseReturn(ctx context.Context, req CreatePurchaseReturnRequest) (*PurchaseReturnResponse, error) {
	var ret *trade.PurchaseReturn
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		order, err := repos.PurchaseOrders().FindByIDForUpdate(ctx, req.PurchaseOrderID)
		if err != nil {
			return err
		}
		now := s.ledger.Now()
		number, err := appshared.NextDocumentNumber(ctx, repos, shared.SeqPurchaseReturn, now)
		if err != nil {
			return err
		}
		ret, err = trade.NewPurchaseReturn(number, order, trade.PurchaseReturnReason(req.Reason), req.Notes, now)
		if err != nil {
			return err
		}
		if len(req.Items) > 0 {
			claimed, err := repos.PurchaseReturns().ClaimedQuantities(ctx, order.ID)
			if err != nil {
				return err
			}
			for _, line := range req.Items {
				if err := s.addItem(ctx, repos, order, ret, claimed, line); err != nil {
					return err
				}
			}
		}
		return repos.PurchaseReturns().Save(ctx, ret)
	})
	if err != nil {
		s.logger.Warn("purchase return rejected",
			zap.String("purchase_order_id", req.PurchaseOrderID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("purchase return created",
		zap.String("return_number", ret.ReturnNumber),
		zap.Int("items", len(ret.Items)),
		zap.String("return_amount", ret.ReturnAmount.String()))
	resp := ToPurchaseReturnResponse(ret)
	return &resp, nil
}

// AddPurchaseReturnItem adds a line to a pending return
func (s *PurchaseReturnService) AddPurchaseReturnItem(ctx context.Context, returnID uuid.UUID, req PurchaseReturnItemInput) (*PurchaseReturnResponse, error) {
	var ret *trade.PurchaseReturn
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		ret, err = repos.PurchaseReturns().FindByIDForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		order, err := repos.PurchaseOrders().FindByIDForUpdate(ctx, ret.PurchaseOrderID)
		if err != nil {
			return err
		}
		claimed, err := repos.PurchaseReturns().ClaimedQuantities(ctx, order.ID)
		if err != nil {
			return err
		}
		if err := s.addItem(ctx, repos, order, ret, claimed, req); err != nil {
			return err
		}
		return repos.PurchaseReturns().Save(ctx, ret)
	})
	if err != nil {
		s.logger.Warn("purchase return item rejected",
			zap.String("return_id", returnID.String()),
			zap.Int("quantity", req.Quantity),
			zap.Error(err))
		return nil, err
	}
	resp := ToPurchaseReturnResponse(ret)
	return &resp, nil
}

// addItem validates the lot and the returnable quantity of one line.
// claimed counts every non-rejected return of the order, this one included.
func (s *PurchaseReturnService) addItem(ctx context.Context, repos appshared.Repositories, order *trade.PurchaseOrder, ret *trade.PurchaseReturn, claimed map[uuid.UUID]int, line PurchaseReturnItemInput) error {
	poItem := order.GetItem(line.PurchaseOrderItemID)
	if poItem == nil {
		return shared.NewDomainError(shared.CodeInvalidInput, "Item does not belong to the returned purchase order")
	}
	if line.BatchID != nil {
		lot, err := repos.Batches().FindByID(ctx, *line.BatchID)
		if err != nil {
			return err
		}
		if lot.ProductID != poItem.ProductID {
			return shared.NewDomainError(shared.CodeInvalidInput, "Batch does not belong to the returned product")
		}
	}

	// the return's own saved lines are counted again by AddItem
	own := 0
	for _, existing := range ret.Items {
		if existing.PurchaseOrderItemID == poItem.ID {
			own += existing.Quantity
		}
	}
	remaining := poItem.Quantity - (claimed[poItem.ID] - own)
	if _, err := ret.AddItem(poItem, line.BatchID, line.Quantity, line.UnitCost, remaining); err != nil {
		return err
	}
	claimed[poItem.ID] += line.Quantity
	return nil
}

// UpdateReturnStatus moves a return through its state machine. Completing it
// takes the goods out of their lots and marks the order returned; leaving
// completed puts everything back. The order's bill is re-derived either way.
func (s *PurchaseReturnService) UpdateReturnStatus(ctx context.Context, returnID uuid.UUID, req UpdateReturnStatusRequest) (*PurchaseReturnResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "purchase_return", "update_status")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrReturnID, returnID.String(),
		telemetry.SpanAttrReturnStatus, req.Status,
	)

	var (
		ret    *trade.PurchaseReturn
		from   trade.PurchaseReturnStatus
		events appshared.EventCollector
	)
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		ret, err = repos.PurchaseReturns().FindByIDForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		from = ret.Status
		effect, err := ret.ChangeStatus(trade.PurchaseReturnStatus(req.Status), req.Notes, s.ledger.Now())
		if err != nil {
			return err
		}
		if effect == trade.ReturnEffectNone {
			return repos.PurchaseReturns().Save(ctx, ret)
		}

		order, err := repos.PurchaseOrders().FindByIDForUpdate(ctx, ret.PurchaseOrderID)
		if err != nil {
			return err
		}
		switch effect {
		case trade.ReturnEffectApply:
			if err := s.ledger.ReturnToSupplier(ctx, repos, ret); err != nil {
				return err
			}
			if err := order.MarkReturned(); err != nil {
				return err
			}
		case trade.ReturnEffectReverse:
			if err := s.ledger.ReverseSupplierReturn(ctx, repos, ret); err != nil {
				return err
			}
			if err := order.RevertToCompleted(); err != nil {
				return err
			}
		}
		if err := repos.PurchaseOrders().Save(ctx, order); err != nil {
			return fmt.Errorf("save purchase order: %w", err)
		}
		// the bill sums completed returns from the store, so the return goes first
		if err := repos.PurchaseReturns().Save(ctx, ret); err != nil {
			return fmt.Errorf("save purchase return: %w", err)
		}
		if _, err := s.bills.RecomputeForOrder(ctx, repos, order.ID); err != nil {
			return err
		}
		events.Collect(ret)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("purchase return status change rejected",
			zap.String("return_id", returnID.String()),
			zap.String("target", req.Status),
			zap.Error(err))
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)

	s.logger.Info("purchase return status changed",
		zap.String("return_number", ret.ReturnNumber),
		zap.String("from", string(from)),
		zap.String("to", string(ret.Status)))
	resp := ToPurchaseReturnResponse(ret)
	return &resp, nil
}

// GetPurchaseReturn returns one supplier return
func (s *PurchaseReturnService) GetPurchaseReturn(ctx context.Context, returnID uuid.UUID) (*PurchaseReturnResponse, error) {
	ret, err := s.scope.Repos().PurchaseReturns().FindByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	resp := ToPurchaseReturnResponse(ret)
	return &resp, nil
}

// ListPurchaseReturns returns a page of supplier returns
func (s *PurchaseReturnService) ListPurchaseReturns(ctx context.Context, filter ListFilter) ([]PurchaseReturnResponse, error) {
	returns, err := s.scope.Repos().PurchaseReturns().FindAll(ctx, filter.toDomain("return_date"))
	if err != nil {
		return nil, err
	}
	out := make([]PurchaseReturnResponse, 0, len(returns))
	for i := range returns {
		out = append(out, ToPurchaseReturnResponse(&returns[i]))
	}
	return out, nil
}
