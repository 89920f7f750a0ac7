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

// SaleReturnService handles goods customers bring back
type SaleReturnService struct {
	scope          appshared.TransactionScope
	ledger         *appinventory.StockLedger
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewSaleReturnService creates a new SaleReturnService
func NewSaleReturnService(scope appshared.TransactionScope, ledger *appinventory.StockLedger, logger *zap.Logger) *SaleReturnService {
	return &SaleReturnService{scope: scope, ledger: ledger, logger: logger}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SaleReturnService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateSaleReturn opens a pending return against a sale
func (s *SaleReturnService) CreateSaleReturn(ctx context.Context, req CreateSaleReturnRequest) (*SaleReturnResponse, error) {
	var ret *trade.SaleReturn
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		sale, err := repos.Sales().FindByIDForUpdate(ctx, req.SaleID)
		if err != nil {
			return err
		}
		number, err := appshared.NextDocumentNumber(ctx, repos, shared.SeqSaleReturn, s.ledger.Now())
		if err != nil {
			return err
		}
		ret, err = trade.NewSaleReturn(number, sale, trade.SaleReturnType(req.ReturnType), trade.SaleReturnReason(req.Reason), req.Description)
		if err != nil {
			return err
		}

		claimed, err := repos.SaleReturns().ClaimedQuantities(ctx, sale.ID)
		if err != nil {
			return err
		}
		for _, line := range req.Items {
			if _, err := ret.AddItem(sale.GetItem(line.SaleItemID), line.Quantity, claimed[line.SaleItemID]); err != nil {
				return err
			}
		}

		if ret.ReturnType == trade.SaleReturnTypeProduct && req.ExchangeProductID != nil {
			product, err := repos.Products().FindByID(ctx, *req.ExchangeProductID)
			if err != nil {
				return err
			}
			if product.CurrentStock < req.ExchangeQuantity {
				return shared.NewDomainError(shared.CodeInsufficientStock,
					fmt.Sprintf("Insufficient stock for exchange product. Available: %d", product.CurrentStock))
			}
			if err := ret.SetExchange(product.ID, req.ExchangeQuantity, product.SellingPrice); err != nil {
				return err
			}
		}
		if err := ret.Validate(); err != nil {
			return err
		}
		return repos.SaleReturns().Save(ctx, ret)
	})
	if err != nil {
		s.logger.Warn("sale return rejected",
			zap.String("sale_id", req.SaleID.String()),
			zap.Error(err))
		return nil, err
	}

	s.logger.Info("sale return created",
		zap.String("return_number", ret.ReturnNumber),
		zap.String("invoice_number", ret.InvoiceNumber),
		zap.String("refund_amount", ret.RefundAmount.String()),
		zap.String("balance_amount", ret.BalanceAmount.String()))
	resp := ToSaleReturnResponse(ret)
	return &resp, nil
}

// ProcessSaleReturn applies approve, complete or reject. Completion puts the
// returned units back into their lots, issues any exchange product, and for
// money returns books the refund against the sale.
func (s *SaleReturnService) ProcessSaleReturn(ctx context.Context, returnID uuid.UUID, req ProcessSaleReturnRequest) (*SaleReturnResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale_return", "process")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrReturnID, returnID.String(),
		telemetry.SpanAttrReturnStatus, req.Action,
	)

	var (
		ret    *trade.SaleReturn
		events appshared.EventCollector
	)
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		ret, err = repos.SaleReturns().FindByIDForUpdate(ctx, returnID)
		if err != nil {
			return err
		}
		if err := ret.Process(trade.SaleReturnAction(req.Action), req.Notes, s.ledger.Now()); err != nil {
			return err
		}
		if ret.Status == trade.SaleReturnStatusCompleted {
			if err := s.complete(ctx, repos, ret, &events); err != nil {
				return err
			}
		}
		if err := repos.SaleReturns().Save(ctx, ret); err != nil {
			return fmt.Errorf("save sale return: %w", err)
		}
		events.Collect(ret)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("sale return action rejected",
			zap.String("return_id", returnID.String()),
			zap.String("action", req.Action),
			zap.Error(err))
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)

	s.logger.Info("sale return processed",
		zap.String("return_number", ret.ReturnNumber),
		zap.String("status", string(ret.Status)),
		zap.String("balance_amount", ret.BalanceAmount.String()))
	resp := ToSaleReturnResponse(ret)
	return &resp, nil
}

func (s *SaleReturnService) complete(ctx context.Context, repos appshared.Repositories, ret *trade.SaleReturn, events *appshared.EventCollector) error {
	sale, err := repos.Sales().FindByIDForUpdate(ctx, ret.SaleID)
	if err != nil {
		return err
	}
	for _, item := range ret.Items {
		saleItem := sale.GetItem(item.SaleItemID)
		if saleItem == nil {
			return shared.NewDomainError(shared.CodeInvalidInput, "Returned item no longer belongs to the sale")
		}
		allocations := saleItem.Allocations
		if len(allocations) == 0 && item.BatchID != nil {
			allocations = []trade.SaleItemAllocation{{BatchID: *item.BatchID, Quantity: item.Quantity}}
		}
		note := "Sale return completed - " + ret.ReturnNumber
		if !ret.IsRefund() {
			note = "Sale return exchange - " + ret.ReturnNumber
		}
		if _, err := s.ledger.Restore(ctx, repos, item.ProductID, allocations, item.Quantity, ret.ReturnNumber, note); err != nil {
			return err
		}
	}

	if ret.IsRefund() {
		if err := sale.RecordReturn(ret.RefundAmount); err != nil {
			return err
		}
		if err := repos.Sales().Save(ctx, sale); err != nil {
			return fmt.Errorf("save sale: %w", err)
		}
	} else {
		issued, err := s.ledger.Issue(ctx, repos, *ret.ExchangeProductID, ret.ExchangeQuantity, ret.ReturnNumber)
		if err != nil {
			return err
		}
		events.Collect(issued.Product)
	}

	if sale.CustomerID != nil {
		if _, err := appfinance.RefreshCustomerDue(ctx, repos, *sale.CustomerID); err != nil {
			return err
		}
	}
	return nil
}

// GetSaleReturn returns one customer return
func (s *SaleReturnService) GetSaleReturn(ctx context.Context, returnID uuid.UUID) (*SaleReturnResponse, error) {
	ret, err := s.scope.Repos().SaleReturns().FindByID(ctx, returnID)
	if err != nil {
		return nil, err
	}
	resp := ToSaleReturnResponse(ret)
	return &resp, nil
}

// ListSaleReturns returns a page of customer returns
func (s *SaleReturnService) ListSaleReturns(ctx context.Context, filter ListFilter) ([]SaleReturnResponse, error) {
	returns, err := s.scope.Repos().SaleReturns().FindAll(ctx, filter.toDomain("created_at"))
	if err != nil {
		return nil, err
	}
	out := make([]SaleReturnResponse, 0, len(returns))
	for i := range returns {
		out = append(out, ToSaleReturnResponse(&returns[i]))
	}
	return out, nil
}
