package event

import (
	"context"

	"github.com/shopman/backend/internal/domain/catalog"
	"github.com/shopman/backend/internal/domain/finance"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/domain/trade"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// LedgerRecorder receives ledger activity for metrics
type LedgerRecorder interface {
	RecordSale(ctx context.Context, total decimal.Decimal, paymentStatus string)
	RecordSaleReturn(ctx context.Context, returnType string, value decimal.Decimal)
	RecordPurchaseReceived(ctx context.Context, total decimal.Decimal)
	RecordPurchaseReturn(ctx context.Context, reversed bool)
	RecordCustomerPayment(ctx context.Context, applied decimal.Decimal)
	RecordSupplierPayment(ctx context.Context, amount decimal.Decimal)
	RecordLowStock(ctx context.Context)
}

// MetricsSubscriber turns committed ledger events into metric updates
type MetricsSubscriber struct {
	recorder LedgerRecorder
}

func NewMetricsSubscriber(recorder LedgerRecorder) *MetricsSubscriber {
	return &MetricsSubscriber{recorder: recorder}
}

func (s *MetricsSubscriber) EventTypes() []string {
	return []string{
		trade.EventTypeSaleCreated,
		trade.EventTypeSaleReturnCompleted,
		trade.EventTypePurchaseOrderCompleted,
		trade.EventTypePurchaseReturnCompleted,
		trade.EventTypePurchaseReturnReversed,
		finance.EventTypeDuePaymentAllocated,
		finance.EventTypeSupplierPaymentApplied,
		catalog.EventTypeLowStockDetected,
	}
}

func (s *MetricsSubscriber) Handle(ctx context.Context, ev shared.DomainEvent) error {
	switch e := ev.(type) {
	case *trade.SaleCreatedEvent:
		s.recorder.RecordSale(ctx, e.TotalAmount, string(e.PaymentStatus))
	case *trade.SaleReturnCompletedEvent:
		s.recorder.RecordSaleReturn(ctx, string(e.ReturnType), e.RefundAmount)
	case *trade.PurchaseOrderCompletedEvent:
		s.recorder.RecordPurchaseReceived(ctx, e.TotalAmount)
	case *trade.PurchaseReturnCompletedEvent:
		s.recorder.RecordPurchaseReturn(ctx, false)
	case *trade.PurchaseReturnReversedEvent:
		s.recorder.RecordPurchaseReturn(ctx, true)
	case *finance.DuePaymentAllocatedEvent:
		s.recorder.RecordCustomerPayment(ctx, e.Applied)
	case *finance.SupplierPaymentAppliedEvent:
		s.recorder.RecordSupplierPayment(ctx, e.Amount)
	case *catalog.LowStockDetectedEvent:
		s.recorder.RecordLowStock(ctx)
	}
	return nil
}

// LowStockWarner logs a warning whenever a sale or write-off drops a product
// to or below its minimum stock level.
type LowStockWarner struct {
	logger *zap.Logger
}

func NewLowStockWarner(logger *zap.Logger) *LowStockWarner {
	return &LowStockWarner{logger: logger}
}

func (w *LowStockWarner) EventTypes() []string {
	return []string{catalog.EventTypeLowStockDetected}
}

func (w *LowStockWarner) Handle(_ context.Context, ev shared.DomainEvent) error {
	e, ok := ev.(*catalog.LowStockDetectedEvent)
	if !ok {
		return nil
	}
	w.logger.Warn("product stock at or below minimum level",
		zap.String("product_id", e.ProductID.String()),
		zap.String("sku", e.SKU),
		zap.String("name", e.Name),
		zap.Int("current_stock", e.CurrentStock),
		zap.Int("min_stock_level", e.MinStockLevel),
	)
	return nil
}
