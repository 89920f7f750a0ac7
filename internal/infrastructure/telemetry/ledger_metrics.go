package telemetry

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

// ErrMeterNil is returned when LedgerMetrics is built without a meter
var ErrMeterNil = errors.New("ledger metrics: meter cannot be nil")

var hundred = decimal.NewFromInt(100)

// LedgerSnapshot is a point-in-time view of stock and outstanding dues
type LedgerSnapshot struct {
	LowStockProducts   int64
	OutOfStockProducts int64
	CustomerDue        decimal.Decimal
	SupplierDue        decimal.Decimal
}

// SnapshotProvider reads the ledger state sampled by the gauges
type SnapshotProvider interface {
	Snapshot(ctx context.Context) (LedgerSnapshot, error)
}

// LedgerMetrics counts ledger activity. Money is recorded in minor units.
type LedgerMetrics struct {
	logger *zap.Logger

	sales            metric.Int64Counter
	salesAmount      metric.Int64Counter
	saleReturns      metric.Int64Counter
	refundAmount     metric.Int64Counter
	purchasesIn      metric.Int64Counter
	purchaseAmount   metric.Int64Counter
	purchaseReturns  metric.Int64Counter
	customerPayments metric.Int64Counter
	customerPaid     metric.Int64Counter
	supplierPayments metric.Int64Counter
	supplierPaid     metric.Int64Counter
	lowStockEvents   metric.Int64Counter

	lowStockProducts   metric.Int64Gauge
	outOfStockProducts metric.Int64Gauge
	customerDue        metric.Int64Gauge
	supplierDue        metric.Int64Gauge

	stop     chan struct{}
	stopOnce sync.Once
	runOnce  sync.Once
}

// NewLedgerMetrics registers the ledger instruments on meter
func NewLedgerMetrics(meter metric.Meter, logger *zap.Logger) (*LedgerMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	lm := &LedgerMetrics{logger: logger, stop: make(chan struct{})}

	counters := []struct {
		dst              *metric.Int64Counter
		name, desc, unit string
	}{
		{&lm.sales, "shop_sales_total", "Completed point-of-sale transactions", "{sales}"},
		{&lm.salesAmount, "shop_sales_amount_total", "Sale totals in minor currency units", "{minor}"},
		{&lm.saleReturns, "shop_sale_returns_total", "Completed sale returns", "{returns}"},
		{&lm.refundAmount, "shop_sale_refund_amount_total", "Sale return value in minor currency units", "{minor}"},
		{&lm.purchasesIn, "shop_purchase_orders_received_total", "Purchase orders received into stock", "{orders}"},
		{&lm.purchaseAmount, "shop_purchase_amount_total", "Received purchase value in minor currency units", "{minor}"},
		{&lm.purchaseReturns, "shop_purchase_returns_total", "Purchase returns applied or reversed", "{returns}"},
		{&lm.customerPayments, "shop_customer_payments_total", "Customer due payments allocated", "{payments}"},
		{&lm.customerPaid, "shop_customer_payment_amount_total", "Customer payment value applied to invoices in minor units", "{minor}"},
		{&lm.supplierPayments, "shop_supplier_payments_total", "Payments recorded against supplier bills", "{payments}"},
		{&lm.supplierPaid, "shop_supplier_payment_amount_total", "Supplier payment value in minor currency units", "{minor}"},
		{&lm.lowStockEvents, "shop_low_stock_events_total", "Stock decrements that crossed a product's minimum level", "{events}"},
	}
	for _, c := range counters {
		counter, err := meter.Int64Counter(c.name, metric.WithDescription(c.desc), metric.WithUnit(c.unit))
		if err != nil {
			return nil, fmt.Errorf("create counter %s: %w", c.name, err)
		}
		*c.dst = counter
	}

	gauges := []struct {
		dst              *metric.Int64Gauge
		name, desc, unit string
	}{
		{&lm.lowStockProducts, "shop_products_low_stock", "Products at or below their minimum stock level", "{products}"},
		{&lm.outOfStockProducts, "shop_products_out_of_stock", "Products with no stock", "{products}"},
		{&lm.customerDue, "shop_customer_due_outstanding", "Outstanding customer dues in minor currency units", "{minor}"},
		{&lm.supplierDue, "shop_supplier_due_outstanding", "Outstanding supplier bill dues in minor currency units", "{minor}"},
	}
	for _, g := range gauges {
		gauge, err := meter.Int64Gauge(g.name, metric.WithDescription(g.desc), metric.WithUnit(g.unit))
		if err != nil {
			return nil, fmt.Errorf("create gauge %s: %w", g.name, err)
		}
		*g.dst = gauge
	}
	return lm, nil
}

func minor(amount decimal.Decimal) int64 {
	return amount.Mul(hundred).Round(0).IntPart()
}

func (lm *LedgerMetrics) RecordSale(ctx context.Context, total decimal.Decimal, paymentStatus string) {
	lm.sales.Add(ctx, 1, metric.WithAttributes(AttrPaymentStatus.String(paymentStatus)))
	lm.salesAmount.Add(ctx, minor(total), metric.WithAttributes(AttrPaymentStatus.String(paymentStatus)))
}

func (lm *LedgerMetrics) RecordSaleReturn(ctx context.Context, returnType string, value decimal.Decimal) {
	lm.saleReturns.Add(ctx, 1, metric.WithAttributes(AttrReturnType.String(returnType)))
	lm.refundAmount.Add(ctx, minor(value), metric.WithAttributes(AttrReturnType.String(returnType)))
}

func (lm *LedgerMetrics) RecordPurchaseReceived(ctx context.Context, total decimal.Decimal) {
	lm.purchasesIn.Add(ctx, 1)
	lm.purchaseAmount.Add(ctx, minor(total))
}

// RecordPurchaseReturn counts a return applied to stock, or undone when reversed is true
func (lm *LedgerMetrics) RecordPurchaseReturn(ctx context.Context, reversed bool) {
	direction := "applied"
	if reversed {
		direction = "reversed"
	}
	lm.purchaseReturns.Add(ctx, 1, metric.WithAttributes(AttrDirection.String(direction)))
}

// RecordCustomerPayment counts the applied share only; an advance remainder is not revenue
func (lm *LedgerMetrics) RecordCustomerPayment(ctx context.Context, applied decimal.Decimal) {
	lm.customerPayments.Add(ctx, 1)
	lm.customerPaid.Add(ctx, minor(applied))
}

func (lm *LedgerMetrics) RecordSupplierPayment(ctx context.Context, amount decimal.Decimal) {
	lm.supplierPayments.Add(ctx, 1)
	lm.supplierPaid.Add(ctx, minor(amount))
}

func (lm *LedgerMetrics) RecordLowStock(ctx context.Context) {
	lm.lowStockEvents.Add(ctx, 1)
}

// RecordSnapshot updates the gauges from s
func (lm *LedgerMetrics) RecordSnapshot(ctx context.Context, s LedgerSnapshot) {
	lm.lowStockProducts.Record(ctx, s.LowStockProducts, metric.WithAttributes(AttrStockStatus.String("low_stock")))
	lm.outOfStockProducts.Record(ctx, s.OutOfStockProducts, metric.WithAttributes(AttrStockStatus.String("out_of_stock")))
	lm.customerDue.Record(ctx, minor(s.CustomerDue))
	lm.supplierDue.Record(ctx, minor(s.SupplierDue))
}

// StartSnapshotCollection samples provider every interval until Stop or ctx ends.
// It only starts once.
func (lm *LedgerMetrics) StartSnapshotCollection(ctx context.Context, provider SnapshotProvider, interval time.Duration) {
	lm.runOnce.Do(func() {
		if interval <= 0 {
			interval = 5 * time.Minute
		}
		go lm.collect(ctx, provider, interval)
	})
}

func (lm *LedgerMetrics) collect(ctx context.Context, provider SnapshotProvider, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	lm.sample(ctx, provider)
	for {
		select {
		case <-lm.stop:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			lm.sample(ctx, provider)
		}
	}
}

func (lm *LedgerMetrics) sample(ctx context.Context, provider SnapshotProvider) {
	s, err := provider.Snapshot(ctx)
	if err != nil {
		lm.logger.Warn("ledger snapshot failed", zap.Error(err))
		return
	}
	lm.RecordSnapshot(ctx, s)
}

// Stop ends snapshot collection
func (lm *LedgerMetrics) Stop() {
	lm.stopOnce.Do(func() { close(lm.stop) })
}
