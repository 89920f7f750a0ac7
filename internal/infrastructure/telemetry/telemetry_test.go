package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopman/backend/internal/infrastructure/config"
	"github.com/shopman/backend/internal/infrastructure/persistence/models"
	"github.com/shopman/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func setupTestTracer(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	original := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		_ = tp.Shutdown(context.Background())
	})
	return sr
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))
	return db
}

func TestProviders_Disabled(t *testing.T) {
	ctx := context.Background()
	cfg := config.TelemetryConfig{Enabled: false, ServiceName: "shopman-test"}

	tp, err := telemetry.NewTracerProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.Shutdown(ctx))

	mp, err := telemetry.NewMeterProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestProviders_EnabledWithoutCollector(t *testing.T) {
	ctx := context.Background()
	original := otel.GetTracerProvider()
	originalMeter := otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(original)
		otel.SetMeterProvider(originalMeter)
	})

	// gRPC exporters dial lazily, so construction succeeds without a collector
	cfg := config.TelemetryConfig{Enabled: true, CollectorEndpoint: "127.0.0.1:4317", Insecure: true, SamplingRatio: 0.5, ServiceName: "shopman-test"}
	tp, err := telemetry.NewTracerProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, tp.IsEnabled())

	mp, err := telemetry.NewMeterProvider(ctx, cfg, zap.NewNop())
	require.NoError(t, err)
	assert.True(t, mp.IsEnabled())

	shutdownCtx, cancel := context.WithTimeout(ctx, 100*time.Millisecond)
	defer cancel()
	_ = tp.Shutdown(shutdownCtx)
	_ = mp.Shutdown(shutdownCtx)
}

func TestStartServiceSpan(t *testing.T) {
	sr := setupTestTracer(t)

	_, span := telemetry.StartServiceSpan(context.Background(), "sale", "create")
	telemetry.SetAttributes(span,
		telemetry.SpanAttrInvoiceNumber, "260318001",
		telemetry.SpanAttrQuantity, 3,
		42, "non-string key is skipped",
		"dangling",
	)
	telemetry.RecordError(span, errors.New("insufficient stock"))
	telemetry.RecordError(span, nil)
	span.End()

	spans := sr.Ended()
	require.Len(t, spans, 1)
	got := spans[0]
	assert.Equal(t, "sale.create", got.Name())
	assert.Equal(t, codes.Error, got.Status().Code)
	assert.Len(t, got.Attributes(), 2)
	require.Len(t, got.Events(), 1)
	assert.Equal(t, "exception", got.Events()[0].Name)
}

func collectSums(t *testing.T, reader *sdkmetric.ManualReader) map[string]int64 {
	t.Helper()
	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	out := map[string]int64{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			switch data := m.Data.(type) {
			case metricdata.Sum[int64]:
				for _, dp := range data.DataPoints {
					out[m.Name] += dp.Value
				}
			case metricdata.Gauge[int64]:
				for _, dp := range data.DataPoints {
					out[m.Name] = dp.Value
				}
			}
		}
	}
	return out
}

func TestLedgerMetrics_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	lm, err := telemetry.NewLedgerMetrics(provider.Meter("ledger"), nil)
	require.NoError(t, err)
	ctx := context.Background()

	lm.RecordSale(ctx, decimal.RequireFromString("120.50"), "paid")
	lm.RecordSale(ctx, decimal.NewFromInt(30), "due")
	lm.RecordSaleReturn(ctx, "refund", decimal.NewFromInt(16))
	lm.RecordPurchaseReceived(ctx, decimal.NewFromInt(75))
	lm.RecordPurchaseReturn(ctx, false)
	lm.RecordPurchaseReturn(ctx, true)
	lm.RecordCustomerPayment(ctx, decimal.NewFromInt(130))
	lm.RecordSupplierPayment(ctx, decimal.NewFromInt(25))
	lm.RecordLowStock(ctx)

	sums := collectSums(t, reader)
	assert.Equal(t, int64(2), sums["shop_sales_total"])
	assert.Equal(t, int64(15050), sums["shop_sales_amount_total"])
	assert.Equal(t, int64(1600), sums["shop_sale_refund_amount_total"])
	assert.Equal(t, int64(7500), sums["shop_purchase_amount_total"])
	assert.Equal(t, int64(2), sums["shop_purchase_returns_total"])
	assert.Equal(t, int64(13000), sums["shop_customer_payment_amount_total"])
	assert.Equal(t, int64(2500), sums["shop_supplier_payment_amount_total"])
	assert.Equal(t, int64(1), sums["shop_low_stock_events_total"])
}

func TestNewLedgerMetrics_NilMeter(t *testing.T) {
	_, err := telemetry.NewLedgerMetrics(nil, zap.NewNop())
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
}

func TestGormSnapshotProvider(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()

	product := func(sku string, stock, min int) *models.ProductModel {
		p := &models.ProductModel{
			Name: sku, SKU: sku, Barcode: "BC-" + sku,
			CostPrice: decimal.NewFromInt(5), SellingPrice: decimal.NewFromInt(8),
			CurrentStock: stock, MinStockLevel: min, IsActive: true,
		}
		p.ID, p.CreatedAt, p.UpdatedAt, p.Version = uuid.New(), now, now, 1
		return p
	}
	require.NoError(t, db.Create(product("LOW", 3, 10)).Error)
	require.NoError(t, db.Create(product("OUT", 0, 10)).Error)
	require.NoError(t, db.Create(product("OK", 50, 10)).Error)

	customer := &models.CustomerModel{Name: "Rahim", Phone: "01711000000", TotalDue: decimal.NewFromInt(60)}
	customer.ID, customer.CreatedAt, customer.UpdatedAt = uuid.New(), now, now
	require.NoError(t, db.Create(customer).Error)

	snap, err := telemetry.NewGormSnapshotProvider(db).Snapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), snap.LowStockProducts)
	assert.Equal(t, int64(1), snap.OutOfStockProducts)
	assert.True(t, snap.CustomerDue.Equal(decimal.NewFromInt(60)), snap.CustomerDue.String())
	assert.True(t, snap.SupplierDue.IsZero())
}

func TestRegisterDBTracing(t *testing.T) {
	sr := setupTestTracer(t)
	db := openTestDB(t)

	require.NoError(t, telemetry.RegisterDBTracing(db, telemetry.DBTracingConfig{Enabled: false}, zap.NewNop()))
	require.NoError(t, telemetry.RegisterDBTracing(db, telemetry.DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: time.Nanosecond,
		DBSystem:        "sqlite",
	}, zap.NewNop()))

	var count int64
	require.NoError(t, db.WithContext(context.Background()).Table("products").Count(&count).Error)

	spans := sr.Ended()
	require.NotEmpty(t, spans)
	var slow bool
	for _, s := range spans {
		for _, ev := range s.Events() {
			if ev.Name == "slow_query" {
				slow = true
			}
		}
	}
	assert.True(t, slow, "every query exceeds a one nanosecond threshold")
}
