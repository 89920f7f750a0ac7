package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	catalogapp "github.com/shopman/backend/internal/application/catalog"
	financeapp "github.com/shopman/backend/internal/application/finance"
	inventoryapp "github.com/shopman/backend/internal/application/inventory"
	partnerapp "github.com/shopman/backend/internal/application/partner"
	tradeapp "github.com/shopman/backend/internal/application/trade"
	"github.com/shopman/backend/internal/infrastructure/cache"
	"github.com/shopman/backend/internal/infrastructure/persistence"
	"github.com/shopman/backend/internal/infrastructure/persistence/models"
	"github.com/shopman/backend/internal/infrastructure/strategy/allocation"
	batchstrategy "github.com/shopman/backend/internal/infrastructure/strategy/batch"
	"github.com/shopman/backend/internal/interfaces/http/dto"
	"github.com/shopman/backend/internal/interfaces/http/middleware"
	"github.com/shopman/backend/internal/interfaces/http/router"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	middleware.SetupValidator()
}

// newTestAPI wires every handler over a private in-memory database
func newTestAPI(t *testing.T) *gin.Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file::memory:?_foreign_keys=on"), &gorm.Config{
		Logger:                 logger.Default.LogMode(logger.Silent),
		SkipDefaultTransaction: true,
		TranslateError:         true,
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.AllModels()...))

	log := zap.NewNop()
	scope := persistence.NewGormTransactionScope(db)
	repos := scope.Repos()
	ledger := inventoryapp.NewStockLedger(batchstrategy.NewFEFOFirstBatchStrategy(), log)
	bills := financeapp.NewBillLedger(30, log)
	store := cache.NewInMemoryIdempotencyStore(time.Minute)
	t.Cleanup(func() { _ = store.Close() })

	engine := gin.New()
	engine.Use(middleware.RequestID())
	r := router.NewRouter(engine, router.WithAPIMiddleware(middleware.Idempotency(store, time.Hour, log)))
	r.Register(
		NewCategoryHandler(catalogapp.NewCategoryService(repos.Categories())),
		NewProductHandler(catalogapp.NewProductService(repos.Products(), repos.Categories(), repos.Suppliers(), log)),
		NewSupplierHandler(partnerapp.NewSupplierService(repos.Suppliers())),
		NewCustomerHandler(
			partnerapp.NewCustomerService(repos.Customers(), repos.Sales(), repos.DuePayments(), log),
			financeapp.NewCreditService(scope, allocation.NewFIFOAllocationStrategy(), log),
		),
		NewInventoryHandler(inventoryapp.NewInventoryService(scope, ledger, log)),
		NewPurchaseHandler(
			tradeapp.NewPurchaseService(scope, ledger, bills, log),
			tradeapp.NewPurchaseReturnService(scope, ledger, bills, log),
		),
		NewSaleHandler(tradeapp.NewSaleService(scope, ledger, log), tradeapp.NewSaleReturnService(scope, ledger, log)),
		NewBillHandler(financeapp.NewBillService(scope, bills, log)),
	)
	r.Setup()
	return engine
}

type apiResult struct {
	Code int
	Resp dto.Response
	Data map[string]any
	List []any
}

func call(t *testing.T, engine *gin.Engine, method, path string, body any, headers ...string) apiResult {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, "/api/v1"+path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)

	res := apiResult{Code: w.Code}
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &res.Resp), w.Body.String())
	}
	switch data := res.Resp.Data.(type) {
	case map[string]any:
		res.Data = data
	case []any:
		res.List = data
	}
	return res
}

func errorCode(r apiResult) string {
	if r.Resp.Error == nil {
		return ""
	}
	return r.Resp.Error.Code
}

func TestProductEndpoints(t *testing.T) {
	api := newTestAPI(t)

	created := call(t, api, http.MethodPost, "/products", map[string]any{
		"name": "Paracetamol 500mg", "sku": "SKU-PARA-500", "cost_price": 2, "selling_price": 3,
	})
	require.Equal(t, http.StatusCreated, created.Code, created.Resp.Error)
	assert.Equal(t, "BC-PARA-500", created.Data["barcode"])
	id := created.Data["id"].(string)

	got := call(t, api, http.MethodGet, "/products/barcode/BC-PARA-500", nil)
	assert.Equal(t, http.StatusOK, got.Code)
	assert.Equal(t, id, got.Data["id"])

	list := call(t, api, http.MethodGet, "/products?search=para&page_size=5", nil)
	assert.Equal(t, http.StatusOK, list.Code)
	assert.Len(t, list.List, 1)
	require.NotNil(t, list.Resp.Meta)
	assert.Equal(t, int64(1), list.Resp.Meta.Total)

	updated := call(t, api, http.MethodPut, "/products/"+id, map[string]any{"selling_price": 1})
	assert.Equal(t, http.StatusUnprocessableEntity, updated.Code)
	assert.Equal(t, dto.ErrCodeInvalidPrice, errorCode(updated))
}

func TestProductEndpoints_Errors(t *testing.T) {
	api := newTestAPI(t)

	invalid := call(t, api, http.MethodPost, "/products", map[string]any{"name": "X"})
	assert.Equal(t, http.StatusBadRequest, invalid.Code)
	assert.Equal(t, dto.ErrCodeValidation, errorCode(invalid))
	assert.NotEmpty(t, invalid.Resp.Error.Details)
	assert.NotEmpty(t, invalid.Resp.Error.RequestID)

	missing := call(t, api, http.MethodGet, "/products/6f1c1a8e-1f0e-4b8e-9a55-000000000000", nil)
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, dto.ErrCodeNotFound, errorCode(missing))

	badID := call(t, api, http.MethodGet, "/products/not-a-uuid", nil)
	assert.Equal(t, http.StatusBadRequest, badID.Code)

	badFilter := call(t, api, http.MethodGet, "/products?category_id=nope", nil)
	assert.Equal(t, http.StatusBadRequest, badFilter.Code)
}

func TestCategoryEndpoints(t *testing.T) {
	api := newTestAPI(t)

	created := call(t, api, http.MethodPost, "/categories", map[string]any{"name": "Analgesics"})
	require.Equal(t, http.StatusCreated, created.Code)
	id := created.Data["id"].(string)

	dup := call(t, api, http.MethodPost, "/categories", map[string]any{"name": "Analgesics"})
	assert.Equal(t, http.StatusConflict, dup.Code)

	renamed := call(t, api, http.MethodPut, "/categories/"+id, map[string]any{"name": "Pain relief"})
	assert.Equal(t, http.StatusOK, renamed.Code)
	assert.Equal(t, "Pain relief", renamed.Data["name"])

	assert.Equal(t, http.StatusNoContent, call(t, api, http.MethodDelete, "/categories/"+id, nil).Code)
	assert.Empty(t, call(t, api, http.MethodGet, "/categories", nil).List)
}

// TestPurchaseToSaleFlow receives stock, sells part of it on credit and
// settles the customer's due.
func TestPurchaseToSaleFlow(t *testing.T) {
	api := newTestAPI(t)

	supplier := call(t, api, http.MethodPost, "/suppliers", map[string]any{"name": "Square Pharma", "phone": "01700000000"})
	require.Equal(t, http.StatusCreated, supplier.Code)
	product := call(t, api, http.MethodPost, "/products", map[string]any{
		"name": "Napa Extra", "sku": "SKU-NAPA", "cost_price": 5, "selling_price": 8,
	})
	require.Equal(t, http.StatusCreated, product.Code)
	productID := product.Data["id"].(string)

	order := call(t, api, http.MethodPost, "/purchase-orders", map[string]any{
		"supplier_id":   supplier.Data["id"],
		"expected_date": time.Now().AddDate(0, 0, 7).Format(time.RFC3339),
		"items": []map[string]any{
			{"product_id": productID, "quantity": 20, "unit_cost": 5, "batch_number": "LOT-1"},
		},
	})
	require.Equal(t, http.StatusCreated, order.Code, order.Resp.Error)
	orderID := order.Data["id"].(string)

	done := call(t, api, http.MethodPost, "/purchase-orders/"+orderID+"/complete", nil)
	require.Equal(t, http.StatusOK, done.Code, done.Resp.Error)
	assert.EqualValues(t, 1, done.Data["batches_created"])

	again := call(t, api, http.MethodPost, "/purchase-orders/"+orderID+"/complete", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, again.Code)

	bills := call(t, api, http.MethodGet, "/supplier-bills?supplier_id="+supplier.Data["id"].(string), nil)
	require.Equal(t, http.StatusOK, bills.Code)
	require.Len(t, bills.List, 1)

	checkout := map[string]any{
		"customer_name":  "Rahim Uddin",
		"customer_phone": "01811111111",
		"subtotal":       16,
		"total_amount":   16,
		"paid_amount":    6,
		"items":          []map[string]any{{"product_id": productID, "quantity": 2}},
	}
	sale := call(t, api, http.MethodPost, "/sales", checkout, middleware.HeaderIdempotencyKey, "till-1-0001")
	require.Equal(t, http.StatusCreated, sale.Code, sale.Resp.Error)
	assert.Equal(t, "partial", sale.Data["payment_status"])
	customerID := sale.Data["customer_id"].(string)

	replay := call(t, api, http.MethodPost, "/sales", checkout, middleware.HeaderIdempotencyKey, "till-1-0001")
	assert.Equal(t, http.StatusConflict, replay.Code)
	assert.Equal(t, dto.ErrCodeDuplicateRequest, errorCode(replay))

	stock := call(t, api, http.MethodGet, "/products/"+productID, nil)
	assert.EqualValues(t, 18, stock.Data["current_stock"])

	dues := call(t, api, http.MethodGet, "/customers/"+customerID+"/dues", nil)
	require.Equal(t, http.StatusOK, dues.Code)
	assert.Len(t, dues.Data["open_sales"], 1)

	tooMuch := call(t, api, http.MethodPost, "/customers/"+customerID+"/payments", map[string]any{"amount": 500, "payment_method": "cash"})
	assert.Equal(t, http.StatusUnprocessableEntity, tooMuch.Code)
	assert.Equal(t, dto.ErrCodePaymentExceedsDue, errorCode(tooMuch))

	paid := call(t, api, http.MethodPost, "/customers/"+customerID+"/payments", map[string]any{"amount": 10, "payment_method": "cash"})
	require.Equal(t, http.StatusCreated, paid.Code, paid.Resp.Error)
	assert.Len(t, paid.Data["allocations"], 1)

	payments := call(t, api, http.MethodGet, "/customers/"+customerID+"/payments", nil)
	require.Len(t, payments.List, 1)
	paymentID := payments.List[0].(map[string]any)["id"].(string)

	assert.Equal(t, http.StatusNoContent, call(t, api, http.MethodDelete, "/due-payments/"+paymentID, nil).Code)
	recomputed := call(t, api, http.MethodPost, "/customers/"+customerID+"/recompute-due", nil)
	require.Equal(t, http.StatusOK, recomputed.Code)
	after, err := decimal.NewFromString(recomputed.Data["after"].(string))
	require.NoError(t, err)
	assert.True(t, after.IsZero(), "deleting a receipt keeps the credits it applied")

	movements := call(t, api, http.MethodGet, "/inventory/movements?product_id="+productID, nil)
	assert.Len(t, movements.List, 2)
}

func TestSaleEndpoints_WalkInDueRejected(t *testing.T) {
	api := newTestAPI(t)
	product := call(t, api, http.MethodPost, "/products", map[string]any{
		"name": "Seclo 20", "sku": "SKU-SECLO", "cost_price": 4, "selling_price": 6,
	})
	require.Equal(t, http.StatusCreated, product.Code)

	res := call(t, api, http.MethodPost, "/sales", map[string]any{
		"total_amount": 6,
		"paid_amount":  0,
		"items":        []map[string]any{{"product_id": product.Data["id"], "quantity": 1}},
	}, middleware.HeaderIdempotencyKey, "till-2-0001")
	assert.Equal(t, http.StatusUnprocessableEntity, res.Code)

	retry := call(t, api, http.MethodPost, "/sales", map[string]any{
		"total_amount": 6,
		"paid_amount":  6,
		"items":        []map[string]any{{"product_id": product.Data["id"], "quantity": 1}},
	}, middleware.HeaderIdempotencyKey, "till-2-0001")
	assert.NotEqual(t, http.StatusConflict, retry.Code, "a failed checkout releases its key")
}

func TestInventoryEndpoints(t *testing.T) {
	api := newTestAPI(t)
	product := call(t, api, http.MethodPost, "/products", map[string]any{
		"name": "ORS Saline", "sku": "SKU-ORS", "cost_price": 1, "selling_price": 2,
	})
	require.Equal(t, http.StatusCreated, product.Code)
	productID := product.Data["id"].(string)

	added := call(t, api, http.MethodPost, "/inventory/adjustments", map[string]any{
		"product_id": productID, "adjustment_type": "add", "quantity": 12, "reason": "opening count",
	})
	require.Equal(t, http.StatusCreated, added.Code, added.Resp.Error)
	assert.EqualValues(t, 12, added.Data["stock_after"])

	noBatch := call(t, api, http.MethodPost, "/inventory/adjustments", map[string]any{
		"product_id": productID, "adjustment_type": "remove", "quantity": 1, "reason": "breakage",
	})
	assert.Equal(t, http.StatusBadRequest, noBatch.Code)

	batches := call(t, api, http.MethodGet, "/inventory/batches?product_id="+productID, nil)
	require.Len(t, batches.List, 1)
	batchID := batches.List[0].(map[string]any)["id"]

	removed := call(t, api, http.MethodPost, "/inventory/adjustments", map[string]any{
		"product_id": productID, "batch_id": batchID, "adjustment_type": "remove", "quantity": 50, "reason": "breakage",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, removed.Code)
	assert.Equal(t, dto.ErrCodeInsufficientStock, errorCode(removed))

	writeOff := call(t, api, http.MethodPost, "/inventory/batches/"+batchID.(string)+"/write-off", map[string]any{"quantity": 2, "reason": "torn sachets"})
	require.Equal(t, http.StatusCreated, writeOff.Code, writeOff.Resp.Error)
	assert.EqualValues(t, 10, writeOff.Data["stock_after"])

	report := call(t, api, http.MethodGet, "/inventory/reports/stock", nil)
	assert.Equal(t, http.StatusOK, report.Code)

	badRange := call(t, api, http.MethodGet, "/inventory/movements?from=2026-03-10&to=2026-03-01", nil)
	assert.Equal(t, dto.ErrCodeInvalidDateRange, errorCode(badRange))

	badType := call(t, api, http.MethodGet, "/inventory/movements?movement_type=teleport", nil)
	assert.Equal(t, http.StatusBadRequest, badType.Code)

	assert.Equal(t, http.StatusOK, call(t, api, http.MethodGet, "/inventory/batches?in_stock=true", nil).Code)
	assert.Equal(t, http.StatusOK, call(t, api, http.MethodGet, "/inventory/reports/expiry", nil).Code)
}

func TestBillSweepDryRun(t *testing.T) {
	api := newTestAPI(t)

	res := call(t, api, http.MethodPost, "/supplier-bills/sweep-overdue?dry_run=true", nil)
	require.Equal(t, http.StatusOK, res.Code)
	assert.Equal(t, true, res.Data["dry_run"])
	assert.EqualValues(t, 0, res.Data["changed"])
}

func TestSystemHandler(t *testing.T) {
	healthy := NewSystemHandler("shopman", "test", HealthCheck{Name: "database", Check: func(context.Context) error { return nil }})
	broken := NewSystemHandler("shopman", "test", HealthCheck{Name: "redis", Check: func(context.Context) error { return errors.New("dial tcp: refused") }})

	serve := func(h *SystemHandler, path string) *httptest.ResponseRecorder {
		engine := gin.New()
		h.RegisterRoutes(&engine.RouterGroup)
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
		return w
	}

	assert.Equal(t, http.StatusOK, serve(healthy, "/health/ready").Code)
	assert.Equal(t, http.StatusOK, serve(broken, "/health").Code)

	w := serve(broken, "/health/ready")
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "dial tcp: refused")
}
