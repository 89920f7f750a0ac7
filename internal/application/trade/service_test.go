package trade

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	appfinance "github.com/shopman/backend/internal/application/finance"
	appinventory "github.com/shopman/backend/internal/application/inventory"
	appshared "github.com/shopman/backend/internal/application/shared"
	"github.com/shopman/backend/internal/domain/catalog"
	"github.com/shopman/backend/internal/domain/finance"
	"github.com/shopman/backend/internal/domain/inventory"
	"github.com/shopman/backend/internal/domain/partner"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/domain/trade"
	"github.com/shopman/backend/internal/infrastructure/persistence"
	batchstrategy "github.com/shopman/backend/internal/infrastructure/strategy/batch"
	"github.com/shopman/backend/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type tradeFixture struct {
	scope     appshared.TransactionScope
	ledger    *appinventory.StockLedger
	purchases *PurchaseService
	returns   *PurchaseReturnService
	sales     *SaleService
	saleRets  *SaleReturnService
	now       time.Time
}

func newTradeFixture(t *testing.T) *tradeFixture {
	t.Helper()
	db := testutil.OpenMigratedSQLite(t)

	log := zap.NewNop()
	scope := persistence.NewGormTransactionScope(db)
	ledger := appinventory.NewStockLedger(batchstrategy.NewFEFOSplitBatchStrategy(), log)
	bills := appfinance.NewBillLedger(30, log)

	return &tradeFixture{
		scope:     scope,
		ledger:    ledger,
		purchases: NewPurchaseService(scope, ledger, bills, log),
		returns:   NewPurchaseReturnService(scope, ledger, bills, log),
		sales:     NewSaleService(scope, ledger, log),
		saleRets:  NewSaleReturnService(scope, ledger, log),
		now:       time.Now().UTC(),
	}
}

func (f *tradeFixture) product(t *testing.T, sku string, cost, sell int64, expiry bool) *catalog.Product {
	t.Helper()
	p, err := catalog.NewProduct("Product "+sku, sku, decimal.NewFromInt(cost), decimal.NewFromInt(sell))
	require.NoError(t, err)
	if expiry {
		require.NoError(t, p.TrackExpiry(true, 30))
	}
	require.NoError(t, f.scope.Repos().Products().Save(context.Background(), p))
	return p
}

func (f *tradeFixture) supplier(t *testing.T) *partner.Supplier {
	t.Helper()
	s, err := partner.NewSupplier("Square Pharma", "Karim", "01700000000")
	require.NoError(t, err)
	require.NoError(t, f.scope.Repos().Suppliers().Save(context.Background(), s))
	return s
}

func (f *tradeFixture) stock(t *testing.T, productID uuid.UUID) int {
	t.Helper()
	p, err := f.scope.Repos().Products().FindByID(context.Background(), productID)
	require.NoError(t, err)
	return p.CurrentStock
}

func (f *tradeFixture) days(n int) *time.Time {
	d := f.now.AddDate(0, 0, n)
	return &d
}

// receive books a two-lot purchase order: LOT-LATE (10 units) and LOT-EARLY (5 units)
func (f *tradeFixture) receive(t *testing.T, product *catalog.Product) (*PurchaseOrderResponse, *CompletePurchaseOrderResult) {
	t.Helper()
	ctx := context.Background()
	order, err := f.purchases.CreatePurchaseOrder(ctx, CreatePurchaseOrderRequest{
		SupplierID:   f.supplier(t).ID,
		ExpectedDate: *f.days(7),
		Items: []PurchaseOrderItemInput{
			{ProductID: product.ID, Quantity: 10, UnitCost: decimal.NewFromInt(5), BatchNumber: "LOT-LATE", ExpiryDate: f.days(60)},
			{ProductID: product.ID, Quantity: 5, UnitCost: decimal.NewFromInt(5), BatchNumber: "LOT-EARLY", ExpiryDate: f.days(30)},
		},
	})
	require.NoError(t, err)
	done, err := f.purchases.CompletePurchaseOrder(ctx, order.ID)
	require.NoError(t, err)
	return order, done
}

func TestCompletePurchaseOrder_CreatesLotsAndBill(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	product := f.product(t, "PARA-500", 5, 8, true)

	order, done := f.receive(t, product)

	assert.Equal(t, trade.PurchaseOrderStatusPending, order.Status)
	assert.Equal(t, 2, done.BatchesCreated)
	require.NotNil(t, done.BillID)
	assert.Contains(t, done.BillNumber, "BILL")
	assert.Equal(t, 15, f.stock(t, product.ID))

	bill, err := f.scope.Repos().SupplierBills().FindByID(ctx, *done.BillID)
	require.NoError(t, err)
	assert.True(t, bill.TotalAmount.Equal(decimal.NewFromInt(75)))
	assert.Equal(t, finance.BillStatusPending, bill.Status)

	lots, err := f.scope.Repos().Batches().FindByProduct(ctx, product.ID)
	require.NoError(t, err)
	assert.Len(t, lots, 2)

	_, err = f.purchases.CompletePurchaseOrder(ctx, order.ID)
	assert.Error(t, err, "an order is received once")
	assert.Equal(t, 15, f.stock(t, product.ID))
}

func TestCreateSale_DrawsEarliestExpiringLotsFirst(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	product := f.product(t, "PARA-500", 5, 8, true)
	f.receive(t, product)

	result, err := f.sales.CreateSale(ctx, CreateSaleRequest{
		Subtotal:    decimal.NewFromInt(56),
		TotalAmount: decimal.NewFromInt(56),
		PaidAmount:  decimal.NewFromInt(60),
		Items:       []SaleItemInput{{ProductID: product.ID, Quantity: 7}},
	})
	require.NoError(t, err)

	assert.Equal(t, trade.PaymentStatusPaid, result.PaymentStatus)
	assert.True(t, result.ChangeAmount.Equal(decimal.NewFromInt(4)))
	assert.Nil(t, result.CustomerID)
	assert.Equal(t, 8, f.stock(t, product.ID))

	sale, err := f.sales.GetSale(ctx, result.SaleID)
	require.NoError(t, err)
	require.Len(t, sale.Items, 1)
	allocations := sale.Items[0].Allocations
	require.Len(t, allocations, 2)
	assert.Equal(t, "LOT-EARLY", allocations[0].BatchNumber)
	assert.Equal(t, 5, allocations[0].Quantity)
	assert.Equal(t, "LOT-LATE", allocations[1].BatchNumber)
	assert.Equal(t, 2, allocations[1].Quantity)
	assert.True(t, sale.Items[0].UnitPrice.Equal(decimal.NewFromInt(8)), "selling price is used when none is given")

	movements, err := f.scope.Repos().Movements().Find(ctx, inventory.MovementFilter{ProductID: &product.ID})
	require.NoError(t, err)
	out := 0
	for _, m := range movements {
		if m.Type == inventory.MovementSaleOut {
			out += m.Quantity
		}
	}
	assert.Equal(t, 7, out)
}

func TestCreateSale_DueWithoutCustomerIsRejected(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	product := f.product(t, "NAPA", 5, 10, false)
	f.receive(t, product)

	_, err := f.sales.CreateSale(ctx, CreateSaleRequest{
		Subtotal:    decimal.NewFromInt(20),
		TotalAmount: decimal.NewFromInt(20),
		PaidAmount:  decimal.NewFromInt(5),
		Items:       []SaleItemInput{{ProductID: product.ID, Quantity: 2}},
	})
	require.Error(t, err)
	assert.True(t, shared.IsDomainError(err, shared.CodeCustomerRequired))
	assert.Equal(t, 15, f.stock(t, product.ID), "rejected sale leaves stock untouched")
}

func TestCreateSale_RegistersCustomerByPhoneAndTracksDue(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	product := f.product(t, "NAPA", 5, 10, false)
	f.receive(t, product)

	result, err := f.sales.CreateSale(ctx, CreateSaleRequest{
		CustomerName:  "Rahim Uddin",
		CustomerPhone: "01711000000",
		Subtotal:      decimal.NewFromInt(30),
		TotalAmount:   decimal.NewFromInt(30),
		PaidAmount:    decimal.NewFromInt(10),
		Items:         []SaleItemInput{{ProductID: product.ID, Quantity: 3}},
	})
	require.NoError(t, err)
	require.NotNil(t, result.CustomerID)
	assert.Equal(t, trade.PaymentStatusPartial, result.PaymentStatus)
	assert.False(t, result.CreditAlert)

	customer, err := f.scope.Repos().Customers().FindByPhone(ctx, "01711000000")
	require.NoError(t, err)
	assert.Equal(t, *result.CustomerID, customer.ID)
	assert.True(t, customer.TotalDue.Equal(decimal.NewFromInt(20)))

	// the same phone finds the registered customer again
	second, err := f.sales.CreateSale(ctx, CreateSaleRequest{
		CustomerPhone: "01711000000",
		Subtotal:      decimal.NewFromInt(10),
		TotalAmount:   decimal.NewFromInt(10),
		Items:         []SaleItemInput{{ProductID: product.ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.Equal(t, customer.ID, *second.CustomerID)

	customer, err = f.scope.Repos().Customers().FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, customer.TotalDue.Equal(decimal.NewFromInt(30)))
}

func TestCreateSale_InsufficientStock(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	product := f.product(t, "NAPA", 5, 10, false)
	f.receive(t, product)

	_, err := f.sales.CreateSale(ctx, CreateSaleRequest{
		Subtotal:    decimal.NewFromInt(160),
		TotalAmount: decimal.NewFromInt(160),
		PaidAmount:  decimal.NewFromInt(160),
		Items:       []SaleItemInput{{ProductID: product.ID, Quantity: 16}},
	})
	require.Error(t, err)
	assert.True(t, shared.IsDomainError(err, shared.CodeInsufficientStock))
	assert.Equal(t, 15, f.stock(t, product.ID))
}

func TestCreateSale_RejectsEmptyCartAndZeroTotal(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()

	_, err := f.sales.CreateSale(ctx, CreateSaleRequest{TotalAmount: decimal.NewFromInt(10)})
	assert.True(t, shared.IsDomainError(err, shared.CodeInvalidInput))

	_, err = f.sales.CreateSale(ctx, CreateSaleRequest{
		Items: []SaleItemInput{{ProductID: uuid.New(), Quantity: 1}},
	})
	assert.True(t, shared.IsDomainError(err, shared.CodeInvalidInput))
}

func TestCreateSale_InvoiceNumbersAreSequentialPerDay(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	product := f.product(t, "NAPA", 5, 10, false)
	f.receive(t, product)

	req := CreateSaleRequest{
		Subtotal:    decimal.NewFromInt(10),
		TotalAmount: decimal.NewFromInt(10),
		PaidAmount:  decimal.NewFromInt(10),
		Items:       []SaleItemInput{{ProductID: product.ID, Quantity: 1}},
	}
	first, err := f.sales.CreateSale(ctx, req)
	require.NoError(t, err)
	second, err := f.sales.CreateSale(ctx, req)
	require.NoError(t, err)

	prefix := shared.DateOf(f.ledger.Now()).Format("060102")
	assert.Equal(t, prefix+"001", first.InvoiceNumber)
	assert.Equal(t, prefix+"002", second.InvoiceNumber)
}

func TestSaleReturn_RefundRestoresLotAndBooksReturn(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	product := f.product(t, "PARA-500", 5, 8, true)
	f.receive(t, product)

	sold, err := f.sales.CreateSale(ctx, CreateSaleRequest{
		Subtotal:    decimal.NewFromInt(56),
		TotalAmount: decimal.NewFromInt(56),
		PaidAmount:  decimal.NewFromInt(56),
		Items:       []SaleItemInput{{ProductID: product.ID, Quantity: 7}},
	})
	require.NoError(t, err)
	sale, err := f.sales.GetSale(ctx, sold.SaleID)
	require.NoError(t, err)
	line := sale.Items[0]

	ret, err := f.saleRets.CreateSaleReturn(ctx, CreateSaleReturnRequest{
		SaleID:     sale.ID,
		ReturnType: string(trade.SaleReturnTypeMoney),
		Reason:     string(trade.SaleReturnReasonDefective),
		Items:      []SaleReturnItemInput{{SaleItemID: line.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	assert.Equal(t, trade.SaleReturnStatusPending, ret.Status)
	assert.True(t, ret.RefundAmount.Equal(decimal.NewFromInt(16)))

	_, err = f.saleRets.CreateSaleReturn(ctx, CreateSaleReturnRequest{
		SaleID:     sale.ID,
		ReturnType: string(trade.SaleReturnTypeMoney),
		Reason:     string(trade.SaleReturnReasonOther),
		Items:      []SaleReturnItemInput{{SaleItemID: line.ID, Quantity: 6}},
	})
	assert.True(t, shared.IsDomainError(err, shared.CodeReturnExceedsSold), "pending claims count against the sold quantity")

	_, err = f.saleRets.ProcessSaleReturn(ctx, ret.ID, ProcessSaleReturnRequest{Action: string(trade.SaleReturnActionApprove)})
	require.NoError(t, err)
	done, err := f.saleRets.ProcessSaleReturn(ctx, ret.ID, ProcessSaleReturnRequest{Action: string(trade.SaleReturnActionComplete), Notes: "refunded in cash"})
	require.NoError(t, err)
	assert.Equal(t, trade.SaleReturnStatusCompleted, done.Status)
	assert.NotNil(t, done.ProcessedAt)

	assert.Equal(t, 10, f.stock(t, product.ID))
	early, err := f.scope.Repos().Batches().FindByNumber(ctx, product.ID, "LOT-EARLY")
	require.NoError(t, err)
	assert.Equal(t, 2, early.CurrentQuantity, "units go back to the lot they came from")

	sale, err = f.sales.GetSale(ctx, sold.SaleID)
	require.NoError(t, err)
	assert.True(t, sale.ReturnedAmount.Equal(decimal.NewFromInt(16)))
	assert.Equal(t, 2, sale.Items[0].ReturnedQuantity)
	assert.Equal(t, 5, sale.Items[0].NetQuantity)

	_, err = f.saleRets.ProcessSaleReturn(ctx, ret.ID, ProcessSaleReturnRequest{Action: string(trade.SaleReturnActionReject)})
	assert.Error(t, err, "a completed return is final")
}

func TestSaleReturn_ExchangeIssuesReplacement(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	product := f.product(t, "NAPA", 5, 10, false)
	replacement := f.product(t, "NAPA-EXTRA", 6, 12, false)
	f.receive(t, product)
	f.receive(t, replacement)

	sold, err := f.sales.CreateSale(ctx, CreateSaleRequest{
		Subtotal:    decimal.NewFromInt(20),
		TotalAmount: decimal.NewFromInt(20),
		PaidAmount:  decimal.NewFromInt(20),
		Items:       []SaleItemInput{{ProductID: product.ID, Quantity: 2}},
	})
	require.NoError(t, err)
	sale, err := f.sales.GetSale(ctx, sold.SaleID)
	require.NoError(t, err)

	ret, err := f.saleRets.CreateSaleReturn(ctx, CreateSaleReturnRequest{
		SaleID:            sale.ID,
		ReturnType:        string(trade.SaleReturnTypeProduct),
		Reason:            string(trade.SaleReturnReasonWrongItem),
		ExchangeProductID: &replacement.ID,
		ExchangeQuantity:  1,
		Items:             []SaleReturnItemInput{{SaleItemID: sale.Items[0].ID, Quantity: 1}},
	})
	require.NoError(t, err)
	assert.True(t, ret.ExchangeValue.Equal(decimal.NewFromInt(12)))
	assert.True(t, ret.BalanceAmount.Equal(decimal.NewFromInt(-2)), "the replacement is worth more than the returned unit")

	_, err = f.saleRets.ProcessSaleReturn(ctx, ret.ID, ProcessSaleReturnRequest{Action: string(trade.SaleReturnActionComplete)})
	require.NoError(t, err)

	assert.Equal(t, 14, f.stock(t, product.ID))
	assert.Equal(t, 14, f.stock(t, replacement.ID))

	sale, err = f.sales.GetSale(ctx, sold.SaleID)
	require.NoError(t, err)
	assert.True(t, sale.ReturnedAmount.IsZero(), "exchanges do not refund")
}

func TestPurchaseReturn_CompleteThenReverse(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	product := f.product(t, "PARA-500", 5, 8, true)
	order, done := f.receive(t, product)

	lateItem := order.Items[0]
	lots, err := f.scope.Repos().Batches().FindByPurchaseOrderItem(ctx, lateItem.ID)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	lotID := lots[0].ID

	ret, err := f.returns.CreatePurchaseReturn(ctx, CreatePurchaseReturnRequest{
		PurchaseOrderID: order.ID,
		Reason:          string(trade.PurchaseReturnReasonDamaged),
		Items: []PurchaseReturnItemInput{
			{PurchaseOrderItemID: lateItem.ID, BatchID: &lotID, Quantity: 3, UnitCost: decimal.NewFromInt(5)},
		},
	})
	require.NoError(t, err)
	assert.True(t, ret.ReturnAmount.Equal(decimal.NewFromInt(15)))

	completed, err := f.returns.UpdateReturnStatus(ctx, ret.ID, UpdateReturnStatusRequest{Status: string(trade.PurchaseReturnStatusCompleted)})
	require.NoError(t, err)
	assert.NotNil(t, completed.CompletedAt)
	assert.Equal(t, 12, f.stock(t, product.ID))

	bill, err := f.scope.Repos().SupplierBills().FindByID(ctx, *done.BillID)
	require.NoError(t, err)
	assert.Equal(t, finance.BillStatusPartiallyReturned, bill.Status)
	assert.True(t, bill.ReturnedAmount.Equal(decimal.NewFromInt(15)))

	po, err := f.purchases.GetPurchaseOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.PurchaseOrderStatusReturned, po.Status)
	assert.True(t, po.NetAmount.Equal(decimal.NewFromInt(60)))

	_, err = f.returns.UpdateReturnStatus(ctx, ret.ID, UpdateReturnStatusRequest{Status: string(trade.PurchaseReturnStatusCompleted)})
	assert.True(t, shared.IsDomainError(err, shared.CodeInvalidTransition))

	_, err = f.returns.UpdateReturnStatus(ctx, ret.ID, UpdateReturnStatusRequest{Status: string(trade.PurchaseReturnStatusPending), Notes: "supplier refused"})
	require.NoError(t, err)
	assert.Equal(t, 15, f.stock(t, product.ID))

	bill, err = f.scope.Repos().SupplierBills().FindByID(ctx, *done.BillID)
	require.NoError(t, err)
	assert.Equal(t, finance.BillStatusPending, bill.Status)
	assert.True(t, bill.DueAmount.Equal(decimal.NewFromInt(75)))

	po, err = f.purchases.GetPurchaseOrder(ctx, order.ID)
	require.NoError(t, err)
	assert.Equal(t, trade.PurchaseOrderStatusCompleted, po.Status)
}

func TestPurchaseReturn_WholeLotIsRemovedAndRestored(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	product := f.product(t, "PARA-500", 5, 8, true)
	order, _ := f.receive(t, product)

	earlyItem := order.Items[1]
	lot, err := f.scope.Repos().Batches().FindByNumber(ctx, product.ID, "LOT-EARLY")
	require.NoError(t, err)
	lotID := lot.ID

	ret, err := f.returns.CreatePurchaseReturn(ctx, CreatePurchaseReturnRequest{
		PurchaseOrderID: order.ID,
		Reason:          string(trade.PurchaseReturnReasonExpired),
		Items: []PurchaseReturnItemInput{
			{PurchaseOrderItemID: earlyItem.ID, BatchID: &lotID, Quantity: 5, UnitCost: decimal.NewFromInt(5)},
		},
	})
	require.NoError(t, err)

	_, err = f.returns.UpdateReturnStatus(ctx, ret.ID, UpdateReturnStatusRequest{Status: string(trade.PurchaseReturnStatusCompleted)})
	require.NoError(t, err)
	assert.Equal(t, 10, f.stock(t, product.ID))
	_, err = f.scope.Repos().Batches().FindByID(ctx, lotID)
	assert.ErrorIs(t, err, shared.ErrNotFound)

	reversed, err := f.returns.UpdateReturnStatus(ctx, ret.ID, UpdateReturnStatusRequest{Status: string(trade.PurchaseReturnStatusPending)})
	require.NoError(t, err)
	assert.Equal(t, 15, f.stock(t, product.ID))

	lots, err := f.scope.Repos().Batches().FindByPurchaseOrderItem(ctx, earlyItem.ID)
	require.NoError(t, err)
	require.Len(t, lots, 1)
	restored := lots[0]
	assert.True(t, strings.HasPrefix(restored.BatchNumber, "RESTORED-"), restored.BatchNumber)
	assert.NotEqual(t, lotID, restored.ID)
	assert.Equal(t, 5, restored.Quantity)
	assert.Equal(t, 5, restored.CurrentQuantity)
	require.NotNil(t, restored.PurchaseOrderItemID)
	assert.Equal(t, earlyItem.ID, *restored.PurchaseOrderItemID)

	require.Len(t, reversed.Items, 1)
	require.NotNil(t, reversed.Items[0].BatchID)
	assert.Equal(t, restored.ID, *reversed.Items[0].BatchID)

	stored, err := f.scope.Repos().PurchaseReturns().FindByID(ctx, ret.ID)
	require.NoError(t, err)
	require.Len(t, stored.Items, 1)
	require.NotNil(t, stored.Items[0].BatchID)
	assert.Equal(t, restored.ID, *stored.Items[0].BatchID)
}

func TestPurchaseReturn_CannotExceedReceivedQuantity(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	product := f.product(t, "NAPA", 5, 10, false)
	order, _ := f.receive(t, product)

	_, err := f.returns.CreatePurchaseReturn(ctx, CreatePurchaseReturnRequest{
		PurchaseOrderID: order.ID,
		Reason:          string(trade.PurchaseReturnReasonExcessQuantity),
		Items: []PurchaseReturnItemInput{
			{PurchaseOrderItemID: order.Items[1].ID, Quantity: 6, UnitCost: decimal.NewFromInt(5)},
		},
	})
	assert.Error(t, err)
}

func TestCancelPurchaseOrder_OnlyWhilePending(t *testing.T) {
	f := newTradeFixture(t)
	ctx := context.Background()
	product := f.product(t, "NAPA", 5, 10, false)
	order, _ := f.receive(t, product)

	_, err := f.purchases.CancelPurchaseOrder(ctx, order.ID, "duplicate order")
	assert.Error(t, err)

	pending, err := f.purchases.CreatePurchaseOrder(ctx, CreatePurchaseOrderRequest{
		SupplierID:   order.SupplierID,
		ExpectedDate: *f.days(3),
		Items:        []PurchaseOrderItemInput{{ProductID: product.ID, Quantity: 1, UnitCost: decimal.NewFromInt(5)}},
	})
	require.NoError(t, err)
	cancelled, err := f.purchases.CancelPurchaseOrder(ctx, pending.ID, "duplicate order")
	require.NoError(t, err)
	assert.Equal(t, trade.PurchaseOrderStatusCancelled, cancelled.Status)

	_, err = f.purchases.CompletePurchaseOrder(ctx, pending.ID)
	assert.True(t, shared.IsDomainError(err, shared.CodeInvalidState))
}
