package trade

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	appfinance "github.com/shopman/backend/internal/application/finance"
	appinventory "github.com/shopman/backend/internal/application/inventory"
	appshared "github.com/shopman/backend/internal/application/shared"
	"github.com/shopman/backend/internal/domain/partner"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/domain/trade"
	"github.com/shopman/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// SaleService runs point-of-sale checkout
type SaleService struct {
	scope          appshared.TransactionScope
	ledger         *appinventory.StockLedger
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewSaleService creates a new SaleService
func NewSaleService(scope appshared.TransactionScope, ledger *appinventory.StockLedger, logger *zap.Logger) *SaleService {
	return &SaleService{scope: scope, ledger: ledger, logger: logger}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *SaleService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateSale records a checkout in one transaction: invoice number, lines,
// stock drawn from lots, and the customer's due refreshed. A sale that
// leaves money owed needs a registered customer.
func (s *SaleService) CreateSale(ctx context.Context, req CreateSaleRequest) (*CreateSaleResult, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "sale", "create")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrAmount, req.TotalAmount.String(),
		telemetry.SpanAttrQuantity, len(req.Items),
	)

	if len(req.Items) == 0 {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Sale must contain at least one item")
	}
	if !req.TotalAmount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Sale total must be greater than zero")
	}

	var (
		sale        *trade.Sale
		creditAlert bool
		events      appshared.EventCollector
	)
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		now := s.ledger.Now()
		number, err := appshared.NextDocumentNumber(ctx, repos, shared.SeqInvoice, now)
		if err != nil {
			return err
		}
		sale, err = trade.NewSale(number, now, trade.SaleTotals{
			Subtotal:           req.Subtotal,
			TaxAmount:          req.TaxAmount,
			DiscountAmount:     req.DiscountAmount,
			TotalAmount:        req.TotalAmount,
			TaxPercentage:      req.TaxPercentage,
			DiscountPercentage: req.DiscountPercentage,
		}, req.PaidAmount)
		if err != nil {
			return err
		}
		sale.Notes = req.Notes
		sale.SetBuyer(req.CustomerName, req.CustomerPhone)

		customer, err := s.resolveCustomer(ctx, repos, req)
		if err != nil {
			return err
		}
		if customer != nil {
			sale.AttachCustomer(customer.ID, customer.Name, customer.Phone)
		}
		if sale.RequiresCustomer() && sale.CustomerID == nil {
			return shared.NewDomainError(shared.CodeCustomerRequired,
				"Due sales are only allowed for registered customers. Please register customer first.")
		}

		for _, line := range req.Items {
			product, err := repos.Products().FindByID(ctx, line.ProductID)
			if err != nil {
				return err
			}
			unitPrice := product.SellingPrice
			if line.UnitPrice != nil {
				unitPrice = *line.UnitPrice
			}
			item, err := sale.AddItem(product.ID, product.Name, line.Quantity, unitPrice, product.CostPrice)
			if err != nil {
				return err
			}
			issued, err := s.ledger.Issue(ctx, repos, product.ID, line.Quantity, sale.InvoiceNumber)
			if err != nil {
				return err
			}
			item.AssignBatches(issued.Allocations)
			events.Collect(issued.Product)
		}

		sale.AddDomainEvent(trade.NewSaleCreatedEvent(sale))
		if err := repos.Sales().Save(ctx, sale); err != nil {
			return fmt.Errorf("save sale: %w", err)
		}
		if sale.CustomerID != nil {
			linked, err := appfinance.RefreshCustomerDue(ctx, repos, *sale.CustomerID)
			if err != nil {
				return err
			}
			creditAlert = !linked.CanMakeCreditSale()
		}
		events.Collect(sale)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("sale rejected",
			zap.String("total_amount", req.TotalAmount.String()),
			zap.String("paid_amount", req.PaidAmount.String()),
			zap.Int("items", len(req.Items)),
			zap.Error(err))
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)

	telemetry.SetAttributes(span,
		telemetry.SpanAttrSaleID, sale.ID.String(),
		telemetry.SpanAttrInvoiceNumber, sale.InvoiceNumber,
	)
	s.logger.Info("sale created",
		zap.String("invoice_number", sale.InvoiceNumber),
		zap.String("total_amount", sale.TotalAmount.String()),
		zap.String("payment_status", string(sale.PaymentStatus)),
		zap.Bool("credit_alert", creditAlert))
	if creditAlert {
		s.logger.Warn("customer is over the credit limit",
			zap.String("customer_id", sale.CustomerID.String()),
			zap.String("invoice_number", sale.InvoiceNumber))
	}

	return &CreateSaleResult{
		SaleID:        sale.ID,
		InvoiceNumber: sale.InvoiceNumber,
		PaymentStatus: sale.PaymentStatus,
		ChangeAmount:  sale.ChangeAmount,
		CustomerID:    sale.CustomerID,
		CreditAlert:   creditAlert,
	}, nil
}

// resolveCustomer finds the buyer: by id first, then by phone. An unknown
// phone with a real name registers a new customer.
func (s *SaleService) resolveCustomer(ctx context.Context, repos appshared.Repositories, req CreateSaleRequest) (*partner.Customer, error) {
	if req.CustomerID != nil {
		customer, err := repos.Customers().FindByID(ctx, *req.CustomerID)
		if err == nil {
			return customer, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
		s.logger.Warn("sale names an unknown customer", zap.String("customer_id", req.CustomerID.String()))
	}
	if req.CustomerPhone == "" {
		return nil, nil
	}
	customer, err := repos.Customers().FindByPhone(ctx, req.CustomerPhone)
	if err == nil {
		return customer, nil
	}
	if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	if !partner.IsRegistrableName(req.CustomerName) {
		return nil, nil
	}
	customer, err = partner.NewCustomer(req.CustomerName, req.CustomerPhone)
	if err != nil {
		return nil, err
	}
	if err := repos.Customers().Save(ctx, customer); err != nil {
		return nil, fmt.Errorf("register customer: %w", err)
	}
	s.logger.Info("customer registered at checkout",
		zap.String("customer_id", customer.ID.String()),
		zap.String("phone", customer.Phone))
	return customer, nil
}

// GetSale returns one sale with its lines
func (s *SaleService) GetSale(ctx context.Context, saleID uuid.UUID) (*SaleResponse, error) {
	sale, err := s.scope.Repos().Sales().FindByID(ctx, saleID)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// GetSaleByInvoice looks a sale up by its invoice number
func (s *SaleService) GetSaleByInvoice(ctx context.Context, invoiceNumber string) (*SaleResponse, error) {
	sale, err := s.scope.Repos().Sales().FindByInvoiceNumber(ctx, invoiceNumber)
	if err != nil {
		return nil, err
	}
	resp := ToSaleResponse(sale)
	return &resp, nil
}

// ListSales returns a page of sales, newest first
func (s *SaleService) ListSales(ctx context.Context, filter ListFilter) ([]SaleResponse, error) {
	sales, err := s.scope.Repos().Sales().FindAll(ctx, filter.toDomain("sale_date"))
	if err != nil {
		return nil, err
	}
	out := make([]SaleResponse, 0, len(sales))
	for i := range sales {
		out = append(out, ToSaleResponse(&sales[i]))
	}
	return out, nil
}

// DailySummary totals the sales of one day
type DailySummary struct {
	Sales          int             `json:"sales"`
	Revenue        decimal.Decimal `json:"revenue"`
	Collected      decimal.Decimal `json:"collected"`
	Outstanding    decimal.Decimal `json:"outstanding"`
	ReturnedAmount decimal.Decimal `json:"returned_amount"`
	Profit         decimal.Decimal `json:"profit"`
}

// SummarizeDay aggregates the sales made on the day of the ledger clock
func (s *SaleService) SummarizeDay(ctx context.Context) (*DailySummary, error) {
	day := shared.DateOf(s.ledger.Now())
	sales, err := s.scope.Repos().Sales().FindBetween(ctx, day, day.AddDate(0, 0, 1))
	if err != nil {
		return nil, err
	}
	summary := &DailySummary{
		Revenue:        decimal.Zero,
		Collected:      decimal.Zero,
		Outstanding:    decimal.Zero,
		ReturnedAmount: decimal.Zero,
		Profit:         decimal.Zero,
	}
	for i := range sales {
		sale := &sales[i]
		summary.Sales++
		summary.Revenue = summary.Revenue.Add(sale.TotalAmount)
		summary.Collected = summary.Collected.Add(decimal.Min(sale.PaidAmount, sale.TotalAmount))
		summary.Outstanding = summary.Outstanding.Add(sale.RemainingDue())
		summary.ReturnedAmount = summary.ReturnedAmount.Add(sale.ReturnedAmount)
		summary.Profit = summary.Profit.Add(sale.NetProfit())
	}
	return summary, nil
}
