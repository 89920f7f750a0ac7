package finance

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	appshared "github.com/shopman/backend/internal/application/shared"
	"github.com/shopman/backend/internal/domain/finance"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/domain/shared/strategy"
	"github.com/shopman/backend/internal/domain/trade"
	"github.com/shopman/backend/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CreditService runs the customer credit ledger: FIFO allocation of
// payments over open sales and due recomputation.
type CreditService struct {
	scope          appshared.TransactionScope
	allocator      strategy.PaymentAllocationStrategy
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
	now            func() time.Time
}

// NewCreditService creates a new CreditService
func NewCreditService(scope appshared.TransactionScope, allocator strategy.PaymentAllocationStrategy, logger *zap.Logger) *CreditService {
	return &CreditService{
		scope:     scope,
		allocator: allocator,
		logger:    logger,
		now:       time.Now,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *CreditService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetClock overrides the time source
func (s *CreditService) SetClock(now func() time.Time) {
	s.now = now
}

// AllocateCustomerPayment spreads a payment over the customer's due and partial
// sales, oldest first. Money left over is recorded as an ADVANCE line only.
func (s *CreditService) AllocateCustomerPayment(ctx context.Context, customerID uuid.UUID, req AllocatePaymentRequest) (*AllocationResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "credit", "allocate_payment")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrCustomerID, customerID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	if !req.Amount.IsPositive() {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Payment amount must be greater than zero")
	}

	var (
		payment *finance.DuePayment
		events  appshared.EventCollector
	)
	totalDue := decimal.Zero
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		now := s.now()
		// the customer row lock serialises concurrent allocations for one customer
		if _, err := repos.Customers().FindByIDForUpdate(ctx, customerID); err != nil {
			return err
		}
		sales, err := repos.Sales().FindOpenByCustomerForUpdate(ctx, customerID)
		if err != nil {
			return err
		}

		open := make([]strategy.OpenSale, 0, len(sales))
		byID := make(map[uuid.UUID]*trade.Sale, len(sales))
		for i := range sales {
			sale := &sales[i]
			byID[sale.ID] = sale
			open = append(open, strategy.OpenSale{
				SaleID:        sale.ID,
				InvoiceNumber: sale.InvoiceNumber,
				SoldAt:        sale.SaleDate,
				Due:           sale.RemainingDue(),
			})
		}

		plan, err := s.allocator.Allocate(ctx, strategy.PaymentContext{
			CustomerID: customerID,
			Amount:     req.Amount,
			PaidAt:     now,
		}, open)
		if err != nil {
			return fmt.Errorf("allocate payment: %w", err)
		}

		lines := make([]finance.AllocationLine, 0, len(plan.Applications)+1)
		for _, a := range plan.Applications {
			sale := byID[a.Sale.SaleID]
			if err := sale.ApplyPayment(a.Applied); err != nil {
				return err
			}
			if err := repos.Sales().Save(ctx, sale); err != nil {
				return fmt.Errorf("save sale: %w", err)
			}
			saleID := sale.ID
			lines = append(lines, finance.AllocationLine{
				InvoiceNumber:     a.Sale.InvoiceNumber,
				SaleID:            &saleID,
				SaleDate:          a.Sale.SoldAt,
				DueAmount:         a.DueBefore,
				AllocatedAmount:   a.Applied,
				RemainingDueAfter: a.DueAfter,
			})
		}
		if plan.Advance.IsPositive() {
			lines = append(lines, finance.NewAdvanceLine(plan.Advance, now))
		}

		receipt, err := appshared.NextDocumentNumber(ctx, repos, shared.SeqDuePayment, now)
		if err != nil {
			return err
		}
		payment, err = finance.NewDuePayment(receipt, customerID, req.Amount, finance.PaymentMethod(req.Method),
			req.ReferenceNumber, req.Notes, lines, now)
		if err != nil {
			return err
		}
		if err := repos.DuePayments().Save(ctx, payment); err != nil {
			return fmt.Errorf("save due payment: %w", err)
		}

		customer, err := RefreshCustomerDue(ctx, repos, customerID)
		if err != nil {
			return err
		}
		totalDue = customer.TotalDue
		events.Collect(payment, customer)
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("payment allocation rejected",
			zap.String("customer_id", customerID.String()),
			zap.String("amount", req.Amount.String()),
			zap.Error(err))
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)

	s.logger.Info("customer payment allocated",
		zap.String("receipt_number", payment.ReceiptNumber),
		zap.String("customer_id", customerID.String()),
		zap.String("amount", payment.Amount.String()),
		zap.String("advance", payment.AdvanceAmount().String()),
		zap.Int("invoices", len(payment.AllocatedDetails)))

	return &AllocationResponse{
		PaymentID:     payment.ID,
		ReceiptNumber: payment.ReceiptNumber,
		CustomerID:    customerID,
		Amount:        payment.Amount,
		Applied:       payment.AppliedAmount(),
		Advance:       payment.AdvanceAmount(),
		Allocations:   payment.AllocatedDetails,
		TotalDue:      totalDue,
	}, nil
}

// RecomputeCustomerDue rewrites one customer's total due from their open sales
func (s *CreditService) RecomputeCustomerDue(ctx context.Context, customerID uuid.UUID) (*DueRecomputeResult, error) {
	var result DueRecomputeResult
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		before, err := repos.Customers().FindByID(ctx, customerID)
		if err != nil {
			return err
		}
		customer, err := RefreshCustomerDue(ctx, repos, customerID)
		if err != nil {
			return err
		}
		result = DueRecomputeResult{CustomerID: customerID, Before: before.TotalDue, After: customer.TotalDue}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// RecomputeAllCustomerDues recomputes every customer, one transaction each,
// and returns the customers whose stored due was stale.
func (s *CreditService) RecomputeAllCustomerDues(ctx context.Context) ([]DueRecomputeResult, error) {
	ids, err := s.scope.Repos().Customers().FindAllIDs(ctx)
	if err != nil {
		return nil, err
	}
	changed := make([]DueRecomputeResult, 0)
	for _, id := range ids {
		if err := ctx.Err(); err != nil {
			return changed, err
		}
		result, err := s.RecomputeCustomerDue(ctx, id)
		if err != nil {
			return changed, fmt.Errorf("recompute customer %s: %w", id, err)
		}
		if result.Changed() {
			changed = append(changed, *result)
		}
	}
	s.logger.Info("customer dues recomputed",
		zap.Int("customers", len(ids)),
		zap.Int("changed", len(changed)))
	return changed, nil
}

// DeleteDuePayment removes a payment record and recomputes the customer's due.
// Sales keep the amounts the payment credited to them.
func (s *CreditService) DeleteDuePayment(ctx context.Context, paymentID uuid.UUID) error {
	var customerID uuid.UUID
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		payment, err := repos.DuePayments().FindByID(ctx, paymentID)
		if err != nil {
			return err
		}
		customerID = payment.CustomerID
		if err := repos.DuePayments().Delete(ctx, paymentID); err != nil {
			return fmt.Errorf("delete due payment: %w", err)
		}
		_, err = RefreshCustomerDue(ctx, repos, customerID)
		return err
	})
	if err != nil {
		return err
	}
	s.logger.Info("due payment deleted",
		zap.String("payment_id", paymentID.String()),
		zap.String("customer_id", customerID.String()))
	return nil
}

// ListDuePayments returns a customer's payment history, newest first
func (s *CreditService) ListDuePayments(ctx context.Context, customerID uuid.UUID) ([]finance.DuePayment, error) {
	return s.scope.Repos().DuePayments().FindByCustomer(ctx, customerID)
}
