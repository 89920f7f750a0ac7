package finance

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	appshared "github.com/shopman/backend/internal/application/shared"
	"github.com/shopman/backend/internal/domain/finance"
	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// BillService handles supplier bill payments and the overdue sweep
type BillService struct {
	scope          appshared.TransactionScope
	ledger         *BillLedger
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewBillService creates a new BillService
func NewBillService(scope appshared.TransactionScope, ledger *BillLedger, logger *zap.Logger) *BillService {
	return &BillService{scope: scope, ledger: ledger, logger: logger}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *BillService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// RecordSupplierPayment records a payment against a bill and re-derives the bill
func (s *BillService) RecordSupplierPayment(ctx context.Context, billID uuid.UUID, req RecordBillPaymentRequest) (*BillPaymentResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "supplier_bill", "record_payment")
	defer span.End()
	telemetry.SetAttributes(span,
		telemetry.SpanAttrBillID, billID.String(),
		telemetry.SpanAttrAmount, req.Amount.String(),
	)

	var (
		payment *finance.BillPayment
		bill    *finance.SupplierBill
		events  appshared.EventCollector
	)
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		bill, err = repos.SupplierBills().FindByIDForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		paidOn := s.ledger.Now()
		if req.PaymentDate != nil {
			paidOn = *req.PaymentDate
		}
		payment, err = finance.NewBillPayment(bill, req.Amount, finance.PaymentMethod(req.Method), req.ReferenceNumber, req.Notes, paidOn)
		if err != nil {
			return err
		}
		if err := repos.BillPayments().Save(ctx, payment); err != nil {
			return fmt.Errorf("save bill payment: %w", err)
		}
		if err := s.ledger.Recompute(ctx, repos, bill); err != nil {
			return err
		}
		events.Add(finance.NewSupplierPaymentAppliedEvent(bill, payment))
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Warn("supplier payment rejected",
			zap.String("bill_id", billID.String()),
			zap.String("amount", req.Amount.String()),
			zap.Error(err))
		return nil, err
	}
	events.Publish(ctx, s.eventPublisher, s.logger)

	s.logger.Info("supplier payment recorded",
		zap.String("bill_number", bill.BillNumber),
		zap.String("amount", payment.Amount.String()),
		zap.String("due_amount", bill.DueAmount.String()),
		zap.String("status", bill.Status.String()))

	return &BillPaymentResponse{
		PaymentID:       payment.ID,
		Amount:          payment.Amount,
		Method:          payment.Method,
		ReferenceNumber: payment.ReferenceNumber,
		PaymentDate:     payment.PaymentDate,
		Bill:            ToBillResponse(bill, s.ledger.Now()),
	}, nil
}

// RecomputeBill re-derives one bill from its payments and the order's completed returns
func (s *BillService) RecomputeBill(ctx context.Context, billID uuid.UUID) (*BillResponse, error) {
	var bill *finance.SupplierBill
	err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
		var err error
		bill, err = repos.SupplierBills().FindByIDForUpdate(ctx, billID)
		if err != nil {
			return err
		}
		return s.ledger.Recompute(ctx, repos, bill)
	})
	if err != nil {
		return nil, err
	}
	resp := ToBillResponse(bill, s.ledger.Now())
	return &resp, nil
}

// SweepOverdueBills re-derives every bill with money owed past its due date.
// A dry run only reports which bills would change status.
func (s *BillService) SweepOverdueBills(ctx context.Context, dryRun bool) (*SweepResult, error) {
	now := s.ledger.Now()
	day := shared.DateOf(now)
	candidates, err := s.scope.Repos().SupplierBills().FindOverdueCandidates(ctx, day)
	if err != nil {
		return nil, err
	}

	result := &SweepResult{Day: day, DryRun: dryRun, Examined: len(candidates), BillIDs: make([]string, 0)}
	for i := range candidates {
		candidate := &candidates[i]
		if dryRun {
			before := candidate.Status
			candidate.Recompute(candidate.ReturnedAmount, now)
			if candidate.Status != before {
				result.Changed++
				result.BillIDs = append(result.BillIDs, candidate.ID.String())
			}
			continue
		}

		var changed bool
		err := s.scope.Execute(ctx, func(repos appshared.Repositories) error {
			bill, err := repos.SupplierBills().FindByIDForUpdate(ctx, candidate.ID)
			if err != nil {
				return err
			}
			before := bill.Status
			if err := s.ledger.Recompute(ctx, repos, bill); err != nil {
				return err
			}
			changed = bill.Status != before
			return nil
		})
		if err != nil {
			return result, fmt.Errorf("sweep bill %s: %w", candidate.BillNumber, err)
		}
		if changed {
			result.Changed++
			result.BillIDs = append(result.BillIDs, candidate.ID.String())
		}
	}
	result.Completed = s.ledger.Now()

	s.logger.Info("overdue bill sweep finished",
		zap.Time("day", day),
		zap.Bool("dry_run", dryRun),
		zap.Int("examined", result.Examined),
		zap.Int("changed", result.Changed))
	return result, nil
}

// GetBill returns one bill
func (s *BillService) GetBill(ctx context.Context, billID uuid.UUID) (*BillResponse, error) {
	bill, err := s.scope.Repos().SupplierBills().FindByID(ctx, billID)
	if err != nil {
		return nil, err
	}
	resp := ToBillResponse(bill, s.ledger.Now())
	return &resp, nil
}

// ListBills returns a page of bills
func (s *BillService) ListBills(ctx context.Context, filter BillListFilter) ([]BillResponse, int64, error) {
	domainFilter := finance.SupplierBillFilter{Filter: shared.DefaultFilter(), SupplierID: filter.SupplierID}
	domainFilter.OrderBy = "bill_date"
	if filter.Page > 0 {
		domainFilter.Page = filter.Page
	}
	if filter.PageSize > 0 {
		domainFilter.PageSize = filter.PageSize
	}
	if filter.Status != "" {
		status := finance.BillStatus(filter.Status)
		domainFilter.Status = &status
	}
	bills, total, err := s.scope.Repos().SupplierBills().FindAll(ctx, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	today := s.ledger.Now()
	out := make([]BillResponse, 0, len(bills))
	for i := range bills {
		out = append(out, ToBillResponse(&bills[i], today))
	}
	return out, total, nil
}

// ListPayments returns the payments recorded against a bill
func (s *BillService) ListPayments(ctx context.Context, billID uuid.UUID) ([]finance.BillPayment, error) {
	return s.scope.Repos().BillPayments().FindByBill(ctx, billID)
}
