package allocation

import (
	"context"
	"slices"

	"github.com/shopman/backend/internal/domain/shared/strategy"
	"github.com/shopspring/decimal"
)

// NameFIFO is the registry name of the oldest-sale-first strategy
const NameFIFO = "fifo"

// FIFOAllocationStrategy settles the oldest open sales first
type FIFOAllocationStrategy struct {
	strategy.BaseStrategy
}

// NewFIFOAllocationStrategy creates the oldest-sale-first allocation strategy
func NewFIFOAllocationStrategy() *FIFOAllocationStrategy {
	return &FIFOAllocationStrategy{
		BaseStrategy: strategy.NewBaseStrategy(NameFIFO, strategy.StrategyTypeAllocation),
	}
}

// Allocate walks open sales by sale time (invoice number breaks ties) and
// applies min(left, due) to each. Sales without a due are skipped.
func (s *FIFOAllocationStrategy) Allocate(
	_ context.Context,
	payment strategy.PaymentContext,
	open []strategy.OpenSale,
) (strategy.PaymentPlan, error) {
	queue := slices.Clone(open)
	slices.SortStableFunc(queue, func(a, b strategy.OpenSale) int {
		if c := a.SoldAt.Compare(b.SoldAt); c != 0 {
			return c
		}
		if a.InvoiceNumber < b.InvoiceNumber {
			return -1
		}
		if a.InvoiceNumber > b.InvoiceNumber {
			return 1
		}
		return 0
	})

	plan := strategy.PaymentPlan{Applied: decimal.Zero}
	left := payment.Amount
	for _, sale := range queue {
		if !left.IsPositive() {
			break
		}
		if !sale.Due.IsPositive() {
			continue
		}
		applied := decimal.Min(left, sale.Due)
		plan.Applications = append(plan.Applications, strategy.DueApplication{
			Sale:      sale,
			Applied:   applied,
			DueBefore: sale.Due,
			DueAfter:  sale.Due.Sub(applied),
		})
		left = left.Sub(applied)
		plan.Applied = plan.Applied.Add(applied)
	}
	plan.Advance = left
	return plan, nil
}
