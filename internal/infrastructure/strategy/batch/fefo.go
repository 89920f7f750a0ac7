package batch

import (
	"context"
	"sort"
	"time"

	"github.com/shopman/backend/internal/domain/shared/strategy"
)

// Batch selection strategy names. ledger.batch_split_policy "truncate" selects
// NameFEFOFirst and "split" selects NameFEFOSplit.
const (
	NameFEFOFirst = "fefo-first"
	NameFEFOSplit = "fefo-split"
)

// FEFOBatchStrategy implements First Expired First Out batch selection.
// With split disabled only the earliest-expiring eligible lot is drawn from,
// even when it cannot cover the whole request.
type FEFOBatchStrategy struct {
	strategy.BaseStrategy
	split bool
}

// NewFEFOFirstBatchStrategy draws min(requested, available) from the first eligible lot
func NewFEFOFirstBatchStrategy() *FEFOBatchStrategy {
	return &FEFOBatchStrategy{
		BaseStrategy: strategy.NewBaseStrategy(NameFEFOFirst, strategy.StrategyTypeBatch),
	}
}

// NewFEFOSplitBatchStrategy walks eligible lots in expiry order until the request is covered
func NewFEFOSplitBatchStrategy() *FEFOBatchStrategy {
	return &FEFOBatchStrategy{
		BaseStrategy: strategy.NewBaseStrategy(NameFEFOSplit, strategy.StrategyTypeBatch),
		split:        true,
	}
}

// SelectBatches selects batches in FEFO order by expiry date
func (s *FEFOBatchStrategy) SelectBatches(
	ctx context.Context,
	selCtx strategy.BatchSelectionContext,
	batches []strategy.Batch,
) (strategy.BatchSelectionResult, error) {
	filtered := filterAvailableBatches(batches, selCtx)
	filtered = filterNonExpiredBatches(filtered, selCtx.Date)
	sortByExpiry(filtered)

	if !s.split && len(filtered) > 1 {
		filtered = filtered[:1]
	}
	return selectFromBatches(filtered, selCtx.Quantity), nil
}

// SplitsAcrossBatches reports the configured split policy
func (s *FEFOBatchStrategy) SplitsAcrossBatches() bool {
	return s.split
}

func filterAvailableBatches(batches []strategy.Batch, selCtx strategy.BatchSelectionContext) []strategy.Batch {
	filtered := make([]strategy.Batch, 0, len(batches))
	for _, b := range batches {
		if b.ProductID == selCtx.ProductID && b.AvailableQty > 0 {
			filtered = append(filtered, b)
		}
	}
	return filtered
}

// filterNonExpiredBatches drops lots whose expiry date is before the selection day.
// A lot expiring today is still sellable.
func filterNonExpiredBatches(batches []strategy.Batch, currentDate time.Time) []strategy.Batch {
	if currentDate.IsZero() {
		currentDate = time.Now()
	}
	y, m, d := currentDate.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, currentDate.Location())

	filtered := make([]strategy.Batch, 0, len(batches))
	for _, b := range batches {
		if b.ExpiryDate.IsZero() || !b.ExpiryDate.Before(today) {
			filtered = append(filtered, b)
		}
	}
	return filtered
}

// sortByExpiry orders lots by expiry ascending; lots without expiry go last,
// ties fall back to receipt order
func sortByExpiry(batches []strategy.Batch) {
	sort.SliceStable(batches, func(i, j int) bool {
		iExpiry := batches[i].ExpiryDate
		jExpiry := batches[j].ExpiryDate

		switch {
		case iExpiry.IsZero() && jExpiry.IsZero():
			return batches[i].ReceivedDate.Before(batches[j].ReceivedDate)
		case iExpiry.IsZero():
			return false
		case jExpiry.IsZero():
			return true
		case iExpiry.Equal(jExpiry):
			return batches[i].ReceivedDate.Before(batches[j].ReceivedDate)
		default:
			return iExpiry.Before(jExpiry)
		}
	})
}

func selectFromBatches(batches []strategy.Batch, quantity int) strategy.BatchSelectionResult {
	remainingQty := quantity
	selections := make([]strategy.BatchSelection, 0, len(batches))
	totalQty := 0

	for _, batch := range batches {
		if remainingQty <= 0 {
			break
		}

		selectedQty := min(remainingQty, batch.AvailableQty)
		selections = append(selections, strategy.BatchSelection{
			BatchID:     batch.ID,
			BatchNumber: batch.BatchNumber,
			Quantity:    selectedQty,
			ExpiryDate:  batch.ExpiryDate,
		})

		remainingQty -= selectedQty
		totalQty += selectedQty
	}

	return strategy.BatchSelectionResult{
		Selections:   selections,
		TotalQty:     totalQty,
		ShortfallQty: max(remainingQty, 0),
	}
}
