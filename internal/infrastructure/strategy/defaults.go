package strategy

import (
	"github.com/shopman/backend/internal/domain/shared/strategy"
	"github.com/shopman/backend/internal/infrastructure/strategy/allocation"
	"github.com/shopman/backend/internal/infrastructure/strategy/batch"
)

// Split policies accepted by ledger.batch_split_policy
const (
	PolicyTruncate = "truncate"
	PolicySplit    = "split"
)

// batchStrategyFor maps a split policy to a batch strategy name
func batchStrategyFor(policy string) string {
	if policy == PolicySplit {
		return batch.NameFEFOSplit
	}
	return batch.NameFEFOFirst
}

// NewRegistryWithDefaults registers the FEFO batch strategies and FIFO allocation.
// The default batch strategy follows the split policy.
func NewRegistryWithDefaults(splitPolicy string) (*StrategyRegistry, error) {
	r := NewStrategyRegistry()

	if err := r.RegisterAllocationStrategy(allocation.NewFIFOAllocationStrategy()); err != nil {
		return nil, err
	}
	if err := r.RegisterBatchStrategy(batch.NewFEFOFirstBatchStrategy()); err != nil {
		return nil, err
	}
	if err := r.RegisterBatchStrategy(batch.NewFEFOSplitBatchStrategy()); err != nil {
		return nil, err
	}

	if err := r.SetDefault(strategy.StrategyTypeAllocation, allocation.NameFIFO); err != nil {
		return nil, err
	}
	if err := r.SetDefault(strategy.StrategyTypeBatch, batchStrategyFor(splitPolicy)); err != nil {
		return nil, err
	}
	return r, nil
}
