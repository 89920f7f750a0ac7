package strategy

import (
	"testing"

	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/domain/shared/strategy"
	"github.com/shopman/backend/internal/infrastructure/strategy/allocation"
	"github.com/shopman/backend/internal/infrastructure/strategy/batch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistryWithDefaults(t *testing.T) {
	tests := []struct {
		policy   string
		expected string
		splits   bool
	}{
		{PolicyTruncate, batch.NameFEFOFirst, false},
		{PolicySplit, batch.NameFEFOSplit, true},
		{"", batch.NameFEFOFirst, false},
	}

	for _, tt := range tests {
		t.Run("policy "+tt.policy, func(t *testing.T) {
			r, err := NewRegistryWithDefaults(tt.policy)
			require.NoError(t, err)

			s, err := r.GetBatchStrategy("")
			require.NoError(t, err)
			assert.Equal(t, tt.expected, s.Name())
			assert.Equal(t, tt.splits, s.SplitsAcrossBatches())

			alloc, err := r.GetAllocationStrategy("")
			require.NoError(t, err)
			assert.Equal(t, allocation.NameFIFO, alloc.Name())
		})
	}
}

func TestStrategyRegistry_Errors(t *testing.T) {
	r := NewStrategyRegistry()

	_, err := r.GetBatchStrategy("")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	require.NoError(t, r.RegisterBatchStrategy(batch.NewFEFOFirstBatchStrategy()))
	err = r.RegisterBatchStrategy(batch.NewFEFOFirstBatchStrategy())
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)

	err = r.SetDefault(strategy.StrategyTypeAllocation, "missing")
	assert.ErrorIs(t, err, shared.ErrNotFound)

	assert.Equal(t, []string{batch.NameFEFOFirst}, r.ListBatchStrategies())
}

type mislabeledBatch struct{ *batch.FEFOBatchStrategy }

func (mislabeledBatch) Type() strategy.StrategyType { return strategy.StrategyTypeAllocation }

func TestStrategyRegistry_RejectsWrongType(t *testing.T) {
	r := NewStrategyRegistry()

	err := r.RegisterBatchStrategy(mislabeledBatch{batch.NewFEFOSplitBatchStrategy()})
	assert.ErrorIs(t, err, shared.ErrInvalidInput)
	assert.Empty(t, r.ListBatchStrategies())
}
