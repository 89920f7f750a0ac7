package strategy

import (
	"fmt"
	"maps"
	"slices"
	"sync"

	"github.com/shopman/backend/internal/domain/shared"
	"github.com/shopman/backend/internal/domain/shared/strategy"
)

// StrategyRegistry maps names to ledger policies and remembers the default
// of each kind. It is safe for concurrent use.
type StrategyRegistry struct {
	mu         sync.RWMutex
	allocation map[string]strategy.PaymentAllocationStrategy
	batch      map[string]strategy.BatchManagementStrategy
	defaults   map[strategy.StrategyType]string
}

func NewStrategyRegistry() *StrategyRegistry {
	return &StrategyRegistry{
		allocation: map[string]strategy.PaymentAllocationStrategy{},
		batch:      map[string]strategy.BatchManagementStrategy{},
		defaults:   map[strategy.StrategyType]string{},
	}
}

func register[S strategy.Strategy](m map[string]S, kind strategy.StrategyType, s S) error {
	if s.Type() != kind {
		return fmt.Errorf("%w: %s is a %s strategy, not %s", shared.ErrInvalidInput, s.Name(), s.Type(), kind)
	}
	if _, taken := m[s.Name()]; taken {
		return fmt.Errorf("%w: %s strategy %q already registered", shared.ErrAlreadyExists, kind, s.Name())
	}
	m[s.Name()] = s
	return nil
}

// lookup resolves name, or the kind's default when name is empty
func lookup[S strategy.Strategy](m map[string]S, kind strategy.StrategyType, name, fallback string) (S, error) {
	var zero S
	if name == "" {
		name = fallback
	}
	if name == "" {
		return zero, fmt.Errorf("%w: no default %s strategy", shared.ErrNotFound, kind)
	}
	s, ok := m[name]
	if !ok {
		return zero, fmt.Errorf("%w: %s strategy %q", shared.ErrNotFound, kind, name)
	}
	return s, nil
}

func (r *StrategyRegistry) RegisterAllocationStrategy(s strategy.PaymentAllocationStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return register(r.allocation, strategy.StrategyTypeAllocation, s)
}

func (r *StrategyRegistry) RegisterBatchStrategy(s strategy.BatchManagementStrategy) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return register(r.batch, strategy.StrategyTypeBatch, s)
}

// GetAllocationStrategy returns the named strategy, or the default for an empty name
func (r *StrategyRegistry) GetAllocationStrategy(name string) (strategy.PaymentAllocationStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lookup(r.allocation, strategy.StrategyTypeAllocation, name, r.defaults[strategy.StrategyTypeAllocation])
}

// GetBatchStrategy returns the named strategy, or the default for an empty name
func (r *StrategyRegistry) GetBatchStrategy(name string) (strategy.BatchManagementStrategy, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return lookup(r.batch, strategy.StrategyTypeBatch, name, r.defaults[strategy.StrategyTypeBatch])
}

// ListBatchStrategies returns the registered batch strategy names, sorted
func (r *StrategyRegistry) ListBatchStrategies() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.batch))
}

// SetDefault makes name the default of its kind; it must already be registered
func (r *StrategyRegistry) SetDefault(kind strategy.StrategyType, name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var known bool
	switch kind {
	case strategy.StrategyTypeAllocation:
		_, known = r.allocation[name]
	case strategy.StrategyTypeBatch:
		_, known = r.batch[name]
	}
	if !known {
		return fmt.Errorf("%w: %s strategy %q", shared.ErrNotFound, kind, name)
	}
	r.defaults[kind] = name
	return nil
}

func (r *StrategyRegistry) GetDefault(kind strategy.StrategyType) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.defaults[kind]
}
