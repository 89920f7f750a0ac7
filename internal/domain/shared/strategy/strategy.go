// Package strategy holds the pluggable ledger policies: which lots a sale
// draws from and how a customer payment spreads over open sales.
package strategy

// StrategyType groups strategies by the decision they make
type StrategyType string

const (
	// StrategyTypeAllocation spreads a payment over open credit sales
	StrategyTypeAllocation StrategyType = "allocation"
	// StrategyTypeBatch picks the lots an outbound quantity comes from
	StrategyTypeBatch StrategyType = "batch"
)

// Strategy is what the registry knows about any policy
type Strategy interface {
	Name() string
	Type() StrategyType
}

// BaseStrategy is embedded by concrete policies for their identity
type BaseStrategy struct {
	name string
	kind StrategyType
}

func NewBaseStrategy(name string, kind StrategyType) BaseStrategy {
	return BaseStrategy{name: name, kind: kind}
}

func (s BaseStrategy) Name() string       { return s.name }
func (s BaseStrategy) Type() StrategyType { return s.kind }
