package shared

import (
	"time"

	"github.com/google/uuid"
)

// DomainEvent is a fact recorded by an aggregate and published after commit
type DomainEvent interface {
	EventID() uuid.UUID
	EventType() string
	AggregateID() uuid.UUID
}

// BaseDomainEvent carries the identity every ledger event shares.
// Concrete events embed it and add their own payload.
type BaseDomainEvent struct {
	ID            uuid.UUID `json:"id"`
	Type          string    `json:"type"`
	Aggregate     uuid.UUID `json:"aggregate_id"`
	AggregateKind string    `json:"aggregate_type"`
	RecordedAt    time.Time `json:"recorded_at"`
}

func NewBaseDomainEvent(eventType, aggregateKind string, aggregate uuid.UUID) BaseDomainEvent {
	return BaseDomainEvent{
		ID:            uuid.New(),
		Type:          eventType,
		Aggregate:     aggregate,
		AggregateKind: aggregateKind,
		RecordedAt:    time.Now(),
	}
}

func (e *BaseDomainEvent) EventID() uuid.UUID     { return e.ID }
func (e *BaseDomainEvent) EventType() string      { return e.Type }
func (e *BaseDomainEvent) AggregateID() uuid.UUID { return e.Aggregate }
