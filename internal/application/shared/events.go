package shared

import (
	"context"

	"github.com/shopman/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// EventCollector gathers domain events raised inside a transaction so they
// can be published once it commits.
type EventCollector struct {
	events []shared.DomainEvent
}

// Collect takes the pending events of each aggregate and clears them
func (c *EventCollector) Collect(aggregates ...shared.EventSource) {
	for _, a := range aggregates {
		if a == nil {
			continue
		}
		c.events = append(c.events, a.GetDomainEvents()...)
		a.ClearDomainEvents()
	}
}

// Add appends events not owned by an aggregate
func (c *EventCollector) Add(events ...shared.DomainEvent) {
	c.events = append(c.events, events...)
}

// Publish hands the collected events to the publisher. Delivery failures are
// logged and never fail the already committed operation.
func (c *EventCollector) Publish(ctx context.Context, publisher shared.EventPublisher, logger *zap.Logger) {
	if publisher == nil || len(c.events) == 0 {
		return
	}
	if err := publisher.Publish(ctx, c.events...); err != nil {
		logger.Warn("failed to publish domain events", zap.Int("count", len(c.events)), zap.Error(err))
	}
	c.events = nil
}
