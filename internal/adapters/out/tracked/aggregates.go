// Package tracked collects the aggregates saved during a unit of work and hands
// their domain events to the publisher once the transaction has committed.
package tracked

import (
	"context"

	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/core/domain/model/shipment"
	"cmr/internal/core/ports"

	"go.uber.org/zap"
)

type aggregate struct {
	id    kernel.UUID
	value any
}

// Aggregates is the tracking list of one unit of work. It is not safe for
// concurrent use, like the unit of work that owns it.
type Aggregates struct {
	items []aggregate
}

func (a *Aggregates) TrackAggregate(id kernel.UUID, value any) {
	a.items = append(a.items, aggregate{id: id, value: value})
}

// Len returns the number of tracked saves.
func (a *Aggregates) Len() int {
	return len(a.items)
}

// Reset forgets everything tracked so far.
func (a *Aggregates) Reset() {
	a.items = nil
}

// Publish sends the pending StatusChanged events of every tracked shipment, clears
// them on the aggregate and resets the list. Failures are logged and skipped.
func (a *Aggregates) Publish(ctx context.Context, publisher ports.EventPublisher, logger *zap.Logger) {
	items := a.items
	a.items = nil

	for _, item := range items {
		s, ok := item.value.(*shipment.Shipment)
		if !ok {
			continue
		}
		if publisher != nil {
			for _, event := range s.DomainEvents() {
				if err := publisher.Publish(ctx, event); err != nil {
					logger.Warn("failed to publish status change",
						zap.String("shipment_id", event.ShipmentID.String()),
						zap.String("to", event.To.String()),
						zap.Error(err),
					)
				}
			}
		}
		s.ClearDomainEvents()
	}
}
