package ports

import (
	"context"

	"cmr/internal/core/domain/model/shipment"
)

// EventPublisher delivers status change notifications. Delivery is fire-and-forget:
// a failed publish is logged by the caller and never undoes the stored change.
type EventPublisher interface {
	Publish(ctx context.Context, event shipment.StatusChanged) error
}
