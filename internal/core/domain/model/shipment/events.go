package shipment

import (
	"time"

	"cmr/internal/core/domain/model/kernel"
)

// StatusChanged is raised whenever a shipment enters or leaves the Exception status.
// Consumers use it for alerting; nothing in the state machine depends on its delivery.
type StatusChanged struct {
	ShipmentID kernel.UUID
	From       DeliveryStatus
	To         DeliveryStatus
	OccurredAt time.Time
}

// EntersException reports whether the change opened an exception.
func (e StatusChanged) EntersException() bool {
	return e.To == Exception
}
