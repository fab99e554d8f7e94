// Package queries contains read operations over shipments.
// Queries never mutate state and never take the per-shipment lock.
package queries

import (
	"context"
	"time"

	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/core/domain/model/shipment"
)

// ShipmentReader is the read side of ports.ShipmentRepository.
type ShipmentReader interface {
	Get(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error)
	GetAllActive(ctx context.Context) ([]*shipment.Shipment, error)
	GetStaleExceptions(ctx context.Context, before time.Time) ([]*shipment.Shipment, error)
}
