// Package ports defines the contracts between the shipment domain and infrastructure.
package ports

import (
	"context"
	"time"

	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/core/domain/model/shipment"
)

// ShipmentRepository defines the persistence contract for shipment aggregates.
type ShipmentRepository interface {
	// Add persists a newly registered shipment.
	Add(ctx context.Context, aggregate *shipment.Shipment) error

	// Update persists a changed shipment if the stored version still equals
	// expectedVersion. Otherwise it returns *errs.VersionConflictError and writes nothing.
	Update(ctx context.Context, aggregate *shipment.Shipment, expectedVersion int64) error

	// Get loads a shipment with its milestones and exception trail.
	// Returns *errs.ObjectNotFoundError when the id is unknown.
	Get(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error)

	// GetAllActive returns shipments that are neither completed nor exception-closed,
	// ordered by id.
	GetAllActive(ctx context.Context) ([]*shipment.Shipment, error)

	// GetStaleExceptions returns shipments with a live exception whose newest audit
	// record is older than before.
	GetStaleExceptions(ctx context.Context, before time.Time) ([]*shipment.Shipment, error)
}
