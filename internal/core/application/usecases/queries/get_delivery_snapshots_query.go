package queries

import (
	"errors"

	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/pkg/errs"
	"cmr/internal/pkg/guard"
)

// MaxBulkSnapshotIDs bounds one bulk request.
const MaxBulkSnapshotIDs = 500

var ErrGetDeliverySnapshotsQueryIsNotConstructed = errors.New(
	"GetDeliverySnapshotsQuery must be created via NewGetDeliverySnapshotsQuery constructor",
)

// GetDeliverySnapshotsQuery reads many snapshots at once. Duplicate ids are
// answered once per occurrence.
type GetDeliverySnapshotsQuery struct {
	shipmentIDs []kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetDeliverySnapshotsQuery(shipmentIDs []kernel.UUID) (GetDeliverySnapshotsQuery, error) {
	if len(shipmentIDs) == 0 {
		return GetDeliverySnapshotsQuery{}, errs.NewValueIsRequiredError("shipment ids")
	}
	if len(shipmentIDs) > MaxBulkSnapshotIDs {
		return GetDeliverySnapshotsQuery{}, errs.NewValueIsOutOfRangeError(
			"shipment ids count", len(shipmentIDs), 1, MaxBulkSnapshotIDs)
	}

	ids := make([]kernel.UUID, len(shipmentIDs))
	copy(ids, shipmentIDs)

	return GetDeliverySnapshotsQuery{
		shipmentIDs: ids,
		guard:       guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetDeliverySnapshotsQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliverySnapshotsQueryIsNotConstructed)
}

func (q GetDeliverySnapshotsQuery) ShipmentIDs() []kernel.UUID {
	ids := make([]kernel.UUID, len(q.shipmentIDs))
	copy(ids, q.shipmentIDs)
	return ids
}

// SnapshotResult is the outcome for one requested id: either Snapshot or Err is set.
type SnapshotResult struct {
	ShipmentID kernel.UUID
	Snapshot   *DeliverySnapshot
	Err        error
}
