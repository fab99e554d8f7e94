package queries

import (
	"errors"

	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/pkg/guard"
)

var ErrGetDeliverySnapshotQueryIsNotConstructed = errors.New(
	"GetDeliverySnapshotQuery must be created via NewGetDeliverySnapshotQuery constructor",
)

// GetDeliverySnapshotQuery reads the full delivery state of one shipment.
//
// Example:
//
//	query, err := NewGetDeliverySnapshotQuery(id)
//	if err != nil {
//	    return err
//	}
//	snapshot, err := handler.Handle(ctx, query)
type GetDeliverySnapshotQuery struct {
	shipmentID kernel.UUID

	guard guard.ConstructorGuard
}

func NewGetDeliverySnapshotQuery(shipmentID kernel.UUID) (GetDeliverySnapshotQuery, error) {
	if err := shipmentID.Validate(); err != nil {
		return GetDeliverySnapshotQuery{}, err
	}
	return GetDeliverySnapshotQuery{
		shipmentID: shipmentID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the query was created through the constructor.
func (q GetDeliverySnapshotQuery) Validate() error {
	return q.guard.Validate(ErrGetDeliverySnapshotQueryIsNotConstructed)
}

func (q GetDeliverySnapshotQuery) ShipmentID() kernel.UUID {
	return q.shipmentID
}
