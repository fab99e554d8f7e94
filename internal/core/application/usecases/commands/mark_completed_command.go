package commands

import (
	"errors"

	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/pkg/guard"
)

var ErrMarkCompletedCommandIsNotConstructed = errors.New(
	"MarkCompletedCommand must be created via NewMarkCompletedCommand constructor",
)

// MarkCompletedCommand administratively closes a delivered shipment.
type MarkCompletedCommand struct {
	shipmentID kernel.UUID

	guard guard.ConstructorGuard
}

func NewMarkCompletedCommand(shipmentID kernel.UUID) (MarkCompletedCommand, error) {
	if err := shipmentID.Validate(); err != nil {
		return MarkCompletedCommand{}, err
	}

	return MarkCompletedCommand{
		shipmentID: shipmentID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c MarkCompletedCommand) Validate() error {
	return c.guard.Validate(ErrMarkCompletedCommandIsNotConstructed)
}

func (c MarkCompletedCommand) ShipmentID() kernel.UUID {
	return c.shipmentID
}
