package commands

import (
	"errors"

	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/pkg/guard"
)

var ErrRegisterShipmentCommandIsNotConstructed = errors.New(
	"RegisterShipmentCommand must be created via NewRegisterShipmentCommand constructor",
)

// RegisterShipmentCommand creates the delivery record of a shipment entering the
// transport system.
//
// Example:
//
//	cmd, err := NewRegisterShipmentCommand(kernel.NewUUID())
//	if err != nil {
//	    return err
//	}
//	err = handler.Handle(ctx, cmd)
type RegisterShipmentCommand struct {
	shipmentID kernel.UUID

	guard guard.ConstructorGuard
}

func NewRegisterShipmentCommand(shipmentID kernel.UUID) (RegisterShipmentCommand, error) {
	if err := shipmentID.Validate(); err != nil {
		return RegisterShipmentCommand{}, err
	}

	return RegisterShipmentCommand{
		shipmentID: shipmentID,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c RegisterShipmentCommand) Validate() error {
	return c.guard.Validate(ErrRegisterShipmentCommandIsNotConstructed)
}

func (c RegisterShipmentCommand) ShipmentID() kernel.UUID {
	return c.shipmentID
}
