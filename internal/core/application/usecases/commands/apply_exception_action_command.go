package commands

import (
	"errors"
	"time"

	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/core/domain/model/shipment"
	"cmr/internal/pkg/errs"
	"cmr/internal/pkg/guard"
)

var ErrApplyExceptionActionCommandIsNotConstructed = errors.New(
	"ApplyExceptionActionCommand must be created via NewApplyExceptionActionCommand constructor",
)

// ApplyExceptionActionCommand drives the exception sub-workflow of one shipment.
type ApplyExceptionActionCommand struct {
	shipmentID kernel.UUID
	action     shipment.ExceptionAction
	note       string
	actor      string
	at         time.Time

	guard guard.ConstructorGuard
}

func NewApplyExceptionActionCommand(
	shipmentID kernel.UUID,
	action shipment.ExceptionAction,
	note, actor string,
	at time.Time,
) (ApplyExceptionActionCommand, error) {
	var timestampErr error
	if at.IsZero() {
		timestampErr = errs.NewValueIsRequiredError("timestamp")
	}
	if err := errors.Join(shipmentID.Validate(), action.Validate(), timestampErr); err != nil {
		return ApplyExceptionActionCommand{}, err
	}

	return ApplyExceptionActionCommand{
		shipmentID: shipmentID,
		action:     action,
		note:       note,
		actor:      actor,
		at:         at,
		guard:      guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the command was created through the constructor.
func (c ApplyExceptionActionCommand) Validate() error {
	return c.guard.Validate(ErrApplyExceptionActionCommandIsNotConstructed)
}

func (c ApplyExceptionActionCommand) ShipmentID() kernel.UUID {
	return c.shipmentID
}

func (c ApplyExceptionActionCommand) Action() shipment.ExceptionAction {
	return c.action
}

func (c ApplyExceptionActionCommand) event() shipment.Event {
	return shipment.ExceptionActionEvent{
		Action: c.action,
		Note:   c.note,
		Actor:  c.actor,
		At:     c.at,
	}
}
