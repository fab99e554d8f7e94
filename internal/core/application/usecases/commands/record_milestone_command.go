package commands

import (
	"errors"
	"time"

	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/core/domain/model/shipment"
	"cmr/internal/pkg/errs"
	"cmr/internal/pkg/guard"
)

var ErrRecordMilestoneCommandIsNotConstructed = errors.New(
	"RecordMilestoneCommand must be created via NewRecordMilestoneCommand constructor",
)

// ExceptionInput is the optional exception data submitted together with a milestone.
type ExceptionInput struct {
	Action shipment.ExceptionAction
	Note   string
	Actor  string
}

// RecordMilestoneCommand is one delivery update: a milestone, an exception action,
// or both. Both parts are applied together or not at all, milestone first.
//
// Example:
//
//	cmd, err := NewRecordMilestoneCommand(id, shipment.ActualArrival, time.Now(), "berth 4", nil,
//	    &ExceptionInput{Action: shipment.ActionReport, Note: "customs hold"})
type RecordMilestoneCommand struct { //nolint:recvcheck //using for validation
	shipmentID kernel.UUID
	slot       shipment.MilestoneSlot
	at         time.Time
	note       string
	pickup     *shipment.PickupDetails
	exception  *ExceptionInput

	guard guard.ConstructorGuard
}

// NewRecordMilestoneCommand builds the update. slot may be zero when exception is set.
func NewRecordMilestoneCommand(
	shipmentID kernel.UUID,
	slot shipment.MilestoneSlot,
	at time.Time,
	note string,
	pickup *shipment.PickupDetails,
	exception *ExceptionInput,
) (RecordMilestoneCommand, error) {
	cmd := RecordMilestoneCommand{
		note:   note,
		pickup: pickup,
		guard:  guard.NewConstructorGuard(),
	}

	if err := errors.Join(
		cmd.setShipmentID(shipmentID),
		cmd.setAt(at),
		cmd.setContent(slot, exception),
	); err != nil {
		return RecordMilestoneCommand{}, err
	}

	return cmd, nil
}

// Validate ensures the command was created through the constructor.
func (c RecordMilestoneCommand) Validate() error {
	return c.guard.Validate(ErrRecordMilestoneCommandIsNotConstructed)
}

func (c RecordMilestoneCommand) ShipmentID() kernel.UUID {
	return c.shipmentID
}

func (c RecordMilestoneCommand) Slot() shipment.MilestoneSlot {
	return c.slot
}

func (c RecordMilestoneCommand) At() time.Time {
	return c.at
}

// Events returns the domain events of the update in application order.
func (c RecordMilestoneCommand) Events() []shipment.Event {
	events := make([]shipment.Event, 0, 2)
	if c.slot != 0 {
		events = append(events, shipment.RecordMilestoneEvent{
			Slot:   c.slot,
			At:     c.at,
			Note:   c.note,
			Pickup: c.pickup,
		})
	}
	if c.exception != nil {
		events = append(events, shipment.ExceptionActionEvent{
			Action: c.exception.Action,
			Note:   c.exception.Note,
			Actor:  c.exception.Actor,
			At:     c.at,
		})
	}
	return events
}

func (c *RecordMilestoneCommand) setShipmentID(id kernel.UUID) error {
	if err := id.Validate(); err != nil {
		return err
	}
	c.shipmentID = id
	return nil
}

func (c *RecordMilestoneCommand) setAt(at time.Time) error {
	if at.IsZero() {
		return errs.NewValueIsRequiredError("timestamp")
	}
	c.at = at
	return nil
}

func (c *RecordMilestoneCommand) setContent(slot shipment.MilestoneSlot, exception *ExceptionInput) error {
	if slot == 0 && exception == nil {
		return errs.NewValueIsRequiredError("slot or exception")
	}
	if slot != 0 {
		if err := slot.Validate(); err != nil {
			return err
		}
	}
	if exception != nil {
		if err := exception.Action.Validate(); err != nil {
			return err
		}
		copied := *exception
		c.exception = &copied
	}
	c.slot = slot
	return nil
}
