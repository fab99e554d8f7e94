package shipment

import "errors"

// Business rule violations. Every one of them leaves the shipment unchanged.
var (
	// ErrOutOfOrderMilestone is returned when a milestone slot is not the next one to fill,
	// or when an already filled slot is resubmitted with different values.
	ErrOutOfOrderMilestone = errors.New("milestone is out of order")

	// ErrIllegalTransition is returned for any event the current state does not accept.
	ErrIllegalTransition = errors.New("illegal transition")

	// ErrRecordLocked is returned when a completed or exception-closed shipment is changed.
	ErrRecordLocked = errors.New("record is locked")

	// ErrNotDeliverable is returned when completion is requested before delivery.
	ErrNotDeliverable = errors.New("shipment is not delivered")

	// ErrAlreadyCompleted is returned when completion is requested twice.
	ErrAlreadyCompleted = errors.New("shipment is already completed")

	// ErrShipmentIsNotConstructed is returned when a Shipment was not created through
	// NewShipment or RestoreShipment.
	ErrShipmentIsNotConstructed = errors.New("Shipment must be created via NewShipment or RestoreShipment")
)
