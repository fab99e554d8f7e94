package shipment

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/pkg/errs"
	"cmr/internal/pkg/guard"
)

// PickupDetails are the descriptive fields captured with the Pickup milestone.
type PickupDetails struct {
	ServiceProvider string
	DeliveryAddress string
}

// Shipment is the delivery record of one bill of lading or container and the
// aggregate root of this package.
//
// Shipment follows these invariants:
//   - CurrentStep equals the number of leading recorded milestones
//   - Status is always deriveStatus(CurrentStep, Exception)
//   - Completed implies Status == Delivered
//   - An exception, when present, has at least one audit record
//
// Mutating methods leave the shipment untouched when they return an error. Callers
// outside this package go through Apply, which additionally works on a copy.
type Shipment struct {
	id              kernel.UUID
	status          DeliveryStatus
	ledger          Ledger
	serviceProvider string
	deliveryAddress string
	exception       *ExceptionState
	completed       bool

	// version counts state-changing operations; storage compares it on save.
	version int64

	events []StatusChanged
	guard  guard.ConstructorGuard
}

// NewShipment creates the record of a shipment entering the transport system:
// no milestones, NotStarted, version 0.
func NewShipment(id kernel.UUID) (*Shipment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	return &Shipment{
		id:     id,
		status: NotStarted,
		guard:  guard.NewConstructorGuard(),
	}, nil
}

// RestoreShipment rebuilds a shipment from storage. The status is derived, never
// read back, so a stale stored status cannot leak into the domain.
func RestoreShipment(
	id kernel.UUID,
	ledger Ledger,
	pickup PickupDetails,
	exception *ExceptionState,
	completed bool,
	version int64,
) (*Shipment, error) {
	var problems []error
	if err := id.Validate(); err != nil {
		problems = append(problems, err)
	}
	if version < 0 {
		problems = append(problems, errs.NewValueIsOutOfRangeError("version", version, 0, "unbounded"))
	}
	if len(problems) > 0 {
		return nil, errors.Join(problems...)
	}

	status := deriveStatus(ledger.CurrentStep(), exception)
	if completed && status != Delivered {
		return nil, errs.NewValueIsInvalidErrorWithCause(
			"completed",
			fmt.Errorf("a %s shipment cannot be completed", status),
		)
	}

	return &Shipment{
		id:              id,
		status:          status,
		ledger:          ledger,
		serviceProvider: pickup.ServiceProvider,
		deliveryAddress: pickup.DeliveryAddress,
		exception:       exception.clone(),
		completed:       completed,
		version:         version,
		guard:           guard.NewConstructorGuard(),
	}, nil
}

// Validate ensures the shipment was built by NewShipment or RestoreShipment.
func (s *Shipment) Validate() error {
	if s == nil {
		return ErrShipmentIsNotConstructed
	}
	return s.guard.Validate(ErrShipmentIsNotConstructed)
}

func (s *Shipment) ID() kernel.UUID            { return s.id }
func (s *Shipment) Status() DeliveryStatus     { return s.status }
func (s *Shipment) Ledger() Ledger             { return s.ledger }
func (s *Shipment) CurrentStep() int           { return s.ledger.CurrentStep() }
func (s *Shipment) ServiceProvider() string    { return s.serviceProvider }
func (s *Shipment) DeliveryAddress() string    { return s.deliveryAddress }
func (s *Shipment) IsCompleted() bool          { return s.completed }
func (s *Shipment) Version() int64             { return s.version }
func (s *Shipment) Exception() *ExceptionState { return s.exception.clone() }

// IsLocked reports whether the shipment rejects every further change.
func (s *Shipment) IsLocked() bool {
	return s.completed || s.status == ExceptionClosed
}

// DomainEvents returns the status changes recorded since the last ClearDomainEvents.
func (s *Shipment) DomainEvents() []StatusChanged {
	out := make([]StatusChanged, len(s.events))
	copy(out, s.events)
	return out
}

func (s *Shipment) ClearDomainEvents() {
	s.events = nil
}

// RecordMilestone fills the next milestone slot.
//
// Business rules:
//   - slot must be CurrentStep+1; an identical resubmission of a filled slot is a no-op
//   - pickup details are only accepted with the Pickup slot
//   - a completed or exception-closed shipment is locked
//   - nothing can be recorded while an exception is open
func (s *Shipment) RecordMilestone(slot MilestoneSlot, at time.Time, note string, pickup *PickupDetails) error {
	if err := slot.Validate(); err != nil {
		return err
	}
	at = normalizeTime(at)
	if at.IsZero() {
		return errs.NewValueIsRequiredError("milestone timestamp")
	}
	if pickup != nil && slot != Pickup {
		return errs.NewValueIsInvalidErrorWithCause(
			"pickup details",
			fmt.Errorf("only accepted with %s, got %s", Pickup, slot),
		)
	}
	if err := s.checkUnlocked(); err != nil {
		return err
	}

	if int(slot) <= s.CurrentStep() && !s.samePickup(pickup) {
		return fmt.Errorf("%w: pickup details differ from the recorded ones", ErrOutOfOrderMilestone)
	}

	ledger := s.ledger
	changed, err := ledger.record(slot, at, note)
	if err != nil {
		return err
	}
	if !changed {
		return nil
	}

	if s.status == Exception {
		return fmt.Errorf("%w: cannot record %s while an exception is open", ErrIllegalTransition, slot)
	}

	s.ledger = ledger
	if pickup != nil {
		s.serviceProvider = strings.TrimSpace(pickup.ServiceProvider)
		s.deliveryAddress = strings.TrimSpace(pickup.DeliveryAddress)
	}
	s.transition(at)
	return nil
}

// ApplyExceptionAction drives the exception sub-workflow and appends one audit record.
//
// Business rules:
//   - Report needs a note, an InTransit or Delivered shipment and no open exception;
//     a previously resolved exception is reopened
//   - Followup, Resolve and Continue need an open (Reported or Following) exception
//   - Close is accepted from any exception status except Closed and is terminal
//   - Resolve and Continue hand the status back to the ledger
func (s *Shipment) ApplyExceptionAction(action ExceptionAction, note, actor string, at time.Time) error {
	if err := action.Validate(); err != nil {
		return err
	}
	at = normalizeTime(at)
	if at.IsZero() {
		return errs.NewValueIsRequiredError("exception action timestamp")
	}
	if err := s.checkUnlocked(); err != nil {
		if s.status == ExceptionClosed {
			return fmt.Errorf("%w: the exception is closed", ErrIllegalTransition)
		}
		return err
	}

	note = strings.TrimSpace(note)
	actor = strings.TrimSpace(actor)

	if action == ActionReport {
		return s.report(note, actor, at)
	}

	if s.exception == nil {
		return fmt.Errorf("%w: no exception to %s", ErrIllegalTransition, strings.ToLower(action.String()))
	}

	var (
		next ExceptionStatus
		err  error
	)
	switch action {
	case ActionFollowup:
		next, err = s.exception.status.Followup()
	case ActionResolve, ActionContinue:
		next, err = s.exception.status.Resolve()
	case ActionClose:
		next, err = s.exception.status.Close()
	}
	if err != nil {
		return err
	}

	exception := s.exception.clone()
	exception.status = next
	exception.append(action, note, actor, at)
	s.exception = exception
	s.transition(at)
	return nil
}

// MarkCompleted administratively closes a delivered shipment. There is no way back.
func (s *Shipment) MarkCompleted() error {
	if s.completed {
		return ErrAlreadyCompleted
	}
	if s.status != Delivered {
		return fmt.Errorf("%w: status is %s", ErrNotDeliverable, s.status)
	}

	s.completed = true
	s.version++
	return nil
}

// Clone returns a deep copy, including pending domain events.
func (s *Shipment) Clone() *Shipment {
	c := *s
	c.exception = s.exception.clone()
	c.events = slices.Clone(s.events)
	return &c
}

func (s *Shipment) report(note, actor string, at time.Time) error {
	if note == "" {
		return errs.NewValueIsRequiredError("exception note")
	}
	if s.exception != nil && s.exception.status.IsLive() {
		return fmt.Errorf("%w: an exception is already %s", ErrIllegalTransition, s.exception.status)
	}
	if s.status != InTransit && s.status != Delivered {
		return fmt.Errorf("%w: cannot report an exception for a %s shipment", ErrIllegalTransition, s.status)
	}

	exception := s.exception.clone()
	if exception == nil {
		exception = &ExceptionState{}
	}
	exception.status = Reported
	exception.note = note
	exception.reportedAt = at
	exception.append(ActionReport, note, actor, at)

	s.exception = exception
	s.transition(at)
	return nil
}

func (s *Shipment) checkUnlocked() error {
	switch {
	case s.completed:
		return fmt.Errorf("%w: shipment %s is completed", ErrRecordLocked, s.id)
	case s.status == ExceptionClosed:
		return fmt.Errorf("%w: shipment %s is exception-closed", ErrRecordLocked, s.id)
	}
	return nil
}

func (s *Shipment) samePickup(pickup *PickupDetails) bool {
	if pickup == nil {
		return true
	}
	return strings.TrimSpace(pickup.ServiceProvider) == s.serviceProvider &&
		strings.TrimSpace(pickup.DeliveryAddress) == s.deliveryAddress
}

// transition recomputes the status after a change, bumps the version and records
// an event when the exception track was entered or left.
func (s *Shipment) transition(at time.Time) {
	from := s.status
	s.status = deriveStatus(s.ledger.CurrentStep(), s.exception)
	s.version++

	if from != s.status && (from == Exception || s.status == Exception) {
		s.events = append(s.events, StatusChanged{
			ShipmentID: s.id,
			From:       from,
			To:         s.status,
			OccurredAt: at,
		})
	}
}
