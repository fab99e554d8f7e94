package shipment

import (
	"fmt"
	"time"
)

// Event is an input to the delivery state machine.
type Event interface {
	// Name identifies the event in logs and error messages.
	Name() string

	applyTo(s *Shipment) error
}

// RecordMilestoneEvent fills a milestone slot. Pickup is only valid with the Pickup slot.
type RecordMilestoneEvent struct {
	Slot   MilestoneSlot
	At     time.Time
	Note   string
	Pickup *PickupDetails
}

func (e RecordMilestoneEvent) Name() string {
	return "RecordMilestone(" + e.Slot.String() + ")"
}

func (e RecordMilestoneEvent) applyTo(s *Shipment) error {
	return s.RecordMilestone(e.Slot, e.At, e.Note, e.Pickup)
}

// ExceptionActionEvent drives the exception sub-workflow.
type ExceptionActionEvent struct {
	Action ExceptionAction
	Note   string
	Actor  string
	At     time.Time
}

func (e ExceptionActionEvent) Name() string {
	return e.Action.String()
}

func (e ExceptionActionEvent) applyTo(s *Shipment) error {
	return s.ApplyExceptionAction(e.Action, e.Note, e.Actor, e.At)
}

// MarkCompletedEvent passes the completion gate.
type MarkCompletedEvent struct{}

func (MarkCompletedEvent) Name() string {
	return "MarkCompleted"
}

func (MarkCompletedEvent) applyTo(s *Shipment) error {
	return s.MarkCompleted()
}

// Apply is the transition function of the workflow: it returns a new shipment with
// every event applied in order, or an error and no shipment. current is never
// modified, so a failed call cannot leave a partial write behind.
//
// When no event changes anything (an identical milestone resubmission) the result
// has the same Version as current; callers use that to skip the save.
//
//	next, err := shipment.Apply(current, shipment.RecordMilestoneEvent{Slot: shipment.Pickup, At: now})
//	if err != nil {
//	    return err
//	}
//	if next.Version() != current.Version() {
//	    err = repo.Update(ctx, next, current.Version())
//	}
func Apply(current *Shipment, events ...Event) (*Shipment, error) {
	if err := current.Validate(); err != nil {
		return nil, err
	}

	next := current.Clone()
	for _, event := range events {
		if event == nil {
			continue
		}
		if err := event.applyTo(next); err != nil {
			return nil, fmt.Errorf("%s on shipment %s: %w", event.Name(), current.ID(), err)
		}
	}
	return next, nil
}
