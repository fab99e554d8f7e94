package shipment

import (
	"fmt"
	"time"

	"cmr/internal/pkg/errs"
)

// MilestoneCount is the number of physical milestones in a delivery.
const MilestoneCount = 5

// TimestampPrecision is the resolution every timestamp is truncated to on the
// way into the model. Postgres timestamptz keeps microseconds, so a reloaded
// value compares equal to the one that was submitted.
const TimestampPrecision = time.Microsecond

func normalizeTime(t time.Time) time.Time {
	return t.Truncate(TimestampPrecision)
}

// MilestoneSlot identifies one of the five ordered milestones. Slots are 1-based so
// that a slot equals the current step it produces once recorded.
type MilestoneSlot int

const (
	Pickup MilestoneSlot = iota + 1
	TransitArrival
	ActualArrival
	UnloadingComplete
	Confirmed
)

var milestoneSlotNames = [...]string{
	Pickup:            "Pickup",
	TransitArrival:    "TransitArrival",
	ActualArrival:     "ActualArrival",
	UnloadingComplete: "UnloadingComplete",
	Confirmed:         "Confirmed",
}

// AllMilestoneSlots lists the slots in the order they must be filled.
func AllMilestoneSlots() []MilestoneSlot {
	return []MilestoneSlot{Pickup, TransitArrival, ActualArrival, UnloadingComplete, Confirmed}
}

func (m MilestoneSlot) Validate() error {
	if m < Pickup || m > Confirmed {
		return errs.NewValueIsOutOfRangeError("milestone slot", int(m), int(Pickup), int(Confirmed))
	}
	return nil
}

func (m MilestoneSlot) String() string {
	if m.Validate() != nil {
		return fmt.Sprintf("MilestoneSlot(%d)", int(m))
	}
	return milestoneSlotNames[m]
}

// Milestone is one slot of the ledger. A zero At means the slot is still empty.
type Milestone struct {
	at   time.Time
	note string
}

// NewMilestone builds a recorded milestone, used when restoring from storage.
func NewMilestone(at time.Time, note string) Milestone {
	return Milestone{at: normalizeTime(at), note: note}
}

func (m Milestone) At() time.Time {
	return m.at
}

func (m Milestone) Note() string {
	return m.note
}

func (m Milestone) IsRecorded() bool {
	return !m.at.IsZero()
}

func (m Milestone) sameAs(at time.Time, note string) bool {
	return m.at.Equal(at) && m.note == note
}

// Ledger holds the five milestones of one shipment.
//
// Invariant: recorded slots form a prefix. CurrentStep is therefore both the
// number of recorded slots and the index of the last one.
type Ledger struct {
	slots [MilestoneCount]Milestone
}

// RestoreLedger rebuilds a ledger from stored milestones, rejecting gaps.
func RestoreLedger(milestones [MilestoneCount]Milestone) (Ledger, error) {
	l := Ledger{slots: milestones}

	step := l.CurrentStep()
	for i := step; i < MilestoneCount; i++ {
		if milestones[i].IsRecorded() {
			return Ledger{}, errs.NewValueIsInvalidErrorWithCause(
				"milestones",
				fmt.Errorf("%s is recorded but %s is not", MilestoneSlot(i+1), MilestoneSlot(step+1)),
			)
		}
	}
	return l, nil
}

// CurrentStep counts contiguously recorded milestones from Pickup: 0..5.
func (l Ledger) CurrentStep() int {
	step := 0
	for _, m := range l.slots {
		if !m.IsRecorded() {
			break
		}
		step++
	}
	return step
}

// Milestone returns the content of a slot. The slot must be valid.
func (l Ledger) Milestone(slot MilestoneSlot) Milestone {
	return l.slots[slot-1]
}

// Milestones returns a copy of all five slots in order.
func (l Ledger) Milestones() [MilestoneCount]Milestone {
	return l.slots
}

// record fills the next slot. It returns changed=false for an identical resubmission
// of an already recorded slot.
func (l *Ledger) record(slot MilestoneSlot, at time.Time, note string) (bool, error) {
	step := l.CurrentStep()

	if int(slot) <= step {
		if l.Milestone(slot).sameAs(at, note) {
			return false, nil
		}
		return false, fmt.Errorf("%w: %s is already recorded with different values", ErrOutOfOrderMilestone, slot)
	}

	if int(slot) != step+1 {
		return false, fmt.Errorf("%w: expected %s, got %s", ErrOutOfOrderMilestone, MilestoneSlot(step+1), slot)
	}

	l.slots[slot-1] = Milestone{at: at, note: note}
	return true, nil
}
