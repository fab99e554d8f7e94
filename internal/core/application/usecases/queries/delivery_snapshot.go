package queries

import (
	"time"

	"cmr/internal/core/domain/model/shipment"
)

// DeliverySnapshot is the full read model of one shipment. It is the JSON body of
// the delivery endpoint and the value stored in the snapshot cache.
type DeliverySnapshot struct {
	ShipmentID      string              `json:"shipmentId"`
	DeliveryStatus  string              `json:"deliveryStatus"`
	CurrentStep     int                 `json:"currentStep"`
	ServiceProvider string              `json:"serviceProvider,omitempty"`
	DeliveryAddress string              `json:"deliveryAddress,omitempty"`
	Milestones      []MilestoneSnapshot `json:"milestones"`
	Exception       *ExceptionSnapshot  `json:"exception,omitempty"`
	Completed       bool                `json:"completed"`
	Version         int64               `json:"version"`
}

// MilestoneSnapshot is one ledger slot. Timestamp is nil while the slot is empty.
type MilestoneSnapshot struct {
	Slot      int        `json:"slot"`
	Name      string     `json:"name"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
	Note      string     `json:"note,omitempty"`
}

type ExceptionSnapshot struct {
	Status     string                    `json:"status"`
	Note       string                    `json:"note"`
	ReportedAt time.Time                 `json:"reportedAt"`
	Records    []ExceptionRecordSnapshot `json:"records"`
}

type ExceptionRecordSnapshot struct {
	Action    string    `json:"action"`
	Note      string    `json:"note,omitempty"`
	Actor     string    `json:"actor,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// NewDeliverySnapshot projects a shipment into its read model. Timestamps are
// rendered in UTC.
func NewDeliverySnapshot(s *shipment.Shipment) DeliverySnapshot {
	snapshot := DeliverySnapshot{
		ShipmentID:      s.ID().String(),
		DeliveryStatus:  s.Status().String(),
		CurrentStep:     s.CurrentStep(),
		ServiceProvider: s.ServiceProvider(),
		DeliveryAddress: s.DeliveryAddress(),
		Milestones:      make([]MilestoneSnapshot, 0, shipment.MilestoneCount),
		Completed:       s.IsCompleted(),
		Version:         s.Version(),
	}

	ledger := s.Ledger()
	for _, slot := range shipment.AllMilestoneSlots() {
		m := ledger.Milestone(slot)
		ms := MilestoneSnapshot{Slot: int(slot), Name: slot.String(), Note: m.Note()}
		if m.IsRecorded() {
			ts := m.At().UTC()
			ms.Timestamp = &ts
		}
		snapshot.Milestones = append(snapshot.Milestones, ms)
	}

	snapshot.Exception = NewExceptionSnapshot(s.Exception())

	return snapshot
}

// NewExceptionSnapshot projects an exception track. It returns nil for nil.
func NewExceptionSnapshot(exception *shipment.ExceptionState) *ExceptionSnapshot {
	if exception == nil {
		return nil
	}

	records := exception.Records()
	es := &ExceptionSnapshot{
		Status:     exception.Status().String(),
		Note:       exception.Note(),
		ReportedAt: exception.ReportedAt().UTC(),
		Records:    make([]ExceptionRecordSnapshot, 0, len(records)),
	}
	for _, r := range records {
		es.Records = append(es.Records, ExceptionRecordSnapshot{
			Action:    r.Action().String(),
			Note:      r.Note(),
			Actor:     r.Actor(),
			Timestamp: r.At().UTC(),
		})
	}
	return es
}
