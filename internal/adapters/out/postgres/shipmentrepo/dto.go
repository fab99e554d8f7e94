// Package shipmentrepo persists shipment aggregates with GORM.
// A shipment row carries the derived status and a version counter used for
// optimistic locking; milestones and the exception audit trail live in child tables.
package shipmentrepo

import (
	"time"

	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/core/domain/model/shipment"

	"github.com/google/uuid"
)

// ShipmentDTO is the shipments table. Status is stored for filtering only and is
// derived again when the aggregate is restored.
type ShipmentDTO struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey"`
	Status          int            `gorm:"type:smallint;not null;index"`
	CurrentStep     int            `gorm:"type:smallint;not null"`
	ServiceProvider string         `gorm:"type:varchar(255);not null;default:''"`
	DeliveryAddress string         `gorm:"type:varchar(512);not null;default:''"`
	Completed       bool           `gorm:"not null;default:false;index"`
	Version         int64          `gorm:"not null"`
	Milestones      []MilestoneDTO `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE"`
	Exception       *ExceptionDTO  `gorm:"foreignKey:ShipmentID;constraint:OnDelete:CASCADE"`
}

func (ShipmentDTO) TableName() string {
	return "shipments"
}

// MilestoneDTO is one recorded ledger slot. Empty slots have no row.
type MilestoneDTO struct {
	ShipmentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Slot       int       `gorm:"type:smallint;primaryKey"`
	At         time.Time `gorm:"not null"`
	Note       string    `gorm:"type:text;not null;default:''"`
}

func (MilestoneDTO) TableName() string {
	return "shipment_milestones"
}

// ExceptionDTO is the exception track of a shipment, at most one per shipment.
// LastActivityAt mirrors the newest audit record so stale exceptions can be
// found without scanning the trail.
type ExceptionDTO struct {
	ShipmentID     uuid.UUID            `gorm:"type:uuid;primaryKey"`
	Status         int                  `gorm:"type:smallint;not null;index"`
	Note           string               `gorm:"type:text;not null"`
	ReportedAt     time.Time            `gorm:"not null"`
	LastActivityAt time.Time            `gorm:"not null;index"`
	Records        []ExceptionRecordDTO `gorm:"foreignKey:ShipmentID;references:ShipmentID;constraint:OnDelete:CASCADE"`
}

func (ExceptionDTO) TableName() string {
	return "shipment_exceptions"
}

// ExceptionRecordDTO is one append-only audit entry. Seq is its 0-based position.
type ExceptionRecordDTO struct {
	ShipmentID uuid.UUID `gorm:"type:uuid;primaryKey"`
	Seq        int       `gorm:"primaryKey"`
	Action     int       `gorm:"type:smallint;not null"`
	Note       string    `gorm:"type:text;not null;default:''"`
	Actor      string    `gorm:"type:varchar(255);not null;default:''"`
	At         time.Time `gorm:"not null"`
}

func (ExceptionRecordDTO) TableName() string {
	return "shipment_exception_records"
}

// Models lists every table of the package in migration order.
func Models() []any {
	return []any{&ShipmentDTO{}, &MilestoneDTO{}, &ExceptionDTO{}, &ExceptionRecordDTO{}}
}

func fromDomain(s *shipment.Shipment) ShipmentDTO {
	id := s.ID().Bytes()

	dto := ShipmentDTO{
		ID:              id,
		Status:          int(s.Status()),
		CurrentStep:     s.CurrentStep(),
		ServiceProvider: s.ServiceProvider(),
		DeliveryAddress: s.DeliveryAddress(),
		Completed:       s.IsCompleted(),
		Version:         s.Version(),
		Milestones:      make([]MilestoneDTO, 0, shipment.MilestoneCount),
	}

	ledger := s.Ledger()
	for _, slot := range shipment.AllMilestoneSlots() {
		m := ledger.Milestone(slot)
		if !m.IsRecorded() {
			break
		}
		dto.Milestones = append(dto.Milestones, MilestoneDTO{
			ShipmentID: id,
			Slot:       int(slot),
			At:         m.At().UTC(),
			Note:       m.Note(),
		})
	}

	if exception := s.Exception(); exception != nil {
		records := exception.Records()
		e := &ExceptionDTO{
			ShipmentID:     id,
			Status:         int(exception.Status()),
			Note:           exception.Note(),
			ReportedAt:     exception.ReportedAt().UTC(),
			LastActivityAt: exception.LastActivityAt().UTC(),
			Records:        make([]ExceptionRecordDTO, 0, len(records)),
		}
		for i, r := range records {
			e.Records = append(e.Records, ExceptionRecordDTO{
				ShipmentID: id,
				Seq:        i,
				Action:     int(r.Action()),
				Note:       r.Note(),
				Actor:      r.Actor(),
				At:         r.At().UTC(),
			})
		}
		dto.Exception = e
	}

	return dto
}

func toDomain(dto ShipmentDTO) (*shipment.Shipment, error) {
	id, err := kernel.UUIDFromBytes(dto.ID[:])
	if err != nil {
		return nil, err
	}

	var milestones [shipment.MilestoneCount]shipment.Milestone
	for _, m := range dto.Milestones {
		slot := shipment.MilestoneSlot(m.Slot)
		if err = slot.Validate(); err != nil {
			return nil, err
		}
		milestones[slot-1] = shipment.NewMilestone(m.At.UTC(), m.Note)
	}
	ledger, err := shipment.RestoreLedger(milestones)
	if err != nil {
		return nil, err
	}

	var exception *shipment.ExceptionState
	if dto.Exception != nil {
		if exception, err = exceptionToDomain(*dto.Exception); err != nil {
			return nil, err
		}
	}

	return shipment.RestoreShipment(
		id,
		ledger,
		shipment.PickupDetails{ServiceProvider: dto.ServiceProvider, DeliveryAddress: dto.DeliveryAddress},
		exception,
		dto.Completed,
		dto.Version,
	)
}

func exceptionToDomain(dto ExceptionDTO) (*shipment.ExceptionState, error) {
	records := make([]shipment.ExceptionRecord, 0, len(dto.Records))
	for _, r := range dto.Records {
		record, err := shipment.NewExceptionRecord(shipment.ExceptionAction(r.Action), r.Note, r.Actor, r.At.UTC())
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return shipment.RestoreExceptionState(
		shipment.ExceptionStatus(dto.Status),
		dto.Note,
		dto.ReportedAt.UTC(),
		records,
	)
}
