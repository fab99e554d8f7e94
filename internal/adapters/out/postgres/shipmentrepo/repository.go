package shipmentrepo

import (
	"context"
	"errors"
	"time"

	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/core/domain/model/shipment"
	"cmr/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormShipmentRepository implements ports.ShipmentRepository using GORM.
type GormShipmentRepository struct {
	db      *gorm.DB
	tracker aggregateTracker
}

// aggregateTracker defines the interface for tracking aggregates.
type aggregateTracker interface {
	TrackAggregate(id kernel.UUID, aggregate any)
}

// NewGormShipmentRepository creates a new GORM shipment repository.
func NewGormShipmentRepository(db *gorm.DB, tracker aggregateTracker) *GormShipmentRepository {
	return &GormShipmentRepository{
		db:      db,
		tracker: tracker,
	}
}

// Add saves a newly registered shipment.
func (r *GormShipmentRepository) Add(ctx context.Context, aggregate *shipment.Shipment) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	if err := r.db.WithContext(ctx).Create(&dto).Error; err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Update saves a changed shipment when the stored version equals expectedVersion.
//
// Milestones and audit records are append-only, so existing child rows are kept
// and only new ones are inserted. The exception row is upserted.
func (r *GormShipmentRepository) Update(ctx context.Context, aggregate *shipment.Shipment, expectedVersion int64) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&ShipmentDTO{}).
			Where("id = ? AND version = ?", dto.ID, expectedVersion).
			Updates(map[string]any{
				"status":           dto.Status,
				"current_step":     dto.CurrentStep,
				"service_provider": dto.ServiceProvider,
				"delivery_address": dto.DeliveryAddress,
				"completed":        dto.Completed,
				"version":          dto.Version,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return r.missingOrConflict(tx, aggregate.ID(), expectedVersion)
		}

		if len(dto.Milestones) > 0 {
			if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&dto.Milestones).Error; err != nil {
				return err
			}
		}

		if dto.Exception == nil {
			return nil
		}
		if err := tx.Omit(clause.Associations).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "shipment_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"status", "note", "reported_at", "last_activity_at"}),
		}).Create(dto.Exception).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&dto.Exception.Records).Error
	})
	if err != nil {
		return err
	}

	r.tracker.TrackAggregate(aggregate.ID(), aggregate)
	return nil
}

// Get retrieves a shipment with its milestones and exception trail.
func (r *GormShipmentRepository) Get(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}

	var dto ShipmentDTO
	if err := r.aggregates(ctx).First(&dto, "id = ?", id.Bytes()).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("shipment", id.String())
		}
		return nil, err
	}

	return toDomain(dto)
}

// GetAllActive retrieves shipments that are neither completed nor exception-closed.
func (r *GormShipmentRepository) GetAllActive(ctx context.Context) ([]*shipment.Shipment, error) {
	var dtos []ShipmentDTO
	if err := r.aggregates(ctx).
		Where("completed = ? AND status <> ?", false, int(shipment.ExceptionClosed)).
		Order("id").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainAll(dtos)
}

// GetStaleExceptions retrieves shipments whose live exception saw no audit
// activity since before, oldest activity first.
func (r *GormShipmentRepository) GetStaleExceptions(ctx context.Context, before time.Time) ([]*shipment.Shipment, error) {
	var dtos []ShipmentDTO
	if err := r.aggregates(ctx).
		Table("shipments").
		Select("shipments.*").
		Joins("JOIN shipment_exceptions ON shipment_exceptions.shipment_id = shipments.id").
		Where("shipment_exceptions.status IN ? AND shipment_exceptions.last_activity_at < ?",
			[]int{int(shipment.Reported), int(shipment.Following)}, before.UTC()).
		Order("shipment_exceptions.last_activity_at").
		Find(&dtos).Error; err != nil {
		return nil, err
	}

	return toDomainAll(dtos)
}

func (r *GormShipmentRepository) aggregates(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Milestones", func(db *gorm.DB) *gorm.DB { return db.Order("slot") }).
		Preload("Exception").
		Preload("Exception.Records", func(db *gorm.DB) *gorm.DB { return db.Order("seq") })
}

// missingOrConflict tells an unknown shipment from a stale expected version.
func (r *GormShipmentRepository) missingOrConflict(tx *gorm.DB, id kernel.UUID, expectedVersion int64) error {
	var count int64
	if err := tx.Model(&ShipmentDTO{}).Where("id = ?", id.Bytes()).Count(&count).Error; err != nil {
		return err
	}
	if count == 0 {
		return errs.NewObjectNotFoundError("shipment", id.String())
	}
	return errs.NewVersionConflictError("shipment", id.String(), expectedVersion)
}

func toDomainAll(dtos []ShipmentDTO) ([]*shipment.Shipment, error) {
	shipments := make([]*shipment.Shipment, 0, len(dtos))
	for _, dto := range dtos {
		s, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		shipments = append(shipments, s)
	}
	return shipments, nil
}
