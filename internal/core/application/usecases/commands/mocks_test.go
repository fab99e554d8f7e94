package commands_test

import (
	"context"
	"time"

	"cmr/internal/core/application/usecases/commands"
	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/core/domain/model/shipment"
	"cmr/internal/core/ports"

	"github.com/stretchr/testify/mock"
)

type MockShipmentRepository struct{ mock.Mock }

func (m *MockShipmentRepository) Add(ctx context.Context, s *shipment.Shipment) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockShipmentRepository) Update(ctx context.Context, s *shipment.Shipment, expectedVersion int64) error {
	args := m.Called(ctx, s, expectedVersion)
	return args.Error(0)
}

func (m *MockShipmentRepository) Get(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) GetAllActive(ctx context.Context) ([]*shipment.Shipment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shipment.Shipment), args.Error(1)
}

func (m *MockShipmentRepository) GetStaleExceptions(ctx context.Context, before time.Time) ([]*shipment.Shipment, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shipment.Shipment), args.Error(1)
}

type MockShipmentUoW struct{ mock.Mock }

func (m *MockShipmentUoW) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockShipmentUoW) Commit(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockShipmentUoW) Rollback(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockShipmentUoW) ShipmentRepository() ports.ShipmentRepository {
	args := m.Called()
	return args.Get(0).(ports.ShipmentRepository)
}

type MockShipmentUoWFactory struct{ mock.Mock }

func (m *MockShipmentUoWFactory) Create() commands.ShipmentUoW {
	args := m.Called()
	return args.Get(0).(commands.ShipmentUoW)
}

type MockSnapshotCache struct{ mock.Mock }

func (m *MockSnapshotCache) Get(ctx context.Context, id kernel.UUID) ([]byte, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockSnapshotCache) Set(ctx context.Context, id kernel.UUID, version int64, snapshot []byte) error {
	args := m.Called(ctx, id, version, snapshot)
	return args.Error(0)
}

func (m *MockSnapshotCache) Invalidate(ctx context.Context, id kernel.UUID, version int64) error {
	args := m.Called(ctx, id, version)
	return args.Error(0)
}

var baseTime = time.Date(2026, time.March, 2, 8, 0, 0, 0, time.UTC)

func at(hours int) time.Time {
	return baseTime.Add(time.Duration(hours) * time.Hour)
}

// storedShipment builds a shipment with the first step milestones recorded, as a
// repository would return it.
func storedShipment(step int) *shipment.Shipment {
	s, err := shipment.NewShipment(kernel.NewUUID())
	if err != nil {
		panic(err)
	}
	for i := 1; i <= step; i++ {
		if err = s.RecordMilestone(shipment.MilestoneSlot(i), at(i), "", nil); err != nil {
			panic(err)
		}
	}
	s.ClearDomainEvents()
	return s
}
