package queries_test

import (
	"context"
	"time"

	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/core/domain/model/shipment"

	"github.com/stretchr/testify/mock"
)

type MockShipmentReader struct{ mock.Mock }

func (m *MockShipmentReader) Get(ctx context.Context, id kernel.UUID) (*shipment.Shipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*shipment.Shipment), args.Error(1)
}

func (m *MockShipmentReader) GetAllActive(ctx context.Context) ([]*shipment.Shipment, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shipment.Shipment), args.Error(1)
}

func (m *MockShipmentReader) GetStaleExceptions(ctx context.Context, before time.Time) ([]*shipment.Shipment, error) {
	args := m.Called(ctx, before)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*shipment.Shipment), args.Error(1)
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

func shipmentAtStep(id kernel.UUID, step int) *shipment.Shipment {
	s, err := shipment.NewShipment(id)
	if err != nil {
		panic(err)
	}
	for i := 1; i <= step; i++ {
		if err = s.RecordMilestone(shipment.MilestoneSlot(i), at(i), "", nil); err != nil {
			panic(err)
		}
	}
	return s
}

func withException(id kernel.UUID, step int, reportedAt time.Time) *shipment.Shipment {
	s := shipmentAtStep(id, step)
	if err := s.ApplyExceptionAction(shipment.ActionReport, "customs hold", "ops", reportedAt); err != nil {
		panic(err)
	}
	return s
}
