package jobs

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
	s, _ := args.Get(0).(*shipment.Shipment)
	return s, args.Error(1)
}

func (m *MockShipmentReader) GetAllActive(ctx context.Context) ([]*shipment.Shipment, error) {
	args := m.Called(ctx)
	s, _ := args.Get(0).([]*shipment.Shipment)
	return s, args.Error(1)
}

func (m *MockShipmentReader) GetStaleExceptions(ctx context.Context, before time.Time) ([]*shipment.Shipment, error) {
	args := m.Called(ctx, before)
	s, _ := args.Get(0).([]*shipment.Shipment)
	return s, args.Error(1)
}

type MockSnapshotWarmer struct{ mock.Mock }

func (m *MockSnapshotWarmer) Warm(ctx context.Context, s *shipment.Shipment) error {
	return m.Called(ctx, s).Error(0)
}
