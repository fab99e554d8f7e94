package queries_test

import (
	"encoding/json"
	"errors"
	"testing"

	"cmr/internal/core/application/usecases/queries"
	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/core/ports"
	"cmr/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestGetDeliverySnapshotQuery(t *testing.T) {
	id := kernel.NewUUID()

	query, err := queries.NewGetDeliverySnapshotQuery(id)
	require.NoError(t, err)
	assert.Equal(t, id, query.ShipmentID())
	assert.NoError(t, query.Validate())

	_, err = queries.NewGetDeliverySnapshotQuery(kernel.UUID{})
	require.ErrorIs(t, err, kernel.ErrUUIDIsNotConstructed)

	assert.ErrorIs(t, queries.GetDeliverySnapshotQuery{}.Validate(), queries.ErrGetDeliverySnapshotQueryIsNotConstructed)
}

func TestGetDeliverySnapshotQueryHandler_Handle(t *testing.T) {
	t.Run("should serve a cached snapshot without reading storage", func(t *testing.T) {
		ctx := t.Context()
		s := shipmentAtStep(kernel.NewUUID(), 2)
		cached, err := json.Marshal(queries.NewDeliverySnapshot(s))
		require.NoError(t, err)

		reader := new(MockShipmentReader)
		cache := new(MockSnapshotCache)
		cache.On("Get", ctx, s.ID()).Return(cached, nil).Once()

		handler := queries.NewGetDeliverySnapshotQueryHandler(reader, cache, nil)
		query, _ := queries.NewGetDeliverySnapshotQuery(s.ID())

		snapshot, err := handler.Handle(ctx, query)

		require.NoError(t, err)
		served, err := json.Marshal(snapshot)
		require.NoError(t, err)
		assert.JSONEq(t, string(cached), string(served))
		reader.AssertNotCalled(t, "Get", mock.Anything, mock.Anything)
		cache.AssertExpectations(t)
	})

	t.Run("should load and cache on a miss", func(t *testing.T) {
		ctx := t.Context()
		s := shipmentAtStep(kernel.NewUUID(), 3)
		expected, err := json.Marshal(queries.NewDeliverySnapshot(s))
		require.NoError(t, err)

		reader := new(MockShipmentReader)
		cache := new(MockSnapshotCache)
		mock.InOrder(
			cache.On("Get", ctx, s.ID()).Return(nil, ports.ErrCacheMiss).Once(),
			reader.On("Get", ctx, s.ID()).Return(s, nil).Once(),
			cache.On("Set", ctx, s.ID(), s.Version(), expected).Return(nil).Once(),
		)

		handler := queries.NewGetDeliverySnapshotQueryHandler(reader, cache, nil)
		query, _ := queries.NewGetDeliverySnapshotQuery(s.ID())

		snapshot, err := handler.Handle(ctx, query)

		require.NoError(t, err)
		assert.Equal(t, 3, snapshot.CurrentStep)
		assert.Equal(t, "InTransit", snapshot.DeliveryStatus)
		reader.AssertExpectations(t)
		cache.AssertExpectations(t)
	})

	t.Run("should fall back to storage when the cache fails", func(t *testing.T) {
		ctx := t.Context()
		s := shipmentAtStep(kernel.NewUUID(), 1)

		reader := new(MockShipmentReader)
		cache := new(MockSnapshotCache)
		cache.On("Get", ctx, s.ID()).Return(nil, errors.New("redis down")).Once()
		reader.On("Get", ctx, s.ID()).Return(s, nil).Once()
		cache.On("Set", ctx, s.ID(), s.Version(), mock.Anything).Return(errors.New("redis down")).Once()

		core, logs := observer.New(zap.WarnLevel)
		handler := queries.NewGetDeliverySnapshotQueryHandler(reader, cache, zap.New(core))
		query, _ := queries.NewGetDeliverySnapshotQuery(s.ID())

		snapshot, err := handler.Handle(ctx, query)

		require.NoError(t, err)
		assert.Equal(t, s.ID().String(), snapshot.ShipmentID)
		assert.Equal(t, 1, logs.FilterMessage("snapshot cache read failed").Len())
		assert.Equal(t, 1, logs.FilterMessage("snapshot cache write failed").Len())
	})

	t.Run("should discard an undecodable cache entry", func(t *testing.T) {
		ctx := t.Context()
		s := shipmentAtStep(kernel.NewUUID(), 1)

		reader := new(MockShipmentReader)
		cache := new(MockSnapshotCache)
		cache.On("Get", ctx, s.ID()).Return([]byte("{not json"), nil).Once()
		reader.On("Get", ctx, s.ID()).Return(s, nil).Once()
		cache.On("Set", ctx, s.ID(), s.Version(), mock.Anything).Return(nil).Once()

		handler := queries.NewGetDeliverySnapshotQueryHandler(reader, cache, nil)
		query, _ := queries.NewGetDeliverySnapshotQuery(s.ID())

		snapshot, err := handler.Handle(ctx, query)

		require.NoError(t, err)
		assert.Equal(t, 1, snapshot.CurrentStep)
	})

	t.Run("should work without a cache", func(t *testing.T) {
		ctx := t.Context()
		s := shipmentAtStep(kernel.NewUUID(), 5)

		reader := new(MockShipmentReader)
		reader.On("Get", ctx, s.ID()).Return(s, nil).Once()

		handler := queries.NewGetDeliverySnapshotQueryHandler(reader, nil, nil)
		query, _ := queries.NewGetDeliverySnapshotQuery(s.ID())

		snapshot, err := handler.Handle(ctx, query)

		require.NoError(t, err)
		assert.Equal(t, "Delivered", snapshot.DeliveryStatus)
		assert.NoError(t, handler.Warm(ctx, s))
	})

	t.Run("should return not found", func(t *testing.T) {
		ctx := t.Context()
		id := kernel.NewUUID()

		reader := new(MockShipmentReader)
		reader.On("Get", ctx, id).Return(nil, errs.NewObjectNotFoundError("shipment", id.String())).Once()

		handler := queries.NewGetDeliverySnapshotQueryHandler(reader, nil, nil)
		query, _ := queries.NewGetDeliverySnapshotQuery(id)

		_, err := handler.Handle(ctx, query)

		require.ErrorIs(t, err, errs.ErrObjectNotFound)
	})

	t.Run("should reject a query that was not constructed", func(t *testing.T) {
		handler := queries.NewGetDeliverySnapshotQueryHandler(new(MockShipmentReader), nil, nil)

		_, err := handler.Handle(t.Context(), queries.GetDeliverySnapshotQuery{})

		require.ErrorIs(t, err, queries.ErrGetDeliverySnapshotQueryIsNotConstructed)
	})
}

func TestGetDeliverySnapshotQueryHandler_Warm(t *testing.T) {
	ctx := t.Context()
	s := shipmentAtStep(kernel.NewUUID(), 4)
	expected, err := json.Marshal(queries.NewDeliverySnapshot(s))
	require.NoError(t, err)

	cache := new(MockSnapshotCache)
	cache.On("Set", ctx, s.ID(), s.Version(), expected).Return(nil).Once()

	handler := queries.NewGetDeliverySnapshotQueryHandler(new(MockShipmentReader), cache, nil)

	require.NoError(t, handler.Warm(ctx, s))
	cache.AssertExpectations(t)
}
