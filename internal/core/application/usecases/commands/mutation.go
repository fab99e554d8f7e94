package commands

import (
	"context"

	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/core/domain/model/shipment"
	"cmr/internal/core/ports"
	"cmr/internal/pkg/lock"

	"go.uber.org/zap"
)

// mutation is the load-apply-save cycle shared by the handlers that change an
// existing shipment.
type mutation struct {
	uowFactory ShipmentUoWFactory
	locks      *lock.MutexMap
	cache      ports.SnapshotCache
	logger     *zap.Logger
}

func newMutation(
	uowFactory ShipmentUoWFactory,
	locks *lock.MutexMap,
	cache ports.SnapshotCache,
	logger *zap.Logger,
	component string,
) mutation {
	if locks == nil {
		locks = lock.NewMutexMap()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return mutation{
		uowFactory: uowFactory,
		locks:      locks,
		cache:      cache,
		logger:     logger.With(zap.String("component", component)),
	}
}

// run applies events to the stored shipment and saves the result. An event list
// that changes nothing returns the current shipment without writing.
func (m mutation) run(ctx context.Context, id kernel.UUID, events ...shipment.Event) (*shipment.Shipment, error) {
	key := id.String()
	m.locks.Lock(key)
	defer m.locks.Unlock(key)

	uow := m.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ShipmentRepository()

	current, err := repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, err := shipment.Apply(current, events...)
	if err != nil {
		return nil, err
	}

	if next.Version() == current.Version() {
		return next, nil
	}

	if err = repo.Update(ctx, next, current.Version()); err != nil {
		return nil, err
	}

	if err = uow.Commit(ctx); err != nil {
		return nil, err
	}

	m.invalidate(ctx, id, next.Version())
	return next, nil
}

func (m mutation) invalidate(ctx context.Context, id kernel.UUID, version int64) {
	if m.cache == nil {
		return
	}
	if err := m.cache.Invalidate(ctx, id, version); err != nil {
		m.logger.Warn("failed to invalidate delivery snapshot",
			zap.String("shipment_id", id.String()),
			zap.Error(err),
		)
	}
}
