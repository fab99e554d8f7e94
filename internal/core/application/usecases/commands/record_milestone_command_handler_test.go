package commands_test

import (
	"errors"
	"sync"
	"testing"

	"cmr/internal/core/application/usecases/commands"
	"cmr/internal/core/domain/model/shipment"
	"cmr/internal/pkg/errs"
	"cmr/internal/pkg/lock"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestRecordMilestoneCommandHandler_Handle_Success(t *testing.T) {
	ctx := t.Context()
	current := storedShipment(2)
	cmd, err := commands.NewRecordMilestoneCommand(current.ID(), shipment.ActualArrival, at(3), "berth 4", nil, nil)
	require.NoError(t, err)

	repo := new(MockShipmentRepository)
	uow := new(MockShipmentUoW)
	factory := new(MockShipmentUoWFactory)
	cache := new(MockSnapshotCache)

	mock.InOrder(
		factory.On("Create").Return(uow).Once(),
		uow.On("Begin", ctx).Return(nil).Once(),
		uow.On("ShipmentRepository").Return(repo).Once(),
		repo.On("Get", ctx, current.ID()).Return(current, nil).Once(),
		repo.On("Update", ctx, mock.AnythingOfType("*shipment.Shipment"), current.Version()).Return(nil).Once(),
		uow.On("Commit", ctx).Return(nil).Once(),
		cache.On("Invalidate", ctx, current.ID(), current.Version()+1).Return(nil).Once(),
		uow.On("Rollback", ctx).Return(nil).Once(),
	)

	handler := commands.NewRecordMilestoneCommandHandler(factory, lock.NewMutexMap(), cache, zap.NewNop())
	updated, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, 3, updated.CurrentStep())
	assert.Equal(t, current.Version()+1, updated.Version())
	assert.Equal(t, 2, current.CurrentStep(), "loaded shipment must not be modified")
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
	cache.AssertExpectations(t)
}

func TestRecordMilestoneCommandHandler_Handle_WithException(t *testing.T) {
	ctx := t.Context()
	current := storedShipment(2)
	cmd, err := commands.NewRecordMilestoneCommand(current.ID(), shipment.ActualArrival, at(3), "", nil,
		&commands.ExceptionInput{Action: shipment.ActionReport, Note: "customs hold", Actor: "ops"})
	require.NoError(t, err)

	repo := new(MockShipmentRepository)
	uow := new(MockShipmentUoW)
	factory := new(MockShipmentUoWFactory)

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ShipmentRepository").Return(repo).Once()
	repo.On("Get", ctx, current.ID()).Return(current, nil).Once()
	repo.On("Update", ctx, mock.MatchedBy(func(s *shipment.Shipment) bool {
		return s.CurrentStep() == 3 && s.Status() == shipment.Exception && len(s.DomainEvents()) == 1
	}), current.Version()).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := commands.NewRecordMilestoneCommandHandler(factory, nil, nil, nil)
	updated, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, shipment.Exception, updated.Status())
	repo.AssertExpectations(t)
	uow.AssertExpectations(t)
}

func TestRecordMilestoneCommandHandler_Handle_OutOfOrder(t *testing.T) {
	ctx := t.Context()
	current := storedShipment(3)
	cmd, err := commands.NewRecordMilestoneCommand(current.ID(), shipment.Confirmed, at(5), "", nil, nil)
	require.NoError(t, err)

	repo := new(MockShipmentRepository)
	uow := new(MockShipmentUoW)
	factory := new(MockShipmentUoWFactory)
	cache := new(MockSnapshotCache)

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ShipmentRepository").Return(repo).Once()
	repo.On("Get", ctx, current.ID()).Return(current, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := commands.NewRecordMilestoneCommandHandler(factory, nil, cache, nil)
	updated, err := handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, shipment.ErrOutOfOrderMilestone)
	assert.Nil(t, updated)
	assert.Equal(t, 3, current.CurrentStep())
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
	cache.AssertNotCalled(t, "Invalidate", mock.Anything, mock.Anything, mock.Anything)
}

func TestRecordMilestoneCommandHandler_Handle_IdenticalResubmissionSkipsSave(t *testing.T) {
	ctx := t.Context()
	current := storedShipment(2)
	cmd, err := commands.NewRecordMilestoneCommand(current.ID(), shipment.TransitArrival, at(2), "", nil, nil)
	require.NoError(t, err)

	repo := new(MockShipmentRepository)
	uow := new(MockShipmentUoW)
	factory := new(MockShipmentUoWFactory)

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ShipmentRepository").Return(repo).Once()
	repo.On("Get", ctx, current.ID()).Return(current, nil).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := commands.NewRecordMilestoneCommandHandler(factory, nil, nil, nil)
	updated, err := handler.Handle(ctx, cmd)

	require.NoError(t, err)
	assert.Equal(t, current.Version(), updated.Version())
	repo.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestRecordMilestoneCommandHandler_Handle_VersionConflict(t *testing.T) {
	ctx := t.Context()
	current := storedShipment(1)
	cmd, err := commands.NewRecordMilestoneCommand(current.ID(), shipment.TransitArrival, at(2), "", nil, nil)
	require.NoError(t, err)

	repo := new(MockShipmentRepository)
	uow := new(MockShipmentUoW)
	factory := new(MockShipmentUoWFactory)

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ShipmentRepository").Return(repo).Once()
	repo.On("Get", ctx, current.ID()).Return(current, nil).Once()
	repo.On("Update", ctx, mock.Anything, current.Version()).
		Return(errs.NewVersionConflictError("shipment", current.ID().String(), current.Version())).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := commands.NewRecordMilestoneCommandHandler(factory, nil, nil, nil)
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrVersionConflict)
	uow.AssertNotCalled(t, "Commit", mock.Anything)
}

func TestRecordMilestoneCommandHandler_Handle_NotFound(t *testing.T) {
	ctx := t.Context()
	current := storedShipment(0)
	cmd, err := commands.NewRecordMilestoneCommand(current.ID(), shipment.Pickup, at(1), "", nil, nil)
	require.NoError(t, err)

	repo := new(MockShipmentRepository)
	uow := new(MockShipmentUoW)
	factory := new(MockShipmentUoWFactory)

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ShipmentRepository").Return(repo).Once()
	repo.On("Get", ctx, current.ID()).Return(nil, errs.NewObjectNotFoundError("shipment", current.ID().String())).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	handler := commands.NewRecordMilestoneCommandHandler(factory, nil, nil, nil)
	_, err = handler.Handle(ctx, cmd)

	require.ErrorIs(t, err, errs.ErrObjectNotFound)
}

func TestRecordMilestoneCommandHandler_Handle_CacheFailureIsLogged(t *testing.T) {
	ctx := t.Context()
	current := storedShipment(0)
	cmd, err := commands.NewRecordMilestoneCommand(current.ID(), shipment.Pickup, at(1), "", nil, nil)
	require.NoError(t, err)

	repo := new(MockShipmentRepository)
	uow := new(MockShipmentUoW)
	factory := new(MockShipmentUoWFactory)
	cache := new(MockSnapshotCache)

	factory.On("Create").Return(uow).Once()
	uow.On("Begin", ctx).Return(nil).Once()
	uow.On("ShipmentRepository").Return(repo).Once()
	repo.On("Get", ctx, current.ID()).Return(current, nil).Once()
	repo.On("Update", ctx, mock.Anything, int64(0)).Return(nil).Once()
	uow.On("Commit", ctx).Return(nil).Once()
	cache.On("Invalidate", ctx, current.ID(), current.Version()+1).Return(errors.New("redis down")).Once()
	uow.On("Rollback", ctx).Return(nil).Once()

	core, logs := observer.New(zap.WarnLevel)
	handler := commands.NewRecordMilestoneCommandHandler(factory, nil, cache, zap.New(core))
	_, err = handler.Handle(ctx, cmd)

	require.NoError(t, err)
	entries := logs.FilterMessage("failed to invalidate delivery snapshot").All()
	require.Len(t, entries, 1)
	assert.Equal(t, current.ID().String(), entries[0].ContextMap()["shipment_id"])
	assert.Equal(t, "record_milestone_handler", entries[0].ContextMap()["component"])
}

func TestRecordMilestoneCommandHandler_Handle_SerializesPerShipment(t *testing.T) {
	ctx := t.Context()
	current := storedShipment(1)
	locks := lock.NewMutexMap()

	var (
		mu       sync.Mutex
		inFlight int
		maxSeen  int
	)

	repo := new(MockShipmentRepository)
	repo.On("Get", ctx, current.ID()).Return(current, nil).Run(func(mock.Arguments) {
		mu.Lock()
		inFlight++
		maxSeen = max(maxSeen, inFlight)
		mu.Unlock()
	})
	repo.On("Update", ctx, mock.Anything, mock.Anything).Return(nil)

	uow := new(MockShipmentUoW)
	uow.On("Begin", ctx).Return(nil)
	uow.On("ShipmentRepository").Return(repo)
	uow.On("Commit", ctx).Return(nil)
	uow.On("Rollback", ctx).Return(nil).Run(func(mock.Arguments) {
		mu.Lock()
		inFlight--
		mu.Unlock()
	})

	factory := new(MockShipmentUoWFactory)
	factory.On("Create").Return(uow)

	handler := commands.NewRecordMilestoneCommandHandler(factory, locks, nil, nil)
	cmd, err := commands.NewRecordMilestoneCommand(current.ID(), shipment.TransitArrival, at(2), "", nil, nil)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = handler.Handle(ctx, cmd)
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxSeen)
	assert.Equal(t, 0, locks.Len())
}
