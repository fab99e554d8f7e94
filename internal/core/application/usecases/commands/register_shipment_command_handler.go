package commands

import (
	"context"
	"errors"
	"fmt"

	"cmr/internal/core/domain/model/shipment"
	"cmr/internal/pkg/errs"
	"cmr/internal/pkg/lock"
)

// ErrShipmentAlreadyRegistered is returned when the id already has a delivery record.
var ErrShipmentAlreadyRegistered = errors.New("shipment is already registered")

// RegisterShipmentCommandHandler stores a new NotStarted shipment.
type RegisterShipmentCommandHandler struct {
	uowFactory ShipmentUoWFactory
	locks      *lock.MutexMap
}

func NewRegisterShipmentCommandHandler(uowFactory ShipmentUoWFactory, locks *lock.MutexMap) RegisterShipmentCommandHandler {
	if locks == nil {
		locks = lock.NewMutexMap()
	}
	return RegisterShipmentCommandHandler{
		uowFactory: uowFactory,
		locks:      locks,
	}
}

// Handle registers the shipment. Registering an existing id fails with
// ErrShipmentAlreadyRegistered and leaves the stored record untouched.
func (h RegisterShipmentCommandHandler) Handle(ctx context.Context, cmd RegisterShipmentCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	key := cmd.ShipmentID().String()
	h.locks.Lock(key)
	defer h.locks.Unlock(key)

	uow := h.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return err
	}

	defer func() {
		_ = uow.Rollback(ctx)
	}()

	repo := uow.ShipmentRepository()

	_, err := repo.Get(ctx, cmd.ShipmentID())
	switch {
	case err == nil:
		return fmt.Errorf("%w: %s", ErrShipmentAlreadyRegistered, cmd.ShipmentID())
	case !errors.Is(err, errs.ErrObjectNotFound):
		return err
	}

	aggregate, err := shipment.NewShipment(cmd.ShipmentID())
	if err != nil {
		return err
	}

	if err = repo.Add(ctx, aggregate); err != nil {
		return err
	}

	return uow.Commit(ctx)
}
