package commands

import (
	"context"

	"cmr/internal/core/domain/model/shipment"
	"cmr/internal/core/ports"
	"cmr/internal/pkg/lock"

	"go.uber.org/zap"
)

// ApplyExceptionActionCommandHandler applies one exception action and returns the
// resulting exception state.
type ApplyExceptionActionCommandHandler struct {
	mutation mutation
}

func NewApplyExceptionActionCommandHandler(
	uowFactory ShipmentUoWFactory,
	locks *lock.MutexMap,
	cache ports.SnapshotCache,
	logger *zap.Logger,
) ApplyExceptionActionCommandHandler {
	return ApplyExceptionActionCommandHandler{
		mutation: newMutation(uowFactory, locks, cache, logger, "exception_action_handler"),
	}
}

func (h ApplyExceptionActionCommandHandler) Handle(
	ctx context.Context,
	cmd ApplyExceptionActionCommand,
) (*shipment.ExceptionState, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}

	updated, err := h.mutation.run(ctx, cmd.ShipmentID(), cmd.event())
	if err != nil {
		return nil, err
	}
	return updated.Exception(), nil
}
