package commands

import (
	"context"

	"cmr/internal/core/domain/model/shipment"
	"cmr/internal/core/ports"
	"cmr/internal/pkg/lock"

	"go.uber.org/zap"
)

// MarkCompletedCommandHandler passes a delivered shipment through the completion gate.
// Completion is irreversible; a second call fails with shipment.ErrAlreadyCompleted.
type MarkCompletedCommandHandler struct {
	mutation mutation
}

func NewMarkCompletedCommandHandler(
	uowFactory ShipmentUoWFactory,
	locks *lock.MutexMap,
	cache ports.SnapshotCache,
	logger *zap.Logger,
) MarkCompletedCommandHandler {
	return MarkCompletedCommandHandler{
		mutation: newMutation(uowFactory, locks, cache, logger, "mark_completed_handler"),
	}
}

func (h MarkCompletedCommandHandler) Handle(ctx context.Context, cmd MarkCompletedCommand) error {
	if err := cmd.Validate(); err != nil {
		return err
	}

	_, err := h.mutation.run(ctx, cmd.ShipmentID(), shipment.MarkCompletedEvent{})
	return err
}
