package commands

import (
	"context"

	"cmr/internal/core/domain/model/shipment"
	"cmr/internal/core/ports"
	"cmr/internal/pkg/lock"

	"go.uber.org/zap"
)

// RecordMilestoneCommandHandler records a milestone and the optional exception
// action that accompanies it.
//
// Example:
//
//	handler := NewRecordMilestoneCommandHandler(uowFactory, locks, cache, logger)
//	updated, err := handler.Handle(ctx, cmd)
//	switch {
//	case errors.Is(err, shipment.ErrOutOfOrderMilestone):
//	    // slot is not the next one
//	case errors.Is(err, errs.ErrVersionConflict):
//	    // reload and retry
//	}
type RecordMilestoneCommandHandler struct {
	mutation mutation
}

func NewRecordMilestoneCommandHandler(
	uowFactory ShipmentUoWFactory,
	locks *lock.MutexMap,
	cache ports.SnapshotCache,
	logger *zap.Logger,
) RecordMilestoneCommandHandler {
	return RecordMilestoneCommandHandler{
		mutation: newMutation(uowFactory, locks, cache, logger, "record_milestone_handler"),
	}
}

// Handle returns the shipment as stored after the update.
func (h RecordMilestoneCommandHandler) Handle(ctx context.Context, cmd RecordMilestoneCommand) (*shipment.Shipment, error) {
	if err := cmd.Validate(); err != nil {
		return nil, err
	}
	return h.mutation.run(ctx, cmd.ShipmentID(), cmd.Events()...)
}
