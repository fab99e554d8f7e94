package queries

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// DefaultBulkConcurrency is used when the handler is created with a non-positive limit.
const DefaultBulkConcurrency = 8

// GetDeliverySnapshotsQueryHandler fans a bulk request out to the single snapshot
// handler with bounded concurrency. One shipment's failure is reported in its own
// result and never aborts the others.
type GetDeliverySnapshotsQueryHandler struct {
	single      GetDeliverySnapshotQueryHandler
	concurrency int
}

func NewGetDeliverySnapshotsQueryHandler(
	single GetDeliverySnapshotQueryHandler,
	concurrency int,
) GetDeliverySnapshotsQueryHandler {
	if concurrency <= 0 {
		concurrency = DefaultBulkConcurrency
	}
	return GetDeliverySnapshotsQueryHandler{single: single, concurrency: concurrency}
}

// Handle returns one result per requested id, in request order.
func (h GetDeliverySnapshotsQueryHandler) Handle(
	ctx context.Context,
	query GetDeliverySnapshotsQuery,
) ([]SnapshotResult, error) {
	if err := query.Validate(); err != nil {
		return nil, err
	}

	ids := query.ShipmentIDs()
	results := make([]SnapshotResult, len(ids))

	g := new(errgroup.Group)
	g.SetLimit(h.concurrency)

	for i, id := range ids {
		results[i].ShipmentID = id
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i].Err = err
				return nil
			}

			single, err := NewGetDeliverySnapshotQuery(id)
			if err != nil {
				results[i].Err = err
				return nil
			}

			snapshot, err := h.single.Handle(ctx, single)
			if err != nil {
				results[i].Err = err
				return nil
			}
			results[i].Snapshot = &snapshot
			return nil
		})
	}

	_ = g.Wait()
	return results, nil
}
