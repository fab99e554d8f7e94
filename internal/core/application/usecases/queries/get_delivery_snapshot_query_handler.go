package queries

import (
	"context"
	"encoding/json"
	"errors"

	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/core/domain/model/shipment"
	"cmr/internal/core/ports"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// GetDeliverySnapshotQueryHandler serves snapshots read-through the snapshot cache.
// Concurrent misses for the same shipment share one repository read. Cache
// failures are logged and fall back to the repository.
type GetDeliverySnapshotQueryHandler struct {
	reader ShipmentReader
	cache  ports.SnapshotCache
	loads  *singleflight.Group
	logger *zap.Logger
}

// NewGetDeliverySnapshotQueryHandler creates the handler. cache may be nil.
func NewGetDeliverySnapshotQueryHandler(
	reader ShipmentReader,
	cache ports.SnapshotCache,
	logger *zap.Logger,
) GetDeliverySnapshotQueryHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return GetDeliverySnapshotQueryHandler{
		reader: reader,
		cache:  cache,
		loads:  &singleflight.Group{},
		logger: logger.With(zap.String("component", "delivery_snapshot_handler")),
	}
}

func (h GetDeliverySnapshotQueryHandler) Handle(
	ctx context.Context,
	query GetDeliverySnapshotQuery,
) (DeliverySnapshot, error) {
	if err := query.Validate(); err != nil {
		return DeliverySnapshot{}, err
	}

	id := query.ShipmentID()
	if snapshot, ok := h.fromCache(ctx, id); ok {
		return snapshot, nil
	}

	result, err, _ := h.loads.Do(id.String(), func() (any, error) {
		s, err := h.reader.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		snapshot := NewDeliverySnapshot(s)
		h.store(ctx, id, snapshot)
		return snapshot, nil
	})
	if err != nil {
		return DeliverySnapshot{}, err
	}

	return result.(DeliverySnapshot), nil
}

// Warm writes the snapshot of an already loaded shipment into the cache. The
// cache keeps whichever of this and a concurrently committed version is newer.
func (h GetDeliverySnapshotQueryHandler) Warm(ctx context.Context, s *shipment.Shipment) error {
	if h.cache == nil {
		return nil
	}
	data, err := json.Marshal(NewDeliverySnapshot(s))
	if err != nil {
		return err
	}
	return h.cache.Set(ctx, s.ID(), s.Version(), data)
}

func (h GetDeliverySnapshotQueryHandler) fromCache(ctx context.Context, id kernel.UUID) (DeliverySnapshot, bool) {
	if h.cache == nil {
		return DeliverySnapshot{}, false
	}

	data, err := h.cache.Get(ctx, id)
	if err != nil {
		if !errors.Is(err, ports.ErrCacheMiss) {
			h.logger.Warn("snapshot cache read failed", zap.String("shipment_id", id.String()), zap.Error(err))
		}
		return DeliverySnapshot{}, false
	}

	var snapshot DeliverySnapshot
	if err = json.Unmarshal(data, &snapshot); err != nil {
		h.logger.Warn("discarding undecodable cached snapshot", zap.String("shipment_id", id.String()), zap.Error(err))
		return DeliverySnapshot{}, false
	}
	return snapshot, true
}

func (h GetDeliverySnapshotQueryHandler) store(ctx context.Context, id kernel.UUID, snapshot DeliverySnapshot) {
	if h.cache == nil {
		return
	}

	data, err := json.Marshal(snapshot)
	if err == nil {
		err = h.cache.Set(ctx, id, snapshot.Version, data)
	}
	if err != nil {
		h.logger.Warn("snapshot cache write failed", zap.String("shipment_id", id.String()), zap.Error(err))
	}
}
