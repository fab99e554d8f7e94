package ports

import (
	"context"
	"errors"

	"cmr/internal/core/domain/model/kernel"
)

// ErrCacheMiss is returned by SnapshotCache.Get when nothing is stored for the id.
var ErrCacheMiss = errors.New("snapshot cache miss")

// SnapshotCache stores encoded delivery snapshots keyed by shipment id and
// tagged with the shipment version they were built from. Entries expire after
// an adapter-defined TTL.
type SnapshotCache interface {
	Get(ctx context.Context, id kernel.UUID) ([]byte, error)
	// Set stores snapshot unless a newer version is already known for id.
	Set(ctx context.Context, id kernel.UUID, version int64, snapshot []byte) error
	// Invalidate drops any snapshot older than version and rejects later Sets
	// of those older versions.
	Invalidate(ctx context.Context, id kernel.UUID, version int64) error
}
