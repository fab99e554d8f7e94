package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/core/ports"

	goredis "github.com/redis/go-redis/v9"
)

const (
	snapshotKeyPrefix = "cmr:snapshot:"

	fieldVersion = "version"
	fieldData    = "data"
)

// setSnapshot writes version and data unless the hash already holds a newer
// version. ARGV: version, data, ttl in milliseconds (0 keeps the entry).
var setSnapshot = goredis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'version')
if current and tonumber(current) > tonumber(ARGV[1]) then
	return 0
end
redis.call('HSET', KEYS[1], 'version', ARGV[1], 'data', ARGV[2])
if tonumber(ARGV[3]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[3])
end
return 1
`)

// invalidateSnapshot replaces anything older than version with a tombstone
// that only carries the version. ARGV: version, ttl in milliseconds.
var invalidateSnapshot = goredis.NewScript(`
local current = redis.call('HGET', KEYS[1], 'version')
if current and tonumber(current) >= tonumber(ARGV[1]) then
	return 0
end
redis.call('DEL', KEYS[1])
redis.call('HSET', KEYS[1], 'version', ARGV[1])
if tonumber(ARGV[2]) > 0 then
	redis.call('PEXPIRE', KEYS[1], ARGV[2])
end
return 1
`)

// SnapshotCache implements ports.SnapshotCache with one Redis hash per shipment
// holding the snapshot and the version it was built from.
type SnapshotCache struct {
	client goredis.UniversalClient
	ttl    time.Duration
}

// NewSnapshotCache creates the cache. A ttl of 0 keeps entries until invalidated.
func NewSnapshotCache(client goredis.UniversalClient, ttl time.Duration) *SnapshotCache {
	return &SnapshotCache{client: client, ttl: ttl}
}

// Get returns ports.ErrCacheMiss when nothing, or only a tombstone, is stored for id.
func (c *SnapshotCache) Get(ctx context.Context, id kernel.UUID) ([]byte, error) {
	val, err := c.client.HGet(ctx, snapshotKey(id), fieldData).Bytes()
	if errors.Is(err, goredis.Nil) {
		return nil, ports.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get snapshot %s: %w", id, err)
	}
	return val, nil
}

// Set is a compare-and-set on the stored version. Losing to a newer version is
// not an error.
func (c *SnapshotCache) Set(ctx context.Context, id kernel.UUID, version int64, snapshot []byte) error {
	err := setSnapshot.Run(ctx, c.client, []string{snapshotKey(id)}, version, snapshot, c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("failed to set snapshot %s: %w", id, err)
	}
	return nil
}

// Invalidate leaves a version tombstone so that snapshots built from older
// reads cannot be written back afterwards.
func (c *SnapshotCache) Invalidate(ctx context.Context, id kernel.UUID, version int64) error {
	err := invalidateSnapshot.Run(ctx, c.client, []string{snapshotKey(id)}, version, c.ttl.Milliseconds()).Err()
	if err != nil {
		return fmt.Errorf("failed to invalidate snapshot %s: %w", id, err)
	}
	return nil
}

func snapshotKey(id kernel.UUID) string {
	return snapshotKeyPrefix + id.String()
}
