package redis_test

import (
	"testing"
	"time"

	"cmr/internal/adapters/out/redis"
	"cmr/internal/core/domain/model/kernel"
	"cmr/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSnapshotCache_SetGet(t *testing.T) {
	mr, client := newTestClient(t)
	cache := redis.NewSnapshotCache(client, time.Minute)
	id := kernel.NewUUID()

	require.NoError(t, cache.Set(t.Context(), id, 1, []byte(`{"deliveryStatus":"InTransit"}`)))

	got, err := cache.Get(t.Context(), id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"deliveryStatus":"InTransit"}`, string(got))
	assert.Equal(t, "1", mr.HGet("cmr:snapshot:"+id.String(), "version"))
}

func TestSnapshotCache_GetMiss(t *testing.T) {
	_, client := newTestClient(t)
	cache := redis.NewSnapshotCache(client, time.Minute)

	_, err := cache.Get(t.Context(), kernel.NewUUID())

	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestSnapshotCache_TTL(t *testing.T) {
	mr, client := newTestClient(t)
	cache := redis.NewSnapshotCache(client, time.Minute)
	id := kernel.NewUUID()

	require.NoError(t, cache.Set(t.Context(), id, 1, []byte("{}")))
	assert.Equal(t, time.Minute, mr.TTL("cmr:snapshot:"+id.String()))

	mr.FastForward(2 * time.Minute)

	_, err := cache.Get(t.Context(), id)
	assert.ErrorIs(t, err, ports.ErrCacheMiss)
}

func TestSnapshotCache_ZeroTTLKeepsEntry(t *testing.T) {
	mr, client := newTestClient(t)
	cache := redis.NewSnapshotCache(client, 0)
	id := kernel.NewUUID()

	require.NoError(t, cache.Set(t.Context(), id, 1, []byte("{}")))
	mr.FastForward(24 * time.Hour)

	_, err := cache.Get(t.Context(), id)
	assert.NoError(t, err)
}

func TestSnapshotCache_SetKeepsNewerVersion(t *testing.T) {
	_, client := newTestClient(t)
	cache := redis.NewSnapshotCache(client, time.Minute)
	id := kernel.NewUUID()

	require.NoError(t, cache.Set(t.Context(), id, 3, []byte(`{"version":3}`)))
	require.NoError(t, cache.Set(t.Context(), id, 2, []byte(`{"version":2}`)))

	got, err := cache.Get(t.Context(), id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":3}`, string(got))

	require.NoError(t, cache.Set(t.Context(), id, 4, []byte(`{"version":4}`)))

	got, err = cache.Get(t.Context(), id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":4}`, string(got))
}

func TestSnapshotCache_SetSameVersionRefreshesTTL(t *testing.T) {
	mr, client := newTestClient(t)
	cache := redis.NewSnapshotCache(client, time.Minute)
	id := kernel.NewUUID()

	require.NoError(t, cache.Set(t.Context(), id, 1, []byte("{}")))
	mr.FastForward(50 * time.Second)
	require.NoError(t, cache.Set(t.Context(), id, 1, []byte("{}")))

	assert.Equal(t, time.Minute, mr.TTL("cmr:snapshot:"+id.String()))
}

func TestSnapshotCache_Invalidate(t *testing.T) {
	_, client := newTestClient(t)
	cache := redis.NewSnapshotCache(client, time.Minute)
	id := kernel.NewUUID()

	require.NoError(t, cache.Set(t.Context(), id, 1, []byte("{}")))
	require.NoError(t, cache.Invalidate(t.Context(), id, 2))

	_, err := cache.Get(t.Context(), id)
	assert.ErrorIs(t, err, ports.ErrCacheMiss)

	assert.NoError(t, cache.Invalidate(t.Context(), id, 2))
	assert.NoError(t, cache.Invalidate(t.Context(), kernel.NewUUID(), 1))
}

func TestSnapshotCache_InvalidateRejectsOlderWrites(t *testing.T) {
	mr, client := newTestClient(t)
	cache := redis.NewSnapshotCache(client, time.Minute)
	id := kernel.NewUUID()

	require.NoError(t, cache.Invalidate(t.Context(), id, 2))
	assert.Equal(t, time.Minute, mr.TTL("cmr:snapshot:"+id.String()))

	require.NoError(t, cache.Set(t.Context(), id, 1, []byte(`{"version":1}`)))
	_, err := cache.Get(t.Context(), id)
	assert.ErrorIs(t, err, ports.ErrCacheMiss)

	require.NoError(t, cache.Set(t.Context(), id, 2, []byte(`{"version":2}`)))
	got, err := cache.Get(t.Context(), id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":2}`, string(got))
}

func TestSnapshotCache_InvalidateKeepsCurrentSnapshot(t *testing.T) {
	_, client := newTestClient(t)
	cache := redis.NewSnapshotCache(client, time.Minute)
	id := kernel.NewUUID()

	require.NoError(t, cache.Set(t.Context(), id, 2, []byte(`{"version":2}`)))
	require.NoError(t, cache.Invalidate(t.Context(), id, 2))

	got, err := cache.Get(t.Context(), id)
	require.NoError(t, err)
	assert.JSONEq(t, `{"version":2}`, string(got))
}

func TestSnapshotCache_ServerDown(t *testing.T) {
	mr, client := newTestClient(t)
	cache := redis.NewSnapshotCache(client, time.Minute)
	mr.Close()

	_, err := cache.Get(t.Context(), kernel.NewUUID())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ports.ErrCacheMiss)

	assert.Error(t, cache.Set(t.Context(), kernel.NewUUID(), 1, []byte("{}")))
	assert.Error(t, cache.Invalidate(t.Context(), kernel.NewUUID(), 1))
}
