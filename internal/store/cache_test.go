package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"relief-data/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestKV(t *testing.T) *SqliteKV {
	t.Helper()
	kv, err := NewSqliteKV(filepath.Join(t.TempDir(), "relief-cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })
	return kv
}

func TestSqliteKV_SetGetDelete(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	_, err := kv.Get(ctx, "missing")
	assert.Equal(t, ErrMiss, err)

	require.NoError(t, kv.Set(ctx, "k", "v1", 0))
	got, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v1", got)

	// upsert 覆盖
	require.NoError(t, kv.Set(ctx, "k", "v2", 0))
	got, err = kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "v2", got)

	require.NoError(t, kv.Delete(ctx, "k"))
	_, err = kv.Get(ctx, "k")
	assert.Equal(t, ErrMiss, err)
}

func TestSqliteKV_TTLExpiry(t *testing.T) {
	kv := newTestKV(t)
	ctx := context.Background()

	// 已过期的 ttl：读路径判定为 miss
	require.NoError(t, kv.Set(ctx, "ephemeral", "x", -time.Second))
	_, err := kv.Get(ctx, "ephemeral")
	assert.Equal(t, ErrMiss, err)
}

func TestSqliteKV_SurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "relief-cache.db")
	ctx := context.Background()

	kv, err := NewSqliteKV(path)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, "persist", "still-here", 0))
	require.NoError(t, kv.Close())

	// 模拟进程重启
	kv2, err := NewSqliteKV(path)
	require.NoError(t, err)
	defer kv2.Close()

	got, err := kv2.Get(ctx, "persist")
	require.NoError(t, err)
	assert.Equal(t, "still-here", got)
}

func TestSnapshotCache_RoundTrip(t *testing.T) {
	cache := NewSnapshotCache(newTestKV(t))
	ctx := context.Background()

	_, err := cache.LoadCenters(ctx)
	assert.Equal(t, ErrMiss, err)

	now := time.Date(2026, 8, 25, 12, 0, 0, 0, time.UTC)
	centers := []domain.RescueCenter{
		{ID: "RC001", Name: "School Shelter", TotalCapacity: 100, Status: domain.CenterStatusActive,
			Facilities: []string{"kitchen"}, CreatedAt: now, UpdatedAt: now, LastUpdated: now},
	}
	guests := []domain.Guest{
		{ID: "g1", CenterID: "RC001", FirstName: "Ravi", MobilePhone: "9801234567", CreatedAt: now, UpdatedAt: now},
	}

	require.NoError(t, cache.SaveCenters(ctx, centers))
	require.NoError(t, cache.SaveGuests(ctx, guests))

	gotCenters, err := cache.LoadCenters(ctx)
	require.NoError(t, err)
	assert.Equal(t, centers, gotCenters)

	gotGuests, err := cache.LoadGuests(ctx)
	require.NoError(t, err)
	assert.Equal(t, guests, gotGuests)
}

func TestSnapshotCache_LastSyncMarker(t *testing.T) {
	cache := NewSnapshotCache(newTestKV(t))
	ctx := context.Background()

	// 从未同步：零值时间，不报错
	got, err := cache.LastSync(ctx)
	require.NoError(t, err)
	assert.True(t, got.IsZero())

	at := time.Date(2026, 8, 25, 15, 30, 0, 0, time.UTC)
	require.NoError(t, cache.MarkSynced(ctx, at))

	got, err = cache.LastSync(ctx)
	require.NoError(t, err)
	assert.Equal(t, at, got)
}
