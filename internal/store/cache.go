package store

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"relief-data/internal/domain"
)

// 快照键（各自独立可读写）
const (
	keyCenters  = "relief:centers"
	keyGuests   = "relief:guests"
	keyLastSync = "relief:last_sync"
)

// SnapshotCache 本地缓存快照层：
// 序列化后的中心列表、人员列表与 last_sync 标记。
// last_sync 只在远端确认成功时前移，用于区分"远端新鲜数据"与"缓存兜底数据"；
// 恢复出的快照在使用派生字段前必须先跑一次容量同步。
type SnapshotCache struct {
	kv KV
}

// NewSnapshotCache 创建快照层
func NewSnapshotCache(kv KV) *SnapshotCache {
	return &SnapshotCache{kv: kv}
}

// SaveCenters 覆盖写入中心快照（不设 ttl，永久保留）
func (c *SnapshotCache) SaveCenters(ctx context.Context, centers []domain.RescueCenter) error {
	raw, err := json.Marshal(centers)
	if err != nil {
		return fmt.Errorf("failed to encode centers snapshot: %w", err)
	}
	return c.kv.Set(ctx, keyCenters, string(raw), 0)
}

// LoadCenters 读取中心快照；无快照返回 ErrMiss
func (c *SnapshotCache) LoadCenters(ctx context.Context) ([]domain.RescueCenter, error) {
	raw, err := c.kv.Get(ctx, keyCenters)
	if err != nil {
		return nil, err
	}
	var centers []domain.RescueCenter
	if err := json.Unmarshal([]byte(raw), &centers); err != nil {
		return nil, fmt.Errorf("failed to decode centers snapshot: %w", err)
	}
	return centers, nil
}

// SaveGuests 覆盖写入人员快照
func (c *SnapshotCache) SaveGuests(ctx context.Context, guests []domain.Guest) error {
	raw, err := json.Marshal(guests)
	if err != nil {
		return fmt.Errorf("failed to encode guests snapshot: %w", err)
	}
	return c.kv.Set(ctx, keyGuests, string(raw), 0)
}

// LoadGuests 读取人员快照；无快照返回 ErrMiss
func (c *SnapshotCache) LoadGuests(ctx context.Context) ([]domain.Guest, error) {
	raw, err := c.kv.Get(ctx, keyGuests)
	if err != nil {
		return nil, err
	}
	var guests []domain.Guest
	if err := json.Unmarshal([]byte(raw), &guests); err != nil {
		return nil, fmt.Errorf("failed to decode guests snapshot: %w", err)
	}
	return guests, nil
}

// MarkSynced 前移 last_sync 标记（仅远端确认成功后调用）
func (c *SnapshotCache) MarkSynced(ctx context.Context, t time.Time) error {
	return c.kv.Set(ctx, keyLastSync, strconv.FormatInt(t.UTC().UnixMilli(), 10), 0)
}

// LastSync 读取 last_sync；从未同步过返回零值时间
func (c *SnapshotCache) LastSync(ctx context.Context) (time.Time, error) {
	raw, err := c.kv.Get(ctx, keyLastSync)
	if err != nil {
		if err == ErrMiss {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	millis, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse last_sync marker: %w", err)
	}
	return time.UnixMilli(millis).UTC(), nil
}
