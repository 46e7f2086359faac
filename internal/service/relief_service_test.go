package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"relief-data/internal/client"
	"relief-data/internal/domain"
	"relief-data/internal/selector"
	"relief-data/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// newTestService remoteURL 为空时是纯离线 facade；
// 否则挂一个 resty 客户端指向给定地址（配合 httptest 模拟远端故障/恢复）
func newTestService(t *testing.T, remoteURL string) *ReliefService {
	t.Helper()

	kv, err := store.NewSqliteKV(filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv.Close() })

	var remote *client.BackendClient
	var remoteProbe selector.Probe
	if remoteURL != "" {
		remote = client.NewBackendClient(remoteURL, nil, time.Second, zap.NewNop())
		remoteProbe = remote.Health
	}

	sel := selector.New(nil, remoteProbe, zap.NewNop(), selector.Options{
		Timeout:      time.Second,
		ProbeTimeout: 200 * time.Millisecond,
	})

	return NewReliefService(Deps{
		Remote:   remote,
		Cache:    store.NewSnapshotCache(kv),
		Selector: sel,
		Logger:   zap.NewNop(),
	})
}

func addCenter(t *testing.T, svc *ReliefService, name string, capacity int) *domain.RescueCenter {
	t.Helper()
	c, err := svc.AddCenter(context.Background(), AddCenterRequest{
		Name:          name,
		TotalCapacity: capacity,
	})
	require.NoError(t, err)
	return c
}

func addGuest(t *testing.T, svc *ReliefService, centerID, first, phone string) *domain.Guest {
	t.Helper()
	g, err := svc.AddGuest(context.Background(), AddGuestRequest{
		CenterID:    centerID,
		FirstName:   first,
		LastName:    "Test",
		MobilePhone: phone,
	})
	require.NoError(t, err)
	return g
}

// assertInvariant 容量不变式：每个中心的派生字段与 guest 名册一致
func assertInvariant(t *testing.T, svc *ReliefService) {
	t.Helper()
	centers, guests := svc.mem.Snapshot()
	for _, c := range centers {
		count := 0
		for _, g := range guests {
			if g.CenterID == c.ID {
				count++
			}
		}
		assert.Equal(t, count, c.CurrentGuests, "center %s currentGuests", c.ID)
		assert.Equal(t, c.TotalCapacity-count, c.AvailableCapacity, "center %s availableCapacity", c.ID)
		if count >= c.TotalCapacity {
			assert.Equal(t, domain.CenterStatusFull, c.Status, "center %s must be full", c.ID)
		} else {
			assert.NotEqual(t, domain.CenterStatusFull, c.Status, "center %s must not be full", c.ID)
		}
	}
}

func TestLoad_SeedsWhenEverythingEmpty(t *testing.T) {
	svc := newTestService(t, "")
	svc.Load(context.Background())

	centers := svc.GetAllCenters(context.Background())
	require.Len(t, centers, 3)
	assert.Equal(t, "RC001", centers[0].ID)
	assert.True(t, svc.IsOffline())
}

func TestCapacityInvariant_AcrossMutations(t *testing.T) {
	svc := newTestService(t, "")
	ctx := context.Background()

	c1 := addCenter(t, svc, "Alpha", 10)
	c2 := addCenter(t, svc, "Beta", 5)

	g1 := addGuest(t, svc, c1.ID, "Ravi", "9801234567")
	g2 := addGuest(t, svc, c1.ID, "Meera", "9802345678")
	addGuest(t, svc, c2.ID, "Anil", "9803456789")
	assertInvariant(t, svc)

	// 转移 g2 到 c2：两边都要重算
	_, err := svc.UpdateGuest(ctx, g2.ID, UpdateGuestRequest{CenterID: &c2.ID})
	require.NoError(t, err)
	assertInvariant(t, svc)

	got1, err := svc.GetCenterByID(ctx, c1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got1.CurrentGuests)
	got2, err := svc.GetCenterByID(ctx, c2.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got2.CurrentGuests)

	require.NoError(t, svc.DeleteGuest(ctx, g1.ID))
	assertInvariant(t, svc)
}

func TestFullStatus_BoundaryIsGTE(t *testing.T) {
	svc := newTestService(t, "")
	ctx := context.Background()

	c := addCenter(t, svc, "Tiny Shelter", 2)
	addGuest(t, svc, c.ID, "A", "9000000001")
	g2 := addGuest(t, svc, c.ID, "B", "9000000002")
	g3 := addGuest(t, svc, c.ID, "C", "9000000003")

	// 3/2：full，可用容量为负（同步前的瞬态允许，但状态必须 full）
	got, err := svc.GetCenterByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CenterStatusFull, got.Status)
	assert.Equal(t, -1, got.AvailableCapacity)

	// 删到 2/2：仍然 full（边界是 >=）
	require.NoError(t, svc.DeleteGuest(ctx, g3.ID))
	got, err = svc.GetCenterByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CenterStatusFull, got.Status)

	// 删到 1/2：恢复 active
	require.NoError(t, svc.DeleteGuest(ctx, g2.ID))
	got, err = svc.GetCenterByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.CenterStatusActive, got.Status)
}

func TestDeleteCenter_CascadesToGuests(t *testing.T) {
	svc := newTestService(t, "")
	ctx := context.Background()

	c := addCenter(t, svc, "Doomed", 50)
	for _, phone := range []string{"9100000001", "9100000002", "9100000003"} {
		addGuest(t, svc, c.ID, "G", phone)
	}
	require.Len(t, svc.GetGuestsByCenter(ctx, c.ID), 3)

	require.NoError(t, svc.DeleteCenter(ctx, c.ID))
	assert.Empty(t, svc.GetGuestsByCenter(ctx, c.ID))
	for _, g := range svc.SearchGuests(ctx, "") {
		assert.NotEqual(t, c.ID, g.CenterID)
	}

	// 幂等：再删一次不报错
	require.NoError(t, svc.DeleteCenter(ctx, c.ID))
}

func TestAddGuest_DanglingCenterRejected(t *testing.T) {
	svc := newTestService(t, "")
	_, err := svc.AddGuest(context.Background(), AddGuestRequest{
		CenterID: "RC999", FirstName: "Ghost", MobilePhone: "9999999999",
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)
}

// TestOfflineWrite_DoesNotCorruptState 远端两层全挂时写入仍然成功且可回读
func TestOfflineWrite_DoesNotCorruptState(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL)
	c := addCenter(t, svc, "Offline Camp", 20)
	assert.True(t, svc.IsOffline())

	g, err := svc.AddGuest(context.Background(), AddGuestRequest{
		CenterID: c.ID, FirstName: "Ravi", LastName: "Kumar", MobilePhone: "9801234567",
	})
	require.NoError(t, err)
	require.NotEmpty(t, g.ID)

	got, err := svc.GetGuestByID(context.Background(), g.ID)
	require.NoError(t, err)
	assert.Equal(t, g.ID, got.ID)
	assert.Equal(t, "Ravi", got.FirstName)

	// 未经远端确认：last_sync 不前移
	status := svc.Status(context.Background())
	assert.True(t, status.Offline)
	assert.Empty(t, status.LastSync)
}

// TestRefreshFailure_NoSilentReset 刷新失败绝不清空会话内的看板数据
func TestRefreshFailure_NoSilentReset(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL)
	for i := 0; i < 5; i++ {
		addCenter(t, svc, "Camp", 10)
	}
	require.Len(t, svc.SearchGuests(context.Background(), ""), 0)

	before, _ := svc.mem.Snapshot()
	require.Len(t, before, 5)

	svc.RefreshData(context.Background())

	after, _ := svc.mem.Snapshot()
	assert.Len(t, after, 5)
	status := svc.Status(context.Background())
	assert.NotEmpty(t, status.LastRefreshTry)
	assert.Empty(t, status.LastSync)
}

func TestSearchGuests(t *testing.T) {
	svc := newTestService(t, "")
	ctx := context.Background()
	c := addCenter(t, svc, "Search Camp", 100)

	addGuest(t, svc, c.ID, "Ravi", "9801234567")
	g2, err := svc.AddGuest(ctx, AddGuestRequest{
		CenterID: c.ID, FirstName: "Meera", LastName: "Nair",
		MobilePhone: "9441112222", Email: "meera980@example.com",
	})
	require.NoError(t, err)
	addGuest(t, svc, c.ID, "Anil", "9551113333")

	// "980" 命中手机号与邮箱
	hits := svc.SearchGuests(ctx, "980")
	require.Len(t, hits, 2)

	hits = svc.SearchGuests(ctx, "NAIR")
	require.Len(t, hits, 1)
	assert.Equal(t, g2.ID, hits[0].ID)

	// 空查询返回全部，最近登记在前
	all := svc.SearchGuests(ctx, "")
	require.Len(t, all, 3)
	assert.Equal(t, "Anil", all[0].FirstName)
}

func TestDeleteGuest_IdempotentOnMissingID(t *testing.T) {
	svc := newTestService(t, "")
	ctx := context.Background()

	c := addCenter(t, svc, "Stable", 10)
	addGuest(t, svc, c.ID, "Ravi", "9801234567")
	before, err := svc.GetCenterByID(ctx, c.ID)
	require.NoError(t, err)

	require.NoError(t, svc.DeleteGuest(ctx, "G-0-deadbeef"))

	after, err := svc.GetCenterByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, before.CurrentGuests, after.CurrentGuests)
	assert.Equal(t, before.AvailableCapacity, after.AvailableCapacity)
	assert.Equal(t, before.Status, after.Status)
}

func TestAddCenter_Validation(t *testing.T) {
	svc := newTestService(t, "")
	ctx := context.Background()

	_, err := svc.AddCenter(ctx, AddCenterRequest{Name: "Bad", TotalCapacity: 0})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = svc.AddCenter(ctx, AddCenterRequest{Name: "Bad", TotalCapacity: 5, Status: domain.CenterStatusFull})
	assert.ErrorIs(t, err, domain.ErrValidation)

	// full 不允许经普通更新直接设置
	c := addCenter(t, svc, "Ok", 5)
	full := domain.CenterStatusFull
	_, err = svc.UpdateCenter(ctx, c.ID, UpdateCenterRequest{Status: &full})
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestUpdateCenter_NotFoundAndMerge(t *testing.T) {
	svc := newTestService(t, "")
	ctx := context.Background()

	name := "Renamed"
	_, err := svc.UpdateCenter(ctx, "RC404", UpdateCenterRequest{Name: &name})
	assert.True(t, domain.IsNotFound(err))

	c := addCenter(t, svc, "Original", 10)
	water := 25
	got, err := svc.UpdateCenter(ctx, c.ID, UpdateCenterRequest{Name: &name, WaterLevel: &water})
	require.NoError(t, err)
	assert.Equal(t, "Renamed", got.Name)
	assert.Equal(t, 25, got.WaterLevel)
	// 未提及字段保持原值
	assert.Equal(t, 10, got.TotalCapacity)
	assert.True(t, got.UpdatedAt.After(c.CreatedAt) || got.UpdatedAt.Equal(c.CreatedAt))
}

func TestGetDisasterStats(t *testing.T) {
	svc := newTestService(t, "")
	ctx := context.Background()

	c1 := addCenter(t, svc, "Big", 100)
	c2, err := svc.AddCenter(ctx, AddCenterRequest{
		Name: "Critical", TotalCapacity: 50,
		WaterLevel: intPtr(10),
	})
	require.NoError(t, err)

	addGuest(t, svc, c1.ID, "A", "9000000001")
	addGuest(t, svc, c2.ID, "B", "9000000002")
	addGuest(t, svc, c2.ID, "C", "9000000003")

	stats := svc.GetDisasterStats(ctx)
	assert.Equal(t, 2, stats.TotalCenters)
	assert.Equal(t, 150, stats.TotalCapacity)
	assert.Equal(t, 3, stats.TotalOccupancy)
	assert.Equal(t, 147, stats.AvailableSpace)
	assert.Equal(t, 1, stats.CriticalCenters)
	assert.Equal(t, 2, stats.RecentlyUpdated)
	assert.InDelta(t, 2.0, stats.OccupancyRate, 0.01)
}

func TestGetDisasterStats_EmptyStateHasZeroRate(t *testing.T) {
	svc := newTestService(t, "")
	stats := svc.GetDisasterStats(context.Background())
	assert.Equal(t, 0.0, stats.OccupancyRate)
}

// TestCrashRecovery_SnapshotDriftCorrectedOnLoad 缓存里派生字段与名册不一致时，
// Load 必须先跑容量同步再对外可信
func TestCrashRecovery_SnapshotDriftCorrectedOnLoad(t *testing.T) {
	dir := t.TempDir()
	kv, err := store.NewSqliteKV(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	cache := store.NewSnapshotCache(kv)
	ctx := context.Background()

	// 模拟崩溃前写了一半：中心派生字段是旧的（0 人），名册里却有 2 人
	now := time.Now().UTC()
	require.NoError(t, cache.SaveCenters(ctx, []domain.RescueCenter{{
		ID: "RC001", Name: "Drifted", TotalCapacity: 10,
		CurrentGuests: 0, AvailableCapacity: 10,
		Status: domain.CenterStatusActive, CreatedAt: now, UpdatedAt: now, LastUpdated: now,
	}}))
	require.NoError(t, cache.SaveGuests(ctx, []domain.Guest{
		{ID: "g1", CenterID: "RC001", FirstName: "A", MobilePhone: "9000000001", CreatedAt: now, UpdatedAt: now},
		{ID: "g2", CenterID: "RC001", FirstName: "B", MobilePhone: "9000000002", CreatedAt: now, UpdatedAt: now},
	}))
	require.NoError(t, kv.Close())

	kv2, err := store.NewSqliteKV(filepath.Join(dir, "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = kv2.Close() })

	sel := selector.New(nil, nil, zap.NewNop(), selector.Options{})
	svc := NewReliefService(Deps{
		Cache:    store.NewSnapshotCache(kv2),
		Selector: sel,
		Logger:   zap.NewNop(),
	})
	svc.Load(ctx)

	got, err := svc.GetCenterByID(ctx, "RC001")
	require.NoError(t, err)
	assert.Equal(t, 2, got.CurrentGuests)
	assert.Equal(t, 8, got.AvailableCapacity)
}

func TestSubscribe_ReceivesChangeEvents(t *testing.T) {
	svc := newTestService(t, "")
	ch, cancel := svc.Subscribe()
	defer cancel()

	c := addCenter(t, svc, "Evented", 10)

	var ops []string
	for len(ops) < 1 {
		select {
		case ev := <-ch:
			if ev.Kind == "center" && ev.ID == c.ID {
				ops = append(ops, ev.Op)
			}
		case <-time.After(time.Second):
			t.Fatal("no change event received")
		}
	}
	assert.Contains(t, ops, "created")
}

func TestRetryConnection_RecoversAndRefreshes(t *testing.T) {
	healthy := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !healthy {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		switch r.URL.Path {
		case "/health":
			w.WriteHeader(http.StatusOK)
		case "/api/centers":
			_, _ = w.Write([]byte(`[]`))
		case "/api/guests":
			_, _ = w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	svc := newTestService(t, srv.URL)
	svc.Load(context.Background())
	require.True(t, svc.IsOffline())
	assert.False(t, svc.RetryConnection(context.Background()))

	healthy = true
	assert.True(t, svc.RetryConnection(context.Background()))
	assert.False(t, svc.IsOffline())
}

func intPtr(v int) *int { return &v }
