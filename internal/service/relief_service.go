package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"relief-data/internal/client"
	"relief-data/internal/domain"
	"relief-data/internal/repository"
	"relief-data/internal/selector"
	"relief-data/internal/store"
	"relief-data/internal/wire"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// 资源告急阈值（government dashboard 统计口径）
	criticalResourceThreshold = 30
	// "recently updated" 窗口
	recentUpdateWindow = 2 * time.Hour
)

// CenterPublisher 对外广播容量变化（如 MQTT 看板订阅）；实现必须非阻塞且不抛错
type CenterPublisher interface {
	PublishCenter(center domain.RescueCenter)
}

// Deps ReliefService 依赖注入（测试中可逐项替换为 fake）
type Deps struct {
	Centers   repository.CentersRepository // Managed Database 层，可为 nil
	Guests    repository.GuestsRepository  // 同上，与 Centers 成对出现
	Remote    *client.BackendClient        // Remote Backend 层，可为 nil
	Memory    *repository.MemoryStore      // 进程内状态 + 离线兜底，nil 则新建
	Cache     *store.SnapshotCache         // 本地缓存快照，可为 nil（不持久化）
	Selector  *selector.Selector
	Publisher CenterPublisher // 可为 nil
	Logger    *zap.Logger
}

// ReliefService 统一数据 facade：
// 所有 UI 页面只经由它读写中心与人员，内部串联后端选择器，
// 每次 guest 变更都经由 commitGuestChange 这一个入口重算容量，
// 每次提交后的状态同步写入本地缓存快照。
type ReliefService struct {
	logger *zap.Logger
	sel    *selector.Selector

	centersDB repository.CentersRepository
	guestsDB  repository.GuestsRepository
	remote    *client.BackendClient

	mem       *repository.MemoryStore
	cache     *store.SnapshotCache
	publisher CenterPublisher

	// 串行化所有状态变更，保证派生字段重算与提交原子可见
	mu sync.Mutex

	lastRefreshTry time.Time

	subMu   sync.Mutex
	subs    map[int]chan ChangeEvent
	nextSub int
}

// NewReliefService 创建 facade；调用 Load 完成初始状态装填后再对外服务
func NewReliefService(deps Deps) *ReliefService {
	mem := deps.Memory
	if mem == nil {
		mem = repository.NewMemoryStore()
	}
	return &ReliefService{
		logger:    deps.Logger,
		sel:       deps.Selector,
		centersDB: deps.Centers,
		guestsDB:  deps.Guests,
		remote:    deps.Remote,
		mem:       mem,
		cache:     deps.Cache,
		publisher: deps.Publisher,
		subs:      map[int]chan ChangeEvent{},
	}
}

// newGuestID 时间戳+随机 token，全局唯一
func newGuestID() string {
	return fmt.Sprintf("G-%d-%s", time.Now().UnixMilli(), uuid.NewString()[:8])
}

func validCenterStatus(status string) bool {
	switch status {
	case domain.CenterStatusActive, domain.CenterStatusInactive, domain.CenterStatusMaintenance:
		return true
	}
	return false
}

// ---- 初始装填 ----

// Load 初始加载：最优后端 -> 本地缓存 -> 内置种子数据。
// 恢复出的快照先跑一轮容量同步再可信（纠正崩溃时写了一半的派生字段）。
func (s *ReliefService) Load(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tier := s.fetchIntoMemory(ctx, "load")
	if tier == selector.TierLocal {
		s.restoreFromCache(ctx)
		if s.mem.Empty() {
			s.logger.Info("No backend and no cache snapshot, seeding built-in centers")
			s.mem.ReplaceAll(seedCenters(), nil)
		}
	}

	s.resyncAllLocked(ctx)
	s.persistLocked(ctx)
	if tier != selector.TierLocal {
		s.markSyncedLocked(ctx)
	}
	s.logger.Info("Relief data loaded",
		zap.String("tier", tier.String()),
		zap.Bool("offline", s.sel.Offline()),
	)
}

// fetchIntoMemory 从最优远端层整体拉取中心+人员并替换内存状态。
// 返回 TierLocal 表示远端全部失败，内存状态保持原样（不会被空数据覆盖）。
func (s *ReliefService) fetchIntoMemory(ctx context.Context, op string) selector.Tier {
	var centers []domain.RescueCenter
	var guests []domain.Guest

	var managed func(ctx context.Context) error
	if s.centersDB != nil && s.guestsDB != nil {
		managed = func(ctx context.Context) error {
			cs, err := s.centersDB.ListCenters(ctx)
			if err != nil {
				return err
			}
			gs, err := s.guestsDB.ListGuests(ctx, repository.GuestFilters{})
			if err != nil {
				return err
			}
			centers = centers[:0]
			for _, c := range cs {
				centers = append(centers, *c)
			}
			guests = guests[:0]
			for _, g := range gs {
				guests = append(guests, *g)
			}
			return nil
		}
	}

	var remote func(ctx context.Context) error
	if s.remote != nil {
		remote = func(ctx context.Context) error {
			var centerRows []wire.CenterRow
			if err := s.remote.Get(ctx, "/api/centers", &centerRows); err != nil {
				return err
			}
			var guestRows []wire.GuestRow
			if err := s.remote.Get(ctx, "/api/guests", &guestRows); err != nil {
				return err
			}
			centers = wire.Centers(centerRows)
			guests = wire.Guests(guestRows)
			return nil
		}
	}

	tier, err := s.sel.Execute(ctx, op, []selector.Attempt{
		{Tier: selector.TierManaged, Run: managed},
		{Tier: selector.TierRemote, Run: remote},
	}, nil)
	if err != nil || tier == selector.TierLocal {
		return selector.TierLocal
	}

	s.mem.ReplaceAll(centers, guests)
	return tier
}

func (s *ReliefService) restoreFromCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	centers, err := s.cache.LoadCenters(ctx)
	if err != nil {
		if err != store.ErrMiss {
			s.logger.Warn("Failed to restore centers snapshot", zap.Error(err))
		}
		return
	}
	guests, err := s.cache.LoadGuests(ctx)
	if err != nil && err != store.ErrMiss {
		s.logger.Warn("Failed to restore guests snapshot", zap.Error(err))
	}
	s.mem.ReplaceAll(centers, guests)
	s.logger.Info("State restored from local cache snapshot",
		zap.Int("centers", len(centers)),
		zap.Int("guests", len(guests)),
	)
}

// ---- 提交辅助（都要求持有 s.mu）----

// persistLocked 把当前状态同步写入本地缓存（与状态变更同一逻辑步骤，无单独 flush 阶段）
func (s *ReliefService) persistLocked(ctx context.Context) {
	if s.cache == nil {
		return
	}
	centers, guests := s.mem.Snapshot()
	if err := s.cache.SaveCenters(ctx, centers); err != nil {
		s.logger.Error("Failed to persist centers snapshot", zap.Error(err))
	}
	if err := s.cache.SaveGuests(ctx, guests); err != nil {
		s.logger.Error("Failed to persist guests snapshot", zap.Error(err))
	}
}

// markSyncedLocked 仅远端确认成功后前移 last_sync 标记
func (s *ReliefService) markSyncedLocked(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.MarkSynced(ctx, time.Now()); err != nil {
		s.logger.Error("Failed to advance last_sync marker", zap.Error(err))
	}
}

// commitGuestChangeLocked 人员变更的唯一容量重算入口：
// 重算受影响中心的派生字段，写回内存，并尽力把同步结果推给远端层（失败只降级不报错）。
func (s *ReliefService) commitGuestChangeLocked(ctx context.Context, centerIDs ...string) {
	seen := map[string]bool{}
	for _, centerID := range centerIDs {
		if centerID == "" || seen[centerID] {
			continue
		}
		seen[centerID] = true

		center, err := s.mem.GetCenter(ctx, centerID)
		if err != nil {
			continue // 中心已删除（级联场景）
		}
		guests, err := s.mem.ListGuests(ctx, repository.GuestFilters{CenterID: centerID})
		if err != nil {
			continue
		}
		flat := make([]domain.Guest, 0, len(guests))
		for _, g := range guests {
			flat = append(flat, *g)
		}

		synced := domain.SyncCapacity(*center, flat)
		if err := s.mem.UpdateCenter(ctx, &synced); err != nil {
			s.logger.Error("Failed to commit capacity sync", zap.String("center_id", centerID), zap.Error(err))
			continue
		}

		s.pushCenterLocked(ctx, synced)
		s.broadcast(ChangeEvent{Kind: "center", Op: "updated", ID: synced.ID})
		if s.publisher != nil {
			s.publisher.PublishCenter(synced)
		}
	}
}

// pushCenterLocked 尽力把中心状态推给远端层（容量同步的远端传播，失败不影响本地提交）
func (s *ReliefService) pushCenterLocked(ctx context.Context, center domain.RescueCenter) {
	var managed func(ctx context.Context) error
	if s.centersDB != nil {
		managed = func(ctx context.Context) error {
			c := center
			return s.centersDB.UpdateCenter(ctx, &c)
		}
	}
	var remote func(ctx context.Context) error
	if s.remote != nil {
		remote = func(ctx context.Context) error {
			return s.remote.Put(ctx, "/api/centers/"+center.ID, wire.FromCenter(center), nil)
		}
	}
	_, _ = s.sel.Execute(ctx, "push_center", []selector.Attempt{
		{Tier: selector.TierManaged, Run: managed},
		{Tier: selector.TierRemote, Run: remote},
	}, nil)
}

// resyncAllLocked 对全部中心重算容量（初始加载、崩溃恢复、手动/定时 resync）
func (s *ReliefService) resyncAllLocked(ctx context.Context) {
	centers, guests := s.mem.Snapshot()
	for _, c := range centers {
		synced := domain.SyncCapacity(c, guests)
		if synced.CurrentGuests == c.CurrentGuests &&
			synced.AvailableCapacity == c.AvailableCapacity &&
			synced.Status == c.Status {
			continue // 无漂移不动时间戳
		}
		s.logger.Info("Capacity drift corrected",
			zap.String("center_id", c.ID),
			zap.Int("was", c.CurrentGuests),
			zap.Int("now", synced.CurrentGuests),
		)
		_ = s.mem.UpdateCenter(ctx, &synced)
	}
}

// ---- 中心操作 ----

// GetAllCenters 最优后端的权威列表；远端全挂时返回内存中的最后已知状态（永不失败）
func (s *ReliefService) GetAllCenters(ctx context.Context) []domain.RescueCenter {
	s.mu.Lock()
	defer s.mu.Unlock()

	if tier := s.fetchIntoMemory(ctx, "get_all_centers"); tier != selector.TierLocal {
		s.resyncAllLocked(ctx)
		s.persistLocked(ctx)
		s.markSyncedLocked(ctx)
	}

	centers, _ := s.mem.Snapshot()
	return centers
}

// GetCenterByID 单中心查询；远端 404 是权威结果，其余失败回退内存
func (s *ReliefService) GetCenterByID(ctx context.Context, centerID string) (*domain.RescueCenter, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var fetched *domain.RescueCenter
	var managed func(ctx context.Context) error
	if s.centersDB != nil {
		managed = func(ctx context.Context) error {
			c, err := s.centersDB.GetCenter(ctx, centerID)
			if err != nil {
				return err
			}
			fetched = c
			return nil
		}
	}
	var remote func(ctx context.Context) error
	if s.remote != nil {
		remote = func(ctx context.Context) error {
			var row wire.CenterRow
			if err := s.remote.Get(ctx, "/api/centers/"+centerID, &row); err != nil {
				return err
			}
			c := row.Center()
			fetched = &c
			return nil
		}
	}

	tier, err := s.sel.Execute(ctx, "get_center", []selector.Attempt{
		{Tier: selector.TierManaged, Run: managed},
		{Tier: selector.TierRemote, Run: remote},
	}, nil)
	if err != nil {
		// 远端 NotFound：离线期间本地新建、尚未上送的中心仍然可读
		if c, memErr := s.mem.GetCenter(ctx, centerID); memErr == nil {
			return c, nil
		}
		return nil, err
	}
	if tier != selector.TierLocal && fetched != nil {
		_ = s.mem.CreateCenter(ctx, fetched) // 读穿透回填
		s.persistLocked(ctx)
		return fetched, nil
	}
	return s.mem.GetCenter(ctx, centerID)
}

// AddCenter 创建中心：分配顺序 id，初始化派生字段，经选择器提交，远端失败时本地落盘
func (s *ReliefService) AddCenter(ctx context.Context, req AddCenterRequest) (*domain.RescueCenter, error) {
	if req.TotalCapacity < 1 {
		return nil, fmt.Errorf("total capacity must be >= 1: %w", domain.ErrValidation)
	}
	if req.Status == "" {
		req.Status = domain.CenterStatusActive
	}
	if !validCenterStatus(req.Status) {
		return nil, fmt.Errorf("status %q not settable: %w", req.Status, domain.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	level := func(p *int) int {
		if p == nil {
			return 100
		}
		return *p
	}
	supplies := domain.Supplies{Medical: 100, Bedding: 100, Clothing: 100}
	if req.Supplies != nil {
		supplies = *req.Supplies
	}

	now := time.Now().UTC()
	center := domain.RescueCenter{
		ID:                s.mem.NextCenterID(),
		Name:              req.Name,
		Phone:             req.Phone,
		Address:           req.Address,
		Lat:               req.Lat,
		Lng:               req.Lng,
		TotalCapacity:     req.TotalCapacity,
		CurrentGuests:     0,
		AvailableCapacity: req.TotalCapacity,
		WaterLevel:        level(req.WaterLevel),
		FoodLevel:         level(req.FoodLevel),
		Supplies:          supplies,
		Facilities:        req.Facilities,
		StaffCount:        req.StaffCount,
		EmergencyContacts: req.EmergencyContacts,
		Status:            req.Status,
		CreatedAt:         now,
		UpdatedAt:         now,
		LastUpdated:       now,
	}

	tier := s.submitLocked(ctx, "add_center",
		func(ctx context.Context) error {
			c := center
			return s.centersDB.CreateCenter(ctx, &c)
		},
		func(ctx context.Context) error {
			return s.remote.Post(ctx, "/api/centers", wire.FromCenter(center), nil)
		},
	)

	_ = s.mem.CreateCenter(ctx, &center)
	s.persistLocked(ctx)
	if tier != selector.TierLocal {
		s.markSyncedLocked(ctx)
	}
	s.broadcast(ChangeEvent{Kind: "center", Op: "created", ID: center.ID})
	if s.publisher != nil {
		s.publisher.PublishCenter(center)
	}
	return &center, nil
}

// UpdateCenter 部分更新；id 在远端与本地都不存在时返回 NotFound
func (s *ReliefService) UpdateCenter(ctx context.Context, centerID string, req UpdateCenterRequest) (*domain.RescueCenter, error) {
	if req.Status != nil && !validCenterStatus(*req.Status) {
		return nil, fmt.Errorf("status %q not settable: %w", *req.Status, domain.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.mem.GetCenter(ctx, centerID)
	if err != nil {
		return nil, err
	}

	merged := req.apply(*existing)

	// 容量/状态相关字段动过就重算派生字段（顺带刷新时间戳）
	guests, _ := s.mem.ListGuests(ctx, repository.GuestFilters{CenterID: centerID})
	flat := make([]domain.Guest, 0, len(guests))
	for _, g := range guests {
		flat = append(flat, *g)
	}
	merged = domain.SyncCapacity(merged, flat)

	tier := s.submitLocked(ctx, "update_center",
		func(ctx context.Context) error {
			c := merged
			return s.centersDB.UpdateCenter(ctx, &c)
		},
		func(ctx context.Context) error {
			return s.remote.Put(ctx, "/api/centers/"+centerID, wire.FromCenter(merged), nil)
		},
	)

	if err := s.mem.UpdateCenter(ctx, &merged); err != nil {
		return nil, err
	}
	s.persistLocked(ctx)
	if tier != selector.TierLocal {
		s.markSyncedLocked(ctx)
	}
	s.broadcast(ChangeEvent{Kind: "center", Op: "updated", ID: centerID})
	if s.publisher != nil {
		s.publisher.PublishCenter(merged)
	}
	return &merged, nil
}

// DeleteCenter 级联删除：先删人员再删中心；远端优先但本地清理无条件执行；幂等
func (s *ReliefService) DeleteCenter(ctx context.Context, centerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tier := s.submitLocked(ctx, "delete_center",
		func(ctx context.Context) error {
			if _, err := s.guestsDB.DeleteGuestsByCenter(ctx, centerID); err != nil {
				return err
			}
			return s.centersDB.DeleteCenter(ctx, centerID)
		},
		func(ctx context.Context) error {
			if err := s.remote.Delete(ctx, "/api/centers/" + centerID + "/guests"); err != nil && !domain.IsNotFound(err) {
				return err
			}
			if err := s.remote.Delete(ctx, "/api/centers/"+centerID); err != nil && !domain.IsNotFound(err) {
				return err
			}
			return nil
		},
	)

	// 本地清理无条件执行：被删中心的人员绝不允许留在内存列表里
	removed, _ := s.mem.DeleteGuestsByCenter(ctx, centerID)
	_ = s.mem.DeleteCenter(ctx, centerID)
	if removed > 0 {
		s.logger.Info("Cascade-deleted guests with center",
			zap.String("center_id", centerID),
			zap.Int("guests", removed),
		)
	}
	s.persistLocked(ctx)
	if tier != selector.TierLocal {
		s.markSyncedLocked(ctx)
	}
	s.broadcast(ChangeEvent{Kind: "center", Op: "deleted", ID: centerID})
	return nil
}

// ---- 人员操作 ----

// AddGuest 登记人员：校验 CenterID 引用、生成 id、提交、同步所属中心容量后返回
func (s *ReliefService) AddGuest(ctx context.Context, req AddGuestRequest) (*domain.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(req.CenterID) == "" {
		return nil, fmt.Errorf("centerId is required: %w", domain.ErrValidation)
	}
	if _, err := s.mem.GetCenter(ctx, req.CenterID); err != nil {
		return nil, fmt.Errorf("centerId %s does not reference an existing center: %w", req.CenterID, domain.ErrValidation)
	}

	now := time.Now().UTC()
	guest := domain.Guest{
		ID:                       newGuestID(),
		CenterID:                 req.CenterID,
		FirstName:                req.FirstName,
		MiddleName:               req.MiddleName,
		LastName:                 req.LastName,
		Gender:                   req.Gender,
		DateOfBirth:              req.DateOfBirth,
		Age:                      req.Age,
		MobilePhone:              req.MobilePhone,
		AlternateMobile:          req.AlternateMobile,
		Email:                    req.Email,
		PermanentAddress:         req.PermanentAddress,
		EmergencyContactName:     req.EmergencyContactName,
		EmergencyContactPhone:    req.EmergencyContactPhone,
		EmergencyContactRelation: req.EmergencyContactRelation,
		MedicalConditions:        req.MedicalConditions,
		CurrentMedications:       req.CurrentMedications,
		Allergies:                req.Allergies,
		DisabilityStatus:         req.DisabilityStatus,
		SpecialNeeds:             req.SpecialNeeds,
		CreatedAt:                now,
		UpdatedAt:                now,
	}

	tier := s.submitLocked(ctx, "add_guest",
		func(ctx context.Context) error {
			g := guest
			return s.guestsDB.CreateGuest(ctx, &g)
		},
		func(ctx context.Context) error {
			return s.remote.Post(ctx, "/api/guests", wire.FromGuest(guest), nil)
		},
	)

	_ = s.mem.CreateGuest(ctx, &guest)
	// 返回前同步完成所属中心的容量，调用方拿到结果时派生字段已一致
	s.commitGuestChangeLocked(ctx, guest.CenterID)
	s.persistLocked(ctx)
	if tier != selector.TierLocal {
		s.markSyncedLocked(ctx)
	}
	s.broadcast(ChangeEvent{Kind: "guest", Op: "created", ID: guest.ID})
	return &guest, nil
}

// UpdateGuest 部分更新；CenterID 变化按转移处理（两边中心都重算）
func (s *ReliefService) UpdateGuest(ctx context.Context, guestID string, req UpdateGuestRequest) (*domain.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.mem.GetGuest(ctx, guestID)
	if err != nil {
		return nil, err
	}

	oldCenterID := existing.CenterID
	transfer := req.CenterID != nil && *req.CenterID != oldCenterID
	if transfer {
		if _, err := s.mem.GetCenter(ctx, *req.CenterID); err != nil {
			return nil, fmt.Errorf("centerId %s does not reference an existing center: %w", *req.CenterID, domain.ErrValidation)
		}
	}

	merged := req.apply(*existing)
	merged.UpdatedAt = time.Now().UTC()

	tier := s.submitLocked(ctx, "update_guest",
		func(ctx context.Context) error {
			g := merged
			return s.guestsDB.UpdateGuest(ctx, &g)
		},
		func(ctx context.Context) error {
			return s.remote.Put(ctx, "/api/guests/"+guestID, wire.FromGuest(merged), nil)
		},
	)

	if err := s.mem.UpdateGuest(ctx, &merged); err != nil {
		return nil, err
	}
	if transfer {
		// 转移 = 旧中心减员 + 新中心增员，两边都同步
		s.commitGuestChangeLocked(ctx, oldCenterID, merged.CenterID)
	}
	s.persistLocked(ctx)
	if tier != selector.TierLocal {
		s.markSyncedLocked(ctx)
	}
	s.broadcast(ChangeEvent{Kind: "guest", Op: "updated", ID: guestID})
	return &merged, nil
}

// DeleteGuest 删除人员并同步其中心；幂等——不存在的 id 不报错也不触及派生字段
func (s *ReliefService) DeleteGuest(ctx context.Context, guestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.mem.GetGuest(ctx, guestID)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil
		}
		return err
	}

	tier := s.submitLocked(ctx, "delete_guest",
		func(ctx context.Context) error {
			return s.guestsDB.DeleteGuest(ctx, guestID)
		},
		func(ctx context.Context) error {
			if err := s.remote.Delete(ctx, "/api/guests/"+guestID); err != nil && !domain.IsNotFound(err) {
				return err
			}
			return nil
		},
	)

	_ = s.mem.DeleteGuest(ctx, guestID)
	s.commitGuestChangeLocked(ctx, existing.CenterID)
	s.persistLocked(ctx)
	if tier != selector.TierLocal {
		s.markSyncedLocked(ctx)
	}
	s.broadcast(ChangeEvent{Kind: "guest", Op: "deleted", ID: guestID})
	return nil
}

// GetGuestByID 单人员查询（内存优先，离线模式下新增的人员立刻可读）
func (s *ReliefService) GetGuestByID(ctx context.Context, guestID string) (*domain.Guest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if g, err := s.mem.GetGuest(ctx, guestID); err == nil {
		return g, nil
	}

	var fetched *domain.Guest
	var managed func(ctx context.Context) error
	if s.guestsDB != nil {
		managed = func(ctx context.Context) error {
			g, err := s.guestsDB.GetGuest(ctx, guestID)
			if err != nil {
				return err
			}
			fetched = g
			return nil
		}
	}
	var remote func(ctx context.Context) error
	if s.remote != nil {
		remote = func(ctx context.Context) error {
			var row wire.GuestRow
			if err := s.remote.Get(ctx, "/api/guests/"+guestID, &row); err != nil {
				return err
			}
			g := row.Guest()
			fetched = &g
			return nil
		}
	}

	_, err := s.sel.Execute(ctx, "get_guest", []selector.Attempt{
		{Tier: selector.TierManaged, Run: managed},
		{Tier: selector.TierRemote, Run: remote},
	}, nil)
	if err != nil {
		return nil, err
	}
	if fetched == nil {
		return nil, fmt.Errorf("guest %s: %w", guestID, domain.ErrNotFound)
	}
	_ = s.mem.CreateGuest(ctx, fetched)
	return fetched, nil
}

// GetGuestsByCenter 某中心的人员列表（created_at 倒序）
func (s *ReliefService) GetGuestsByCenter(ctx context.Context, centerID string) []domain.Guest {
	guests, _ := s.mem.ListGuests(ctx, repository.GuestFilters{CenterID: centerID})
	flat := make([]domain.Guest, 0, len(guests))
	for _, g := range guests {
		flat = append(flat, *g)
	}
	return flat
}

// SearchGuests 姓名/手机号/邮箱/id 的大小写不敏感子串搜索；空串返回全部；最近登记在前
func (s *ReliefService) SearchGuests(ctx context.Context, query string) []domain.Guest {
	guests, _ := s.mem.ListGuests(ctx, repository.GuestFilters{Search: query})
	flat := make([]domain.Guest, 0, len(guests))
	for _, g := range guests {
		flat = append(flat, *g)
	}
	return flat
}

// ---- 聚合 / 刷新 / 状态 ----

// GetDisasterStats 看板聚合指标（基于当前内存状态，永不失败）
func (s *ReliefService) GetDisasterStats(ctx context.Context) DisasterStats {
	centers, _ := s.mem.Snapshot()

	stats := DisasterStats{TotalCenters: len(centers)}
	cutoff := time.Now().Add(-recentUpdateWindow)
	for i := range centers {
		c := &centers[i]
		stats.TotalCapacity += c.TotalCapacity
		stats.TotalOccupancy += c.CurrentGuests
		if c.HasCriticalResource(criticalResourceThreshold) {
			stats.CriticalCenters++
		}
		if c.LastUpdated.After(cutoff) {
			stats.RecentlyUpdated++
		}
	}
	stats.AvailableSpace = stats.TotalCapacity - stats.TotalOccupancy
	if stats.TotalCapacity > 0 {
		stats.OccupancyRate = float64(stats.TotalOccupancy) / float64(stats.TotalCapacity) * 100
	}
	return stats
}

// RefreshData 强制从最优后端重拉。远端失败时除刷新"最近尝试时间"外是 no-op，
// 绝不用空缓存覆盖内存状态（避免会话中看板被清空）。
func (s *ReliefService) RefreshData(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastRefreshTry = time.Now().UTC()
	tier := s.fetchIntoMemory(ctx, "refresh_data")
	if tier == selector.TierLocal {
		s.logger.Warn("Refresh failed on all remote tiers, keeping in-memory state")
		return
	}

	s.resyncAllLocked(ctx)
	s.persistLocked(ctx)
	s.markSyncedLocked(ctx)
	s.broadcast(ChangeEvent{Kind: "center", Op: "refreshed", ID: ""})
}

// ResyncCapacity 手动触发全量容量重算
func (s *ReliefService) ResyncCapacity(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resyncAllLocked(ctx)
	s.persistLocked(ctx)
}

// IsOffline 最近一次远端尝试是否失败
func (s *ReliefService) IsOffline() bool {
	return s.sel.Offline()
}

// RetryConnection 重新探测远端；恢复成功顺带触发一次刷新
func (s *ReliefService) RetryConnection(ctx context.Context) bool {
	if !s.sel.RetryConnection(ctx) {
		return false
	}
	s.RefreshData(ctx)
	return true
}

// Status 离线标记 + last_sync 指示
func (s *ReliefService) Status(ctx context.Context) SyncStatus {
	status := SyncStatus{Offline: s.sel.Offline()}
	if s.cache != nil {
		if last, err := s.cache.LastSync(ctx); err == nil && !last.IsZero() {
			status.LastSync = last.Format(time.RFC3339)
		}
	}
	s.mu.Lock()
	if !s.lastRefreshTry.IsZero() {
		status.LastRefreshTry = s.lastRefreshTry.Format(time.RFC3339)
	}
	s.mu.Unlock()
	return status
}

// submitLocked 写路径的统一提交：managed/remote 未配置时自动跳过对应层
func (s *ReliefService) submitLocked(ctx context.Context, op string, managed, remote func(ctx context.Context) error) selector.Tier {
	var managedRun, remoteRun func(ctx context.Context) error
	if s.centersDB != nil && s.guestsDB != nil {
		managedRun = managed
	}
	if s.remote != nil {
		remoteRun = remote
	}
	tier, err := s.sel.Execute(ctx, op, []selector.Attempt{
		{Tier: selector.TierManaged, Run: managedRun},
		{Tier: selector.TierRemote, Run: remoteRun},
	}, nil)
	if err != nil {
		// 远端 NotFound（本地与远端漂移）：当作未确认提交，不前移 last_sync
		return selector.TierLocal
	}
	return tier
}
