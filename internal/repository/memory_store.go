package repository

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"relief-data/internal/domain"
)

// MemoryStore 内存层：既是离线模式的最终兜底，也是 facade 的进程内状态。
// 所有读写都在一把 RWMutex 下串行化；返回值均为副本，调用方可以安全修改。
type MemoryStore struct {
	mu      sync.RWMutex
	centers map[string]domain.RescueCenter
	guests  map[string]domain.Guest
}

// NewMemoryStore 创建空的内存层
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		centers: map[string]domain.RescueCenter{},
		guests:  map[string]domain.Guest{},
	}
}

// 确保实现了接口
var (
	_ CentersRepository = (*MemoryStore)(nil)
	_ GuestsRepository  = (*MemoryStore)(nil)
)

func copyCenter(c domain.RescueCenter) domain.RescueCenter {
	if c.Facilities != nil {
		c.Facilities = append([]string(nil), c.Facilities...)
	}
	return c
}

// ---- CentersRepository ----

func (s *MemoryStore) ListCenters(_ context.Context) ([]*domain.RescueCenter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	centers := make([]*domain.RescueCenter, 0, len(s.centers))
	for _, c := range s.centers {
		cc := copyCenter(c)
		centers = append(centers, &cc)
	}
	sort.Slice(centers, func(i, j int) bool { return centers[i].ID < centers[j].ID })
	return centers, nil
}

func (s *MemoryStore) GetCenter(_ context.Context, centerID string) (*domain.RescueCenter, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.centers[centerID]
	if !ok {
		return nil, fmt.Errorf("center %s: %w", centerID, domain.ErrNotFound)
	}
	cc := copyCenter(c)
	return &cc, nil
}

func (s *MemoryStore) CreateCenter(_ context.Context, c *domain.RescueCenter) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.centers[c.ID] = copyCenter(*c)
	return nil
}

func (s *MemoryStore) UpdateCenter(_ context.Context, c *domain.RescueCenter) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.centers[c.ID]; !ok {
		return fmt.Errorf("center %s: %w", c.ID, domain.ErrNotFound)
	}
	s.centers[c.ID] = copyCenter(*c)
	return nil
}

func (s *MemoryStore) DeleteCenter(_ context.Context, centerID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.centers, centerID)
	return nil
}

// ---- GuestsRepository ----

func (s *MemoryStore) ListGuests(_ context.Context, filters GuestFilters) ([]*domain.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	guests := make([]*domain.Guest, 0, len(s.guests))
	for _, g := range s.guests {
		if filters.CenterID != "" && g.CenterID != filters.CenterID {
			continue
		}
		if !g.Matches(filters.Search) {
			continue
		}
		gg := g
		guests = append(guests, &gg)
	}
	// created_at 倒序，时间相同按 id 倒序保证稳定
	sort.Slice(guests, func(i, j int) bool {
		if !guests[i].CreatedAt.Equal(guests[j].CreatedAt) {
			return guests[i].CreatedAt.After(guests[j].CreatedAt)
		}
		return guests[i].ID > guests[j].ID
	})
	return guests, nil
}

func (s *MemoryStore) GetGuest(_ context.Context, guestID string) (*domain.Guest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.guests[guestID]
	if !ok {
		return nil, fmt.Errorf("guest %s: %w", guestID, domain.ErrNotFound)
	}
	return &g, nil
}

func (s *MemoryStore) CreateGuest(_ context.Context, g *domain.Guest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.guests[g.ID] = *g
	return nil
}

func (s *MemoryStore) UpdateGuest(_ context.Context, g *domain.Guest) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.guests[g.ID]; !ok {
		return fmt.Errorf("guest %s: %w", g.ID, domain.ErrNotFound)
	}
	s.guests[g.ID] = *g
	return nil
}

func (s *MemoryStore) DeleteGuest(_ context.Context, guestID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.guests, guestID)
	return nil
}

func (s *MemoryStore) DeleteGuestsByCenter(_ context.Context, centerID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	deleted := 0
	for id, g := range s.guests {
		if g.CenterID == centerID {
			delete(s.guests, id)
			deleted++
		}
	}
	return deleted, nil
}

// ---- 快照与辅助（facade/cache 专用）----

// Snapshot 导出当前状态的副本（持久化到本地缓存用）
func (s *MemoryStore) Snapshot() ([]domain.RescueCenter, []domain.Guest) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	centers := make([]domain.RescueCenter, 0, len(s.centers))
	for _, c := range s.centers {
		centers = append(centers, copyCenter(c))
	}
	sort.Slice(centers, func(i, j int) bool { return centers[i].ID < centers[j].ID })

	guests := make([]domain.Guest, 0, len(s.guests))
	for _, g := range s.guests {
		guests = append(guests, g)
	}
	sort.Slice(guests, func(i, j int) bool { return guests[i].ID < guests[j].ID })
	return centers, guests
}

// ReplaceAll 整体替换状态（远端拉取成功 / 缓存恢复时使用，盲覆盖即 last-writer-wins）
func (s *MemoryStore) ReplaceAll(centers []domain.RescueCenter, guests []domain.Guest) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.centers = make(map[string]domain.RescueCenter, len(centers))
	for _, c := range centers {
		s.centers[c.ID] = copyCenter(c)
	}
	s.guests = make(map[string]domain.Guest, len(guests))
	for _, g := range guests {
		s.guests[g.ID] = g
	}
}

// Empty 是否没有任何数据（启动播种判断用）
func (s *MemoryStore) Empty() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.centers) == 0 && len(s.guests) == 0
}

// NextCenterID 生成下一个顺序中心 id（RC001、RC002…）
func (s *MemoryStore) NextCenterID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	max := 0
	for id := range s.centers {
		var n int
		if _, err := fmt.Sscanf(strings.ToUpper(id), "RC%d", &n); err == nil && n > max {
			max = n
		}
	}
	return fmt.Sprintf("RC%03d", max+1)
}
