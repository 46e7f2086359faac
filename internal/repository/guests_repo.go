package repository

import (
	"context"

	"relief-data/internal/domain"
)

// GuestFilters 人员查询过滤器
type GuestFilters struct {
	// 按所属中心过滤
	CenterID string

	// 模糊搜索：姓名、手机号、邮箱、ID（大小写不敏感）
	Search string
}

// GuestsRepository 避灾人员 Repository 接口
type GuestsRepository interface {
	// 查询接口（结果按 created_at 倒序）
	ListGuests(ctx context.Context, filters GuestFilters) ([]*domain.Guest, error)
	GetGuest(ctx context.Context, guestID string) (*domain.Guest, error)

	// 写入接口
	CreateGuest(ctx context.Context, guest *domain.Guest) error
	UpdateGuest(ctx context.Context, guest *domain.Guest) error

	// 删除接口（幂等）
	DeleteGuest(ctx context.Context, guestID string) error

	// 级联删除：删除某中心的全部人员，返回删除数量
	DeleteGuestsByCenter(ctx context.Context, centerID string) (int, error)
}
