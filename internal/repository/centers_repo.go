package repository

import (
	"context"

	"relief-data/internal/domain"
)

// CentersRepository 救援中心 Repository 接口
// 使用强类型领域模型；Repository 层只负责数据访问，派生字段由 service 层重算后写入
type CentersRepository interface {
	// 查询接口
	ListCenters(ctx context.Context) ([]*domain.RescueCenter, error)
	GetCenter(ctx context.Context, centerID string) (*domain.RescueCenter, error)

	// 写入接口
	CreateCenter(ctx context.Context, center *domain.RescueCenter) error
	UpdateCenter(ctx context.Context, center *domain.RescueCenter) error

	// 删除接口（幂等：不存在的 id 不报错；guest 级联由 service 层先行处理）
	DeleteCenter(ctx context.Context, centerID string) error
}
