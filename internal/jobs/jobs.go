// Package jobs 后台定时任务：离线重连探测与周期性数据刷新。
package jobs

import (
	"context"
	"time"

	"relief-data/internal/service"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Runner 封装 cron 调度器生命周期
type Runner struct {
	cron   *cron.Cron
	logger *zap.Logger
}

// Start 注册并启动定时任务：
// - 每分钟：离线时探测远端恢复（恢复成功自动触发刷新）
// - 每 10 分钟：全量容量重算 + 从最优后端重拉
func Start(svc *service.ReliefService, logger *zap.Logger) *Runner {
	c := cron.New()

	if _, err := c.AddFunc("* * * * *", func() {
		if !svc.IsOffline() {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if svc.RetryConnection(ctx) {
			logger.Info("Backend connection restored by background probe")
		}
	}); err != nil {
		logger.Error("Failed to schedule reconnect job", zap.Error(err))
	}

	if _, err := c.AddFunc("*/10 * * * *", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		svc.ResyncCapacity(ctx)
		svc.RefreshData(ctx)
	}); err != nil {
		logger.Error("Failed to schedule refresh job", zap.Error(err))
	}

	c.Start()
	logger.Info("Background jobs started")
	return &Runner{cron: c, logger: logger}
}

// Stop 停止调度并等待在跑任务结束
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.logger.Info("Background jobs stopped")
}
