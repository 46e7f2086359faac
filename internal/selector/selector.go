// Package selector 实现后端选择器：每次逻辑操作按
// Managed Database -> Remote Backend -> 本地（内存+缓存）的顺序尝试，
// 远端失败只作为降级信号，本地层永远成功。
// 所有 facade 方法复用同一条尝试链，不再每个方法手写 try/catch 级联。
package selector

import (
	"context"
	"sync/atomic"
	"time"

	"relief-data/internal/domain"

	"go.uber.org/zap"
)

// Tier 后端层级
type Tier int

const (
	TierManaged Tier = iota // 托管数据库（Postgres）
	TierRemote              // 远端后端 HTTP API
	TierLocal               // 内存 + 本地缓存
)

func (t Tier) String() string {
	switch t {
	case TierManaged:
		return "managed"
	case TierRemote:
		return "remote"
	default:
		return "local"
	}
}

// Attempt 一次远端尝试：闭包内完成调用并填充结果
type Attempt struct {
	Tier Tier
	Run  func(ctx context.Context) error
}

// Probe 健康探测函数（nil 表示该层未配置）
type Probe func(ctx context.Context) error

// Options 超时参数；零值采用推荐默认（数据调用 8s、健康探测 5s）
type Options struct {
	Timeout      time.Duration
	ProbeTimeout time.Duration
}

// Selector 后端选择器
type Selector struct {
	logger       *zap.Logger
	timeout      time.Duration
	probeTimeout time.Duration
	managedProbe Probe
	remoteProbe  Probe
	offline      atomic.Bool
}

// New 创建选择器。两个 probe 都为 nil 时系统从一开始就是离线模式。
func New(managedProbe, remoteProbe Probe, logger *zap.Logger, opts Options) *Selector {
	if opts.Timeout <= 0 {
		opts.Timeout = 8 * time.Second
	}
	if opts.ProbeTimeout <= 0 {
		opts.ProbeTimeout = 5 * time.Second
	}
	s := &Selector{
		logger:       logger,
		timeout:      opts.Timeout,
		probeTimeout: opts.ProbeTimeout,
		managedProbe: managedProbe,
		remoteProbe:  remoteProbe,
	}
	s.offline.Store(managedProbe == nil && remoteProbe == nil)
	return s
}

// Execute 依次执行远端尝试，统一加超时、统一分类错误：
// - 成功：清离线标记，返回该层级
// - ErrNotFound：权威结果，直接上抛（不再降级）
// - 其它错误（含超时）：按 backend unavailable 降到下一层
// 所有远端层都失败（或都未配置）时执行 local 并返回 TierLocal；local 永不失败。
func (s *Selector) Execute(ctx context.Context, op string, attempts []Attempt, local func()) (Tier, error) {
	remoteTried := false
	for _, a := range attempts {
		if a.Run == nil {
			continue
		}
		remoteTried = true

		attemptCtx, cancel := context.WithTimeout(ctx, s.timeout)
		err := a.Run(attemptCtx)
		cancel()

		if err == nil {
			s.offline.Store(false)
			return a.Tier, nil
		}
		if domain.IsNotFound(err) {
			s.offline.Store(false)
			return a.Tier, err
		}
		s.logger.Warn("Backend tier failed, falling through",
			zap.String("op", op),
			zap.String("tier", a.Tier.String()),
			zap.Error(err),
		)
	}

	if remoteTried {
		s.offline.Store(true)
	}
	if local != nil {
		local()
	}
	return TierLocal, nil
}

// Offline 最近一次远端尝试是否失败
func (s *Selector) Offline() bool {
	return s.offline.Load()
}

// RetryConnection 重新探测远端健康端点并翻转离线标记。
// 只用探测超时，错误不上抛；任一层恢复即视为在线。
func (s *Selector) RetryConnection(ctx context.Context) bool {
	for _, probe := range []struct {
		tier Tier
		fn   Probe
	}{
		{TierManaged, s.managedProbe},
		{TierRemote, s.remoteProbe},
	} {
		if probe.fn == nil {
			continue
		}
		probeCtx, cancel := context.WithTimeout(ctx, s.probeTimeout)
		err := probe.fn(probeCtx)
		cancel()
		if err == nil {
			s.offline.Store(false)
			s.logger.Info("Backend tier reachable again", zap.String("tier", probe.tier.String()))
			return true
		}
		s.logger.Debug("Health probe failed",
			zap.String("tier", probe.tier.String()),
			zap.Error(err),
		)
	}
	s.offline.Store(true)
	return false
}
