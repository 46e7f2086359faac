// Package auth 承接认证协作方下发的会话 token。
// 数据层把 token 当作不透明字符串附到 Authorization: Bearer 头上；
// 唯一的本地判断是 JWT 的 exp：已过期的 token 不再上送，
// 让调用直接走匿名/离线路径而不是反复收 401。
package auth

import (
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenSource 提供当前会话 token；ok=false 表示匿名模式（不带 Authorization 头）
type TokenSource interface {
	Token() (token string, ok bool)
}

// StaticTokenSource 固定 token 源（进程启动时由配置注入，可热更新）
type StaticTokenSource struct {
	mu  sync.RWMutex
	raw string
}

// NewStaticTokenSource 创建 token 源；raw 为空即匿名模式
func NewStaticTokenSource(raw string) *StaticTokenSource {
	return &StaticTokenSource{raw: strings.TrimSpace(raw)}
}

var _ TokenSource = (*StaticTokenSource)(nil)

// Token 返回当前 token；过期 JWT 视同无 token
func (s *StaticTokenSource) Token() (string, bool) {
	s.mu.RLock()
	raw := s.raw
	s.mu.RUnlock()

	if raw == "" {
		return "", false
	}
	if expired(raw) {
		return "", false
	}
	return raw, true
}

// SetToken 更新 token（认证协作方刷新会话后调用）
func (s *StaticTokenSource) SetToken(raw string) {
	s.mu.Lock()
	s.raw = strings.TrimSpace(raw)
	s.mu.Unlock()
}

// expired 仅当 token 是可解析的 JWT 且 exp 已过时返回 true。
// 不校验签名（签名归远端验证），非 JWT 的 token 原样放行。
func expired(raw string) bool {
	claims := jwt.RegisteredClaims{}
	_, _, err := jwt.NewParser().ParseUnverified(raw, &claims)
	if err != nil {
		return false
	}
	if claims.ExpiresAt == nil {
		return false
	}
	return claims.ExpiresAt.Before(time.Now())
}
