// Package client 封装远端后端（Remote Backend）HTTP 客户端。
// 只提供统一的 get/post/put/delete 与健康探测，不感知领域实体；
// 行格式的编解码由调用方通过 wire 包完成。
package client

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"relief-data/internal/auth"
	"relief-data/internal/domain"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// BackendClient 远端后端客户端
type BackendClient struct {
	httpClient *resty.Client
	tokens     auth.TokenSource
	logger     *zap.Logger
}

// NewBackendClient 创建远端后端客户端
// timeout 约束单次数据调用（推荐 8-10s）；健康探测另行用 ≤5s 的 ctx 控制
func NewBackendClient(baseURL string, tokens auth.TokenSource, timeout time.Duration, logger *zap.Logger) *BackendClient {
	httpClient := resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &BackendClient{
		httpClient: httpClient,
		tokens:     tokens,
		logger:     logger,
	}
}

// request 组装单次请求：ctx + 可选 Bearer 头
func (c *BackendClient) request(ctx context.Context) *resty.Request {
	req := c.httpClient.R().SetContext(ctx)
	if c.tokens != nil {
		if token, ok := c.tokens.Token(); ok {
			req.SetHeader("Authorization", "Bearer "+token)
		}
	}
	return req
}

// checkResponse 统一错误分类：404 -> ErrNotFound，其余非 2xx -> ErrBackendUnavailable
func (c *BackendClient) checkResponse(op, path string, resp *resty.Response, err error) error {
	if err != nil {
		c.logger.Warn("Remote backend call failed",
			zap.String("op", op),
			zap.String("path", path),
			zap.Error(err),
		)
		return fmt.Errorf("%s %s: %v: %w", op, path, err, domain.ErrBackendUnavailable)
	}
	if resp.StatusCode() == http.StatusNotFound {
		return fmt.Errorf("%s %s: %w", op, path, domain.ErrNotFound)
	}
	if resp.IsError() {
		c.logger.Warn("Remote backend returned error status",
			zap.String("op", op),
			zap.String("path", path),
			zap.Int("status_code", resp.StatusCode()),
		)
		return fmt.Errorf("%s %s: status %d: %w", op, path, resp.StatusCode(), domain.ErrBackendUnavailable)
	}
	return nil
}

// Get 发起 GET，2xx 时把响应体解码进 out（out 可为 nil）
func (c *BackendClient) Get(ctx context.Context, path string, out any) error {
	req := c.request(ctx)
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Get(path)
	return c.checkResponse("GET", path, resp, err)
}

// Post 发起 POST，body 编码为 JSON，2xx 时解码进 out
func (c *BackendClient) Post(ctx context.Context, path string, body, out any) error {
	req := c.request(ctx).SetBody(body)
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Post(path)
	return c.checkResponse("POST", path, resp, err)
}

// Put 发起 PUT
func (c *BackendClient) Put(ctx context.Context, path string, body, out any) error {
	req := c.request(ctx).SetBody(body)
	if out != nil {
		req.SetResult(out)
	}
	resp, err := req.Put(path)
	return c.checkResponse("PUT", path, resp, err)
}

// Delete 发起 DELETE（响应体忽略）
func (c *BackendClient) Delete(ctx context.Context, path string) error {
	resp, err := c.request(ctx).Delete(path)
	return c.checkResponse("DELETE", path, resp, err)
}

// Health 健康探测（调用方自带短超时 ctx，错误不上抛业务层）
func (c *BackendClient) Health(ctx context.Context) error {
	resp, err := c.request(ctx).Get("/health")
	return c.checkResponse("GET", "/health", resp, err)
}
