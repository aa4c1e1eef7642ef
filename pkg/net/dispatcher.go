package net

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// TokenProvider 定义"提供访问凭证"的行为标准
type TokenProvider interface {
	// GetAccessToken 根据业务唯一键 (accountID) 获取一个可用的 access token
	GetAccessToken(ctx context.Context, accountID int64) (string, error)

	// ReportUnauthorized 上报该账号的凭证已失效 (收到 401)
	// 业务层实现需在此方法中执行：标记 token 状态、触发刷新等
	ReportUnauthorized(ctx context.Context, accountID int64)
}

// Dispatcher 网络调度器 (通用组件)
type Dispatcher interface {
	// Send 发送 HTTP 请求
	// accountID: 业务实体的唯一标识，0 表示匿名请求（公开接口）
	// req: 标准的 http.Request 对象，Authorization 头由调度器注入
	Send(ctx context.Context, accountID int64, req *http.Request) (*http.Response, error)
}

// httpDispatcher 是 Dispatcher 接口的具体实现
// 注意：它是私有的，外部只能通过 NewDispatcher 获取接口
type httpDispatcher struct {
	provider   TokenProvider
	clientOnce sync.Once
	client     *http.Client
	maxRetries int
	timeout    time.Duration
}

var _ Dispatcher = (*httpDispatcher)(nil)

func NewDispatcher(provider TokenProvider) Dispatcher {
	return &httpDispatcher{
		provider:   provider,
		maxRetries: 2,
		// 每个出站请求的硬超时，避免单个慢请求拖垮聚合
		timeout: 10 * time.Second,
	}
}

// Send 发送 HTTP 请求 (自动注入凭证、处理重试与 401 上报)
func (d *httpDispatcher) Send(ctx context.Context, accountID int64, req *http.Request) (*http.Response, error) {
	var lastErr error

	for i := 0; i <= d.maxRetries; i++ {
		// 0. 重试前重绕请求体：上一次发送已把 body 读空，
		// 不重绕的话 POST/PUT 重试会发出空 body
		if i > 0 && req.GetBody != nil {
			body, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("rewind request body: %v", err)
			}
			req.Body = body
		}

		// 1. 通过接口回调，获取凭证 (刷新逻辑在业务层实现)
		if accountID > 0 && d.provider != nil {
			token, err := d.provider.GetAccessToken(ctx, accountID)
			if err != nil {
				return nil, fmt.Errorf("token provider error: %v", err)
			}
			req.Header.Set("Authorization", "Bearer "+token)
		}

		// 2. 发送请求
		resp, err := d.getClient().Do(req)

		// 网络层失败，重试
		if err != nil {
			lastErr = err
			continue
		}

		// 3. 凭证失效：上报并重试（业务层可能已刷新出新 token）
		if resp.StatusCode == http.StatusUnauthorized && accountID > 0 && i < d.maxRetries {
			resp.Body.Close()
			if d.provider != nil {
				d.provider.ReportUnauthorized(ctx, accountID)
			}
			lastErr = fmt.Errorf("unauthorized (account %d)", accountID)
			continue
		}

		// 429 限流：短暂退避后重试
		if resp.StatusCode == http.StatusTooManyRequests && i < d.maxRetries {
			resp.Body.Close()
			lastErr = fmt.Errorf("rate limited")
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(i+1) * 500 * time.Millisecond):
			}
			continue
		}

		return resp, nil
	}

	return nil, fmt.Errorf("request failed after retries: %v", lastErr)
}

// getClient 内部复用逻辑
// ML 是单一官方域名，共享一个 Transport 做 TCP 复用即可
func (d *httpDispatcher) getClient() *http.Client {
	d.clientOnce.Do(func() {
		d.client = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 20,
				IdleConnTimeout:     90 * time.Second,
			},
			Timeout: d.timeout,
		}
	})
	return d.client
}
