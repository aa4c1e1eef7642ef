package mpago

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// BaseURL Mercado Pago 接口域名
const BaseURL = "https://api.mercadopago.com"

// Client Mercado Pago API 客户端
// MP 与 ML 共用同一套 OAuth token，按账号传入
type Client struct {
	http *resty.Client
}

// NewClient 创建 MP 客户端
func NewClient() *Client {
	c := resty.New()
	c.SetBaseURL(BaseURL)
	// 设置超时和重试，防止网络波动
	c.SetTimeout(10 * time.Second)
	c.SetRetryCount(2)
	c.SetRetryWaitTime(500 * time.Millisecond)

	return &Client{http: c}
}

// SearchPayments 查询收款列表（按创建时间倒序）
func (c *Client) SearchPayments(ctx context.Context, accessToken string, offset, limit int) (*PaymentSearchResp, error) {
	var out PaymentSearchResp

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParams(map[string]string{
			"sort":     "date_created",
			"criteria": "desc",
			"offset":   fmt.Sprintf("%d", offset),
			"limit":    fmt.Sprintf("%d", limit),
		}).
		SetResult(&out).
		Get("/v1/payments/search")
	if err != nil {
		return nil, fmt.Errorf("MP 请求失败: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("MP api error [%d]: %s", resp.StatusCode(), resp.String())
	}

	return &out, nil
}

// GetPayment 查询单笔收款
func (c *Client) GetPayment(ctx context.Context, accessToken string, paymentID int64) (*PaymentDTO, error) {
	var out PaymentDTO

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetResult(&out).
		Get(fmt.Sprintf("/v1/payments/%d", paymentID))
	if err != nil {
		return nil, fmt.Errorf("MP 请求失败: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("MP api error [%d]: %s", resp.StatusCode(), resp.String())
	}

	return &out, nil
}

// RefundPayment 发起退款
// amount 为 0 时全额退款；幂等键防止网络重试导致重复退款
func (c *Client) RefundPayment(ctx context.Context, accessToken string, paymentID int64, amount float64) (*RefundDTO, error) {
	var out RefundDTO

	req := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		// MP 要求退款请求必须带幂等键
		SetHeader("X-Idempotency-Key", uuid.NewString()).
		SetResult(&out)

	if amount > 0 {
		req.SetBody(map[string]float64{"amount": amount})
	}

	resp, err := req.Post(fmt.Sprintf("/v1/payments/%d/refunds", paymentID))
	if err != nil {
		return nil, fmt.Errorf("MP 退款请求失败: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("MP refund error [%d]: %s", resp.StatusCode(), resp.String())
	}

	return &out, nil
}

// SearchSubscriptions 查询订阅（preapproval）列表
func (c *Client) SearchSubscriptions(ctx context.Context, accessToken string, sellerID int64, offset, limit int) (*SubscriptionSearchResp, error) {
	var out SubscriptionSearchResp

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetQueryParams(map[string]string{
			"seller_id": fmt.Sprintf("%d", sellerID),
			"offset":    fmt.Sprintf("%d", offset),
			"limit":     fmt.Sprintf("%d", limit),
		}).
		SetResult(&out).
		Get("/preapproval/search")
	if err != nil {
		return nil, fmt.Errorf("MP 请求失败: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("MP api error [%d]: %s", resp.StatusCode(), resp.String())
	}

	return &out, nil
}

// UpdateSubscriptionStatus 更新订阅状态 (paused / cancelled / authorized)
func (c *Client) UpdateSubscriptionStatus(ctx context.Context, accessToken, preapprovalID, status string) (*SubscriptionDTO, error) {
	var out SubscriptionDTO

	resp, err := c.http.R().
		SetContext(ctx).
		SetAuthToken(accessToken).
		SetBody(map[string]string{"status": status}).
		SetResult(&out).
		Put(fmt.Sprintf("/preapproval/%s", preapprovalID))
	if err != nil {
		return nil, fmt.Errorf("MP 请求失败: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("MP api error [%d]: %s", resp.StatusCode(), resp.String())
	}

	return &out, nil
}
