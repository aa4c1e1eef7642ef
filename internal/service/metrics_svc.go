package service

import (
	"context"
	"fmt"
	"time"

	"meli_hub_v1_202608/internal/model"
	"meli_hub_v1_202608/pkg/cache"
	"meli_hub_v1_202608/pkg/meli"
	"meli_hub_v1_202608/pkg/net"
)

// ==================== MetricsService ====================

// MetricsService 市场指标服务: 访问量 / 信誉
// 这两个 ML 接口配额紧且数据变化慢，结果走 Redis 缓存
type MetricsService struct {
	dispatcher net.Dispatcher
	metrics    *cache.MetricCache // 可为 nil，降级为直连
}

// NewMetricsService 创建指标服务
func NewMetricsService(dispatcher net.Dispatcher, metrics *cache.MetricCache) *MetricsService {
	return &MetricsService{dispatcher: dispatcher, metrics: metrics}
}

// VisitsResult 账号访问量
type VisitsResult struct {
	TotalVisits int64        `json:"total_visits"`
	Daily       []VisitPoint `json:"daily"`
}

// VisitPoint 单日访问量
type VisitPoint struct {
	Date   string `json:"date"`
	Visits int64  `json:"visits"`
}

// GetVisits 账号近 N 天商品访问量: /users/:id/items_visits/time_window
func (s *MetricsService) GetVisits(ctx context.Context, account *model.Account, days int) (*VisitsResult, error) {
	if days < 1 {
		days = 7
	}

	var result VisitsResult
	if s.metrics.GetJSON(ctx, account.ID, "visits", &result, days) {
		return &result, nil
	}

	var dto meli.VisitsDTO
	url := fmt.Sprintf("%s/users/%d/items_visits/time_window?last=%d&unit=day",
		meli.BaseURL, account.MeliUserID, days)
	if err := fetchMeliJSON(ctx, s.dispatcher, account.ID, url, &dto); err != nil {
		return nil, fmt.Errorf("拉取访问量失败: %w", err)
	}

	result.TotalVisits = dto.TotalVisits
	result.Daily = make([]VisitPoint, 0, len(dto.Results))
	for _, r := range dto.Results {
		// ML 返回完整时间戳，只保留日期部分
		day := r.Date
		if t, err := time.Parse(time.RFC3339, r.Date); err == nil {
			day = t.Format("2006-01-02")
		}
		result.Daily = append(result.Daily, VisitPoint{Date: day, Visits: r.Total})
	}

	s.metrics.SetJSON(ctx, account.ID, "visits", &result, days)
	return &result, nil
}

// ReputationResult 卖家信誉快照
type ReputationResult struct {
	Level          string  `json:"level"`
	PowerSeller    string  `json:"power_seller"`
	RatingPositive float64 `json:"rating_positive"`
	CompletedCount int     `json:"completed_count"`
	CanceledCount  int     `json:"canceled_count"`
}

// GetReputation 卖家信誉: /users/:id
func (s *MetricsService) GetReputation(ctx context.Context, account *model.Account) (*ReputationResult, error) {
	var result ReputationResult
	if s.metrics.GetJSON(ctx, account.ID, "reputation", &result) {
		return &result, nil
	}

	var dto meli.UserDTO
	url := fmt.Sprintf("%s/users/%d", meli.BaseURL, account.MeliUserID)
	if err := fetchMeliJSON(ctx, s.dispatcher, account.ID, url, &dto); err != nil {
		return nil, fmt.Errorf("拉取信誉失败: %w", err)
	}
	if dto.SellerReputation == nil {
		return nil, fmt.Errorf("账号 %d 暂无信誉数据", account.ID)
	}

	result.Level = dto.SellerReputation.LevelID
	result.PowerSeller = dto.SellerReputation.PowerSellerStatus
	result.RatingPositive = dto.SellerReputation.Transactions.Ratings.Positive
	result.CompletedCount = dto.SellerReputation.Transactions.Completed
	result.CanceledCount = dto.SellerReputation.Transactions.Canceled

	s.metrics.SetJSON(ctx, account.ID, "reputation", &result)
	return &result, nil
}

// InvalidateAccount 账号重新同步后清缓存
func (s *MetricsService) InvalidateAccount(ctx context.Context, accountID int64) {
	s.metrics.Invalidate(ctx, accountID)
}
