package service

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"meli_hub_v1_202608/internal/api/dto"
	"meli_hub_v1_202608/internal/model"
	"meli_hub_v1_202608/internal/repository"
)

// ==================== DashboardService ====================

// dashboardConcurrency 账号级并发拉取上限
const dashboardConcurrency = 5

// DashboardService 跨账号聚合看板
// 核心口径：单个账号拉取失败不影响整体返回，失败账号计零并列入 failed
type DashboardService struct {
	accountRepo  repository.AccountRepository
	orderRepo    repository.OrderRepository
	productRepo  repository.ProductRepository
	questionRepo repository.QuestionRepository
	claimRepo    repository.ClaimRepository
	shipmentRepo repository.ShipmentRepository
	metrics      *MetricsService
}

// NewDashboardService 创建看板服务
func NewDashboardService(
	accountRepo repository.AccountRepository,
	orderRepo repository.OrderRepository,
	productRepo repository.ProductRepository,
	questionRepo repository.QuestionRepository,
	claimRepo repository.ClaimRepository,
	shipmentRepo repository.ShipmentRepository,
	metrics *MetricsService,
) *DashboardService {
	return &DashboardService{
		accountRepo:  accountRepo,
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		questionRepo: questionRepo,
		claimRepo:    claimRepo,
		shipmentRepo: shipmentRepo,
		metrics:      metrics,
	}
}

// accountResult 单账号拉取结果
type accountResult struct {
	account    *model.Account
	stats      *repository.OrderStats
	visits     int64
	reputation *ReputationInfoSource
	err        error
}

// ReputationInfoSource 信誉来源（账号 + 快照）
type ReputationInfoSource struct {
	AccountID int64
	Data      *ReputationResult
}

// GetDashboard 聚合看板主入口
//
// 流程:
//  1. 解析时间范围与账号范围
//  2. 按账号并发拉取（订单统计 + 访问量 + 信誉），失败账号计零
//  3. 对成功账号集合做跨账号聚合（折线 / 热销 / 告警 / 最近订单）
func (s *DashboardService) GetDashboard(ctx context.Context, ownerID int64, req *dto.DashboardRequest) (*dto.DashboardResponse, error) {
	from, to, err := parsePeriod(req)
	if err != nil {
		return nil, err
	}

	accounts, err := s.resolveAccounts(ctx, ownerID, req.AccountIDs)
	if err != nil {
		return nil, err
	}

	resp := &dto.DashboardResponse{
		Summary:      &dto.DashboardSummary{},
		SalesSeries:  []dto.SalesPoint{},
		TopProducts:  []dto.TopProductItem{},
		Alerts:       []dto.Alert{},
		RecentOrders: []dto.RecentOrderItem{},
		Accounts:     &dto.AccountsBreakdown{Included: []dto.AccountBrief{}, Failed: []dto.AccountError{}},
	}
	if len(accounts) == 0 {
		return resp, nil
	}

	// 2. 账号级并发拉取，信号量限流
	results := make([]accountResult, len(accounts))
	sem := make(chan struct{}, dashboardConcurrency)
	var wg sync.WaitGroup

	for i := range accounts {
		wg.Add(1)
		sem <- struct{}{}
		go func(idx int, account *model.Account) {
			defer wg.Done()
			defer func() { <-sem }()
			results[idx] = s.fetchAccount(ctx, account, from, to)
		}(i, &accounts[i])
	}
	wg.Wait()

	// 3. 汇总：失败账号计零，成功账号进入聚合集合
	includedIDs := make([]int64, 0, len(accounts))
	var totalVisits int64
	var firstReputation *ReputationInfoSource

	for i := range results {
		r := &results[i]
		if r.err != nil {
			log.Printf("[Dashboard] 账号 %d (%s) 拉取失败: %v", r.account.ID, r.account.Nickname, r.err)
			resp.Accounts.Failed = append(resp.Accounts.Failed, dto.AccountError{
				ID:       r.account.ID,
				Nickname: r.account.Nickname,
				Reason:   r.err.Error(),
			})
			continue
		}

		includedIDs = append(includedIDs, r.account.ID)
		resp.Accounts.Included = append(resp.Accounts.Included, dto.AccountBrief{
			ID:       r.account.ID,
			Nickname: r.account.Nickname,
			SiteID:   r.account.SiteID,
			Revenue:  float64(r.stats.RevenueCents) / 100,
		})

		resp.Summary.OrderCount += r.stats.OrderCount
		resp.Summary.TotalRevenue += float64(r.stats.RevenueCents) / 100
		resp.Summary.UnitsSold += r.stats.UnitsSold
		totalVisits += r.visits

		if firstReputation == nil && r.reputation != nil {
			firstReputation = r.reputation
		}
	}

	// 派生指标，除零安全
	resp.Summary.TotalVisits = totalVisits
	if resp.Summary.OrderCount > 0 {
		resp.Summary.AvgTicket = resp.Summary.TotalRevenue / float64(resp.Summary.OrderCount)
	}
	if totalVisits > 0 {
		// 百分比口径：订单数/访问量×100
		resp.Summary.ConversionRate = float64(resp.Summary.OrderCount) / float64(totalVisits) * 100
	}

	if firstReputation != nil {
		resp.Reputation = &dto.ReputationInfo{
			AccountID:      firstReputation.AccountID,
			Level:          firstReputation.Data.Level,
			PowerSeller:    firstReputation.Data.PowerSeller,
			RatingPositive: firstReputation.Data.RatingPositive,
		}
	}

	if len(includedIDs) == 0 {
		return resp, nil
	}

	// 跨账号聚合部分任一失败整体报错（本地库查询，不属于账号级降级范畴）
	if resp.SalesSeries, err = s.buildSalesSeries(ctx, includedIDs, from, to); err != nil {
		return nil, err
	}
	if resp.TopProducts, err = s.buildTopProducts(ctx, includedIDs, from, to); err != nil {
		return nil, err
	}
	if resp.Alerts, err = s.buildAlerts(ctx, includedIDs); err != nil {
		return nil, err
	}
	if resp.RecentOrders, err = s.buildRecentOrders(ctx, includedIDs); err != nil {
		return nil, err
	}

	return resp, nil
}

// fetchAccount 拉取单账号指标
// 指标级降级：只有订单统计失败才判定账号失败；
// 访问量 / 信誉拿不到时该指标计零，账号照常进入聚合
func (s *DashboardService) fetchAccount(ctx context.Context, account *model.Account, from, to time.Time) accountResult {
	result := accountResult{account: account}

	stats, err := s.orderRepo.GetStats(ctx, []int64{account.ID}, from, to)
	if err != nil {
		result.err = fmt.Errorf("订单统计失败: %w", err)
		return result
	}
	result.stats = stats

	days := int(to.Sub(from).Hours()/24 + 0.5)
	if visits, err := s.metrics.GetVisits(ctx, account, days); err != nil {
		log.Printf("[Dashboard] 账号 %d (%s) 访问量拉取失败，计零: %v", account.ID, account.Nickname, err)
	} else {
		result.visits = visits.TotalVisits
	}

	if rep, err := s.metrics.GetReputation(ctx, account); err == nil {
		result.reputation = &ReputationInfoSource{AccountID: account.ID, Data: rep}
	}

	return result
}

// ==================== 聚合构建 ====================

func (s *DashboardService) buildSalesSeries(ctx context.Context, accountIDs []int64, from, to time.Time) ([]dto.SalesPoint, error) {
	points, err := s.orderRepo.DailyRevenueSeries(ctx, accountIDs, from, to)
	if err != nil {
		return nil, err
	}

	series := make([]dto.SalesPoint, 0, len(points))
	for _, p := range points {
		series = append(series, dto.SalesPoint{
			Date:    p.Day,
			Revenue: float64(p.RevenueCents) / 100,
			Orders:  p.OrderCount,
		})
	}
	return series, nil
}

func (s *DashboardService) buildTopProducts(ctx context.Context, accountIDs []int64, from, to time.Time) ([]dto.TopProductItem, error) {
	tops, err := s.productRepo.TopBySales(ctx, accountIDs, from, to, 5)
	if err != nil {
		return nil, err
	}

	items := make([]dto.TopProductItem, 0, len(tops))
	for _, t := range tops {
		items = append(items, dto.TopProductItem{
			MeliItemID: t.MeliItemID,
			Title:      t.Title,
			UnitsSold:  t.UnitsSold,
			Revenue:    float64(t.RevenueCents) / 100,
		})
	}
	return items, nil
}

// buildAlerts 告警，固定顺序: 库存 -> 咨询 -> 发货 -> 纠纷
func (s *DashboardService) buildAlerts(ctx context.Context, accountIDs []int64) ([]dto.Alert, error) {
	alerts := make([]dto.Alert, 0, 4)

	lowStock, err := s.productRepo.CountLowStock(ctx, accountIDs, model.LowStockThreshold)
	if err != nil {
		return nil, err
	}
	if lowStock > 0 {
		alerts = append(alerts, dto.Alert{
			Type:     "low_stock",
			Severity: "warning",
			Count:    lowStock,
			Message:  fmt.Sprintf("%d 个在售商品库存不足 %d 件", lowStock, model.LowStockThreshold),
		})
	}

	unanswered, err := s.questionRepo.CountUnanswered(ctx, accountIDs)
	if err != nil {
		return nil, err
	}
	if unanswered > 0 {
		alerts = append(alerts, dto.Alert{
			Type:     "unanswered_questions",
			Severity: "warning",
			Count:    unanswered,
			Message:  fmt.Sprintf("%d 条买家咨询待回答", unanswered),
		})
	}

	pending, err := s.shipmentRepo.CountPendingDispatch(ctx, accountIDs)
	if err != nil {
		return nil, err
	}
	if pending > 0 {
		alerts = append(alerts, dto.Alert{
			Type:     "pending_shipments",
			Severity: "warning",
			Count:    pending,
			Message:  fmt.Sprintf("%d 个包裹待发货", pending),
		})
	}

	openClaims, err := s.claimRepo.CountOpen(ctx, accountIDs)
	if err != nil {
		return nil, err
	}
	if openClaims > 0 {
		alerts = append(alerts, dto.Alert{
			Type:     "open_claims",
			Severity: "critical",
			Count:    openClaims,
			Message:  fmt.Sprintf("%d 个纠纷待处理", openClaims),
		})
	}

	return alerts, nil
}

func (s *DashboardService) buildRecentOrders(ctx context.Context, accountIDs []int64) ([]dto.RecentOrderItem, error) {
	orders, err := s.orderRepo.RecentOrders(ctx, accountIDs, 5)
	if err != nil {
		return nil, err
	}

	items := make([]dto.RecentOrderItem, 0, len(orders))
	for i := range orders {
		o := &orders[i]
		item := dto.RecentOrderItem{
			ID:          o.ID,
			MeliOrderID: o.MeliOrderID,
			AccountID:   o.AccountID,
			BuyerNick:   o.BuyerNick,
			Status:      o.Status,
			Total:       o.GetTotal(),
		}
		if o.MeliCreatedAt != nil {
			item.DateCreated = o.MeliCreatedAt.Format(time.RFC3339)
		}
		items = append(items, item)
	}
	return items, nil
}

// ==================== 范围解析 ====================

// resolveAccounts 账号范围: 留空取该用户全部正常账号，指定则校验归属
func (s *DashboardService) resolveAccounts(ctx context.Context, ownerID int64, requested []int64) ([]model.Account, error) {
	if len(requested) == 0 {
		return s.accountRepo.ListActiveByOwner(ctx, ownerID)
	}

	accounts := make([]model.Account, 0, len(requested))
	for _, id := range requested {
		account, err := s.accountRepo.GetByID(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("账号 %d 不存在", id)
		}
		if account.OwnerID != ownerID {
			return nil, fmt.Errorf("无权访问账号 %d", id)
		}
		accounts = append(accounts, *account)
	}
	return accounts, nil
}

// parsePeriod 解析时间范围为 [from, to)
func parsePeriod(req *dto.DashboardRequest) (time.Time, time.Time, error) {
	now := time.Now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrow := midnight.AddDate(0, 0, 1)

	switch req.Period {
	case "", "7d":
		return midnight.AddDate(0, 0, -6), tomorrow, nil
	case "today":
		return midnight, tomorrow, nil
	case "15d":
		return midnight.AddDate(0, 0, -14), tomorrow, nil
	case "30d":
		return midnight.AddDate(0, 0, -29), tomorrow, nil
	case "60d":
		return midnight.AddDate(0, 0, -59), tomorrow, nil
	case "90d":
		return midnight.AddDate(0, 0, -89), tomorrow, nil
	case "custom":
		from, err := time.ParseInLocation("2006-01-02", req.From, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("from 日期格式错误，应为 2006-01-02")
		}
		to, err := time.ParseInLocation("2006-01-02", req.To, now.Location())
		if err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("to 日期格式错误，应为 2006-01-02")
		}
		if to.Before(from) {
			return time.Time{}, time.Time{}, fmt.Errorf("to 不能早于 from")
		}
		// to 为闭区间日期，转为次日零点的开区间
		return from, to.AddDate(0, 0, 1), nil
	default:
		return time.Time{}, time.Time{}, fmt.Errorf("不支持的 period: %s", req.Period)
	}
}
