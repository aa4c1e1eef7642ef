package service

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"meli_hub_v1_202608/internal/api/dto"
	"meli_hub_v1_202608/internal/model"
	"meli_hub_v1_202608/internal/repository"
)

// ==================== 测试辅助 ====================

// fakeMeliDispatcher 按 URL 返回固定响应，模拟 ML 远端
// failAccounts 中的账号所有请求直接报错，用于验证账号级降级
type fakeMeliDispatcher struct {
	failAccounts map[int64]bool
	visits       map[int64]int64 // accountID -> total_visits
}

func (d *fakeMeliDispatcher) Send(_ context.Context, accountID int64, req *http.Request) (*http.Response, error) {
	if d.failAccounts[accountID] {
		return nil, fmt.Errorf("connection refused")
	}

	var body string
	if strings.Contains(req.URL.Path, "items_visits") {
		body = fmt.Sprintf(`{"total_visits": %d, "results": []}`, d.visits[accountID])
	} else {
		body = `{
			"id": 100,
			"nickname": "SELLER",
			"seller_reputation": {
				"level_id": "5_green",
				"power_seller_status": "gold",
				"transactions": {"completed": 120, "canceled": 3, "ratings": {"positive": 0.97}}
			}
		}`
	}

	return &http.Response{
		StatusCode: http.StatusOK,
		Body:       io.NopCloser(strings.NewReader(body)),
		Header:     make(http.Header),
	}, nil
}

func setupDashboardTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	err = db.AutoMigrate(
		&model.Account{}, &model.Order{}, &model.OrderItem{},
		&model.Product{}, &model.Question{}, &model.Claim{}, &model.Shipment{},
	)
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func newDashboardService(db *gorm.DB, dispatcher *fakeMeliDispatcher) *DashboardService {
	return NewDashboardService(
		repository.NewAccountRepository(db),
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewClaimRepository(db),
		repository.NewShipmentRepository(db),
		NewMetricsService(dispatcher, nil),
	)
}

func seedAccount(t *testing.T, db *gorm.DB, id, ownerID, meliUserID int64, nickname string) {
	account := model.Account{
		MeliUserID:  meliUserID,
		Nickname:    nickname,
		SiteID:      "MLB",
		Status:      model.AccountStatusActive,
		OwnerID:     ownerID,
		TokenStatus: model.TokenStatusValid,
		AccessToken: "test-token",
	}
	account.ID = id
	if err := db.Create(&account).Error; err != nil {
		t.Fatalf("创建测试账号失败: %v", err)
	}
}

func seedOrder(t *testing.T, db *gorm.DB, meliOrderID, accountID, totalCents int64, status string, createdAt time.Time, quantity int) {
	order := model.Order{
		MeliOrderID:   meliOrderID,
		AccountID:     accountID,
		BuyerNick:     "BUYER",
		Status:        status,
		TotalAmount:   totalCents,
		CurrencyID:    "BRL",
		MeliCreatedAt: &createdAt,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("创建测试订单失败: %v", err)
	}
	item := model.OrderItem{
		OrderID:         order.ID,
		MeliItemID:      fmt.Sprintf("MLB%d", meliOrderID),
		Title:           fmt.Sprintf("Produto %d", meliOrderID),
		Quantity:        quantity,
		UnitPriceAmount: totalCents / int64(quantity),
	}
	if err := db.Create(&item).Error; err != nil {
		t.Fatalf("创建测试订单项失败: %v", err)
	}
}

// ==================== 聚合口径 ====================

func TestDashboard_AggregateAcrossAccounts(t *testing.T) {
	db := setupDashboardTestDB(t)
	seedAccount(t, db, 1, 10, 101, "loja-um")
	seedAccount(t, db, 2, 10, 102, "loja-dois")

	now := time.Now()
	seedOrder(t, db, 9001, 1, 10000, model.OrderStatusPaid, now, 1)      // R$ 100
	seedOrder(t, db, 9002, 2, 20000, model.OrderStatusDelivered, now, 2) // R$ 200
	// 取消订单不计营收
	seedOrder(t, db, 9003, 2, 99900, model.OrderStatusCancelled, now, 1)

	svc := newDashboardService(db, &fakeMeliDispatcher{
		visits: map[int64]int64{1: 60, 2: 40},
	})

	resp, err := svc.GetDashboard(context.Background(), 10, &dto.DashboardRequest{Period: "7d"})
	if err != nil {
		t.Fatalf("GetDashboard 失败: %v", err)
	}

	if resp.Summary.OrderCount != 2 {
		t.Errorf("order_count = %d, want 2", resp.Summary.OrderCount)
	}
	if resp.Summary.TotalRevenue != 300 {
		t.Errorf("total_revenue = %f, want 300", resp.Summary.TotalRevenue)
	}
	if resp.Summary.UnitsSold != 3 {
		t.Errorf("units_sold = %d, want 3", resp.Summary.UnitsSold)
	}
	if resp.Summary.TotalVisits != 100 {
		t.Errorf("total_visits = %d, want 100", resp.Summary.TotalVisits)
	}
	if resp.Summary.AvgTicket != 150 {
		t.Errorf("avg_ticket = %f, want 150", resp.Summary.AvgTicket)
	}
	// 转化率为百分比口径: 2 单 / 100 访问 = 2%
	if resp.Summary.ConversionRate != 2 {
		t.Errorf("conversion_rate = %f, want 2", resp.Summary.ConversionRate)
	}
	if len(resp.Accounts.Included) != 2 || len(resp.Accounts.Failed) != 0 {
		t.Errorf("included=%d failed=%d, want 2/0",
			len(resp.Accounts.Included), len(resp.Accounts.Failed))
	}
	// 按账号营收分布，供环形图使用
	wantRevenue := map[int64]float64{1: 100, 2: 200}
	for _, a := range resp.Accounts.Included {
		if a.Revenue != wantRevenue[a.ID] {
			t.Errorf("账号 %d revenue = %f, want %f", a.ID, a.Revenue, wantRevenue[a.ID])
		}
	}
	if resp.Reputation == nil || resp.Reputation.Level != "5_green" {
		t.Errorf("reputation = %+v, want level 5_green", resp.Reputation)
	}
}

// 指标级降级：访问量拉不到只让该指标计零，已查到的订单统计照常计入
func TestDashboard_VisitsFailureKeepsOrderStats(t *testing.T) {
	db := setupDashboardTestDB(t)
	seedAccount(t, db, 1, 10, 101, "loja-um")
	seedAccount(t, db, 2, 10, 102, "loja-dois")

	now := time.Now()
	seedOrder(t, db, 9001, 1, 10000, model.OrderStatusPaid, now, 1)
	seedOrder(t, db, 9002, 2, 20000, model.OrderStatusPaid, now, 1)

	// 账号 2 远端挂掉：只有访问量/信誉计零，订单指标不丢
	svc := newDashboardService(db, &fakeMeliDispatcher{
		failAccounts: map[int64]bool{2: true},
		visits:       map[int64]int64{1: 50},
	})

	resp, err := svc.GetDashboard(context.Background(), 10, &dto.DashboardRequest{})
	if err != nil {
		t.Fatalf("GetDashboard 失败: %v", err)
	}

	if resp.Summary.OrderCount != 2 {
		t.Errorf("order_count = %d, want 2", resp.Summary.OrderCount)
	}
	if resp.Summary.TotalRevenue != 300 {
		t.Errorf("total_revenue = %f, want 300", resp.Summary.TotalRevenue)
	}
	if resp.Summary.TotalVisits != 50 {
		t.Errorf("total_visits = %d, want 50 (账号 2 访问量计零)", resp.Summary.TotalVisits)
	}
	if len(resp.Accounts.Included) != 2 || len(resp.Accounts.Failed) != 0 {
		t.Errorf("included=%d failed=%d, want 2/0",
			len(resp.Accounts.Included), len(resp.Accounts.Failed))
	}
}

// flakyOrderRepo 指定账号的订单统计报错，其余透传
type flakyOrderRepo struct {
	repository.OrderRepository
	failAccountID int64
}

func (r *flakyOrderRepo) GetStats(ctx context.Context, accountIDs []int64, from, to time.Time) (*repository.OrderStats, error) {
	if len(accountIDs) == 1 && accountIDs[0] == r.failAccountID {
		return nil, fmt.Errorf("database is locked")
	}
	return r.OrderRepository.GetStats(ctx, accountIDs, from, to)
}

// 账号级降级：订单统计失败的账号计零并进 failed，不影响整体返回
func TestDashboard_StatsFailureCountsZero(t *testing.T) {
	db := setupDashboardTestDB(t)
	seedAccount(t, db, 1, 10, 101, "loja-um")
	seedAccount(t, db, 2, 10, 102, "loja-dois")

	now := time.Now()
	seedOrder(t, db, 9001, 1, 10000, model.OrderStatusPaid, now, 1)
	seedOrder(t, db, 9002, 2, 20000, model.OrderStatusPaid, now, 1)

	svc := NewDashboardService(
		repository.NewAccountRepository(db),
		&flakyOrderRepo{OrderRepository: repository.NewOrderRepository(db), failAccountID: 2},
		repository.NewProductRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewClaimRepository(db),
		repository.NewShipmentRepository(db),
		NewMetricsService(&fakeMeliDispatcher{visits: map[int64]int64{1: 50}}, nil),
	)

	resp, err := svc.GetDashboard(context.Background(), 10, &dto.DashboardRequest{})
	if err != nil {
		t.Fatalf("GetDashboard 失败: %v", err)
	}

	if resp.Summary.OrderCount != 1 {
		t.Errorf("order_count = %d, want 1", resp.Summary.OrderCount)
	}
	if resp.Summary.TotalRevenue != 100 {
		t.Errorf("total_revenue = %f, want 100", resp.Summary.TotalRevenue)
	}
	if len(resp.Accounts.Included) != 1 || resp.Accounts.Included[0].ID != 1 {
		t.Errorf("included = %+v, want 仅账号 1", resp.Accounts.Included)
	}
	if len(resp.Accounts.Failed) != 1 || resp.Accounts.Failed[0].ID != 2 {
		t.Errorf("failed = %+v, want 仅账号 2", resp.Accounts.Failed)
	}
	if resp.Accounts.Failed[0].Reason == "" {
		t.Error("failed 账号缺少失败原因")
	}
	// 热销榜只聚合成功账号
	for _, p := range resp.TopProducts {
		if p.MeliItemID == "MLB9002" {
			t.Error("热销榜不应包含失败账号的商品")
		}
	}
}

func TestDashboard_ZeroSafeDerivedRates(t *testing.T) {
	db := setupDashboardTestDB(t)
	seedAccount(t, db, 1, 10, 101, "loja-vazia")

	svc := newDashboardService(db, &fakeMeliDispatcher{
		visits: map[int64]int64{1: 0},
	})

	resp, err := svc.GetDashboard(context.Background(), 10, &dto.DashboardRequest{Period: "today"})
	if err != nil {
		t.Fatalf("GetDashboard 失败: %v", err)
	}

	if resp.Summary.AvgTicket != 0 {
		t.Errorf("avg_ticket = %f, want 0 (无订单不除零)", resp.Summary.AvgTicket)
	}
	if resp.Summary.ConversionRate != 0 {
		t.Errorf("conversion_rate = %f, want 0 (无访问不除零)", resp.Summary.ConversionRate)
	}
}

func TestDashboard_NoAccounts(t *testing.T) {
	db := setupDashboardTestDB(t)

	svc := newDashboardService(db, &fakeMeliDispatcher{})
	resp, err := svc.GetDashboard(context.Background(), 10, &dto.DashboardRequest{})
	if err != nil {
		t.Fatalf("GetDashboard 失败: %v", err)
	}

	if resp.Summary.OrderCount != 0 || len(resp.Accounts.Included) != 0 {
		t.Errorf("无账号时应返回空看板, got %+v", resp.Summary)
	}
	if resp.SalesSeries == nil || resp.Alerts == nil {
		t.Error("空看板的切片字段应初始化为空而非 nil")
	}
}

func TestDashboard_RejectsForeignAccount(t *testing.T) {
	db := setupDashboardTestDB(t)
	seedAccount(t, db, 1, 10, 101, "minha")
	seedAccount(t, db, 2, 99, 102, "alheia")

	svc := newDashboardService(db, &fakeMeliDispatcher{})
	_, err := svc.GetDashboard(context.Background(), 10, &dto.DashboardRequest{AccountIDs: []int64{1, 2}})
	if err == nil {
		t.Fatal("指定他人账号应报错")
	}
}

// ==================== 聚合构建 ====================

func TestDashboard_SalesSeriesAscending(t *testing.T) {
	db := setupDashboardTestDB(t)
	seedAccount(t, db, 1, 10, 101, "loja")

	now := time.Now()
	// 倒序写入，验证返回按日期升序
	seedOrder(t, db, 9001, 1, 10000, model.OrderStatusPaid, now, 1)
	seedOrder(t, db, 9002, 1, 20000, model.OrderStatusPaid, now.AddDate(0, 0, -2), 1)
	seedOrder(t, db, 9003, 1, 30000, model.OrderStatusPaid, now.AddDate(0, 0, -1), 1)

	svc := newDashboardService(db, &fakeMeliDispatcher{visits: map[int64]int64{1: 10}})
	resp, err := svc.GetDashboard(context.Background(), 10, &dto.DashboardRequest{Period: "7d"})
	if err != nil {
		t.Fatalf("GetDashboard 失败: %v", err)
	}

	if len(resp.SalesSeries) != 3 {
		t.Fatalf("sales_series 长度 = %d, want 3", len(resp.SalesSeries))
	}
	for i := 1; i < len(resp.SalesSeries); i++ {
		if resp.SalesSeries[i].Date < resp.SalesSeries[i-1].Date {
			t.Errorf("折线日期乱序: %s 在 %s 之后", resp.SalesSeries[i].Date, resp.SalesSeries[i-1].Date)
		}
	}
}

func TestDashboard_TopProductsCappedAtFive(t *testing.T) {
	db := setupDashboardTestDB(t)
	seedAccount(t, db, 1, 10, 101, "loja")

	now := time.Now()
	for i := int64(0); i < 7; i++ {
		seedOrder(t, db, 9100+i, 1, (i+1)*1000, model.OrderStatusPaid, now, int(i)+1)
	}

	svc := newDashboardService(db, &fakeMeliDispatcher{visits: map[int64]int64{1: 10}})
	resp, err := svc.GetDashboard(context.Background(), 10, &dto.DashboardRequest{})
	if err != nil {
		t.Fatalf("GetDashboard 失败: %v", err)
	}

	if len(resp.TopProducts) != 5 {
		t.Errorf("top_products 长度 = %d, want 5", len(resp.TopProducts))
	}
	// 销量降序，第一名应是卖出 7 件的
	if resp.TopProducts[0].UnitsSold != 7 {
		t.Errorf("榜首销量 = %d, want 7", resp.TopProducts[0].UnitsSold)
	}
}

func TestDashboard_RecentOrdersCappedAtFive(t *testing.T) {
	db := setupDashboardTestDB(t)
	seedAccount(t, db, 1, 10, 101, "loja")

	base := time.Now().Add(-7 * time.Hour)
	for i := int64(0); i < 7; i++ {
		seedOrder(t, db, 9200+i, 1, 1000, model.OrderStatusPaid, base.Add(time.Duration(i)*time.Hour), 1)
	}

	svc := newDashboardService(db, &fakeMeliDispatcher{visits: map[int64]int64{1: 10}})
	resp, err := svc.GetDashboard(context.Background(), 10, &dto.DashboardRequest{})
	if err != nil {
		t.Fatalf("GetDashboard 失败: %v", err)
	}

	if len(resp.RecentOrders) != 5 {
		t.Fatalf("recent_orders 长度 = %d, want 5", len(resp.RecentOrders))
	}
	// 下单时间倒序，第一条是最新的
	if resp.RecentOrders[0].MeliOrderID != 9206 {
		t.Errorf("最新订单 = %d, want 9206", resp.RecentOrders[0].MeliOrderID)
	}
}

func TestDashboard_AlertsFixedOrder(t *testing.T) {
	db := setupDashboardTestDB(t)
	seedAccount(t, db, 1, 10, 101, "loja")

	db.Create(&model.Product{
		MeliItemID:        "MLB111",
		AccountID:         1,
		Title:             "estoque baixo",
		Status:            model.ProductStatusActive,
		AvailableQuantity: 2,
	})
	db.Create(&model.Question{MeliQuestionID: 301, AccountID: 1, Status: model.QuestionStatusUnanswered})
	db.Create(&model.Shipment{MeliShipmentID: 401, AccountID: 1, Status: model.ShipmentStatusReadyToShip})
	db.Create(&model.Claim{MeliClaimID: 501, AccountID: 1, Status: model.ClaimStatusOpened})

	svc := newDashboardService(db, &fakeMeliDispatcher{visits: map[int64]int64{1: 10}})
	resp, err := svc.GetDashboard(context.Background(), 10, &dto.DashboardRequest{})
	if err != nil {
		t.Fatalf("GetDashboard 失败: %v", err)
	}

	wantTypes := []string{"low_stock", "unanswered_questions", "pending_shipments", "open_claims"}
	if len(resp.Alerts) != len(wantTypes) {
		t.Fatalf("alerts 长度 = %d, want %d", len(resp.Alerts), len(wantTypes))
	}
	for i, want := range wantTypes {
		if resp.Alerts[i].Type != want {
			t.Errorf("alerts[%d].type = %s, want %s", i, resp.Alerts[i].Type, want)
		}
	}
	if resp.Alerts[3].Severity != "critical" {
		t.Errorf("纠纷告警级别 = %s, want critical", resp.Alerts[3].Severity)
	}
}

// ==================== 时间范围解析 ====================

func TestParsePeriod(t *testing.T) {
	cases := []struct {
		name     string
		req      dto.DashboardRequest
		wantDays int
		wantErr  bool
	}{
		{name: "默认7天", req: dto.DashboardRequest{}, wantDays: 7},
		{name: "显式7d", req: dto.DashboardRequest{Period: "7d"}, wantDays: 7},
		{name: "today", req: dto.DashboardRequest{Period: "today"}, wantDays: 1},
		{name: "15d", req: dto.DashboardRequest{Period: "15d"}, wantDays: 15},
		{name: "30d", req: dto.DashboardRequest{Period: "30d"}, wantDays: 30},
		{name: "60d", req: dto.DashboardRequest{Period: "60d"}, wantDays: 60},
		{name: "90d", req: dto.DashboardRequest{Period: "90d"}, wantDays: 90},
		{name: "custom闭区间", req: dto.DashboardRequest{Period: "custom", From: "2026-08-01", To: "2026-08-10"}, wantDays: 10},
		{name: "custom单日", req: dto.DashboardRequest{Period: "custom", From: "2026-08-01", To: "2026-08-01"}, wantDays: 1},
		{name: "custom缺日期", req: dto.DashboardRequest{Period: "custom"}, wantErr: true},
		{name: "custom日期格式错", req: dto.DashboardRequest{Period: "custom", From: "01/08/2026", To: "2026-08-10"}, wantErr: true},
		{name: "to早于from", req: dto.DashboardRequest{Period: "custom", From: "2026-08-10", To: "2026-08-01"}, wantErr: true},
		{name: "非法period", req: dto.DashboardRequest{Period: "1y"}, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			from, to, err := parsePeriod(&tc.req)
			if tc.wantErr {
				if err == nil {
					t.Fatal("期望报错但成功了")
				}
				return
			}
			if err != nil {
				t.Fatalf("parsePeriod 失败: %v", err)
			}
			days := int(to.Sub(from).Hours() / 24)
			if days != tc.wantDays {
				t.Errorf("区间天数 = %d, want %d", days, tc.wantDays)
			}
		})
	}
}
