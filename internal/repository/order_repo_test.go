package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"meli_hub_v1_202608/internal/model"
)

func setupOrderTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}
	if err := db.AutoMigrate(&model.Order{}, &model.OrderItem{}); err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}
	return db
}

func createOrder(t *testing.T, db *gorm.DB, meliOrderID, accountID, totalCents int64, status string, createdAt time.Time) int64 {
	order := model.Order{
		MeliOrderID:   meliOrderID,
		AccountID:     accountID,
		Status:        status,
		TotalAmount:   totalCents,
		MeliCreatedAt: &createdAt,
	}
	if err := db.Create(&order).Error; err != nil {
		t.Fatalf("创建测试订单失败: %v", err)
	}
	return order.ID
}

func TestOrderRepository_GetStats(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.Local)
	to := time.Date(2026, 8, 8, 0, 0, 0, 0, time.Local)

	inWindow := from.Add(24 * time.Hour)
	orderID := createOrder(t, db, 1001, 1, 10000, model.OrderStatusPaid, inWindow)
	db.Create(&model.OrderItem{OrderID: orderID, MeliItemID: "MLB1", Quantity: 3, UnitPriceAmount: 3000})

	// 取消单不计营收
	createOrder(t, db, 1002, 1, 50000, model.OrderStatusCancelled, inWindow)
	// 区间外不计
	createOrder(t, db, 1003, 1, 20000, model.OrderStatusPaid, from.Add(-time.Hour))
	// to 为开区间，边界上的订单不计
	createOrder(t, db, 1004, 1, 20000, model.OrderStatusPaid, to)
	// 其他账号不计
	createOrder(t, db, 1005, 2, 20000, model.OrderStatusPaid, inWindow)

	stats, err := repo.GetStats(ctx, []int64{1}, from, to)
	if err != nil {
		t.Fatalf("GetStats 失败: %v", err)
	}

	if stats.OrderCount != 1 {
		t.Errorf("order_count = %d, want 1", stats.OrderCount)
	}
	if stats.RevenueCents != 10000 {
		t.Errorf("revenue_cents = %d, want 10000", stats.RevenueCents)
	}
	if stats.UnitsSold != 3 {
		t.Errorf("units_sold = %d, want 3", stats.UnitsSold)
	}
}

func TestOrderRepository_GetStats_EmptyAccounts(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewOrderRepository(db)

	stats, err := repo.GetStats(context.Background(), nil, time.Now().AddDate(0, 0, -7), time.Now())
	if err != nil {
		t.Fatalf("GetStats 失败: %v", err)
	}
	if stats.OrderCount != 0 || stats.RevenueCents != 0 {
		t.Errorf("空账号集合应返回零值, got %+v", stats)
	}
}

func TestOrderRepository_DailyRevenueSeries(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	from := time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 8, 8, 0, 0, 0, 0, time.UTC)

	// 倒序写入，验证升序返回
	createOrder(t, db, 2001, 1, 30000, model.OrderStatusPaid, from.AddDate(0, 0, 3).Add(10*time.Hour))
	createOrder(t, db, 2002, 1, 10000, model.OrderStatusDelivered, from.Add(10*time.Hour))
	createOrder(t, db, 2003, 1, 20000, model.OrderStatusPaid, from.Add(12*time.Hour))

	points, err := repo.DailyRevenueSeries(ctx, []int64{1}, from, to)
	if err != nil {
		t.Fatalf("DailyRevenueSeries 失败: %v", err)
	}

	if len(points) != 2 {
		t.Fatalf("points 长度 = %d, want 2", len(points))
	}
	if points[0].Day > points[1].Day {
		t.Errorf("日期应升序: %s > %s", points[0].Day, points[1].Day)
	}
	if points[0].RevenueCents != 30000 || points[0].OrderCount != 2 {
		t.Errorf("首日聚合 = %+v, want revenue 30000 / orders 2", points[0])
	}
}

func TestOrderRepository_RecentOrders(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewOrderRepository(db)
	ctx := context.Background()

	base := time.Now().AddDate(0, 0, -5)
	for i := int64(0); i < 15; i++ {
		createOrder(t, db, 3000+i, 1, 1000, model.OrderStatusPaid, base.Add(time.Duration(i)*time.Hour))
	}

	orders, err := repo.RecentOrders(ctx, []int64{1}, 10)
	if err != nil {
		t.Fatalf("RecentOrders 失败: %v", err)
	}

	if len(orders) != 10 {
		t.Fatalf("返回 %d 条, want 10", len(orders))
	}
	// 下单时间倒序
	if orders[0].MeliOrderID != 3014 {
		t.Errorf("最新订单 = %d, want 3014", orders[0].MeliOrderID)
	}
	for i := 1; i < len(orders); i++ {
		if orders[i].MeliCreatedAt.After(*orders[i-1].MeliCreatedAt) {
			t.Errorf("订单未按时间倒序排列")
		}
	}
}
