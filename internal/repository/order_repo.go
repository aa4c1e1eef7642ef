package repository

import (
	"context"
	"time"

	"meli_hub_v1_202608/internal/model"

	"gorm.io/gorm"
)

// OrderFilter 订单列表查询条件
type OrderFilter struct {
	AccountIDs []int64
	Status     string
	Keyword    string // 买家昵称 / 订单号模糊搜索
	DateFrom   *time.Time
	DateTo     *time.Time
	Page       int
	PageSize   int
}

// OrderStats 订单统计聚合结果 (金额为分)
type OrderStats struct {
	OrderCount   int64
	RevenueCents int64
	UnitsSold    int64
}

// DailyRevenuePoint 按天聚合的销售额 (看板折线图)
type DailyRevenuePoint struct {
	Day          string `gorm:"column:day"`
	RevenueCents int64  `gorm:"column:revenue_cents"`
	OrderCount   int64  `gorm:"column:order_count"`
}

// OrderRepository 订单仓库接口
type OrderRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	GetByMeliOrderID(ctx context.Context, meliOrderID int64) (*model.Order, error)
	List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error)
	SaveOrUpdate(ctx context.Context, order *model.Order) error
	UpdateStatus(ctx context.Context, id int64, status string) error

	// GetStats 按账号集合统计指定时间段内计入营收的订单
	GetStats(ctx context.Context, accountIDs []int64, from, to time.Time) (*OrderStats, error)
	// DailyRevenueSeries 按天聚合销售额，日期升序返回
	DailyRevenueSeries(ctx context.Context, accountIDs []int64, from, to time.Time) ([]DailyRevenuePoint, error)
	// RecentOrders 最近 N 笔订单 (下单时间倒序)
	RecentOrders(ctx context.Context, accountIDs []int64, limit int) ([]model.Order, error)
	CountByStatus(ctx context.Context, accountIDs []int64, status string) (int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Preload("Items").First(&order, id).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) GetByMeliOrderID(ctx context.Context, meliOrderID int64) (*model.Order, error) {
	var order model.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("meli_order_id = ?", meliOrderID).First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) List(ctx context.Context, filter OrderFilter) ([]model.Order, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Order{})

	if len(filter.AccountIDs) > 0 {
		query = query.Where("account_id IN ?", filter.AccountIDs)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		query = query.Where("buyer_nick LIKE ? OR CAST(meli_order_id AS TEXT) LIKE ?", kw, kw)
	}
	if filter.DateFrom != nil {
		query = query.Where("meli_created_at >= ?", *filter.DateFrom)
	}
	if filter.DateTo != nil {
		query = query.Where("meli_created_at < ?", *filter.DateTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	var orders []model.Order
	err := query.Preload("Items").
		Order("meli_created_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepository) SaveOrUpdate(ctx context.Context, order *model.Order) error {
	return r.db.WithContext(ctx).Session(&gorm.Session{FullSaveAssociations: true}).Save(order).Error
}

func (r *orderRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	return r.db.WithContext(ctx).Model(&model.Order{}).Where("id = ?", id).Update("status", status).Error
}

func (r *orderRepository) GetStats(ctx context.Context, accountIDs []int64, from, to time.Time) (*OrderStats, error) {
	if len(accountIDs) == 0 {
		return &OrderStats{}, nil
	}

	stats := &OrderStats{}
	row := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("COUNT(*) AS order_count, COALESCE(SUM(total_amount), 0) AS revenue_cents").
		Where("account_id IN ?", accountIDs).
		Where("status IN ?", model.RevenueStatuses).
		Where("meli_created_at >= ? AND meli_created_at < ?", from, to).
		Row()
	if err := row.Scan(&stats.OrderCount, &stats.RevenueCents); err != nil {
		return nil, err
	}

	// 销量需要联表订单明细
	err := r.db.WithContext(ctx).Model(&model.OrderItem{}).
		Select("COALESCE(SUM(order_items.quantity), 0)").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.account_id IN ?", accountIDs).
		Where("orders.status IN ?", model.RevenueStatuses).
		Where("orders.meli_created_at >= ? AND orders.meli_created_at < ?", from, to).
		Scan(&stats.UnitsSold).Error
	if err != nil {
		return nil, err
	}
	return stats, nil
}

func (r *orderRepository) DailyRevenueSeries(ctx context.Context, accountIDs []int64, from, to time.Time) ([]DailyRevenuePoint, error) {
	if len(accountIDs) == 0 {
		return []DailyRevenuePoint{}, nil
	}

	var points []DailyRevenuePoint
	// DATE() 在 postgres 和 sqlite 下均可用
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Select("DATE(meli_created_at) AS day, COALESCE(SUM(total_amount), 0) AS revenue_cents, COUNT(*) AS order_count").
		Where("account_id IN ?", accountIDs).
		Where("status IN ?", model.RevenueStatuses).
		Where("meli_created_at >= ? AND meli_created_at < ?", from, to).
		Group("DATE(meli_created_at)").
		Order("day ASC").
		Scan(&points).Error
	return points, err
}

func (r *orderRepository) RecentOrders(ctx context.Context, accountIDs []int64, limit int) ([]model.Order, error) {
	if len(accountIDs) == 0 {
		return []model.Order{}, nil
	}
	if limit <= 0 {
		limit = 10
	}

	var orders []model.Order
	err := r.db.WithContext(ctx).Preload("Items").
		Where("account_id IN ?", accountIDs).
		Order("meli_created_at DESC").
		Limit(limit).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) CountByStatus(ctx context.Context, accountIDs []int64, status string) (int64, error) {
	if len(accountIDs) == 0 {
		return 0, nil
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("account_id IN ?", accountIDs).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}
