package repository

import (
	"context"
	"time"

	"meli_hub_v1_202608/internal/model"

	"gorm.io/gorm"
)

// ProductFilter 商品列表查询条件
type ProductFilter struct {
	AccountIDs []int64
	Status     string
	Keyword    string
	LowStock   bool
	Page       int
	PageSize   int
}

// TopProduct 热销榜条目
type TopProduct struct {
	MeliItemID   string `gorm:"column:meli_item_id"`
	Title        string `gorm:"column:title"`
	UnitsSold    int64  `gorm:"column:units_sold"`
	RevenueCents int64  `gorm:"column:revenue_cents"`
}

// ProductRepository 商品仓库接口
type ProductRepository interface {
	GetByID(ctx context.Context, id int64) (*model.Product, error)
	GetByMeliItemID(ctx context.Context, meliItemID string) (*model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	SaveOrUpdate(ctx context.Context, product *model.Product) error
	UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error

	CountLowStock(ctx context.Context, accountIDs []int64, threshold int) (int64, error)
	CountByStatus(ctx context.Context, accountIDs []int64, status string) (int64, error)
	// TopBySales 指定时间段内按销量排序的热销商品 (看板 Top N)
	TopBySales(ctx context.Context, accountIDs []int64, from, to time.Time, limit int) ([]TopProduct, error)
}

type productRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) GetByID(ctx context.Context, id int64) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).First(&product, id).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) GetByMeliItemID(ctx context.Context, meliItemID string) (*model.Product, error) {
	var product model.Product
	err := r.db.WithContext(ctx).Where("meli_item_id = ?", meliItemID).First(&product).Error
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	query := r.db.WithContext(ctx).Model(&model.Product{})

	if len(filter.AccountIDs) > 0 {
		query = query.Where("account_id IN ?", filter.AccountIDs)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.Keyword != "" {
		kw := "%" + filter.Keyword + "%"
		query = query.Where("title LIKE ? OR meli_item_id LIKE ?", kw, kw)
	}
	if filter.LowStock {
		query = query.Where("available_quantity <= ?", model.LowStockThreshold).
			Where("status = ?", model.ProductStatusActive)
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

	var products []model.Product
	err := query.Order("updated_at DESC").
		Offset((filter.Page - 1) * filter.PageSize).
		Limit(filter.PageSize).
		Find(&products).Error
	return products, total, err
}

func (r *productRepository) SaveOrUpdate(ctx context.Context, product *model.Product) error {
	return r.db.WithContext(ctx).Save(product).Error
}

func (r *productRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).Model(&model.Product{}).Where("id = ?", id).Updates(fields).Error
}

func (r *productRepository) CountLowStock(ctx context.Context, accountIDs []int64, threshold int) (int64, error) {
	if len(accountIDs) == 0 {
		return 0, nil
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("account_id IN ?", accountIDs).
		Where("status = ?", model.ProductStatusActive).
		Where("available_quantity <= ?", threshold).
		Count(&count).Error
	return count, err
}

func (r *productRepository) CountByStatus(ctx context.Context, accountIDs []int64, status string) (int64, error) {
	if len(accountIDs) == 0 {
		return 0, nil
	}

	var count int64
	err := r.db.WithContext(ctx).Model(&model.Product{}).
		Where("account_id IN ?", accountIDs).
		Where("status = ?", status).
		Count(&count).Error
	return count, err
}

func (r *productRepository) TopBySales(ctx context.Context, accountIDs []int64, from, to time.Time, limit int) ([]TopProduct, error) {
	if len(accountIDs) == 0 {
		return []TopProduct{}, nil
	}
	if limit <= 0 {
		limit = 5
	}

	var tops []TopProduct
	err := r.db.WithContext(ctx).Model(&model.OrderItem{}).
		Select("order_items.meli_item_id AS meli_item_id, MAX(order_items.title) AS title, "+
			"COALESCE(SUM(order_items.quantity), 0) AS units_sold, "+
			"COALESCE(SUM(order_items.unit_price_amount * order_items.quantity), 0) AS revenue_cents").
		Joins("JOIN orders ON orders.id = order_items.order_id").
		Where("orders.account_id IN ?", accountIDs).
		Where("orders.status IN ?", model.RevenueStatuses).
		Where("orders.meli_created_at >= ? AND orders.meli_created_at < ?", from, to).
		Group("order_items.meli_item_id").
		Order("units_sold DESC").
		Limit(limit).
		Scan(&tops).Error
	return tops, err
}
