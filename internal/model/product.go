package model

import (
	"time"

	"github.com/lib/pq"
	"gorm.io/gorm"
)

// Product 商品状态常量（与 ML listing status 对应）
const (
	ProductStatusActive      = "active"       // 在售
	ProductStatusPaused      = "paused"       // 已暂停
	ProductStatusClosed      = "closed"       // 已关闭
	ProductStatusUnderReview = "under_review" // 审核中
)

// LowStockThreshold 低库存告警阈值
const LowStockThreshold = 5

// Product 商品（ML listing）
type Product struct {
	ID         int64  `gorm:"primaryKey;autoIncrement"`
	MeliItemID string `gorm:"size:32;uniqueIndex;not null"` // MLB1234567890
	AccountID  int64  `gorm:"index;not null"`

	// 基础信息
	Title      string `gorm:"size:500;not null"`
	CategoryID string `gorm:"size:32;index"`
	Permalink  string `gorm:"size:500"`
	Thumbnail  string `gorm:"size:500"`

	// 价格与库存（分为单位）
	PriceAmount       int64
	OriginalAmount    int64 // 划线价
	CurrencyID        string `gorm:"size:10;default:BRL"`
	AvailableQuantity int    `gorm:"default:0"`
	SoldQuantity      int    `gorm:"index;default:0"`

	// 状态
	Status    string `gorm:"size:32;index;default:active"`
	SubStatus string `gorm:"size:64"` // out_of_stock / waiting_for_patch 等

	// 目录（Buy Box）
	CatalogListing   bool   `gorm:"default:false"`
	CatalogProductID string `gorm:"size:32;index"`

	// 媒体与标签（PostgreSQL 数组）
	Pictures pq.StringArray `gorm:"type:text[]"`
	Tags     pq.StringArray `gorm:"type:text[]"`

	// 健康度 0~1，ML listing health
	Health float64 `gorm:"type:decimal(3,2);default:0"`

	// 同步时间
	MeliUpdatedAt *time.Time
	MeliSyncedAt  *time.Time

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*Product) TableName() string {
	return "products"
}

// GetPrice 获取价格（元）
func (p *Product) GetPrice() float64 {
	return float64(p.PriceAmount) / 100
}

// IsLowStock 是否低库存（在售且剩余低于阈值）
func (p *Product) IsLowStock() bool {
	return p.Status == ProductStatusActive && p.AvailableQuantity > 0 && p.AvailableQuantity <= LowStockThreshold
}

// CanPause 检查是否可以暂停
func (p *Product) CanPause() bool {
	return p.Status == ProductStatusActive
}

// CanActivate 检查是否可以恢复在售
func (p *Product) CanActivate() bool {
	return p.Status == ProductStatusPaused
}
