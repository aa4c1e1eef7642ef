package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Buy Box 竞争状态常量（ML price_to_win status）
const (
	CatalogStatusWinning   = "winning"             // 占据 Buy Box
	CatalogStatusSharing   = "sharing_first_place" // 并列第一
	CatalogStatusCompeting = "competing"           // 竞争中（未获胜）
	CatalogStatusListed    = "listed"              // 已挂目录，无竞价
	CatalogStatusNotListed = "not_listed"          // 未参与目录
)

// CatalogPosition 商品在目录（Buy Box）中的竞争位次
type CatalogPosition struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	AccountID int64 `gorm:"index;not null"`

	// 商品
	MeliItemID       string `gorm:"size:32;uniqueIndex;not null"`
	CatalogProductID string `gorm:"size:32;index"`

	// 竞争状态
	Status string `gorm:"size:32;index;default:not_listed"`

	// 夺回 Buy Box 需要的价格（分），仅 competing 时有值
	PriceToWinAmount int64
	CurrentAmount    int64
	CurrencyID       string `gorm:"size:10;default:BRL"`

	// 竞争对手数量
	CompetitorCount int `gorm:"default:0"`

	// 可用加成项（免运费、分期等），按 ML 返回结构存储
	Boosts datatypes.JSON `gorm:"type:jsonb"`

	// 同步时间
	MeliSyncedAt *time.Time

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*CatalogPosition) TableName() string {
	return "catalog_positions"
}

// IsWinning 是否占据 Buy Box
func (c *CatalogPosition) IsWinning() bool {
	return c.Status == CatalogStatusWinning || c.Status == CatalogStatusSharing
}
