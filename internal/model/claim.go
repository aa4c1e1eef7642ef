package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Claim 状态常量
const (
	ClaimStatusOpened = "opened" // 进行中
	ClaimStatusClosed = "closed" // 已关闭
)

// Claim 阶段常量
const (
	ClaimStageClaim     = "claim"     // 买卖家协商
	ClaimStageDispute   = "dispute"   // 平台介入
	ClaimStageRecontact = "recontact" // 重新联系
	ClaimStageNone      = "none"      // 无
)

// Claim 售后纠纷
type Claim struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	MeliClaimID int64 `gorm:"uniqueIndex;not null"`
	AccountID   int64 `gorm:"index;not null"`

	// 关联订单
	MeliOrderID int64 `gorm:"index"`

	// 纠纷信息
	Type     string `gorm:"size:32"` // mediations / returns / fulfillment
	Stage    string `gorm:"size:20;default:claim"`
	Status   string `gorm:"size:20;index;default:opened"`
	ReasonID string `gorm:"size:64"` // PNR / PDD 等平台原因码

	// 最近一次卖家回应
	LastSellerReply string `gorm:"type:text"`
	RepliedAt       *time.Time

	// ML 原始数据
	MeliRawData datatypes.JSON `gorm:"type:jsonb"`

	// 平台时间
	MeliCreatedAt *time.Time `gorm:"index"`
	MeliSyncedAt  *time.Time

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*Claim) TableName() string {
	return "claims"
}

// IsOpen 是否仍在进行中
func (c *Claim) IsOpen() bool {
	return c.Status == ClaimStatusOpened
}
