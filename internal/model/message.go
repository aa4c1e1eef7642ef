package model

import (
	"time"

	"gorm.io/gorm"
)

// ==================== MessagePack 会话 ====================

// MessagePack 售后会话（以 ML pack 为单位，对应一笔或合包订单）
type MessagePack struct {
	ID         int64 `gorm:"primaryKey;autoIncrement"`
	MeliPackID int64 `gorm:"uniqueIndex;not null"`
	AccountID  int64 `gorm:"index;not null"`

	// 对端买家
	BuyerUserID int64
	BuyerNick   string `gorm:"size:255"`

	// 会话状态
	UnreadCount   int        `gorm:"default:0"`
	LastMessageAt *time.Time `gorm:"index"`
	MeliSyncedAt  *time.Time

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	// 关联
	Messages []Message `gorm:"foreignKey:PackID"`
}

func (*MessagePack) TableName() string {
	return "message_packs"
}

// ==================== Message 消息 ====================

// 消息方向常量
const (
	MessageFromSeller = "seller" // 卖家发出
	MessageFromBuyer  = "buyer"  // 买家发出
)

// Message 会话内单条消息
type Message struct {
	ID            int64  `gorm:"primaryKey;autoIncrement"`
	PackID        int64  `gorm:"index;not null"` // 本地 MessagePack.ID
	MeliMessageID string `gorm:"size:64;uniqueIndex"`

	From string `gorm:"size:10;not null"` // seller / buyer
	Text string `gorm:"type:text;not null"`

	// 平台时间
	MeliCreatedAt *time.Time

	// 审计
	CreatedAt time.Time
}

func (*Message) TableName() string {
	return "messages"
}
