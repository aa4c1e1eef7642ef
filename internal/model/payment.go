package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ==================== Payment 状态常量 ====================

// MP 支付状态
const (
	PaymentStatusApproved    = "approved"     // 已批准
	PaymentStatusPending     = "pending"      // 待支付
	PaymentStatusInProcess   = "in_process"   // 风控审核中
	PaymentStatusRejected    = "rejected"     // 已拒绝
	PaymentStatusRefunded    = "refunded"     // 已退款
	PaymentStatusChargedBack = "charged_back" // 拒付
	PaymentStatusCancelled   = "cancelled"    // 已取消
)

// ==================== Payment 收款 ====================

// Payment Mercado Pago 收款记录
type Payment struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	MpPaymentID int64 `gorm:"uniqueIndex;not null"`
	AccountID   int64 `gorm:"index;not null"`

	// 关联订单（市场订单收款时存在）
	MeliOrderID int64 `gorm:"index"`

	// 支付信息
	Status       string `gorm:"size:20;index;default:pending"`
	StatusDetail string `gorm:"size:64"`
	MethodID     string `gorm:"size:32"` // pix / credit_card / bolbradesco
	TypeID       string `gorm:"size:32"` // credit_card / bank_transfer / ticket
	Installments int    `gorm:"default:1"`

	// 金额（分）
	TransactionAmount int64
	FeeAmount         int64 // MP 手续费
	NetAmount         int64 // 净到账
	RefundedAmount    int64
	CurrencyID        string `gorm:"size:10;default:BRL"`

	// 付款人
	PayerID    int64
	PayerEmail string `gorm:"size:255"`

	// MP 原始数据
	MpRawData datatypes.JSON `gorm:"type:jsonb"`

	// 平台时间
	MpCreatedAt  *time.Time `gorm:"index"`
	MpApprovedAt *time.Time
	MpSyncedAt   *time.Time

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*Payment) TableName() string {
	return "payments"
}

// GetAmount 获取交易金额（元）
func (p *Payment) GetAmount() float64 {
	return float64(p.TransactionAmount) / 100
}

// CanRefund 检查是否可以退款
func (p *Payment) CanRefund() bool {
	return p.Status == PaymentStatusApproved && p.RefundedAmount < p.TransactionAmount
}

// ==================== Settlement 结算 ====================

// Settlement 结算/账务记录（billing 对账）
type Settlement struct {
	ID        int64 `gorm:"primaryKey;autoIncrement"`
	AccountID int64 `gorm:"index;not null"`

	// 账期，格式 2026-07
	Period string `gorm:"size:10;index;not null"`

	// 来源单据
	MpPaymentID int64  `gorm:"index"`
	SourceType  string `gorm:"size:32"` // payment / refund / chargeback / fee

	// 金额（分）
	GrossAmount int64
	FeeAmount   int64
	NetAmount   int64
	CurrencyID  string `gorm:"size:10;default:BRL"`

	// 到账日
	MoneyReleaseDate *time.Time `gorm:"index"`

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*Settlement) TableName() string {
	return "settlements"
}

// ==================== Subscription 订阅 ====================

// MP 订阅（preapproval）状态
const (
	SubscriptionStatusAuthorized = "authorized" // 生效中
	SubscriptionStatusPaused     = "paused"     // 已暂停
	SubscriptionStatusCancelled  = "cancelled"  // 已取消
	SubscriptionStatusPending    = "pending"    // 待买家确认
)

// Subscription Mercado Pago 订阅（preapproval）
type Subscription struct {
	ID              int64  `gorm:"primaryKey;autoIncrement"`
	MpPreapprovalID string `gorm:"size:64;uniqueIndex;not null"`
	AccountID       int64  `gorm:"index;not null"`

	Reason string `gorm:"size:255"` // 订阅描述
	Status string `gorm:"size:20;index;default:pending"`

	// 扣款计划
	FrequencyType string `gorm:"size:10"` // months / days
	Frequency     int    `gorm:"default:1"`
	AmountCents   int64  // 每期金额（分）
	CurrencyID    string `gorm:"size:10;default:BRL"`

	// 订阅人
	PayerID    int64
	PayerEmail string `gorm:"size:255"`

	// 周期
	NextPaymentDate *time.Time
	MpSyncedAt      *time.Time

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*Subscription) TableName() string {
	return "subscriptions"
}

// CanPause 检查是否可以暂停
func (s *Subscription) CanPause() bool {
	return s.Status == SubscriptionStatusAuthorized
}

// CanCancel 检查是否可以取消
func (s *Subscription) CanCancel() bool {
	return s.Status == SubscriptionStatusAuthorized || s.Status == SubscriptionStatusPaused
}
