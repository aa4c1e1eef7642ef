package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ==================== 订单状态常量 ====================

// MeliOrderStatus ML 订单状态（与平台返回值保持一致）
const (
	OrderStatusConfirmed        = "confirmed"          // 已确认
	OrderStatusPaymentRequired  = "payment_required"   // 待支付
	OrderStatusPaymentInProcess = "payment_in_process" // 支付处理中
	OrderStatusPaid             = "paid"               // 已支付
	OrderStatusShipped          = "shipped"            // 已发货
	OrderStatusDelivered        = "delivered"          // 已签收
	OrderStatusCancelled        = "cancelled"          // 已取消
)

// RevenueStatuses 计入营收的订单状态
// 仪表盘营收口径：paid/confirmed 及其后续状态
var RevenueStatuses = []string{
	OrderStatusPaid, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered,
}

// ==================== Order 订单主表 ====================

// Order 订单
type Order struct {
	ID          int64 `gorm:"primaryKey;autoIncrement"`
	MeliOrderID int64 `gorm:"uniqueIndex;not null"`
	AccountID   int64 `gorm:"index;not null"`

	// 买家信息
	BuyerUserID int64
	BuyerNick   string `gorm:"size:255"`

	// 状态
	Status       string `gorm:"size:32;index;default:confirmed"`
	StatusDetail string `gorm:"size:64"`

	// 金额（分为单位存储）
	TotalAmount int64
	PaidAmount  int64
	CurrencyID  string `gorm:"size:10;default:BRL"`

	// 关联单据
	PackID     int64 `gorm:"index"` // 消息会话 / 合包发货用
	ShipmentID int64 `gorm:"index"` // ML shipment id

	// 卖家备注
	SellerNote string `gorm:"type:text"`

	// ML 原始数据（PostgreSQL JSONB）
	MeliRawData datatypes.JSON `gorm:"type:jsonb"`

	// 平台时间
	MeliCreatedAt *time.Time `gorm:"index"`
	MeliClosedAt  *time.Time
	MeliSyncedAt  *time.Time

	// 审计字段
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	// 关联
	Items []OrderItem `gorm:"foreignKey:OrderID"`
}

func (*Order) TableName() string {
	return "orders"
}

// GetTotal 获取订单总额（元）
func (o *Order) GetTotal() float64 {
	return float64(o.TotalAmount) / 100
}

// CountsAsRevenue 是否计入营收
func (o *Order) CountsAsRevenue() bool {
	for _, s := range RevenueStatuses {
		if o.Status == s {
			return true
		}
	}
	return false
}

// CanCancel 检查是否可以取消
func (o *Order) CanCancel() bool {
	return o.Status == OrderStatusConfirmed || o.Status == OrderStatusPaymentRequired
}

// ==================== OrderItem 订单项 ====================

// OrderItem 订单项
type OrderItem struct {
	ID      int64 `gorm:"primaryKey;autoIncrement"`
	OrderID int64 `gorm:"index;not null"`

	// 商品信息
	MeliItemID string `gorm:"size:32;index"` // MLB1234567890
	Title      string `gorm:"size:500"`
	VariantID  int64
	SKU        string `gorm:"size:100;index"`
	CategoryID string `gorm:"size:32"`

	// 数量与价格
	Quantity        int `gorm:"default:1"`
	UnitPriceAmount int64
	FullUnitAmount  int64 // 划线价
	SaleFeeAmount   int64 // 平台佣金
	CurrencyID      string `gorm:"size:10"`

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (*OrderItem) TableName() string {
	return "order_items"
}

// GetUnitPrice 获取单价（元）
func (i *OrderItem) GetUnitPrice() float64 {
	return float64(i.UnitPriceAmount) / 100
}

// GetLineTotal 获取行小计（元）
func (i *OrderItem) GetLineTotal() float64 {
	return float64(i.UnitPriceAmount*int64(i.Quantity)) / 100
}
