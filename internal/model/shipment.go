package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Shipment 状态常量（ML shipping status）
const (
	ShipmentStatusPending      = "pending"       // 待处理
	ShipmentStatusHandling     = "handling"      // 备货中
	ShipmentStatusReadyToShip  = "ready_to_ship" // 待发货
	ShipmentStatusShipped      = "shipped"       // 已发货
	ShipmentStatusDelivered    = "delivered"     // 已签收
	ShipmentStatusNotDelivered = "not_delivered" // 投递失败
	ShipmentStatusCancelled    = "cancelled"     // 已取消
)

// 物流类型常量
const (
	LogisticFulfillment  = "fulfillment"   // ML 仓配 (Full)
	LogisticCrossDocking = "cross_docking" // 协作揽收
	LogisticDropOff      = "drop_off"      // 自送网点
	LogisticSelfService  = "self_service"  // Flex 自配送
)

// Shipment 发货单
type Shipment struct {
	ID             int64 `gorm:"primaryKey;autoIncrement"`
	MeliShipmentID int64 `gorm:"uniqueIndex;not null"`
	AccountID      int64 `gorm:"index;not null"`

	// 关联订单
	MeliOrderID int64 `gorm:"index"`

	// 物流信息
	Status       string `gorm:"size:32;index;default:pending"`
	SubStatus    string `gorm:"size:64"`
	LogisticType string `gorm:"size:32"`

	TrackingNumber string `gorm:"size:64;index"`
	TrackingMethod string `gorm:"size:64"`

	// 收件信息（JSONB，按 ML 返回结构存储）
	ReceiverAddress datatypes.JSONMap `gorm:"type:jsonb"`

	// 费用（分）
	ShippingCostAmount int64
	CurrencyID         string `gorm:"size:10"`

	// 时间
	EstimatedDelivery *time.Time
	ShippedAt         *time.Time
	DeliveredAt       *time.Time
	MeliSyncedAt      *time.Time

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*Shipment) TableName() string {
	return "shipments"
}

// NeedsAction 是否需要卖家操作（待发货）
func (s *Shipment) NeedsAction() bool {
	return s.Status == ShipmentStatusReadyToShip
}

// GetReceiverField 获取收件地址字段
func (s *Shipment) GetReceiverField(key string) string {
	if s.ReceiverAddress == nil {
		return ""
	}
	if v, ok := s.ReceiverAddress[key]; ok {
		if str, ok := v.(string); ok {
			return str
		}
	}
	return ""
}
