package model

import (
	"time"

	"gorm.io/gorm"
)

// Invoice 状态常量
const (
	InvoiceStatusAuthorized = "authorized" // 已开具
	InvoiceStatusPending    = "pending"    // 待开具
	InvoiceStatusRejected   = "rejected"   // 被税务机关驳回
	InvoiceStatusCancelled  = "cancelled"  // 已作废
)

// Invoice 电子发票（NF-e，巴西站随单开具）
type Invoice struct {
	ID            int64 `gorm:"primaryKey;autoIncrement"`
	MeliInvoiceID int64 `gorm:"uniqueIndex;not null"`
	AccountID     int64 `gorm:"index;not null"`

	// 关联订单
	MeliOrderID int64 `gorm:"index"`

	// 发票信息
	Number int64  `gorm:"index"`
	Series string `gorm:"size:10"`
	Status string `gorm:"size:20;index;default:pending"`

	// 金额（分）
	TotalAmount int64
	TaxAmount   int64
	CurrencyID  string `gorm:"size:10;default:BRL"`

	// 文件
	XmlURL string `gorm:"size:500"`
	PdfURL string `gorm:"size:500"` // DANFE

	// 驳回原因
	RejectReason string `gorm:"type:text"`

	// 平台时间
	AuthorizedAt *time.Time
	MeliSyncedAt *time.Time

	// 审计
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}

func (*Invoice) TableName() string {
	return "invoices"
}

// CanReissue 检查是否可以重开
func (i *Invoice) CanReissue() bool {
	return i.Status == InvoiceStatusRejected || i.Status == InvoiceStatusCancelled
}
