package model

import (
	"time"
)

// Account 账号状态常量
const (
	AccountStatusPending = 0 // 待授权
	AccountStatusActive  = 1 // 正常
	AccountStatusPaused  = 2 // 已暂停
	AccountStatusExpired = 3 // 授权过期，需重新授权
)

// Token 状态常量
const (
	TokenStatusValid   = "valid"        // 有效
	TokenStatusExpired = "expired"      // 已过期
	TokenStatusInvalid = "auth_invalid" // 需重新授权
)

// Account 已连接的 Mercado Livre 卖家账号
type Account struct {
	BaseModel

	// 1. 核心身份
	// MeliUserID 对应 ML 平台的 user id，区分主键 ID
	MeliUserID int64  `gorm:"uniqueIndex"`
	Nickname   string `gorm:"size:100"`
	SiteID     string `gorm:"size:10;default:'MLB'"` // 站点，决定货币与 API 域名
	Email      string `gorm:"size:100"`

	// 2. 运营关键指标（账号同步时落库）
	ActiveItemCount int     `gorm:"default:0"`                   // 在售商品数
	TotalSoldCount  int     `gorm:"default:0"`                   // 累计销量
	ReputationLevel string  `gorm:"size:32"`                     // 5_green / 4_light_green ...
	PowerSellerTier string  `gorm:"size:32"`                     // gold / platinum
	RatingPositive  float64 `gorm:"type:decimal(4,3);default:0"` // 好评率 0~1
	CurrencyID      string  `gorm:"size:10;default:'BRL'"`

	// 3. 连接状态
	Status       int        `gorm:"index;default:0;comment:状态 0-待授权 1-正常 2-暂停 3-过期"`
	MeliSyncedAt *time.Time `gorm:"comment:最后同步时间"`

	// 4. 归属
	OwnerID int64    `gorm:"index;not null"` // SysUserID，账号 1:N 归属登录用户
	Owner   *SysUser `gorm:"foreignKey:OwnerID"`

	// 5. 开发者应用绑定（OAuth 凭证来源）
	ApplicationID int64        `gorm:"index"`
	Application   *Application `gorm:"foreignKey:ApplicationID"`

	// 6. API Token
	// token 有效期 6 小时，由定时任务周期刷新
	TokenStatus    string    `gorm:"index;size:20;default:'auth_invalid'"`
	AccessToken    string    `gorm:"size:512"`
	RefreshToken   string    `gorm:"size:512"`
	TokenExpiresAt time.Time // Token 具体的过期时间点

	// 7. 关联数据 (Has Many)
	Products []Product `gorm:"foreignKey:AccountID"`
	Orders   []Order   `gorm:"foreignKey:AccountID"`
}

func (Account) TableName() string {
	return "accounts"
}

// IsConnected 账号是否处于可调用 API 的状态
func (a *Account) IsConnected() bool {
	return a.Status == AccountStatusActive && a.AccessToken != ""
}

// TokenExpiringSoon token 是否即将过期（提前量由调用方给定）
func (a *Account) TokenExpiringSoon(within time.Duration) bool {
	return time.Until(a.TokenExpiresAt) < within
}
