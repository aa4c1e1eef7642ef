package dto

import "time"

// ConnectRequest 发起 OAuth 连接请求
type ConnectRequest struct {
	ApplicationID int64 `json:"application_id"`
	AccountID     int64 `json:"account_id"` // 重新授权已有账号时传
}

// AccountInfo 账号信息
type AccountInfo struct {
	ID              int64      `json:"id"`
	MeliUserID      int64      `json:"meli_user_id"`
	Nickname        string     `json:"nickname"`
	SiteID          string     `json:"site_id"`
	Email           string     `json:"email"`
	Status          int        `json:"status"`
	TokenStatus     string     `json:"token_status"`
	ActiveItemCount int        `json:"active_item_count"`
	TotalSoldCount  int        `json:"total_sold_count"`
	ReputationLevel string     `json:"reputation_level"`
	PowerSellerTier string     `json:"power_seller_tier"`
	RatingPositive  float64    `json:"rating_positive"`
	MeliSyncedAt    *time.Time `json:"meli_synced_at"`
	CreatedAt       time.Time  `json:"created_at"`
}

// ApplicationRequest 开发者应用配置请求
type ApplicationRequest struct {
	Name         string `json:"name" binding:"required"`
	ClientID     string `json:"client_id" binding:"required"`
	ClientSecret string `json:"client_secret" binding:"required"`
	RedirectURI  string `json:"redirect_uri" binding:"required,url"`
	SiteID       string `json:"site_id"`
}
