package model

// Application ML 开发者应用凭证
// 一个应用可以授权多个卖家账号，client_secret 属于敏感字段
type Application struct {
	BaseModel

	Name         string `gorm:"size:100;not null"`
	ClientID     string `gorm:"size:64;uniqueIndex;not null"` // ML app id
	ClientSecret string `gorm:"size:128;not null"`            // 加密存储
	RedirectURI  string `gorm:"size:255;not null"`            // 必须与 ML 后台配置一致
	SiteID       string `gorm:"size:10;default:'MLB'"`        // MLB 巴西 / MLA 阿根廷 / MLM 墨西哥

	Status int `gorm:"default:1;comment:状态 0-停用 1-正常"`

	// 绑定的账号数量由查询统计，不做冗余字段
	Accounts []Account `gorm:"foreignKey:ApplicationID"`
}

func (Application) TableName() string {
	return "applications"
}
