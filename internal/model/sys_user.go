package model

// SysUser 系统用户（仪表盘登录账号）
type SysUser struct {
	BaseModel
	// 基础信息
	Username string `gorm:"size:100;uniqueIndex;not null"`
	Password string `gorm:"size:255;not null"` // bcrypt 哈希
	Email    string `gorm:"size:100"`

	// 系统级角色: admin (管理员), seller (卖家)
	Role string `gorm:"size:20;default:'seller'"`

	IsActive bool `gorm:"default:true"`

	// 该用户绑定的所有 ML 账号 (Has Many)
	// 账号归属登录用户，1:N
	Accounts []Account `gorm:"foreignKey:OwnerID"`
}

func (SysUser) TableName() string {
	return "sys_users"
}
