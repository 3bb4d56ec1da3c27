package model

import "time"

// Account 仪表盘本地账号模型（登录用，与上游用户数据无关）
type Account struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;comment:账号标识" json:"id"`
	Name      string    `gorm:"size:255;not null;comment:显示名" json:"name"`
	Email     string    `gorm:"size:255;not null;uniqueIndex;comment:登录邮箱" json:"email"`
	Password  string    `gorm:"size:255;not null;comment:密码哈希" json:"-"`
	Role      string    `gorm:"size:64;not null;default:'viewer';comment:账号角色" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Account) TableName() string {
	return "accounts"
}
