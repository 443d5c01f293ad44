package models

import (
	"time"

	"gorm.io/gorm"
)

// Admin 后台管理员
type Admin struct {
	ID                 uint           `gorm:"primarykey" json:"id"`                         // 主键
	Username           string         `gorm:"uniqueIndex;not null" json:"username"`         // 登录账号
	PasswordHash       string         `gorm:"not null" json:"-"`                            // bcrypt 密码哈希
	TokenVersion       uint64         `gorm:"not null;default:0" json:"-"`                  // Token 版本，改密后递增使旧 Token 失效
	TokenInvalidBefore *time.Time     `gorm:"index" json:"-"`                               // 该时间点前签发的 Token 一律拒绝
	IsSuper            bool           `gorm:"not null;default:false;index" json:"is_super"` // 超级管理员跳过 RBAC 判定
	LastLoginAt        *time.Time     `json:"last_login_at"`                                // 最后登录时间
	CreatedAt          time.Time      `gorm:"index" json:"created_at"`                      // 创建时间
	UpdatedAt          time.Time      `json:"updated_at"`                                   // 更新时间
	DeletedAt          gorm.DeletedAt `gorm:"index" json:"-"`                               // 软删除时间
}

// TableName 指定表名
func (Admin) TableName() string {
	return "admins"
}
