package models

import (
	"strings"

	"github.com/shopora/internal/logger"

	"golang.org/x/crypto/bcrypt"
)

const (
	defaultAdminUsername = "admin"
	defaultAdminPassword = "admin123"
)

// InitDefaultAdmin 确保系统存在可登录的管理员账号
// 仅在管理员表为空时创建，已有账号时只修正默认 admin 的超管标记
func InitDefaultAdmin(username, password string) error {
	var count int64
	DB.Model(&Admin{}).Count(&count)

	if count > 0 {
		if err := DB.Model(&Admin{}).Where("username = ?", defaultAdminUsername).Update("is_super", true).Error; err != nil {
			logger.Warnw("ensure_default_admin_super_failed", "error", err)
		}
		return nil
	}

	if username == "" {
		username = defaultAdminUsername
	}
	if password == "" {
		password = defaultAdminPassword
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	admin := Admin{
		Username:     username,
		PasswordHash: string(hash),
		IsSuper:      strings.EqualFold(strings.TrimSpace(username), defaultAdminUsername),
	}
	if err := DB.Create(&admin).Error; err != nil {
		return err
	}

	if password == defaultAdminPassword {
		logger.Warnw("default_admin_created_with_default_password", "username", username)
		logger.Warnw("default_admin_password_change_required", "username", username)
	} else {
		logger.Infow("default_admin_created", "username", username)
	}
	return nil
}
