package repository

import (
	"errors"

	"github.com/shopora/internal/models"

	"gorm.io/gorm"
)

// AdminRepository 管理员数据访问接口
// 查询方法未命中时返回 (nil, nil)，由调用方决定如何响应
type AdminRepository interface {
	GetByUsername(username string) (*models.Admin, error)
	GetByID(id uint) (*models.Admin, error)
	List() ([]models.Admin, error)
	Count() (int64, error)
	Create(admin *models.Admin) error
	Update(admin *models.Admin) error
	Delete(id uint) error
}

// GormAdminRepository GORM 实现
type GormAdminRepository struct {
	db *gorm.DB
}

// NewAdminRepository 创建管理员仓库
func NewAdminRepository(db *gorm.DB) *GormAdminRepository {
	return &GormAdminRepository{db: db}
}

func firstAdmin(query *gorm.DB) (*models.Admin, error) {
	var admin models.Admin
	if err := query.First(&admin).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &admin, nil
}

// GetByUsername 按登录账号查询
func (r *GormAdminRepository) GetByUsername(username string) (*models.Admin, error) {
	return firstAdmin(r.db.Where("username = ?", username))
}

// GetByID 按主键查询
func (r *GormAdminRepository) GetByID(id uint) (*models.Admin, error) {
	return firstAdmin(r.db.Where("id = ?", id))
}

// List 管理员列表，不带回密码哈希
func (r *GormAdminRepository) List() ([]models.Admin, error) {
	admins := make([]models.Admin, 0)
	err := r.db.
		Select("id", "username", "is_super", "last_login_at", "created_at").
		Order("id ASC").
		Find(&admins).Error
	if err != nil {
		return nil, err
	}
	return admins, nil
}

// Count 管理员总数
func (r *GormAdminRepository) Count() (int64, error) {
	var count int64
	if err := r.db.Model(&models.Admin{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Create 创建管理员
func (r *GormAdminRepository) Create(admin *models.Admin) error {
	return r.db.Create(admin).Error
}

// Update 保存管理员变更
func (r *GormAdminRepository) Update(admin *models.Admin) error {
	return r.db.Save(admin).Error
}

// Delete 软删除管理员
func (r *GormAdminRepository) Delete(id uint) error {
	if id == 0 {
		return nil
	}
	return r.db.Delete(&models.Admin{}, id).Error
}
