package repository

import (
	"errors"

	"github.com/shopora/internal/models"

	"gorm.io/gorm"
)

// UserRepository 用户数据访问接口
// 查询方法未命中时返回 (nil, nil)
type UserRepository interface {
	GetByEmail(email string) (*models.User, error)
	GetByID(id uint) (*models.User, error)
	Create(user *models.User) error
	Update(user *models.User) error
	List(filter UserListFilter) ([]models.User, int64, error)
}

// GormUserRepository GORM 实现
type GormUserRepository struct {
	db *gorm.DB
}

// NewUserRepository 创建用户仓库
func NewUserRepository(db *gorm.DB) *GormUserRepository {
	return &GormUserRepository{db: db}
}

func firstUser(query *gorm.DB) (*models.User, error) {
	var user models.User
	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

// GetByEmail 按登录邮箱查询
func (r *GormUserRepository) GetByEmail(email string) (*models.User, error) {
	return firstUser(r.db.Where("email = ?", email))
}

// GetByID 按主键查询
func (r *GormUserRepository) GetByID(id uint) (*models.User, error) {
	return firstUser(r.db.Where("id = ?", id))
}

// Create 创建用户
func (r *GormUserRepository) Create(user *models.User) error {
	return r.db.Create(user).Error
}

// Update 保存用户变更
func (r *GormUserRepository) Update(user *models.User) error {
	return r.db.Save(user).Error
}

// List 按条件分页查询用户
func (r *GormUserRepository) List(filter UserListFilter) ([]models.User, int64, error) {
	query := r.db.Model(&models.User{})
	query = applyUserFilter(query, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := applyPagination(query, filter.Page, filter.PageSize).
		Order("id DESC").
		Find(&users).Error
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func applyUserFilter(query *gorm.DB, filter UserListFilter) *gorm.DB {
	if filter.Keyword != "" {
		like := "%" + filter.Keyword + "%"
		query = query.Where("email LIKE ? OR display_name LIKE ?", like, like)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	return query
}
