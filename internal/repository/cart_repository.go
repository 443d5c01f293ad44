package repository

import (
	"errors"
	"strings"

	"github.com/shopora/internal/models"

	"gorm.io/gorm"
)

// CartOwner 购物车归属（登录用户优先，其次游客会话）
type CartOwner struct {
	UserID    uint
	SessionID string
}

// Valid 归属是否可用
func (o CartOwner) Valid() bool {
	return o.UserID != 0 || strings.TrimSpace(o.SessionID) != ""
}

// CartRepository 购物车数据访问接口
type CartRepository interface {
	ListByOwner(owner CartOwner) ([]models.CartItem, error)
	Upsert(item *models.CartItem) error
	DeleteByOwnerAndProduct(owner CartOwner, productID uint) error
	ClearByOwner(owner CartOwner) error
	WithTx(tx *gorm.DB) *GormCartRepository
}

// GormCartRepository GORM 实现
type GormCartRepository struct {
	db *gorm.DB
}

// NewCartRepository 创建购物车仓库
func NewCartRepository(db *gorm.DB) *GormCartRepository {
	return &GormCartRepository{db: db}
}

// WithTx 绑定事务
func (r *GormCartRepository) WithTx(tx *gorm.DB) *GormCartRepository {
	if tx == nil {
		return r
	}
	return &GormCartRepository{db: tx}
}

func (r *GormCartRepository) ownerQuery(owner CartOwner) *gorm.DB {
	if owner.UserID != 0 {
		return r.db.Where("user_id = ?", owner.UserID)
	}
	return r.db.Where("user_id = 0 AND session_id = ?", strings.TrimSpace(owner.SessionID))
}

// ListByOwner 获取归属者的购物车项
func (r *GormCartRepository) ListByOwner(owner CartOwner) ([]models.CartItem, error) {
	if !owner.Valid() {
		return []models.CartItem{}, nil
	}
	var items []models.CartItem
	if err := r.ownerQuery(owner).Preload("Product").Order("updated_at desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Upsert 添加或更新购物车项
func (r *GormCartRepository) Upsert(item *models.CartItem) error {
	if item == nil {
		return nil
	}
	owner := CartOwner{UserID: item.UserID, SessionID: item.SessionID}
	if !owner.Valid() {
		return errors.New("cart item has no owner")
	}
	var existing models.CartItem
	err := r.ownerQuery(owner).Where("product_id = ?", item.ProductID).First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return r.db.Create(item).Error
	}
	if err != nil {
		return err
	}
	updates := map[string]interface{}{
		"quantity":   item.Quantity,
		"updated_at": item.UpdatedAt,
	}
	return r.db.Model(&existing).Updates(updates).Error
}

// DeleteByOwnerAndProduct 删除购物车项
func (r *GormCartRepository) DeleteByOwnerAndProduct(owner CartOwner, productID uint) error {
	if !owner.Valid() {
		return nil
	}
	return r.ownerQuery(owner).Where("product_id = ?", productID).Delete(&models.CartItem{}).Error
}

// ClearByOwner 清空购物车（用户与会话两条路径都清，避免游客转登录后残留）
func (r *GormCartRepository) ClearByOwner(owner CartOwner) error {
	if owner.UserID != 0 {
		if err := r.db.Where("user_id = ?", owner.UserID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
	}
	if sessionID := strings.TrimSpace(owner.SessionID); sessionID != "" {
		if err := r.db.Where("session_id = ?", sessionID).Delete(&models.CartItem{}).Error; err != nil {
			return err
		}
	}
	return nil
}
