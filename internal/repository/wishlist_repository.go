package repository

import (
	"errors"

	"github.com/shopora/internal/models"

	"gorm.io/gorm"
)

// WishlistRepository 收藏数据访问接口
type WishlistRepository interface {
	ListByUser(userID uint) ([]models.WishlistItem, error)
	Add(item *models.WishlistItem) error
	DeleteByUserAndProduct(userID, productID uint) error
	ListReceiverEmailsByProduct(productID uint) ([]string, error)
}

// GormWishlistRepository GORM 实现
type GormWishlistRepository struct {
	db *gorm.DB
}

// NewWishlistRepository 创建收藏仓库
func NewWishlistRepository(db *gorm.DB) *GormWishlistRepository {
	return &GormWishlistRepository{db: db}
}

// ListByUser 获取用户收藏列表
func (r *GormWishlistRepository) ListByUser(userID uint) ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	if err := r.db.Preload("Product").Where("user_id = ?", userID).Order("id desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Add 添加收藏（重复添加视为成功）
func (r *GormWishlistRepository) Add(item *models.WishlistItem) error {
	if item == nil {
		return nil
	}
	var existing models.WishlistItem
	err := r.db.Where("user_id = ? AND product_id = ?", item.UserID, item.ProductID).First(&existing).Error
	if err == nil {
		*item = existing
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.db.Create(item).Error
}

// DeleteByUserAndProduct 取消收藏
func (r *GormWishlistRepository) DeleteByUserAndProduct(userID, productID uint) error {
	return r.db.Where("user_id = ? AND product_id = ?", userID, productID).Delete(&models.WishlistItem{}).Error
}

// ListReceiverEmailsByProduct 收藏了某商品的活跃用户邮箱（降价通知收件人）
func (r *GormWishlistRepository) ListReceiverEmailsByProduct(productID uint) ([]string, error) {
	if productID == 0 {
		return []string{}, nil
	}
	var emails []string
	if err := r.db.Model(&models.WishlistItem{}).
		Joins("JOIN users ON users.id = wishlist_items.user_id AND users.deleted_at IS NULL").
		Where("wishlist_items.product_id = ? AND users.status = ?", productID, "active").
		Pluck("users.email", &emails).Error; err != nil {
		return nil, err
	}
	return emails, nil
}
