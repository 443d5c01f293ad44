package models

import (
	"time"

	"gorm.io/gorm"
)

// WishlistItem 收藏项（商品降价时按收藏名单群发通知）
type WishlistItem struct {
	ID        uint           `gorm:"primarykey" json:"id"`                                              // 主键
	UserID    uint           `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"user_id"`     // 用户ID
	ProductID uint           `gorm:"not null;uniqueIndex:idx_wishlist_user_product" json:"product_id"`  // 商品ID
	CreatedAt time.Time      `gorm:"index" json:"created_at"`                                           // 创建时间
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`                                                    // 软删除时间

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"` // 关联商品
}

// TableName 指定表名
func (WishlistItem) TableName() string {
	return "wishlist_items"
}
