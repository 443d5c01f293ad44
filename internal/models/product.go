package models

import (
	"time"

	"gorm.io/gorm"
)

// Product 商品表
type Product struct {
	ID               uint           `gorm:"primarykey" json:"id"`                                           // 主键
	CategoryID       uint           `gorm:"not null;index" json:"category_id"`                              // 分类ID
	Slug             string         `gorm:"uniqueIndex;not null" json:"slug"`                               // 唯一标识
	Title            string         `gorm:"not null" json:"title"`                                          // 标题
	Description      string         `gorm:"type:text" json:"description"`                                   // 描述
	Price            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"price"`             // 现价
	CompareAtPrice   Money          `gorm:"type:decimal(20,2);not null;default:0" json:"compare_at_price"`  // 折扣前价格（0 表示未打折）
	DiscountPercent  int            `gorm:"not null;default:0" json:"discount_percent"`                     // 折扣百分比（0 表示未打折）
	Quantity         int            `gorm:"not null;default:0" json:"quantity"`                             // 可售库存
	Images           StringArray    `gorm:"type:json" json:"images"`                                        // 图片数组
	Tags             StringArray    `gorm:"type:json" json:"tags"`                                          // 标签数组
	IsActive         bool           `gorm:"default:true;index" json:"is_active"`                            // 是否上架
	SortOrder        int            `gorm:"default:0;index" json:"sort_order"`                              // 排序权重
	CreatedAt        time.Time      `gorm:"index" json:"created_at"`                                        // 创建时间
	UpdatedAt        time.Time      `json:"updated_at"`                                                     // 更新时间
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`                                                 // 软删除时间

	// 关联
	Category Category `gorm:"foreignKey:CategoryID" json:"category,omitempty"` // 分类信息
}

// TableName 指定表名
func (Product) TableName() string {
	return "products"
}
