package models

import (
	"time"

	"gorm.io/gorm"
)

// Delivery 配送记录表（每个订单项一条，随订单创建批量生成）
type Delivery struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                     // 主键
	OrderID             uint           `gorm:"index;not null" json:"order_id"`                           // 订单ID
	OrderItemID         uint           `gorm:"uniqueIndex;not null" json:"order_item_id"`                // 订单项ID
	ProductID           uint           `gorm:"index;not null" json:"product_id"`                         // 商品ID
	UserID              uint           `gorm:"index;not null" json:"user_id"`                            // 用户ID
	Quantity            int            `gorm:"not null" json:"quantity"`                                 // 数量
	TotalPrice          Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_price"` // 小计
	ShippingAddressJSON JSON           `gorm:"type:json" json:"shipping_address"`                        // 收货地址（建单时从订单复制）
	Status              string         `gorm:"index;not null" json:"status"`                             // 配送状态
	TrackingNumber      string         `gorm:"type:varchar(100)" json:"tracking_number,omitempty"`       // 物流单号
	ProcessedBy         *uint          `gorm:"index" json:"processed_by,omitempty"`                      // 最近处理的管理员ID
	DeliveredAt         *time.Time     `gorm:"index" json:"delivered_at,omitempty"`                      // 送达时间
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                  // 创建时间
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                                  // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                           // 软删除时间
}

// TableName 指定表名
func (Delivery) TableName() string {
	return "deliveries"
}
