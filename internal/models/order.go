package models

import (
	"time"

	"gorm.io/gorm"
)

// Order 订单表
type Order struct {
	ID                  uint           `gorm:"primarykey" json:"id"`                                        // 主键
	OrderNo             string         `gorm:"uniqueIndex;not null" json:"order_no"`                        // 订单编号
	UserID              uint           `gorm:"index;not null" json:"user_id"`                               // 用户ID
	PaymentSessionID    string         `gorm:"uniqueIndex;not null" json:"payment_session_id"`              // 支付会话ID（幂等键）
	Status              string         `gorm:"index;not null" json:"status"`                                // 订单状态（除 cancelled 外由配送状态推导）
	PaymentStatus       string         `gorm:"index;not null" json:"payment_status"`                        // 支付状态
	Currency            string         `gorm:"not null" json:"currency"`                                    // 币种
	Subtotal            Money          `gorm:"type:decimal(20,2);not null;default:0" json:"subtotal"`       // 商品小计
	ShippingAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"shipping_amount"` // 运费
	DiscountAmount      Money          `gorm:"type:decimal(20,2);not null;default:0" json:"discount_amount"` // 优惠金额
	TaxAmount           Money          `gorm:"type:decimal(20,2);not null;default:0" json:"tax_amount"`     // 税费
	TotalAmount         Money          `gorm:"type:decimal(20,2);not null;default:0" json:"total_amount"`   // 实付金额
	ShippingAddressJSON JSON           `gorm:"type:json" json:"shipping_address"`                           // 收货地址
	ProcessedBy         *uint          `gorm:"index" json:"processed_by,omitempty"`                         // 最近处理的管理员ID
	DeliveredAt         *time.Time     `gorm:"index" json:"delivered_at"`                                   // 全部送达时间
	CancelledAt         *time.Time     `gorm:"index" json:"cancelled_at"`                                   // 取消时间
	CreatedAt           time.Time      `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt           time.Time      `gorm:"index" json:"updated_at"`                                     // 更新时间
	DeletedAt           gorm.DeletedAt `gorm:"index" json:"-"`                                              // 软删除时间

	Items []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
	// 关联
	Deliveries []Delivery `gorm:"foreignKey:OrderID" json:"deliveries,omitempty"` // 配送记录（每个订单项一条）
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}
