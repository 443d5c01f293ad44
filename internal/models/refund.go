package models

import (
	"time"

	"gorm.io/gorm"
)

// Refund 退款申请表
type Refund struct {
	ID                    uint           `gorm:"primarykey" json:"id"`                                    // 主键
	RefundNo              string         `gorm:"uniqueIndex;not null" json:"refund_no"`                   // 退款编号
	OrderID               uint           `gorm:"index;not null" json:"order_id"`                          // 订单ID
	ProductID             uint           `gorm:"index;not null" json:"product_id"`                        // 商品ID
	UserID                uint           `gorm:"index;not null" json:"user_id"`                           // 用户ID
	Quantity              int            `gorm:"not null" json:"quantity"`                                // 退款数量
	UnitPrice             Money          `gorm:"type:decimal(20,2);not null;default:0" json:"unit_price"` // 购买时单价
	Amount                Money          `gorm:"type:decimal(20,2);not null;default:0" json:"amount"`     // 退款金额（单价×数量）
	Reason                string         `gorm:"type:varchar(500)" json:"reason"`                         // 申请原因
	Status                string         `gorm:"index;not null" json:"status"`                            // 退款状态
	DecidedBy             *uint          `gorm:"index" json:"decided_by,omitempty"`                       // 审核管理员ID
	RejectionReason       string         `gorm:"type:varchar(500)" json:"rejection_reason,omitempty"`     // 驳回原因
	ProductReturned       bool           `gorm:"not null;default:false" json:"product_returned"`          // 商品是否已退回
	StockAddedBack        bool           `gorm:"not null;default:false" json:"stock_added_back"`          // 库存是否已回补（幂等保护）
	EmailNotificationSent bool           `gorm:"not null;default:false" json:"email_notification_sent"`   // 通知邮件是否已发出（幂等保护）
	DecidedAt             *time.Time     `gorm:"index" json:"decided_at,omitempty"`                       // 审核时间
	ProcessedAt           *time.Time     `gorm:"index" json:"processed_at,omitempty"`                     // 处理完成时间
	CreatedAt             time.Time      `gorm:"index" json:"created_at"`                                 // 创建时间
	UpdatedAt             time.Time      `gorm:"index" json:"updated_at"`                                 // 更新时间
	DeletedAt             gorm.DeletedAt `gorm:"index" json:"-"`                                          // 软删除时间
}

// TableName 指定表名
func (Refund) TableName() string {
	return "refunds"
}
