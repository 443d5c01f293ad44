package queue

import (
	"encoding/json"

	"github.com/shopora/internal/constants"

	"github.com/hibiken/asynq"
)

const (
	// TaskOrderConfirmEmail 下单确认邮件任务
	TaskOrderConfirmEmail = constants.TaskOrderConfirmEmail
	// TaskOrderStatusEmail 订单状态邮件通知任务
	TaskOrderStatusEmail = constants.TaskOrderStatusEmail
	// TaskRefundStatusEmail 退款状态邮件通知任务
	TaskRefundStatusEmail = constants.TaskRefundStatusEmail
	// TaskProductDiscountEmails 商品降价收藏通知任务
	TaskProductDiscountEmails = constants.TaskProductDiscountEmails
)

// OrderConfirmEmailPayload 下单确认邮件任务载荷
type OrderConfirmEmailPayload struct {
	OrderID uint `json:"order_id"`
}

// OrderStatusEmailPayload 订单状态邮件任务载荷
type OrderStatusEmailPayload struct {
	OrderID uint   `json:"order_id"`
	Status  string `json:"status"`
}

// RefundStatusEmailPayload 退款状态邮件任务载荷
type RefundStatusEmailPayload struct {
	RefundID uint   `json:"refund_id"`
	Status   string `json:"status"`
}

// ProductDiscountEmailsPayload 商品降价通知任务载荷
type ProductDiscountEmailsPayload struct {
	ProductID       uint   `json:"product_id"`
	OldPrice        string `json:"old_price"`
	NewPrice        string `json:"new_price"`
	DiscountPercent int    `json:"discount_percent"`
}

// NewOrderConfirmEmailTask 创建下单确认邮件任务
func NewOrderConfirmEmailTask(payload OrderConfirmEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderConfirmEmail, body), nil
}

// NewOrderStatusEmailTask 创建订单状态邮件任务
func NewOrderStatusEmailTask(payload OrderStatusEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskOrderStatusEmail, body), nil
}

// NewRefundStatusEmailTask 创建退款状态邮件任务
func NewRefundStatusEmailTask(payload RefundStatusEmailPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskRefundStatusEmail, body), nil
}

// NewProductDiscountEmailsTask 创建商品降价通知任务
func NewProductDiscountEmailsTask(payload ProductDiscountEmailsPayload) (*asynq.Task, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskProductDiscountEmails, body), nil
}
