package worker

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/shopora/internal/logger"
	"github.com/shopora/internal/provider"
	"github.com/shopora/internal/queue"
	"github.com/shopora/internal/service"

	"github.com/hibiken/asynq"
)

// Consumer 异步任务消费者
type Consumer struct {
	*provider.Container
}

// NewConsumer 创建消费者
func NewConsumer(c *provider.Container) *Consumer {
	return &Consumer{
		Container: c,
	}
}

// Register 注册消费者
func (c *Consumer) Register(mux *asynq.ServeMux) {
	if c == nil || mux == nil {
		logger.Debugw("worker_register_skip_nil", "consumer_nil", c == nil, "mux_nil", mux == nil)
		return
	}
	mux.HandleFunc(queue.TaskOrderConfirmEmail, c.handleOrderConfirmEmail)
	mux.HandleFunc(queue.TaskOrderStatusEmail, c.handleOrderStatusEmail)
	mux.HandleFunc(queue.TaskRefundStatusEmail, c.handleRefundStatusEmail)
	mux.HandleFunc(queue.TaskProductDiscountEmails, c.handleProductDiscountEmails)
}

func (c *Consumer) handleOrderConfirmEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_confirm_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderConfirmEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_confirm_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_confirm_email_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_confirm_email_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_confirm_email_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	receiverEmail, err := c.resolveOrderReceiver(order.UserID, order.ID)
	if err != nil {
		return err
	}
	if receiverEmail == "" {
		logger.Debugw("worker_order_confirm_email_skip_empty_receiver", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_order_confirm_email_skip_email_service_nil", "order_id", order.ID)
		return nil
	}

	input := service.OrderConfirmEmailInput{
		OrderNo:     order.OrderNo,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
		ItemCount:   len(order.Items),
	}
	if err := c.EmailService.SendOrderConfirmEmail(receiverEmail, input); err != nil {
		if isEmailDeliveryUnavailable(err) {
			logger.Debugw("worker_order_confirm_email_skip_disabled", "order_id", order.ID, "error", err)
			return nil
		}
		logger.Warnw("worker_order_confirm_email_send_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"receiver_email", receiverEmail,
			"error", err,
		)
		return err
	}
	return nil
}

func (c *Consumer) handleOrderStatusEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_order_status_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.OrderStatusEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_order_status_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.OrderID == 0 {
		logger.Debugw("worker_order_status_email_skip_invalid_payload", "order_id", payload.OrderID)
		return nil
	}
	order, err := c.OrderRepo.GetByID(payload.OrderID)
	if err != nil {
		logger.Warnw("worker_order_status_email_fetch_order_failed", "order_id", payload.OrderID, "error", err)
		return err
	}
	if order == nil {
		logger.Debugw("worker_order_status_email_skip_order_not_found", "order_id", payload.OrderID)
		return nil
	}
	receiverEmail, err := c.resolveOrderReceiver(order.UserID, order.ID)
	if err != nil {
		return err
	}
	if receiverEmail == "" {
		logger.Debugw("worker_order_status_email_skip_empty_receiver", "order_id", order.ID, "order_no", order.OrderNo)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_order_status_email_skip_email_service_nil", "order_id", order.ID)
		return nil
	}

	status := strings.TrimSpace(payload.Status)
	if status == "" {
		status = order.Status
	}
	input := service.OrderStatusEmailInput{
		OrderNo:     order.OrderNo,
		Status:      status,
		TotalAmount: order.TotalAmount,
		Currency:    order.Currency,
	}
	if err := c.EmailService.SendOrderStatusEmail(receiverEmail, input); err != nil {
		if isEmailDeliveryUnavailable(err) {
			logger.Debugw("worker_order_status_email_skip_disabled", "order_id", order.ID, "error", err)
			return nil
		}
		logger.Warnw("worker_order_status_email_send_failed",
			"order_id", order.ID,
			"order_no", order.OrderNo,
			"receiver_email", receiverEmail,
			"status", status,
			"error", err,
		)
		return err
	}
	return nil
}

// handleRefundStatusEmail 退款状态通知。
// email_notification_sent 条件置位保证同一退款单至多发出一封通知。
func (c *Consumer) handleRefundStatusEmail(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_refund_status_email_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.RefundStatusEmailPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_refund_status_email_unmarshal_failed", "error", err)
		return err
	}
	if payload.RefundID == 0 {
		logger.Debugw("worker_refund_status_email_skip_invalid_payload", "refund_id", payload.RefundID)
		return nil
	}
	refund, err := c.RefundRepo.GetByID(payload.RefundID)
	if err != nil {
		logger.Warnw("worker_refund_status_email_fetch_refund_failed", "refund_id", payload.RefundID, "error", err)
		return err
	}
	if refund == nil {
		logger.Debugw("worker_refund_status_email_skip_refund_not_found", "refund_id", payload.RefundID)
		return nil
	}
	if refund.EmailNotificationSent {
		logger.Debugw("worker_refund_status_email_skip_already_sent", "refund_id", refund.ID, "refund_no", refund.RefundNo)
		return nil
	}
	order, err := c.OrderRepo.GetByID(refund.OrderID)
	if err != nil {
		logger.Warnw("worker_refund_status_email_fetch_order_failed", "refund_id", refund.ID, "order_id", refund.OrderID, "error", err)
		return err
	}
	receiverEmail, err := c.resolveOrderReceiver(refund.UserID, refund.OrderID)
	if err != nil {
		return err
	}
	if receiverEmail == "" {
		logger.Debugw("worker_refund_status_email_skip_empty_receiver", "refund_id", refund.ID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_refund_status_email_skip_email_service_nil", "refund_id", refund.ID)
		return nil
	}

	status := strings.TrimSpace(payload.Status)
	if status == "" {
		status = refund.Status
	}
	orderNo := ""
	currency := ""
	if order != nil {
		orderNo = order.OrderNo
		currency = order.Currency
	}
	input := service.RefundStatusEmailInput{
		RefundNo:        refund.RefundNo,
		OrderNo:         orderNo,
		Status:          status,
		Amount:          refund.Amount,
		Currency:        currency,
		RejectionReason: refund.RejectionReason,
	}
	if err := c.EmailService.SendRefundStatusEmail(receiverEmail, input); err != nil {
		if isEmailDeliveryUnavailable(err) {
			logger.Debugw("worker_refund_status_email_skip_disabled", "refund_id", refund.ID, "error", err)
			return nil
		}
		logger.Warnw("worker_refund_status_email_send_failed",
			"refund_id", refund.ID,
			"refund_no", refund.RefundNo,
			"receiver_email", receiverEmail,
			"status", status,
			"error", err,
		)
		return err
	}
	if _, err := c.RefundRepo.MarkEmailNotificationSent(refund.ID); err != nil {
		logger.Warnw("worker_refund_status_email_mark_sent_failed", "refund_id", refund.ID, "error", err)
	}
	return nil
}

func (c *Consumer) handleProductDiscountEmails(_ context.Context, task *asynq.Task) error {
	if c == nil || task == nil {
		logger.Debugw("worker_product_discount_emails_skip_nil", "consumer_nil", c == nil, "task_nil", task == nil)
		return nil
	}
	var payload queue.ProductDiscountEmailsPayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		logger.Warnw("worker_product_discount_emails_unmarshal_failed", "error", err)
		return err
	}
	if payload.ProductID == 0 {
		logger.Debugw("worker_product_discount_emails_skip_invalid_payload", "product_id", payload.ProductID)
		return nil
	}
	product, err := c.ProductRepo.GetByID(payload.ProductID)
	if err != nil {
		logger.Warnw("worker_product_discount_emails_fetch_product_failed", "product_id", payload.ProductID, "error", err)
		return err
	}
	if product == nil {
		logger.Debugw("worker_product_discount_emails_skip_product_not_found", "product_id", payload.ProductID)
		return nil
	}
	emails, err := c.WishlistRepo.ListReceiverEmailsByProduct(product.ID)
	if err != nil {
		logger.Warnw("worker_product_discount_emails_fetch_receivers_failed", "product_id", product.ID, "error", err)
		return err
	}
	if len(emails) == 0 {
		logger.Debugw("worker_product_discount_emails_skip_no_receivers", "product_id", product.ID)
		return nil
	}
	if c.EmailService == nil {
		logger.Warnw("worker_product_discount_emails_skip_email_service_nil", "product_id", product.ID)
		return nil
	}

	input := service.DiscountEmailInput{
		ProductTitle:    product.Title,
		OldPrice:        payload.OldPrice,
		NewPrice:        payload.NewPrice,
		DiscountPercent: payload.DiscountPercent,
	}
	for _, email := range emails {
		email = strings.TrimSpace(email)
		if email == "" {
			continue
		}
		if err := c.EmailService.SendDiscountEmail(email, input); err != nil {
			if isEmailDeliveryUnavailable(err) {
				logger.Debugw("worker_product_discount_emails_skip_disabled", "product_id", product.ID, "error", err)
				return nil
			}
			logger.Warnw("worker_product_discount_email_send_failed",
				"product_id", product.ID,
				"receiver_email", email,
				"error", err,
			)
		}
	}
	return nil
}

func (c *Consumer) resolveOrderReceiver(userID, orderID uint) (string, error) {
	if userID == 0 {
		return "", nil
	}
	user, err := c.UserRepo.GetByID(userID)
	if err != nil {
		logger.Warnw("worker_resolve_receiver_fetch_user_failed", "order_id", orderID, "user_id", userID, "error", err)
		return "", err
	}
	if user == nil {
		return "", nil
	}
	return strings.TrimSpace(user.Email), nil
}

func isEmailDeliveryUnavailable(err error) bool {
	return errors.Is(err, service.ErrEmailServiceDisabled) ||
		errors.Is(err, service.ErrEmailServiceNotConfigured) ||
		errors.Is(err, service.ErrInvalidEmail) ||
		errors.Is(err, service.ErrEmailRecipientRejected)
}
