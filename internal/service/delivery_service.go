package service

import (
	"strings"
	"time"

	"github.com/shopora/internal/constants"
	"github.com/shopora/internal/logger"
	"github.com/shopora/internal/models"
	"github.com/shopora/internal/queue"
	"github.com/shopora/internal/repository"

	"gorm.io/gorm"
)

// DeliveryService 配送服务
type DeliveryService struct {
	deliveryRepo *repository.GormDeliveryRepository
	orderRepo    *repository.GormOrderRepository
	queueClient  *queue.Client
}

// NewDeliveryService 创建配送服务
func NewDeliveryService(deliveryRepo *repository.GormDeliveryRepository, orderRepo *repository.GormOrderRepository, queueClient *queue.Client) *DeliveryService {
	return &DeliveryService{
		deliveryRepo: deliveryRepo,
		orderRepo:    orderRepo,
		queueClient:  queueClient,
	}
}

// UpdateDeliveryInput 配送状态更新输入
type UpdateDeliveryInput struct {
	DeliveryID     uint
	Status         string
	TrackingNumber string
	StaffID        uint
}

var allowedDeliveryStatuses = map[string]bool{
	constants.DeliveryStatusPending:   true,
	constants.DeliveryStatusInTransit: true,
	constants.DeliveryStatusDelivered: true,
	constants.DeliveryStatusFailed:    true,
}

// UpdateDeliveryStatus 更新配送状态并联动订单状态。
// 配送写入与订单状态重算在同一事务内完成，避免并发更新读到旧的兄弟配送状态。
func (s *DeliveryService) UpdateDeliveryStatus(input UpdateDeliveryInput) (*models.Delivery, error) {
	status := strings.ToLower(strings.TrimSpace(input.Status))
	if !allowedDeliveryStatuses[status] {
		return nil, ErrDeliveryStatusInvalid
	}

	now := time.Now()
	var (
		updated        *models.Delivery
		orderID        uint
		orderStatus    string
		previousStatus string
	)

	err := models.DB.Transaction(func(tx *gorm.DB) error {
		deliveryRepo := s.deliveryRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)

		delivery, err := deliveryRepo.GetByID(input.DeliveryID)
		if err != nil {
			return err
		}
		if delivery == nil {
			return ErrDeliveryNotFound
		}
		orderID = delivery.OrderID

		order, err := orderRepo.GetByID(delivery.OrderID)
		if err != nil {
			return err
		}
		if order == nil {
			return ErrOrderNotFound
		}
		previousStatus = order.Status

		updates := map[string]interface{}{
			"status":     status,
			"updated_at": now,
		}
		if input.StaffID != 0 {
			updates["processed_by"] = input.StaffID
		}
		if tracking := strings.TrimSpace(input.TrackingNumber); tracking != "" {
			updates["tracking_number"] = tracking
		}
		if status == constants.DeliveryStatusDelivered {
			updates["delivered_at"] = now
		}
		if err := deliveryRepo.Update(delivery.ID, updates); err != nil {
			return err
		}

		var staffID *uint
		if input.StaffID != 0 {
			staffID = &input.StaffID
		}
		orderStatus, err = syncOrderStatus(orderRepo, deliveryRepo, delivery.OrderID, staffID, now)
		if err != nil {
			return err
		}

		updated, err = deliveryRepo.GetByID(delivery.ID)
		if err != nil {
			return err
		}
		if updated == nil {
			return ErrDeliveryNotFound
		}
		return nil
	})
	if err != nil {
		switch err {
		case ErrDeliveryNotFound, ErrOrderNotFound:
			return nil, err
		}
		return nil, ErrDeliveryUpdateFailed
	}

	if s.queueClient != nil && orderStatus != "" && orderStatus != previousStatus {
		if err := s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
			OrderID: orderID,
			Status:  orderStatus,
		}); err != nil {
			logger.Warnw("delivery_enqueue_order_status_email_failed",
				"order_id", orderID,
				"delivery_id", input.DeliveryID,
				"status", orderStatus,
				"error", err,
			)
		}
	}

	return updated, nil
}

// GetDelivery 获取配送详情
func (s *DeliveryService) GetDelivery(deliveryID uint) (*models.Delivery, error) {
	delivery, err := s.deliveryRepo.GetByID(deliveryID)
	if err != nil {
		return nil, ErrDeliveryUpdateFailed
	}
	if delivery == nil {
		return nil, ErrDeliveryNotFound
	}
	return delivery, nil
}

// ListDeliveriesForAdmin 管理端配送列表
func (s *DeliveryService) ListDeliveriesForAdmin(filter repository.DeliveryListFilter) ([]models.Delivery, int64, error) {
	return s.deliveryRepo.ListAdmin(filter)
}

// ListDeliveriesByOrder 订单下的配送记录
func (s *DeliveryService) ListDeliveriesByOrder(orderID uint) ([]models.Delivery, error) {
	return s.deliveryRepo.ListByOrderID(orderID)
}
