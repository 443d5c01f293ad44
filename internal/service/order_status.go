package service

import (
	"strings"
	"time"

	"github.com/shopora/internal/constants"
	"github.com/shopora/internal/models"
	"github.com/shopora/internal/repository"
)

// deriveOrderStatus 由配送状态推导订单状态（纯函数）。
// 全部送达 → delivered；否则有在途 → in_transit；否则仍有待处理 → processing；
// failed 不参与推导，订单保持当前状态。
func deriveOrderStatus(deliveries []models.Delivery, currentStatus string) string {
	if len(deliveries) == 0 {
		return currentStatus
	}
	var deliveredCount int
	var inTransitCount int
	var pendingCount int
	for _, delivery := range deliveries {
		switch strings.ToLower(strings.TrimSpace(delivery.Status)) {
		case constants.DeliveryStatusDelivered:
			deliveredCount++
		case constants.DeliveryStatusInTransit:
			inTransitCount++
		case constants.DeliveryStatusPending:
			pendingCount++
		}
	}
	if deliveredCount == len(deliveries) {
		return constants.OrderStatusDelivered
	}
	if inTransitCount > 0 {
		return constants.OrderStatusInTransit
	}
	if pendingCount > 0 {
		return constants.OrderStatusProcessing
	}
	return currentStatus
}

// syncOrderStatus 重新推导并写入订单状态，返回写入后的状态。
// 必须在配送记录写入之后调用，保证聚合读到的是最新状态。
func syncOrderStatus(orderRepo *repository.GormOrderRepository, deliveryRepo *repository.GormDeliveryRepository, orderID uint, staffID *uint, now time.Time) (string, error) {
	order, err := orderRepo.GetByID(orderID)
	if err != nil {
		return "", err
	}
	if order == nil {
		return "", ErrOrderNotFound
	}
	if order.Status == constants.OrderStatusCancelled {
		return order.Status, nil
	}

	deliveries, err := deliveryRepo.ListByOrderID(orderID)
	if err != nil {
		return "", err
	}

	newStatus := deriveOrderStatus(deliveries, order.Status)
	if newStatus == "" || newStatus == order.Status {
		return order.Status, nil
	}

	updates := map[string]interface{}{
		"updated_at": now,
	}
	if staffID != nil && *staffID != 0 {
		updates["processed_by"] = *staffID
	}
	if newStatus == constants.OrderStatusDelivered {
		updates["delivered_at"] = now
	}
	if err := orderRepo.UpdateStatus(order.ID, newStatus, updates); err != nil {
		return "", err
	}
	return newStatus, nil
}
