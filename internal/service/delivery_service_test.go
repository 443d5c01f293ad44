package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopora/internal/constants"
	"github.com/shopora/internal/models"
	"github.com/shopora/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func newDeliveryServiceForTest(db *gorm.DB) *DeliveryService {
	return NewDeliveryService(
		repository.NewDeliveryRepository(db),
		repository.NewOrderRepository(db),
		nil,
	)
}

// seedProcessingOrderWithDeliveries 落库一个 processing 订单及其两条待处理配送记录
func seedProcessingOrderWithDeliveries(t *testing.T, db *gorm.DB) (*models.Order, []models.Delivery) {
	t.Helper()
	order := &models.Order{
		OrderNo:          fmt.Sprintf("SO-ship-%d", time.Now().UnixNano()),
		UserID:           6,
		PaymentSessionID: fmt.Sprintf("cs_ship_%d", time.Now().UnixNano()),
		Status:           constants.OrderStatusProcessing,
		PaymentStatus:    constants.PaymentStatusCompleted,
		Currency:         "USD",
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	deliveries := make([]models.Delivery, 0, 2)
	for i := 0; i < 2; i++ {
		item := &models.OrderItem{
			OrderID:    order.ID,
			ProductID:  uint(100 + i),
			Title:      fmt.Sprintf("Item %d", i+1),
			UnitPrice:  models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
			Quantity:   1,
			TotalPrice: models.NewMoneyFromDecimal(decimal.NewFromInt(10)),
		}
		if err := db.Create(item).Error; err != nil {
			t.Fatalf("create order item failed: %v", err)
		}
		delivery := models.Delivery{
			OrderID:     order.ID,
			OrderItemID: item.ID,
			ProductID:   item.ProductID,
			UserID:      order.UserID,
			Quantity:    item.Quantity,
			TotalPrice:  item.TotalPrice,
			Status:      constants.DeliveryStatusPending,
		}
		if err := db.Create(&delivery).Error; err != nil {
			t.Fatalf("create delivery failed: %v", err)
		}
		deliveries = append(deliveries, delivery)
	}
	return order, deliveries
}

func reloadOrder(t *testing.T, db *gorm.DB, orderID uint) *models.Order {
	t.Helper()
	var order models.Order
	if err := db.First(&order, orderID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	return &order
}

func TestUpdateDeliveryPartialInTransit(t *testing.T) {
	db := setupServiceDB(t)
	order, deliveries := seedProcessingOrderWithDeliveries(t, db)
	svc := newDeliveryServiceForTest(db)

	updated, err := svc.UpdateDeliveryStatus(UpdateDeliveryInput{
		DeliveryID:     deliveries[0].ID,
		Status:         constants.DeliveryStatusInTransit,
		TrackingNumber: "TRK-001",
		StaffID:        11,
	})
	if err != nil {
		t.Fatalf("update delivery failed: %v", err)
	}
	if updated.Status != constants.DeliveryStatusInTransit {
		t.Fatalf("delivery status want in_transit got %s", updated.Status)
	}
	if updated.TrackingNumber != "TRK-001" {
		t.Fatalf("tracking number want TRK-001 got %s", updated.TrackingNumber)
	}
	if updated.ProcessedBy == nil || *updated.ProcessedBy != 11 {
		t.Fatalf("processed_by want 11 got %+v", updated.ProcessedBy)
	}

	gotOrder := reloadOrder(t, db, order.ID)
	if gotOrder.Status != constants.OrderStatusInTransit {
		t.Fatalf("order status want in_transit got %s", gotOrder.Status)
	}
}

func TestUpdateDeliveryAllDeliveredCompletesOrder(t *testing.T) {
	db := setupServiceDB(t)
	order, deliveries := seedProcessingOrderWithDeliveries(t, db)
	svc := newDeliveryServiceForTest(db)

	for _, delivery := range deliveries {
		updated, err := svc.UpdateDeliveryStatus(UpdateDeliveryInput{
			DeliveryID: delivery.ID,
			Status:     constants.DeliveryStatusDelivered,
			StaffID:    11,
		})
		if err != nil {
			t.Fatalf("update delivery %d failed: %v", delivery.ID, err)
		}
		if updated.DeliveredAt == nil {
			t.Fatal("delivered_at should be set on delivery")
		}
	}

	gotOrder := reloadOrder(t, db, order.ID)
	if gotOrder.Status != constants.OrderStatusDelivered {
		t.Fatalf("order status want delivered got %s", gotOrder.Status)
	}
	if gotOrder.DeliveredAt == nil {
		t.Fatal("order delivered_at should be set")
	}
	if gotOrder.ProcessedBy == nil || *gotOrder.ProcessedBy != 11 {
		t.Fatalf("order processed_by want 11 got %+v", gotOrder.ProcessedBy)
	}
}

func TestUpdateDeliveryFailedKeepsOrderStatus(t *testing.T) {
	db := setupServiceDB(t)
	order, deliveries := seedProcessingOrderWithDeliveries(t, db)
	svc := newDeliveryServiceForTest(db)

	for _, delivery := range deliveries {
		if _, err := svc.UpdateDeliveryStatus(UpdateDeliveryInput{
			DeliveryID: delivery.ID,
			Status:     constants.DeliveryStatusFailed,
			StaffID:    11,
		}); err != nil {
			t.Fatalf("update delivery %d failed: %v", delivery.ID, err)
		}
	}

	// 全部失败时订单保持当前状态
	gotOrder := reloadOrder(t, db, order.ID)
	if gotOrder.Status != constants.OrderStatusProcessing {
		t.Fatalf("order status should stay processing got %s", gotOrder.Status)
	}
}

func TestUpdateDeliveryValidation(t *testing.T) {
	db := setupServiceDB(t)
	_, deliveries := seedProcessingOrderWithDeliveries(t, db)
	svc := newDeliveryServiceForTest(db)

	if _, err := svc.UpdateDeliveryStatus(UpdateDeliveryInput{DeliveryID: deliveries[0].ID, Status: "teleported"}); !errors.Is(err, ErrDeliveryStatusInvalid) {
		t.Fatalf("want ErrDeliveryStatusInvalid got %v", err)
	}
	if _, err := svc.UpdateDeliveryStatus(UpdateDeliveryInput{DeliveryID: 9999, Status: constants.DeliveryStatusDelivered}); !errors.Is(err, ErrDeliveryNotFound) {
		t.Fatalf("want ErrDeliveryNotFound got %v", err)
	}
}

func TestUpdateDeliverySkipsCancelledOrders(t *testing.T) {
	db := setupServiceDB(t)
	order, deliveries := seedProcessingOrderWithDeliveries(t, db)
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", constants.OrderStatusCancelled).Error; err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}
	svc := newDeliveryServiceForTest(db)

	if _, err := svc.UpdateDeliveryStatus(UpdateDeliveryInput{
		DeliveryID: deliveries[0].ID,
		Status:     constants.DeliveryStatusDelivered,
	}); err != nil {
		t.Fatalf("update delivery failed: %v", err)
	}

	gotOrder := reloadOrder(t, db, order.ID)
	if gotOrder.Status != constants.OrderStatusCancelled {
		t.Fatalf("cancelled order should not be re-derived, got %s", gotOrder.Status)
	}
}
