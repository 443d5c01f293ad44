package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopora/internal/constants"
	"github.com/shopora/internal/models"
	"github.com/shopora/internal/payment"
	"github.com/shopora/internal/repository"

	"github.com/glebarez/sqlite"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

func setupServiceDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Product{},
		&models.User{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.Delivery{},
		&models.Refund{},
	); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	prev := models.DB
	models.DB = db
	t.Cleanup(func() { models.DB = prev })
	return db
}

func seedServiceProduct(t *testing.T, db *gorm.DB, quantity int, price float64) *models.Product {
	t.Helper()
	product := &models.Product{
		CategoryID: 1,
		Slug:       fmt.Sprintf("gadget-%d", time.Now().UnixNano()),
		Title:      "Gadget",
		Price:      models.NewMoneyFromDecimal(decimal.NewFromFloat(price)),
		Quantity:   quantity,
		IsActive:   true,
	}
	if err := db.Create(product).Error; err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	return product
}

func reloadProductQuantity(t *testing.T, db *gorm.DB, productID uint) int {
	t.Helper()
	var product models.Product
	if err := db.First(&product, productID).Error; err != nil {
		t.Fatalf("reload product failed: %v", err)
	}
	return product.Quantity
}

type fakeGateway struct {
	sessions map[string]*payment.Session
}

func (g *fakeGateway) GetSession(_ context.Context, sessionID string) (*payment.Session, error) {
	session, ok := g.sessions[sessionID]
	if !ok {
		return nil, payment.ErrSessionNotFound
	}
	return session, nil
}

func newOrderServiceForTest(db *gorm.DB, gateway payment.Gateway) *OrderService {
	return NewOrderService(
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
		repository.NewCartRepository(db),
		repository.NewDeliveryRepository(db),
		gateway,
		nil,
	)
}

func TestCompleteOrderCreatesOrderAndClearsCart(t *testing.T) {
	db := setupServiceDB(t)
	product := seedServiceProduct(t, db, 10, 25.00)
	if err := db.Create(&models.CartItem{UserID: 7, ProductID: product.ID, Quantity: 2}).Error; err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}

	gateway := &fakeGateway{sessions: map[string]*payment.Session{
		"cs_paid": {
			ID:          "cs_paid",
			Paid:        true,
			Currency:    "USD",
			Subtotal:    decimal.NewFromFloat(50.00),
			TotalAmount: decimal.NewFromFloat(50.00),
		},
	}}
	svc := newOrderServiceForTest(db, gateway)

	order, err := svc.CompleteOrder(context.Background(), CompleteOrderInput{
		PaymentSessionID: "cs_paid",
		UserID:           7,
		ShippingAddress:  models.JSON{"city": "Berlin"},
	})
	if err != nil {
		t.Fatalf("complete order failed: %v", err)
	}
	if order.Status != constants.OrderStatusProcessing {
		t.Fatalf("order status want processing got %s", order.Status)
	}
	if order.PaymentStatus != constants.PaymentStatusCompleted {
		t.Fatalf("payment status want completed got %s", order.PaymentStatus)
	}
	if len(order.Items) != 1 || order.Items[0].Quantity != 2 {
		t.Fatalf("order items unexpected: %+v", order.Items)
	}

	if got := reloadProductQuantity(t, db, product.ID); got != 8 {
		t.Fatalf("stock want 8 got %d", got)
	}

	var cartCount int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", 7).Count(&cartCount).Error; err != nil {
		t.Fatalf("count cart failed: %v", err)
	}
	if cartCount != 0 {
		t.Fatalf("cart should be cleared, got %d items", cartCount)
	}

	var deliveries []models.Delivery
	if err := db.Where("order_id = ?", order.ID).Find(&deliveries).Error; err != nil {
		t.Fatalf("load deliveries failed: %v", err)
	}
	if len(deliveries) != 1 {
		t.Fatalf("deliveries want 1 got %d", len(deliveries))
	}
	if deliveries[0].Status != constants.DeliveryStatusPending {
		t.Fatalf("delivery status want pending got %s", deliveries[0].Status)
	}
}

func TestCompleteOrderIsIdempotentPerSession(t *testing.T) {
	db := setupServiceDB(t)
	product := seedServiceProduct(t, db, 10, 12.50)
	if err := db.Create(&models.CartItem{UserID: 3, ProductID: product.ID, Quantity: 1}).Error; err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}

	gateway := &fakeGateway{sessions: map[string]*payment.Session{
		"cs_repeat": {ID: "cs_repeat", Paid: true, TotalAmount: decimal.NewFromFloat(12.50)},
	}}
	svc := newOrderServiceForTest(db, gateway)

	input := CompleteOrderInput{PaymentSessionID: "cs_repeat", UserID: 3}
	first, err := svc.CompleteOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("first complete failed: %v", err)
	}
	second, err := svc.CompleteOrder(context.Background(), input)
	if err != nil {
		t.Fatalf("second complete failed: %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("same session should return same order, got %d and %d", first.ID, second.ID)
	}

	if got := reloadProductQuantity(t, db, product.ID); got != 9 {
		t.Fatalf("stock should be decremented once, want 9 got %d", got)
	}
	var orderCount int64
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orderCount != 1 {
		t.Fatalf("orders want 1 got %d", orderCount)
	}
}

func TestCompleteOrderInsufficientStockRollsBack(t *testing.T) {
	db := setupServiceDB(t)
	product := seedServiceProduct(t, db, 1, 9.99)
	if err := db.Create(&models.CartItem{UserID: 5, ProductID: product.ID, Quantity: 3}).Error; err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}

	gateway := &fakeGateway{sessions: map[string]*payment.Session{
		"cs_short": {ID: "cs_short", Paid: true, TotalAmount: decimal.NewFromFloat(29.97)},
	}}
	svc := newOrderServiceForTest(db, gateway)

	_, err := svc.CompleteOrder(context.Background(), CompleteOrderInput{PaymentSessionID: "cs_short", UserID: 5})
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("want ErrInsufficientStock got %v", err)
	}

	if got := reloadProductQuantity(t, db, product.ID); got != 1 {
		t.Fatalf("stock should be untouched, want 1 got %d", got)
	}
	var orderCount int64
	if err := db.Model(&models.Order{}).Count(&orderCount).Error; err != nil {
		t.Fatalf("count orders failed: %v", err)
	}
	if orderCount != 0 {
		t.Fatalf("no order should be created, got %d", orderCount)
	}
	var cartCount int64
	if err := db.Model(&models.CartItem{}).Where("user_id = ?", 5).Count(&cartCount).Error; err != nil {
		t.Fatalf("count cart failed: %v", err)
	}
	if cartCount != 1 {
		t.Fatalf("cart should survive rollback, got %d items", cartCount)
	}
}

func TestCompleteOrderRejectsUnpaidSession(t *testing.T) {
	db := setupServiceDB(t)
	product := seedServiceProduct(t, db, 5, 15.00)
	if err := db.Create(&models.CartItem{UserID: 2, ProductID: product.ID, Quantity: 1}).Error; err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}

	gateway := &fakeGateway{sessions: map[string]*payment.Session{
		"cs_unpaid": {ID: "cs_unpaid", Paid: false},
	}}
	svc := newOrderServiceForTest(db, gateway)

	_, err := svc.CompleteOrder(context.Background(), CompleteOrderInput{PaymentSessionID: "cs_unpaid", UserID: 2})
	if !errors.Is(err, ErrPaymentNotCompleted) {
		t.Fatalf("want ErrPaymentNotCompleted got %v", err)
	}

	_, err = svc.CompleteOrder(context.Background(), CompleteOrderInput{PaymentSessionID: "cs_unknown", UserID: 2})
	if !errors.Is(err, ErrPaymentSessionInvalid) {
		t.Fatalf("unknown session want ErrPaymentSessionInvalid got %v", err)
	}
}

func TestCancelOrderRestoresStock(t *testing.T) {
	db := setupServiceDB(t)
	product := seedServiceProduct(t, db, 10, 20.00)
	if err := db.Create(&models.CartItem{UserID: 9, ProductID: product.ID, Quantity: 4}).Error; err != nil {
		t.Fatalf("create cart item failed: %v", err)
	}

	gateway := &fakeGateway{sessions: map[string]*payment.Session{
		"cs_cancel": {ID: "cs_cancel", Paid: true, TotalAmount: decimal.NewFromFloat(80.00)},
	}}
	svc := newOrderServiceForTest(db, gateway)

	order, err := svc.CompleteOrder(context.Background(), CompleteOrderInput{PaymentSessionID: "cs_cancel", UserID: 9})
	if err != nil {
		t.Fatalf("complete order failed: %v", err)
	}
	if got := reloadProductQuantity(t, db, product.ID); got != 6 {
		t.Fatalf("stock after order want 6 got %d", got)
	}

	cancelled, err := svc.CancelOrder(order.ID, 9)
	if err != nil {
		t.Fatalf("cancel order failed: %v", err)
	}
	if cancelled.Status != constants.OrderStatusCancelled {
		t.Fatalf("status want cancelled got %s", cancelled.Status)
	}
	if cancelled.CancelledAt == nil {
		t.Fatal("cancelled_at should be set")
	}
	if got := reloadProductQuantity(t, db, product.ID); got != 10 {
		t.Fatalf("stock should be restored, want 10 got %d", got)
	}

	// 配送记录保持原状
	var deliveries []models.Delivery
	if err := db.Where("order_id = ?", order.ID).Find(&deliveries).Error; err != nil {
		t.Fatalf("load deliveries failed: %v", err)
	}
	for _, delivery := range deliveries {
		if delivery.Status != constants.DeliveryStatusPending {
			t.Fatalf("delivery should stay pending, got %s", delivery.Status)
		}
	}

	if _, err := svc.CancelOrder(order.ID, 9); !errors.Is(err, ErrOrderCancelNotAllowed) {
		t.Fatalf("second cancel want ErrOrderCancelNotAllowed got %v", err)
	}
	if got := reloadProductQuantity(t, db, product.ID); got != 10 {
		t.Fatalf("stock must not be credited twice, want 10 got %d", got)
	}
}

func TestCancelOrderUnknownOrOtherUser(t *testing.T) {
	db := setupServiceDB(t)
	svc := newOrderServiceForTest(db, &fakeGateway{sessions: map[string]*payment.Session{}})

	if _, err := svc.CancelOrder(999, 1); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("unknown order want ErrOrderNotFound got %v", err)
	}
}
