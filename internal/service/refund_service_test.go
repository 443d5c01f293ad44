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

func newRefundServiceForTest(db *gorm.DB) *RefundService {
	return NewRefundService(
		repository.NewRefundRepository(db),
		repository.NewOrderRepository(db),
		repository.NewProductRepository(db),
		nil,
	)
}

// seedDeliveredOrder 直接落库一个已送达订单（单个订单项），用于退款场景
func seedDeliveredOrder(t *testing.T, db *gorm.DB, userID uint, productID uint, quantity int, createdAt time.Time) (*models.Order, *models.OrderItem) {
	t.Helper()
	order := &models.Order{
		OrderNo:          fmt.Sprintf("SO-test-%d", time.Now().UnixNano()),
		UserID:           userID,
		PaymentSessionID: fmt.Sprintf("cs_%d", time.Now().UnixNano()),
		Status:           constants.OrderStatusDelivered,
		PaymentStatus:    constants.PaymentStatusCompleted,
		Currency:         "USD",
		CreatedAt:        createdAt,
		UpdatedAt:        createdAt,
	}
	if err := db.Create(order).Error; err != nil {
		t.Fatalf("create order failed: %v", err)
	}
	item := &models.OrderItem{
		OrderID:    order.ID,
		ProductID:  productID,
		Title:      "Gadget",
		UnitPrice:  models.NewMoneyFromDecimal(decimal.NewFromFloat(25.00)),
		Quantity:   quantity,
		TotalPrice: models.NewMoneyFromDecimal(decimal.NewFromFloat(25.00 * float64(quantity))),
	}
	if err := db.Create(item).Error; err != nil {
		t.Fatalf("create order item failed: %v", err)
	}
	return order, item
}

func TestRequestRefundWithinWindow(t *testing.T) {
	db := setupServiceDB(t)
	product := seedServiceProduct(t, db, 5, 25.00)
	// 第 30 天仍可退
	createdAt := time.Now().AddDate(0, 0, -constants.RefundWindowDays).Add(time.Minute)
	order, _ := seedDeliveredOrder(t, db, 4, product.ID, 2, createdAt)
	svc := newRefundServiceForTest(db)

	refund, err := svc.RequestRefund(RequestRefundInput{
		OrderID:   order.ID,
		ProductID: product.ID,
		UserID:    4,
		Quantity:  2,
	})
	if err != nil {
		t.Fatalf("request refund failed: %v", err)
	}
	if refund.Status != constants.RefundStatusPending {
		t.Fatalf("status want pending got %s", refund.Status)
	}
	if refund.Reason != constants.RefundDefaultReason {
		t.Fatalf("empty reason should default, got %s", refund.Reason)
	}
	if !refund.Amount.Decimal.Equal(decimal.NewFromFloat(50.00)) {
		t.Fatalf("amount want 50.00 got %s", refund.Amount.Decimal)
	}
}

func TestRequestRefundWindowExpired(t *testing.T) {
	db := setupServiceDB(t)
	product := seedServiceProduct(t, db, 5, 25.00)
	createdAt := time.Now().AddDate(0, 0, -(constants.RefundWindowDays + 1))
	order, _ := seedDeliveredOrder(t, db, 4, product.ID, 1, createdAt)
	svc := newRefundServiceForTest(db)

	_, err := svc.RequestRefund(RequestRefundInput{
		OrderID:   order.ID,
		ProductID: product.ID,
		UserID:    4,
		Quantity:  1,
	})
	if !errors.Is(err, ErrRefundWindowExpired) {
		t.Fatalf("want ErrRefundWindowExpired got %v", err)
	}
}

func TestRequestRefundEligibilityChecks(t *testing.T) {
	db := setupServiceDB(t)
	product := seedServiceProduct(t, db, 5, 25.00)
	createdAt := time.Now().AddDate(0, 0, -1)
	order, item := seedDeliveredOrder(t, db, 4, product.ID, 2, createdAt)
	svc := newRefundServiceForTest(db)

	if _, err := svc.RequestRefund(RequestRefundInput{OrderID: order.ID, ProductID: product.ID, UserID: 4, Quantity: 0}); !errors.Is(err, ErrRefundQuantityInvalid) {
		t.Fatalf("zero quantity want ErrRefundQuantityInvalid got %v", err)
	}
	if _, err := svc.RequestRefund(RequestRefundInput{OrderID: order.ID, ProductID: product.ID, UserID: 4, Quantity: item.Quantity + 1}); !errors.Is(err, ErrRefundQuantityInvalid) {
		t.Fatalf("excess quantity want ErrRefundQuantityInvalid got %v", err)
	}
	if _, err := svc.RequestRefund(RequestRefundInput{OrderID: order.ID, ProductID: product.ID + 100, UserID: 4, Quantity: 1}); !errors.Is(err, ErrRefundProductNotInOrder) {
		t.Fatalf("foreign product want ErrRefundProductNotInOrder got %v", err)
	}
	if _, err := svc.RequestRefund(RequestRefundInput{OrderID: order.ID, ProductID: product.ID, UserID: 99, Quantity: 1}); !errors.Is(err, ErrOrderNotFound) {
		t.Fatalf("other user want ErrOrderNotFound got %v", err)
	}

	// 未送达订单不可退
	if err := db.Model(&models.Order{}).Where("id = ?", order.ID).Update("status", constants.OrderStatusInTransit).Error; err != nil {
		t.Fatalf("update order status failed: %v", err)
	}
	if _, err := svc.RequestRefund(RequestRefundInput{OrderID: order.ID, ProductID: product.ID, UserID: 4, Quantity: 1}); !errors.Is(err, ErrRefundOrderNotDelivered) {
		t.Fatalf("undelivered order want ErrRefundOrderNotDelivered got %v", err)
	}
}

func TestRequestRefundDuplicateGuard(t *testing.T) {
	db := setupServiceDB(t)
	product := seedServiceProduct(t, db, 5, 25.00)
	order, _ := seedDeliveredOrder(t, db, 4, product.ID, 2, time.Now().AddDate(0, 0, -1))
	svc := newRefundServiceForTest(db)

	input := RequestRefundInput{OrderID: order.ID, ProductID: product.ID, UserID: 4, Quantity: 1}
	if _, err := svc.RequestRefund(input); err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if _, err := svc.RequestRefund(input); !errors.Is(err, ErrRefundDuplicate) {
		t.Fatalf("duplicate want ErrRefundDuplicate got %v", err)
	}
}

func TestRequestRefundAllowedAfterRejection(t *testing.T) {
	db := setupServiceDB(t)
	product := seedServiceProduct(t, db, 5, 25.00)
	order, _ := seedDeliveredOrder(t, db, 4, product.ID, 2, time.Now().AddDate(0, 0, -1))
	svc := newRefundServiceForTest(db)

	input := RequestRefundInput{OrderID: order.ID, ProductID: product.ID, UserID: 4, Quantity: 1}
	first, err := svc.RequestRefund(input)
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	if _, err := svc.RequestRefund(input); !errors.Is(err, ErrRefundDuplicate) {
		t.Fatalf("duplicate want ErrRefundDuplicate got %v", err)
	}

	// 拒绝后该商品不再占用活跃退款名额，可重新发起
	rejected, err := svc.DecideRefund(DecideRefundInput{RefundID: first.ID, Decision: constants.RefundDecisionReject, AdminID: 1})
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.RefundStatusRejected {
		t.Fatalf("status want rejected got %s", rejected.Status)
	}

	second, err := svc.RequestRefund(input)
	if err != nil {
		t.Fatalf("re-request after rejection failed: %v", err)
	}
	if second.ID == first.ID {
		t.Fatal("re-request should create a new refund record")
	}
	if second.Status != constants.RefundStatusPending {
		t.Fatalf("new refund status want pending got %s", second.Status)
	}
}

func TestDecideRefundApproveCreditsStockOnce(t *testing.T) {
	db := setupServiceDB(t)
	product := seedServiceProduct(t, db, 5, 25.00)
	order, _ := seedDeliveredOrder(t, db, 4, product.ID, 2, time.Now().AddDate(0, 0, -1))
	svc := newRefundServiceForTest(db)

	refund, err := svc.RequestRefund(RequestRefundInput{OrderID: order.ID, ProductID: product.ID, UserID: 4, Quantity: 2})
	if err != nil {
		t.Fatalf("request refund failed: %v", err)
	}

	approved, err := svc.DecideRefund(DecideRefundInput{RefundID: refund.ID, Decision: constants.RefundDecisionApprove, AdminID: 1})
	if err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	if approved.Status != constants.RefundStatusApproved {
		t.Fatalf("status want approved got %s", approved.Status)
	}
	if !approved.StockAddedBack {
		t.Fatal("stock_added_back should be set")
	}
	if approved.DecidedAt == nil || approved.DecidedBy == nil || *approved.DecidedBy != 1 {
		t.Fatalf("decision audit fields unexpected: %+v", approved)
	}
	if got := reloadProductQuantity(t, db, product.ID); got != 7 {
		t.Fatalf("stock want 7 got %d", got)
	}

	// 非 pending 状态不可再审核，库存也不会二次回补
	if _, err := svc.DecideRefund(DecideRefundInput{RefundID: refund.ID, Decision: constants.RefundDecisionApprove, AdminID: 1}); !errors.Is(err, ErrRefundStatusInvalid) {
		t.Fatalf("second approve want ErrRefundStatusInvalid got %v", err)
	}
	if got := reloadProductQuantity(t, db, product.ID); got != 7 {
		t.Fatalf("stock should stay 7 got %d", got)
	}
}

func TestDecideRefundRejectDefaultsReason(t *testing.T) {
	db := setupServiceDB(t)
	product := seedServiceProduct(t, db, 5, 25.00)
	order, _ := seedDeliveredOrder(t, db, 4, product.ID, 1, time.Now().AddDate(0, 0, -1))
	svc := newRefundServiceForTest(db)

	refund, err := svc.RequestRefund(RequestRefundInput{OrderID: order.ID, ProductID: product.ID, UserID: 4, Quantity: 1})
	if err != nil {
		t.Fatalf("request refund failed: %v", err)
	}

	rejected, err := svc.DecideRefund(DecideRefundInput{RefundID: refund.ID, Decision: constants.RefundDecisionReject, AdminID: 2})
	if err != nil {
		t.Fatalf("reject failed: %v", err)
	}
	if rejected.Status != constants.RefundStatusRejected {
		t.Fatalf("status want rejected got %s", rejected.Status)
	}
	if rejected.RejectionReason != constants.RefundDefaultRejectionReason {
		t.Fatalf("rejection reason want default got %s", rejected.RejectionReason)
	}
	if got := reloadProductQuantity(t, db, product.ID); got != 5 {
		t.Fatalf("reject should not touch stock, want 5 got %d", got)
	}
}

func TestDecideRefundProcessMarksOrderRefunded(t *testing.T) {
	db := setupServiceDB(t)
	product := seedServiceProduct(t, db, 5, 25.00)
	order, _ := seedDeliveredOrder(t, db, 4, product.ID, 1, time.Now().AddDate(0, 0, -1))
	svc := newRefundServiceForTest(db)

	refund, err := svc.RequestRefund(RequestRefundInput{OrderID: order.ID, ProductID: product.ID, UserID: 4, Quantity: 1})
	if err != nil {
		t.Fatalf("request refund failed: %v", err)
	}

	// pending 状态不可直接 process
	if _, err := svc.DecideRefund(DecideRefundInput{RefundID: refund.ID, Decision: constants.RefundDecisionProcess, AdminID: 1}); !errors.Is(err, ErrRefundStatusInvalid) {
		t.Fatalf("process from pending want ErrRefundStatusInvalid got %v", err)
	}

	if _, err := svc.DecideRefund(DecideRefundInput{RefundID: refund.ID, Decision: constants.RefundDecisionApprove, AdminID: 1}); err != nil {
		t.Fatalf("approve failed: %v", err)
	}
	processed, err := svc.DecideRefund(DecideRefundInput{RefundID: refund.ID, Decision: constants.RefundDecisionProcess, AdminID: 1})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	if processed.Status != constants.RefundStatusProcessed {
		t.Fatalf("status want processed got %s", processed.Status)
	}
	if !processed.ProductReturned {
		t.Fatal("product_returned should be set")
	}
	if processed.ProcessedAt == nil {
		t.Fatal("processed_at should be set")
	}

	var gotOrder models.Order
	if err := db.First(&gotOrder, order.ID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if gotOrder.PaymentStatus != constants.PaymentStatusRefunded {
		t.Fatalf("order payment status want refunded got %s", gotOrder.PaymentStatus)
	}
}

func TestDecideRefundRejectsUnknownDecision(t *testing.T) {
	db := setupServiceDB(t)
	svc := newRefundServiceForTest(db)

	if _, err := svc.DecideRefund(DecideRefundInput{RefundID: 1, Decision: "escalate"}); !errors.Is(err, ErrRefundDecisionInvalid) {
		t.Fatalf("want ErrRefundDecisionInvalid got %v", err)
	}
	if _, err := svc.DecideRefund(DecideRefundInput{RefundID: 999, Decision: constants.RefundDecisionApprove}); !errors.Is(err, ErrRefundNotFound) {
		t.Fatalf("want ErrRefundNotFound got %v", err)
	}
}
