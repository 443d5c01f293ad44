package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/shopora/internal/constants"
	"github.com/shopora/internal/logger"
	"github.com/shopora/internal/models"
	"github.com/shopora/internal/payment"
	"github.com/shopora/internal/queue"
	"github.com/shopora/internal/repository"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// OrderService 订单服务
type OrderService struct {
	orderRepo    *repository.GormOrderRepository
	productRepo  repository.ProductRepository
	cartRepo     *repository.GormCartRepository
	deliveryRepo *repository.GormDeliveryRepository
	gateway      payment.Gateway
	queueClient  *queue.Client
}

// NewOrderService 创建订单服务
func NewOrderService(orderRepo *repository.GormOrderRepository, productRepo repository.ProductRepository, cartRepo *repository.GormCartRepository, deliveryRepo *repository.GormDeliveryRepository, gateway payment.Gateway, queueClient *queue.Client) *OrderService {
	return &OrderService{
		orderRepo:    orderRepo,
		productRepo:  productRepo,
		cartRepo:     cartRepo,
		deliveryRepo: deliveryRepo,
		gateway:      gateway,
		queueClient:  queueClient,
	}
}

// CompleteOrderInput 结算完成输入
type CompleteOrderInput struct {
	PaymentSessionID string
	UserID           uint
	SessionID        string
	ShippingAddress  models.JSON
}

// CompleteOrder 支付确认后创建订单。
// 以支付会话 ID 幂等：同一会话重复调用返回已创建的订单。
func (s *OrderService) CompleteOrder(ctx context.Context, input CompleteOrderInput) (*models.Order, error) {
	sessionID := strings.TrimSpace(input.PaymentSessionID)
	if sessionID == "" || input.UserID == 0 {
		return nil, ErrPaymentSessionInvalid
	}

	existing, err := s.orderRepo.GetByPaymentSessionID(sessionID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if existing != nil {
		return existing, nil
	}

	session, err := s.gateway.GetSession(ctx, sessionID)
	if err != nil {
		if errors.Is(err, payment.ErrSessionNotFound) {
			return nil, ErrPaymentSessionInvalid
		}
		return nil, ErrPaymentVerifyFailed
	}
	if session == nil || !session.Paid {
		return nil, ErrPaymentNotCompleted
	}

	cartSessionID := strings.TrimSpace(input.SessionID)
	if cartSessionID == "" {
		cartSessionID = session.CartSessionID
	}
	owner := repository.CartOwner{UserID: input.UserID, SessionID: cartSessionID}
	cartItems, err := s.cartRepo.ListByOwner(owner)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if len(cartItems) == 0 {
		return nil, ErrCartEmpty
	}

	now := time.Now()
	currency := session.Currency
	if currency == "" {
		currency = constants.SiteCurrencyDefault
	}

	items := make([]models.OrderItem, 0, len(cartItems))
	for _, cartItem := range cartItems {
		if cartItem.Product == nil || cartItem.Quantity <= 0 {
			return nil, ErrCartItemInvalid
		}
		unitPrice := cartItem.Product.Price.Decimal
		lineTotal := unitPrice.Mul(decimal.NewFromInt(int64(cartItem.Quantity)))
		items = append(items, models.OrderItem{
			ProductID:  cartItem.ProductID,
			Title:      cartItem.Product.Title,
			UnitPrice:  models.NewMoneyFromDecimal(unitPrice),
			Quantity:   cartItem.Quantity,
			TotalPrice: models.NewMoneyFromDecimal(lineTotal),
			CreatedAt:  now,
			UpdatedAt:  now,
		})
	}

	order := &models.Order{
		OrderNo:             generateOrderNo(),
		UserID:              input.UserID,
		PaymentSessionID:    sessionID,
		Status:              constants.OrderStatusProcessing,
		PaymentStatus:       constants.PaymentStatusCompleted,
		Currency:            currency,
		Subtotal:            models.NewMoneyFromDecimal(session.Subtotal),
		ShippingAmount:      models.NewMoneyFromDecimal(session.ShippingAmount),
		DiscountAmount:      models.NewMoneyFromDecimal(session.DiscountAmount),
		TaxAmount:           models.NewMoneyFromDecimal(session.TaxAmount),
		TotalAmount:         models.NewMoneyFromDecimal(session.TotalAmount),
		ShippingAddressJSON: input.ShippingAddress,
		CreatedAt:           now,
		UpdatedAt:           now,
	}

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)
		cartRepo := s.cartRepo.WithTx(tx)
		deliveryRepo := s.deliveryRepo.WithTx(tx)

		// 下单前的最终库存校验：条件扣减失败即库存不足，整个事务回滚
		for _, item := range items {
			affected, err := productRepo.DecrementStock(item.ProductID, item.Quantity)
			if err != nil {
				return err
			}
			if affected == 0 {
				return ErrInsufficientStock
			}
		}

		if err := orderRepo.Create(order, items); err != nil {
			return err
		}

		deliveries := make([]models.Delivery, 0, len(items))
		for _, item := range items {
			deliveries = append(deliveries, models.Delivery{
				OrderID:             order.ID,
				OrderItemID:         item.ID,
				ProductID:           item.ProductID,
				UserID:              input.UserID,
				Quantity:            item.Quantity,
				TotalPrice:          item.TotalPrice,
				ShippingAddressJSON: order.ShippingAddressJSON,
				Status:              constants.DeliveryStatusPending,
				CreatedAt:           now,
				UpdatedAt:           now,
			})
		}
		if err := deliveryRepo.CreateBatch(deliveries); err != nil {
			return err
		}

		return cartRepo.ClearByOwner(owner)
	})
	if err != nil {
		if errors.Is(err, ErrInsufficientStock) {
			return nil, ErrInsufficientStock
		}
		// payment_session_id 唯一索引兜底：并发重复结算时返回已创建的订单
		if concurrent, fetchErr := s.orderRepo.GetByPaymentSessionID(sessionID); fetchErr == nil && concurrent != nil {
			return concurrent, nil
		}
		return nil, ErrOrderCreateFailed
	}

	if s.queueClient != nil {
		if err := s.queueClient.EnqueueOrderConfirmEmail(queue.OrderConfirmEmailPayload{
			OrderID: order.ID,
		}); err != nil {
			logger.Warnw("order_enqueue_confirm_email_failed",
				"order_id", order.ID,
				"order_no", order.OrderNo,
				"error", err,
			)
		}
	}

	full, err := s.orderRepo.GetByID(order.ID)
	if err == nil && full != nil {
		return full, nil
	}
	return order, nil
}

// CancelOrder 用户取消订单。
// 仅允许 processing 状态整单取消；逐项回补库存后置为 cancelled，配送记录保持原状。
func (s *OrderService) CancelOrder(orderID uint, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusProcessing {
		return nil, ErrOrderCancelNotAllowed
	}

	now := time.Now()
	err = models.DB.Transaction(func(tx *gorm.DB) error {
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		// 先做条件状态迁移，并发取消时只有迁移成功的一方回补库存
		affected, err := orderRepo.UpdateStatusIf(order.ID, constants.OrderStatusProcessing, constants.OrderStatusCancelled, map[string]interface{}{
			"cancelled_at": now,
			"updated_at":   now,
		})
		if err != nil {
			return err
		}
		if affected == 0 {
			return ErrOrderCancelNotAllowed
		}

		for _, item := range order.Items {
			if _, err := productRepo.CreditStock(item.ProductID, item.Quantity); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, ErrOrderCancelNotAllowed) {
			return nil, ErrOrderCancelNotAllowed
		}
		return nil, ErrOrderUpdateFailed
	}

	if s.queueClient != nil {
		if err := s.queueClient.EnqueueOrderStatusEmail(queue.OrderStatusEmailPayload{
			OrderID: order.ID,
			Status:  constants.OrderStatusCancelled,
		}); err != nil {
			logger.Warnw("order_enqueue_status_email_failed",
				"order_id", order.ID,
				"status", constants.OrderStatusCancelled,
				"error", err,
			)
		}
	}

	order.Status = constants.OrderStatusCancelled
	order.CancelledAt = &now
	order.UpdatedAt = now
	return order, nil
}

// GetOrderByUser 获取用户订单详情
func (s *OrderService) GetOrderByUser(orderID uint, userID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByIDAndUser(orderID, userID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

// ListOrdersByUser 用户订单列表
func (s *OrderService) ListOrdersByUser(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListByUser(filter)
}

// ListOrdersForAdmin 管理端订单列表
func (s *OrderService) ListOrdersForAdmin(filter repository.OrderListFilter) ([]models.Order, int64, error) {
	return s.orderRepo.ListAdmin(filter)
}

// GetOrderForAdmin 管理端订单详情
func (s *OrderService) GetOrderForAdmin(orderID uint) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	return order, nil
}

func generateOrderNo() string {
	now := time.Now().Format("20060102150405")
	randPart := randNumeric(6)
	return fmt.Sprintf("SO%s%s", now, randPart)
}

func randNumeric(length int) string {
	var b strings.Builder
	for i := 0; i < length; i++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			b.WriteString("0")
			continue
		}
		b.WriteString(fmt.Sprintf("%d", n.Int64()))
	}
	return b.String()
}
