package service

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopora/internal/constants"
	"github.com/shopora/internal/logger"
	"github.com/shopora/internal/models"
	"github.com/shopora/internal/queue"
	"github.com/shopora/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// RefundService 退款服务
type RefundService struct {
	refundRepo  *repository.GormRefundRepository
	orderRepo   *repository.GormOrderRepository
	productRepo repository.ProductRepository
	queueClient *queue.Client
}

// NewRefundService 创建退款服务
func NewRefundService(refundRepo *repository.GormRefundRepository, orderRepo *repository.GormOrderRepository, productRepo repository.ProductRepository, queueClient *queue.Client) *RefundService {
	return &RefundService{
		refundRepo:  refundRepo,
		orderRepo:   orderRepo,
		productRepo: productRepo,
		queueClient: queueClient,
	}
}

// RequestRefundInput 退款申请输入
type RequestRefundInput struct {
	OrderID   uint
	ProductID uint
	UserID    uint
	Quantity  int
	Reason    string
}

// RequestRefund 用户发起退款申请。
// 资格要求：订单已送达、下单日期在退款窗口内（含第 30 天）、
// 商品属于该订单且数量不超过购买数量、同一（订单，商品）没有在途退款。
func (s *RefundService) RequestRefund(input RequestRefundInput) (*models.Refund, error) {
	if input.Quantity <= 0 {
		return nil, ErrRefundQuantityInvalid
	}

	order, err := s.orderRepo.GetByIDAndUser(input.OrderID, input.UserID)
	if err != nil {
		return nil, ErrOrderFetchFailed
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}
	if order.Status != constants.OrderStatusDelivered {
		return nil, ErrRefundOrderNotDelivered
	}

	now := time.Now()
	if now.After(order.CreatedAt.AddDate(0, 0, constants.RefundWindowDays)) {
		return nil, ErrRefundWindowExpired
	}

	var item *models.OrderItem
	for i := range order.Items {
		if order.Items[i].ProductID == input.ProductID {
			item = &order.Items[i]
			break
		}
	}
	if item == nil {
		return nil, ErrRefundProductNotInOrder
	}
	if input.Quantity > item.Quantity {
		return nil, ErrRefundQuantityInvalid
	}

	activeCount, err := s.refundRepo.CountActiveByOrderAndProduct(order.ID, input.ProductID)
	if err != nil {
		return nil, ErrRefundCreateFailed
	}
	if activeCount > 0 {
		return nil, ErrRefundDuplicate
	}

	reason := strings.TrimSpace(input.Reason)
	if reason == "" {
		reason = constants.RefundDefaultReason
	}

	amount := item.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(input.Quantity)))
	refund := &models.Refund{
		RefundNo:  generateRefundNo(),
		OrderID:   order.ID,
		ProductID: input.ProductID,
		UserID:    input.UserID,
		Quantity:  input.Quantity,
		UnitPrice: item.UnitPrice,
		Amount:    models.NewMoneyFromDecimal(amount),
		Reason:    reason,
		Status:    constants.RefundStatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.refundRepo.Create(refund); err != nil {
		return nil, ErrRefundCreateFailed
	}
	return refund, nil
}

// DecideRefundInput 退款审核输入
type DecideRefundInput struct {
	RefundID        uint
	Decision        string
	RejectionReason string
	AdminID         uint
}

// DecideRefund 管理端审核退款。
// approve：pending → approved，回补库存（stock_added_back 条件置位保证只回补一次）；
// reject：pending → rejected，记录驳回原因；
// process：approved → processed，标记商品退回并将订单支付状态置为 refunded。
func (s *RefundService) DecideRefund(input DecideRefundInput) (*models.Refund, error) {
	decision := strings.ToLower(strings.TrimSpace(input.Decision))
	switch decision {
	case constants.RefundDecisionApprove, constants.RefundDecisionReject, constants.RefundDecisionProcess:
	default:
		return nil, ErrRefundDecisionInvalid
	}

	refund, err := s.refundRepo.GetByID(input.RefundID)
	if err != nil {
		return nil, ErrRefundUpdateFailed
	}
	if refund == nil {
		return nil, ErrRefundNotFound
	}

	now := time.Now()
	var newStatus string

	err = models.DB.Transaction(func(tx *gorm.DB) error {
		refundRepo := s.refundRepo.WithTx(tx)
		orderRepo := s.orderRepo.WithTx(tx)
		productRepo := s.productRepo.WithTx(tx)

		switch decision {
		case constants.RefundDecisionApprove:
			if refund.Status != constants.RefundStatusPending {
				return ErrRefundStatusInvalid
			}
			newStatus = constants.RefundStatusApproved
			updates := map[string]interface{}{
				"status":     newStatus,
				"decided_by": input.AdminID,
				"decided_at": now,
				"updated_at": now,
			}
			if err := refundRepo.Update(refund.ID, updates); err != nil {
				return err
			}
			affected, err := refundRepo.MarkStockAddedBack(refund.ID)
			if err != nil {
				return err
			}
			if affected > 0 {
				if _, err := productRepo.CreditStock(refund.ProductID, refund.Quantity); err != nil {
					return err
				}
			}
			return nil

		case constants.RefundDecisionReject:
			if refund.Status != constants.RefundStatusPending {
				return ErrRefundStatusInvalid
			}
			newStatus = constants.RefundStatusRejected
			rejection := strings.TrimSpace(input.RejectionReason)
			if rejection == "" {
				rejection = constants.RefundDefaultRejectionReason
			}
			return refundRepo.Update(refund.ID, map[string]interface{}{
				"status":           newStatus,
				"rejection_reason": rejection,
				"decided_by":       input.AdminID,
				"decided_at":       now,
				"updated_at":       now,
			})

		default: // process
			if refund.Status != constants.RefundStatusApproved {
				return ErrRefundStatusInvalid
			}
			newStatus = constants.RefundStatusProcessed
			if err := refundRepo.Update(refund.ID, map[string]interface{}{
				"status":           newStatus,
				"product_returned": true,
				"processed_at":     now,
				"updated_at":       now,
			}); err != nil {
				return err
			}
			order, err := orderRepo.GetByID(refund.OrderID)
			if err != nil {
				return err
			}
			if order == nil {
				return ErrOrderNotFound
			}
			return orderRepo.UpdateStatus(order.ID, order.Status, map[string]interface{}{
				"payment_status": constants.PaymentStatusRefunded,
				"updated_at":     now,
			})
		}
	})
	if err != nil {
		switch err {
		case ErrRefundStatusInvalid, ErrOrderNotFound:
			return nil, err
		}
		return nil, ErrRefundUpdateFailed
	}

	if s.queueClient != nil {
		if err := s.queueClient.EnqueueRefundStatusEmail(queue.RefundStatusEmailPayload{
			RefundID: refund.ID,
			Status:   newStatus,
		}); err != nil {
			logger.Warnw("refund_enqueue_status_email_failed",
				"refund_id", refund.ID,
				"status", newStatus,
				"error", err,
			)
		}
	}

	return s.GetRefund(refund.ID)
}

// GetRefund 获取退款详情
func (s *RefundService) GetRefund(refundID uint) (*models.Refund, error) {
	refund, err := s.refundRepo.GetByID(refundID)
	if err != nil {
		return nil, ErrRefundUpdateFailed
	}
	if refund == nil {
		return nil, ErrRefundNotFound
	}
	return refund, nil
}

// GetRefundByUser 获取用户自己的退款详情
func (s *RefundService) GetRefundByUser(refundID uint, userID uint) (*models.Refund, error) {
	refund, err := s.GetRefund(refundID)
	if err != nil {
		return nil, err
	}
	if refund.UserID != userID {
		return nil, ErrRefundNotFound
	}
	return refund, nil
}

// ListRefundsByUser 用户退款列表
func (s *RefundService) ListRefundsByUser(filter repository.RefundListFilter) ([]models.Refund, int64, error) {
	return s.refundRepo.ListByUser(filter)
}

// ListRefundsForAdmin 管理端退款列表
func (s *RefundService) ListRefundsForAdmin(filter repository.RefundListFilter) ([]models.Refund, int64, error) {
	return s.refundRepo.ListAdmin(filter)
}

func generateRefundNo() string {
	raw := strings.ReplaceAll(uuid.NewString(), "-", "")
	return fmt.Sprintf("RF%s", strings.ToUpper(raw[:20]))
}
