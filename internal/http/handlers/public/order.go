package public

import (
	"errors"
	"strconv"

	handlershared "github.com/shopora/internal/http/handlers/shared"
	"github.com/shopora/internal/http/response"
	"github.com/shopora/internal/models"
	"github.com/shopora/internal/repository"
	"github.com/shopora/internal/service"

	"github.com/gin-gonic/gin"
)

// CompleteCheckoutRequest 支付完成请求
type CompleteCheckoutRequest struct {
	PaymentSessionID string      `json:"payment_session_id" binding:"required"`
	ShippingAddress  models.JSON `json:"shipping_address"`
}

// CompleteCheckout 支付确认后创建订单（按支付会话幂等）
func (h *Handler) CompleteCheckout(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req CompleteCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	order, err := h.OrderService.CompleteOrder(c.Request.Context(), service.CompleteOrderInput{
		PaymentSessionID: req.PaymentSessionID,
		UserID:           id,
		SessionID:        cartOwner(c).SessionID,
		ShippingAddress:  req.ShippingAddress,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPaymentSessionInvalid):
			respondError(c, response.CodeBadRequest, "payment session invalid", nil)
		case errors.Is(err, service.ErrPaymentNotCompleted):
			respondError(c, response.CodeBadRequest, "payment not completed", nil)
		case errors.Is(err, service.ErrPaymentVerifyFailed):
			respondError(c, response.CodeBadRequest, "payment verification failed", err)
		case errors.Is(err, service.ErrCartEmpty):
			respondError(c, response.CodeBadRequest, "cart is empty", nil)
		case errors.Is(err, service.ErrInsufficientStock):
			respondError(c, response.CodeBadRequest, "insufficient stock", nil)
		default:
			respondError(c, response.CodeInternal, "order create failed", err)
		}
		return
	}

	response.Success(c, order)
}

// ListMyOrders 当前用户订单列表
func (h *Handler) ListMyOrders(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	orders, total, err := h.OrderService.ListOrdersByUser(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   id,
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "order list failed", err)
		return
	}

	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetMyOrder 当前用户订单详情
func (h *Handler) GetMyOrder(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}

	order, err := h.OrderService.GetOrderByUser(uint(orderID), id)
	if err != nil {
		if errors.Is(err, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "order fetch failed", err)
		return
	}

	response.Success(c, order)
}

// CancelMyOrder 取消订单（仅 processing 状态允许）
func (h *Handler) CancelMyOrder(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	orderID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || orderID == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}

	order, cancelErr := h.OrderService.CancelOrder(uint(orderID), id)
	if cancelErr != nil {
		switch {
		case errors.Is(cancelErr, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(cancelErr, service.ErrOrderCancelNotAllowed):
			respondError(c, response.CodeBadRequest, "order cannot be cancelled", nil)
		default:
			respondError(c, response.CodeInternal, "order cancel failed", cancelErr)
		}
		return
	}

	response.Success(c, order)
}
