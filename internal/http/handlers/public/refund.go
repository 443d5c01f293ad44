package public

import (
	"errors"
	"strconv"

	handlershared "github.com/shopora/internal/http/handlers/shared"
	"github.com/shopora/internal/http/response"
	"github.com/shopora/internal/repository"
	"github.com/shopora/internal/service"

	"github.com/gin-gonic/gin"
)

// RequestRefundRequest 退款申请请求
type RequestRefundRequest struct {
	OrderID   uint   `json:"order_id" binding:"required"`
	ProductID uint   `json:"product_id" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required"`
	Reason    string `json:"reason"`
}

// RequestRefund 用户发起退款申请
func (h *Handler) RequestRefund(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req RequestRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	refund, err := h.RefundService.RequestRefund(service.RequestRefundInput{
		OrderID:   req.OrderID,
		ProductID: req.ProductID,
		UserID:    id,
		Quantity:  req.Quantity,
		Reason:    req.Reason,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(err, service.ErrRefundOrderNotDelivered):
			respondError(c, response.CodeBadRequest, "order is not delivered", nil)
		case errors.Is(err, service.ErrRefundWindowExpired):
			respondError(c, response.CodeBadRequest, "refund window expired", nil)
		case errors.Is(err, service.ErrRefundProductNotInOrder):
			respondError(c, response.CodeBadRequest, "product is not part of the order", nil)
		case errors.Is(err, service.ErrRefundQuantityInvalid):
			respondError(c, response.CodeBadRequest, "refund quantity invalid", nil)
		case errors.Is(err, service.ErrRefundDuplicate):
			respondError(c, response.CodeConflict, "refund already requested", nil)
		default:
			respondError(c, response.CodeInternal, "refund request failed", err)
		}
		return
	}

	response.Success(c, refund)
}

// ListMyRefunds 当前用户退款列表
func (h *Handler) ListMyRefunds(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	refunds, total, err := h.RefundService.ListRefundsByUser(repository.RefundListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   id,
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "refund list failed", err)
		return
	}

	response.SuccessWithPage(c, refunds, response.BuildPagination(page, pageSize, total))
}

// GetMyRefund 当前用户退款详情
func (h *Handler) GetMyRefund(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	refundID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || refundID == 0 {
		respondError(c, response.CodeBadRequest, "invalid refund id", nil)
		return
	}

	refund, fetchErr := h.RefundService.GetRefundByUser(uint(refundID), id)
	if fetchErr != nil {
		if errors.Is(fetchErr, service.ErrRefundNotFound) {
			respondError(c, response.CodeNotFound, "refund not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "refund fetch failed", fetchErr)
		return
	}

	response.Success(c, refund)
}
