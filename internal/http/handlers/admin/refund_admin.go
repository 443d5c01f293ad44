package admin

import (
	"errors"
	"strconv"

	handlershared "github.com/shopora/internal/http/handlers/shared"
	"github.com/shopora/internal/http/response"
	"github.com/shopora/internal/repository"
	"github.com/shopora/internal/service"

	"github.com/gin-gonic/gin"
)

// ListRefunds 管理端退款列表
func (h *Handler) ListRefunds(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)
	orderID, _ := strconv.ParseUint(c.Query("order_id"), 10, 64)

	refunds, total, err := h.RefundService.ListRefundsForAdmin(repository.RefundListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uint(userID),
		OrderID:  uint(orderID),
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "refund list failed", err)
		return
	}

	response.SuccessWithPage(c, refunds, response.BuildPagination(page, pageSize, total))
}

// GetRefund 管理端退款详情
func (h *Handler) GetRefund(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid refund id", nil)
		return
	}

	refund, fetchErr := h.RefundService.GetRefund(uint(id))
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

// DecideRefundRequest 退款审核请求
type DecideRefundRequest struct {
	Decision        string `json:"decision" binding:"required"`
	RejectionReason string `json:"rejection_reason"`
}

// DecideRefund 审核退款（approve / reject / process）
func (h *Handler) DecideRefund(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid refund id", nil)
		return
	}

	var req DecideRefundRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	refund, decideErr := h.RefundService.DecideRefund(service.DecideRefundInput{
		RefundID:        uint(id),
		Decision:        req.Decision,
		RejectionReason: req.RejectionReason,
		AdminID:         adminID,
	})
	if decideErr != nil {
		switch {
		case errors.Is(decideErr, service.ErrRefundNotFound):
			respondError(c, response.CodeNotFound, "refund not found", nil)
		case errors.Is(decideErr, service.ErrRefundDecisionInvalid):
			respondError(c, response.CodeBadRequest, "unknown refund decision", nil)
		case errors.Is(decideErr, service.ErrRefundStatusInvalid):
			respondError(c, response.CodeConflict, "refund is not in the required status", nil)
		default:
			respondError(c, response.CodeInternal, "refund decision failed", decideErr)
		}
		return
	}

	response.Success(c, refund)
}
