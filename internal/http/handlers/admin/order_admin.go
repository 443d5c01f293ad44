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

// ListOrders 管理端订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	userID, _ := strconv.ParseUint(c.Query("user_id"), 10, 64)

	orders, total, err := h.OrderService.ListOrdersForAdmin(repository.OrderListFilter{
		Page:     page,
		PageSize: pageSize,
		UserID:   uint(userID),
		Status:   c.Query("status"),
		OrderNo:  c.Query("order_no"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "order list failed", err)
		return
	}

	response.SuccessWithPage(c, orders, response.BuildPagination(page, pageSize, total))
}

// GetOrder 管理端订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid order id", nil)
		return
	}

	order, fetchErr := h.OrderService.GetOrderForAdmin(uint(id))
	if fetchErr != nil {
		if errors.Is(fetchErr, service.ErrOrderNotFound) {
			respondError(c, response.CodeNotFound, "order not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "order fetch failed", fetchErr)
		return
	}

	response.Success(c, order)
}
