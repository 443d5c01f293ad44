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

// ListDeliveries 管理端配送列表
func (h *Handler) ListDeliveries(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	orderID, _ := strconv.ParseUint(c.Query("order_id"), 10, 64)

	deliveries, total, err := h.DeliveryService.ListDeliveriesForAdmin(repository.DeliveryListFilter{
		Page:     page,
		PageSize: pageSize,
		OrderID:  uint(orderID),
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "delivery list failed", err)
		return
	}

	response.SuccessWithPage(c, deliveries, response.BuildPagination(page, pageSize, total))
}

// GetDelivery 管理端配送详情
func (h *Handler) GetDelivery(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid delivery id", nil)
		return
	}

	delivery, fetchErr := h.DeliveryService.GetDelivery(uint(id))
	if fetchErr != nil {
		if errors.Is(fetchErr, service.ErrDeliveryNotFound) {
			respondError(c, response.CodeNotFound, "delivery not found", nil)
			return
		}
		respondError(c, response.CodeInternal, "delivery fetch failed", fetchErr)
		return
	}

	response.Success(c, delivery)
}

// UpdateDeliveryRequest 配送状态更新请求
type UpdateDeliveryRequest struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"tracking_number"`
}

// UpdateDelivery 更新配送状态并联动订单状态
func (h *Handler) UpdateDelivery(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid delivery id", nil)
		return
	}

	var req UpdateDeliveryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	delivery, updateErr := h.DeliveryService.UpdateDeliveryStatus(service.UpdateDeliveryInput{
		DeliveryID:     uint(id),
		Status:         req.Status,
		TrackingNumber: req.TrackingNumber,
		StaffID:        adminID,
	})
	if updateErr != nil {
		switch {
		case errors.Is(updateErr, service.ErrDeliveryNotFound):
			respondError(c, response.CodeNotFound, "delivery not found", nil)
		case errors.Is(updateErr, service.ErrOrderNotFound):
			respondError(c, response.CodeNotFound, "order not found", nil)
		case errors.Is(updateErr, service.ErrDeliveryStatusInvalid):
			respondError(c, response.CodeBadRequest, "delivery status invalid", nil)
		default:
			respondError(c, response.CodeInternal, "delivery update failed", updateErr)
		}
		return
	}

	response.Success(c, delivery)
}
