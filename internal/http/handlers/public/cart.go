package public

import (
	"errors"
	"strconv"

	"github.com/shopora/internal/http/response"
	"github.com/shopora/internal/service"

	"github.com/gin-gonic/gin"
)

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	owner := cartOwner(c)
	if !owner.Valid() {
		respondError(c, response.CodeBadRequest, "cart owner required", nil)
		return
	}

	items, err := h.CartService.ListByOwner(owner)
	if err != nil {
		respondError(c, response.CodeInternal, "cart fetch failed", err)
		return
	}
	response.Success(c, gin.H{"items": items})
}

// UpsertCartItemRequest 购物车写入请求
type UpsertCartItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
	Quantity  int  `json:"quantity" binding:"required"`
}

// UpsertCartItem 添加或覆盖购物车项
func (h *Handler) UpsertCartItem(c *gin.Context) {
	owner := cartOwner(c)
	if !owner.Valid() {
		respondError(c, response.CodeBadRequest, "cart owner required", nil)
		return
	}

	var req UpsertCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	err := h.CartService.UpsertItem(service.UpsertCartItemInput{
		Owner:     owner,
		ProductID: req.ProductID,
		Quantity:  req.Quantity,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCartItemInvalid):
			respondError(c, response.CodeBadRequest, "cart item invalid", nil)
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, response.CodeNotFound, "product not found", nil)
		case errors.Is(err, service.ErrInsufficientStock):
			respondError(c, response.CodeBadRequest, "insufficient stock", nil)
		default:
			respondError(c, response.CodeInternal, "cart update failed", err)
		}
		return
	}
	response.Success(c, gin.H{"updated": true})
}

// RemoveCartItem 移除购物车项
func (h *Handler) RemoveCartItem(c *gin.Context) {
	owner := cartOwner(c)
	if !owner.Valid() {
		respondError(c, response.CodeBadRequest, "cart owner required", nil)
		return
	}

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}

	if err := h.CartService.RemoveItem(owner, uint(productID)); err != nil {
		respondError(c, response.CodeInternal, "cart remove failed", err)
		return
	}
	response.Success(c, gin.H{"removed": true})
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	owner := cartOwner(c)
	if !owner.Valid() {
		respondError(c, response.CodeBadRequest, "cart owner required", nil)
		return
	}

	if err := h.CartService.Clear(owner); err != nil {
		respondError(c, response.CodeInternal, "cart clear failed", err)
		return
	}
	response.Success(c, gin.H{"cleared": true})
}
