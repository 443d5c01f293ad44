package public

import (
	"errors"
	"strconv"

	handlershared "github.com/shopora/internal/http/handlers/shared"
	"github.com/shopora/internal/http/response"
	"github.com/shopora/internal/service"

	"github.com/gin-gonic/gin"
)

// GetProducts 公开商品列表
func (h *Handler) GetProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)
	categoryID := c.Query("category_id")
	search := c.Query("search")

	products, total, err := h.ProductService.ListPublic(categoryID, search, page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "product list failed", err)
		return
	}

	response.SuccessWithPage(c, products, response.BuildPagination(page, pageSize, total))
}

// GetProductBySlug 公开商品详情
func (h *Handler) GetProductBySlug(c *gin.Context) {
	slug := c.Param("slug")

	product, err := h.ProductService.GetPublicBySlug(c.Request.Context(), slug)
	if err != nil {
		respondError(c, response.CodeInternal, "product fetch failed", err)
		return
	}
	if product == nil {
		respondError(c, response.CodeNotFound, "product not found", nil)
		return
	}

	response.Success(c, product)
}

// GetCategories 公开分类列表
func (h *Handler) GetCategories(c *gin.Context) {
	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "category list failed", err)
		return
	}
	response.Success(c, categories)
}

// ListWishlist 当前用户收藏列表
func (h *Handler) ListWishlist(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	items, err := h.WishlistService.ListByUser(id)
	if err != nil {
		respondError(c, response.CodeInternal, "wishlist list failed", err)
		return
	}
	response.Success(c, items)
}

// WishlistItemRequest 收藏请求
type WishlistItemRequest struct {
	ProductID uint `json:"product_id" binding:"required"`
}

// AddWishlistItem 添加收藏
func (h *Handler) AddWishlistItem(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req WishlistItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	item, err := h.WishlistService.Add(id, req.ProductID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, response.CodeNotFound, "product not found", nil)
		default:
			respondError(c, response.CodeInternal, "wishlist add failed", err)
		}
		return
	}
	response.Success(c, item)
}

// RemoveWishlistItem 取消收藏
func (h *Handler) RemoveWishlistItem(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	productID, err := strconv.ParseUint(c.Param("product_id"), 10, 64)
	if err != nil || productID == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}

	if err := h.WishlistService.Remove(id, uint(productID)); err != nil {
		respondError(c, response.CodeInternal, "wishlist remove failed", err)
		return
	}
	response.Success(c, gin.H{"removed": true})
}
