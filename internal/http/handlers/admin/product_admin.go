package admin

import (
	"errors"
	"strconv"
	"strings"

	handlershared "github.com/shopora/internal/http/handlers/shared"
	"github.com/shopora/internal/http/response"
	"github.com/shopora/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// ProductRequest 商品创建/更新请求
type ProductRequest struct {
	CategoryID  uint     `json:"category_id" binding:"required"`
	Slug        string   `json:"slug" binding:"required"`
	Title       string   `json:"title" binding:"required"`
	Description string   `json:"description"`
	Price       string   `json:"price" binding:"required"`
	Quantity    *int     `json:"quantity"`
	Images      []string `json:"images"`
	Tags        []string `json:"tags"`
	IsActive    *bool    `json:"is_active"`
	SortOrder   int      `json:"sort_order"`
}

func (r ProductRequest) toServiceInput() (service.CreateProductInput, error) {
	price, err := decimal.NewFromString(strings.TrimSpace(r.Price))
	if err != nil || price.IsNegative() {
		return service.CreateProductInput{}, service.ErrProductInvalid
	}
	return service.CreateProductInput{
		CategoryID:  r.CategoryID,
		Slug:        r.Slug,
		Title:       r.Title,
		Description: r.Description,
		Price:       price,
		Quantity:    r.Quantity,
		Images:      r.Images,
		Tags:        r.Tags,
		IsActive:    r.IsActive,
		SortOrder:   r.SortOrder,
	}, nil
}

// ListProducts 管理端商品列表
func (h *Handler) ListProducts(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	products, total, err := h.ProductService.ListAdmin(c.Query("category_id"), c.Query("search"), page, pageSize)
	if err != nil {
		respondError(c, response.CodeInternal, "product list failed", err)
		return
	}

	response.SuccessWithPage(c, products, response.BuildPagination(page, pageSize, total))
}

// GetProduct 管理端商品详情
func (h *Handler) GetProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}

	product, fetchErr := h.ProductService.GetAdminByID(uint(id))
	if fetchErr != nil {
		respondError(c, response.CodeInternal, "product fetch failed", fetchErr)
		return
	}
	if product == nil {
		respondError(c, response.CodeNotFound, "product not found", nil)
		return
	}

	response.Success(c, product)
}

// CreateProduct 创建商品
func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	input, err := req.toServiceInput()
	if err != nil {
		respondError(c, response.CodeBadRequest, "invalid price", nil)
		return
	}

	product, createErr := h.ProductService.Create(input)
	if createErr != nil {
		respondProductWriteError(c, createErr)
		return
	}

	response.Success(c, product)
}

// UpdateProduct 更新商品
func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}

	var req ProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	input, inputErr := req.toServiceInput()
	if inputErr != nil {
		respondError(c, response.CodeBadRequest, "invalid price", nil)
		return
	}

	product, updateErr := h.ProductService.Update(c.Request.Context(), uint(id), input)
	if updateErr != nil {
		respondProductWriteError(c, updateErr)
		return
	}

	response.Success(c, product)
}

// DeleteProduct 删除商品
func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}

	if err := h.ProductService.Delete(c.Request.Context(), uint(id)); err != nil {
		switch {
		case errors.Is(err, service.ErrProductNotFound):
			respondError(c, response.CodeNotFound, "product not found", nil)
		default:
			respondError(c, response.CodeInternal, "product delete failed", err)
		}
		return
	}

	response.Success(c, gin.H{"deleted": true})
}

// ApplyDiscountRequest 打折请求
type ApplyDiscountRequest struct {
	DiscountPercent int `json:"discount_percent" binding:"required"`
}

// ApplyProductDiscount 对商品打折并通知收藏用户
func (h *Handler) ApplyProductDiscount(c *gin.Context) {
	adminID, ok := getAdminID(c)
	if !ok {
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}

	var req ApplyDiscountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	product, applyErr := h.ProductService.ApplyDiscount(c.Request.Context(), uint(id), req.DiscountPercent, adminID)
	if applyErr != nil {
		switch {
		case errors.Is(applyErr, service.ErrProductNotFound):
			respondError(c, response.CodeNotFound, "product not found", nil)
		case errors.Is(applyErr, service.ErrProductDiscountInvalid):
			respondError(c, response.CodeBadRequest, "discount percent invalid", nil)
		default:
			respondError(c, response.CodeInternal, "discount apply failed", applyErr)
		}
		return
	}

	response.Success(c, product)
}

// RemoveProductDiscount 撤销商品折扣
func (h *Handler) RemoveProductDiscount(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid product id", nil)
		return
	}

	product, removeErr := h.ProductService.RemoveDiscount(c.Request.Context(), uint(id))
	if removeErr != nil {
		switch {
		case errors.Is(removeErr, service.ErrProductNotFound):
			respondError(c, response.CodeNotFound, "product not found", nil)
		default:
			respondError(c, response.CodeInternal, "discount remove failed", removeErr)
		}
		return
	}

	response.Success(c, product)
}

func respondProductWriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrProductInvalid):
		respondError(c, response.CodeBadRequest, "product params invalid", nil)
	case errors.Is(err, service.ErrProductSlugExists):
		respondError(c, response.CodeConflict, "product slug already exists", nil)
	case errors.Is(err, service.ErrProductNotFound):
		respondError(c, response.CodeNotFound, "product not found", nil)
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, response.CodeBadRequest, "category not found", nil)
	default:
		respondError(c, response.CodeInternal, "product save failed", err)
	}
}
