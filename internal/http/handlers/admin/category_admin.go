package admin

import (
	"errors"

	"github.com/shopora/internal/http/response"
	"github.com/shopora/internal/service"

	"github.com/gin-gonic/gin"
)

// CategoryRequest 分类创建/更新请求
type CategoryRequest struct {
	Slug      string `json:"slug" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Icon      string `json:"icon"`
	SortOrder int    `json:"sort_order"`
}

func (r CategoryRequest) toServiceInput() service.CreateCategoryInput {
	return service.CreateCategoryInput{
		Slug:      r.Slug,
		Name:      r.Name,
		Icon:      r.Icon,
		SortOrder: r.SortOrder,
	}
}

// ListCategories 管理端分类列表
func (h *Handler) ListCategories(c *gin.Context) {
	categories, err := h.CategoryService.List()
	if err != nil {
		respondError(c, response.CodeInternal, "category list failed", err)
		return
	}
	response.Success(c, categories)
}

// CreateCategory 创建分类
func (h *Handler) CreateCategory(c *gin.Context) {
	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	category, err := h.CategoryService.Create(req.toServiceInput())
	if err != nil {
		respondCategoryWriteError(c, err)
		return
	}
	response.Success(c, category)
}

// UpdateCategory 更新分类
func (h *Handler) UpdateCategory(c *gin.Context) {
	id := c.Param("id")

	var req CategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	category, err := h.CategoryService.Update(id, req.toServiceInput())
	if err != nil {
		respondCategoryWriteError(c, err)
		return
	}
	response.Success(c, category)
}

// DeleteCategory 删除分类（仍有商品时拒绝）
func (h *Handler) DeleteCategory(c *gin.Context) {
	id := c.Param("id")

	if err := h.CategoryService.Delete(id); err != nil {
		switch {
		case errors.Is(err, service.ErrCategoryNotFound):
			respondError(c, response.CodeNotFound, "category not found", nil)
		case errors.Is(err, service.ErrCategoryHasProducts):
			respondError(c, response.CodeConflict, "category still has products", nil)
		default:
			respondError(c, response.CodeInternal, "category delete failed", err)
		}
		return
	}
	response.Success(c, gin.H{"deleted": true})
}

func respondCategoryWriteError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrCategoryInvalid):
		respondError(c, response.CodeBadRequest, "category params invalid", nil)
	case errors.Is(err, service.ErrCategorySlugExists):
		respondError(c, response.CodeConflict, "category slug already exists", nil)
	case errors.Is(err, service.ErrCategoryNotFound):
		respondError(c, response.CodeNotFound, "category not found", nil)
	default:
		respondError(c, response.CodeInternal, "category save failed", err)
	}
}
