package admin

import (
	"strconv"

	handlershared "github.com/shopora/internal/http/handlers/shared"
	"github.com/shopora/internal/http/response"
	"github.com/shopora/internal/repository"

	"github.com/gin-gonic/gin"
)

// ListUsers 管理端用户列表
func (h *Handler) ListUsers(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("page_size", "20"))
	page, pageSize = handlershared.NormalizePagination(page, pageSize)

	users, total, err := h.UserRepo.List(repository.UserListFilter{
		Page:     page,
		PageSize: pageSize,
		Keyword:  c.Query("keyword"),
		Status:   c.Query("status"),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "user list failed", err)
		return
	}

	response.SuccessWithPage(c, users, response.BuildPagination(page, pageSize, total))
}

// GetUser 管理端用户详情
func (h *Handler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		respondError(c, response.CodeBadRequest, "invalid user id", nil)
		return
	}

	user, fetchErr := h.UserRepo.GetByID(uint(id))
	if fetchErr != nil {
		respondError(c, response.CodeInternal, "user fetch failed", fetchErr)
		return
	}
	if user == nil {
		respondError(c, response.CodeNotFound, "user not found", nil)
		return
	}

	response.Success(c, user)
}
