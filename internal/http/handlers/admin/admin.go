package admin

import (
	"errors"
	"time"

	"github.com/shopora/internal/http/response"
	"github.com/shopora/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminLoginRequest 管理员登录请求
type AdminLoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// AdminLogin 管理员登录
func (h *Handler) AdminLogin(c *gin.Context) {
	var req AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	admin, token, expiresAt, err := h.AuthService.Login(req.Username, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "invalid credentials", nil)
		default:
			respondError(c, response.CodeInternal, "login failed", err)
		}
		return
	}

	response.Success(c, gin.H{
		"admin": gin.H{
			"id":       admin.ID,
			"username": admin.Username,
			"is_super": admin.IsSuper,
		},
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	})
}

// GetAdminProfile 当前管理员信息
func (h *Handler) GetAdminProfile(c *gin.Context) {
	id, ok := getAdminID(c)
	if !ok {
		return
	}

	admin, err := h.AdminRepo.GetByID(id)
	if err != nil {
		respondError(c, response.CodeInternal, "admin fetch failed", err)
		return
	}
	if admin == nil {
		respondError(c, response.CodeNotFound, "admin not found", nil)
		return
	}

	roles, err := h.AuthzService.GetAdminRoles(id)
	if err != nil {
		respondError(c, response.CodeInternal, "admin fetch failed", err)
		return
	}

	response.Success(c, gin.H{
		"id":            admin.ID,
		"username":      admin.Username,
		"is_super":      admin.IsSuper,
		"roles":         roles,
		"last_login_at": admin.LastLoginAt,
	})
}

// ChangeAdminPasswordRequest 管理员改密请求
type ChangeAdminPasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangeAdminPassword 管理员修改密码
func (h *Handler) ChangeAdminPassword(c *gin.Context) {
	id, ok := getAdminID(c)
	if !ok {
		return
	}

	var req ChangeAdminPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.AuthService.ChangePassword(id, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrOldPasswordIncorrect):
			respondError(c, response.CodeBadRequest, "old password incorrect", nil)
		case errors.Is(err, service.ErrPasswordTooWeak):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrAdminNotFound):
			respondError(c, response.CodeNotFound, "admin not found", nil)
		default:
			respondError(c, response.CodeInternal, "password change failed", err)
		}
		return
	}

	response.Success(c, gin.H{"updated": true})
}
