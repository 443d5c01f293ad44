package public

import (
	"errors"
	"time"

	"github.com/shopora/internal/constants"
	"github.com/shopora/internal/http/response"
	"github.com/shopora/internal/models"
	"github.com/shopora/internal/service"

	"github.com/gin-gonic/gin"
)

// UserRegisterRequest 注册请求
type UserRegisterRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// UserRegister 用户注册
func (h *Handler) UserRegister(c *gin.Context) {
	var req UserRegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	user, token, expiresAt, err := h.UserAuthService.Register(req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "invalid email", nil)
		case errors.Is(err, service.ErrEmailExists):
			respondError(c, response.CodeBadRequest, "email already registered", nil)
		case errors.Is(err, service.ErrPasswordTooWeak):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		default:
			respondError(c, response.CodeInternal, "register failed", err)
		}
		return
	}

	response.Success(c, userSessionResponse(user, token, expiresAt))
}

// UserLoginRequest 登录请求
type UserLoginRequest struct {
	Email          string                `json:"email" binding:"required"`
	Password       string                `json:"password" binding:"required"`
	RememberMe     bool                  `json:"remember_me"`
	CaptchaPayload CaptchaPayloadRequest `json:"captcha_payload"`
}

// UserLogin 用户登录
func (h *Handler) UserLogin(c *gin.Context) {
	var req UserLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if h.CaptchaService != nil {
		if captchaErr := h.CaptchaService.Verify(constants.CaptchaSceneLogin, req.CaptchaPayload.toServicePayload()); captchaErr != nil {
			respondError(c, response.CodeBadRequest, "captcha invalid", nil)
			return
		}
	}

	user, token, expiresAt, err := h.UserAuthService.LoginWithRememberMe(req.Email, req.Password, req.RememberMe)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidEmail):
			respondError(c, response.CodeBadRequest, "invalid email", nil)
		case errors.Is(err, service.ErrInvalidCredentials):
			respondError(c, response.CodeUnauthorized, "invalid credentials", nil)
		case errors.Is(err, service.ErrUserDisabled):
			respondError(c, response.CodeUnauthorized, "user disabled", nil)
		default:
			respondError(c, response.CodeInternal, "login failed", err)
		}
		return
	}

	response.Success(c, userSessionResponse(user, token, expiresAt))
}

// GetCurrentUser 获取当前用户信息
func (h *Handler) GetCurrentUser(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	user, err := h.UserAuthService.GetUserByID(id)
	if err != nil {
		respondError(c, response.CodeInternal, "user fetch failed", err)
		return
	}
	if user == nil {
		respondError(c, response.CodeNotFound, "user not found", nil)
		return
	}

	response.Success(c, userProfileResponse(user))
}

// UserProfileUpdateRequest 更新资料请求
type UserProfileUpdateRequest struct {
	DisplayName string `json:"display_name" binding:"required"`
}

// UpdateUserProfile 更新用户资料
func (h *Handler) UpdateUserProfile(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req UserProfileUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	user, err := h.UserAuthService.UpdateProfile(id, req.DisplayName)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, response.CodeNotFound, "user not found", nil)
		default:
			respondError(c, response.CodeInternal, "user update failed", err)
		}
		return
	}

	response.Success(c, userProfileResponse(user))
}

// ChangeUserPasswordRequest 用户改密请求
type ChangeUserPasswordRequest struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required"`
}

// ChangeUserPassword 用户登录态修改密码
func (h *Handler) ChangeUserPassword(c *gin.Context) {
	id, ok := getUserID(c)
	if !ok {
		return
	}

	var req ChangeUserPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	if err := h.UserAuthService.ChangePassword(id, req.OldPassword, req.NewPassword); err != nil {
		switch {
		case errors.Is(err, service.ErrOldPasswordIncorrect):
			respondError(c, response.CodeBadRequest, "old password incorrect", nil)
		case errors.Is(err, service.ErrPasswordTooWeak):
			respondError(c, response.CodeBadRequest, err.Error(), nil)
		case errors.Is(err, service.ErrUserNotFound):
			respondError(c, response.CodeNotFound, "user not found", nil)
		default:
			respondError(c, response.CodeInternal, "password change failed", err)
		}
		return
	}

	response.Success(c, gin.H{"updated": true})
}

func userSessionResponse(user *models.User, token string, expiresAt time.Time) gin.H {
	return gin.H{
		"user":       userProfileResponse(user),
		"token":      token,
		"expires_at": expiresAt.Format(time.RFC3339),
	}
}

func userProfileResponse(user *models.User) gin.H {
	return gin.H{
		"id":            user.ID,
		"email":         user.Email,
		"display_name":  user.DisplayName,
		"last_login_at": user.LastLoginAt,
	}
}
