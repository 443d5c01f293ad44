package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/shopora/internal/models"
)

const authStateCacheTTL = 10 * time.Minute

// UserAuthState 用户鉴权快照，缓存在 Redis 中供中间件快速校验
// token_invalid_before 为 Unix 秒时间戳，0 表示未设置
type UserAuthState struct {
	UserID             uint   `json:"user_id"`
	Status             string `json:"status"`
	TokenVersion       uint64 `json:"token_version"`
	TokenInvalidBefore int64  `json:"token_invalid_before"`
	UpdatedAt          int64  `json:"updated_at"`
}

// AdminAuthState 管理员鉴权快照
type AdminAuthState struct {
	AdminID            uint   `json:"admin_id"`
	Username           string `json:"username"`
	TokenVersion       uint64 `json:"token_version"`
	TokenInvalidBefore int64  `json:"token_invalid_before"`
	IsSuper            bool   `json:"is_super"`
	UpdatedAt          int64  `json:"updated_at"`
}

func authStateKey(kind string, id uint) string {
	return fmt.Sprintf("auth:%s:%d", kind, id)
}

func unixOrZero(t *time.Time) int64 {
	if t == nil {
		return 0
	}
	return t.Unix()
}

// BuildUserAuthState 从用户模型构建鉴权快照
func BuildUserAuthState(user *models.User) *UserAuthState {
	if user == nil {
		return nil
	}
	return &UserAuthState{
		UserID:             user.ID,
		Status:             user.Status,
		TokenVersion:       user.TokenVersion,
		TokenInvalidBefore: unixOrZero(user.TokenInvalidBefore),
		UpdatedAt:          time.Now().Unix(),
	}
}

// BuildAdminAuthState 从管理员模型构建鉴权快照
func BuildAdminAuthState(admin *models.Admin) *AdminAuthState {
	if admin == nil {
		return nil
	}
	return &AdminAuthState{
		AdminID:            admin.ID,
		Username:           admin.Username,
		TokenVersion:       admin.TokenVersion,
		TokenInvalidBefore: unixOrZero(admin.TokenInvalidBefore),
		IsSuper:            admin.IsSuper,
		UpdatedAt:          time.Now().Unix(),
	}
}

// GetUserAuthState 读取用户鉴权快照，未命中时返回 hit=false
func GetUserAuthState(ctx context.Context, userID uint) (*UserAuthState, bool, error) {
	if userID == 0 {
		return nil, false, nil
	}
	var state UserAuthState
	hit, err := GetJSON(ctx, authStateKey("user", userID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetUserAuthState 写入用户鉴权快照
func SetUserAuthState(ctx context.Context, state *UserAuthState) error {
	if state == nil || state.UserID == 0 {
		return nil
	}
	return SetJSON(ctx, authStateKey("user", state.UserID), state, authStateCacheTTL)
}

// DelUserAuthState 删除用户鉴权快照，改密或封禁后调用
func DelUserAuthState(ctx context.Context, userID uint) error {
	if userID == 0 {
		return nil
	}
	return Del(ctx, authStateKey("user", userID))
}

// GetAdminAuthState 读取管理员鉴权快照
func GetAdminAuthState(ctx context.Context, adminID uint) (*AdminAuthState, bool, error) {
	if adminID == 0 {
		return nil, false, nil
	}
	var state AdminAuthState
	hit, err := GetJSON(ctx, authStateKey("admin", adminID), &state)
	if err != nil || !hit {
		return nil, hit, err
	}
	return &state, true, nil
}

// SetAdminAuthState 写入管理员鉴权快照
func SetAdminAuthState(ctx context.Context, state *AdminAuthState) error {
	if state == nil || state.AdminID == 0 {
		return nil
	}
	return SetJSON(ctx, authStateKey("admin", state.AdminID), state, authStateCacheTTL)
}

// DelAdminAuthState 删除管理员鉴权快照
func DelAdminAuthState(ctx context.Context, adminID uint) error {
	if adminID == 0 {
		return nil
	}
	return Del(ctx, authStateKey("admin", adminID))
}
