package public

import "github.com/shopora/internal/provider"

// Handler 商城前台 API 处理器，覆盖游客与登录用户两类入口
type Handler struct {
	*provider.Container
}

// New 创建前台处理器
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
