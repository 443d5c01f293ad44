package shared

import (
	"github.com/shopora/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetContextUint 从上下文读取 uint 值，失败时直接写出错误响应。
func GetContextUint(c *gin.Context, key string) (uint, bool) {
	value, exists := c.Get(key)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "unauthorized", nil)
		return 0, false
	}

	id, ok := toUint(value)
	if !ok {
		RespondError(c, response.CodeInternal, "invalid context value type", nil)
		return 0, false
	}
	return id, true
}

// toUint 兼容中间件可能写入的几种数值类型，负数视为非法
func toUint(value interface{}) (uint, bool) {
	switch v := value.(type) {
	case uint:
		return v, true
	case int:
		if v >= 0 {
			return uint(v), true
		}
	case float64:
		if v >= 0 {
			return uint(v), true
		}
	}
	return 0, false
}
