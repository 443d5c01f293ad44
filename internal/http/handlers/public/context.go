package public

import (
	"strings"

	"github.com/shopora/internal/constants"
	handlershared "github.com/shopora/internal/http/handlers/shared"
	"github.com/shopora/internal/repository"

	"github.com/gin-gonic/gin"
)

func getUserID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "user_id")
}

// optionalUserID 读取可选登录态，未登录返回 0。
func optionalUserID(c *gin.Context) uint {
	value, exists := c.Get("user_id")
	if !exists {
		return 0
	}
	if id, ok := value.(uint); ok {
		return id
	}
	return 0
}

// cartOwner 解析购物车归属：登录用户按 user_id，游客按 X-Session-Id 请求头。
func cartOwner(c *gin.Context) repository.CartOwner {
	owner := repository.CartOwner{UserID: optionalUserID(c)}
	if owner.UserID == 0 {
		owner.SessionID = strings.TrimSpace(c.GetHeader(constants.GuestSessionHeader))
	}
	return owner
}
