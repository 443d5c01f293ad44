package admin

import (
	handlershared "github.com/shopora/internal/http/handlers/shared"

	"github.com/gin-gonic/gin"
)

func getAdminID(c *gin.Context) (uint, bool) {
	return handlershared.GetContextUint(c, "admin_id")
}
