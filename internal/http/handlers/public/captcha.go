package public

import (
	"strings"

	"github.com/shopora/internal/http/response"
	"github.com/shopora/internal/service"

	"github.com/gin-gonic/gin"
)

// CaptchaPayloadRequest 验证码请求载荷。
// 未启用场景允许空载荷，由 service 层根据配置判定是否必填。
type CaptchaPayloadRequest struct {
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

func (r CaptchaPayloadRequest) toServicePayload() service.CaptchaVerifyPayload {
	return service.CaptchaVerifyPayload{
		CaptchaID:   strings.TrimSpace(r.CaptchaID),
		CaptchaCode: strings.TrimSpace(r.CaptchaCode),
	}
}

// GetImageCaptcha 获取图片验证码挑战
func (h *Handler) GetImageCaptcha(c *gin.Context) {
	if h.CaptchaService == nil {
		respondError(c, response.CodeInternal, "captcha unavailable", nil)
		return
	}

	challenge, err := h.CaptchaService.GenerateImageChallenge()
	if err != nil {
		respondError(c, response.CodeInternal, "captcha generate failed", err)
		return
	}

	response.Success(c, gin.H{
		"captcha_id":   challenge.CaptchaID,
		"image_base64": challenge.ImageBase64,
	})
}
