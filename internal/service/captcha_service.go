package service

import (
	"strings"
	"sync"
	"time"

	"github.com/shopora/internal/config"
	"github.com/shopora/internal/constants"

	"github.com/mojocn/base64Captcha"
)

// CaptchaVerifyPayload 验证码校验请求载荷
type CaptchaVerifyPayload struct {
	CaptchaID   string `json:"captcha_id"`
	CaptchaCode string `json:"captcha_code"`
}

// CaptchaImageChallenge 图片验证码挑战
type CaptchaImageChallenge struct {
	CaptchaID   string `json:"captcha_id"`
	ImageBase64 string `json:"image_base64"`
}

// CaptchaService 验证码服务。
// 按场景开关决定是否需要验证码，图片模式下先调用 GenerateImageChallenge，
// 再在登录等接口里调用 Verify。
type CaptchaService struct {
	cfg config.CaptchaConfig

	mu         sync.Mutex
	imageStore base64Captcha.Store
}

// NewCaptchaService 创建验证码服务
func NewCaptchaService(cfg config.CaptchaConfig) *CaptchaService {
	return &CaptchaService{cfg: cfg}
}

// Enabled 某场景是否要求验证码
func (s *CaptchaService) Enabled(scene string) bool {
	if s == nil || strings.TrimSpace(s.cfg.Provider) != constants.CaptchaProviderImage {
		return false
	}
	scene = strings.ToLower(strings.TrimSpace(scene))
	for _, enabled := range s.cfg.Scenes {
		if strings.ToLower(strings.TrimSpace(enabled)) == scene {
			return true
		}
	}
	return false
}

// GenerateImageChallenge 生成图片验证码
func (s *CaptchaService) GenerateImageChallenge() (*CaptchaImageChallenge, error) {
	if strings.TrimSpace(s.cfg.Provider) != constants.CaptchaProviderImage {
		return nil, ErrCaptchaInvalid
	}

	store := s.ensureImageStore()
	driver := base64Captcha.NewDriverString(
		resolveCaptchaInt(s.cfg.Image.Height, 60),
		resolveCaptchaInt(s.cfg.Image.Width, 200),
		resolveCaptchaInt(s.cfg.Image.NoiseCount, 0),
		base64Captcha.OptionShowHollowLine,
		resolveCaptchaInt(s.cfg.Image.Length, 5),
		"0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ",
		nil,
		base64Captcha.DefaultEmbeddedFonts,
		nil,
	)
	captcha := base64Captcha.NewCaptcha(driver, store)
	id, b64s, _, err := captcha.Generate()
	if err != nil {
		return nil, err
	}

	return &CaptchaImageChallenge{
		CaptchaID:   strings.TrimSpace(id),
		ImageBase64: strings.TrimSpace(b64s),
	}, nil
}

// Verify 按场景校验验证码
func (s *CaptchaService) Verify(scene string, payload CaptchaVerifyPayload) error {
	if !s.Enabled(scene) {
		return nil
	}

	captchaID := strings.TrimSpace(payload.CaptchaID)
	captchaCode := strings.TrimSpace(payload.CaptchaCode)
	if captchaID == "" || captchaCode == "" {
		return ErrCaptchaInvalid
	}
	store := s.ensureImageStore()
	if !store.Verify(captchaID, captchaCode, true) {
		return ErrCaptchaInvalid
	}
	return nil
}

func (s *CaptchaService) ensureImageStore() base64Captcha.Store {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.imageStore == nil {
		maxStore := resolveCaptchaInt(s.cfg.Image.MaxStore, 10240)
		expire := time.Duration(resolveCaptchaInt(s.cfg.Image.ExpireSeconds, 300)) * time.Second
		s.imageStore = base64Captcha.NewMemoryStore(maxStore, expire)
	}
	return s.imageStore
}

func resolveCaptchaInt(value, fallback int) int {
	if value <= 0 {
		return fallback
	}
	return value
}
