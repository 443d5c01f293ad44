package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const defaultRequestTimeout = 10 * time.Second

// Config 支付网关配置
type Config struct {
	BaseURL   string // 网关地址，如 https://pay.example.com
	AuthToken string // API Token
}

// ValidateConfig 校验配置
func ValidateConfig(cfg *Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: config is nil", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return fmt.Errorf("%w: base_url is required", ErrConfigInvalid)
	}
	if strings.TrimSpace(cfg.AuthToken) == "" {
		return fmt.Errorf("%w: auth_token is required", ErrConfigInvalid)
	}
	return nil
}

// HTTPGateway 基于 HTTP API 的支付会话查询实现
type HTTPGateway struct {
	baseURL   string
	authToken string
	client    *http.Client
}

// NewHTTPGateway 创建支付网关客户端
func NewHTTPGateway(cfg *Config) (*HTTPGateway, error) {
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return &HTTPGateway{
		baseURL:   strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		authToken: strings.TrimSpace(cfg.AuthToken),
		client:    &http.Client{Timeout: defaultRequestTimeout},
	}, nil
}

type sessionResponse struct {
	ID             string `json:"id"`
	PaymentStatus  string `json:"payment_status"`
	Currency       string `json:"currency"`
	Subtotal       string `json:"subtotal"`
	ShippingAmount string `json:"shipping_amount"`
	DiscountAmount string `json:"discount_amount"`
	TaxAmount      string `json:"tax_amount"`
	TotalAmount    string `json:"total_amount"`
	CartSessionID  string `json:"cart_session_id"`
}

// GetSession 查询支付会话
func (g *HTTPGateway) GetSession(ctx context.Context, sessionID string) (*Session, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, fmt.Errorf("%w: empty session id", ErrConfigInvalid)
	}

	endpoint := fmt.Sprintf("%s/v1/checkout/sessions/%s", g.baseURL, url.PathEscape(sessionID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	req.Header.Set("Authorization", "Bearer "+g.authToken)
	req.Header.Set("Accept", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrSessionNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", ErrRequestFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}

	var raw sessionResponse
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrResponseInvalid, err)
	}
	if strings.TrimSpace(raw.ID) == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrResponseInvalid)
	}

	session := &Session{
		ID:            raw.ID,
		Paid:          strings.EqualFold(strings.TrimSpace(raw.PaymentStatus), "paid"),
		Currency:      strings.ToUpper(strings.TrimSpace(raw.Currency)),
		CartSessionID: strings.TrimSpace(raw.CartSessionID),
	}

	amounts := []struct {
		raw  string
		dest *decimal.Decimal
	}{
		{raw.Subtotal, &session.Subtotal},
		{raw.ShippingAmount, &session.ShippingAmount},
		{raw.DiscountAmount, &session.DiscountAmount},
		{raw.TaxAmount, &session.TaxAmount},
		{raw.TotalAmount, &session.TotalAmount},
	}
	for _, amount := range amounts {
		text := strings.TrimSpace(amount.raw)
		if text == "" {
			*amount.dest = decimal.Zero
			continue
		}
		value, err := decimal.NewFromString(text)
		if err != nil {
			return nil, fmt.Errorf("%w: bad amount %q", ErrResponseInvalid, text)
		}
		*amount.dest = value
	}

	return session, nil
}
