package payment

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrConfigInvalid   = errors.New("payment gateway config invalid")
	ErrRequestFailed   = errors.New("payment gateway request failed")
	ErrResponseInvalid = errors.New("payment gateway response invalid")
	ErrSessionNotFound = errors.New("payment session not found")
)

// Session 支付会话（由外部支付处理方维护，金额按会话约定为准）
type Session struct {
	ID             string          // 会话ID
	Paid           bool            // 是否已支付
	Currency       string          // 币种
	Subtotal       decimal.Decimal // 商品小计
	ShippingAmount decimal.Decimal // 运费
	DiscountAmount decimal.Decimal // 优惠金额
	TaxAmount      decimal.Decimal // 税费
	TotalAmount    decimal.Decimal // 实付金额
	CartSessionID  string          // 下单时的游客购物车会话ID（可为空）
}

// Gateway 支付会话查询端口
type Gateway interface {
	GetSession(ctx context.Context, sessionID string) (*Session, error)
}
