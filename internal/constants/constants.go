package constants

// 订单状态常量
const (
	OrderStatusProcessing = "processing"
	OrderStatusInTransit  = "in_transit"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// 支付状态常量
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
	PaymentStatusRefunded  = "refunded"
)

// 配送状态常量
const (
	DeliveryStatusPending   = "pending"
	DeliveryStatusInTransit = "in_transit"
	DeliveryStatusDelivered = "delivered"
	DeliveryStatusFailed    = "failed"
)

// 退款状态常量
const (
	RefundStatusPending   = "pending"
	RefundStatusApproved  = "approved"
	RefundStatusRejected  = "rejected"
	RefundStatusProcessed = "processed"
)

// 退款审核动作常量
const (
	RefundDecisionApprove = "approve"
	RefundDecisionReject  = "reject"
	RefundDecisionProcess = "process"
)

// 退款资格窗口（自下单日期起，含边界）
const (
	RefundWindowDays = 30
)

// 退款默认文案常量
const (
	RefundDefaultReason          = "customer request"
	RefundDefaultRejectionReason = "not eligible"
)

// 用户状态常量
const (
	UserStatusActive   = "active"
	UserStatusDisabled = "disabled"
)

// 验证码提供方常量
const (
	CaptchaProviderNone  = "none"
	CaptchaProviderImage = "image"
)

// 验证码校验场景常量
const (
	CaptchaSceneLogin = "login"
)

// 游客购物车会话头常量
const (
	GuestSessionHeader = "X-Session-Id"
)

// 队列常量
const (
	QueueDefault              = "default"
	TaskOrderConfirmEmail     = "order:confirm_email"
	TaskOrderStatusEmail      = "order:status_email"
	TaskRefundStatusEmail     = "refund:status_email"
	TaskProductDiscountEmails = "product:discount_emails"
)

// 缓存默认配置常量
const (
	RedisPrefixDefault = "sp"
)

// 币种常量
const (
	SiteCurrencyDefault = "USD"
)
