package service

import "errors"

// 订单相关错误
var (
	ErrOrderNotFound         = errors.New("order not found")
	ErrOrderFetchFailed      = errors.New("order fetch failed")
	ErrOrderCreateFailed     = errors.New("order create failed")
	ErrOrderUpdateFailed     = errors.New("order update failed")
	ErrOrderCancelNotAllowed = errors.New("order cannot be cancelled")
	ErrCartEmpty             = errors.New("cart is empty")
	ErrInsufficientStock     = errors.New("insufficient product stock")
	ErrPaymentSessionInvalid = errors.New("payment session invalid")
	ErrPaymentNotCompleted   = errors.New("payment not completed")
	ErrPaymentVerifyFailed   = errors.New("payment verification failed")
)

// 配送相关错误
var (
	ErrDeliveryNotFound      = errors.New("delivery not found")
	ErrDeliveryStatusInvalid = errors.New("delivery status invalid")
	ErrDeliveryUpdateFailed  = errors.New("delivery update failed")
)

// 退款相关错误
var (
	ErrRefundNotFound          = errors.New("refund not found")
	ErrRefundCreateFailed      = errors.New("refund create failed")
	ErrRefundUpdateFailed      = errors.New("refund update failed")
	ErrRefundOrderNotDelivered = errors.New("refund requires a delivered order")
	ErrRefundWindowExpired     = errors.New("refund window expired")
	ErrRefundProductNotInOrder = errors.New("product is not part of the order")
	ErrRefundQuantityInvalid   = errors.New("refund quantity invalid")
	ErrRefundDuplicate         = errors.New("an active refund already exists for this product")
	ErrRefundStatusInvalid     = errors.New("refund is not in the required status")
	ErrRefundDecisionInvalid   = errors.New("unknown refund decision")
)

// 商品与分类相关错误
var (
	ErrProductNotFound        = errors.New("product not found")
	ErrProductSlugExists      = errors.New("product slug already exists")
	ErrProductInvalid         = errors.New("product params invalid")
	ErrProductDiscountInvalid = errors.New("discount percent invalid")
	ErrCategoryNotFound       = errors.New("category not found")
	ErrCategoryInvalid        = errors.New("category params invalid")
	ErrCategorySlugExists     = errors.New("category slug already exists")
	ErrCategoryHasProducts    = errors.New("category still has products")
)

// 购物车与收藏相关错误
var (
	ErrCartOwnerRequired = errors.New("cart owner required")
	ErrCartItemInvalid   = errors.New("cart item params invalid")
)

// 账号认证相关错误
var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserNotFound         = errors.New("user not found")
	ErrUserDisabled         = errors.New("user is disabled")
	ErrEmailExists          = errors.New("email already registered")
	ErrAdminNotFound        = errors.New("admin not found")
	ErrOldPasswordIncorrect = errors.New("old password incorrect")
	ErrPasswordTooWeak      = errors.New("password too weak")
	ErrCaptchaInvalid       = errors.New("captcha invalid")
)

// 邮件服务相关错误
var (
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrInvalidEmail              = errors.New("invalid email address")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
)
