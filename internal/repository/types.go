package repository

import "time"

// ProductListFilter 查询商品列表的过滤条件
type ProductListFilter struct {
	Page         int
	PageSize     int
	CategoryID   string
	Search       string
	OnlyActive   bool
	WithCategory bool
}

// OrderListFilter 查询订单列表的过滤条件
type OrderListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	Status      string
	OrderNo     string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// DeliveryListFilter 查询配送列表的过滤条件
type DeliveryListFilter struct {
	Page     int
	PageSize int
	OrderID  uint
	Status   string
}

// RefundListFilter 查询退款列表的过滤条件
type RefundListFilter struct {
	Page        int
	PageSize    int
	UserID      uint
	OrderID     uint
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}

// UserListFilter 查询用户列表的过滤条件
type UserListFilter struct {
	Page        int
	PageSize    int
	Keyword     string
	Status      string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
}
