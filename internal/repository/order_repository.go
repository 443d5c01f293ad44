package repository

import (
	"errors"
	"strings"

	"github.com/shopora/internal/models"

	"gorm.io/gorm"
)

// OrderRepository 订单数据访问接口
type OrderRepository interface {
	Create(order *models.Order, items []models.OrderItem) error
	GetByID(id uint) (*models.Order, error)
	GetByIDAndUser(id uint, userID uint) (*models.Order, error)
	GetByPaymentSessionID(sessionID string) (*models.Order, error)
	ResolveReceiverEmailByOrderID(orderID uint) (string, error)
	ListByUser(filter OrderListFilter) ([]models.Order, int64, error)
	ListAdmin(filter OrderListFilter) ([]models.Order, int64, error)
	UpdateStatus(id uint, status string, updates map[string]interface{}) error
	UpdateStatusIf(id uint, fromStatus, toStatus string, updates map[string]interface{}) (int64, error)
	WithTx(tx *gorm.DB) *GormOrderRepository
}

// GormOrderRepository GORM 实现
type GormOrderRepository struct {
	db *gorm.DB
}

// NewOrderRepository 创建订单仓库
func NewOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// WithTx 绑定事务，tx 为空时退回原连接
func (r *GormOrderRepository) WithTx(tx *gorm.DB) *GormOrderRepository {
	if tx == nil {
		return r
	}
	return &GormOrderRepository{db: tx}
}

// withDetails 订单详情始终携带订单项与发货记录
func (r *GormOrderRepository) withDetails(query *gorm.DB) *gorm.DB {
	return query.Preload("Items").Preload("Deliveries")
}

func (r *GormOrderRepository) firstOrder(query *gorm.DB) (*models.Order, error) {
	var order models.Order
	if err := r.withDetails(query).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

// Create 创建订单与订单项
func (r *GormOrderRepository) Create(order *models.Order, items []models.OrderItem) error {
	if err := r.db.Create(order).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].OrderID = order.ID
	}
	return r.db.Create(&items).Error
}

// GetByID 根据 ID 获取订单
func (r *GormOrderRepository) GetByID(id uint) (*models.Order, error) {
	return r.firstOrder(r.db.Where("id = ?", id))
}

// GetByIDAndUser 获取用户自己的订单详情
func (r *GormOrderRepository) GetByIDAndUser(id uint, userID uint) (*models.Order, error) {
	return r.firstOrder(r.db.Where("id = ? AND user_id = ?", id, userID))
}

// GetByPaymentSessionID 根据支付会话 ID 获取订单，结算幂等检查用
func (r *GormOrderRepository) GetByPaymentSessionID(sessionID string) (*models.Order, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, nil
	}
	return r.firstOrder(r.db.Where("payment_session_id = ?", sessionID))
}

// ResolveReceiverEmailByOrderID 根据订单 ID 解析状态通知的收件邮箱，查不到时返回空串
func (r *GormOrderRepository) ResolveReceiverEmailByOrderID(orderID uint) (string, error) {
	if orderID == 0 {
		return "", nil
	}

	var orderRow struct {
		UserID uint
	}
	err := r.db.Model(&models.Order{}).
		Select("user_id").
		Where("id = ?", orderID).
		Take(&orderRow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && orderRow.UserID == 0) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	var userRow struct {
		Email string
	}
	err = r.db.Model(&models.User{}).
		Select("email").
		Where("id = ?", orderRow.UserID).
		Take(&userRow).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(userRow.Email), nil
}

func applyOrderFilter(query *gorm.DB, filter OrderListFilter) *gorm.DB {
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}
	return query
}

func (r *GormOrderRepository) listOrders(query *gorm.DB, page, pageSize int) ([]models.Order, int64, error) {
	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var orders []models.Order
	query = applyPagination(query, page, pageSize)
	if err := r.withDetails(query).Order("id desc").Find(&orders).Error; err != nil {
		return nil, 0, err
	}
	return orders, total, nil
}

// ListByUser 获取用户订单列表，订单号支持模糊匹配
func (r *GormOrderRepository) ListByUser(filter OrderListFilter) ([]models.Order, int64, error) {
	query := applyOrderFilter(r.db.Model(&models.Order{}).Where("user_id = ?", filter.UserID), filter)
	if filter.OrderNo != "" {
		query = query.Where("order_no LIKE ?", "%"+filter.OrderNo+"%")
	}
	return r.listOrders(query, filter.Page, filter.PageSize)
}

// ListAdmin 管理端订单列表，订单号精确匹配
func (r *GormOrderRepository) ListAdmin(filter OrderListFilter) ([]models.Order, int64, error) {
	query := applyOrderFilter(r.db.Model(&models.Order{}), filter)
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OrderNo != "" {
		query = query.Where("order_no = ?", filter.OrderNo)
	}
	return r.listOrders(query, filter.Page, filter.PageSize)
}

// UpdateStatus 更新订单状态，updates 携带随状态一起落库的附加字段
func (r *GormOrderRepository) UpdateStatus(id uint, status string, updates map[string]interface{}) error {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = status
	return r.db.Model(&models.Order{}).Where("id = ?", id).Updates(updates).Error
}

// UpdateStatusIf 条件状态迁移，仅当前状态为 fromStatus 时写入，
// RowsAffected 为 0 表示状态已被并发写走
func (r *GormOrderRepository) UpdateStatusIf(id uint, fromStatus, toStatus string, updates map[string]interface{}) (int64, error) {
	if updates == nil {
		updates = map[string]interface{}{}
	}
	updates["status"] = toStatus
	result := r.db.Model(&models.Order{}).
		Where("id = ? AND status = ?", id, fromStatus).
		Updates(updates)
	return result.RowsAffected, result.Error
}
