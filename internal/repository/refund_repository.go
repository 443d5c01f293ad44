package repository

import (
	"errors"

	"github.com/shopora/internal/constants"
	"github.com/shopora/internal/models"

	"gorm.io/gorm"
)

// RefundRepository 退款数据访问接口
type RefundRepository interface {
	Create(refund *models.Refund) error
	GetByID(id uint) (*models.Refund, error)
	CountActiveByOrderAndProduct(orderID, productID uint) (int64, error)
	ListByUser(filter RefundListFilter) ([]models.Refund, int64, error)
	ListAdmin(filter RefundListFilter) ([]models.Refund, int64, error)
	Update(id uint, updates map[string]interface{}) error
	MarkStockAddedBack(id uint) (int64, error)
	MarkEmailNotificationSent(id uint) (int64, error)
	WithTx(tx *gorm.DB) *GormRefundRepository
}

// GormRefundRepository GORM 实现
type GormRefundRepository struct {
	db *gorm.DB
}

// NewRefundRepository 创建退款仓库
func NewRefundRepository(db *gorm.DB) *GormRefundRepository {
	return &GormRefundRepository{db: db}
}

// WithTx 绑定事务
func (r *GormRefundRepository) WithTx(tx *gorm.DB) *GormRefundRepository {
	if tx == nil {
		return r
	}
	return &GormRefundRepository{db: tx}
}

// Create 创建退款申请
func (r *GormRefundRepository) Create(refund *models.Refund) error {
	return r.db.Create(refund).Error
}

// GetByID 根据 ID 获取退款申请
func (r *GormRefundRepository) GetByID(id uint) (*models.Refund, error) {
	var refund models.Refund
	if err := r.db.First(&refund, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &refund, nil
}

// CountActiveByOrderAndProduct 统计同一（订单，商品）的在途退款数（pending/approved）
func (r *GormRefundRepository) CountActiveByOrderAndProduct(orderID, productID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&models.Refund{}).
		Where("order_id = ? AND product_id = ? AND status IN ?",
			orderID, productID,
			[]string{constants.RefundStatusPending, constants.RefundStatusApproved}).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListByUser 用户退款列表
func (r *GormRefundRepository) ListByUser(filter RefundListFilter) ([]models.Refund, int64, error) {
	query := r.db.Model(&models.Refund{}).Where("user_id = ?", filter.UserID)
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var refunds []models.Refund
	if err := query.Order("id desc").Find(&refunds).Error; err != nil {
		return nil, 0, err
	}
	return refunds, total, nil
}

// ListAdmin 管理端退款列表
func (r *GormRefundRepository) ListAdmin(filter RefundListFilter) ([]models.Refund, int64, error) {
	query := r.db.Model(&models.Refund{})
	if filter.UserID != 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.OrderID != 0 {
		query = query.Where("order_id = ?", filter.OrderID)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.CreatedFrom != nil {
		query = query.Where("created_at >= ?", *filter.CreatedFrom)
	}
	if filter.CreatedTo != nil {
		query = query.Where("created_at <= ?", *filter.CreatedTo)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	query = applyPagination(query, filter.Page, filter.PageSize)

	var refunds []models.Refund
	if err := query.Order("id desc").Find(&refunds).Error; err != nil {
		return nil, 0, err
	}
	return refunds, total, nil
}

// Update 更新退款申请
func (r *GormRefundRepository) Update(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Refund{}).Where("id = ?", id).Updates(updates).Error
}

// MarkStockAddedBack 置位库存回补标记（条件更新，RowsAffected 为 0 表示已置位）
func (r *GormRefundRepository) MarkStockAddedBack(id uint) (int64, error) {
	if id == 0 {
		return 0, errors.New("invalid refund id")
	}
	result := r.db.Model(&models.Refund{}).
		Where("id = ? AND stock_added_back = ?", id, false).
		Update("stock_added_back", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}

// MarkEmailNotificationSent 置位邮件通知标记（条件更新，RowsAffected 为 0 表示已置位）
func (r *GormRefundRepository) MarkEmailNotificationSent(id uint) (int64, error) {
	if id == 0 {
		return 0, errors.New("invalid refund id")
	}
	result := r.db.Model(&models.Refund{}).
		Where("id = ? AND email_notification_sent = ?", id, false).
		Update("email_notification_sent", true)
	if result.Error != nil {
		return 0, result.Error
	}
	return result.RowsAffected, nil
}
