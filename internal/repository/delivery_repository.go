package repository

import (
	"errors"

	"github.com/shopora/internal/models"

	"gorm.io/gorm"
)

// DeliveryRepository 配送数据访问接口
type DeliveryRepository interface {
	CreateBatch(deliveries []models.Delivery) error
	GetByID(id uint) (*models.Delivery, error)
	ListByOrderID(orderID uint) ([]models.Delivery, error)
	ListAdmin(filter DeliveryListFilter) ([]models.Delivery, int64, error)
	Update(id uint, updates map[string]interface{}) error
	WithTx(tx *gorm.DB) *GormDeliveryRepository
}

// GormDeliveryRepository GORM 实现
type GormDeliveryRepository struct {
	db *gorm.DB
}

// NewDeliveryRepository 创建配送仓库
func NewDeliveryRepository(db *gorm.DB) *GormDeliveryRepository {
	return &GormDeliveryRepository{db: db}
}

// WithTx 绑定事务
func (r *GormDeliveryRepository) WithTx(tx *gorm.DB) *GormDeliveryRepository {
	if tx == nil {
		return r
	}
	return &GormDeliveryRepository{db: tx}
}

// CreateBatch 批量创建配送记录（订单创建时每个订单项一条）
func (r *GormDeliveryRepository) CreateBatch(deliveries []models.Delivery) error {
	if len(deliveries) == 0 {
		return nil
	}
	return r.db.Create(&deliveries).Error
}

// GetByID 根据 ID 获取配送记录
func (r *GormDeliveryRepository) GetByID(id uint) (*models.Delivery, error) {
	var delivery models.Delivery
	if err := r.db.First(&delivery, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &delivery, nil
}

// ListByOrderID 获取同一订单的全部配送记录
func (r *GormDeliveryRepository) ListByOrderID(orderID uint) ([]models.Delivery, error) {
	var deliveries []models.Delivery
	if orderID == 0 {
		return deliveries, nil
	}
	if err := r.db.Where("order_id = ?", orderID).Order("id asc").Find(&deliveries).Error; err != nil {
		return nil, err
	}
	return deliveries, nil
}

// ListAdmin 管理端配送列表
func (r *GormDeliveryRepository) ListAdmin(filter DeliveryListFilter) ([]models.Delivery, int64, error) {
	var deliveries []models.Delivery
	query := r.db.Model(&models.Delivery{})

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

	if err := query.Order("id desc").Find(&deliveries).Error; err != nil {
		return nil, 0, err
	}
	return deliveries, total, nil
}

// Update 更新配送记录
func (r *GormDeliveryRepository) Update(id uint, updates map[string]interface{}) error {
	if id == 0 || len(updates) == 0 {
		return nil
	}
	return r.db.Model(&models.Delivery{}).Where("id = ?", id).Updates(updates).Error
}
