package repository

import (
	"errors"
	"strings"

	"github.com/shopora/internal/models"

	"gorm.io/gorm"
)

// ProductRepository 商品数据访问接口
type ProductRepository interface {
	List(filter ProductListFilter) ([]models.Product, int64, error)
	GetBySlug(slug string, onlyActive bool) (*models.Product, error)
	GetByID(id uint) (*models.Product, error)
	ListByIDs(ids []uint) ([]models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id uint) error
	CountBySlug(slug string, excludeID *uint) (int64, error)
	DecrementStock(productID uint, quantity int) (int64, error)
	CreditStock(productID uint, quantity int) (int64, error)
	Transaction(fn func(tx *gorm.DB) error) error
	WithTx(tx *gorm.DB) ProductRepository
}

// GormProductRepository GORM 实现
type GormProductRepository struct {
	db *gorm.DB
}

// NewProductRepository 创建商品仓库
func NewProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

// WithTx 绑定事务，tx 为空时退回原连接
func (r *GormProductRepository) WithTx(tx *gorm.DB) ProductRepository {
	if tx == nil {
		return r
	}
	return &GormProductRepository{db: tx}
}

// Transaction 在单个事务内执行 fn
func (r *GormProductRepository) Transaction(fn func(tx *gorm.DB) error) error {
	if fn == nil {
		return nil
	}
	return r.db.Transaction(fn)
}

func firstProduct(query *gorm.DB) (*models.Product, error) {
	var product models.Product
	if err := query.First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &product, nil
}

func applyProductFilter(query *gorm.DB, db *gorm.DB, filter ProductListFilter) *gorm.DB {
	if filter.WithCategory {
		query = query.Preload("Category")
	}
	if filter.OnlyActive {
		query = query.Where("is_active = ?", true)
	}
	if filter.CategoryID != "" {
		query = query.Where("category_id = ?", filter.CategoryID)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		condition, argCount := buildLikeCondition(db, []string{"slug", "title", "description"})
		query = query.Where(condition, repeatLikeArgs("%"+search+"%", argCount)...)
	}
	return query
}

// List 商品列表，置顶值大的排前，其余按创建时间倒序
func (r *GormProductRepository) List(filter ProductListFilter) ([]models.Product, int64, error) {
	query := applyProductFilter(r.db.Model(&models.Product{}), r.db, filter)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var products []models.Product
	err := applyPagination(query, filter.Page, filter.PageSize).
		Order("sort_order DESC, created_at DESC").
		Find(&products).Error
	if err != nil {
		return nil, 0, err
	}
	return products, total, nil
}

// GetBySlug 根据 slug 获取商品，onlyActive 时过滤下架商品
func (r *GormProductRepository) GetBySlug(slug string, onlyActive bool) (*models.Product, error) {
	query := r.db.Preload("Category").Where("slug = ?", slug)
	if onlyActive {
		query = query.Where("is_active = ?", true)
	}
	return firstProduct(query)
}

// GetByID 根据 ID 获取商品
func (r *GormProductRepository) GetByID(id uint) (*models.Product, error) {
	return firstProduct(r.db.Preload("Category").Where("id = ?", id))
}

// ListByIDs 批量获取商品
func (r *GormProductRepository) ListByIDs(ids []uint) ([]models.Product, error) {
	products := []models.Product{}
	if len(ids) == 0 {
		return products, nil
	}
	if err := r.db.Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Create 创建商品
func (r *GormProductRepository) Create(product *models.Product) error {
	return r.db.Create(product).Error
}

// Update 更新商品
func (r *GormProductRepository) Update(product *models.Product) error {
	return r.db.Save(product).Error
}

// Delete 删除商品
func (r *GormProductRepository) Delete(id uint) error {
	return r.db.Delete(&models.Product{}, id).Error
}

// CountBySlug 统计 slug 占用数，excludeID 用于更新时排除自身
func (r *GormProductRepository) CountBySlug(slug string, excludeID *uint) (int64, error) {
	query := r.db.Model(&models.Product{}).Where("slug = ?", slug)
	if excludeID != nil {
		query = query.Where("id != ?", *excludeID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// DecrementStock 扣减可售库存，条件更新避免超卖，RowsAffected 为 0 表示余量不足
func (r *GormProductRepository) DecrementStock(productID uint, quantity int) (int64, error) {
	if productID == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock decrement params")
	}
	result := r.db.Model(&models.Product{}).
		Where("id = ? AND quantity >= ?", productID, quantity).
		Update("quantity", gorm.Expr("quantity - ?", quantity))
	return result.RowsAffected, result.Error
}

// CreditStock 回补可售库存，取消订单与退款时调用
func (r *GormProductRepository) CreditStock(productID uint, quantity int) (int64, error) {
	if productID == 0 || quantity <= 0 {
		return 0, errors.New("invalid stock credit params")
	}
	result := r.db.Model(&models.Product{}).
		Where("id = ?", productID).
		Update("quantity", gorm.Expr("quantity + ?", quantity))
	return result.RowsAffected, result.Error
}
