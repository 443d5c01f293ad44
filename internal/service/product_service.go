package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopora/internal/cache"
	"github.com/shopora/internal/logger"
	"github.com/shopora/internal/models"
	"github.com/shopora/internal/queue"
	"github.com/shopora/internal/repository"

	"github.com/shopspring/decimal"
)

const productCacheTTL = 5 * time.Minute

// ProductService 商品业务服务
type ProductService struct {
	repo        repository.ProductRepository
	queueClient *queue.Client
}

// NewProductService 创建商品服务
func NewProductService(repo repository.ProductRepository, queueClient *queue.Client) *ProductService {
	return &ProductService{repo: repo, queueClient: queueClient}
}

// CreateProductInput 创建/更新商品输入
type CreateProductInput struct {
	CategoryID  uint
	Slug        string
	Title       string
	Description string
	Price       decimal.Decimal
	Quantity    *int
	Images      []string
	Tags        []string
	IsActive    *bool
	SortOrder   int
}

// ListPublic 获取公开商品列表
func (s *ProductService) ListPublic(categoryID, search string, page, pageSize int) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategoryID:   categoryID,
		Search:       search,
		OnlyActive:   true,
		WithCategory: true,
	}
	return s.repo.List(filter)
}

// GetPublicBySlug 获取公开商品详情（带缓存）
func (s *ProductService) GetPublicBySlug(ctx context.Context, slug string) (*models.Product, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, ErrProductNotFound
	}

	cacheKey := productCacheKey(slug)
	var cached models.Product
	if hit, err := cache.GetJSON(ctx, cacheKey, &cached); err == nil && hit {
		return &cached, nil
	}

	product, err := s.repo.GetBySlug(slug, true)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	if err := cache.SetJSON(ctx, cacheKey, product, productCacheTTL); err != nil {
		logger.Warnw("product_cache_set_failed", "slug", slug, "error", err)
	}
	return product, nil
}

// ListAdmin 获取后台商品列表
func (s *ProductService) ListAdmin(categoryID, search string, page, pageSize int) ([]models.Product, int64, error) {
	filter := repository.ProductListFilter{
		Page:         page,
		PageSize:     pageSize,
		CategoryID:   categoryID,
		Search:       search,
		OnlyActive:   false,
		WithCategory: true,
	}
	return s.repo.List(filter)
}

// GetAdminByID 获取后台商品详情
func (s *ProductService) GetAdminByID(id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	return product, nil
}

// Create 创建商品
func (s *ProductService) Create(input CreateProductInput) (*models.Product, error) {
	slug := strings.TrimSpace(input.Slug)
	title := strings.TrimSpace(input.Title)
	price := input.Price.Round(2)
	if slug == "" || title == "" || price.LessThanOrEqual(decimal.Zero) {
		return nil, ErrProductInvalid
	}

	count, err := s.repo.CountBySlug(slug, nil)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrProductSlugExists
	}

	quantity := 0
	if input.Quantity != nil {
		quantity = *input.Quantity
	}
	if quantity < 0 {
		return nil, ErrProductInvalid
	}
	isActive := true
	if input.IsActive != nil {
		isActive = *input.IsActive
	}

	product := models.Product{
		CategoryID:  input.CategoryID,
		Slug:        slug,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Price:       models.NewMoneyFromDecimal(price),
		Quantity:    quantity,
		Images:      models.StringArray(input.Images),
		Tags:        models.StringArray(input.Tags),
		IsActive:    isActive,
		SortOrder:   input.SortOrder,
	}
	if err := s.repo.Create(&product); err != nil {
		return nil, err
	}
	return &product, nil
}

// Update 更新商品
func (s *ProductService) Update(ctx context.Context, id uint, input CreateProductInput) (*models.Product, error) {
	slug := strings.TrimSpace(input.Slug)
	title := strings.TrimSpace(input.Title)
	price := input.Price.Round(2)
	if slug == "" || title == "" || price.LessThanOrEqual(decimal.Zero) {
		return nil, ErrProductInvalid
	}

	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	count, err := s.repo.CountBySlug(slug, &id)
	if err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, ErrProductSlugExists
	}

	oldSlug := product.Slug
	product.CategoryID = input.CategoryID
	product.Slug = slug
	product.Title = title
	product.Description = strings.TrimSpace(input.Description)
	product.Price = models.NewMoneyFromDecimal(price)
	product.Images = models.StringArray(input.Images)
	product.Tags = models.StringArray(input.Tags)
	product.SortOrder = input.SortOrder
	if input.Quantity != nil {
		if *input.Quantity < 0 {
			return nil, ErrProductInvalid
		}
		product.Quantity = *input.Quantity
	}
	if input.IsActive != nil {
		product.IsActive = *input.IsActive
	}
	// 手工改价视为撤销折扣
	product.CompareAtPrice = models.NewMoneyFromDecimal(decimal.Zero)
	product.DiscountPercent = 0

	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, oldSlug, product.Slug)
	return product, nil
}

// ApplyDiscount 给商品打折并通知收藏用户。
// 折扣基于原价计算，重复打折以 compare_at_price 记录的原价为基准。
func (s *ProductService) ApplyDiscount(ctx context.Context, id uint, percent int, _ uint) (*models.Product, error) {
	if percent <= 0 || percent >= 100 {
		return nil, ErrProductDiscountInvalid
	}

	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}

	basePrice := product.Price.Decimal
	if product.DiscountPercent > 0 && product.CompareAtPrice.Decimal.GreaterThan(decimal.Zero) {
		basePrice = product.CompareAtPrice.Decimal
	}
	newPrice := basePrice.
		Mul(decimal.NewFromInt(int64(100 - percent))).
		Div(decimal.NewFromInt(100)).
		Round(2)
	if newPrice.LessThanOrEqual(decimal.Zero) {
		return nil, ErrProductDiscountInvalid
	}

	oldPrice := product.Price
	product.CompareAtPrice = models.NewMoneyFromDecimal(basePrice)
	product.Price = models.NewMoneyFromDecimal(newPrice)
	product.DiscountPercent = percent
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, product.Slug, product.Slug)

	if s.queueClient != nil {
		if err := s.queueClient.EnqueueProductDiscountEmails(queue.ProductDiscountEmailsPayload{
			ProductID:       product.ID,
			OldPrice:        oldPrice.String(),
			NewPrice:        product.Price.String(),
			DiscountPercent: percent,
		}); err != nil {
			logger.Warnw("product_enqueue_discount_emails_failed",
				"product_id", product.ID,
				"discount_percent", percent,
				"error", err,
			)
		}
	}
	return product, nil
}

// RemoveDiscount 撤销折扣，价格恢复为原价
func (s *ProductService) RemoveDiscount(ctx context.Context, id uint) (*models.Product, error) {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, ErrProductNotFound
	}
	if product.DiscountPercent == 0 {
		return product, nil
	}

	if product.CompareAtPrice.Decimal.GreaterThan(decimal.Zero) {
		product.Price = product.CompareAtPrice
	}
	product.CompareAtPrice = models.NewMoneyFromDecimal(decimal.Zero)
	product.DiscountPercent = 0
	if err := s.repo.Update(product); err != nil {
		return nil, err
	}
	s.invalidateCache(ctx, product.Slug, product.Slug)
	return product, nil
}

// Delete 删除商品
func (s *ProductService) Delete(ctx context.Context, id uint) error {
	product, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if product == nil {
		return ErrProductNotFound
	}
	if err := s.repo.Delete(id); err != nil {
		return err
	}
	s.invalidateCache(ctx, product.Slug, product.Slug)
	return nil
}

func (s *ProductService) invalidateCache(ctx context.Context, slugs ...string) {
	seen := map[string]bool{}
	for _, slug := range slugs {
		slug = strings.TrimSpace(slug)
		if slug == "" || seen[slug] {
			continue
		}
		seen[slug] = true
		if err := cache.Del(ctx, productCacheKey(slug)); err != nil {
			logger.Warnw("product_cache_del_failed", "slug", slug, "error", err)
		}
	}
}

func productCacheKey(slug string) string {
	return fmt.Sprintf("product:slug:%s", slug)
}
