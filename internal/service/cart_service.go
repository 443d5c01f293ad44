package service

import (
	"time"

	"github.com/shopora/internal/models"
	"github.com/shopora/internal/repository"

	"github.com/shopspring/decimal"
)

// CartItemDetail 购物车项详情（用于响应）
type CartItemDetail struct {
	ProductID  uint            `json:"product_id"`
	Quantity   int             `json:"quantity"`
	UnitPrice  models.Money    `json:"unit_price"`
	TotalPrice models.Money    `json:"total_price"`
	Product    *models.Product `json:"product"`
}

// UpsertCartItemInput 购物车更新输入
type UpsertCartItemInput struct {
	Owner     repository.CartOwner
	ProductID uint
	Quantity  int
}

// CartService 购物车服务
type CartService struct {
	cartRepo    repository.CartRepository
	productRepo repository.ProductRepository
}

// NewCartService 创建购物车服务
func NewCartService(cartRepo repository.CartRepository, productRepo repository.ProductRepository) *CartService {
	return &CartService{
		cartRepo:    cartRepo,
		productRepo: productRepo,
	}
}

// ListByOwner 获取购物车内容，下架商品顺手清掉
func (s *CartService) ListByOwner(owner repository.CartOwner) ([]CartItemDetail, error) {
	if !owner.Valid() {
		return nil, ErrCartOwnerRequired
	}
	items, err := s.cartRepo.ListByOwner(owner)
	if err != nil {
		return nil, err
	}
	details := make([]CartItemDetail, 0, len(items))
	for _, item := range items {
		product := item.Product
		if product == nil || product.ID == 0 {
			p, err := s.productRepo.GetByID(item.ProductID)
			if err != nil {
				return nil, err
			}
			product = p
		}
		if product == nil || !product.IsActive {
			_ = s.cartRepo.DeleteByOwnerAndProduct(owner, item.ProductID)
			continue
		}

		lineTotal := product.Price.Decimal.Mul(decimal.NewFromInt(int64(item.Quantity)))
		details = append(details, CartItemDetail{
			ProductID:  item.ProductID,
			Quantity:   item.Quantity,
			UnitPrice:  product.Price,
			TotalPrice: models.NewMoneyFromDecimal(lineTotal),
			Product:    product,
		})
	}
	return details, nil
}

// UpsertItem 添加或更新购物车项
func (s *CartService) UpsertItem(input UpsertCartItemInput) error {
	if !input.Owner.Valid() {
		return ErrCartOwnerRequired
	}
	if input.ProductID == 0 || input.Quantity <= 0 {
		return ErrCartItemInvalid
	}
	product, err := s.productRepo.GetByID(input.ProductID)
	if err != nil {
		return err
	}
	if product == nil || !product.IsActive {
		return ErrProductNotFound
	}
	if product.Quantity < input.Quantity {
		return ErrInsufficientStock
	}

	now := time.Now()
	item := &models.CartItem{
		UserID:    input.Owner.UserID,
		SessionID: input.Owner.SessionID,
		ProductID: input.ProductID,
		Quantity:  input.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return s.cartRepo.Upsert(item)
}

// RemoveItem 删除购物车项
func (s *CartService) RemoveItem(owner repository.CartOwner, productID uint) error {
	if !owner.Valid() {
		return ErrCartOwnerRequired
	}
	if productID == 0 {
		return ErrCartItemInvalid
	}
	return s.cartRepo.DeleteByOwnerAndProduct(owner, productID)
}

// Clear 清空购物车
func (s *CartService) Clear(owner repository.CartOwner) error {
	if !owner.Valid() {
		return ErrCartOwnerRequired
	}
	return s.cartRepo.ClearByOwner(owner)
}
