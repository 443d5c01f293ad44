package service

import (
	"time"

	"github.com/shopora/internal/models"
	"github.com/shopora/internal/repository"
)

// WishlistService 收藏服务
type WishlistService struct {
	wishlistRepo repository.WishlistRepository
	productRepo  repository.ProductRepository
}

// NewWishlistService 创建收藏服务
func NewWishlistService(wishlistRepo repository.WishlistRepository, productRepo repository.ProductRepository) *WishlistService {
	return &WishlistService{
		wishlistRepo: wishlistRepo,
		productRepo:  productRepo,
	}
}

// ListByUser 获取用户收藏列表
func (s *WishlistService) ListByUser(userID uint) ([]models.WishlistItem, error) {
	return s.wishlistRepo.ListByUser(userID)
}

// Add 添加收藏（重复添加幂等）
func (s *WishlistService) Add(userID, productID uint) (*models.WishlistItem, error) {
	product, err := s.productRepo.GetByID(productID)
	if err != nil {
		return nil, err
	}
	if product == nil || !product.IsActive {
		return nil, ErrProductNotFound
	}

	now := time.Now()
	item := &models.WishlistItem{
		UserID:    userID,
		ProductID: productID,
		CreatedAt: now,
	}
	if err := s.wishlistRepo.Add(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Remove 取消收藏
func (s *WishlistService) Remove(userID, productID uint) error {
	return s.wishlistRepo.DeleteByUserAndProduct(userID, productID)
}
