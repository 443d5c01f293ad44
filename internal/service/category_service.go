package service

import (
	"strings"

	"github.com/shopora/internal/models"
	"github.com/shopora/internal/repository"
)

// CategoryService 分类业务服务
type CategoryService struct {
	repo repository.CategoryRepository
}

// NewCategoryService 创建分类服务
func NewCategoryService(repo repository.CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// CreateCategoryInput 创建/更新分类输入
type CreateCategoryInput struct {
	Slug      string
	Name      string
	Icon      string
	SortOrder int
}

// normalize 清洗输入并校验必填项，slug 唯一性单独校验
func (input CreateCategoryInput) normalize() (CreateCategoryInput, error) {
	input.Slug = strings.TrimSpace(input.Slug)
	input.Name = strings.TrimSpace(input.Name)
	input.Icon = strings.TrimSpace(input.Icon)
	if input.Slug == "" || input.Name == "" {
		return input, ErrCategoryInvalid
	}
	return input, nil
}

func (s *CategoryService) ensureSlugFree(slug string, excludeID *string) error {
	count, err := s.repo.CountBySlug(slug, excludeID)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategorySlugExists
	}
	return nil
}

// List 获取分类列表
func (s *CategoryService) List() ([]models.Category, error) {
	return s.repo.List()
}

// Create 创建分类
func (s *CategoryService) Create(input CreateCategoryInput) (*models.Category, error) {
	input, err := input.normalize()
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(input.Slug, nil); err != nil {
		return nil, err
	}

	category := models.Category{
		Slug:      input.Slug,
		Name:      input.Name,
		Icon:      input.Icon,
		SortOrder: input.SortOrder,
	}
	if err := s.repo.Create(&category); err != nil {
		return nil, err
	}
	return &category, nil
}

// Update 更新分类
func (s *CategoryService) Update(id string, input CreateCategoryInput) (*models.Category, error) {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	if category == nil {
		return nil, ErrCategoryNotFound
	}

	input, err = input.normalize()
	if err != nil {
		return nil, err
	}
	if err := s.ensureSlugFree(input.Slug, &id); err != nil {
		return nil, err
	}

	category.Slug = input.Slug
	category.Name = input.Name
	category.Icon = input.Icon
	category.SortOrder = input.SortOrder

	if err := s.repo.Update(category); err != nil {
		return nil, err
	}
	return category, nil
}

// Delete 删除分类，仍挂有商品的分类不允许删除
func (s *CategoryService) Delete(id string) error {
	category, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	if category == nil {
		return ErrCategoryNotFound
	}

	count, err := s.repo.CountProducts(id)
	if err != nil {
		return err
	}
	if count > 0 {
		return ErrCategoryHasProducts
	}
	return s.repo.Delete(id)
}
