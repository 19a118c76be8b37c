// Package service 实现业务逻辑层
package service

import (
	"context"
	"errors"

	"github.com/aibianji/sticky-notes-app/internal/domain"
	"github.com/aibianji/sticky-notes-app/internal/dto"
	"github.com/aibianji/sticky-notes-app/pkg/code"
	"github.com/aibianji/sticky-notes-app/pkg/timex"
	"gorm.io/gorm"
)

// CategoryService 定义分类业务服务接口
type CategoryService interface {
	// Get 获取单个分类
	Get(ctx context.Context, id int64) (*CategoryDTO, error)

	// Create 创建分类，追加到排序末尾
	Create(ctx context.Context, params *dto.CategoryCreateRequest) (*CategoryDTO, error)

	// Update 更新分类名称与颜色
	Update(ctx context.Context, params *dto.CategoryUpdateRequest) (*CategoryDTO, error)

	// Delete 删除分类，引用它的便签归类置空
	Delete(ctx context.Context, id int64) error

	// List 获取全部分类，按手动排序返回
	List(ctx context.Context) ([]*CategoryDTO, error)

	// Reorder 整组重排分类，orderedIds 必须是现有分类 ID 的完整排列
	Reorder(ctx context.Context, params *dto.CategoryReorderRequest) ([]*CategoryDTO, error)
}

// CategoryDTO 分类数据传输对象
type CategoryDTO struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Color     string     `json:"color"`
	SortOrder int        `json:"sortOrder"`
	UpdatedAt timex.Time `json:"updatedAt"`
	CreatedAt timex.Time `json:"createdAt"`
}

// categoryService 实现 CategoryService 接口
type categoryService struct {
	categoryRepo domain.CategoryRepository
	config       *ServiceConfig
}

// NewCategoryService 创建 CategoryService 实例
func NewCategoryService(categoryRepo domain.CategoryRepository, config *ServiceConfig) CategoryService {
	return &categoryService{
		categoryRepo: categoryRepo,
		config:       config,
	}
}

// domainToDTO 将领域模型转换为 DTO
func (s *categoryService) domainToDTO(category *domain.Category) *CategoryDTO {
	if category == nil {
		return nil
	}
	return &CategoryDTO{
		ID:        category.ID,
		Name:      category.Name,
		Color:     category.Color,
		SortOrder: category.SortOrder,
		UpdatedAt: timex.Time(category.UpdatedAt),
		CreatedAt: timex.Time(category.CreatedAt),
	}
}

// Get 获取单个分类
func (s *categoryService) Get(ctx context.Context, id int64) (*CategoryDTO, error) {
	category, err := s.categoryRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorCategoryNotFound
		}
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}
	return s.domainToDTO(category), nil
}

// Create 创建分类
// 名称唯一，新分类的 sort_order 追加到当前末尾
func (s *categoryService) Create(ctx context.Context, params *dto.CategoryCreateRequest) (*CategoryDTO, error) {
	existing, err := s.categoryRepo.GetByName(ctx, params.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}
	if existing != nil {
		return nil, code.ErrorCategoryNameExist
	}

	maxOrder, err := s.categoryRepo.MaxSortOrder(ctx)
	if err != nil {
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}

	category := &domain.Category{
		Name:      params.Name,
		Color:     params.Color,
		SortOrder: maxOrder + 1,
	}
	created, err := s.categoryRepo.Create(ctx, category)
	if err != nil {
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}
	return s.domainToDTO(created), nil
}

// Update 更新分类名称与颜色
func (s *categoryService) Update(ctx context.Context, params *dto.CategoryUpdateRequest) (*CategoryDTO, error) {
	category, err := s.categoryRepo.GetByID(ctx, params.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorCategoryNotFound
		}
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}

	// 名称冲突检查排除自身
	existing, err := s.categoryRepo.GetByName(ctx, params.Name)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}
	if existing != nil && existing.ID != params.ID {
		return nil, code.ErrorCategoryNameExist
	}

	category.Name = params.Name
	category.Color = params.Color
	if err := s.categoryRepo.Update(ctx, category); err != nil {
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}
	return s.domainToDTO(category), nil
}

// Delete 删除分类
func (s *categoryService) Delete(ctx context.Context, id int64) error {
	if err := s.categoryRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorCategoryNotFound
		}
		return code.ErrorDatabase.WithDetails(err.Error())
	}
	return nil
}

// List 获取全部分类
func (s *categoryService) List(ctx context.Context) ([]*CategoryDTO, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}
	dtos := make([]*CategoryDTO, 0, len(categories))
	for _, category := range categories {
		dtos = append(dtos, s.domainToDTO(category))
	}
	return dtos, nil
}

// Reorder 整组重排分类
// orderedIds 与现有分类集合不一致时整组拒绝，不做部分重排
func (s *categoryService) Reorder(ctx context.Context, params *dto.CategoryReorderRequest) ([]*CategoryDTO, error) {
	categories, err := s.categoryRepo.List(ctx)
	if err != nil {
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}

	if len(params.OrderedIDs) != len(categories) {
		return nil, code.ErrorCategoryReorder
	}
	existing := make(map[int64]struct{}, len(categories))
	for _, category := range categories {
		existing[category.ID] = struct{}{}
	}
	seen := make(map[int64]struct{}, len(params.OrderedIDs))
	for _, id := range params.OrderedIDs {
		if _, ok := existing[id]; !ok {
			return nil, code.ErrorCategoryReorder
		}
		if _, ok := seen[id]; ok {
			return nil, code.ErrorCategoryReorder
		}
		seen[id] = struct{}{}
	}

	if err := s.categoryRepo.Reorder(ctx, params.OrderedIDs); err != nil {
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}
	return s.List(ctx)
}
