package dao

import (
	"context"

	"github.com/aibianji/sticky-notes-app/internal/domain"
	"github.com/aibianji/sticky-notes-app/internal/model"
	"github.com/aibianji/sticky-notes-app/pkg/timex"

	"gorm.io/gorm"
)

// categoryRepository 实现 domain.CategoryRepository 接口
type categoryRepository struct {
	dao *Dao
}

// NewCategoryRepository 创建 CategoryRepository 实例
func NewCategoryRepository(dao *Dao) domain.CategoryRepository {
	return &categoryRepository{dao: dao}
}

func (r *categoryRepository) toDomain(m *model.Category) *domain.Category {
	if m == nil {
		return nil
	}
	return &domain.Category{
		ID:        m.ID,
		Name:      m.Name,
		Color:     m.Color,
		SortOrder: m.SortOrder,
		CreatedAt: m.CreatedAt.Time(),
		UpdatedAt: m.UpdatedAt.Time(),
	}
}

// GetByID 根据ID获取分类
func (r *categoryRepository) GetByID(ctx context.Context, id int64) (*domain.Category, error) {
	var m model.Category
	err := r.dao.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// GetByName 根据名称获取分类
func (r *categoryRepository) GetByName(ctx context.Context, name string) (*domain.Category, error) {
	var m model.Category
	err := r.dao.db.WithContext(ctx).Where("name = ?", name).First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Create 创建分类
func (r *categoryRepository) Create(ctx context.Context, category *domain.Category) (*domain.Category, error) {
	now := timex.Now()
	m := &model.Category{
		Name:      category.Name,
		Color:     category.Color,
		SortOrder: category.SortOrder,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// Update 更新分类名称与颜色
func (r *categoryRepository) Update(ctx context.Context, category *domain.Category) error {
	result := r.dao.db.WithContext(ctx).Model(&model.Category{}).
		Where("id = ?", category.ID).
		Updates(map[string]interface{}{
			"name":       category.Name,
			"color":      category.Color,
			"updated_at": timex.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 删除分类，并在同一事务内将引用它的便签归类置空
func (r *categoryRepository) Delete(ctx context.Context, id int64) error {
	return r.dao.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&model.Note{}).
			Where("category_id = ?", id).
			Update("category_id", nil).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", id).Delete(&model.Category{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

// List 获取全部分类，按 sort_order 升序，并列时按 id 升序
func (r *categoryRepository) List(ctx context.Context) ([]*domain.Category, error) {
	var ms []*model.Category
	err := r.dao.db.WithContext(ctx).
		Order("sort_order ASC, id ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	categories := make([]*domain.Category, 0, len(ms))
	for _, m := range ms {
		categories = append(categories, r.toDomain(m))
	}
	return categories, nil
}

// Reorder 在单个事务内按给定顺序重写整组 sort_order（0 起始、连续）
func (r *categoryRepository) Reorder(ctx context.Context, orderedIDs []int64) error {
	return r.dao.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := timex.Now()
		for position, id := range orderedIDs {
			result := tx.Model(&model.Category{}).
				Where("id = ?", id).
				Updates(map[string]interface{}{
					"sort_order": position,
					"updated_at": now,
				})
			if result.Error != nil {
				return result.Error
			}
			if result.RowsAffected == 0 {
				return gorm.ErrRecordNotFound
			}
		}
		return nil
	})
}

// MaxSortOrder 获取当前最大 sort_order，无分类时返回 -1
func (r *categoryRepository) MaxSortOrder(ctx context.Context) (int, error) {
	var count int64
	if err := r.dao.db.WithContext(ctx).Model(&model.Category{}).Count(&count).Error; err != nil {
		return -1, err
	}
	if count == 0 {
		return -1, nil
	}
	var max int
	err := r.dao.db.WithContext(ctx).Model(&model.Category{}).
		Select("MAX(sort_order)").
		Scan(&max).Error
	if err != nil {
		return -1, err
	}
	return max, nil
}
