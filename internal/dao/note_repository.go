package dao

import (
	"context"
	"strings"

	"github.com/aibianji/sticky-notes-app/internal/domain"
	"github.com/aibianji/sticky-notes-app/internal/model"
	"github.com/aibianji/sticky-notes-app/pkg/app"
	"github.com/aibianji/sticky-notes-app/pkg/timex"

	"gorm.io/gorm"
)

// noteRepository 实现 domain.NoteRepository 接口
type noteRepository struct {
	dao *Dao
}

// NewNoteRepository 创建 NoteRepository 实例
func NewNoteRepository(dao *Dao) domain.NoteRepository {
	return &noteRepository{dao: dao}
}

// toDomain 将数据库模型转换为领域模型
func (r *noteRepository) toDomain(m *model.Note) *domain.Note {
	if m == nil {
		return nil
	}
	return &domain.Note{
		ID:             m.ID,
		Content:        m.Content,
		ScreenshotPath: m.ScreenshotPath,
		Color:          m.Color,
		CategoryID:     m.CategoryID,
		IsPinned:       m.IsPinned,
		CreatedAt:      m.CreatedAt.Time(),
		UpdatedAt:      m.UpdatedAt.Time(),
		DeletedAt:      m.DeletedAt,
	}
}

// toModel 将领域模型转换为数据库模型
func (r *noteRepository) toModel(note *domain.Note) *model.Note {
	if note == nil {
		return nil
	}
	return &model.Note{
		ID:             note.ID,
		Content:        note.Content,
		ScreenshotPath: note.ScreenshotPath,
		Color:          note.Color,
		CategoryID:     note.CategoryID,
		IsPinned:       note.IsPinned,
		CreatedAt:      timex.Time(note.CreatedAt),
		UpdatedAt:      timex.Time(note.UpdatedAt),
		DeletedAt:      note.DeletedAt,
	}
}

// GetByID 根据ID获取便签（包含回收站中的便签）
func (r *noteRepository) GetByID(ctx context.Context, id int64) (*domain.Note, error) {
	var m model.Note
	err := r.dao.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Create 创建便签
func (r *noteRepository) Create(ctx context.Context, note *domain.Note) (*domain.Note, error) {
	m := r.toModel(note)
	now := timex.Now()
	m.CreatedAt = now
	m.UpdatedAt = now
	m.DeletedAt = nil
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// UpdateContent 更新便签内容与截图引用，并刷新修改时间
func (r *noteRepository) UpdateContent(ctx context.Context, content, screenshotPath string, id int64) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"content":         content,
		"screenshot_path": screenshotPath,
		"updated_at":      timex.Now(),
	})
}

// UpdatePinned 更新置顶标记
func (r *noteRepository) UpdatePinned(ctx context.Context, pinned bool, id int64) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"is_pinned": pinned,
	})
}

// UpdateColor 更新颜色标记
func (r *noteRepository) UpdateColor(ctx context.Context, color string, id int64) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"color": color,
	})
}

// UpdateCategory 更新分类归属，nil 表示移出分类
func (r *noteRepository) UpdateCategory(ctx context.Context, categoryID *int64, id int64) error {
	return r.updateColumns(ctx, id, map[string]interface{}{
		"category_id": categoryID,
	})
}

// updateColumns 按ID更新列，目标不存在时返回 gorm.ErrRecordNotFound
func (r *noteRepository) updateColumns(ctx context.Context, id int64, values map[string]interface{}) error {
	result := r.dao.db.WithContext(ctx).Model(&model.Note{}).Where("id = ?", id).Updates(values)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Trash 在单个事务内将一批活跃便签标记进回收站
// 已在回收站或不存在的 id 被跳过，返回实际转移数量
func (r *noteRepository) Trash(ctx context.Context, deletedAt int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.dao.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Note{}).
			Where("id IN ? AND deleted_at IS NULL", ids).
			Update("deleted_at", deletedAt)
		if result.Error != nil {
			return result.Error
		}
		count = result.RowsAffected
		return nil
	})
	return count, err
}

// Restore 在单个事务内将一批回收站便签恢复为活跃，返回实际恢复数量
func (r *noteRepository) Restore(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.dao.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.Note{}).
			Where("id IN ? AND deleted_at IS NOT NULL", ids).
			Update("deleted_at", nil)
		if result.Error != nil {
			return result.Error
		}
		count = result.RowsAffected
		return nil
	})
	return count, err
}

// Purge 在单个事务内物理删除一批便签及其提醒，返回删除的便签数量
func (r *noteRepository) Purge(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	var count int64
	err := r.dao.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 清除便签随带的提醒，保证清除后不再触发
		// Reminders go with the note so nothing fires for a purged record
		if err := tx.Where("note_id IN ?", ids).Delete(&model.Reminder{}).Error; err != nil {
			return err
		}
		result := tx.Where("id IN ?", ids).Delete(&model.Note{})
		if result.Error != nil {
			return result.Error
		}
		count = result.RowsAffected
		return nil
	})
	return count, err
}

// ListTrashedBefore 获取 deleted_at 早于 cutoff 的回收站便签
func (r *noteRepository) ListTrashedBefore(ctx context.Context, cutoff int64) ([]*domain.Note, error) {
	var ms []*model.Note
	err := r.dao.db.WithContext(ctx).
		Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
		Order("deleted_at ASC, id ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	notes := make([]*domain.Note, 0, len(ms))
	for _, m := range ms {
		notes = append(notes, r.toDomain(m))
	}
	return notes, nil
}

// List 分页获取便签列表
// 活跃列表按 SortKey 排序，回收站按 deleted_at 倒序，并列时按 id 升序
func (r *noteRepository) List(ctx context.Context, q *domain.NoteListQuery) ([]*domain.Note, error) {
	db := r.buildQuery(ctx, q)

	db = db.Order(orderClause(q))
	if q.PageSize > 0 {
		db = db.Offset(app.GetPageOffset(q.Page, q.PageSize)).Limit(q.PageSize)
	}

	var ms []*model.Note
	if err := db.Find(&ms).Error; err != nil {
		return nil, err
	}
	notes := make([]*domain.Note, 0, len(ms))
	for _, m := range ms {
		notes = append(notes, r.toDomain(m))
	}
	return notes, nil
}

// ListCount 获取满足查询条件的便签数量
func (r *noteRepository) ListCount(ctx context.Context, q *domain.NoteListQuery) (int64, error) {
	var count int64
	err := r.buildQuery(ctx, q).Count(&count).Error
	return count, err
}

// ClearCategory 将引用指定分类的便签归类置空
func (r *noteRepository) ClearCategory(ctx context.Context, categoryID int64) error {
	return r.dao.db.WithContext(ctx).Model(&model.Note{}).
		Where("category_id = ?", categoryID).
		Update("category_id", nil).Error
}

// buildQuery 构建列表查询的过滤条件
func (r *noteRepository) buildQuery(ctx context.Context, q *domain.NoteListQuery) *gorm.DB {
	db := r.dao.db.WithContext(ctx).Model(&model.Note{})

	if q.IsTrash {
		db = db.Where("deleted_at IS NOT NULL")
	} else {
		db = db.Where("deleted_at IS NULL")
	}
	if q.CategoryID != nil {
		db = db.Where("category_id = ?", *q.CategoryID)
	}
	// 纯空白关键字等价于无搜索条件
	if keyword := strings.TrimSpace(q.Keyword); keyword != "" {
		// 回收站不参与搜索，由 service 层保证
		db = db.Where("content LIKE ? COLLATE NOCASE", "%"+keyword+"%")
	}
	return db
}

// orderClause 将排序键映射为 SQL 排序子句
func orderClause(q *domain.NoteListQuery) string {
	if q.IsTrash {
		return "deleted_at DESC, id ASC"
	}
	switch q.SortKey {
	case domain.NoteSortCreatedAsc:
		return "created_at ASC, id ASC"
	case domain.NoteSortCreatedDesc:
		return "created_at DESC, id ASC"
	case domain.NoteSortUpdatedAsc:
		return "updated_at ASC, id ASC"
	case domain.NoteSortUpdatedDesc:
		return "updated_at DESC, id ASC"
	default:
		return "updated_at DESC, id ASC"
	}
}
