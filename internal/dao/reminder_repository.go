package dao

import (
	"context"

	"github.com/aibianji/sticky-notes-app/internal/domain"
	"github.com/aibianji/sticky-notes-app/internal/model"
	"github.com/aibianji/sticky-notes-app/pkg/timex"

	"gorm.io/gorm"
)

// reminderRepository 实现 domain.ReminderRepository 接口
type reminderRepository struct {
	dao *Dao
}

// NewReminderRepository 创建 ReminderRepository 实例
func NewReminderRepository(dao *Dao) domain.ReminderRepository {
	return &reminderRepository{dao: dao}
}

func (r *reminderRepository) toDomain(m *model.Reminder) *domain.Reminder {
	if m == nil {
		return nil
	}
	return &domain.Reminder{
		ID:          m.ID,
		NoteID:      m.NoteID,
		RemindAt:    m.RemindAt,
		Title:       m.Title,
		Description: m.Description,
		IsTriggered: m.IsTriggered,
		CreatedAt:   m.CreatedAt.Time(),
		UpdatedAt:   m.UpdatedAt.Time(),
	}
}

// reminderNoteRow 联查扫描结构
type reminderNoteRow struct {
	model.Reminder
	NoteContent string
	NoteColor   string
}

func (r *reminderRepository) toDomainWithNote(row *reminderNoteRow) *domain.ReminderWithNote {
	return &domain.ReminderWithNote{
		Reminder: domain.Reminder{
			ID:          row.ID,
			NoteID:      row.NoteID,
			RemindAt:    row.RemindAt,
			Title:       row.Title,
			Description: row.Description,
			IsTriggered: row.IsTriggered,
			CreatedAt:   row.CreatedAt.Time(),
			UpdatedAt:   row.UpdatedAt.Time(),
		},
		NoteContent: row.NoteContent,
		NoteColor:   row.NoteColor,
	}
}

// GetByID 根据ID获取提醒
func (r *reminderRepository) GetByID(ctx context.Context, id int64) (*domain.Reminder, error) {
	var m model.Reminder
	err := r.dao.db.WithContext(ctx).Where("id = ?", id).First(&m).Error
	if err != nil {
		return nil, err
	}
	return r.toDomain(&m), nil
}

// Create 创建提醒
func (r *reminderRepository) Create(ctx context.Context, reminder *domain.Reminder) (*domain.Reminder, error) {
	now := timex.Now()
	m := &model.Reminder{
		NoteID:      reminder.NoteID,
		RemindAt:    reminder.RemindAt,
		Title:       reminder.Title,
		Description: reminder.Description,
		IsTriggered: false,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := r.dao.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return r.toDomain(m), nil
}

// Update 更新提醒时间与文案
// 已触发标记不允许通过 Update 回退
func (r *reminderRepository) Update(ctx context.Context, reminder *domain.Reminder) error {
	result := r.dao.db.WithContext(ctx).Model(&model.Reminder{}).
		Where("id = ?", reminder.ID).
		Updates(map[string]interface{}{
			"remind_at":    reminder.RemindAt,
			"title":        reminder.Title,
			"description":  reminder.Description,
			"is_triggered": reminder.IsTriggered,
			"updated_at":   timex.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete 删除提醒
func (r *reminderRepository) Delete(ctx context.Context, id int64) error {
	result := r.dao.db.WithContext(ctx).Where("id = ?", id).Delete(&model.Reminder{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListByNoteID 获取某便签的全部提醒，按 remind_at 升序
func (r *reminderRepository) ListByNoteID(ctx context.Context, noteID int64) ([]*domain.Reminder, error) {
	var ms []*model.Reminder
	err := r.dao.db.WithContext(ctx).
		Where("note_id = ?", noteID).
		Order("remind_at ASC, id ASC").
		Find(&ms).Error
	if err != nil {
		return nil, err
	}
	reminders := make([]*domain.Reminder, 0, len(ms))
	for _, m := range ms {
		reminders = append(reminders, r.toDomain(m))
	}
	return reminders, nil
}

// ListUpcoming 获取未触发且 remind_at >= from 的提醒，to > 0 时附加时间上界
// 联查父便签且仅包含活跃便签，按 remind_at 升序
func (r *reminderRepository) ListUpcoming(ctx context.Context, from, to int64, limit int) ([]*domain.ReminderWithNote, error) {
	db := r.dao.db.WithContext(ctx).Model(&model.Reminder{}).
		Select("reminder.*, note.content AS note_content, note.color AS note_color").
		Joins("JOIN note ON note.id = reminder.note_id AND note.deleted_at IS NULL").
		Where("reminder.is_triggered = ? AND reminder.remind_at >= ?", false, from).
		Order("reminder.remind_at ASC, reminder.id ASC")
	if to > 0 {
		db = db.Where("reminder.remind_at <= ?", to)
	}
	if limit > 0 {
		db = db.Limit(limit)
	}

	var rows []*reminderNoteRow
	if err := db.Scan(&rows).Error; err != nil {
		return nil, err
	}
	result := make([]*domain.ReminderWithNote, 0, len(rows))
	for _, row := range rows {
		result = append(result, r.toDomainWithNote(row))
	}
	return result, nil
}

// ListDue 获取 remind_at <= now 且未触发、父便签活跃的提醒
// 回收站中的便签不触发提醒
func (r *reminderRepository) ListDue(ctx context.Context, now int64) ([]*domain.ReminderWithNote, error) {
	var rows []*reminderNoteRow
	err := r.dao.db.WithContext(ctx).Model(&model.Reminder{}).
		Select("reminder.*, note.content AS note_content, note.color AS note_color").
		Joins("JOIN note ON note.id = reminder.note_id AND note.deleted_at IS NULL").
		Where("reminder.is_triggered = ? AND reminder.remind_at <= ?", false, now).
		Order("reminder.remind_at ASC, reminder.id ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	result := make([]*domain.ReminderWithNote, 0, len(rows))
	for _, row := range rows {
		result = append(result, r.toDomainWithNote(row))
	}
	return result, nil
}

// MarkTriggered 单向标记提醒已触发，对已触发的提醒幂等
func (r *reminderRepository) MarkTriggered(ctx context.Context, id int64) error {
	result := r.dao.db.WithContext(ctx).Model(&model.Reminder{}).
		Where("id = ? AND is_triggered = ?", id, false).
		Updates(map[string]interface{}{
			"is_triggered": true,
			"updated_at":   timex.Now(),
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		// 已触发为幂等成功，不存在才算错误
		var count int64
		if err := r.dao.db.WithContext(ctx).Model(&model.Reminder{}).
			Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return gorm.ErrRecordNotFound
		}
	}
	return nil
}
