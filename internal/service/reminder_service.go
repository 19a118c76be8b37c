// Package service 实现业务逻辑层
package service

import (
	"context"
	"errors"
	"time"

	"github.com/aibianji/sticky-notes-app/internal/domain"
	"github.com/aibianji/sticky-notes-app/internal/dto"
	"github.com/aibianji/sticky-notes-app/pkg/code"
	"github.com/aibianji/sticky-notes-app/pkg/timex"
	"gorm.io/gorm"
)

// ReminderService 定义提醒业务服务接口
type ReminderService interface {
	// Get 获取单条提醒
	Get(ctx context.Context, id int64) (*ReminderDTO, error)

	// Create 为便签创建提醒
	Create(ctx context.Context, params *dto.ReminderCreateRequest) (*ReminderDTO, error)

	// Update 更新提醒时间与文案，已触发的提醒更新后重新生效
	Update(ctx context.Context, params *dto.ReminderUpdateRequest) (*ReminderDTO, error)

	// Delete 删除提醒
	Delete(ctx context.Context, id int64) error

	// ListByNote 获取某便签的全部提醒
	ListByNote(ctx context.Context, noteID int64) ([]*ReminderDTO, error)

	// ListUpcoming 获取即将到期的提醒（remind_at >= now 且未触发），limit <= 0 表示不限制
	ListUpcoming(ctx context.Context, limit int) ([]*ReminderWithNoteDTO, error)

	// ListDue 获取已到期且未触发的提醒（父便签处于活跃态）
	ListDue(ctx context.Context, now time.Time) ([]*ReminderWithNoteDTO, error)

	// MarkTriggered 单向标记提醒已触发，重复标记视为成功
	MarkTriggered(ctx context.Context, id int64) error
}

// ReminderDTO 提醒数据传输对象
type ReminderDTO struct {
	ID          int64      `json:"id"`
	NoteID      int64      `json:"noteId"`
	RemindAt    int64      `json:"remindAt"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	IsTriggered bool       `json:"isTriggered"`
	UpdatedAt   timex.Time `json:"updatedAt"`
	CreatedAt   timex.Time `json:"createdAt"`
}

// ReminderWithNoteDTO 提醒与其父便签摘要的联查 DTO
type ReminderWithNoteDTO struct {
	ReminderDTO
	NoteContent string `json:"noteContent"`
	NoteColor   string `json:"noteColor"`
}

// reminderService 实现 ReminderService 接口
type reminderService struct {
	reminderRepo domain.ReminderRepository
	noteRepo     domain.NoteRepository
	config       *ServiceConfig
}

// NewReminderService 创建 ReminderService 实例
func NewReminderService(reminderRepo domain.ReminderRepository, noteRepo domain.NoteRepository, config *ServiceConfig) ReminderService {
	return &reminderService{
		reminderRepo: reminderRepo,
		noteRepo:     noteRepo,
		config:       config,
	}
}

// domainToDTO 将领域模型转换为 DTO
func (s *reminderService) domainToDTO(reminder *domain.Reminder) *ReminderDTO {
	if reminder == nil {
		return nil
	}
	return &ReminderDTO{
		ID:          reminder.ID,
		NoteID:      reminder.NoteID,
		RemindAt:    reminder.RemindAt,
		Title:       reminder.Title,
		Description: reminder.Description,
		IsTriggered: reminder.IsTriggered,
		UpdatedAt:   timex.Time(reminder.UpdatedAt),
		CreatedAt:   timex.Time(reminder.CreatedAt),
	}
}

// domainToDTOWithNote 将联查结果转换为 DTO
func (s *reminderService) domainToDTOWithNote(row *domain.ReminderWithNote) *ReminderWithNoteDTO {
	if row == nil {
		return nil
	}
	return &ReminderWithNoteDTO{
		ReminderDTO: *s.domainToDTO(&row.Reminder),
		NoteContent: row.NoteContent,
		NoteColor:   row.NoteColor,
	}
}

// Get 获取单条提醒
func (s *reminderService) Get(ctx context.Context, id int64) (*ReminderDTO, error) {
	reminder, err := s.reminderRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorReminderNotFound
		}
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}
	return s.domainToDTO(reminder), nil
}

// Create 为便签创建提醒
// 父便签必须存在；remindAt 必须晚于当前时间
func (s *reminderService) Create(ctx context.Context, params *dto.ReminderCreateRequest) (*ReminderDTO, error) {
	if params.RemindAt <= time.Now().Unix() {
		return nil, code.ErrorReminderPast
	}

	if _, err := s.noteRepo.GetByID(ctx, params.NoteID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}

	reminder := &domain.Reminder{
		NoteID:      params.NoteID,
		RemindAt:    params.RemindAt,
		Title:       params.Title,
		Description: params.Description,
	}
	created, err := s.reminderRepo.Create(ctx, reminder)
	if err != nil {
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}
	return s.domainToDTO(created), nil
}

// Update 更新提醒时间与文案
// 时间改到未来时清除已触发标记，使提醒重新生效
func (s *reminderService) Update(ctx context.Context, params *dto.ReminderUpdateRequest) (*ReminderDTO, error) {
	reminder, err := s.reminderRepo.GetByID(ctx, params.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorReminderNotFound
		}
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}

	if params.RemindAt <= time.Now().Unix() {
		return nil, code.ErrorReminderPast
	}

	reminder.RemindAt = params.RemindAt
	reminder.Title = params.Title
	reminder.Description = params.Description
	reminder.IsTriggered = false
	if err := s.reminderRepo.Update(ctx, reminder); err != nil {
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}
	return s.domainToDTO(reminder), nil
}

// Delete 删除提醒
func (s *reminderService) Delete(ctx context.Context, id int64) error {
	if err := s.reminderRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorReminderNotFound
		}
		return code.ErrorDatabase.WithDetails(err.Error())
	}
	return nil
}

// ListByNote 获取某便签的全部提醒
func (s *reminderService) ListByNote(ctx context.Context, noteID int64) ([]*ReminderDTO, error) {
	reminders, err := s.reminderRepo.ListByNoteID(ctx, noteID)
	if err != nil {
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}
	dtos := make([]*ReminderDTO, 0, len(reminders))
	for _, reminder := range reminders {
		dtos = append(dtos, s.domainToDTO(reminder))
	}
	return dtos, nil
}

// ListUpcoming 获取即将到期的提醒
// 仅按 limit 截断；配置了前瞻窗口时额外加上时间上界
func (s *reminderService) ListUpcoming(ctx context.Context, limit int) ([]*ReminderWithNoteDTO, error) {
	now := time.Now()
	var to int64
	if window := s.config.Reminder.UpcomingWindow; window > 0 {
		to = now.Add(window).Unix()
	}

	rows, err := s.reminderRepo.ListUpcoming(ctx, now.Unix(), to, limit)
	if err != nil {
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}
	return s.rowsToDTOs(rows), nil
}

// ListDue 获取已到期且未触发的提醒
func (s *reminderService) ListDue(ctx context.Context, now time.Time) ([]*ReminderWithNoteDTO, error) {
	rows, err := s.reminderRepo.ListDue(ctx, now.Unix())
	if err != nil {
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}
	return s.rowsToDTOs(rows), nil
}

func (s *reminderService) rowsToDTOs(rows []*domain.ReminderWithNote) []*ReminderWithNoteDTO {
	dtos := make([]*ReminderWithNoteDTO, 0, len(rows))
	for _, row := range rows {
		dtos = append(dtos, s.domainToDTOWithNote(row))
	}
	return dtos
}

// MarkTriggered 单向标记提醒已触发
func (s *reminderService) MarkTriggered(ctx context.Context, id int64) error {
	if err := s.reminderRepo.MarkTriggered(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorReminderNotFound
		}
		return code.ErrorDatabase.WithDetails(err.Error())
	}
	return nil
}
