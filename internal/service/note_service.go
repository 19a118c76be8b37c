// Package service 实现业务逻辑层
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aibianji/sticky-notes-app/global"
	"github.com/aibianji/sticky-notes-app/internal/domain"
	"github.com/aibianji/sticky-notes-app/internal/dto"
	"github.com/aibianji/sticky-notes-app/pkg/app"
	"github.com/aibianji/sticky-notes-app/pkg/code"
	"github.com/aibianji/sticky-notes-app/pkg/debounce"
	"github.com/aibianji/sticky-notes-app/pkg/logger"
	"github.com/aibianji/sticky-notes-app/pkg/timex"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
	"gorm.io/gorm"
)

// ScreenshotStore removes stored screenshot assets
// ScreenshotStore 删除已存储的截图资源
type ScreenshotStore interface {
	Delete(fileKey string) error
}

// NoteService 定义便签业务服务接口
type NoteService interface {
	// Get 获取单条便签（包含回收站中的便签）
	Get(ctx context.Context, id int64) (*NoteDTO, error)

	// Create 创建便签
	Create(ctx context.Context, params *dto.NoteCreateRequest) (*NoteDTO, error)

	// Edit 提交内容编辑，经由防抖协调器合并写入
	Edit(ctx context.Context, params *dto.NoteEditRequest) error

	// Flush 立即落盘某便签的待写入内容
	Flush(ctx context.Context, id int64) error

	// SaveNow 跳过防抖同步写入内容（窗口关闭前的显式保存）
	SaveNow(ctx context.Context, params *dto.NoteEditRequest) error

	// Dirty 判断某便签是否存在落盘失败后未恢复的内容
	Dirty(id int64) bool

	// TogglePin 切换置顶标记
	TogglePin(ctx context.Context, id int64) (*NoteDTO, error)

	// SetColor 更新颜色标记
	SetColor(ctx context.Context, params *dto.NoteColorRequest) (*NoteDTO, error)

	// SetCategory 更新分类归属，nil 表示移出分类
	SetCategory(ctx context.Context, params *dto.NoteCategoryRequest) (*NoteDTO, error)

	// Trash 批量移入回收站，返回实际转移数量
	Trash(ctx context.Context, ids []int64) (int64, error)

	// Restore 批量从回收站恢复，返回实际恢复数量
	Restore(ctx context.Context, ids []int64) (int64, error)

	// Purge 批量彻底删除（连同提醒与截图资源），返回删除数量
	Purge(ctx context.Context, ids []int64) (int64, error)

	// List 分页获取活跃便签列表
	List(ctx context.Context, params *dto.NoteListRequest, pager *app.Pager) ([]*NoteDTO, int, error)

	// ListTrash 分页获取回收站列表，按进入回收站时间倒序
	ListTrash(ctx context.Context, pager *app.Pager) ([]*NoteDTO, int, error)

	// Search 内容子串搜索（即时搜索通道，相同查询合并执行）
	Search(ctx context.Context, params *dto.NoteSearchRequest) ([]*NoteDTO, error)

	// CleanupTrash 清理超过保留期的回收站便签，retention <= 0 时使用配置默认值
	CleanupTrash(ctx context.Context, retention time.Duration) (int64, error)

	// Shutdown 落盘全部待写入内容并关闭防抖协调器
	Shutdown(ctx context.Context) error
}

// NoteDTO 便签数据传输对象
type NoteDTO struct {
	ID             int64      `json:"id"`
	Content        string     `json:"content"`
	ScreenshotPath string     `json:"screenshotPath"`
	Color          string     `json:"color"`
	CategoryID     *int64     `json:"categoryId"`
	IsPinned       bool       `json:"isPinned"`
	IsTrashed      bool       `json:"isTrashed"`
	TrashedAt      int64      `json:"trashedAt,omitempty"`
	UpdatedAt      timex.Time `json:"updatedAt"`
	CreatedAt      timex.Time `json:"createdAt"`
}

// noteService 实现 NoteService 接口
type noteService struct {
	noteRepo     domain.NoteRepository
	categoryRepo domain.CategoryRepository
	coordinator  *debounce.Coordinator
	screenshots  ScreenshotStore
	sf           *singleflight.Group
	config       *ServiceConfig
}

// NewNoteService 创建 NoteService 实例
func NewNoteService(noteRepo domain.NoteRepository, categoryRepo domain.CategoryRepository, coordinator *debounce.Coordinator, screenshots ScreenshotStore, config *ServiceConfig) NoteService {
	return &noteService{
		noteRepo:     noteRepo,
		categoryRepo: categoryRepo,
		coordinator:  coordinator,
		screenshots:  screenshots,
		sf:           &singleflight.Group{},
		config:       config,
	}
}

// ensureCategoryExists 校验归属分类存在，nil 表示无分类
func (s *noteService) ensureCategoryExists(ctx context.Context, categoryID *int64) error {
	if categoryID == nil {
		return nil
	}
	if _, err := s.categoryRepo.GetByID(ctx, *categoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorCategoryNotFound
		}
		return code.ErrorDatabase.WithDetails(err.Error())
	}
	return nil
}

// domainToDTO 将领域模型转换为 DTO
func (s *noteService) domainToDTO(note *domain.Note) *NoteDTO {
	if note == nil {
		return nil
	}
	d := &NoteDTO{
		ID:             note.ID,
		Content:        note.Content,
		ScreenshotPath: note.ScreenshotPath,
		Color:          note.Color,
		CategoryID:     note.CategoryID,
		IsPinned:       note.IsPinned,
		IsTrashed:      note.IsTrashed(),
		UpdatedAt:      timex.Time(note.UpdatedAt),
		CreatedAt:      timex.Time(note.CreatedAt),
	}
	if note.DeletedAt != nil {
		d.TrashedAt = *note.DeletedAt
	}
	return d
}

func (s *noteService) domainsToDTOs(notes []*domain.Note) []*NoteDTO {
	dtos := make([]*NoteDTO, 0, len(notes))
	for _, note := range notes {
		dtos = append(dtos, s.domainToDTO(note))
	}
	return dtos
}

// Get 获取单条便签
func (s *noteService) Get(ctx context.Context, id int64) (*NoteDTO, error) {
	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}
	return s.domainToDTO(note), nil
}

// Create 创建便签
// 归属分类必须指向已存在的分类
func (s *noteService) Create(ctx context.Context, params *dto.NoteCreateRequest) (*NoteDTO, error) {
	if err := s.ensureCategoryExists(ctx, params.CategoryID); err != nil {
		return nil, err
	}

	color := params.Color
	if color == "" {
		color = s.config.Note.DefaultColor
	}
	note := &domain.Note{
		Content:    params.Content,
		Color:      color,
		CategoryID: params.CategoryID,
		IsPinned:   params.IsPinned,
	}
	created, err := s.noteRepo.Create(ctx, note)
	if err != nil {
		return nil, code.ErrorNoteSaveFail.WithDetails(err.Error())
	}
	return s.domainToDTO(created), nil
}

// Edit 提交内容编辑
// 仅校验便签当前处于活跃态，实际写入由协调器在静默期后合并执行
func (s *noteService) Edit(ctx context.Context, params *dto.NoteEditRequest) error {
	note, err := s.noteRepo.GetByID(ctx, params.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorNoteNotFound
		}
		return code.ErrorDatabase.WithDetails(err.Error())
	}
	if note.IsTrashed() {
		return code.ErrorNoteAlreadyTrashed
	}

	id := params.ID
	content := params.Content
	screenshotPath := params.ScreenshotPath
	err = s.coordinator.Submit(id, func() error {
		// 写入可能晚于请求结束，不复用请求上下文
		// the write may outlive the request, do not reuse the request context
		return s.noteRepo.UpdateContent(context.Background(), content, screenshotPath, id)
	})
	if err != nil {
		return code.ErrorNoteSaveFail.WithDetails(err.Error())
	}
	return nil
}

// Flush 立即落盘某便签的待写入内容
func (s *noteService) Flush(ctx context.Context, id int64) error {
	if err := s.coordinator.Flush(id); err != nil {
		return code.ErrorNoteSaveFail.WithDetails(err.Error())
	}
	return nil
}

// SaveNow 跳过防抖同步写入内容
// 先丢弃该便签的待写入快照，避免旧内容在静默期后覆盖本次写入
func (s *noteService) SaveNow(ctx context.Context, params *dto.NoteEditRequest) error {
	s.coordinator.Cancel(params.ID)

	err := s.noteRepo.UpdateContent(ctx, params.Content, params.ScreenshotPath, params.ID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return code.ErrorNoteNotFound
		}
		return code.ErrorNoteSaveFail.WithDetails(err.Error())
	}
	return nil
}

// Dirty 判断某便签是否存在落盘失败后未恢复的内容
func (s *noteService) Dirty(id int64) bool {
	return s.coordinator.Dirty(id)
}

// TogglePin 切换置顶标记
func (s *noteService) TogglePin(ctx context.Context, id int64) (*NoteDTO, error) {
	note, err := s.noteRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorDatabase.WithDetails(err.Error())
	}

	if err := s.noteRepo.UpdatePinned(ctx, !note.IsPinned, id); err != nil {
		return nil, code.ErrorNoteSaveFail.WithDetails(err.Error())
	}
	note.IsPinned = !note.IsPinned
	return s.domainToDTO(note), nil
}

// SetColor 更新颜色标记
func (s *noteService) SetColor(ctx context.Context, params *dto.NoteColorRequest) (*NoteDTO, error) {
	if err := s.noteRepo.UpdateColor(ctx, params.Color, params.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorNoteSaveFail.WithDetails(err.Error())
	}
	return s.Get(ctx, params.ID)
}

// SetCategory 更新分类归属
// 目标分类必须存在，nil 表示移出分类
func (s *noteService) SetCategory(ctx context.Context, params *dto.NoteCategoryRequest) (*NoteDTO, error) {
	if err := s.ensureCategoryExists(ctx, params.CategoryID); err != nil {
		return nil, err
	}

	if err := s.noteRepo.UpdateCategory(ctx, params.CategoryID, params.ID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, code.ErrorNoteNotFound
		}
		return nil, code.ErrorNoteSaveFail.WithDetails(err.Error())
	}
	return s.Get(ctx, params.ID)
}

// Trash 批量移入回收站
// 转移成功后才丢弃待写入快照，事务失败时便签仍活跃且未保存内容不丢失
func (s *noteService) Trash(ctx context.Context, ids []int64) (int64, error) {
	count, err := s.noteRepo.Trash(ctx, time.Now().Unix(), ids)
	if err != nil {
		return 0, code.ErrorDatabase.WithDetails(err.Error())
	}

	for _, id := range ids {
		s.coordinator.Cancel(id)
	}
	return count, nil
}

// Restore 批量从回收站恢复
func (s *noteService) Restore(ctx context.Context, ids []int64) (int64, error) {
	count, err := s.noteRepo.Restore(ctx, ids)
	if err != nil {
		return 0, code.ErrorDatabase.WithDetails(err.Error())
	}
	return count, nil
}

// Purge 批量彻底删除
// 提醒随便签在同一事务内删除，截图资源删除为尽力而为
func (s *noteService) Purge(ctx context.Context, ids []int64) (int64, error) {
	var screenshotKeys []string
	for _, id := range ids {
		s.coordinator.Cancel(id)

		note, err := s.noteRepo.GetByID(ctx, id)
		if err != nil {
			continue
		}
		if note.ScreenshotPath != "" {
			screenshotKeys = append(screenshotKeys, note.ScreenshotPath)
		}
	}

	count, err := s.noteRepo.Purge(ctx, ids)
	if err != nil {
		return 0, code.ErrorDatabase.WithDetails(err.Error())
	}

	s.deleteScreenshots(screenshotKeys)
	return count, nil
}

// deleteScreenshots 删除截图资源，失败仅记录告警
func (s *noteService) deleteScreenshots(keys []string) {
	if s.screenshots == nil {
		return
	}
	for _, key := range keys {
		if err := s.screenshots.Delete(key); err != nil {
			global.Logger.Warn("delete screenshot failed",
				zap.String(logger.FieldFileKey, key),
				zap.String(logger.FieldMethod, "NoteService.deleteScreenshots"),
				zap.Error(err),
			)
		}
	}
}

// List 分页获取活跃便签列表
func (s *noteService) List(ctx context.Context, params *dto.NoteListRequest, pager *app.Pager) ([]*NoteDTO, int, error) {
	sortKey := domain.NoteSortKey(params.Sort)
	if params.Sort == "" {
		sortKey = domain.NoteSortUpdatedDesc
	}
	if !sortKey.Valid() {
		return nil, 0, code.ErrorInvalidParams.WithDetails(fmt.Sprintf("unknown sort key %q", params.Sort))
	}

	q := &domain.NoteListQuery{
		CategoryID: params.CategoryID,
		Keyword:    params.Keyword,
		SortKey:    sortKey,
		Page:       pager.Page,
		PageSize:   pager.PageSize,
	}
	return s.list(ctx, q)
}

// ListTrash 分页获取回收站列表
func (s *noteService) ListTrash(ctx context.Context, pager *app.Pager) ([]*NoteDTO, int, error) {
	q := &domain.NoteListQuery{
		IsTrash:  true,
		Page:     pager.Page,
		PageSize: pager.PageSize,
	}
	return s.list(ctx, q)
}

// list 执行列表查询，相同查询条件的并发请求合并执行
func (s *noteService) list(ctx context.Context, q *domain.NoteListQuery) ([]*NoteDTO, int, error) {
	type listResult struct {
		notes []*domain.Note
		count int64
	}

	key := listKey(q)
	v, err, _ := s.sf.Do(key, func() (interface{}, error) {
		count, err := s.noteRepo.ListCount(ctx, q)
		if err != nil {
			return nil, err
		}
		notes, err := s.noteRepo.List(ctx, q)
		if err != nil {
			return nil, err
		}
		return &listResult{notes: notes, count: count}, nil
	})
	if err != nil {
		return nil, 0, code.ErrorDatabase.WithDetails(err.Error())
	}

	result := v.(*listResult)
	return s.domainsToDTOs(result.notes), int(result.count), nil
}

// Search 内容子串搜索
// 空白关键字等价于无过滤的活跃列表
func (s *noteService) Search(ctx context.Context, params *dto.NoteSearchRequest) ([]*NoteDTO, error) {
	q := &domain.NoteListQuery{
		CategoryID: params.CategoryID,
		Keyword:    params.Keyword,
		SortKey:    domain.NoteSortUpdatedDesc,
		Page:       1,
		PageSize:   s.config.Note.MaxPageSize,
	}
	dtos, _, err := s.list(ctx, q)
	return dtos, err
}

// listKey 生成列表查询的合并键
func listKey(q *domain.NoteListQuery) string {
	categoryID := int64(0)
	if q.CategoryID != nil {
		categoryID = *q.CategoryID
	}
	return fmt.Sprintf("note:list:%v:%d:%s:%s:%d:%d", q.IsTrash, categoryID, q.Keyword, q.SortKey, q.Page, q.PageSize)
}

// CleanupTrash 清理超过保留期的回收站便签
func (s *noteService) CleanupTrash(ctx context.Context, retention time.Duration) (int64, error) {
	if retention <= 0 {
		retention = s.config.Trash.RetentionTime
	}
	if retention <= 0 {
		// 保留期为 0 表示不自动清理
		return 0, nil
	}

	cutoff := time.Now().Add(-retention).Unix()
	expired, err := s.noteRepo.ListTrashedBefore(ctx, cutoff)
	if err != nil {
		return 0, code.ErrorDatabase.WithDetails(err.Error())
	}
	if len(expired) == 0 {
		return 0, nil
	}

	ids := make([]int64, 0, len(expired))
	var screenshotKeys []string
	for _, note := range expired {
		ids = append(ids, note.ID)
		if note.ScreenshotPath != "" {
			screenshotKeys = append(screenshotKeys, note.ScreenshotPath)
		}
	}

	count, err := s.noteRepo.Purge(ctx, ids)
	if err != nil {
		return 0, code.ErrorDatabase.WithDetails(err.Error())
	}
	s.deleteScreenshots(screenshotKeys)

	global.Logger.Info("trash cleanup done",
		zap.Int64(logger.FieldCount, count),
		zap.Duration("retention", retention),
		zap.String(logger.FieldMethod, "NoteService.CleanupTrash"),
	)
	return count, nil
}

// Shutdown 落盘全部待写入内容并关闭防抖协调器
func (s *noteService) Shutdown(ctx context.Context) error {
	return s.coordinator.Shutdown(ctx)
}
