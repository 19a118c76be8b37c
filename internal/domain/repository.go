// Package domain 定义领域模型和接口
package domain

import "context"

// NoteRepository 便签仓储接口
type NoteRepository interface {
	// GetByID 根据ID获取便签（包含回收站中的便签）
	GetByID(ctx context.Context, id int64) (*Note, error)

	// Create 创建便签
	Create(ctx context.Context, note *Note) (*Note, error)

	// UpdateContent 更新便签内容与截图引用，并刷新修改时间
	UpdateContent(ctx context.Context, content, screenshotPath string, id int64) error

	// UpdatePinned 更新置顶标记
	UpdatePinned(ctx context.Context, pinned bool, id int64) error

	// UpdateColor 更新颜色标记
	UpdateColor(ctx context.Context, color string, id int64) error

	// UpdateCategory 更新分类归属，nil 表示移出分类
	UpdateCategory(ctx context.Context, categoryID *int64, id int64) error

	// Trash 在单个事务内将一批活跃便签标记进回收站
	// 已在回收站或不存在的 id 被跳过，返回实际转移数量
	Trash(ctx context.Context, deletedAt int64, ids []int64) (int64, error)

	// Restore 在单个事务内将一批回收站便签恢复为活跃
	// 返回实际恢复数量
	Restore(ctx context.Context, ids []int64) (int64, error)

	// Purge 在单个事务内物理删除一批便签及其全部提醒（不区分状态），返回删除的便签数量
	Purge(ctx context.Context, ids []int64) (int64, error)

	// ListTrashedBefore 获取 deleted_at 早于 cutoff 的回收站便签
	ListTrashedBefore(ctx context.Context, cutoff int64) ([]*Note, error)

	// List 分页获取便签列表
	// 活跃列表按 SortKey 排序，回收站按 deleted_at 倒序，并列时按 id 升序
	List(ctx context.Context, q *NoteListQuery) ([]*Note, error)

	// ListCount 获取满足查询条件的便签数量
	ListCount(ctx context.Context, q *NoteListQuery) (int64, error)

	// ClearCategory 将引用指定分类的便签归类置空
	ClearCategory(ctx context.Context, categoryID int64) error
}

// CategoryRepository 分类仓储接口
type CategoryRepository interface {
	// GetByID 根据ID获取分类
	GetByID(ctx context.Context, id int64) (*Category, error)

	// GetByName 根据名称获取分类
	GetByName(ctx context.Context, name string) (*Category, error)

	// Create 创建分类
	Create(ctx context.Context, category *Category) (*Category, error)

	// Update 更新分类名称与颜色
	Update(ctx context.Context, category *Category) error

	// Delete 删除分类，并在同一事务内将引用它的便签归类置空
	Delete(ctx context.Context, id int64) error

	// List 获取全部分类，按 sort_order 升序，并列时按 id 升序
	List(ctx context.Context) ([]*Category, error)

	// Reorder 在单个事务内按给定顺序重写整组 sort_order（0 起始、连续）
	Reorder(ctx context.Context, orderedIDs []int64) error

	// MaxSortOrder 获取当前最大 sort_order，无分类时返回 -1
	MaxSortOrder(ctx context.Context) (int, error)
}

// ReminderRepository 提醒仓储接口
type ReminderRepository interface {
	// GetByID 根据ID获取提醒
	GetByID(ctx context.Context, id int64) (*Reminder, error)

	// Create 创建提醒
	Create(ctx context.Context, reminder *Reminder) (*Reminder, error)

	// Update 更新提醒时间与文案
	Update(ctx context.Context, reminder *Reminder) error

	// Delete 删除提醒
	Delete(ctx context.Context, id int64) error

	// ListByNoteID 获取某便签的全部提醒，按 remind_at 升序
	ListByNoteID(ctx context.Context, noteID int64) ([]*Reminder, error)

	// ListUpcoming 获取未触发且 remind_at >= from 的提醒，to > 0 时附加时间上界
	// 联查父便签且仅包含活跃便签，按 remind_at 升序，limit <= 0 表示不限制
	ListUpcoming(ctx context.Context, from, to int64, limit int) ([]*ReminderWithNote, error)

	// ListDue 获取 remind_at <= now 且未触发、父便签活跃的提醒
	ListDue(ctx context.Context, now int64) ([]*ReminderWithNote, error)

	// MarkTriggered 单向标记提醒已触发
	MarkTriggered(ctx context.Context, id int64) error
}
