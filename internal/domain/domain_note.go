// Package domain 定义领域模型和接口
package domain

import "time"

// NoteSortKey 便签列表排序键
type NoteSortKey string

const (
	NoteSortCreatedAsc  NoteSortKey = "createdAsc"
	NoteSortCreatedDesc NoteSortKey = "createdDesc"
	NoteSortUpdatedAsc  NoteSortKey = "updatedAsc"
	NoteSortUpdatedDesc NoteSortKey = "updatedDesc"
)

// Valid 判断排序键是否合法
func (k NoteSortKey) Valid() bool {
	switch k {
	case NoteSortCreatedAsc, NoteSortCreatedDesc, NoteSortUpdatedAsc, NoteSortUpdatedDesc:
		return true
	}
	return false
}

// Note 便签领域模型
type Note struct {
	ID             int64
	Content        string
	ScreenshotPath string
	Color          string
	CategoryID     *int64
	IsPinned       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
	// DeletedAt 进入回收站的 unix 秒时间戳，活跃便签为 nil
	DeletedAt *int64
}

// IsTrashed 判断便签是否在回收站中
func (n *Note) IsTrashed() bool {
	return n.DeletedAt != nil
}

// TrashedAt 返回进入回收站的时间，未在回收站时返回零值
func (n *Note) TrashedAt() time.Time {
	if n.DeletedAt == nil {
		return time.Time{}
	}
	return time.Unix(*n.DeletedAt, 0)
}

// NoteListQuery 便签列表查询条件
type NoteListQuery struct {
	// CategoryID 分类过滤，nil 表示不过滤
	CategoryID *int64
	// Keyword 内容子串搜索，空白等价于无搜索
	Keyword string
	// IsTrash 为 true 时仅查询回收站，回收站固定按 deleted_at 倒序
	IsTrash bool
	// SortKey 活跃列表排序键
	SortKey  NoteSortKey
	Page     int
	PageSize int
}
