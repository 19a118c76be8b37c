package domain

import "time"

// Category 分类领域模型
type Category struct {
	ID    int64
	Name  string
	Color string
	// SortOrder 手动排序位置，整组内无重复
	SortOrder int
	CreatedAt time.Time
	UpdatedAt time.Time
}
