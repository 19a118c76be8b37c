package model

import "github.com/aibianji/sticky-notes-app/pkg/timex"

const TableNameCategory = "category"

// Category mapped from table <category>
type Category struct {
	ID    int64  `gorm:"column:id;primaryKey" json:"id" form:"id"`
	Name  string `gorm:"column:name;not null" json:"name" form:"name"`
	Color string `gorm:"column:color" json:"color" form:"color"`
	// SortOrder is the category's position in the ordered index, 0-based and dense
	// SortOrder 为分类在有序索引中的位置，从 0 开始且连续
	SortOrder int        `gorm:"column:sort_order;not null;default:0;index:idx_category_sort" json:"sortOrder" form:"sortOrder"`
	CreatedAt timex.Time `gorm:"column:created_at;type:datetime;default:NULL;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt timex.Time `gorm:"column:updated_at;type:datetime;default:NULL;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
}

// TableName Category's table name
func (*Category) TableName() string {
	return TableNameCategory
}
