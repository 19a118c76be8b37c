package model

import "github.com/aibianji/sticky-notes-app/pkg/timex"

const TableNameNote = "note"

// Note mapped from table <note>
type Note struct {
	ID             int64      `gorm:"column:id;primaryKey" json:"id" form:"id"`
	Content        string     `gorm:"column:content" json:"content" form:"content"`
	ScreenshotPath string     `gorm:"column:screenshot_path" json:"screenshotPath" form:"screenshotPath"`
	Color          string     `gorm:"column:color" json:"color" form:"color"`
	CategoryID     *int64     `gorm:"column:category_id;index:idx_note_category" json:"categoryId" form:"categoryId"`
	IsPinned       bool       `gorm:"column:is_pinned;default:false" json:"isPinned" form:"isPinned"`
	CreatedAt      timex.Time `gorm:"column:created_at;type:datetime;default:NULL;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt      timex.Time `gorm:"column:updated_at;type:datetime;default:NULL;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
	// DeletedAt is the trash timestamp in unix seconds, nil while the note is active
	// DeletedAt 为进入回收站的 unix 秒时间戳，便签活跃时为 nil
	DeletedAt *int64 `gorm:"column:deleted_at;index:idx_note_deleted" json:"deletedAt" form:"deletedAt"`
}

// TableName Note's table name
func (*Note) TableName() string {
	return TableNameNote
}
