package model

import "github.com/aibianji/sticky-notes-app/pkg/timex"

const TableNameReminder = "reminder"

// Reminder mapped from table <reminder>
type Reminder struct {
	ID     int64 `gorm:"column:id;primaryKey" json:"id" form:"id"`
	NoteID int64 `gorm:"column:note_id;not null;index:idx_reminder_note" json:"noteId" form:"noteId"`
	// RemindAt is the fire time in unix seconds
	// RemindAt 为触发时间的 unix 秒时间戳
	RemindAt    int64      `gorm:"column:remind_at;not null;index:idx_reminder_at" json:"remindAt" form:"remindAt"`
	Title       string     `gorm:"column:title" json:"title" form:"title"`
	Description string     `gorm:"column:description" json:"description" form:"description"`
	IsTriggered bool       `gorm:"column:is_triggered;default:false" json:"isTriggered" form:"isTriggered"`
	CreatedAt   timex.Time `gorm:"column:created_at;type:datetime;default:NULL;autoCreateTime:false" json:"createdAt" form:"createdAt"`
	UpdatedAt   timex.Time `gorm:"column:updated_at;type:datetime;default:NULL;autoUpdateTime:false" json:"updatedAt" form:"updatedAt"`
}

// TableName Reminder's table name
func (*Reminder) TableName() string {
	return TableNameReminder
}
