package domain

import "time"

// Reminder 提醒领域模型
type Reminder struct {
	ID     int64
	NoteID int64
	// RemindAt 触发时间的 unix 秒时间戳
	RemindAt    int64
	Title       string
	Description string
	// IsTriggered 单向标记，false -> true 后不再回退
	IsTriggered bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsDue 判断提醒在 now 时刻是否到期且未触发
func (r *Reminder) IsDue(now time.Time) bool {
	return !r.IsTriggered && r.RemindAt <= now.Unix()
}

// ReminderWithNote 提醒与其父便签的联查结果
type ReminderWithNote struct {
	Reminder
	// NoteContent 父便签内容摘要，供提醒弹窗展示
	NoteContent string
	// NoteColor 父便签颜色
	NoteColor string
}
