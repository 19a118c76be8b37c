// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

// ReminderCreateRequest 创建提醒请求参数，remindAt 为 unix 秒时间戳
type ReminderCreateRequest struct {
	NoteID      int64  `json:"noteId" form:"noteId" binding:"required,gt=0"`
	RemindAt    int64  `json:"remindAt" form:"remindAt" binding:"required,gt=0"`
	Title       string `json:"title" form:"title" binding:"omitempty,max=128"`
	Description string `json:"description" form:"description" binding:"omitempty,max=512"`
}

// ReminderUpdateRequest 更新提醒请求参数
type ReminderUpdateRequest struct {
	ID          int64  `json:"id" form:"id" binding:"required,gt=0"`
	RemindAt    int64  `json:"remindAt" form:"remindAt" binding:"required,gt=0"`
	Title       string `json:"title" form:"title" binding:"omitempty,max=128"`
	Description string `json:"description" form:"description" binding:"omitempty,max=512"`
}

// ReminderUpcomingRequest 查询即将到期提醒的请求参数
type ReminderUpcomingRequest struct {
	Limit int `json:"limit" form:"limit" binding:"omitempty,gt=0,lte=200"`
}
