// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

// NoteCreateRequest 创建便签请求参数
type NoteCreateRequest struct {
	Content    string `json:"content" form:"content" binding:""`
	Color      string `json:"color" form:"color" binding:"omitempty,max=32"`
	CategoryID *int64 `json:"categoryId" form:"categoryId" binding:"omitempty,gt=0"`
	IsPinned   bool   `json:"isPinned" form:"isPinned" binding:""`
}

// NoteEditRequest 编辑便签内容请求参数（经由防抖协调器落盘）
type NoteEditRequest struct {
	ID             int64  `json:"id" form:"id" binding:"required,gt=0"`
	Content        string `json:"content" form:"content" binding:""`
	ScreenshotPath string `json:"screenshotPath" form:"screenshotPath" binding:""`
}

// NoteFlushRequest 立即落盘便签待写入内容的请求参数
type NoteFlushRequest struct {
	ID int64 `json:"id" form:"id" binding:"required,gt=0"`
}

// NotePinRequest 切换便签置顶状态请求参数
type NotePinRequest struct {
	ID int64 `json:"id" form:"id" binding:"required,gt=0"`
}

// NoteColorRequest 更新便签颜色请求参数
type NoteColorRequest struct {
	ID    int64  `json:"id" form:"id" binding:"required,gt=0"`
	Color string `json:"color" form:"color" binding:"required,max=32"`
}

// NoteCategoryRequest 更新便签分类归属请求参数，categoryId 为空表示移出分类
type NoteCategoryRequest struct {
	ID         int64  `json:"id" form:"id" binding:"required,gt=0"`
	CategoryID *int64 `json:"categoryId" form:"categoryId" binding:"omitempty,gt=0"`
}

// NoteBatchRequest 批量生命周期操作请求参数（移入回收站 / 恢复 / 彻底删除）
type NoteBatchRequest struct {
	IDs []int64 `json:"ids" form:"ids" binding:"required,min=1,dive,gt=0"`
}

// TrashCleanupRequest 手动清理回收站的请求参数
// retentionDays 为空时使用配置的保留期
type TrashCleanupRequest struct {
	RetentionDays int `json:"retentionDays" form:"retentionDays" binding:"omitempty,gt=0"`
}

// NoteListRequest 便签列表查询请求参数
type NoteListRequest struct {
	CategoryID *int64 `json:"categoryId" form:"categoryId" binding:"omitempty,gt=0"`
	Keyword    string `json:"keyword" form:"keyword" binding:""`
	Sort       string `json:"sort" form:"sort" binding:"omitempty,oneof=createdAsc createdDesc updatedAsc updatedDesc"`
}

// NoteSearchRequest 即时搜索请求参数（WebSocket 通道，防抖刷新）
type NoteSearchRequest struct {
	Keyword    string `json:"keyword" form:"keyword" binding:""`
	CategoryID *int64 `json:"categoryId" form:"categoryId" binding:"omitempty,gt=0"`
}
