package logger

// 统一的日志字段命名常量
// 用于确保整个项目中日志字段命名的一致性，便于日志查询和分析
const (
	// FieldNoteID 便签 ID 字段
	FieldNoteID = "noteId"

	// FieldCategoryID 分类 ID 字段
	FieldCategoryID = "categoryId"

	// FieldReminderID 提醒 ID 字段
	FieldReminderID = "reminderId"

	// FieldWindowID 窗口句柄字段
	FieldWindowID = "windowId"

	// FieldAction 操作类型字段
	FieldAction = "action"

	// FieldMethod 方法名称字段
	FieldMethod = "method"

	// FieldDuration 耗时字段
	FieldDuration = "duration"

	// FieldCount 数量字段
	FieldCount = "count"

	// FieldError 错误信息字段
	FieldError = "error"

	// FieldFileKey 文件键字段
	FieldFileKey = "fileKey"
)
