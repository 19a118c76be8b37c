package code

// Common codes
// 通用状态码
var (
	Success              = NewSuss(0, lang{en: "success", zh_cn: "成功"})
	Fail                 = NewError(1, lang{en: "fail", zh_cn: "失败"})
	ServerError          = NewError(100001, lang{en: "server internal error", zh_cn: "服务内部错误"})
	ErrorInvalidParams   = NewError(100002, lang{en: "invalid params", zh_cn: "入参错误"})
	ErrorNotFound        = NewError(100003, lang{en: "record not found", zh_cn: "记录不存在"})
	ErrorDatabase        = NewError(100004, lang{en: "database error", zh_cn: "数据库错误"})
	ErrorTooManyRequests = NewError(100005, lang{en: "too many requests", zh_cn: "请求过多"})
)

// Note codes
// 便签状态码
var (
	ErrorNoteNotFound       = NewError(200001, lang{en: "note not found", zh_cn: "便签不存在"})
	ErrorNoteNotTrashed     = NewError(200002, lang{en: "note is not in trash", zh_cn: "便签不在回收站中"})
	ErrorNoteAlreadyTrashed = NewError(200003, lang{en: "note is already in trash", zh_cn: "便签已在回收站中"})
	ErrorNoteSaveFail       = NewError(200004, lang{en: "failed to save note", zh_cn: "便签保存失败"})
)

// Category codes
// 分类状态码
var (
	ErrorCategoryNotFound  = NewError(300001, lang{en: "category not found", zh_cn: "分类不存在"})
	ErrorCategoryNameExist = NewError(300002, lang{en: "category name already exists", zh_cn: "分类名称已存在"})
	ErrorCategoryReorder   = NewError(300003, lang{en: "reorder must cover every category exactly once", zh_cn: "排序必须且仅覆盖每个分类一次"})
)

// Reminder codes
// 提醒状态码
var (
	ErrorReminderNotFound = NewError(400001, lang{en: "reminder not found", zh_cn: "提醒不存在"})
	ErrorReminderPast     = NewError(400002, lang{en: "reminder time is in the past", zh_cn: "提醒时间已过"})
)

// Window codes
// 窗口状态码
var (
	ErrorWindowNotFound = NewError(500001, lang{en: "note window not found", zh_cn: "便签窗口不存在"})
	ErrorWindowOpenFail = NewError(500002, lang{en: "failed to open note window", zh_cn: "便签窗口打开失败"})
)

// Upload codes
// 上传状态码
var (
	ErrorUploadFileFail     = NewError(600001, lang{en: "failed to save uploaded image", zh_cn: "上传图片保存失败"})
	ErrorUploadFileExtFail  = NewError(600002, lang{en: "image extension is not allowed", zh_cn: "图片扩展名不被允许"})
	ErrorUploadFileSizeFail = NewError(600003, lang{en: "image exceeds the size limit", zh_cn: "图片超过大小限制"})
)
