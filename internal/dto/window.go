// Package dto 定义数据传输对象（请求参数和响应结构体）
package dto

// WindowOpenRequest 打开（或聚焦已打开）便签窗口的请求参数
type WindowOpenRequest struct {
	NoteID int64 `json:"noteId" form:"noteId" binding:"required,gt=0"`
}

// WindowCloseRequest 关闭便签窗口的请求参数
type WindowCloseRequest struct {
	NoteID int64 `json:"noteId" form:"noteId" binding:"required,gt=0"`
}

// WindowClosedRequest 展示层窗口销毁信号的上报参数
// 携带消失窗口自身的句柄，注册表据此忽略来自旧窗口的迟到信号
type WindowClosedRequest struct {
	NoteID int64  `json:"noteId" form:"noteId" binding:"required,gt=0"`
	Handle string `json:"handle" form:"handle" binding:"required"`
}

// WindowGeometryRequest 上报窗口几何信息的请求参数
type WindowGeometryRequest struct {
	NoteID int64 `json:"noteId" form:"noteId" binding:"required,gt=0"`
	X      int   `json:"x" form:"x"`
	Y      int   `json:"y" form:"y"`
	Width  int   `json:"width" form:"width" binding:"gte=0"`
	Height int   `json:"height" form:"height" binding:"gte=0"`
}
