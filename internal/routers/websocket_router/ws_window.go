package websocket_router

import (
	"github.com/aibianji/sticky-notes-app/internal/app"
	"github.com/aibianji/sticky-notes-app/internal/dto"
	"github.com/aibianji/sticky-notes-app/internal/session"
	pkgapp "github.com/aibianji/sticky-notes-app/pkg/app"
	"github.com/aibianji/sticky-notes-app/pkg/code"
)

// WebSocket 窗口消息动作名
const (
	ActionWindowClosed   = "WindowClosed"
	ActionWindowGeometry = "WindowGeometry"
)

// WindowWSHandler WebSocket 窗口会话处理器
// 前端承担展示层，窗口生命周期信号经此上报给注册表
type WindowWSHandler struct {
	*WSHandler
}

// NewWindowWSHandler 创建 WindowWSHandler 实例
func NewWindowWSHandler(a *app.App) *WindowWSHandler {
	return &WindowWSHandler{
		WSHandler: NewWSHandler(a),
	}
}

// WindowClosed 处理窗口销毁信号
// 前端窗口因任何原因消失（用户关闭、崩溃恢复）后携带自身句柄上报，重复上报无害
func (h *WindowWSHandler) WindowClosed(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.WindowClosedRequest{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		h.respondError(c, code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()), errs, "websocket_router.window.WindowClosed.BindAndValid")
		return
	}

	h.App.Registry.HandleClosed(params.NoteID, params.Handle)

	c.ToResponse(code.Success, ActionWindowClosed)
}

// WindowGeometry 处理窗口几何信息上报
func (h *WindowWSHandler) WindowGeometry(c *pkgapp.WebsocketClient, msg *pkgapp.WebSocketMessage) {
	params := &dto.WindowGeometryRequest{}

	valid, errs := c.BindAndValid(msg.Data, params)
	if !valid {
		h.respondError(c, code.ErrorInvalidParams.WithDetails(errs.ErrorsToString()), errs, "websocket_router.window.WindowGeometry.BindAndValid")
		return
	}

	// 窗口未登记时忽略，前端可能在打开回执到达前就上报
	geometry := session.Geometry{X: params.X, Y: params.Y, Width: params.Width, Height: params.Height}
	_ = h.App.Registry.UpdateGeometry(params.NoteID, geometry)

	c.ToResponse(code.Success, ActionWindowGeometry)
}
